package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisters(t *testing.T) {
	assert := assert.New(t)

	regs := Registers{}

	regs.Set(3, 0x1234)
	assert.Equal(uint16(0x1234), regs.Get(3))
	assert.False(regs.N)
	assert.False(regs.Z)
	assert.True(regs.P)

	regs.Set(3, 0)
	assert.False(regs.N)
	assert.True(regs.Z)
	assert.False(regs.P)

	regs.Set(0, 0x8000)
	assert.True(regs.N)
	assert.False(regs.Z)
	assert.False(regs.P)

	// Flags follow the last write, not the largest register.
	regs.Set(7, 1)
	assert.False(regs.N)
	assert.True(regs.P)
}
