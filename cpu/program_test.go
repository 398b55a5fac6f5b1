package cpu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadProgram(t *testing.T) {
	assert := assert.New(t)

	image := []byte{0x30, 0x00, 0x12, 0x34, 0xf0, 0x25}

	prog, err := ReadProgram(bytes.NewReader(image))
	assert.NoError(err)
	assert.Equal(uint16(0x3000), prog.Base)
	assert.Equal([]uint16{0x1234, 0xf025}, prog.Words)

	assert.Equal(image, prog.Binary())
}

func TestReadProgramBaseOnly(t *testing.T) {
	assert := assert.New(t)

	// A bare base word is a valid, empty program.
	prog, err := ReadProgram(bytes.NewReader([]byte{0x40, 0x00}))
	assert.NoError(err)
	assert.Equal(uint16(0x4000), prog.Base)
	assert.Equal(0, len(prog.Words))
}

func TestReadProgramBad(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadProgram(bytes.NewReader(nil))
	assert.ErrorIs(err, ErrImageEmpty)

	_, err = ReadProgram(bytes.NewReader([]byte{0x30, 0x00, 0x12}))
	assert.ErrorIs(err, ErrImageOdd)
}

func TestProgramCodes(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{Base: 0x3000, Words: []uint16{0xaaaa, 0xbbbb}}

	var addrs []uint16
	var words []uint16
	for addr, word := range prog.Codes() {
		addrs = append(addrs, addr)
		words = append(words, word)
	}

	assert.Equal([]uint16{0x3000, 0x3001}, addrs)
	assert.Equal([]uint16{0xaaaa, 0xbbbb}, words)
}
