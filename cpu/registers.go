package cpu

import (
	"fmt"
)

// Registers is the register file: eight general-purpose word registers,
// the program counter, and the three condition flags. Exactly one of
// N/Z/P is true after any Set, matching the sign of the value written.
// Control flow mutates Pc directly and does not touch the flags.
type Registers struct {
	R  [8]uint16
	Pc uint16

	N bool
	Z bool
	P bool
}

// Get returns the stored word for a general-purpose register.
func (regs *Registers) Get(index Reg) uint16 {
	return regs.R[index&7]
}

// Set stores a word into a general-purpose register and recomputes the
// condition flags from the signed interpretation of the value.
func (regs *Registers) Set(index Reg, value uint16) {
	regs.R[index&7] = value

	regs.N = int16(value) < 0
	regs.Z = value == 0
	regs.P = int16(value) > 0
}

// String returns the current register state as a string.
func (regs *Registers) String() (text string) {
	for n, val := range regs.R {
		text += fmt.Sprintf("r%d=0x%04x ", n, val)
	}
	text += fmt.Sprintf("pc=0x%04x n=%v z=%v p=%v", regs.Pc, regs.N, regs.Z, regs.P)

	return
}
