// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator binds a Cpu to a keyboard source and console sink,
// and runs programs on it.
package emulator

import (
	"iter"

	"github.com/ezrec/lc3vm/cpu"
	"github.com/ezrec/lc3vm/io"
)

// Emulator is a complete machine: processor, memory, keyboard, and
// console.
type Emulator struct {
	Verbose bool // If set, verbosely log instruction execution.

	*cpu.Cpu
	Program *cpu.Program

	Keyboard io.Keyboard
	Console  io.Console
}

// NewEmulator creates a machine with all devices attached.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{Cpu: cpu.NewCpu()}
	emu.Cpu.Keyboard = &emu.Keyboard
	emu.Cpu.Console = &emu.Console
	emu.Cpu.Mem.Keyboard = &emu.Keyboard

	return emu
}

// Defines returns the assembly predefines for this machine.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return emu.Cpu.Defines()
}

// Reset loads the program image and prepares the machine to run it.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset(emu.Program)
}

// Tick executes one instruction. done is true once the machine halts.
func (emu *Emulator) Tick() (done bool, err error) {
	pc := emu.Cpu.Reg.Pc
	err = emu.Cpu.Tick()
	if err != nil {
		err = &ErrRuntime{Pc: pc, Err: err}
		return
	}

	done = emu.Cpu.State == cpu.STATE_HALTED
	return
}

// Run executes the loaded program until it halts or fails.
func (emu *Emulator) Run() (err error) {
	emu.Reset()

	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
