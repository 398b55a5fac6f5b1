package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/lc3vm/internal"
	"github.com/ezrec/lc3vm/io"
)

// State is the execution state of the machine.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
)

// Trap is a system call vector.
type Trap uint8

//go:generate go tool stringer -linecomment -type=Trap
const (
	TRAP_GETC = Trap(0x20) // getc
	TRAP_PUTC = Trap(0x21) // putc
	TRAP_PUTS = Trap(0x22) // puts
	TRAP_HALT = Trap(0x25) // halt
)

var _cpu_defines = map[string]string{
	"TRAP_GETC": fmt.Sprintf("%#v", uint8(TRAP_GETC)),
	"TRAP_PUTC": fmt.Sprintf("%#v", uint8(TRAP_PUTC)),
	"TRAP_PUTS": fmt.Sprintf("%#v", uint8(TRAP_PUTS)),
	"TRAP_HALT": fmt.Sprintf("%#v", uint8(TRAP_HALT)),
}

// Cpu is the execution loop: it owns the register file and memory, and
// drives the keyboard and console devices. It is single threaded; the
// only suspension points are the blocking keyboard reads.
type Cpu struct {
	Verbose bool // Set to enable per-cycle trace logging.

	Reg Registers
	Mem *Memory

	Keyboard io.Source // Character source for the getc trap.
	Console  io.Sink   // Character sink for the putc and puts traps.

	State State
	Ticks int // Instruction cycles since Reset.
}

// NewCpu creates a machine with zeroed registers and memory.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Mem: &Memory{},
	}

	return
}

// Defines for the machine constants.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(
		maps.All(_cpu_defines),
		maps.All(_memory_defines),
	)
}

// Reset clears the machine and loads a program image.
func (cpu *Cpu) Reset(prog *Program) {
	if cpu.Verbose {
		log.Printf("cpu: reset, base 0x%04x", prog.Base)
	}

	cpu.Reg = Registers{Pc: prog.Base}
	clear(cpu.Mem.cells[:])
	cpu.Mem.Copy(prog.Base, prog.Words)
	cpu.State = STATE_RUNNING
	cpu.Ticks = 0
}

// String returns the current machine state as a string.
func (cpu *Cpu) String() string {
	return fmt.Sprintf("%v state=%v ticks=%v", &cpu.Reg, cpu.State, cpu.Ticks)
}

// Tick fetches, decodes, and executes a single instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	instr, err := cpu.Mem.Load(cpu.Reg.Pc)
	if err != nil {
		return
	}

	// The PC advances before execute, so every PC-relative offset is
	// relative to the next instruction.
	cpu.Reg.Pc++

	op, err := Decode(instr)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Reg.Pc-1, op)
	}

	err = cpu.Execute(op)
	if err != nil {
		return
	}

	cpu.Ticks++

	return
}

// Execute performs a single decoded instruction against the register
// file and memory. The PC has already advanced past the instruction.
func (cpu *Cpu) Execute(op Op) (err error) {
	regs := &cpu.Reg
	mem := cpu.Mem

	switch op.Kind {
	case OP_ADD_REG:
		regs.Set(op.Dst, regs.Get(op.Src)+regs.Get(op.Src2))
	case OP_ADD_IMM:
		regs.Set(op.Dst, regs.Get(op.Src)+op.Imm)
	case OP_AND_REG:
		regs.Set(op.Dst, regs.Get(op.Src)&regs.Get(op.Src2))
	case OP_AND_IMM:
		regs.Set(op.Dst, regs.Get(op.Src)&op.Imm)
	case OP_NOT:
		regs.Set(op.Dst, ^regs.Get(op.Src))
	case OP_LOAD:
		var value uint16
		value, err = mem.Load(regs.Pc + op.Offset)
		if err != nil {
			return
		}
		regs.Set(op.Dst, value)
	case OP_LOAD_IND:
		var address, value uint16
		address, err = mem.Load(regs.Pc + op.Offset)
		if err != nil {
			return
		}
		value, err = mem.Load(address)
		if err != nil {
			return
		}
		regs.Set(op.Dst, value)
	case OP_LOAD_REG:
		var value uint16
		value, err = mem.Load(regs.Get(op.Base) + op.Offset)
		if err != nil {
			return
		}
		regs.Set(op.Dst, value)
	case OP_LOAD_EA:
		regs.Set(op.Dst, regs.Pc+op.Offset)
	case OP_STORE:
		mem.Store(regs.Pc+op.Offset, regs.Get(op.Src))
	case OP_STORE_IND:
		var address uint16
		address, err = mem.Load(regs.Pc + op.Offset)
		if err != nil {
			return
		}
		mem.Store(address, regs.Get(op.Src))
	case OP_STORE_REG:
		mem.Store(regs.Get(op.Base)+op.Offset, regs.Get(op.Src))
	case OP_CALL:
		regs.Set(7, regs.Pc)
		regs.Pc += op.Offset
	case OP_CALL_REG:
		regs.Pc = regs.Get(op.Src)
	case OP_BRANCH:
		if (op.N && regs.N) || (op.Z && regs.Z) || (op.P && regs.P) {
			regs.Pc += op.Offset
		}
	case OP_JUMP:
		regs.Pc = regs.Get(op.Base)
	case OP_TRAP:
		err = cpu.trap(Trap(op.Vector))
	}

	return
}

// trap dispatches a system call vector.
func (cpu *Cpu) trap(vector Trap) (err error) {
	switch vector {
	case TRAP_GETC:
		if cpu.Keyboard == nil {
			err = ErrKeyboardMissing
			return
		}

		var key uint16
		key, err = cpu.Keyboard.ReadKey()
		if err != nil {
			return
		}
		cpu.Reg.Set(0, key)
	case TRAP_PUTC:
		if cpu.Console == nil {
			err = ErrConsoleMissing
			return
		}

		err = cpu.Console.WriteChar(byte(cpu.Reg.Get(0)))
	case TRAP_PUTS:
		if cpu.Console == nil {
			err = ErrConsoleMissing
			return
		}

		// Walks memory through Load, so the keyboard status cell is
		// cleared on every character, same as any other access.
		for address := cpu.Reg.Get(0); ; address++ {
			var word uint16
			word, err = cpu.Mem.Load(address)
			if err != nil {
				return
			}
			if word == 0 {
				break
			}
			err = cpu.Console.WriteChar(byte(word))
			if err != nil {
				return
			}
		}
	case TRAP_HALT:
		cpu.State = STATE_HALTED
	default:
		err = ErrVector(vector)
	}

	return
}
