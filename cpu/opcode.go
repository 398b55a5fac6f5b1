package cpu

import (
	"fmt"
)

// OpKind identifies the decoded instruction variant.
type OpKind int

//go:generate go tool stringer -linecomment -type=OpKind
const (
	OP_BRANCH    = OpKind(0)  // br
	OP_ADD_REG   = OpKind(1)  // add
	OP_ADD_IMM   = OpKind(2)  // add
	OP_LOAD      = OpKind(3)  // ld
	OP_STORE     = OpKind(4)  // st
	OP_CALL      = OpKind(5)  // jsr
	OP_CALL_REG  = OpKind(6)  // jsrr
	OP_AND_REG   = OpKind(7)  // and
	OP_AND_IMM   = OpKind(8)  // and
	OP_LOAD_REG  = OpKind(9)  // ldr
	OP_STORE_REG = OpKind(10) // str
	OP_NOT       = OpKind(11) // not
	OP_LOAD_IND  = OpKind(12) // ldi
	OP_STORE_IND = OpKind(13) // sti
	OP_JUMP      = OpKind(14) // jmp
	OP_LOAD_EA   = OpKind(15) // lea
	OP_TRAP      = OpKind(16) // trap
)

// Reg is a general-purpose register index, 0 through 7. Register 7
// receives return addresses from OP_CALL by convention.
type Reg uint16

func (reg Reg) String() string {
	return fmt.Sprintf("r%d", uint16(reg))
}

// Op is a decoded instruction. Only the fields the variant's format
// defines are meaningful; an Op is immutable once decoded.
type Op struct {
	Kind OpKind

	Dst  Reg // Destination register.
	Src  Reg // Source register.
	Src2 Reg // Second source register.
	Base Reg // Base register for register-relative addressing.

	N bool // Test the negative flag (OP_BRANCH).
	Z bool // Test the zero flag (OP_BRANCH).
	P bool // Test the positive flag (OP_BRANCH).

	Imm    uint16 // Sign-extended immediate.
	Offset uint16 // Sign-extended PC-relative or base-relative offset.
	Vector uint8  // Trap vector.
}

// sel extracts the unsigned field in bits hi..lo of the word.
func sel(word uint16, hi, lo int) uint16 {
	width := hi - lo + 1
	mask := uint16(1)<<width - 1

	return (word >> lo) & mask
}

// sext extracts the field in bits hi..lo and sign-extends it to 16
// bits: if the field's top bit is set, all higher bits are set too.
func sext(word uint16, hi, lo int) uint16 {
	width := hi - lo + 1
	field := sel(word, hi, lo)
	if field&(1<<(width-1)) != 0 {
		field |= ^uint16(0) << width
	}

	return field
}

func selBit(word uint16, bit int) bool {
	return sel(word, bit, bit) != 0
}

// Decode decodes a single instruction word. The top 4 bits select the
// variant; the remaining fields are extracted by fixed bit ranges.
// The reserved opcodes 0b1000 and 0b1101 are decode failures.
func Decode(word uint16) (op Op, err error) {
	switch sel(word, 15, 12) {
	case 0b0000:
		op = Op{Kind: OP_BRANCH,
			N:      selBit(word, 11),
			Z:      selBit(word, 10),
			P:      selBit(word, 9),
			Offset: sext(word, 8, 0),
		}
	case 0b0001:
		if selBit(word, 5) {
			op = Op{Kind: OP_ADD_IMM,
				Dst: Reg(sel(word, 11, 9)),
				Src: Reg(sel(word, 8, 6)),
				Imm: sext(word, 4, 0),
			}
		} else {
			op = Op{Kind: OP_ADD_REG,
				Dst:  Reg(sel(word, 11, 9)),
				Src:  Reg(sel(word, 8, 6)),
				Src2: Reg(sel(word, 2, 0)),
			}
		}
	case 0b0010:
		op = Op{Kind: OP_LOAD, Dst: Reg(sel(word, 11, 9)), Offset: sext(word, 8, 0)}
	case 0b0011:
		op = Op{Kind: OP_STORE, Src: Reg(sel(word, 11, 9)), Offset: sext(word, 8, 0)}
	case 0b0100:
		if selBit(word, 11) {
			op = Op{Kind: OP_CALL, Offset: sext(word, 10, 0)}
		} else {
			op = Op{Kind: OP_CALL_REG, Src: Reg(sel(word, 8, 6))}
		}
	case 0b0101:
		if selBit(word, 5) {
			op = Op{Kind: OP_AND_IMM,
				Dst: Reg(sel(word, 11, 9)),
				Src: Reg(sel(word, 8, 6)),
				Imm: sext(word, 4, 0),
			}
		} else {
			op = Op{Kind: OP_AND_REG,
				Dst:  Reg(sel(word, 11, 9)),
				Src:  Reg(sel(word, 8, 6)),
				Src2: Reg(sel(word, 2, 0)),
			}
		}
	case 0b0110:
		op = Op{Kind: OP_LOAD_REG,
			Dst:    Reg(sel(word, 11, 9)),
			Base:   Reg(sel(word, 8, 6)),
			Offset: sext(word, 5, 0),
		}
	case 0b0111:
		op = Op{Kind: OP_STORE_REG,
			Src:    Reg(sel(word, 11, 9)),
			Base:   Reg(sel(word, 8, 6)),
			Offset: sext(word, 5, 0),
		}
	case 0b1001:
		op = Op{Kind: OP_NOT, Dst: Reg(sel(word, 11, 9)), Src: Reg(sel(word, 8, 6))}
	case 0b1010:
		op = Op{Kind: OP_LOAD_IND, Dst: Reg(sel(word, 11, 9)), Offset: sext(word, 8, 0)}
	case 0b1011:
		op = Op{Kind: OP_STORE_IND, Src: Reg(sel(word, 11, 9)), Offset: sext(word, 8, 0)}
	case 0b1100:
		op = Op{Kind: OP_JUMP, Base: Reg(sel(word, 8, 6))}
	case 0b1110:
		op = Op{Kind: OP_LOAD_EA, Dst: Reg(sel(word, 11, 9)), Offset: sext(word, 8, 0)}
	case 0b1111:
		op = Op{Kind: OP_TRAP, Vector: uint8(sel(word, 7, 0))}
	default:
		err = ErrOpcode(word)
	}

	return
}

// Encode packs the instruction back into its word form. Sign-extended
// fields are truncated to their field widths; don't-care bits are
// emitted in their conventional form.
func (op Op) Encode() (word uint16) {
	switch op.Kind {
	case OP_BRANCH:
		if op.N {
			word |= 1 << 11
		}
		if op.Z {
			word |= 1 << 10
		}
		if op.P {
			word |= 1 << 9
		}
		word |= op.Offset & 0x1ff
	case OP_ADD_REG:
		word = 0b0001<<12 | uint16(op.Dst)<<9 | uint16(op.Src)<<6 | uint16(op.Src2)
	case OP_ADD_IMM:
		word = 0b0001<<12 | uint16(op.Dst)<<9 | uint16(op.Src)<<6 | 1<<5 | op.Imm&0x1f
	case OP_LOAD:
		word = 0b0010<<12 | uint16(op.Dst)<<9 | op.Offset&0x1ff
	case OP_STORE:
		word = 0b0011<<12 | uint16(op.Src)<<9 | op.Offset&0x1ff
	case OP_CALL:
		word = 0b0100<<12 | 1<<11 | op.Offset&0x7ff
	case OP_CALL_REG:
		word = 0b0100<<12 | uint16(op.Src)<<6
	case OP_AND_REG:
		word = 0b0101<<12 | uint16(op.Dst)<<9 | uint16(op.Src)<<6 | uint16(op.Src2)
	case OP_AND_IMM:
		word = 0b0101<<12 | uint16(op.Dst)<<9 | uint16(op.Src)<<6 | 1<<5 | op.Imm&0x1f
	case OP_LOAD_REG:
		word = 0b0110<<12 | uint16(op.Dst)<<9 | uint16(op.Base)<<6 | op.Offset&0x3f
	case OP_STORE_REG:
		word = 0b0111<<12 | uint16(op.Src)<<9 | uint16(op.Base)<<6 | op.Offset&0x3f
	case OP_NOT:
		word = 0b1001<<12 | uint16(op.Dst)<<9 | uint16(op.Src)<<6 | 0x3f
	case OP_LOAD_IND:
		word = 0b1010<<12 | uint16(op.Dst)<<9 | op.Offset&0x1ff
	case OP_STORE_IND:
		word = 0b1011<<12 | uint16(op.Src)<<9 | op.Offset&0x1ff
	case OP_JUMP:
		word = 0b1100<<12 | uint16(op.Base)<<6
	case OP_LOAD_EA:
		word = 0b1110<<12 | uint16(op.Dst)<<9 | op.Offset&0x1ff
	case OP_TRAP:
		word = 0b1111<<12 | uint16(op.Vector)
	}

	return
}

// String returns the assembly language representation of this instruction.
func (op Op) String() (out string) {
	kind := op.Kind.String()

	switch op.Kind {
	case OP_BRANCH:
		var flags string
		if op.N {
			flags += "n"
		}
		if op.Z {
			flags += "z"
		}
		if op.P {
			flags += "p"
		}
		if len(flags) == 0 {
			flags = "-"
		}
		out = fmt.Sprintf("%v %v %d", kind, flags, int16(op.Offset))
	case OP_ADD_REG, OP_AND_REG:
		out = fmt.Sprintf("%v %v %v %v", kind, op.Dst, op.Src, op.Src2)
	case OP_ADD_IMM, OP_AND_IMM:
		out = fmt.Sprintf("%v %v %v %d", kind, op.Dst, op.Src, int16(op.Imm))
	case OP_LOAD, OP_LOAD_IND, OP_LOAD_EA:
		out = fmt.Sprintf("%v %v %d", kind, op.Dst, int16(op.Offset))
	case OP_STORE, OP_STORE_IND:
		out = fmt.Sprintf("%v %v %d", kind, op.Src, int16(op.Offset))
	case OP_LOAD_REG:
		out = fmt.Sprintf("%v %v %v %d", kind, op.Dst, op.Base, int16(op.Offset))
	case OP_STORE_REG:
		out = fmt.Sprintf("%v %v %v %d", kind, op.Src, op.Base, int16(op.Offset))
	case OP_CALL:
		out = fmt.Sprintf("%v %d", kind, int16(op.Offset))
	case OP_CALL_REG:
		out = fmt.Sprintf("%v %v", kind, op.Src)
	case OP_NOT:
		out = fmt.Sprintf("%v %v %v", kind, op.Dst, op.Src)
	case OP_JUMP:
		out = fmt.Sprintf("%v %v", kind, op.Base)
	case OP_TRAP:
		out = fmt.Sprintf("%v 0x%02x", kind, op.Vector)
	}

	return
}
