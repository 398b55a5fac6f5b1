package cpu

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(BASE_DEFAULT, prog.Base)
	assert.Equal(0, len(prog.Words))

	assert.Equal("0", asm.Equate["LINENO"])
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssemblerInstructions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".orig 0x3000",
		"start: add r1 r2 r3",
		"and r5 r1 0",
		"not r1 r1",
		"ldr r7 r6 -1",
		"str r0 r1 2",
		"jsrr r3",
		"jmp r7",
		"trap 0x25",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{2, 0, []string{"add", "r1", "r2", "r3"}, []uint16{0x1283}, "", 0},
		{3, 1, []string{"and", "r5", "r1", "0"}, []uint16{0x5a60}, "", 0},
		{4, 2, []string{"not", "r1", "r1"}, []uint16{0x927f}, "", 0},
		{5, 3, []string{"ldr", "r7", "r6", "-1"}, []uint16{0x6fbf}, "", 0},
		{6, 4, []string{"str", "r0", "r1", "2"}, []uint16{0x7042}, "", 0},
		{7, 5, []string{"jsrr", "r3"}, []uint16{0x40c0}, "", 0},
		{8, 6, []string{"jmp", "r7"}, []uint16{0xc1c0}, "", 0},
		{9, 7, []string{"trap", "0x25"}, []uint16{0xf025}, "", 0},
	}

	opEqual(t, expected, asm.Opcode)

	assert.Equal(uint16(0x3000), prog.Base)
	assert.Equal(0, asm.Label["start"])
	assert.Equal(8, len(prog.Words))
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"loop: add r0 r0 -1",
		"br p loop",
		"lea r1 loop",
		"jsr loop",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{1, 0, []string{"add", "r0", "r0", "-1"}, []uint16{0x103f}, "", 0},
		{2, 1, []string{"br", "p", "loop"}, []uint16{0x03fe}, "loop", 9},
		{3, 2, []string{"lea", "r1", "loop"}, []uint16{0xe3fd}, "loop", 9},
		{4, 3, []string{"jsr", "loop"}, []uint16{0x4ffc}, "loop", 11},
	}

	opEqual(t, expected, asm.Opcode)

	assert.Equal([]uint16{0x103f, 0x03fe, 0xe3fd, 0x4ffc}, prog.Words)
}

func TestAssemblerBranchNever(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// The never-taken spelling emitted by instruction listings.
	program := []string{
		"br - skip",
		"skip: halt",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal([]uint16{0x0000, 0xf025}, prog.Words)

	op, err := Decode(prog.Words[0])
	assert.NoError(err)
	assert.Equal("br - 0", op.String())
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"data: .fill 0x1234 -1",
		".blkw 2",
		".stringz \"hi\\n\"",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{1, 0, []string{".fill", "0x1234", "-1"}, []uint16{0x1234, 0xffff}, "", 0},
		{2, 2, []string{".blkw", "2"}, []uint16{0, 0}, "", 0},
		{3, 4, []string{".stringz", "\"hi\\n\""}, []uint16{'h', 'i', '\n', 0}, "", 0},
	}

	opEqual(t, expected, asm.Opcode)

	assert.Equal(8, len(prog.Words))
}

func TestAssemblerAliases(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"getc",
		"putc",
		"puts",
		"halt",
		"ret",
		"brnzp next",
		"next: .fill 0",
	}

	_, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{1, 0, []string{"getc"}, []uint16{0xf020}, "", 0},
		{2, 1, []string{"putc"}, []uint16{0xf021}, "", 0},
		{3, 2, []string{"puts"}, []uint16{0xf022}, "", 0},
		{4, 3, []string{"halt"}, []uint16{0xf025}, "", 0},
		{5, 4, []string{"ret"}, []uint16{0xc1c0}, "", 0},
		{6, 5, []string{"brnzp", "next"}, []uint16{0x0e00}, "next", 9},
		{7, 6, []string{".fill", "0"}, []uint16{0}, "", 0},
	}

	opEqual(t, expected, asm.Opcode)
}

func TestAssemblerOrig(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".orig 0x5000",
		"here: lea r0 here",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	assert.Equal(uint16(0x5000), prog.Base)
	// Label offsets are relative, so the base cancels out.
	assert.Equal([]uint16{0xe1ff}, prog.Words)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".equ TEN 10",
		"add r0 r0 $(TEN // 2)",
		"add r1 r1 '\\n'",
	}

	_, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(errors.Unwrap(err))
	}

	expected := []Opcode{
		{2, 0, []string{"add", "r0", "r0", "0x5"}, []uint16{0x1025}, "", 0},
		{3, 1, []string{"add", "r1", "r1", "10"}, []uint16{0x126a}, "", 0},
	}

	opEqual(t, expected, asm.Opcode)
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".macro bump rn",
		"add rn rn 1",
		".endm",
		"bump r4",
		"bump r5",
	}

	_, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{2, 0, []string{"add", "r4", "r4", "1"}, []uint16{0x1921}, "", 0},
		{2, 1, []string{"add", "r5", "r5", "1"}, []uint16{0x1b61}, "", 0},
	}

	opEqual(t, expected, asm.Opcode)
}

func TestAssemblerMacroLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// The @ marker uniquifies labels per expansion, even when the
	// expansion happens inside another macro.
	program := []string{
		".macro spin",
		"@loop: br nzp @loop",
		".endm",
		".macro twice",
		"spin",
		"spin",
		".endm",
		"twice",
		"spin",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(3, len(asm.Label))
	assert.Equal([]uint16{0x0fff, 0x0fff, 0x0fff}, prog.Words)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("KB_STATUS", fmt.Sprintf("%#v", KB_STATUS))

	program := []string{
		".fill KB_STATUS",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	assert.Equal([]uint16{0xfe00}, prog.Words)
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
	}){
		{"DUP:\nDUP:\n", 2},
		{"add r0 r0\n", 1},
		{"add r0 r0 r1 r2\n", 1},
		{"add r0 r0 16\n", 1},
		{"add r9 r0 1\n", 1},
		{"add r0 r9 1\n", 1},
		{"and r0 r0\n", 1},
		{"not r0\n", 1},
		{"not r0 r0 r0\n", 1},
		{"br x target\n", 1},
		{"br\n", 1},
		{"br n z p target\n", 1},
		{"br p 0x4000\n", 1},
		{"ld r0\n", 1},
		{"ld r0 a b\n", 1},
		{"ld r9 0\n", 1},
		{"ldr r0 r1\n", 1},
		{"ldr r0 r1 0x40\n", 1},
		{"ldr r0 r9 0\n", 1},
		{"str r9 r1 0\n", 1},
		{"jsr\n", 1},
		{"jsr a b\n", 1},
		{"jsrr\n", 1},
		{"jsrr r9\n", 1},
		{"jmp r9\n", 1},
		{"trap\n", 1},
		{"trap 0x100\n", 1},
		{"trap 0x20 0x21\n", 1},
		{"frobnicate\n", 1},
		{".equ\n", 1},
		{".equ A\n", 1},
		{".equ A 1\n.equ A 2\n", 2},
		{"halt\n.orig 0x4000\n", 2},
		{".orig\n", 1},
		{".fill\n", 1},
		{".fill nothing\n", 1},
		{".blkw\n", 1},
		{".blkw zed\n", 1},
		{".stringz\n", 1},
		{".stringz Hello\n", 1},
		{".macro A\n.macro B\n.endm\n.endm\n", 2},
		{".macro A\n.endm\n.macro A\n.endm\n", 3},
		{".macro\n", 1},
		{".endm\n", 1},
		{".macro A\nhalt\n", 2},
		{".macro A B\n.endm\nA\n", 3},
		{"A: lea r0 nowhere\n", 1},
		{"add r0 r0 'ab'\n", 1},
		{"add r0 r0 $(bogus)\n", 1},
		{"br p far\nfar: .blkw 0x200\nbr p far\n", 3},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
		}
	}
}
