// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const BASE_DEFAULT = uint16(0x3000) // Load base when no .orig is given.

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Opcode represents a line of assembled code with its source location
// and generated words.
type Opcode struct {
	LineNo    int
	Index     int // Word index relative to the program base.
	Words     []string
	Codes     []uint16
	LinkLabel string // Label to link into the last code's offset field.
	LinkWidth int    // Signed width of the offset field being linked.
}

// Assembler is a single pass macro assembler for the machine's
// instruction set.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Base    uint16   // Load base address, set by .orig.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to word indexes.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansion int // Count of macro expansions, for @ label uniquing.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to indexes.
var regMap = map[string]Reg{
	"r0": 0,
	"r1": 1,
	"r2": 2,
	"r3": 3,
	"r4": 4,
	"r5": 5,
	"r6": 6,
	"r7": 7,
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}
	if word[0] == '#' {
		// Decimal immediates in the classic syntax.
		word = word[1:]
	}

	v64, perr := strconv.ParseInt(word, 0, 32)
	if perr != nil || v64 > 0xffff || v64 < -0x8000 {
		err = ErrParseNumber(word)
		return
	}

	value = uint16(v64)
	return
}

// regOf returns the register named by a word.
func (asm *Assembler) regOf(word string) (reg Reg, err error) {
	reg, ok := regMap[word]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// fits reports whether the value fits the signed field width.
func fits(value uint16, width int) bool {
	v := int(int16(value))
	return v >= -(1<<(width-1)) && v < 1<<(width-1)
}

// linkOffset computes the offset field from the word after the
// instruction at index to an absolute target address.
func (asm *Assembler) linkOffset(index int, target uint16, width int) (offset uint16, err error) {
	delta := target - (asm.Base + uint16(index) + 1)
	if !fits(delta, width) {
		err = ErrRange{Value: target, Width: width}
		return
	}

	offset = delta & (uint16(1)<<width - 1)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "0":
				str = "\x00"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if len(words) > 0 && words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		if len(word) == 0 {
			continue
		}

		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIndex()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		// Each expansion gets its own @ label namespace, so a macro
		// with internal labels can be invoked more than once.
		asm.expansion++
		marker := fmt.Sprintf("%v_%v_", name, asm.expansion)

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", marker)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIndex gets the word index one past the last assembled code.
func (asm *Assembler) currentIndex() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Index + len(last.Codes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Base = BASE_DEFAULT
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.expansion = 0
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		all_words := strings.Split(line, " ")

		var words []string
		for _, single := range all_words {
			if len(single) > 0 {
				words = append(words, single)
			}
		}

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of branch and load labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		index, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = ErrLabelMissing(op.LinkLabel)
			return
		}
		var offset uint16
		offset, err = asm.linkOffset(op.Index+len(op.Codes)-1, asm.Base+uint16(index), op.LinkWidth)
		if err != nil {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			return
		}
		op.Codes[len(op.Codes)-1] |= offset
	}

	prog = &Program{Base: asm.Base}
	for _, op := range asm.Opcode {
		prog.Words = append(prog.Words, op.Codes...)
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint16
	var label string
	var width int

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Index: asm.currentIndex(), Words: initial_words,
			Codes: codes, LinkLabel: label, LinkWidth: width}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	// Alternate syntax substitutions
	switch {
	case words[0] == "ret":
		// ret => jmp r7
		words = append([]string{"jmp", "r7"}, words[1:]...)
	case words[0] == "getc":
		words = append([]string{"trap", fmt.Sprintf("%#v", uint8(TRAP_GETC))}, words[1:]...)
	case words[0] == "putc" || words[0] == "out":
		words = append([]string{"trap", fmt.Sprintf("%#v", uint8(TRAP_PUTC))}, words[1:]...)
	case words[0] == "puts":
		words = append([]string{"trap", fmt.Sprintf("%#v", uint8(TRAP_PUTS))}, words[1:]...)
	case words[0] == "halt":
		words = append([]string{"trap", fmt.Sprintf("%#v", uint8(TRAP_HALT))}, words[1:]...)
	case len(words[0]) > 2 && strings.HasPrefix(words[0], "br"):
		// brnzp TARGET => br nzp TARGET
		words = append([]string{"br", words[0][2:]}, words[1:]...)
	default:
		// unchanged
	}

	// emitRel encodes an instruction whose last field is a PC-relative
	// target: either a number resolved now, or a label linked later.
	emitRel := func(op Op, target string, w int) {
		value, verr := asm.valueOf(target)
		if verr == nil {
			var offset uint16
			offset, err = asm.linkOffset(asm.currentIndex(), value, w)
			if err != nil {
				return
			}
			op.Offset = offset
			codes = append(codes, op.Encode())
			return
		}

		label = target
		width = w
		codes = append(codes, op.Encode())
	}

	switch words[0] {
	case "br":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		op := Op{Kind: OP_BRANCH}
		target := words[1]
		if len(words) == 3 {
			// "-" is the never-taken branch, as Op.String renders it.
			if words[1] != "-" {
				for _, flag := range words[1] {
					switch flag {
					case 'n':
						op.N = true
					case 'z':
						op.Z = true
					case 'p':
						op.P = true
					default:
						err = ErrFlagsInvalid
						return
					}
				}
			}
			target = words[2]
		} else {
			// No flags tests all three.
			op.N = true
			op.Z = true
			op.P = true
		}
		emitRel(op, target, 9)
	case "add", "and":
		if len(words) < 4 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 4 {
			err = ErrOpcodeExtraArgs
			return
		}
		op := Op{}
		op.Dst, err = asm.regOf(words[1])
		if err != nil {
			return
		}
		op.Src, err = asm.regOf(words[2])
		if err != nil {
			return
		}
		src2, is_reg := regMap[words[3]]
		if is_reg {
			op.Src2 = src2
			op.Kind = OP_ADD_REG
			if words[0] == "and" {
				op.Kind = OP_AND_REG
			}
		} else {
			var value uint16
			value, err = asm.valueOf(words[3])
			if err != nil {
				return
			}
			if !fits(value, 5) {
				err = ErrRange{Value: value, Width: 5}
				return
			}
			op.Imm = value
			op.Kind = OP_ADD_IMM
			if words[0] == "and" {
				op.Kind = OP_AND_IMM
			}
		}
		codes = append(codes, op.Encode())
	case "not":
		if len(words) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		op := Op{Kind: OP_NOT}
		op.Dst, err = asm.regOf(words[1])
		if err != nil {
			return
		}
		op.Src, err = asm.regOf(words[2])
		if err != nil {
			return
		}
		codes = append(codes, op.Encode())
	case "ld", "ldi", "lea", "st", "sti":
		if len(words) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var reg Reg
		reg, err = asm.regOf(words[1])
		if err != nil {
			return
		}
		var op Op
		switch words[0] {
		case "ld":
			op = Op{Kind: OP_LOAD, Dst: reg}
		case "ldi":
			op = Op{Kind: OP_LOAD_IND, Dst: reg}
		case "lea":
			op = Op{Kind: OP_LOAD_EA, Dst: reg}
		case "st":
			op = Op{Kind: OP_STORE, Src: reg}
		case "sti":
			op = Op{Kind: OP_STORE_IND, Src: reg}
		}
		emitRel(op, words[2], 9)
	case "ldr", "str":
		if len(words) < 4 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 4 {
			err = ErrOpcodeExtraArgs
			return
		}
		op := Op{Kind: OP_LOAD_REG}
		if words[0] == "str" {
			op.Kind = OP_STORE_REG
		}
		var reg Reg
		reg, err = asm.regOf(words[1])
		if err != nil {
			return
		}
		if op.Kind == OP_LOAD_REG {
			op.Dst = reg
		} else {
			op.Src = reg
		}
		op.Base, err = asm.regOf(words[2])
		if err != nil {
			return
		}
		var value uint16
		value, err = asm.valueOf(words[3])
		if err != nil {
			return
		}
		if !fits(value, 6) {
			err = ErrRange{Value: value, Width: 6}
			return
		}
		op.Offset = value
		codes = append(codes, op.Encode())
	case "jsr":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		emitRel(Op{Kind: OP_CALL}, words[1], 11)
	case "jsrr", "jmp":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var reg Reg
		reg, err = asm.regOf(words[1])
		if err != nil {
			return
		}
		op := Op{Kind: OP_CALL_REG, Src: reg}
		if words[0] == "jmp" {
			op = Op{Kind: OP_JUMP, Base: reg}
		}
		codes = append(codes, op.Encode())
	case "trap":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var value uint16
		value, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if value > 0xff {
			err = ErrRange{Value: value, Width: 8}
			return
		}
		codes = append(codes, Op{Kind: OP_TRAP, Vector: uint8(value)}.Encode())
	case ".orig":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if asm.currentIndex() != 0 {
			err = ErrOrigLate
			return
		}
		asm.Base, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
	case ".fill":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint16
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			codes = append(codes, value)
		}
	case ".blkw":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var count uint16
		count, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		for range int(count) {
			codes = append(codes, 0)
		}
	case ".stringz":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		text, uerr := strconv.Unquote(strings.Join(words[1:], " "))
		if uerr != nil {
			err = ErrStringSyntax
			return
		}
		for _, ch := range []byte(text) {
			codes = append(codes, uint16(ch))
		}
		codes = append(codes, 0)
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
