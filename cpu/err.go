package cpu

import (
	"errors"

	"github.com/ezrec/lc3vm/translate"
)

var f = translate.From

var (
	// Image errors
	ErrImageOdd   = errors.New(f("image has odd byte length"))
	ErrImageEmpty = errors.New(f("image has no words"))

	// Device errors
	ErrKeyboardMissing = errors.New(f("no keyboard attached"))
	ErrConsoleMissing  = errors.New(f("no console attached"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOrigLate           = errors.New(f(".orig after code"))
	ErrStringSyntax       = errors.New(f(".stringz syntax"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrFlagsInvalid       = errors.New(f("branch flags invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrOpcode is a decode failure carrying the offending instruction word.
type ErrOpcode uint16

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%04x", uint16(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrVector is an unknown trap vector.
type ErrVector uint8

func (ev ErrVector) Error() string {
	return f("unknown trap vector 0x%02x", uint8(ev))
}

func (ev ErrVector) Is(err error) (ok bool) {
	_, ok = err.(ErrVector)
	return
}

// ErrRange reports a value that does not fit its instruction field.
type ErrRange struct {
	Value uint16
	Width int
}

func (err ErrRange) Error() string {
	return f("value 0x%04x out of %d-bit range", err.Value, err.Width)
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
