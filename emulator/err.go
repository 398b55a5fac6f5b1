package emulator

import "fmt"

// ErrRuntime wraps an execution error with the address of the
// instruction that raised it.
type ErrRuntime struct {
	Pc  uint16
	Err error
}

func (e *ErrRuntime) Error() string {
	return fmt.Sprintf("pc 0x%04x %v", e.Pc, e.Err)
}

func (e *ErrRuntime) Unwrap() error {
	return e.Err
}
