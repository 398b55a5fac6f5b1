package io

import (
	"errors"
	"io"
)

// Keyboard is a Source reading single bytes from an input stream,
// typically a terminal in raw mode.
type Keyboard struct {
	Input io.Reader
}

var _ Source = (*Keyboard)(nil)

// ReadKey blocks on one byte from the input stream.
func (kb *Keyboard) ReadKey() (key uint16, err error) {
	var one [1]byte
	_, err = io.ReadFull(kb.Input, one[:])
	if err != nil {
		err = errors.Join(ErrKeyboard, err)
		return
	}

	key = uint16(one[0])
	return
}
