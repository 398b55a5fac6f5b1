package io

import (
	"errors"
	"io"
)

// Console is a Sink writing characters to an output stream one at a
// time, so interleaved program output stays in order.
type Console struct {
	Output io.Writer
}

var _ Sink = (*Console)(nil)

// WriteChar writes a single character to the output stream.
func (con *Console) WriteChar(ch byte) (err error) {
	_, err = con.Output.Write([]byte{ch})
	if err != nil {
		err = errors.Join(ErrConsole, err)
	}

	return
}
