package cpu

import (
	"encoding/binary"
	"io"
	"iter"
)

// Program is a loadable image: a base address and the contiguous words
// copied into memory starting at that address. A Program exists only
// to carry the image from loader or assembler into Memory.
type Program struct {
	Base  uint16
	Words []uint16
}

// ReadProgram reads a big-endian program image. The first word is the
// load base address; all remaining words are the image. An odd byte
// length or an empty file is a format error.
func ReadProgram(input io.Reader) (prog *Program, err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}
	if len(data)%2 != 0 {
		err = ErrImageOdd
		return
	}
	if len(data) == 0 {
		err = ErrImageEmpty
		return
	}

	prog = &Program{
		Base: binary.BigEndian.Uint16(data),
	}
	for at := 2; at < len(data); at += 2 {
		prog.Words = append(prog.Words, binary.BigEndian.Uint16(data[at:]))
	}

	return
}

// Binary returns the big-endian byte form of the image.
func (prog *Program) Binary() (data []byte) {
	data = binary.BigEndian.AppendUint16(data, prog.Base)
	for _, word := range prog.Words {
		data = binary.BigEndian.AppendUint16(data, word)
	}

	return
}

// Codes iterates over the image as address, word pairs.
func (prog *Program) Codes() iter.Seq2[uint16, uint16] {
	return func(yield func(address, word uint16) bool) {
		for n, word := range prog.Words {
			if !yield(prog.Base+uint16(n), word) {
				return
			}
		}
	}
}
