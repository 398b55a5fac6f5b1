package cpu

import (
	"fmt"

	"github.com/ezrec/lc3vm/io"
)

const MEMORY_SIZE = 1 << 16 // Words of addressable memory.

// Memory-mapped keyboard device registers.
const (
	KB_STATUS = uint16(0xfe00)  // Keyboard status register.
	KB_DATA   = uint16(0xfe02)  // Keyboard data register.
	KB_READY  = uint16(1) << 15 // Ready bit in the status register.
)

var _memory_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%#v", MEMORY_SIZE),
	"KB_STATUS":   fmt.Sprintf("%#v", KB_STATUS),
	"KB_DATA":     fmt.Sprintf("%#v", KB_DATA),
	"KB_READY":    fmt.Sprintf("%#v", KB_READY),
}

// Memory is the machine's flat word-addressed memory with the keyboard
// device mapped at KB_STATUS/KB_DATA.
type Memory struct {
	Keyboard io.Source // Character source polled by Load.

	cells [MEMORY_SIZE]uint16
}

// Load returns the word at address. Every load polls the keyboard
// device: a load of KB_STATUS blocks on one character and latches it
// into the status and data cells; a load of any other address clears
// the status cell. The ready bit is therefore visible only to code
// that reads KB_STATUS with no intervening memory access.
func (mem *Memory) Load(address uint16) (value uint16, err error) {
	if address == KB_STATUS {
		if mem.Keyboard == nil {
			err = ErrKeyboardMissing
			return
		}

		var key uint16
		key, err = mem.Keyboard.ReadKey()
		if err != nil {
			return
		}
		mem.cells[KB_STATUS] = KB_READY
		mem.cells[KB_DATA] = key
	} else {
		mem.cells[KB_STATUS] = 0
	}

	value = mem.cells[address]
	return
}

// Store writes the word at address.
func (mem *Memory) Store(address uint16, value uint16) {
	mem.cells[address] = value
}

// Copy writes a contiguous block starting at base, wrapping address
// arithmetic modulo the memory size.
func (mem *Memory) Copy(base uint16, words []uint16) {
	for n, word := range words {
		mem.Store(base+uint16(n), word)
	}
}
