// Package io provides the character devices the machine talks to: a
// blocking keyboard Source and a console Sink. The execution loop and
// the memory-mapped keyboard registers consume these interfaces, so
// tests can substitute canned input for a real terminal.
package io

// Source produces one character code per blocking read. End of input
// is reported as an error, never as a fabricated character.
type Source interface {
	// ReadKey blocks until one character is available.
	ReadKey() (key uint16, err error)
}

// Sink accepts one byte-width character per call. Output must be
// observable in order, so implementations do not buffer across calls.
type Sink interface {
	// WriteChar writes a single character.
	WriteChar(ch byte) error
}
