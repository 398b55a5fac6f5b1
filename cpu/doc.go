// Package cpu implements the 16-bit word machine and its assembler.
//
// The machine consists of eight general-purpose registers (r0-r7), a
// program counter, three mutually-exclusive condition flags (N/Z/P),
// and a flat 65536-word memory with a memory-mapped keyboard device.
// The execution loop fetches, decodes, and executes one instruction
// per tick; system calls are dispatched through trap vectors.
//
// The assembler provides an assembly language for the instruction set,
// supporting macros, labels, equates, and compile-time expression
// evaluation.
package cpu
