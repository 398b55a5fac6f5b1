// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/lc3vm/cpu"
	"github.com/ezrec/lc3vm/emulator"
)

func main() {
	var output string
	var listing bool
	var verbose bool

	flag.StringVar(&output, "o", "out.obj", "Output image file")
	flag.BoolVar(&listing, "l", false, "Print an assembly listing")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected a single source file, got: %v", os.Args[0], flag.Args())
	}

	filename := flag.Arg(0)
	inf, err := os.Open(filename)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	for attr, value := range emulator.NewEmulator().Defines() {
		asm.Predefine(attr, value)
	}

	prog, err := asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}

	if listing {
		for addr, code := range prog.Codes() {
			op, err := cpu.Decode(code)
			if err != nil {
				fmt.Printf("%04x: %04x  .fill %#v\n", addr, code, code)
				continue
			}
			fmt.Printf("%04x: %04x  %v\n", addr, code, op)
		}
	}

	err = os.WriteFile(output, prog.Binary(), 0o644)
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}
}
