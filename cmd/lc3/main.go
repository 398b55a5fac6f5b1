// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"github.com/ezrec/lc3vm/cpu"
	"github.com/ezrec/lc3vm/emulator"
)

// rawMode puts the controlling terminal into unbuffered, no-echo mode,
// so that keyboard reads see single keystrokes. The returned func
// restores the prior settings. A non-terminal stdin is left alone.
func rawMode() (restore func()) {
	fd := os.Stdin.Fd()

	var saved unix.Termios
	err := termios.Tcgetattr(fd, &saved)
	if err != nil {
		return func() {}
	}

	raw := saved
	raw.Lflag &^= unix.ICANON | unix.ECHO
	err = termios.Tcsetattr(fd, termios.TCSANOW, &raw)
	if err != nil {
		return func() {}
	}

	return func() { termios.Tcsetattr(fd, termios.TCSANOW, &saved) }
}

func main() {
	var verbose bool

	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected a single image file, got: %v", os.Args[0], flag.Args())
	}

	filename := flag.Arg(0)
	inf, err := os.Open(filename)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}
	defer inf.Close()

	prog, err := cpu.ReadProgram(inf)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}

	fmt.Printf("Loaded %v (%d instructions) onto base 0x%x\n", filename, len(prog.Words), prog.Base)

	emu := emulator.NewEmulator()
	emu.Program = prog
	emu.Verbose = verbose
	emu.Keyboard.Input = os.Stdin
	emu.Console.Output = os.Stdout

	restore := rawMode()
	defer restore()

	err = emu.Run()
	if err != nil {
		restore()
		log.Fatal(err)
	}

	fmt.Println("Halt")
}
