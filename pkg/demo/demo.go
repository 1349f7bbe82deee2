// Package demo holds the built-in demo programs as assembly source and
// runs them with per-instruction trace output.
package demo

import (
	"fmt"
	"io"

	"github.com/oisee/vm16/pkg/asm"
	"github.com/oisee/vm16/pkg/cpu"
)

// Built-in demo names.
const (
	Fibonacci = "fibonacci"
	Hello     = "hello"
	Timer     = "timer"
)

// Names lists the available demos.
var Names = []string{Fibonacci, Hello, Timer}

// fibonacciSource computes F(5) with B holding the previous value, D the
// current value and C the loop counter. Assembling it reproduces the
// reference machine's hand-encoded image byte for byte, including the
// 3-byte bare POP.
const fibonacciSource = `
; F(5): start with F(0)=0, F(1)=1, iterate 4 times
        LOAD #0
        MOV A B         ; B = previous
        LOAD #1
        MOV A D         ; D = current
        LOAD #4
        MOV A C         ; C = iterations left
loop:   LOAD D
        ADD B           ; A = current + previous
        PUSH A
        LOAD D
        MOV A B         ; previous = old current
        POP             ; A = next
        MOV A D         ; current = next
        LOAD C
        SUB #1
        MOV A C
        CMP #0
        JNZ #loop
        HALT
`

// helloSource walks a zero-terminated message through B and writes each
// byte to the console port. The message itself is preloaded at
// messageAddr by the runner.
const helloSource = `
        LOAD #0x0100
        MOV A B         ; B = message pointer
loop:   LOAD [B]
        CMP #0
        JZ #done         ; stop on the terminator
        OUT A
        LOAD B
        ADD #1
        MOV A B
        JMP #loop
done:   HALT
`

// timerSource counts 5 down to 0; the traced run shows every
// fetch-decode-execute cycle.
const timerSource = `
        LOAD #5
        MOV A B
loop:   LOAD B
        CMP #0
        JZ #done
        LOAD B
        SUB #1
        MOV A B
        JMP #loop
done:   HALT
`

const (
	messageAddr = 0x0100
	message     = "Hello, World!\n"
)

// Run assembles and executes the named demo on m, writing trace output and
// dumps to w.
func Run(name string, m *cpu.Machine, w io.Writer) error {
	switch name {
	case Fibonacci:
		return runFibonacci(m, w)
	case Hello:
		return runHello(m, w)
	case Timer:
		return runTimer(m, w)
	default:
		return fmt.Errorf("unknown demo %q", name)
	}
}

// load assembles source and places it at address 0.
func load(m *cpu.Machine, source string) error {
	program, err := asm.New().Assemble(source)
	if err != nil {
		return err
	}
	return m.LoadProgram(program, 0)
}

func runFibonacci(m *cpu.Machine, w io.Writer) error {
	fmt.Fprintln(w, "Creating Fibonacci demo program...")
	if err := load(m, fibonacciSource); err != nil {
		return err
	}
	fmt.Fprintln(w, "Program loaded. Computing F(5) = 5")

	fmt.Fprintln(w, "\n--- CPU Running ---")
	if err := m.RunTraced(w, 150); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n--- CPU Halted ---")
	m.DumpRegisters(w)
	fmt.Fprintf(w, "\nF(5) result in register D: %d (expected: 5)\n", m.Regs[cpu.RegD])
	m.DumpMemory(w, 0x0000, 0x0040)
	return nil
}

func runHello(m *cpu.Machine, w io.Writer) error {
	fmt.Fprintln(w, "Creating Hello World demo program...")

	// The message lives in data memory, not in the program image.
	for i := 0; i < len(message); i++ {
		m.Mem[messageAddr+i] = message[i]
	}
	m.Mem[messageAddr+len(message)] = 0

	if err := load(m, helloSource); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n--- CPU Running ---")
	fmt.Fprintln(w, "Output:")
	if err := m.RunTraced(w, 200); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n--- CPU Halted ---")
	m.DumpRegisters(w)
	m.DumpMemory(w, 0x0000, 0x0030)
	m.DumpMemory(w, messageAddr, 0x0010)
	return nil
}

func runTimer(m *cpu.Machine, w io.Writer) error {
	fmt.Fprintln(w, "Creating Timer/Counter demo program...")
	fmt.Fprintln(w, "This program demonstrates Fetch-Decode-Execute cycles.")
	if err := load(m, timerSource); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n=== Executing with Cycle Tracking ===")
	fmt.Fprintln(w, "--- CPU Running ---")
	if err := m.RunTraced(w, 100); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n=== Execution Complete ===")
	m.DumpRegisters(w)
	m.DumpMemory(w, 0x0000, 0x0030)
	return nil
}
