package cpu

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"
)

// Memory layout constants.
const (
	MemorySize = 65536
	IOStart    = 0xFF00 // memory-mapped I/O window
	StackStart = 0xFEFF // SP initial value, stack grows downward
	ConsoleIn  = 0xFF00 // read one byte from the input stream
	ConsoleOut = 0xFF01 // write one byte to the output stream
	TimerAddr  = 0xFF03 // 16-bit read: elapsed milliseconds since init
)

// Machine is a complete 16-bit CPU: register file, flat memory, stack and
// cycle counter. It owns its state exclusively for the duration of a run;
// nothing here is safe for concurrent use.
type Machine struct {
	PC    uint16
	SP    uint16
	Regs  [4]uint16 // A, B, C, D
	Flags uint8

	Mem     [MemorySize]byte
	Running bool
	Cycles  uint64

	// Input and Output back the console MMIO ports. They default to
	// stdin/stdout in New.
	Input  io.ByteReader
	Output io.Writer

	// Now and Epoch drive the millisecond timer port. Tests override them
	// for deterministic reads.
	Now   func() time.Time
	Epoch time.Time
}

// Register indices into Regs.
const (
	RegA = 0
	RegB = 1
	RegC = 2
	RegD = 3
)

// New returns a machine with all registers zeroed except SP, console I/O
// bound to stdin/stdout, and the timer epoch captured.
func New() *Machine {
	m := &Machine{
		SP:     StackStart,
		Input:  bufio.NewReader(os.Stdin),
		Output: os.Stdout,
		Now:    time.Now,
	}
	m.Epoch = m.Now()
	return m
}

// Reset returns the registers, flags and cycle counter to their initial
// state. Memory and the timer epoch are left alone.
func (m *Machine) Reset() {
	m.PC = 0
	m.SP = StackStart
	m.Regs = [4]uint16{}
	m.Flags = 0
	m.Running = false
	m.Cycles = 0
}

// LoadProgram copies a program image into memory at start and points PC at
// it.
func (m *Machine) LoadProgram(program []byte, start uint16) error {
	if int(start)+len(program) > MemorySize {
		return fmt.Errorf("program of %d bytes does not fit at 0x%04X", len(program), start)
	}
	copy(m.Mem[start:], program)
	m.PC = start
	return nil
}

// Run executes instructions until the halt flag is set or a decode error
// stops the machine.
func (m *Machine) Run() error {
	m.Running = true
	for m.Running && !m.Flag(FlagHalt) {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// regIndex clamps an encoded register byte to the register file. Values
// outside 0..3 select A, as in the reference machine.
func regIndex(r uint8) int {
	if r > RegD {
		return RegA
	}
	return int(r)
}
