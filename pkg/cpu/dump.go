package cpu

import (
	"fmt"
	"io"

	"github.com/oisee/vm16/pkg/inst"
)

// DumpRegisters writes the register file, flag letters and cycle count.
func (m *Machine) DumpRegisters(w io.Writer) {
	fmt.Fprintf(w, "\n=== CPU Registers ===\n")
	fmt.Fprintf(w, "PC: 0x%04X   SP: 0x%04X\n", m.PC, m.SP)
	fmt.Fprintf(w, "A:  0x%04X   B:  0x%04X\n", m.Regs[RegA], m.Regs[RegB])
	fmt.Fprintf(w, "C:  0x%04X   D:  0x%04X\n", m.Regs[RegC], m.Regs[RegD])
	fmt.Fprintf(w, "FLAGS: 0x%02X [", m.Flags)
	for _, f := range []struct {
		flag   uint8
		letter string
	}{
		{FlagZero, "Z"}, {FlagCarry, "C"}, {FlagNegative, "N"},
		{FlagOverflow, "O"}, {FlagHalt, "H"},
	} {
		if m.Flag(f.flag) {
			fmt.Fprint(w, f.letter)
		}
	}
	fmt.Fprintf(w, "]\n")
	fmt.Fprintf(w, "Cycles: %d\n", m.Cycles)
}

// DumpMemory writes length bytes starting at start as 8-byte rows of hex
// plus a printable-ASCII column. Reads bypass MMIO.
func (m *Machine) DumpMemory(w io.Writer, start, length uint16) {
	fmt.Fprintf(w, "\n--- Memory Dump (%04X - %04X [Hex]) ---\n", start, start+length-1)
	fmt.Fprintf(w, "Addr | 00 01 02 03 04 05 06 07 | ASCII\n")
	fmt.Fprintf(w, "------------------------------------------------\n")

	for i := uint16(0); i < length; i += 8 {
		fmt.Fprintf(w, "%04X | ", start+i)

		for j := uint16(0); j < 8; j++ {
			if i+j < length {
				fmt.Fprintf(w, "%02X ", m.Peek8(start+i+j))
			} else {
				fmt.Fprint(w, "   ")
			}
		}

		fmt.Fprint(w, "| ")

		for j := uint16(0); j < 8 && i+j < length; j++ {
			b := m.Peek8(start + i + j)
			if b >= 32 && b <= 126 {
				fmt.Fprintf(w, "%c", b)
			} else {
				fmt.Fprint(w, ".")
			}
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "------------------------------------------------\n")
}

// RunTraced executes like Run but writes one trace line per instruction,
// stopping after maxSteps instructions when maxSteps > 0. The trace reads
// memory via Peek8 so it never consumes console input.
func (m *Machine) RunTraced(w io.Writer, maxSteps uint64) error {
	m.Running = true
	steps := uint64(0)
	for m.Running && !m.Flag(FlagHalt) {
		if maxSteps > 0 && steps >= maxSteps {
			fmt.Fprintf(w, "\n[Safety limit reached after %d cycles]\n", maxSteps)
			break
		}
		pc := m.PC
		op, mode := inst.Decode(m.Peek8(pc))
		if err := m.Step(); err != nil {
			return err
		}
		steps++

		// ZN packs ZERO into bit 4 and NEGATIVE into bit 0.
		zn := uint8(0)
		if m.Flag(FlagZero) {
			zn |= 0x10
		}
		if m.Flag(FlagNegative) {
			zn |= 0x01
		}
		fmt.Fprintf(w, "[PC=0x%04X] %-7s | R0=0x%04X R1=0x%04X R2=0x%04X R3=0x%04X SP=0x%04X ZN=%02X\n",
			pc, inst.TraceName(op, mode),
			m.Regs[RegA], m.Regs[RegB], m.Regs[RegC], m.Regs[RegD],
			m.SP, zn)
	}
	return nil
}
