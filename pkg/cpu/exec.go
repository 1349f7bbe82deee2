package cpu

import (
	"fmt"

	"github.com/oisee/vm16/pkg/inst"
)

// DecodeError reports an undefined opcode reached by the fetch loop. The
// machine is stopped with the halt flag clear.
type DecodeError struct {
	Opcode inst.OpCode
	PC     uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02X at PC=0x%04X", uint8(e.Opcode), e.PC)
}

// Step executes one fetch-decode-execute cycle. It is a no-op if the
// machine is stopped or halted.
func (m *Machine) Step() error {
	if !m.Running || m.Flag(FlagHalt) {
		return nil
	}

	// FETCH
	start := m.PC
	op, mode := inst.Decode(m.Read8(m.PC))
	m.PC++
	m.Cycles++

	// DECODE: fetch the operand per addressing mode. regIdx carries the
	// selected register through to INC/DEC.
	var operand, address uint16
	regIdx := -1
	if inst.NeedsOperand(op, mode) {
		switch mode {
		case inst.Immediate:
			operand = m.Read16(m.PC)
			m.PC += 2
		case inst.Direct:
			address = m.Read16(m.PC)
			m.PC += 2
			operand = m.Read16(address)
		case inst.Register:
			regIdx = regIndex(m.Read8(m.PC))
			m.PC++
			operand = m.Regs[regIdx]
		case inst.Indirect:
			address = m.Regs[regIndex(m.Read8(m.PC))]
			m.PC++
			operand = m.Read16(address)
		}
	}

	// EXECUTE
	switch op {
	case inst.NOP:

	case inst.LOAD:
		m.Regs[RegA] = operand
		m.updateFlags(m.Regs[RegA])

	case inst.STORE:
		if mode == inst.Direct || mode == inst.Indirect {
			m.Write16(address, m.Regs[RegA])
		}

	case inst.MOV:
		if mode == inst.Register {
			dest := regIndex(m.Read8(m.PC))
			m.PC++
			m.Regs[dest] = operand
			m.updateFlags(m.Regs[dest])
		}

	case inst.PUSH:
		m.push16(operand)

	case inst.POP:
		m.Regs[RegA] = m.pop16()
		m.updateFlags(m.Regs[RegA])

	case inst.ADD:
		m.add(operand)

	case inst.SUB:
		m.sub(operand)

	case inst.INC:
		if mode == inst.Register && regIdx >= 0 {
			m.Regs[regIdx]++
			m.updateFlags(m.Regs[regIdx])
		} else {
			m.Regs[RegA]++
			m.updateFlags(m.Regs[RegA])
		}

	case inst.DEC:
		if mode == inst.Register && regIdx >= 0 {
			m.Regs[regIdx]--
			m.updateFlags(m.Regs[regIdx])
		} else {
			m.Regs[RegA]--
			m.updateFlags(m.Regs[RegA])
		}

	case inst.MUL:
		m.Regs[RegA] *= operand
		m.updateFlags(m.Regs[RegA])

	case inst.DIV:
		// Zero divisor leaves A and flags unchanged.
		if operand != 0 {
			m.Regs[RegA] /= operand
			m.updateFlags(m.Regs[RegA])
		}

	case inst.AND:
		m.Regs[RegA] &= operand
		m.updateFlags(m.Regs[RegA])

	case inst.OR:
		m.Regs[RegA] |= operand
		m.updateFlags(m.Regs[RegA])

	case inst.XOR:
		m.Regs[RegA] ^= operand
		m.updateFlags(m.Regs[RegA])

	case inst.NOT:
		m.Regs[RegA] = ^m.Regs[RegA]
		m.updateFlags(m.Regs[RegA])

	case inst.SHL:
		m.Regs[RegA] <<= operand
		m.updateFlags(m.Regs[RegA])

	case inst.SHR:
		m.Regs[RegA] >>= operand
		m.updateFlags(m.Regs[RegA])

	case inst.CMP:
		m.cmp(operand)

	case inst.TEST:
		m.updateFlags(m.Regs[RegA] & operand)

	case inst.JMP:
		m.PC = operand

	case inst.JZ:
		if m.Flag(FlagZero) {
			m.PC = operand
		}

	case inst.JNZ:
		if !m.Flag(FlagZero) {
			m.PC = operand
		}

	case inst.JC:
		if m.Flag(FlagCarry) {
			m.PC = operand
		}

	case inst.JNC:
		if !m.Flag(FlagCarry) {
			m.PC = operand
		}

	case inst.CALL:
		m.push16(m.PC)
		m.PC = operand

	case inst.RET:
		m.PC = m.pop16()

	case inst.HALT:
		m.setFlag(FlagHalt)
		m.Running = false
		fmt.Fprintf(m.Output, "\n[CPU HALTED after %d cycles]\n", m.Cycles)

	case inst.IN:
		m.Regs[RegA] = uint16(m.Read8(IOStart + operand))
		m.updateFlags(m.Regs[RegA])

	case inst.OUT:
		// The port operand is decoded but ignored; output always goes to
		// the console port.
		m.Write8(ConsoleOut, uint8(m.Regs[RegA]))

	default:
		m.Running = false
		return &DecodeError{Opcode: op, PC: start}
	}

	return nil
}

// add computes A + operand in 32-bit width; CARRY reflects overflow past
// 16 bits.
func (m *Machine) add(operand uint16) {
	result := uint32(m.Regs[RegA]) + uint32(operand)
	if result > 0xFFFF {
		m.setFlag(FlagCarry)
	} else {
		m.clearFlag(FlagCarry)
	}
	m.Regs[RegA] = uint16(result)
	m.updateFlags(m.Regs[RegA])
}

// sub computes A - operand in signed width; CARRY reflects borrow.
func (m *Machine) sub(operand uint16) {
	result := int32(m.Regs[RegA]) - int32(operand)
	if result < 0 {
		m.setFlag(FlagCarry)
	} else {
		m.clearFlag(FlagCarry)
	}
	m.Regs[RegA] = uint16(result)
	m.updateFlags(m.Regs[RegA])
}

// cmp is sub without the store: flags change, A does not.
func (m *Machine) cmp(operand uint16) {
	result := int32(m.Regs[RegA]) - int32(operand)
	if result < 0 {
		m.setFlag(FlagCarry)
	} else {
		m.clearFlag(FlagCarry)
	}
	m.updateFlags(uint16(result))
}
