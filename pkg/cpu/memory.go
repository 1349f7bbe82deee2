package cpu

// Read8 reads one byte. Addresses in the I/O window are side-effecting
// ports: the console input port blocks for one byte of input, every other
// port reads as 0.
func (m *Machine) Read8(addr uint16) uint8 {
	if addr >= IOStart {
		if addr == ConsoleIn {
			b, err := m.Input.ReadByte()
			if err != nil {
				return 0
			}
			return b
		}
		return 0
	}
	return m.Mem[addr]
}

// Read16 reads a little-endian 16-bit value composed of two byte reads.
// The timer port returns elapsed milliseconds since init, low 16 bits.
func (m *Machine) Read16(addr uint16) uint16 {
	if addr == TimerAddr {
		elapsed := m.Now().Sub(m.Epoch).Milliseconds()
		return uint16(elapsed)
	}
	low := m.Read8(addr)
	high := m.Read8(addr + 1)
	return uint16(high)<<8 | uint16(low)
}

// Write8 writes one byte. The console output port forwards the byte to the
// output stream; other I/O-window writes are discarded and never touch the
// backing array.
func (m *Machine) Write8(addr uint16, v uint8) {
	if addr >= IOStart {
		if addr == ConsoleOut {
			m.Output.Write([]byte{v})
		}
		return
	}
	m.Mem[addr] = v
}

// Write16 writes a little-endian 16-bit value as two byte writes.
func (m *Machine) Write16(addr uint16, v uint16) {
	m.Write8(addr, uint8(v))
	m.Write8(addr+1, uint8(v>>8))
}

// Peek8 reads the backing array directly, bypassing MMIO. Used by traces
// and dumps, which must not consume console input.
func (m *Machine) Peek8(addr uint16) uint8 {
	return m.Mem[addr]
}

func (m *Machine) push8(v uint8) {
	m.Write8(m.SP, v)
	m.SP--
}

// push16 pushes high byte first so the value reads back little-endian at
// SP+1.
func (m *Machine) push16(v uint16) {
	m.push8(uint8(v >> 8))
	m.push8(uint8(v))
}

func (m *Machine) pop8() uint8 {
	m.SP++
	return m.Read8(m.SP)
}

func (m *Machine) pop16() uint16 {
	low := m.pop8()
	high := m.pop8()
	return uint16(high)<<8 | uint16(low)
}
