package sixtwo

import (
	"fmt"
	"io"
)

// Memory is a flat 64 KiB address space, indexed 0x0000..0xFFFF. It is
// owned exclusively by one Simulator (or one assemble/disassemble pass) for
// its lifetime; see spec.md §5. Grounded on original_source/memory.py's
// Memory class and hejops/gone's mem.Bus, adapted to bounds-check with
// modular arithmetic instead of panicking.
type Memory struct {
	bytes [65536]byte
}

// NewMemory returns a zero-initialized 64 KiB memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Read returns the byte at addr, wrapped modulo 0x10000.
func (m *Memory) Read(addr uint32) byte {
	return m.bytes[addr&0xFFFF]
}

// Read16 returns the little-endian 16-bit value at addr, addr+1.
func (m *Memory) Read16(addr uint32) uint16 {
	lo := m.Read(addr)
	hi := m.Read(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// Write stores v (masked to 8 bits) at addr, wrapped modulo 0x10000.
func (m *Memory) Write(addr uint32, v byte) {
	m.bytes[addr&0xFFFF] = v
}

// Write16 stores a little-endian 16-bit value at addr, addr+1.
func (m *Memory) Write16(addr uint32, v uint16) {
	m.Write(addr, byte(v))
	m.Write(addr+1, byte(v>>8))
}

// Load copies data into memory starting at start, wrapping addresses via
// modular arithmetic, and returns the address one past the last byte
// written. It fails with KindMemoryOverflow only if asked to write more
// than 65536 distinct bytes, matching spec.md §4.2.
func (m *Memory) Load(start uint32, data []byte) (uint32, error) {
	if len(data) > 65536 {
		return start, newError(KindMemoryOverflow, "load of %d bytes exceeds 64 KiB", len(data))
	}
	addr := start
	for _, b := range data {
		m.Write(addr, b)
		addr++
	}
	return addr & 0xFFFF, nil
}

// Clear zeroes every byte of memory.
func (m *Memory) Clear() {
	for i := range m.bytes {
		m.bytes[i] = 0
	}
}

// Dump writes a textual hex dump of the form "AAAA: bb bb bb ..." with 16
// bytes per line to w. If tee is non-nil, the same text is additionally
// written there, mirroring original_source/memory.py's verbose/output
// parameters (SPEC_FULL.md §4).
func (m *Memory) Dump(w io.Writer, start uint32, length int, tee io.Writer) error {
	addr := start & 0xFFFF
	for i := 0; i < length; i += 16 {
		n := length - i
		if n > 16 {
			n = 16
		}
		line := fmt.Sprintf("%04X:", (addr+uint32(i))&0xFFFF)
		for j := 0; j < n; j++ {
			line += fmt.Sprintf(" %02X", m.Read(addr+uint32(i+j)))
		}
		line += "\n"
		if _, err := io.WriteString(w, line); err != nil {
			return wrapError(KindIO, err, "writing memory dump")
		}
		if tee != nil {
			if _, err := io.WriteString(tee, line); err != nil {
				return wrapError(KindIO, err, "tee-ing memory dump")
			}
		}
	}
	return nil
}
