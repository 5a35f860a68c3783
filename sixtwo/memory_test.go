package sixtwo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReadWriteWraps(t *testing.T) {
	m := NewMemory()
	m.Write(0x10000, 0x42) // wraps to address 0
	assert.Equal(t, byte(0x42), m.Read(0))
}

func TestMemoryRead16LittleEndian(t *testing.T) {
	m := NewMemory()
	m.Write(0x200, 0x34)
	m.Write(0x201, 0x12)
	assert.Equal(t, uint16(0x1234), m.Read16(0x200))
}

func TestMemoryLoadReturnsAddressPastEnd(t *testing.T) {
	m := NewMemory()
	end, err := m.Load(0x0600, []byte{0xA9, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0603), end)
	assert.Equal(t, byte(0xA9), m.Read(0x0600))
	assert.Equal(t, byte(0x00), m.Read(0x0602))
}

func TestMemoryLoadOverflow(t *testing.T) {
	m := NewMemory()
	_, err := m.Load(0, make([]byte, 65537))
	require.Error(t, err)
	var toolErr *Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindMemoryOverflow, toolErr.Kind)
}

func TestMemoryDumpFormat(t *testing.T) {
	m := NewMemory()
	m.Write(0, 0xAB)
	m.Write(1, 0xCD)
	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf, 0, 2, nil))
	assert.Equal(t, "0000: AB CD\n", buf.String())
}

func TestMemoryDumpTees(t *testing.T) {
	m := NewMemory()
	var primary, tee bytes.Buffer
	require.NoError(t, m.Dump(&primary, 0, 16, &tee))
	assert.Equal(t, primary.String(), tee.String())
}

func TestMemoryClear(t *testing.T) {
	m := NewMemory()
	m.Write(5, 0xFF)
	m.Clear()
	assert.Equal(t, byte(0), m.Read(5))
}
