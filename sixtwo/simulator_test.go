package sixtwo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCPU(program []byte, start uint32) *CPU {
	mem := NewMemory()
	mem.Load(start, program)
	cpu := NewCPU(mem)
	cpu.SetPC(start)
	return cpu
}

func TestStepLdaImmediateSetsFlags(t *testing.T) {
	cpu := newTestCPU([]byte{0xA9, 0x00}, 0x0600)
	cycles, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, 2, cycles)
	assert.Equal(t, byte(0), cpu.A)
	assert.True(t, cpu.flag(FlagZ))
	assert.False(t, cpu.flag(FlagN))
}

func TestStepLdaNegativeSetsN(t *testing.T) {
	cpu := newTestCPU([]byte{0xA9, 0x80}, 0x0600)
	_, err := cpu.Step()
	require.NoError(t, err)
	assert.True(t, cpu.flag(FlagN))
	assert.False(t, cpu.flag(FlagZ))
}

func TestAdcCanonicalOverflow(t *testing.T) {
	// 0x7F + 0x01 = 0x80: signed overflow (positive + positive = negative).
	cpu := newTestCPU([]byte{0xA9, 0x7F, 0x69, 0x01}, 0x0600)
	_, err := cpu.Step()
	require.NoError(t, err)
	_, err = cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), cpu.A)
	assert.True(t, cpu.flag(FlagV))
	assert.True(t, cpu.flag(FlagN))
	assert.False(t, cpu.flag(FlagC))
}

func TestAdcCarryOut(t *testing.T) {
	cpu := newTestCPU([]byte{0xA9, 0xFF, 0x69, 0x02}, 0x0600)
	cpu.Step()
	cpu.Step()
	assert.Equal(t, byte(0x01), cpu.A)
	assert.True(t, cpu.flag(FlagC))
	assert.False(t, cpu.flag(FlagV))
}

func TestSbcCanonicalOverflow(t *testing.T) {
	// 0x80 - 0x01 with carry set (no borrow): result 0x7F, signed overflow
	// (negative - positive = positive).
	cpu := newTestCPU([]byte{0xA9, 0x80, 0x38, 0xE9, 0x01}, 0x0600)
	cpu.Step() // LDA #$80
	cpu.Step() // SEC
	_, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7F), cpu.A)
	assert.True(t, cpu.flag(FlagV))
	assert.True(t, cpu.flag(FlagC))
}

func TestStackPushPopLIFO(t *testing.T) {
	cpu := newTestCPU([]byte{0xA9, 0x11, 0x48, 0xA9, 0x22, 0x48, 0x68, 0xAA, 0x68}, 0x0600)
	for i := 0; i < 7; i++ {
		_, err := cpu.Step()
		require.NoError(t, err)
	}
	// After two pushes (0x11 then 0x22) and two pops: A holds the last
	// pushed value first (0x22), transferred to X, then A holds 0x11.
	assert.Equal(t, byte(0x22), cpu.X)
	assert.Equal(t, byte(0x11), cpu.A)
}

func TestJsrRtsRoundTrip(t *testing.T) {
	// 0600: JSR 0x0604 ; 0603: BRK ; 0604: RTS
	cpu := newTestCPU([]byte{0x20, 0x04, 0x06, 0x00, 0x60}, 0x0600)
	_, err := cpu.Step() // JSR
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0604), cpu.PC)
	_, err = cpu.Step() // RTS
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0603), cpu.PC)
}

func TestBranchTakenAddsCycle(t *testing.T) {
	cpu := newTestCPU([]byte{0xA9, 0x00, 0xF0, 0x02}, 0x0600)
	cpu.Step() // LDA #$00, sets Z
	cycles, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, 3, cycles) // 2 nominal + 1 taken, no page cross
}

func TestBranchNotTakenNoExtraCycle(t *testing.T) {
	cpu := newTestCPU([]byte{0xA9, 0x01, 0xF0, 0x02}, 0x0600)
	cpu.Step()
	cycles, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, 2, cycles)
}

func TestUnknownOpcodeHalts(t *testing.T) {
	cpu := newTestCPU([]byte{0x02}, 0x0600)
	_, err := cpu.Step()
	require.Error(t, err)
	var toolErr *Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindUnknownOpcode, toolErr.Kind)
	assert.True(t, cpu.Halted)
}

func TestResetReadsVector(t *testing.T) {
	mem := NewMemory()
	mem.Write16(resetVector, 0x8000)
	cpu := NewCPU(mem)
	cpu.Reset()
	assert.Equal(t, uint32(0x8000), cpu.PC)
}

func TestMemoryWrapsModularly(t *testing.T) {
	mem := NewMemory()
	cpu := NewCPU(mem)
	mem.Write(0xFFFF, 0xAB)
	assert.Equal(t, byte(0xAB), cpu.Mem.Read(0x1FFFF))
}
