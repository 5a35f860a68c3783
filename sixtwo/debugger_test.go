package sixtwo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFlagsMixedCase(t *testing.T) {
	p := FlagN | FlagZ | FlagC
	assert.Equal(t, "Nv_bdiZC", formatFlags(p))
}

func TestFormatFlagsAllClear(t *testing.T) {
	assert.Equal(t, "nv_bdizc", formatFlags(0))
}

func TestParseHexArgAcceptsDollarPrefix(t *testing.T) {
	v, err := parseHexArg("$0600")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0600), v)
}

func TestParseHexArgRejectsGarbage(t *testing.T) {
	_, err := parseHexArg("zzzz")
	require.Error(t, err)
	var toolErr *Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindSyntaxError, toolErr.Kind)
}

func newFreshDebugger(program []byte, start uint32, commands string) (*Debugger, *CPU, *bytes.Buffer) {
	mem := NewMemory()
	end, _ := mem.Load(start, program)
	cpu := NewCPU(mem)
	cpu.SetPC(start)
	cpu.EndAddr = (end - 1) & 0xFFFF
	var out bytes.Buffer
	dbg := NewDebugger(cpu, bytes.NewBufferString(commands), &out)
	return dbg, cpu, &out
}

func TestDebuggerExecuteRunsOneInstructionWithoutEndingSession(t *testing.T) {
	dbg, cpu, _ := newFreshDebugger([]byte{0xA9, 0x05, 0xA9, 0x06}, 0x0600, "e\n")
	require.True(t, dbg.ReadCommand())
	assert.Equal(t, byte(0x05), cpu.A)
	assert.Equal(t, uint32(0x0602), cpu.PC)
}

func TestDebuggerStateCommandShowsRegisters(t *testing.T) {
	dbg, _, out := newFreshDebugger([]byte{0xA9, 0x05}, 0x0600, "c\n")
	require.True(t, dbg.ReadCommand())
	assert.Contains(t, out.String(), "PC=0600")
}

func TestDebuggerFreeRunRunsUntilEndAddress(t *testing.T) {
	dbg, cpu, _ := newFreshDebugger([]byte{0xA9, 0x01, 0xA9, 0x02}, 0x0600, "f\n")
	require.True(t, dbg.ReadCommand())
	assert.Equal(t, byte(0x02), cpu.A)
	assert.Greater(t, cpu.PC, cpu.EndAddr)
}

func TestDebuggerMemoryPeekReadsSingleByte(t *testing.T) {
	dbg, cpu, out := newFreshDebugger(nil, 0x0600, "m@0002\n")
	cpu.Mem.Write(0x0002, 0xAB)
	require.True(t, dbg.ReadCommand())
	assert.Contains(t, out.String(), "0002")
	assert.Contains(t, out.String(), "AB")
}

func TestDebuggerOpcodeCommandShowsByteAtPC(t *testing.T) {
	dbg, _, out := newFreshDebugger([]byte{0xEA}, 0x0600, "p\n")
	require.True(t, dbg.ReadCommand())
	assert.Contains(t, out.String(), "EA")
}

func TestDebuggerStackCommandDumpsStackPage(t *testing.T) {
	dbg, cpu, out := newFreshDebugger(nil, 0x0600, "s\n")
	cpu.Mem.Write(0x01FF, 0x42)
	require.True(t, dbg.ReadCommand())
	assert.Contains(t, out.String(), "0100:")
}

func TestDebuggerHaltCommandEndsSession(t *testing.T) {
	dbg, _, out := newFreshDebugger(nil, 0x0600, "t\n")
	assert.False(t, dbg.ReadCommand())
	assert.Contains(t, out.String(), "halted")
}

func TestDebuggerResetCommand(t *testing.T) {
	mem := NewMemory()
	mem.Write16(resetVector, 0x8000)
	cpu := NewCPU(mem)
	cpu.SetPC(0x0600)
	var out bytes.Buffer
	dbg := NewDebugger(cpu, bytes.NewBufferString("r\n"), &out)
	require.True(t, dbg.ReadCommand())
	assert.Equal(t, uint32(0x8000), cpu.PC)
}
