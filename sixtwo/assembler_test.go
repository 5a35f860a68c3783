package sixtwo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleSimpleProgram(t *testing.T) {
	src := ".ORG $0600\nLDA #$01\nSTA $0200\n"
	asm := NewAssembler()
	result, errs := asm.Assemble(src)
	require.Empty(t, errs)
	assert.Equal(t, uint32(0x0600), result.Origin)
	assert.Equal(t, []byte{0xA9, 0x01, 0x8D, 0x00, 0x02}, result.Code)
}

func TestAssembleForwardLabelReference(t *testing.T) {
	src := "" +
		".ORG $0600\n" +
		"START:\n" +
		"  JMP DONE\n" +
		"  LDA #$00\n" +
		"DONE:\n" +
		"  RTS\n"
	asm := NewAssembler()
	result, errs := asm.Assemble(src)
	require.Empty(t, errs)
	// JMP to DONE, which sits at 0600 + 3 (JMP) + 2 (LDA #imm) == 0605.
	assert.Equal(t, []byte{0x4C, 0x05, 0x06, 0xA9, 0x00, 0x60}, result.Code)
}

func TestAssembleUndefinedLabelReportsError(t *testing.T) {
	src := ".ORG $0600\nJMP NOWHERE\n"
	asm := NewAssembler()
	_, errs := asm.Assemble(src)
	require.Len(t, errs, 1)
	var toolErr *Error
	require.ErrorAs(t, errs[0], &toolErr)
	assert.Equal(t, KindUndefinedLabel, toolErr.Kind)
	assert.Equal(t, 2, toolErr.Line)
}

func TestAssembleBranchOutOfRange(t *testing.T) {
	src := ".ORG $0600\nBEQ FAR\n.ORG $0700\nFAR:\nRTS\n"
	asm := NewAssembler()
	_, errs := asm.Assemble(src)
	require.Len(t, errs, 1)
	var toolErr *Error
	require.ErrorAs(t, errs[0], &toolErr)
	assert.Equal(t, KindBranchOutOfRange, toolErr.Kind)
}

func TestAssembleIllegalAddressingMode(t *testing.T) {
	// LDX has no indirect-indexed form.
	src := ".ORG $0600\nLDX ($10),Y\n"
	asm := NewAssembler()
	_, errs := asm.Assemble(src)
	require.Len(t, errs, 1)
	var toolErr *Error
	require.ErrorAs(t, errs[0], &toolErr)
	assert.Equal(t, KindIllegalAddressingMode, toolErr.Kind)
}

func TestAssembleEquBindsConstantNotPC(t *testing.T) {
	src := "" +
		"PORT = $D000\n" +
		".ORG $0600\n" +
		"LDA PORT\n"
	asm := NewAssembler()
	result, errs := asm.Assemble(src)
	require.Empty(t, errs)
	assert.Equal(t, []byte{0xAD, 0x00, 0xD0}, result.Code)
}

func TestAssembleByteAndWordDirectives(t *testing.T) {
	src := ".ORG $0600\n.BYTE $01,$02,3\n.WORD $1234\n"
	asm := NewAssembler()
	result, errs := asm.Assemble(src)
	require.Empty(t, errs)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x34, 0x12}, result.Code)
}

func TestAssembleZeroPageVsAbsoluteSelection(t *testing.T) {
	src := ".ORG $0600\nLDA $10\nLDA $1000\n"
	asm := NewAssembler()
	result, errs := asm.Assemble(src)
	require.Empty(t, errs)
	assert.Equal(t, []byte{0xA5, 0x10, 0xAD, 0x00, 0x10}, result.Code)
}

func TestAssembleCollectsMultipleIndependentErrors(t *testing.T) {
	src := ".ORG $0600\nJMP NOWHERE\nLDX ($10),Y\n"
	asm := NewAssembler()
	_, errs := asm.Assemble(src)
	require.Len(t, errs, 2)
}
