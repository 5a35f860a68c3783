package sixtwo

import (
	"bufio"
	"io"
)

// ToolchainContext holds I/O and bookkeeping state for emitting listing
// output. It replaces original_source/mfcbase.py's MFCBase inheritance
// hierarchy (Assembler and Processor both subclassed it) with plain
// composition: callers hold a *ToolchainContext value instead of
// inheriting from a shared base (spec.md Design Notes §9). Only the
// disassembler's WriteListing uses it; the Assembler and the CPU do not
// hold one.
type ToolchainContext struct {
	in  *bufio.Scanner
	out io.Writer

	// PC tracks the running program counter/address as source lines or
	// instructions are consumed, mirroring mfcbase.py's self.pc.
	PC uint32

	// Line is the 1-based number of the line most recently read from in,
	// used to annotate diagnostics.
	Line int

	// ShowCounter, when true, prefixes emitted output lines with the
	// current address, matching the -c flag in spec.md §6.
	ShowCounter bool
}

// NewToolchainContext wraps a reader and writer with the bookkeeping state
// used by the disassembler's listing output.
func NewToolchainContext(in io.Reader, out io.Writer) *ToolchainContext {
	return &ToolchainContext{in: bufio.NewScanner(in), out: out}
}

// NextLine returns the next raw line of input and advances Line, or
// ("", false) at end of input.
func (c *ToolchainContext) NextLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	c.Line++
	return c.in.Text(), true
}

// Emit writes a single line of output, prefixed with the current address in
// hex when ShowCounter is set.
func (c *ToolchainContext) Emit(line string) error {
	var err error
	if c.ShowCounter {
		_, err = io.WriteString(c.out, formatAddr(c.PC)+" "+line+"\n")
	} else {
		_, err = io.WriteString(c.out, line+"\n")
	}
	if err != nil {
		return wrapError(KindIO, err, "writing output")
	}
	return nil
}

func formatAddr(addr uint32) string {
	const hexDigits = "0123456789ABCDEF"
	a := addr & 0xFFFF
	return string([]byte{
		hexDigits[(a>>12)&0xF],
		hexDigits[(a>>8)&0xF],
		hexDigits[(a>>4)&0xF],
		hexDigits[a&0xF],
	})
}
