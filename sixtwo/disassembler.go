package sixtwo

import (
	"fmt"
	"strconv"
	"strings"
)

// DisassembledLine is one decoded instruction, ready for text rendering.
type DisassembledLine struct {
	Addr uint32
	Raw  []byte
	Text string
}

// Disassembler turns a byte stream into assembly text, one instruction at a
// time, stopping at the first undecodable byte (spec.md §4.5). Grounded on
// _examples/chriskillpack-bbcdisasm/disassemble.go's Disassembler struct
// (Program/Offset/MaxBytes fields) adapted from its BBC-OS-call-aware
// decoder to the plain opcode table in opcode.go.
type Disassembler struct {
	Program []byte
	Offset  int
	Addr    uint32
}

// NewDisassembler creates a Disassembler over program, decoding starting at
// the given load address.
func NewDisassembler(program []byte, addr uint32) *Disassembler {
	return &Disassembler{Program: program, Addr: addr}
}

// Done reports whether every byte of Program has been consumed.
func (d *Disassembler) Done() bool {
	return d.Offset >= len(d.Program)
}

// Next decodes one instruction starting at the current offset and advances
// past it. It returns KindUnknownOpcode for a byte with no Opcode table
// entry, per spec.md §4.5's "stop at first undecodable byte" rule.
func (d *Disassembler) Next() (DisassembledLine, error) {
	if d.Done() {
		return DisassembledLine{}, newError(KindInvalidAddress, "no more bytes to disassemble")
	}

	opByte := d.Program[d.Offset]
	op, ok := Decode(opByte)
	if !ok {
		return DisassembledLine{}, newError(KindUnknownOpcode, "unknown opcode %02X at %04X", opByte, d.Addr)
	}

	length := InstructionLength(op.Mode)
	if d.Offset+length > len(d.Program) {
		return DisassembledLine{}, newError(KindMemoryOverflow, "instruction at %04X truncated", d.Addr)
	}

	raw := d.Program[d.Offset : d.Offset+length]
	text := formatOperand(op, raw, d.Addr)

	line := DisassembledLine{Addr: d.Addr, Raw: raw, Text: text}
	d.Offset += length
	d.Addr = (d.Addr + uint32(length)) & 0xFFFF
	return line, nil
}

// formatOperand renders mnemonic+operand text for one decoded instruction,
// per the addressing-mode syntax table in spec.md §4.4/§6.
func formatOperand(op Opcode, raw []byte, addr uint32) string {
	switch op.Mode {
	case IMP:
		return op.Mnemonic
	case ACC:
		return op.Mnemonic + " A"
	case IMM:
		return fmt.Sprintf("%s #$%02X", op.Mnemonic, raw[1])
	case ZP:
		return fmt.Sprintf("%s $%02X", op.Mnemonic, raw[1])
	case ZPX:
		return fmt.Sprintf("%s $%02X,X", op.Mnemonic, raw[1])
	case ZPY:
		return fmt.Sprintf("%s $%02X,Y", op.Mnemonic, raw[1])
	case ABS:
		return fmt.Sprintf("%s $%04X", op.Mnemonic, word(raw))
	case ABSX:
		return fmt.Sprintf("%s $%04X,X", op.Mnemonic, word(raw))
	case ABSY:
		return fmt.Sprintf("%s $%04X,Y", op.Mnemonic, word(raw))
	case IND:
		return fmt.Sprintf("%s ($%04X)", op.Mnemonic, word(raw))
	case INDX:
		return fmt.Sprintf("%s ($%02X,X)", op.Mnemonic, raw[1])
	case INDY:
		return fmt.Sprintf("%s ($%02X),Y", op.Mnemonic, raw[1])
	case REL:
		target := (addr + 2 + uint32(int8(raw[1]))) & 0xFFFF
		return fmt.Sprintf("%s $%04X", op.Mnemonic, target)
	default:
		return op.Mnemonic
	}
}

func word(raw []byte) uint16 {
	return uint16(raw[1]) | uint16(raw[2])<<8
}

// DisassembleAll decodes every instruction in program starting at addr and
// returns the full listing, stopping (with the error that stopped it) at
// the first undecodable byte instead of panicking or skipping it.
func DisassembleAll(program []byte, addr uint32) ([]DisassembledLine, error) {
	d := NewDisassembler(program, addr)
	var lines []DisassembledLine
	for !d.Done() {
		line, err := d.Next()
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ParseHexListing reads the disassembler's own input format: whitespace
// and newline separated hex byte pairs, with an optional leading 4-digit
// hex address field per line (the -c flag's address-prefixed form,
// spec.md §6). Address fields are accepted but not otherwise validated
// against each other; callers supply the authoritative start address
// separately via -s.
func ParseHexListing(text string) ([]byte, error) {
	var out []byte
	for lineNo, rawLine := range strings.Split(text, "\n") {
		fields := strings.Fields(rawLine)
		for i, f := range fields {
			f = strings.TrimSuffix(f, ":")
			if i == 0 && len(f) == 4 {
				if _, err := strconv.ParseUint(f, 16, 32); err == nil {
					continue
				}
			}
			b, err := strconv.ParseUint(f, 16, 8)
			if err != nil {
				return nil, newError(KindSyntaxError, "invalid hex byte %q", f).WithLine(lineNo + 1)
			}
			out = append(out, byte(b))
		}
	}
	return out, nil
}

// WriteListing renders the header comment block and *=$AAAA origin
// directive spec.md §6 describes, followed by one line per decoded
// instruction in the assembler's own syntax, through ctx so the -c
// address-counter flag is honored automatically: ctx.Emit prefixes each
// line with the current address whenever ctx.ShowCounter is set. The
// header itself is never address-prefixed.
func WriteListing(ctx *ToolchainContext, outfile string, origin uint32, lines []DisassembledLine) error {
	showCounter := ctx.ShowCounter
	ctx.ShowCounter = false
	header := []string{
		";;;;;;;;;;;;;;;;;;;;;;;;;",
		"; " + outfile,
		";",
		"; Disassembled by sixtwo",
		";;;;;;;;;;;;;;;;;;;;;;;;;",
		"",
		fmt.Sprintf("*=$%04X", origin),
		"",
	}
	for _, h := range header {
		if err := ctx.Emit(h); err != nil {
			return err
		}
	}
	ctx.ShowCounter = showCounter

	for _, l := range lines {
		ctx.PC = l.Addr
		if err := ctx.Emit(l.Text); err != nil {
			return err
		}
	}
	return nil
}
