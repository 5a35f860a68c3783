package sixtwo

// Mode enumerates the closed set of 6502 addressing modes. The tag names
// follow spec's wire vocabulary directly rather than the teacher's spelled
// out AddressingMode constants (None, Accumulator, ...): the assembler,
// disassembler and simulator all key off these short tags, so matching the
// vocabulary the three components share removes a translation layer.
type Mode int

const (
	IMP Mode = iota
	ACC
	IMM
	ZP
	ZPX
	ZPY
	ABS
	ABSX
	ABSY
	IND
	INDX
	INDY
	REL
)

func (m Mode) String() string {
	switch m {
	case IMP:
		return "IMP"
	case ACC:
		return "ACC"
	case IMM:
		return "IMM"
	case ZP:
		return "ZP"
	case ZPX:
		return "ZPX"
	case ZPY:
		return "ZPY"
	case ABS:
		return "ABS"
	case ABSX:
		return "ABSX"
	case ABSY:
		return "ABSY"
	case IND:
		return "IND"
	case INDX:
		return "INDX"
	case INDY:
		return "INDY"
	case REL:
		return "REL"
	default:
		return "???"
	}
}

// Opcode is one (mnemonic, mode) encoding of the 6502 instruction set.
type Opcode struct {
	Mnemonic string
	Mode     Mode
	Byte     byte
	Cycles   int  // nominal cycle count, before page-crossing adjustment
	PageAdj  bool // true if a page crossing on this addressing mode adds a cycle (loads, not stores)
}

// opcodeTable is the single source of truth the forward and reverse lookup
// maps are both derived from, guaranteeing the round-trip invariant in
// spec.md §3 by construction. Entries mirror the teacher's OpCodes table
// (_examples/chriskillpack-bbcdisasm/opcodes.go) with the undocumented
// ANC/SRE/SLO entries dropped (spec.md Non-goals exclude illegal opcodes)
// and the CMOS PHX/PHY/PLX/PLY additions named in spec.md §4.1, taken from
// the CMOS branch of beevik/go6502's instruction set.
var opcodeTable = []Opcode{
	{"ADC", IMM, 0x69, 2, false},
	{"ADC", ZP, 0x65, 3, false},
	{"ADC", ZPX, 0x75, 4, false},
	{"ADC", ABS, 0x6D, 4, false},
	{"ADC", ABSX, 0x7D, 4, true},
	{"ADC", ABSY, 0x79, 4, true},
	{"ADC", INDX, 0x61, 6, false},
	{"ADC", INDY, 0x71, 5, true},

	{"AND", IMM, 0x29, 2, false},
	{"AND", ZP, 0x25, 3, false},
	{"AND", ZPX, 0x35, 4, false},
	{"AND", ABS, 0x2D, 4, false},
	{"AND", ABSX, 0x3D, 4, true},
	{"AND", ABSY, 0x39, 4, true},
	{"AND", INDX, 0x21, 6, false},
	{"AND", INDY, 0x31, 5, true},

	{"ASL", ACC, 0x0A, 2, false},
	{"ASL", ZP, 0x06, 5, false},
	{"ASL", ZPX, 0x16, 6, false},
	{"ASL", ABS, 0x0E, 6, false},
	{"ASL", ABSX, 0x1E, 7, false},

	{"BIT", ZP, 0x24, 3, false},
	{"BIT", ABS, 0x2C, 4, false},

	{"BPL", REL, 0x10, 2, false},
	{"BMI", REL, 0x30, 2, false},
	{"BVC", REL, 0x50, 2, false},
	{"BVS", REL, 0x70, 2, false},
	{"BCC", REL, 0x90, 2, false},
	{"BCS", REL, 0xB0, 2, false},
	{"BNE", REL, 0xD0, 2, false},
	{"BEQ", REL, 0xF0, 2, false},

	{"BRK", IMP, 0x00, 7, false},

	{"CMP", IMM, 0xC9, 2, false},
	{"CMP", ZP, 0xC5, 3, false},
	{"CMP", ZPX, 0xD5, 4, false},
	{"CMP", ABS, 0xCD, 4, false},
	{"CMP", ABSX, 0xDD, 4, true},
	{"CMP", ABSY, 0xD9, 4, true},
	{"CMP", INDX, 0xC1, 6, false},
	{"CMP", INDY, 0xD1, 5, true},

	{"CPX", IMM, 0xE0, 2, false},
	{"CPX", ZP, 0xE4, 3, false},
	{"CPX", ABS, 0xEC, 4, false},

	{"CPY", IMM, 0xC0, 2, false},
	{"CPY", ZP, 0xC4, 3, false},
	{"CPY", ABS, 0xCC, 4, false},

	{"DEC", ZP, 0xC6, 5, false},
	{"DEC", ZPX, 0xD6, 6, false},
	{"DEC", ABS, 0xCE, 6, false},
	{"DEC", ABSX, 0xDE, 7, false},

	{"EOR", IMM, 0x49, 2, false},
	{"EOR", ZP, 0x45, 3, false},
	{"EOR", ZPX, 0x55, 4, false},
	{"EOR", ABS, 0x4D, 4, false},
	{"EOR", ABSX, 0x5D, 4, true},
	{"EOR", ABSY, 0x59, 4, true},
	{"EOR", INDX, 0x41, 6, false},
	{"EOR", INDY, 0x51, 5, true},

	{"CLC", IMP, 0x18, 2, false},
	{"SEC", IMP, 0x38, 2, false},
	{"CLI", IMP, 0x58, 2, false},
	{"SEI", IMP, 0x78, 2, false},
	{"CLV", IMP, 0xB8, 2, false},
	{"CLD", IMP, 0xD8, 2, false},
	{"SED", IMP, 0xF8, 2, false},

	{"INC", ZP, 0xE6, 5, false},
	{"INC", ZPX, 0xF6, 6, false},
	{"INC", ABS, 0xEE, 6, false},
	{"INC", ABSX, 0xFE, 7, false},

	{"JMP", ABS, 0x4C, 3, false},
	{"JMP", IND, 0x6C, 5, false},

	{"JSR", ABS, 0x20, 6, false},

	{"LDA", IMM, 0xA9, 2, false},
	{"LDA", ZP, 0xA5, 3, false},
	{"LDA", ZPX, 0xB5, 4, false},
	{"LDA", ABS, 0xAD, 4, false},
	{"LDA", ABSX, 0xBD, 4, true},
	{"LDA", ABSY, 0xB9, 4, true},
	{"LDA", INDX, 0xA1, 6, false},
	{"LDA", INDY, 0xB1, 5, true},

	{"LDX", IMM, 0xA2, 2, false},
	{"LDX", ZP, 0xA6, 3, false},
	{"LDX", ZPY, 0xB6, 4, false},
	{"LDX", ABS, 0xAE, 4, false},
	{"LDX", ABSY, 0xBE, 4, true},

	{"LDY", IMM, 0xA0, 2, false},
	{"LDY", ZP, 0xA4, 3, false},
	{"LDY", ZPX, 0xB4, 4, false},
	{"LDY", ABS, 0xAC, 4, false},
	{"LDY", ABSX, 0xBC, 4, true},

	{"LSR", ACC, 0x4A, 2, false},
	{"LSR", ZP, 0x46, 5, false},
	{"LSR", ZPX, 0x56, 6, false},
	{"LSR", ABS, 0x4E, 6, false},
	{"LSR", ABSX, 0x5E, 7, false},

	{"NOP", IMP, 0xEA, 2, false},

	{"ORA", IMM, 0x09, 2, false},
	{"ORA", ZP, 0x05, 3, false},
	{"ORA", ZPX, 0x15, 4, false},
	{"ORA", ABS, 0x0D, 4, false},
	{"ORA", ABSX, 0x1D, 4, true},
	{"ORA", ABSY, 0x19, 4, true},
	{"ORA", INDX, 0x01, 6, false},
	{"ORA", INDY, 0x11, 5, true},

	{"TAX", IMP, 0xAA, 2, false},
	{"TXA", IMP, 0x8A, 2, false},
	{"DEX", IMP, 0xCA, 2, false},
	{"INX", IMP, 0xE8, 2, false},
	{"TAY", IMP, 0xA8, 2, false},
	{"TYA", IMP, 0x98, 2, false},
	{"DEY", IMP, 0x88, 2, false},
	{"INY", IMP, 0xC8, 2, false},

	{"ROL", ACC, 0x2A, 2, false},
	{"ROL", ZP, 0x26, 5, false},
	{"ROL", ZPX, 0x36, 6, false},
	{"ROL", ABS, 0x2E, 6, false},
	{"ROL", ABSX, 0x3E, 7, false},

	{"ROR", ACC, 0x6A, 2, false},
	{"ROR", ZP, 0x66, 5, false},
	{"ROR", ZPX, 0x76, 6, false},
	{"ROR", ABS, 0x6E, 6, false},
	{"ROR", ABSX, 0x7E, 7, false},

	{"RTI", IMP, 0x40, 6, false},
	{"RTS", IMP, 0x60, 6, false},

	{"SBC", IMM, 0xE9, 2, false},
	{"SBC", ZP, 0xE5, 3, false},
	{"SBC", ZPX, 0xF5, 4, false},
	{"SBC", ABS, 0xED, 4, false},
	{"SBC", ABSX, 0xFD, 4, true},
	{"SBC", ABSY, 0xF9, 4, true},
	{"SBC", INDX, 0xE1, 6, false},
	{"SBC", INDY, 0xF1, 5, true},

	{"STA", ZP, 0x85, 3, false},
	{"STA", ZPX, 0x95, 4, false},
	{"STA", ABS, 0x8D, 4, false},
	{"STA", ABSX, 0x9D, 5, false},
	{"STA", ABSY, 0x99, 5, false},
	{"STA", INDX, 0x81, 6, false},
	{"STA", INDY, 0x91, 6, false},

	{"TXS", IMP, 0x9A, 2, false},
	{"TSX", IMP, 0xBA, 2, false},
	{"PHA", IMP, 0x48, 3, false},
	{"PLA", IMP, 0x68, 4, false},
	{"PHP", IMP, 0x08, 3, false},
	{"PLP", IMP, 0x28, 4, false},

	{"STX", ZP, 0x86, 3, false},
	{"STX", ZPY, 0x96, 4, false},
	{"STX", ABS, 0x8E, 4, false},

	{"STY", ZP, 0x84, 3, false},
	{"STY", ZPX, 0x94, 4, false},
	{"STY", ABS, 0x8C, 4, false},

	// CMOS extensions, see spec.md §4.1.
	{"PHX", IMP, 0xDA, 3, false},
	{"PHY", IMP, 0x5A, 3, false},
	{"PLX", IMP, 0xFA, 4, false},
	{"PLY", IMP, 0x7A, 4, false},
}

var (
	encodeTable = make(map[string]map[Mode]Opcode, 64)
	decodeTable [256]*Opcode

	branchMnemonics = map[string]bool{
		"BPL": true, "BMI": true, "BVC": true, "BVS": true,
		"BCC": true, "BCS": true, "BNE": true, "BEQ": true,
	}
)

func init() {
	for i := range opcodeTable {
		op := opcodeTable[i]
		if encodeTable[op.Mnemonic] == nil {
			encodeTable[op.Mnemonic] = make(map[Mode]Opcode, 4)
		}
		encodeTable[op.Mnemonic][op.Mode] = op
		decodeTable[op.Byte] = &opcodeTable[i]
	}
}

// Encode returns the opcode byte for a (mnemonic, mode) pair. The second
// return value is false if the 6502 ISA has no such combination, which is
// how "illegal addressing mode" is signaled per spec.md §3.
func Encode(mnemonic string, mode Mode) (byte, bool) {
	modes, ok := encodeTable[mnemonic]
	if !ok {
		return 0, false
	}
	op, ok := modes[mode]
	if !ok {
		return 0, false
	}
	return op.Byte, true
}

// Decode reverses Encode: given an opcode byte, it returns the Opcode it
// was assigned, or false if the byte is not a valid instruction.
func Decode(b byte) (Opcode, bool) {
	op := decodeTable[b]
	if op == nil {
		return Opcode{}, false
	}
	return *op, true
}

// OperandLength returns the number of operand bytes that follow the opcode
// byte for the given addressing mode: 0, 1, or 2.
func OperandLength(mode Mode) int {
	switch mode {
	case IMP, ACC:
		return 0
	case IMM, ZP, ZPX, ZPY, INDX, INDY, REL:
		return 1
	case ABS, ABSX, ABSY, IND:
		return 2
	default:
		return 0
	}
}

// InstructionLength is 1 (the opcode byte) plus OperandLength(mode).
func InstructionLength(mode Mode) int {
	return 1 + OperandLength(mode)
}

// IsBranch reports whether mnemonic is one of the eight relative-branch
// instructions, used by the assembler to force REL resolution.
func IsBranch(mnemonic string) bool {
	return branchMnemonics[mnemonic]
}

// Mnemonics lists every opcode mnemonic the table recognizes, used by the
// lexer to classify an identifier as OPCODE rather than LABEL.
func Mnemonics() map[string]bool {
	out := make(map[string]bool, len(encodeTable))
	for m := range encodeTable {
		out[m] = true
	}
	return out
}
