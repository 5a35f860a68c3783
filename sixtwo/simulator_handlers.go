package sixtwo

// handlers maps each mnemonic to the function that executes it. This is
// the function-pointer dispatch table spec.md's Design Notes call for in
// place of Python's bound-method-per-opcode dispatch in
// original_source/processor.py; grounded on the handler-table shape of
// other_examples/beevik-go6502's cpu.go (its instruction set is a
// [256]func(*CPU) byte array keyed by opcode byte directly — this table is
// keyed by mnemonic instead, since Mode-specific operand resolution is
// shared across every addressing-mode variant of a given mnemonic).
//
// Each handler returns the number of cycles to add beyond the opcode's
// nominal Cycles (page-crossing and taken-branch adjustments).
var handlers map[string]func(*CPU, Opcode) int

func init() {
	handlers = map[string]func(*CPU, Opcode) int{
		"ADC": hAdc,
		"AND": hBitwise(func(a, v byte) byte { return a & v }),
		"ASL": hShift(true, true),
		"BIT": hBit,
		"BRK": hBrk,
		"CMP": hCompare(func(c *CPU) byte { return c.A }),
		"CPX": hCompare(func(c *CPU) byte { return c.X }),
		"CPY": hCompare(func(c *CPU) byte { return c.Y }),
		"DEC": hIncDec(-1),
		"INC": hIncDec(1),
		"EOR": hBitwise(func(a, v byte) byte { return a ^ v }),
		"ORA": hBitwise(func(a, v byte) byte { return a | v }),
		"LSR": hShift(false, true),
		"ROL": hShift(true, false),
		"ROR": hShift(false, false),
		"SBC": hSbc,

		"CLC": hSetFlag(FlagC, false),
		"SEC": hSetFlag(FlagC, true),
		"CLI": hSetFlag(FlagI, false),
		"SEI": hSetFlag(FlagI, true),
		"CLV": hSetFlag(FlagV, false),
		"CLD": hSetFlag(FlagD, false),
		"SED": hSetFlag(FlagD, true),

		"BPL": hBranch(func(c *CPU) bool { return !c.flag(FlagN) }),
		"BMI": hBranch(func(c *CPU) bool { return c.flag(FlagN) }),
		"BVC": hBranch(func(c *CPU) bool { return !c.flag(FlagV) }),
		"BVS": hBranch(func(c *CPU) bool { return c.flag(FlagV) }),
		"BCC": hBranch(func(c *CPU) bool { return !c.flag(FlagC) }),
		"BCS": hBranch(func(c *CPU) bool { return c.flag(FlagC) }),
		"BNE": hBranch(func(c *CPU) bool { return !c.flag(FlagZ) }),
		"BEQ": hBranch(func(c *CPU) bool { return c.flag(FlagZ) }),

		"JMP": hJmp,
		"JSR": hJsr,
		"RTS": hRts,
		"RTI": hRti,
		"NOP": func(c *CPU, op Opcode) int { return 0 },

		"LDA": hLoad(func(c *CPU, v byte) { c.A = v }),
		"LDX": hLoad(func(c *CPU, v byte) { c.X = v }),
		"LDY": hLoad(func(c *CPU, v byte) { c.Y = v }),
		"STA": hStore(func(c *CPU) byte { return c.A }),
		"STX": hStore(func(c *CPU) byte { return c.X }),
		"STY": hStore(func(c *CPU) byte { return c.Y }),

		"TAX": hTransfer(func(c *CPU) byte { return c.A }, func(c *CPU, v byte) { c.X = v }, true),
		"TXA": hTransfer(func(c *CPU) byte { return c.X }, func(c *CPU, v byte) { c.A = v }, true),
		"TAY": hTransfer(func(c *CPU) byte { return c.A }, func(c *CPU, v byte) { c.Y = v }, true),
		"TYA": hTransfer(func(c *CPU) byte { return c.Y }, func(c *CPU, v byte) { c.A = v }, true),
		"TSX": hTransfer(func(c *CPU) byte { return c.SP }, func(c *CPU, v byte) { c.X = v }, true),
		"TXS": hTransfer(func(c *CPU) byte { return c.X }, func(c *CPU, v byte) { c.SP = v }, false),
		"DEX": hStep(func(c *CPU) byte { return c.X }, func(c *CPU, v byte) { c.X = v }, -1),
		"INX": hStep(func(c *CPU) byte { return c.X }, func(c *CPU, v byte) { c.X = v }, 1),
		"DEY": hStep(func(c *CPU) byte { return c.Y }, func(c *CPU, v byte) { c.Y = v }, -1),
		"INY": hStep(func(c *CPU) byte { return c.Y }, func(c *CPU, v byte) { c.Y = v }, 1),

		"PHA": func(c *CPU, op Opcode) int { c.push(c.A); return 0 },
		"PHX": func(c *CPU, op Opcode) int { c.push(c.X); return 0 },
		"PHY": func(c *CPU, op Opcode) int { c.push(c.Y); return 0 },
		"PHP": func(c *CPU, op Opcode) int { c.push(c.P | FlagB | FlagUnused); return 0 },
		"PLA": func(c *CPU, op Opcode) int { c.A = c.pop(); c.setNZ(c.A); return 0 },
		"PLX": func(c *CPU, op Opcode) int { c.X = c.pop(); c.setNZ(c.X); return 0 },
		"PLY": func(c *CPU, op Opcode) int { c.Y = c.pop(); c.setNZ(c.Y); return 0 },
		"PLP": func(c *CPU, op Opcode) int { c.P = (c.pop() &^ FlagB) | FlagUnused; return 0 },
	}
}

// hLoad returns a handler for LDA/LDX/LDY: read the operand, store it via
// assign, set N/Z, and pass through any page-crossing cycle.
func hLoad(assign func(*CPU, byte)) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		v, extra := c.loadOperand(op)
		assign(c, v)
		c.setNZ(v)
		return extra
	}
}

// hStore returns a handler for STA/STX/STY: stores never earn a
// page-crossing cycle (op.PageAdj is false for every store entry in
// opcodeTable), so this ignores the addressing mode's crossed flag.
func hStore(read func(*CPU) byte) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		addr := c.storeAddr(op)
		c.Mem.Write(addr, read(c))
		return 0
	}
}

func hBitwise(op2 func(a, v byte) byte) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		v, extra := c.loadOperand(op)
		c.A = op2(c.A, v)
		c.setNZ(c.A)
		return extra
	}
}

func hBit(c *CPU, op Opcode) int {
	v, extra := c.loadOperand(op)
	c.setFlag(FlagZ, c.A&v == 0)
	c.setFlag(FlagN, v&0x80 != 0)
	c.setFlag(FlagV, v&0x40 != 0)
	return extra
}

func hCompare(reg func(*CPU) byte) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		v, extra := c.loadOperand(op)
		r := reg(c)
		d := r - v
		c.setFlag(FlagC, r >= v)
		c.setNZ(d)
		return extra
	}
}

// hShift implements ASL/LSR/ROL/ROR. left selects the shift direction;
// plain selects ASL/LSR (true: carry is just the bit shifted out) versus
// ROL/ROR (false: the old carry is shifted back in on the other end).
func hShift(left, plain bool) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		var addr uint32
		var v byte
		if op.Mode == ACC {
			v = c.A
		} else {
			addr, _ = c.operandAddr(op.Mode)
			v = c.Mem.Read(addr)
		}

		oldCarry := c.flag(FlagC)
		var newCarry bool
		var result byte
		if left {
			newCarry = v&0x80 != 0
			result = v << 1
			if !plain && oldCarry {
				result |= 0x01
			}
		} else {
			newCarry = v&0x01 != 0
			result = v >> 1
			if !plain && oldCarry {
				result |= 0x80
			}
		}

		c.setFlag(FlagC, newCarry)
		c.setNZ(result)
		if op.Mode == ACC {
			c.A = result
		} else {
			c.Mem.Write(addr, result)
		}
		return 0
	}
}

func hIncDec(delta int) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		addr, _ := c.operandAddr(op.Mode)
		v := byte(int(c.Mem.Read(addr)) + delta)
		c.Mem.Write(addr, v)
		c.setNZ(v)
		return 0
	}
}

func hStep(get func(*CPU) byte, set func(*CPU, byte), delta int) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		v := byte(int(get(c)) + delta)
		set(c, v)
		c.setNZ(v)
		return 0
	}
}

func hTransfer(get func(*CPU) byte, set func(*CPU, byte), touchesFlags bool) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		v := get(c)
		set(c, v)
		if touchesFlags {
			c.setNZ(v)
		}
		return 0
	}
}

func hSetFlag(flag byte, value bool) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		c.setFlag(flag, value)
		return 0
	}
}

// hBranch implements the eight relative branches: 0 extra cycles if not
// taken, +1 if taken, +1 more if the branch crosses a page, per spec.md §5.
func hBranch(cond func(*CPU) bool) func(*CPU, Opcode) int {
	return func(c *CPU, op Opcode) int {
		disp := int8(c.fetch())
		if !cond(c) {
			return 0
		}
		old := c.PC
		target := uint32(int32(c.PC)+int32(disp)) & 0xFFFF
		c.PC = target
		extra := 1
		if old&0xFF00 != target&0xFF00 {
			extra++
		}
		return extra
	}
}

func hJmp(c *CPU, op Opcode) int {
	addr, _ := c.operandAddr(op.Mode)
	c.PC = addr
	return 0
}

// hJsr pushes the address of the last byte of the JSR instruction, not the
// address of the next instruction: the well-known 6502 "off by one" that
// RTS compensates for by adding 1 after popping (spec.md §5).
func hJsr(c *CPU, op Opcode) int {
	addr, _ := c.operandAddr(ABS)
	c.pushAddr(uint16((c.PC - 1) & 0xFFFF))
	c.PC = addr
	return 0
}

func hRts(c *CPU, op Opcode) int {
	ret := c.popAddr()
	c.PC = (uint32(ret) + 1) & 0xFFFF
	return 0
}

func hRti(c *CPU, op Opcode) int {
	c.P = (c.pop() &^ FlagB) | FlagUnused
	c.PC = uint32(c.popAddr())
	return 0
}

// hBrk implements the software interrupt: it skips the padding byte that
// follows the BRK opcode, pushes the return address and status with B set,
// and vectors through 0xFFFE/0xFFFF. The simulator treats BRK as a stop
// condition for a single Run/Step session, same as original_source's
// processor.py halting on a BRK byte during execution.
func hBrk(c *CPU, op Opcode) int {
	c.PC = (c.PC + 1) & 0xFFFF
	c.pushAddr(uint16(c.PC))
	c.push(c.P | FlagB | FlagUnused)
	c.setFlag(FlagI, true)
	c.PC = uint32(c.Mem.Read16(irqVector))
	c.Halted = true
	return 0
}

// hAdc implements ADC using the canonical overflow formula
// (A^r)&(M^r)&0x80, computed from the binary sum before any BCD
// adjustment is applied to A itself.
func hAdc(c *CPU, op Opcode) int {
	v, extra := c.loadOperand(op)
	a := c.A
	var carryIn int
	if c.flag(FlagC) {
		carryIn = 1
	}
	sum := int(a) + int(v) + carryIn
	r := byte(sum)
	c.setFlag(FlagV, (a^r)&(v^r)&0x80 != 0)
	c.setFlag(FlagC, sum > 0xFF)

	if c.flag(FlagD) {
		lo := int(a&0x0F) + int(v&0x0F) + carryIn
		hi := int(a&0xF0) + int(v&0xF0)
		if lo > 0x09 {
			lo += 0x06
			hi += 0x10
		}
		if hi > 0x90 {
			hi += 0x60
			c.setFlag(FlagC, true)
		}
		r = byte(hi&0xF0) | byte(lo&0x0F)
	}

	c.A = r
	c.setNZ(c.A)
	return extra
}

// hSbc implements SBC using the canonical overflow formula
// (A^r)&((~M)^r)&0x80, expressed as an addition of the ones' complement of
// the operand (the standard trick for deriving 6502 subtract-with-borrow
// from the adder).
func hSbc(c *CPU, op Opcode) int {
	v, extra := c.loadOperand(op)
	a := c.A
	notV := ^v
	var carryIn int
	if c.flag(FlagC) {
		carryIn = 1
	}
	sum := int(a) + int(notV) + carryIn
	r := byte(sum)
	c.setFlag(FlagV, (a^r)&(notV^r)&0x80 != 0)
	c.setFlag(FlagC, sum > 0xFF)

	if c.flag(FlagD) {
		borrow := 1 - carryIn
		lo := int(a&0x0F) - int(v&0x0F) - borrow
		hi := int(a>>4) - int(v>>4)
		if lo < 0 {
			lo += 10
			hi--
		}
		if hi < 0 {
			hi += 10
		}
		r = byte(hi<<4) | byte(lo&0x0F)
	}

	c.A = r
	c.setNZ(c.A)
	return extra
}
