package sixtwo

import (
	"strings"
)

// symbol is a resolved label: either a code address (bound by a LABEL:
// definition) or an EQU'd constant. Pass 1 sets defined=true for every
// label it binds; pass 2 reports KindUndefinedLabel for any reference that
// pass 1 never saw.
type symbol struct {
	value   int
	defined bool
}

// AssembledLine is one line of pass 2 output, used both to build a listing
// and to drive -c address-prefixed output (spec.md §6).
type AssembledLine struct {
	LineNo int
	Addr   uint32
	Bytes  []byte
}

// AssembleResult is everything Assemble produces: the machine code in
// program order, the address it starts at, and a line-by-line listing.
type AssembleResult struct {
	Origin uint32
	Code   []byte
	Lines  []AssembledLine
}

// Assembler implements the two-pass symbolic assembler of spec.md §4.4:
// pass 1 binds labels and advances the program counter silently; pass 2
// re-walks the same source, emits bytes, and collects every diagnostic
// instead of stopping at the first one. Grounded on
// original_source/assembler.py's two-pass structure and beevik/go6502's
// asm.go pseudo-op dispatch-table style.
type Assembler struct {
	symbols   map[string]*symbol
	pc        uint32
	origin    uint32
	haveOrg   bool
	mnemonics map[string]bool
}

// NewAssembler returns an Assembler ready to assemble one source file.
func NewAssembler() *Assembler {
	return &Assembler{symbols: make(map[string]*symbol), mnemonics: Mnemonics()}
}

// Assemble runs both passes over source and returns whatever pass 2
// produced along with every diagnostic collected. Diagnostics are
// line-tagged *Error values; a non-empty error slice does not imply an
// empty Code, since pass 2 keeps emitting after a line-local error so
// later independent errors are still reported.
func (a *Assembler) Assemble(source string) (*AssembleResult, []error) {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	a.pc, a.origin, a.haveOrg = 0, 0, false
	p1 := &passState{pass: 1, asm: a}
	for i, raw := range lines {
		p1.assembleLine(i+1, raw)
	}

	a.pc, a.haveOrg = 0, false
	result := &AssembleResult{}
	p2 := &passState{pass: 2, asm: a, result: result}
	for i, raw := range lines {
		p2.assembleLine(i+1, raw)
	}
	result.Origin = a.origin
	return result, p2.errs
}

// passState carries the per-pass mutable state (current errors, emitted
// bytes) that both passes need but that must not leak between them.
type passState struct {
	pass   int
	asm    *Assembler
	result *AssembleResult
	errs   []error

	// sawLabel is set by evalPrimary whenever it resolves a bare LABEL
	// token, so parseOperand can force ABS addressing for any
	// label-derived operand instead of picking ZP based on a forward
	// reference's placeholder value of 0 (which would disagree between
	// pass 1 and pass 2 once the label's real address is known).
	sawLabel bool
}

func (p *passState) fail(line int, kind Kind, format string, args ...interface{}) {
	p.errs = append(p.errs, newError(kind, format, args...).WithLine(line))
}

func (p *passState) assembleLine(lineNo int, raw string) {
	norm, ok := NormalizeLine(raw)
	if !ok {
		return
	}
	lex := NewLexer(norm, p.asm.mnemonics)

	tok := lex.NextToken()
	if tok.Type == TokLabel {
		next := lex.NextToken()
		switch {
		case next.Type == TokColon:
			p.bindLabel(lineNo, tok.Str, int(p.asm.pc))
			tok = lex.NextToken()
		case next.Type == TokEqual, next.Type == TokPseudo && next.Str == "EQU":
			p.assignEqu(lineNo, lex, tok.Str)
			return
		default:
			lex.UngetToken(next)
			p.bindLabel(lineNo, tok.Str, int(p.asm.pc))
			tok = lex.NextToken()
		}
	} else if tok.Type == TokStar {
		next := lex.NextToken()
		if next.Type == TokEqual {
			p.setOrigin(lineNo, lex)
			return
		}
		lex.UngetToken(next)
	}

	switch tok.Type {
	case TokEOL:
		return
	case TokPseudo:
		p.pseudoOp(lineNo, lex, tok.Str)
	case TokOpcode:
		p.instruction(lineNo, lex, tok.Str)
	default:
		if p.pass == 2 {
			p.fail(lineNo, KindSyntaxError, "unexpected token %s", tok)
		}
	}
}

func (p *passState) bindLabel(lineNo int, name string, value int) {
	if p.pass == 1 {
		p.asm.symbols[name] = &symbol{value: value, defined: true}
		return
	}
}

func (p *passState) assignEqu(lineNo int, lex *Lexer, name string) {
	val, err := p.evalExpr(lineNo, lex)
	if err != nil {
		if p.pass == 2 {
			p.errs = append(p.errs, err)
		}
		return
	}
	if p.pass == 1 {
		p.asm.symbols[name] = &symbol{value: val, defined: true}
	}
}

func (p *passState) setOrigin(lineNo int, lex *Lexer) {
	val, err := p.evalExpr(lineNo, lex)
	if err != nil {
		if p.pass == 2 {
			p.errs = append(p.errs, err)
		}
		return
	}
	p.asm.pc = uint32(val) & 0xFFFF
	if !p.asm.haveOrg {
		p.asm.origin = p.asm.pc
		p.asm.haveOrg = true
	}
}

func (p *passState) pseudoOp(lineNo int, lex *Lexer, op string) {
	switch op {
	case "ORG":
		p.setOrigin(lineNo, lex)
	case "BYTE", "DB":
		p.emitByteList(lineNo, lex)
	case "WORD", "DW":
		p.emitWordList(lineNo, lex)
	case "ASCII", "TX":
		p.emitAscii(lineNo, lex)
	case "END":
		return
	default:
		if p.pass == 2 {
			p.fail(lineNo, KindSyntaxError, "unknown directive .%s", op)
		}
	}
}

func (p *passState) emitByteList(lineNo int, lex *Lexer) {
	for {
		val, err := p.evalExpr(lineNo, lex)
		if err != nil {
			if p.pass == 2 {
				p.errs = append(p.errs, err)
			}
			return
		}
		if val < -128 || val > 255 {
			if p.pass == 2 {
				p.fail(lineNo, KindValueOutOfRange, "byte value %d out of range", val)
			}
		}
		p.emit(lineNo, byte(val))
		tok := lex.NextToken()
		if tok.Type != TokComma {
			lex.UngetToken(tok)
			return
		}
	}
}

func (p *passState) emitWordList(lineNo int, lex *Lexer) {
	for {
		val, err := p.evalExpr(lineNo, lex)
		if err != nil {
			if p.pass == 2 {
				p.errs = append(p.errs, err)
			}
			return
		}
		if val < 0 || val > 65535 {
			if p.pass == 2 {
				p.fail(lineNo, KindValueOutOfRange, "word value %d out of range", val)
			}
		}
		p.emit(lineNo, byte(val), byte(val>>8))
		tok := lex.NextToken()
		if tok.Type != TokComma {
			lex.UngetToken(tok)
			return
		}
	}
}

func (p *passState) emitAscii(lineNo int, lex *Lexer) {
	tok := lex.NextToken()
	if tok.Type != TokQuote {
		if p.pass == 2 {
			p.fail(lineNo, KindSyntaxError, "expected quoted string after .ASCII")
		}
		return
	}
	// The lexer tokenizes the opening and closing quotes as TokQuote and
	// everything else on the line as LABEL/OPCODE/etc fragments; reconstruct
	// the literal text by re-scanning the raw line between quote positions.
	text := lex.stringLiteral()
	for i := 0; i < len(text); i++ {
		p.emit(lineNo, text[i])
	}
}

// emit appends bytes to the current line's output and advances the PC.
// During pass 1 it only advances the PC (byte values may still be
// unresolved forward references); during pass 2 it also records the bytes.
func (p *passState) emit(lineNo int, bytes ...byte) {
	if p.pass == 2 {
		p.result.Code = append(p.result.Code, bytes...)
		p.result.Lines = append(p.result.Lines, AssembledLine{
			LineNo: lineNo,
			Addr:   p.asm.pc,
			Bytes:  append([]byte(nil), bytes...),
		})
	}
	p.asm.pc = (p.asm.pc + uint32(len(bytes))) & 0xFFFF
}

func (p *passState) instruction(lineNo int, lex *Lexer, mnemonic string) {
	mode, operand, err := p.parseOperand(lineNo, lex, mnemonic)
	if err != nil {
		if p.pass == 2 {
			p.errs = append(p.errs, err)
		}
		// Pass 1 cannot know the instruction length if the addressing
		// mode itself failed to parse; assume the shortest (1-byte) form
		// so later labels don't drift further than necessary.
		p.asm.pc = (p.asm.pc + 1) & 0xFFFF
		return
	}

	opByte, ok := Encode(mnemonic, mode)
	if !ok {
		if p.pass == 2 {
			p.fail(lineNo, KindIllegalAddressingMode, "%s does not support %s addressing", mnemonic, mode)
		}
		p.asm.pc = (p.asm.pc + uint32(InstructionLength(mode))) & 0xFFFF
		return
	}

	if mode == REL {
		target := operand
		disp := target - int(p.asm.pc+2)
		if disp < -128 || disp > 127 {
			if p.pass == 2 {
				p.fail(lineNo, KindBranchOutOfRange, "branch target %04X out of range", target&0xFFFF)
			}
			disp = 0
		}
		p.emit(lineNo, opByte, byte(int8(disp)))
		return
	}

	switch OperandLength(mode) {
	case 0:
		p.emit(lineNo, opByte)
	case 1:
		if operand < -128 || operand > 255 {
			if p.pass == 2 {
				p.fail(lineNo, KindValueOutOfRange, "operand %d out of range for %s", operand, mode)
			}
		}
		p.emit(lineNo, opByte, byte(operand))
	case 2:
		if operand < 0 || operand > 65535 {
			if p.pass == 2 {
				p.fail(lineNo, KindValueOutOfRange, "operand %d out of range for %s", operand, mode)
			}
		}
		p.emit(lineNo, opByte, byte(operand), byte(operand>>8))
	}
}

// parseOperand determines the addressing mode implied by the tokens
// following a mnemonic and evaluates its operand expression, per the
// syntax table in spec.md §4.4: bare mnemonic is IMP, "A" is ACC, "#expr"
// is IMM, "(expr,X)"/"(expr),Y" are the indexed-indirect forms, "(expr)"
// is IND (JMP only), and a bare expression is ZP/ABS (or REL for
// branches) depending on its value and the ,X/,Y suffix.
func (p *passState) parseOperand(lineNo int, lex *Lexer, mnemonic string) (Mode, int, error) {
	tok := lex.NextToken()

	if tok.Type == TokEOL {
		return IMP, 0, nil
	}
	if tok.Type == TokRegA {
		return ACC, 0, nil
	}
	if tok.Type == TokHash {
		val, err := p.evalExpr(lineNo, lex)
		if err != nil {
			return IMM, 0, err
		}
		return IMM, val, nil
	}
	if tok.Type == TokLParen {
		val, err := p.evalExpr(lineNo, lex)
		if err != nil {
			return INDX, 0, err
		}
		next := lex.NextToken()
		switch next.Type {
		case TokComma:
			xy := lex.NextToken()
			if xy.Type != TokRegX {
				return INDX, 0, newError(KindSyntaxError, "expected ,X in indexed-indirect operand").WithLine(lineNo)
			}
			if t := lex.NextToken(); t.Type != TokRParen {
				return INDX, 0, newError(KindSyntaxError, "expected ) in indexed-indirect operand").WithLine(lineNo)
			}
			return INDX, val, nil
		case TokRParen:
			after := lex.NextToken()
			if after.Type == TokComma {
				xy := lex.NextToken()
				if xy.Type != TokRegY {
					return INDY, 0, newError(KindSyntaxError, "expected ,Y in indirect-indexed operand").WithLine(lineNo)
				}
				return INDY, val, nil
			}
			lex.UngetToken(after)
			return IND, val, nil
		default:
			return INDX, 0, newError(KindSyntaxError, "malformed indirect operand").WithLine(lineNo)
		}
	}

	lex.UngetToken(tok)
	p.sawLabel = false
	val, err := p.evalExpr(lineNo, lex)
	if err != nil {
		return ABS, 0, err
	}
	fitsZP := val >= 0 && val <= 255 && !p.sawLabel

	if IsBranch(mnemonic) {
		return REL, val, nil
	}

	suffix := lex.NextToken()
	switch suffix.Type {
	case TokComma:
		xy := lex.NextToken()
		switch xy.Type {
		case TokRegX:
			if fitsZP {
				return ZPX, val, nil
			}
			return ABSX, val, nil
		case TokRegY:
			if fitsZP {
				return ZPY, val, nil
			}
			return ABSY, val, nil
		default:
			return ABS, 0, newError(KindSyntaxError, "expected X or Y after ','").WithLine(lineNo)
		}
	default:
		lex.UngetToken(suffix)
		if fitsZP {
			return ZP, val, nil
		}
		return ABS, val, nil
	}
}

// evalExpr parses the expression grammar of spec.md §4.4:
//
//	expr   := term (('+' | '-') term)*
//	term   := factor ('*' factor)*
//	factor := ('<' | '>')? unary
//	unary  := ('+' | '-')? primary
//	primary := INTEGER | LABEL | '*' | '[' expr ']'
//
// A bare '*' only ever appears in primary position, so the classic
// assembler ambiguity between "multiply" and "current PC" resolves itself
// in the recursive descent: term's loop consumes '*' as an operator only
// after a left-hand factor has already been parsed.
func (p *passState) evalExpr(lineNo int, lex *Lexer) (int, error) {
	return p.evalAddSub(lineNo, lex)
}

func (p *passState) evalAddSub(lineNo int, lex *Lexer) (int, error) {
	val, err := p.evalMulDiv(lineNo, lex)
	if err != nil {
		return 0, err
	}
	for {
		tok := lex.NextToken()
		switch tok.Type {
		case TokPlus:
			rhs, err := p.evalMulDiv(lineNo, lex)
			if err != nil {
				return 0, err
			}
			val += rhs
		case TokMinus:
			rhs, err := p.evalMulDiv(lineNo, lex)
			if err != nil {
				return 0, err
			}
			val -= rhs
		default:
			lex.UngetToken(tok)
			return val, nil
		}
	}
}

func (p *passState) evalMulDiv(lineNo int, lex *Lexer) (int, error) {
	val, err := p.evalFactor(lineNo, lex)
	if err != nil {
		return 0, err
	}
	for {
		tok := lex.NextToken()
		if tok.Type != TokStar {
			lex.UngetToken(tok)
			return val, nil
		}
		rhs, err := p.evalFactor(lineNo, lex)
		if err != nil {
			return 0, err
		}
		val *= rhs
	}
}

func (p *passState) evalFactor(lineNo int, lex *Lexer) (int, error) {
	tok := lex.NextToken()
	switch tok.Type {
	case TokLAngle:
		val, err := p.evalUnary(lineNo, lex)
		if err != nil {
			return 0, err
		}
		return val & 0xFF, nil
	case TokRAngle:
		val, err := p.evalUnary(lineNo, lex)
		if err != nil {
			return 0, err
		}
		return (val >> 8) & 0xFF, nil
	default:
		lex.UngetToken(tok)
		return p.evalUnary(lineNo, lex)
	}
}

func (p *passState) evalUnary(lineNo int, lex *Lexer) (int, error) {
	tok := lex.NextToken()
	switch tok.Type {
	case TokMinus:
		val, err := p.evalPrimary(lineNo, lex)
		if err != nil {
			return 0, err
		}
		return -val, nil
	case TokPlus:
		return p.evalPrimary(lineNo, lex)
	default:
		lex.UngetToken(tok)
		return p.evalPrimary(lineNo, lex)
	}
}

func (p *passState) evalPrimary(lineNo int, lex *Lexer) (int, error) {
	tok := lex.NextToken()
	switch tok.Type {
	case TokInteger:
		return tok.Int, nil
	case TokStar:
		return int(p.asm.pc), nil
	case TokLSquare:
		val, err := p.evalAddSub(lineNo, lex)
		if err != nil {
			return 0, err
		}
		if close := lex.NextToken(); close.Type != TokRSquare {
			return 0, newError(KindSyntaxError, "expected ]").WithLine(lineNo)
		}
		return val, nil
	case TokLabel:
		p.sawLabel = true
		sym, ok := p.asm.symbols[tok.Str]
		if !ok || !sym.defined {
			if p.pass == 2 {
				return 0, newError(KindUndefinedLabel, "undefined label %s", tok.Str).WithLine(lineNo)
			}
			return 0, nil
		}
		return sym.value, nil
	default:
		return 0, newError(KindSyntaxError, "expected value, found %s", tok).WithLine(lineNo)
	}
}
