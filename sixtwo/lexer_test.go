package sixtwo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLineStripsCommentsAndBlank(t *testing.T) {
	_, ok := NormalizeLine("   ")
	assert.False(t, ok)

	_, ok = NormalizeLine("; full line comment")
	assert.False(t, ok)

	line, ok := NormalizeLine("  lda #$01 ; load one")
	assert.True(t, ok)
	assert.Equal(t, "LDA #$01", line)
}

func TestLexerBasicTokens(t *testing.T) {
	mnemonics := Mnemonics()
	lex := NewLexer("LDA #$0A,X", mnemonics)

	assert.Equal(t, Token{Type: TokOpcode, Str: "LDA"}, lex.NextToken())
	assert.Equal(t, Token{Type: TokHash}, lex.NextToken())
	assert.Equal(t, Token{Type: TokInteger, Int: 10}, lex.NextToken())
	assert.Equal(t, Token{Type: TokComma}, lex.NextToken())
	assert.Equal(t, Token{Type: TokRegX}, lex.NextToken())
	assert.Equal(t, Token{Type: TokEOL}, lex.NextToken())
}

func TestLexerDecimalAndLabel(t *testing.T) {
	lex := NewLexer("COUNT 10", Mnemonics())
	assert.Equal(t, Token{Type: TokLabel, Str: "COUNT"}, lex.NextToken())
	assert.Equal(t, Token{Type: TokInteger, Int: 10}, lex.NextToken())
}

func TestLexerPseudoOp(t *testing.T) {
	lex := NewLexer(".ORG $0600", Mnemonics())
	assert.Equal(t, Token{Type: TokPseudo, Str: "ORG"}, lex.NextToken())
	assert.Equal(t, Token{Type: TokInteger, Int: 0x0600}, lex.NextToken())
}

func TestLexerUngetToken(t *testing.T) {
	lex := NewLexer("LDA", Mnemonics())
	first := lex.NextToken()
	lex.UngetToken(first)
	assert.Equal(t, first, lex.NextToken())
	assert.Equal(t, Token{Type: TokEOL}, lex.NextToken())
}

func TestLexerCommentToEndOfLine(t *testing.T) {
	lex := NewLexer("LDA #1 ; comment", Mnemonics())
	assert.Equal(t, TokOpcode, lex.NextToken().Type)
	assert.Equal(t, TokHash, lex.NextToken().Type)
	assert.Equal(t, TokInteger, lex.NextToken().Type)
	assert.Equal(t, Token{Type: TokEOL}, lex.NextToken())
}
