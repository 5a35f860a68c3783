package sixtwo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the error categories the toolchain surfaces.
// Propagation differs by component: the lexer never returns a Kind (it
// always produces a token), the assembler collects them line-by-line, and
// the disassembler/simulator stop at the first one encountered.
type Kind int

const (
	// KindIO covers file access failures; the core never opens files
	// itself, but wraps I/O errors handed to it by the caller.
	KindIO Kind = iota
	KindInvalidAddress
	KindSyntaxError
	KindUndefinedLabel
	KindIllegalAddressingMode
	KindValueOutOfRange
	KindBranchOutOfRange
	KindUnknownOpcode
	KindMemoryOverflow
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IO"
	case KindInvalidAddress:
		return "InvalidAddress"
	case KindSyntaxError:
		return "SyntaxError"
	case KindUndefinedLabel:
		return "UndefinedLabel"
	case KindIllegalAddressingMode:
		return "IllegalAddressingMode"
	case KindValueOutOfRange:
		return "ValueOutOfRange"
	case KindBranchOutOfRange:
		return "BranchOutOfRange"
	case KindUnknownOpcode:
		return "UnknownOpcode"
	case KindMemoryOverflow:
		return "MemoryOverflow"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every core component. It
// carries a Kind for programmatic dispatch plus an optional 1-based source
// line number, filled in by the assembler during pass 2.
type Error struct {
	Kind Kind
	Line int
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Kind, e.Line, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.err }

// newError constructs an Error without a wrapped cause.
func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// wrapError constructs an Error that wraps an underlying cause using
// github.com/pkg/errors so the original stack context is not lost.
func wrapError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: errors.WithStack(cause)}
}

// WithLine returns a copy of the error annotated with a source line number.
// Pass 2 of the assembler calls this before appending a diagnostic so every
// reported error carries its source line number. No file name is attached,
// and Error() prints none.
func (e *Error) WithLine(line int) *Error {
	cp := *e
	cp.Line = line
	return &cp
}
