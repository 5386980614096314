package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Sentinel errors. Every error returned by this package matches one of these
// with [errors.Is].
var (
	ErrParse          = NewError("parse error")
	ErrEmptyInput     = NewError("empty input")
	ErrReadInput      = NewError("failed to read input")
	ErrUnboundName    = NewError("unbound name")
	ErrTypeMismatch   = NewError("type mismatch")
	ErrDivisionByZero = NewError("division by zero")
	ErrOverflow       = NewError("integer overflow")
	ErrArityMismatch  = NewError("arity mismatch")
	ErrUnresolvedCall = NewError("unresolved call")
	ErrNotCallable    = NewError("not callable")
	ErrUnknownOption  = NewError("unknown option")
	ErrInvalidRegex   = NewError("invalid regular expression")
	ErrUsingInLine    = NewError("'using' cannot be evaluated as a single line")
	ErrHost           = NewError("host operation failed")
	ErrCallDepth      = NewError("maximum call depth exceeded")
)

// Error is an error with optional structured logging attributes.
// It implements both error and slog.LogValuer.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError converts err into an *Error, returning the first *Error in its
// chain if there is one. A *ParseError is wrapped whole so that its position
// is kept.
func WrapError(err error) *Error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return &Error{err: err}
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{err: err}
}

// Error formats as "<msg>: <cause>", omitting whichever part is empty.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel with the same message, so that
// errors derived with [Error.With], [Error.Wrap], or [Error.Detail] still
// match the sentinel they came from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// Detail returns a copy of e whose cause is a formatted message.
func (e *Error) Detail(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	newAttrs = append(newAttrs, e.attrs...)
	newAttrs = append(newAttrs, attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: newAttrs}
}

// ParseError reports where and why parsing stopped.
type ParseError struct {
	Line      int    // 1-based line of the failure
	Column    int    // 1-based column (in runes) of the failure
	Expected  string // what the parser was looking for
	Remainder string // unconsumed input starting at the failure
	Source    string // complete input, for context
}

// Unwrap makes every *ParseError match [ErrParse].
func (e *ParseError) Unwrap() error { return ErrParse }

// Error renders the failure with the offending source line and a caret.
func (e *ParseError) Error() string {
	var b strings.Builder

	b.WriteString("parse error at line ")
	b.WriteString(strconv.Itoa(e.Line))
	b.WriteString(", column ")
	b.WriteString(strconv.Itoa(e.Column))
	b.WriteString(": expected ")
	b.WriteString(e.Expected)

	lines := strings.Split(e.Source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return b.String()
	}

	num := strconv.Itoa(e.Line)

	b.WriteString("\n  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(lines[e.Line-1])
	b.WriteString("\n")
	// 2 leading spaces + " | "
	b.WriteString(strings.Repeat(" ", len(num)+5+max(e.Column-1, 0)))
	b.WriteString("^")

	return b.String()
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	rest := e.Remainder
	if len(rest) > 32 {
		rest = rest[:32] + "..."
	}

	return slog.GroupValue(
		slog.String("error", ErrParse.msg),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
		slog.String("expected", e.Expected),
		slog.String("remainder", rest),
	)
}
