package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput    = NewError("failed to read input")
	ErrInvalidCache = NewError("invalid parse cache entry")
	ErrFormat       = NewError("failed to format program")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
// Errors that already are (or wrap) an *Error are returned as that *Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
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

// Is reports whether target is the sentinel e was derived from.
// Errors derived via Wrap or With compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// DiagnosticKind classifies a syntax failure.
type DiagnosticKind int

const (
	LexError             DiagnosticKind = iota + 1 // lex error
	UnexpectedToken                                // unexpected token
	UnclosedBlock                                  // unclosed block
	UnclosedString                                 // unclosed string
	UnexpectedEndOfInput                           // unexpected end of input
	MaxDepthExceeded                               // maximum nesting depth exceeded
)

// String returns a human-readable name for the kind.
func (k DiagnosticKind) String() string {
	switch k {
	case LexError:
		return "lex error"

	case UnexpectedToken:
		return "unexpected token"

	case UnclosedBlock:
		return "unclosed block"

	case UnclosedString:
		return "unclosed string"

	case UnexpectedEndOfInput:
		return "unexpected end of input"

	case MaxDepthExceeded:
		return "maximum nesting depth exceeded"

	default:
		return "DiagnosticKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Diagnostic describes the first syntax failure found in a source text.
//
// Expected lists the token kinds the failing production would have accepted
// (empty for lexical failures). Found is the offending token; for lexical
// failures it holds the offending text with Kind EOF.
type Diagnostic struct {
	Kind     DiagnosticKind
	Pos      Position
	Expected []Kind
	Found    Token
	Msg      string
	Source   string // full source text, used to render snippets
}

// Error implements the error interface.
// The format is "<line>:<col>: <kind>: <message>".
func (d *Diagnostic) Error() string {
	var sb strings.Builder

	sb.WriteString(d.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(d.Kind.String())

	if d.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Msg)
	}

	return sb.String()
}

// Is reports whether target is a *Diagnostic of the same kind.
// A target with a zero Kind matches any diagnostic.
func (d *Diagnostic) Is(target error) bool {
	t, ok := target.(*Diagnostic)
	if !ok {
		return false
	}

	return t.Kind == 0 || t.Kind == d.Kind
}

// LogValue implements slog.LogValuer.
func (d *Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", d.Kind.String()),
		slog.Int("offset", d.Pos.Offset),
		slog.Int("line", d.Pos.Line),
		slog.Int("column", d.Pos.Column),
		slog.String("message", d.Msg),
	}

	if len(d.Expected) > 0 {
		attrs = append(attrs, slog.String("expected", d.expected()))
	}

	return slog.GroupValue(attrs...)
}

// Snippet renders the diagnostic with the offending source line and a caret
// under the failing column:
//
//	parse error at line 1, column 5: unexpected token: ...
//	  1 | let = 1
//	          ^
//	expected: identifier
//
// Without source text, Snippet returns the same text as Error.
func (d *Diagnostic) Snippet() string {
	if d.Source == "" || !d.Pos.IsValid() {
		return d.Error()
	}

	var sb strings.Builder

	sb.WriteString("parse error at line ")
	sb.WriteString(strconv.Itoa(d.Pos.Line))
	sb.WriteString(", column ")
	sb.WriteString(strconv.Itoa(d.Pos.Column))
	sb.WriteString(": ")
	sb.WriteString(d.Kind.String())

	if d.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Msg)
	}

	sb.WriteRune('\n')

	lines := strings.Split(d.Source, "\n")
	if d.Pos.Line <= len(lines) {
		num := strconv.Itoa(d.Pos.Line)
		line := strings.TrimRight(lines[d.Pos.Line-1], "\r")

		sb.WriteString("  ")
		sb.WriteString(num)
		sb.WriteString(" | ")
		sb.WriteString(expandTabs(line))
		sb.WriteRune('\n')

		// +5 accounts for: 2 leading spaces + " | " (3 chars)
		pad := len(num) + 5 + caretColumn(line, d.Pos.Column) - 1
		sb.WriteString(strings.Repeat(" ", pad))
		sb.WriteString("^\n")
	}

	if len(d.Expected) > 0 {
		sb.WriteString("expected: ")
		sb.WriteString(d.expected())
		sb.WriteRune('\n')
	}

	return sb.String()
}

func (d *Diagnostic) expected() string {
	exp := make([]string, len(d.Expected))
	for i, k := range d.Expected {
		exp[i] = k.String()
	}

	return strings.Join(exp, ", ")
}

const tabWidth = 4

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// caretColumn maps a rune column in line to a display column after tab
// expansion.
func caretColumn(line string, column int) int {
	col := 1

	for i, r := range []rune(line) {
		if i+1 >= column {
			break
		}

		if r == '\t' {
			col += tabWidth
		} else {
			col++
		}
	}

	return col
}
