package lang

import (
	"log/slog"
	"strconv"
)

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	EOF Kind = iota // end of input

	// Literals and names.
	Ident  // identifier
	Number // number
	String // string

	// Keywords.
	Let  // let
	If   // if
	Else // else
	Iter // iter
	Of   // of

	// Operators.
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	EqEq      // ==
	NotEq     // !=
	Less      // <
	LessEq    // <=
	Greater   // >
	GreaterEq // >=
	AndAnd    // &&
	OrOr      // ||
	Assign    // =
	Bang      // !
	Pipe      // |
	Arrow     // ->

	// Punctuation.
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
	LParen   // (
	RParen   // )
	Comma    // ,

	kindCount
)

var kindName = [kindCount]string{
	EOF:       "end of input",
	Ident:     "identifier",
	Number:    "number",
	String:    "string",
	Let:       "let",
	If:        "if",
	Else:      "else",
	Iter:      "iter",
	Of:        "of",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Percent:   "%",
	EqEq:      "==",
	NotEq:     "!=",
	Less:      "<",
	LessEq:    "<=",
	Greater:   ">",
	GreaterEq: ">=",
	AndAnd:    "&&",
	OrOr:      "||",
	Assign:    "=",
	Bang:      "!",
	Pipe:      "|",
	Arrow:     "->",
	LBrace:    "{",
	RBrace:    "}",
	LBracket:  "[",
	RBracket:  "]",
	LParen:    "(",
	RParen:    ")",
	Comma:     ",",
}

// String returns the source spelling of fixed tokens and a descriptive name
// for the variable ones (identifier, number, string, end of input).
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindName[k]
}

// IsKeyword reports whether k is one of the reserved words.
func (k Kind) IsKeyword() bool { return k >= Let && k <= Of }

// IsOperator reports whether k is an operator token.
func (k Kind) IsOperator() bool { return k >= Plus && k <= Arrow }

// Precedence returns the binding strength of k as an infix operator, or 0
// if k is not a binary operator. Higher binds tighter.
func (k Kind) Precedence() int {
	switch k {
	case Star, Slash, Percent:
		return PrecMultiplicative

	case Plus, Minus:
		return PrecAdditive

	case EqEq, NotEq, Less, LessEq, Greater, GreaterEq:
		return PrecRelational

	case AndAnd:
		return PrecAnd

	case OrOr:
		return PrecOr

	default:
		return 0
	}
}

// Binary operator precedence levels.
const (
	PrecOr             = 1
	PrecAnd            = 2
	PrecRelational     = 3
	PrecAdditive       = 4
	PrecMultiplicative = 5

	// PrecUnary is above every binary level.
	PrecUnary = 6
)

// keywords maps reserved words to their kinds.
var keywords = map[string]Kind{
	"let":  Let,
	"if":   If,
	"else": Else,
	"iter": Iter,
	"of":   Of,
}

// Keywords returns the reserved words in declaration order.
func Keywords() []string {
	return []string{"let", "if", "else", "iter", "of"}
}

// Position is a location in source text.
// Offset is a byte offset; Line and Column are 1-based and Column counts
// runes. The zero Position is invalid.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// IsValid reports whether the position refers to a location in source.
func (p Position) IsValid() bool { return p.Line > 0 }

// String formats the position as "line:column".
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a single lexical unit.
type Token struct {
	Kind Kind
	Text string // exact source slice; empty for EOF
	Pos  Position
	Len  int // byte length of Text
}

// End returns the position immediately after the token.
func (t Token) End() Position {
	end := Position{
		Offset: t.Pos.Offset + t.Len,
		Line:   t.Pos.Line,
		Column: t.Pos.Column,
	}

	// String literals may span lines.
	for _, r := range t.Text {
		if r == '\n' {
			end.Line++
			end.Column = 1
		} else {
			end.Column++
		}
	}

	return end
}

// String describes the token for diagnostics, e.g. `identifier "abc"` or
// `"{"`.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return t.Kind.String()

	case Ident, Number, String:
		return t.Kind.String() + " " + strconv.Quote(t.Text)

	default:
		return strconv.Quote(t.Text)
	}
}

// LogValue implements slog.LogValuer.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", t.Kind.String()),
		slog.String("text", t.Text),
		slog.String("pos", t.Pos.String()),
	)
}

// IsKeyword reports whether name is a reserved word.
func IsKeyword(name string) bool {
	_, ok := keywords[name]

	return ok
}
