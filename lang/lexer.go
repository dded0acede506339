package lang

import (
	"fmt"
	"iter"
	"unicode/utf8"
)

// Lexer scans Dyn source text into tokens on demand.
//
// A Lexer is not safe for concurrent use. Once it reports an error, every
// subsequent call to [Lexer.Next] returns the same error until [Lexer.Reset].
type Lexer struct {
	src  string
	pos  int // byte offset of the next unread character
	line int
	col  int
	err  error
}

// NewLexer returns a Lexer positioned at the beginning of src.
func NewLexer(src string) *Lexer {
	l := &Lexer{src: src}
	l.Reset()

	return l
}

// Reset rewinds the lexer to the beginning of its source.
func (l *Lexer) Reset() {
	l.pos = 0
	l.line = 1
	l.col = 1
	l.err = nil
}

// Source returns the text being scanned.
func (l *Lexer) Source() string { return l.src }

// Next returns the next token. At end of input it returns an EOF token, and
// keeps doing so on every further call.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	tok, err := l.scan()
	if err != nil {
		l.err = err

		return Token{}, err
	}

	return tok, nil
}

// Tokens returns a lazy sequence over the tokens of src, ending with the EOF
// token. If scanning fails, the sequence yields the error once and stops.
// Every iteration starts from the beginning of src.
func Tokens(src string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l := NewLexer(src)

		for {
			tok, err := l.Next()
			if !yield(tok, err) || err != nil || tok.Kind == EOF {
				return
			}
		}
	}
}

// Tokenize scans all of src eagerly. The returned slice ends with the EOF
// token.
func Tokenize(src string) ([]Token, error) {
	var toks []Token

	for tok, err := range Tokens(src) {
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)
	}

	return toks, nil
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}

	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}

	return l.src[l.pos+n]
}

// advance moves past the next rune, tracking line and column.
func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) advanceN(n int) {
	for range n {
		l.advance()
	}
}

func (l *Lexer) token(kind Kind, start Position) Token {
	return Token{
		Kind: kind,
		Text: l.src[start.Offset:l.pos],
		Pos:  start,
		Len:  l.pos - start.Offset,
	}
}

func (l *Lexer) fail(
	kind DiagnosticKind,
	start Position,
	text, msg string,
) *Diagnostic {
	return &Diagnostic{
		Kind:   kind,
		Pos:    start,
		Found:  Token{Kind: EOF, Text: text, Pos: start, Len: len(text)},
		Msg:    msg,
		Source: l.src,
	}
}

func (l *Lexer) scan() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	start := l.position()

	if l.eof() {
		return Token{Kind: EOF, Pos: start}, nil
	}

	c := l.peek()

	switch {
	case isLetter(c):
		for isLetter(l.peek()) {
			l.advance()
		}

		if isDigit(l.peek()) {
			return Token{}, l.invalidIdentifier(start)
		}

		tok := l.token(Ident, start)
		if kw, ok := keywords[tok.Text]; ok {
			tok.Kind = kw
		}

		return tok, nil

	case isDigit(c):
		for isDigit(l.peek()) {
			l.advance()
		}

		if isLetter(l.peek()) {
			return Token{}, l.invalidIdentifier(start)
		}

		return l.token(Number, start), nil

	case c == '"':
		l.advance()

		for !l.eof() && l.peek() != '"' {
			l.advance()
		}

		if l.eof() {
			return Token{}, l.fail(UnclosedString, start,
				l.src[start.Offset:], "string literal not terminated")
		}

		l.advance() // closing quote

		return l.token(String, start), nil
	}

	if kind, n := l.operator(); n > 0 {
		l.advanceN(n)

		return l.token(kind, start), nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])

	return Token{}, l.fail(LexError, start, string(r),
		fmt.Sprintf("unexpected character %q", r))
}

// operator matches the operator or punctuation at the current position,
// longest first. It returns the matched kind and its byte length, or 0.
func (l *Lexer) operator() (Kind, int) {
	c, next := l.peek(), l.peekAt(1)

	switch c {
	case '=':
		if next == '=' {
			return EqEq, 2
		}

		return Assign, 1

	case '!':
		if next == '=' {
			return NotEq, 2
		}

		return Bang, 1

	case '<':
		if next == '=' {
			return LessEq, 2
		}

		return Less, 1

	case '>':
		if next == '=' {
			return GreaterEq, 2
		}

		return Greater, 1

	case '-':
		if next == '>' {
			return Arrow, 2
		}

		return Minus, 1

	case '|':
		if next == '|' {
			return OrOr, 2
		}

		return Pipe, 1

	case '&':
		if next == '&' {
			return AndAnd, 2
		}

		return EOF, 0

	case '+':
		return Plus, 1

	case '*':
		return Star, 1

	case '/':
		return Slash, 1

	case '%':
		return Percent, 1

	case '{':
		return LBrace, 1

	case '}':
		return RBrace, 1

	case '[':
		return LBracket, 1

	case ']':
		return RBracket, 1

	case '(':
		return LParen, 1

	case ')':
		return RParen, 1

	case ',':
		return Comma, 1

	default:
		return EOF, 0
	}
}

func (l *Lexer) invalidIdentifier(start Position) *Diagnostic {
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}

	text := l.src[start.Offset:l.pos]

	return l.fail(LexError, start, text,
		fmt.Sprintf("invalid identifier %q: names are lowercase letters only", text))
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for !l.eof() {
		switch c := l.peek(); {
		case isSpace(c):
			l.advance()

		case c == '/' && l.peekAt(1) == '/':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		case c == '/' && l.peekAt(1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return err
			}

		default:
			return nil
		}
	}

	return nil
}

// skipBlockComment skips a block comment. Block comments nest, so every
// "/*" inside one needs its own "*/".
func (l *Lexer) skipBlockComment() error {
	start := l.position()
	depth := 0

	for !l.eof() {
		switch {
		case l.peek() == '/' && l.peekAt(1) == '*':
			depth++
			l.advanceN(2)

		case l.peek() == '*' && l.peekAt(1) == '/':
			depth--
			l.advanceN(2)

			if depth == 0 {
				return nil
			}

		default:
			l.advance()
		}
	}

	return l.fail(LexError, start, "/*", "block comment not terminated")
}

// Character classification

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}

	return false
}
