package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// Tree constructors for expected results. Positions are left zero since
// Equal ignores them.

func id(name string) *Identifier       { return &Identifier{Name: name} }
func num(digits string) *NumberLiteral { return &NumberLiteral{Digits: digits} }
func str(s string) *StringLiteral      { return &StringLiteral{Contents: s} }
func neg(x Node) *UnaryExpr            { return &UnaryExpr{Op: Minus, X: x} }
func arr(xs ...Node) *ArrayLiteral     { return &ArrayLiteral{Elements: xs} }
func blk(xs ...Node) *Block            { return &Block{Exprs: xs} }
func prog(xs ...Node) *Program         { return &Program{Exprs: xs} }

func bin(op Kind, x, y Node) *BinaryExpr {
	return &BinaryExpr{Op: op, X: x, Y: y}
}

func let(name string, value Node) *LetBinding {
	return &LetBinding{Name: name, Value: value}
}

func fn(body Node, params ...string) *FuncLiteral {
	return &FuncLiteral{Params: params, Body: body}
}

func mustParse(t testing.TB, src string, opts ...Option) *Program {
	t.Helper()

	p, err := ParseString(context.Background(), src, opts...)
	if err != nil {
		t.Fatalf("ParseString(%q) error: %v", src, err)
	}

	return p
}

func TestParseString_Trees(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Program
	}{
		{
			name:  "empty input",
			input: "",
			want:  prog(),
		},
		{
			name:  "comments only",
			input: "// nothing\n/* here */",
			want:  prog(),
		},
		{
			name:  "left associative subtraction",
			input: "1 - 2 - 3",
			want:  prog(bin(Minus, bin(Minus, num("1"), num("2")), num("3"))),
		},
		{
			name:  "multiplication binds tighter",
			input: "1 + 2 * 3",
			want:  prog(bin(Plus, num("1"), bin(Star, num("2"), num("3")))),
		},
		{
			name:  "unary binds tighter than binary",
			input: "-1 + 2",
			want:  prog(bin(Plus, neg(num("1")), num("2"))),
		},
		{
			name:  "full precedence ladder",
			input: "a || b && c == d + e * f",
			want: prog(bin(OrOr, id("a"),
				bin(AndAnd, id("b"),
					bin(EqEq, id("c"),
						bin(Plus, id("d"), bin(Star, id("e"), id("f"))))))),
		},
		{
			name:  "relational is left associative",
			input: "a < b < c",
			want:  prog(bin(Less, bin(Less, id("a"), id("b")), id("c"))),
		},
		{
			name:  "parentheses override precedence",
			input: "(1 + 2) * 3",
			want:  prog(bin(Star, bin(Plus, num("1"), num("2")), num("3"))),
		},
		{
			name:  "double negation",
			input: "--x",
			want:  prog(neg(neg(id("x")))),
		},
		{
			name:  "negative literal in subtraction",
			input: "1 - -2",
			want:  prog(bin(Minus, num("1"), neg(num("2")))),
		},
		{
			name:  "let binding",
			input: "let x = 1 + 2",
			want:  prog(let("x", bin(Plus, num("1"), num("2")))),
		},
		{
			name:  "mutable let binding",
			input: "let ! x = 1",
			want:  prog(&LetBinding{Mutable: true, Name: "x", Value: num("1")}),
		},
		{
			name:  "if else",
			input: "if a { 1 } else { 2 }",
			want: prog(&IfExpr{
				Cond: id("a"),
				Then: blk(num("1")),
				Else: blk(num("2")),
			}),
		},
		{
			name:  "if without else",
			input: "if a {}",
			want:  prog(&IfExpr{Cond: id("a"), Then: blk()}),
		},
		{
			name:  "else if chain",
			input: "if a { 1 } else { if b { 2 } else { 3 } }",
			want: prog(&IfExpr{
				Cond: id("a"),
				Then: blk(num("1")),
				Else: blk(&IfExpr{
					Cond: id("b"),
					Then: blk(num("2")),
					Else: blk(num("3")),
				}),
			}),
		},
		{
			name:  "iter loop",
			input: "iter xs of x { x }",
			want: prog(&IterLoop{
				Iterable: id("xs"),
				Binding:  "x",
				Body:     blk(id("x")),
			}),
		},
		{
			name:  "function with parameters",
			input: "|a b| -> a + b",
			want:  prog(fn(bin(Plus, id("a"), id("b")), "a", "b")),
		},
		{
			name:  "function with fused empty parameters",
			input: "|| -> 1",
			want:  prog(fn(num("1"))),
		},
		{
			name:  "function with spaced empty parameters",
			input: "| | -> 1",
			want:  prog(fn(num("1"))),
		},
		{
			name:  "function without parameter list",
			input: "-> x",
			want:  prog(fn(id("x"))),
		},
		{
			name:  "function with block body",
			input: "|x| -> { x }",
			want:  prog(fn(blk(id("x")), "x")),
		},
		{
			name:  "logical or after operand",
			input: "a || -> b",
			want:  prog(bin(OrOr, id("a"), fn(id("b")))),
		},
		{
			name:  "array of adjacent expressions",
			input: "[1 \"two\"\n[3] {}]",
			want:  prog(arr(num("1"), str("two"), arr(num("3")), blk())),
		},
		{
			name:  "adjacency continues a binary expression",
			input: "[1 -2]",
			want:  prog(arr(bin(Minus, num("1"), num("2")))),
		},
		{
			name:  "parenthesized negative element",
			input: "[1 (-2)]",
			want:  prog(arr(num("1"), neg(num("2")))),
		},
		{
			name:  "multiple top-level expressions",
			input: "let x = 1\nlet y = x\ny",
			want:  prog(let("x", num("1")), let("y", id("x")), id("y")),
		},
		{
			name:  "let value stops at next expression",
			input: "let f = |x| -> x f",
			want:  prog(let("f", fn(id("x"), "x")), id("f")),
		},
		{
			name:  "string keeps contents verbatim",
			input: "\"a // b /* c\"",
			want:  prog(str("a // b /* c")),
		},
		{
			name:  "leading zeros preserved",
			input: "007",
			want:  prog(num("007")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.input)

			if !Equal(got, tt.want) {
				t.Errorf("ParseString(%q)\n got: %s\nwant: %s",
					tt.input, FormatNode(got), FormatNode(tt.want))
			}
		})
	}
}

func TestParseString_KeepsParens(t *testing.T) {
	p := mustParse(t, "(1)")

	pe, ok := p.Exprs[0].(*ParenExpr)
	if !ok {
		t.Fatalf("got %T, want *ParenExpr", p.Exprs[0])
	}

	if _, ok := Unparen(pe).(*NumberLiteral); !ok {
		t.Errorf("Unparen: got %T, want *NumberLiteral", Unparen(pe))
	}
}

func TestParseString_Positions(t *testing.T) {
	p := mustParse(t, "let x =\n  [1 2]")

	let, ok := p.Exprs[0].(*LetBinding)
	if !ok {
		t.Fatalf("got %T, want *LetBinding", p.Exprs[0])
	}

	if got := let.Pos(); got != (Position{Offset: 0, Line: 1, Column: 1}) {
		t.Errorf("let Pos() = %+v", got)
	}

	if got := let.NamePos; got != (Position{Offset: 4, Line: 1, Column: 5}) {
		t.Errorf("NamePos = %+v", got)
	}

	if got := let.Value.Pos(); got != (Position{Offset: 10, Line: 2, Column: 3}) {
		t.Errorf("value Pos() = %+v", got)
	}

	if got := let.End(); got != (Position{Offset: 15, Line: 2, Column: 8}) {
		t.Errorf("End() = %+v", got)
	}

	if got := p.End(); got != (Position{Offset: 15, Line: 2, Column: 8}) {
		t.Errorf("program End() = %+v", got)
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     DiagnosticKind
		offset   int
		expected []Kind // nil skips the check
	}{
		{
			name:   "unclosed block",
			input:  "{",
			kind:   UnclosedBlock,
			offset: 1,
		},
		{
			name:   "unclosed nested block",
			input:  "if a { { 1 }",
			kind:   UnclosedBlock,
			offset: 12,
		},
		{
			name:   "unclosed string",
			input:  `"abc`,
			kind:   UnclosedString,
			offset: 0,
		},
		{
			name:   "unterminated array",
			input:  "[1 2",
			kind:   UnexpectedEndOfInput,
			offset: 4,
		},
		{
			name:     "missing binary operand",
			input:    "1 +",
			kind:     UnexpectedEndOfInput,
			offset:   3,
			expected: exprStart,
		},
		{
			name:     "let without name",
			input:    "let = 1",
			kind:     UnexpectedToken,
			offset:   4,
			expected: []Kind{Bang, Ident},
		},
		{
			name:     "mutable let without name",
			input:    "let ! = 1",
			kind:     UnexpectedToken,
			offset:   6,
			expected: []Kind{Ident},
		},
		{
			name:     "let without assignment",
			input:    "let x 1",
			kind:     UnexpectedToken,
			offset:   6,
			expected: []Kind{Assign},
		},
		{
			name:     "let keyword as name",
			input:    "let if = 1",
			kind:     UnexpectedToken,
			offset:   4,
			expected: []Kind{Bang, Ident},
		},
		{
			name:     "if without block",
			input:    "if a 1",
			kind:     UnexpectedToken,
			offset:   5,
			expected: []Kind{LBrace},
		},
		{
			name:     "else without block",
			input:    "if a {} else if b {}",
			kind:     UnexpectedToken,
			offset:   13,
			expected: []Kind{LBrace},
		},
		{
			name:     "iter without of",
			input:    "iter xs x {}",
			kind:     UnexpectedToken,
			offset:   8,
			expected: []Kind{Of},
		},
		{
			name:     "iter without binding",
			input:    "iter xs of {}",
			kind:     UnexpectedToken,
			offset:   11,
			expected: []Kind{Ident},
		},
		{
			name:     "parameter list without arrow",
			input:    "|a| a",
			kind:     UnexpectedToken,
			offset:   4,
			expected: []Kind{Arrow},
		},
		{
			name:     "unterminated parameter list",
			input:    "|a 1| -> a",
			kind:     UnexpectedToken,
			offset:   3,
			expected: []Kind{Ident, Pipe},
		},
		{
			name:   "comma separated array",
			input:  "[1, 2]",
			kind:   UnexpectedToken,
			offset: 2,
		},
		{
			name:   "stray closing brace",
			input:  "}",
			kind:   UnexpectedToken,
			offset: 0,
		},
		{
			name:   "stray else",
			input:  "else {}",
			kind:   UnexpectedToken,
			offset: 0,
		},
		{
			name:     "unclosed parenthesis",
			input:    "(1 2)",
			kind:     UnexpectedToken,
			offset:   3,
			expected: []Kind{RParen},
		},
		{
			name:   "binary operator at start",
			input:  "* 2",
			kind:   UnexpectedToken,
			offset: 0,
		},
		{
			name:   "lex error surfaces",
			input:  "let x = ab1",
			kind:   LexError,
			offset: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseString(context.Background(), tt.input)
			if err == nil {
				t.Fatalf("ParseString(%q) succeeded, want error", tt.input)
			}

			if p != nil {
				t.Errorf("got partial program alongside error")
			}

			var d *Diagnostic
			if !errors.As(err, &d) {
				t.Fatalf("error %T is not a *Diagnostic", err)
			}

			if d.Kind != tt.kind {
				t.Errorf("kind: got %v, want %v (%v)", d.Kind, tt.kind, d)
			}

			if d.Pos.Offset != tt.offset {
				t.Errorf("offset: got %d, want %d (%v)", d.Pos.Offset, tt.offset, d)
			}

			if tt.expected != nil && !equalKinds(d.Expected, tt.expected) {
				t.Errorf("expected: got %v, want %v", d.Expected, tt.expected)
			}

			if !errors.Is(err, &Diagnostic{Kind: tt.kind}) {
				t.Errorf("errors.Is does not match kind %v", tt.kind)
			}
		})
	}
}

func equalKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func TestParseString_MaxDepth(t *testing.T) {
	deep := strings.Repeat("{", 50) + strings.Repeat("}", 50)

	t.Run("within limit", func(t *testing.T) {
		mustParse(t, deep, WithMaxDepth(100))
	})

	t.Run("beyond limit", func(t *testing.T) {
		_, err := ParseString(context.Background(), deep, WithMaxDepth(10))
		if !errors.Is(err, &Diagnostic{Kind: MaxDepthExceeded}) {
			t.Fatalf("got %v, want MaxDepthExceeded", err)
		}
	})

	t.Run("unary chain", func(t *testing.T) {
		src := strings.Repeat("-", 20) + "1"

		_, err := ParseString(context.Background(), src, WithMaxDepth(10))
		if !errors.Is(err, &Diagnostic{Kind: MaxDepthExceeded}) {
			t.Fatalf("got %v, want MaxDepthExceeded", err)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		mustParse(t, strings.Repeat("(", 2000)+"1"+strings.Repeat(")", 2000),
			WithMaxDepth(0))
	})

	t.Run("default limit", func(t *testing.T) {
		src := strings.Repeat("[", DefaultMaxDepth+1) +
			strings.Repeat("]", DefaultMaxDepth+1)

		_, err := ParseString(context.Background(), src)
		if !errors.Is(err, &Diagnostic{Kind: MaxDepthExceeded}) {
			t.Fatalf("got %v, want MaxDepthExceeded", err)
		}
	})
}

func TestParse_Lexer(t *testing.T) {
	l := NewLexer("a b")

	p, err := Parse(context.Background(), l)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if !Equal(p, prog(id("a"), id("b"))) {
		t.Errorf("got %s", p)
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Node
		wantErr DiagnosticKind
	}{
		{
			name:  "single expression",
			input: "a + 1",
			want:  bin(Plus, id("a"), num("1")),
		},
		{
			name:    "empty",
			input:   "  ",
			wantErr: UnexpectedEndOfInput,
		},
		{
			name:    "two expressions",
			input:   "a b",
			wantErr: UnexpectedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpr(context.Background(), tt.input)

			if tt.wantErr != 0 {
				if !errors.Is(err, &Diagnostic{Kind: tt.wantErr}) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseExpr error: %v", err)
			}

			if !Equal(got, tt.want) {
				t.Errorf("got %s, want %s", FormatNode(got), FormatNode(tt.want))
			}
		})
	}
}

func TestParseString_TokenCount(t *testing.T) {
	inputs := []string{
		"",
		"1 - 2 - 3",
		"let ! x = -1 * (2 + 3)",
		"if a { 1 } else { if b {} }",
		"iter [1 2 3] of n { let s = s + n }",
		"|a b| -> a || -> b",
		"| | -> {} || -> [] -> 1",
		`"s" // comment` + "\n" + `x /* y */`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			toks, err := Tokenize(input)
			if err != nil {
				t.Fatalf("Tokenize error: %v", err)
			}

			p := mustParse(t, input)

			if got, want := TokenCount(p), len(toks)-1; got != want {
				t.Errorf("TokenCount = %d, want %d", got, want)
			}
		})
	}
}

func TestParse_Concurrent(t *testing.T) {
	const src = "let f = |x| -> x * 2 iter [1 2 3] of n { f }"

	want := mustParse(t, src)
	done := make(chan *Program)

	for range 8 {
		go func() {
			p, _ := ParseString(context.Background(), src)
			done <- p
		}()
	}

	for range 8 {
		if p := <-done; !Equal(p, want) {
			t.Errorf("concurrent parse differs: %v", p)
		}
	}
}
