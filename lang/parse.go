package lang

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dyn-lang/dyn/log"
)

// DefaultMaxDepth is the default maximum nesting depth accepted by the parser.
// Recursion depth of the parser equals the nesting depth of the source, so
// this bounds stack use on pathological input.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 1000

// config holds parse options.
type config struct {
	maxDepth int
	cache    bool
	logger   log.Logger // outside the cache key
}

// Option configures parsing behavior.
type Option func(*config)

// WithMaxDepth sets the maximum nesting depth. Values below 1 disable the
// limit.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithCache enables memoization of parse results by source content.
// See [ClearCache].
func WithCache(enable bool) Option {
	return func(c *config) {
		c.cache = enable
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func makeConfig(opts ...Option) config {
	c := config{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// ParseString parses a complete Dyn source text.
// On failure the error is a *[Diagnostic] describing the first syntax error;
// no partial program is returned.
func ParseString(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Program, error) {
	cfg := makeConfig(opts...)

	if cfg.cache {
		return parseCached(ctx, source, cfg)
	}

	return parse(ctx, NewLexer(source), cfg)
}

// Parse parses the tokens produced by l, starting at its current position.
func Parse(ctx context.Context, l *Lexer, opts ...Option) (*Program, error) {
	return parse(ctx, l, makeConfig(opts...))
}

// ParseExpr parses a source text consisting of exactly one expression.
func ParseExpr(ctx context.Context, source string, opts ...Option) (Node, error) {
	cfg := makeConfig(opts...)

	p, err := newParser(NewLexer(source), cfg)
	if err != nil {
		return nil, err
	}

	if p.tok.Kind == EOF {
		return nil, p.unexpected(exprStart...)
	}

	x, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != EOF {
		return nil, p.unexpected(EOF)
	}

	cfg.logger.TraceContext(ctx, "parse expression complete",
		slog.String("node", nodeName(x)))

	return x, nil
}

func parse(ctx context.Context, l *Lexer, cfg config) (*Program, error) {
	cfg.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(l.Source())),
		slog.Int("max_depth", cfg.maxDepth))

	p, err := newParser(l, cfg)
	if err != nil {
		return nil, p.failed(ctx, err)
	}

	prog, err := p.parseProgram()
	if err != nil {
		return nil, p.failed(ctx, err)
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("expression_count", len(prog.Exprs)))

	return prog, nil
}

// parser is a recursive-descent parser with one token of lookahead.
// Binary operators are parsed by precedence climbing.
type parser struct {
	lex      *Lexer
	tok      Token // current lookahead
	depth    int
	maxDepth int
	logger   log.Logger
}

func newParser(l *Lexer, cfg config) (*parser, error) {
	p := &parser{
		lex:      l,
		maxDepth: cfg.maxDepth,
		logger:   cfg.logger,
	}

	return p, p.next()
}

func (p *parser) failed(ctx context.Context, err error) error {
	p.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

	return err
}

// next advances to the next token.
func (p *parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

// expect consumes the current token if it has the given kind.
func (p *parser) expect(kind Kind) (Token, error) {
	tok := p.tok
	if tok.Kind != kind {
		return tok, p.unexpected(kind)
	}

	return tok, p.next()
}

// exprStart lists the tokens that may begin an expression.
var exprStart = []Kind{
	Ident, Number, String, LBracket, LBrace, LParen,
	Let, If, Iter, Pipe, OrOr, Arrow, Minus,
}

func startsExpr(k Kind) bool {
	switch k {
	case Ident, Number, String, LBracket, LBrace, LParen,
		Let, If, Iter, Pipe, OrOr, Arrow, Minus:
		return true
	}

	return false
}

// unexpected reports that the current token is not one of expected.
func (p *parser) unexpected(expected ...Kind) *Diagnostic {
	kind := UnexpectedToken
	if p.tok.Kind == EOF {
		kind = UnexpectedEndOfInput
	}

	return &Diagnostic{
		Kind:     kind,
		Pos:      p.tok.Pos,
		Expected: expected,
		Found:    p.tok,
		Msg:      "expected " + describe(expected) + ", found " + p.tok.String(),
		Source:   p.lex.Source(),
	}
}

func describe(kinds []Kind) string {
	if len(kinds) == len(exprStart) {
		return "expression"
	}

	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}

	switch len(names) {
	case 0:
		return "nothing"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}

// enter increments the nesting depth, failing if it exceeds the limit.
func (p *parser) enter() error {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return &Diagnostic{
			Kind:   MaxDepthExceeded,
			Pos:    p.tok.Pos,
			Found:  p.tok,
			Msg:    fmt.Sprintf("nesting deeper than %d", p.maxDepth),
			Source: p.lex.Source(),
		}
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

// Program → Expr* EOF.
func (p *parser) parseProgram() (*Program, error) {
	prog := new(Program)

	for p.tok.Kind != EOF {
		x, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}

		prog.Exprs = append(prog.Exprs, x)
	}

	prog.EOF = p.tok.Pos

	return prog, nil
}

// parseExpr parses a unary operand followed by any binary operators binding
// at least as tightly as minPrec. Right operands are parsed with the
// operator's precedence plus one, which makes every operator
// left-associative.
func (p *parser) parseExpr(minPrec int) (Node, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.tok
		prec := op.Kind.Precedence()

		if prec == 0 || prec < minPrec {
			return x, nil
		}

		if err := p.next(); err != nil {
			return nil, err
		}

		y, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}

		x = &BinaryExpr{Op: op.Kind, OpPos: op.Pos, X: x, Y: y}
	}
}

// Unary → '-' Unary | Primary.
func (p *parser) parseUnary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.tok.Kind != Minus {
		return p.parsePrimary()
	}

	op := p.tok
	if err := p.next(); err != nil {
		return nil, err
	}

	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &UnaryExpr{Op: Minus, OpPos: op.Pos, X: x}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.tok

	switch tok.Kind {
	case Ident:
		return &Identifier{Name: tok.Text, NamePos: tok.Pos}, p.next()

	case Number:
		return &NumberLiteral{Digits: tok.Text, ValuePos: tok.Pos}, p.next()

	case String:
		contents := tok.Text[1 : len(tok.Text)-1]

		return &StringLiteral{Contents: contents, ValuePos: tok.Pos}, p.next()

	case LBracket:
		return p.parseArray()

	case LBrace:
		return p.parseBlock()

	case LParen:
		return p.parseParen()

	case Let:
		return p.parseLet()

	case If:
		return p.parseIf()

	case Iter:
		return p.parseIter()

	case Pipe, OrOr, Arrow:
		return p.parseFunc()

	default:
		return nil, p.unexpected(exprStart...)
	}
}

// Array → '[' Expr* ']'.
func (p *parser) parseArray() (Node, error) {
	arr := &ArrayLiteral{Lbrack: p.tok.Pos}

	if err := p.next(); err != nil {
		return nil, err
	}

	for p.tok.Kind != RBracket {
		if !startsExpr(p.tok.Kind) {
			return nil, p.unexpected(append([]Kind{RBracket}, exprStart...)...)
		}

		x, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}

		arr.Elements = append(arr.Elements, x)
	}

	arr.Rbrack = p.tok.Pos

	return arr, p.next()
}

// Block → '{' Expr* '}'.
func (p *parser) parseBlock() (*Block, error) {
	if p.tok.Kind != LBrace {
		return nil, p.unexpected(LBrace)
	}

	b := &Block{Lbrace: p.tok.Pos}

	if err := p.next(); err != nil {
		return nil, err
	}

	for p.tok.Kind != RBrace {
		if p.tok.Kind == EOF {
			d := p.unexpected(RBrace)
			d.Kind = UnclosedBlock
			d.Msg = "block opened at " + b.Lbrace.String() + " is not closed"

			return nil, d
		}

		if !startsExpr(p.tok.Kind) {
			return nil, p.unexpected(append([]Kind{RBrace}, exprStart...)...)
		}

		x, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}

		b.Exprs = append(b.Exprs, x)
	}

	b.Rbrace = p.tok.Pos

	return b, p.next()
}

// Paren → '(' Expr ')'.
func (p *parser) parseParen() (Node, error) {
	pe := &ParenExpr{Lparen: p.tok.Pos}

	if err := p.next(); err != nil {
		return nil, err
	}

	x, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}

	rparen, err := p.expect(RParen)
	if err != nil {
		return nil, err
	}

	pe.X = x
	pe.Rparen = rparen.Pos

	return pe, nil
}

// Let → 'let' '!'? identifier '=' Expr.
func (p *parser) parseLet() (Node, error) {
	let := &LetBinding{LetPos: p.tok.Pos}

	if err := p.next(); err != nil {
		return nil, err
	}

	if p.tok.Kind == Bang {
		let.Mutable = true

		if err := p.next(); err != nil {
			return nil, err
		}
	}

	name, err := p.expect(Ident)
	if err != nil {
		if !let.Mutable && p.tok.Kind != EOF {
			// Both a name and the mutability marker were acceptable here.
			return nil, p.unexpected(Bang, Ident)
		}

		return nil, err
	}

	let.Name = name.Text
	let.NamePos = name.Pos

	if _, err := p.expect(Assign); err != nil {
		return nil, err
	}

	if let.Value, err = p.parseExpr(1); err != nil {
		return nil, err
	}

	return let, nil
}

// If → 'if' Expr Block ('else' Block)?.
func (p *parser) parseIf() (Node, error) {
	n := &IfExpr{IfPos: p.tok.Pos}

	if err := p.next(); err != nil {
		return nil, err
	}

	var err error

	if n.Cond, err = p.parseExpr(1); err != nil {
		return nil, err
	}

	if n.Then, err = p.parseBlock(); err != nil {
		return nil, err
	}

	if p.tok.Kind != Else {
		return n, nil
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	if n.Else, err = p.parseBlock(); err != nil {
		return nil, err
	}

	return n, nil
}

// Iter → 'iter' Expr 'of' identifier Block.
func (p *parser) parseIter() (Node, error) {
	n := &IterLoop{IterPos: p.tok.Pos}

	if err := p.next(); err != nil {
		return nil, err
	}

	var err error

	if n.Iterable, err = p.parseExpr(1); err != nil {
		return nil, err
	}

	if _, err := p.expect(Of); err != nil {
		return nil, err
	}

	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}

	n.Binding = name.Text
	n.BindingPos = name.Pos

	if n.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}

	return n, nil
}

// Func → ('|' identifier* '|' | '||')? '->' Expr.
//
// The lexer always produces "||" for two adjacent pipes. In expression-start
// position that token can only be an empty parameter list.
func (p *parser) parseFunc() (Node, error) {
	fn := &FuncLiteral{}

	switch p.tok.Kind {
	case OrOr:
		fn.Pipe = p.tok.Pos
		fn.Fused = true

		if err := p.next(); err != nil {
			return nil, err
		}

	case Pipe:
		fn.Pipe = p.tok.Pos

		if err := p.next(); err != nil {
			return nil, err
		}

		fn.Params = []string{}

		for p.tok.Kind == Ident {
			fn.Params = append(fn.Params, p.tok.Text)

			if err := p.next(); err != nil {
				return nil, err
			}
		}

		if p.tok.Kind != Pipe {
			return nil, p.unexpected(Ident, Pipe)
		}

		if err := p.next(); err != nil {
			return nil, err
		}
	}

	arrow, err := p.expect(Arrow)
	if err != nil {
		return nil, err
	}

	fn.Arrow = arrow.Pos

	if fn.Body, err = p.parseExpr(1); err != nil {
		return nil, err
	}

	return fn, nil
}
