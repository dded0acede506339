package lang

import "strconv"

// Builder provides a programmatic API for constructing syntax trees without
// parsing source text. Built nodes carry no positions; they format and
// compare like parsed ones.
//
// Example:
//
//	var b lang.Builder
//	prog := b.Program(
//	    b.Let("level", b.String("debug")),
//	    b.Let("depth", b.Int(-3)),
//	)
//	_ = prog.Format(ctx, os.Stdout, 2)
type Builder struct{}

// NewBuilder creates a new syntax tree builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Program creates a program of top-level expressions.
func (b *Builder) Program(exprs ...Node) *Program {
	return &Program{Exprs: exprs}
}

// Let creates an immutable let binding.
func (b *Builder) Let(name string, value Node) *LetBinding {
	return &LetBinding{Name: name, Value: value}
}

// MutableLet creates a let binding with the mutability marker.
func (b *Builder) MutableLet(name string, value Node) *LetBinding {
	return &LetBinding{Mutable: true, Name: name, Value: value}
}

// Ident creates an identifier reference.
func (b *Builder) Ident(name string) *Identifier {
	return &Identifier{Name: name}
}

// Bool creates the identifier true or false. Dyn has no boolean literal.
func (b *Builder) Bool(v bool) *Identifier {
	return b.Ident(strconv.FormatBool(v))
}

// String creates a string literal. Dyn strings have no escapes, so s must
// not contain a double quote.
func (b *Builder) String(s string) *StringLiteral {
	return &StringLiteral{Contents: s}
}

// Number creates a number literal from its decimal digits.
func (b *Builder) Number(digits string) *NumberLiteral {
	return &NumberLiteral{Digits: digits}
}

// Int creates a number literal, negated with a unary minus if n < 0.
func (b *Builder) Int(n int64) Node {
	if n < 0 {
		return b.Neg(b.Number(strconv.FormatUint(uint64(-n), 10)))
	}

	return b.Number(strconv.FormatInt(n, 10))
}

// Uint creates a number literal.
func (b *Builder) Uint(n uint64) *NumberLiteral {
	return b.Number(strconv.FormatUint(n, 10))
}

// Array creates an array literal.
func (b *Builder) Array(elements ...Node) *ArrayLiteral {
	return &ArrayLiteral{Elements: elements}
}

// Block creates a block.
func (b *Builder) Block(exprs ...Node) *Block {
	return &Block{Exprs: exprs}
}

// Neg creates a unary minus expression.
func (b *Builder) Neg(x Node) *UnaryExpr {
	return &UnaryExpr{Op: Minus, X: x}
}

// Binary creates an infix expression.
func (b *Builder) Binary(op Kind, x, y Node) *BinaryExpr {
	return &BinaryExpr{Op: op, X: x, Y: y}
}

// Paren wraps x in parentheses.
func (b *Builder) Paren(x Node) *ParenExpr {
	return &ParenExpr{X: x}
}

// If creates a conditional; els may be nil.
func (b *Builder) If(cond Node, then, els *Block) *IfExpr {
	return &IfExpr{Cond: cond, Then: then, Else: els}
}

// Iter creates a loop binding name to each element of iterable.
func (b *Builder) Iter(iterable Node, name string, body *Block) *IterLoop {
	return &IterLoop{Iterable: iterable, Binding: name, Body: body}
}

// Func creates a function literal. With no params, the parameter list is
// omitted ("-> body").
func (b *Builder) Func(body Node, params ...string) *FuncLiteral {
	return &FuncLiteral{Params: params, Body: body}
}
