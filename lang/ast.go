package lang

// Node is implemented by every syntax tree node. The set of implementations
// is closed: it consists of the node types declared in this file.
//
// Nodes are built once by the parser and never mutated afterward. Each node
// exclusively owns its children.
type Node interface {
	// Pos returns the position of the first token of the node.
	Pos() Position
	// End returns the position immediately after the last token of the node.
	End() Position

	node()
}

// Identifier is a reference to a bound name.
type Identifier struct {
	Name    string
	NamePos Position
}

// NumberLiteral is an unsigned decimal integer literal. Digits holds the
// source spelling, which may include leading zeros.
type NumberLiteral struct {
	Digits   string
	ValuePos Position
}

// StringLiteral is a double-quoted string. Contents excludes the quotes.
type StringLiteral struct {
	Contents string
	ValuePos Position
}

// ArrayLiteral is a bracketed, whitespace-separated list of expressions.
type ArrayLiteral struct {
	Elements []Node
	Lbrack   Position
	Rbrack   Position
}

// UnaryExpr is a prefix operation. Op is always [Minus].
type UnaryExpr struct {
	Op    Kind
	OpPos Position
	X     Node
}

// BinaryExpr is an infix operation.
type BinaryExpr struct {
	Op    Kind
	OpPos Position
	X     Node
	Y     Node
}

// Block is a braced sequence of expressions. Its value is the value of the
// last expression, or unit when empty.
type Block struct {
	Exprs  []Node
	Lbrace Position
	Rbrace Position
}

// LetBinding binds Name to the value of Value. Mutable records the optional
// "!" marker; it carries no further meaning at the syntax level.
type LetBinding struct {
	Mutable bool
	Name    string
	Value   Node
	LetPos  Position
	NamePos Position
}

// IfExpr is a conditional. Else is nil when there is no else branch.
type IfExpr struct {
	Cond  Node
	Then  *Block
	Else  *Block
	IfPos Position
}

// IterLoop evaluates Body once per element of Iterable with Binding bound to
// the element. Binding is scoped to Body.
type IterLoop struct {
	Iterable   Node
	Binding    string
	Body       *Block
	IterPos    Position
	BindingPos Position
}

// FuncLiteral is an anonymous function.
//
// Pipe is the position of the opening "|" of the parameter list, or invalid
// if the literal starts at "->". Fused is set when an empty list was written
// as the single token "||".
type FuncLiteral struct {
	Params []string
	Body   Node
	Pipe   Position
	Fused  bool
	Arrow  Position
}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	X      Node
	Lparen Position
	Rparen Position
}

// Program is the root of a parsed source: its top-level expressions in
// order. An empty source yields a Program with no expressions.
type Program struct {
	Exprs []Node
	// EOF is the position of the end-of-input token.
	EOF Position
}

func (n *Identifier) Pos() Position    { return n.NamePos }
func (n *NumberLiteral) Pos() Position { return n.ValuePos }
func (n *StringLiteral) Pos() Position { return n.ValuePos }
func (n *ArrayLiteral) Pos() Position  { return n.Lbrack }
func (n *UnaryExpr) Pos() Position     { return n.OpPos }
func (n *BinaryExpr) Pos() Position    { return n.X.Pos() }
func (n *Block) Pos() Position         { return n.Lbrace }
func (n *LetBinding) Pos() Position    { return n.LetPos }
func (n *IfExpr) Pos() Position        { return n.IfPos }
func (n *IterLoop) Pos() Position      { return n.IterPos }
func (n *ParenExpr) Pos() Position     { return n.Lparen }

func (n *FuncLiteral) Pos() Position {
	if n.Pipe.IsValid() {
		return n.Pipe
	}

	return n.Arrow
}

func (n *Program) Pos() Position {
	if len(n.Exprs) > 0 {
		return n.Exprs[0].Pos()
	}

	return n.EOF
}

func (n *Identifier) End() Position    { return advance(n.NamePos, n.Name) }
func (n *NumberLiteral) End() Position { return advance(n.ValuePos, n.Digits) }
func (n *StringLiteral) End() Position {
	return advance(n.ValuePos, `"`+n.Contents+`"`)
}
func (n *ArrayLiteral) End() Position { return advance(n.Rbrack, "]") }
func (n *UnaryExpr) End() Position    { return n.X.End() }
func (n *BinaryExpr) End() Position   { return n.Y.End() }
func (n *Block) End() Position        { return advance(n.Rbrace, "}") }
func (n *LetBinding) End() Position   { return n.Value.End() }
func (n *IterLoop) End() Position     { return n.Body.End() }
func (n *FuncLiteral) End() Position  { return n.Body.End() }
func (n *ParenExpr) End() Position    { return advance(n.Rparen, ")") }
func (n *Program) End() Position      { return n.EOF }

func (n *IfExpr) End() Position {
	if n.Else != nil {
		return n.Else.End()
	}

	return n.Then.End()
}

func (*Identifier) node()    {}
func (*NumberLiteral) node() {}
func (*StringLiteral) node() {}
func (*ArrayLiteral) node()  {}
func (*UnaryExpr) node()     {}
func (*BinaryExpr) node()    {}
func (*Block) node()         {}
func (*LetBinding) node()    {}
func (*IfExpr) node()        {}
func (*IterLoop) node()      {}
func (*FuncLiteral) node()   {}
func (*ParenExpr) node()     {}
func (*Program) node()       {}

// advance returns the position after text starting at pos.
func advance(pos Position, text string) Position {
	return Token{Text: text, Pos: pos, Len: len(text)}.End()
}

// Unparen strips any enclosing parentheses from n.
func Unparen(n Node) Node {
	for {
		p, ok := n.(*ParenExpr)
		if !ok {
			return n
		}

		n = p.X
	}
}
