package lang

import (
	"iter"
	"slices"
)

// A Visitor's Visit method is invoked for each node encountered by [Walk].
// If the result visitor w is not nil, Walk visits each of the children of
// node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a syntax tree in depth-first order.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	for child := range Children(node) {
		Walk(v, child)
	}

	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}

	return nil
}

// Inspect traverses a syntax tree in depth-first order, calling f for each
// node and then f(nil) after its children. Children are skipped when f
// returns false.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Children returns the direct children of node in source order.
func Children(node Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		each := func(nodes ...Node) bool {
			for _, n := range nodes {
				if !yield(n) {
					return false
				}
			}

			return true
		}

		switch n := node.(type) {
		case *Program:
			each(n.Exprs...)

		case *ArrayLiteral:
			each(n.Elements...)

		case *Block:
			each(n.Exprs...)

		case *UnaryExpr:
			each(n.X)

		case *BinaryExpr:
			each(n.X, n.Y)

		case *ParenExpr:
			each(n.X)

		case *LetBinding:
			each(n.Value)

		case *IfExpr:
			if !each(n.Cond, n.Then) {
				return
			}

			if n.Else != nil {
				each(n.Else)
			}

		case *IterLoop:
			each(n.Iterable, n.Body)

		case *FuncLiteral:
			each(n.Body)
		}
	}
}

// TokenCount returns the number of source tokens the tree rooted at node
// was built from, excluding end of input. For every successfully parsed
// source it equals the number of tokens produced by the lexer, less one.
func TokenCount(node Node) int {
	count := 0

	Inspect(node, func(n Node) bool {
		if n != nil {
			count += ownTokens(n)
		}

		return true
	})

	return count
}

// ownTokens counts the tokens of n that do not belong to a child node.
func ownTokens(node Node) int {
	switch n := node.(type) {
	case *Identifier, *NumberLiteral, *StringLiteral, *UnaryExpr, *BinaryExpr:
		return 1

	case *ArrayLiteral, *Block, *ParenExpr:
		return 2

	case *LetBinding:
		if n.Mutable {
			return 4 // let ! name =
		}

		return 3

	case *IfExpr:
		if n.Else != nil {
			return 2
		}

		return 1

	case *IterLoop:
		return 3 // iter of name

	case *FuncLiteral:
		switch {
		case n.Fused:
			return 2 // || ->

		case len(n.Params) > 0 || n.Pipe.IsValid():
			return len(n.Params) + 3

		default:
			return 1
		}

	default:
		return 0
	}
}

// Equal reports whether a and b are structurally identical. Positions,
// parentheses and the spelling of empty parameter lists are ignored.
func Equal(a, b Node) bool {
	a, b = Unparen(a), Unparen(b)

	switch x := a.(type) {
	case nil:
		return b == nil

	case *Program:
		y, ok := b.(*Program)

		return ok && equalList(x.Exprs, y.Exprs)

	case *Identifier:
		y, ok := b.(*Identifier)

		return ok && x.Name == y.Name

	case *NumberLiteral:
		y, ok := b.(*NumberLiteral)

		return ok && x.Digits == y.Digits

	case *StringLiteral:
		y, ok := b.(*StringLiteral)

		return ok && x.Contents == y.Contents

	case *ArrayLiteral:
		y, ok := b.(*ArrayLiteral)

		return ok && equalList(x.Elements, y.Elements)

	case *UnaryExpr:
		y, ok := b.(*UnaryExpr)

		return ok && x.Op == y.Op && Equal(x.X, y.X)

	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)

		return ok && x.Op == y.Op && Equal(x.X, y.X) && Equal(x.Y, y.Y)

	case *Block:
		y, ok := b.(*Block)

		return ok && equalBlock(x, y)

	case *LetBinding:
		y, ok := b.(*LetBinding)

		return ok && x.Mutable == y.Mutable && x.Name == y.Name &&
			Equal(x.Value, y.Value)

	case *IfExpr:
		y, ok := b.(*IfExpr)

		return ok && Equal(x.Cond, y.Cond) &&
			equalBlock(x.Then, y.Then) && equalBlock(x.Else, y.Else)

	case *IterLoop:
		y, ok := b.(*IterLoop)

		return ok && x.Binding == y.Binding &&
			Equal(x.Iterable, y.Iterable) && equalBlock(x.Body, y.Body)

	case *FuncLiteral:
		y, ok := b.(*FuncLiteral)

		return ok && slices.Equal(x.Params, y.Params) && Equal(x.Body, y.Body)

	default:
		return false
	}
}

func equalBlock(a, b *Block) bool {
	if a == nil || b == nil {
		return a == b
	}

	return equalList(a.Exprs, b.Exprs)
}

func equalList(a, b []Node) bool {
	return slices.EqualFunc(a, b, Equal)
}

// Bindings returns the names introduced within the tree rooted at node by
// let bindings, iteration variables and function parameters, in order of
// first appearance and without duplicates.
func Bindings(node Node) []string {
	var names []string

	add := func(name string) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	Inspect(node, func(n Node) bool {
		switch n := n.(type) {
		case *LetBinding:
			add(n.Name)

		case *IterLoop:
			add(n.Binding)

		case *FuncLiteral:
			for _, p := range n.Params {
				add(p)
			}
		}

		return true
	})

	return names
}
