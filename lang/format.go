package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the program in canonical Dyn syntax to the writer, one
// top-level expression per line.
//
// With indent > 0, non-empty blocks are broken across lines and their
// expressions indented by indent spaces per level. Parentheses are inserted
// wherever re-parsing the output would otherwise produce a different tree.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	pr := printer{indent: indent}

	for i, x := range p.Exprs {
		pr.element(x, i)
		pr.WriteByte('\n')
	}

	if _, err := io.WriteString(w, pr.String()); err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}

// String returns the program in canonical single-line-block syntax.
func (p *Program) String() string {
	var sb strings.Builder

	_ = p.Format(context.Background(), &sb, 0)

	return sb.String()
}

// FormatNode returns the canonical Dyn syntax of a single node.
func FormatNode(node Node) string {
	if p, ok := node.(*Program); ok {
		return strings.TrimSuffix(p.String(), "\n")
	}

	var pr printer

	pr.expr(node, 0)

	return pr.String()
}

// FormatJSON writes the syntax tree as JSON to the writer.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(p)
	}

	if err != nil {
		return ErrFormat.Wrap(err)
	}

	if _, err = fmt.Fprintln(w, string(data)); err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}

// FormatYAML writes the syntax tree as YAML to the writer.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return ErrFormat.Wrap(err)
	}

	if _, err = fmt.Fprint(w, string(data)); err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}

// Dump writes an indented tree view of node, one node per line:
//
//	Program
//	  LetBinding x
//	    BinaryExpr +
//	      NumberLiteral 1
//	      NumberLiteral 2
func Dump(w io.Writer, node Node) error {
	var sb strings.Builder

	depth := 0

	Inspect(node, func(n Node) bool {
		if n == nil {
			depth--

			return false
		}

		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(nodeName(n))

		if label := nodeLabel(n); label != "" {
			sb.WriteByte(' ')
			sb.WriteString(label)
		}

		sb.WriteByte('\n')

		depth++

		return true
	})

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}

// nodeName returns the type name of n, e.g. "BinaryExpr".
func nodeName(n Node) string {
	if n == nil {
		return "nil"
	}

	return reflect.TypeOf(n).Elem().Name()
}

func nodeLabel(node Node) string {
	switch n := node.(type) {
	case *Identifier:
		return n.Name

	case *NumberLiteral:
		return n.Digits

	case *StringLiteral:
		return `"` + n.Contents + `"`

	case *UnaryExpr:
		return n.Op.String()

	case *BinaryExpr:
		return n.Op.String()

	case *LetBinding:
		if n.Mutable {
			return "! " + n.Name
		}

		return n.Name

	case *IterLoop:
		return "of " + n.Binding

	case *FuncLiteral:
		return "|" + strings.Join(n.Params, " ") + "|"

	default:
		return ""
	}
}

// printer renders nodes in canonical syntax.
type printer struct {
	strings.Builder

	indent int
	depth  int
}

// element prints the i-th expression of a sequence. Expressions are
// separated by adjacency only, so an element that begins with a token that
// could continue the previous one as a binary operator is parenthesized.
func (p *printer) element(n Node, i int) {
	if i > 0 {
		switch leading(n) {
		case Minus, OrOr:
			p.paren(n)

			return
		}
	}

	p.expr(n, 0)
}

func (p *printer) paren(n Node) {
	p.WriteByte('(')
	p.expr(n, 0)
	p.WriteByte(')')
}

// expr prints n, parenthesized if its precedence is below prec.
func (p *printer) expr(node Node, prec int) {
	switch n := node.(type) {
	case *Identifier:
		p.WriteString(n.Name)

	case *NumberLiteral:
		p.WriteString(n.Digits)

	case *StringLiteral:
		p.WriteByte('"')
		p.WriteString(n.Contents)
		p.WriteByte('"')

	case *ParenExpr:
		p.expr(n.X, prec)

	case *ArrayLiteral:
		p.WriteByte('[')

		for i, x := range n.Elements {
			if i > 0 {
				p.WriteByte(' ')
			}

			p.element(x, i)
		}

		p.WriteByte(']')

	case *Block:
		p.block(n)

	case *UnaryExpr:
		p.WriteString(n.Op.String())
		p.operand(n.X, PrecUnary)

	case *BinaryExpr:
		op := n.Op.Precedence()
		if op < prec {
			p.WriteByte('(')
			defer p.WriteByte(')')
		}

		p.operand(n.X, op)
		p.WriteByte(' ')
		p.WriteString(n.Op.String())
		p.WriteByte(' ')
		p.operand(n.Y, op+1)

	case *LetBinding:
		p.WriteString("let ")

		if n.Mutable {
			p.WriteString("! ")
		}

		p.WriteString(n.Name)
		p.WriteString(" = ")
		p.expr(n.Value, 0)

	case *IfExpr:
		p.WriteString("if ")
		p.expr(n.Cond, 0)
		p.WriteByte(' ')
		p.block(n.Then)

		if n.Else != nil {
			p.WriteString(" else ")
			p.block(n.Else)
		}

	case *IterLoop:
		p.WriteString("iter ")
		p.expr(n.Iterable, 0)
		p.WriteString(" of ")
		p.WriteString(n.Binding)
		p.WriteByte(' ')
		p.block(n.Body)

	case *FuncLiteral:
		switch {
		case len(n.Params) > 0:
			p.WriteByte('|')
			p.WriteString(strings.Join(n.Params, " "))
			p.WriteString("| ")

		case n.Fused || n.Pipe.IsValid():
			p.WriteString("|| ")
		}

		p.WriteString("-> ")
		p.expr(n.Body, 0)

	case *Program:
		p.WriteString(FormatNode(n))
	}
}

// operand prints the operand of a unary or binary operator. Let bindings
// and function literals extend as far right as possible, so they are always
// parenthesized in operand position.
func (p *printer) operand(node Node, prec int) {
	switch n := Unparen(node).(type) {
	case *LetBinding, *FuncLiteral:
		p.paren(n)

	case *BinaryExpr:
		if prec == PrecUnary {
			p.paren(n)

			return
		}

		p.expr(n, prec)

	default:
		p.expr(n, prec)
	}
}

func (p *printer) block(b *Block) {
	if len(b.Exprs) == 0 {
		p.WriteString("{}")

		return
	}

	if p.indent <= 0 {
		p.WriteString("{ ")

		for i, x := range b.Exprs {
			if i > 0 {
				p.WriteByte(' ')
			}

			p.element(x, i)
		}

		p.WriteString(" }")

		return
	}

	p.WriteString("{\n")
	p.depth++

	for i, x := range b.Exprs {
		p.WriteString(strings.Repeat(" ", p.depth*p.indent))
		p.element(x, i)
		p.WriteByte('\n')
	}

	p.depth--
	p.WriteString(strings.Repeat(" ", p.depth*p.indent))
	p.WriteByte('}')
}

// leading returns the kind of the first token n prints as, ignoring any
// parentheses the printer itself adds.
func leading(node Node) Kind {
	switch n := Unparen(node).(type) {
	case *UnaryExpr:
		return n.Op

	case *BinaryExpr:
		switch Unparen(n.X).(type) {
		case *LetBinding, *FuncLiteral:
			return LParen
		}

		return leading(n.X)

	case *FuncLiteral:
		switch {
		case len(n.Params) > 0:
			return Pipe

		case n.Fused || n.Pipe.IsValid():
			return OrOr

		default:
			return Arrow
		}

	case *LetBinding:
		return Let

	case *IfExpr:
		return If

	case *IterLoop:
		return Iter

	case *ArrayLiteral:
		return LBracket

	case *Block:
		return LBrace

	case *Identifier:
		return Ident

	case *NumberLiteral:
		return Number

	case *StringLiteral:
		return String

	default:
		return EOF
	}
}
