package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the program to a tree of native Go maps and slices.
// Every node becomes a map with a "node" key naming its type and a "pos" key
// holding its "line:column" position.
func (p *Program) ToMap() map[string]any {
	m, _ := ToNative(p).(map[string]any)

	return m
}

// ToNative converts node to its native Go representation: a map for every
// node, with child nodes converted recursively.
func ToNative(node Node) any {
	if node == nil {
		return nil
	}

	m := map[string]any{
		"node": nodeName(node),
		"pos":  node.Pos().String(),
	}

	switch n := node.(type) {
	case *Program:
		m["exprs"] = toNativeList(n.Exprs)

	case *Identifier:
		m["name"] = n.Name

	case *NumberLiteral:
		m["digits"] = n.Digits

	case *StringLiteral:
		m["contents"] = n.Contents

	case *ArrayLiteral:
		m["elements"] = toNativeList(n.Elements)

	case *UnaryExpr:
		m["op"] = n.Op.String()
		m["x"] = ToNative(n.X)

	case *BinaryExpr:
		m["op"] = n.Op.String()
		m["x"] = ToNative(n.X)
		m["y"] = ToNative(n.Y)

	case *Block:
		m["exprs"] = toNativeList(n.Exprs)

	case *ParenExpr:
		m["x"] = ToNative(n.X)

	case *LetBinding:
		m["mutable"] = n.Mutable
		m["name"] = n.Name
		m["value"] = ToNative(n.Value)

	case *IfExpr:
		m["cond"] = ToNative(n.Cond)
		m["then"] = ToNative(n.Then)

		if n.Else != nil {
			m["else"] = ToNative(n.Else)
		}

	case *IterLoop:
		m["iterable"] = ToNative(n.Iterable)
		m["binding"] = n.Binding
		m["body"] = ToNative(n.Body)

	case *FuncLiteral:
		params := make([]any, len(n.Params))
		for i, name := range n.Params {
			params[i] = name
		}

		m["params"] = params
		m["body"] = ToNative(n.Body)
	}

	return m
}

func toNativeList(nodes []Node) []any {
	list := make([]any, len(nodes))
	for i, n := range nodes {
		list[i] = ToNative(n)
	}

	return list
}
