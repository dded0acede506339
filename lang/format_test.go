package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestFormat_Canonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "spacing normalized",
			input: "let   x=1+2*3",
			want:  "let x = 1 + 2 * 3\n",
		},
		{
			name:  "redundant parens dropped",
			input: "((a)) + (b * c)",
			want:  "a + b * c\n",
		},
		{
			name:  "needed parens kept",
			input: "(a + b) * c - (d - e)",
			want:  "(a + b) * c - (d - e)\n",
		},
		{
			name:  "negated group",
			input: "-(a + b)",
			want:  "-(a + b)\n",
		},
		{
			name:  "mutable let",
			input: "let!x=-1",
			want:  "let ! x = -1\n",
		},
		{
			name:  "one expression per line",
			input: "a b [c d] {e f}",
			want:  "a\nb\n[c d]\n{ e f }\n",
		},
		{
			name:  "negative element parenthesized",
			input: "[1 (-2)] x (-y)",
			want:  "[1 (-2)]\nx\n(-y)\n",
		},
		{
			name:  "control flow",
			input: "if a{1}else{iter xs of x{x}}",
			want:  "if a { 1 } else { iter xs of x { x } }\n",
		},
		{
			name:  "functions",
			input: "|a  b|->a ||->1 | |->{} ->2",
			want:  "|a b| -> a || (-> 1)\n(|| -> {})\n-> 2\n",
		},
		{
			name:  "let as operand",
			input: "(let x = 1) + 2",
			want:  "(let x = 1) + 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.input)

			if got := p.String(); got != tt.want {
				t.Errorf("String() =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestFormat_Indent(t *testing.T) {
	p := mustParse(t, "let f = |x| -> { if x { 1 } else {} [x { x }] }")

	var buf bytes.Buffer
	if err := p.Format(context.Background(), &buf, 2); err != nil {
		t.Fatalf("Format error: %v", err)
	}

	want := `let f = |x| -> {
  if x {
    1
  } else {}
  [x {
    x
  }]
}
`
	if buf.String() != want {
		t.Errorf("Format() =\n%s\nwant:\n%s", buf.String(), want)
	}
}

// roundTripInputs are sources whose canonical form must re-parse to the
// same tree.
var roundTripInputs = []string{
	"",
	"1 - 2 - 3",
	"1 - (2 - 3)",
	"a || b && c == d + e * f % g",
	"((a || b) && c) * -d",
	"let ! x = -1 * (2 + 3)",
	"let f = |a b| -> a + b f",
	"if a { 1 } else { if b { 2 } else { 3 } }",
	"iter [1 2 3] of n { let total = total + n }",
	"[1 (-2) -> 3 (|| -> 4)]",
	"a || -> b",
	"(-> a) + b",
	"-(let x = 1)",
	`"text with // and /* inside" "x"`,
	"{ { {} } [] }",
	"(|x| -> x) - y",
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, input := range roundTripInputs {
		t.Run(input, func(t *testing.T) {
			for _, indent := range []int{0, 2, 4} {
				first := mustParse(t, input)

				var buf bytes.Buffer
				if err := first.Format(context.Background(), &buf, indent); err != nil {
					t.Fatalf("Format error: %v", err)
				}

				second := mustParse(t, buf.String())
				if !Equal(first, second) {
					t.Errorf("indent %d: round trip differs\n in: %s\nout: %s",
						indent, input, buf.String())
				}

				var again bytes.Buffer
				_ = second.Format(context.Background(), &again, indent)

				if again.String() != buf.String() {
					t.Errorf("indent %d: format is not idempotent\n%q\n%q",
						indent, buf.String(), again.String())
				}
			}
		})
	}
}

func TestFormatNode_BuiltTrees(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{
			name: "right nested subtraction",
			node: bin(Minus, num("1"), bin(Minus, num("2"), num("3"))),
			want: "1 - (2 - 3)",
		},
		{
			name: "lower precedence left operand",
			node: bin(Star, bin(Plus, id("a"), id("b")), id("c")),
			want: "(a + b) * c",
		},
		{
			name: "negated binary",
			node: neg(bin(Plus, id("a"), id("b"))),
			want: "-(a + b)",
		},
		{
			name: "let on the left",
			node: bin(Plus, let("x", num("1")), num("2")),
			want: "(let x = 1) + 2",
		},
		{
			name: "function on the right",
			node: bin(Plus, bin(Plus, num("1"), fn(id("a"))), num("2")),
			want: "1 + (-> a) + 2",
		},
		{
			name: "negative block element",
			node: blk(id("a"), neg(id("b")), bin(Minus, neg(id("c")), id("d"))),
			want: "{ a (-b) (-c - d) }",
		},
		{
			name: "fused function element",
			node: arr(id("a"), &FuncLiteral{Fused: true, Body: id("b")}),
			want: "[a (|| -> b)]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatNode(tt.node)
			if got != tt.want {
				t.Errorf("FormatNode() = %q, want %q", got, tt.want)
			}

			p := mustParse(t, got)
			if len(p.Exprs) != 1 || !Equal(p.Exprs[0], tt.node) {
				t.Errorf("re-parse of %q differs from built tree", got)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	p := mustParse(t, "let x = [1 \"a\"]")

	var buf bytes.Buffer
	if err := p.FormatJSON(context.Background(), &buf, 0); err != nil {
		t.Fatalf("FormatJSON error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	exprs, _ := got["exprs"].([]any)
	if got["node"] != "Program" || len(exprs) != 1 {
		t.Fatalf("unexpected root: %v", got)
	}

	let, _ := exprs[0].(map[string]any)
	if let["node"] != "LetBinding" || let["name"] != "x" || let["mutable"] != false {
		t.Errorf("unexpected let: %v", let)
	}

	if let["pos"] != "1:1" {
		t.Errorf("pos = %v, want 1:1", let["pos"])
	}

	buf.Reset()

	if err := p.FormatJSON(context.Background(), &buf, 2); err != nil {
		t.Fatalf("FormatJSON error: %v", err)
	}

	if !strings.Contains(buf.String(), "\n  \"exprs\": [") {
		t.Errorf("indented output not indented:\n%s", buf.String())
	}
}

func TestFormatYAML(t *testing.T) {
	p := mustParse(t, "if a { 1 }")

	for _, indent := range []int{0, 2} {
		var buf bytes.Buffer
		if err := p.FormatYAML(context.Background(), &buf, indent); err != nil {
			t.Fatalf("FormatYAML error: %v", err)
		}

		var got map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
		}

		if got["node"] != "Program" {
			t.Errorf("indent %d: root node = %v", indent, got["node"])
		}

		if _, hasElse := got["exprs"].([]any)[0].(map[string]any)["else"]; hasElse {
			t.Errorf("indent %d: absent else branch was encoded", indent)
		}
	}
}

func TestDump(t *testing.T) {
	p := mustParse(t, "let ! x = 1 + 2 |a| -> \"s\"")

	var buf bytes.Buffer
	if err := Dump(&buf, p); err != nil {
		t.Fatalf("Dump error: %v", err)
	}

	want := `Program
  LetBinding ! x
    BinaryExpr +
      NumberLiteral 1
      NumberLiteral 2
  FuncLiteral |a|
    StringLiteral "s"
`
	if buf.String() != want {
		t.Errorf("Dump() =\n%s\nwant:\n%s", buf.String(), want)
	}
}
