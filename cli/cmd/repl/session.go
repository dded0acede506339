package repl

import (
	"strings"

	"github.com/dyn-lang/dyn/lang"
)

// session accumulates the top-level expressions accepted so far.
type session struct {
	exprs []lang.Node
}

func (s *session) add(prog *lang.Program) {
	if prog == nil {
		return
	}

	s.exprs = append(s.exprs, prog.Exprs...)
}

func (s *session) reset() { s.exprs = nil }

func (s *session) program() *lang.Program { return &lang.Program{Exprs: s.exprs} }

// bindings returns every name bound anywhere in the session.
func (s *session) bindings() []string { return lang.Bindings(s.program()) }

// lets returns the top-level let bindings, keeping only the latest binding
// of each name, in order of their latest appearance.
func (s *session) lets() []*lang.LetBinding {
	latest := make(map[string]int)

	var lets []*lang.LetBinding

	for _, n := range s.exprs {
		let, ok := n.(*lang.LetBinding)
		if !ok {
			continue
		}

		if i, seen := latest[let.Name]; seen {
			lets[i] = nil
		}

		latest[let.Name] = len(lets)
		lets = append(lets, let)
	}

	out := lets[:0]

	for _, let := range lets {
		if let != nil {
			out = append(out, let)
		}
	}

	return out
}

const previewWidth = 40

// preview renders node on one line, shortened to previewWidth.
func preview(node lang.Node) string {
	src := strings.ReplaceAll(lang.FormatNode(node), "\n", " ")
	if r := []rune(src); len(r) > previewWidth {
		return string(r[:previewWidth-3]) + "..."
	}

	return src
}
