package repl

import (
	"context"
	"strings"
	"testing"

	"github.com/dyn-lang/dyn/lang"
)

func mustParse(t *testing.T, src string) *lang.Program {
	t.Helper()

	prog, err := lang.ParseString(context.Background(), src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}

	return prog
}

func TestSession_Lets(t *testing.T) {
	var s session

	s.add(mustParse(t, "let a = 1\nlet b = 2\n3"))
	s.add(mustParse(t, "let !a = 4"))
	s.add(nil)

	lets := s.lets()

	var names []string
	for _, let := range lets {
		names = append(names, let.Name)
	}

	if got := strings.Join(names, ","); got != "b,a" {
		t.Errorf("lets = %s, want b,a", got)
	}

	if !lets[1].Mutable {
		t.Error("latest binding of a should be mutable")
	}

	s.reset()

	if len(s.lets()) != 0 || len(s.bindings()) != 0 {
		t.Error("reset kept bindings")
	}
}

func TestPreview(t *testing.T) {
	short := mustParse(t, "[1 2]").Exprs[0]
	if got := preview(short); got != lang.FormatNode(short) {
		t.Errorf("preview = %q", got)
	}

	long := mustParse(t, `"`+strings.Repeat("x", 100)+`"`).Exprs[0]

	got := preview(long)
	if len([]rune(got)) != previewWidth || !strings.HasSuffix(got, "...") {
		t.Errorf("preview not shortened: %q", got)
	}
}
