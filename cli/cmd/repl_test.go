package cmd

import (
	"errors"
	"testing"

	"github.com/dyn-lang/dyn/lang"
)

func TestReplPreload(t *testing.T) {
	a := writeSource(t, "a.dyn", "let a = 1")
	b := writeSource(t, "b.dyn", "let b = |x| -> x")

	ctx := WithSourceFiles(t.Context(), []string{a, StdinSource, b, a})

	progs, err := new(Repl).preload(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(progs) != 2 {
		t.Fatalf("got %d programs, want 2 (stdin skipped, duplicate dropped)", len(progs))
	}

	if got := lang.Bindings(progs[1]); len(got) != 2 || got[0] != "b" || got[1] != "x" {
		t.Errorf("bindings = %v", got)
	}
}

func TestReplPreload_Errors(t *testing.T) {
	bad := writeSource(t, "bad.dyn", "let = 1")

	_, err := new(Repl).preload(WithSourceFiles(t.Context(), []string{bad}))
	if !errors.Is(err, &lang.Diagnostic{}) {
		t.Errorf("got %v, want a diagnostic", err)
	}

	_, err = new(Repl).preload(WithSourceFiles(t.Context(), []string{bad + ".missing"}))
	if !errors.Is(err, ErrReadSource) {
		t.Errorf("got %v, want ErrReadSource", err)
	}
}
