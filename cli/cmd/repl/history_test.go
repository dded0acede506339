package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistory_AddAndEntry(t *testing.T) {
	h := NewHistory("")

	for _, line := range []string{"let a = 1", "a + 1", "  ", "let a = 1"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	if err := h.Add("list", modeCtrl); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{"a + 1", modeEval},
		{"let a = 1", modeEval},
		{"list", modeCtrl},
	}

	if h.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", h.Len(), len(want))
	}

	for i, w := range want {
		got, err := h.Entry(i)
		if err != nil || got != w {
			t.Errorf("Entry(%d) = %v, %v; want %v", i, got, err, w)
		}
	}

	if _, err := h.Entry(len(want)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry past end: got %v, want ErrOutOfBounds", err)
	}
}

func TestHistory_SkipsMultiline(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("{\n1\n}", modeEval); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 0 {
		t.Errorf("multi-line entry recorded")
	}
}

func TestHistory_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", baseHistory)

	h := NewHistory(path)

	for _, e := range []HistoryEntry{
		{"let x = 1", modeEval},
		{"format json", modeCtrl},
		{"x", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:let x = 1\nC:format json\nE:x\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}

	// A repeated entry moves to the end and forces a rewrite.
	if err := h.Add("let x = 1", modeEval); err != nil {
		t.Fatal(err)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if reloaded.Len() != 3 {
		t.Fatalf("reloaded Len() = %d, want 3", reloaded.Len())
	}

	last, _ := reloaded.Entry(2)
	if last != (HistoryEntry{"let x = 1", modeEval}) {
		t.Errorf("last entry = %v", last)
	}

	first, _ := reloaded.Entry(0)
	if first != (HistoryEntry{"format json", modeCtrl}) {
		t.Errorf("mode not restored: %v", first)
	}

	mid, _ := reloaded.Entry(1)
	if mid != (HistoryEntry{"x", modeEval}) {
		t.Errorf("entry 1 = %v, want x", mid)
	}
}

func TestHistory_LoadMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() = %v, want nil", err)
	}
}

func TestHistory_Bounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	var sb strings.Builder
	for i := range maxHistory + 10 {
		sb.WriteString("E:")
		sb.WriteString(strings.Repeat("a", i%50+1))
		sb.WriteString(strings.Repeat("b", i/50+1))
		sb.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if h.Len() != maxHistory {
		t.Errorf("Len() = %d, want %d", h.Len(), maxHistory)
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:a + b", HistoryEntry{"a + b", modeEval}},
		{"C:quit", HistoryEntry{"quit", modeCtrl}},
		{"legacy", HistoryEntry{"legacy", modeEval}},
	}

	for _, tt := range tests {
		if got := decodeEntry(tt.line); got != tt.want {
			t.Errorf("decodeEntry(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
