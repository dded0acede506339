package log

import (
	"bytes"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripColor(s string) string { return ansi.ReplaceAllString(s, "") }

func TestPrettyHandler_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))
	logger.Info("parsed",
		slog.String("file", "main.dyn"),
		slog.Int("exprs", 4),
		slog.Bool("cached", true),
		slog.Duration("took", 2*time.Millisecond),
	)

	want := "level=INFO msg=parsed file=main.dyn exprs=4 cached=true took=2ms\n"
	if got := stripColor(buf.String()); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}

	if !strings.Contains(buf.String(), colorCyan+"main.dyn") {
		t.Error("string values should be colorized")
	}
}

func TestPrettyHandler_JSONBlock(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none"))
	logger.Warn("slow", slog.Any("error", errors.New("boom")))

	want := "{\n  level: WARN,\n  msg: slow,\n  error: boom\n}\n"
	if got := stripColor(buf.String()); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none")).
		With(slog.String("component", "parser")).
		WithGroup("parse")

	logger.Info("done",
		slog.Int("depth", 3),
		slog.Group("pos", slog.Int("line", 1), slog.Int("column", 5)),
		slog.Group("empty"),
	)

	want := "level=INFO msg=done component=parser parse.depth=3 parse.pos.line=1 parse.pos.column=5\n"
	if got := stripColor(buf.String()); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

type token string

func (t token) LogValue() slog.Value {
	return slog.GroupValue(slog.String("text", string(t)))
}

func TestPrettyHandler_ResolvesLogValuer(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatText), WithTimeLayout("none")).
		Info("tok", slog.Any("token", token("let")))

	if got := stripColor(buf.String()); !strings.Contains(got, "token.text=let") {
		t.Errorf("LogValuer not resolved: %q", got)
	}
}

func TestPrettyHandler_LevelFilterAndSource(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText),
		WithTimeLayout("none"),
		WithLevel(LevelWarn),
		WithCaller(true),
	)

	logger.Info("hidden")
	logger.Error("shown")

	got := stripColor(buf.String())
	if strings.Contains(got, "hidden") {
		t.Errorf("info logged at warn level: %q", got)
	}

	if !strings.Contains(got, "source=") || !strings.Contains(got, "pretty_test.go:") {
		t.Errorf("missing source: %q", got)
	}
}

func TestPrettyHandler_Timestamp(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatText), WithTimeLayout("2006")).Info("x")

	got := stripColor(buf.String())
	if !strings.HasPrefix(got, "time=20") {
		t.Errorf("expected leading timestamp, got %q", got)
	}
}

func TestLevelColor(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.Level(LevelTrace), colorBlue},
		{slog.LevelDebug, colorBlue},
		{slog.LevelInfo, colorGreen},
		{slog.LevelWarn, colorYellow},
		{slog.LevelError, colorRed},
	}

	for _, tt := range tests {
		if got := levelColor(tt.level); got != tt.want {
			t.Errorf("levelColor(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
