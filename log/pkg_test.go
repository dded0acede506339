package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func useDefault(t *testing.T, opts ...Option) *bytes.Buffer {
	t.Helper()

	original := Default()
	t.Cleanup(func() { setDefault(original) })

	var buf bytes.Buffer

	Config(append([]Option{WithOutput(&buf)}, opts...)...)

	return &buf
}

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	buf := useDefault(t, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
		msg   string
	}{
		{"Trace", Trace, "TRACE", "trace message"},
		{"Debug", Debug, "DEBUG", "debug message"},
		{"Info", Info, "INFO", "info message"},
		{"Warn", Warn, "WARN", "warn message"},
		{"Error", Error, "ERROR", "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg, slog.String("key", "value"))

			output := buf.String()
			if !strings.Contains(output, tt.msg) {
				t.Errorf("expected output to contain message %q, got: %s", tt.msg, output)
			}

			if !strings.Contains(output, `"level":"`+tt.level+`"`) {
				t.Errorf("expected output to contain level %q, got: %s", tt.level, output)
			}

			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("expected output to contain attribute, got: %s", output)
			}
		})
	}
}

func TestPackage_ContextFunctions(t *testing.T) {
	buf := useDefault(t, WithLevel(LevelTrace), WithPretty(false))

	ctx := context.Background()

	TraceContext(ctx, "a")
	DebugContext(ctx, "b")
	InfoContext(ctx, "c")
	WarnContext(ctx, "d")
	ErrorContext(ctx, "e")

	if got := strings.Count(buf.String(), "\n"); got != 5 {
		t.Errorf("got %d lines, want 5:\n%s", got, buf.String())
	}
}

func TestPackage_Config_KeepsUnspecifiedSettings(t *testing.T) {
	buf := useDefault(t, WithPretty(false))

	Config(WithLevel(LevelError))

	Warn("dropped")
	Error("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("unexpected output: %s", out)
	}

	if Default().Format() != DefaultFormat {
		t.Errorf("format changed to %v", Default().Format())
	}
}

func TestPackage_With(t *testing.T) {
	buf := useDefault(t, WithPretty(false))

	With(slog.String("component", "repl")).Info("ready")

	if !strings.Contains(buf.String(), `"component":"repl"`) {
		t.Errorf("missing attribute: %s", buf.String())
	}
}
