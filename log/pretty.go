package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// style selects the layout of a prettyHandler record.
type style int

const (
	// textStyle writes one line of space-separated key=value pairs.
	textStyle style = iota
	// jsonStyle writes a brace-delimited block with one "key: value" per line.
	jsonStyle
)

// prettyHandler is a colorized slog.Handler for terminals.
// Groups are flattened into dotted keys and LogValuer values are resolved.
type prettyHandler struct {
	opts   slog.HandlerOptions
	style  style
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr // preresolved, keys already qualified
	prefix string      // open groups joined by "."
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	s style,
) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		style: s,
		mu:    &sync.Mutex{},
		w:     w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []field

	if !r.Time.IsZero() {
		if a, ok := h.replace(slog.Time(slog.TimeKey, r.Time)); ok {
			fields = append(fields, field{a.Key, a.Value, colorBlue})
		}
	}

	if a, ok := h.replace(slog.Any(slog.LevelKey, r.Level)); ok {
		fields = append(fields, field{a.Key, a.Value, levelColor(r.Level)})
	}

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			loc := fmt.Sprintf("%s:%d", src.File, src.Line)
			fields = append(fields, field{slog.SourceKey, slog.StringValue(loc), colorGray})
		}
	}

	fields = append(fields, field{slog.MessageKey, slog.StringValue(r.Message), ""})

	for _, a := range h.attrs {
		fields = appendAttr(fields, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, a)

		return true
	})

	buf := new(bytes.Buffer)

	switch h.style {
	case jsonStyle:
		writeBlock(buf, fields)

	default:
		writeLine(buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		if a.Key == "" {
			continue
		}

		c.attrs = append(c.attrs, slog.Attr{
			Key:   qualify(h.prefix, a.Key),
			Value: a.Value.Resolve(),
		})
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = qualify(h.prefix, name)

	return &c
}

// replace applies the configured ReplaceAttr to a built-in attribute.
// It reports false if the attribute was dropped.
func (h *prettyHandler) replace(a slog.Attr) (slog.Attr, bool) {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	return a, a.Key != ""
}

// field is a flattened attribute ready to be written.
type field struct {
	key   string
	value slog.Value
	color string // empty selects a color by value kind
}

func qualify(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

// appendAttr flattens a into fields, expanding groups into dotted keys.
func appendAttr(fields []field, prefix string, a slog.Attr) []field {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		group := v.Group()
		if len(group) == 0 {
			return fields
		}

		// Inline groups (empty key) merge into the parent.
		if a.Key != "" {
			prefix = qualify(prefix, a.Key)
		}

		for _, ga := range group {
			fields = appendAttr(fields, prefix, ga)
		}

		return fields
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, field{qualify(prefix, a.Key), v, ""})
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed

	case level >= slog.LevelWarn:
		return colorYellow

	case level >= slog.LevelInfo:
		return colorGreen

	default:
		return colorBlue
	}
}

// writeLine writes fields as: key=value key=value ...
func writeLine(buf *bytes.Buffer, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(colorGray)
		buf.WriteString(f.key)
		buf.WriteString(colorReset)
		buf.WriteByte('=')
		writeValue(buf, f)
	}

	buf.WriteByte('\n')
}

// writeBlock writes fields as a brace-delimited block, one per line.
func writeBlock(buf *bytes.Buffer, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		buf.WriteString("  ")
		buf.WriteString(colorGray)
		buf.WriteString(f.key)
		buf.WriteString(colorReset)
		buf.WriteString(": ")
		writeValue(buf, f)

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

func writeValue(buf *bytes.Buffer, f field) {
	color, text := f.color, ""
	v := f.value

	switch v.Kind() {
	case slog.KindString:
		text = v.String()

		if color == "" {
			color = colorCyan
		}

	case slog.KindInt64:
		text = strconv.FormatInt(v.Int64(), 10)

	case slog.KindUint64:
		text = strconv.FormatUint(v.Uint64(), 10)

	case slog.KindFloat64:
		text = strconv.FormatFloat(v.Float64(), 'g', -1, 64)

	case slog.KindBool:
		text = strconv.FormatBool(v.Bool())

		if color == "" {
			color = colorRed
			if v.Bool() {
				color = colorGreen
			}
		}

	case slog.KindDuration:
		text = v.Duration().String()

		if color == "" {
			color = colorMagenta
		}

	case slog.KindTime:
		text = v.Time().Format(time.RFC3339)

		if color == "" {
			color = colorBlue
		}

	default:
		if err, ok := v.Any().(error); ok {
			text = err.Error()

			if color == "" {
				color = colorRed
			}
		} else {
			text = v.String()
		}
	}

	if color == "" {
		color = colorYellow // numbers
	}

	buf.WriteString(color)
	buf.WriteString(strings.TrimRight(text, "\n"))
	buf.WriteString(colorReset)
}
