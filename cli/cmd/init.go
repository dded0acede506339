package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/dyn-lang/dyn/lang"
	"github.com/dyn-lang/dyn/log"
	"github.com/dyn-lang/dyn/pkg"
	"github.com/dyn-lang/dyn/profile"
)

// Init generates a Dyn configuration file from the current flag values.
type Init struct {
	Force  bool `help:"Overwrite existing configuration file." short:"f"`
	Stdout bool `help:"Write to stdout instead of the configuration file."`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := KongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrap(errNoKongContext)
	}

	prog := BuildConfig(ktx)

	if i.Stdout {
		return writeConfig(ctx, Stdout(ctx), prog)
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok || confPath == "" {
		return ErrWriteConfig.Wrap(errNoConfigPath)
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}
	defer file.Close()

	if err := writeConfig(ctx, file, prog); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.Int("bindings", len(prog.Exprs)),
	)

	return nil
}

var (
	errNoKongContext = NewError("no command context")
	errNoConfigPath  = NewError("configuration path undefined")
)

func writeConfig(ctx context.Context, w io.Writer, prog *lang.Program) error {
	if _, err := fmt.Fprintf(w, "// %s configuration\n", pkg.Name); err != nil {
		return err
	}

	return prog.Format(ctx, w, 0)
}

// ConfigName returns the Dyn binding name for a flag: the flag name with
// hyphens removed, since Dyn identifiers are lowercase letters only.
func ConfigName(flag string) string {
	return strings.ReplaceAll(flag, "-", "")
}

// BuildConfig returns a program of let bindings, one per global flag,
// bound to its current value. Help, profiling and unset flags are skipped.
func BuildConfig(ktx *kong.Context) *lang.Program {
	b := lang.NewBuilder()
	prog := b.Program()

	skip := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(skip, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		name := ConfigName(flag.Name)
		if !validName(name) {
			continue
		}

		val := literal(reflect.ValueOf(ktx.FlagValue(flag)))
		if val == nil {
			continue
		}

		prog.Exprs = append(prog.Exprs, b.Let(name, val))
	}

	return prog
}

func validName(name string) bool {
	if name == "" || lang.IsKeyword(name) {
		return false
	}

	for _, c := range name {
		if c < 'a' || c > 'z' {
			return false
		}
	}

	return true
}

// literal converts a flag value into a Dyn literal, or nil if the value is
// unset or has no Dyn spelling.
func literal(v reflect.Value) lang.Node {
	var b lang.Builder

	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return b.Bool(v.Bool())

	case reflect.String:
		return stringLiteral(v.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return b.Int(v.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return b.Uint(v.Uint())

	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return nil
		}

		arr := b.Array()

		for i := range v.Len() {
			if el := literal(v.Index(i)); el != nil {
				arr.Elements = append(arr.Elements, el)
			}
		}

		return arr

	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}

		return literal(v.Elem())

	default:
		return stringLiteral(fmt.Sprint(v.Interface()))
	}
}

// stringLiteral returns a string literal, or nil for empty text or text
// containing a quote, which Dyn strings cannot express.
func stringLiteral(s string) lang.Node {
	if s == "" || strings.ContainsRune(s, '"') {
		return nil
	}

	return new(lang.Builder).String(s)
}
