package cmd

import (
	"context"
	"log/slog"

	"github.com/dyn-lang/dyn/lang"
)

// Fmt parses a source and writes it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical Dyn syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as an indented syntax tree."`
}

// Input is the source argument shared by the fmt subcommands.
type Input struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// parse reads and parses the source, tagging failures with the format name.
func (in Input) parse(ctx context.Context, format string) (*lang.Program, error) {
	name, rc, err := Open(in.Source)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("file", name))
	}
	defer rc.Close()

	prog, err := lang.ParseReader(ctx, rc)
	if err != nil {
		return nil, lang.WrapError(err).With(
			slog.String("file", name),
			slog.String("format", format),
		)
	}

	return prog, nil
}

// Native formats input as canonical Dyn syntax.
type Native struct {
	Indent int `default:"2" help:"Indent width for blocks; 0 keeps blocks on one line." short:"i"`

	Input `embed:""`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := f.parse(ctx, "native")
	if err != nil {
		return err
	}

	if err := prog.Format(ctx, Stdout(ctx), f.Indent); err != nil {
		return ErrFormat.Wrap(err).With(slog.String("format", "native"))
	}

	return nil
}

// JSON formats input as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output; 0 is compact." short:"i"`

	Input `embed:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	if err := prog.FormatJSON(ctx, Stdout(ctx), j.Indent); err != nil {
		return ErrFormat.Wrap(err).With(slog.String("format", "json"))
	}

	return nil
}

// YAML formats input as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output; 0 selects flow style." short:"i"`

	Input `embed:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	if err := prog.FormatYAML(ctx, Stdout(ctx), y.Indent); err != nil {
		return ErrFormat.Wrap(err).With(slog.String("format", "yaml"))
	}

	return nil
}

// AST prints the syntax tree, one node per line.
type AST struct {
	Input `embed:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := a.parse(ctx, "ast")
	if err != nil {
		return err
	}

	if err := lang.Dump(Stdout(ctx), prog); err != nil {
		return ErrFormat.Wrap(err).With(slog.String("format", "ast"))
	}

	return nil
}
