package cmd

import (
	"context"
	"log/slog"

	"github.com/dyn-lang/dyn/cli/cmd/repl"
	"github.com/dyn-lang/dyn/lang"
	"github.com/dyn-lang/dyn/log"
)

// Repl starts the interactive parser.
type Repl struct {
	CacheDir  string `default:"${cache}" help:"Directory holding the REPL history." hidden:"" type:"path"`
	NoHistory bool   `                   help:"Keep history in memory only."`
}

// Run executes the repl command. Files given with --source are parsed first
// so that their bindings can be listed and completed.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	preload, err := r.preload(ctx)
	if err != nil {
		return err
	}

	cacheDir := r.CacheDir
	if r.NoHistory {
		cacheDir = ""
	}

	if err := repl.Run(ctx, preload, cacheDir, log.Default()); err != nil {
		return ErrRepl.Wrap(err)
	}

	return nil
}

func (r *Repl) preload(ctx context.Context) ([]*lang.Program, error) {
	var progs []*lang.Program

	for _, path := range SourceFilesFrom(ctx) {
		// stdin belongs to the terminal while the REPL runs.
		if path == StdinSource {
			continue
		}

		name, rc, err := Open(path)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("file", name))
		}

		prog, err := lang.ParseReader(ctx, rc, lang.WithLogger(log.Default()))
		rc.Close()

		if err != nil {
			return nil, lang.WrapError(err).With(slog.String("file", name))
		}

		log.DebugContext(ctx, "preloaded source",
			slog.String("file", name),
			slog.Int("exprs", len(prog.Exprs)),
		)

		progs = append(progs, prog)
	}

	return progs, nil
}
