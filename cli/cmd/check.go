package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dyn-lang/dyn/lang"
	"github.com/dyn-lang/dyn/log"
)

// Check parses each source and reports diagnostics.
type Check struct {
	MaxDepth int  `default:"${maxDepth}" help:"Maximum expression nesting depth (negative disables)."`
	Watch    bool `                      help:"Re-check files when they change." short:"w"`
	Quiet    bool `                      help:"Only report failures."            short:"q"`

	Files []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	files := NewSourceFiles(c.Files)
	if len(files) == 0 {
		files = SourceFiles{StdinSource}
	}

	failed := 0

	for _, path := range files {
		if !c.checkFile(ctx, path) {
			failed++
		}
	}

	if c.Watch {
		return c.watch(ctx, files)
	}

	if failed > 0 {
		return ErrCheckFailed.With(
			slog.Int("failed", failed),
			slog.Int("files", len(files)),
		)
	}

	return nil
}

// checkFile parses one source and reports the outcome. It reports whether
// the source parsed successfully.
func (c *Check) checkFile(ctx context.Context, path string) bool {
	prog, name, err := c.parse(ctx, path)
	if err != nil {
		c.report(ctx, name, err)

		return false
	}

	if !c.Quiet {
		fmt.Fprintf(Stdout(ctx), "%s: ok (%d expressions, %d tokens)\n",
			name, len(prog.Exprs), lang.TokenCount(prog))
	}

	return true
}

func (c *Check) parse(
	ctx context.Context,
	path string,
) (*lang.Program, string, error) {
	name, rc, err := Open(path)
	if err != nil {
		return nil, name, ErrReadSource.Wrap(err).With(slog.String("file", name))
	}
	defer rc.Close()

	opts := []lang.Option{lang.WithLogger(log.Default())}
	if c.MaxDepth != 0 {
		opts = append(opts, lang.WithMaxDepth(c.MaxDepth))
	}

	prog, err := lang.ParseReader(ctx, rc, opts...)

	return prog, name, err
}

func (c *Check) report(ctx context.Context, name string, err error) {
	var diag *lang.Diagnostic
	if errors.As(err, &diag) {
		fmt.Fprintf(Stderr(ctx), "%s: %s", name, diag.Snippet())

		log.DebugContext(ctx, "check failed",
			slog.String("file", name),
			slog.Any("diagnostic", diag),
		)

		return
	}

	fmt.Fprintf(Stderr(ctx), "%s: %v\n", name, err)
}

// watchDebounce coalesces the bursts of events editors produce on save.
const watchDebounce = 50 * time.Millisecond

// watch re-checks files on write or create events until ctx is done.
// Directories are watched rather than files so that editors replacing a file
// by rename are still observed.
func (c *Check) watch(ctx context.Context, files SourceFiles) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer w.Close()

	watched := make(map[string]string) // absolute path -> given path
	dirs := make(map[string]struct{})

	for _, path := range files {
		if path == StdinSource {
			continue
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return ErrWatch.Wrap(err).With(slog.String("file", path))
		}

		watched[abs] = path
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	if len(watched) == 0 {
		return ErrWatch.Wrap(errors.New("no files to watch"))
	}

	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return ErrWatch.Wrap(err).With(slog.String("dir", dir))
		}
	}

	log.InfoContext(ctx, "watching", slog.Int("files", len(watched)))

	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			if path, ok := watched[filepath.Clean(ev.Name)]; ok {
				pending[path] = struct{}{}
				timer.Reset(watchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-timer.C:
			for path := range pending {
				c.checkFile(ctx, path)
				delete(pending, path)
			}
		}
	}
}
