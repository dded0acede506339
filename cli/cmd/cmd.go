package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

// KongContextFrom returns the kong.Context stored by [WithContext], or nil.
func KongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Stdout returns the standard output writer configured for the kong
// application in ctx, or [os.Stdout].
func Stdout(ctx context.Context) io.Writer {
	if ktx := KongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// Stderr returns the standard error writer configured for the kong
// application in ctx, or [os.Stderr].
func Stderr(ctx context.Context) io.Writer {
	if ktx := KongContextFrom(ctx); ktx != nil && ktx.Stderr != nil {
		return ktx.Stderr
	}

	return os.Stderr
}

type sourceFilesKey struct{}

// SourceFiles is a deduplicated list of input paths. The stdin marker "-"
// appears at most once, always last.
type SourceFiles []string

// StdinSource is the path that selects standard input.
const StdinSource = "-"

// StdinName is the display name used for standard input in messages.
const StdinName = "<stdin>"

// WithSourceFiles returns a new context.Context containing the deduplicated
// source files.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, NewSourceFiles(sources))
}

// SourceFilesFrom returns the source files stored by [WithSourceFiles].
func SourceFilesFrom(ctx context.Context) SourceFiles {
	s, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return s
}

// NewSourceFiles deduplicates sources by resolving symlinks and comparing
// device and inode numbers. Paths that cannot be resolved are kept as given
// so that opening them reports the failure.
func NewSourceFiles(sources []string) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var (
		files    SourceFiles
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	if info, err := os.Stdin.Stat(); err == nil {
		if key, ok := makeFileKey(info); ok {
			seen[key] = struct{}{}
		}
	}

	for _, src := range sources {
		if src == StdinSource {
			hasStdin = true

			continue
		}

		key, ok := resolveFileKey(src)
		if !ok {
			files = append(files, src)

			continue
		}

		if _, dup := seen[key]; dup {
			// A named path referring to stdin (e.g. /dev/stdin) counts as "-".
			if isStdin(key) {
				hasStdin = true
			}

			continue
		}

		seen[key] = struct{}{}
		files = append(files, src)
	}

	if hasStdin {
		files = append(files, StdinSource)
	}

	return files
}

// Open opens the file at path, or returns stdin for [StdinSource].
// The returned name is suitable for messages.
func Open(path string) (name string, rc io.ReadCloser, err error) {
	if path == StdinSource || path == "" {
		return StdinName, io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return path, nil, err
	}

	return path, f, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

func resolveFileKey(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

func isStdin(key fileKey) bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	stdin, ok := makeFileKey(info)

	return ok && stdin == key
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
