package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parse results keyed by a hash of source and options.
// Both programs and diagnostics are cached. Cached programs are shared
// between callers and must not be modified.
var globalCache sync.Map

// cacheEntry holds the result of parsing one source text.
type cacheEntry struct {
	once sync.Once
	prog *Program
	err  error
}

// hashOptions encodes the options that affect the parse result using gob
// and hashes them with xxh3.
func hashOptions(cfg config) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(cfg.maxDepth)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader reads all of r and parses it.
// The content is read asynchronously ahead of consumption.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return ParseString(ctx, string(data), opts...)
}

// parseCached parses source at most once per distinct source and options.
func parseCached(ctx context.Context, source string, cfg config) (*Program, error) {
	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(cfg)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := globalCache.LoadOrStore(key, new(cacheEntry))

	entry, ok := value.(*cacheEntry)
	if !ok {
		return nil, ErrInvalidCache.
			With(slog.String("key", key))
	}

	cfg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.prog, entry.err = parse(ctx, NewLexer(source), cfg)
	})

	return entry.prog, entry.err
}

// ClearCache removes all cached parse results.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
