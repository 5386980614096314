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

// blockCache stores parsed blocks keyed by a hash of their source and the
// options that affect parsing. Cached blocks are shared: evaluation never
// modifies a parsed block.
var blockCache sync.Map

// entry tracks the parse result of a single source.
type entry struct {
	once  sync.Once
	block *Block
	err   error
}

// hashOptions encodes the options that affect parsing using gob and hashes
// them with xxh3.
func hashOptions(o options) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(o.maxDepth)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader parses a complete script read from r.
// The result is cached by content, so reading the same script again returns
// the same *Block without parsing it twice.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Block, error) {
	// Wrap reader with async read-ahead so large scripts are fetched while
	// earlier chunks are being copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true))

	sourceHash := xxh3.Hash(data)
	optsHash := hashOptions(o)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := blockCache.LoadOrStore(key, new(entry))

	cached, ok := value.(*entry)
	if !ok {
		return nil, ErrReadInput.Detail("invalid cache entry type %T", value)
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit))

	cached.once.Do(func() {
		cached.block, cached.err = ParseBlock(ctx, string(data), opts...)
	})

	return cached.block, cached.err
}

// ClearCache removes all cached parse results.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	blockCache.Clear()
}
