package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// globalCache stores compiled blocks keyed by (source_hash:options_hash).
var globalCache sync.Map

// entry compiles its source at most once, even under concurrent lookups.
type entry struct {
	once  sync.Once
	block *Block
	err   error
}

// hashOptions encodes the options that affect compiled output using gob and
// hashes them with xxh3.
func hashOptions(cfg config) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(cfg.maxDepth)
	_ = enc.Encode(cfg.leftAssoc)

	return xxh3.Hash(buf.Bytes())
}

func cacheKey(cfg config, source string) string {
	return strconv.FormatUint(xxh3.HashString(source), 36) + ":" +
		strconv.FormatUint(hashOptions(cfg), 36)
}

func compileCached(
	ctx context.Context,
	cfg config,
	source string,
) (*Block, error) {
	key := cacheKey(cfg, source)

	value, hit := globalCache.LoadOrStore(key, new(entry))

	e, ok := value.(*entry)
	if !ok {
		return compile(ctx, cfg, source)
	}

	cfg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("key", key),
		slog.Bool("hit", hit),
	)

	e.once.Do(func() {
		e.block, e.err = compile(ctx, cfg, source)
	})

	return e.block, e.err
}

// ClearCache discards every cached compilation result.
func ClearCache() {
	globalCache.Clear()
}
