package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"

	"github.com/ardnew/molang/log"
)

type compiler struct {
	config
}

func (c *compiler) tooDeep() *Error {
	return syntaxError("maximum nesting depth exceeded").
		With(slog.Int("max_depth", c.maxDepth))
}

// Compile lexes, splits, and parses source into a [*Block].
//
// Results are cached by source text and options unless disabled with
// [WithCache]. The returned block is immutable and may be evaluated
// concurrently.
func Compile(ctx context.Context, source string, opts ...Option) (*Block, error) {
	cfg := makeConfig(opts...)

	if cfg.noCache {
		return compile(ctx, cfg, source)
	}

	return compileCached(ctx, cfg, source)
}

// MustCompile is like [Compile] but panics if source does not compile.
func MustCompile(source string, opts ...Option) *Block {
	b, err := Compile(context.Background(), source, opts...)
	if err != nil {
		panic(err)
	}

	return b
}

// CompileReader reads all of r and compiles it.
func CompileReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Block, error) {
	// Wrap reader with async read-ahead so input is prefetched while the
	// previous chunk is copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return Compile(ctx, string(data), opts...)
}

func compile(ctx context.Context, cfg config, source string) (*Block, error) {
	c := &compiler{config: cfg}

	tokens, err := c.lex([]rune(source), 0, 0)
	if err != nil {
		return nil, err
	}

	if cfg.logger.Enabled(ctx, log.LevelTrace) {
		cfg.logger.TraceContext(
			ctx,
			"lexed",
			slog.Int("tokens", len(tokens)),
			slog.String("text", joinTokens(tokens, " ")),
		)
	}

	b, err := c.split(tokens, 0)
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(
		ctx,
		"compiled",
		slog.Int("statements", len(b.Statements)),
		slog.Bool("multiple", b.Multiple),
	)

	return b, nil
}
