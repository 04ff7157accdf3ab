package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/molang/log"
)

// Run evaluates b against an environment.
//
// Names resolve through aliases first, then variables, then constants.
// Assignments write to variables only and persist after Run returns, even
// when a later statement fails. The result never shares struct storage with
// the environment.
func Run(
	ctx context.Context,
	b *Block,
	constants, variables Struct,
	aliases map[string]string,
	opts ...Option,
) (Value, error) {
	cfg := makeConfig(opts...)

	e := &evaluator{
		ctx:       ctx,
		logger:    cfg.logger,
		constants: constants,
		variables: variables,
		aliases:   aliases,
		trace:     cfg.logger.Enabled(ctx, log.LevelTrace),
	}

	v, _, err := e.block(b)
	if err != nil {
		cfg.logger.DebugContext(ctx, "run failed", slog.Any("error", err))

		return nil, err
	}

	return Copy(v), nil
}

// Eval compiles source and runs it. See [Compile] and [Run].
func Eval(
	ctx context.Context,
	source string,
	constants, variables Struct,
	aliases map[string]string,
	opts ...Option,
) (Value, error) {
	b, err := Compile(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	return Run(ctx, b, constants, variables, aliases, opts...)
}
