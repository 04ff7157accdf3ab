package cmd

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/molang/cli/cmd/repl"
	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Repl starts an interactive prompt evaluating statements against one
// long-lived environment.
type Repl struct {
	History bool `default:"true" help:"Persist input history in the cache directory." negatable:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var cacheDir string

	if r.History {
		if ktx := kongContextFrom(ctx); ktx != nil {
			cacheDir = ktx.Model.Vars()[CacheIdentifier]
		}
	}

	logger := log.Default().With(slog.String("command", "repl"))

	opts := append(slices.Clip(optionsFrom(ctx)), lang.WithLogger(logger))

	return repl.Run(ctx, environmentFrom(ctx), cacheDir, logger, opts...)
}
