package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/molang/log"
)

func plain(opts ...log.Option) log.Logger {
	return log.Make(os.Stdout,
		append([]log.Option{log.WithTimeLayout("none"), log.WithPretty(false)},
			opts...)...)
}

func Example_text() {
	logger := plain(log.WithFormat(log.FormatText))

	logger.Info("compiled", slog.Int("statements", 2))
	// Output: level=INFO msg=compiled statements=2
}

func Example_json() {
	logger := plain().With(slog.String("file", "tick.mo"))

	logger.Warn("slow", slog.Int("steps", 40))
	// Output: {"level":"WARN","msg":"slow","file":"tick.mo","steps":40}
}

func Example_levels() {
	logger := plain(log.WithFormat(log.FormatText), log.WithLevel(log.LevelTrace))

	logger.TraceContext(context.Background(), "statement", slog.Int("index", 0))
	logger.Wrap(log.WithLevel(log.LevelWarn)).Info("dropped")
	// Output: level=TRACE msg=statement index=0
}
