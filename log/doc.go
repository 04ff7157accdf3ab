// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is configured once, at creation, with functional options. The
// zero Logger discards everything, so libraries can hold one in an options
// struct and log unconditionally.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("compiled", slog.Int("statements", 3))
//	logger.Error("run failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("Kitchen"),
//		log.WithCallsite(true))
//
// [Logger.Wrap] derives a logger with some options overridden, and [Config]
// does the same for the package-level logger used by [Info], [Error], and
// the other package functions.
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace sits below slog's Debug and is
// printed as TRACE. Use [Logger.Enabled] to skip building expensive
// attributes for records that would be discarded.
//
// # Output Formats
//
// [FormatJSON] (default) and [FormatText] are supported. With
// [WithPretty] (enabled by default) both are styled for a terminal with
// lipgloss: text output drops quotes, JSON output puts one field per line,
// and group attributes, including the groups returned by
// [slog.LogValuer] implementations, are flattened into dotted keys.
// Writers that are not terminals receive the same layout without color.
//
// # Context-Aware Logging
//
// Each level has a context-aware and a context-unaware variant. The
// context-unaware ones pass [DefaultContextProvider], which returns
// [context.TODO] by default.
package log
