// Package cmd implements the molang subcommands: eval, fmt, repl, and init.
//
// Commands receive everything beyond their own flags through the
// [context.Context] passed to Run: the parsed [kong.Context], the compile
// options, the evaluation environment, and the output writer.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
