// Package cli contains the command line interface for molang.
//
// # Usage
//
//	molang [flags] [eval] [-e EXPR]... [SCRIPT]...
//	molang fmt {native,json,yaml,ast} [SCRIPT]
//	molang repl
//	molang init [--force]
//
// Eval is the default command: with no subcommand, arguments are script
// files and -e adds expressions. Every command evaluates against one
// environment built from the builtin constants, the default "variable"
// struct with its alias "v", and each --env YAML file merged in order.
// Scripts named by --prelude run in that environment first.
//
// # Configuration
//
// Flags may also be set in $XDG_CONFIG_HOME/molang/config.yaml, a flat
// mapping of flag names to values, or in config.json beside it. The init
// command writes the YAML file from the current flag values. Command-line
// flags override both files.
//
// # Language Options
//
//   - --max-depth: Maximum nesting of groups, blocks, and calls
//   - --left-assoc: Group equal-precedence operators from the left
//   - --no-cache: Compile every script afresh
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-callsite: Include the source location of each record
//   - --log-pretty: Colorize and indent log output
//
// # Profiling Options
//
//   - --pprof-mode: Profile the whole run (cpu, heap, mutex, trace, ...)
//   - --pprof-dir: Set profile output directory
//
// Profiles are written under $XDG_CACHE_HOME/molang/pprof by default. The
// flags exist only in builds made with the pprof build tag:
//
//	go build -tags pprof -o molang .
//
// # Examples
//
//	# Evaluate an expression
//	molang -e 'math.clamp(v.x ?? 5, 0, 3)'
//
//	# Run a script against an environment file, printing JSON
//	molang --env world.yaml eval -o json tick.mo
//
//	# Print the canonical form of a script
//	molang fmt script.mo
package cli
