package cli

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/molang/cli/cmd"
	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
	"github.com/ardnew/molang/pkg"
)

// CLI is the top-level command-line interface for molang.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Env     []string `help:"YAML environment file(s) merged in order"             name:"env"     short:"E" type:"existingfile"`
	Prelude []string `help:"Script file(s) run in the environment before the command" name:"prelude" short:"P" type:"existingfile"`

	MaxDepth  int  `default:"${maxDepth}" help:"Maximum nesting of groups, blocks, and calls"             name:"max-depth"`
	LeftAssoc bool `default:"false"       help:"Group equal-precedence operators from the left"            name:"left-assoc" negatable:""`
	Cache     bool `default:"true"        help:"Reuse compiled scripts for identical source and options" name:"cache"      negatable:""`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate expressions and scripts"`
	Fmt  cmd.Fmt  `cmd:""                    help:"Format scripts"`
	Repl cmd.Repl `cmd:""                    help:"Start an interactive prompt"`
	Init cmd.Init `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the molang CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: configPath(configYAML),
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Version,
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(configJSON)),
		kong.Configuration(resolve, configPath(configYAML)),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Callsite which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	opts := cli.options()

	env, err := loadEnvironment(ctx, cli.Env, opts...)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx, opts...)
	ctx = cmd.WithEnvironment(ctx, env)
	ctx = cmd.WithSourceFiles(ctx, cli.Prelude)

	if err := cmd.RunPrelude(ctx); err != nil {
		return err
	}

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}

// options returns the compile and run options selected by the global flags.
func (c *CLI) options() []lang.Option {
	return []lang.Option{
		lang.WithMaxDepth(c.MaxDepth),
		lang.WithLeftAssociative(c.LeftAssoc),
		lang.WithCache(c.Cache),
		lang.WithLogger(log.Default()),
	}
}

// loadEnvironment returns the default environment with each YAML environment
// file merged over it in order.
func loadEnvironment(
	ctx context.Context,
	paths []string,
	opts ...lang.Option,
) (*lang.Environment, error) {
	env := lang.NewEnvironment()

	for _, path := range paths {
		loaded, err := loadEnvironmentFile(ctx, path, opts...)
		if err != nil {
			return nil, err
		}

		env.Merge(loaded)
	}

	return env, nil
}

func loadEnvironmentFile(
	ctx context.Context,
	path string,
	opts ...lang.Option,
) (*lang.Environment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lang.ErrEnvironment.With(slog.String("file", path)).Wrap(err)
	}
	defer f.Close()

	env, err := lang.LoadEnvironment(ctx, f, opts...)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("file", path))
	}

	log.DebugContext(ctx, "merged environment file", slog.String("file", path))

	return env, nil
}
