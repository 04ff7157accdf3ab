package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/molang/lang"
)

// Fmt reads a script, compiles it, and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical molang source (default)."`
	JSON   JSON   `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format the syntax tree as YAML."`
	AST    AST    `cmd:""                    help:"Format the syntax tree as an indented outline."`
}

// Native formats input as canonical molang source, one statement per line.
type Native struct {
	Indent int `default:"0" help:"Spaces prefixed to each statement" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	b, err := compileSource(ctx, f.Source, "native")
	if err != nil {
		return err
	}

	return lang.Format(outputFrom(ctx), b, strings.Repeat(" ", max(f.Indent, 0)))
}

// JSON prints the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	b, err := compileSource(ctx, j.Source, "json")
	if err != nil {
		return err
	}

	err = lang.FormatJSON(outputFrom(ctx), b, strings.Repeat(" ", max(j.Indent, 0)))
	if err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// YAML prints the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output, or 0 for flow style" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	b, err := compileSource(ctx, y.Source, "yaml")
	if err != nil {
		return err
	}

	if err := lang.FormatYAML(ctx, outputFrom(ctx), b, y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// AST prints the syntax tree as an indented outline, one node per line.
type AST struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	b, err := compileSource(ctx, a.Source, "ast")
	if err != nil {
		return err
	}

	return lang.Print(outputFrom(ctx), b)
}

// compileSource compiles the script read from source, a file path or "-"
// for stdin.
func compileSource(ctx context.Context, source, format string) (*lang.Block, error) {
	src := buildSourceFiles([]string{source})
	if src == nil {
		return nil, ErrOpenSource.
			With(slog.String("source", source)).
			Wrap(ErrNoInput)
	}

	var b *lang.Block

	err := src.Each(func(_ int, r io.Reader) (err error) {
		b, err = lang.CompileReader(ctx, r, optionsFrom(ctx)...)

		return err
	})
	if err != nil {
		return nil, lang.WrapError(err).
			With(slog.String("format", format), slog.String("source", source))
	}

	return b, nil
}
