package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Eval evaluates expressions and scripts in the configured environment.
//
// Each -e expression runs first, in order, followed by each source file.
// With neither, the script is read from stdin. All of them share one
// environment, so assignments made by one are visible to the next.
type Eval struct {
	Expr   []string `help:"Expression to evaluate (repeatable)"     name:"expr"   short:"e"`
	Format string   `help:"Result output format"                    name:"format" short:"o" default:"text" enum:"text,json,yaml"`
	Source []string `help:"Script file(s) or '-' for stdin"         name:"source" arg:"" optional:"" type:"existingfile"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	env := environmentFrom(ctx)
	opts := optionsFrom(ctx)
	out := outputFrom(ctx)

	for _, expr := range e.Expr {
		b, err := lang.Compile(ctx, expr, opts...)
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "eval"), slog.String("expr", expr))
		}

		if err := e.run(ctx, out, env, b, opts); err != nil {
			return err
		}
	}

	sources := e.Source
	if len(sources) == 0 && len(e.Expr) == 0 {
		sources = []string{stdinSource}
	}

	if len(sources) == 0 {
		return nil
	}

	src := buildSourceFiles(sources)
	if src == nil {
		return ErrOpenSource.With(slog.Any("source", sources)).Wrap(ErrNoInput)
	}

	return src.Each(func(i int, r io.Reader) error {
		b, err := lang.CompileReader(ctx, r, opts...)
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "eval"), slog.Int("source", i))
		}

		return e.run(ctx, out, env, b, opts)
	})
}

func (e *Eval) run(
	ctx context.Context,
	w io.Writer,
	env *lang.Environment,
	b *lang.Block,
	opts []lang.Option,
) error {
	v, err := env.Run(ctx, b, opts...)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "eval"))
	}

	log.TraceContext(ctx, "eval result",
		slog.String("type", v.Type().String()),
		slog.Bool("multiple", b.Multiple),
	)

	return writeValue(ctx, w, e.Format, v)
}

// writeValue prints v to w in the given format followed by a newline.
func writeValue(ctx context.Context, w io.Writer, format string, v lang.Value) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case "json":
		data, err = json.Marshal(finite(lang.Native(v)))
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		data = append(data, '\n')

	case "yaml":
		data, err = yaml.MarshalContext(ctx, lang.Native(v))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	default:
		data = []byte(v.String() + "\n")
	}

	if _, err := w.Write(data); err != nil {
		return ErrWriteResult.Wrap(err)
	}

	return nil
}

// finite replaces the infinities and NaNs in a native value, which JSON
// cannot represent, with their text form ("+Inf", "-Inf", "NaN").
func finite(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}

	case map[string]any:
		for k, e := range x {
			x[k] = finite(e)
		}

	case []any:
		for i, e := range x {
			x[i] = finite(e)
		}
	}

	return v
}
