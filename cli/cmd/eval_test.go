package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/molang/lang"
)

func evalContext(t *testing.T, opts ...lang.Option) (context.Context, *bytes.Buffer, *lang.Environment) {
	t.Helper()

	var out bytes.Buffer

	env := lang.NewEnvironment()
	ctx := WithOutput(t.Context(), &out)
	ctx = WithEnvironment(ctx, env)
	ctx = WithOptions(ctx, opts...)

	return ctx, &out, env
}

func TestEvalRun_Expressions(t *testing.T) {
	ctx, out, env := evalContext(t)

	e := &Eval{
		Expr:   []string{"v.x = 4", "v.x * 2", "v.x > 3 ? 10 : 20"},
		Format: "text",
	}

	if err := e.Run(ctx); err != nil {
		t.Fatalf("Eval.Run() error = %v", err)
	}

	if want := "4\n8\n10\n"; out.String() != want {
		t.Errorf("output %q, want %q", out.String(), want)
	}

	if v, _ := env.Lookup("v.x"); v != lang.Number(4) {
		t.Errorf("expected assignment kept in environment, got %v", v)
	}
}

func TestEvalRun_Sources(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.mo", "v.n = 2;\nv.n = v.n * 5;")
	second := writeFile(t, dir, "second.mo", "return v.n + 1;")

	ctx, out, _ := evalContext(t)

	e := &Eval{
		Expr:   []string{"v.n = 1"},
		Format: "text",
		Source: []string{first, second},
	}

	if err := e.Run(ctx); err != nil {
		t.Fatalf("Eval.Run() error = %v", err)
	}

	if want := "1\n0\n11\n"; out.String() != want {
		t.Errorf("output %q, want %q", out.String(), want)
	}
}

func TestEvalRun_Formats(t *testing.T) {
	src := "v.a.b = 1; v.a.c = 2.5; return v.a;"

	t.Run("json", func(t *testing.T) {
		ctx, out, _ := evalContext(t)

		if err := (&Eval{Expr: []string{src}, Format: "json"}).Run(ctx); err != nil {
			t.Fatal(err)
		}

		var got map[string]float64
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", out.String(), err)
		}

		if got["b"] != 1 || got["c"] != 2.5 {
			t.Errorf("unexpected result %v", got)
		}
	})

	t.Run("json non-finite", func(t *testing.T) {
		ctx, out, _ := evalContext(t)

		script := "v.r.p = 1 / 0; v.r.n = 0 - 1 / 0; v.r.l = array(0 / 0, 2); return v.r;"
		if err := (&Eval{Expr: []string{"1 / 0", script}, Format: "json"}).Run(ctx); err != nil {
			t.Fatal(err)
		}

		first, rest, _ := strings.Cut(out.String(), "\n")
		if first != `"+Inf"` {
			t.Errorf("expected \"+Inf\", got %s", first)
		}

		var got struct {
			P, N string
			L    []any
		}
		if err := json.Unmarshal([]byte(rest), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", rest, err)
		}

		if got.P != "+Inf" || got.N != "-Inf" || len(got.L) != 2 ||
			got.L[0] != "NaN" || got.L[1] != float64(2) {
			t.Errorf("unexpected result %+v", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		ctx, out, _ := evalContext(t)

		if err := (&Eval{Expr: []string{src}, Format: "yaml"}).Run(ctx); err != nil {
			t.Fatal(err)
		}

		for _, want := range []string{"b: 1", "c: 2.5"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected %q in %q", want, out.String())
			}
		}
	})

	t.Run("text", func(t *testing.T) {
		ctx, out, _ := evalContext(t)

		if err := (&Eval{Expr: []string{src}, Format: "text"}).Run(ctx); err != nil {
			t.Fatal(err)
		}

		if want := "{b: 1, c: 2.5}\n"; out.String() != want {
			t.Errorf("output %q, want %q", out.String(), want)
		}
	})
}

func TestEvalRun_Options(t *testing.T) {
	ctx, out, _ := evalContext(t, lang.WithLeftAssociative(true))

	if err := (&Eval{Expr: []string{"8 - 3 - 2"}}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if out.String() != "3\n" {
		t.Errorf("expected left-associative result, got %q", out.String())
	}
}

func TestEvalRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want error
	}{
		{"syntax", "1 +", lang.ErrIncompleteExpression},
		{"unknown variable", "nope.x = 1", lang.ErrVariableNotFound},
		{"type", "math.abs(v)", lang.ErrType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, _ := evalContext(t)

			err := (&Eval{Expr: []string{tt.expr}}).Run(ctx)
			if !errors.Is(err, tt.want) {
				t.Errorf("Eval.Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEvalRun_MissingSource(t *testing.T) {
	ctx, _, _ := evalContext(t)

	err := (&Eval{Source: []string{"/nonexistent/script.mo"}}).Run(ctx)
	if !errors.Is(err, ErrOpenSource) {
		t.Errorf("Eval.Run() error = %v, want %v", err, ErrOpenSource)
	}
}
