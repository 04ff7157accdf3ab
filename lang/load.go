package lang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// document is the YAML layout of an environment file:
//
//	constants:
//	  gravity: 9.8
//	  double: args[0] * 2
//	variables:
//	  player: {health: 20, alive: true}
//	  inventory: [1, 2, 3]
//	aliases:
//	  p: player
type document struct {
	Constants map[string]any    `yaml:"constants"`
	Variables map[string]any    `yaml:"variables"`
	Aliases   map[string]string `yaml:"aliases"`
}

// LoadEnvironment decodes an environment from YAML.
//
// Numbers become Number, booleans become 1 or 0, mappings become Struct,
// null becomes Null, sequences become arrays, and strings are compiled as
// expr-lang functions with [ExprFunction]. Unknown top-level keys are
// rejected.
func LoadEnvironment(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Environment, error) {
	cfg := makeConfig(opts...)

	var doc document

	dec := yaml.NewDecoder(r, yaml.DisallowUnknownField())
	if err := dec.DecodeContext(ctx, &doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, ErrEnvironment.Wrap(err)
	}

	env := &Environment{
		Constants: Struct{},
		Variables: Struct{},
		Aliases:   map[string]string{},
	}

	for _, section := range []struct {
		dst  Struct
		src  map[string]any
		name string
	}{
		{env.Constants, doc.Constants, "constants"},
		{env.Variables, doc.Variables, "variables"},
	} {
		for _, key := range slices.Sorted(maps.Keys(section.src)) {
			v, err := fromYAML(section.name+"."+key, section.src[key])
			if err != nil {
				return nil, err
			}

			section.dst[key] = v
		}
	}

	for alias, target := range doc.Aliases {
		if strings.TrimSpace(target) == "" {
			return nil, ErrEnvironment.With(
				slog.String("alias", alias),
				slog.String("message", "empty alias target"),
			)
		}

		env.Aliases[alias] = target
	}

	cfg.logger.DebugContext(
		ctx,
		"loaded environment",
		slog.Int("constants", len(env.Constants)),
		slog.Int("variables", len(env.Variables)),
		slog.Int("aliases", len(env.Aliases)),
	)

	return env, nil
}

func fromYAML(path string, v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil

	case bool:
		return Bool(x), nil

	case int:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case uint64:
		return Number(x), nil
	case float64:
		return Number(x), nil

	case string:
		return ExprFunction(path, x)

	case map[string]any:
		s := make(Struct, len(x))

		for k, e := range x {
			ev, err := fromYAML(path+"."+k, e)
			if err != nil {
				return nil, err
			}

			s[k] = ev
		}

		return s, nil

	case map[any]any:
		s := make(Struct, len(x))

		for k, e := range x {
			key := fmt.Sprint(k)

			ev, err := fromYAML(path+"."+key, e)
			if err != nil {
				return nil, err
			}

			s[key] = ev
		}

		return s, nil

	case []any:
		items := make([]Value, len(x))

		for i, e := range x {
			ev, err := fromYAML(fmt.Sprintf("%s[%d]", path, i), e)
			if err != nil {
				return nil, err
			}

			items[i] = ev
		}

		return NewArray(items...), nil
	}

	return nil, ErrEnvironment.With(
		slog.String("path", path),
		slog.String("type", fmt.Sprintf("%T", v)),
	)
}
