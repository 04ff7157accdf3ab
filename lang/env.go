package lang

import (
	"context"
	"maps"
	"slices"
	"strings"
)

// DefaultVariable is the struct variable every new [Environment] holds, and
// DefaultAlias is the short name that refers to it.
const (
	DefaultVariable = "variable"
	DefaultAlias    = "v"
)

// Environment holds the names a script can see.
//
// Constants are read-only to scripts. Variables are read-write and keep
// assignments between runs. Aliases map a short name to the canonical name
// of a variable or constant.
type Environment struct {
	Constants Struct
	Variables Struct
	Aliases   map[string]string
}

// NewEnvironment returns an environment holding the [Builtins] constants,
// an empty struct variable named [DefaultVariable], and the alias
// [DefaultAlias] for it.
func NewEnvironment() *Environment {
	return &Environment{
		Constants: Builtins(),
		Variables: Struct{DefaultVariable: Struct{}},
		Aliases:   map[string]string{DefaultAlias: DefaultVariable},
	}
}

// Run evaluates b in the environment.
func (env *Environment) Run(
	ctx context.Context,
	b *Block,
	opts ...Option,
) (Value, error) {
	env.init()

	return Run(ctx, b, env.Constants, env.Variables, env.Aliases, opts...)
}

// Eval compiles source and evaluates it in the environment.
func (env *Environment) Eval(
	ctx context.Context,
	source string,
	opts ...Option,
) (Value, error) {
	b, err := Compile(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	return env.Run(ctx, b, opts...)
}

// Merge copies the constants, variables, and aliases of other into env,
// replacing names env already holds.
func (env *Environment) Merge(other *Environment) {
	if other == nil {
		return
	}

	env.init()

	for k, v := range other.Constants {
		env.Constants[k] = Copy(v)
	}

	for k, v := range other.Variables {
		env.Variables[k] = Copy(v)
	}

	maps.Copy(env.Aliases, other.Aliases)
}

// Names returns the sorted, unique top-level names visible to scripts.
func (env *Environment) Names() []string {
	names := slices.Collect(maps.Keys(env.Constants))
	names = slices.AppendSeq(names, maps.Keys(env.Variables))
	names = slices.AppendSeq(names, maps.Keys(env.Aliases))

	slices.Sort(names)

	return slices.Compact(names)
}

// Lookup resolves a dotted path such as "math.abs" without evaluating
// anything. It reports false when a segment is missing or is not a struct.
func (env *Environment) Lookup(path string) (Value, bool) {
	parts := strings.Split(path, ".")

	root := parts[0]
	if c, ok := env.Aliases[root]; ok {
		root = c
	}

	v, ok := env.Variables[root]
	if !ok {
		if v, ok = env.Constants[root]; !ok {
			return nil, false
		}
	}

	for _, name := range parts[1:] {
		s, ok := v.(Struct)
		if !ok {
			return nil, false
		}

		if v, ok = s[name]; !ok {
			return nil, false
		}
	}

	return normalize(v), true
}

func (env *Environment) init() {
	if env.Constants == nil {
		env.Constants = Struct{}
	}

	if env.Variables == nil {
		env.Variables = Struct{}
	}

	if env.Aliases == nil {
		env.Aliases = map[string]string{}
	}
}
