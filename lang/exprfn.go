package lang

import (
	"log/slog"

	"github.com/expr-lang/expr"
)

// ExprFunction compiles an expr-lang program into a Function.
//
// The program sees its call arguments as the array args, converted with
// [Native], so "args[0] * 2" doubles its first argument. The program's
// result is converted back with [ToValue].
func ExprFunction(name, source string) (*Function, error) {
	program, err := expr.Compile(
		source,
		expr.Env(map[string]any{"args": []any(nil)}),
	)
	if err != nil {
		return nil, ErrEnvironment.Wrap(err).With(
			slog.String("name", name),
			slog.String("source", source),
		)
	}

	return NewFunction(name, func(args []Value) (Value, error) {
		natives := make([]any, len(args))
		for i, arg := range args {
			natives[i] = Native(arg)
		}

		out, err := expr.Run(program, map[string]any{"args": natives})
		if err != nil {
			return nil, FunctionError(err.Error()).With(slog.String("name", name))
		}

		return ToValue(out)
	}), nil
}
