package lang

import (
	"log/slog"
	"math"
)

// Builtins returns a fresh copy of the constants every [Environment] starts
// with: the math struct and the array constructor.
func Builtins() Struct {
	return Struct{
		"math": mathStruct(),
		"array": NewFunction("array", func(args []Value) (Value, error) {
			return NewArray(args...), nil
		}),
	}
}

func mathStruct() Struct {
	return Struct{
		"pi":    Number(math.Pi),
		"abs":   unaryMath("abs", math.Abs),
		"ceil":  unaryMath("ceil", math.Ceil),
		"floor": unaryMath("floor", math.Floor),
		"round": unaryMath("round", math.Round),
		"trunc": unaryMath("trunc", math.Trunc),
		"sqrt":  unaryMath("sqrt", math.Sqrt),
		"sin": unaryMath("sin", func(deg float64) float64 {
			return math.Sin(deg * math.Pi / 180)
		}),
		"cos": unaryMath("cos", func(deg float64) float64 {
			return math.Cos(deg * math.Pi / 180)
		}),
		"pow": mathFunc("pow", 2, func(x []float64) float64 {
			return math.Pow(x[0], x[1])
		}),
		"clamp": mathFunc("clamp", 3, func(x []float64) float64 {
			return math.Min(math.Max(x[0], x[1]), x[2])
		}),
		"lerp": mathFunc("lerp", 3, func(x []float64) float64 {
			return x[0] + (x[1]-x[0])*x[2]
		}),
		"min": variadicMath("min", math.Min),
		"max": variadicMath("max", math.Max),
	}
}

func unaryMath(name string, fn func(float64) float64) *Function {
	return mathFunc(name, 1, func(x []float64) float64 { return fn(x[0]) })
}

func variadicMath(name string, fn func(a, b float64) float64) *Function {
	return mathFunc(name, -1, func(x []float64) float64 {
		acc := x[0]
		for _, v := range x[1:] {
			acc = fn(acc, v)
		}

		return acc
	})
}

// mathFunc adapts fn to a Function taking arity Number arguments, or at
// least one when arity is negative.
func mathFunc(name string, arity int, fn func([]float64) float64) *Function {
	return NewFunction("math."+name, func(args []Value) (Value, error) {
		if (arity >= 0 && len(args) != arity) || (arity < 0 && len(args) == 0) {
			return nil, FunctionError("wrong number of arguments").With(
				slog.String("name", "math."+name),
				slog.Int("count", len(args)),
			)
		}

		x := make([]float64, len(args))

		for i, arg := range args {
			n, ok := arg.(Number)
			if !ok {
				return nil, TypeError(TypeNumber.String(), arg)
			}

			x[i] = float64(n)
		}

		return Number(fn(x)), nil
	})
}
