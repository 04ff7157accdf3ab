package lang

//go:generate go tool stringer --linecomment --type Type,Operator --output kind_string.go

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Type identifies the dynamic type of a [Value].
type Type int

const (
	TypeNull     Type = iota // Null
	TypeNumber               // Number
	TypeStruct               // Struct
	TypeFunction             // Function
	TypeExternal             // External
)

// Value is a runtime value: [Number], [Struct], [*Function], [*External], or
// [Null].
//
// Struct values are owned: reading one out of the environment yields a copy.
// Function and External values are shared handles, so mutation through one
// handle is visible through every other handle to the same object.
type Value interface {
	Type() Type
	String() string

	value()
}

// Number is the only scalar type. Zero is false; every other number,
// including NaN, is true.
type Number float32

// Bool returns 1 for true and 0 for false.
func Bool(b bool) Number {
	if b {
		return 1
	}

	return 0
}

func (Number) Type() Type { return TypeNumber }
func (Number) value()     {}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 32)
}

// Float64 returns the shortest float64 that prints the same as n.
func (n Number) Float64() float64 {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return float64(n)
	}

	return f
}

// Struct is a string-keyed mapping of values.
type Struct map[string]Value

func (Struct) Type() Type { return TypeStruct }
func (Struct) value()     {}

func (s Struct) String() string { return s.format(nil) }

func (s Struct) format(seen visiting) string {
	var b strings.Builder

	b.WriteByte('{')

	for i, key := range slices.Sorted(maps.Keys(s)) {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(format(s[key], seen))
	}

	b.WriteByte('}')

	return b.String()
}

// Clone returns a deep copy of s. Nested structs are copied; functions and
// externals are shared.
func (s Struct) Clone() Struct {
	if s == nil {
		return nil
	}

	c := make(Struct, len(s))
	for k, v := range s {
		c[k] = Copy(v)
	}

	return c
}

// Null is the absence of a value.
type Null struct{}

func (Null) Type() Type     { return TypeNull }
func (Null) String() string { return "null" }
func (Null) value()         {}

// Function is a host-supplied callable.
// Two Function values are equal only if they are the same handle.
type Function struct {
	fn   func(args []Value) (Value, error)
	name string
}

// NewFunction returns a callable named name for diagnostics.
func NewFunction(name string, fn func(args []Value) (Value, error)) *Function {
	return &Function{name: name, fn: fn}
}

func (*Function) Type() Type { return TypeFunction }
func (*Function) value()     {}

func (f *Function) String() string {
	if f.name == "" {
		return "<function>"
	}

	return "<function " + f.name + ">"
}

// Name returns the diagnostic name given to [NewFunction].
func (f *Function) Name() string { return f.name }

// Call invokes the function. A nil result is reported as [Null].
func (f *Function) Call(args []Value) (Value, error) {
	if f.fn == nil {
		return Null{}, nil
	}

	v, err := f.fn(args)
	if err != nil {
		return nil, err
	}

	return normalize(v), nil
}

// Equal reports whether a and b are equal.
//
// Numbers compare as floats (so NaN is never equal to itself), structs
// compare key by key, functions by identity, and externals by the object's
// own [Equaler] rule, falling back to identity.
func Equal(a, b Value) bool {
	a, b = normalize(a), normalize(b)

	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)

		return ok && x == y

	case Struct:
		y, ok := b.(Struct)
		if !ok || len(x) != len(y) {
			return false
		}

		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}

		return true

	case *Function:
		y, ok := b.(*Function)

		return ok && x == y

	case *External:
		return x.equal(b)

	case Null:
		_, ok := b.(Null)

		return ok
	}

	return false
}

// Copy returns a value that shares no struct storage with v.
func Copy(v Value) Value {
	switch x := normalize(v).(type) {
	case Struct:
		return x.Clone()
	default:
		return x
	}
}

// IsNull reports whether v is [Null] or a nil interface.
func IsNull(v Value) bool {
	_, ok := normalize(v).(Null)

	return ok
}

// Describe returns the debug form of v used in error messages and session
// output, e.g. "Number(3)" or "Struct{x: 1}".
func Describe(v Value) string {
	v = normalize(v)

	switch x := v.(type) {
	case Null:
		return "Null"
	case Struct:
		return "Struct" + x.String()
	default:
		return fmt.Sprintf("%s(%s)", v.Type(), v)
	}
}

// Native converts v into plain Go data: float64, map[string]any, nil, or
// []any for arrays. Functions and other externals become their string form.
func Native(v Value) any { return native(v, nil) }

func native(v Value, seen visiting) any {
	switch x := normalize(v).(type) {
	case Number:
		return x.Float64()

	case Struct:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = native(e, seen)
		}

		return m

	case *External:
		if a, ok := x.obj.(*Array); ok {
			return a.native(seen)
		}

		if n, ok := x.obj.(interface{ Native() any }); ok {
			return n.Native()
		}

		return x.String()

	case *Function:
		return x.String()
	}

	return nil
}

// format is String with the arrays already being printed in seen.
func format(v Value, seen visiting) string {
	switch x := normalize(v).(type) {
	case Struct:
		return x.format(seen)
	case *External:
		if a, ok := x.obj.(*Array); ok {
			return a.format(seen)
		}

		return x.String()
	default:
		return x.String()
	}
}

func normalize(v Value) Value {
	if v == nil {
		return Null{}
	}

	return v
}
