package lang

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

// Marshaler is implemented by host types that convert themselves to a
// [Value].
type Marshaler interface {
	MarshalValue() (Value, error)
}

// Unmarshaler is implemented by host types that populate themselves from a
// [Value].
type Unmarshaler interface {
	UnmarshalValue(v Value) error
}

// HostFunc is the Go signature converted to a [*Function] by [ToValue].
type HostFunc = func(args []Value) (Value, error)

// TagName is the struct tag read by [ToValue] and [FromValue].
//
// A tag names the struct key of a field; "-" skips the field. Untagged
// exported fields use the snake_case form of the field name.
const TagName = "molang"

var (
	valueType       = reflect.TypeFor[Value]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
)

// ToValue converts Go data into a [Value].
//
// Values pass through unchanged. [Marshaler] and [Object] implementations,
// and functions with the [HostFunc] signature, convert to their script
// counterparts. Booleans and numbers become Number, string-keyed maps and
// structs become Struct, slices and arrays become arrays, and nil becomes
// Null.
func ToValue(v any) (Value, error) {
	return toValue(reflect.ValueOf(v))
}

func toValue(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null{}, nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Func:
		if rv.IsNil() {
			return Null{}, nil
		}
	}

	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case Value:
			return x, nil
		case Marshaler:
			v, err := x.MarshalValue()

			return normalize(v), err
		case Object:
			return NewExternal(x), nil
		case HostFunc:
			return NewFunction("", x), nil
		}
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return toValue(rv.Elem())

	case reflect.Bool:
		return Bool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return Number(rv.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}

		s := make(Struct, rv.Len())

		for it := rv.MapRange(); it.Next(); {
			e, err := toValue(it.Value())
			if err != nil {
				return nil, err
			}

			s[it.Key().String()] = e
		}

		return s, nil

	case reflect.Struct:
		s := Struct{}

		for name, field := range fields(rv) {
			e, err := toValue(field)
			if err != nil {
				return nil, err
			}

			s[name] = e
		}

		return s, nil

	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())

		for i := range rv.Len() {
			e, err := toValue(rv.Index(i))
			if err != nil {
				return nil, err
			}

			items[i] = e
		}

		return NewArray(items...), nil
	}

	return nil, ErrType.With(
		slog.String("expected", "convertible host value"),
		slog.String("actual", rv.Type().String()),
	)
}

// FromValue stores v into the Go value dst points to, the inverse of
// [ToValue]. A struct missing a key needed by a field of dst is a type
// error; Null leaves pointers, maps, and slices nil.
func FromValue(v Value, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrType.With(
			slog.String("expected", "non-nil pointer"),
			slog.String("actual", fmt.Sprintf("%T", dst)),
		)
	}

	return fromValue(normalize(v), rv.Elem())
}

func fromValue(v Value, rv reflect.Value) error {
	t := rv.Type()

	if reflect.PointerTo(t).Implements(unmarshalerType) && rv.CanAddr() {
		u, _ := rv.Addr().Interface().(Unmarshaler)

		return u.UnmarshalValue(v)
	}

	if t.Kind() != reflect.Interface && reflect.TypeOf(v).AssignableTo(t) {
		rv.Set(reflect.ValueOf(Copy(v)))

		return nil
	}

	if t == valueType {
		rv.Set(reflect.ValueOf(Copy(v)))

		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if IsNull(v) {
			rv.SetZero()

			return nil
		}

		p := reflect.New(t.Elem())
		if err := fromValue(v, p.Elem()); err != nil {
			return err
		}

		rv.Set(p)

		return nil

	case reflect.Interface:
		if t.NumMethod() == 0 {
			if n := Native(v); n != nil {
				rv.Set(reflect.ValueOf(n))
			} else {
				rv.SetZero()
			}

			return nil
		}
	}

	switch x := v.(type) {
	case Number:
		return numberInto(x, rv)

	case Struct:
		switch t.Kind() {
		case reflect.Map:
			if t.Key().Kind() != reflect.String {
				break
			}

			m := reflect.MakeMapWithSize(t, len(x))

			for k, e := range x {
				ev := reflect.New(t.Elem()).Elem()
				if err := fromValue(normalize(e), ev); err != nil {
					return err
				}

				m.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
			}

			rv.Set(m)

			return nil

		case reflect.Struct:
			for name, field := range fields(rv) {
				e, ok := x[name]
				if !ok {
					return ErrType.With(
						slog.String("expected", "struct key "+name),
						slog.String("actual", Describe(x)),
					)
				}

				if err := fromValue(normalize(e), field); err != nil {
					return err
				}
			}

			return nil
		}

	case *External:
		a, ok := x.obj.(*Array)
		if !ok || t.Kind() != reflect.Slice {
			break
		}

		s := reflect.MakeSlice(t, len(a.items), len(a.items))

		for i, e := range a.items {
			if err := fromValue(normalize(e), s.Index(i)); err != nil {
				return err
			}
		}

		rv.Set(s)

		return nil

	case Null:
		switch t.Kind() {
		case reflect.Map, reflect.Slice:
			rv.SetZero()

			return nil
		}
	}

	return ErrType.With(
		slog.String("expected", t.String()),
		slog.String("actual", Describe(v)),
	)
}

func numberInto(n Number, rv reflect.Value) error {
	f := float64(n)

	switch rv.Kind() {
	case reflect.Bool:
		rv.SetBool(n != 0)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if math.IsNaN(f) || math.IsInf(f, 0) || rv.OverflowInt(int64(f)) {
			return overflow(n, rv)
		}

		rv.SetInt(int64(f))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		if math.IsNaN(f) || f < 0 || math.IsInf(f, 0) ||
			rv.OverflowUint(uint64(f)) {
			return overflow(n, rv)
		}

		rv.SetUint(uint64(f))

	case reflect.Float32, reflect.Float64:
		rv.SetFloat(n.Float64())

	default:
		return ErrType.With(
			slog.String("expected", rv.Type().String()),
			slog.String("actual", Describe(n)),
		)
	}

	return nil
}

func overflow(n Number, rv reflect.Value) error {
	return ErrType.With(
		slog.String("expected", rv.Type().String()),
		slog.String("actual", Describe(n)),
		slog.String("message", "out of range"),
	)
}

// fields yields the struct keys and field values of the exported fields of
// the struct rv.
func fields(rv reflect.Value) func(yield func(string, reflect.Value) bool) {
	return func(yield func(string, reflect.Value) bool) {
		t := rv.Type()

		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}

			tag := f.Tag.Get(TagName)
			if tag == "-" {
				continue
			}

			name, _, _ := strings.Cut(tag, ",")
			if name == "" {
				name = strcase.ToSnake(f.Name)
			}

			if !yield(name, rv.Field(i)) {
				return
			}
		}
	}
}
