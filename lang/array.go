package lang

import (
	"log/slog"
	"math"
	"strings"
)

// Array is a growable list of values exposed to scripts as an External.
//
// Scripts read its length property, call push to append, and index it with
// numbers. Indices are truncated toward zero; reading outside the array
// yields Null, and writing at the length appends.
type Array struct {
	BaseObject

	items []Value
}

// NewArray returns a handle to an array holding copies of items.
func NewArray(items ...Value) *External {
	a := &Array{items: make([]Value, 0, len(items))}
	for _, v := range items {
		a.items = append(a.items, Copy(v))
	}

	return NewExternal(a)
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// Items returns copies of the elements.
func (a *Array) Items() []Value {
	out := make([]Value, len(a.items))
	for i, v := range a.items {
		out[i] = Copy(v)
	}

	return out
}

func (a *Array) Get(property string) Value {
	if property == "length" {
		return Number(len(a.items))
	}

	return Null{}
}

func (a *Array) Set(property string, _ Value) error {
	return NotAssignable("array." + property)
}

func (a *Array) Call(name string, args []Value) (Value, error) {
	switch name {
	case "push":
		for _, v := range args {
			a.items = append(a.items, Copy(v))
		}

		return Null{}, nil
	}

	return nil, FunctionNotFound(name)
}

func (a *Array) IndexGet(index Value) (Value, error) {
	i, err := arrayIndex(index)
	if err != nil {
		return nil, err
	}

	if i < 0 || i >= len(a.items) {
		return Null{}, nil
	}

	return Copy(a.items[i]), nil
}

func (a *Array) IndexSet(index, value Value) error {
	i, err := arrayIndex(index)
	if err != nil {
		return err
	}

	switch {
	case i >= 0 && i < len(a.items):
		a.items[i] = Copy(value)
	case i == len(a.items):
		a.items = append(a.items, Copy(value))
	default:
		return ErrBadAccess.With(
			slog.String("operator", "[]"),
			slog.Int("index", i),
			slog.Int("length", len(a.items)),
		)
	}

	return nil
}

// Native returns the elements as plain Go data. An array nested inside
// itself becomes the string "array(...)" at the repeat.
func (a *Array) Native() any { return a.native(nil) }

func (a *Array) String() string { return a.format(nil) }

// visiting holds the arrays on the current path through a value, so that
// printing and conversion stop at an array that contains itself.
type visiting map[*Array]bool

const recursiveArray = "array(...)"

func (a *Array) enter(seen visiting) (visiting, bool) {
	if seen[a] {
		return seen, false
	}

	if seen == nil {
		seen = visiting{}
	}

	seen[a] = true

	return seen, true
}

func (a *Array) native(seen visiting) any {
	seen, ok := a.enter(seen)
	if !ok {
		return recursiveArray
	}
	defer delete(seen, a)

	out := make([]any, len(a.items))
	for i, v := range a.items {
		out[i] = native(v, seen)
	}

	return out
}

func (a *Array) format(seen visiting) string {
	seen, ok := a.enter(seen)
	if !ok {
		return recursiveArray
	}
	defer delete(seen, a)

	s := make([]string, len(a.items))
	for i, v := range a.items {
		s[i] = format(v, seen)
	}

	return "array(" + strings.Join(s, ", ") + ")"
}

func arrayIndex(index Value) (int, error) {
	n, ok := index.(Number)
	if !ok {
		return 0, BadAccess("[]", index)
	}

	f := math.Trunc(float64(n))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return -1, nil
	}

	return int(f), nil
}
