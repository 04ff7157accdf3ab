package lang

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// point is an object with structural equality.
type point struct {
	BaseObject

	x, y int
}

func (p *point) Equal(other Value) bool {
	o, ok := other.(*External)
	if !ok {
		return false
	}

	q, ok := o.Object().(*point)

	return ok && p.x == q.x && p.y == q.y
}

func TestEqual(t *testing.T) {
	fn := NewFunction("f", nil)
	arr := NewArray(Number(1))

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers", Number(1), Number(1), true},
		{"different numbers", Number(1), Number(2), false},
		{"NaN", Number(float32(math.NaN())), Number(float32(math.NaN())), false},
		{"null", Null{}, nil, true},
		{"null and zero", Null{}, Number(0), false},
		{"structs", Struct{"a": Struct{"b": Number(1)}}, Struct{"a": Struct{"b": Number(1)}}, true},
		{"struct keys", Struct{"a": Number(1)}, Struct{"b": Number(1)}, false},
		{"struct sizes", Struct{"a": Number(1)}, Struct{}, false},
		{"same function", fn, fn, true},
		{"different functions", fn, NewFunction("f", nil), false},
		{"same handle", arr, arr, true},
		{"same object", arr, NewExternal(arr.Object()), true},
		{"different arrays", arr, NewArray(Number(1)), false},
		{"structural", NewExternal(&point{x: 1, y: 2}), NewExternal(&point{x: 1, y: 2}), true},
		{"structural differs", NewExternal(&point{x: 1}), NewExternal(&point{x: 2}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCopy_DeepCopiesStructs(t *testing.T) {
	arr := NewArray()
	orig := Struct{"inner": Struct{"n": Number(1)}, "arr": arr}

	c, ok := Copy(orig).(Struct)
	if !ok {
		t.Fatalf("expected Struct, got %T", Copy(orig))
	}

	c["inner"].(Struct)["n"] = Number(2)

	if orig["inner"].(Struct)["n"] != Number(1) {
		t.Error("expected nested struct to be copied")
	}

	if c["arr"] != arr {
		t.Error("expected externals to be shared")
	}

	if !IsNull(Copy(nil)) {
		t.Error("expected nil to copy as Null")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(3), "Number(3)"},
		{Number(0.5), "Number(0.5)"},
		{Null{}, "Null"},
		{nil, "Null"},
		{Struct{"b": Number(2), "a": Number(1)}, "Struct{a: 1, b: 2}"},
		{Struct{}, "Struct{}"},
		{NewFunction("f", nil), "Function(<function f>)"},
		{NewArray(Number(1), Number(2)), "External(array(1, 2))"},
	}

	for _, tt := range tests {
		if got := Describe(tt.v); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestNative(t *testing.T) {
	v := Struct{
		"n":   Number(1.5),
		"s":   Struct{"z": Null{}},
		"arr": NewArray(Number(1), Number(2)),
	}

	want := map[string]any{
		"n":   1.5,
		"s":   map[string]any{"z": nil},
		"arr": []any{1.0, 2.0},
	}

	if got := Native(v); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if got := Native(Number(0.1)); got != 0.1 {
		t.Errorf("expected shortest float64 0.1, got %v", got)
	}
}

func TestFunction_CallNormalizesNil(t *testing.T) {
	fn := NewFunction("nil", func([]Value) (Value, error) { return nil, nil })

	v, err := fn.Call(nil)
	if err != nil {
		t.Fatal(err)
	}

	if !IsNull(v) {
		t.Errorf("expected Null, got %v", v)
	}
}

func TestArray_Indexing(t *testing.T) {
	a := &Array{}
	h := NewExternal(a)

	if _, err := a.Call("push", []Value{Number(1), Struct{"k": Number(2)}}); err != nil {
		t.Fatal(err)
	}

	if a.Len() != 2 || h.String() != "array(1, {k: 2})" {
		t.Fatalf("unexpected array %s", h)
	}

	tests := []struct {
		index Value
		want  Value
	}{
		{Number(0), Number(1)},
		{Number(0.9), Number(1)},
		{Number(-0.5), Number(1)},
		{Number(-1), Null{}},
		{Number(2), Null{}},
		{Number(float32(math.NaN())), Null{}},
	}

	for _, tt := range tests {
		got, err := a.IndexGet(tt.index)
		if err != nil {
			t.Fatalf("index %v: %v", tt.index, err)
		}

		if !Equal(got, tt.want) {
			t.Errorf("index %v: expected %s, got %s", tt.index, Describe(tt.want), Describe(got))
		}
	}

	if _, err := a.IndexGet(Null{}); !errors.Is(err, ErrBadAccess) {
		t.Errorf("expected ErrBadAccess, got %v", err)
	}

	item, _ := a.IndexGet(Number(1))
	item.(Struct)["k"] = Number(5)

	if again, _ := a.IndexGet(Number(1)); again.(Struct)["k"] != Number(2) {
		t.Error("expected IndexGet to return a copy")
	}

	if err := a.IndexSet(Number(2), Number(3)); err != nil || a.Len() != 3 {
		t.Errorf("expected append at length, got len %d err %v", a.Len(), err)
	}

	if err := a.IndexSet(Number(5), Number(3)); !errors.Is(err, ErrBadAccess) {
		t.Errorf("expected ErrBadAccess, got %v", err)
	}

	if _, err := a.Call("pop", nil); !errors.Is(err, ErrFunctionNotFound) {
		t.Errorf("expected ErrFunctionNotFound, got %v", err)
	}
}

func TestError_Format(t *testing.T) {
	err := variableNotFound("x")

	if got := err.Error(); got != "variable not found (name=x)" {
		t.Errorf("unexpected message %q", got)
	}

	if !errors.Is(err, ErrVariableNotFound) || errors.Is(err, ErrNotAssignable) {
		t.Error("expected errors.Is to match by kind")
	}

	if err.Kind() != KindVariableNotFound {
		t.Errorf("unexpected kind %v", err.Kind())
	}

	wrapped := hostError(errors.New("boom"), ErrFunction)
	if got := wrapped.Error(); got != "function error: boom" {
		t.Errorf("unexpected message %q", got)
	}

	if hostError(err, ErrFunction) != error(err) {
		t.Error("expected package errors to pass through")
	}

	if hostError(nil, ErrFunction) != nil {
		t.Error("expected nil")
	}
}

func TestArray_ContainsItself(t *testing.T) {
	h := NewArray(Number(1))
	a := h.Object().(*Array)

	if _, err := a.Call("push", []Value{h, Struct{"self": h}}); err != nil {
		t.Fatal(err)
	}

	want := "array(1, array(...), {self: array(...)})"
	if got := h.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got := Describe(Struct{"a": h}); got != "Struct{a: "+want+"}" {
		t.Errorf("unexpected description %q", got)
	}

	got, ok := Native(h).([]any)
	if !ok || len(got) != 3 || got[0] != float64(1) || got[1] != "array(...)" {
		t.Fatalf("unexpected native form %#v", Native(h))
	}

	if inner := got[2].(map[string]any)["self"]; inner != "array(...)" {
		t.Errorf("unexpected nested native form %#v", inner)
	}

	// The same array twice side by side is not a cycle.
	pair := NewArray(NewArray(Number(2)))
	p := pair.Object().(*Array)
	p.items = append(p.items, p.items[0])

	if got := pair.String(); got != "array(array(2), array(2))" {
		t.Errorf("expected shared element printed twice, got %q", got)
	}
}
