package lang

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Object is the capability interface of a host-owned object exposed to
// scripts through an [*External] handle.
type Object interface {
	// Get returns the named property, or Null if there is none.
	Get(property string) Value
	// Set assigns the named property. Read-only properties report
	// [NotAssignable].
	Set(property string, value Value) error
	// Call invokes the named method. Unknown names report
	// [FunctionNotFound].
	Call(name string, args []Value) (Value, error)
	IndexGet(index Value) (Value, error)
	IndexSet(index, value Value) error
}

// Equaler is implemented by objects that define their own equality.
// Objects that do not implement it compare by identity.
type Equaler interface {
	Equal(other Value) bool
}

// External is a shared handle to a host-owned [Object].
type External struct {
	obj Object
}

// NewExternal returns a handle to obj. Every handle to the same object
// observes the same state.
func NewExternal(obj Object) *External {
	return &External{obj: obj}
}

func (*External) Type() Type { return TypeExternal }
func (*External) value()     {}

func (e *External) String() string {
	if s, ok := e.obj.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("<external %T>", e.obj)
}

// Object returns the underlying host object.
func (e *External) Object() Object { return e.obj }

func (e *External) equal(other Value) bool {
	if eq, ok := e.obj.(Equaler); ok {
		return eq.Equal(other)
	}

	o, ok := other.(*External)
	if !ok {
		return false
	}

	return e == o || sameObject(e.obj, o.obj)
}

func sameObject(a, b Object) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}

	return a == b
}

// BaseObject implements [Object] with no properties, methods, or indices.
// Embed it to implement only the capabilities an object needs.
type BaseObject struct{}

func (BaseObject) Get(string) Value { return Null{} }

func (BaseObject) Set(property string, _ Value) error {
	return NotAssignable(property)
}

func (BaseObject) Call(name string, _ []Value) (Value, error) {
	return nil, FunctionNotFound(name)
}

func (BaseObject) IndexGet(index Value) (Value, error) {
	return nil, ErrBadAccess.With(
		slog.String("operator", "[]"),
		slog.String("index", Describe(index)),
	)
}

func (BaseObject) IndexSet(index, _ Value) error {
	return ErrBadAccess.With(
		slog.String("operator", "[]"),
		slog.String("index", Describe(index)),
	)
}
