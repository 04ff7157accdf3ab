package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// ErrorKind classifies an [Error] so that callers can branch on the failure
// without inspecting its message.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	// Compile errors.
	KindTokensBeforePrefixOperator
	KindIncompleteExpression
	KindTokenise

	// Runtime errors.
	KindFunctionNotFound
	KindFunction
	KindVariableNotFound
	KindSyntax
	KindNotAssignable
	KindType
	KindBadAccess

	// Host-side errors.
	KindReadInput
	KindEnvironment
)

// Predefined errors (sentinel values).
//
// Every error returned by this package is an [*Error] derived from one of
// these with additional attributes, so [errors.Is] matches by kind:
//
//	if errors.Is(err, lang.ErrVariableNotFound) { ... }
var (
	ErrTokensBeforePrefixOperator = newError(
		KindTokensBeforePrefixOperator, "tokens before prefix operator",
	)
	ErrIncompleteExpression = newError(
		KindIncompleteExpression, "incomplete expression",
	)
	ErrTokenise         = newError(KindTokenise, "unexpected character")
	ErrFunctionNotFound = newError(KindFunctionNotFound, "function not found")
	ErrFunction         = newError(KindFunction, "function error")
	ErrVariableNotFound = newError(KindVariableNotFound, "variable not found")
	ErrSyntax           = newError(KindSyntax, "syntax error")
	ErrNotAssignable    = newError(KindNotAssignable, "not assignable")
	ErrType             = newError(KindType, "type error")
	ErrBadAccess        = newError(KindBadAccess, "bad access")
	ErrReadInput        = newError(KindReadInput, "failed to read input")
	ErrEnvironment      = newError(KindEnvironment, "invalid environment")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	kind  ErrorKind
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// NewError creates a new Error with a message and no kind.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
// An error that already is (or wraps) an [*Error] is returned as is.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The message has the form "<msg> (<key>=<value>, ...): <err>", where the
// attribute list and wrapped error are omitted when absent.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.msg)

	if len(e.attrs) > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteByte('(')

		for i, a := range e.attrs {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(a.Key)
			b.WriteByte('=')
			b.WriteString(a.Value.String())
		}

		b.WriteByte(')')
	}

	if e.err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}

		b.WriteString(e.err.Error())
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an [*Error] of the same kind.
// Errors without a kind match on message instead.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if e.kind == KindUnknown || t.kind == KindUnknown {
		return e.kind == t.kind && e.msg == t.msg
	}

	return e.kind == t.kind
}

// Kind returns the error classification.
func (e *Error) Kind() ErrorKind { return e.kind }

// Attr returns the string form of the first attribute with the given key.
func (e *Error) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value.String(), true
		}
	}

	return "", false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// FunctionNotFound returns the error an [Object] reports for an unknown
// method name.
func FunctionNotFound(name string) *Error {
	return ErrFunctionNotFound.With(slog.String("name", name))
}

// FunctionError returns the error a host function reports for a failure
// described by message.
func FunctionError(message string) *Error {
	return ErrFunction.With(slog.String("message", message))
}

// NotAssignable returns the error reported when writing to description.
func NotAssignable(description string) *Error {
	return ErrNotAssignable.With(slog.String("description", description))
}

// TypeError returns the error reported when a value of the expected type was
// required but actual was found.
func TypeError(expected string, actual Value) *Error {
	return ErrType.With(
		slog.String("expected", expected),
		slog.String("actual", Describe(actual)),
	)
}

// BadAccess returns the error reported when operator (".", "[]", or "()") is
// applied to a value that does not support it.
func BadAccess(operator string, actual Value) *Error {
	return ErrBadAccess.With(
		slog.String("operator", operator),
		slog.String("actual", Describe(actual)),
	)
}

func variableNotFound(name string) *Error {
	return ErrVariableNotFound.With(slog.String("name", name))
}

func syntaxError(message string) *Error {
	return ErrSyntax.With(slog.String("message", message))
}

func expectation(found, expected string, offset int) *Error {
	return ErrTokenise.With(
		slog.String("found", found),
		slog.String("expected", expected),
		slog.Int("offset", offset),
	)
}

// hostError converts an error returned by host code into an [*Error].
// Errors already produced by this package pass through unchanged.
func hostError(err error, base *Error, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}

	ee := &Error{}
	if errors.As(err, &ee) {
		return err
	}

	return base.With(attrs...).Wrap(err)
}
