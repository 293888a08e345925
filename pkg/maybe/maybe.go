// Package maybe holds the result of an optional lookup: a value, a defined
// empty, or a failure that callers may log and otherwise treat as empty.
package maybe

// Value is the outcome of an optional call. The zero Value is empty.
type Value[T any] struct {
	val T
	ok  bool
	err error
}

// Some wraps a present value.
func Some[T any](v T) Value[T] {
	return Value[T]{val: v, ok: true}
}

// None is the defined empty value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Fail records why a value is absent.
func Fail[T any](err error) Value[T] {
	return Value[T]{err: err}
}

// From converts a (value, error) pair. A non-nil err yields Fail; otherwise
// the value is present.
func From[T any](v T, err error) Value[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Some(v)
}

// Get returns the value and whether it is present.
func (m Value[T]) Get() (T, bool) {
	return m.val, m.ok
}

// OK reports whether a value is present.
func (m Value[T]) OK() bool {
	return m.ok
}

// Err returns the failure, if any. An empty Value has a nil Err.
func (m Value[T]) Err() error {
	return m.err
}

// OrElse returns the value, or def when absent.
func (m Value[T]) OrElse(def T) T {
	if m.ok {
		return m.val
	}
	return def
}

// Map applies fn to a present value. Empty and failed values pass through.
func Map[T, U any](m Value[T], fn func(T) U) Value[U] {
	if !m.ok {
		return Value[U]{err: m.err}
	}
	return Some(fn(m.val))
}
