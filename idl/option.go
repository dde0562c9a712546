package idl

import (
	"encoding/json"
	"fmt"

	"golang.org/x/xerrors"
)

// Option is an optional value. On the wire it is a sequence of length zero
// (absent) or one (present); that encoding never leaves this package.
type Option[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Option[T] {
	return Option[T]{v: v, ok: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) Get() (T, bool) {
	return o.v, o.ok
}

func (o Option[T]) IsSome() bool {
	return o.ok
}

func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// Slice returns the zero/one element sequence form.
func (o Option[T]) Slice() []T {
	if !o.ok {
		return []T{}
	}
	return []T{o.v}
}

// OptionFromSlice is the inverse of Slice; any length other than 0 or 1 is
// a schema violation.
func OptionFromSlice[T any](s []T) (Option[T], error) {
	switch len(s) {
	case 0:
		return None[T](), nil
	case 1:
		return Some(s[0]), nil
	default:
		return None[T](), xerrors.Errorf("optional must hold zero or one element, got %d", len(s))
	}
}

// MapOption converts the payload of a present option.
func MapOption[T, U any](o Option[T], f func(T) (U, error)) (Option[U], error) {
	v, ok := o.Get()
	if !ok {
		return None[U](), nil
	}
	u, err := f(v)
	if err != nil {
		return None[U](), err
	}
	return Some(u), nil
}

// OptionOf wraps a typed option into the dynamic representation.
func OptionOf[T any](o Option[T], conv func(T) Value) Option[Value] {
	v, ok := o.Get()
	if !ok {
		return None[Value]()
	}
	return Some(conv(v))
}

// OptionFromValue unwraps the dynamic representation of an opt value.
func OptionFromValue[T any](v Value, conv func(Value) (T, error)) (Option[T], error) {
	o, ok := v.(Option[Value])
	if !ok {
		return None[T](), mismatch("", "opt", v)
	}
	return MapOption(o, conv)
}

func (o Option[T]) String() string {
	if !o.ok {
		return "none"
	}
	return fmt.Sprintf("some(%v)", o.v)
}

// MarshalJSON renders an absent option as null.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

func (o *Option[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
