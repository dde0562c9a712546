package idl

import (
	"fmt"

	"golang.org/x/xerrors"
)

type resultTag uint8

const (
	resultUnset resultTag = iota
	resultOk
	resultErr
)

// ErrEmptyResult reports a Result with neither variant populated, which only
// happens for zero values that never went through Ok, Err or decoding.
var ErrEmptyResult = xerrors.New("result has neither ok nor err set")

// Result is the outcome of a fallible remote operation: either an ok payload
// or an application error message. The err branch is an ordinary value, not
// a Go error; transport and decoding failures are reported separately.
type Result[T any] struct {
	tag resultTag
	ok  T
	err string
}

func Ok[T any](v T) Result[T] {
	return Result[T]{tag: resultOk, ok: v}
}

func Err[T any](msg string) Result[T] {
	return Result[T]{tag: resultErr, err: msg}
}

func (r Result[T]) IsOk() bool  { return r.tag == resultOk }
func (r Result[T]) IsErr() bool { return r.tag == resultErr }

func (r Result[T]) Ok() (T, bool) {
	return r.ok, r.tag == resultOk
}

func (r Result[T]) Err() (string, bool) {
	return r.err, r.tag == resultErr
}

// Check verifies that exactly one variant is populated.
func (r Result[T]) Check() error {
	switch r.tag {
	case resultOk, resultErr:
		return nil
	default:
		return ErrEmptyResult
	}
}

func (r Result[T]) String() string {
	switch r.tag {
	case resultOk:
		return fmt.Sprintf("ok(%v)", r.ok)
	case resultErr:
		return fmt.Sprintf("err(%q)", r.err)
	default:
		return "<unset>"
	}
}

// ResultFromValue converts the dynamic form of a `variant { ok; err }` value.
func ResultFromValue[T any](v Value, conv func(Value) (T, error)) (Result[T], error) {
	vr, ok := v.(Variant)
	if !ok {
		return Result[T]{}, mismatch("", "variant", v)
	}
	switch vr.Tag {
	case ResultOkTag:
		t, err := conv(vr.Value)
		if err != nil {
			return Result[T]{}, prefixErr(ResultOkTag, err)
		}
		return Ok(t), nil
	case ResultErrTag:
		msg, ok := vr.Value.(string)
		if !ok {
			return Result[T]{}, mismatch(ResultErrTag, "text", vr.Value)
		}
		return Err[T](msg), nil
	default:
		return Result[T]{}, &DecodeError{Reason: fmt.Sprintf("unknown result tag %q", vr.Tag)}
	}
}

// ResultToValue is the inverse of ResultFromValue.
func ResultToValue[T any](r Result[T], conv func(T) Value) (Value, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	if v, ok := r.Ok(); ok {
		return V(ResultOkTag, conv(v)), nil
	}
	msg, _ := r.Err()
	return V(ResultErrTag, msg), nil
}

// UnitValue is a conversion helper for Result[Unit] payloads.
func UnitValue(Unit) Value { return Unit{} }

// AsUnit is the decoding counterpart of UnitValue.
func AsUnit(v Value) (Unit, error) {
	if _, ok := v.(Unit); !ok {
		return Unit{}, mismatch("", "null", v)
	}
	return Unit{}, nil
}
