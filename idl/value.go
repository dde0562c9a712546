package idl

import (
	"sort"
	"strings"
)

// Value is a dynamically typed value flowing through the codec. The
// representation for each kind is:
//
//	null      Unit
//	bool      bool
//	nat       uint64
//	int       int64
//	text      string
//	blob      []byte
//	principal principal.Principal
//	opt T     Option[Value]
//	vec T     []Value
//	record    Record
//	variant   Variant
type Value = any

// Unit is the value of the null type.
type Unit struct{}

// Record holds record fields by name.
type Record map[string]Value

// Variant holds the single populated tag of a variant value.
type Variant struct {
	Tag   string
	Value Value
}

// V builds a variant value; a nil payload means Unit.
func V(tag string, payload Value) Variant {
	if payload == nil {
		payload = Unit{}
	}
	return Variant{Tag: tag, Value: payload}
}

func (r Record) keys() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r Record) String() string {
	return "{" + strings.Join(r.keys(), ", ") + "}"
}

// Values converts a typed slice into the dynamic vec representation.
func Values[T any](in []T, conv func(T) Value) []Value {
	out := make([]Value, len(in))
	for i, v := range in {
		out[i] = conv(v)
	}
	return out
}

// FromValues converts a dynamic vec back into a typed slice. The result is
// never nil, so an empty vec stays distinguishable from an absent one.
func FromValues[T any](v Value, conv func(Value) (T, error)) ([]T, error) {
	vs, ok := v.([]Value)
	if !ok {
		return nil, mismatch("", "vec", v)
	}
	out := make([]T, 0, len(vs))
	for i, e := range vs {
		t, err := conv(e)
		if err != nil {
			return nil, prefixErr(indexPath("", i), err)
		}
		out = append(out, t)
	}
	return out, nil
}
