package idl

import (
	"github.com/canlink-project/canlink/principal"
)

func AsText(v Value) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", mismatch("", "text", v)
	}
	return s, nil
}

func AsNat(v Value) (uint64, error) {
	n, ok := v.(uint64)
	if !ok {
		return 0, mismatch("", "nat", v)
	}
	return n, nil
}

func AsInt(v Value) (int64, error) {
	n, ok := v.(int64)
	if !ok {
		return 0, mismatch("", "int", v)
	}
	return n, nil
}

func AsBool(v Value) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, mismatch("", "bool", v)
	}
	return b, nil
}

func AsBlob(v Value) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, mismatch("", "blob", v)
	}
	return b, nil
}

func AsPrincipal(v Value) (principal.Principal, error) {
	p, ok := v.(principal.Principal)
	if !ok {
		return principal.Principal{}, mismatch("", "principal", v)
	}
	return p, nil
}

func AsRecord(v Value) (Record, error) {
	r, ok := v.(Record)
	if !ok {
		return nil, mismatch("", "record", v)
	}
	return r, nil
}

func AsVariant(v Value) (Variant, error) {
	vr, ok := v.(Variant)
	if !ok {
		return Variant{}, mismatch("", "variant", v)
	}
	return vr, nil
}

// Get reads a field and converts it, tagging errors with the field name.
func Get[T any](r Record, name string, conv func(Value) (T, error)) (T, error) {
	var zero T
	v, ok := r[name]
	if !ok {
		return zero, &DecodeError{Path: name, Reason: "missing field"}
	}
	out, err := conv(v)
	if err != nil {
		return zero, prefixErr(name, err)
	}
	return out, nil
}

func TextValue(s string) Value                   { return s }
func NatValue(n uint64) Value                    { return n }
func IntValue(n int64) Value                     { return n }
func BoolValue(b bool) Value                     { return b }
func BlobValue(b []byte) Value                   { return b }
func PrincipalValue(p principal.Principal) Value { return p }
