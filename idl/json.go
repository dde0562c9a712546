package idl

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/principal"
)

// FromJSON converts user-supplied JSON into a value of type t. Optionals are
// written as `[]` or `[x]` (a bare value or null is accepted too, and `[]`
// always means absent even under opt vec), variants
// as a single-key object, blobs as base64 and principals in text form.
// A bare array under opt vec is only read as the vector itself when the
// vector's elements are not arrays; otherwise only `[x]` is accepted.
func FromJSON(t Type, raw json.RawMessage) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, xerrors.Errorf("parsing json: %w", err)
	}
	return fromJSON("", t, generic)
}

// ArgsFromJSON parses a JSON array into a positional argument list.
func ArgsFromJSON(types []Type, raw json.RawMessage) ([]Value, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("[]")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, xerrors.Errorf("arguments must be a json array: %w", err)
	}
	if len(items) != len(types) {
		return nil, xerrors.Errorf("expected %d arguments, got %d", len(types), len(items))
	}
	out := make([]Value, len(types))
	for i := range types {
		v, err := FromJSON(types[i], items[i])
		if err != nil {
			return nil, prefixErr(argPath(i), err)
		}
		out[i] = v
	}
	return out, nil
}

func fromJSON(path string, t Type, j any) (Value, error) {
	bad := func() error {
		return &DecodeError{Path: path, Reason: fmt.Sprintf("json %T does not fit %s", j, t.Kind)}
	}

	switch t.Kind {
	case KindNull:
		if j != nil {
			return nil, bad()
		}
		return Unit{}, nil
	case KindBool:
		b, ok := j.(bool)
		if !ok {
			return nil, bad()
		}
		return b, nil
	case KindNat:
		n, ok := jsonNumber(j)
		if !ok {
			return nil, bad()
		}
		u, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return nil, &DecodeError{Path: path, Reason: "invalid nat", Err: err}
		}
		return u, nil
	case KindInt:
		n, ok := jsonNumber(j)
		if !ok {
			return nil, bad()
		}
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil, &DecodeError{Path: path, Reason: "invalid int", Err: err}
		}
		return i, nil
	case KindText:
		s, ok := j.(string)
		if !ok {
			return nil, bad()
		}
		return s, nil
	case KindBlob:
		s, ok := j.(string)
		if !ok {
			return nil, bad()
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, &DecodeError{Path: path, Reason: "invalid base64", Err: err}
		}
		return b, nil
	case KindPrincipal:
		s, ok := j.(string)
		if !ok {
			return nil, bad()
		}
		p, err := principal.Decode(s)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return p, nil
	case KindOpt:
		switch jv := j.(type) {
		case nil:
			return None[Value](), nil
		case []any:
			if len(jv) == 0 {
				return None[Value](), nil
			}
			_, nested := jv[0].([]any)
			if !bareVecAllowed(*t.Elem) || (len(jv) == 1 && nested) {
				if len(jv) > 1 {
					return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("optional must hold zero or one element, got %d", len(jv))}
				}
				inner, err := fromJSON(indexPath(path, 0), *t.Elem, jv[0])
				if err != nil {
					return nil, err
				}
				return Some(inner), nil
			}
			// bare array under opt vec: the present vector itself
		}
		inner, err := fromJSON(indexPath(path, 0), *t.Elem, j)
		if err != nil {
			return nil, err
		}
		return Some(inner), nil
	case KindVec:
		arr, ok := j.([]any)
		if !ok {
			return nil, bad()
		}
		out := make([]Value, len(arr))
		for i, e := range arr {
			v, err := fromJSON(indexPath(path, i), *t.Elem, e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindRecord:
		obj, ok := j.(map[string]any)
		if !ok {
			return nil, bad()
		}
		out := make(Record, len(t.Fields))
		for _, f := range t.Fields {
			fj, present := obj[f.Name]
			if !present {
				if f.Type.Kind == KindOpt {
					out[f.Name] = None[Value]()
					continue
				}
				return nil, &DecodeError{Path: joinPath(path, f.Name), Reason: "missing field"}
			}
			v, err := fromJSON(joinPath(path, f.Name), f.Type, fj)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		for k := range obj {
			if _, declared := t.Field(k); !declared {
				return nil, &DecodeError{Path: joinPath(path, k), Reason: "undeclared field"}
			}
		}
		return out, nil
	case KindVariant:
		var tag string
		var payload any
		switch jv := j.(type) {
		case string:
			// bare tag for payload-less variants
			tag = jv
		case map[string]any:
			if len(jv) != 1 {
				return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("variant must carry exactly one tag, got %d", len(jv))}
			}
			for k, v := range jv {
				tag, payload = k, v
			}
		default:
			return nil, bad()
		}
		f, declared := t.Field(tag)
		if !declared {
			return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("unknown variant tag %q", tag)}
		}
		v, err := fromJSON(joinPath(path, tag), f.Type, payload)
		if err != nil {
			return nil, err
		}
		return Variant{Tag: tag, Value: v}, nil
	default:
		return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("invalid type kind %s", t.Kind)}
	}
}

func jsonNumber(j any) (string, bool) {
	switch n := j.(type) {
	case json.Number:
		return n.String(), true
	case string:
		// large nats are commonly quoted
		return n, true
	default:
		return "", false
	}
}

// ToJSON renders v (of type t) in the form accepted by FromJSON. Optionals
// are always rendered as `[]` or `[x]`.
func ToJSON(t Type, v Value) (json.RawMessage, error) {
	if err := Validate(t, v); err != nil {
		return nil, err
	}
	return json.Marshal(toJSON(t, v))
}

func toJSON(t Type, v Value) any {
	switch t.Kind {
	case KindNull:
		return nil
	case KindNat:
		// keep precision for consumers that parse numbers as float64
		u := v.(uint64)
		if u > 1<<53 {
			return strconv.FormatUint(u, 10)
		}
		return u
	case KindBool, KindInt, KindText, KindBlob:
		return v
	case KindPrincipal:
		return v.(principal.Principal).String()
	case KindOpt:
		inner, some := v.(Option[Value]).Get()
		if !some {
			return []any{}
		}
		return []any{toJSON(*t.Elem, inner)}
	case KindVec:
		vs := v.([]Value)
		out := make([]any, len(vs))
		for i, e := range vs {
			out[i] = toJSON(*t.Elem, e)
		}
		return out
	case KindRecord:
		r := v.(Record)
		out := make(map[string]any, len(t.Fields))
		for _, f := range t.Fields {
			fv, ok := r[f.Name]
			if !ok {
				fv = None[Value]()
			}
			out[f.Name] = toJSON(f.Type, fv)
		}
		return out
	case KindVariant:
		vr := v.(Variant)
		f, _ := t.Field(vr.Tag)
		return map[string]any{vr.Tag: toJSON(f.Type, vr.Value)}
	default:
		return nil
	}
}

// SortedTags lists the tags of a variant type alphabetically, for help
// output.
func SortedTags(t Type) []string {
	out := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		out = append(out, f.Name)
	}
	sort.Strings(out)
	return out
}

// bareVecAllowed reports whether a bare JSON array can stand for a present
// value of t without being confused with the `[x]` wrapper.
func bareVecAllowed(t Type) bool {
	if t.Kind != KindVec {
		return false
	}
	switch t.Elem.Kind {
	case KindVec, KindOpt:
		return false
	}
	return true
}
