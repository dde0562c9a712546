package idl

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/canlink-project/canlink/principal"
)

// Validate checks v against t and reports every violation found.
func Validate(t Type, v Value) error {
	return validate("", t, v)
}

// ValidateArgs checks a positional argument list.
func ValidateArgs(types []Type, args []Value) error {
	if len(types) != len(args) {
		return &FieldError{Reason: fmt.Sprintf("expected %d arguments, got %d", len(types), len(args))}
	}
	var merr error
	for i := range types {
		merr = multierr.Append(merr, validate(argPath(i), types[i], args[i]))
	}
	return merr
}

func argPath(i int) string {
	return indexPath("arg", i)
}

func wrongType(path string, t Type, v Value) error {
	return &FieldError{Path: path, Reason: fmt.Sprintf("expected %s, got %T", t.Kind, v)}
}

func validate(path string, t Type, v Value) error {
	switch t.Kind {
	case KindNull:
		if _, ok := v.(Unit); !ok {
			return wrongType(path, t, v)
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return wrongType(path, t, v)
		}
	case KindNat:
		if _, ok := v.(uint64); !ok {
			return wrongType(path, t, v)
		}
	case KindInt:
		if _, ok := v.(int64); !ok {
			return wrongType(path, t, v)
		}
	case KindText:
		s, ok := v.(string)
		if !ok {
			return wrongType(path, t, v)
		}
		if !utf8.ValidString(s) {
			return &FieldError{Path: path, Reason: "text is not valid utf-8"}
		}
	case KindBlob:
		if _, ok := v.([]byte); !ok {
			return wrongType(path, t, v)
		}
	case KindPrincipal:
		if _, ok := v.(principal.Principal); !ok {
			return wrongType(path, t, v)
		}
	case KindOpt:
		o, ok := v.(Option[Value])
		if !ok {
			return wrongType(path, t, v)
		}
		if inner, some := o.Get(); some {
			return validate(indexPath(path, 0), *t.Elem, inner)
		}
	case KindVec:
		vs, ok := v.([]Value)
		if !ok {
			return wrongType(path, t, v)
		}
		var merr error
		for i, e := range vs {
			merr = multierr.Append(merr, validate(indexPath(path, i), *t.Elem, e))
		}
		return merr
	case KindRecord:
		r, ok := v.(Record)
		if !ok {
			return wrongType(path, t, v)
		}
		var merr error
		for _, f := range t.Fields {
			fv, present := r[f.Name]
			if !present {
				if f.Type.Kind == KindOpt {
					continue
				}
				merr = multierr.Append(merr, &FieldError{Path: joinPath(path, f.Name), Reason: "missing field"})
				continue
			}
			merr = multierr.Append(merr, validate(joinPath(path, f.Name), f.Type, fv))
		}
		for _, k := range r.keys() {
			if _, declared := t.Field(k); !declared {
				merr = multierr.Append(merr, &FieldError{Path: joinPath(path, k), Reason: "undeclared field"})
			}
		}
		return merr
	case KindVariant:
		vr, ok := v.(Variant)
		if !ok {
			return wrongType(path, t, v)
		}
		f, declared := t.Field(vr.Tag)
		if !declared {
			return &FieldError{Path: path, Reason: fmt.Sprintf("unknown variant tag %q", vr.Tag)}
		}
		return validate(joinPath(path, vr.Tag), f.Type, vr.Value)
	default:
		return &FieldError{Path: path, Reason: fmt.Sprintf("invalid type kind %s", t.Kind)}
	}
	return nil
}
