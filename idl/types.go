// Package idl describes the argument and result schemas of remote actor
// methods and implements the schema-directed wire codec for them.
//
// A schema is a Type tree. Values travelling through the codec use a small,
// fixed set of Go representations (see Value). Nothing in this package knows
// about individual operations; callers hand it the declared types and it
// encodes, decodes and validates accordingly.
package idl

import (
	"fmt"
	"io"
	"sort"
	"strings"

	cbg "github.com/whyrusleeping/cbor-gen"
	"golang.org/x/xerrors"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNat
	KindInt
	KindText
	KindBlob
	KindPrincipal
	KindOpt
	KindVec
	KindRecord
	KindVariant
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindNull:      "null",
	KindBool:      "bool",
	KindNat:       "nat",
	KindInt:       "int",
	KindText:      "text",
	KindBlob:      "blob",
	KindPrincipal: "principal",
	KindOpt:       "opt",
	KindVec:       "vec",
	KindRecord:    "record",
	KindVariant:   "variant",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Type is a schema node. Elem is set for opt and vec, Fields for record and
// variant (where each field is one tag). Name is an optional alias used only
// for display.
type Type struct {
	Kind   Kind
	Name   string
	Elem   *Type
	Fields []Field
}

type Field struct {
	Name string
	Type Type
}

func Null() Type      { return Type{Kind: KindNull} }
func Bool() Type      { return Type{Kind: KindBool} }
func Nat() Type       { return Type{Kind: KindNat} }
func Int() Type       { return Type{Kind: KindInt} }
func Text() Type      { return Type{Kind: KindText} }
func Blob() Type      { return Type{Kind: KindBlob} }
func Principal() Type { return Type{Kind: KindPrincipal} }

func Opt(elem Type) Type {
	return Type{Kind: KindOpt, Elem: &elem}
}

func Vec(elem Type) Type {
	return Type{Kind: KindVec, Elem: &elem}
}

// RecordOf declares a record type. Field order is the encoding order; decoding
// matches fields by name.
func RecordOf(fields ...Field) Type {
	mustUniqueFields("record", fields)
	return Type{Kind: KindRecord, Fields: fields}
}

// VariantOf declares a variant type, one field per tag. Tags carrying no data
// use Null.
func VariantOf(tags ...Field) Type {
	mustUniqueFields("variant", tags)
	return Type{Kind: KindVariant, Fields: tags}
}

// F is shorthand for a record field or variant tag.
func F(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// Tag is shorthand for a variant tag without payload.
func Tag(name string) Field {
	return Field{Name: name, Type: Null()}
}

// Named attaches a display alias to t. Aliases never reach the wire.
func Named(name string, t Type) Type {
	t.Name = name
	return t
}

// ResultOf is the result convention: variant { ok : T; err : text }.
func ResultOf(ok Type) Type {
	return VariantOf(F(ResultOkTag, ok), F(ResultErrTag, Text()))
}

const (
	ResultOkTag  = "ok"
	ResultErrTag = "err"
)

func mustUniqueFields(what string, fields []Field) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			panic(fmt.Sprintf("idl: %s field with empty name", what))
		}
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("idl: duplicate %s field %q", what, f.Name))
		}
		seen[f.Name] = struct{}{}
	}
}

// Field looks up a record field or variant tag by name.
func (t Type) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IsUnit reports whether t carries no information.
func (t Type) IsUnit() bool {
	return t.Kind == KindNull
}

// String returns the alias if one is set, otherwise the structural form.
func (t Type) String() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Structure()
}

// Structure renders t ignoring its own alias (nested aliases are kept).
func (t Type) Structure() string {
	switch t.Kind {
	case KindOpt, KindVec:
		return t.Kind.String() + " " + t.Elem.String()
	case KindRecord, KindVariant:
		if len(t.Fields) == 0 {
			return t.Kind.String() + " {}"
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			if t.Kind == KindVariant && f.Type.IsUnit() {
				parts[i] = f.Name
				continue
			}
			parts[i] = f.Name + " : " + f.Type.String()
		}
		return t.Kind.String() + " { " + strings.Join(parts, "; ") + " }"
	default:
		return t.Kind.String()
	}
}

// Equal compares structure, ignoring aliases.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindOpt, KindVec:
		return t.Elem.Equal(*o.Elem)
	case KindRecord, KindVariant:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for _, f := range t.Fields {
			of, ok := o.Field(f.Name)
			if !ok || !f.Type.Equal(of.Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MarshalTypeCBOR writes the canonical structural encoding of t, used for
// interface fingerprints: [kind, elem|null, [[name, type]...]]. Fields are
// written sorted by name since they are matched by name on the wire.
func MarshalTypeCBOR(w io.Writer, t Type) error {
	cw := cbg.NewCborWriter(w)
	return marshalType(cw, t)
}

func marshalType(cw *cbg.CborWriter, t Type) error {
	if t.Kind == KindInvalid {
		return xerrors.New("cannot marshal invalid type")
	}
	if err := cw.WriteMajorTypeHeader(cbg.MajArray, 3); err != nil {
		return err
	}
	if err := cw.WriteMajorTypeHeader(cbg.MajUnsignedInt, uint64(t.Kind)); err != nil {
		return err
	}

	if t.Elem != nil {
		if err := marshalType(cw, *t.Elem); err != nil {
			return err
		}
	} else if _, err := cw.Write(cbg.CborNull); err != nil {
		return err
	}

	if err := cw.WriteMajorTypeHeader(cbg.MajArray, uint64(len(t.Fields))); err != nil {
		return err
	}
	fields := append([]Field(nil), t.Fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	for _, f := range fields {
		if err := cw.WriteMajorTypeHeader(cbg.MajArray, 2); err != nil {
			return err
		}
		if err := writeText(cw, f.Name); err != nil {
			return err
		}
		if err := marshalType(cw, f.Type); err != nil {
			return err
		}
	}
	return nil
}
