package idl

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	cbg "github.com/whyrusleeping/cbor-gen"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/principal"
)

// maxDepth bounds schema recursion while decoding untrusted input.
const maxDepth = 64

// Encode validates v against t and returns its wire form.
func Encode(t Type, v Value) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := EncodeTo(buf, t, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func EncodeTo(w io.Writer, t Type, v Value) error {
	if err := Validate(t, v); err != nil {
		return err
	}
	return encodeValue(cbg.NewCborWriter(w), t, v)
}

// EncodeArgs encodes a positional argument tuple as a fixed-length array.
func EncodeArgs(types []Type, args []Value) ([]byte, error) {
	if err := ValidateArgs(types, args); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	cw := cbg.NewCborWriter(buf)
	if err := cw.WriteMajorTypeHeader(cbg.MajArray, uint64(len(args))); err != nil {
		return nil, err
	}
	for i := range types {
		if err := encodeValue(cw, types[i], args[i]); err != nil {
			return nil, xerrors.Errorf("encoding argument %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func writeText(cw *cbg.CborWriter, s string) error {
	if uint64(len(s)) > cbg.ByteArrayMaxLen {
		return xerrors.Errorf("text too long (%d)", len(s))
	}
	if !utf8.ValidString(s) {
		return xerrors.New("text is not valid utf-8")
	}
	if err := cw.WriteMajorTypeHeader(cbg.MajTextString, uint64(len(s))); err != nil {
		return err
	}
	_, err := cw.WriteString(s)
	return err
}

func writeBytes(cw *cbg.CborWriter, b []byte) error {
	if uint64(len(b)) > cbg.ByteArrayMaxLen {
		return xerrors.Errorf("byte array too long (%d)", len(b))
	}
	if err := cw.WriteMajorTypeHeader(cbg.MajByteString, uint64(len(b))); err != nil {
		return err
	}
	_, err := cw.Write(b)
	return err
}

// encodeValue assumes v has been validated against t.
func encodeValue(cw *cbg.CborWriter, t Type, v Value) error {
	switch t.Kind {
	case KindNull:
		_, err := cw.Write(cbg.CborNull)
		return err
	case KindBool:
		b := cbg.CborBoolFalse
		if v.(bool) {
			b = cbg.CborBoolTrue
		}
		_, err := cw.Write(b)
		return err
	case KindNat:
		return cw.WriteMajorTypeHeader(cbg.MajUnsignedInt, v.(uint64))
	case KindInt:
		i := v.(int64)
		if i >= 0 {
			return cw.WriteMajorTypeHeader(cbg.MajUnsignedInt, uint64(i))
		}
		return cw.WriteMajorTypeHeader(cbg.MajNegativeInt, uint64(-i-1))
	case KindText:
		return writeText(cw, v.(string))
	case KindBlob:
		return writeBytes(cw, v.([]byte))
	case KindPrincipal:
		return writeBytes(cw, v.(principal.Principal).Bytes())
	case KindOpt:
		o := v.(Option[Value])
		inner, some := o.Get()
		if !some {
			return cw.WriteMajorTypeHeader(cbg.MajArray, 0)
		}
		if err := cw.WriteMajorTypeHeader(cbg.MajArray, 1); err != nil {
			return err
		}
		return encodeValue(cw, *t.Elem, inner)
	case KindVec:
		vs := v.([]Value)
		if uint64(len(vs)) > cbg.MaxLength {
			return xerrors.Errorf("vec too long (%d)", len(vs))
		}
		if err := cw.WriteMajorTypeHeader(cbg.MajArray, uint64(len(vs))); err != nil {
			return err
		}
		for _, e := range vs {
			if err := encodeValue(cw, *t.Elem, e); err != nil {
				return err
			}
		}
		return nil
	case KindRecord:
		r := v.(Record)
		if err := cw.WriteMajorTypeHeader(cbg.MajMap, uint64(len(t.Fields))); err != nil {
			return err
		}
		for _, f := range t.Fields {
			if err := writeText(cw, f.Name); err != nil {
				return err
			}
			fv, present := r[f.Name]
			if !present {
				// only opt fields may be left out, see validate
				fv = None[Value]()
			}
			if err := encodeValue(cw, f.Type, fv); err != nil {
				return err
			}
		}
		return nil
	case KindVariant:
		vr := v.(Variant)
		f, _ := t.Field(vr.Tag)
		if err := cw.WriteMajorTypeHeader(cbg.MajMap, 1); err != nil {
			return err
		}
		if err := writeText(cw, vr.Tag); err != nil {
			return err
		}
		return encodeValue(cw, f.Type, vr.Value)
	default:
		return xerrors.Errorf("cannot encode kind %s", t.Kind)
	}
}

// Decode reads exactly one value of type t from b. Trailing bytes are an
// error.
func Decode(t Type, b []byte) (Value, error) {
	d := newDecoder(b)
	v, err := d.value("", t, 0)
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeArgs reads a positional argument tuple.
func DecodeArgs(types []Type, b []byte) ([]Value, error) {
	d := newDecoder(b)
	maj, extra, err := d.header("")
	if err != nil {
		return nil, err
	}
	if maj != cbg.MajArray {
		return nil, &DecodeError{Reason: fmt.Sprintf("argument tuple must be an array, got major type %d", maj)}
	}
	if extra != uint64(len(types)) {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected %d arguments, got %d", len(types), extra)}
	}

	out := make([]Value, len(types))
	for i, t := range types {
		out[i], err = d.value(argPath(i), t, 1)
		if err != nil {
			return nil, err
		}
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return out, nil
}

type decoder struct {
	cr *cbg.CborReader
}

func newDecoder(b []byte) *decoder {
	return &decoder{cr: cbg.NewCborReader(bytes.NewReader(b))}
}

func (d *decoder) fail(path, format string, args ...any) error {
	return &DecodeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

func (d *decoder) header(path string) (byte, uint64, error) {
	maj, extra, err := d.cr.ReadHeader()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, 0, &DecodeError{Path: path, Reason: "reading header", Err: err}
	}
	return maj, extra, nil
}

func (d *decoder) finish() error {
	if _, err := d.cr.ReadByte(); err != io.EOF {
		return d.fail("", "trailing data after value")
	}
	return nil
}

func (d *decoder) readN(path string, n uint64) ([]byte, error) {
	if n > cbg.ByteArrayMaxLen {
		return nil, d.fail(path, "byte array too large (%d)", n)
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(d.cr, out); err != nil {
		return nil, &DecodeError{Path: path, Reason: "reading bytes", Err: err}
	}
	return out, nil
}

func (d *decoder) text(path string) (string, error) {
	maj, extra, err := d.header(path)
	if err != nil {
		return "", err
	}
	if maj != cbg.MajTextString {
		return "", d.fail(path, "expected text, got major type %d", maj)
	}
	b, err := d.readN(path, extra)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", d.fail(path, "text is not valid utf-8")
	}
	return string(b), nil
}

func (d *decoder) value(path string, t Type, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, d.fail(path, "nesting deeper than %d", maxDepth)
	}

	maj, extra, err := d.header(path)
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case KindNull:
		if maj != cbg.MajOther || extra != 22 {
			return nil, d.fail(path, "expected null")
		}
		return Unit{}, nil
	case KindBool:
		if maj == cbg.MajOther {
			switch extra {
			case 20:
				return false, nil
			case 21:
				return true, nil
			}
		}
		return nil, d.fail(path, "expected bool")
	case KindNat:
		if maj != cbg.MajUnsignedInt {
			return nil, d.fail(path, "expected nat, got major type %d", maj)
		}
		return extra, nil
	case KindInt:
		switch maj {
		case cbg.MajUnsignedInt:
			if extra > math.MaxInt64 {
				return nil, d.fail(path, "int64 positive overflow")
			}
			return int64(extra), nil
		case cbg.MajNegativeInt:
			if extra > math.MaxInt64 {
				return nil, d.fail(path, "int64 negative overflow")
			}
			return -1 - int64(extra), nil
		default:
			return nil, d.fail(path, "expected int, got major type %d", maj)
		}
	case KindText:
		if maj != cbg.MajTextString {
			return nil, d.fail(path, "expected text, got major type %d", maj)
		}
		b, err := d.readN(path, extra)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, d.fail(path, "text is not valid utf-8")
		}
		return string(b), nil
	case KindBlob, KindPrincipal:
		if maj != cbg.MajByteString {
			return nil, d.fail(path, "expected %s, got major type %d", t.Kind, maj)
		}
		b, err := d.readN(path, extra)
		if err != nil {
			return nil, err
		}
		if t.Kind == KindBlob {
			return b, nil
		}
		p, err := principal.FromBytes(b)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return p, nil
	case KindOpt:
		if maj != cbg.MajArray {
			return nil, d.fail(path, "expected opt sequence, got major type %d", maj)
		}
		switch extra {
		case 0:
			return None[Value](), nil
		case 1:
			inner, err := d.value(indexPath(path, 0), *t.Elem, depth+1)
			if err != nil {
				return nil, err
			}
			return Some[Value](inner), nil
		default:
			return nil, d.fail(path, "optional must hold zero or one element, got %d", extra)
		}
	case KindVec:
		if maj != cbg.MajArray {
			return nil, d.fail(path, "expected vec, got major type %d", maj)
		}
		if extra > cbg.MaxLength {
			return nil, d.fail(path, "vec too long (%d)", extra)
		}
		out := make([]Value, 0, extra)
		for i := uint64(0); i < extra; i++ {
			e, err := d.value(indexPath(path, int(i)), *t.Elem, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case KindRecord:
		if maj != cbg.MajMap {
			return nil, d.fail(path, "expected record, got major type %d", maj)
		}
		if extra > cbg.MaxLength {
			return nil, d.fail(path, "record has too many fields (%d)", extra)
		}
		out := make(Record, len(t.Fields))
		for i := uint64(0); i < extra; i++ {
			name, err := d.text(path)
			if err != nil {
				return nil, err
			}
			if _, dup := out[name]; dup {
				return nil, d.fail(joinPath(path, name), "duplicate field")
			}
			f, declared := t.Field(name)
			if !declared {
				// newer peers may send fields we don't know yet
				if err := d.skip(joinPath(path, name), depth+1); err != nil {
					return nil, err
				}
				continue
			}
			out[name], err = d.value(joinPath(path, name), f.Type, depth+1)
			if err != nil {
				return nil, err
			}
		}
		for _, f := range t.Fields {
			if _, ok := out[f.Name]; ok {
				continue
			}
			if f.Type.Kind != KindOpt {
				return nil, d.fail(joinPath(path, f.Name), "missing field")
			}
			out[f.Name] = None[Value]()
		}
		return out, nil
	case KindVariant:
		if maj != cbg.MajMap {
			return nil, d.fail(path, "expected variant, got major type %d", maj)
		}
		if extra != 1 {
			return nil, d.fail(path, "variant must carry exactly one tag, got %d", extra)
		}
		tag, err := d.text(path)
		if err != nil {
			return nil, err
		}
		f, declared := t.Field(tag)
		if !declared {
			return nil, d.fail(path, "unknown variant tag %q", tag)
		}
		payload, err := d.value(joinPath(path, tag), f.Type, depth+1)
		if err != nil {
			return nil, err
		}
		return Variant{Tag: tag, Value: payload}, nil
	default:
		return nil, d.fail(path, "invalid type kind %s", t.Kind)
	}
}

// skip consumes one complete data item of any shape.
func (d *decoder) skip(path string, depth int) error {
	if depth > maxDepth {
		return d.fail(path, "nesting deeper than %d", maxDepth)
	}
	maj, extra, err := d.header(path)
	if err != nil {
		return err
	}
	switch maj {
	case cbg.MajByteString, cbg.MajTextString:
		if extra > cbg.ByteArrayMaxLen {
			return d.fail(path, "byte array too large (%d)", extra)
		}
		if _, err := io.CopyN(io.Discard, d.cr, int64(extra)); err != nil {
			return &DecodeError{Path: path, Reason: "skipping bytes", Err: err}
		}
	case cbg.MajArray, cbg.MajMap:
		if extra > cbg.MaxLength {
			return d.fail(path, "container too long (%d)", extra)
		}
		n := extra
		if maj == cbg.MajMap {
			n *= 2
		}
		for i := uint64(0); i < n; i++ {
			if err := d.skip(path, depth+1); err != nil {
				return err
			}
		}
	case cbg.MajTag:
		return d.skip(path, depth+1)
	}
	return nil
}
