package idl

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/principal"
)

var tokenT = RecordOf(
	F("id", Named("TokenId", Text())),
	F("name", Text()),
	F("supply", Nat()),
	F("delta", Int()),
	F("frozen", Bool()),
	F("logo", Opt(Blob())),
	F("owner", Principal()),
	F("tags", Vec(Text())),
	F("status", VariantOf(Tag("upcoming"), Tag("active"), F("ended", Nat()))),
)

func sampleToken(t *testing.T) Record {
	owner, err := principal.Decode("rrkah-fqaaa-aaaaa-aaaaq-cai")
	require.NoError(t, err)
	return Record{
		"id":     "tok-1",
		"name":   "Gold",
		"supply": uint64(1_000_000),
		"delta":  int64(-42),
		"frozen": true,
		"logo":   Some[Value]([]byte{0x89, 'P', 'N', 'G'}),
		"owner":  owner,
		"tags":   []Value{"a", "b"},
		"status": V("ended", uint64(7)),
	}
}

func TestRoundTrip(t *testing.T) {
	in := sampleToken(t)

	b, err := Encode(tokenT, in)
	require.NoError(t, err)

	out, err := Decode(tokenT, b)
	require.NoError(t, err)
	require.Equal(t, in, out)

	// absent optional
	in["logo"] = None[Value]()
	b, err = Encode(tokenT, in)
	require.NoError(t, err)
	out, err = Decode(tokenT, b)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestIntExtremes(t *testing.T) {
	for _, n := range []int64{0, -1, 1, -9223372036854775808, 9223372036854775807} {
		b, err := Encode(Int(), n)
		require.NoError(t, err)
		out, err := Decode(Int(), b)
		require.NoError(t, err)
		require.Equal(t, n, out)
	}
}

func TestEmptyVecIsNotNil(t *testing.T) {
	b, err := Encode(Vec(Nat()), []Value{})
	require.NoError(t, err)

	out, err := Decode(Vec(Nat()), b)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Len(t, out, 0)

	typed, err := FromValues(out, AsNat)
	require.NoError(t, err)
	require.NotNil(t, typed)
	require.Empty(t, typed)
}

func TestOptCardinality(t *testing.T) {
	// [1, 2] is not a valid optional
	_, err := Decode(Opt(Nat()), []byte{0x82, 0x01, 0x02})
	var de *DecodeError
	require.True(t, xerrors.As(err, &de), "got %v", err)
	require.Contains(t, de.Reason, "zero or one")

	out, err := Decode(Opt(Nat()), []byte{0x80})
	require.NoError(t, err)
	require.False(t, out.(Option[Value]).IsSome())

	out, err = Decode(Opt(Nat()), []byte{0x81, 0x05})
	require.NoError(t, err)
	require.Equal(t, Some[Value](uint64(5)), out)
}

func TestVariantShape(t *testing.T) {
	vt := VariantOf(Tag("a"), Tag("b"))

	// two populated tags
	_, err := Decode(vt, []byte{0xa2, 0x61, 'a', 0xf6, 0x61, 'b', 0xf6})
	require.Error(t, err)
	require.Contains(t, err.Error(), "exactly one tag")

	_, err = Decode(vt, []byte{0xa1, 0x61, 'z', 0xf6})
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown variant tag "z"`)

	out, err := Decode(vt, []byte{0xa1, 0x61, 'b', 0xf6})
	require.NoError(t, err)
	require.Equal(t, V("b", nil), out)
}

func TestTrailingData(t *testing.T) {
	b, err := Encode(Nat(), uint64(5))
	require.NoError(t, err)

	_, err = Decode(Nat(), append(b, 0x00))
	require.Error(t, err)
	require.Contains(t, err.Error(), "trailing data")

	_, err = Decode(Nat(), nil)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestInvalidUTF8Text(t *testing.T) {
	_, err := Encode(Text(), "\xff\xfe")
	var fe *FieldError
	require.True(t, xerrors.As(err, &fe))

	// text header of length 2 followed by invalid utf-8
	_, err = Decode(Text(), []byte{0x62, 0xff, 0xfe})
	var de *DecodeError
	require.True(t, xerrors.As(err, &de))
	require.Contains(t, err.Error(), "utf-8")

	rec := RecordOf(F("name", Text()))
	_, err = Decode(rec, []byte{0xa1, 0x64, 'n', 'a', 'm', 'e', 0x61, 0x80})
	require.True(t, xerrors.As(err, &de))
}

func TestRecordEvolution(t *testing.T) {
	wide := RecordOf(F("id", Text()), F("extra", Vec(RecordOf(F("x", Nat())))), F("note", Opt(Text())))
	narrow := RecordOf(F("id", Text()))

	b, err := Encode(wide, Record{
		"id":    "x",
		"extra": []Value{Record{"x": uint64(1)}},
		"note":  Some[Value]("hi"),
	})
	require.NoError(t, err)

	// unknown fields are skipped
	out, err := Decode(narrow, b)
	require.NoError(t, err)
	require.Equal(t, Record{"id": "x"}, out)

	// missing optional fields decode as absent, missing required ones fail
	b, err = Encode(narrow, Record{"id": "y"})
	require.NoError(t, err)
	out, err = Decode(RecordOf(F("id", Text()), F("note", Opt(Text()))), b)
	require.NoError(t, err)
	require.Equal(t, Record{"id": "y", "note": None[Value]()}, out)

	_, err = Decode(RecordOf(F("id", Text()), F("count", Nat())), b)
	require.Error(t, err)
	require.Contains(t, err.Error(), "count: missing field")
}

func TestValidateRejects(t *testing.T) {
	_, err := Encode(Nat(), "five")
	var fe *FieldError
	require.True(t, xerrors.As(err, &fe))

	_, err = Encode(Vec(Text()), []Value{"ok", "\xc3\x28"})
	require.True(t, xerrors.As(err, &fe))
	require.Equal(t, "[1]", fe.Path)

	_, err = Encode(tokenT, Record{"id": "x", "bogus": true})
	require.Error(t, err)
	require.Contains(t, err.Error(), "name: missing field")
	require.Contains(t, err.Error(), "bogus: undeclared field")

	// optional fields may be omitted from a record value
	rec := sampleToken(t)
	delete(rec, "logo")
	b, err := Encode(tokenT, rec)
	require.NoError(t, err)
	out, err := Decode(tokenT, b)
	require.NoError(t, err)
	require.Equal(t, None[Value](), out.(Record)["logo"])
}

func TestArgs(t *testing.T) {
	types := []Type{Text(), Opt(Nat())}

	b, err := EncodeArgs(types, []Value{"tok", None[Value]()})
	require.NoError(t, err)

	out, err := DecodeArgs(types, b)
	require.NoError(t, err)
	require.Equal(t, []Value{"tok", None[Value]()}, out)

	_, err = DecodeArgs([]Type{Text()}, b)
	require.Error(t, err)

	_, err = EncodeArgs(types, []Value{"tok"})
	require.Error(t, err)

	empty, err := EncodeArgs(nil, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x80}, empty)
}

func TestDepthLimit(t *testing.T) {
	ty := Nat()
	var b bytes.Buffer
	for i := 0; i < maxDepth+2; i++ {
		ty = Opt(ty)
		b.WriteByte(0x81)
	}
	b.WriteByte(0x01)

	_, err := Decode(ty, b.Bytes())
	require.Error(t, err)
	require.Contains(t, err.Error(), "nesting deeper")
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "variant { ok : TokenId; err : text }", ResultOf(Named("TokenId", Text())).String())
	require.Equal(t, "opt vec nat", Opt(Vec(Nat())).String())
	require.True(t, Named("A", Nat()).Equal(Nat()))
	require.False(t, Opt(Nat()).Equal(Vec(Nat())))
}
