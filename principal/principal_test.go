package principal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestTextForm(t *testing.T) {
	require.Equal(t, "2vxsx-fae", Anonymous.String())
	require.Equal(t, "aaaaa-aa", Principal{}.String())

	p, err := FromBytes([]byte{0, 0, 0, 0, 0, 0, 0, 1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, "rrkah-fqaaa-aaaaa-aaaaq-cai", p.String())

	back, err := Decode("rrkah-fqaaa-aaaaa-aaaaq-cai")
	require.NoError(t, err)
	require.True(t, back.Equals(p))

	anon, err := Decode("2VXSX-FAE")
	require.NoError(t, err)
	require.True(t, anon.IsAnonymous())
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode("rrkah-fqaaa-aaaaa-aaaaq-caa")
	require.Error(t, err)

	_, err = Decode("not a principal")
	require.True(t, xerrors.Is(err, ErrMalformed))

	_, err = FromBytes(make([]byte, MaxLength+1))
	require.True(t, xerrors.Is(err, ErrTooLong))
}

func TestAccountIdentifier(t *testing.T) {
	id, err := AccountIdentifier(Anonymous, nil)
	require.NoError(t, err)
	require.Equal(t, "1c7a48ba6a562aa9eaa2481a9049cdf0433b9738c992d698c31d8abf89cadc79", id)

	_, err = AccountIdentifier(Anonymous, []byte{1})
	require.ErrorIs(t, err, ErrBadSubaccount)
}

func TestTextMarshal(t *testing.T) {
	p := SelfAuthenticating([]byte("some der key"))
	b, err := p.MarshalText()
	require.NoError(t, err)

	var out Principal
	require.NoError(t, out.UnmarshalText(b))
	require.True(t, out.Equals(p))
	require.Len(t, out.Bytes(), MaxLength)
}
