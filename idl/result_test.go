package idl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultZeroValue(t *testing.T) {
	var r Result[string]
	require.ErrorIs(t, r.Check(), ErrEmptyResult)
	require.False(t, r.IsOk())
	require.False(t, r.IsErr())

	_, err := ResultToValue(r, TextValue)
	require.ErrorIs(t, err, ErrEmptyResult)
}

func TestResultValueForm(t *testing.T) {
	rt := ResultOf(Text())

	b, err := Encode(rt, V(ResultErrTag, "Token already exists"))
	require.NoError(t, err)
	v, err := Decode(rt, b)
	require.NoError(t, err)

	r, err := ResultFromValue(v, AsText)
	require.NoError(t, err)
	msg, isErr := r.Err()
	require.True(t, isErr)
	require.Equal(t, "Token already exists", msg)
	require.NoError(t, r.Check())

	back, err := ResultToValue(Ok("tok-1"), TextValue)
	require.NoError(t, err)
	require.Equal(t, V(ResultOkTag, "tok-1"), back)

	_, err = ResultFromValue(V("maybe", nil), AsText)
	require.Error(t, err)

	unit, err := ResultFromValue(V(ResultOkTag, nil), AsUnit)
	require.NoError(t, err)
	require.True(t, unit.IsOk())
}

func TestOption(t *testing.T) {
	o, err := OptionFromSlice([]int{})
	require.NoError(t, err)
	require.False(t, o.IsSome())
	require.Equal(t, 7, o.OrElse(7))

	o, err = OptionFromSlice([]int{3})
	require.NoError(t, err)
	require.Equal(t, []int{3}, o.Slice())

	_, err = OptionFromSlice([]int{1, 2})
	require.Error(t, err)

	dyn := OptionOf(Some("x"), TextValue)
	back, err := OptionFromValue(dyn, AsText)
	require.NoError(t, err)
	require.Equal(t, Some("x"), back)

	b, err := json.Marshal(struct{ A, B Option[int] }{A: Some(1)})
	require.NoError(t, err)
	require.JSONEq(t, `{"A":1,"B":null}`, string(b))
}
