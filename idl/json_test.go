package idl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	in := sampleToken(t)

	j, err := ToJSON(tokenT, in)
	require.NoError(t, err)
	require.Contains(t, string(j), `"logo":["iVBORw=="]`)
	require.Contains(t, string(j), `"status":{"ended":7}`)

	out, err := FromJSON(tokenT, j)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestJSONInputForms(t *testing.T) {
	st := VariantOf(Tag("upcoming"), Tag("active"), F("ended", Nat()))

	v, err := FromJSON(st, json.RawMessage(`"active"`))
	require.NoError(t, err)
	require.Equal(t, V("active", nil), v)

	v, err = FromJSON(st, json.RawMessage(`{"active":null}`))
	require.NoError(t, err)
	require.Equal(t, V("active", nil), v)

	_, err = FromJSON(st, json.RawMessage(`{"active":null,"upcoming":null}`))
	require.Error(t, err)

	_, err = FromJSON(st, json.RawMessage(`"paused"`))
	require.Error(t, err)

	v, err = FromJSON(Opt(Nat()), json.RawMessage(`[]`))
	require.NoError(t, err)
	require.Equal(t, None[Value](), v)

	v, err = FromJSON(Opt(Nat()), json.RawMessage(`"18446744073709551615"`))
	require.NoError(t, err)
	require.Equal(t, Some[Value](uint64(18446744073709551615)), v)

	_, err = FromJSON(Opt(Nat()), json.RawMessage(`[1, 2]`))
	require.Error(t, err)

	// a bare array under opt vec is the present vector
	v, err = FromJSON(Opt(Vec(Nat())), json.RawMessage(`[1, 2]`))
	require.NoError(t, err)
	require.Equal(t, Some[Value]([]Value{uint64(1), uint64(2)}), v)

	// nested vectors take the [x] form only
	vv := Opt(Vec(Vec(Nat())))
	v, err = FromJSON(vv, json.RawMessage(`[[[1]]]`))
	require.NoError(t, err)
	require.Equal(t, Some[Value]([]Value{[]Value{uint64(1)}}), v)
	_, err = FromJSON(vv, json.RawMessage(`[[1]]`))
	require.Error(t, err)
	_, err = FromJSON(vv, json.RawMessage(`[[1], [2]]`))
	require.Error(t, err)

	_, err = FromJSON(Nat(), json.RawMessage(`-1`))
	require.Error(t, err)
}

func TestArgsFromJSON(t *testing.T) {
	args, err := ArgsFromJSON([]Type{Text(), Nat()}, json.RawMessage(`["tok", 5]`))
	require.NoError(t, err)
	require.Equal(t, []Value{"tok", uint64(5)}, args)

	args, err = ArgsFromJSON(nil, nil)
	require.NoError(t, err)
	require.Empty(t, args)

	_, err = ArgsFromJSON([]Type{Text()}, json.RawMessage(`[1]`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "arg[0]")
}
