package actor

import (
	"context"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/idl"
)

var tokenIDT = idl.Named("TokenId", idl.Text())

func testService() *Service {
	return NewService("TokenFactory").
		Update("createToken", []idl.Type{idl.Text()}, idl.ResultOf(tokenIDT)).
		Query("listTokens", nil, idl.Vec(idl.Text())).
		Query("getToken", []idl.Type{tokenIDT}, idl.Opt(idl.Text()))
}

type tokens struct {
	names []string
}

func (t *tokens) Exports() map[string]Handler {
	return map[string]Handler{
		"createToken": func(ctx context.Context, cc CallContext, args []idl.Value) (idl.Value, error) {
			name := args[0].(string)
			for _, n := range t.names {
				if n == name {
					return idl.V(idl.ResultErrTag, "Token already exists"), nil
				}
			}
			t.names = append(t.names, name)
			return idl.V(idl.ResultOkTag, name), nil
		},
		"listTokens": func(ctx context.Context, cc CallContext, args []idl.Value) (idl.Value, error) {
			return idl.Values(t.names, idl.TextValue), nil
		},
		"getToken": func(ctx context.Context, cc CallContext, args []idl.Value) (idl.Value, error) {
			for _, n := range t.names {
				if n == args[0] {
					return idl.Some[idl.Value](n), nil
				}
			}
			return idl.None[idl.Value](), nil
		},
	}
}

// loopback runs calls against a local invoker and counts them.
type loopback struct {
	inv     *Invoker
	queries int
	updates int
	err     error
	reply   []byte
}

func (l *loopback) Query(ctx context.Context, canister, method string, arg []byte) ([]byte, error) {
	l.queries++
	return l.call(ctx, canister, method, Query, arg)
}

func (l *loopback) Update(ctx context.Context, canister, method string, arg []byte) ([]byte, error) {
	l.updates++
	return l.call(ctx, canister, method, Update, arg)
}

func (l *loopback) call(ctx context.Context, canister, method string, mode Mode, arg []byte) ([]byte, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.reply != nil {
		return l.reply, nil
	}
	return l.inv.Invoke(ctx, CallContext{Canister: canister}, method, mode, arg)
}

func (l *loopback) Interface(ctx context.Context, canister string) (cid.Cid, error) {
	return l.inv.Service().Fingerprint(), nil
}

func newLoopback(t *testing.T) *loopback {
	inv := NewInvoker()
	require.NoError(t, inv.Register(testService(), &tokens{}))
	return &loopback{inv: inv}
}

func TestCallDispatchesByMode(t *testing.T) {
	ctx := context.Background()
	lb := newLoopback(t)
	a := New(lb, "tok-canister", testService())

	res, err := a.Call(ctx, "createToken", "Gold")
	require.NoError(t, err)
	r, err := idl.ResultFromValue(res, idl.AsText)
	require.NoError(t, err)
	id, ok := r.Ok()
	require.True(t, ok)
	require.Equal(t, "Gold", id)

	list, err := a.Call(ctx, "listTokens")
	require.NoError(t, err)
	require.Equal(t, []idl.Value{"Gold"}, list)

	got, err := a.Call(ctx, "getToken", "Silver")
	require.NoError(t, err)
	require.Equal(t, idl.None[idl.Value](), got)

	require.Equal(t, 1, lb.updates)
	require.Equal(t, 2, lb.queries)
}

func TestEmptyListIsEmptySequence(t *testing.T) {
	a := New(newLoopback(t), "tok-canister", testService())

	list, err := a.Call(context.Background(), "listTokens")
	require.NoError(t, err)
	names, err := idl.FromValues(list, idl.AsText)
	require.NoError(t, err)
	require.NotNil(t, names)
	require.Empty(t, names)
}

func TestDuplicateSurfacesMessageWithoutRetry(t *testing.T) {
	ctx := context.Background()
	lb := newLoopback(t)
	a := New(lb, "tok-canister", testService())

	_, err := a.Call(ctx, "createToken", "Gold")
	require.NoError(t, err)

	res, err := a.Call(ctx, "createToken", "Gold")
	require.NoError(t, err, "an err result is not a call failure")
	r, err := idl.ResultFromValue(res, idl.AsText)
	require.NoError(t, err)
	msg, isErr := r.Err()
	require.True(t, isErr)
	require.Equal(t, "Token already exists", msg)
	require.Equal(t, 2, lb.updates)
}

func TestCallErrors(t *testing.T) {
	ctx := context.Background()
	lb := newLoopback(t)
	a := New(lb, "tok-canister", testService())

	_, err := a.Call(ctx, "burnToken")
	require.ErrorIs(t, err, ErrUnknownMethod)

	_, err = a.Call(ctx, "createToken", uint64(5))
	var ae *ArgumentError
	require.True(t, xerrors.As(err, &ae))
	require.Equal(t, "createToken", ae.Method)

	_, err = a.Call(ctx, "createToken")
	require.True(t, xerrors.As(err, &ae))
	require.Equal(t, 0, lb.updates, "nothing is dispatched for bad calls")

	lb.err = xerrors.New("connection refused")
	_, err = a.Call(ctx, "listTokens")
	var te *TransportError
	require.True(t, xerrors.As(err, &te))
	require.Equal(t, Query, te.Mode)
	require.Contains(t, err.Error(), "connection refused")

	// a reply that does not fit the result type is a decode error
	lb.err = nil
	lb.reply = []byte{0x81, 0x01}
	_, err = a.Call(ctx, "listTokens")
	var de *idl.DecodeError
	require.True(t, xerrors.As(err, &de))
	require.False(t, xerrors.As(err, &te))
}

func TestInvokerRejectsQueryOnUpdate(t *testing.T) {
	lb := newLoopback(t)
	arg, err := idl.EncodeArgs([]idl.Type{idl.Text()}, []idl.Value{"Gold"})
	require.NoError(t, err)

	_, err = lb.inv.Invoke(context.Background(), CallContext{}, "createToken", Query, arg)
	require.ErrorIs(t, err, ErrModeMismatch)

	// queries may be run as updates
	arg, err = idl.EncodeArgs(nil, nil)
	require.NoError(t, err)
	_, err = lb.inv.Invoke(context.Background(), CallContext{}, "listTokens", Update, arg)
	require.NoError(t, err)
}

func TestRegisterChecksExports(t *testing.T) {
	partial := NewService("TokenFactory").
		Query("listTokens", nil, idl.Vec(idl.Text()))
	require.Error(t, NewInvoker().Register(partial, &tokens{}))

	wider := testService().Query("getTokenCanister", []idl.Type{tokenIDT}, idl.Opt(idl.Text()))
	require.Error(t, NewInvoker().Register(wider, &tokens{}))

	inv := NewInvoker()
	require.NoError(t, inv.Register(testService(), &tokens{}))
	require.Error(t, inv.Register(testService(), &tokens{}))
}

func TestServiceDeclaration(t *testing.T) {
	require.Panics(t, func() {
		NewService("x").Query("a", nil, idl.Null()).Update("a", nil, idl.Null())
	})
	require.Panics(t, func() {
		NewService("x").Query("a", nil, idl.Type{})
	})

	svc := testService()
	m, ok := svc.Method("getToken")
	require.True(t, ok)
	require.Equal(t, Query, m.Mode)
	require.Equal(t, "getToken : (TokenId) -> (opt text) query", m.String())
	require.Len(t, svc.Methods(), 3)
	require.Equal(t, "createToken", svc.Methods()[0].Name)
}

func TestFingerprint(t *testing.T) {
	a := testService()
	// same methods, other order and no aliases
	b := NewService("Other").
		Query("getToken", []idl.Type{idl.Text()}, idl.Opt(idl.Text())).
		Query("listTokens", nil, idl.Vec(idl.Text())).
		Update("createToken", []idl.Type{idl.Text()}, idl.ResultOf(idl.Text()))
	require.True(t, a.Fingerprint().Equals(b.Fingerprint()))
	require.Equal(t, uint64(cid.DagCBOR), a.Fingerprint().Prefix().Codec)

	c := NewService("TokenFactory").
		Query("createToken", []idl.Type{idl.Text()}, idl.ResultOf(idl.Text())).
		Query("listTokens", nil, idl.Vec(idl.Text())).
		Query("getToken", []idl.Type{idl.Text()}, idl.Opt(idl.Text()))
	require.False(t, a.Fingerprint().Equals(c.Fingerprint()), "mode is part of the interface")

	// tags and fields are matched by name, so their order does not count
	status1 := idl.VariantOf(idl.Tag("active"), idl.Tag("ended"))
	status2 := idl.VariantOf(idl.Tag("ended"), idl.Tag("active"))
	rec1 := idl.RecordOf(idl.F("id", idl.Text()), idl.F("status", status1))
	rec2 := idl.RecordOf(idl.F("status", status2), idl.F("id", idl.Text()))
	require.True(t, rec1.Equal(rec2))
	d1 := NewService("Sales").Query("getSale", []idl.Type{idl.Text()}, idl.Opt(rec1))
	d2 := NewService("Sales").Query("getSale", []idl.Type{idl.Text()}, idl.Opt(rec2))
	require.True(t, d1.Fingerprint().Equals(d2.Fingerprint()))

	d3 := NewService("Sales").Query("getSale", []idl.Type{idl.Text()},
		idl.Opt(idl.RecordOf(idl.F("id", idl.Text()), idl.F("status", idl.VariantOf(idl.Tag("active"))))))
	require.False(t, d1.Fingerprint().Equals(d3.Fingerprint()))
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	lb := newLoopback(t)

	require.NoError(t, New(lb, "tok", testService()).Verify(ctx))

	other := NewService("TokenFactory").Query("listTokens", nil, idl.Vec(idl.Nat()))
	err := New(lb, "tok", other).Verify(ctx)
	var me *InterfaceMismatchError
	require.True(t, xerrors.As(err, &me))
}
