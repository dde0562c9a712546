package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/api/mocks"
	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/journal"
	"github.com/canlink-project/canlink/principal"
)

var testIdentity = principal.SelfAuthenticating([]byte("wallet-test-key"))

var pingService = actor.NewService("Ping").Query("ping", nil, idl.Text())

func status(canisters ...string) api.Status {
	st := api.Status{Version: "test"}
	for _, c := range canisters {
		st.Canisters = append(st.Canisters, api.CanisterInfo{ID: c, Service: "Ping"})
	}
	return st
}

// newProvider returns a provider dialing node, and a counter of closed
// connections.
func newProvider(t *testing.T, node api.ReplicaAPI, j journal.Journal) (*LocalProvider, *int) {
	closed := new(int)
	dial := func(ctx context.Context, host string) (api.ReplicaAPI, jsonrpc.ClientCloser, error) {
		return node, func() { *closed++ }, nil
	}
	p, err := NewLocalProvider(testIdentity, dial, "", j)
	require.NoError(t, err)
	return p, closed
}

func TestAbsentProviderDetectedBeforeConnect(t *testing.T) {
	var s Slot
	require.False(t, s.Available())
	p, ok := s.Get()
	require.False(t, ok)
	require.Nil(t, p)

	var typedNil *LocalProvider
	s.Inject(typedNil)
	require.False(t, s.Available(), "a typed nil is not a provider")

	lp, _ := newProvider(t, nil, nil)
	s.Inject(lp)
	got, ok := s.Get()
	require.True(t, ok)
	require.Same(t, lp, got)

	s.Remove()
	require.False(t, s.Available())
}

func TestConnectStacksCallbacks(t *testing.T) {
	ctrl := gomock.NewController(t)
	node := mocks.NewMockReplicaAPI(ctrl)
	node.EXPECT().ReplicaStatus(gomock.Any()).Return(status("tok"), nil)

	p, closed := newProvider(t, node, nil)
	require.Nil(t, p.Agent())
	require.Empty(t, p.PrincipalID())

	var first, second, viaOpts []ConnectionEvent
	unsub := p.OnConnectionUpdate(func(e ConnectionEvent) { first = append(first, e) })
	p.OnConnectionUpdate(func(e ConnectionEvent) { second = append(second, e) })

	ok, err := p.Connect(context.Background(), ConnectOptions{
		Host:               "http://replica",
		OnConnectionUpdate: func(e ConnectionEvent) { viaOpts = append(viaOpts, e) },
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, p.Agent())
	require.Equal(t, testIdentity.String(), p.PrincipalID())

	want := ConnectionEvent{Connected: true, Host: "http://replica", Principal: testIdentity.String()}
	require.Equal(t, []ConnectionEvent{want}, first)
	require.Equal(t, []ConnectionEvent{want}, second)
	require.Equal(t, []ConnectionEvent{want}, viaOpts)

	unsub()
	require.NoError(t, p.Disconnect(context.Background()))
	require.Len(t, first, 1)
	require.Len(t, second, 2)
	require.False(t, second[1].Connected)
	require.Equal(t, 1, *closed)

	require.Nil(t, p.Agent())
	require.Empty(t, p.AccountID())
	_, err = p.GetPrincipal(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestFailedConnectKeepsNoCallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	node := mocks.NewMockReplicaAPI(ctrl)
	gomock.InOrder(
		node.EXPECT().ReplicaStatus(gomock.Any()).Return(api.Status{}, xerrors.New("replica down")).Times(2),
		node.EXPECT().ReplicaStatus(gomock.Any()).Return(status("tok"), nil),
	)

	p, closed := newProvider(t, node, nil)

	var events []ConnectionEvent
	opts := ConnectOptions{
		Host:               "http://replica",
		OnConnectionUpdate: func(e ConnectionEvent) { events = append(events, e) },
	}
	for i := 0; i < 2; i++ {
		ok, err := p.Connect(context.Background(), opts)
		require.Error(t, err)
		require.False(t, ok)
	}
	require.Empty(t, events)
	require.Equal(t, 2, *closed)

	ok, err := p.Connect(context.Background(), opts)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, events, 1)
	require.True(t, events[0].Connected)
}

func TestWhitelist(t *testing.T) {
	ctrl := gomock.NewController(t)
	node := mocks.NewMockReplicaAPI(ctrl)
	node.EXPECT().ReplicaStatus(gomock.Any()).Return(status("tok", "sale"), nil)

	p, _ := newProvider(t, node, nil)

	_, err := p.CreateActor("tok", pingService)
	require.ErrorIs(t, err, ErrNotConnected)

	ok, err := p.Connect(context.Background(), ConnectOptions{Whitelist: []string{"tok"}})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = p.CreateActor("sale", pingService)
	var nw *NotWhitelistedError
	require.True(t, xerrors.As(err, &nw))
	require.Equal(t, "sale", nw.Canister)
	require.False(t, p.Allowed("sale"))

	a, err := p.CreateActor("tok", pingService)
	require.NoError(t, err)
	b, err := p.CreateActor("tok", pingService)
	require.NoError(t, err)
	require.Same(t, a, b, "handles are cached per canister and interface")
}

func TestConnectTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	node := mocks.NewMockReplicaAPI(ctrl)
	node.EXPECT().ReplicaStatus(gomock.Any()).DoAndReturn(func(ctx context.Context) (api.Status, error) {
		<-ctx.Done()
		return api.Status{}, ctx.Err()
	})

	p, closed := newProvider(t, node, nil)
	ok, err := p.Connect(context.Background(), ConnectOptions{Timeout: 20 * time.Millisecond})
	require.False(t, ok)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, *closed)
	require.Nil(t, p.Agent())
}

func TestConnectJournalsAndAccountID(t *testing.T) {
	ctrl := gomock.NewController(t)
	node := mocks.NewMockReplicaAPI(ctrl)
	node.EXPECT().ReplicaStatus(gomock.Any()).Return(status(), nil)

	j := journal.NewMemJournal(nil, 0)
	p, _ := newProvider(t, node, j)

	_, err := p.Connect(context.Background(), ConnectOptions{})
	require.NoError(t, err)

	acc, err := p.RequestAccountID(context.Background())
	require.NoError(t, err)
	want, err := principal.AccountIdentifier(testIdentity, nil)
	require.NoError(t, err)
	require.Equal(t, want, acc)
	require.Equal(t, want, p.AccountID())

	evts := j.Events()
	require.Len(t, evts, 1)
	require.Equal(t, "wallet:connection", evts[0].EventType.String())
	require.Equal(t, ConnectionRecord{Connected: true, Host: DefaultHost, Principal: testIdentity.String()}, evts[0].Data)
}

func TestAdapterForwardsAsWalletPrincipal(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	node := mocks.NewMockReplicaAPI(ctrl)
	node.EXPECT().ReplicaStatus(gomock.Any()).Return(status("tok"), nil)
	node.EXPECT().ReplicaQuery(gomock.Any(), api.CallRequest{
		Canister: "tok",
		Method:   "ping",
		Arg:      []byte{0x80},
		Sender:   testIdentity.String(),
	}).Return(&api.CallReply{Reply: []byte{0x62, 'h', 'i'}}, nil)

	p, _ := newProvider(t, node, nil)
	ad := &APIAdapter{P: p}

	_, err := ad.WalletQuery(ctx, api.CallRequest{Canister: "tok", Method: "ping", Arg: []byte{0x80}})
	require.ErrorIs(t, err, ErrNotConnected)

	ok, err := ad.WalletConnect(ctx, api.ConnectRequest{Whitelist: []string{"tok"}})
	require.NoError(t, err)
	require.True(t, ok)

	rep, err := ad.WalletQuery(ctx, api.CallRequest{Canister: "tok", Method: "ping", Arg: []byte{0x80}})
	require.NoError(t, err)
	require.Equal(t, []byte{0x62, 'h', 'i'}, rep.Reply)

	_, err = ad.WalletUpdate(ctx, api.CallRequest{Canister: "other", Method: "ping"})
	var nw *NotWhitelistedError
	require.True(t, xerrors.As(err, &nw))

	pr, err := ad.WalletPrincipal(ctx)
	require.NoError(t, err)
	require.True(t, pr.Equals(testIdentity))
}
