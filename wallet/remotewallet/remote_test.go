package remotewallet

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/api/mocks"
	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/principal"
	"github.com/canlink-project/canlink/wallet"
)

var daemonIdentity = principal.SelfAuthenticating([]byte("daemon-key"))

func TestRemoteWalletCalls(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	wapi := mocks.NewMockWalletAPI(ctrl)

	rw, err := FromAPI(wapi)
	require.NoError(t, err)
	require.Nil(t, rw.Agent())

	svc := actor.NewService("Ping").Query("ping", nil, idl.Text())
	_, err = rw.CreateActor("tok", svc)
	require.ErrorIs(t, err, wallet.ErrNotConnected)

	wapi.EXPECT().WalletConnect(gomock.Any(), api.ConnectRequest{Whitelist: []string{"tok"}}).Return(true, nil)
	wapi.EXPECT().WalletPrincipal(gomock.Any()).Return(daemonIdentity, nil)
	wapi.EXPECT().WalletAccountID(gomock.Any()).Return("acc", nil)

	var events []wallet.ConnectionEvent
	ok, err := rw.Connect(ctx, wallet.ConnectOptions{
		Whitelist:          []string{"tok"},
		OnConnectionUpdate: func(e wallet.ConnectionEvent) { events = append(events, e) },
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, daemonIdentity.String(), rw.PrincipalID())
	require.Equal(t, "acc", rw.AccountID())
	require.Len(t, events, 1)

	_, err = rw.CreateActor("sale", svc)
	var nw *wallet.NotWhitelistedError
	require.True(t, xerrors.As(err, &nw))

	a, err := rw.CreateActor("tok", svc)
	require.NoError(t, err)

	reply, err := idl.Encode(idl.Text(), "pong")
	require.NoError(t, err)
	arg, err := idl.EncodeArgs(nil, nil)
	require.NoError(t, err)
	wapi.EXPECT().WalletQuery(gomock.Any(), api.CallRequest{Canister: "tok", Method: "ping", Arg: arg}).
		Return(&api.CallReply{Reply: reply}, nil)

	v, err := a.Call(ctx, "ping")
	require.NoError(t, err)
	require.Equal(t, "pong", v)

	// the daemon dropped its connection behind our back
	wapi.EXPECT().WalletIsConnected(gomock.Any()).Return(false, nil)
	ok, err = rw.IsConnected(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.Len(t, events, 2)
	require.False(t, events[1].Connected)
	require.Nil(t, rw.Agent())
	require.Empty(t, rw.PrincipalID())
}

func TestRemoteWalletRefused(t *testing.T) {
	ctrl := gomock.NewController(t)
	wapi := mocks.NewMockWalletAPI(ctrl)
	wapi.EXPECT().WalletConnect(gomock.Any(), gomock.Any()).Return(false, nil)

	rw, err := FromAPI(wapi)
	require.NoError(t, err)

	fired := 0
	rw.OnConnectionUpdate(func(wallet.ConnectionEvent) { fired++ })

	ok, err := rw.Connect(context.Background(), wallet.ConnectOptions{})
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, fired, "state did not change")
}

func TestRemoteWalletRetryKeepsOneCallback(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	wapi := mocks.NewMockWalletAPI(ctrl)
	gomock.InOrder(
		wapi.EXPECT().WalletConnect(gomock.Any(), gomock.Any()).Return(false, xerrors.New("daemon down")),
		wapi.EXPECT().WalletConnect(gomock.Any(), gomock.Any()).Return(false, nil),
		wapi.EXPECT().WalletConnect(gomock.Any(), gomock.Any()).Return(true, nil),
	)
	wapi.EXPECT().WalletPrincipal(gomock.Any()).Return(daemonIdentity, nil)
	wapi.EXPECT().WalletAccountID(gomock.Any()).Return("acc", nil)

	rw, err := FromAPI(wapi)
	require.NoError(t, err)

	fired := 0
	opts := wallet.ConnectOptions{OnConnectionUpdate: func(wallet.ConnectionEvent) { fired++ }}

	_, err = rw.Connect(ctx, opts)
	require.Error(t, err)
	ok, err := rw.Connect(ctx, opts)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = rw.Connect(ctx, opts)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, fired)
}
