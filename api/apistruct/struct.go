package apistruct

import (
	"context"

	"github.com/ipfs/go-cid"

	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/principal"
)

// ReplicaStruct implements api.ReplicaAPI by forwarding to its func fields.
// The perm tags mark queries as read and updates as write.
type ReplicaStruct struct {
	Internal struct {
		ReplicaQuery     func(ctx context.Context, req api.CallRequest) (*api.CallReply, error) `perm:"read"`
		ReplicaCall      func(ctx context.Context, req api.CallRequest) (*api.CallReply, error) `perm:"write"`
		ReplicaInterface func(ctx context.Context, canister string) (cid.Cid, error)            `perm:"read"`
		ReplicaStatus    func(ctx context.Context) (api.Status, error)                          `perm:"read"`
	}
}

type WalletStruct struct {
	Internal struct {
		WalletConnect     func(ctx context.Context, req api.ConnectRequest) (bool, error)        `perm:"sign"`
		WalletIsConnected func(ctx context.Context) (bool, error)                                `perm:"read"`
		WalletDisconnect  func(ctx context.Context) error                                        `perm:"sign"`
		WalletPrincipal   func(ctx context.Context) (principal.Principal, error)                 `perm:"read"`
		WalletAccountID   func(ctx context.Context) (string, error)                              `perm:"read"`
		WalletQuery       func(ctx context.Context, req api.CallRequest) (*api.CallReply, error) `perm:"sign"`
		WalletUpdate      func(ctx context.Context, req api.CallRequest) (*api.CallReply, error) `perm:"sign"`
		WalletInterface   func(ctx context.Context, canister string) (cid.Cid, error)            `perm:"read"`
	}
}

func (c *ReplicaStruct) ReplicaQuery(ctx context.Context, req api.CallRequest) (*api.CallReply, error) {
	return c.Internal.ReplicaQuery(ctx, req)
}

func (c *ReplicaStruct) ReplicaCall(ctx context.Context, req api.CallRequest) (*api.CallReply, error) {
	return c.Internal.ReplicaCall(ctx, req)
}

func (c *ReplicaStruct) ReplicaInterface(ctx context.Context, canister string) (cid.Cid, error) {
	return c.Internal.ReplicaInterface(ctx, canister)
}

func (c *ReplicaStruct) ReplicaStatus(ctx context.Context) (api.Status, error) {
	return c.Internal.ReplicaStatus(ctx)
}

func (c *WalletStruct) WalletConnect(ctx context.Context, req api.ConnectRequest) (bool, error) {
	return c.Internal.WalletConnect(ctx, req)
}

func (c *WalletStruct) WalletIsConnected(ctx context.Context) (bool, error) {
	return c.Internal.WalletIsConnected(ctx)
}

func (c *WalletStruct) WalletDisconnect(ctx context.Context) error {
	return c.Internal.WalletDisconnect(ctx)
}

func (c *WalletStruct) WalletPrincipal(ctx context.Context) (principal.Principal, error) {
	return c.Internal.WalletPrincipal(ctx)
}

func (c *WalletStruct) WalletAccountID(ctx context.Context) (string, error) {
	return c.Internal.WalletAccountID(ctx)
}

func (c *WalletStruct) WalletQuery(ctx context.Context, req api.CallRequest) (*api.CallReply, error) {
	return c.Internal.WalletQuery(ctx, req)
}

func (c *WalletStruct) WalletUpdate(ctx context.Context, req api.CallRequest) (*api.CallReply, error) {
	return c.Internal.WalletUpdate(ctx, req)
}

func (c *WalletStruct) WalletInterface(ctx context.Context, canister string) (cid.Cid, error) {
	return c.Internal.WalletInterface(ctx, canister)
}

var _ api.ReplicaAPI = &ReplicaStruct{}
var _ api.WalletAPI = &WalletStruct{}
