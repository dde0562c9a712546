package api

import (
	"context"

	"github.com/ipfs/go-cid"

	"github.com/canlink-project/canlink/principal"
)

// WalletAPI is served by a wallet daemon holding the user's identity. Calls
// made through it are sent to the replica under the wallet's principal.
//
// MethodGroup: Wallet
type WalletAPI interface {
	WalletConnect(ctx context.Context, req ConnectRequest) (bool, error) //perm:sign
	WalletIsConnected(ctx context.Context) (bool, error)                 //perm:read
	WalletDisconnect(ctx context.Context) error                          //perm:sign

	WalletPrincipal(ctx context.Context) (principal.Principal, error) //perm:read
	WalletAccountID(ctx context.Context) (string, error)              //perm:read

	// WalletQuery and WalletUpdate forward an encoded call to the replica,
	// stamped with the wallet principal.
	WalletQuery(ctx context.Context, req CallRequest) (*CallReply, error)  //perm:sign
	WalletUpdate(ctx context.Context, req CallRequest) (*CallReply, error) //perm:sign
	WalletInterface(ctx context.Context, canister string) (cid.Cid, error) //perm:read
}
