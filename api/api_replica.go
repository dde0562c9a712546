package api

import (
	"context"

	"github.com/ipfs/go-cid"
)

//go:generate go run github.com/golang/mock/mockgen -destination=mocks/mock_api.go -package=mocks . ReplicaAPI,WalletAPI

// ReplicaAPI is served by a replica node. Queries are answered from local
// state; calls are ordered by the replica before being executed.
//
// MethodGroup: Replica
type ReplicaAPI interface {
	// ReplicaQuery runs a read-only method. Update methods are refused with
	// ErrModeMismatch.
	ReplicaQuery(ctx context.Context, req CallRequest) (*CallReply, error) //perm:read
	// ReplicaCall runs any method as an update.
	ReplicaCall(ctx context.Context, req CallRequest) (*CallReply, error) //perm:write
	// ReplicaInterface returns the interface fingerprint of a canister.
	ReplicaInterface(ctx context.Context, canister string) (cid.Cid, error) //perm:read
	ReplicaStatus(ctx context.Context) (Status, error)                      //perm:read
}
