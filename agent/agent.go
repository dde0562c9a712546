// Package agent carries encoded calls to a replica.
package agent

import (
	"context"

	"github.com/ipfs/go-cid"
)

// Agent dispatches already-encoded calls. Implementations must not retry
// updates; a failed update may still have been applied.
type Agent interface {
	Query(ctx context.Context, canister, method string, arg []byte) ([]byte, error)
	Update(ctx context.Context, canister, method string, arg []byte) ([]byte, error)

	// Interface returns the fingerprint of the interface a canister serves.
	Interface(ctx context.Context, canister string) (cid.Cid, error)
}
