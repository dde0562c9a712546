package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/hannahhoward/go-pubsub"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/agent"
	"github.com/canlink-project/canlink/principal"
)

var log = logging.Logger("wallet")

var ErrNotConnected = xerrors.New("wallet provider is not connected")

// NotWhitelistedError is returned by CreateActor for a canister outside the
// whitelist given to Connect.
type NotWhitelistedError struct {
	Canister string
}

func (e *NotWhitelistedError) Error() string {
	return fmt.Sprintf("canister %s is not whitelisted", e.Canister)
}

type ConnectOptions struct {
	// Whitelist restricts CreateActor to these canisters. Empty means any.
	Whitelist []string
	// Host overrides the provider's default replica endpoint.
	Host string
	// Timeout bounds the connection handshake. Zero means the caller's
	// context alone.
	Timeout time.Duration
	// OnConnectionUpdate is subscribed like any OnConnectionUpdate callback.
	OnConnectionUpdate func(ConnectionEvent)
}

// ConnectionEvent is delivered to connection-state subscribers.
type ConnectionEvent struct {
	Connected bool
	Host      string
	Principal string
}

type Unsubscribe = pubsub.Unsubscribe

// Provider is the capability set of a wallet: an identity plus the means to
// build actors that call as that identity.
//
// A Provider may be absent altogether; see Slot.
type Provider interface {
	// Agent returns the agent calls go through, or nil while disconnected.
	Agent() agent.Agent
	// CreateActor builds a handle without I/O. Its calls are what block.
	CreateActor(canister string, svc *actor.Service) (*actor.Actor, error)

	Connect(ctx context.Context, opts ConnectOptions) (bool, error)
	IsConnected(ctx context.Context) (bool, error)
	Disconnect(ctx context.Context) error

	GetPrincipal(ctx context.Context) (principal.Principal, error)
	RequestAccountID(ctx context.Context) (string, error)

	// PrincipalID and AccountID are the raw text forms, empty until
	// connected.
	PrincipalID() string
	AccountID() string

	// OnConnectionUpdate subscribes cb to connection-state changes.
	// Callbacks stack; each returned Unsubscribe removes only its own.
	OnConnectionUpdate(cb func(ConnectionEvent)) Unsubscribe
}
