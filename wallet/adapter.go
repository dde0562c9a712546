package wallet

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/agent"
	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/principal"
)

// APIAdapter serves a Provider as api.WalletAPI so that a wallet daemon can
// expose it over JSON-RPC.
type APIAdapter struct {
	P Provider
}

var _ api.WalletAPI = (*APIAdapter)(nil)

// whitelister is implemented by providers that restrict the canisters they
// will call for others.
type whitelister interface {
	Allowed(canister string) bool
}

func (a *APIAdapter) WalletConnect(ctx context.Context, req api.ConnectRequest) (bool, error) {
	return a.P.Connect(ctx, ConnectOptions{
		Whitelist: req.Whitelist,
		Host:      req.Host,
		Timeout:   time.Duration(req.Timeout),
	})
}

func (a *APIAdapter) WalletIsConnected(ctx context.Context) (bool, error) {
	return a.P.IsConnected(ctx)
}

func (a *APIAdapter) WalletDisconnect(ctx context.Context) error {
	return a.P.Disconnect(ctx)
}

func (a *APIAdapter) WalletPrincipal(ctx context.Context) (principal.Principal, error) {
	return a.P.GetPrincipal(ctx)
}

func (a *APIAdapter) WalletAccountID(ctx context.Context) (string, error) {
	return a.P.RequestAccountID(ctx)
}

func (a *APIAdapter) WalletQuery(ctx context.Context, req api.CallRequest) (*api.CallReply, error) {
	ag, err := a.agentFor(req.Canister)
	if err != nil {
		return nil, err
	}
	reply, err := ag.Query(ctx, req.Canister, req.Method, req.Arg)
	if err != nil {
		return nil, err
	}
	return &api.CallReply{Reply: reply}, nil
}

func (a *APIAdapter) WalletUpdate(ctx context.Context, req api.CallRequest) (*api.CallReply, error) {
	ag, err := a.agentFor(req.Canister)
	if err != nil {
		return nil, err
	}
	reply, err := ag.Update(ctx, req.Canister, req.Method, req.Arg)
	if err != nil {
		return nil, err
	}
	return &api.CallReply{Reply: reply}, nil
}

func (a *APIAdapter) WalletInterface(ctx context.Context, canister string) (cid.Cid, error) {
	ag, err := a.agentFor(canister)
	if err != nil {
		return cid.Undef, err
	}
	return ag.Interface(ctx, canister)
}

func (a *APIAdapter) agentFor(canister string) (agent.Agent, error) {
	if w, ok := a.P.(whitelister); ok && !w.Allowed(canister) {
		return nil, &NotWhitelistedError{Canister: canister}
	}
	ag := a.P.Agent()
	if ag == nil {
		return nil, xerrors.Errorf("forwarding call to %s: %w", canister, ErrNotConnected)
	}
	return ag, nil
}
