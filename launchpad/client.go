package launchpad

import (
	"context"

	"github.com/samber/lo"

	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/idl"
)

// The typed clients below return the application outcome as a value. A
// non-nil error always means the call itself failed (transport, argument
// or decoding); it is never an `err` result.

func callResult[T any](ctx context.Context, a *actor.Actor, conv func(idl.Value) (T, error), method string, args ...idl.Value) (idl.Result[T], error) {
	v, err := a.Call(ctx, method, args...)
	if err != nil {
		return idl.Result[T]{}, err
	}
	return idl.ResultFromValue(v, conv)
}

func callOption[T any](ctx context.Context, a *actor.Actor, conv func(idl.Value) (T, error), method string, args ...idl.Value) (idl.Option[T], error) {
	v, err := a.Call(ctx, method, args...)
	if err != nil {
		return idl.None[T](), err
	}
	return idl.OptionFromValue(v, conv)
}

func callList[T any](ctx context.Context, a *actor.Actor, conv func(idl.Value) (T, error), method string, args ...idl.Value) ([]T, error) {
	v, err := a.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return idl.FromValues(v, conv)
}

type TokenFactoryClient struct {
	a *actor.Actor
}

func NewTokenFactoryClient(a *actor.Actor) *TokenFactoryClient {
	return &TokenFactoryClient{a: a}
}

func (c *TokenFactoryClient) Actor() *actor.Actor { return c.a }

func (c *TokenFactoryClient) CreateToken(ctx context.Context, cfg TokenConfig) (idl.Result[TokenID], error) {
	return callResult(ctx, c.a, AsTokenID, "createToken", cfg.Value())
}

func (c *TokenFactoryClient) CreateTokenBatch(ctx context.Context, cfgs []TokenConfig) (idl.Result[[]TokenID], error) {
	batch := lo.Map(cfgs, func(c TokenConfig, _ int) idl.Value { return c.Value() })
	return callResult(ctx, c.a, func(v idl.Value) ([]TokenID, error) {
		return idl.FromValues(v, AsTokenID)
	}, "createTokenBatch", batch)
}

func (c *TokenFactoryClient) GetToken(ctx context.Context, id TokenID) (idl.Option[TokenInfo], error) {
	return callOption(ctx, c.a, AsTokenInfo, "getToken", string(id))
}

func (c *TokenFactoryClient) ListTokens(ctx context.Context) ([]TokenInfo, error) {
	return callList(ctx, c.a, AsTokenInfo, "listTokens")
}

func (c *TokenFactoryClient) GetTokenCanister(ctx context.Context, id TokenID) (idl.Option[CanisterID], error) {
	return callOption(ctx, c.a, AsCanisterID, "getTokenCanister", string(id))
}

type SaleManagerClient struct {
	a *actor.Actor
}

func NewSaleManagerClient(a *actor.Actor) *SaleManagerClient {
	return &SaleManagerClient{a: a}
}

func (c *SaleManagerClient) Actor() *actor.Actor { return c.a }

func (c *SaleManagerClient) CreateSale(ctx context.Context, cfg SaleConfig) (idl.Result[SaleID], error) {
	return callResult(ctx, c.a, AsSaleID, "createSale", cfg.Value())
}

func (c *SaleManagerClient) GetSale(ctx context.Context, id SaleID) (idl.Option[SaleInfo], error) {
	return callOption(ctx, c.a, AsSaleInfo, "getSale", string(id))
}

func (c *SaleManagerClient) ListSales(ctx context.Context) ([]SaleInfo, error) {
	return callList(ctx, c.a, AsSaleInfo, "listSales")
}

func (c *SaleManagerClient) ListSalesByToken(ctx context.Context, id TokenID) ([]SaleInfo, error) {
	return callList(ctx, c.a, AsSaleInfo, "listSalesByToken", string(id))
}

func (c *SaleManagerClient) Contribute(ctx context.Context, id SaleID, amount uint64) (idl.Result[idl.Unit], error) {
	return callResult(ctx, c.a, idl.AsUnit, "contribute", string(id), amount)
}

func (c *SaleManagerClient) FinalizeSale(ctx context.Context, id SaleID) (idl.Result[SaleStatus], error) {
	return callResult(ctx, c.a, AsSaleStatus, "finalizeSale", string(id))
}

type AgentRegistryClient struct {
	a *actor.Actor
}

func NewAgentRegistryClient(a *actor.Actor) *AgentRegistryClient {
	return &AgentRegistryClient{a: a}
}

func (c *AgentRegistryClient) Actor() *actor.Actor { return c.a }

func (c *AgentRegistryClient) RegisterAgent(ctx context.Context, cfg AgentConfig) (idl.Result[AgentID], error) {
	return callResult(ctx, c.a, AsAgentID, "registerAgent", cfg.Value())
}

func (c *AgentRegistryClient) ListAgents(ctx context.Context) ([]AgentInfo, error) {
	return callList(ctx, c.a, AsAgentInfo, "listAgents")
}

func (c *AgentRegistryClient) GetAgent(ctx context.Context, id AgentID) (idl.Option[AgentInfo], error) {
	return callOption(ctx, c.a, AsAgentInfo, "getAgent", string(id))
}
