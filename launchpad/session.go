package launchpad

import (
	"context"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/wallet"
)

// Canisters locates the launchpad services.
type Canisters struct {
	TokenFactory  CanisterID
	SaleManager   CanisterID
	AgentRegistry CanisterID
}

// Session binds the three launchpad clients to one wallet provider.
type Session struct {
	Tokens *TokenFactoryClient
	Sales  *SaleManagerClient
	Agents *AgentRegistryClient
}

// NewSession creates the actors through p. The provider must be connected.
func NewSession(p wallet.Provider, c Canisters) (*Session, error) {
	tf, err := p.CreateActor(string(c.TokenFactory), TokenFactory)
	if err != nil {
		return nil, xerrors.Errorf("token factory actor: %w", err)
	}
	sm, err := p.CreateActor(string(c.SaleManager), SaleManager)
	if err != nil {
		return nil, xerrors.Errorf("sale manager actor: %w", err)
	}
	ar, err := p.CreateActor(string(c.AgentRegistry), AgentRegistry)
	if err != nil {
		return nil, xerrors.Errorf("agent registry actor: %w", err)
	}
	return &Session{
		Tokens: NewTokenFactoryClient(tf),
		Sales:  NewSaleManagerClient(sm),
		Agents: NewAgentRegistryClient(ar),
	}, nil
}

// Verify checks all three canisters serve the expected interfaces.
func (s *Session) Verify(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.Tokens.Actor().Verify(ctx) })
	eg.Go(func() error { return s.Sales.Actor().Verify(ctx) })
	eg.Go(func() error { return s.Agents.Actor().Verify(ctx) })
	return eg.Wait()
}

type Overview struct {
	Tokens []TokenInfo
	Sales  []SaleInfo
	Agents []AgentInfo
}

// ActiveSales returns the sales currently accepting contributions.
func (o *Overview) ActiveSales() []SaleInfo {
	return lo.Filter(o.Sales, func(s SaleInfo, _ int) bool { return s.Status == SaleActive })
}

// Overview lists tokens, sales and agents concurrently.
func (s *Session) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		out.Tokens, err = s.Tokens.ListTokens(ctx)
		return err
	})
	eg.Go(func() (err error) {
		out.Sales, err = s.Sales.ListSales(ctx)
		return err
	})
	eg.Go(func() (err error) {
		out.Agents, err = s.Agents.ListAgents(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

type TokenDetails struct {
	TokenInfo
	Sales []SaleInfo
}

// TokenDetails fetches a token together with its sales. The option is empty
// when the token does not exist.
func (s *Session) TokenDetails(ctx context.Context, id TokenID) (idl.Option[TokenDetails], error) {
	var (
		tok   idl.Option[TokenInfo]
		sales []SaleInfo
	)
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		tok, err = s.Tokens.GetToken(ectx, id)
		return err
	})
	eg.Go(func() (err error) {
		sales, err = s.Sales.ListSalesByToken(ectx, id)
		return err
	})
	if err := eg.Wait(); err != nil {
		return idl.None[TokenDetails](), err
	}
	return idl.MapOption(tok, func(t TokenInfo) (TokenDetails, error) {
		return TokenDetails{TokenInfo: t, Sales: sales}, nil
	})
}

// TokensByID indexes a token list.
func TokensByID(ts []TokenInfo) map[TokenID]TokenInfo {
	return lo.KeyBy(ts, func(t TokenInfo) TokenID { return t.ID })
}
