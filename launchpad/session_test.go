package launchpad_test

import (
	"context"
	"math"
	"testing"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/require"

	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/launchpad"
	"github.com/canlink-project/canlink/launchpad/mock"
	"github.com/canlink-project/canlink/principal"
	"github.com/canlink-project/canlink/replica"
	"github.com/canlink-project/canlink/wallet"
)

var user = principal.SelfAuthenticating([]byte("launchpad-user"))

var canisters = launchpad.Canisters{
	TokenFactory:  "tokens",
	SaleManager:   "sales",
	AgentRegistry: "agents",
}

func newSession(t *testing.T) *launchpad.Session {
	ctx := context.Background()

	r := replica.New(nil)
	c := mock.New(dssync.MutexWrap(datastore.NewMapDatastore()))
	require.NoError(t, r.Install(string(canisters.TokenFactory), launchpad.TokenFactory, c.Tokens))
	require.NoError(t, r.Install(string(canisters.SaleManager), launchpad.SaleManager, c.Sales))
	require.NoError(t, r.Install(string(canisters.AgentRegistry), launchpad.AgentRegistry, c.Agents))

	dial := func(ctx context.Context, host string) (api.ReplicaAPI, jsonrpc.ClientCloser, error) {
		return r, func() {}, nil
	}
	p, err := wallet.NewLocalProvider(user, dial, "", nil)
	require.NoError(t, err)

	var slot wallet.Slot
	slot.Inject(p)
	prov, ok := slot.Get()
	require.True(t, ok)

	connected, err := prov.Connect(ctx, wallet.ConnectOptions{})
	require.NoError(t, err)
	require.True(t, connected)

	s, err := launchpad.NewSession(prov, canisters)
	require.NoError(t, err)
	require.NoError(t, s.Verify(ctx))
	return s
}

func gold() launchpad.TokenConfig {
	return launchpad.TokenConfig{
		Name:        "Gold",
		Symbol:      "GLD",
		Decimals:    8,
		TotalSupply: 21_000_000,
		Description: idl.Some("shiny"),
	}
}

func TestEmptyStateListsAreEmpty(t *testing.T) {
	ov, err := newSession(t).Overview(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ov.Tokens)
	require.Empty(t, ov.Tokens)
	require.NotNil(t, ov.Sales)
	require.NotNil(t, ov.Agents)
}

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	res, err := s.Tokens.CreateToken(ctx, gold())
	require.NoError(t, err)
	id, ok := res.Ok()
	require.True(t, ok)

	// duplicate symbol comes back unchanged as an err value
	res, err = s.Tokens.CreateToken(ctx, gold())
	require.NoError(t, err)
	msg, isErr := res.Err()
	require.True(t, isErr)
	require.Equal(t, mock.ErrTokenExists, msg)

	got, err := s.Tokens.GetToken(ctx, id)
	require.NoError(t, err)
	info, ok := got.Get()
	require.True(t, ok)
	require.Equal(t, gold(), info.TokenConfig)
	require.True(t, info.Owner.Equals(user))

	can, err := s.Tokens.GetTokenCanister(ctx, id)
	require.NoError(t, err)
	require.True(t, can.IsSome())

	missing, err := s.Tokens.GetToken(ctx, "tok-404")
	require.NoError(t, err)
	require.False(t, missing.IsSome())
	none, err := s.Tokens.GetTokenCanister(ctx, "tok-404")
	require.NoError(t, err)
	require.False(t, none.IsSome())
}

func TestBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	silver := launchpad.TokenConfig{Name: "Silver", Symbol: "SLV"}
	res, err := s.Tokens.CreateTokenBatch(ctx, []launchpad.TokenConfig{silver, gold(), silver})
	require.NoError(t, err)
	require.True(t, res.IsErr())

	list, err := s.Tokens.ListTokens(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	res, err = s.Tokens.CreateTokenBatch(ctx, []launchpad.TokenConfig{silver, gold()})
	require.NoError(t, err)
	ids, ok := res.Ok()
	require.True(t, ok)
	require.Len(t, ids, 2)

	list, err = s.Tokens.ListTokens(ctx)
	require.NoError(t, err)
	require.Equal(t, ids, []launchpad.TokenID{list[0].ID, list[1].ID}, "listed in creation order")
	require.Contains(t, launchpad.TokensByID(list), ids[1])
}

func TestSalesAndAgents(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	tres, err := s.Tokens.CreateToken(ctx, gold())
	require.NoError(t, err)
	tok, _ := tres.Ok()

	sres, err := s.Sales.CreateSale(ctx, launchpad.SaleConfig{Token: "tok-404", Price: 1})
	require.NoError(t, err)
	msg, _ := sres.Err()
	require.Equal(t, mock.ErrTokenNotFound, msg)

	sres, err = s.Sales.CreateSale(ctx, launchpad.SaleConfig{Token: tok, Price: 5, SoftCap: 10, HardCap: 100})
	require.NoError(t, err)
	sale, ok := sres.Ok()
	require.True(t, ok)

	cres, err := s.Sales.Contribute(ctx, sale, 40)
	require.NoError(t, err)
	require.True(t, cres.IsOk())
	cres, err = s.Sales.Contribute(ctx, "sale-404", 1)
	require.NoError(t, err)
	require.True(t, cres.IsErr())

	// the raised amount never wraps around
	cres, err = s.Sales.Contribute(ctx, sale, math.MaxUint64)
	require.NoError(t, err)
	msg, _ = cres.Err()
	require.Equal(t, mock.ErrRaiseOverflow, msg)

	fres, err := s.Sales.FinalizeSale(ctx, sale)
	require.NoError(t, err)
	st, _ := fres.Ok()
	require.Equal(t, launchpad.SaleEnded, st)

	got, err := s.Sales.GetSale(ctx, sale)
	require.NoError(t, err)
	info, ok := got.Get()
	require.True(t, ok)
	require.Equal(t, uint64(40), info.Raised)
	require.Equal(t, launchpad.SaleEnded, info.Status)

	ares, err := s.Agents.RegisterAgent(ctx, launchpad.AgentConfig{Name: "bot", Token: idl.Some[launchpad.TokenID]("tok-404")})
	require.NoError(t, err)
	require.True(t, ares.IsErr())
	ares, err = s.Agents.RegisterAgent(ctx, launchpad.AgentConfig{Name: "bot", Token: idl.Some(tok)})
	require.NoError(t, err)
	agentID, ok := ares.Ok()
	require.True(t, ok)

	ag, err := s.Agents.GetAgent(ctx, agentID)
	require.NoError(t, err)
	require.True(t, ag.IsSome())

	details, err := s.TokenDetails(ctx, tok)
	require.NoError(t, err)
	d, ok := details.Get()
	require.True(t, ok)
	require.Len(t, d.Sales, 1)

	ov, err := s.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, ov.Tokens, 1)
	require.Len(t, ov.Sales, 1)
	require.Len(t, ov.Agents, 1)
	require.Empty(t, ov.ActiveSales())
}

func TestSessionNeedsConnectedProvider(t *testing.T) {
	p, err := wallet.NewLocalProvider(user, nil, "", nil)
	require.NoError(t, err)
	_, err = launchpad.NewSession(p, canisters)
	require.ErrorIs(t, err, wallet.ErrNotConnected)
}
