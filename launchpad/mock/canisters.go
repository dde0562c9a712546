// Package mock implements the launchpad services for the development
// replica. The canisters store what they are given; they validate only what
// is needed to answer with an `err` result (duplicate symbols, unknown ids).
package mock

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/ipfs/go-datastore"
	logging "github.com/ipfs/go-log/v2"
	"github.com/samber/lo"

	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/build"
	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/launchpad"
)

var log = logging.Logger("launchpad-mock")

const (
	ErrTokenExists   = "Token already exists"
	ErrTokenNotFound = "Token not found"
	ErrSaleNotFound  = "Sale not found"
	ErrRaiseOverflow = "Contribution overflows raised amount"
)

func ok(v idl.Value) idl.Value  { return idl.V(idl.ResultOkTag, v) }
func fail(msg string) idl.Value { return idl.V(idl.ResultErrTag, msg) }

// Canisters is the set of launchpad canisters sharing one datastore.
type Canisters struct {
	Tokens *TokenFactory
	Sales  *SaleManager
	Agents *AgentRegistry
}

func New(ds datastore.Datastore) *Canisters {
	tf := &TokenFactory{
		tokens: newStore(ds, "tokens", launchpad.TokenInfoType, "tok"),
		seq:    newStore(ds, "ledgers", idl.Null(), "ledger"),
	}
	return &Canisters{
		Tokens: tf,
		Sales: &SaleManager{
			tokens: tf,
			sales:  newStore(ds, "sales", launchpad.SaleInfoType, "sale"),
		},
		Agents: &AgentRegistry{
			tokens: tf,
			agents: newStore(ds, "agents", launchpad.AgentInfoType, "agent"),
		},
	}
}

type TokenFactory struct {
	lk     sync.Mutex
	tokens *store
	seq    *store
}

var _ actor.Invokee = (*TokenFactory)(nil)

func (tf *TokenFactory) Exports() map[string]actor.Handler {
	return map[string]actor.Handler{
		"createToken":      tf.createToken,
		"createTokenBatch": tf.createTokenBatch,
		"getToken":         tf.getToken,
		"listTokens":       tf.listTokens,
		"getTokenCanister": tf.getTokenCanister,
	}
}

func (tf *TokenFactory) all(ctx context.Context) ([]launchpad.TokenInfo, error) {
	vs, err := tf.tokens.list(ctx)
	if err != nil {
		return nil, err
	}
	return idl.FromValues(vs, launchpad.AsTokenInfo)
}

func (tf *TokenFactory) lookup(ctx context.Context, id launchpad.TokenID) (idl.Option[launchpad.TokenInfo], error) {
	v, err := tf.tokens.get(ctx, string(id))
	if err != nil || v == nil {
		return idl.None[launchpad.TokenInfo](), err
	}
	t, err := launchpad.AsTokenInfo(v)
	if err != nil {
		return idl.None[launchpad.TokenInfo](), err
	}
	return idl.Some(t), nil
}

func (tf *TokenFactory) exists(ctx context.Context, id launchpad.TokenID) (bool, error) {
	t, err := tf.lookup(ctx, id)
	return t.IsSome(), err
}

// create stores the configs as new tokens. Either every config is accepted
// or none is.
func (tf *TokenFactory) create(ctx context.Context, cc actor.CallContext, cfgs []launchpad.TokenConfig) (idl.Value, error) {
	tf.lk.Lock()
	defer tf.lk.Unlock()

	existing, err := tf.all(ctx)
	if err != nil {
		return nil, err
	}
	symbols := lo.SliceToMap(existing, func(t launchpad.TokenInfo) (string, struct{}) {
		return strings.ToUpper(t.Symbol), struct{}{}
	})
	for _, c := range cfgs {
		sym := strings.ToUpper(c.Symbol)
		if _, dup := symbols[sym]; dup {
			return fail(ErrTokenExists), nil
		}
		symbols[sym] = struct{}{}
	}

	ids := make([]idl.Value, 0, len(cfgs))
	for _, c := range cfgs {
		id, err := tf.tokens.nextID(ctx)
		if err != nil {
			return nil, err
		}
		ledger, err := tf.seq.nextID(ctx)
		if err != nil {
			return nil, err
		}
		info := launchpad.TokenInfo{
			ID:          launchpad.TokenID(id),
			TokenConfig: c,
			Owner:       cc.Sender,
			Canister:    idl.Some(launchpad.CanisterID(ledger)),
			CreatedAt:   build.Clock.Now().UnixNano(),
		}
		if err := tf.tokens.put(ctx, id, info.Value()); err != nil {
			return nil, err
		}
		log.Infow("token created", "id", id, "symbol", c.Symbol, "owner", cc.Sender)
		ids = append(ids, id)
	}
	return ids, nil
}

func (tf *TokenFactory) createToken(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	cfg, err := launchpad.AsTokenConfig(args[0])
	if err != nil {
		return nil, err
	}
	res, err := tf.create(ctx, cc, []launchpad.TokenConfig{cfg})
	if err != nil {
		return nil, err
	}
	if ids, isOk := res.([]idl.Value); isOk {
		return ok(ids[0]), nil
	}
	return res, nil
}

func (tf *TokenFactory) createTokenBatch(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	cfgs, err := idl.FromValues(args[0], launchpad.AsTokenConfig)
	if err != nil {
		return nil, err
	}
	res, err := tf.create(ctx, cc, cfgs)
	if err != nil {
		return nil, err
	}
	if ids, isOk := res.([]idl.Value); isOk {
		return ok(ids), nil
	}
	return res, nil
}

func (tf *TokenFactory) getToken(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	t, err := tf.lookup(ctx, launchpad.TokenID(args[0].(string)))
	if err != nil {
		return nil, err
	}
	return idl.OptionOf(t, launchpad.TokenInfo.Value), nil
}

func (tf *TokenFactory) listTokens(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	return tf.tokens.list(ctx)
}

func (tf *TokenFactory) getTokenCanister(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	t, err := tf.lookup(ctx, launchpad.TokenID(args[0].(string)))
	if err != nil {
		return nil, err
	}
	info, found := t.Get()
	if !found {
		return idl.None[idl.Value](), nil
	}
	return idl.OptionOf(info.Canister, func(c launchpad.CanisterID) idl.Value { return string(c) }), nil
}

type SaleManager struct {
	lk     sync.Mutex
	tokens *TokenFactory
	sales  *store
}

var _ actor.Invokee = (*SaleManager)(nil)

func (sm *SaleManager) Exports() map[string]actor.Handler {
	return map[string]actor.Handler{
		"createSale":       sm.createSale,
		"getSale":          sm.getSale,
		"listSales":        sm.listSales,
		"listSalesByToken": sm.listSalesByToken,
		"contribute":       sm.contribute,
		"finalizeSale":     sm.finalizeSale,
	}
}

func (sm *SaleManager) lookup(ctx context.Context, id string) (*launchpad.SaleInfo, error) {
	v, err := sm.sales.get(ctx, id)
	if err != nil || v == nil {
		return nil, err
	}
	s, err := launchpad.AsSaleInfo(v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (sm *SaleManager) createSale(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	cfg, err := launchpad.AsSaleConfig(args[0])
	if err != nil {
		return nil, err
	}

	sm.lk.Lock()
	defer sm.lk.Unlock()

	found, err := sm.tokens.exists(ctx, cfg.Token)
	if err != nil {
		return nil, err
	}
	if !found {
		return fail(ErrTokenNotFound), nil
	}

	id, err := sm.sales.nextID(ctx)
	if err != nil {
		return nil, err
	}
	info := launchpad.SaleInfo{
		ID:         launchpad.SaleID(id),
		SaleConfig: cfg,
		Status:     launchpad.SaleUpcoming,
		Creator:    cc.Sender,
	}
	if err := sm.sales.put(ctx, id, info.Value()); err != nil {
		return nil, err
	}
	return ok(id), nil
}

func (sm *SaleManager) getSale(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	v, err := sm.sales.get(ctx, args[0].(string))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return idl.None[idl.Value](), nil
	}
	return idl.Some(v), nil
}

func (sm *SaleManager) listSales(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	return sm.sales.list(ctx)
}

func (sm *SaleManager) listSalesByToken(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	token := args[0].(string)
	vs, err := sm.sales.list(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(vs, func(v idl.Value, _ int) bool {
		return v.(idl.Record)["tokenId"] == token
	}), nil
}

func (sm *SaleManager) contribute(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	amount := args[1].(uint64)

	sm.lk.Lock()
	defer sm.lk.Unlock()

	s, err := sm.lookup(ctx, args[0].(string))
	if err != nil {
		return nil, err
	}
	if s == nil {
		return fail(ErrSaleNotFound), nil
	}
	if amount > math.MaxUint64-s.Raised {
		return fail(ErrRaiseOverflow), nil
	}
	s.Raised += amount
	if err := sm.sales.put(ctx, string(s.ID), s.Value()); err != nil {
		return nil, err
	}
	return ok(idl.Unit{}), nil
}

func (sm *SaleManager) finalizeSale(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	sm.lk.Lock()
	defer sm.lk.Unlock()

	s, err := sm.lookup(ctx, args[0].(string))
	if err != nil {
		return nil, err
	}
	if s == nil {
		return fail(ErrSaleNotFound), nil
	}
	s.Status = launchpad.SaleEnded
	if err := sm.sales.put(ctx, string(s.ID), s.Value()); err != nil {
		return nil, err
	}
	return ok(s.Status.Value()), nil
}

type AgentRegistry struct {
	lk     sync.Mutex
	tokens *TokenFactory
	agents *store
}

var _ actor.Invokee = (*AgentRegistry)(nil)

func (ar *AgentRegistry) Exports() map[string]actor.Handler {
	return map[string]actor.Handler{
		"registerAgent": ar.registerAgent,
		"listAgents":    ar.listAgents,
		"getAgent":      ar.getAgent,
	}
}

func (ar *AgentRegistry) registerAgent(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	cfg, err := launchpad.AsAgentConfig(args[0])
	if err != nil {
		return nil, err
	}

	ar.lk.Lock()
	defer ar.lk.Unlock()

	if tok, linked := cfg.Token.Get(); linked {
		found, err := ar.tokens.exists(ctx, tok)
		if err != nil {
			return nil, err
		}
		if !found {
			return fail(ErrTokenNotFound), nil
		}
	}

	id, err := ar.agents.nextID(ctx)
	if err != nil {
		return nil, err
	}
	info := launchpad.AgentInfo{
		ID:          launchpad.AgentID(id),
		AgentConfig: cfg,
		Owner:       cc.Sender,
		CreatedAt:   build.Clock.Now().UnixNano(),
	}
	if err := ar.agents.put(ctx, id, info.Value()); err != nil {
		return nil, err
	}
	return ok(id), nil
}

func (ar *AgentRegistry) listAgents(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	return ar.agents.list(ctx)
}

func (ar *AgentRegistry) getAgent(ctx context.Context, cc actor.CallContext, args []idl.Value) (idl.Value, error) {
	v, err := ar.agents.get(ctx, args[0].(string))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return idl.None[idl.Value](), nil
	}
	return idl.Some(v), nil
}
