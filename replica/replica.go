package replica

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/time/rate"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/build"
	"github.com/canlink-project/canlink/journal"
	"github.com/canlink-project/canlink/metrics"
	"github.com/canlink-project/canlink/principal"
)

var log = logging.Logger("replica")

const (
	queryRateLimitTokens  = 1
	updateRateLimitTokens = 2

	// MaxRateLimitTokens is the burst of a per-connection limiter
	MaxRateLimitTokens = updateRateLimitTokens
)

type canister struct {
	id  string
	inv *actor.Invoker

	// updates run one at a time, queries never wait
	lk     sync.Mutex
	queued atomic.Int64
}

// Replica hosts canisters in process and serves them as api.ReplicaAPI.
//
// Updates to one canister are executed one at a time in lock acquisition
// order; callers get no other ordering guarantee.
type Replica struct {
	journal   journal.Journal
	evtUpdate journal.EventType
	evtQuery  journal.EventType

	lk        sync.RWMutex
	canisters map[string]*canister
}

var _ api.ReplicaAPI = (*Replica)(nil)

// CallRecord is the journal payload of replica:update and replica:query
// events.
type CallRecord struct {
	Canister string
	Method   string
	Sender   string
	Nonce    string `json:",omitempty"`
	Error    string `json:",omitempty"`
}

func New(j journal.Journal) *Replica {
	if j == nil {
		j = journal.NilJournal()
	}
	return &Replica{
		journal:   j,
		evtUpdate: j.RegisterEventType("replica", "update"),
		evtQuery:  j.RegisterEventType("replica", "query"),
		canisters: map[string]*canister{},
	}
}

// Install hosts impl as canister id serving svc.
func (r *Replica) Install(id string, svc *actor.Service, impl actor.Invokee) error {
	if id == "" {
		return xerrors.New("empty canister id")
	}
	inv := actor.NewInvoker()
	if err := inv.Register(svc, impl); err != nil {
		return xerrors.Errorf("installing %s: %w", id, err)
	}

	r.lk.Lock()
	defer r.lk.Unlock()
	if _, ok := r.canisters[id]; ok {
		return xerrors.Errorf("canister %s already installed", id)
	}
	r.canisters[id] = &canister{id: id, inv: inv}
	log.Infow("installed canister", "id", id, "service", svc.Name(), "interface", svc.Fingerprint())
	return nil
}

func (r *Replica) canister(id string) (*canister, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	c, ok := r.canisters[id]
	if !ok {
		return nil, &api.ErrCanisterNotFound{Canister: id}
	}
	return c, nil
}

func (r *Replica) ReplicaQuery(ctx context.Context, req api.CallRequest) (*api.CallReply, error) {
	if err := limit(ctx, queryRateLimitTokens); err != nil {
		return nil, err
	}
	c, err := r.canister(req.Canister)
	if err != nil {
		return nil, err
	}
	reply, err := r.invoke(ctx, c, req, actor.Query)
	r.journal.RecordEvent(r.evtQuery, func() interface{} { return record(req, err) })
	if err != nil {
		return nil, err
	}
	return &api.CallReply{Reply: reply}, nil
}

func (r *Replica) ReplicaCall(ctx context.Context, req api.CallRequest) (*api.CallReply, error) {
	if err := limit(ctx, updateRateLimitTokens); err != nil {
		return nil, err
	}
	c, err := r.canister(req.Canister)
	if err != nil {
		return nil, err
	}

	qctx, _ := tag.New(ctx, tag.Upsert(metrics.Canister, c.id))
	stats.Record(qctx, metrics.ReplicaUpdateQueue.M(c.queued.Add(1)))
	c.lk.Lock()
	stats.Record(qctx, metrics.ReplicaUpdateQueue.M(c.queued.Add(-1)))

	reply, err := r.invoke(ctx, c, req, actor.Update)
	c.lk.Unlock()

	r.journal.RecordEvent(r.evtUpdate, func() interface{} { return record(req, err) })
	if err != nil {
		return nil, err
	}
	return &api.CallReply{Reply: reply}, nil
}

func record(req api.CallRequest, err error) CallRecord {
	rec := CallRecord{
		Canister: req.Canister,
		Method:   req.Method,
		Sender:   req.Sender,
		Nonce:    req.Nonce,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// invoke runs the call and maps failures to the typed RPC errors, which
// must be returned unwrapped to survive the JSON-RPC round trip.
func (r *Replica) invoke(ctx context.Context, c *canister, req api.CallRequest, mode actor.Mode) ([]byte, error) {
	sender := principal.Anonymous
	if req.Sender != "" {
		p, err := principal.Decode(req.Sender)
		if err != nil {
			return nil, &api.ErrInvalidArgument{Method: req.Method, Reason: "sender: " + err.Error()}
		}
		sender = p
	}

	start := build.Clock.Now()
	reply, err := c.inv.Invoke(ctx, actor.CallContext{
		Canister: c.id,
		Sender:   sender,
		Nonce:    req.Nonce,
	}, req.Method, mode, req.Arg)
	log.Debugw("call", "canister", c.id, "method", req.Method, "mode", mode, "took", build.Clock.Since(start), "error", err)

	var ae *actor.ArgumentError
	switch {
	case err == nil:
		return reply, nil
	case xerrors.Is(err, actor.ErrUnknownMethod):
		return nil, &api.ErrMethodNotFound{Canister: c.id, Method: req.Method}
	case xerrors.Is(err, actor.ErrModeMismatch):
		return nil, &api.ErrModeMismatch{Method: req.Method}
	case xerrors.As(err, &ae):
		return nil, &api.ErrInvalidArgument{Method: req.Method, Reason: ae.Err.Error()}
	default:
		log.Warnw("canister rejected call", "canister", c.id, "method", req.Method, "error", err)
		return nil, &api.ErrCanisterReject{Canister: c.id, Message: err.Error()}
	}
}

func (r *Replica) ReplicaInterface(ctx context.Context, id string) (cid.Cid, error) {
	c, err := r.canister(id)
	if err != nil {
		return cid.Undef, err
	}
	return c.inv.Service().Fingerprint(), nil
}

func (r *Replica) ReplicaStatus(ctx context.Context) (api.Status, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()

	st := api.Status{
		Version:    build.UserVersion(),
		APIVersion: build.ReplicaAPIVersion,
		Canisters:  make([]api.CanisterInfo, 0, len(r.canisters)),
	}
	for id, c := range r.canisters {
		svc := c.inv.Service()
		st.Canisters = append(st.Canisters, api.CanisterInfo{
			ID:        id,
			Service:   svc.Name(),
			Interface: svc.Fingerprint(),
		})
	}
	sort.Slice(st.Canisters, func(i, j int) bool { return st.Canisters[i].ID < st.Canisters[j].ID })
	return st, nil
}

// limit waits on the per-connection limiter the handler put in ctx, if any.
func limit(ctx context.Context, tokens int) error {
	l, ok := ctx.Value(perConnLimiterKey).(*rate.Limiter)
	if !ok {
		return nil
	}
	if err := l.WaitN(ctx, tokens); err != nil {
		return xerrors.Errorf("connection limited: %w", err)
	}
	return nil
}
