package wallet

import (
	"context"
	"net/http"
	"sync"

	"github.com/filecoin-project/go-jsonrpc"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ipfs/go-cid"
	"go.opencensus.io/stats"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/agent"
	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/api/client"
	"github.com/canlink-project/canlink/build"
	"github.com/canlink-project/canlink/journal"
	"github.com/canlink-project/canlink/metrics"
	"github.com/canlink-project/canlink/principal"
)

const (
	DefaultHost      = "http://127.0.0.1:4741/rpc/v0"
	DefaultCacheSize = 128
)

// Dialer opens a replica API at host. The context bounds the lifetime of
// the returned client, not just the dial.
type Dialer func(ctx context.Context, host string) (api.ReplicaAPI, jsonrpc.ClientCloser, error)

// RPCDialer dials replicas over JSON-RPC with the given request header.
func RPCDialer(header http.Header) Dialer {
	return func(ctx context.Context, host string) (api.ReplicaAPI, jsonrpc.ClientCloser, error) {
		return client.NewReplicaRPC(ctx, host, header)
	}
}

type actorKey struct {
	canister    string
	fingerprint cid.Cid
}

// ConnectionRecord is the journal payload of wallet:connection events.
type ConnectionRecord struct {
	Connected bool
	Host      string
	Principal string
}

// LocalProvider holds its identity in process and calls a replica directly.
type LocalProvider struct {
	identity    principal.Principal
	defaultHost string
	dial        Dialer

	journal      journal.Journal
	evtConnected journal.EventType
	listeners    *connListeners

	lk        sync.Mutex
	host      string
	node      api.ReplicaAPI
	agent     *agent.RPCAgent
	stop      func()
	whitelist map[string]struct{}
	actors    *lru.Cache[actorKey, *actor.Actor]
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider builds a disconnected provider. An empty defaultHost
// means DefaultHost; a nil journal records nothing.
func NewLocalProvider(identity principal.Principal, dial Dialer, defaultHost string, j journal.Journal) (*LocalProvider, error) {
	if dial == nil {
		dial = RPCDialer(nil)
	}
	if defaultHost == "" {
		defaultHost = DefaultHost
	}
	if j == nil {
		j = journal.NilJournal()
	}
	actors, err := lru.New[actorKey, *actor.Actor](DefaultCacheSize)
	if err != nil {
		return nil, xerrors.Errorf("creating actor cache: %w", err)
	}
	return &LocalProvider{
		identity:     identity,
		defaultHost:  defaultHost,
		dial:         dial,
		journal:      j,
		evtConnected: j.RegisterEventType("wallet", "connection"),
		listeners:    newConnListeners(),
		actors:       actors,
	}, nil
}

func (p *LocalProvider) Agent() agent.Agent {
	p.lk.Lock()
	defer p.lk.Unlock()
	if p.agent == nil {
		// a typed nil would pass `!= nil` checks
		return nil
	}
	return p.agent
}

func (p *LocalProvider) CreateActor(canister string, svc *actor.Service) (*actor.Actor, error) {
	p.lk.Lock()
	defer p.lk.Unlock()

	if p.agent == nil {
		return nil, ErrNotConnected
	}
	if len(p.whitelist) > 0 {
		if _, ok := p.whitelist[canister]; !ok {
			return nil, &NotWhitelistedError{Canister: canister}
		}
	}

	key := actorKey{canister: canister, fingerprint: svc.Fingerprint()}
	if a, ok := p.actors.Get(key); ok {
		return a, nil
	}
	a := actor.New(p.agent, canister, svc)
	p.actors.Add(key, a)
	return a, nil
}

// Connect dials the replica and checks it answers a status request within
// opts.Timeout. Connecting while connected replaces the old connection.
func (p *LocalProvider) Connect(ctx context.Context, opts ConnectOptions) (bool, error) {
	host := opts.Host
	if host == "" {
		host = p.defaultHost
	}

	connCtx, stop := context.WithCancel(context.Background())
	node, closer, err := p.dial(connCtx, host)
	if err != nil {
		stop()
		return false, xerrors.Errorf("dialing replica %s: %w", host, err)
	}
	shutdown := func() {
		closer()
		stop()
	}

	hctx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	st, err := node.ReplicaStatus(hctx)
	if err != nil {
		shutdown()
		return false, xerrors.Errorf("replica %s handshake: %w", host, err)
	}

	if want, err := build.VersionForType(build.APIReplica); err == nil && !want.EqMajorMinor(st.APIVersion) {
		log.Warnw("replica API version mismatch", "host", host, "remote", st.APIVersion, "expected", want)
	}

	whitelist := make(map[string]struct{}, len(opts.Whitelist))
	installed := make(map[string]struct{}, len(st.Canisters))
	for _, c := range st.Canisters {
		installed[c.ID] = struct{}{}
	}
	for _, w := range opts.Whitelist {
		if w == "" {
			shutdown()
			return false, xerrors.New("empty canister id in whitelist")
		}
		if _, ok := installed[w]; !ok {
			log.Warnw("whitelisted canister is not installed on the replica", "canister", w, "host", host)
		}
		whitelist[w] = struct{}{}
	}

	// failed attempts leave no callback behind
	if opts.OnConnectionUpdate != nil {
		p.listeners.subscribe(opts.OnConnectionUpdate)
	}

	p.lk.Lock()
	old := p.stop
	p.host = host
	p.node = node
	p.agent = agent.NewRPCAgent(node, p.identity)
	p.stop = shutdown
	p.whitelist = whitelist
	p.actors.Purge()
	p.lk.Unlock()

	if old != nil {
		old()
	}

	log.Infow("connected", "host", host, "replica", st.Version, "principal", p.identity)
	p.changed(ctx, true, host)
	return true, nil
}

func (p *LocalProvider) IsConnected(ctx context.Context) (bool, error) {
	p.lk.Lock()
	defer p.lk.Unlock()
	return p.agent != nil, nil
}

func (p *LocalProvider) Disconnect(ctx context.Context) error {
	p.lk.Lock()
	stop, host := p.stop, p.host
	p.host = ""
	p.node = nil
	p.agent = nil
	p.stop = nil
	p.whitelist = nil
	p.actors.Purge()
	p.lk.Unlock()

	if stop == nil {
		return nil
	}
	stop()
	p.changed(ctx, false, host)
	return nil
}

func (p *LocalProvider) changed(ctx context.Context, connected bool, host string) {
	var gauge int64
	if connected {
		gauge = 1
	}
	stats.Record(ctx, metrics.WalletConnected.M(gauge))

	pid := ""
	if connected {
		pid = p.identity.String()
	}
	p.journal.RecordEvent(p.evtConnected, func() interface{} {
		return ConnectionRecord{Connected: connected, Host: host, Principal: pid}
	})
	p.listeners.fire(ConnectionEvent{Connected: connected, Host: host, Principal: pid})
}

func (p *LocalProvider) GetPrincipal(ctx context.Context) (principal.Principal, error) {
	if ok, _ := p.IsConnected(ctx); !ok {
		return principal.Principal{}, ErrNotConnected
	}
	return p.identity, nil
}

func (p *LocalProvider) RequestAccountID(ctx context.Context) (string, error) {
	if ok, _ := p.IsConnected(ctx); !ok {
		return "", ErrNotConnected
	}
	return principal.AccountIdentifier(p.identity, nil)
}

func (p *LocalProvider) PrincipalID() string {
	if ok, _ := p.IsConnected(context.TODO()); !ok {
		return ""
	}
	return p.identity.String()
}

func (p *LocalProvider) AccountID() string {
	id, err := p.RequestAccountID(context.TODO())
	if err != nil {
		return ""
	}
	return id
}

func (p *LocalProvider) OnConnectionUpdate(cb func(ConnectionEvent)) Unsubscribe {
	return p.listeners.subscribe(cb)
}

// Node returns the replica API of the current connection, or nil.
func (p *LocalProvider) Node() api.ReplicaAPI {
	p.lk.Lock()
	defer p.lk.Unlock()
	if p.node == nil {
		return nil
	}
	return p.node
}

// Allowed reports whether calls to canister are permitted under the current
// whitelist.
func (p *LocalProvider) Allowed(canister string) bool {
	p.lk.Lock()
	defer p.lk.Unlock()
	if len(p.whitelist) == 0 {
		return true
	}
	_, ok := p.whitelist[canister]
	return ok
}
