package remotewallet

import (
	"context"
	"net/http"
	"sync"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/hannahhoward/go-pubsub"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/agent"
	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/api/client"
	"github.com/canlink-project/canlink/build"
	"github.com/canlink-project/canlink/principal"
	"github.com/canlink-project/canlink/wallet"
)

var log = logging.Logger("remotewallet")

// RemoteWallet is a provider whose identity and replica connection live in
// a wallet daemon. Calls are forwarded to the daemon, which signs them as
// its principal.
type RemoteWallet struct {
	api.WalletAPI

	closer jsonrpc.ClientCloser
	ps     *pubsub.PubSub

	lk        sync.Mutex
	connected bool
	pid       string
	account   string
	whitelist map[string]struct{}
	actors    *lru.Cache[actorKey, *actor.Actor]
}

type actorKey struct {
	canister    string
	fingerprint cid.Cid
}

var _ wallet.Provider = (*RemoteWallet)(nil)

// NewRemoteWallet dials the wallet daemon at url.
func NewRemoteWallet(ctx context.Context, url string, header http.Header) (*RemoteWallet, error) {
	wapi, closer, err := client.NewWalletRPC(ctx, url, header)
	if err != nil {
		return nil, xerrors.Errorf("creating jsonrpc client: %w", err)
	}
	rw, err := FromAPI(wapi)
	if err != nil {
		closer()
		return nil, err
	}
	rw.closer = closer
	return rw, nil
}

// FromAPI wraps an already connected WalletAPI.
func FromAPI(wapi api.WalletAPI) (*RemoteWallet, error) {
	actors, err := lru.New[actorKey, *actor.Actor](wallet.DefaultCacheSize)
	if err != nil {
		return nil, xerrors.Errorf("creating actor cache: %w", err)
	}
	return &RemoteWallet{
		WalletAPI: wapi,
		ps:        pubsub.New(dispatch),
		actors:    actors,
	}, nil
}

type subscriberFn func(wallet.ConnectionEvent)

func dispatch(event pubsub.Event, subFn pubsub.SubscriberFn) error {
	evt, ok := event.(wallet.ConnectionEvent)
	if !ok {
		return xerrors.Errorf("wrong type of event")
	}
	sub, ok := subFn.(subscriberFn)
	if !ok {
		return xerrors.Errorf("wrong type of subscriber")
	}
	sub(evt)
	return nil
}

func (w *RemoteWallet) Close() {
	if w.closer != nil {
		w.closer()
	}
}

// Agent forwards calls through the daemon. It is nil until Connect or
// IsConnected has seen the daemon connected.
func (w *RemoteWallet) Agent() agent.Agent {
	w.lk.Lock()
	defer w.lk.Unlock()
	if !w.connected {
		return nil
	}
	return &walletAgent{w: w.WalletAPI}
}

func (w *RemoteWallet) CreateActor(canister string, svc *actor.Service) (*actor.Actor, error) {
	w.lk.Lock()
	defer w.lk.Unlock()

	if !w.connected {
		return nil, wallet.ErrNotConnected
	}
	if len(w.whitelist) > 0 {
		if _, ok := w.whitelist[canister]; !ok {
			return nil, &wallet.NotWhitelistedError{Canister: canister}
		}
	}

	key := actorKey{canister: canister, fingerprint: svc.Fingerprint()}
	if a, ok := w.actors.Get(key); ok {
		return a, nil
	}
	a := actor.New(&walletAgent{w: w.WalletAPI}, canister, svc)
	w.actors.Add(key, a)
	return a, nil
}

func (w *RemoteWallet) Connect(ctx context.Context, opts wallet.ConnectOptions) (bool, error) {
	ok, err := w.WalletConnect(ctx, api.ConnectRequest{
		Whitelist: opts.Whitelist,
		Host:      opts.Host,
		Timeout:   int64(opts.Timeout),
	})
	if err != nil {
		return false, xerrors.Errorf("wallet connect: %w", err)
	}
	if !ok {
		w.setConnected(ctx, false)
		return false, nil
	}

	whitelist := make(map[string]struct{}, len(opts.Whitelist))
	for _, c := range opts.Whitelist {
		whitelist[c] = struct{}{}
	}
	w.lk.Lock()
	w.whitelist = whitelist
	w.actors.Purge()
	w.lk.Unlock()

	if opts.OnConnectionUpdate != nil {
		w.OnConnectionUpdate(opts.OnConnectionUpdate)
	}
	w.setConnected(ctx, true)
	return true, nil
}

// IsConnected asks the daemon and notifies subscribers if the answer
// differs from what was last seen.
func (w *RemoteWallet) IsConnected(ctx context.Context) (bool, error) {
	ok, err := w.WalletIsConnected(ctx)
	if err != nil {
		return false, err
	}
	w.setConnected(ctx, ok)
	return ok, nil
}

func (w *RemoteWallet) Disconnect(ctx context.Context) error {
	if err := w.WalletDisconnect(ctx); err != nil {
		return xerrors.Errorf("wallet disconnect: %w", err)
	}
	w.setConnected(ctx, false)
	return nil
}

func (w *RemoteWallet) setConnected(ctx context.Context, connected bool) {
	var pid, account string
	if connected {
		p, err := w.WalletPrincipal(ctx)
		if err != nil {
			log.Warnw("fetching wallet principal", "error", err)
		} else {
			pid = p.String()
		}
		if account, err = w.WalletAccountID(ctx); err != nil {
			log.Warnw("fetching wallet account id", "error", err)
		}
	}

	w.lk.Lock()
	changed := w.connected != connected
	w.connected = connected
	w.pid = pid
	w.account = account
	if !connected {
		w.whitelist = nil
		w.actors.Purge()
	}
	w.lk.Unlock()

	if !changed {
		return
	}
	if err := w.ps.Publish(wallet.ConnectionEvent{Connected: connected, Principal: pid}); err != nil {
		log.Errorf("unexpected error publishing connection update: %s", err)
	}
}

func (w *RemoteWallet) GetPrincipal(ctx context.Context) (principal.Principal, error) {
	return w.WalletPrincipal(ctx)
}

func (w *RemoteWallet) RequestAccountID(ctx context.Context) (string, error) {
	return w.WalletAccountID(ctx)
}

func (w *RemoteWallet) PrincipalID() string {
	w.lk.Lock()
	defer w.lk.Unlock()
	return w.pid
}

func (w *RemoteWallet) AccountID() string {
	w.lk.Lock()
	defer w.lk.Unlock()
	return w.account
}

func (w *RemoteWallet) OnConnectionUpdate(cb func(wallet.ConnectionEvent)) wallet.Unsubscribe {
	return w.ps.Subscribe(subscriberFn(cb))
}

// walletAgent sends encoded calls through the daemon, which stamps its own
// sender and nonce.
type walletAgent struct {
	w api.WalletAPI
}

var _ agent.Agent = (*walletAgent)(nil)

func (a *walletAgent) Query(ctx context.Context, canister, method string, arg []byte) ([]byte, error) {
	rep, err := a.w.WalletQuery(ctx, api.CallRequest{Canister: canister, Method: method, Arg: arg})
	return reply(rep, err)
}

func (a *walletAgent) Update(ctx context.Context, canister, method string, arg []byte) ([]byte, error) {
	start := build.Clock.Now()
	rep, err := a.w.WalletUpdate(ctx, api.CallRequest{Canister: canister, Method: method, Arg: arg})
	log.Debugw("update through wallet", "canister", canister, "method", method, "took", build.Clock.Since(start), "error", err)
	return reply(rep, err)
}

func (a *walletAgent) Interface(ctx context.Context, canister string) (cid.Cid, error) {
	return a.w.WalletInterface(ctx, canister)
}

func reply(rep *api.CallReply, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, xerrors.New("wallet sent no reply")
	}
	return rep.Reply, nil
}
