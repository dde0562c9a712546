package replica

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"github.com/filecoin-project/go-jsonrpc"
	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/gorilla/mux"
	promclient "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/api/apistruct"
	"github.com/canlink-project/canlink/build"
	"github.com/canlink-project/canlink/metrics/proxy"
)

type perConnLimiterKeyType string

const perConnLimiterKey perConnLimiterKeyType = "limiter"

type HandlerOptions struct {
	// Token grants every permission to requests bearing it; other callers
	// may only read. An empty token grants every permission to everyone.
	Token string
	// RateLimit is the per-connection token rate per second, 0 for none.
	RateLimit int64
	// ConnPerMinute caps new connections per remote host, 0 for none.
	ConnPerMinute int64
	// Registry receives the prometheus exporter, the default registry if nil.
	Registry *promclient.Registry
}

// Handler returns the replica http.Handler, to be mounted as-is on the
// server. The wallet API is served on /rpc/wallet when wapi is not nil.
func Handler(rapi api.ReplicaAPI, wapi api.WalletAPI, o HandlerOptions, opts ...jsonrpc.ServerOption) (http.Handler, error) {
	m := mux.NewRouter()

	serveRpc := func(path string, hnd interface{}) {
		rpcServer := jsonrpc.NewServer(append(opts, jsonrpc.WithServerErrors(api.RPCErrors))...)
		rpcServer.Register("Canlink", hnd)
		m.Handle(path, rpcServer)
	}

	serveRpc("/rpc/v0", apistruct.PermissionedReplicaAPI(proxy.MetricedReplicaAPI(rapi)))
	if wapi != nil {
		serveRpc("/rpc/wallet", apistruct.PermissionedWalletAPI(proxy.MetricedWalletAPI(wapi)))
	}

	registry := o.Registry
	if registry == nil {
		registry = promclient.DefaultRegisterer.(*promclient.Registry)
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{
		Registry:  registry,
		Namespace: "canlink",
	})
	if err != nil {
		return nil, err
	}
	m.Handle("/debug/metrics", exporter)

	ah := &auth.Handler{
		Verify: verifier(o.Token),
		Next:   m.ServeHTTP,
	}
	var h http.Handler = ah
	if o.Token == "" {
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.ServeHTTP(w, r.WithContext(auth.WithPerm(r.Context(), api.AllPermissions)))
		})
	}

	rlh := NewRateLimiterHandler(h, o.RateLimit)
	clh := NewConnectionRateLimiterHandler(rlh, o.ConnPerMinute)
	return clh, nil
}

func verifier(token string) func(ctx context.Context, tok string) ([]auth.Permission, error) {
	return func(ctx context.Context, tok string) ([]auth.Permission, error) {
		if token == "" || tok != token {
			return nil, xerrors.New("invalid token")
		}
		return api.AllPermissions, nil
	}
}

func NewRateLimiterHandler(handler http.Handler, rateLimit int64) *RateLimiterHandler {
	return &RateLimiterHandler{
		handler: handler,
		limiter: limiterFromRateLimit(rateLimit),
	}
}

// RateLimiterHandler adds a rate limiter to the request context for
// per-connection rate limiting.
type RateLimiterHandler struct {
	handler http.Handler
	limiter *rate.Limiter
}

func (h RateLimiterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = r.WithContext(context.WithValue(r.Context(), perConnLimiterKey, h.limiter))
	h.handler.ServeHTTP(w, r)
}

// NewConnectionRateLimiterHandler blocks new connections if there have
// already been too many from the same host in the last minute.
func NewConnectionRateLimiterHandler(handler http.Handler, connPerMinute int64) *ConnectionRateLimiterHandler {
	return &ConnectionRateLimiterHandler{
		ipmap:         make(map[string]int64),
		connPerMinute: connPerMinute,
		handler:       handler,
	}
}

type ConnectionRateLimiterHandler struct {
	mu            sync.Mutex
	ipmap         map[string]int64
	connPerMinute int64
	handler       http.Handler
}

func (h *ConnectionRateLimiterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.connPerMinute == 0 {
		h.handler.ServeHTTP(w, r)
		return
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	seen := h.ipmap[host]
	if seen >= h.connPerMinute {
		h.mu.Unlock()
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}
	h.ipmap[host] = seen + 1
	h.mu.Unlock()

	go func() {
		<-build.Clock.After(time.Minute)
		h.mu.Lock()
		defer h.mu.Unlock()
		h.ipmap[host]--
		if h.ipmap[host] <= 0 {
			delete(h.ipmap, host)
		}
	}()
	h.handler.ServeHTTP(w, r)
}

func limiterFromRateLimit(rateLimit int64) *rate.Limiter {
	var limit rate.Limit
	if rateLimit == 0 {
		limit = rate.Inf
	} else {
		limit = rate.Every(time.Second / time.Duration(rateLimit))
	}
	return rate.NewLimiter(limit, MaxRateLimitTokens)
}
