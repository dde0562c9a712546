package replica

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/raulk/clock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/canlink-project/canlink/build"
)

func TestConnectionRateLimiterHandler(t *testing.T) {
	mock := clock.NewMock()
	orig := build.Clock
	build.Clock = mock
	t.Cleanup(func() { build.Clock = orig })

	var callCount int
	h := NewConnectionRateLimiterHandler(
		http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			callCount++
		}),
		2, // connections per minute
	)

	runRequest := func(host string, expectedStatus, expectedCallCount int) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = host + ":1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, expectedStatus, w.Code, "expected status %v, got %v", expectedStatus, w.Code)
		require.Equal(t, expectedCallCount, callCount, "expected callCount to be %v, got %v", expectedCallCount, callCount)
	}

	runRequest("boop", http.StatusOK, 1)
	runRequest("boop", http.StatusOK, 2)
	runRequest("beep", http.StatusOK, 3)
	runRequest("boop", http.StatusTooManyRequests, 3)
	runRequest("beep", http.StatusOK, 4)
	runRequest("beep", http.StatusTooManyRequests, 4)

	// a minute later the slots are free again
	require.Eventually(t, func() bool {
		mock.Add(time.Minute)
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.ipmap) == 0
	}, time.Second, 10*time.Millisecond)
	runRequest("boop", http.StatusOK, 5)
}

func TestRateLimiterInContext(t *testing.T) {
	var got *rate.Limiter
	h := NewRateLimiterHandler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Value(perConnLimiterKey).(*rate.Limiter)
	}), 10)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	require.NotNil(t, got)
	require.Equal(t, MaxRateLimitTokens, got.Burst())

	require.Equal(t, rate.Inf, limiterFromRateLimit(0).Limit())
}

func TestMetricsEndpoint(t *testing.T) {
	h, err := Handler(New(nil), nil, HandlerOptions{Registry: promclient.NewRegistry()})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/debug/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/rpc/wallet", nil))
	require.Equal(t, http.StatusNotFound, w.Code, "no wallet api mounted")
}
