package metrics

import (
	"context"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	rpcmetrics "github.com/filecoin-project/go-jsonrpc/metrics"

	"github.com/canlink-project/canlink/build"
)

var log = logging.Logger("metrics")

// Distribution
var defaultMillisecondsDistribution = view.Distribution(
	0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, // fast local queries
	10, 20, 30, 40, 50, 60, 70, 80, 90, 100,
	150, 200, 250, 300, 350, 400, 450, 500,
	600, 700, 800, 900, 1000,
	2000, 3000, 4000, 5000, 8000, 10000, 20000, 30000, 60000, // updates waiting on consensus
)

// Tags
var (
	Version, _  = tag.NewKey("version")
	Commit, _   = tag.NewKey("commit")
	NodeType, _ = tag.NewKey("node_type")

	Endpoint, _ = tag.NewKey("endpoint")
	Canister, _ = tag.NewKey("canister")
	Method, _   = tag.NewKey("method")
	Mode, _     = tag.NewKey("mode")
	Outcome, _  = tag.NewKey("outcome")
)

// Outcome tag values.
const (
	OutcomeOK        = "ok"
	OutcomeAppErr    = "app_err"
	OutcomeTransport = "transport"
	OutcomeDecode    = "decode"
)

// Measures
var (
	CanlinkInfo        = stats.Int64("info", "Arbitrary counter to tag canlink info to", stats.UnitDimensionless)
	APIRequestDuration = stats.Float64("api/request_duration_ms", "Duration of API requests", stats.UnitMilliseconds)

	CallDuration = stats.Float64("canlink/call_ms", "Duration of canister calls", stats.UnitMilliseconds)
	CallCount    = stats.Int64("canlink/call_total", "Counter of canister calls", stats.UnitDimensionless)

	ReplicaUpdateQueue = stats.Int64("replica/update_queue", "Updates waiting for their canister lock", stats.UnitDimensionless)
	WalletConnected    = stats.Int64("wallet/connected", "1 while the wallet provider is connected", stats.UnitDimensionless)
)

var (
	InfoView = &view.View{
		Name:        "info",
		Description: "Canlink node information",
		Measure:     CanlinkInfo,
		Aggregation: view.LastValue(),
		TagKeys:     []tag.Key{Version, Commit, NodeType},
	}
	APIRequestDurationView = &view.View{
		Measure:     APIRequestDuration,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{Endpoint},
	}
	CallDurationView = &view.View{
		Measure:     CallDuration,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{Method, Mode, Outcome},
	}
	CallCountView = &view.View{
		Measure:     CallCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Method, Mode, Outcome},
	}
	ReplicaUpdateQueueView = &view.View{
		Measure:     ReplicaUpdateQueue,
		Aggregation: view.LastValue(),
		TagKeys:     []tag.Key{Canister},
	}
	WalletConnectedView = &view.View{
		Measure:     WalletConnected,
		Aggregation: view.LastValue(),
	}
)

// DefaultViews is an array of OpenCensus views for metric gathering purposes
var DefaultViews = append([]*view.View{
	InfoView,
	APIRequestDurationView,
	CallDurationView,
	CallCountView,
	WalletConnectedView,
}, rpcmetrics.DefaultViews...)

// RegisterViews adds views to the default list without modifying this file.
func RegisterViews(v ...*view.View) {
	DefaultViews = append(DefaultViews, v...)
}

var ReplicaNodeViews = append([]*view.View{
	ReplicaUpdateQueueView,
}, DefaultViews...)

// Register registers views with opencensus and records the info measure.
func Register(ctx context.Context, nodeType string, views ...*view.View) error {
	if err := view.Register(views...); err != nil {
		return err
	}
	ctx, err := tag.New(ctx,
		tag.Upsert(Version, build.BuildVersion),
		tag.Upsert(Commit, build.CurrentCommit),
		tag.Upsert(NodeType, nodeType),
	)
	if err != nil {
		return err
	}
	stats.Record(ctx, CanlinkInfo.M(1))
	return nil
}

// Timer is a function stopwatch, calling it starts the timer,
// calling the returned function will record the duration.
func Timer(ctx context.Context, m *stats.Float64Measure) func() time.Duration {
	start := build.Clock.Now()
	return func() time.Duration {
		d := build.Clock.Since(start)
		stats.Record(ctx, m.M(float64(d.Milliseconds())))
		return d
	}
}

// RecordCall records one finished canister call.
func RecordCall(ctx context.Context, method, mode, outcome string, d time.Duration) {
	err := stats.RecordWithTags(ctx, []tag.Mutator{
		tag.Upsert(Method, method),
		tag.Upsert(Mode, mode),
		tag.Upsert(Outcome, outcome),
	}, CallDuration.M(float64(d)/float64(time.Millisecond)), CallCount.M(1))
	if err != nil {
		log.Debugw("recording call", "error", err)
	}
}
