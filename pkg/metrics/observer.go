package metrics

import (
	"context"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var log = logging.Logger("metrics")

// Observer receives notifications about weight and gas estimation calls.
// Implementations must be safe for concurrent use.
type Observer interface {
	// WeightComputed is called once per weight computation that was not
	// served from cache.
	WeightComputed(ctx context.Context, elapsed time.Duration, err error)
	// EstimateFinished is called when a gas estimation method returns.
	EstimateFinished(ctx context.Context, method string, elapsed time.Duration, err error)
}

// NoopObserver discards every notification.
type NoopObserver struct{}

var _ Observer = NoopObserver{}

func (NoopObserver) WeightComputed(context.Context, time.Duration, error) {}

func (NoopObserver) EstimateFinished(context.Context, string, time.Duration, error) {}

// Status tag values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// CensusObserver records notifications as opencensus measurements. Each
// instance owns its measures; callers decide whether to register them.
type CensusObserver struct {
	methodKey tag.Key
	statusKey tag.Key

	weights         *Int64Counter
	weightLatency   *Float64Timer
	estimates       *Int64Counter
	estimateLatency *Float64Timer
}

var _ Observer = (*CensusObserver)(nil)

// NewCensusObserver creates an observer whose measures are prefixed with namespace.
func NewCensusObserver(namespace string) (*CensusObserver, error) {
	methodKey, err := tag.NewKey("method")
	if err != nil {
		return nil, err
	}
	statusKey, err := tag.NewKey("status")
	if err != nil {
		return nil, err
	}

	return &CensusObserver{
		methodKey:       methodKey,
		statusKey:       statusKey,
		weights:         NewInt64Counter(namespace+"/weight_computed", "Number of tipset weights computed", statusKey),
		weightLatency:   NewFloat64Timer(namespace+"/weight_ms", "Time spent computing tipset weight", statusKey),
		estimates:       NewInt64Counter(namespace+"/gas_estimate", "Number of gas estimation calls", methodKey, statusKey),
		estimateLatency: NewFloat64Timer(namespace+"/gas_estimate_ms", "Time spent in gas estimation", methodKey, statusKey),
	}, nil
}

// Views returns the views backing this observer.
func (o *CensusObserver) Views() []*view.View {
	return []*view.View{o.weights.View(), o.weightLatency.View(), o.estimates.View(), o.estimateLatency.View()}
}

// Register registers the observer's views with opencensus.
func (o *CensusObserver) Register() error {
	return view.Register(o.Views()...)
}

// Unregister removes the observer's views.
func (o *CensusObserver) Unregister() {
	view.Unregister(o.Views()...)
}

func (o *CensusObserver) WeightComputed(ctx context.Context, elapsed time.Duration, err error) {
	ctx, tagErr := tag.New(ctx, tag.Upsert(o.statusKey, status(err)))
	if tagErr != nil {
		log.Warnf("tagging weight measurement: %s", tagErr)
		return
	}
	o.weights.Inc(ctx, 1)
	o.weightLatency.Record(ctx, millis(elapsed))
}

func (o *CensusObserver) EstimateFinished(ctx context.Context, method string, elapsed time.Duration, err error) {
	ctx, tagErr := tag.New(ctx,
		tag.Upsert(o.methodKey, method),
		tag.Upsert(o.statusKey, status(err)))
	if tagErr != nil {
		log.Warnf("tagging estimate measurement: %s", tagErr)
		return
	}
	o.estimates.Inc(ctx, 1)
	o.estimateLatency.Record(ctx, millis(elapsed))
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
