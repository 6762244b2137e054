package metrics

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Int64Counter wraps an opencensus int64 measure that is uses as a counter.
type Int64Counter struct {
	measureCt *stats.Int64Measure
	view      *view.View
}

// NewInt64Counter creates a new Int64Counter with demensionless units, counted
// per value of the given tag keys. The view is not registered; see Views.
func NewInt64Counter(name, desc string, keys ...tag.Key) *Int64Counter {
	log.Debugf("creating int64 counter: %s - %s", name, desc)
	iMeasure := stats.Int64(name, desc, stats.UnitDimensionless)
	iView := &view.View{
		Name:        name,
		Measure:     iMeasure,
		Description: desc,
		TagKeys:     keys,
		Aggregation: view.Count(),
	}

	return &Int64Counter{
		measureCt: iMeasure,
		view:      iView,
	}
}

// Inc increments the counter by value `v`.
func (c *Int64Counter) Inc(ctx context.Context, v int64) {
	stats.Record(ctx, c.measureCt.M(v))
}

// View returns the counter's view.
func (c *Int64Counter) View() *view.View {
	return c.view
}

// Float64Timer records durations in milliseconds into a distribution.
type Float64Timer struct {
	measureMs *stats.Float64Measure
	view      *view.View
}

// NewFloat64Timer creates a timer with latency buckets suited to API calls.
func NewFloat64Timer(name, desc string, keys ...tag.Key) *Float64Timer {
	log.Debugf("creating float64 timer: %s - %s", name, desc)
	fMeasure := stats.Float64(name, desc, stats.UnitMilliseconds)
	fView := &view.View{
		Name:        name,
		Measure:     fMeasure,
		Description: desc,
		TagKeys:     keys,
		Aggregation: view.Distribution(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000),
	}
	return &Float64Timer{measureMs: fMeasure, view: fView}
}

// Record records a duration in milliseconds.
func (t *Float64Timer) Record(ctx context.Context, ms float64) {
	stats.Record(ctx, t.measureMs.M(ms))
}

// View returns the timer's view.
func (t *Float64Timer) View() *view.View {
	return t.view
}
