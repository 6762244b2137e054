package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"

	tf "github.com/filecoin-project/venus-gas/pkg/testhelpers/testflags"
)

func countRows(t *testing.T, name string) map[string]int64 {
	rows, err := view.RetrieveData(name)
	require.NoError(t, err)
	out := make(map[string]int64)
	for _, row := range rows {
		key := ""
		for _, tg := range row.Tags {
			key += tg.Key.Name() + "=" + tg.Value + ";"
		}
		out[key] = row.Data.(*view.CountData).Value
	}
	return out
}

func TestCensusObserver(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()

	obs, err := NewCensusObserver("venus_gas_test")
	require.NoError(t, err)
	require.NoError(t, obs.Register())
	defer obs.Unregister()

	obs.WeightComputed(ctx, time.Millisecond, nil)
	obs.WeightComputed(ctx, time.Millisecond, nil)
	obs.WeightComputed(ctx, time.Millisecond, errors.New("boom"))
	obs.EstimateFinished(ctx, "GasEstimateFeeCap", 2*time.Millisecond, nil)

	weights := countRows(t, "venus_gas_test/weight_computed")
	assert.Equal(t, int64(2), weights["status=ok;"])
	assert.Equal(t, int64(1), weights["status=error;"])

	estimates := countRows(t, "venus_gas_test/gas_estimate")
	assert.Equal(t, int64(1), estimates["method=GasEstimateFeeCap;status=ok;"])
}

func TestNoopObserver(t *testing.T) {
	tf.UnitTest(t)
	var obs Observer = NoopObserver{}
	assert.NotPanics(t, func() {
		obs.WeightComputed(context.Background(), 0, nil)
		obs.EstimateFinished(context.Background(), "m", 0, nil)
	})
}
