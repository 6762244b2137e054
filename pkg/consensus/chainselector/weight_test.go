package chainselector_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/filecoin-project/go-state-types/abi"
	fbig "github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/venus-gas/pkg/config"
	"github.com/filecoin-project/venus-gas/pkg/consensus/chainselector"
	appstate "github.com/filecoin-project/venus-gas/pkg/state"
	"github.com/filecoin-project/venus-gas/pkg/testhelpers"
	tf "github.com/filecoin-project/venus-gas/pkg/testhelpers/testflags"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

func makeStateViewer(stateRoot cid.Cid, networkPower abi.StoragePower) *chainselector.FakeConsensusStateViewer {
	return &chainselector.FakeConsensusStateViewer{
		Views: map[cid.Cid]*appstate.FakeStateView{
			stateRoot: appstate.NewFakeStateView(networkPower, networkPower),
		},
	}
}

func newSelector(t *testing.T, viewer chainselector.StateViewer) *chainselector.ChainSelector {
	sel, err := chainselector.NewChainSelector(viewer, config.NewDefaultConfig().ChainSelector, nil)
	require.NoError(t, err)
	return sel
}

func TestWeight(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	fakeRoot := testhelpers.CidFromString(t, "test-Weight-StateCid")
	cb := testhelpers.NewChainBuilder(t, fakeRoot)

	// We only care about total power for the weight function
	// Total is 16, so bitlen is 5, log2b is 4
	sel := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(16)))
	toWeigh := cb.TipSet(nil, fbig.Zero(), 1)

	t.Run("basic happy path", func(t *testing.T) {
		// 0 + (4*256 + (4*1*1*256/5*2))
		// 1024 + 102 = 1126
		w, err := sel.Weight(ctx, toWeigh)
		assert.NoError(t, err)
		assert.Equal(t, fbig.NewInt(1126), w)
	})

	t.Run("total power adjusts as expected", func(t *testing.T) {
		// 0 + (3*256) + (3*1*1*256/2*5) = 844 (truncating not rounding division)
		selLower := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(15)))
		fixWeight, err := selLower.Weight(ctx, toWeigh)
		assert.NoError(t, err)
		assert.Equal(t, fbig.NewInt(844), fixWeight)

		// Weight is same when total bytes = 16 as when total bytes = 31
		selSame := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(31)))
		fixWeight, err = selSame.Weight(ctx, toWeigh)
		assert.NoError(t, err)
		assert.Equal(t, fbig.NewInt(1126), fixWeight)

		// 0 + (5*256) + (5*1*1*256/2*5) = 1408
		selHigher := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(32)))
		fixWeight, err = selHigher.Weight(ctx, toWeigh)
		assert.NoError(t, err)
		assert.Equal(t, fbig.NewInt(1408), fixWeight)
	})

	t.Run("non-zero parent weight", func(t *testing.T) {
		// 49 + (4*256) + (4*1*1*256/2*5) = 1175
		w, err := sel.Weight(ctx, cb.TipSet(nil, fbig.NewInt(49), 1))
		assert.NoError(t, err)
		assert.Equal(t, fbig.NewInt(1175), w)
	})

	t.Run("many blocks", func(t *testing.T) {
		toWeighThreeBlock := cb.TipSet(nil, fbig.Zero(), 1, 1, 1)
		// 0 + (4*256) + (4*3*1*256/2*5) = 1331
		w, err := sel.Weight(ctx, toWeighThreeBlock)
		assert.NoError(t, err)
		assert.Equal(t, fbig.NewInt(1331), w)

		toWeighTwoBlock := testhelpers.RequireNewTipSet(t, toWeighThreeBlock.At(0), toWeighThreeBlock.At(1))
		isHeavier, err := sel.IsHeavier(ctx, toWeighThreeBlock, toWeighTwoBlock)
		assert.NoError(t, err)
		assert.True(t, isHeavier)
	})

	t.Run("win counts add up across blocks", func(t *testing.T) {
		// P = 7, log2P = 2
		// 1000 + (2<<8) + floor(2*256*3 / 5*2) = 1000 + 512 + 153
		sel7 := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(7)))
		w, err := sel7.Weight(ctx, cb.TipSet(nil, fbig.NewInt(1000), 1, 2))
		require.NoError(t, err)
		assert.Equal(t, fbig.NewInt(1665), w)

		// P = 8 has bit length 4, so log2P = 3
		// 1000 + (3<<8) + floor(3*256*3 / 5*2) = 1000 + 768 + 230
		sel8 := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(8)))
		w, err = sel8.Weight(ctx, cb.TipSet(nil, fbig.NewInt(1000), 1, 2))
		require.NoError(t, err)
		assert.Equal(t, fbig.NewInt(1998), w)
	})

	t.Run("nil parent weight counts as zero", func(t *testing.T) {
		blk := cb.Block(nil, fbig.Int{}, 1)
		w, err := sel.Weight(ctx, testhelpers.RequireNewTipSet(t, blk))
		require.NoError(t, err)
		assert.Equal(t, fbig.NewInt(1126), w)
	})
}

func TestWeightErrors(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	fakeRoot := testhelpers.CidFromString(t, "test-WeightErrors-StateCid")
	cb := testhelpers.NewChainBuilder(t, fakeRoot)

	t.Run("no network power", func(t *testing.T) {
		sel := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(0)))
		_, err := sel.Weight(ctx, cb.TipSet(nil, fbig.Zero(), 1))
		assert.True(t, errors.Is(err, chainselector.ErrNetworkPowerExhausted))
	})

	t.Run("negative network power", func(t *testing.T) {
		sel := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(-5)))
		_, err := sel.Weight(ctx, cb.TipSet(nil, fbig.Zero(), 1))
		assert.True(t, errors.Is(err, chainselector.ErrNetworkPowerExhausted))
	})

	t.Run("missing election proof", func(t *testing.T) {
		sel := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(16)))
		_, err := sel.Weight(ctx, cb.TipSet(nil, fbig.Zero(), 1, -1))
		assert.True(t, errors.Is(err, chainselector.ErrMissingElectionProof))
	})

	t.Run("missing power actor", func(t *testing.T) {
		sel := newSelector(t, &chainselector.FakeConsensusStateViewer{})
		_, err := sel.Weight(ctx, cb.TipSet(nil, fbig.Zero(), 1))
		assert.True(t, errors.Is(err, chainselector.ErrActorNotFound))
	})

	t.Run("undefined parent state", func(t *testing.T) {
		sel := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(16)))
		blk := cb.Block(nil, fbig.Zero(), 1)
		blk.ParentStateRoot = cid.Undef
		_, err := sel.Weight(ctx, testhelpers.RequireNewTipSet(t, blk))
		assert.True(t, errors.Is(err, chainselector.ErrUndefinedState))
	})
}

func TestWeightFromStateStore(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	store := cbor.NewMemCborStore()

	root := testhelpers.RequirePowerState(t, store, abi.NewStoragePower(16))
	ts := testhelpers.NewChainBuilder(t, root).TipSet(nil, fbig.Zero(), 1)
	w, err := chainselector.Weight(ctx, store, ts)
	require.NoError(t, err)
	assert.Equal(t, fbig.NewInt(1126), w)

	// the same state through a viewer
	sel := newSelector(t, appstate.NewViewer(store))
	w2, err := sel.Weight(ctx, ts)
	require.NoError(t, err)
	assert.Equal(t, w, w2)

	emptyRoot := testhelpers.NewStateBuilder(t, store).Flush()
	noPower := testhelpers.NewChainBuilder(t, emptyRoot).TipSet(nil, fbig.Zero(), 1)
	_, err = chainselector.Weight(ctx, store, noPower)
	assert.True(t, errors.Is(err, chainselector.ErrActorNotFound))
}

func TestWeightProperties(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	fakeRoot := testhelpers.CidFromString(t, "test-WeightProperties-StateCid")
	cb := testhelpers.NewChainBuilder(t, fakeRoot)

	power := fbig.Lsh(fbig.NewInt(1), 80)
	sel := newSelector(t, makeStateViewer(fakeRoot, power))
	parentWeight := fbig.NewInt(123456789)

	t.Run("weight grows with win count", func(t *testing.T) {
		prev := parentWeight
		for wc := int64(0); wc < 20; wc++ {
			w, err := sel.Weight(ctx, cb.TipSet(nil, parentWeight, wc))
			require.NoError(t, err)
			assert.True(t, w.GreaterThanEqual(parentWeight))
			if wc > 0 {
				assert.True(t, w.GreaterThan(prev), "win count %d", wc)
			}
			prev = w
		}
	})

	t.Run("weight is deterministic", func(t *testing.T) {
		ts := cb.TipSet(nil, parentWeight, 3, 1)
		other := newSelector(t, makeStateViewer(fakeRoot, power))
		w1, err := sel.Weight(ctx, ts)
		require.NoError(t, err)
		w2, err := other.Weight(ctx, ts)
		require.NoError(t, err)
		assert.Equal(t, w1, w2)
	})
}

type countingViewer struct {
	lk    sync.Mutex
	calls int
	inner chainselector.StateViewer
}

func (c *countingViewer) PowerStateView(root cid.Cid) appstate.PowerStateView {
	c.lk.Lock()
	c.calls++
	c.lk.Unlock()
	return c.inner.PowerStateView(root)
}

type countingObserver struct {
	lk      sync.Mutex
	weights int
	errs    int
}

func (o *countingObserver) WeightComputed(_ context.Context, _ time.Duration, err error) {
	o.lk.Lock()
	defer o.lk.Unlock()
	o.weights++
	if err != nil {
		o.errs++
	}
}

func (o *countingObserver) EstimateFinished(context.Context, string, time.Duration, error) {}

func TestWeightCache(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	fakeRoot := testhelpers.CidFromString(t, "test-WeightCache-StateCid")
	cb := testhelpers.NewChainBuilder(t, fakeRoot)

	viewer := &countingViewer{inner: makeStateViewer(fakeRoot, abi.NewStoragePower(16))}
	obs := &countingObserver{}
	sel, err := chainselector.NewChainSelector(viewer, &config.ChainSelectorConfig{WeightCacheSize: 2}, obs)
	require.NoError(t, err)

	ts := cb.TipSet(nil, fbig.Zero(), 1)
	for i := 0; i < 3; i++ {
		w, err := sel.Weight(ctx, ts)
		require.NoError(t, err)
		assert.Equal(t, fbig.NewInt(1126), w)
	}
	assert.Equal(t, 1, viewer.calls)
	assert.Equal(t, 1, obs.weights)

	// failures are not cached
	bad := cb.TipSet(nil, fbig.Zero(), -1)
	for i := 0; i < 2; i++ {
		_, err := sel.Weight(ctx, bad)
		assert.Error(t, err)
	}
	assert.Equal(t, 3, viewer.calls)
	assert.Equal(t, 2, obs.errs)

	_, err = chainselector.NewChainSelector(viewer, &config.ChainSelectorConfig{WeightCacheSize: 0}, nil)
	assert.Error(t, err)
}

func TestWeightConcurrent(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	fakeRoot := testhelpers.CidFromString(t, "test-WeightConcurrent-StateCid")
	cb := testhelpers.NewChainBuilder(t, fakeRoot)

	viewer := &countingViewer{inner: makeStateViewer(fakeRoot, abi.NewStoragePower(16))}
	sel := newSelector(t, viewer)
	ts := cb.TipSet(nil, fbig.Zero(), 1)

	var wg sync.WaitGroup
	weights := make([]fbig.Int, 16)
	errs := make([]error, 16)
	for i := range weights {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			weights[i], errs[i] = sel.Weight(ctx, ts)
		}(i)
	}
	wg.Wait()

	for i := range weights {
		require.NoError(t, errs[i])
		assert.Equal(t, fbig.NewInt(1126), weights[i])
	}
	assert.LessOrEqual(t, viewer.calls, len(weights))
}

// blockingViewer holds the first view request until release is closed.
type blockingViewer struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	inner   chainselector.StateViewer
}

func (b *blockingViewer) PowerStateView(root cid.Cid) appstate.PowerStateView {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.inner.PowerStateView(root)
}

func TestWeightCancelledCallerDoesNotFailOthers(t *testing.T) {
	tf.UnitTest(t)
	fakeRoot := testhelpers.CidFromString(t, "test-WeightCancel-StateCid")
	cb := testhelpers.NewChainBuilder(t, fakeRoot)

	viewer := &blockingViewer{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		inner:   makeStateViewer(fakeRoot, abi.NewStoragePower(16)),
	}
	sel := newSelector(t, viewer)
	ts := cb.TipSet(nil, fbig.Zero(), 1)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := sel.Weight(firstCtx, ts)
		firstErr <- err
	}()
	<-viewer.entered

	type result struct {
		w   fbig.Int
		err error
	}
	second := make(chan result, 1)
	go func() {
		w, err := sel.Weight(context.Background(), ts)
		second <- result{w, err}
	}()

	cancel()
	assert.True(t, errors.Is(<-firstErr, context.Canceled))

	close(viewer.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, fbig.NewInt(1126), res.w)

	// the detached computation still filled the cache
	w, err := sel.Weight(context.Background(), ts)
	require.NoError(t, err)
	assert.Equal(t, fbig.NewInt(1126), w)
}

func TestIsHeavierTieBreaks(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	fakeRoot := testhelpers.CidFromString(t, "test-IsHeavier-StateCid")
	cb := testhelpers.NewChainBuilder(t, fakeRoot)
	sel := newSelector(t, makeStateViewer(fakeRoot, abi.NewStoragePower(1024)))

	t.Run("heavier weight wins", func(t *testing.T) {
		light := cb.TipSet(nil, fbig.NewInt(10), 1)
		heavy := cb.TipSet(nil, fbig.NewInt(20), 1)

		h, err := sel.IsHeavier(ctx, heavy, light)
		require.NoError(t, err)
		assert.True(t, h)

		h, err = sel.IsHeavier(ctx, light, heavy)
		require.NoError(t, err)
		assert.False(t, h)
	})

	t.Run("smaller ticket wins equal weight", func(t *testing.T) {
		// the builder hands out increasing tickets
		a := cb.TipSet(nil, fbig.Zero(), 1)
		b := cb.TipSet(nil, fbig.Zero(), 1)

		h, err := sel.IsHeavier(ctx, a, b)
		require.NoError(t, err)
		assert.True(t, h)

		h, err = sel.IsHeavier(ctx, b, a)
		require.NoError(t, err)
		assert.False(t, h)
	})

	t.Run("key breaks ticket ties", func(t *testing.T) {
		blkA := cb.Block(nil, fbig.Zero(), 1)
		blkB := cb.Block(nil, fbig.Zero(), 1)
		blkB.Ticket = &types.Ticket{VRFProof: append([]byte{}, blkA.Ticket.VRFProof...)}
		a := testhelpers.RequireNewTipSet(t, blkA)
		b := testhelpers.RequireNewTipSet(t, blkB)

		h, err := sel.IsHeavier(ctx, a, b)
		require.NoError(t, err)
		h2, err := sel.IsHeavier(ctx, b, a)
		require.NoError(t, err)
		assert.NotEqual(t, h, h2)
	})

	t.Run("identical tipsets are unordered", func(t *testing.T) {
		a := cb.TipSet(nil, fbig.Zero(), 1)
		_, err := sel.IsHeavier(ctx, a, a)
		assert.True(t, errors.Is(err, chainselector.ErrUnorderedTipSets))
	})
}
