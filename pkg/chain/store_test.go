package chain_test

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	fbig "github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/venus-gas/pkg/chain"
	"github.com/filecoin-project/venus-gas/pkg/config"
	"github.com/filecoin-project/venus-gas/pkg/consensus/chainselector"
	appstate "github.com/filecoin-project/venus-gas/pkg/state"
	"github.com/filecoin-project/venus-gas/pkg/testhelpers"
	tf "github.com/filecoin-project/venus-gas/pkg/testhelpers/testflags"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

func newSelector(t *testing.T, root cid.Cid) *chainselector.ChainSelector {
	viewer := &chainselector.FakeConsensusStateViewer{
		Views: map[cid.Cid]*appstate.FakeStateView{
			root: appstate.NewFakeStateView(abi.NewStoragePower(1024), abi.NewStoragePower(1024)),
		},
	}
	sel, err := chainselector.NewChainSelector(viewer, config.NewDefaultConfig().ChainSelector, nil)
	require.NoError(t, err)
	return sel
}

type testChain struct {
	root  cid.Cid
	cb    *testhelpers.ChainBuilder
	ds    datastore.Batching
	store *chain.Store
}

func newTestChain(t *testing.T) *testChain {
	root := testhelpers.CidFromString(t, "chain-store-state")
	ds := dssync.MutexWrap(datastore.NewMapDatastore())
	return &testChain{
		root:  root,
		cb:    testhelpers.NewChainBuilder(t, root),
		ds:    ds,
		store: chain.NewStore(ds, newSelector(t, root)),
	}
}

func testMessage(nonce uint64) *types.Message {
	getter := testhelpers.NewForTestGetter()
	return &types.Message{
		To:         getter(),
		From:       getter(),
		Nonce:      nonce,
		Value:      abi.NewTokenAmount(1),
		GasLimit:   1000,
		GasFeeCap:  abi.NewTokenAmount(200),
		GasPremium: abi.NewTokenAmount(100),
	}
}

func TestPutTipSet(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	tc := newTestChain(t)

	gen := tc.cb.Genesis()
	msgs := []types.ChainMsg{testMessage(0), testMessage(1)}
	require.NoError(t, tc.store.PutTipSet(ctx, gen, msgs...))

	got, err := tc.store.GetTipSet(ctx, gen.Key())
	require.NoError(t, err)
	assert.True(t, gen.Equals(got))

	gotMsgs, err := tc.store.MessagesForTipset(ctx, gen)
	require.NoError(t, err)
	assert.Equal(t, msgs, gotMsgs)

	other := tc.cb.TipSet(gen, fbig.Zero(), 1)
	_, err = tc.store.GetTipSet(ctx, other.Key())
	assert.True(t, errors.Is(err, chain.ErrNotFound))
	_, err = tc.store.MessagesForTipset(ctx, other)
	assert.True(t, errors.Is(err, chain.ErrNotFound))

	assert.Error(t, tc.store.PutTipSet(ctx, nil))
}

func TestHead(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	tc := newTestChain(t)

	assert.Nil(t, tc.store.GetHead())
	_, err := tc.store.GetTipSet(ctx, types.EmptyTSK)
	assert.True(t, errors.Is(err, chain.ErrNotFound))

	gen := tc.cb.Genesis()
	// unknown tipsets cannot become head
	assert.Error(t, tc.store.SetHead(ctx, gen))

	require.NoError(t, tc.store.PutTipSet(ctx, gen))
	require.NoError(t, tc.store.SetHead(ctx, gen))
	assert.True(t, gen.Equals(tc.store.GetHead()))

	head, err := tc.store.GetTipSet(ctx, types.EmptyTSK)
	require.NoError(t, err)
	assert.True(t, gen.Equals(head))

	child := tc.cb.TipSet(gen, fbig.NewInt(100), 1)
	require.NoError(t, tc.store.PutTipSet(ctx, child))
	parent, err := tc.store.GetParent(ctx, child)
	require.NoError(t, err)
	assert.True(t, gen.Equals(parent))

	_, err = tc.store.GetParent(ctx, gen)
	assert.Error(t, err)
}

func TestMaybeTakeHeavierTipSet(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	tc := newTestChain(t)

	gen := tc.cb.Genesis()
	require.NoError(t, tc.store.PutTipSet(ctx, gen))
	took, err := tc.store.MaybeTakeHeavierTipSet(ctx, gen)
	require.NoError(t, err)
	assert.True(t, took)

	took, err = tc.store.MaybeTakeHeavierTipSet(ctx, gen)
	require.NoError(t, err)
	assert.False(t, took)

	light := tc.cb.TipSet(gen, fbig.NewInt(1000), 1)
	heavy := tc.cb.TipSet(gen, fbig.NewInt(1000), 1, 1)
	require.NoError(t, tc.store.PutTipSet(ctx, light))
	require.NoError(t, tc.store.PutTipSet(ctx, heavy))

	took, err = tc.store.MaybeTakeHeavierTipSet(ctx, heavy)
	require.NoError(t, err)
	assert.True(t, took)

	took, err = tc.store.MaybeTakeHeavierTipSet(ctx, light)
	require.NoError(t, err)
	assert.False(t, took)
	assert.True(t, heavy.Equals(tc.store.GetHead()))

	// weighing failures leave the head alone
	broken := tc.cb.TipSet(heavy, fbig.NewInt(5000), -1)
	require.NoError(t, tc.store.PutTipSet(ctx, broken))
	_, err = tc.store.MaybeTakeHeavierTipSet(ctx, broken)
	assert.True(t, errors.Is(err, chainselector.ErrMissingElectionProof))
	assert.True(t, heavy.Equals(tc.store.GetHead()))
}

func TestLoadAndReboot(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()
	tc := newTestChain(t)

	gen := tc.cb.Genesis()
	child := tc.cb.TipSet(gen, fbig.NewInt(100), 1, 1)
	for _, ts := range []*types.TipSet{gen, child} {
		require.NoError(t, tc.store.PutTipSet(ctx, ts))
	}
	require.NoError(t, tc.store.SetHead(ctx, child))

	rebooted := chain.NewStore(tc.ds, newSelector(t, tc.root))
	for _, ts := range []*types.TipSet{gen, child} {
		require.NoError(t, rebooted.PutTipSet(ctx, ts))
	}
	require.NoError(t, rebooted.Load(ctx))
	assert.True(t, child.Equals(rebooted.GetHead()))

	empty := chain.NewStore(dssync.MutexWrap(datastore.NewMapDatastore()), newSelector(t, tc.root))
	assert.Error(t, empty.Load(ctx))
}
