package chainselector

import (
	"bytes"
	"context"
	"time"

	fbig "github.com/filecoin-project/go-state-types/big"
	lru "github.com/hashicorp/golang-lru"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/filecoin-project/venus-gas/pkg/config"
	"github.com/filecoin-project/venus-gas/pkg/metrics"
	"github.com/filecoin-project/venus-gas/pkg/state"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// ErrUnorderedTipSets is returned when weight and minticket are the same between two tipsets.
var ErrUnorderedTipSets = errors.New("trying to order two identical tipsets")

// StateViewer provides power views of state roots.
type StateViewer interface {
	PowerStateView(root cid.Cid) state.PowerStateView
}

// ChainSelector weighs and compares chains.
type ChainSelector struct {
	state    StateViewer
	weights  *lru.Cache
	inflight singleflight.Group
	observer metrics.Observer
}

// NewChainSelector is the constructor for chain selection module. A nil
// observer disables metrics.
func NewChainSelector(state StateViewer, cfg *config.ChainSelectorConfig, observer metrics.Observer) (*ChainSelector, error) {
	weights, err := lru.New(cfg.WeightCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating weight cache")
	}
	if observer == nil {
		observer = metrics.NoopObserver{}
	}
	return &ChainSelector{
		state:    state,
		weights:  weights,
		observer: observer,
	}, nil
}

// Weight returns the EC weight of this TipSet. Weights are cached by tipset
// key and concurrent requests for the same tipset share one computation.
func (c *ChainSelector) Weight(ctx context.Context, ts *types.TipSet) (fbig.Int, error) {
	if !ts.Defined() {
		return fbig.Zero(), errors.New("cannot weigh an undefined tipset")
	}
	if w, ok := c.weights.Get(ts.Key()); ok {
		return w.(fbig.Int), nil
	}

	pStateID := ts.ParentState()
	if !pStateID.Defined() {
		return fbig.Zero(), ErrUndefinedState
	}

	// The shared computation outlives any one caller, so it runs detached
	// and each caller waits on it under its own context.
	ch := c.inflight.DoChan(string(ts.Key().Bytes()), func() (interface{}, error) {
		ctx := context.Background()
		start := time.Now()
		w, err := weight(ctx, c.state.PowerStateView(pStateID), ts)
		c.observer.WeightComputed(ctx, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		c.weights.Add(ts.Key(), w)
		return w, nil
	})
	select {
	case <-ctx.Done():
		return fbig.Zero(), ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return fbig.Zero(), res.Err
		}
		return res.Val.(fbig.Int), nil
	}
}

// IsHeavier returns true if tipset a is heavier than tipset b, and false
// vice versa.  In the rare case where two tipsets have the same weight ties
// are broken by taking the tipset with the smallest ticket.  In the event that
// tickets are the same, IsHeavier will break ties by comparing the
// concatenation of block cids in the tipset.
func (c *ChainSelector) IsHeavier(ctx context.Context, a, b *types.TipSet) (bool, error) {
	aW, err := c.Weight(ctx, a)
	if err != nil {
		return false, err
	}
	bW, err := c.Weight(ctx, b)
	if err != nil {
		return false, err
	}
	// Without ties pass along the comparison.
	if !aW.Equals(bW) {
		return aW.GreaterThan(bW), nil
	}

	// To break ties compare the min tickets.
	cmp := bytes.Compare(vrfProof(b.MinTicket()), vrfProof(a.MinTicket()))
	if cmp != 0 {
		// a is heavier if b's ticket is greater than a's ticket.
		return cmp == 1, nil
	}

	// Tie break on cid ids.
	cmp = bytes.Compare(a.Key().Bytes(), b.Key().Bytes())
	if cmp == 0 {
		// Caller is mistakenly calling on two identical tipsets.
		return false, ErrUnorderedTipSets
	}
	return cmp == 1, nil
}

func vrfProof(t *types.Ticket) []byte {
	if t == nil {
		return nil
	}
	return t.VRFProof
}
