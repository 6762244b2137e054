package chainselector

import (
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/venus-gas/pkg/state"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// FakeConsensusStateViewer is a fake power state viewer.
type FakeConsensusStateViewer struct {
	Views map[cid.Cid]*state.FakeStateView
}

// PowerStateView returns the fake view for root.
func (f *FakeConsensusStateViewer) PowerStateView(root cid.Cid) state.PowerStateView {
	if v, ok := f.Views[root]; ok {
		return v
	}
	missing := state.NewFakeStateView(big.Zero(), big.Zero())
	missing.PowerErr = types.ErrActorNotFound
	return missing
}
