package messagepool

import (
	"context"

	"github.com/filecoin-project/go-address"

	"github.com/filecoin-project/venus-gas/pkg/state"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// StateResolver resolves addresses against the parent state of a tipset.
type StateResolver struct {
	viewer *state.Viewer
}

var _ AddressResolver = (*StateResolver)(nil)

func NewStateResolver(viewer *state.Viewer) *StateResolver {
	return &StateResolver{viewer: viewer}
}

func (r *StateResolver) ResolveToKeyAddr(ctx context.Context, addr address.Address, ts *types.TipSet) (address.Address, error) {
	return r.viewer.StateView(ts.ParentState()).ResolveToKeyAddr(ctx, addr)
}
