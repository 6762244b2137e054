package chain

import (
	"context"

	"github.com/ipfs/go-datastore"
	cbor "github.com/ipfs/go-ipld-cbor"
	"github.com/pkg/errors"

	"github.com/filecoin-project/venus-gas/pkg/chain"
	"github.com/filecoin-project/venus-gas/pkg/config"
	"github.com/filecoin-project/venus-gas/pkg/consensus/chainselector"
	"github.com/filecoin-project/venus-gas/pkg/metrics"
	"github.com/filecoin-project/venus-gas/pkg/state"
	v1api "github.com/filecoin-project/venus-gas/venus-shared/api/chain/v1"
)

// ChainSubmodule enhances the `Node` with chain capabilities.
type ChainSubmodule struct { //nolint
	ChainReader *chain.Store
	Selector    *chainselector.ChainSelector
	CborStore   cbor.IpldStore
	Viewer      *state.Viewer
}

// NewChainSubmodule creates a new chain submodule. The head recorded in ds is
// restored if its tipset is known, otherwise the head starts unset.
func NewChainSubmodule(ctx context.Context,
	cfg *config.Config,
	ds datastore.Datastore,
	cborStore cbor.IpldStore,
	observer metrics.Observer,
) (*ChainSubmodule, error) {
	viewer := state.NewViewer(cborStore)
	selector, err := chainselector.NewChainSelector(viewer, cfg.ChainSelector, observer)
	if err != nil {
		return nil, err
	}

	chainStore := chain.NewStore(ds, selector)
	if err := chainStore.Load(ctx); err != nil {
		switch {
		case errors.Is(err, datastore.ErrNotFound):
			log.Info("no head recorded, starting with an empty chain")
		case errors.Is(err, chain.ErrNotFound):
			log.Warnf("recorded head is not in the store, starting with an empty chain: %s", err)
		default:
			return nil, err
		}
	}

	return &ChainSubmodule{
		ChainReader: chainStore,
		Selector:    selector,
		CborStore:   cborStore,
		Viewer:      viewer,
	}, nil
}

func (chain *ChainSubmodule) API() v1api.IChainInfo {
	return NewChainInfoAPI(chain)
}
