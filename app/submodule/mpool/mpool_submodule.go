package mpool

import (
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-gas/app/submodule/chain"
	"github.com/filecoin-project/venus-gas/pkg/config"
	"github.com/filecoin-project/venus-gas/pkg/messagepool"
	"github.com/filecoin-project/venus-gas/pkg/metrics"
)

var log = logging.Logger("mpool")

// MessagePoolSubmodule enhances the `Node` with gas estimation over the
// pending messages it holds.
type MessagePoolSubmodule struct { //nolint
	MPool   *messagepool.GasEstimator
	Pending *messagepool.PendingStore
}

// NewMpoolSubmodule creates the pool. Speculative execution is delegated to caller.
func NewMpoolSubmodule(cfg *config.Config,
	chain *chain.ChainSubmodule,
	caller messagepool.Caller,
	observer metrics.Observer,
) (*MessagePoolSubmodule, error) {
	pending := messagepool.NewPendingStore()
	resolver := messagepool.NewStateResolver(chain.Viewer)

	mp, err := messagepool.NewGasEstimator(chain.ChainReader, pending, caller, resolver, cfg.Gas, messagepool.WithObserver(observer))
	if err != nil {
		return nil, xerrors.Errorf("constructing gas estimator: %w", err)
	}

	return &MessagePoolSubmodule{
		MPool:   mp,
		Pending: pending,
	}, nil
}

func (mp *MessagePoolSubmodule) API() *MessagePoolAPI {
	return &MessagePoolAPI{
		mp: mp,
	}
}
