package chain

import (
	"context"

	"github.com/filecoin-project/go-state-types/big"
	logging "github.com/ipfs/go-log/v2"

	v1api "github.com/filecoin-project/venus-gas/venus-shared/api/chain/v1"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

var _ v1api.IChainInfo = &chainInfoAPI{}

type chainInfoAPI struct { //nolint
	chain *ChainSubmodule
}

var log = logging.Logger("chain")

//NewChainInfoAPI new chain info api
func NewChainInfoAPI(chain *ChainSubmodule) v1api.IChainInfo {
	return &chainInfoAPI{chain: chain}
}

// ChainHeadKey returns the key of the current head.
func (cia *chainInfoAPI) ChainHeadKey(ctx context.Context) (types.TipSetKey, error) {
	head, err := cia.chain.ChainReader.GetTipSet(ctx, types.EmptyTSK)
	if err != nil {
		return types.EmptyTSK, err
	}
	return head.Key(), nil
}

// ChainTipSetWeight computes weight for the specified tipset.
func (cia *chainInfoAPI) ChainTipSetWeight(ctx context.Context, tsk types.TipSetKey) (big.Int, error) {
	ts, err := cia.chain.ChainReader.GetTipSet(ctx, tsk)
	if err != nil {
		return big.Int{}, err
	}
	return cia.chain.Selector.Weight(ctx, ts)
}
