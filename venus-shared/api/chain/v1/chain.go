package v1

import (
	"context"

	"github.com/filecoin-project/go-state-types/big"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

type IChainInfo interface {
	// ChainHeadKey returns the key of the heaviest tipset known to the node.
	ChainHeadKey(ctx context.Context) (types.TipSetKey, error) //perm:read
	// ChainTipSetWeight computes weight for the specified tipset.
	ChainTipSetWeight(ctx context.Context, tsk types.TipSetKey) (big.Int, error) //perm:read
}
