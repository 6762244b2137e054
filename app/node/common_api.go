package node

import (
	"context"

	"github.com/filecoin-project/venus-gas/pkg/constants"
	v1api "github.com/filecoin-project/venus-gas/venus-shared/api/chain/v1"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

var _ v1api.ICommon = &commonAPI{}

type commonAPI struct{}

// Version provides information about API provider
func (a *commonAPI) Version(ctx context.Context) (types.Version, error) {
	return types.Version{
		Version:    constants.UserVersion(),
		APIVersion: v1api.FullAPIVersion,
	}, nil
}
