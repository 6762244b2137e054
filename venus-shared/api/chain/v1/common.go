package v1

import (
	"context"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// FullAPIVersion is the semver version of the rpc api exposed
var FullAPIVersion = types.NewVer(1, 0, 0)

type ICommon interface {
	// Version provides information about API provider
	Version(ctx context.Context) (types.Version, error) //perm:read
}
