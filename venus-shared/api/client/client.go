package client

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	v1 "github.com/filecoin-project/venus-gas/venus-shared/api/chain/v1"
)

func NewFullRPCV1(ctx context.Context, addr string, header http.Header) (v1.FullNode, jsonrpc.ClientCloser, error) {
	var full v1.FullNodeStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Filecoin",
		[]interface{}{
			&full.ICommonStruct.Internal,
			&full.IChainInfoStruct.Internal,
			&full.IMessagePoolStruct.Internal,
		},
		header)
	return &full, closer, err
}
