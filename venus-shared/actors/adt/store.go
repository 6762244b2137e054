package adt

import (
	"context"

	adt7 "github.com/filecoin-project/specs-actors/v7/actors/util/adt"
	cbor "github.com/ipfs/go-ipld-cbor"
)

// Store is an IPLD store bound to the context its reads and writes run under.
type Store interface {
	Context() context.Context
	cbor.IpldStore
}

// WrapStore binds store to ctx.
func WrapStore(ctx context.Context, store cbor.IpldStore) Store {
	return adt7.WrapStore(ctx, store)
}
