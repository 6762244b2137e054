package types

import (
	cbor "github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// canonical CBOR keeps the serialized form, and therefore every derived CID,
// independent of map iteration order.
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
}

func encodeBig(v BigInt) ([]byte, error) {
	if v.Int == nil {
		return nil, nil
	}
	return v.Bytes()
}

func cidsBytes(cids []cid.Cid) [][]byte {
	out := make([][]byte, len(cids))
	for i, c := range cids {
		out[i] = c.Bytes()
	}
	return out
}

// cidBuilder derives dag-cbor CIDs over blake2b-256.
var cidBuilder = cid.V1Builder{Codec: cid.DagCBOR, MhType: mh.BLAKE2B_MIN + 31}

func sumCid(data []byte) (cid.Cid, error) {
	return cidBuilder.Sum(data)
}
