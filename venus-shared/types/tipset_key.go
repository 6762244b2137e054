package types

import (
	"encoding/json"
	"strings"

	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"
)

// EmptyTSK is the key of no tipset. Estimator calls treat it as "the current head".
var EmptyTSK = TipSetKey{}

// TipSetKey identifies a tipset by the CIDs of its blocks, in ticket order.
// Keys are comparable with == and usable as map keys: the value is the
// concatenated binary CIDs.
type TipSetKey struct {
	value string
}

// NewTipSetKey builds a key from block CIDs that are already in canonical order.
func NewTipSetKey(cids ...cid.Cid) TipSetKey {
	var sb strings.Builder
	for _, c := range cids {
		sb.Write(c.Bytes())
	}
	return TipSetKey{value: sb.String()}
}

// TipSetKeyFromBytes parses the output of Bytes.
func TipSetKeyFromBytes(encoded []byte) (TipSetKey, error) {
	if _, err := splitCids(encoded); err != nil {
		return EmptyTSK, xerrors.Errorf("decoding tipset key: %w", err)
	}
	return TipSetKey{value: string(encoded)}, nil
}

// Cids returns the block CIDs of the key.
func (tipsetKey TipSetKey) Cids() []cid.Cid {
	cids, err := splitCids([]byte(tipsetKey.value))
	if err != nil {
		// keys are only built from valid CIDs
		panic("invalid tipset key: " + err.Error())
	}
	return cids
}

// Bytes returns the binary form of the key.
func (tipsetKey TipSetKey) Bytes() []byte {
	return []byte(tipsetKey.value)
}

// IsEmpty reports whether the key names no blocks.
func (tipsetKey TipSetKey) IsEmpty() bool {
	return tipsetKey.value == ""
}

// String renders the key as "{ <cid1> <cid2> }".
func (tipsetKey TipSetKey) String() string {
	cids := tipsetKey.Cids()
	parts := make([]string, 0, len(cids)+2)
	parts = append(parts, "{")
	for _, c := range cids {
		parts = append(parts, c.String())
	}
	parts = append(parts, "}")
	return strings.Join(parts, " ")
}

func (tipsetKey TipSetKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(tipsetKey.Cids())
}

func (tipsetKey *TipSetKey) UnmarshalJSON(b []byte) error {
	var cids []cid.Cid
	if err := json.Unmarshal(b, &cids); err != nil {
		return err
	}
	*tipsetKey = NewTipSetKey(cids...)
	return nil
}

func splitCids(encoded []byte) ([]cid.Cid, error) {
	var cids []cid.Cid
	for len(encoded) > 0 {
		n, c, err := cid.CidFromBytes(encoded)
		if err != nil {
			return nil, err
		}
		cids = append(cids, c)
		encoded = encoded[n:]
	}
	return cids, nil
}
