package power

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"

	power4 "github.com/filecoin-project/specs-actors/v4/actors/builtin/power"

	"github.com/filecoin-project/venus-gas/venus-shared/actors/adt"
)

var _ State = (*state4)(nil)

func load4(store adt.Store, root cid.Cid) (State, error) {
	out := state4{store: store}
	if err := store.Get(store.Context(), root, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type state4 struct {
	power4.State
	store adt.Store
}

func (s *state4) TotalPower() (raw, qa abi.StoragePower) {
	return s.TotalRawBytePower, s.TotalQualityAdjPower
}
