package power

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"

	power6 "github.com/filecoin-project/specs-actors/v6/actors/builtin/power"

	"github.com/filecoin-project/venus-gas/venus-shared/actors/adt"
)

var _ State = (*state6)(nil)

func load6(store adt.Store, root cid.Cid) (State, error) {
	out := state6{store: store}
	if err := store.Get(store.Context(), root, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type state6 struct {
	power6.State
	store adt.Store
}

func (s *state6) TotalPower() (raw, qa abi.StoragePower) {
	return s.TotalRawBytePower, s.TotalQualityAdjPower
}
