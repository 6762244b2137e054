package power

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"

	power3 "github.com/filecoin-project/specs-actors/v3/actors/builtin/power"

	"github.com/filecoin-project/venus-gas/venus-shared/actors/adt"
)

var _ State = (*state3)(nil)

func load3(store adt.Store, root cid.Cid) (State, error) {
	out := state3{store: store}
	if err := store.Get(store.Context(), root, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type state3 struct {
	power3.State
	store adt.Store
}

func (s *state3) TotalPower() (raw, qa abi.StoragePower) {
	return s.TotalRawBytePower, s.TotalQualityAdjPower
}
