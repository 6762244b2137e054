package power

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"

	power5 "github.com/filecoin-project/specs-actors/v5/actors/builtin/power"

	"github.com/filecoin-project/venus-gas/venus-shared/actors/adt"
)

var _ State = (*state5)(nil)

func load5(store adt.Store, root cid.Cid) (State, error) {
	out := state5{store: store}
	if err := store.Get(store.Context(), root, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type state5 struct {
	power5.State
	store adt.Store
}

func (s *state5) TotalPower() (raw, qa abi.StoragePower) {
	return s.TotalRawBytePower, s.TotalQualityAdjPower
}
