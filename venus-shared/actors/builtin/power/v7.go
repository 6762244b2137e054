package power

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"

	power7 "github.com/filecoin-project/specs-actors/v7/actors/builtin/power"

	"github.com/filecoin-project/venus-gas/venus-shared/actors/adt"
)

var _ State = (*state7)(nil)

func load7(store adt.Store, root cid.Cid) (State, error) {
	out := state7{store: store}
	if err := store.Get(store.Context(), root, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type state7 struct {
	power7.State
	store adt.Store
}

func (s *state7) TotalPower() (raw, qa abi.StoragePower) {
	return s.TotalRawBytePower, s.TotalQualityAdjPower
}
