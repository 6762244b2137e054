package account

import (
	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-cid"

	account4 "github.com/filecoin-project/specs-actors/v4/actors/builtin/account"

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
	account4.State
	store adt.Store
}

func (s *state4) PubkeyAddress() (address.Address, error) {
	return s.Address, nil
}
