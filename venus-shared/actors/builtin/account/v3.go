package account

import (
	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-cid"

	account3 "github.com/filecoin-project/specs-actors/v3/actors/builtin/account"

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
	account3.State
	store adt.Store
}

func (s *state3) PubkeyAddress() (address.Address, error) {
	return s.Address, nil
}
