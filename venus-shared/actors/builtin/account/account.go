package account

import (
	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/cbor"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	account7 "github.com/filecoin-project/specs-actors/v7/actors/builtin/account"
	builtin3 "github.com/filecoin-project/specs-actors/v3/actors/builtin"
	builtin4 "github.com/filecoin-project/specs-actors/v4/actors/builtin"
	builtin5 "github.com/filecoin-project/specs-actors/v5/actors/builtin"
	builtin6 "github.com/filecoin-project/specs-actors/v6/actors/builtin"
	builtin7 "github.com/filecoin-project/specs-actors/v7/actors/builtin"

	"github.com/filecoin-project/venus-gas/venus-shared/actors/adt"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// Load decodes the state of an account actor of any supported version.
func Load(store adt.Store, act *types.Actor) (State, error) {
	switch act.Code {
	case builtin3.AccountActorCodeID:
		return load3(store, act.Head)
	case builtin4.AccountActorCodeID:
		return load4(store, act.Head)
	case builtin5.AccountActorCodeID:
		return load5(store, act.Head)
	case builtin6.AccountActorCodeID:
		return load6(store, act.Head)
	case builtin7.AccountActorCodeID:
		return load7(store, act.Head)
	}
	return nil, xerrors.Errorf("unknown actor code %s", act.Code)
}

// MakeState writes account state of the newest version controlled by key.
func MakeState(store adt.Store, key address.Address) (cid.Cid, error) {
	return store.Put(store.Context(), &account7.State{Address: key})
}

type State interface {
	cbor.Marshaler

	PubkeyAddress() (address.Address, error)
}
