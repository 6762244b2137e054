package power

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/cbor"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	builtin3 "github.com/filecoin-project/specs-actors/v3/actors/builtin"
	builtin4 "github.com/filecoin-project/specs-actors/v4/actors/builtin"
	builtin5 "github.com/filecoin-project/specs-actors/v5/actors/builtin"
	builtin6 "github.com/filecoin-project/specs-actors/v6/actors/builtin"
	builtin7 "github.com/filecoin-project/specs-actors/v7/actors/builtin"
	power7 "github.com/filecoin-project/specs-actors/v7/actors/builtin/power"

	"github.com/filecoin-project/venus-gas/venus-shared/actors/adt"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// Address is the singleton address of the storage power actor.
var Address = builtin7.StoragePowerActorAddr

// Load decodes the state of a storage power actor of any supported version.
func Load(store adt.Store, act *types.Actor) (State, error) {
	switch act.Code {
	case builtin3.StoragePowerActorCodeID:
		return load3(store, act.Head)
	case builtin4.StoragePowerActorCodeID:
		return load4(store, act.Head)
	case builtin5.StoragePowerActorCodeID:
		return load5(store, act.Head)
	case builtin6.StoragePowerActorCodeID:
		return load6(store, act.Head)
	case builtin7.StoragePowerActorCodeID:
		return load7(store, act.Head)
	}
	return nil, xerrors.Errorf("unknown actor code %s", act.Code)
}

// MakeState writes a fresh storage power state of the newest version
// holding the given network totals, and returns its head.
func MakeState(store adt.Store, raw, qa abi.StoragePower) (cid.Cid, error) {
	st, err := power7.ConstructState(store)
	if err != nil {
		return cid.Undef, xerrors.Errorf("constructing power state: %w", err)
	}
	st.TotalRawBytePower = raw
	st.TotalBytesCommitted = raw
	st.TotalQualityAdjPower = qa
	st.TotalQABytesCommitted = qa
	return store.Put(store.Context(), st)
}

// State is a version independent view of storage power actor state.
type State interface {
	cbor.Marshaler

	// TotalPower returns the network raw-byte and quality-adjusted power.
	TotalPower() (raw, qa abi.StoragePower)
}
