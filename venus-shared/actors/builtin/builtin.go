package builtin

import (
	"github.com/ipfs/go-cid"

	builtin3 "github.com/filecoin-project/specs-actors/v3/actors/builtin"
	builtin4 "github.com/filecoin-project/specs-actors/v4/actors/builtin"
	builtin5 "github.com/filecoin-project/specs-actors/v5/actors/builtin"
	builtin6 "github.com/filecoin-project/specs-actors/v6/actors/builtin"
	builtin7 "github.com/filecoin-project/specs-actors/v7/actors/builtin"
)

// StoragePowerActorAddr is the singleton address of the storage power actor.
var StoragePowerActorAddr = builtin7.StoragePowerActorAddr

// Code identifiers of the newest actors version, used when building state.
var (
	AccountActorCodeID      = builtin7.AccountActorCodeID
	StoragePowerActorCodeID = builtin7.StoragePowerActorCodeID
)

// IsAccountActor reports whether code is an account actor code of any
// supported actors version.
func IsAccountActor(code cid.Cid) bool {
	switch code {
	case builtin3.AccountActorCodeID,
		builtin4.AccountActorCodeID,
		builtin5.AccountActorCodeID,
		builtin6.AccountActorCodeID,
		builtin7.AccountActorCodeID:
		return true
	}
	return false
}

// IsStoragePowerActor reports whether code is a storage power actor code of
// any supported actors version.
func IsStoragePowerActor(code cid.Cid) bool {
	switch code {
	case builtin3.StoragePowerActorCodeID,
		builtin4.StoragePowerActorCodeID,
		builtin5.StoragePowerActorCodeID,
		builtin6.StoragePowerActorCodeID,
		builtin7.StoragePowerActorCodeID:
		return true
	}
	return false
}
