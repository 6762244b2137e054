package testhelpers

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/venus-gas/pkg/state/tree"
	"github.com/filecoin-project/venus-gas/venus-shared/actors/adt"
	"github.com/filecoin-project/venus-gas/venus-shared/actors/builtin"
	"github.com/filecoin-project/venus-gas/venus-shared/actors/builtin/account"
	"github.com/filecoin-project/venus-gas/venus-shared/actors/builtin/power"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// StateBuilder assembles a state tree holding a storage power actor and
// any number of account actors.
type StateBuilder struct {
	t     *testing.T
	store adt.Store
	tree  *tree.State
}

// NewStateBuilder creates a builder writing a version 4 tree into store.
func NewStateBuilder(t *testing.T, store cbor.IpldStore) *StateBuilder {
	st, err := tree.NewState(store, tree.StateTreeVersion4)
	require.NoError(t, err)
	return &StateBuilder{t: t, store: adt.WrapStore(context.Background(), store), tree: st}
}

// WithPower installs a storage power actor reporting the given totals.
func (sb *StateBuilder) WithPower(raw, qa abi.StoragePower) *StateBuilder {
	head, err := power.MakeState(sb.store, raw, qa)
	require.NoError(sb.t, err)
	act := types.NewActor(builtin.StoragePowerActorCodeID, big.Zero(), head, builtin.StoragePowerActorAddr)
	require.NoError(sb.t, sb.tree.SetActor(sb.store.Context(), builtin.StoragePowerActorAddr, act))
	return sb
}

// WithAccount installs an account actor at id controlled by key.
func (sb *StateBuilder) WithAccount(id, key address.Address, balance abi.TokenAmount) *StateBuilder {
	head, err := account.MakeState(sb.store, key)
	require.NoError(sb.t, err)
	act := types.NewActor(builtin.AccountActorCodeID, balance, head, key)
	require.NoError(sb.t, sb.tree.SetActor(sb.store.Context(), id, act))
	return sb
}

// Flush writes the tree and returns its root.
func (sb *StateBuilder) Flush() cid.Cid {
	root, err := sb.tree.Flush(sb.store.Context())
	require.NoError(sb.t, err)
	return root
}

// RequirePowerState returns the root of a state tree holding only a power actor
// with quality adjusted power qa.
func RequirePowerState(t *testing.T, store cbor.IpldStore, qa abi.StoragePower) cid.Cid {
	return NewStateBuilder(t, store).WithPower(qa, qa).Flush()
}
