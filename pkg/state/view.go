package state

import (
	"context"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	"github.com/pkg/errors"

	vmstate "github.com/filecoin-project/venus-gas/pkg/state/tree"
	"github.com/filecoin-project/venus-gas/venus-shared/actors/adt"
	"github.com/filecoin-project/venus-gas/venus-shared/actors/builtin"
	"github.com/filecoin-project/venus-gas/venus-shared/actors/builtin/account"
	"github.com/filecoin-project/venus-gas/venus-shared/actors/builtin/power"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// NetworkPower is the storage power actor's view of network totals.
type NetworkPower struct {
	RawBytePower         abi.StoragePower
	QualityAdjustedPower abi.StoragePower
}

// Viewer builds state views from state root CIDs.
type Viewer struct {
	ipldStore cbor.IpldStore
}

// NewViewer creates a new state
func NewViewer(store cbor.IpldStore) *Viewer {
	return &Viewer{store}
}

// StateView returns a new state view.
func (c *Viewer) StateView(root cid.Cid) *View {
	return NewView(c.ipldStore, root)
}

// PowerStateView returns the power view of the state at root.
func (c *Viewer) PowerStateView(root cid.Cid) PowerStateView {
	return c.StateView(root)
}

// View is a read-only interface to a snapshot of application-level actor state.
// Exported methods on this type avoid exposing concrete state structures where possible.
type View struct {
	ipldStore cbor.IpldStore
	root      cid.Cid
}

// NewView creates a new state view
func NewView(store cbor.IpldStore, root cid.Cid) *View {
	return &View{
		ipldStore: store,
		root:      root,
	}
}

// LoadActor load actor from tree. A missing actor is reported as
// types.ErrActorNotFound.
func (v *View) LoadActor(ctx context.Context, address addr.Address) (*types.Actor, error) {
	return v.loadActor(ctx, address)
}

// LoadPowerState returns the storage power actor state.
func (v *View) LoadPowerState(ctx context.Context) (power.State, error) {
	actr, err := v.loadActor(ctx, power.Address)
	if err != nil {
		return nil, err
	}
	if !builtin.IsStoragePowerActor(actr.Code) {
		return nil, errors.Errorf("actor at %s has code %s, not storage power", power.Address, actr.Code)
	}

	return power.Load(adt.WrapStore(ctx, v.ipldStore), actr)
}

// PowerNetworkTotal returns the storage power actor's values for network total power.
func (v *View) PowerNetworkTotal(ctx context.Context) (*NetworkPower, error) {
	st, err := v.LoadPowerState(ctx)
	if err != nil {
		return nil, err
	}

	raw, qa := st.TotalPower()
	return &NetworkPower{
		RawBytePower:         raw,
		QualityAdjustedPower: qa,
	}, nil
}

// ResolveToKeyAddr returns the public key type of address (`BLS`/`SECP256K1`) of an account actor identified by `addr`.
func (v *View) ResolveToKeyAddr(ctx context.Context, address addr.Address) (addr.Address, error) {
	if address.Protocol() == addr.BLS || address.Protocol() == addr.SECP256K1 {
		return address, nil
	}

	act, err := v.loadActor(ctx, address)
	if err != nil {
		return addr.Undef, errors.Wrapf(err, "failed to find actor: %s", address)
	}
	if !builtin.IsAccountActor(act.Code) {
		return addr.Undef, errors.Errorf("address %s is not an account actor", address)
	}

	aast, err := account.Load(adt.WrapStore(ctx, v.ipldStore), act)
	if err != nil {
		return addr.Undef, errors.Wrapf(err, "failed to get account actor state for %s", address)
	}

	return aast.PubkeyAddress()
}

func (v *View) loadActor(ctx context.Context, address addr.Address) (*types.Actor, error) {
	tree, err := vmstate.LoadState(ctx, v.ipldStore, v.root)
	if err != nil {
		return nil, err
	}
	actor, found, err := tree.GetActor(ctx, address)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(types.ErrActorNotFound, "address is :%s", address)
	}

	return actor, err
}
