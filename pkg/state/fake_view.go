package state

import (
	"context"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/pkg/errors"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// FakeStateView is a fake state view.
type FakeStateView struct {
	NetworkPower *NetworkPower
	// PowerErr, when set, is returned by PowerNetworkTotal.
	PowerErr error
	// KeyAddrs maps ID addresses to key addresses.
	KeyAddrs map[address.Address]address.Address
}

var (
	_ PowerStateView   = (*FakeStateView)(nil)
	_ AccountStateView = (*FakeStateView)(nil)
)

// NewFakeStateView creates a new fake state view.
func NewFakeStateView(rawBytePower, qaPower abi.StoragePower) *FakeStateView {
	return &FakeStateView{
		NetworkPower: &NetworkPower{
			RawBytePower:         rawBytePower,
			QualityAdjustedPower: qaPower,
		},
		KeyAddrs: make(map[address.Address]address.Address),
	}
}

func (v *FakeStateView) PowerNetworkTotal(_ context.Context) (*NetworkPower, error) {
	if v.PowerErr != nil {
		return nil, v.PowerErr
	}
	return v.NetworkPower, nil
}

func (v *FakeStateView) ResolveToKeyAddr(_ context.Context, addr address.Address) (address.Address, error) {
	if addr.Protocol() == address.BLS || addr.Protocol() == address.SECP256K1 {
		return addr, nil
	}
	key, ok := v.KeyAddrs[addr]
	if !ok {
		return address.Undef, errors.Wrapf(types.ErrActorNotFound, "address is :%s", addr)
	}
	return key, nil
}
