package state

import (
	"context"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
)

// PowerStateView is a view of chain state for election and weight computations.
type PowerStateView interface {
	PowerNetworkTotal(ctx context.Context) (*NetworkPower, error)
}

// AccountStateView resolves account actors to the key addresses that control them.
type AccountStateView interface {
	ResolveToKeyAddr(ctx context.Context, maddr address.Address) (address.Address, error)
}

var (
	_ PowerStateView   = (*View)(nil)
	_ AccountStateView = (*View)(nil)
)

// PowerTableView is an interface to the network power table.
// Weights use the quality-adjusted power, rather than raw byte power.
type PowerTableView struct {
	state PowerStateView
}

func NewPowerTableView(state PowerStateView) PowerTableView {
	return PowerTableView{state: state}
}

// NetworkTotalPower returns the network's total quality-adjusted power.
func (v PowerTableView) NetworkTotalPower(ctx context.Context) (abi.StoragePower, error) {
	total, err := v.state.PowerNetworkTotal(ctx)
	if err != nil {
		return big.Zero(), err
	}
	return total.QualityAdjustedPower, nil
}
