package chainselector

// This is to implement Expected Consensus protocol
// See: https://github.com/filecoin-project/specs/blob/master/expected-consensus.md

import (
	"context"
	"math/big"

	fbig "github.com/filecoin-project/go-state-types/big"
	cbor "github.com/ipfs/go-ipld-cbor"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/filecoin-project/venus-gas/pkg/constants"
	"github.com/filecoin-project/venus-gas/pkg/state"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

var log = logging.Logger("chainselector")

var (
	// ErrActorNotFound is returned when the power actor is missing at the parent state root.
	ErrActorNotFound = types.ErrActorNotFound
	// ErrNetworkPowerExhausted is returned when total network power is not positive.
	ErrNetworkPowerExhausted = errors.New("all power in the net is gone. You network might be disconnected, or the net is dead")
	// ErrMissingElectionProof is returned when a block of the tipset carries no election proof.
	ErrMissingElectionProof = errors.New("block has no election proof")
	// ErrUndefinedState is returned when the tipset has no parent state root.
	ErrUndefinedState = errors.New("undefined state passed to chain selector new weight")
)

// Weight returns the EC weight of this TipSet as a filecoin big int.
func Weight(ctx context.Context, cborStore cbor.IpldStore, ts *types.TipSet) (fbig.Int, error) {
	if !ts.Defined() {
		return fbig.Zero(), errors.New("cannot weigh an undefined tipset")
	}
	pStateID := ts.ParentState()
	// Retrieve parent weight.
	if !pStateID.Defined() {
		return fbig.Zero(), ErrUndefinedState
	}
	view := state.NewView(cborStore, pStateID)

	return weight(ctx, view, ts)
}

// weight is easy for test
func weight(ctx context.Context, view state.PowerStateView, ts *types.TipSet) (fbig.Int, error) {
	total, err := view.PowerNetworkTotal(ctx)
	if err != nil {
		return fbig.Zero(), errors.Wrapf(err, "loading network power for %s", ts.Key())
	}
	networkPower := total.QualityAdjustedPower

	log2P := int64(0)
	if networkPower.Int != nil && networkPower.GreaterThan(fbig.NewInt(0)) {
		log2P = int64(networkPower.BitLen() - 1)
	} else {
		// Not really expect to be here ...
		return fbig.Zero(), ErrNetworkPowerExhausted
	}

	// (wFunction(totalPowerAtTipset(ts)) * sum(ts.blocks[].ElectionProof.WinCount) * wRatio_num * 2^8) / (e * wRatio_den)

	totalJ := int64(0)
	for _, b := range ts.Blocks() {
		if b.ElectionProof == nil {
			return fbig.Zero(), errors.Wrapf(ErrMissingElectionProof, "block %s", b.Cid())
		}
		totalJ += b.ElectionProof.WinCount
	}

	out := new(big.Int)
	if weight := ts.ParentWeight(); weight.Int != nil {
		out.Set(weight.Int)
	}
	out.Add(out, big.NewInt(log2P<<8))

	eWeight := big.NewInt(log2P * constants.WRatioNum)
	eWeight = eWeight.Lsh(eWeight, 8)
	eWeight = eWeight.Mul(eWeight, new(big.Int).SetInt64(totalJ))
	eWeight = eWeight.Div(eWeight, new(big.Int).SetUint64(constants.ExpectedLeadersPerEpoch*constants.WRatioDen))

	out = out.Add(out, eWeight)

	log.Debugw("computed tipset weight", "tipset", ts.Key(), "log2P", log2P, "winCount", totalJ, "weight", out)
	return fbig.Int{Int: out}, nil
}
