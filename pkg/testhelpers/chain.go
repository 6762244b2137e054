package testhelpers

import (
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	fbig "github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// MakeFakeTicketForTest creates a fake ticket
func MakeFakeTicketForTest() *types.Ticket {
	val := make([]byte, 65)
	val[0] = 200
	return &types.Ticket{
		VRFProof: val,
	}
}

// MakeFakeVRFProofForTest creates a fake election proof
func MakeFakeVRFProofForTest() []byte {
	proof := make([]byte, 65)
	proof[0] = 42
	return proof
}

// CidFromString generates a CID from an arbitrary string.
func CidFromString(t *testing.T, input string) cid.Cid {
	c, err := abi.CidBuilder.Sum([]byte(input))
	require.NoError(t, err)
	return c
}

// ChainBuilder produces chains of blocks sharing a state root. Every block it
// makes is distinct, even when built on the same parent with the same miner.
type ChainBuilder struct {
	t         *testing.T
	stateRoot cid.Cid
	minerAddr func() address.Address
	seq       uint64
}

// NewChainBuilder creates a builder whose blocks all point at stateRoot.
func NewChainBuilder(t *testing.T, stateRoot cid.Cid) *ChainBuilder {
	return &ChainBuilder{
		t:         t,
		stateRoot: stateRoot,
		minerAddr: NewForTestGetter(),
	}
}

// Block returns a block on top of parent with the given parent weight and
// election proof win count. A win count below zero leaves the election proof unset.
func (cb *ChainBuilder) Block(parent *types.TipSet, parentWeight fbig.Int, winCount int64) *types.BlockHeader {
	cb.seq++
	ticket := MakeFakeTicketForTest()
	ticket.VRFProof[1] = byte(cb.seq)
	ticket.VRFProof[2] = byte(cb.seq >> 8)

	blk := &types.BlockHeader{
		Miner:                 cb.minerAddr(),
		Ticket:                ticket,
		ParentWeight:          parentWeight,
		ParentStateRoot:       cb.stateRoot,
		ParentMessageReceipts: cb.stateRoot,
		Messages:              cb.stateRoot,
		ParentBaseFee:         abi.NewTokenAmount(100),
		Timestamp:             cb.seq,
	}
	if parent.Defined() {
		blk.Parents = parent.Cids()
		blk.Height = parent.Height() + 1
	}
	if winCount >= 0 {
		blk.ElectionProof = &types.ElectionProof{
			WinCount: winCount,
			VRFProof: MakeFakeVRFProofForTest(),
		}
	}
	return blk
}

// TipSet builds a tipset of one block per win count on top of parent.
func (cb *ChainBuilder) TipSet(parent *types.TipSet, parentWeight fbig.Int, winCounts ...int64) *types.TipSet {
	blks := make([]*types.BlockHeader, len(winCounts))
	for i, wc := range winCounts {
		blks[i] = cb.Block(parent, parentWeight, wc)
	}
	return RequireNewTipSet(cb.t, blks...)
}

// Genesis builds a single block tipset at height zero.
func (cb *ChainBuilder) Genesis() *types.TipSet {
	return cb.TipSet(nil, fbig.Zero(), 1)
}

// RequireNewTipSet instantiates and returns a new tipset of the given blocks
// and requires that the setup validation succeed.
func RequireNewTipSet(t *testing.T, blks ...*types.BlockHeader) *types.TipSet {
	ts, err := types.NewTipSet(blks)
	require.NoError(t, err)
	return ts
}
