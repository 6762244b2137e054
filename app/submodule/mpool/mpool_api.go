package mpool

import (
	"context"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	v1api "github.com/filecoin-project/venus-gas/venus-shared/api/chain/v1"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

var _ v1api.IMessagePool = &MessagePoolAPI{}

//MessagePoolAPI messsage pool api implement
type MessagePoolAPI struct {
	mp *MessagePoolSubmodule
}

// MpoolPush pushes a signed message to mempool.
func (a *MessagePoolAPI) MpoolPush(ctx context.Context, smsg *types.SignedMessage) (cid.Cid, error) {
	if smsg == nil {
		return cid.Undef, xerrors.New("signed message is nil")
	}
	msg := &smsg.Message
	if !types.IsZeroOrNil(msg.GasPremium) && (types.IsZeroOrNil(msg.GasFeeCap) || msg.GasPremium.GreaterThan(msg.GasFeeCap)) {
		return cid.Undef, xerrors.Errorf("message %s has premium %s above fee cap %s", smsg.Cid(), msg.GasPremium, msg.GasFeeCap)
	}
	if err := a.mp.Pending.Add(smsg); err != nil {
		return cid.Undef, err
	}
	log.Debugw("pushed message", "from", msg.From, "nonce", msg.Nonce)
	return smsg.Cid(), nil
}

// GasEstimateMessageGas estimates gas values for unset message gas fields
func (a *MessagePoolAPI) GasEstimateMessageGas(ctx context.Context, msg *types.Message, spec *types.MessageSendSpec, tsk types.TipSetKey) (*types.Message, error) {
	return a.mp.MPool.GasEstimateMessageGas(ctx, &types.EstimateMessage{Msg: msg, Spec: spec}, tsk)
}

func (a *MessagePoolAPI) GasBatchEstimateMessageGas(ctx context.Context, estimateMessages []*types.EstimateMessage, fromNonce uint64, tsk types.TipSetKey) ([]*types.EstimateResult, error) {
	return a.mp.MPool.GasBatchEstimateMessageGas(ctx, estimateMessages, fromNonce, tsk)
}

// GasEstimateFeeCap estimates gas fee cap
func (a *MessagePoolAPI) GasEstimateFeeCap(ctx context.Context, msg *types.Message, maxqueueblks int64, tsk types.TipSetKey) (big.Int, error) {
	return a.mp.MPool.GasEstimateFeeCap(ctx, msg, maxqueueblks, tsk)
}

func (a *MessagePoolAPI) GasEstimateGasLimit(ctx context.Context, msgIn *types.Message, tsk types.TipSetKey) (int64, error) {
	return a.mp.MPool.GasEstimateGasLimit(ctx, msgIn, tsk)
}

// GasEstimateGasPremium estimates what gas price should be used for a
// message to have high likelihood of inclusion in `nblocksincl` epochs.
func (a *MessagePoolAPI) GasEstimateGasPremium(ctx context.Context, nblocksincl uint64, sender address.Address, gaslimit int64, tsk types.TipSetKey) (big.Int, error) {
	return a.mp.MPool.GasEstimateGasPremium(ctx, nblocksincl, sender, gaslimit, tsk)
}
