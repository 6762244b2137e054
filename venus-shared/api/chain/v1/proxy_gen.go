package v1

import (
	"context"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

var ErrNotSupported = xerrors.New("method not supported")

type ICommonStruct struct {
	Internal struct {
		Version func(ctx context.Context) (types.Version, error) `perm:"read"`
	}
}

func (s *ICommonStruct) Version(p0 context.Context) (types.Version, error) {
	if s.Internal.Version == nil {
		return types.Version{}, ErrNotSupported
	}
	return s.Internal.Version(p0)
}

type IChainInfoStruct struct {
	Internal struct {
		ChainHeadKey      func(ctx context.Context) (types.TipSetKey, error)                  `perm:"read"`
		ChainTipSetWeight func(ctx context.Context, tsk types.TipSetKey) (big.Int, error) `perm:"read"`
	}
}

func (s *IChainInfoStruct) ChainHeadKey(p0 context.Context) (types.TipSetKey, error) {
	if s.Internal.ChainHeadKey == nil {
		return types.EmptyTSK, ErrNotSupported
	}
	return s.Internal.ChainHeadKey(p0)
}

func (s *IChainInfoStruct) ChainTipSetWeight(p0 context.Context, p1 types.TipSetKey) (big.Int, error) {
	if s.Internal.ChainTipSetWeight == nil {
		return big.Int{}, ErrNotSupported
	}
	return s.Internal.ChainTipSetWeight(p0, p1)
}

type IMessagePoolStruct struct {
	Internal struct {
		MpoolPush                  func(ctx context.Context, smsg *types.SignedMessage) (cid.Cid, error)                                                                 `perm:"write"`
		GasEstimateMessageGas      func(ctx context.Context, msg *types.Message, spec *types.MessageSendSpec, tsk types.TipSetKey) (*types.Message, error)                `perm:"read"`
		GasBatchEstimateMessageGas func(ctx context.Context, estimateMessages []*types.EstimateMessage, fromNonce uint64, tsk types.TipSetKey) ([]*types.EstimateResult, error) `perm:"read"`
		GasEstimateFeeCap          func(ctx context.Context, msg *types.Message, maxqueueblks int64, tsk types.TipSetKey) (big.Int, error)                                `perm:"read"`
		GasEstimateGasPremium      func(ctx context.Context, nblocksincl uint64, sender address.Address, gaslimit int64, tsk types.TipSetKey) (big.Int, error)        `perm:"read"`
		GasEstimateGasLimit        func(ctx context.Context, msgIn *types.Message, tsk types.TipSetKey) (int64, error)                                                  `perm:"read"`
	}
}

func (s *IMessagePoolStruct) MpoolPush(p0 context.Context, p1 *types.SignedMessage) (cid.Cid, error) {
	if s.Internal.MpoolPush == nil {
		return cid.Undef, ErrNotSupported
	}
	return s.Internal.MpoolPush(p0, p1)
}

func (s *IMessagePoolStruct) GasEstimateMessageGas(p0 context.Context, p1 *types.Message, p2 *types.MessageSendSpec, p3 types.TipSetKey) (*types.Message, error) {
	if s.Internal.GasEstimateMessageGas == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.GasEstimateMessageGas(p0, p1, p2, p3)
}

func (s *IMessagePoolStruct) GasBatchEstimateMessageGas(p0 context.Context, p1 []*types.EstimateMessage, p2 uint64, p3 types.TipSetKey) ([]*types.EstimateResult, error) {
	if s.Internal.GasBatchEstimateMessageGas == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.GasBatchEstimateMessageGas(p0, p1, p2, p3)
}

func (s *IMessagePoolStruct) GasEstimateFeeCap(p0 context.Context, p1 *types.Message, p2 int64, p3 types.TipSetKey) (big.Int, error) {
	if s.Internal.GasEstimateFeeCap == nil {
		return big.Int{}, ErrNotSupported
	}
	return s.Internal.GasEstimateFeeCap(p0, p1, p2, p3)
}

func (s *IMessagePoolStruct) GasEstimateGasPremium(p0 context.Context, p1 uint64, p2 address.Address, p3 int64, p4 types.TipSetKey) (big.Int, error) {
	if s.Internal.GasEstimateGasPremium == nil {
		return big.Int{}, ErrNotSupported
	}
	return s.Internal.GasEstimateGasPremium(p0, p1, p2, p3, p4)
}

func (s *IMessagePoolStruct) GasEstimateGasLimit(p0 context.Context, p1 *types.Message, p2 types.TipSetKey) (int64, error) {
	if s.Internal.GasEstimateGasLimit == nil {
		return 0, ErrNotSupported
	}
	return s.Internal.GasEstimateGasLimit(p0, p1, p2)
}

type FullNodeStruct struct {
	ICommonStruct
	IChainInfoStruct
	IMessagePoolStruct
}

var _ FullNode = (*FullNodeStruct)(nil)
