package types

import (
	"github.com/filecoin-project/go-state-types/abi"
)

// MessageSendSpec carries the sender's limits for gas estimation.
type MessageSendSpec struct {
	// MaxFee bounds GasFeeCap*GasLimit for estimated fee caps. Zero means
	// the node's configured default.
	MaxFee abi.TokenAmount
}

// EstimateMessage pairs a message with its send spec for batch estimation.
type EstimateMessage struct {
	Msg  *Message
	Spec *MessageSendSpec
}

// EstimateResult is the per-message outcome of a batch estimation.
type EstimateResult struct {
	Msg *Message
	Err string
}
