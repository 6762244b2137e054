package types

import (
	"time"

	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/ipfs/go-cid"
)

// MessageReceipt is what is returned by executing a message on the vm.
type MessageReceipt struct {
	ExitCode exitcode.ExitCode
	Return   []byte
	GasUsed  int64
}

// InvocResult is the outcome of a speculative, state-discarding call.
type InvocResult struct {
	MsgCid   cid.Cid
	Msg      *Message
	MsgRct   *MessageReceipt
	Error    string
	Duration time.Duration
}
