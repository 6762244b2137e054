package types

import (
	"encoding/json"
	"fmt"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
)

// BlockHeader is a newBlock in the blockchain.
type BlockHeader struct {
	// Miner is the address of the miner actor that mined this newBlock.
	Miner address.Address

	// Ticket is the ticket submitted with this newBlock.
	Ticket *Ticket

	// ElectionProof is the vrf proof giving this newBlock's miner authoring rights
	ElectionProof *ElectionProof

	// Parents is the set of parents this newBlock was based on. Typically one,
	// but can be several in the case where there were multiple winning ticket-
	// holders for an epoch.
	Parents []cid.Cid

	// ParentWeight is the aggregate chain weight of the parent set.
	ParentWeight big.Int

	// Height is the chain height of this newBlock.
	Height abi.ChainEpoch

	// ParentStateRoot is the CID of the root of the state tree after application of the messages in the parent tipset
	// to the parent tipset's state root.
	ParentStateRoot cid.Cid

	// ParentMessageReceipts is a list of receipts corresponding to the application of the messages in the parent tipset
	// to the parent tipset's state root (corresponding to this newBlock's ParentStateRoot).
	ParentMessageReceipts cid.Cid

	// Messages is the set of messages included in this newBlock
	Messages cid.Cid

	// The timestamp, in seconds since the Unix epoch, at which this newBlock was created.
	Timestamp uint64

	// ForkSignaling is extra data used by miners to communicate
	ForkSignaling uint64

	//identical for all blocks in same tipset: the base fee after executing parent tipset
	ParentBaseFee abi.TokenAmount
}

type electionProofWire struct {
	_        struct{} `cbor:",toarray"`
	WinCount int64
	VRFProof []byte
}

type blockHeaderWire struct {
	_                     struct{} `cbor:",toarray"`
	Miner                 []byte
	Ticket                []byte
	ElectionProof         *electionProofWire
	Parents               [][]byte
	ParentWeight          []byte
	Height                int64
	ParentStateRoot       []byte
	ParentMessageReceipts []byte
	Messages              []byte
	Timestamp             uint64
	ForkSignaling         uint64
	ParentBaseFee         []byte
}

// Serialize serialize blockheader to binary
func (b *BlockHeader) Serialize() ([]byte, error) {
	weight, err := encodeBig(b.ParentWeight)
	if err != nil {
		return nil, fmt.Errorf("encoding parent weight: %w", err)
	}
	baseFee, err := encodeBig(b.ParentBaseFee)
	if err != nil {
		return nil, fmt.Errorf("encoding parent base fee: %w", err)
	}

	w := blockHeaderWire{
		Miner:                 b.Miner.Bytes(),
		Ticket:                b.Ticket.proof(),
		Parents:               cidsBytes(b.Parents),
		ParentWeight:          weight,
		Height:                int64(b.Height),
		ParentStateRoot:       b.ParentStateRoot.Bytes(),
		ParentMessageReceipts: b.ParentMessageReceipts.Bytes(),
		Messages:              b.Messages.Bytes(),
		Timestamp:             b.Timestamp,
		ForkSignaling:         b.ForkSignaling,
		ParentBaseFee:         baseFee,
	}
	if b.ElectionProof != nil {
		w.ElectionProof = &electionProofWire{
			WinCount: b.ElectionProof.WinCount,
			VRFProof: b.ElectionProof.VRFProof,
		}
	}

	return encMode.Marshal(w)
}

func (b *BlockHeader) SerializeWithCid() (cid.Cid, []byte, error) {
	data, err := b.Serialize()
	if err != nil {
		return cid.Undef, nil, err
	}

	c, err := sumCid(data)
	if err != nil {
		return cid.Undef, nil, err
	}

	return c, data, nil
}

// Cid returns the content id of this newBlock.
func (b *BlockHeader) Cid() cid.Cid {
	c, _, err := b.SerializeWithCid()
	if err != nil {
		panic(err)
	}

	return c
}

// LastTicket get ticket in block
func (b *BlockHeader) LastTicket() *Ticket {
	return b.Ticket
}

func (b *BlockHeader) String() string {
	errStr := "(error encoding BlockHeader)"
	c, _, err := b.SerializeWithCid()
	if err != nil {
		return errStr
	}

	js, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errStr
	}

	return fmt.Sprintf("BlockHeader cid=[%v]: %s", c, string(js))
}
