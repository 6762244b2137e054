package types

import (
	"fmt"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
)

const MessageVersion = 0

// ChainMsg is the common view over signed and unsigned messages.
type ChainMsg interface {
	Cid() cid.Cid
	VMMessage() *Message
}

var _ ChainMsg = &Message{}

// Message is an exchange of information between two actors modeled
// as a function call.
type Message struct {
	Version uint64

	To   address.Address
	From address.Address
	// When receiving a message from a user account the nonce in
	// the message must match the expected nonce in the from actor.
	// This prevents replay attacks.
	Nonce uint64

	Value abi.TokenAmount

	GasLimit   int64
	GasFeeCap  abi.TokenAmount
	GasPremium abi.TokenAmount

	Method abi.MethodNum
	Params []byte
}

type messageWire struct {
	_          struct{} `cbor:",toarray"`
	Version    uint64
	To         []byte
	From       []byte
	Nonce      uint64
	Value      []byte
	GasLimit   int64
	GasFeeCap  []byte
	GasPremium []byte
	Method     uint64
	Params     []byte
}

func (m *Message) VMMessage() *Message {
	return m
}

// Serialize return message binary
func (m *Message) Serialize() ([]byte, error) {
	w := messageWire{
		Version:  m.Version,
		To:       m.To.Bytes(),
		From:     m.From.Bytes(),
		Nonce:    m.Nonce,
		GasLimit: m.GasLimit,
		Method:   uint64(m.Method),
		Params:   m.Params,
	}
	var err error
	if w.Value, err = encodeBig(m.Value); err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	if w.GasFeeCap, err = encodeBig(m.GasFeeCap); err != nil {
		return nil, fmt.Errorf("encoding gas fee cap: %w", err)
	}
	if w.GasPremium, err = encodeBig(m.GasPremium); err != nil {
		return nil, fmt.Errorf("encoding gas premium: %w", err)
	}
	return encMode.Marshal(w)
}

func (m *Message) Cid() cid.Cid {
	data, err := m.Serialize()
	if err != nil {
		panic(err)
	}
	c, err := sumCid(data)
	if err != nil {
		panic(err)
	}
	return c
}

// RequiredFunds is the most the message may cost its sender: fee cap times gas limit.
func (m *Message) RequiredFunds() abi.TokenAmount {
	return big.Mul(m.GasFeeCap, big.NewInt(m.GasLimit))
}

// Copy returns a shallow copy of the message; Params is shared.
func (m *Message) Copy() *Message {
	out := *m
	return &out
}

func (m *Message) String() string {
	return fmt.Sprintf("Message{from=%s to=%s nonce=%d gasLimit=%d feeCap=%s premium=%s method=%d}",
		m.From, m.To, m.Nonce, m.GasLimit, m.GasFeeCap, m.GasPremium, m.Method)
}
