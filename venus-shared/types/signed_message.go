package types

import (
	"fmt"

	"github.com/filecoin-project/go-state-types/crypto"
	"github.com/ipfs/go-cid"
)

var _ ChainMsg = &SignedMessage{}

// SignedMessage contains a message and its signature
type SignedMessage struct {
	Message   Message
	Signature crypto.Signature
}

type signedMessageWire struct {
	_         struct{} `cbor:",toarray"`
	Message   []byte
	Signature []byte
}

func (smsg *SignedMessage) VMMessage() *Message {
	return &smsg.Message
}

// Serialize return message binary
func (smsg *SignedMessage) Serialize() ([]byte, error) {
	msg, err := smsg.Message.Serialize()
	if err != nil {
		return nil, err
	}
	sig := append([]byte{byte(smsg.Signature.Type)}, smsg.Signature.Data...)
	return encMode.Marshal(signedMessageWire{Message: msg, Signature: sig})
}

// Cid of a BLS message is the cid of the unsigned message, the signature
// lives in the block aggregate.
func (smsg *SignedMessage) Cid() cid.Cid {
	if smsg.Signature.Type == crypto.SigTypeBLS {
		return smsg.Message.Cid()
	}

	data, err := smsg.Serialize()
	if err != nil {
		panic(fmt.Errorf("failed to serialize signed message: %w", err))
	}
	c, err := sumCid(data)
	if err != nil {
		panic(err)
	}
	return c
}
