package types

import (
	"errors"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
)

// ErrActorNotFound is returned when no actor exists at an address in a state tree.
var ErrActorNotFound = errors.New("actor not found")

// Actor is the on-chain record of an actor: its code, state head and balance.
type Actor struct {
	Code    cid.Cid
	Head    cid.Cid
	Nonce   uint64
	Balance abi.TokenAmount
	// Address is the robust address the actor was created with, if known.
	Address *address.Address
}

// NewActor constructs a new actor.
func NewActor(code cid.Cid, balance abi.TokenAmount, head cid.Cid, addr address.Address) *Actor {
	return &Actor{
		Code:    code,
		Nonce:   0,
		Balance: balance,
		Head:    head,
		Address: &addr,
	}
}
