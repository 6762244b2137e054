package types

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// A Ticket is a marker of a tick of the blockchain's clock. It is the source
// of randomness for proofs of storage and leader election.
type Ticket struct {
	VRFProof []byte
}

func (t *Ticket) proof() []byte {
	if t == nil {
		return nil
	}
	return t.VRFProof
}

// Compare orders tickets by the blake2b digest of their VRF proof.
func (t *Ticket) Compare(o *Ticket) int {
	tDigest := blake2b.Sum256(t.proof())
	oDigest := blake2b.Sum256(o.proof())
	return bytes.Compare(tDigest[:], oDigest[:])
}

func (t *Ticket) Less(o *Ticket) bool {
	return t.Compare(o) < 0
}

func (t *Ticket) String() string {
	return fmt.Sprintf("%x", t.proof())
}

// ElectionProof proves that a miner won the leader election of an epoch,
// WinCount times.
type ElectionProof struct {
	WinCount int64
	VRFProof []byte
}
