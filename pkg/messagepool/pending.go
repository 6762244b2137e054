package messagepool

import (
	"sort"
	"sync"

	"github.com/filecoin-project/go-address"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// PendingStore is an in-memory pool of signed messages that are not yet on
// chain, indexed by sender and nonce.
type PendingStore struct {
	lk      sync.RWMutex
	pending map[address.Address]map[uint64]*types.SignedMessage
}

var _ PendingProvider = (*PendingStore)(nil)

// NewPendingStore creates an empty pool.
func NewPendingStore() *PendingStore {
	return &PendingStore{
		pending: make(map[address.Address]map[uint64]*types.SignedMessage),
	}
}

// Add adds smsg, replacing a pending message from the same sender with the same nonce.
func (ps *PendingStore) Add(smsg *types.SignedMessage) error {
	from := smsg.Message.From
	if from == address.Undef {
		return xerrors.Errorf("message %s has no sender", smsg.Cid())
	}

	ps.lk.Lock()
	defer ps.lk.Unlock()

	byNonce, ok := ps.pending[from]
	if !ok {
		byNonce = make(map[uint64]*types.SignedMessage)
		ps.pending[from] = byNonce
	}
	byNonce[smsg.Message.Nonce] = smsg
	return nil
}

// Remove drops the message of from with the given nonce, reporting whether one existed.
func (ps *PendingStore) Remove(from address.Address, nonce uint64) bool {
	ps.lk.Lock()
	defer ps.lk.Unlock()

	byNonce, ok := ps.pending[from]
	if !ok {
		return false
	}
	if _, ok := byNonce[nonce]; !ok {
		return false
	}
	delete(byNonce, nonce)
	if len(byNonce) == 0 {
		delete(ps.pending, from)
	}
	return true
}

// PendingFor returns the pending messages of a sender in nonce order, and
// false when it has none.
func (ps *PendingStore) PendingFor(a address.Address) ([]*types.SignedMessage, bool) {
	ps.lk.RLock()
	defer ps.lk.RUnlock()

	byNonce, ok := ps.pending[a]
	if !ok || len(byNonce) == 0 {
		return nil, false
	}

	out := make([]*types.SignedMessage, 0, len(byNonce))
	for _, m := range byNonce {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Message.Nonce < out[j].Message.Nonce
	})
	return out, true
}
