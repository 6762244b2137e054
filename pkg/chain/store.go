package chain

import (
	"context"
	"sync"

	"github.com/ipfs/go-datastore"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

var log = logging.Logger("chain.store")

// HeadKey is the key at which the head tipset cid's are written in the datastore.
var HeadKey = datastore.NewKey("/chain/heaviestTipSet")

// ErrNotFound is returned when a tipset is not known to the store.
var ErrNotFound = errors.New("tipset not found")

// HeadSelector orders candidate heads.
type HeadSelector interface {
	IsHeavier(ctx context.Context, a, b *types.TipSet) (bool, error)
}

// Store tracks known tipsets, the messages included in them and the heaviest
// head. Tipsets and messages are kept in memory. The head key is persisted in
// the datastore so the head survives a reload.
type Store struct {
	// ds is the datastore for the chain's private metadata, the heaviest
	// tipset key.
	ds datastore.Datastore

	selector HeadSelector

	// Protects head, tipsets and messages.
	mu       sync.RWMutex
	head     *types.TipSet
	tipsets  map[types.TipSetKey]*types.TipSet
	messages map[types.TipSetKey][]types.ChainMsg
}

// NewStore constructs a new default store.
func NewStore(ds datastore.Datastore, selector HeadSelector) *Store {
	return &Store{
		ds:       ds,
		selector: selector,
		tipsets:  make(map[types.TipSetKey]*types.TipSet),
		messages: make(map[types.TipSetKey][]types.ChainMsg),
	}
}

// Load restores the head recorded in the datastore. The head tipset must
// already have been put to the store.
func (store *Store) Load(ctx context.Context) error {
	tskBytes, err := store.ds.Get(ctx, HeadKey)
	if err != nil {
		return errors.Wrap(err, "failed to read HeadKey")
	}

	tsk, err := types.TipSetKeyFromBytes(tskBytes)
	if err != nil {
		return errors.Wrap(err, "failed to cast headCids")
	}

	headTS, err := store.GetTipSet(ctx, tsk)
	if err != nil {
		return err
	}
	log.Infof("loaded head %s at height %d", headTS.Key(), headTS.Height())

	store.mu.Lock()
	store.head = headTS
	store.mu.Unlock()
	return nil
}

// PutTipSet records a tipset together with the messages its blocks include.
// Putting a known tipset again replaces its messages.
func (store *Store) PutTipSet(_ context.Context, ts *types.TipSet, msgs ...types.ChainMsg) error {
	if !ts.Defined() {
		return errors.New("cannot put an undefined tipset")
	}

	cpy := make([]types.ChainMsg, len(msgs))
	copy(cpy, msgs)

	store.mu.Lock()
	defer store.mu.Unlock()
	store.tipsets[ts.Key()] = ts
	store.messages[ts.Key()] = cpy
	return nil
}

// GetTipSet returns the tipset identified by `key`. The empty key resolves to
// the current head.
func (store *Store) GetTipSet(_ context.Context, key types.TipSetKey) (*types.TipSet, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if key.IsEmpty() {
		if !store.head.Defined() {
			return nil, errors.Wrap(ErrNotFound, "no head set")
		}
		return store.head, nil
	}

	ts, ok := store.tipsets[key]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "key %s", key)
	}
	return ts, nil
}

// GetParent returns the parent of ts.
func (store *Store) GetParent(ctx context.Context, ts *types.TipSet) (*types.TipSet, error) {
	if ts.Height() == 0 {
		return nil, errors.Errorf("tipset %s at height 0 has no parent", ts.Key())
	}
	return store.GetTipSet(ctx, ts.Parents())
}

// MessagesForTipset returns the messages included in the blocks of ts.
func (store *Store) MessagesForTipset(_ context.Context, ts *types.TipSet) ([]types.ChainMsg, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	msgs, ok := store.messages[ts.Key()]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "messages of %s", ts.Key())
	}
	return msgs, nil
}

// GetHead returns the current head tipset, or nil when there is none.
func (store *Store) GetHead() *types.TipSet {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if !store.head.Defined() {
		return nil
	}

	return store.head
}

// SetHead sets the passed in tipset as the new head of this chain.
func (store *Store) SetHead(ctx context.Context, newTS *types.TipSet) error {
	if !newTS.Defined() {
		return errors.New("cannot set an undefined tipset as head")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	return store.setHeadLocked(ctx, newTS)
}

func (store *Store) setHeadLocked(ctx context.Context, newTS *types.TipSet) error {
	if _, ok := store.tipsets[newTS.Key()]; !ok {
		return errors.Wrapf(ErrNotFound, "head %s must be put before it is set", newTS.Key())
	}
	if store.head.Equals(newTS) {
		return nil
	}

	// Ensure consistency by storing this new head on disk.
	if err := store.writeHead(ctx, newTS.Key()); err != nil {
		return errors.Wrap(err, "failed to write new Head to datastore")
	}
	log.Infof("SetHead %s %d", newTS.String(), newTS.Height())
	store.head = newTS
	return nil
}

// MaybeTakeHeavierTipSet makes ts the head if it is heavier than the current
// head, and reports whether it did.
func (store *Store) MaybeTakeHeavierTipSet(ctx context.Context, ts *types.TipSet) (bool, error) {
	if !ts.Defined() {
		return false, errors.New("cannot take an undefined tipset")
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if store.head.Defined() {
		if store.head.Equals(ts) {
			return false, nil
		}
		heavier, err := store.selector.IsHeavier(ctx, ts, store.head)
		if err != nil {
			return false, errors.Wrapf(err, "comparing %s to head %s", ts.Key(), store.head.Key())
		}
		if !heavier {
			log.Debugf("tipset %s is not heavier than head %s", ts.Key(), store.head.Key())
			return false, nil
		}
	}

	if err := store.setHeadLocked(ctx, ts); err != nil {
		return false, err
	}
	return true, nil
}

// writeHead writes the given cid set as head to disk.
func (store *Store) writeHead(ctx context.Context, cids types.TipSetKey) error {
	log.Debugf("WriteHead %s", cids.String())
	return store.ds.Put(ctx, HeadKey, cids.Bytes())
}
