package tree

import (
	"bytes"
	"context"
	"crypto/sha256"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	hamt "github.com/filecoin-project/go-hamt-ipld/v3"
	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	cbg "github.com/whyrusleeping/cbor-gen"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

var log = logging.Logger("statetree")

// ErrUnsupportedVersion is returned for state trees laid out before HAMT v3.
var ErrUnsupportedVersion = errors.New("unsupported state tree version")

// hamtOptions are the actor map parameters the chain uses: a bit width of 5
// and sha256 key hashing.
var hamtOptions = []hamt.Option{
	hamt.UseTreeBitWidth(5),
	hamt.UseHashFunction(func(input []byte) []byte {
		res := sha256.Sum256(input)
		return res[:]
	}),
}

// State stores actors by address in a HAMT keyed by address bytes.
type State struct {
	Store   cbor.IpldStore
	version StateTreeVersion
	info    cid.Cid
	root    *hamt.Node
}

// NewState creates an empty state tree of the given version backed by store.
func NewState(store cbor.IpldStore, version StateTreeVersion) (*State, error) {
	if err := checkVersion(version); err != nil {
		return nil, err
	}
	root, err := hamt.NewNode(store, hamtOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "creating actor map")
	}
	return &State{
		Store:   store,
		version: version,
		root:    root,
	}, nil
}

// LoadState loads the state tree referenced by c.
func LoadState(ctx context.Context, store cbor.IpldStore, c cid.Cid) (*State, error) {
	var root StateRoot
	if err := store.Get(ctx, c, &root); err != nil {
		return nil, errors.Wrapf(err, "failed to load state tree %s", c)
	}
	if err := checkVersion(root.Version); err != nil {
		return nil, errors.Wrapf(err, "state tree %s", c)
	}

	node, err := hamt.LoadNode(ctx, store, root.Actors, hamtOptions...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load actors of state tree %s", c)
	}
	log.Debugf("loaded state tree %s at version %d", c, root.Version)
	return &State{
		Store:   store,
		version: root.Version,
		info:    root.Info,
		root:    node,
	}, nil
}

func checkVersion(v StateTreeVersion) error {
	if v < StateTreeVersion2 || v > StateTreeVersion5 {
		return errors.Wrapf(ErrUnsupportedVersion, "version %d", v)
	}
	return nil
}

// Version returns the layout version of the tree.
func (st *State) Version() StateTreeVersion {
	return st.version
}

// GetActor returns the actor at addr, and false when there is none. The
// returned actor is freshly decoded and owned by the caller.
func (st *State) GetActor(ctx context.Context, addr address.Address) (*types.Actor, bool, error) {
	var act types.Actor
	found, err := st.root.Find(ctx, abi.AddrKey(addr).Key(), &actorEntry{act: &act})
	if err != nil {
		return nil, false, errors.Wrapf(err, "looking up actor %s", addr)
	}
	if !found {
		return nil, false, nil
	}
	return &act, true, nil
}

// SetActor stores act at addr, replacing any previous actor.
func (st *State) SetActor(ctx context.Context, addr address.Address, act *types.Actor) error {
	if addr == address.Undef {
		return errors.New("cannot set actor at undefined address")
	}
	entry := &actorEntry{act: act, withAddress: st.version >= StateTreeVersion5}
	if err := st.root.Set(ctx, abi.AddrKey(addr).Key(), entry); err != nil {
		return errors.Wrapf(err, "setting actor %s", addr)
	}
	return nil
}

// ForEach visits every actor in HAMT order.
func (st *State) ForEach(ctx context.Context, f func(address.Address, *types.Actor) error) error {
	return st.root.ForEach(ctx, func(k string, val *cbg.Deferred) error {
		addr, err := address.NewFromBytes([]byte(k))
		if err != nil {
			return errors.Wrap(err, "invalid address key in actor map")
		}
		var act types.Actor
		if err := (&actorEntry{act: &act}).UnmarshalCBOR(bytes.NewReader(val.Raw)); err != nil {
			return errors.Wrapf(err, "decoding actor %s", addr)
		}
		return f(addr, &act)
	})
}

// Flush writes the tree to the store and returns the cid of its StateRoot.
func (st *State) Flush(ctx context.Context) (cid.Cid, error) {
	if err := st.root.Flush(ctx); err != nil {
		return cid.Undef, errors.Wrap(err, "flushing actor map")
	}
	actors, err := st.Store.Put(ctx, st.root)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "writing actor map")
	}
	if !st.info.Defined() {
		if st.info, err = st.Store.Put(ctx, new(StateInfo0)); err != nil {
			return cid.Undef, errors.Wrap(err, "writing state info")
		}
	}
	return st.Store.Put(ctx, &StateRoot{
		Version: st.version,
		Actors:  actors,
		Info:    st.info,
	})
}
