package tree

import (
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	cbg "github.com/whyrusleeping/cbor-gen"
	"golang.org/x/xerrors"
)

// StateTreeVersion is the layout version recorded in a state root.
type StateTreeVersion uint64

const (
	// StateTreeVersion0 is a bare HAMT v0 root with no StateRoot wrapper.
	StateTreeVersion0 StateTreeVersion = iota
	// StateTreeVersion1 wraps a HAMT v2 actor map.
	StateTreeVersion1
	// StateTreeVersion2 moves the actor map to HAMT v3.
	StateTreeVersion2
	StateTreeVersion3
	StateTreeVersion4
	// StateTreeVersion5 records each actor's robust address.
	StateTreeVersion5
)

// StateRoot is the object a block's ParentStateRoot points at.
type StateRoot struct {
	Version StateTreeVersion
	// Actors is the root of the actor HAMT.
	Actors cid.Cid
	// Info is the state info object.
	Info cid.Cid
}

// StateInfo0 is the (empty) state info object.
type StateInfo0 struct{}

func (t *StateRoot) MarshalCBOR(w io.Writer) error {
	if t == nil {
		_, err := w.Write(cbg.CborNull)
		return err
	}
	scratch := make([]byte, 9)

	if err := cbg.WriteMajorTypeHeaderBuf(scratch, w, cbg.MajArray, 3); err != nil {
		return err
	}
	if err := cbg.WriteMajorTypeHeaderBuf(scratch, w, cbg.MajUnsignedInt, uint64(t.Version)); err != nil {
		return err
	}
	if err := cbg.WriteCidBuf(scratch, w, t.Actors); err != nil {
		return xerrors.Errorf("failed to write cid field t.Actors: %w", err)
	}
	if err := cbg.WriteCidBuf(scratch, w, t.Info); err != nil {
		return xerrors.Errorf("failed to write cid field t.Info: %w", err)
	}
	return nil
}

func (t *StateRoot) UnmarshalCBOR(r io.Reader) error {
	*t = StateRoot{}

	br := cbg.GetPeeker(r)
	scratch := make([]byte, 8)

	maj, extra, err := cbg.CborReadHeaderBuf(br, scratch)
	if err != nil {
		return err
	}
	if maj != cbg.MajArray {
		return fmt.Errorf("cbor input should be of type array")
	}
	if extra != 3 {
		return fmt.Errorf("cbor input had wrong number of fields")
	}

	maj, extra, err = cbg.CborReadHeaderBuf(br, scratch)
	if err != nil {
		return err
	}
	if maj != cbg.MajUnsignedInt {
		return fmt.Errorf("wrong type for uint64 field")
	}
	t.Version = StateTreeVersion(extra)

	if t.Actors, err = cbg.ReadCid(br); err != nil {
		return xerrors.Errorf("failed to read cid field t.Actors: %w", err)
	}
	if t.Info, err = cbg.ReadCid(br); err != nil {
		return xerrors.Errorf("failed to read cid field t.Info: %w", err)
	}
	return nil
}

func (t *StateInfo0) MarshalCBOR(w io.Writer) error {
	if t == nil {
		_, err := w.Write(cbg.CborNull)
		return err
	}
	return cbg.WriteMajorTypeHeaderBuf(make([]byte, 9), w, cbg.MajArray, 0)
}

func (t *StateInfo0) UnmarshalCBOR(r io.Reader) error {
	maj, extra, err := cbg.CborReadHeaderBuf(cbg.GetPeeker(r), make([]byte, 8))
	if err != nil {
		return err
	}
	if maj != cbg.MajArray {
		return fmt.Errorf("cbor input should be of type array")
	}
	if extra != 0 {
		return fmt.Errorf("cbor input had wrong number of fields")
	}
	return nil
}
