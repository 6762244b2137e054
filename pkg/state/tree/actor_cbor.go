package tree

import (
	"fmt"
	"io"

	"github.com/filecoin-project/go-address"
	cbg "github.com/whyrusleeping/cbor-gen"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// actorEntry is the HAMT value of an actor: [Code, Head, Nonce, Balance],
// followed in version 5 trees by the nullable robust address.
type actorEntry struct {
	act         *types.Actor
	withAddress bool
}

func (e *actorEntry) MarshalCBOR(w io.Writer) error {
	act := e.act
	fields := uint64(4)
	if e.withAddress {
		fields = 5
	}
	scratch := make([]byte, 9)

	if err := cbg.WriteMajorTypeHeaderBuf(scratch, w, cbg.MajArray, fields); err != nil {
		return err
	}
	if err := cbg.WriteCidBuf(scratch, w, act.Code); err != nil {
		return xerrors.Errorf("failed to write cid field t.Code: %w", err)
	}
	if err := cbg.WriteCidBuf(scratch, w, act.Head); err != nil {
		return xerrors.Errorf("failed to write cid field t.Head: %w", err)
	}
	if err := cbg.WriteMajorTypeHeaderBuf(scratch, w, cbg.MajUnsignedInt, act.Nonce); err != nil {
		return err
	}
	if err := act.Balance.MarshalCBOR(w); err != nil {
		return err
	}
	if e.withAddress {
		if err := act.Address.MarshalCBOR(w); err != nil {
			return err
		}
	}
	return nil
}

func (e *actorEntry) UnmarshalCBOR(r io.Reader) error {
	act := e.act
	*act = types.Actor{}

	br := cbg.GetPeeker(r)
	scratch := make([]byte, 8)

	maj, extra, err := cbg.CborReadHeaderBuf(br, scratch)
	if err != nil {
		return err
	}
	if maj != cbg.MajArray {
		return fmt.Errorf("cbor input should be of type array")
	}
	if extra != 4 && extra != 5 {
		return fmt.Errorf("actor has %d fields, expected 4 or 5", extra)
	}
	fields := extra

	if act.Code, err = cbg.ReadCid(br); err != nil {
		return xerrors.Errorf("failed to read cid field t.Code: %w", err)
	}
	if act.Head, err = cbg.ReadCid(br); err != nil {
		return xerrors.Errorf("failed to read cid field t.Head: %w", err)
	}

	maj, extra, err = cbg.CborReadHeaderBuf(br, scratch)
	if err != nil {
		return err
	}
	if maj != cbg.MajUnsignedInt {
		return fmt.Errorf("wrong type for uint64 field")
	}
	act.Nonce = extra

	if err := act.Balance.UnmarshalCBOR(br); err != nil {
		return xerrors.Errorf("unmarshaling t.Balance: %w", err)
	}

	if fields == 5 {
		b, err := br.ReadByte()
		if err != nil {
			return err
		}
		if b != cbg.CborNull[0] {
			if err := br.UnreadByte(); err != nil {
				return err
			}
			var addr address.Address
			if err := addr.UnmarshalCBOR(br); err != nil {
				return xerrors.Errorf("unmarshaling t.Address: %w", err)
			}
			act.Address = &addr
		}
	}
	return nil
}
