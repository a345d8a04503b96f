package codec

import (
	bin "github.com/gagliardetto/binary"

	"github.com/mezonai/multisig/types"
)

func EncodeReceipt(r *types.VoteReceipt) ([]byte, error) {
	out := make([]byte, ReceiptLen)
	if err := WriteReceipt(out, r); err != nil {
		return nil, err
	}
	return out, nil
}

func WriteReceipt(dst []byte, r *types.VoteReceipt) error {
	return writeInto("receipt", dst, ReceiptLen, func(enc *bin.Encoder) error {
		if err := enc.WriteBool(r.IsAuthorized); err != nil {
			return err
		}
		if err := enc.WriteUint64(r.TotalVotes, bin.LE); err != nil {
			return err
		}
		return enc.WriteUint8(r.Bump)
	})
}

// DecodeReceipt treats any non-zero flag byte as authorized.
func DecodeReceipt(data []byte) (*types.VoteReceipt, error) {
	if err := checkLen("receipt", data, ReceiptLen); err != nil {
		return nil, err
	}
	dec := bin.NewBinDecoder(data[:ReceiptLen])
	flag, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	r := &types.VoteReceipt{IsAuthorized: flag != 0}
	if r.TotalVotes, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if r.Bump, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	return r, nil
}
