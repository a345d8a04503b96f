// Package codec holds the fixed-width little-endian layouts of the persisted
// multisig records.
package codec

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	ConfigLen   = 32 + 1 + 32*10 + 8 + 8 + 8 + 32 + 1 + 1 // 411
	ProposalLen = 32 + 8 + 1 + 8 + 8 + 32*20 + 20        // 717
	ReceiptLen  = 1 + 8 + 1                              // 10
)

var (
	ErrShortBuffer   = errors.New("record data too short")
	ErrInvalidRecord = errors.New("record data invalid")
)

func checkLen(kind string, data []byte, want int) error {
	if len(data) < want {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortBuffer, kind, want, len(data))
	}
	return nil
}

// writeInto encodes into dst's leading bytes.
func writeInto(kind string, dst []byte, want int, fn func(enc *bin.Encoder) error) error {
	if err := checkLen(kind, dst, want); err != nil {
		return err
	}
	buf := bytes.NewBuffer(make([]byte, 0, want))
	if err := fn(bin.NewBinEncoder(buf)); err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	copy(dst, buf.Bytes())
	return nil
}

func writeKey(enc *bin.Encoder, k solana.PublicKey) error {
	return enc.WriteBytes(k[:], false)
}

func readKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}
