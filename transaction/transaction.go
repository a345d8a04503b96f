package transaction

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/common"
	"github.com/mezonai/multisig/logx"
)

// Limits to keep the message encoding bounded
const (
	maxInstructions        = 16
	maxAccountsPerInstr    = 32
	maxInstructionDataSize = 4096
)

var (
	ErrEmptyTransaction = errors.New("transaction has no instructions")
	ErrTooLarge         = errors.New("transaction exceeds size limits")
	ErrMissingSignature = errors.New("required signer did not sign")
	ErrBadSignature     = errors.New("signature does not verify")
)

type AccountMeta struct {
	PublicKey  solana.PublicKey `json:"pubkey"`
	IsSigner   bool             `json:"is_signer"`
	IsWritable bool             `json:"is_writable"`
}

func Meta(key solana.PublicKey, signer, writable bool) *AccountMeta {
	return &AccountMeta{PublicKey: key, IsSigner: signer, IsWritable: writable}
}

// Instruction is one program call: the program to run, the accounts it reads
// or writes, and its opcode-prefixed payload.
type Instruction struct {
	ProgramID solana.PublicKey `json:"program_id"`
	Accounts  []*AccountMeta   `json:"accounts"`
	Data      []byte           `json:"data"`
}

type SignatureEntry struct {
	Signer    solana.PublicKey `json:"signer"`
	Signature solana.Signature `json:"signature"`
}

type Transaction struct {
	Instructions []Instruction    `json:"instructions"`
	Nonce        uint64           `json:"nonce,omitempty"`
	Signatures   []SignatureEntry `json:"signatures,omitempty"`
}

func NewTransaction(nonce uint64, instructions ...Instruction) *Transaction {
	return &Transaction{Instructions: instructions, Nonce: nonce}
}

// Serialize returns the message bytes covered by every signature.
func (tx *Transaction) Serialize() ([]byte, error) {
	if len(tx.Instructions) == 0 {
		return nil, ErrEmptyTransaction
	}
	if len(tx.Instructions) > maxInstructions {
		return nil, fmt.Errorf("%w: %d instructions", ErrTooLarge, len(tx.Instructions))
	}
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(tx.Nonce, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(uint8(len(tx.Instructions))); err != nil {
		return nil, err
	}
	for i, ix := range tx.Instructions {
		if len(ix.Accounts) > maxAccountsPerInstr || len(ix.Data) > maxInstructionDataSize {
			return nil, fmt.Errorf("%w: instruction %d", ErrTooLarge, i)
		}
		if err := enc.WriteBytes(ix.ProgramID[:], false); err != nil {
			return nil, err
		}
		if err := enc.WriteUint8(uint8(len(ix.Accounts))); err != nil {
			return nil, err
		}
		for _, m := range ix.Accounts {
			if err := enc.WriteBytes(m.PublicKey[:], false); err != nil {
				return nil, err
			}
			if err := enc.WriteUint8(metaFlags(m)); err != nil {
				return nil, err
			}
		}
		if err := enc.WriteUint16(uint16(len(ix.Data)), bin.LE); err != nil {
			return nil, err
		}
		if err := enc.WriteBytes(ix.Data, false); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func metaFlags(m *AccountMeta) uint8 {
	var f uint8
	if m.IsSigner {
		f |= 1
	}
	if m.IsWritable {
		f |= 2
	}
	return f
}

// RequiredSigners lists each key marked as signer once, in first-seen order.
func (tx *Transaction) RequiredSigners() []solana.PublicKey {
	var out solana.PublicKeySlice
	for _, ix := range tx.Instructions {
		for _, m := range ix.Accounts {
			if m.IsSigner {
				out.UniqueAppend(m.PublicKey)
			}
		}
	}
	return out
}

// Sign adds one signature per key, replacing any earlier signature by the same key.
func (tx *Transaction) Sign(keys ...solana.PrivateKey) error {
	msg, err := tx.Serialize()
	if err != nil {
		return err
	}
	for _, k := range keys {
		sig, err := k.Sign(msg)
		if err != nil {
			return fmt.Errorf("sign transaction: %w", err)
		}
		tx.setSignature(k.PublicKey(), sig)
	}
	return nil
}

func (tx *Transaction) setSignature(signer solana.PublicKey, sig solana.Signature) {
	for i := range tx.Signatures {
		if tx.Signatures[i].Signer.Equals(signer) {
			tx.Signatures[i].Signature = sig
			return
		}
	}
	tx.Signatures = append(tx.Signatures, SignatureEntry{Signer: signer, Signature: sig})
}

// Verify checks every attached signature and returns the set of verified
// signers. Each required signer must be present.
func (tx *Transaction) Verify() (map[solana.PublicKey]bool, error) {
	msg, err := tx.Serialize()
	if err != nil {
		return nil, err
	}
	signed := make(map[solana.PublicKey]bool, len(tx.Signatures))
	for _, s := range tx.Signatures {
		if !s.Signer.Verify(msg, s.Signature) {
			logx.Error("TransactionVerify", "bad signature from", s.Signer.String())
			return nil, fmt.Errorf("%w: %s", ErrBadSignature, s.Signer)
		}
		signed[s.Signer] = true
	}
	for _, k := range tx.RequiredSigners() {
		if !signed[k] {
			return nil, fmt.Errorf("%w: %s", ErrMissingSignature, k)
		}
	}
	return signed, nil
}

// ID names the transaction by its first signature, or by message hash when unsigned.
func (tx *Transaction) ID() string {
	if len(tx.Signatures) > 0 {
		return tx.Signatures[0].Signature.String()
	}
	return tx.DedupHash()
}

func (tx *Transaction) DedupHash() string {
	msg, err := tx.Serialize()
	if err != nil {
		return ""
	}
	sum256 := sha256.Sum256(msg)
	return common.EncodeBytesToBase58(sum256[:])
}
