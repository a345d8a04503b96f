package store

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/mezonai/multisig/db"
)

// StateMetaStore tracks the ledger's commit sequence and the running bank
// hash after each committed transaction.
// Keys:
// - PrefixBankHashBySeq + <8-byte big-endian seq> => 32-byte bank hash
// - StateMetaKeyLatest => 8-byte big-endian seq of the last commit
type StateMetaStore interface {
	SetBankHash(batch db.DatabaseBatch, seq uint64, bankHash [32]byte)
	GetBankHash(seq uint64) ([32]byte, bool, error)
	LatestSequence() (uint64, bool, error)
}

type GenericStateMetaStore struct {
	provider db.DatabaseProvider
}

func NewGenericStateMetaStore(provider db.DatabaseProvider) *GenericStateMetaStore {
	return &GenericStateMetaStore{provider: provider}
}

func (s *GenericStateMetaStore) seqToBankHashKey(seq uint64) []byte {
	key := make([]byte, len(PrefixBankHashBySeq)+8)
	copy(key, PrefixBankHashBySeq)
	binary.BigEndian.PutUint64(key[len(PrefixBankHashBySeq):], seq)
	return key
}

// SetBankHash stages the hash for seq and moves the latest pointer to it.
func (s *GenericStateMetaStore) SetBankHash(batch db.DatabaseBatch, seq uint64, bankHash [32]byte) {
	batch.Put(s.seqToBankHashKey(seq), bankHash[:])
	latest := make([]byte, 8)
	binary.BigEndian.PutUint64(latest, seq)
	batch.Put([]byte(StateMetaKeyLatest), latest)
}

func (s *GenericStateMetaStore) GetBankHash(seq uint64) ([32]byte, bool, error) {
	value, err := s.provider.Get(s.seqToBankHashKey(seq))
	if err != nil {
		return [32]byte{}, false, fmt.Errorf("failed to get bank hash for seq %d: %w", seq, err)
	}
	if len(value) == 0 {
		return [32]byte{}, false, nil
	}
	if len(value) != sha256.Size {
		return [32]byte{}, false, fmt.Errorf("invalid bank hash length: %d", len(value))
	}
	var out [32]byte
	copy(out[:], value)
	return out, true, nil
}

func (s *GenericStateMetaStore) LatestSequence() (uint64, bool, error) {
	value, err := s.provider.Get([]byte(StateMetaKeyLatest))
	if err != nil {
		return 0, false, fmt.Errorf("failed to get latest sequence: %w", err)
	}
	if len(value) == 0 {
		return 0, false, nil
	}
	if len(value) != 8 {
		return 0, false, fmt.Errorf("invalid latest sequence length: %d", len(value))
	}
	return binary.BigEndian.Uint64(value), true, nil
}
