package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/mezonai/multisig/types"
)

// ComputeAccountsDeltaHash computes a deterministic hash over a set of updated accounts.
// Each record is encoded as: address|owner|balance(32B BE)|len(data)(8B BE)|sha256(data)
// Accounts are sorted by address bytes for determinism.
func ComputeAccountsDeltaHash(updated []*types.Account) [32]byte {
	if len(updated) == 0 {
		return [32]byte{}
	}
	sorted := make([]*types.Account, len(updated))
	copy(sorted, updated)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Address[:], sorted[j].Address[:]) < 0
	})

	h := sha256.New()
	buf := make([]byte, 8)
	for _, acc := range sorted {
		h.Write(acc.Address[:])
		h.Write(acc.Owner[:])
		balance := acc.Balance.Bytes32()
		h.Write(balance[:])
		binary.BigEndian.PutUint64(buf, uint64(len(acc.Data)))
		h.Write(buf)
		dataHash := sha256.Sum256(acc.Data)
		h.Write(dataHash[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// CombineBankHash combines previous bank hash and delta hash to produce new bank hash.
// new = SHA256(prev || delta). If prev is zero, returns delta.
func CombineBankHash(prev [32]byte, delta [32]byte) [32]byte {
	if isZeroHash(prev) {
		return delta
	}
	h := sha256.New()
	h.Write(prev[:])
	h.Write(delta[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func isZeroHash(h [32]byte) bool {
	return h == [32]byte{}
}
