package types

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// Account is a keyed record as persisted by the host ledger.
type Account struct {
	Address solana.PublicKey
	Owner   solana.PublicKey
	Balance *uint256.Int
	Data    []byte
}

// NewSystemAccount returns an unallocated account: system owned, empty, unfunded.
func NewSystemAccount(addr solana.PublicKey) *Account {
	return &Account{
		Address: addr,
		Owner:   solana.SystemProgramID,
		Balance: uint256.NewInt(0),
	}
}

// IsAllocated reports whether anything lives at the address yet.
func (a *Account) IsAllocated() bool {
	if !a.Owner.Equals(solana.SystemProgramID) || len(a.Data) > 0 {
		return true
	}
	return a.Balance != nil && !a.Balance.IsZero()
}

func (a *Account) Clone() *Account {
	out := &Account{
		Address: a.Address,
		Owner:   a.Owner,
		Balance: uint256.NewInt(0),
		Data:    append([]byte(nil), a.Data...),
	}
	if a.Balance != nil {
		out.Balance = a.Balance.Clone()
	}
	return out
}

// AccountInfo is the view of an account handed to a program for the duration
// of one call. Programs mutate Data in place; the host decides whether the
// mutation commits.
type AccountInfo struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Balance    *uint256.Int
	Data       []byte
	IsSigner   bool
	IsWritable bool
}

func NewAccountInfo(acc *Account, isSigner, isWritable bool) *AccountInfo {
	c := acc.Clone()
	return &AccountInfo{
		Key:        c.Address,
		Owner:      c.Owner,
		Balance:    c.Balance,
		Data:       c.Data,
		IsSigner:   isSigner,
		IsWritable: isWritable,
	}
}

func (ai *AccountInfo) IsOwnedBy(program solana.PublicKey) bool {
	return ai.Owner.Equals(program)
}

// IsUnallocated mirrors Account.IsAllocated for the in-call view.
func (ai *AccountInfo) IsUnallocated() bool {
	return ai.Owner.Equals(solana.SystemProgramID) && len(ai.Data) == 0 &&
		(ai.Balance == nil || ai.Balance.IsZero())
}

func (ai *AccountInfo) ToAccount() *Account {
	return &Account{
		Address: ai.Key,
		Owner:   ai.Owner,
		Balance: ai.Balance.Clone(),
		Data:    append([]byte(nil), ai.Data...),
	}
}

// Differs reports whether the view no longer matches acc.
func (ai *AccountInfo) Differs(acc *Account) bool {
	if !ai.Owner.Equals(acc.Owner) || !bytes.Equal(ai.Data, acc.Data) {
		return true
	}
	return ai.Balance.Cmp(acc.Balance) != 0
}
