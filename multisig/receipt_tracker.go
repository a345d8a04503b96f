package multisig

import (
	"fmt"

	"github.com/mezonai/multisig/codec"
	"github.com/mezonai/multisig/interfaces"
	"github.com/mezonai/multisig/pda"
	"github.com/mezonai/multisig/types"
)

// receiptTracker counts one voter's lifetime votes at derive("vote_state", voter).
type receiptTracker struct {
	program  *Program
	voter    *types.AccountInfo
	account  *types.AccountInfo
	bump     uint8
	existing *types.VoteReceipt
}

// receiptFor checks the receipt account before any ballot is written.
func (p *Program) receiptFor(voter, account *types.AccountInfo) (*receiptTracker, error) {
	addr, bump, err := p.deriver.ReceiptAddress(voter.Key)
	if err != nil {
		return nil, err
	}
	if err := requireAddress(account, addr, "receipt"); err != nil {
		return nil, err
	}
	t := &receiptTracker{program: p, voter: voter, account: account, bump: bump}
	switch {
	case account.IsOwnedBy(p.ID()):
		if t.existing, err = codec.DecodeReceipt(account.Data); err != nil {
			return nil, identityMismatch("receipt %s: %v", account.Key, err)
		}
	case account.IsUnallocated():
	default:
		return nil, identityMismatch("receipt %s is owned by %s", account.Key, account.Owner)
	}
	return t, nil
}

// record creates the receipt on a first vote, otherwise increments it.
func (t *receiptTracker) record(rt interfaces.Runtime) error {
	if t.existing != nil {
		t.existing.TotalVotes++
		return codec.WriteReceipt(t.account.Data, t.existing)
	}
	seeds := withBump(pda.ReceiptSeeds(t.voter.Key), t.bump)
	if err := rt.CreateAccount(t.voter, t.account, codec.ReceiptLen, t.program.ID(), seeds); err != nil {
		return fmt.Errorf("allocate receipt: %w", err)
	}
	return codec.WriteReceipt(t.account.Data, &types.VoteReceipt{
		IsAuthorized: true,
		TotalVotes:   1,
		Bump:         t.bump,
	})
}
