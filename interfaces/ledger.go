package interfaces

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/mezonai/multisig/transaction"
	"github.com/mezonai/multisig/types"
)

// Ledger interface defines the methods required for ledger operations
type Ledger interface {
	// AccountExists checks if an account has been allocated
	AccountExists(addr solana.PublicKey) bool
	// GetAccount returns the account for the given address, or an unallocated one
	GetAccount(addr solana.PublicKey) (*types.Account, error)
	// Fund credits an address outside of any program call
	Fund(addr solana.PublicKey, amount *uint256.Int) error
	// Execute runs one signed transaction atomically
	Execute(tx *transaction.Transaction) error
}
