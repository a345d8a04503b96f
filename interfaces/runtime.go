package interfaces

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/types"
)

// Runtime is what a program may ask of the host during one call.
type Runtime interface {
	// Now is the call's timestamp in unix seconds, fixed for the whole call.
	Now() uint64
	// CreateAccount allocates space bytes at target, owned by owner and funded
	// by payer. signerSeeds must derive target under the calling program.
	CreateAccount(payer, target *types.AccountInfo, space uint64, owner solana.PublicKey, signerSeeds [][]byte) error
}

// Program is an on-ledger program the host dispatches instructions to.
type Program interface {
	ID() solana.PublicKey
	Process(rt Runtime, accounts []*types.AccountInfo, data []byte) error
}

type Clock interface {
	Now() time.Time
}
