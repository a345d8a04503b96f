package ledger

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/mezonai/multisig/types"
)

// MaxAccountSpace bounds a single allocation.
const MaxAccountSpace = 10 * 1024

// allocation records an account the runtime created during one instruction.
type allocation struct {
	owner solana.PublicKey
	space uint64
}

// callRuntime serves one instruction. It tracks every lamport movement and
// allocation so the host can check the program's writes afterwards.
type callRuntime struct {
	programID solana.PublicKey
	now       uint64
	rent      Rent
	created   map[solana.PublicKey]allocation
	debits    map[solana.PublicKey]*uint256.Int
	credits   map[solana.PublicKey]*uint256.Int
}

func newCallRuntime(programID solana.PublicKey, now uint64, rent Rent) *callRuntime {
	return &callRuntime{
		programID: programID,
		now:       now,
		rent:      rent,
		created:   make(map[solana.PublicKey]allocation),
		debits:    make(map[solana.PublicKey]*uint256.Int),
		credits:   make(map[solana.PublicKey]*uint256.Int),
	}
}

func (rt *callRuntime) Now() uint64 {
	return rt.now
}

// CreateAccount allocates space zeroed bytes at target on behalf of the
// calling program. The bump must be the last element of signerSeeds.
func (rt *callRuntime) CreateAccount(payer, target *types.AccountInfo, space uint64, owner solana.PublicKey, signerSeeds [][]byte) error {
	if !payer.IsSigner {
		return fmt.Errorf("%w: %s", ErrPayerNotSigner, payer.Key)
	}
	if !payer.IsWritable {
		return fmt.Errorf("%w: payer %s", ErrAccountNotWritable, payer.Key)
	}
	if !target.IsWritable {
		return fmt.Errorf("%w: target %s", ErrAccountNotWritable, target.Key)
	}
	if space > MaxAccountSpace {
		return fmt.Errorf("%w: %d bytes", ErrAccountTooLarge, space)
	}
	if !target.IsUnallocated() {
		return fmt.Errorf("%w: %s", ErrAccountInUse, target.Key)
	}
	if _, dup := rt.created[target.Key]; dup {
		return fmt.Errorf("%w: %s", ErrAccountInUse, target.Key)
	}

	derived, err := solana.CreateProgramAddress(signerSeeds, rt.programID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignerSeeds, err)
	}
	if !derived.Equals(target.Key) {
		return fmt.Errorf("%w: got %s, want %s", ErrInvalidSignerSeeds, derived, target.Key)
	}

	lamports := rt.rent.MinimumBalance(space)
	if payer.Balance.Cmp(lamports) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, payer.Key, payer.Balance.Dec(), lamports.Dec())
	}

	payer.Balance = new(uint256.Int).Sub(payer.Balance, lamports)
	target.Balance = new(uint256.Int).Add(target.Balance, lamports)
	target.Owner = owner
	target.Data = make([]byte, space)

	rt.move(rt.debits, payer.Key, lamports)
	rt.move(rt.credits, target.Key, lamports)
	rt.created[target.Key] = allocation{owner: owner, space: space}
	return nil
}

func (rt *callRuntime) move(ledger map[solana.PublicKey]*uint256.Int, key solana.PublicKey, amount *uint256.Int) {
	cur, ok := ledger[key]
	if !ok {
		cur = uint256.NewInt(0)
	}
	ledger[key] = new(uint256.Int).Add(cur, amount)
}

// verify checks the program's writes to ai against its state before the call.
func (rt *callRuntime) verify(pre *types.Account, ai *types.AccountInfo) error {
	alloc, created := rt.created[ai.Key]

	expectedOwner := pre.Owner
	expectedLen := uint64(len(pre.Data))
	if created {
		expectedOwner = alloc.owner
		expectedLen = alloc.space
	}
	if !ai.Owner.Equals(expectedOwner) {
		return fmt.Errorf("%w: owner of %s changed", ErrIllegalDataModification, ai.Key)
	}
	if uint64(len(ai.Data)) != expectedLen {
		return fmt.Errorf("%w: data length of %s changed", ErrIllegalDataModification, ai.Key)
	}

	dataChanged := !bytes.Equal(ai.Data, pre.Data)
	if created {
		dataChanged = !alloc.owner.Equals(rt.programID) && !isZeroed(ai.Data)
	}
	if dataChanged {
		if !ai.IsWritable {
			return fmt.Errorf("%w: %s", ErrAccountNotWritable, ai.Key)
		}
		if !ai.Owner.Equals(rt.programID) {
			return fmt.Errorf("%w: %s is not owned by %s", ErrIllegalDataModification, ai.Key, rt.programID)
		}
	}

	want := pre.Balance.Clone()
	if d, ok := rt.debits[ai.Key]; ok {
		want.Sub(want, d)
	}
	if c, ok := rt.credits[ai.Key]; ok {
		want.Add(want, c)
	}
	if ai.Balance == nil || ai.Balance.Cmp(want) != 0 {
		return fmt.Errorf("%w: balance of %s changed outside the runtime", ErrIllegalDataModification, ai.Key)
	}
	return nil
}

func isZeroed(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
