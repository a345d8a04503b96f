package ledger

import "errors"

var (
	ErrAccountInUse            = errors.New("account already in use")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrPayerNotSigner          = errors.New("payer did not sign")
	ErrAccountNotWritable      = errors.New("account not writable")
	ErrInvalidSignerSeeds      = errors.New("signer seeds do not derive the target address")
	ErrIllegalDataModification = errors.New("illegal account modification")
	ErrUnknownProgram          = errors.New("unknown program")
	ErrInvalidSignature        = errors.New("invalid transaction signature")
	ErrDuplicateTransaction    = errors.New("transaction already processed")
	ErrAccountTooLarge         = errors.New("requested account space too large")
)
