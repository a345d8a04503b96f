package store

// Declare database key prefix for objects
const (
	PrefixAccount = "account:"

	PrefixTx      = "tx:"
	PrefixTxMeta  = "tx_meta:"
	PrefixTxDedup = "tx_dedup:"

	PrefixBankHashBySeq = "bank_hash:"
	StateMetaKeyLatest  = "state_meta:latest"
)
