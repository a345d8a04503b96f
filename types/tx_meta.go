package types

import "github.com/mezonai/multisig/transaction"

const (
	TxStatusFailed  = 0
	TxStatusSuccess = 1
)

// TransactionMeta is the persisted outcome of one executed transaction.
type TransactionMeta struct {
	TxID        string `json:"tx_id"`
	DedupHash   string `json:"dedup_hash"`
	Sequence    uint64 `json:"sequence"`
	ProcessedAt uint64 `json:"processed_at"`
	Status      int32  `json:"status"`
	ErrorCode   string `json:"error_code,omitempty"`
	Error       string `json:"error,omitempty"`
	BankHash    string `json:"bank_hash,omitempty"`
}

func NewTxMeta(tx *transaction.Transaction, seq, processedAt uint64, status int32, code, errMsg string) *TransactionMeta {
	return &TransactionMeta{
		TxID:        tx.ID(),
		DedupHash:   tx.DedupHash(),
		Sequence:    seq,
		ProcessedAt: processedAt,
		Status:      status,
		ErrorCode:   code,
		Error:       errMsg,
	}
}

func (m *TransactionMeta) Succeeded() bool {
	return m.Status == TxStatusSuccess
}
