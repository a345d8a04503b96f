package events

import (
	"time"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventTransactionProcessed EventType = "TransactionProcessed"
	EventTransactionFailed    EventType = "TransactionFailed"
)

// LedgerEvent represents the outcome of one executed transaction
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	TxID() string
}

// TransactionProcessed event when a transaction committed
type TransactionProcessed struct {
	txID         string
	sequence     uint64
	instructions []uint8
	timestamp    time.Time
}

// NewTransactionProcessed records the opcodes of each instruction that ran.
func NewTransactionProcessed(txID string, sequence uint64, opcodes []uint8, at time.Time) *TransactionProcessed {
	return &TransactionProcessed{
		txID:         txID,
		sequence:     sequence,
		instructions: opcodes,
		timestamp:    at,
	}
}

func (e *TransactionProcessed) Type() EventType {
	return EventTransactionProcessed
}

func (e *TransactionProcessed) Timestamp() time.Time {
	return e.timestamp
}

func (e *TransactionProcessed) TxID() string {
	return e.txID
}

func (e *TransactionProcessed) Sequence() uint64 {
	return e.sequence
}

func (e *TransactionProcessed) Opcodes() []uint8 {
	return e.instructions
}

// TransactionFailed event when a transaction was rejected and nothing committed
type TransactionFailed struct {
	txID         string
	errorCode    string
	errorMessage string
	timestamp    time.Time
}

func NewTransactionFailed(txID, code, errorMessage string, at time.Time) *TransactionFailed {
	return &TransactionFailed{
		txID:         txID,
		errorCode:    code,
		errorMessage: errorMessage,
		timestamp:    at,
	}
}

func (e *TransactionFailed) Type() EventType {
	return EventTransactionFailed
}

func (e *TransactionFailed) Timestamp() time.Time {
	return e.timestamp
}

func (e *TransactionFailed) TxID() string {
	return e.txID
}

func (e *TransactionFailed) ErrorCode() string {
	return e.errorCode
}

func (e *TransactionFailed) ErrorMessage() string {
	return e.errorMessage
}
