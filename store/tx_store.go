package store

import (
	"fmt"

	"github.com/mezonai/multisig/db"
	"github.com/mezonai/multisig/jsonx"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/transaction"
)

// TxStore is the interface for transaction store that is responsible for persisting operations of tx
type TxStore interface {
	StoreBatch(batch db.DatabaseBatch, txs []*transaction.Transaction) error
	GetByID(txID string) (*transaction.Transaction, error)
	HasDedupHash(hash string) (bool, error)
	MustClose()
}

// GenericTxStore keeps committed transactions by ID plus a marker per
// message hash so an identical message cannot be applied twice.
type GenericTxStore struct {
	dbProvider db.DatabaseProvider
}

// NewGenericTxStore creates a new transaction store
func NewGenericTxStore(dbProvider db.DatabaseProvider) (*GenericTxStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericTxStore{
		dbProvider: dbProvider,
	}, nil
}

// StoreBatch stages txs and their dedup markers into batch.
func (ts *GenericTxStore) StoreBatch(batch db.DatabaseBatch, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		txData, err := jsonx.Marshal(tx)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}
		id := tx.ID()
		batch.Put(ts.getDBKey(id), txData)
		batch.Put(ts.getDedupKey(tx.DedupHash()), []byte(id))
	}
	return nil
}

// GetByID returns (nil, nil) when the transaction is unknown.
func (ts *GenericTxStore) GetByID(txID string) (*transaction.Transaction, error) {
	data, err := ts.dbProvider.Get(ts.getDBKey(txID))
	if err != nil {
		return nil, fmt.Errorf("could not get transaction %s from db: %w", txID, err)
	}
	if data == nil {
		return nil, nil
	}

	var tx transaction.Transaction
	if err := jsonx.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction %s: %w", txID, err)
	}
	return &tx, nil
}

func (ts *GenericTxStore) HasDedupHash(hash string) (bool, error) {
	return ts.dbProvider.Has(ts.getDedupKey(hash))
}

func (ts *GenericTxStore) MustClose() {
	if err := ts.dbProvider.Close(); err != nil {
		logx.Error("TX_STORE", "Failed to close provider:", err)
	}
}

func (ts *GenericTxStore) getDBKey(txID string) []byte {
	return []byte(PrefixTx + txID)
}

func (ts *GenericTxStore) getDedupKey(hash string) []byte {
	return []byte(PrefixTxDedup + hash)
}
