package store

import (
	"fmt"

	"github.com/mezonai/multisig/db"
	"github.com/mezonai/multisig/jsonx"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/types"
)

// TxMetaStore is the interface for transaction meta store
// that is responsible for persisting operations of transaction metadata
type TxMetaStore interface {
	Store(txMeta *types.TransactionMeta) error
	StoreBatch(batch db.DatabaseBatch, txMetas []*types.TransactionMeta) error
	GetByID(txID string) (*types.TransactionMeta, error)
	GetBatch(txIDs []string) (map[string]*types.TransactionMeta, error)
	MustClose()
}

// GenericTxMetaStore provides transaction meta storage operations
type GenericTxMetaStore struct {
	dbProvider db.DatabaseProvider
}

// NewGenericTxMetaStore creates a new transaction meta store
func NewGenericTxMetaStore(dbProvider db.DatabaseProvider) (*GenericTxMetaStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericTxMetaStore{
		dbProvider: dbProvider,
	}, nil
}

// Store writes one meta on its own, outside any ledger batch.
func (tms *GenericTxMetaStore) Store(txMeta *types.TransactionMeta) error {
	data, err := jsonx.Marshal(txMeta)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction meta: %w", err)
	}
	if err := tms.dbProvider.Put(tms.getDBKey(txMeta.TxID), data); err != nil {
		return fmt.Errorf("failed to write transaction meta: %w", err)
	}
	return nil
}

// StoreBatch stages metas into batch. The caller commits it.
func (tms *GenericTxMetaStore) StoreBatch(batch db.DatabaseBatch, txMetas []*types.TransactionMeta) error {
	for _, txMeta := range txMetas {
		data, err := jsonx.Marshal(txMeta)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction meta: %w", err)
		}
		batch.Put(tms.getDBKey(txMeta.TxID), data)
	}
	return nil
}

// GetByID returns (nil, nil) when no meta exists.
func (tms *GenericTxMetaStore) GetByID(txID string) (*types.TransactionMeta, error) {
	data, err := tms.dbProvider.Get(tms.getDBKey(txID))
	if err != nil {
		return nil, fmt.Errorf("could not get transaction meta %s from db: %w", txID, err)
	}
	if data == nil {
		return nil, nil
	}

	var txMeta types.TransactionMeta
	if err := jsonx.Unmarshal(data, &txMeta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction meta %s: %w", txID, err)
	}
	return &txMeta, nil
}

// GetBatch retrieves multiple metas; unknown or undecodable IDs are skipped.
func (tms *GenericTxMetaStore) GetBatch(txIDs []string) (map[string]*types.TransactionMeta, error) {
	if len(txIDs) == 0 {
		return map[string]*types.TransactionMeta{}, nil
	}

	keys := make([][]byte, len(txIDs))
	for i, id := range txIDs {
		keys[i] = tms.getDBKey(id)
	}
	dataMap, err := tms.dbProvider.GetBatch(keys)
	if err != nil {
		return nil, fmt.Errorf("failed to batch get transaction metas: %w", err)
	}

	txMetas := make(map[string]*types.TransactionMeta, len(txIDs))
	for i, id := range txIDs {
		data, exists := dataMap[string(keys[i])]
		if !exists {
			logx.Warn("TX_META_STORE", "Transaction meta", id, "not found in batch result")
			continue
		}
		var txMeta types.TransactionMeta
		if err := jsonx.Unmarshal(data, &txMeta); err != nil {
			logx.Warn("TX_META_STORE", "Failed to unmarshal transaction meta", id, err.Error())
			continue
		}
		txMetas[id] = &txMeta
	}
	return txMetas, nil
}

// MustClose closes the transaction meta store and related resources
func (tms *GenericTxMetaStore) MustClose() {
	if err := tms.dbProvider.Close(); err != nil {
		logx.Error("TX_META_STORE", "Failed to close provider")
	}
}

func (tms *GenericTxMetaStore) getDBKey(txID string) []byte {
	return []byte(PrefixTxMeta + txID)
}
