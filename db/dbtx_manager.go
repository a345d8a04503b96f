package db

import (
	"fmt"
	"sync"
)

// DBTxManager groups writes from several stores into one atomic batch.
// Batches are committed one at a time.
type DBTxManager struct {
	mu       sync.Mutex
	provider DatabaseProvider
}

// NewDBTxManager creates a new transaction manager with the given provider
func NewDBTxManager(provider DatabaseProvider) *DBTxManager {
	return &DBTxManager{provider: provider}
}

// WithBatch executes fn within a batch context.
// If fn returns nil, the batch is committed; otherwise it is discarded.
func (tm *DBTxManager) WithBatch(fn func(batch DatabaseBatch) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	batch := tm.provider.Batch()
	defer batch.Close()

	if err := fn(batch); err != nil {
		batch.Reset()
		return fmt.Errorf("transaction failed: %w", err)
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	return nil
}
