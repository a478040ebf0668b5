package db

import (
	"fmt"
)

// DBTxManager manages database batches for atomic operations spanning
// multiple stores on the shared DatabaseProvider.
type DBTxManager struct {
	provider DatabaseProvider
}

// NewDBTxManager creates a new transaction manager with the given provider
func NewDBTxManager(provider DatabaseProvider) *DBTxManager {
	return &DBTxManager{provider: provider}
}

// WithBatch executes the given function within a batch context.
// If the function returns nil, the batch is committed; otherwise, it's discarded.
func (tm *DBTxManager) WithBatch(fn func(batch DatabaseBatch) error) error {
	batch := tm.provider.Batch()
	defer batch.Close()

	if err := fn(batch); err != nil {
		batch.Reset()
		return err
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	return nil
}
