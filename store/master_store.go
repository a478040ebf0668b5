package store

import (
	"fmt"
	"sync"

	"provault/db"
	"provault/jsonx"
	"provault/types"
)

// MasterStore persists the singleton master record.
type MasterStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewMasterStore(dbProvider db.DatabaseProvider) (*MasterStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &MasterStore{
		dbProvider: dbProvider,
	}, nil
}

// Get returns the master record, or nil when it has not been created yet
func (ms *MasterStore) Get() (*types.MasterRecord, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	data, err := ms.dbProvider.Get([]byte(MasterKeyRecord))
	if err != nil {
		return nil, fmt.Errorf("could not get master record from db: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var rec types.MasterRecord
	if err := jsonx.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal master record: %w", err)
	}
	return &rec, nil
}

// Exists reports whether the master record has been created
func (ms *MasterStore) Exists() (bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return ms.dbProvider.Has([]byte(MasterKeyRecord))
}

// Stage adds the master record write to a shared batch without committing
func (ms *MasterStore) Stage(batch db.DatabaseBatch, rec *types.MasterRecord) error {
	data, err := jsonx.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal master record: %w", err)
	}
	batch.Put([]byte(MasterKeyRecord), data)
	return nil
}
