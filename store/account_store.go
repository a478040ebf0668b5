package store

import (
	"fmt"
	"sync"

	"provault/db"
	"provault/jsonx"
	"provault/types"
)

type AccountStore interface {
	Store(account *types.Account) error
	Stage(batch db.DatabaseBatch, account *types.Account) error
	GetByAddr(addr string) (*types.Account, error)
	ExistsByAddr(addr string) (bool, error)
}

type GenericAccountStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericAccountStore(dbProvider db.DatabaseProvider) (*GenericAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericAccountStore{
		dbProvider: dbProvider,
	}, nil
}

func (as *GenericAccountStore) Store(account *types.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	accountData, err := jsonx.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	err = as.dbProvider.Put(as.getDbKey(account.Address), accountData)
	if err != nil {
		return fmt.Errorf("failed to write account to db: %w", err)
	}

	return nil
}

// Stage adds the account write to a shared batch without committing. The
// caller owns the batch lifecycle.
func (as *GenericAccountStore) Stage(batch db.DatabaseBatch, account *types.Account) error {
	accountData, err := jsonx.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	batch.Put(as.getDbKey(account.Address), accountData)
	return nil
}

// GetByAddr returns account instance from db, return both nil if not exist
func (as *GenericAccountStore) GetByAddr(addr string) (*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	data, err := as.dbProvider.Get(as.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get account %s from db: %w", addr, err)
	}

	// Account doesn't exist
	if data == nil {
		return nil, nil
	}

	var acc types.Account
	if err := jsonx.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account %s: %w", addr, err)
	}
	return &acc, nil
}

func (as *GenericAccountStore) ExistsByAddr(addr string) (bool, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.dbProvider.Has(as.getDbKey(addr))
}

func (as *GenericAccountStore) getDbKey(addr string) []byte {
	return []byte(PrefixAccount + addr)
}
