package store

import (
	"fmt"
	"sync"

	"provault/db"
	"provault/jsonx"
	"provault/types"
)

// TokenAccountStore persists token accounts keyed by their derived address.
type TokenAccountStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewTokenAccountStore(dbProvider db.DatabaseProvider) (*TokenAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &TokenAccountStore{
		dbProvider: dbProvider,
	}, nil
}

func (ts *TokenAccountStore) Store(account *types.TokenAccount) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	data, err := jsonx.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal token account: %w", err)
	}
	if err := ts.dbProvider.Put(ts.getDbKey(account.Address), data); err != nil {
		return fmt.Errorf("failed to write token account to db: %w", err)
	}
	return nil
}

// Stage adds the token account write to a shared batch without committing
func (ts *TokenAccountStore) Stage(batch db.DatabaseBatch, account *types.TokenAccount) error {
	data, err := jsonx.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal token account: %w", err)
	}
	batch.Put(ts.getDbKey(account.Address), data)
	return nil
}

// GetByAddr returns token account instance from db, return both nil if not exist
func (ts *TokenAccountStore) GetByAddr(addr string) (*types.TokenAccount, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	data, err := ts.dbProvider.Get(ts.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get token account %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}

	var acc types.TokenAccount
	if err := jsonx.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token account %s: %w", addr, err)
	}
	return &acc, nil
}

func (ts *TokenAccountStore) ExistsByAddr(addr string) (bool, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return ts.dbProvider.Has(ts.getDbKey(addr))
}

func (ts *TokenAccountStore) getDbKey(addr string) []byte {
	return []byte(PrefixTokenAccount + addr)
}

// MintStore persists registered mints keyed by their derived address.
type MintStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewMintStore(dbProvider db.DatabaseProvider) (*MintStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &MintStore{
		dbProvider: dbProvider,
	}, nil
}

func (ms *MintStore) Store(mint *types.Mint) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	data, err := jsonx.Marshal(mint)
	if err != nil {
		return fmt.Errorf("failed to marshal mint: %w", err)
	}
	if err := ms.dbProvider.Put(ms.getDbKey(mint.Address), data); err != nil {
		return fmt.Errorf("failed to write mint to db: %w", err)
	}
	return nil
}

// Stage adds the mint write to a shared batch without committing
func (ms *MintStore) Stage(batch db.DatabaseBatch, mint *types.Mint) error {
	data, err := jsonx.Marshal(mint)
	if err != nil {
		return fmt.Errorf("failed to marshal mint: %w", err)
	}
	batch.Put(ms.getDbKey(mint.Address), data)
	return nil
}

// GetByAddr returns mint instance from db, return both nil if not exist
func (ms *MintStore) GetByAddr(addr string) (*types.Mint, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	data, err := ms.dbProvider.Get(ms.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get mint %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}

	var mint types.Mint
	if err := jsonx.Unmarshal(data, &mint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mint %s: %w", addr, err)
	}
	return &mint, nil
}

func (ms *MintStore) getDbKey(addr string) []byte {
	return []byte(PrefixMint + addr)
}
