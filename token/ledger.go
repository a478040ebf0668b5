package token

import (
	"fmt"
	"sync"

	"provault/common"
	"provault/db"
	"provault/errors"
	"provault/logx"
	"provault/mathx"
	"provault/store"
	"provault/types"
)

const (
	mintSeed    = "provault/mint"
	accountSeed = "provault/token-account"
)

// DeriveMintAddress derives the mint address from its symbol
func DeriveMintAddress(symbol string) string {
	return common.DeriveAddress(mintSeed, symbol)
}

// DeriveAccountAddress derives the one token account an owner has for a mint
func DeriveAccountAddress(mint, owner string) string {
	return common.DeriveAddress(accountSeed, mint, owner)
}

// Ledger is the fungible-token sub-ledger: a mint registry plus token
// accounts with deterministically derived addresses. Transfers are prepared
// here and committed by the caller inside its own batch, so a token movement
// and the counters that mirror it land atomically.
type Ledger struct {
	mu       sync.RWMutex
	mints    *store.MintStore
	accounts *store.TokenAccountStore
}

func NewLedger(mints *store.MintStore, accounts *store.TokenAccountStore) *Ledger {
	return &Ledger{
		mints:    mints,
		accounts: accounts,
	}
}

// RegisterMint registers a mint from genesis config. Registering the same
// symbol twice fails.
func (l *Ledger) RegisterMint(symbol string, decimals uint32) (*types.Mint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	addr := DeriveMintAddress(symbol)
	existing, err := l.mints.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewError(errors.ErrCodeAccountExisted, errors.ErrMsgAccountExisted)
	}

	mint := &types.Mint{
		Address:  addr,
		Symbol:   symbol,
		Decimals: decimals,
		Supply:   0,
	}
	if err := l.mints.Store(mint); err != nil {
		return nil, err
	}

	logx.Info("TOKEN", fmt.Sprintf("Registered mint | symbol=%s | address=%s | decimals=%d", symbol, addr, decimals))
	return mint, nil
}

// GetMint returns the mint by address, or mint_not_found
func (l *Ledger) GetMint(addr string) (*types.Mint, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	mint, err := l.mints.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	if mint == nil {
		return nil, errors.NewError(errors.ErrCodeMintNotFound, errors.ErrMsgMintNotFound)
	}
	return mint, nil
}

// CreateAccount creates the token account for (mint, owner). The address is
// derived, so there is exactly one per pair; creating it twice fails.
func (l *Ledger) CreateAccount(mintAddr, owner string) (*types.TokenAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.createAccountWithoutLocking(mintAddr, owner)
}

func (l *Ledger) createAccountWithoutLocking(mintAddr, owner string) (*types.TokenAccount, error) {
	mint, err := l.mints.GetByAddr(mintAddr)
	if err != nil {
		return nil, err
	}
	if mint == nil {
		return nil, errors.NewError(errors.ErrCodeMintNotFound, errors.ErrMsgMintNotFound)
	}

	addr := DeriveAccountAddress(mintAddr, owner)
	exists, err := l.accounts.ExistsByAddr(addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewError(errors.ErrCodeAccountExisted, errors.ErrMsgAccountExisted)
	}

	account := &types.TokenAccount{
		Address: addr,
		Mint:    mintAddr,
		Owner:   owner,
		Balance: 0,
	}
	if err := l.accounts.Store(account); err != nil {
		return nil, err
	}

	logx.Info("TOKEN", fmt.Sprintf("Created token account | address=%s | owner=%s", addr, owner))
	return account, nil
}

// GetAccount returns the token account by address, or nil when missing
func (l *Ledger) GetAccount(addr string) (*types.TokenAccount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.accounts.GetByAddr(addr)
}

// GetAccountByOwner returns the owner's token account for a mint, or nil
func (l *Ledger) GetAccountByOwner(mintAddr, owner string) (*types.TokenAccount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.accounts.GetByAddr(DeriveAccountAddress(mintAddr, owner))
}

// MintTo credits freshly minted supply to the owner's token account,
// creating the account when missing. Genesis allocation only; there is no
// runtime mint authority.
func (l *Ledger) MintTo(mintAddr, owner string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	mint, err := l.mints.GetByAddr(mintAddr)
	if err != nil {
		return err
	}
	if mint == nil {
		return errors.NewError(errors.ErrCodeMintNotFound, errors.ErrMsgMintNotFound)
	}

	addr := DeriveAccountAddress(mintAddr, owner)
	account, err := l.accounts.GetByAddr(addr)
	if err != nil {
		return err
	}
	if account == nil {
		account = &types.TokenAccount{
			Address: addr,
			Mint:    mintAddr,
			Owner:   owner,
			Balance: 0,
		}
	}

	newSupply, err := mathx.Add64(mint.Supply, amount)
	if err != nil {
		return err
	}
	newBalance, err := mathx.Add64(account.Balance, amount)
	if err != nil {
		return err
	}

	mintCopy := mint.Clone()
	mintCopy.Supply = newSupply
	accountCopy := account.Clone()
	accountCopy.Balance = newBalance

	if err := l.mints.Store(mintCopy); err != nil {
		return err
	}
	if err := l.accounts.Store(accountCopy); err != nil {
		return err
	}

	logx.Info("TOKEN", fmt.Sprintf("Minted | mint=%s | owner=%s | amount=%d | supply=%d", mintAddr, owner, amount, newSupply))
	return nil
}

// PreparedTransfer holds the post-transfer account states ready for staging
type PreparedTransfer struct {
	From *types.TokenAccount
	To   *types.TokenAccount
}

// PrepareTransfer validates a transfer and returns updated copies of both
// accounts without persisting anything. The destination account for
// (from.Mint, toOwner) is created on the fly when missing. The authority
// must be the source account's owner; for the vault token account that owner
// is the derived master address, which only the ledger core can present.
func (l *Ledger) PrepareTransfer(fromAddr, toOwner, authority string, amount uint64) (*PreparedTransfer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	from, err := l.accounts.GetByAddr(fromAddr)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, errors.NewError(errors.ErrCodeAccountNotFound, errors.ErrMsgAccountNotFound)
	}
	if from.Owner != authority {
		return nil, errors.NewError(errors.ErrCodeUnauthorized, errors.ErrMsgUnauthorized)
	}
	if from.Balance < amount {
		return nil, errors.NewError(errors.ErrCodeInsufficientFunds, errors.ErrMsgInsufficientFunds)
	}

	toAddr := DeriveAccountAddress(from.Mint, toOwner)
	if toAddr == fromAddr {
		return nil, errors.NewError(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress)
	}
	to, err := l.accounts.GetByAddr(toAddr)
	if err != nil {
		return nil, err
	}
	if to == nil {
		to = &types.TokenAccount{
			Address: toAddr,
			Mint:    from.Mint,
			Owner:   toOwner,
			Balance: 0,
		}
	}

	newFromBalance, err := mathx.Sub64(from.Balance, amount)
	if err != nil {
		return nil, err
	}
	newToBalance, err := mathx.Add64(to.Balance, amount)
	if err != nil {
		return nil, err
	}

	fromCopy := from.Clone()
	fromCopy.Balance = newFromBalance
	toCopy := to.Clone()
	toCopy.Balance = newToBalance

	return &PreparedTransfer{From: fromCopy, To: toCopy}, nil
}

// Stage writes both sides of a prepared transfer into a shared batch
func (l *Ledger) Stage(batch db.DatabaseBatch, prepared *PreparedTransfer) error {
	if err := l.accounts.Stage(batch, prepared.From); err != nil {
		return err
	}
	return l.accounts.Stage(batch, prepared.To)
}

// StageAccount writes a single token account into a shared batch
func (l *Ledger) StageAccount(batch db.DatabaseBatch, account *types.TokenAccount) error {
	return l.accounts.Stage(batch, account)
}
