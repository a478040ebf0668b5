package vault

import (
	"fmt"
	"sync"
	"time"

	"provault/common"
	"provault/db"
	"provault/errors"
	"provault/events"
	"provault/logx"
	"provault/mathx"
	"provault/monitoring"
	"provault/store"
	"provault/token"
	"provault/types"
)

// Caller is a verified request identity: the signer's address and the
// request nonce. Signature verification happens at the envelope layer; the
// service trusts the address it is handed.
type Caller struct {
	Address string
	Nonce   uint64
}

// Service is the custody ledger core. Every operation runs under one
// exclusive lock through authorize -> validate -> mutate -> emit, and all
// writes for an operation land in a single database batch, so a failed
// operation leaves no partial state and a committed one is fully observable.
type Service struct {
	mu sync.Mutex

	reserve    uint64
	masterAddr string

	masters     *store.MasterStore
	accounts    store.AccountStore
	eventStore  *store.EventStore
	tokenLedger *token.Ledger
	eventRouter *events.EventRouter
	txMgr       *db.DBTxManager

	// cached master record; nil until init_master has committed
	master *types.MasterRecord

	now func() int64
}

// NewService builds the service and loads the master record if one exists.
// A zero reserve selects the default sized to the master record.
func NewService(
	masters *store.MasterStore,
	accounts store.AccountStore,
	eventStore *store.EventStore,
	tokenLedger *token.Ledger,
	eventRouter *events.EventRouter,
	txMgr *db.DBTxManager,
	reserve uint64,
) (*Service, error) {
	if reserve == 0 {
		reserve = DefaultReserve()
	}

	master, err := masters.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load master record: %w", err)
	}
	if master != nil {
		logx.Info("VAULT", fmt.Sprintf("Loaded master record | native_balance=%d | token_balance=%d | admin=%s | operator=%s",
			master.NativeBalance, master.TokenBalance, master.Admin, master.Operator))
	}

	return &Service{
		reserve:     reserve,
		masterAddr:  DeriveMasterAddress(),
		masters:     masters,
		accounts:    accounts,
		eventStore:  eventStore,
		tokenLedger: tokenLedger,
		eventRouter: eventRouter,
		txMgr:       txMgr,
		master:      master,
		now:         func() int64 { return time.Now().Unix() },
	}, nil
}

// MasterAddress returns the vault's derived account address
func (s *Service) MasterAddress() string {
	return s.masterAddr
}

// Reserve returns the rent-exemption floor the vault retains
func (s *Service) Reserve() uint64 {
	return s.reserve
}

// GetMaster returns a copy of the master record, or master_not_initialized
func (s *Service) GetMaster() (*types.MasterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.master == nil {
		return nil, errors.NewError(errors.ErrCodeMasterNotInitialized, errors.ErrMsgMasterNotInitialized)
	}
	return s.master.Clone(), nil
}

// InitMaster creates the singleton master record. The payer funds the
// vault's rent-exemption reserve; both balances start at zero and no token
// account is bound yet. There is no authorization beyond the payer paying.
func (s *Service) InitMaster(payer Caller, admin, operator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.master != nil {
		return s.reject(errors.ErrCodeMasterAlreadyInitialized, errors.ErrMsgMasterAlreadyInitialized, monitoring.OpRejectedUnknown)
	}
	if err := validateAddress(admin); err != nil {
		return err
	}
	if err := validateAddress(operator); err != nil {
		return err
	}

	payerAcc, err := s.beginOp(payer)
	if err != nil {
		return err
	}
	if payerAcc.Balance < s.reserve {
		return s.reject(errors.ErrCodeInsufficientFunds, errors.ErrMsgInsufficientFunds, monitoring.OpInsufficientFunds)
	}
	payerAcc.Balance -= s.reserve

	vaultAcc := &types.Account{
		Address: s.masterAddr,
		Balance: s.reserve,
		Nonce:   0,
	}

	record := &types.MasterRecord{
		NativeBalance:    0,
		TokenBalance:     0,
		TokenAccount:     "",
		LastWithdrawTime: 0,
		Admin:            admin,
		Operator:         operator,
	}

	err = s.txMgr.WithBatch(func(batch db.DatabaseBatch) error {
		if err := s.accounts.Stage(batch, payerAcc); err != nil {
			return err
		}
		if err := s.accounts.Stage(batch, vaultAcc); err != nil {
			return err
		}
		return s.masters.Stage(batch, record)
	})
	if err != nil {
		return err
	}

	s.master = record
	logx.Info("VAULT", fmt.Sprintf("Master record created | admin=%s | operator=%s | reserve=%d | payer=%s",
		admin, operator, s.reserve, payer.Address))
	return nil
}

// InitTokenAccount binds the vault token account for the given mint. Admin
// only, at most once; the binding is immutable afterwards.
func (s *Service) InitTokenAccount(caller Caller, mintAddr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMaster(); err != nil {
		return "", err
	}
	if err := s.requireRole(caller.Address, s.master.Admin); err != nil {
		return "", err
	}
	if s.master.HasTokenAccount() {
		return "", s.reject(errors.ErrCodeTokenAccountCreated, errors.ErrMsgTokenAccountCreated, monitoring.OpRejectedUnknown)
	}

	callerAcc, err := s.beginOp(caller)
	if err != nil {
		return "", err
	}

	if _, err := s.tokenLedger.GetMint(mintAddr); err != nil {
		return "", err
	}

	vaultTokenAcc := &types.TokenAccount{
		Address: token.DeriveAccountAddress(mintAddr, s.masterAddr),
		Mint:    mintAddr,
		Owner:   s.masterAddr,
		Balance: 0,
	}

	record := s.master.Clone()
	record.TokenAccount = vaultTokenAcc.Address

	err = s.txMgr.WithBatch(func(batch db.DatabaseBatch) error {
		if err := s.accounts.Stage(batch, callerAcc); err != nil {
			return err
		}
		if err := s.tokenLedger.StageAccount(batch, vaultTokenAcc); err != nil {
			return err
		}
		return s.masters.Stage(batch, record)
	})
	if err != nil {
		return "", err
	}

	s.master = record
	logx.Info("VAULT", fmt.Sprintf("Vault token account created | address=%s | mint=%s", vaultTokenAcc.Address, mintAddr))
	return vaultTokenAcc.Address, nil
}

// DepositNative moves native currency from the caller into the vault.
// Deposits are open to any funded caller.
func (s *Service) DepositNative(caller Caller, amount uint64) (*events.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMaster(); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	callerAcc, err := s.beginOp(caller)
	if err != nil {
		return nil, err
	}
	if callerAcc.Balance < amount {
		return nil, s.reject(errors.ErrCodeInsufficientFunds, errors.ErrMsgInsufficientFunds, monitoring.OpInsufficientFunds)
	}
	callerAcc.Balance -= amount

	vaultAcc, err := s.loadAccount(s.masterAddr)
	if err != nil {
		return nil, err
	}
	vaultAcc.Balance, err = mathx.Add64(vaultAcc.Balance, amount)
	if err != nil {
		return nil, s.rejectMath(err)
	}

	record := s.master.Clone()
	record.NativeBalance, err = mathx.Add64(record.NativeBalance, amount)
	if err != nil {
		return nil, s.rejectMath(err)
	}

	ev := events.NewDeposit(caller.Address, s.masterAddr, amount, s.now())
	evRecord, err := s.commit(record, ev, func(batch db.DatabaseBatch) error {
		if err := s.accounts.Stage(batch, callerAcc); err != nil {
			return err
		}
		return s.accounts.Stage(batch, vaultAcc)
	})
	if err != nil {
		return nil, err
	}

	monitoring.IncreaseDepositCount(monitoring.AssetNative)
	logx.Info("VAULT", fmt.Sprintf("Native deposit | user=%s | amount=%d | native_balance=%d", caller.Address, amount, record.NativeBalance))
	return evRecord, nil
}

// DepositToken moves tokens from the caller's token account into the vault
// token account. Requires the binding from init_token_account.
func (s *Service) DepositToken(caller Caller, amount uint64) (*events.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMaster(); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := s.requireTokenAccount(); err != nil {
		return nil, err
	}

	callerAcc, err := s.beginOp(caller)
	if err != nil {
		return nil, err
	}

	vaultTokenAddr, err := s.checkedVaultTokenAddress()
	if err != nil {
		return nil, err
	}

	fromAddr := token.DeriveAccountAddress(s.vaultTokenMint(), caller.Address)
	prepared, err := s.tokenLedger.PrepareTransfer(fromAddr, s.masterAddr, caller.Address, amount)
	if err != nil {
		return nil, s.rejectTransfer(err)
	}

	record := s.master.Clone()
	record.TokenBalance, err = mathx.Add64(record.TokenBalance, amount)
	if err != nil {
		return nil, s.rejectMath(err)
	}

	ev := events.NewDeposit(caller.Address, vaultTokenAddr, amount, s.now())
	evRecord, err := s.commit(record, ev, func(batch db.DatabaseBatch) error {
		if err := s.accounts.Stage(batch, callerAcc); err != nil {
			return err
		}
		return s.tokenLedger.Stage(batch, prepared)
	})
	if err != nil {
		return nil, err
	}

	monitoring.IncreaseDepositCount(monitoring.AssetToken)
	logx.Info("VAULT", fmt.Sprintf("Token deposit | user=%s | amount=%d | token_balance=%d", caller.Address, amount, record.TokenBalance))
	return evRecord, nil
}

// WithdrawNative moves native currency from the vault to the admin's own
// account. The vault must retain more than the reserve after the withdrawal.
func (s *Service) WithdrawNative(caller Caller, amount uint64) (*events.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMaster(); err != nil {
		return nil, err
	}
	if err := s.requireRole(caller.Address, s.master.Admin); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	adminAcc, err := s.beginOp(caller)
	if err != nil {
		return nil, err
	}

	record := s.master.Clone()
	if err := s.checkFloor(record.NativeBalance, amount); err != nil {
		return nil, err
	}
	record.NativeBalance, err = mathx.Sub64(record.NativeBalance, amount)
	if err != nil {
		return nil, s.rejectMath(err)
	}

	vaultAcc, err := s.loadAccount(s.masterAddr)
	if err != nil {
		return nil, err
	}
	vaultAcc.Balance, err = mathx.Sub64(vaultAcc.Balance, amount)
	if err != nil {
		return nil, s.rejectMath(err)
	}
	adminAcc.Balance, err = mathx.Add64(adminAcc.Balance, amount)
	if err != nil {
		return nil, s.rejectMath(err)
	}

	ev := events.NewAdminWithdraw(caller.Address, s.masterAddr, amount, s.now())
	evRecord, err := s.commit(record, ev, func(batch db.DatabaseBatch) error {
		if err := s.accounts.Stage(batch, adminAcc); err != nil {
			return err
		}
		return s.accounts.Stage(batch, vaultAcc)
	})
	if err != nil {
		return nil, err
	}

	monitoring.IncreaseWithdrawCount(monitoring.AssetNative, monitoring.WithdrawKindAdmin)
	logx.Info("VAULT", fmt.Sprintf("Admin native withdraw | amount=%d | native_balance=%d", amount, record.NativeBalance))
	return evRecord, nil
}

// WithdrawToken moves tokens from the vault token account to the admin's
// token account. The vault signs with its own derived authority; no floor
// check applies to token accounts.
func (s *Service) WithdrawToken(caller Caller, amount uint64) (*events.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMaster(); err != nil {
		return nil, err
	}
	if err := s.requireRole(caller.Address, s.master.Admin); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := s.requireTokenAccount(); err != nil {
		return nil, err
	}

	adminAcc, err := s.beginOp(caller)
	if err != nil {
		return nil, err
	}

	vaultTokenAddr, err := s.checkedVaultTokenAddress()
	if err != nil {
		return nil, err
	}

	record := s.master.Clone()
	record.TokenBalance, err = mathx.Sub64(record.TokenBalance, amount)
	if err != nil {
		return nil, s.rejectMath(err)
	}

	prepared, err := s.tokenLedger.PrepareTransfer(vaultTokenAddr, caller.Address, s.masterAddr, amount)
	if err != nil {
		return nil, s.rejectTransfer(err)
	}

	ev := events.NewAdminWithdraw(caller.Address, vaultTokenAddr, amount, s.now())
	evRecord, err := s.commit(record, ev, func(batch db.DatabaseBatch) error {
		if err := s.accounts.Stage(batch, adminAcc); err != nil {
			return err
		}
		return s.tokenLedger.Stage(batch, prepared)
	})
	if err != nil {
		return nil, err
	}

	monitoring.IncreaseWithdrawCount(monitoring.AssetToken, monitoring.WithdrawKindAdmin)
	logx.Info("VAULT", fmt.Sprintf("Admin token withdraw | amount=%d | token_balance=%d", amount, record.TokenBalance))
	return evRecord, nil
}

// SendWithdrawNative dispatches a native payout to an arbitrary receiver on
// behalf of the off-chain request queue. Operator only. The attempt
// timestamp is recorded before the balance check and survives a failed
// attempt.
func (s *Service) SendWithdrawNative(caller Caller, amount uint64, receiver string) (*events.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMaster(); err != nil {
		return nil, err
	}
	if err := s.requireRole(caller.Address, s.master.Operator); err != nil {
		return nil, err
	}

	operatorAcc, err := s.beginOp(caller)
	if err != nil {
		return nil, err
	}

	// Attempt timestamp is recorded first and survives a failed attempt
	record := s.master.Clone()
	record.LastWithdrawTime = s.now()

	fail := func(opErr error) (*events.Record, error) {
		s.commitAttemptTime(record.LastWithdrawTime)
		return nil, opErr
	}

	if err := validateAddress(receiver); err != nil {
		return fail(err)
	}
	if receiver == s.masterAddr {
		return fail(s.reject(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress, monitoring.OpRejectedUnknown))
	}
	if err := validateAmount(amount); err != nil {
		return fail(err)
	}
	if err := s.checkFloor(record.NativeBalance, amount); err != nil {
		return fail(err)
	}

	record.NativeBalance, err = mathx.Sub64(record.NativeBalance, amount)
	if err != nil {
		return fail(s.rejectMath(err))
	}

	vaultAcc, err := s.loadAccount(s.masterAddr)
	if err != nil {
		return fail(err)
	}
	vaultAcc.Balance, err = mathx.Sub64(vaultAcc.Balance, amount)
	if err != nil {
		return fail(s.rejectMath(err))
	}

	var receiverAcc *types.Account
	if receiver == caller.Address {
		// payout to the operator itself lands on the nonce-bearing clone
		receiverAcc = operatorAcc
	} else {
		receiverAcc, err = s.loadOrCreateAccount(receiver)
		if err != nil {
			return fail(err)
		}
	}
	receiverAcc.Balance, err = mathx.Add64(receiverAcc.Balance, amount)
	if err != nil {
		return fail(s.rejectMath(err))
	}

	ev := events.NewWithdraw(receiver, s.masterAddr, amount, record.LastWithdrawTime)
	evRecord, err := s.commit(record, ev, func(batch db.DatabaseBatch) error {
		if err := s.accounts.Stage(batch, operatorAcc); err != nil {
			return err
		}
		if receiverAcc != operatorAcc {
			if err := s.accounts.Stage(batch, receiverAcc); err != nil {
				return err
			}
		}
		return s.accounts.Stage(batch, vaultAcc)
	})
	if err != nil {
		return nil, err
	}

	monitoring.IncreaseWithdrawCount(monitoring.AssetNative, monitoring.WithdrawKindOperator)
	logx.Info("VAULT", fmt.Sprintf("Operator native withdraw | receiver=%s | amount=%d | native_balance=%d", receiver, amount, record.NativeBalance))
	return evRecord, nil
}

// SendWithdrawToken dispatches a token payout to an arbitrary receiver.
// Operator only; same attempt-timestamp rule as the native path.
func (s *Service) SendWithdrawToken(caller Caller, amount uint64, receiver string) (*events.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMaster(); err != nil {
		return nil, err
	}
	if err := s.requireRole(caller.Address, s.master.Operator); err != nil {
		return nil, err
	}

	operatorAcc, err := s.beginOp(caller)
	if err != nil {
		return nil, err
	}

	// Attempt timestamp is recorded first and survives a failed attempt
	record := s.master.Clone()
	record.LastWithdrawTime = s.now()

	fail := func(opErr error) (*events.Record, error) {
		s.commitAttemptTime(record.LastWithdrawTime)
		return nil, opErr
	}

	if err := validateAddress(receiver); err != nil {
		return fail(err)
	}
	if err := validateAmount(amount); err != nil {
		return fail(err)
	}
	if err := s.requireTokenAccount(); err != nil {
		return fail(err)
	}

	vaultTokenAddr, err := s.checkedVaultTokenAddress()
	if err != nil {
		return fail(err)
	}

	record.TokenBalance, err = mathx.Sub64(record.TokenBalance, amount)
	if err != nil {
		return fail(s.rejectMath(err))
	}

	prepared, err := s.tokenLedger.PrepareTransfer(vaultTokenAddr, receiver, s.masterAddr, amount)
	if err != nil {
		return fail(s.rejectTransfer(err))
	}

	ev := events.NewWithdraw(receiver, vaultTokenAddr, amount, record.LastWithdrawTime)
	evRecord, err := s.commit(record, ev, func(batch db.DatabaseBatch) error {
		if err := s.accounts.Stage(batch, operatorAcc); err != nil {
			return err
		}
		return s.tokenLedger.Stage(batch, prepared)
	})
	if err != nil {
		return nil, err
	}

	monitoring.IncreaseWithdrawCount(monitoring.AssetToken, monitoring.WithdrawKindOperator)
	logx.Info("VAULT", fmt.Sprintf("Operator token withdraw | receiver=%s | amount=%d | token_balance=%d", receiver, amount, record.TokenBalance))
	return evRecord, nil
}

// SetOperator rotates the operator role. Admin only; the new identity takes
// effect immediately and no self, no-op, or zero guard applies.
func (s *Service) SetOperator(caller Caller, newOperator string) error {
	return s.setRole(caller, newOperator, false)
}

// SetAdmin rotates the admin role. Admin only; same rules as SetOperator.
func (s *Service) SetAdmin(caller Caller, newAdmin string) error {
	return s.setRole(caller, newAdmin, true)
}

func (s *Service) setRole(caller Caller, newIdentity string, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMaster(); err != nil {
		return err
	}
	if err := s.requireRole(caller.Address, s.master.Admin); err != nil {
		return err
	}
	if err := validateAddress(newIdentity); err != nil {
		return err
	}

	callerAcc, err := s.beginOp(caller)
	if err != nil {
		return err
	}

	record := s.master.Clone()
	role := "operator"
	if isAdmin {
		record.Admin = newIdentity
		role = "admin"
	} else {
		record.Operator = newIdentity
	}

	err = s.txMgr.WithBatch(func(batch db.DatabaseBatch) error {
		if err := s.accounts.Stage(batch, callerAcc); err != nil {
			return err
		}
		return s.masters.Stage(batch, record)
	})
	if err != nil {
		return err
	}

	s.master = record
	logx.Info("VAULT", fmt.Sprintf("Role rotated | role=%s | new=%s | by=%s", role, newIdentity, caller.Address))
	return nil
}

// --- internals ---

// beginOp loads the caller account and validates the strict nonce. The
// returned clone already carries the consumed nonce; it is only persisted
// when the operation commits.
func (s *Service) beginOp(caller Caller) (*types.Account, error) {
	acc, err := s.accounts.GetByAddr(caller.Address)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, s.reject(errors.ErrCodeAccountNotFound, errors.ErrMsgAccountNotFound, monitoring.OpRejectedUnknown)
	}
	if caller.Nonce != acc.Nonce+1 {
		return nil, s.reject(errors.ErrCodeInvalidNonce,
			fmt.Sprintf("invalid nonce: expected %d, got %d", acc.Nonce+1, caller.Nonce), monitoring.OpInvalidNonce)
	}
	clone := acc.Clone()
	clone.Nonce = caller.Nonce
	return clone, nil
}

func (s *Service) requireMaster() error {
	if s.master == nil {
		return s.reject(errors.ErrCodeMasterNotInitialized, errors.ErrMsgMasterNotInitialized, monitoring.OpMasterNotInit)
	}
	return nil
}

func (s *Service) requireRole(callerAddr, roleAddr string) error {
	if callerAddr != roleAddr {
		return s.reject(errors.ErrCodeUnauthorized, errors.ErrMsgUnauthorized, monitoring.OpUnauthorized)
	}
	return nil
}

func (s *Service) requireTokenAccount() error {
	if !s.master.HasTokenAccount() {
		return s.reject(errors.ErrCodeTokenAccountNotBound, errors.ErrMsgTokenAccountNotBound, monitoring.OpTokenAccountMissing)
	}
	return nil
}

// checkedVaultTokenAddress re-derives the vault token account address and
// compares it against the stored binding before any transfer uses it.
func (s *Service) checkedVaultTokenAddress() (string, error) {
	acc, err := s.tokenLedger.GetAccount(s.master.TokenAccount)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", errors.NewError(errors.ErrCodeInternal, "vault token account record missing")
	}
	derived := token.DeriveAccountAddress(acc.Mint, s.masterAddr)
	if derived != s.master.TokenAccount {
		return "", errors.NewError(errors.ErrCodeInternal, "vault token account binding mismatch")
	}
	return s.master.TokenAccount, nil
}

func (s *Service) vaultTokenMint() string {
	acc, err := s.tokenLedger.GetAccount(s.master.TokenAccount)
	if err != nil || acc == nil {
		return ""
	}
	return acc.Mint
}

// checkFloor enforces native_balance > amount + reserve
func (s *Service) checkFloor(nativeBalance, amount uint64) error {
	required, err := mathx.Add64(amount, s.reserve)
	if err != nil {
		return s.rejectMath(err)
	}
	if nativeBalance <= required {
		return s.reject(errors.ErrCodeNotEnoughBalance, errors.ErrMsgNotEnoughBalance, monitoring.OpNotEnoughBalance)
	}
	return nil
}

func (s *Service) loadAccount(addr string) (*types.Account, error) {
	acc, err := s.accounts.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, s.reject(errors.ErrCodeAccountNotFound, errors.ErrMsgAccountNotFound, monitoring.OpRejectedUnknown)
	}
	return acc.Clone(), nil
}

func (s *Service) loadOrCreateAccount(addr string) (*types.Account, error) {
	acc, err := s.accounts.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return &types.Account{Address: addr, Balance: 0, Nonce: 0}, nil
	}
	return acc.Clone(), nil
}

// commit assigns the event its sequence number and writes master record,
// event record, and the operation's account writes in one batch. The event
// is published to subscribers only after the batch commits.
func (s *Service) commit(record *types.MasterRecord, ev events.LedgerEvent, stage func(batch db.DatabaseBatch) error) (*events.Record, error) {
	seq, err := s.eventStore.NextSeq()
	if err != nil {
		return nil, err
	}
	evRecord := events.NewRecord(seq, ev)

	err = s.txMgr.WithBatch(func(batch db.DatabaseBatch) error {
		if err := stage(batch); err != nil {
			return err
		}
		if err := s.masters.Stage(batch, record); err != nil {
			return err
		}
		return s.eventStore.Stage(batch, evRecord)
	})
	if err != nil {
		return nil, err
	}

	s.master = record
	monitoring.SetNativeBalance(record.NativeBalance)
	monitoring.SetTokenBalance(record.TokenBalance)
	s.eventRouter.PublishRecord(evRecord)
	return evRecord, nil
}

// commitAttemptTime durably records last_withdraw_time for a failed
// operator withdrawal. Only the timestamp moves; balances, roles, and the
// caller nonce stay untouched.
func (s *Service) commitAttemptTime(attemptTime int64) {
	record := s.master.Clone()
	record.LastWithdrawTime = attemptTime

	err := s.txMgr.WithBatch(func(batch db.DatabaseBatch) error {
		return s.masters.Stage(batch, record)
	})
	if err != nil {
		logx.Error("VAULT", "Failed to record withdraw attempt time: ", err)
		return
	}
	s.master = record
}

func (s *Service) reject(code errors.VaultErrorCode, msg string, reason monitoring.OpRejectedReason) error {
	monitoring.RecordRejectedOp(reason)
	return errors.NewError(code, msg)
}

func (s *Service) rejectMath(err error) error {
	monitoring.RecordRejectedOp(monitoring.OpMathOverflow)
	return err
}

func (s *Service) rejectTransfer(err error) error {
	switch errors.Code(err) {
	case errors.ErrCodeInsufficientFunds:
		monitoring.RecordRejectedOp(monitoring.OpInsufficientFunds)
	case errors.ErrCodeUnauthorized:
		monitoring.RecordRejectedOp(monitoring.OpUnauthorized)
	default:
		monitoring.RecordRejectedOp(monitoring.OpRejectedUnknown)
	}
	return err
}

func validateAddress(addr string) error {
	if !common.IsValidAddress(addr) {
		return errors.NewError(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress)
	}
	return nil
}

func validateAmount(amount uint64) error {
	if amount == 0 {
		return errors.NewError(errors.ErrCodeInvalidAmount, errors.ErrMsgInvalidAmount)
	}
	return nil
}
