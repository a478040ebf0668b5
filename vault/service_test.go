package vault

import (
	"bytes"
	"crypto/ed25519"
	"io"
	"os"
	"testing"

	"provault/common"
	"provault/db"
	"provault/errors"
	"provault/events"
	"provault/logx"
	"provault/store"
	"provault/token"
	"provault/types"
)

func TestMain(m *testing.M) {
	logx.InitWithOutput(io.Discard)
	os.Exit(m.Run())
}

// testAddr derives a valid base58 address from a deterministic seed byte
func testAddr(b byte) string {
	seed := bytes.Repeat([]byte{b}, ed25519.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	return common.AddressFromPubKey(priv.Public().(ed25519.PublicKey))
}

type testEnv struct {
	t *testing.T

	svc      *Service
	provider db.DatabaseProvider
	masters  *store.MasterStore
	accounts *store.GenericAccountStore
	ledger   *token.Ledger
	router   *events.EventRouter

	payer    string
	admin    string
	operator string
	user     string

	nonces map[string]uint64
}

func newTestEnv(t *testing.T, reserve uint64) *testEnv {
	t.Helper()

	provider := db.NewMemoryProvider()
	masters, err := store.NewMasterStore(provider)
	if err != nil {
		t.Fatalf("master store: %v", err)
	}
	accounts, err := store.NewGenericAccountStore(provider)
	if err != nil {
		t.Fatalf("account store: %v", err)
	}
	eventStore, err := store.NewEventStore(provider)
	if err != nil {
		t.Fatalf("event store: %v", err)
	}
	mints, err := store.NewMintStore(provider)
	if err != nil {
		t.Fatalf("mint store: %v", err)
	}
	tokenAccounts, err := store.NewTokenAccountStore(provider)
	if err != nil {
		t.Fatalf("token account store: %v", err)
	}

	ledger := token.NewLedger(mints, tokenAccounts)
	router := events.NewEventRouter(events.NewEventBus(8), eventStore)
	svc, err := NewService(masters, accounts, eventStore, ledger, router, db.NewDBTxManager(provider), reserve)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	env := &testEnv{
		t:        t,
		svc:      svc,
		provider: provider,
		masters:  masters,
		accounts: accounts,
		ledger:   ledger,
		router:   router,
		payer:    testAddr(1),
		admin:    testAddr(2),
		operator: testAddr(3),
		user:     testAddr(4),
		nonces:   make(map[string]uint64),
	}
	return env
}

func (e *testEnv) fund(addr string, balance uint64) {
	e.t.Helper()
	if err := e.accounts.Store(&types.Account{Address: addr, Balance: balance, Nonce: 0}); err != nil {
		e.t.Fatalf("fund %s: %v", addr, err)
	}
}

// caller returns the next valid signed-caller identity for addr
func (e *testEnv) caller(addr string) Caller {
	e.nonces[addr]++
	return Caller{Address: addr, Nonce: e.nonces[addr]}
}

// staleCaller returns the last used nonce again, simulating a replay
func (e *testEnv) staleCaller(addr string) Caller {
	return Caller{Address: addr, Nonce: e.nonces[addr]}
}

func (e *testEnv) balance(addr string) uint64 {
	e.t.Helper()
	acc, err := e.accounts.GetByAddr(addr)
	if err != nil {
		e.t.Fatalf("get account %s: %v", addr, err)
	}
	if acc == nil {
		return 0
	}
	return acc.Balance
}

func (e *testEnv) storedNonce(addr string) uint64 {
	e.t.Helper()
	acc, err := e.accounts.GetByAddr(addr)
	if err != nil || acc == nil {
		e.t.Fatalf("get account %s: %v", addr, err)
	}
	return acc.Nonce
}

func (e *testEnv) initMaster() {
	e.t.Helper()
	e.fund(e.payer, 2*DefaultReserve())
	e.fund(e.admin, 0)
	e.fund(e.operator, 0)
	if err := e.svc.InitMaster(e.caller(e.payer), e.admin, e.operator); err != nil {
		e.t.Fatalf("init master: %v", err)
	}
}

// checkConservation asserts the vault account always holds reserve + tracked
// native balance
func (e *testEnv) checkConservation() {
	e.t.Helper()
	master, err := e.svc.GetMaster()
	if err != nil {
		e.t.Fatalf("get master: %v", err)
	}
	want := e.svc.Reserve() + master.NativeBalance
	if got := e.balance(e.svc.MasterAddress()); got != want {
		e.t.Fatalf("vault account balance = %d, want reserve+native = %d", got, want)
	}
}

func assertCode(t *testing.T, err error, code errors.VaultErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	if !errors.HasCode(err, code) {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func TestInitMaster(t *testing.T) {
	env := newTestEnv(t, 0)
	payerStart := 2 * DefaultReserve()
	env.fund(env.payer, payerStart)

	if err := env.svc.InitMaster(env.caller(env.payer), env.admin, env.operator); err != nil {
		t.Fatalf("init master: %v", err)
	}

	master, err := env.svc.GetMaster()
	if err != nil {
		t.Fatalf("get master: %v", err)
	}
	if master.NativeBalance != 0 || master.TokenBalance != 0 {
		t.Errorf("fresh master should hold zero balances, got native=%d token=%d", master.NativeBalance, master.TokenBalance)
	}
	if master.Admin != env.admin || master.Operator != env.operator {
		t.Errorf("roles not bound: admin=%s operator=%s", master.Admin, master.Operator)
	}
	if master.TokenAccount != "" {
		t.Errorf("token account should be unbound, got %s", master.TokenAccount)
	}

	if got := env.balance(env.payer); got != payerStart-DefaultReserve() {
		t.Errorf("payer balance = %d, want %d", got, payerStart-DefaultReserve())
	}
	if got := env.balance(env.svc.MasterAddress()); got != DefaultReserve() {
		t.Errorf("vault account = %d, want reserve %d", got, DefaultReserve())
	}
	if got := env.storedNonce(env.payer); got != 1 {
		t.Errorf("payer nonce = %d, want 1", got)
	}

	// Second init must fail
	err = env.svc.InitMaster(env.caller(env.payer), env.admin, env.operator)
	assertCode(t, err, errors.ErrCodeMasterAlreadyInitialized)
}

func TestInitMasterUnfundedPayer(t *testing.T) {
	env := newTestEnv(t, 0)
	env.fund(env.payer, DefaultReserve()-1)

	err := env.svc.InitMaster(env.caller(env.payer), env.admin, env.operator)
	assertCode(t, err, errors.ErrCodeInsufficientFunds)

	if _, err := env.svc.GetMaster(); !errors.HasCode(err, errors.ErrCodeMasterNotInitialized) {
		t.Fatalf("master must stay uninitialized, got %v", err)
	}
	if got := env.balance(env.payer); got != DefaultReserve()-1 {
		t.Errorf("payer balance must be untouched, got %d", got)
	}
}

func TestOpsBeforeInitMaster(t *testing.T) {
	env := newTestEnv(t, 0)
	env.fund(env.user, 1000)

	if _, err := env.svc.DepositNative(env.caller(env.user), 100); !errors.HasCode(err, errors.ErrCodeMasterNotInitialized) {
		t.Errorf("deposit before init: %v", err)
	}
	if _, err := env.svc.WithdrawNative(env.caller(env.user), 100); !errors.HasCode(err, errors.ErrCodeMasterNotInitialized) {
		t.Errorf("withdraw before init: %v", err)
	}
	if err := env.svc.SetAdmin(env.caller(env.user), env.user); !errors.HasCode(err, errors.ErrCodeMasterNotInitialized) {
		t.Errorf("set admin before init: %v", err)
	}
}

func TestDepositNative(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)

	rec, err := env.svc.DepositNative(env.caller(env.user), 1_000_000)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if rec.Seq != 1 {
		t.Errorf("first event seq = %d, want 1", rec.Seq)
	}
	if rec.Type != events.EventDeposit || rec.User != env.user || rec.Amount != 1_000_000 {
		t.Errorf("unexpected event record: %+v", rec)
	}

	master, _ := env.svc.GetMaster()
	if master.NativeBalance != 1_000_000 {
		t.Errorf("native balance = %d, want 1_000_000", master.NativeBalance)
	}
	if got := env.balance(env.user); got != 4_000_000 {
		t.Errorf("user balance = %d, want 4_000_000", got)
	}
	env.checkConservation()
}

func TestDepositNativeInsufficientFunds(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 100)

	_, err := env.svc.DepositNative(env.caller(env.user), 1_000)
	assertCode(t, err, errors.ErrCodeInsufficientFunds)
	if got := env.balance(env.user); got != 100 {
		t.Errorf("user balance changed on failed deposit: %d", got)
	}
	env.checkConservation()
}

func TestWithdrawNativeFloor(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)

	if _, err := env.svc.DepositNative(env.caller(env.user), 1_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// 1_000_000 is not strictly above amount+reserve, so the full balance
	// cannot leave
	_, err := env.svc.WithdrawNative(env.caller(env.admin), 1_000_000)
	assertCode(t, err, errors.ErrCodeNotEnoughBalance)

	rec, err := env.svc.WithdrawNative(env.caller(env.admin), 50_000)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if rec.Type != events.EventAdminWithdraw || rec.User != env.admin {
		t.Errorf("unexpected event record: %+v", rec)
	}

	master, _ := env.svc.GetMaster()
	if master.NativeBalance != 950_000 {
		t.Errorf("native balance = %d, want 950_000", master.NativeBalance)
	}
	if got := env.balance(env.admin); got != 50_000 {
		t.Errorf("admin balance = %d, want 50_000", got)
	}
	env.checkConservation()
}

func TestWithdrawNativeUnauthorized(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)
	if _, err := env.svc.DepositNative(env.caller(env.user), 2_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	before, _ := env.svc.GetMaster()
	seqBefore, _ := env.router.NextSeq()

	_, err := env.svc.WithdrawNative(Caller{Address: env.user, Nonce: env.nonces[env.user] + 1}, 1)
	assertCode(t, err, errors.ErrCodeUnauthorized)

	after, _ := env.svc.GetMaster()
	if *after != *before {
		t.Errorf("master record changed on unauthorized op: %+v -> %+v", before, after)
	}
	if seqAfter, _ := env.router.NextSeq(); seqAfter != seqBefore {
		t.Errorf("event emitted on unauthorized op")
	}
	// Role check precedes the nonce check, so the nonce is not consumed
	if got := env.storedNonce(env.user); got != 1 {
		t.Errorf("user nonce = %d, want 1", got)
	}
	env.checkConservation()
}

func TestNonceReplayRejected(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)

	c := env.caller(env.user)
	if _, err := env.svc.DepositNative(c, 1_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// Same envelope again
	_, err := env.svc.DepositNative(c, 1_000)
	assertCode(t, err, errors.ErrCodeInvalidNonce)

	// Skipping ahead is also rejected
	_, err = env.svc.DepositNative(Caller{Address: env.user, Nonce: c.Nonce + 5}, 1_000)
	assertCode(t, err, errors.ErrCodeInvalidNonce)
}

func TestSendWithdrawNative(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)
	if _, err := env.svc.DepositNative(env.caller(env.user), 2_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	receiver := testAddr(9)
	rec, err := env.svc.SendWithdrawNative(env.caller(env.operator), 300_000, receiver)
	if err != nil {
		t.Fatalf("send-withdraw: %v", err)
	}
	if rec.Type != events.EventWithdraw || rec.User != receiver || rec.Amount != 300_000 {
		t.Errorf("unexpected event record: %+v", rec)
	}

	master, _ := env.svc.GetMaster()
	if master.NativeBalance != 1_700_000 {
		t.Errorf("native balance = %d, want 1_700_000", master.NativeBalance)
	}
	if master.LastWithdrawTime != rec.Time {
		t.Errorf("last withdraw time = %d, want event time %d", master.LastWithdrawTime, rec.Time)
	}
	// Receiver account was created on the fly
	if got := env.balance(receiver); got != 300_000 {
		t.Errorf("receiver balance = %d, want 300_000", got)
	}
	env.checkConservation()
}

func TestSendWithdrawNativeToOperator(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)
	if _, err := env.svc.DepositNative(env.caller(env.user), 2_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if _, err := env.svc.SendWithdrawNative(env.caller(env.operator), 100_000, env.operator); err != nil {
		t.Fatalf("send-withdraw to self: %v", err)
	}
	if got := env.balance(env.operator); got != 100_000 {
		t.Errorf("operator balance = %d, want 100_000", got)
	}
	if got := env.storedNonce(env.operator); got != 1 {
		t.Errorf("operator nonce = %d, want 1", got)
	}
	env.checkConservation()
}

func TestSendWithdrawNativeToVaultRejected(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)
	if _, err := env.svc.DepositNative(env.caller(env.user), 2_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	_, err := env.svc.SendWithdrawNative(env.caller(env.operator), 100, env.svc.MasterAddress())
	assertCode(t, err, errors.ErrCodeInvalidAddress)
	env.nonces[env.operator]-- // failed op does not consume the nonce
	env.checkConservation()
}

func TestSendWithdrawFailureRecordsAttemptTime(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.svc.now = func() int64 { return 1700000123 }
	env.initMaster()
	env.fund(env.user, 5_000_000)
	if _, err := env.svc.DepositNative(env.caller(env.user), 1_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	seqBefore, _ := env.router.NextSeq()

	// Amount breaches the floor; the attempt still leaves a durable timestamp
	_, err := env.svc.SendWithdrawNative(Caller{Address: env.operator, Nonce: 1}, 1_000_000, env.user)
	assertCode(t, err, errors.ErrCodeNotEnoughBalance)

	master, _ := env.svc.GetMaster()
	if master.LastWithdrawTime != 1700000123 {
		t.Errorf("last withdraw time = %d, want 1700000123", master.LastWithdrawTime)
	}
	if master.NativeBalance != 1_000_000 {
		t.Errorf("native balance changed on failed attempt: %d", master.NativeBalance)
	}
	if seqAfter, _ := env.router.NextSeq(); seqAfter != seqBefore {
		t.Errorf("event emitted on failed attempt")
	}
	if got := env.storedNonce(env.operator); got != 0 {
		t.Errorf("operator nonce consumed on failed attempt: %d", got)
	}

	// The timestamp write is durable, not just cached
	persisted, err := env.masters.Get()
	if err != nil || persisted == nil {
		t.Fatalf("load persisted master: %v", err)
	}
	if persisted.LastWithdrawTime != 1700000123 {
		t.Errorf("persisted last withdraw time = %d, want 1700000123", persisted.LastWithdrawTime)
	}
	env.checkConservation()
}

func TestSetRoles(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)
	if _, err := env.svc.DepositNative(env.caller(env.user), 3_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	newOperator := testAddr(7)
	if err := env.svc.SetOperator(env.caller(env.admin), newOperator); err != nil {
		t.Fatalf("set operator: %v", err)
	}

	// Old operator loses the role immediately
	_, err := env.svc.SendWithdrawNative(Caller{Address: env.operator, Nonce: 1}, 100, env.user)
	assertCode(t, err, errors.ErrCodeUnauthorized)

	// New operator works immediately, even without prior funding
	env.fund(newOperator, 0)
	if _, err := env.svc.SendWithdrawNative(env.caller(newOperator), 100, env.user); err != nil {
		t.Fatalf("new operator send-withdraw: %v", err)
	}

	// Non-admin cannot rotate roles
	err = env.svc.SetAdmin(Caller{Address: env.user, Nonce: env.nonces[env.user] + 1}, env.user)
	assertCode(t, err, errors.ErrCodeUnauthorized)

	// Admin hands over to a new admin; the old admin is locked out
	newAdmin := testAddr(8)
	env.fund(newAdmin, 0)
	if err := env.svc.SetAdmin(env.caller(env.admin), newAdmin); err != nil {
		t.Fatalf("set admin: %v", err)
	}
	_, err = env.svc.WithdrawNative(Caller{Address: env.admin, Nonce: env.nonces[env.admin] + 1}, 100)
	assertCode(t, err, errors.ErrCodeUnauthorized)
	if _, err := env.svc.WithdrawNative(env.caller(newAdmin), 100); err != nil {
		t.Fatalf("new admin withdraw: %v", err)
	}
}

func TestTokenLifecycle(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()

	mint, err := env.ledger.RegisterMint("PVT", 6)
	if err != nil {
		t.Fatalf("register mint: %v", err)
	}
	if err := env.ledger.MintTo(mint.Address, env.user, 10_000); err != nil {
		t.Fatalf("mint to user: %v", err)
	}
	env.fund(env.user, 0)

	// Token ops before the binding exists; the failed op leaves the nonce alone
	_, err = env.svc.DepositToken(Caller{Address: env.user, Nonce: 1}, 100)
	assertCode(t, err, errors.ErrCodeTokenAccountNotBound)

	// Only the admin can bind, and only once
	_, err = env.svc.InitTokenAccount(Caller{Address: env.user, Nonce: 1}, mint.Address)
	assertCode(t, err, errors.ErrCodeUnauthorized)

	vaultTokenAddr, err := env.svc.InitTokenAccount(env.caller(env.admin), mint.Address)
	if err != nil {
		t.Fatalf("init token account: %v", err)
	}
	if want := token.DeriveAccountAddress(mint.Address, env.svc.MasterAddress()); vaultTokenAddr != want {
		t.Errorf("vault token address = %s, want %s", vaultTokenAddr, want)
	}
	_, err = env.svc.InitTokenAccount(env.staleCaller(env.admin), mint.Address)
	assertCode(t, err, errors.ErrCodeTokenAccountCreated)

	// Deposit moves tokens user -> vault and mirrors the counter
	if _, err := env.svc.DepositToken(env.caller(env.user), 4_000); err != nil {
		t.Fatalf("deposit token: %v", err)
	}
	master, _ := env.svc.GetMaster()
	if master.TokenBalance != 4_000 {
		t.Errorf("token balance = %d, want 4_000", master.TokenBalance)
	}
	vaultToken, err := env.ledger.GetAccount(vaultTokenAddr)
	if err != nil || vaultToken == nil {
		t.Fatalf("vault token account: %v", err)
	}
	if vaultToken.Balance != master.TokenBalance {
		t.Errorf("vault token account = %d, counter = %d", vaultToken.Balance, master.TokenBalance)
	}

	// Admin withdraws into its own token account (auto-created)
	if _, err := env.svc.WithdrawToken(env.caller(env.admin), 1_000); err != nil {
		t.Fatalf("withdraw token: %v", err)
	}
	adminToken, err := env.ledger.GetAccountByOwner(mint.Address, env.admin)
	if err != nil || adminToken == nil {
		t.Fatalf("admin token account: %v", err)
	}
	if adminToken.Balance != 1_000 {
		t.Errorf("admin token balance = %d, want 1_000", adminToken.Balance)
	}

	// Operator pays out to an arbitrary receiver
	receiver := testAddr(9)
	if _, err := env.svc.SendWithdrawToken(env.caller(env.operator), 500, receiver); err != nil {
		t.Fatalf("send-withdraw token: %v", err)
	}
	receiverToken, err := env.ledger.GetAccountByOwner(mint.Address, receiver)
	if err != nil || receiverToken == nil {
		t.Fatalf("receiver token account: %v", err)
	}
	if receiverToken.Balance != 500 {
		t.Errorf("receiver token balance = %d, want 500", receiverToken.Balance)
	}

	master, _ = env.svc.GetMaster()
	if master.TokenBalance != 2_500 {
		t.Errorf("token balance = %d, want 2_500", master.TokenBalance)
	}
	vaultToken, _ = env.ledger.GetAccount(vaultTokenAddr)
	if vaultToken.Balance != master.TokenBalance {
		t.Errorf("vault token account = %d, counter = %d", vaultToken.Balance, master.TokenBalance)
	}

	// Token withdrawals have no reserve floor: drain to zero
	if _, err := env.svc.WithdrawToken(env.caller(env.admin), 2_500); err != nil {
		t.Fatalf("drain token balance: %v", err)
	}
	master, _ = env.svc.GetMaster()
	if master.TokenBalance != 0 {
		t.Errorf("token balance = %d, want 0", master.TokenBalance)
	}

	// Draining past zero underflows the counter
	_, err = env.svc.WithdrawToken(env.caller(env.admin), 1)
	assertCode(t, err, errors.ErrCodeMathUnderflowOrOverflow)
}

func TestEventSequenceIsDense(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 10_000_000)

	for i := 0; i < 3; i++ {
		if _, err := env.svc.DepositNative(env.caller(env.user), 1_000_000); err != nil {
			t.Fatalf("deposit %d: %v", i, err)
		}
	}
	if _, err := env.svc.WithdrawNative(env.caller(env.admin), 100_000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	records, err := env.router.GetEvents(1, 100)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d events, want 4", len(records))
	}
	for i, rec := range records {
		if rec.Seq != uint64(i+1) {
			t.Errorf("record %d has seq %d, want %d", i, rec.Seq, i+1)
		}
	}
	if records[3].Type != events.EventAdminWithdraw {
		t.Errorf("last event type = %s, want %s", records[3].Type, events.EventAdminWithdraw)
	}

	next, err := env.router.NextSeq()
	if err != nil {
		t.Fatalf("next seq: %v", err)
	}
	if next != 5 {
		t.Errorf("next seq = %d, want 5", next)
	}
}

func TestEventsDeliveredToSubscribers(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)

	id, ch := env.router.Subscribe()
	defer env.router.Unsubscribe(id)

	if _, err := env.svc.DepositNative(env.caller(env.user), 1_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Type() != events.EventDeposit || ev.Amount() != 1_000 {
			t.Errorf("unexpected live event: type=%s amount=%d", ev.Type(), ev.Amount())
		}
	default:
		t.Fatal("no event delivered to subscriber")
	}
}

func TestServiceReload(t *testing.T) {
	env := newTestEnv(t, MinimumBalance(0))
	env.initMaster()
	env.fund(env.user, 5_000_000)
	if _, err := env.svc.DepositNative(env.caller(env.user), 1_234_567); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// A fresh service over the same provider sees the committed state
	eventStore, err := store.NewEventStore(env.provider)
	if err != nil {
		t.Fatalf("event store: %v", err)
	}
	reloaded, err := NewService(env.masters, env.accounts, eventStore, env.ledger,
		events.NewEventRouter(events.NewEventBus(8), eventStore), db.NewDBTxManager(env.provider), MinimumBalance(0))
	if err != nil {
		t.Fatalf("reload service: %v", err)
	}

	master, err := reloaded.GetMaster()
	if err != nil {
		t.Fatalf("get master after reload: %v", err)
	}
	if master.NativeBalance != 1_234_567 {
		t.Errorf("reloaded native balance = %d, want 1_234_567", master.NativeBalance)
	}
	if master.Admin != env.admin || master.Operator != env.operator {
		t.Errorf("reloaded roles wrong: %+v", master)
	}
}

func TestDefaultReserveSizing(t *testing.T) {
	env := newTestEnv(t, 0)
	if env.svc.Reserve() != DefaultReserve() {
		t.Errorf("reserve = %d, want %d", env.svc.Reserve(), DefaultReserve())
	}
	if DefaultReserve() != MinimumBalance(types.MasterRecordSize) {
		t.Errorf("default reserve must cover the master record size")
	}
}
