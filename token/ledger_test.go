package token

import (
	"io"
	"os"
	"testing"

	"provault/db"
	"provault/errors"
	"provault/logx"
	"provault/store"
)

func TestMain(m *testing.M) {
	logx.InitWithOutput(io.Discard)
	os.Exit(m.Run())
}

func newTestLedger(t *testing.T) (*Ledger, db.DatabaseProvider) {
	t.Helper()
	provider := db.NewMemoryProvider()
	mints, err := store.NewMintStore(provider)
	if err != nil {
		t.Fatalf("mint store: %v", err)
	}
	accounts, err := store.NewTokenAccountStore(provider)
	if err != nil {
		t.Fatalf("token account store: %v", err)
	}
	return NewLedger(mints, accounts), provider
}

func TestRegisterMint(t *testing.T) {
	ledger, _ := newTestLedger(t)

	mint, err := ledger.RegisterMint("PVT", 6)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if mint.Address != DeriveMintAddress("PVT") {
		t.Errorf("mint address = %s, want derived", mint.Address)
	}
	if mint.Supply != 0 || mint.Decimals != 6 {
		t.Errorf("unexpected mint: %+v", mint)
	}

	if _, err := ledger.RegisterMint("PVT", 6); !errors.HasCode(err, errors.ErrCodeAccountExisted) {
		t.Errorf("duplicate register: %v", err)
	}

	got, err := ledger.GetMint(mint.Address)
	if err != nil {
		t.Fatalf("get mint: %v", err)
	}
	if got.Symbol != "PVT" {
		t.Errorf("symbol = %s", got.Symbol)
	}

	if _, err := ledger.GetMint(DeriveMintAddress("NOPE")); !errors.HasCode(err, errors.ErrCodeMintNotFound) {
		t.Errorf("missing mint: %v", err)
	}
}

func TestCreateAccount(t *testing.T) {
	ledger, _ := newTestLedger(t)
	mint, _ := ledger.RegisterMint("PVT", 6)

	acc, err := ledger.CreateAccount(mint.Address, "owner-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if acc.Address != DeriveAccountAddress(mint.Address, "owner-1") {
		t.Errorf("account address = %s, want derived", acc.Address)
	}

	if _, err := ledger.CreateAccount(mint.Address, "owner-1"); !errors.HasCode(err, errors.ErrCodeAccountExisted) {
		t.Errorf("duplicate create: %v", err)
	}
	if _, err := ledger.CreateAccount(DeriveMintAddress("NOPE"), "owner-1"); !errors.HasCode(err, errors.ErrCodeMintNotFound) {
		t.Errorf("create on missing mint: %v", err)
	}
}

func TestMintTo(t *testing.T) {
	ledger, _ := newTestLedger(t)
	mint, _ := ledger.RegisterMint("PVT", 6)

	if err := ledger.MintTo(mint.Address, "owner-1", 1_000); err != nil {
		t.Fatalf("mint to: %v", err)
	}
	// Second mint accumulates and reuses the auto-created account
	if err := ledger.MintTo(mint.Address, "owner-1", 500); err != nil {
		t.Fatalf("mint to again: %v", err)
	}

	acc, err := ledger.GetAccountByOwner(mint.Address, "owner-1")
	if err != nil || acc == nil {
		t.Fatalf("get account: %v", err)
	}
	if acc.Balance != 1_500 {
		t.Errorf("balance = %d, want 1_500", acc.Balance)
	}

	got, _ := ledger.GetMint(mint.Address)
	if got.Supply != 1_500 {
		t.Errorf("supply = %d, want 1_500", got.Supply)
	}
}

func TestPrepareTransfer(t *testing.T) {
	ledger, provider := newTestLedger(t)
	mint, _ := ledger.RegisterMint("PVT", 6)
	if err := ledger.MintTo(mint.Address, "alice", 1_000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	fromAddr := DeriveAccountAddress(mint.Address, "alice")

	t.Run("moves balances and auto-creates destination", func(t *testing.T) {
		prepared, err := ledger.PrepareTransfer(fromAddr, "bob", "alice", 400)
		if err != nil {
			t.Fatalf("prepare: %v", err)
		}
		if prepared.From.Balance != 600 || prepared.To.Balance != 400 {
			t.Errorf("prepared balances: from=%d to=%d", prepared.From.Balance, prepared.To.Balance)
		}

		// Nothing is persisted until staged
		if acc, _ := ledger.GetAccount(fromAddr); acc.Balance != 1_000 {
			t.Errorf("source persisted early: %d", acc.Balance)
		}

		batch := provider.Batch()
		defer batch.Close()
		if err := ledger.Stage(batch, prepared); err != nil {
			t.Fatalf("stage: %v", err)
		}
		if err := batch.Write(); err != nil {
			t.Fatalf("write: %v", err)
		}
		if acc, _ := ledger.GetAccount(fromAddr); acc.Balance != 600 {
			t.Errorf("source after commit: %d", acc.Balance)
		}
		if acc, _ := ledger.GetAccountByOwner(mint.Address, "bob"); acc == nil || acc.Balance != 400 {
			t.Errorf("destination after commit: %+v", acc)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name      string
			from      string
			toOwner   string
			authority string
			amount    uint64
			code      errors.VaultErrorCode
		}{
			{"missing source", DeriveAccountAddress(mint.Address, "ghost"), "bob", "ghost", 1, errors.ErrCodeAccountNotFound},
			{"wrong authority", fromAddr, "bob", "mallory", 1, errors.ErrCodeUnauthorized},
			{"insufficient funds", fromAddr, "bob", "alice", 10_000, errors.ErrCodeInsufficientFunds},
			{"self transfer", fromAddr, "alice", "alice", 1, errors.ErrCodeInvalidAddress},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := ledger.PrepareTransfer(tc.from, tc.toOwner, tc.authority, tc.amount)
				if !errors.HasCode(err, tc.code) {
					t.Errorf("expected %s, got %v", tc.code, err)
				}
			})
		}
	})
}
