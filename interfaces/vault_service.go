package interfaces

import (
	"provault/events"
	"provault/types"
	"provault/vault"
)

// VaultService is the custody ledger operation surface consumed by the RPC
// server and the CLI.
type VaultService interface {
	InitMaster(payer vault.Caller, admin, operator string) error
	InitTokenAccount(caller vault.Caller, mint string) (string, error)

	DepositNative(caller vault.Caller, amount uint64) (*events.Record, error)
	DepositToken(caller vault.Caller, amount uint64) (*events.Record, error)

	WithdrawNative(caller vault.Caller, amount uint64) (*events.Record, error)
	WithdrawToken(caller vault.Caller, amount uint64) (*events.Record, error)

	SendWithdrawNative(caller vault.Caller, amount uint64, receiver string) (*events.Record, error)
	SendWithdrawToken(caller vault.Caller, amount uint64, receiver string) (*events.Record, error)

	SetOperator(caller vault.Caller, newOperator string) error
	SetAdmin(caller vault.Caller, newAdmin string) error

	GetMaster() (*types.MasterRecord, error)
	MasterAddress() string
	Reserve() uint64
}
