package interfaces

import (
	"provault/types"
)

// TokenService exposes the token sub-ledger to the RPC server
type TokenService interface {
	GetMint(addr string) (*types.Mint, error)
	GetAccount(addr string) (*types.TokenAccount, error)
	GetAccountByOwner(mint, owner string) (*types.TokenAccount, error)
	CreateAccount(mint, owner string) (*types.TokenAccount, error)
}
