package interfaces

import (
	"provault/types"
)

// AccountReader is the read-only native account view the RPC server serves
// queries from. Satisfied by store.AccountStore.
type AccountReader interface {
	GetByAddr(addr string) (*types.Account, error)
	ExistsByAddr(addr string) (bool, error)
}
