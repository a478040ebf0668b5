package types

// Account is a native-currency account. Balance is in base units; Nonce is
// the last consumed request nonce for the address.
type Account struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// Clone returns a copy safe to mutate before commit.
func (a *Account) Clone() *Account {
	cp := *a
	return &cp
}
