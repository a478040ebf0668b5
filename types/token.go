package types

// Mint describes the single fungible token the vault custodies.
type Mint struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint32 `json:"decimals"`
	Supply   uint64 `json:"supply"`
}

// TokenAccount holds a balance of the mint for an owner. The address is
// derived deterministically from (mint, owner), so each owner has exactly
// one account per mint.
type TokenAccount struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Balance uint64 `json:"balance"`
}

// Clone returns a copy safe to mutate before commit.
func (t *TokenAccount) Clone() *TokenAccount {
	cp := *t
	return &cp
}

// Clone returns a copy safe to mutate before commit.
func (m *Mint) Clone() *Mint {
	cp := *m
	return &cp
}
