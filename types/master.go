package types

// MasterRecordSize is the persisted footprint of the master record used for
// the rent-exemption reserve: two u64 balances, the last-withdraw timestamp,
// two 32-byte role keys, and an 8-byte discriminator.
const MasterRecordSize = 96

// MasterRecord is the singleton custody state: both vault balances, the role
// identities, and the vault token account binding. NativeBalance mirrors the
// spendable portion of the vault account; the vault account additionally
// holds the rent-exemption reserve.
type MasterRecord struct {
	NativeBalance    uint64 `json:"native_balance"`
	TokenBalance     uint64 `json:"token_balance"`
	TokenAccount     string `json:"token_account,omitempty"` // empty until init_token_account
	LastWithdrawTime int64  `json:"last_withdraw_time"`
	Admin            string `json:"admin"`
	Operator         string `json:"operator"`
}

// HasTokenAccount reports whether the vault token account has been bound.
func (m *MasterRecord) HasTokenAccount() bool {
	return m.TokenAccount != ""
}

// Clone returns a copy safe to mutate before commit.
func (m *MasterRecord) Clone() *MasterRecord {
	cp := *m
	return &cp
}
