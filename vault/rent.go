package vault

import (
	"provault/common"
	"provault/types"
)

// Rent-exemption model for the vault account: storage costs a fixed fee per
// byte-year, and an account is exempt when it holds two years' worth up
// front. The vault must never spend below that reserve or its backing
// storage would be reclaimed.
const (
	accountStorageOverhead = 128
	feePerByteYear         = 3480
	rentExemptionYears     = 2
)

const masterAddressSeed = "provault/master"

// MinimumBalance returns the reserve an account with dataLen bytes of state
// must retain to stay alive.
func MinimumBalance(dataLen uint64) uint64 {
	return (accountStorageOverhead + dataLen) * feePerByteYear * rentExemptionYears
}

// DefaultReserve is the floor for the vault account, sized to the master
// record it co-locates with.
func DefaultReserve() uint64 {
	return MinimumBalance(types.MasterRecordSize)
}

// DeriveMasterAddress returns the vault's derived account address. The
// master record and the native vault balance share this one account.
func DeriveMasterAddress() string {
	return common.DeriveAddress(masterAddressSeed)
}
