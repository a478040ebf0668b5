package common

import (
	"strings"

	"github.com/holiman/uint256"

	"provault/errors"
)

// ParseAmount parses a decimal amount string into uint64 base units.
// Underscore separators are allowed ("1_000_000"). Zero and values that do
// not fit in 64 bits are rejected.
func ParseAmount(s string) (uint64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if cleaned == "" {
		return 0, errors.NewError(errors.ErrCodeInvalidAmount, errors.ErrMsgInvalidAmount)
	}
	v, err := uint256.FromDecimal(cleaned)
	if err != nil {
		return 0, errors.NewError(errors.ErrCodeInvalidAmount, errors.ErrMsgInvalidAmount)
	}
	if !v.IsUint64() || v.IsZero() {
		return 0, errors.NewError(errors.ErrCodeInvalidAmount, errors.ErrMsgInvalidAmount)
	}
	return v.Uint64(), nil
}

// FormatAmount renders base units as a decimal string for the RPC wire.
func FormatAmount(amount uint64) string {
	return uint256.NewInt(amount).Dec()
}
