package mathx

import (
	"math/bits"

	"provault/errors"
)

// Checked uint64 arithmetic for the balance counters. Any carry or borrow
// fails the whole operation instead of wrapping.

// Add64 returns a+b, or math_underflow_or_overflow when the sum wraps.
func Add64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errors.NewError(errors.ErrCodeMathUnderflowOrOverflow, errors.ErrMsgMathUnderflowOrOverflow)
	}
	return sum, nil
}

// Sub64 returns a-b, or math_underflow_or_overflow when b exceeds a.
func Sub64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, errors.NewError(errors.ErrCodeMathUnderflowOrOverflow, errors.ErrMsgMathUnderflowOrOverflow)
	}
	return diff, nil
}
