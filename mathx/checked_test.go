package mathx

import (
	"math"
	"testing"

	"provault/errors"
)

func TestAdd64(t *testing.T) {
	tests := []struct {
		name    string
		a, b    uint64
		want    uint64
		wantErr bool
	}{
		{"zero", 0, 0, 0, false},
		{"simple", 1_000_000, 50_000, 1_050_000, false},
		{"max boundary", math.MaxUint64 - 1, 1, math.MaxUint64, false},
		{"overflow", math.MaxUint64, 1, 0, true},
		{"overflow both large", math.MaxUint64, math.MaxUint64, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Add64(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Add64(%d, %d) expected error, got none", tt.a, tt.b)
				}
				if !errors.HasCode(err, errors.ErrCodeMathUnderflowOrOverflow) {
					t.Errorf("expected math_underflow_or_overflow, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Add64(%d, %d) unexpected error: %v", tt.a, tt.b, err)
			}
			if got != tt.want {
				t.Errorf("Add64(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSub64(t *testing.T) {
	tests := []struct {
		name    string
		a, b    uint64
		want    uint64
		wantErr bool
	}{
		{"zero", 0, 0, 0, false},
		{"simple", 1_000_000, 50_000, 950_000, false},
		{"to zero", 500, 500, 0, false},
		{"underflow", 0, 1, 0, true},
		{"underflow large", 100, 101, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sub64(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Sub64(%d, %d) expected error, got none", tt.a, tt.b)
				}
				if !errors.HasCode(err, errors.ErrCodeMathUnderflowOrOverflow) {
					t.Errorf("expected math_underflow_or_overflow, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Sub64(%d, %d) unexpected error: %v", tt.a, tt.b, err)
			}
			if got != tt.want {
				t.Errorf("Sub64(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
