package vault

import (
	"testing"

	"provault/common"
	"provault/types"
)

func TestMinimumBalance(t *testing.T) {
	tests := []struct {
		name    string
		dataLen uint64
		want    uint64
	}{
		{"empty account", 0, 890_880},
		{"master record", types.MasterRecordSize, 1_559_040},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinimumBalance(tt.dataLen); got != tt.want {
				t.Errorf("MinimumBalance(%d) = %d, want %d", tt.dataLen, got, tt.want)
			}
		})
	}
}

func TestDefaultReserve(t *testing.T) {
	if got := DefaultReserve(); got != 1_559_040 {
		t.Errorf("DefaultReserve() = %d, want 1559040", got)
	}
}

func TestDeriveMasterAddress(t *testing.T) {
	a := DeriveMasterAddress()
	if a != DeriveMasterAddress() {
		t.Error("master address derivation is not deterministic")
	}
	if !common.IsValidAddress(a) {
		t.Errorf("derived master address is invalid: %s", a)
	}
}
