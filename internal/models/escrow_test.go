package models

import "testing"

func TestIsValidEscrowTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{EscrowStatusPending, EscrowStatusFunded, true},
		{EscrowStatusFunded, EscrowStatusReleased, true},

		{EscrowStatusPending, EscrowStatusReleased, false},
		{EscrowStatusReleased, EscrowStatusFunded, false},
		{EscrowStatusReleased, EscrowStatusPending, false},
		{EscrowStatusFunded, EscrowStatusPending, false},
		{EscrowStatusDisputed, EscrowStatusFunded, false},
		{EscrowStatusDisputed, EscrowStatusReleased, false},
		{"nonexistent", EscrowStatusFunded, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidEscrowTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidEscrowTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestComputeRelease(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		feePercent float64
		wantFee    float64
		wantWorker float64
	}{
		{"even split", 1000, 25, 250, 750},
		{"fee rounds down", 1001, 25, 250, 751},
		{"fee rounds up", 1003, 25, 251, 752},
		{"half rounds up", 1002, 25, 251, 751},
		{"zero fee", 500, 0, 0, 500},
		{"full fee", 500, 100, 500, 0},
		{"small amount", 1, 25, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, worker := ComputeRelease(tt.amount, tt.feePercent)
			if fee != tt.wantFee || worker != tt.wantWorker {
				t.Errorf("ComputeRelease(%v, %v) = (%v, %v), want (%v, %v)",
					tt.amount, tt.feePercent, fee, worker, tt.wantFee, tt.wantWorker)
			}
			if fee+worker != tt.amount {
				t.Errorf("fee %v + worker %v != amount %v", fee, worker, tt.amount)
			}
		})
	}
}
