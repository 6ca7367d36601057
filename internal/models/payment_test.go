package models

import "testing"

func TestIsValidGatewayTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{GatewayStatusPending, GatewayStatusPaid, true},
		{GatewayStatusPending, GatewayStatusFailed, true},

		// Duplicate callback delivery re-applies the same terminal status
		{GatewayStatusPaid, GatewayStatusPaid, true},
		{GatewayStatusFailed, GatewayStatusFailed, true},

		// Terminal statuses never flip
		{GatewayStatusPaid, GatewayStatusFailed, false},
		{GatewayStatusFailed, GatewayStatusPaid, false},
		{GatewayStatusPaid, GatewayStatusPending, false},
		{GatewayStatusFailed, GatewayStatusPending, false},
		{GatewayStatusPending, GatewayStatusPending, false},

		{"nonexistent", GatewayStatusPaid, false},
		{GatewayStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidGatewayTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidGatewayTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestIsValidReviewTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{ReviewStatusNone, ReviewStatusPending, true},
		{ReviewStatusPending, ReviewStatusApproved, true},
		{ReviewStatusPending, ReviewStatusRejected, true},

		{ReviewStatusApproved, ReviewStatusRejected, false},
		{ReviewStatusRejected, ReviewStatusApproved, false},
		{ReviewStatusApproved, ReviewStatusPending, false},
		{ReviewStatusNone, ReviewStatusApproved, false},
		{ReviewStatusNone, ReviewStatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidReviewTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidReviewTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestComputeBalanceFromHistory(t *testing.T) {
	payments := []Payment{
		{Type: PaymentTypeTopup, GatewayStatus: GatewayStatusPaid, Amount: 500},
		{Type: PaymentTypePayout, GatewayStatus: GatewayStatusPaid, Amount: 200},
		{Type: PaymentTypeTopup, GatewayStatus: GatewayStatusPending, Amount: 1000},
	}

	if got := ComputeBalanceFromHistory(payments); got != 300 {
		t.Errorf("ComputeBalanceFromHistory() = %v, want 300", got)
	}
}

func TestComputeBalanceFromHistoryExcludesNonCashTypes(t *testing.T) {
	payments := []Payment{
		{Type: PaymentTypeTopup, GatewayStatus: GatewayStatusPaid, Amount: 1000},
		{Type: PaymentTypeEscrow, GatewayStatus: GatewayStatusPaid, Amount: 400},
		{Type: PaymentTypeJobVerification, GatewayStatus: GatewayStatusPaid, Amount: 100},
		{Type: PaymentTypePayout, GatewayStatus: GatewayStatusFailed, Amount: 300},
	}

	if got := ComputeBalanceFromHistory(payments); got != 1000 {
		t.Errorf("ComputeBalanceFromHistory() = %v, want 1000", got)
	}
}

func TestComputeBalanceFromHistoryEmpty(t *testing.T) {
	if got := ComputeBalanceFromHistory(nil); got != 0 {
		t.Errorf("ComputeBalanceFromHistory(nil) = %v, want 0", got)
	}
}
