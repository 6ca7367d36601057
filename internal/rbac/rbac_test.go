package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleEmployer, PermPostJob, true},
		{RoleEmployer, PermReleaseEscrow, true},
		{RoleEmployer, PermRequestPayout, false},
		{RoleEmployer, PermReviewPayout, false},
		{RoleWorker, PermApplyJob, true},
		{RoleWorker, PermRequestPayout, true},
		{RoleWorker, PermPostJob, false},
		{RoleWorker, PermReviewVerification, false},
		{RoleAdmin, PermReviewPayout, true},
		{RoleAdmin, PermReviewVerification, true},
		{"unknown", PermPostJob, false},
	}

	for _, tt := range tests {
		if got := HasPermission(tt.role, tt.permission); got != tt.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.permission, got, tt.want)
		}
	}
}

func TestIsFinancialOperation(t *testing.T) {
	if !IsFinancialOperation(PermRequestPayout) {
		t.Error("request_payout should be financial")
	}
	if !IsFinancialOperation(PermReleaseEscrow) {
		t.Error("release_escrow should be financial")
	}
	if IsFinancialOperation(PermPostJob) {
		t.Error("post_job should not be financial")
	}
}
