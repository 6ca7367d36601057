package rbac

// Role constants mirror the user roles stored on the user record.
const (
	RoleWorker   = "worker"
	RoleEmployer = "employer"
	RoleAdmin    = "admin"
)

// Permission constants
const (
	PermPostJob            = "post_job"
	PermApplyJob           = "apply_job"
	PermAssignWorker       = "assign_worker"
	PermFundEscrow         = "fund_escrow"
	PermReleaseEscrow      = "release_escrow"
	PermRequestPayout      = "request_payout"
	PermReviewPayout       = "review_payout"
	PermReviewVerification = "review_verification"
	PermVerifyJobListing   = "verify_job_listing"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleEmployer: {
		PermPostJob, PermAssignWorker, PermFundEscrow, PermReleaseEscrow,
		PermVerifyJobListing,
	},
	RoleWorker: {
		PermApplyJob, PermRequestPayout,
	},
	RoleAdmin: {
		PermPostJob, PermApplyJob, PermAssignWorker, PermFundEscrow,
		PermReleaseEscrow, PermRequestPayout, PermReviewPayout,
		PermReviewVerification, PermVerifyJobListing,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsFinancialOperation reports whether a permission moves money and therefore
// requires admin review or a verified account.
func IsFinancialOperation(permission string) bool {
	return permission == PermRequestPayout || permission == PermReviewPayout ||
		permission == PermReleaseEscrow
}
