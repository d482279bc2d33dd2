package policy

import "context"

// PolicyRepository supplies per-company attendance configuration.
type PolicyRepository interface {
	// GetByCompanyID returns the attendance policy for a company.
	// Returns ErrPolicyNotFound when the company does not exist.
	GetByCompanyID(ctx context.Context, companyID string) (AttendancePolicy, error)
}
