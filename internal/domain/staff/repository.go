package staff

import "context"

// Directory lists employees for the engine. External collaborator: only
// active staff matching the filter are eligible for a run.
type Directory interface {
	ListEligible(ctx context.Context, companyID string, filter EligibilityFilter) ([]Staff, error)
	GetByID(ctx context.Context, id string, companyID string) (Staff, error)
}
