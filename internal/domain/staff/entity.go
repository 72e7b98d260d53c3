package staff

import "time"

// Staff carries the identity fields the payroll engine snapshots into
// transactions, plus the template references grace resolution walks.
type Staff struct {
	ID             string
	CompanyID      string
	Name           string
	EmployeeNumber string
	Designation    string
	Department     string
	BranchID       *string
	ShiftModalID   *string
	FineModalID    *string
	Status         string // active | inactive
	JoinDate       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EligibilityFilter narrows the employee set for a payroll run. Empty
// fields match everything.
type EligibilityFilter struct {
	Department  *string
	BranchID    *string
	EmployeeIDs []string
}
