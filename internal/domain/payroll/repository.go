package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access for payroll configuration, runs and
// transactions. All methods include companyID to prevent cross-company data
// access.
type PayrollRepository interface {
	// Settings
	GetSettings(ctx context.Context, companyID string) (PayrollSettings, error)
	UpsertSettings(ctx context.Context, settings PayrollSettings) (PayrollSettings, error)

	// Components
	CreateComponent(ctx context.Context, component SalaryComponent) (SalaryComponent, error)
	GetComponentByID(ctx context.Context, id string, companyID string) (SalaryComponent, error)
	ListComponents(ctx context.Context, companyID string, kind *ComponentKind, activeOnly bool) ([]SalaryComponent, error)
	UpdateComponent(ctx context.Context, companyID string, req UpdateComponentRequest) (SalaryComponent, error)
	DeactivateComponent(ctx context.Context, id string, companyID string) error

	// Salary modals
	CreateSalaryModal(ctx context.Context, modal SalaryModal) (SalaryModal, error)
	GetSalaryModalByID(ctx context.Context, id string, companyID string) (SalaryModal, error)
	ListSalaryModals(ctx context.Context, companyID string) ([]SalaryModal, error)
	UpdateSalaryModal(ctx context.Context, companyID string, req UpdateSalaryModalRequest) (SalaryModal, error)
	DeleteSalaryModal(ctx context.Context, id string, companyID string) error

	// Salary structures. CreateStructure must supersede the employee's
	// previous current structure in the same transaction.
	CreateStructure(ctx context.Context, structure EmployeeSalaryStructure) (EmployeeSalaryStructure, error)
	GetCurrentStructure(ctx context.Context, employeeID string, companyID string) (EmployeeSalaryStructure, error)
	ListStructures(ctx context.Context, companyID string, filter StructureFilter) ([]EmployeeSalaryStructure, error)

	// Runs
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRunByID(ctx context.Context, id string, companyID string) (PayrollRun, error)
	ListRuns(ctx context.Context, companyID string, filter RunFilter) ([]PayrollRun, error)
	// MarkRunProcessing guards the draft|processing -> processing edge;
	// returns ErrRunNotCalculable when the run is in any other state.
	MarkRunProcessing(ctx context.Context, id string, companyID string) error
	// CompleteRun stamps totals and the calculated state; only valid from
	// processing.
	CompleteRun(ctx context.Context, id string, companyID string, result CalculateRunResult, calculatedBy string, at time.Time) error
	// ApproveRun is a compare-and-set on status='calculated' that also
	// cascades every calculated transaction in the run to approved; two
	// concurrent calls cannot both succeed.
	ApproveRun(ctx context.Context, id string, companyID string, approvedBy string, at time.Time) error

	// Transactions
	UpsertTransaction(ctx context.Context, txn PayrollTransaction) error
	GetTransactionByID(ctx context.Context, id string, companyID string) (PayrollTransaction, error)
	ListTransactionsByRun(ctx context.Context, runID string, companyID string) ([]PayrollTransaction, error)
	UpdateTransaction(ctx context.Context, companyID string, req UpdateTransactionRequest) error
}

// AttendanceStore aggregates attendance facts for the engine. External
// collaborator: the engine depends only on this summary contract.
type AttendanceStore interface {
	Summarize(ctx context.Context, companyID, employeeID string, month, year int) (AttendanceSummary, error)
}

// LeaveStore aggregates approved leave for the engine, split into paid and
// unpaid by the company's paid-leave-type list.
type LeaveStore interface {
	Summarize(ctx context.Context, companyID, employeeID string, month, year int, paidLeaveTypes []string) (LeaveSummary, error)
}

// PayrollService is the operation surface exposed to the HTTP layer.
type PayrollService interface {
	// Settings
	GetSettings(ctx context.Context) (SettingsResponse, error)
	UpsertSettings(ctx context.Context, req UpsertSettingsRequest) (PayrollSettings, error)

	// Components
	CreateComponent(ctx context.Context, req CreateComponentRequest) (ComponentResponse, error)
	GetComponent(ctx context.Context, id string) (ComponentResponse, error)
	ListComponents(ctx context.Context, kind *ComponentKind, activeOnly bool) ([]ComponentResponse, error)
	UpdateComponent(ctx context.Context, req UpdateComponentRequest) (ComponentResponse, error)
	DeactivateComponent(ctx context.Context, id string) error

	// Salary modals
	CreateSalaryModal(ctx context.Context, req CreateSalaryModalRequest) (SalaryModalResponse, error)
	GetSalaryModal(ctx context.Context, id string) (SalaryModalResponse, error)
	ListSalaryModals(ctx context.Context) ([]SalaryModalResponse, error)
	UpdateSalaryModal(ctx context.Context, req UpdateSalaryModalRequest) (SalaryModalResponse, error)
	DeleteSalaryModal(ctx context.Context, id string) error

	// Salary structures
	CreateStructure(ctx context.Context, req CreateStructureRequest) (EmployeeSalaryStructure, error)
	ListStructures(ctx context.Context, filter StructureFilter) ([]EmployeeSalaryStructure, error)

	// Runs
	CreateRun(ctx context.Context, req CreateRunRequest) (PayrollRun, error)
	GetRun(ctx context.Context, id string) (RunDetailResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]PayrollRun, error)
	CalculateRun(ctx context.Context, id string) (CalculateRunResult, error)
	ApproveRun(ctx context.Context, id string) error

	// Transactions
	GetTransaction(ctx context.Context, id string) (PayrollTransaction, error)
	UpdateTransaction(ctx context.Context, req UpdateTransactionRequest) error
}
