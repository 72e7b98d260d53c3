package payroll

import (
	"time"

	"github.com/bizzpass/crm-backend-go/internal/domain/grace"
	"github.com/shopspring/decimal"
)

// ComponentKind enum
type ComponentKind string

const (
	KindEarning   ComponentKind = "earning"
	KindDeduction ComponentKind = "deduction"
)

// CalculationType enum
type CalculationType string

const (
	CalcFixedAmount       CalculationType = "fixed_amount"
	CalcPercentageOfBasic CalculationType = "percentage_of_basic"
	CalcPercentageOfGross CalculationType = "percentage_of_gross"
	CalcFormula           CalculationType = "formula"
	CalcAttendanceBased   CalculationType = "attendance_based"
)

// SalaryComponent - master calculation rule owned by a company.
// Posted transactions snapshot computed amounts, so editing a component never
// rewrites history.
type SalaryComponent struct {
	ID               string
	CompanyID        string
	Name             string
	DisplayName      string
	Kind             ComponentKind
	Category         string // fixed | variable | statutory | voluntary (informational)
	CalculationType  CalculationType
	CalculationValue decimal.Decimal
	Formula          *string // stored but not evaluated; behaves as fixed_amount
	IsTaxable        bool
	IsStatutory      bool
	AffectsGross     bool
	AffectsNet       bool
	MinValue         *decimal.Decimal
	MaxValue         *decimal.Decimal
	PriorityOrder    int
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SalaryModalComponent - one ordered component reference inside a modal, with
// optional per-template overrides of the shared definition.
type SalaryModalComponent struct {
	ComponentID      string           `json:"componentId"`
	DisplayOrder     int              `json:"displayOrder"`
	Kind             *ComponentKind   `json:"kind,omitempty"`
	CalculationType  *CalculationType `json:"calculationType,omitempty"`
	CalculationValue *decimal.Decimal `json:"calculationValue,omitempty"`
	IsTaxable        *bool            `json:"isTaxable,omitempty"`
	IsStatutory      *bool            `json:"isStatutory,omitempty"`
}

// SalaryModal - a reusable named template of component references. Weak
// references only: a modal does not own its components.
type SalaryModal struct {
	ID          string
	CompanyID   string
	Name        string
	Description string
	IsActive    bool
	Components  []SalaryModalComponent
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PayLine is one named amount in a breakdown. Amounts are resolved values,
// not live component references.
type PayLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// EmployeeSalaryStructure - versioned, effective-dated salary snapshot.
// Exactly one current structure per employee at any time; creating a new one
// supersedes the previous current row atomically.
type EmployeeSalaryStructure struct {
	ID               string
	EmployeeID       string
	CompanyID        string
	EffectiveFrom    time.Time
	EffectiveTo      *time.Time
	IsCurrent        bool
	CTC              decimal.Decimal
	GrossSalary      decimal.Decimal
	NetSalary        decimal.Decimal
	Earnings         []PayLine
	Deductions       []PayLine
	WorkingDaysBasis *WorkingDaysBasis
	PaidLeaveTypes   []string
	PFApplicable     bool
	ESIApplicable    bool
	PTApplicable     bool
	RevisionReason   *string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WorkingDaysBasis enum
type WorkingDaysBasis string

const (
	Basis26Days         WorkingDaysBasis = "26_days"
	Basis30Days         WorkingDaysBasis = "30_days"
	BasisCustom         WorkingDaysBasis = "custom"
	BasisActualCalendar WorkingDaysBasis = "actual_calendar"
)

// PayrollSettings - company-wide payroll policy. Exactly one per company,
// created lazily on first write. Statutory rates are configuration inputs,
// not engine logic.
type PayrollSettings struct {
	ID                     string
	CompanyID              string
	PayCycleType           string // monthly
	PayDay                 int
	AttendanceCutoffDay    int
	WorkingDaysBasis       WorkingDaysBasis
	CustomWorkingDays      *int
	WorkingHoursPerDay     decimal.Decimal
	PaidLeaveTypes         []string
	LOPCalculationMethod   string // per_day
	LOPDeductionMultiplier decimal.Decimal
	GraceConfig            *grace.Config
	OvertimeEnabled        bool
	OvertimeBasis          string // hourly
	WeekdayOTMultiplier    decimal.Decimal
	WeekendOTMultiplier    decimal.Decimal
	HolidayOTMultiplier    decimal.Decimal
	MaxOTHoursPerMonth     *decimal.Decimal
	PFEnabled              bool
	PFEmployeeRate         decimal.Decimal
	PFEmployerRate         decimal.Decimal
	PFWageCeiling          decimal.Decimal
	ESIEnabled             bool
	ESIEmployeeRate        decimal.Decimal
	ESIEmployerRate        decimal.Decimal
	ESIWageCeiling         decimal.Decimal
	PTEnabled              bool
	TDSEnabled             bool
	GratuityEnabled        bool
	Currency               string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// RunStatus enum - payroll run state machine
type RunStatus string

const (
	RunStatusDraft      RunStatus = "draft"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCalculated RunStatus = "calculated"
	RunStatusApproved   RunStatus = "approved"
	RunStatusPaid       RunStatus = "paid"
)

// PayrollRun - one calculation batch for a (company, month, year) period.
type PayrollRun struct {
	ID               string
	CompanyID        string
	Month            int
	Year             int
	PayPeriodStart   time.Time
	PayPeriodEnd     time.Time
	Status           RunStatus
	DepartmentFilter *string
	BranchFilter     *string
	EmployeeIDs      []string
	TotalEmployees   int
	TotalGross       decimal.Decimal
	TotalDeductions  decimal.Decimal
	TotalNetPay      decimal.Decimal
	CalculatedBy     *string
	CalculatedAt     *time.Time
	ApprovedBy       *string
	ApprovedAt       *time.Time
	Remarks          *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TransactionStatus enum
type TransactionStatus string

const (
	TxnStatusCalculated TransactionStatus = "calculated"
	TxnStatusApproved   TransactionStatus = "approved"
	TxnStatusPaid       TransactionStatus = "paid"
	TxnStatusHeld       TransactionStatus = "held"
)

// PayrollTransaction - the computed result for one employee in one run.
// Exactly one per (run, employee); recalculation replaces it in place.
type PayrollTransaction struct {
	ID               string
	PayrollRunID     string
	EmployeeID       string
	CompanyID        string
	Month            int
	Year             int
	PayPeriodStart   time.Time
	PayPeriodEnd     time.Time
	EmployeeName     string
	EmployeeNumber   string
	Designation      string
	Department       string
	TotalWorkingDays decimal.Decimal
	DaysPresent      decimal.Decimal
	DaysAbsent       decimal.Decimal
	DaysLeave        decimal.Decimal
	PaidLeaves       decimal.Decimal
	UnpaidLeaves     decimal.Decimal
	LOPDays          decimal.Decimal
	LOPAmount        decimal.Decimal
	GrossSalary      decimal.Decimal
	TotalEarnings    decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetSalary        decimal.Decimal

	EarningsBreakdown   []PayLine
	DeductionsBreakdown []PayLine

	Status           TransactionStatus
	HoldReason       *string
	PaymentMode      *string
	PaymentDate      *time.Time
	PaymentReference *string
	Remarks          *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AttendanceSummary - aggregate of an employee's attendance for a period.
// DaysPresent already counts half-days at 0.5.
type AttendanceSummary struct {
	EmployeeID         string
	DaysPresent        decimal.Decimal
	DaysAbsent         decimal.Decimal
	DaysHalf           decimal.Decimal
	TotalWorkHours     decimal.Decimal
	TotalOvertimeHours decimal.Decimal
	TotalLateMinutes   int
	LateDays           int
}

// LeaveSummary - aggregate of an employee's approved leave for a period.
// Leave types not in the company's paid list are unpaid and count as LOP.
type LeaveSummary struct {
	EmployeeID      string
	TotalLeaveDays  decimal.Decimal
	PaidLeaveDays   decimal.Decimal
	UnpaidLeaveDays decimal.Decimal
	LOPDays         decimal.Decimal
}
