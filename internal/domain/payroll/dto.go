package payroll

import (
	"github.com/bizzpass/crm-backend-go/internal/domain/grace"
	"github.com/bizzpass/crm-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== COMPONENT DTOs ==========

type CreateComponentRequest struct {
	Name             string           `json:"name"`
	DisplayName      string           `json:"display_name"`
	Kind             string           `json:"kind"` // earning | deduction
	Category         *string          `json:"category,omitempty"`
	CalculationType  string           `json:"calculation_type"`
	CalculationValue decimal.Decimal  `json:"calculation_value"`
	Formula          *string          `json:"formula,omitempty"`
	IsTaxable        *bool            `json:"is_taxable,omitempty"`
	IsStatutory      *bool            `json:"is_statutory,omitempty"`
	AffectsGross     *bool            `json:"affects_gross,omitempty"`
	AffectsNet       *bool            `json:"affects_net,omitempty"`
	MinValue         *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue         *decimal.Decimal `json:"max_value,omitempty"`
	PriorityOrder    int              `json:"priority_order"`
	IsActive         *bool            `json:"is_active,omitempty"`
}

var calculationTypes = []string{
	string(CalcFixedAmount),
	string(CalcPercentageOfBasic),
	string(CalcPercentageOfGross),
	string(CalcFormula),
	string(CalcAttendanceBased),
}

func (r *CreateComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.Kind != string(KindEarning) && r.Kind != string(KindDeduction) {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be 'earning' or 'deduction'"})
	}
	if !validator.IsInSlice(r.CalculationType, calculationTypes) {
		errs = append(errs, validator.ValidationError{Field: "calculation_type", Message: "unknown calculation type"})
	}
	if r.MinValue != nil && r.MaxValue != nil && r.MinValue.GreaterThan(*r.MaxValue) {
		errs = append(errs, validator.ValidationError{Field: "min_value", Message: "must not exceed max_value"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateComponentRequest struct {
	ID               string           `json:"-"`
	Name             *string          `json:"name,omitempty"`
	DisplayName      *string          `json:"display_name,omitempty"`
	Category         *string          `json:"category,omitempty"`
	CalculationType  *string          `json:"calculation_type,omitempty"`
	CalculationValue *decimal.Decimal `json:"calculation_value,omitempty"`
	Formula          *string          `json:"formula,omitempty"`
	IsTaxable        *bool            `json:"is_taxable,omitempty"`
	IsStatutory      *bool            `json:"is_statutory,omitempty"`
	AffectsGross     *bool            `json:"affects_gross,omitempty"`
	AffectsNet       *bool            `json:"affects_net,omitempty"`
	MinValue         *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue         *decimal.Decimal `json:"max_value,omitempty"`
	PriorityOrder    *int             `json:"priority_order,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
}

func (r *UpdateComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CalculationType != nil && !validator.IsInSlice(*r.CalculationType, calculationTypes) {
		errs = append(errs, validator.ValidationError{Field: "calculation_type", Message: "unknown calculation type"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ComponentResponse struct {
	ID               string           `json:"id"`
	CompanyID        string           `json:"company_id"`
	Name             string           `json:"name"`
	DisplayName      string           `json:"display_name"`
	Kind             string           `json:"kind"`
	Category         string           `json:"category,omitempty"`
	CalculationType  string           `json:"calculation_type"`
	CalculationValue decimal.Decimal  `json:"calculation_value"`
	IsTaxable        bool             `json:"is_taxable"`
	IsStatutory      bool             `json:"is_statutory"`
	AffectsGross     bool             `json:"affects_gross"`
	AffectsNet       bool             `json:"affects_net"`
	MinValue         *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue         *decimal.Decimal `json:"max_value,omitempty"`
	PriorityOrder    int              `json:"priority_order"`
	IsActive         bool             `json:"is_active"`
}

// ========== SALARY MODAL DTOs ==========

type CreateSalaryModalRequest struct {
	Name        string                 `json:"name"`
	Description *string                `json:"description,omitempty"`
	IsActive    *bool                  `json:"is_active,omitempty"`
	Components  []SalaryModalComponent `json:"components"`
}

func (r *CreateSalaryModalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	for _, c := range r.Components {
		if validator.IsEmpty(c.ComponentID) {
			errs = append(errs, validator.ValidationError{Field: "components", Message: "component reference missing componentId"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateSalaryModalRequest struct {
	ID          string                  `json:"-"`
	Name        *string                 `json:"name,omitempty"`
	Description *string                 `json:"description,omitempty"`
	IsActive    *bool                   `json:"is_active,omitempty"`
	Components  *[]SalaryModalComponent `json:"components,omitempty"`
}

type SalaryModalResponse struct {
	ID          string                 `json:"id"`
	CompanyID   string                 `json:"company_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	IsActive    bool                   `json:"is_active"`
	Components  []SalaryModalComponent `json:"components"`
}

// ========== SETTINGS DTOs ==========

type UpsertSettingsRequest struct {
	PayCycleType           *string          `json:"pay_cycle_type,omitempty"`
	PayDay                 *int             `json:"pay_day,omitempty"`
	AttendanceCutoffDay    *int             `json:"attendance_cutoff_day,omitempty"`
	WorkingDaysBasis       *string          `json:"working_days_basis,omitempty"`
	CustomWorkingDays      *int             `json:"custom_working_days,omitempty"`
	WorkingHoursPerDay     *decimal.Decimal `json:"working_hours_per_day,omitempty"`
	PaidLeaveTypes         *[]string        `json:"paid_leave_types,omitempty"`
	LOPCalculationMethod   *string          `json:"lop_calculation_method,omitempty"`
	LOPDeductionMultiplier *decimal.Decimal `json:"lop_deduction_multiplier,omitempty"`
	GraceConfig            *grace.Config    `json:"grace_config,omitempty"`
	OvertimeEnabled        *bool            `json:"overtime_enabled,omitempty"`
	OvertimeBasis          *string          `json:"overtime_basis,omitempty"`
	WeekdayOTMultiplier    *decimal.Decimal `json:"weekday_ot_multiplier,omitempty"`
	WeekendOTMultiplier    *decimal.Decimal `json:"weekend_ot_multiplier,omitempty"`
	HolidayOTMultiplier    *decimal.Decimal `json:"holiday_ot_multiplier,omitempty"`
	MaxOTHoursPerMonth     *decimal.Decimal `json:"max_ot_hours_per_month,omitempty"`
	PFEnabled              *bool            `json:"pf_enabled,omitempty"`
	PFEmployeeRate         *decimal.Decimal `json:"pf_employee_rate,omitempty"`
	PFEmployerRate         *decimal.Decimal `json:"pf_employer_rate,omitempty"`
	PFWageCeiling          *decimal.Decimal `json:"pf_wage_ceiling,omitempty"`
	ESIEnabled             *bool            `json:"esi_enabled,omitempty"`
	ESIEmployeeRate        *decimal.Decimal `json:"esi_employee_rate,omitempty"`
	ESIEmployerRate        *decimal.Decimal `json:"esi_employer_rate,omitempty"`
	ESIWageCeiling         *decimal.Decimal `json:"esi_wage_ceiling,omitempty"`
	PTEnabled              *bool            `json:"pt_enabled,omitempty"`
	TDSEnabled             *bool            `json:"tds_enabled,omitempty"`
	GratuityEnabled        *bool            `json:"gratuity_enabled,omitempty"`
	Currency               *string          `json:"currency,omitempty"`
}

var workingDaysBases = []string{
	string(Basis26Days),
	string(Basis30Days),
	string(BasisCustom),
	string(BasisActualCalendar),
}

func (r *UpsertSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.WorkingDaysBasis != nil && !validator.IsInSlice(*r.WorkingDaysBasis, workingDaysBases) {
		errs = append(errs, validator.ValidationError{Field: "working_days_basis", Message: "unknown working days basis"})
	}
	if r.WorkingDaysBasis != nil && *r.WorkingDaysBasis == string(BasisCustom) &&
		(r.CustomWorkingDays == nil || *r.CustomWorkingDays <= 0) {
		errs = append(errs, validator.ValidationError{Field: "custom_working_days", Message: "is required for custom basis"})
	}
	if r.LOPDeductionMultiplier != nil && r.LOPDeductionMultiplier.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "lop_deduction_multiplier", Message: "must be non-negative"})
	}
	errs = append(errs, grace.ValidateConfig(r.GraceConfig)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SettingsResponse struct {
	Configured bool             `json:"configured"`
	Settings   *PayrollSettings `json:"settings,omitempty"`
}

// ========== SALARY STRUCTURE DTOs ==========

type CreateStructureRequest struct {
	EmployeeID       string          `json:"employee_id"`
	EffectiveFrom    string          `json:"effective_from"`
	EffectiveTo      *string         `json:"effective_to,omitempty"`
	CTC              decimal.Decimal `json:"ctc"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`
	NetSalary        decimal.Decimal `json:"net_salary"`
	Earnings         []PayLine       `json:"earnings"`
	Deductions       []PayLine       `json:"deductions"`
	WorkingDaysBasis *string         `json:"working_days_basis,omitempty"`
	PaidLeaveTypes   []string        `json:"paid_leave_types,omitempty"`
	PFApplicable     *bool           `json:"pf_applicable,omitempty"`
	ESIApplicable    *bool           `json:"esi_applicable,omitempty"`
	PTApplicable     *bool           `json:"pt_applicable,omitempty"`
	RevisionReason   *string         `json:"revision_reason,omitempty"`
}

func (r *CreateStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.GrossSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "gross_salary", Message: "must be non-negative"})
	}
	if len(r.Earnings) == 0 {
		errs = append(errs, validator.ValidationError{Field: "earnings", Message: "at least one earning line is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StructureFilter struct {
	EmployeeID  *string
	CurrentOnly bool
}

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	Month            int      `json:"month"`
	Year             int      `json:"year"`
	PayPeriodStart   string   `json:"pay_period_start"`
	PayPeriodEnd     string   `json:"pay_period_end"`
	DepartmentFilter *string  `json:"department_filter,omitempty"`
	BranchFilter     *string  `json:"branch_filter,omitempty"`
	EmployeeIDs      []string `json:"employee_ids,omitempty"`
	Remarks          *string  `json:"remarks,omitempty"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if r.Year < 2000 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be 2000 or later"})
	}
	if _, ok := validator.IsValidDate(r.PayPeriodStart); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_period_start", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if _, ok := validator.IsValidDate(r.PayPeriodEnd); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_period_end", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunFilter struct {
	Month  *int
	Year   *int
	Status *string
}

// CalculateRunResult reports one calculate invocation. SkippedEmployees
// counts eligible employees excluded for lack of a current salary structure.
type CalculateRunResult struct {
	TotalEmployees   int             `json:"total_employees"`
	SkippedEmployees int             `json:"skipped_employees"`
	TotalGross       decimal.Decimal `json:"total_gross"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	TotalNetPay      decimal.Decimal `json:"total_net_pay"`
}

type RunDetailResponse struct {
	Run          PayrollRun           `json:"run"`
	Transactions []PayrollTransaction `json:"transactions"`
}

// ========== TRANSACTION DTOs ==========

type UpdateTransactionRequest struct {
	ID               string  `json:"-"`
	Status           *string `json:"status,omitempty"` // calculated | approved | paid | held
	HoldReason       *string `json:"hold_reason,omitempty"`
	PaymentMode      *string `json:"payment_mode,omitempty"`
	PaymentDate      *string `json:"payment_date,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	Remarks          *string `json:"remarks,omitempty"`
}

func (r *UpdateTransactionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != nil && !validator.IsInSlice(*r.Status, []string{
		string(TxnStatusCalculated), string(TxnStatusApproved), string(TxnStatusPaid), string(TxnStatusHeld),
	}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "unknown transaction status"})
	}
	if r.PaymentDate != nil {
		if _, ok := validator.IsValidDate(*r.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}
	if r.Status == nil && r.HoldReason == nil && r.PaymentMode == nil &&
		r.PaymentDate == nil && r.PaymentReference == nil && r.Remarks == nil {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "no fields to update"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
