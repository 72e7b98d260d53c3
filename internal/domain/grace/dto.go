package grace

import (
	"github.com/bizzpass/crm-backend-go/internal/pkg/validator"
)

// ========== FINE MODAL DTOs ==========

type CreateFineModalRequest struct {
	Name                  string   `json:"name"`
	Description           *string  `json:"description,omitempty"`
	IsActive              *bool    `json:"is_active,omitempty"`
	GraceConfig           *Config  `json:"grace_config,omitempty"`
	FineCalculationMethod *string  `json:"fine_calculation_method,omitempty"` // per_minute | fixed_per_occurrence
	FineFixedAmount       *float64 `json:"fine_fixed_amount,omitempty"`
}

func (r *CreateFineModalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.FineCalculationMethod != nil &&
		!validator.IsInSlice(*r.FineCalculationMethod, []string{"per_minute", "fixed_per_occurrence"}) {
		errs = append(errs, validator.ValidationError{Field: "fine_calculation_method", Message: "must be 'per_minute' or 'fixed_per_occurrence'"})
	}
	errs = append(errs, ValidateConfig(r.GraceConfig)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateFineModalRequest struct {
	ID                    string   `json:"-"`
	Name                  *string  `json:"name,omitempty"`
	Description           *string  `json:"description,omitempty"`
	IsActive              *bool    `json:"is_active,omitempty"`
	GraceConfig           *Config  `json:"grace_config,omitempty"`
	FineCalculationMethod *string  `json:"fine_calculation_method,omitempty"`
	FineFixedAmount       *float64 `json:"fine_fixed_amount,omitempty"`
}

func (r *UpdateFineModalRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "must not be blank"})
	}
	if r.FineCalculationMethod != nil &&
		!validator.IsInSlice(*r.FineCalculationMethod, []string{"per_minute", "fixed_per_occurrence"}) {
		errs = append(errs, validator.ValidationError{Field: "fine_calculation_method", Message: "must be 'per_minute' or 'fixed_per_occurrence'"})
	}
	errs = append(errs, ValidateConfig(r.GraceConfig)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateConfig checks the stored form of a grace config. Unset fields are
// fine: they fall back to defaults at resolution. Shared by the fine modal
// DTOs and the payroll settings DTO, which both persist these blobs.
func ValidateConfig(cfg *Config) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if cfg == nil {
		return errs
	}
	for field, rule := range map[string]*RulePatch{"grace_config.lateLogin": cfg.LateLogin, "grace_config.earlyLogout": cfg.EarlyLogout} {
		if rule == nil {
			continue
		}
		if rule.ResetCycle != nil &&
			!validator.IsInSlice(string(*rule.ResetCycle), []string{string(ResetMonthly), string(ResetWeekly), string(ResetNever)}) {
			errs = append(errs, validator.ValidationError{Field: field + ".resetCycle", Message: "must be MONTHLY, WEEKLY or NEVER"})
		}
		if rule.GraceType != nil &&
			!validator.IsInSlice(string(*rule.GraceType), []string{string(GracePerOccurrence), string(GraceCountBased), string(GraceCombined)}) {
			errs = append(errs, validator.ValidationError{Field: field + ".graceType", Message: "must be PER_OCCURRENCE, COUNT_BASED or COMBINED"})
		}
		if rule.GraceMinutesPerDay != nil && *rule.GraceMinutesPerDay < 0 {
			errs = append(errs, validator.ValidationError{Field: field + ".graceMinutesPerDay", Message: "must be non-negative"})
		}
		if rule.GraceCountPerMonth != nil && *rule.GraceCountPerMonth < 0 {
			errs = append(errs, validator.ValidationError{Field: field + ".graceCountPerMonth", Message: "must be non-negative"})
		}
		if rule.WeekStartDay != nil && (*rule.WeekStartDay < 0 || *rule.WeekStartDay > 6) {
			errs = append(errs, validator.ValidationError{Field: field + ".weekStartDay", Message: "must be between 0 (Sunday) and 6 (Saturday)"})
		}
	}
	return errs
}

type FineModalResponse struct {
	ID                    string   `json:"id"`
	CompanyID             string   `json:"company_id"`
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	IsActive              bool     `json:"is_active"`
	GraceConfig           Config   `json:"grace_config"`
	FineCalculationMethod string   `json:"fine_calculation_method"`
	FineFixedAmount       *float64 `json:"fine_fixed_amount,omitempty"`
}

// ========== LIVE RESOLUTION DTOs ==========

type ResolveGraceRequest struct {
	EmployeeID       string `json:"employee_id"`
	ViolationType    string `json:"violation_type"` // LATE_LOGIN | EARLY_LOGOUT
	Minutes          int    `json:"minutes"`
	Date             string `json:"date"` // YYYY-MM-DD
	AttendanceStatus string `json:"attendance_status,omitempty"`
	LeaveApproved    bool   `json:"leave_approved,omitempty"`
}

func (r *ResolveGraceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsInSlice(r.ViolationType, []string{string(ViolationLateLogin), string(ViolationEarlyLogout)}) {
		errs = append(errs, validator.ValidationError{Field: "violation_type", Message: "must be LATE_LOGIN or EARLY_LOGOUT"})
	}
	if r.Minutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "minutes", Message: "must be non-negative"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ResolveGraceResponse struct {
	AppliesGrace      bool   `json:"applies_grace"`
	Reason            string `json:"reason"`
	EffectiveRule     Rule   `json:"effective_rule"`
	ViolationsInCycle int    `json:"violations_in_cycle"`
	CycleStart        string `json:"cycle_start"`
}
