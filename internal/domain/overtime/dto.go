package overtime

import (
	"time"

	"github.com/bizzpass/crm-backend-go/internal/pkg/validator"
)

var calculationBases = []string{
	string(BaseFixedAmount),
	string(BaseGrossSalary),
	string(BaseBasicDA),
	string(BaseCombination),
	string(BaseTieredRates),
}

type CreateTemplateRequest struct {
	Name        string  `json:"name"`
	CompanyType *string `json:"company_type,omitempty"`
	IsDefault   *bool   `json:"is_default,omitempty"`
	Config      Config  `json:"config"`
}

func (r *CreateTemplateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	validateTemplateConfig(&r.Config, &errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateTemplateRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	CompanyType *string `json:"company_type,omitempty"`
	IsDefault   *bool   `json:"is_default,omitempty"`
	Config      *Config `json:"config,omitempty"`
}

func (r *UpdateTemplateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "must not be blank"})
	}
	validateTemplateConfig(r.Config, &errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateTemplateConfig(cfg *Config, errs *validator.ValidationErrors) {
	if cfg == nil {
		return
	}
	if !validator.IsInSlice(string(cfg.CalculationBase), calculationBases) {
		*errs = append(*errs, validator.ValidationError{Field: "config.calculationBase", Message: "must be one of fixed_amount, gross_salary, basic_da, combination, tiered_rates"})
	}
	if cfg.CalculationBase == BaseCombination {
		if !validator.IsInSlice(string(cfg.CombinationRule), []string{string(CombineHigherOf), string(CombineSum)}) {
			*errs = append(*errs, validator.ValidationError{Field: "config.combinationRule", Message: "must be 'higher_of' or 'sum'"})
		}
		if !validator.IsInSlice(cfg.CombinationPercentageOf, []string{"gross", "basic_da"}) {
			*errs = append(*errs, validator.ValidationError{Field: "config.combinationPercentageOf", Message: "must be 'gross' or 'basic_da'"})
		}
	}
	if cfg.FixedAmountPerHour.IsNegative() {
		*errs = append(*errs, validator.ValidationError{Field: "config.fixedAmountPerHour", Message: "must be non-negative"})
	}
	if cfg.GrossPercentage.IsNegative() {
		*errs = append(*errs, validator.ValidationError{Field: "config.grossPercentage", Message: "must be non-negative"})
	}
	if cfg.BasicDAPercentage.IsNegative() {
		*errs = append(*errs, validator.ValidationError{Field: "config.basicDaPercentage", Message: "must be non-negative"})
	}
	for field, v := range map[string]int{
		"config.eligibility.minServiceDays": cfg.Eligibility.MinServiceDays,
		"config.approvalWorkflow.levels":    cfg.ApprovalWorkflow.Levels,
		"config.paymentOptions.lapseAfter":  cfg.PaymentOptions.LapseAfterDays,
	} {
		if v < 0 {
			*errs = append(*errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	if cfg.Caps.Daily.IsNegative() || cfg.Caps.Weekly.IsNegative() || cfg.Caps.Monthly.IsNegative() {
		*errs = append(*errs, validator.ValidationError{Field: "config.caps", Message: "cap hours must be non-negative"})
	}
	if cfg.ApprovalWorkflow.AutoApproveUpTo.IsNegative() {
		*errs = append(*errs, validator.ValidationError{Field: "config.approvalWorkflow.autoApproveUpTo", Message: "must be non-negative"})
	}
}

type TemplateResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Name        string    `json:"name"`
	CompanyType string    `json:"company_type"`
	IsDefault   bool      `json:"is_default"`
	Config      Config    `json:"config"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
