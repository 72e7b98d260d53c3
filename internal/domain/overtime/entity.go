package overtime

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationBase enum
type CalculationBase string

const (
	BaseFixedAmount CalculationBase = "fixed_amount"
	BaseGrossSalary CalculationBase = "gross_salary"
	BaseBasicDA     CalculationBase = "basic_da"
	BaseCombination CalculationBase = "combination"
	BaseTieredRates CalculationBase = "tiered_rates"
)

// CombinationRule enum
type CombinationRule string

const (
	CombineHigherOf CombinationRule = "higher_of"
	CombineSum      CombinationRule = "sum"
)

// DayClass classifies the overtime date for tiered rates.
type DayClass string

const (
	DayWeekday  DayClass = "weekday"
	DaySaturday DayClass = "saturday"
	DaySunday   DayClass = "sunday"
	DayHoliday  DayClass = "holiday"
)

// TieredRates are multipliers keyed by day class; night and double shift are
// orthogonal factors applied on top of the day tier.
type TieredRates struct {
	Weekday     decimal.Decimal `json:"weekday"`
	Saturday    decimal.Decimal `json:"saturday"`
	Sunday      decimal.Decimal `json:"sunday"`
	Holiday     decimal.Decimal `json:"holiday"`
	NightShift  decimal.Decimal `json:"nightShift"`
	DoubleShift decimal.Decimal `json:"doubleShift"`
}

// Caps truncate eligible overtime hours before any multiplier applies.
// Zero means uncapped.
type Caps struct {
	Daily   decimal.Decimal `json:"daily"`
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
}

// Eligibility gates whether overtime is computed at all.
type Eligibility struct {
	MinServiceDays   int             `json:"minServiceDays"`
	ExcludeEmployees []string        `json:"excludeEmployees"`
	ExcludeRoles     []string        `json:"excludeRoles"`
	MinHoursForOT    decimal.Decimal `json:"minHoursForOT"`
}

// ApprovalWorkflow - hours up to AutoApproveUpTo auto-approve; beyond that,
// Levels manual approvals are required before payout. Approval mechanics
// themselves live outside the engine.
type ApprovalWorkflow struct {
	Required        bool            `json:"required"`
	Levels          int             `json:"levels"`
	AutoApproveUpTo decimal.Decimal `json:"autoApproveUpTo"`
}

// PaymentOptions decide the disposition of computed overtime.
type PaymentOptions struct {
	PayInSalary     bool `json:"payInSalary"`
	CompensatoryOff bool `json:"compensatoryOff"`
	CarryForward    bool `json:"carryForward"`
	LapseAfterDays  int  `json:"lapseAfter"`
}

// Config is the typed overtime policy blob. Invalid combinations are caught
// at construction, not at evaluation.
type Config struct {
	CalculationBase         CalculationBase  `json:"calculationBase"`
	DefaultMultiplier       decimal.Decimal  `json:"defaultMultiplier"`
	FixedAmountPerHour      decimal.Decimal  `json:"fixedAmountPerHour"`
	GrossPercentage         decimal.Decimal  `json:"grossPercentage"`
	BasicDAPercentage       decimal.Decimal  `json:"basicDaPercentage"`
	CombinationRule         CombinationRule  `json:"combinationRule"`
	CombinationFixedAmount  decimal.Decimal  `json:"combinationFixedAmount"`
	CombinationPercentageOf string           `json:"combinationPercentageOf"` // gross | basic_da
	CombinationPercentage   decimal.Decimal  `json:"combinationPercentage"`
	TieredRates             TieredRates      `json:"tieredRates"`
	Caps                    Caps             `json:"caps"`
	Eligibility             Eligibility      `json:"eligibility"`
	ApprovalWorkflow        ApprovalWorkflow `json:"approvalWorkflow"`
	PaymentOptions          PaymentOptions   `json:"paymentOptions"`
}

// Template is a named, selectable overtime policy. At most one default per
// company.
type Template struct {
	ID          string
	CompanyID   string
	Name        string
	CompanyType string
	IsDefault   bool
	Config      Config
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
