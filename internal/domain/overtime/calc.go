package overtime

import (
	"github.com/shopspring/decimal"
)

// Pure overtime evaluation. Amounts are rounded to 2 decimals only at the
// final step of each computed result.

var hundred = decimal.NewFromInt(100)

// SalaryContext carries the salary figures an overtime rate derives from.
// StandardMonthlyHours is workingHoursPerDay * workingDays for the period.
type SalaryContext struct {
	GrossSalary          decimal.Decimal
	BasicDA              decimal.Decimal
	StandardMonthlyHours decimal.Decimal
}

// WorkedHours describes a single overtime entry to evaluate.
type WorkedHours struct {
	Hours       decimal.Decimal
	Day         DayClass
	NightShift  bool
	DoubleShift bool
}

// EligibilityInput is the employee context checked against the template's
// eligibility gates.
type EligibilityInput struct {
	EmployeeID  string
	Role        string
	ServiceDays int
}

// Result is the outcome of evaluating one overtime entry.
type Result struct {
	EligibleHours     decimal.Decimal
	AutoApprovedHours decimal.Decimal
	PendingHours      decimal.Decimal
	Amount            decimal.Decimal
}

// Eligible reports whether overtime is computed at all for the employee and
// hours worked.
func (e Eligibility) Eligible(in EligibilityInput, hours decimal.Decimal) bool {
	if e.MinServiceDays > 0 && in.ServiceDays < e.MinServiceDays {
		return false
	}
	for _, id := range e.ExcludeEmployees {
		if id == in.EmployeeID {
			return false
		}
	}
	for _, role := range e.ExcludeRoles {
		if role == in.Role {
			return false
		}
	}
	if e.MinHoursForOT.IsPositive() && hours.LessThan(e.MinHoursForOT) {
		return false
	}
	return true
}

// CapHours truncates hours against the daily cap, then the remaining weekly
// and monthly allowances. Hours beyond any cap are not compensated. A zero
// cap is uncapped.
func (c Caps) CapHours(hours, weekUsed, monthUsed decimal.Decimal) decimal.Decimal {
	capped := hours
	if c.Daily.IsPositive() && capped.GreaterThan(c.Daily) {
		capped = c.Daily
	}
	if c.Weekly.IsPositive() {
		remaining := c.Weekly.Sub(weekUsed)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		if capped.GreaterThan(remaining) {
			capped = remaining
		}
	}
	if c.Monthly.IsPositive() {
		remaining := c.Monthly.Sub(monthUsed)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		if capped.GreaterThan(remaining) {
			capped = remaining
		}
	}
	return capped
}

// HourlyRate derives the base rate per overtime hour for the template's
// calculation base. Percentage bases pro-rate the monthly amount over the
// standard monthly hours.
func (c Config) HourlyRate(sal SalaryContext) decimal.Decimal {
	switch c.CalculationBase {
	case BaseFixedAmount:
		return c.FixedAmountPerHour
	case BaseGrossSalary:
		return perHour(sal.GrossSalary.Mul(c.GrossPercentage).Div(hundred), sal.StandardMonthlyHours)
	case BaseBasicDA:
		return perHour(sal.BasicDA.Mul(c.BasicDAPercentage).Div(hundred), sal.StandardMonthlyHours)
	case BaseCombination:
		fixed := c.CombinationFixedAmount
		base := sal.GrossSalary
		if c.CombinationPercentageOf == "basic_da" {
			base = sal.BasicDA
		}
		pct := perHour(base.Mul(c.CombinationPercentage).Div(hundred), sal.StandardMonthlyHours)
		if c.CombinationRule == CombineSum {
			return fixed.Add(pct)
		}
		if pct.GreaterThan(fixed) {
			return pct
		}
		return fixed
	case BaseTieredRates:
		// Tier multipliers apply in Evaluate; the base rate pro-rates gross.
		return perHour(sal.GrossSalary, sal.StandardMonthlyHours)
	}
	return decimal.Zero
}

func perHour(monthly, standardHours decimal.Decimal) decimal.Decimal {
	if standardHours.IsZero() {
		return decimal.Zero
	}
	return monthly.Div(standardHours)
}

// Multiplier selects the tier multiplier for the day class and layers the
// orthogonal night and double shift factors on top. Non-tiered bases use the
// default multiplier.
func (c Config) Multiplier(w WorkedHours) decimal.Decimal {
	m := c.DefaultMultiplier
	if c.CalculationBase == BaseTieredRates {
		switch w.Day {
		case DaySaturday:
			m = c.TieredRates.Saturday
		case DaySunday:
			m = c.TieredRates.Sunday
		case DayHoliday:
			m = c.TieredRates.Holiday
		default:
			m = c.TieredRates.Weekday
		}
		if w.NightShift && c.TieredRates.NightShift.IsPositive() {
			m = m.Mul(c.TieredRates.NightShift)
		}
		if w.DoubleShift && c.TieredRates.DoubleShift.IsPositive() {
			m = m.Mul(c.TieredRates.DoubleShift)
		}
	}
	if !m.IsPositive() {
		m = decimal.NewFromInt(1)
	}
	return m
}

// Evaluate computes one overtime entry: eligibility gate, cap truncation,
// then rate * multiplier * hours. weekUsed and monthUsed are the hours
// already compensated in the entry's week and month.
func (c Config) Evaluate(in EligibilityInput, w WorkedHours, sal SalaryContext, weekUsed, monthUsed decimal.Decimal) Result {
	if !c.Eligibility.Eligible(in, w.Hours) {
		return Result{}
	}

	hours := c.Caps.CapHours(w.Hours, weekUsed, monthUsed)
	if !hours.IsPositive() {
		return Result{}
	}

	amount := c.HourlyRate(sal).Mul(c.Multiplier(w)).Mul(hours).Round(2)
	auto, pending := c.ApprovalWorkflow.Split(hours)

	return Result{
		EligibleHours:     hours,
		AutoApprovedHours: auto,
		PendingHours:      pending,
		Amount:            amount,
	}
}

// Split divides eligible hours into an auto-approved portion and a portion
// pending manual approval. When approval is not required everything
// auto-approves.
func (a ApprovalWorkflow) Split(hours decimal.Decimal) (auto, pending decimal.Decimal) {
	if !a.Required {
		return hours, decimal.Zero
	}
	if hours.LessThanOrEqual(a.AutoApproveUpTo) {
		return hours, decimal.Zero
	}
	return a.AutoApproveUpTo, hours.Sub(a.AutoApproveUpTo)
}
