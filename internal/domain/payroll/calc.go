package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pure calculation core. Every function here is deterministic and
// side-effect free; rounding to 2 decimals happens only at the final step of
// each computed line, never between intermediate steps.

var hundred = decimal.NewFromInt(100)

// WorkingDays returns the divisor for per-day rates under the company's
// working-days basis. customDays is required for BasisCustom; an unknown
// basis falls back to 26.
func WorkingDays(year int, month time.Month, basis WorkingDaysBasis, customDays *int) decimal.Decimal {
	switch basis {
	case Basis26Days:
		return decimal.NewFromInt(26)
	case Basis30Days:
		return decimal.NewFromInt(30)
	case BasisCustom:
		if customDays != nil && *customDays > 0 {
			return decimal.NewFromInt(int64(*customDays))
		}
	case BasisActualCalendar:
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		return decimal.NewFromInt(int64(first.AddDate(0, 1, 0).Sub(first).Hours() / 24))
	}
	return decimal.NewFromInt(26)
}

// PerDayRate divides the monthly salary by the working days, 0 when the
// divisor is 0.
func PerDayRate(monthlySalary, workingDays decimal.Decimal) decimal.Decimal {
	if workingDays.IsZero() {
		return decimal.Zero
	}
	return monthlySalary.Div(workingDays)
}

// ComponentAttendance carries the attendance inputs for attendance_based
// components. DaysPresent already weights half-days at 0.5.
type ComponentAttendance struct {
	DaysPresent      decimal.Decimal
	TotalWorkingDays decimal.Decimal
}

// Evaluate computes the component's amount for the given salary context,
// applies the min/max clamp and rounds to 2 decimals. The formula type is a
// stored placeholder and evaluates as fixed_amount.
func (c SalaryComponent) Evaluate(basicSalary, grossSalary decimal.Decimal, att *ComponentAttendance) decimal.Decimal {
	var amount decimal.Decimal

	switch c.CalculationType {
	case CalcPercentageOfBasic:
		amount = basicSalary.Mul(c.CalculationValue).Div(hundred)
	case CalcPercentageOfGross:
		amount = grossSalary.Mul(c.CalculationValue).Div(hundred)
	case CalcAttendanceBased:
		if att != nil && att.TotalWorkingDays.IsPositive() {
			amount = c.CalculationValue.Mul(att.DaysPresent).Div(att.TotalWorkingDays)
		} else {
			amount = c.CalculationValue
		}
	default: // fixed_amount, formula
		amount = c.CalculationValue
	}

	if c.MinValue != nil && amount.LessThan(*c.MinValue) {
		amount = *c.MinValue
	}
	if c.MaxValue != nil && amount.GreaterThan(*c.MaxValue) {
		amount = *c.MaxValue
	}

	return amount.Round(2)
}

// Apply merges a modal's per-template overrides onto the shared component
// definition, returning the effective component.
func (mc SalaryModalComponent) Apply(c SalaryComponent) SalaryComponent {
	if mc.Kind != nil {
		c.Kind = *mc.Kind
	}
	if mc.CalculationType != nil {
		c.CalculationType = *mc.CalculationType
	}
	if mc.CalculationValue != nil {
		c.CalculationValue = *mc.CalculationValue
	}
	if mc.IsTaxable != nil {
		c.IsTaxable = *mc.IsTaxable
	}
	if mc.IsStatutory != nil {
		c.IsStatutory = *mc.IsStatutory
	}
	return c
}

// ProrationFactor is the fraction of the period actually worked:
// (workingDays - lopDays) / workingDays. Factor 1 when lopDays = 0.
func ProrationFactor(workingDays, lopDays decimal.Decimal) decimal.Decimal {
	if workingDays.IsZero() || !lopDays.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return workingDays.Sub(lopDays).Div(workingDays)
}

// ProrateEarnings scales each earning line by the pro-ration factor and
// rounds per line. Deduction lines are never pro-rated.
func ProrateEarnings(earnings []PayLine, workingDays, lopDays decimal.Decimal) ([]PayLine, decimal.Decimal) {
	factor := ProrationFactor(workingDays, lopDays)
	out := make([]PayLine, 0, len(earnings))
	total := decimal.Zero
	for _, line := range earnings {
		amount := line.Amount.Mul(factor).Round(2)
		out = append(out, PayLine{Name: line.Name, Amount: amount})
		total = total.Add(amount)
	}
	return out, total
}

// LOPAmount is perDayRate * lopDays * multiplier, rounded to 2 decimals.
func LOPAmount(perDayRate, lopDays, multiplier decimal.Decimal) decimal.Decimal {
	return perDayRate.Mul(lopDays).Mul(multiplier).Round(2)
}

// LOPLineName is the deduction line appended for loss of pay; distinct from
// any user-defined deduction name.
const LOPLineName = "Loss of Pay"
