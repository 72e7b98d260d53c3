package overtime

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// 8 hours a day over 26 working days.
func testSalary() SalaryContext {
	return SalaryContext{
		GrossSalary:          dec("52000"),
		BasicDA:              dec("20800"),
		StandardMonthlyHours: dec("208"),
	}
}

func TestHourlyRate(t *testing.T) {
	t.Parallel()

	sal := testSalary()

	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			"fixed amount",
			Config{CalculationBase: BaseFixedAmount, FixedAmountPerHour: dec("150")},
			"150",
		},
		{
			"gross percentage",
			Config{CalculationBase: BaseGrossSalary, GrossPercentage: dec("100")},
			"250", // 52000 / 208
		},
		{
			"basic da percentage",
			Config{CalculationBase: BaseBasicDA, BasicDAPercentage: dec("50")},
			"50", // 20800 * 0.5 / 208
		},
		{
			"combination higher_of picks percentage",
			Config{
				CalculationBase:         BaseCombination,
				CombinationRule:         CombineHigherOf,
				CombinationFixedAmount:  dec("100"),
				CombinationPercentageOf: "gross",
				CombinationPercentage:   dec("100"),
			},
			"250",
		},
		{
			"combination higher_of picks fixed",
			Config{
				CalculationBase:         BaseCombination,
				CombinationRule:         CombineHigherOf,
				CombinationFixedAmount:  dec("300"),
				CombinationPercentageOf: "gross",
				CombinationPercentage:   dec("100"),
			},
			"300",
		},
		{
			"combination sum",
			Config{
				CalculationBase:         BaseCombination,
				CombinationRule:         CombineSum,
				CombinationFixedAmount:  dec("100"),
				CombinationPercentageOf: "basic_da",
				CombinationPercentage:   dec("100"),
			},
			"200", // 100 + 20800/208
		},
		{
			"tiered base pro-rates gross",
			Config{CalculationBase: BaseTieredRates},
			"250",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.cfg.HourlyRate(sal)
			assert.True(t, got.Equal(dec(c.want)), "got %s", got)
		})
	}
}

func TestHourlyRate_ZeroStandardHours(t *testing.T) {
	t.Parallel()

	cfg := Config{CalculationBase: BaseGrossSalary, GrossPercentage: dec("100")}
	got := cfg.HourlyRate(SalaryContext{GrossSalary: dec("52000")})
	assert.True(t, got.IsZero())
}

func TestMultiplier(t *testing.T) {
	t.Parallel()

	tiered := Config{
		CalculationBase: BaseTieredRates,
		TieredRates: TieredRates{
			Weekday:     dec("1.5"),
			Saturday:    dec("2"),
			Sunday:      dec("2"),
			Holiday:     dec("2.5"),
			NightShift:  dec("1.2"),
			DoubleShift: dec("2"),
		},
	}

	cases := []struct {
		name string
		w    WorkedHours
		want string
	}{
		{"weekday", WorkedHours{Day: DayWeekday}, "1.5"},
		{"saturday", WorkedHours{Day: DaySaturday}, "2"},
		{"holiday", WorkedHours{Day: DayHoliday}, "2.5"},
		{"weekday night", WorkedHours{Day: DayWeekday, NightShift: true}, "1.8"},
		{"holiday night double", WorkedHours{Day: DayHoliday, NightShift: true, DoubleShift: true}, "6"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := tiered.Multiplier(c.w)
			assert.True(t, got.Equal(dec(c.want)), "got %s", got)
		})
	}

	// Non-tiered bases use the default multiplier regardless of day class.
	flat := Config{CalculationBase: BaseFixedAmount, DefaultMultiplier: dec("1.5")}
	assert.True(t, flat.Multiplier(WorkedHours{Day: DayHoliday}).Equal(dec("1.5")))

	// A missing multiplier degrades to 1, never 0.
	bare := Config{CalculationBase: BaseFixedAmount}
	assert.True(t, bare.Multiplier(WorkedHours{}).Equal(decimal.NewFromInt(1)))
}

func TestCapHours(t *testing.T) {
	t.Parallel()

	caps := Caps{Daily: dec("4"), Weekly: dec("12"), Monthly: dec("40")}

	cases := []struct {
		name      string
		hours     string
		weekUsed  string
		monthUsed string
		want      string
	}{
		{"under all caps", "3", "0", "0", "3"},
		{"daily cap truncates", "6", "0", "0", "4"},
		{"weekly remainder truncates", "4", "10", "0", "2"},
		{"weekly exhausted", "4", "12", "0", "0"},
		{"weekly overused clamps to zero", "4", "15", "0", "0"},
		{"monthly remainder truncates", "4", "0", "39", "1"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := caps.CapHours(dec(c.hours), dec(c.weekUsed), dec(c.monthUsed))
			assert.True(t, got.Equal(dec(c.want)), "got %s", got)
		})
	}

	// Zero caps are uncapped.
	none := Caps{}
	assert.True(t, none.CapHours(dec("16"), dec("100"), dec("100")).Equal(dec("16")))
}

func TestEligible(t *testing.T) {
	t.Parallel()

	e := Eligibility{
		MinServiceDays:   90,
		ExcludeEmployees: []string{"emp-2"},
		ExcludeRoles:     []string{"manager"},
		MinHoursForOT:    dec("0.5"),
	}

	ok := EligibilityInput{EmployeeID: "emp-1", Role: "staff", ServiceDays: 120}
	assert.True(t, e.Eligible(ok, dec("2")))

	assert.False(t, e.Eligible(EligibilityInput{EmployeeID: "emp-1", Role: "staff", ServiceDays: 30}, dec("2")))
	assert.False(t, e.Eligible(EligibilityInput{EmployeeID: "emp-2", Role: "staff", ServiceDays: 120}, dec("2")))
	assert.False(t, e.Eligible(EligibilityInput{EmployeeID: "emp-1", Role: "manager", ServiceDays: 120}, dec("2")))
	assert.False(t, e.Eligible(ok, dec("0.25")))
}

func TestApprovalWorkflowSplit(t *testing.T) {
	t.Parallel()

	a := ApprovalWorkflow{Required: true, AutoApproveUpTo: dec("2")}

	auto, pending := a.Split(dec("1.5"))
	assert.True(t, auto.Equal(dec("1.5")))
	assert.True(t, pending.IsZero())

	auto, pending = a.Split(dec("5"))
	assert.True(t, auto.Equal(dec("2")))
	assert.True(t, pending.Equal(dec("3")))

	noApproval := ApprovalWorkflow{Required: false}
	auto, pending = noApproval.Split(dec("5"))
	assert.True(t, auto.Equal(dec("5")))
	assert.True(t, pending.IsZero())
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	cfg := Config{
		CalculationBase:    BaseFixedAmount,
		FixedAmountPerHour: dec("150"),
		DefaultMultiplier:  dec("1.5"),
		Caps:               Caps{Daily: dec("4")},
		ApprovalWorkflow:   ApprovalWorkflow{Required: true, AutoApproveUpTo: dec("2")},
	}

	in := EligibilityInput{EmployeeID: "emp-1", Role: "staff", ServiceDays: 365}

	// 6 worked hours cap to 4; amount uses the capped hours.
	res := cfg.Evaluate(in, WorkedHours{Hours: dec("6"), Day: DayWeekday}, testSalary(), decimal.Zero, decimal.Zero)
	assert.True(t, res.EligibleHours.Equal(dec("4")))
	assert.True(t, res.AutoApprovedHours.Equal(dec("2")))
	assert.True(t, res.PendingHours.Equal(dec("2")))
	assert.True(t, res.Amount.Equal(dec("900")), "got %s", res.Amount) // 150 * 1.5 * 4

	// Ineligible employees get a zero result.
	cfg.Eligibility = Eligibility{ExcludeEmployees: []string{"emp-1"}}
	res = cfg.Evaluate(in, WorkedHours{Hours: dec("6")}, testSalary(), decimal.Zero, decimal.Zero)
	assert.True(t, res.EligibleHours.IsZero())
	assert.True(t, res.Amount.IsZero())
}

func TestEvaluate_TieredCapBeforeMultiplier(t *testing.T) {
	t.Parallel()

	cfg := Config{
		CalculationBase: BaseTieredRates,
		TieredRates:     TieredRates{Weekday: dec("1.5"), Holiday: dec("2.5")},
		Caps:            Caps{Daily: dec("2")},
	}

	in := EligibilityInput{EmployeeID: "emp-1"}

	// 5 holiday hours cap to 2 before the 2.5x tier applies:
	// 250/hr * 2.5 * 2 = 1250, not 250 * 2.5 * 5.
	res := cfg.Evaluate(in, WorkedHours{Hours: dec("5"), Day: DayHoliday}, testSalary(), decimal.Zero, decimal.Zero)
	assert.True(t, res.EligibleHours.Equal(dec("2")))
	assert.True(t, res.Amount.Equal(dec("1250")), "got %s", res.Amount)
}
