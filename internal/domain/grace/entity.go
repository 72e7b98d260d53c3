package grace

import (
	"encoding/json"
	"strings"
	"time"
)

// ViolationType enum
type ViolationType string

const (
	ViolationLateLogin   ViolationType = "LATE_LOGIN"
	ViolationEarlyLogout ViolationType = "EARLY_LOGOUT"
)

// ResetCycle enum - the window over which a grace count is tracked
type ResetCycle string

const (
	ResetMonthly ResetCycle = "MONTHLY"
	ResetWeekly  ResetCycle = "WEEKLY"
	ResetNever   ResetCycle = "NEVER"
)

// GraceType enum
type GraceType string

const (
	GracePerOccurrence GraceType = "PER_OCCURRENCE"
	GraceCountBased    GraceType = "COUNT_BASED"
	GraceCombined      GraceType = "COMBINED"
)

// ReasonCode explains a grace decision
type ReasonCode string

const (
	ReasonGraceApplied     ReasonCode = "GRACE_APPLIED"
	ReasonHalfDay          ReasonCode = "HALF_DAY"
	ReasonAbsent           ReasonCode = "ABSENT"
	ReasonLeaveApproved    ReasonCode = "LEAVE_APPROVED"
	ReasonDisabled         ReasonCode = "DISABLED"
	ReasonExceededGrace    ReasonCode = "EXCEEDED_GRACE"
	ReasonExceededCount    ReasonCode = "EXCEEDED_COUNT"
	ReasonExceededCombined ReasonCode = "EXCEEDED_COMBINED"
	ReasonUnknownType      ReasonCode = "UNKNOWN_TYPE"
)

// Rule is the effective grace policy for a single violation type, with every
// field materialized. Stored configs hold RulePatch values instead; a Rule
// only exists after resolution fills the gaps.
type Rule struct {
	Enabled            bool       `json:"enabled"`
	GraceMinutesPerDay int        `json:"graceMinutesPerDay"`
	GraceCountPerMonth int        `json:"graceCountPerMonth"`
	ResetCycle         ResetCycle `json:"resetCycle"`
	GraceType          GraceType  `json:"graceType"`
	WeekStartDay       int        `json:"weekStartDay"` // 0=Sunday .. 6=Saturday
}

// Patch converts a full rule into its stored form with every field set.
func (r Rule) Patch() *RulePatch {
	return &RulePatch{
		Enabled:            &r.Enabled,
		GraceMinutesPerDay: &r.GraceMinutesPerDay,
		GraceCountPerMonth: &r.GraceCountPerMonth,
		ResetCycle:         &r.ResetCycle,
		GraceType:          &r.GraceType,
		WeekStartDay:       &r.WeekStartDay,
	}
}

// RulePatch is the stored form of a rule. A field left unset is not a zero
// value: it falls back to the default for the violation type when the config
// is resolved, so a partially specified rule keeps the default enablement,
// cycle and type.
type RulePatch struct {
	Enabled            *bool       `json:"enabled,omitempty"`
	GraceMinutesPerDay *int        `json:"graceMinutesPerDay,omitempty"`
	GraceCountPerMonth *int        `json:"graceCountPerMonth,omitempty"`
	ResetCycle         *ResetCycle `json:"resetCycle,omitempty"`
	GraceType          *GraceType  `json:"graceType,omitempty"`
	WeekStartDay       *int        `json:"weekStartDay,omitempty"`
}

// Apply lays the patch's supplied fields over base and returns the result.
func (p *RulePatch) Apply(base Rule) Rule {
	if p == nil {
		return base
	}
	if p.Enabled != nil {
		base.Enabled = *p.Enabled
	}
	if p.GraceMinutesPerDay != nil {
		base.GraceMinutesPerDay = *p.GraceMinutesPerDay
	}
	if p.GraceCountPerMonth != nil {
		base.GraceCountPerMonth = *p.GraceCountPerMonth
	}
	if p.ResetCycle != nil {
		base.ResetCycle = *p.ResetCycle
	}
	if p.GraceType != nil {
		base.GraceType = *p.GraceType
	}
	if p.WeekStartDay != nil {
		base.WeekStartDay = *p.WeekStartDay
	}
	return base
}

// Config pairs the stored late-login and early-logout rules. Persisted as
// JSONB on fine modal templates and on payroll settings.
type Config struct {
	LateLogin   *RulePatch `json:"lateLogin,omitempty"`
	EarlyLogout *RulePatch `json:"earlyLogout,omitempty"`
}

// IsEmpty reports whether the config carries no rule at all.
func (c *Config) IsEmpty() bool {
	return c == nil || (c.LateLogin == nil && c.EarlyLogout == nil)
}

// Patch returns the stored sub-rule for the given violation type, or nil.
func (c *Config) Patch(v ViolationType) *RulePatch {
	if c == nil {
		return nil
	}
	if v == ViolationLateLogin {
		return c.LateLogin
	}
	return c.EarlyLogout
}

// DefaultShiftGraceMinutes is the per-day allowance used when the employee
// has no shift assigned or the shift leaves grace_minutes unset.
const DefaultShiftGraceMinutes = 10

// DefaultLateLogin is the hard-coded late-login baseline: patched fields of
// a winning config override it, everything else stays.
func DefaultLateLogin() Rule {
	return Rule{
		Enabled:            true,
		GraceMinutesPerDay: DefaultShiftGraceMinutes,
		GraceCountPerMonth: 3,
		ResetCycle:         ResetMonthly,
		GraceType:          GracePerOccurrence,
		WeekStartDay:       1,
	}
}

// DefaultEarlyLogout is the hard-coded early-logout baseline: disabled.
func DefaultEarlyLogout() Rule {
	return Rule{
		Enabled:            false,
		GraceMinutesPerDay: 0,
		GraceCountPerMonth: 0,
		ResetCycle:         ResetMonthly,
		GraceType:          GracePerOccurrence,
		WeekStartDay:       1,
	}
}

// DefaultConfig is what a company sees before configuring anything.
func DefaultConfig() Config {
	return Config{
		LateLogin:   DefaultLateLogin().Patch(),
		EarlyLogout: DefaultEarlyLogout().Patch(),
	}
}

// ParseConfig parses a stored grace config blob. Malformed or blank data is
// treated as absent, never as an error: resolution falls through to the next
// precedence level instead of failing the caller.
func ParseConfig(raw []byte) *Config {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil
	}
	if cfg.IsEmpty() {
		return nil
	}
	return &cfg
}

// FineModal is a company-scoped template bundling a grace config with the
// fine charged once grace is exhausted.
type FineModal struct {
	ID                    string
	CompanyID             string
	Name                  string
	Description           string
	IsActive              bool
	GraceConfig           *Config
	FineCalculationMethod string // per_minute | fixed_per_occurrence
	FineFixedAmount       *float64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
