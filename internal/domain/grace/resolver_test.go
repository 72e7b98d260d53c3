package grace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedRule(minutes int) Rule {
	return Rule{
		Enabled:            true,
		GraceMinutesPerDay: minutes,
		GraceCountPerMonth: 5,
		ResetCycle:         ResetMonthly,
		GraceType:          GracePerOccurrence,
		WeekStartDay:       1,
	}
}

func TestResolveLevels_Precedence(t *testing.T) {
	t.Parallel()

	staffCfg := &Config{LateLogin: namedRule(20).Patch()}
	deptCfg := &Config{LateLogin: namedRule(15).Patch()}
	companyCfg := &Config{LateLogin: namedRule(12).Patch()}

	got := ResolveLevels(staffCfg, deptCfg, companyCfg, 10)
	assert.Equal(t, 20, got.LateLogin.GraceMinutesPerDay)

	got = ResolveLevels(nil, deptCfg, companyCfg, 10)
	assert.Equal(t, 15, got.LateLogin.GraceMinutesPerDay)

	got = ResolveLevels(nil, nil, companyCfg, 10)
	assert.Equal(t, 12, got.LateLogin.GraceMinutesPerDay)
}

func TestResolveLevels_ShiftFallback(t *testing.T) {
	t.Parallel()

	got := ResolveLevels(nil, nil, nil, 7)
	assert.True(t, got.LateLogin.Enabled)
	assert.Equal(t, 7, got.LateLogin.GraceMinutesPerDay)
	assert.False(t, got.EarlyLogout.Enabled)
}

func TestResolveLevels_WinnerTakesAll(t *testing.T) {
	t.Parallel()

	// Staff config carries only an early-logout rule; its late-login rule
	// fills from the defaults, never from the department config.
	staffCfg := &Config{EarlyLogout: namedRule(30).Patch()}
	deptCfg := &Config{LateLogin: namedRule(99).Patch()}

	got := ResolveLevels(staffCfg, deptCfg, nil, 8)
	assert.Equal(t, 30, got.EarlyLogout.GraceMinutesPerDay)
	assert.Equal(t, 8, got.LateLogin.GraceMinutesPerDay)
	assert.NotEqual(t, 99, got.LateLogin.GraceMinutesPerDay)
}

func TestResolveLevels_PartialRuleMergesDefaults(t *testing.T) {
	t.Parallel()

	// A stored rule that only sets the minutes keeps the default enablement,
	// count, cycle and type.
	cfg := ParseConfig([]byte(`{"lateLogin":{"graceMinutesPerDay":15}}`))
	require.NotNil(t, cfg)

	got := ResolveLevels(cfg, nil, nil, 10)
	assert.True(t, got.LateLogin.Enabled)
	assert.Equal(t, 15, got.LateLogin.GraceMinutesPerDay)
	assert.Equal(t, 3, got.LateLogin.GraceCountPerMonth)
	assert.Equal(t, ResetMonthly, got.LateLogin.ResetCycle)
	assert.Equal(t, GracePerOccurrence, got.LateLogin.GraceType)

	granted, reason := Decide(ViolationLateLogin, 5, got, 0, "PRESENT", false)
	assert.True(t, granted)
	assert.Equal(t, ReasonGraceApplied, reason)
}

func TestResolveLevels_PartialRuleMinutesFallBackToShift(t *testing.T) {
	t.Parallel()

	// Minutes left unset in the winning rule come from the shift fallback,
	// not the hard default.
	cfg := ParseConfig([]byte(`{"lateLogin":{"graceCountPerMonth":5}}`))
	require.NotNil(t, cfg)

	got := ResolveLevels(cfg, nil, nil, 25)
	assert.Equal(t, 25, got.LateLogin.GraceMinutesPerDay)
	assert.Equal(t, 5, got.LateLogin.GraceCountPerMonth)
	assert.True(t, got.LateLogin.Enabled)
}

func TestResolve_SkipsEmptyLevels(t *testing.T) {
	t.Parallel()

	providers := []Provider{
		func() *Config { return nil },
		func() *Config { return &Config{} },
		func() *Config { return &Config{LateLogin: namedRule(25).Patch()} },
	}

	got := Resolve(providers, 10)
	assert.Equal(t, 25, got.LateLogin.GraceMinutesPerDay)
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg := ParseConfig([]byte(`{"lateLogin":{"enabled":true,"graceMinutesPerDay":12,"graceCountPerMonth":4,"resetCycle":"MONTHLY","graceType":"PER_OCCURRENCE"}}`))
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.LateLogin)
	require.NotNil(t, cfg.LateLogin.GraceMinutesPerDay)
	assert.Equal(t, 12, *cfg.LateLogin.GraceMinutesPerDay)
	require.NotNil(t, cfg.LateLogin.GraceCountPerMonth)
	assert.Equal(t, 4, *cfg.LateLogin.GraceCountPerMonth)
	assert.Nil(t, cfg.LateLogin.WeekStartDay)

	// Malformed or blank blobs are treated as absent.
	assert.Nil(t, ParseConfig([]byte(`{not json`)))
	assert.Nil(t, ParseConfig([]byte(``)))
	assert.Nil(t, ParseConfig([]byte(`   `)))
	assert.Nil(t, ParseConfig([]byte(`{}`)))
	assert.Nil(t, ParseConfig([]byte(`null`)))
}

func TestConfigIsEmpty(t *testing.T) {
	t.Parallel()

	var nilCfg *Config
	assert.True(t, nilCfg.IsEmpty())
	assert.True(t, (&Config{}).IsEmpty())

	patch := namedRule(5).Patch()
	assert.False(t, (&Config{LateLogin: patch}).IsEmpty())
	assert.False(t, (&Config{EarlyLogout: patch}).IsEmpty())
}

func TestRulePatchApply(t *testing.T) {
	t.Parallel()

	base := DefaultLateLogin()

	var nilPatch *RulePatch
	assert.Equal(t, base, nilPatch.Apply(base))

	minutes := 45
	cycle := ResetWeekly
	patch := &RulePatch{GraceMinutesPerDay: &minutes, ResetCycle: &cycle}

	got := patch.Apply(base)
	assert.Equal(t, 45, got.GraceMinutesPerDay)
	assert.Equal(t, ResetWeekly, got.ResetCycle)
	assert.True(t, got.Enabled)
	assert.Equal(t, 3, got.GraceCountPerMonth)
	assert.Equal(t, GracePerOccurrence, got.GraceType)
}
