package payroll

import (
	"testing"

	"github.com/bizzpass/crm-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettings_Unconfigured(t *testing.T) {
	env := newRunTestEnv(t)
	env.repo.settings = nil

	resp, err := env.service.GetSettings(env.ctx)
	require.NoError(t, err)
	assert.False(t, resp.Configured)
	assert.Nil(t, resp.Settings)
}

func TestUpsertSettings_CreatesWithDefaults(t *testing.T) {
	env := newRunTestEnv(t)
	env.repo.settings = nil

	payDay := 5
	settings, err := env.service.UpsertSettings(env.ctx, payroll.UpsertSettingsRequest{
		PayDay: &payDay,
	})
	require.NoError(t, err)

	// The one provided field is applied; everything else takes the baseline.
	assert.Equal(t, 5, settings.PayDay)
	assert.Equal(t, "monthly", settings.PayCycleType)
	assert.Equal(t, 25, settings.AttendanceCutoffDay)
	assert.Equal(t, payroll.Basis26Days, settings.WorkingDaysBasis)
	assert.True(t, settings.WorkingHoursPerDay.Equal(dec("8")))
	assert.Equal(t, "per_day", settings.LOPCalculationMethod)
	assert.True(t, settings.LOPDeductionMultiplier.Equal(dec("1")))
	assert.True(t, settings.WeekdayOTMultiplier.Equal(dec("1.5")))
	assert.True(t, settings.HolidayOTMultiplier.Equal(dec("2.5")))
	assert.True(t, settings.PFEnabled)
	assert.True(t, settings.PFEmployeeRate.Equal(dec("12")))
	assert.True(t, settings.PFWageCeiling.Equal(dec("15000")))
	assert.True(t, settings.ESIEnabled)
	assert.True(t, settings.ESIEmployeeRate.Equal(dec("0.75")))
	assert.True(t, settings.ESIWageCeiling.Equal(dec("21000")))
	assert.Equal(t, "INR", settings.Currency)

	resp, err := env.service.GetSettings(env.ctx)
	require.NoError(t, err)
	assert.True(t, resp.Configured)
}

func TestUpsertSettings_PartialUpdatePreservesExisting(t *testing.T) {
	env := newRunTestEnv(t)
	env.repo.settings = nil

	payDay := 5
	_, err := env.service.UpsertSettings(env.ctx, payroll.UpsertSettingsRequest{PayDay: &payDay})
	require.NoError(t, err)

	currency := "USD"
	settings, err := env.service.UpsertSettings(env.ctx, payroll.UpsertSettingsRequest{Currency: &currency})
	require.NoError(t, err)

	assert.Equal(t, "USD", settings.Currency)
	assert.Equal(t, 5, settings.PayDay)
}

func TestUpsertSettings_InvalidBasis(t *testing.T) {
	env := newRunTestEnv(t)

	basis := "13_days"
	_, err := env.service.UpsertSettings(env.ctx, payroll.UpsertSettingsRequest{WorkingDaysBasis: &basis})
	assert.Error(t, err)
}
