package grace

import (
	"context"
	"testing"
	"time"

	"github.com/bizzpass/crm-backend-go/internal/domain/grace"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID  = "company-1"
	testEmployeeID = "emp-1"
)

func authedContext(t *testing.T) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"company_id": testCompanyID,
		"user_id":    "user-1",
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fakeSourceRepo struct {
	staffCfg     *grace.Config
	deptCfg      *grace.Config
	companyCfg   *grace.Config
	shiftMinutes int
	violations   int

	countedFrom time.Time
	countedTo   time.Time
}

func (f *fakeSourceRepo) StaffConfig(ctx context.Context, companyID, employeeID string) (*grace.Config, error) {
	return f.staffCfg, nil
}

func (f *fakeSourceRepo) DepartmentConfig(ctx context.Context, companyID, employeeID string) (*grace.Config, error) {
	return f.deptCfg, nil
}

func (f *fakeSourceRepo) CompanyConfig(ctx context.Context, companyID string) (*grace.Config, error) {
	return f.companyCfg, nil
}

func (f *fakeSourceRepo) ShiftGraceMinutes(ctx context.Context, companyID, employeeID string) (int, error) {
	return f.shiftMinutes, nil
}

func (f *fakeSourceRepo) CountViolations(ctx context.Context, companyID, employeeID string, violation grace.ViolationType, from, to time.Time) (int, error) {
	f.countedFrom = from
	f.countedTo = to
	return f.violations, nil
}

type fakeFineModalRepo struct {
	modals map[string]grace.FineModal
}

func newFakeFineModalRepo() *fakeFineModalRepo {
	return &fakeFineModalRepo{modals: make(map[string]grace.FineModal)}
}

func (f *fakeFineModalRepo) Create(ctx context.Context, modal grace.FineModal) (grace.FineModal, error) {
	for _, m := range f.modals {
		if m.CompanyID == modal.CompanyID && m.Name == modal.Name {
			return grace.FineModal{}, grace.ErrFineModalNameExists
		}
	}
	modal.ID = "fm-" + modal.Name
	f.modals[modal.ID] = modal
	return modal, nil
}

func (f *fakeFineModalRepo) GetByID(ctx context.Context, id, companyID string) (grace.FineModal, error) {
	m, ok := f.modals[id]
	if !ok || m.CompanyID != companyID {
		return grace.FineModal{}, grace.ErrFineModalNotFound
	}
	return m, nil
}

func (f *fakeFineModalRepo) List(ctx context.Context, companyID string) ([]grace.FineModal, error) {
	var out []grace.FineModal
	for _, m := range f.modals {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeFineModalRepo) Update(ctx context.Context, companyID string, req grace.UpdateFineModalRequest) (grace.FineModal, error) {
	m, ok := f.modals[req.ID]
	if !ok || m.CompanyID != companyID {
		return grace.FineModal{}, grace.ErrFineModalNotFound
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.GraceConfig != nil {
		m.GraceConfig = req.GraceConfig
	}
	f.modals[req.ID] = m
	return m, nil
}

func (f *fakeFineModalRepo) Delete(ctx context.Context, id, companyID string) error {
	m, ok := f.modals[id]
	if !ok || m.CompanyID != companyID {
		return grace.ErrFineModalNotFound
	}
	delete(f.modals, id)
	return nil
}

func configWithMinutes(minutes, count int) *grace.Config {
	rule := grace.Rule{
		Enabled:            true,
		GraceMinutesPerDay: minutes,
		GraceCountPerMonth: count,
		ResetCycle:         grace.ResetMonthly,
		GraceType:          grace.GracePerOccurrence,
		WeekStartDay:       1,
	}
	return &grace.Config{LateLogin: rule.Patch()}
}

func TestResolveConfig_Precedence(t *testing.T) {
	ctx := authedContext(t)

	source := &fakeSourceRepo{
		staffCfg:     configWithMinutes(20, 4),
		deptCfg:      configWithMinutes(15, 3),
		companyCfg:   configWithMinutes(12, 2),
		shiftMinutes: 10,
	}
	service := NewGraceService(newFakeFineModalRepo(), source)

	cfg, err := service.ResolveConfig(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.LateLogin.GraceMinutesPerDay)

	source.staffCfg = nil
	cfg, err = service.ResolveConfig(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.LateLogin.GraceMinutesPerDay)

	source.deptCfg = nil
	source.companyCfg = nil
	cfg, err = service.ResolveConfig(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.LateLogin.GraceMinutesPerDay)
}

func TestResolve_GraceApplied(t *testing.T) {
	ctx := authedContext(t)

	source := &fakeSourceRepo{staffCfg: configWithMinutes(15, 3), violations: 1}
	service := NewGraceService(newFakeFineModalRepo(), source)

	resp, err := service.Resolve(ctx, grace.ResolveGraceRequest{
		EmployeeID:       testEmployeeID,
		ViolationType:    string(grace.ViolationLateLogin),
		Minutes:          12,
		Date:             "2025-06-18",
		AttendanceStatus: "PRESENT",
	})
	require.NoError(t, err)

	assert.True(t, resp.AppliesGrace)
	assert.Equal(t, string(grace.ReasonGraceApplied), resp.Reason)
	assert.Equal(t, 1, resp.ViolationsInCycle)
	assert.Equal(t, 15, resp.EffectiveRule.GraceMinutesPerDay)
	assert.Equal(t, "2025-06-01", resp.CycleStart)

	// The violation count window runs from the cycle start to the event date.
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), source.countedFrom)
}

func TestResolve_PartialStoredConfig(t *testing.T) {
	ctx := authedContext(t)

	// A stored config that only sets the minutes still resolves to an
	// enabled rule with the default count, cycle and type.
	source := &fakeSourceRepo{
		staffCfg:     grace.ParseConfig([]byte(`{"lateLogin":{"graceMinutesPerDay":15}}`)),
		shiftMinutes: 10,
	}
	service := NewGraceService(newFakeFineModalRepo(), source)

	resp, err := service.Resolve(ctx, grace.ResolveGraceRequest{
		EmployeeID:       testEmployeeID,
		ViolationType:    string(grace.ViolationLateLogin),
		Minutes:          5,
		Date:             "2025-06-18",
		AttendanceStatus: "PRESENT",
	})
	require.NoError(t, err)
	assert.True(t, resp.AppliesGrace)
	assert.Equal(t, string(grace.ReasonGraceApplied), resp.Reason)
	assert.True(t, resp.EffectiveRule.Enabled)
	assert.Equal(t, 15, resp.EffectiveRule.GraceMinutesPerDay)
	assert.Equal(t, 3, resp.EffectiveRule.GraceCountPerMonth)
	assert.Equal(t, grace.ResetMonthly, resp.EffectiveRule.ResetCycle)
	assert.Equal(t, grace.GracePerOccurrence, resp.EffectiveRule.GraceType)
}

func TestResolve_ExceededGrace(t *testing.T) {
	ctx := authedContext(t)

	source := &fakeSourceRepo{staffCfg: configWithMinutes(10, 3)}
	service := NewGraceService(newFakeFineModalRepo(), source)

	resp, err := service.Resolve(ctx, grace.ResolveGraceRequest{
		EmployeeID:       testEmployeeID,
		ViolationType:    string(grace.ViolationLateLogin),
		Minutes:          25,
		Date:             "2025-06-18",
		AttendanceStatus: "PRESENT",
	})
	require.NoError(t, err)
	assert.False(t, resp.AppliesGrace)
	assert.Equal(t, string(grace.ReasonExceededGrace), resp.Reason)
}

func TestResolve_HalfDayBlocks(t *testing.T) {
	ctx := authedContext(t)

	source := &fakeSourceRepo{staffCfg: configWithMinutes(60, 10)}
	service := NewGraceService(newFakeFineModalRepo(), source)

	resp, err := service.Resolve(ctx, grace.ResolveGraceRequest{
		EmployeeID:       testEmployeeID,
		ViolationType:    string(grace.ViolationLateLogin),
		Minutes:          5,
		Date:             "2025-06-18",
		AttendanceStatus: "HALF_DAY",
	})
	require.NoError(t, err)
	assert.False(t, resp.AppliesGrace)
	assert.Equal(t, string(grace.ReasonHalfDay), resp.Reason)
}

func TestResolve_ValidatesRequest(t *testing.T) {
	ctx := authedContext(t)
	service := NewGraceService(newFakeFineModalRepo(), &fakeSourceRepo{})

	_, err := service.Resolve(ctx, grace.ResolveGraceRequest{
		EmployeeID:    "",
		ViolationType: "BOGUS",
		Minutes:       -1,
		Date:          "not-a-date",
	})
	assert.Error(t, err)
}

func TestCreateFineModal_Defaults(t *testing.T) {
	ctx := authedContext(t)
	repo := newFakeFineModalRepo()
	service := NewGraceService(repo, &fakeSourceRepo{})

	resp, err := service.CreateFineModal(ctx, grace.CreateFineModalRequest{Name: "Standard Grace"})
	require.NoError(t, err)

	assert.Equal(t, "Standard Grace", resp.Name)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "per_minute", resp.FineCalculationMethod)
	require.NotNil(t, resp.GraceConfig.LateLogin)
	require.NotNil(t, resp.GraceConfig.LateLogin.GraceMinutesPerDay)
	assert.Equal(t, 10, *resp.GraceConfig.LateLogin.GraceMinutesPerDay)

	_, err = service.CreateFineModal(ctx, grace.CreateFineModalRequest{Name: "Standard Grace"})
	assert.ErrorIs(t, err, grace.ErrFineModalNameExists)
}
