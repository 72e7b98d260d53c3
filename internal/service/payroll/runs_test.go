package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bizzpass/crm-backend-go/internal/domain/payroll"
	"github.com/bizzpass/crm-backend-go/internal/domain/staff"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "company-1"
	testUserID    = "user-1"
)

func authedContext(t *testing.T, companyID, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"company_id": companyID,
		"user_id":    userID,
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fakePayrollRepo is an in-memory PayrollRepository covering the run state
// machine and transaction upsert semantics the service relies on.
type fakePayrollRepo struct {
	settings     *payroll.PayrollSettings
	structures   map[string]payroll.EmployeeSalaryStructure // by employeeID
	runs         map[string]payroll.PayrollRun
	transactions map[string]payroll.PayrollTransaction // by runID|employeeID
	nextRunID    int
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		structures:   make(map[string]payroll.EmployeeSalaryStructure),
		runs:         make(map[string]payroll.PayrollRun),
		transactions: make(map[string]payroll.PayrollTransaction),
	}
}

func txnKey(runID, employeeID string) string {
	return runID + "|" + employeeID
}

func (f *fakePayrollRepo) GetSettings(ctx context.Context, companyID string) (payroll.PayrollSettings, error) {
	if f.settings == nil || f.settings.CompanyID != companyID {
		return payroll.PayrollSettings{}, payroll.ErrSettingsNotConfigured
	}
	return *f.settings, nil
}

func (f *fakePayrollRepo) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	f.settings = &settings
	return settings, nil
}

func (f *fakePayrollRepo) CreateComponent(ctx context.Context, c payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	return c, nil
}

func (f *fakePayrollRepo) GetComponentByID(ctx context.Context, id, companyID string) (payroll.SalaryComponent, error) {
	return payroll.SalaryComponent{}, payroll.ErrComponentNotFound
}

func (f *fakePayrollRepo) ListComponents(ctx context.Context, companyID string, kind *payroll.ComponentKind, activeOnly bool) ([]payroll.SalaryComponent, error) {
	return nil, nil
}

func (f *fakePayrollRepo) UpdateComponent(ctx context.Context, companyID string, req payroll.UpdateComponentRequest) (payroll.SalaryComponent, error) {
	return payroll.SalaryComponent{}, payroll.ErrComponentNotFound
}

func (f *fakePayrollRepo) DeactivateComponent(ctx context.Context, id, companyID string) error {
	return payroll.ErrComponentNotFound
}

func (f *fakePayrollRepo) CreateSalaryModal(ctx context.Context, m payroll.SalaryModal) (payroll.SalaryModal, error) {
	return m, nil
}

func (f *fakePayrollRepo) GetSalaryModalByID(ctx context.Context, id, companyID string) (payroll.SalaryModal, error) {
	return payroll.SalaryModal{}, payroll.ErrModalNotFound
}

func (f *fakePayrollRepo) ListSalaryModals(ctx context.Context, companyID string) ([]payroll.SalaryModal, error) {
	return nil, nil
}

func (f *fakePayrollRepo) UpdateSalaryModal(ctx context.Context, companyID string, req payroll.UpdateSalaryModalRequest) (payroll.SalaryModal, error) {
	return payroll.SalaryModal{}, payroll.ErrModalNotFound
}

func (f *fakePayrollRepo) DeleteSalaryModal(ctx context.Context, id, companyID string) error {
	return payroll.ErrModalNotFound
}

func (f *fakePayrollRepo) CreateStructure(ctx context.Context, s payroll.EmployeeSalaryStructure) (payroll.EmployeeSalaryStructure, error) {
	f.structures[s.EmployeeID] = s
	return s, nil
}

func (f *fakePayrollRepo) GetCurrentStructure(ctx context.Context, employeeID, companyID string) (payroll.EmployeeSalaryStructure, error) {
	s, ok := f.structures[employeeID]
	if !ok || s.CompanyID != companyID {
		return payroll.EmployeeSalaryStructure{}, payroll.ErrStructureNotFound
	}
	return s, nil
}

func (f *fakePayrollRepo) ListStructures(ctx context.Context, companyID string, filter payroll.StructureFilter) ([]payroll.EmployeeSalaryStructure, error) {
	return nil, nil
}

func (f *fakePayrollRepo) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	for _, existing := range f.runs {
		if existing.CompanyID == run.CompanyID && existing.Month == run.Month && existing.Year == run.Year {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
	}
	f.nextRunID++
	run.ID = fmt.Sprintf("run-%d", f.nextRunID)
	run.Status = payroll.RunStatusDraft
	f.runs[run.ID] = run
	return run, nil
}

func (f *fakePayrollRepo) GetRunByID(ctx context.Context, id, companyID string) (payroll.PayrollRun, error) {
	run, ok := f.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (f *fakePayrollRepo) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, error) {
	var out []payroll.PayrollRun
	for _, run := range f.runs {
		if run.CompanyID == companyID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (f *fakePayrollRepo) MarkRunProcessing(ctx context.Context, id, companyID string) error {
	run, ok := f.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.ErrRunNotFound
	}
	if run.Status != payroll.RunStatusDraft && run.Status != payroll.RunStatusProcessing {
		return payroll.ErrRunNotCalculable
	}
	run.Status = payroll.RunStatusProcessing
	f.runs[id] = run
	return nil
}

func (f *fakePayrollRepo) CompleteRun(ctx context.Context, id, companyID string, result payroll.CalculateRunResult, calculatedBy string, at time.Time) error {
	run, ok := f.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.ErrRunNotFound
	}
	if run.Status != payroll.RunStatusProcessing {
		return payroll.ErrRunNotCalculable
	}
	run.Status = payroll.RunStatusCalculated
	run.TotalEmployees = result.TotalEmployees
	run.TotalGross = result.TotalGross
	run.TotalDeductions = result.TotalDeductions
	run.TotalNetPay = result.TotalNetPay
	run.CalculatedBy = &calculatedBy
	run.CalculatedAt = &at
	f.runs[id] = run
	return nil
}

func (f *fakePayrollRepo) ApproveRun(ctx context.Context, id, companyID string, approvedBy string, at time.Time) error {
	run, ok := f.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.ErrRunNotFound
	}
	if run.Status != payroll.RunStatusCalculated {
		return payroll.ErrRunNotApprovable
	}
	run.Status = payroll.RunStatusApproved
	run.ApprovedBy = &approvedBy
	run.ApprovedAt = &at
	f.runs[id] = run
	for key, txn := range f.transactions {
		if txn.PayrollRunID == id && txn.Status == payroll.TxnStatusCalculated {
			txn.Status = payroll.TxnStatusApproved
			f.transactions[key] = txn
		}
	}
	return nil
}

func (f *fakePayrollRepo) UpsertTransaction(ctx context.Context, txn payroll.PayrollTransaction) error {
	txn.Status = payroll.TxnStatusCalculated
	f.transactions[txnKey(txn.PayrollRunID, txn.EmployeeID)] = txn
	return nil
}

func (f *fakePayrollRepo) GetTransactionByID(ctx context.Context, id, companyID string) (payroll.PayrollTransaction, error) {
	return payroll.PayrollTransaction{}, payroll.ErrTransactionNotFound
}

func (f *fakePayrollRepo) ListTransactionsByRun(ctx context.Context, runID, companyID string) ([]payroll.PayrollTransaction, error) {
	var out []payroll.PayrollTransaction
	for _, txn := range f.transactions {
		if txn.PayrollRunID == runID && txn.CompanyID == companyID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (f *fakePayrollRepo) UpdateTransaction(ctx context.Context, companyID string, req payroll.UpdateTransactionRequest) error {
	return payroll.ErrTransactionNotFound
}

type fakeStaffDirectory struct {
	employees []staff.Staff
}

func (f *fakeStaffDirectory) ListEligible(ctx context.Context, companyID string, filter staff.EligibilityFilter) ([]staff.Staff, error) {
	var out []staff.Staff
	for _, emp := range f.employees {
		if emp.CompanyID == companyID && emp.Status == "active" {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeStaffDirectory) GetByID(ctx context.Context, id, companyID string) (staff.Staff, error) {
	for _, emp := range f.employees {
		if emp.ID == id && emp.CompanyID == companyID {
			return emp, nil
		}
	}
	return staff.Staff{}, staff.ErrStaffNotFound
}

type fakeAttendanceStore struct {
	summaries map[string]payroll.AttendanceSummary
}

func (f *fakeAttendanceStore) Summarize(ctx context.Context, companyID, employeeID string, month, year int) (payroll.AttendanceSummary, error) {
	if s, ok := f.summaries[employeeID]; ok {
		return s, nil
	}
	return payroll.AttendanceSummary{
		EmployeeID:  employeeID,
		DaysPresent: decimal.Zero,
		DaysAbsent:  decimal.Zero,
	}, nil
}

type fakeLeaveStore struct {
	summaries map[string]payroll.LeaveSummary
}

func (f *fakeLeaveStore) Summarize(ctx context.Context, companyID, employeeID string, month, year int, paidLeaveTypes []string) (payroll.LeaveSummary, error) {
	if s, ok := f.summaries[employeeID]; ok {
		return s, nil
	}
	return payroll.LeaveSummary{EmployeeID: employeeID, LOPDays: decimal.Zero}, nil
}

type runTestEnv struct {
	repo       *fakePayrollRepo
	dir        *fakeStaffDirectory
	attendance *fakeAttendanceStore
	leaves     *fakeLeaveStore
	service    payroll.PayrollService
	ctx        context.Context
}

func newRunTestEnv(t *testing.T) *runTestEnv {
	repo := newFakePayrollRepo()
	repo.settings = &payroll.PayrollSettings{
		CompanyID:              testCompanyID,
		WorkingDaysBasis:       payroll.Basis26Days,
		LOPDeductionMultiplier: decimal.NewFromInt(1),
	}
	dir := &fakeStaffDirectory{}
	attendance := &fakeAttendanceStore{summaries: make(map[string]payroll.AttendanceSummary)}
	leaves := &fakeLeaveStore{summaries: make(map[string]payroll.LeaveSummary)}

	return &runTestEnv{
		repo:       repo,
		dir:        dir,
		attendance: attendance,
		leaves:     leaves,
		service:    NewPayrollService(nil, repo, dir, attendance, leaves),
		ctx:        authedContext(t, testCompanyID, testUserID),
	}
}

func (e *runTestEnv) addEmployee(id string, grossSalary, basic string) {
	e.dir.employees = append(e.dir.employees, staff.Staff{
		ID:        id,
		CompanyID: testCompanyID,
		Name:      "Employee " + id,
		Status:    "active",
	})
	if grossSalary == "" {
		return
	}
	e.repo.structures[id] = payroll.EmployeeSalaryStructure{
		EmployeeID:  id,
		CompanyID:   testCompanyID,
		GrossSalary: dec(grossSalary),
		IsCurrent:   true,
		Earnings: []payroll.PayLine{
			{Name: "Basic", Amount: dec(basic)},
			{Name: "HRA", Amount: dec(grossSalary).Sub(dec(basic))},
		},
	}
}

func (e *runTestEnv) createRun(t *testing.T, month, year int) payroll.PayrollRun {
	t.Helper()
	run, err := e.service.CreateRun(e.ctx, payroll.CreateRunRequest{
		Month:          month,
		Year:           year,
		PayPeriodStart: fmt.Sprintf("%04d-%02d-01", year, month),
		PayPeriodEnd:   fmt.Sprintf("%04d-%02d-28", year, month),
	})
	require.NoError(t, err)
	return run
}

func TestCreateRun_DuplicatePeriod(t *testing.T) {
	env := newRunTestEnv(t)
	env.createRun(t, 6, 2025)

	_, err := env.service.CreateRun(env.ctx, payroll.CreateRunRequest{
		Month:          6,
		Year:           2025,
		PayPeriodStart: "2025-06-01",
		PayPeriodEnd:   "2025-06-30",
	})
	assert.ErrorIs(t, err, payroll.ErrRunAlreadyExists)
}

func TestCalculateRun_Success(t *testing.T) {
	env := newRunTestEnv(t)
	env.addEmployee("emp-1", "26000", "13000")
	env.addEmployee("emp-2", "52000", "26000")
	run := env.createRun(t, 6, 2025)

	result, err := env.service.CalculateRun(env.ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalEmployees)
	assert.Equal(t, 0, result.SkippedEmployees)
	assert.True(t, result.TotalGross.Equal(dec("78000")), "got %s", result.TotalGross)
	assert.True(t, result.TotalDeductions.IsZero())
	assert.True(t, result.TotalNetPay.Equal(dec("78000")))

	stored, err := env.repo.GetRunByID(env.ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusCalculated, stored.Status)
	assert.Equal(t, 2, stored.TotalEmployees)
	require.NotNil(t, stored.CalculatedBy)
	assert.Equal(t, testUserID, *stored.CalculatedBy)

	txns, err := env.repo.ListTransactionsByRun(env.ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, payroll.TxnStatusCalculated, txn.Status)
		assert.True(t, txn.NetSalary.Equal(txn.TotalEarnings.Sub(txn.TotalDeductions)))
	}
}

func TestCalculateRun_LOPDeduction(t *testing.T) {
	env := newRunTestEnv(t)
	env.addEmployee("emp-1", "26000", "13000")
	env.attendance.summaries["emp-1"] = payroll.AttendanceSummary{
		EmployeeID:  "emp-1",
		DaysPresent: dec("24"),
		DaysAbsent:  dec("2"),
	}
	run := env.createRun(t, 6, 2025)

	result, err := env.service.CalculateRun(env.ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalEmployees)

	txns, err := env.repo.ListTransactionsByRun(env.ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	txn := txns[0]

	// 2 absent days on a 26-day basis: per-day 1000, LOP 2000, earnings
	// pro-rated by 24/26.
	assert.True(t, txn.LOPDays.Equal(dec("2")))
	assert.True(t, txn.LOPAmount.Equal(dec("2000")), "got %s", txn.LOPAmount)
	assert.True(t, txn.TotalEarnings.Equal(dec("24000")), "got %s", txn.TotalEarnings)
	assert.True(t, txn.TotalDeductions.Equal(dec("2000")))
	assert.True(t, txn.NetSalary.Equal(dec("22000")))

	require.Len(t, txn.DeductionsBreakdown, 1)
	assert.Equal(t, payroll.LOPLineName, txn.DeductionsBreakdown[0].Name)
}

func TestCalculateRun_SkipsEmployeesWithoutStructure(t *testing.T) {
	env := newRunTestEnv(t)
	env.addEmployee("emp-1", "26000", "13000")
	env.addEmployee("emp-2", "", "") // no salary structure
	run := env.createRun(t, 6, 2025)

	result, err := env.service.CalculateRun(env.ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalEmployees)
	assert.Equal(t, 1, result.SkippedEmployees)

	txns, err := env.repo.ListTransactionsByRun(env.ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestCalculateRun_Recalculate(t *testing.T) {
	env := newRunTestEnv(t)
	env.addEmployee("emp-1", "26000", "13000")
	run := env.createRun(t, 6, 2025)

	first, err := env.service.CalculateRun(env.ctx, run.ID)
	require.NoError(t, err)

	// A run stuck in processing, e.g. after a crash mid-calculation, may be
	// recalculated.
	stuck := env.repo.runs[run.ID]
	stuck.Status = payroll.RunStatusProcessing
	env.repo.runs[run.ID] = stuck

	second, err := env.service.CalculateRun(env.ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, first.TotalEmployees, second.TotalEmployees)
	assert.True(t, first.TotalNetPay.Equal(second.TotalNetPay))

	// Recalculation replaces transactions instead of duplicating them.
	txns, err := env.repo.ListTransactionsByRun(env.ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestCalculateRun_NotCalculableFromCalculated(t *testing.T) {
	env := newRunTestEnv(t)
	env.addEmployee("emp-1", "26000", "13000")
	run := env.createRun(t, 6, 2025)

	_, err := env.service.CalculateRun(env.ctx, run.ID)
	require.NoError(t, err)

	_, err = env.service.CalculateRun(env.ctx, run.ID)
	assert.ErrorIs(t, err, payroll.ErrRunNotCalculable)
}

func TestCalculateRun_SettingsMissingLeavesRunDraft(t *testing.T) {
	env := newRunTestEnv(t)
	env.repo.settings = nil
	env.addEmployee("emp-1", "26000", "13000")
	run := env.createRun(t, 6, 2025)

	_, err := env.service.CalculateRun(env.ctx, run.ID)
	assert.ErrorIs(t, err, payroll.ErrSettingsNotConfigured)

	stored, err := env.repo.GetRunByID(env.ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusDraft, stored.Status)
}

func TestCalculateRun_ZeroEmployees(t *testing.T) {
	env := newRunTestEnv(t)
	run := env.createRun(t, 6, 2025)

	result, err := env.service.CalculateRun(env.ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalEmployees)
	assert.True(t, result.TotalNetPay.IsZero())

	stored, err := env.repo.GetRunByID(env.ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusCalculated, stored.Status)

	// An empty run is still approvable.
	assert.NoError(t, env.service.ApproveRun(env.ctx, run.ID))
}

func TestApproveRun(t *testing.T) {
	env := newRunTestEnv(t)
	env.addEmployee("emp-1", "26000", "13000")
	run := env.createRun(t, 6, 2025)

	// Draft runs cannot be approved.
	err := env.service.ApproveRun(env.ctx, run.ID)
	assert.ErrorIs(t, err, payroll.ErrRunNotApprovable)

	_, err = env.service.CalculateRun(env.ctx, run.ID)
	require.NoError(t, err)

	require.NoError(t, env.service.ApproveRun(env.ctx, run.ID))

	stored, err := env.repo.GetRunByID(env.ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, testUserID, *stored.ApprovedBy)

	// Approval cascades calculated transactions to approved.
	txns, err := env.repo.ListTransactionsByRun(env.ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, payroll.TxnStatusApproved, txns[0].Status)

	// A second approval cannot succeed.
	err = env.service.ApproveRun(env.ctx, run.ID)
	assert.ErrorIs(t, err, payroll.ErrRunNotApprovable)
}

func TestCalculateRun_MissingClaims(t *testing.T) {
	env := newRunTestEnv(t)
	_, err := env.service.CalculateRun(context.Background(), "run-1")
	assert.Error(t, err)
}
