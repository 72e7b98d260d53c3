package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/bizzpass/crm-backend-go/internal/domain/payroll"
	"github.com/bizzpass/crm-backend-go/internal/domain/staff"
	"github.com/shopspring/decimal"
)

// ========== PAYROLL RUNS ==========

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.PayrollRun, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRun{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	start, _ := time.Parse("2006-01-02", req.PayPeriodStart)
	end, _ := time.Parse("2006-01-02", req.PayPeriodEnd)

	run := payroll.PayrollRun{
		CompanyID:        companyID,
		Month:            req.Month,
		Year:             req.Year,
		PayPeriodStart:   start,
		PayPeriodEnd:     end,
		Status:           payroll.RunStatusDraft,
		DepartmentFilter: req.DepartmentFilter,
		BranchFilter:     req.BranchFilter,
		EmployeeIDs:      req.EmployeeIDs,
		Remarks:          req.Remarks,
	}

	return s.payrollRepo.CreateRun(ctx, run)
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.RunDetailResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunDetailResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return payroll.RunDetailResponse{}, err
	}

	transactions, err := s.payrollRepo.ListTransactionsByRun(ctx, id, companyID)
	if err != nil {
		return payroll.RunDetailResponse{}, err
	}

	return payroll.RunDetailResponse{Run: run, Transactions: transactions}, nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) ([]payroll.PayrollRun, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return s.payrollRepo.ListRuns(ctx, companyID, filter)
}

// CalculateRun computes every eligible employee's transaction for the run.
// Re-entrant: a run already in processing may be recalculated, and the
// (run, employee) upsert makes repeat calculation replace rather than
// duplicate. Configuration errors leave the run in its prior state; employees
// without a current salary structure are skipped and counted.
func (s *PayrollServiceImpl) CalculateRun(ctx context.Context, id string) (payroll.CalculateRunResult, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.CalculateRunResult{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return payroll.CalculateRunResult{}, err
	}

	// Settings are required before the run leaves its prior state.
	settings, err := s.payrollRepo.GetSettings(ctx, companyID)
	if err != nil {
		return payroll.CalculateRunResult{}, err
	}

	if err := s.payrollRepo.MarkRunProcessing(ctx, id, companyID); err != nil {
		return payroll.CalculateRunResult{}, err
	}

	workingDays := payroll.WorkingDays(run.Year, time.Month(run.Month), settings.WorkingDaysBasis, settings.CustomWorkingDays)

	employees, err := s.staffDir.ListEligible(ctx, companyID, staff.EligibilityFilter{
		Department:  run.DepartmentFilter,
		BranchID:    run.BranchFilter,
		EmployeeIDs: run.EmployeeIDs,
	})
	if err != nil {
		return payroll.CalculateRunResult{}, err
	}

	var result payroll.CalculateRunResult
	result.TotalGross = decimal.Zero
	result.TotalDeductions = decimal.Zero
	result.TotalNetPay = decimal.Zero

	for _, emp := range employees {
		txn, err := s.calculateEmployee(ctx, run, settings, emp, workingDays)
		if err != nil {
			if errors.Is(err, payroll.ErrStructureNotFound) {
				result.SkippedEmployees++
				continue
			}
			return payroll.CalculateRunResult{}, err
		}

		if err := s.payrollRepo.UpsertTransaction(ctx, txn); err != nil {
			return payroll.CalculateRunResult{}, err
		}

		result.TotalEmployees++
		result.TotalGross = result.TotalGross.Add(txn.TotalEarnings)
		result.TotalDeductions = result.TotalDeductions.Add(txn.TotalDeductions)
		result.TotalNetPay = result.TotalNetPay.Add(txn.NetSalary)
	}

	if err := s.payrollRepo.CompleteRun(ctx, id, companyID, result, userID, time.Now()); err != nil {
		return payroll.CalculateRunResult{}, err
	}

	return result, nil
}

// calculateEmployee builds one transaction from the employee's current
// structure, the attendance and leave summaries, and the company policy.
// Totals accumulate from per-line rounded amounts so the net identity
// earnings - deductions holds exactly on the stored row.
func (s *PayrollServiceImpl) calculateEmployee(
	ctx context.Context,
	run payroll.PayrollRun,
	settings payroll.PayrollSettings,
	emp staff.Staff,
	workingDays decimal.Decimal,
) (payroll.PayrollTransaction, error) {
	structure, err := s.payrollRepo.GetCurrentStructure(ctx, emp.ID, run.CompanyID)
	if err != nil {
		return payroll.PayrollTransaction{}, err
	}

	attendanceSummary, err := s.attendance.Summarize(ctx, run.CompanyID, emp.ID, run.Month, run.Year)
	if err != nil {
		return payroll.PayrollTransaction{}, err
	}

	leaveSummary, err := s.leaves.Summarize(ctx, run.CompanyID, emp.ID, run.Month, run.Year, settings.PaidLeaveTypes)
	if err != nil {
		return payroll.PayrollTransaction{}, err
	}

	lopDays := leaveSummary.LOPDays.Add(attendanceSummary.DaysAbsent)

	perDayRate := payroll.PerDayRate(structure.GrossSalary, workingDays)
	lopAmount := payroll.LOPAmount(perDayRate, lopDays, settings.LOPDeductionMultiplier)

	earnings, totalEarnings := payroll.ProrateEarnings(structure.Earnings, workingDays, lopDays)

	deductions := make([]payroll.PayLine, 0, len(structure.Deductions)+1)
	totalDeductions := decimal.Zero
	for _, line := range structure.Deductions {
		amount := line.Amount.Round(2)
		deductions = append(deductions, payroll.PayLine{Name: line.Name, Amount: amount})
		totalDeductions = totalDeductions.Add(amount)
	}
	if lopAmount.IsPositive() {
		deductions = append(deductions, payroll.PayLine{Name: payroll.LOPLineName, Amount: lopAmount})
		totalDeductions = totalDeductions.Add(lopAmount)
	}

	netSalary := totalEarnings.Sub(totalDeductions)

	return payroll.PayrollTransaction{
		PayrollRunID:        run.ID,
		EmployeeID:          emp.ID,
		CompanyID:           run.CompanyID,
		Month:               run.Month,
		Year:                run.Year,
		PayPeriodStart:      run.PayPeriodStart,
		PayPeriodEnd:        run.PayPeriodEnd,
		EmployeeName:        emp.Name,
		EmployeeNumber:      emp.EmployeeNumber,
		Designation:         emp.Designation,
		Department:          emp.Department,
		TotalWorkingDays:    workingDays,
		DaysPresent:         attendanceSummary.DaysPresent,
		DaysAbsent:          attendanceSummary.DaysAbsent,
		DaysLeave:           leaveSummary.TotalLeaveDays,
		PaidLeaves:          leaveSummary.PaidLeaveDays,
		UnpaidLeaves:        leaveSummary.UnpaidLeaveDays,
		LOPDays:             lopDays,
		LOPAmount:           lopAmount,
		GrossSalary:         structure.GrossSalary,
		TotalEarnings:       totalEarnings,
		TotalDeductions:     totalDeductions,
		NetSalary:           netSalary,
		EarningsBreakdown:   earnings,
		DeductionsBreakdown: deductions,
		Status:              payroll.TxnStatusCalculated,
	}, nil
}

// ApproveRun finalizes a calculated run. The repository performs a
// compare-and-set so only one of two concurrent approvals succeeds.
func (s *PayrollServiceImpl) ApproveRun(ctx context.Context, id string) error {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.payrollRepo.ApproveRun(ctx, id, companyID, userID, time.Now())
}
