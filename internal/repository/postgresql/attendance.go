package postgresql

import (
	"context"
	"fmt"

	"github.com/bizzpass/crm-backend-go/internal/domain/payroll"
	"github.com/bizzpass/crm-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) payroll.AttendanceStore {
	return &attendanceRepository{db: db}
}

var half = decimal.NewFromFloat(0.5)

// Summarize aggregates one month of attendance rows. Half-days are folded
// into DaysPresent at 0.5 each.
func (r *attendanceRepository) Summarize(ctx context.Context, companyID, employeeID string, month, year int) (payroll.AttendanceSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('present', 'late')) AS days_present,
			COUNT(*) FILTER (WHERE status = 'absent') AS days_absent,
			COUNT(*) FILTER (WHERE status = 'half_day') AS days_half,
			COALESCE(SUM(COALESCE(work_hours, 0)), 0) AS total_work_hours,
			COALESCE(SUM(COALESCE(overtime_hours, 0)), 0) AS total_overtime_hours,
			COALESCE(SUM(COALESCE(late_minutes, 0)), 0) AS total_late_minutes,
			COUNT(*) FILTER (WHERE late_minutes > 0) AS late_days
		FROM attendances
		WHERE employee_id = $1 AND company_id = $2
		  AND EXTRACT(MONTH FROM date) = $3
		  AND EXTRACT(YEAR FROM date) = $4
	`

	summary := payroll.AttendanceSummary{EmployeeID: employeeID}
	var fullDays decimal.Decimal
	err := q.QueryRow(ctx, query, employeeID, companyID, month, year).Scan(
		&fullDays, &summary.DaysAbsent, &summary.DaysHalf,
		&summary.TotalWorkHours, &summary.TotalOvertimeHours,
		&summary.TotalLateMinutes, &summary.LateDays,
	)
	if err != nil {
		return payroll.AttendanceSummary{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}

	summary.DaysPresent = fullDays.Add(summary.DaysHalf.Mul(half))

	return summary, nil
}
