package postgresql

import (
	"context"
	"fmt"

	"github.com/bizzpass/crm-backend-go/internal/domain/payroll"
	"github.com/bizzpass/crm-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type leaveRepository struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) payroll.LeaveStore {
	return &leaveRepository{db: db}
}

// Summarize totals approved leave per type for the month, split into paid
// and unpaid against the company's paid-leave-type list. Unpaid days are the
// LOP contribution.
func (r *leaveRepository) Summarize(ctx context.Context, companyID, employeeID string, month, year int, paidLeaveTypes []string) (payroll.LeaveSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT leave_type, COALESCE(SUM(days), 0)
		FROM leaves
		WHERE employee_id = $1 AND company_id = $2
		  AND status = 'approved'
		  AND EXTRACT(MONTH FROM start_date) = $3
		  AND EXTRACT(YEAR FROM start_date) = $4
		GROUP BY leave_type
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, month, year)
	if err != nil {
		return payroll.LeaveSummary{}, fmt.Errorf("failed to summarize leaves: %w", err)
	}
	defer rows.Close()

	paid := make(map[string]bool, len(paidLeaveTypes))
	for _, t := range paidLeaveTypes {
		paid[t] = true
	}

	summary := payroll.LeaveSummary{
		EmployeeID:      employeeID,
		TotalLeaveDays:  decimal.Zero,
		PaidLeaveDays:   decimal.Zero,
		UnpaidLeaveDays: decimal.Zero,
		LOPDays:         decimal.Zero,
	}

	for rows.Next() {
		var leaveType string
		var days decimal.Decimal
		if err := rows.Scan(&leaveType, &days); err != nil {
			return payroll.LeaveSummary{}, fmt.Errorf("failed to scan leave row: %w", err)
		}

		summary.TotalLeaveDays = summary.TotalLeaveDays.Add(days)
		if paid[leaveType] {
			summary.PaidLeaveDays = summary.PaidLeaveDays.Add(days)
		} else {
			summary.UnpaidLeaveDays = summary.UnpaidLeaveDays.Add(days)
		}
	}
	if err := rows.Err(); err != nil {
		return payroll.LeaveSummary{}, fmt.Errorf("failed to read leave rows: %w", err)
	}

	summary.LOPDays = summary.UnpaidLeaveDays

	return summary, nil
}
