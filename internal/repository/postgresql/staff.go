package postgresql

import (
	"context"
	"fmt"

	"github.com/bizzpass/crm-backend-go/internal/domain/staff"
	"github.com/bizzpass/crm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type staffRepository struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.Directory {
	return &staffRepository{db: db}
}

const staffColumns = `id, company_id, name, employee_number, designation, department,
	   branch_id, shift_modal_id, fine_modal_id, status, join_date,
	   created_at, updated_at`

func scanStaff(row pgx.Row) (staff.Staff, error) {
	var s staff.Staff
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.Name, &s.EmployeeNumber, &s.Designation, &s.Department,
		&s.BranchID, &s.ShiftModalID, &s.FineModalID, &s.Status, &s.JoinDate,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// ListEligible returns the active staff matching the run's filters.
func (r *staffRepository) ListEligible(ctx context.Context, companyID string, filter staff.EligibilityFilter) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + staffColumns + ` FROM staff WHERE company_id = $1 AND status = 'active'`
	args := []interface{}{companyID}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		query += fmt.Sprintf(" AND branch_id = $%d", len(args))
	}
	if len(filter.EmployeeIDs) > 0 {
		args = append(args, filter.EmployeeIDs)
		query += fmt.Sprintf(" AND id = ANY($%d)", len(args))
	}
	query += " ORDER BY name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible staff: %w", err)
	}
	defer rows.Close()

	var members []staff.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		members = append(members, s)
	}

	return members, rows.Err()
}

func (r *staffRepository) GetByID(ctx context.Context, id string, companyID string) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1 AND company_id = $2`

	s, err := scanStaff(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		return staff.Staff{}, fmt.Errorf("failed to get staff member: %w", err)
	}

	return s, nil
}
