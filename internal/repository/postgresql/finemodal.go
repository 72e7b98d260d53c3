package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bizzpass/crm-backend-go/internal/domain/grace"
	"github.com/bizzpass/crm-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fineModalRepository struct {
	db *database.DB
}

func NewFineModalRepository(db *database.DB) grace.FineModalRepository {
	return &fineModalRepository{db: db}
}

const fineModalColumns = `id, company_id, name, description, is_active,
	   grace_config, fine_calculation_method, fine_fixed_amount,
	   created_at, updated_at`

func scanFineModal(row pgx.Row) (grace.FineModal, error) {
	var m grace.FineModal
	var graceConfig []byte
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.Name, &m.Description, &m.IsActive,
		&graceConfig, &m.FineCalculationMethod, &m.FineFixedAmount,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return m, err
	}
	m.GraceConfig = grace.ParseConfig(graceConfig)
	return m, nil
}

func (r *fineModalRepository) Create(ctx context.Context, modal grace.FineModal) (grace.FineModal, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM fine_modals WHERE company_id = $1 AND LOWER(name) = LOWER($2))`,
		modal.CompanyID, modal.Name,
	).Scan(&exists)
	if err != nil {
		return grace.FineModal{}, fmt.Errorf("failed to check fine modal name: %w", err)
	}
	if exists {
		return grace.FineModal{}, grace.ErrFineModalNameExists
	}

	var graceConfig []byte
	if modal.GraceConfig != nil {
		graceConfig, err = json.Marshal(modal.GraceConfig)
		if err != nil {
			return grace.FineModal{}, fmt.Errorf("failed to marshal grace config: %w", err)
		}
	}

	query := `
		INSERT INTO fine_modals (
			id, company_id, name, description, is_active,
			grace_config, fine_calculation_method, fine_fixed_amount,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + fineModalColumns

	created, err := scanFineModal(q.QueryRow(ctx, query,
		uuid.New().String(), modal.CompanyID, modal.Name, modal.Description, modal.IsActive,
		graceConfig, modal.FineCalculationMethod, modal.FineFixedAmount,
	))
	if err != nil {
		return grace.FineModal{}, fmt.Errorf("failed to create fine modal: %w", err)
	}

	return created, nil
}

func (r *fineModalRepository) GetByID(ctx context.Context, id string, companyID string) (grace.FineModal, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + fineModalColumns + ` FROM fine_modals WHERE id = $1 AND company_id = $2`

	m, err := scanFineModal(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return grace.FineModal{}, grace.ErrFineModalNotFound
		}
		return grace.FineModal{}, fmt.Errorf("failed to get fine modal: %w", err)
	}

	return m, nil
}

func (r *fineModalRepository) List(ctx context.Context, companyID string) ([]grace.FineModal, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + fineModalColumns + ` FROM fine_modals WHERE company_id = $1 ORDER BY name`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fine modals: %w", err)
	}
	defer rows.Close()

	var modals []grace.FineModal
	for rows.Next() {
		m, err := scanFineModal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fine modal: %w", err)
		}
		modals = append(modals, m)
	}

	return modals, rows.Err()
}

func (r *fineModalRepository) Update(ctx context.Context, companyID string, req grace.UpdateFineModalRequest) (grace.FineModal, error) {
	q := GetQuerier(ctx, r.db)

	updates := []string{"updated_at = NOW()"}
	args := []interface{}{req.ID, companyID}

	add := func(column string, value interface{}) {
		args = append(args, value)
		updates = append(updates, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}
	if req.GraceConfig != nil {
		graceConfig, err := json.Marshal(req.GraceConfig)
		if err != nil {
			return grace.FineModal{}, fmt.Errorf("failed to marshal grace config: %w", err)
		}
		add("grace_config", graceConfig)
	}
	if req.FineCalculationMethod != nil {
		add("fine_calculation_method", *req.FineCalculationMethod)
	}
	if req.FineFixedAmount != nil {
		add("fine_fixed_amount", *req.FineFixedAmount)
	}

	query := `UPDATE fine_modals SET ` + strings.Join(updates, ", ") +
		` WHERE id = $1 AND company_id = $2 RETURNING ` + fineModalColumns

	m, err := scanFineModal(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return grace.FineModal{}, grace.ErrFineModalNotFound
		}
		return grace.FineModal{}, fmt.Errorf("failed to update fine modal: %w", err)
	}

	return m, nil
}

func (r *fineModalRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM fine_modals WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete fine modal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return grace.ErrFineModalNotFound
	}

	return nil
}

// ========== GRACE SOURCES ==========

type graceSourceRepository struct {
	db *database.DB
}

func NewGraceSourceRepository(db *database.DB) grace.SourceRepository {
	return &graceSourceRepository{db: db}
}

// StaffConfig loads the grace config of the fine modal assigned to the staff
// member. Absent assignment, inactive modal or malformed config all yield
// nil so resolution falls through.
func (r *graceSourceRepository) StaffConfig(ctx context.Context, companyID, employeeID string) (*grace.Config, error) {
	q := GetQuerier(ctx, r.db)

	var graceConfig []byte
	err := q.QueryRow(ctx, `
		SELECT fm.grace_config
		FROM staff s
		JOIN fine_modals fm ON fm.id = s.fine_modal_id AND fm.company_id = s.company_id
		WHERE s.id = $1 AND s.company_id = $2 AND fm.is_active = TRUE
	`, employeeID, companyID).Scan(&graceConfig)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load staff grace config: %w", err)
	}

	return grace.ParseConfig(graceConfig), nil
}

// DepartmentConfig loads the grace config of the fine modal assigned to the
// employee's department.
func (r *graceSourceRepository) DepartmentConfig(ctx context.Context, companyID, employeeID string) (*grace.Config, error) {
	q := GetQuerier(ctx, r.db)

	var graceConfig []byte
	err := q.QueryRow(ctx, `
		SELECT fm.grace_config
		FROM staff s
		JOIN departments d ON d.name = s.department AND d.company_id = s.company_id
		JOIN fine_modals fm ON fm.id = d.fine_modal_id AND fm.company_id = d.company_id
		WHERE s.id = $1 AND s.company_id = $2 AND fm.is_active = TRUE
	`, employeeID, companyID).Scan(&graceConfig)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load department grace config: %w", err)
	}

	return grace.ParseConfig(graceConfig), nil
}

// CompanyConfig loads the grace defaults from payroll settings.
func (r *graceSourceRepository) CompanyConfig(ctx context.Context, companyID string) (*grace.Config, error) {
	q := GetQuerier(ctx, r.db)

	var graceConfig []byte
	err := q.QueryRow(ctx,
		`SELECT grace_config FROM payroll_settings WHERE company_id = $1`,
		companyID,
	).Scan(&graceConfig)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load company grace config: %w", err)
	}

	return grace.ParseConfig(graceConfig), nil
}

// ShiftGraceMinutes reads the grace-minutes fallback from the employee's
// shift modal. Employees without a shift, and shifts that leave the column
// unset, fall back to grace.DefaultShiftGraceMinutes.
func (r *graceSourceRepository) ShiftGraceMinutes(ctx context.Context, companyID, employeeID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var minutes int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(sm.grace_minutes, $3)
		FROM staff s
		JOIN shift_modals sm ON sm.id = s.shift_modal_id AND sm.company_id = s.company_id
		WHERE s.id = $1 AND s.company_id = $2
	`, employeeID, companyID, grace.DefaultShiftGraceMinutes).Scan(&minutes)
	if err != nil {
		if err == pgx.ErrNoRows {
			return grace.DefaultShiftGraceMinutes, nil
		}
		return 0, fmt.Errorf("failed to load shift grace minutes: %w", err)
	}

	return minutes, nil
}

// CountViolations counts same-type violations recorded in [from, to), the
// current reset cycle window of the decision engine.
func (r *graceSourceRepository) CountViolations(ctx context.Context, companyID, employeeID string, violation grace.ViolationType, from, to time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	column := "late_minutes"
	if violation == grace.ViolationEarlyLogout {
		column = "early_exit_minutes"
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM attendances
		WHERE employee_id = $1 AND company_id = $2
		  AND date >= $3 AND date < $4
		  AND COALESCE(%s, 0) > 0
	`, column)

	var count int
	if err := q.QueryRow(ctx, query, employeeID, companyID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count violations: %w", err)
	}

	return count, nil
}
