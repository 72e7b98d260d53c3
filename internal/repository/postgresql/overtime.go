package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bizzpass/crm-backend-go/internal/domain/overtime"
	"github.com/bizzpass/crm-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type overtimeTemplateRepository struct {
	db *database.DB
}

func NewOvertimeTemplateRepository(db *database.DB) overtime.TemplateRepository {
	return &overtimeTemplateRepository{db: db}
}

const overtimeTemplateColumns = `id, company_id, name, company_type, is_default, config, created_at, updated_at`

func scanOvertimeTemplate(row pgx.Row) (*overtime.Template, error) {
	var t overtime.Template
	var config []byte
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Name, &t.CompanyType, &t.IsDefault,
		&config, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(config) > 0 {
		// Malformed stored config falls back to the zero config rather than
		// failing the read.
		if err := json.Unmarshal(config, &t.Config); err != nil {
			t.Config = overtime.Config{}
		}
	}
	return &t, nil
}

func (r *overtimeTemplateRepository) Create(ctx context.Context, t *overtime.Template) error {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM overtime_templates WHERE company_id = $1 AND LOWER(name) = LOWER($2))`,
		t.CompanyID, t.Name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check overtime template name: %w", err)
	}
	if exists {
		return overtime.ErrTemplateNameExists
	}

	config, err := json.Marshal(t.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal overtime config: %w", err)
	}

	query := `
		INSERT INTO overtime_templates (id, company_id, name, company_type, is_default, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	t.ID = uuid.New().String()
	err = q.QueryRow(ctx, query,
		t.ID, t.CompanyID, t.Name, t.CompanyType, t.IsDefault, config,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create overtime template: %w", err)
	}

	return nil
}

func (r *overtimeTemplateRepository) GetByID(ctx context.Context, id, companyID string) (*overtime.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeTemplateColumns + ` FROM overtime_templates WHERE id = $1 AND company_id = $2`

	t, err := scanOvertimeTemplate(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, overtime.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get overtime template: %w", err)
	}

	return t, nil
}

func (r *overtimeTemplateRepository) GetDefault(ctx context.Context, companyID string) (*overtime.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeTemplateColumns + ` FROM overtime_templates WHERE company_id = $1 AND is_default = TRUE LIMIT 1`

	t, err := scanOvertimeTemplate(q.QueryRow(ctx, query, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, overtime.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get default overtime template: %w", err)
	}

	return t, nil
}

func (r *overtimeTemplateRepository) List(ctx context.Context, companyID string) ([]overtime.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeTemplateColumns + ` FROM overtime_templates WHERE company_id = $1 ORDER BY name`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime templates: %w", err)
	}
	defer rows.Close()

	var templates []overtime.Template
	for rows.Next() {
		t, err := scanOvertimeTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overtime template: %w", err)
		}
		templates = append(templates, *t)
	}

	return templates, rows.Err()
}

func (r *overtimeTemplateRepository) Update(ctx context.Context, t *overtime.Template) error {
	q := GetQuerier(ctx, r.db)

	config, err := json.Marshal(t.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal overtime config: %w", err)
	}

	query := `
		UPDATE overtime_templates SET
			name = $3, company_type = $4, is_default = $5, config = $6, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING updated_at
	`

	err = q.QueryRow(ctx, query, t.ID, t.CompanyID, t.Name, t.CompanyType, t.IsDefault, config).Scan(&t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return overtime.ErrTemplateNotFound
		}
		return fmt.Errorf("failed to update overtime template: %w", err)
	}

	return nil
}

func (r *overtimeTemplateRepository) Delete(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM overtime_templates WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete overtime template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrTemplateNotFound
	}

	return nil
}

func (r *overtimeTemplateRepository) ClearDefault(ctx context.Context, companyID, exceptID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx,
		`UPDATE overtime_templates SET is_default = FALSE, updated_at = NOW() WHERE company_id = $1 AND id <> $2 AND is_default = TRUE`,
		companyID, exceptID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear default overtime template: %w", err)
	}

	return nil
}
