package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bizzpass/crm-backend-go/internal/domain/grace"
	"github.com/bizzpass/crm-backend-go/internal/domain/payroll"
	"github.com/bizzpass/crm-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== SETTINGS ==========

func (r *payrollRepository) GetSettings(ctx context.Context, companyID string) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, pay_cycle_type, pay_day, attendance_cutoff_day,
			   working_days_basis, custom_working_days, working_hours_per_day,
			   paid_leave_types, lop_calculation_method, lop_deduction_multiplier,
			   grace_config, overtime_enabled, overtime_basis,
			   weekday_ot_multiplier, weekend_ot_multiplier, holiday_ot_multiplier,
			   max_ot_hours_per_month,
			   pf_enabled, pf_employee_rate, pf_employer_rate, pf_wage_ceiling,
			   esi_enabled, esi_employee_rate, esi_employer_rate, esi_wage_ceiling,
			   pt_enabled, tds_enabled, gratuity_enabled, currency,
			   created_at, updated_at
		FROM payroll_settings
		WHERE company_id = $1
	`

	var s payroll.PayrollSettings
	var paidLeaveTypes, graceConfig []byte
	err := q.QueryRow(ctx, query, companyID).Scan(
		&s.ID, &s.CompanyID, &s.PayCycleType, &s.PayDay, &s.AttendanceCutoffDay,
		&s.WorkingDaysBasis, &s.CustomWorkingDays, &s.WorkingHoursPerDay,
		&paidLeaveTypes, &s.LOPCalculationMethod, &s.LOPDeductionMultiplier,
		&graceConfig, &s.OvertimeEnabled, &s.OvertimeBasis,
		&s.WeekdayOTMultiplier, &s.WeekendOTMultiplier, &s.HolidayOTMultiplier,
		&s.MaxOTHoursPerMonth,
		&s.PFEnabled, &s.PFEmployeeRate, &s.PFEmployerRate, &s.PFWageCeiling,
		&s.ESIEnabled, &s.ESIEmployeeRate, &s.ESIEmployerRate, &s.ESIWageCeiling,
		&s.PTEnabled, &s.TDSEnabled, &s.GratuityEnabled, &s.Currency,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollSettings{}, payroll.ErrSettingsNotConfigured
		}
		return payroll.PayrollSettings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	if len(paidLeaveTypes) > 0 {
		if err := json.Unmarshal(paidLeaveTypes, &s.PaidLeaveTypes); err != nil {
			s.PaidLeaveTypes = nil
		}
	}
	// Malformed grace config is treated as absent, not an error.
	s.GraceConfig = grace.ParseConfig(graceConfig)

	return s, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	paidLeaveTypes, err := json.Marshal(settings.PaidLeaveTypes)
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to marshal paid leave types: %w", err)
	}

	var graceConfig []byte
	if settings.GraceConfig != nil {
		graceConfig, err = json.Marshal(settings.GraceConfig)
		if err != nil {
			return payroll.PayrollSettings{}, fmt.Errorf("failed to marshal grace config: %w", err)
		}
	}

	query := `
		INSERT INTO payroll_settings (
			id, company_id, pay_cycle_type, pay_day, attendance_cutoff_day,
			working_days_basis, custom_working_days, working_hours_per_day,
			paid_leave_types, lop_calculation_method, lop_deduction_multiplier,
			grace_config, overtime_enabled, overtime_basis,
			weekday_ot_multiplier, weekend_ot_multiplier, holiday_ot_multiplier,
			max_ot_hours_per_month,
			pf_enabled, pf_employee_rate, pf_employer_rate, pf_wage_ceiling,
			esi_enabled, esi_employee_rate, esi_employer_rate, esi_wage_ceiling,
			pt_enabled, tds_enabled, gratuity_enabled, currency,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
			$27, $28, $29, $30, NOW(), NOW()
		)
		ON CONFLICT (company_id) DO UPDATE SET
			pay_cycle_type = EXCLUDED.pay_cycle_type,
			pay_day = EXCLUDED.pay_day,
			attendance_cutoff_day = EXCLUDED.attendance_cutoff_day,
			working_days_basis = EXCLUDED.working_days_basis,
			custom_working_days = EXCLUDED.custom_working_days,
			working_hours_per_day = EXCLUDED.working_hours_per_day,
			paid_leave_types = EXCLUDED.paid_leave_types,
			lop_calculation_method = EXCLUDED.lop_calculation_method,
			lop_deduction_multiplier = EXCLUDED.lop_deduction_multiplier,
			grace_config = EXCLUDED.grace_config,
			overtime_enabled = EXCLUDED.overtime_enabled,
			overtime_basis = EXCLUDED.overtime_basis,
			weekday_ot_multiplier = EXCLUDED.weekday_ot_multiplier,
			weekend_ot_multiplier = EXCLUDED.weekend_ot_multiplier,
			holiday_ot_multiplier = EXCLUDED.holiday_ot_multiplier,
			max_ot_hours_per_month = EXCLUDED.max_ot_hours_per_month,
			pf_enabled = EXCLUDED.pf_enabled,
			pf_employee_rate = EXCLUDED.pf_employee_rate,
			pf_employer_rate = EXCLUDED.pf_employer_rate,
			pf_wage_ceiling = EXCLUDED.pf_wage_ceiling,
			esi_enabled = EXCLUDED.esi_enabled,
			esi_employee_rate = EXCLUDED.esi_employee_rate,
			esi_employer_rate = EXCLUDED.esi_employer_rate,
			esi_wage_ceiling = EXCLUDED.esi_wage_ceiling,
			pt_enabled = EXCLUDED.pt_enabled,
			tds_enabled = EXCLUDED.tds_enabled,
			gratuity_enabled = EXCLUDED.gratuity_enabled,
			currency = EXCLUDED.currency,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	id := settings.ID
	if id == "" {
		id = uuid.New().String()
	}

	err = q.QueryRow(ctx, query,
		id, settings.CompanyID, settings.PayCycleType, settings.PayDay, settings.AttendanceCutoffDay,
		settings.WorkingDaysBasis, settings.CustomWorkingDays, settings.WorkingHoursPerDay,
		paidLeaveTypes, settings.LOPCalculationMethod, settings.LOPDeductionMultiplier,
		graceConfig, settings.OvertimeEnabled, settings.OvertimeBasis,
		settings.WeekdayOTMultiplier, settings.WeekendOTMultiplier, settings.HolidayOTMultiplier,
		settings.MaxOTHoursPerMonth,
		settings.PFEnabled, settings.PFEmployeeRate, settings.PFEmployerRate, settings.PFWageCeiling,
		settings.ESIEnabled, settings.ESIEmployeeRate, settings.ESIEmployerRate, settings.ESIWageCeiling,
		settings.PTEnabled, settings.TDSEnabled, settings.GratuityEnabled, settings.Currency,
	).Scan(&settings.ID, &settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return settings, nil
}

// ========== COMPONENTS ==========

const componentColumns = `id, company_id, name, display_name, kind, category,
	   calculation_type, calculation_value, formula, is_taxable, is_statutory,
	   affects_gross, affects_net, min_value, max_value, priority_order,
	   is_active, created_at, updated_at`

func scanComponent(row pgx.Row) (payroll.SalaryComponent, error) {
	var c payroll.SalaryComponent
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.DisplayName, &c.Kind, &c.Category,
		&c.CalculationType, &c.CalculationValue, &c.Formula, &c.IsTaxable, &c.IsStatutory,
		&c.AffectsGross, &c.AffectsNet, &c.MinValue, &c.MaxValue, &c.PriorityOrder,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *payrollRepository) CreateComponent(ctx context.Context, component payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM salary_components WHERE company_id = $1 AND LOWER(name) = LOWER($2))`,
		component.CompanyID, component.Name,
	).Scan(&exists)
	if err != nil {
		return payroll.SalaryComponent{}, fmt.Errorf("failed to check component name: %w", err)
	}
	if exists {
		return payroll.SalaryComponent{}, payroll.ErrComponentNameExists
	}

	query := `
		INSERT INTO salary_components (
			id, company_id, name, display_name, kind, category,
			calculation_type, calculation_value, formula, is_taxable, is_statutory,
			affects_gross, affects_net, min_value, max_value, priority_order,
			is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW()
		)
		RETURNING ` + componentColumns

	id := uuid.New().String()
	created, err := scanComponent(q.QueryRow(ctx, query,
		id, component.CompanyID, component.Name, component.DisplayName, component.Kind, component.Category,
		component.CalculationType, component.CalculationValue, component.Formula, component.IsTaxable, component.IsStatutory,
		component.AffectsGross, component.AffectsNet, component.MinValue, component.MaxValue, component.PriorityOrder,
		component.IsActive,
	))
	if err != nil {
		return payroll.SalaryComponent{}, fmt.Errorf("failed to create salary component: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetComponentByID(ctx context.Context, id string, companyID string) (payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + componentColumns + ` FROM salary_components WHERE id = $1 AND company_id = $2`

	c, err := scanComponent(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalaryComponent{}, payroll.ErrComponentNotFound
		}
		return payroll.SalaryComponent{}, fmt.Errorf("failed to get salary component: %w", err)
	}

	return c, nil
}

func (r *payrollRepository) ListComponents(ctx context.Context, companyID string, kind *payroll.ComponentKind, activeOnly bool) ([]payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + componentColumns + ` FROM salary_components WHERE company_id = $1`
	args := []interface{}{companyID}

	if kind != nil {
		args = append(args, *kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if activeOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY priority_order, name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary components: %w", err)
	}
	defer rows.Close()

	var components []payroll.SalaryComponent
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary component: %w", err)
		}
		components = append(components, c)
	}

	return components, rows.Err()
}

func (r *payrollRepository) UpdateComponent(ctx context.Context, companyID string, req payroll.UpdateComponentRequest) (payroll.SalaryComponent, error) {
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
	if req.DisplayName != nil {
		add("display_name", *req.DisplayName)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.CalculationType != nil {
		add("calculation_type", *req.CalculationType)
	}
	if req.CalculationValue != nil {
		add("calculation_value", *req.CalculationValue)
	}
	if req.Formula != nil {
		add("formula", *req.Formula)
	}
	if req.IsTaxable != nil {
		add("is_taxable", *req.IsTaxable)
	}
	if req.IsStatutory != nil {
		add("is_statutory", *req.IsStatutory)
	}
	if req.AffectsGross != nil {
		add("affects_gross", *req.AffectsGross)
	}
	if req.AffectsNet != nil {
		add("affects_net", *req.AffectsNet)
	}
	if req.MinValue != nil {
		add("min_value", *req.MinValue)
	}
	if req.MaxValue != nil {
		add("max_value", *req.MaxValue)
	}
	if req.PriorityOrder != nil {
		add("priority_order", *req.PriorityOrder)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}

	query := `UPDATE salary_components SET ` + strings.Join(updates, ", ") +
		` WHERE id = $1 AND company_id = $2 RETURNING ` + componentColumns

	c, err := scanComponent(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalaryComponent{}, payroll.ErrComponentNotFound
		}
		return payroll.SalaryComponent{}, fmt.Errorf("failed to update salary component: %w", err)
	}

	return c, nil
}

func (r *payrollRepository) DeactivateComponent(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE salary_components SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate salary component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrComponentNotFound
	}

	return nil
}

// ========== SALARY MODALS ==========

func scanSalaryModal(row pgx.Row) (payroll.SalaryModal, error) {
	var m payroll.SalaryModal
	var components []byte
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.Name, &m.Description, &m.IsActive,
		&components, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return m, err
	}
	if len(components) > 0 {
		if err := json.Unmarshal(components, &m.Components); err != nil {
			return m, fmt.Errorf("failed to unmarshal modal components: %w", err)
		}
	}
	return m, nil
}

func (r *payrollRepository) CreateSalaryModal(ctx context.Context, modal payroll.SalaryModal) (payroll.SalaryModal, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM salary_modals WHERE company_id = $1 AND LOWER(name) = LOWER($2))`,
		modal.CompanyID, modal.Name,
	).Scan(&exists)
	if err != nil {
		return payroll.SalaryModal{}, fmt.Errorf("failed to check modal name: %w", err)
	}
	if exists {
		return payroll.SalaryModal{}, payroll.ErrModalNameExists
	}

	components, err := json.Marshal(modal.Components)
	if err != nil {
		return payroll.SalaryModal{}, fmt.Errorf("failed to marshal modal components: %w", err)
	}

	query := `
		INSERT INTO salary_modals (id, company_id, name, description, is_active, components, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, company_id, name, description, is_active, components, created_at, updated_at
	`

	created, err := scanSalaryModal(q.QueryRow(ctx, query,
		uuid.New().String(), modal.CompanyID, modal.Name, modal.Description, modal.IsActive, components,
	))
	if err != nil {
		return payroll.SalaryModal{}, fmt.Errorf("failed to create salary modal: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetSalaryModalByID(ctx context.Context, id string, companyID string) (payroll.SalaryModal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, description, is_active, components, created_at, updated_at
		FROM salary_modals
		WHERE id = $1 AND company_id = $2
	`

	m, err := scanSalaryModal(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalaryModal{}, payroll.ErrModalNotFound
		}
		return payroll.SalaryModal{}, fmt.Errorf("failed to get salary modal: %w", err)
	}

	return m, nil
}

func (r *payrollRepository) ListSalaryModals(ctx context.Context, companyID string) ([]payroll.SalaryModal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, description, is_active, components, created_at, updated_at
		FROM salary_modals
		WHERE company_id = $1
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary modals: %w", err)
	}
	defer rows.Close()

	var modals []payroll.SalaryModal
	for rows.Next() {
		m, err := scanSalaryModal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary modal: %w", err)
		}
		modals = append(modals, m)
	}

	return modals, rows.Err()
}

func (r *payrollRepository) UpdateSalaryModal(ctx context.Context, companyID string, req payroll.UpdateSalaryModalRequest) (payroll.SalaryModal, error) {
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
	if req.Components != nil {
		components, err := json.Marshal(*req.Components)
		if err != nil {
			return payroll.SalaryModal{}, fmt.Errorf("failed to marshal modal components: %w", err)
		}
		add("components", components)
	}

	query := `UPDATE salary_modals SET ` + strings.Join(updates, ", ") +
		` WHERE id = $1 AND company_id = $2
		RETURNING id, company_id, name, description, is_active, components, created_at, updated_at`

	m, err := scanSalaryModal(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalaryModal{}, payroll.ErrModalNotFound
		}
		return payroll.SalaryModal{}, fmt.Errorf("failed to update salary modal: %w", err)
	}

	return m, nil
}

func (r *payrollRepository) DeleteSalaryModal(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_modals WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete salary modal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrModalNotFound
	}

	return nil
}

// ========== SALARY STRUCTURES ==========

const structureColumns = `id, employee_id, company_id, effective_from, effective_to, is_current,
	   ctc, gross_salary, net_salary, earnings, deductions,
	   working_days_basis, paid_leave_types, pf_applicable, esi_applicable, pt_applicable,
	   revision_reason, created_by, created_at, updated_at`

func scanStructure(row pgx.Row) (payroll.EmployeeSalaryStructure, error) {
	var s payroll.EmployeeSalaryStructure
	var earnings, deductions, paidLeaveTypes []byte
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.CompanyID, &s.EffectiveFrom, &s.EffectiveTo, &s.IsCurrent,
		&s.CTC, &s.GrossSalary, &s.NetSalary, &earnings, &deductions,
		&s.WorkingDaysBasis, &paidLeaveTypes, &s.PFApplicable, &s.ESIApplicable, &s.PTApplicable,
		&s.RevisionReason, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return s, err
	}
	if len(earnings) > 0 {
		if err := json.Unmarshal(earnings, &s.Earnings); err != nil {
			return s, fmt.Errorf("failed to unmarshal structure earnings: %w", err)
		}
	}
	if len(deductions) > 0 {
		if err := json.Unmarshal(deductions, &s.Deductions); err != nil {
			return s, fmt.Errorf("failed to unmarshal structure deductions: %w", err)
		}
	}
	if len(paidLeaveTypes) > 0 {
		if err := json.Unmarshal(paidLeaveTypes, &s.PaidLeaveTypes); err != nil {
			s.PaidLeaveTypes = nil
		}
	}
	return s, nil
}

func (r *payrollRepository) CreateStructure(ctx context.Context, structure payroll.EmployeeSalaryStructure) (payroll.EmployeeSalaryStructure, error) {
	earnings, err := json.Marshal(structure.Earnings)
	if err != nil {
		return payroll.EmployeeSalaryStructure{}, fmt.Errorf("failed to marshal structure earnings: %w", err)
	}
	deductions, err := json.Marshal(structure.Deductions)
	if err != nil {
		return payroll.EmployeeSalaryStructure{}, fmt.Errorf("failed to marshal structure deductions: %w", err)
	}
	paidLeaveTypes, err := json.Marshal(structure.PaidLeaveTypes)
	if err != nil {
		return payroll.EmployeeSalaryStructure{}, fmt.Errorf("failed to marshal paid leave types: %w", err)
	}

	var created payroll.EmployeeSalaryStructure
	err = WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		// Supersede the previous current structure atomically with the insert
		// so exactly one current row exists per employee.
		_, err := tx.Exec(ctx, `
			UPDATE employee_salary_structures
			SET is_current = FALSE, effective_to = $3, updated_at = NOW()
			WHERE employee_id = $1 AND company_id = $2 AND is_current = TRUE
		`, structure.EmployeeID, structure.CompanyID, structure.EffectiveFrom)
		if err != nil {
			return fmt.Errorf("failed to supersede current structure: %w", err)
		}

		query := `
			INSERT INTO employee_salary_structures (
				id, employee_id, company_id, effective_from, effective_to, is_current,
				ctc, gross_salary, net_salary, earnings, deductions,
				working_days_basis, paid_leave_types, pf_applicable, esi_applicable, pt_applicable,
				revision_reason, created_by, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, TRUE, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW()
			)
			RETURNING ` + structureColumns

		created, err = scanStructure(tx.QueryRow(ctx, query,
			uuid.New().String(), structure.EmployeeID, structure.CompanyID,
			structure.EffectiveFrom, structure.EffectiveTo,
			structure.CTC, structure.GrossSalary, structure.NetSalary, earnings, deductions,
			structure.WorkingDaysBasis, paidLeaveTypes,
			structure.PFApplicable, structure.ESIApplicable, structure.PTApplicable,
			structure.RevisionReason, structure.CreatedBy,
		))
		if err != nil {
			return fmt.Errorf("failed to create salary structure: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.EmployeeSalaryStructure{}, err
	}

	return created, nil
}

func (r *payrollRepository) GetCurrentStructure(ctx context.Context, employeeID string, companyID string) (payroll.EmployeeSalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + structureColumns + `
		FROM employee_salary_structures
		WHERE employee_id = $1 AND company_id = $2 AND is_current = TRUE
		LIMIT 1`

	s, err := scanStructure(q.QueryRow(ctx, query, employeeID, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.EmployeeSalaryStructure{}, payroll.ErrStructureNotFound
		}
		return payroll.EmployeeSalaryStructure{}, fmt.Errorf("failed to get current structure: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) ListStructures(ctx context.Context, companyID string, filter payroll.StructureFilter) ([]payroll.EmployeeSalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + structureColumns + ` FROM employee_salary_structures WHERE company_id = $1`
	args := []interface{}{companyID}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.CurrentOnly {
		query += " AND is_current = TRUE"
	}
	query += " ORDER BY effective_from DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary structures: %w", err)
	}
	defer rows.Close()

	var structures []payroll.EmployeeSalaryStructure
	for rows.Next() {
		s, err := scanStructure(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary structure: %w", err)
		}
		structures = append(structures, s)
	}

	return structures, rows.Err()
}

// ========== RUNS ==========

const runColumns = `id, company_id, month, year, pay_period_start, pay_period_end, status,
	   department_filter, branch_filter, employee_ids,
	   total_employees, total_gross, total_deductions, total_net_pay,
	   calculated_by, calculated_at, approved_by, approved_at, remarks,
	   created_at, updated_at`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	var employeeIDs []byte
	err := row.Scan(
		&run.ID, &run.CompanyID, &run.Month, &run.Year, &run.PayPeriodStart, &run.PayPeriodEnd, &run.Status,
		&run.DepartmentFilter, &run.BranchFilter, &employeeIDs,
		&run.TotalEmployees, &run.TotalGross, &run.TotalDeductions, &run.TotalNetPay,
		&run.CalculatedBy, &run.CalculatedAt, &run.ApprovedBy, &run.ApprovedAt, &run.Remarks,
		&run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return run, err
	}
	if len(employeeIDs) > 0 {
		if err := json.Unmarshal(employeeIDs, &run.EmployeeIDs); err != nil {
			run.EmployeeIDs = nil
		}
	}
	return run, nil
}

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	// Duplicate periods are rejected at creation, not at calculation.
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payroll_runs WHERE company_id = $1 AND month = $2 AND year = $3)`,
		run.CompanyID, run.Month, run.Year,
	).Scan(&exists)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to check existing run: %w", err)
	}
	if exists {
		return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
	}

	var employeeIDs []byte
	if len(run.EmployeeIDs) > 0 {
		employeeIDs, err = json.Marshal(run.EmployeeIDs)
		if err != nil {
			return payroll.PayrollRun{}, fmt.Errorf("failed to marshal employee ids: %w", err)
		}
	}

	query := `
		INSERT INTO payroll_runs (
			id, company_id, month, year, pay_period_start, pay_period_end, status,
			department_filter, branch_filter, employee_ids, remarks,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, 'draft', $7, $8, $9, $10, NOW(), NOW()
		)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query,
		uuid.New().String(), run.CompanyID, run.Month, run.Year, run.PayPeriodStart, run.PayPeriodEnd,
		run.DepartmentFilter, run.BranchFilter, employeeIDs, run.Remarks,
	))
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE company_id = $1`
	args := []interface{}{companyID}

	if filter.Month != nil {
		args = append(args, *filter.Month)
		query += fmt.Sprintf(" AND month = $%d", len(args))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY year DESC, month DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *payrollRepository) MarkRunProcessing(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	// The status guard lives in the WHERE clause so a run in any later state
	// is rejected without a read-modify-write race.
	tag, err := q.Exec(ctx, `
		UPDATE payroll_runs SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status IN ('draft', 'processing')
	`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to mark run processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotCalculable
	}

	return nil
}

func (r *payrollRepository) CompleteRun(ctx context.Context, id string, companyID string, result payroll.CalculateRunResult, calculatedBy string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_runs SET
			status = 'calculated',
			total_employees = $3,
			total_gross = $4,
			total_deductions = $5,
			total_net_pay = $6,
			calculated_by = $7,
			calculated_at = $8,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = 'processing'
	`, id, companyID, result.TotalEmployees, result.TotalGross, result.TotalDeductions, result.TotalNetPay, calculatedBy, at)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotCalculable
	}

	return nil
}

func (r *payrollRepository) ApproveRun(ctx context.Context, id string, companyID string, approvedBy string, at time.Time) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		// Compare-and-set: of two concurrent approvals exactly one matches
		// status = 'calculated'.
		tag, err := tx.Exec(ctx, `
			UPDATE payroll_runs SET
				status = 'approved',
				approved_by = $3,
				approved_at = $4,
				updated_at = NOW()
			WHERE id = $1 AND company_id = $2 AND status = 'calculated'
		`, id, companyID, approvedBy, at)
		if err != nil {
			return fmt.Errorf("failed to approve run: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return payroll.ErrRunNotApprovable
		}

		_, err = tx.Exec(ctx, `
			UPDATE payroll_transactions SET status = 'approved', updated_at = NOW()
			WHERE payroll_run_id = $1 AND status = 'calculated'
		`, id)
		if err != nil {
			return fmt.Errorf("failed to approve run transactions: %w", err)
		}

		return nil
	})
}

// ========== TRANSACTIONS ==========

const transactionColumns = `id, payroll_run_id, employee_id, company_id, month, year,
	   pay_period_start, pay_period_end,
	   employee_name, employee_number, designation, department,
	   total_working_days, days_present, days_absent, days_leave,
	   paid_leaves, unpaid_leaves, lop_days, lop_amount,
	   gross_salary, total_earnings, total_deductions, net_salary,
	   earnings_breakdown, deductions_breakdown,
	   status, hold_reason, payment_mode, payment_date, payment_reference, remarks,
	   created_at, updated_at`

func scanTransaction(row pgx.Row) (payroll.PayrollTransaction, error) {
	var t payroll.PayrollTransaction
	var earnings, deductions []byte
	err := row.Scan(
		&t.ID, &t.PayrollRunID, &t.EmployeeID, &t.CompanyID, &t.Month, &t.Year,
		&t.PayPeriodStart, &t.PayPeriodEnd,
		&t.EmployeeName, &t.EmployeeNumber, &t.Designation, &t.Department,
		&t.TotalWorkingDays, &t.DaysPresent, &t.DaysAbsent, &t.DaysLeave,
		&t.PaidLeaves, &t.UnpaidLeaves, &t.LOPDays, &t.LOPAmount,
		&t.GrossSalary, &t.TotalEarnings, &t.TotalDeductions, &t.NetSalary,
		&earnings, &deductions,
		&t.Status, &t.HoldReason, &t.PaymentMode, &t.PaymentDate, &t.PaymentReference, &t.Remarks,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}
	if len(earnings) > 0 {
		if err := json.Unmarshal(earnings, &t.EarningsBreakdown); err != nil {
			return t, fmt.Errorf("failed to unmarshal earnings breakdown: %w", err)
		}
	}
	if len(deductions) > 0 {
		if err := json.Unmarshal(deductions, &t.DeductionsBreakdown); err != nil {
			return t, fmt.Errorf("failed to unmarshal deductions breakdown: %w", err)
		}
	}
	return t, nil
}

func (r *payrollRepository) UpsertTransaction(ctx context.Context, txn payroll.PayrollTransaction) error {
	q := GetQuerier(ctx, r.db)

	earnings, err := json.Marshal(txn.EarningsBreakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal earnings breakdown: %w", err)
	}
	deductions, err := json.Marshal(txn.DeductionsBreakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal deductions breakdown: %w", err)
	}

	// Keyed on (payroll_run_id, employee_id): recalculation replaces the row
	// instead of duplicating it.
	query := `
		INSERT INTO payroll_transactions (
			id, payroll_run_id, employee_id, company_id, month, year,
			pay_period_start, pay_period_end,
			employee_name, employee_number, designation, department,
			total_working_days, days_present, days_absent, days_leave,
			paid_leaves, unpaid_leaves, lop_days, lop_amount,
			gross_salary, total_earnings, total_deductions, net_salary,
			earnings_breakdown, deductions_breakdown, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, 'calculated', NOW(), NOW()
		)
		ON CONFLICT (payroll_run_id, employee_id) DO UPDATE SET
			total_working_days = EXCLUDED.total_working_days,
			days_present = EXCLUDED.days_present,
			days_absent = EXCLUDED.days_absent,
			days_leave = EXCLUDED.days_leave,
			paid_leaves = EXCLUDED.paid_leaves,
			unpaid_leaves = EXCLUDED.unpaid_leaves,
			lop_days = EXCLUDED.lop_days,
			lop_amount = EXCLUDED.lop_amount,
			gross_salary = EXCLUDED.gross_salary,
			total_earnings = EXCLUDED.total_earnings,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			earnings_breakdown = EXCLUDED.earnings_breakdown,
			deductions_breakdown = EXCLUDED.deductions_breakdown,
			status = 'calculated',
			updated_at = NOW()
	`

	_, err = q.Exec(ctx, query,
		uuid.New().String(), txn.PayrollRunID, txn.EmployeeID, txn.CompanyID, txn.Month, txn.Year,
		txn.PayPeriodStart, txn.PayPeriodEnd,
		txn.EmployeeName, txn.EmployeeNumber, txn.Designation, txn.Department,
		txn.TotalWorkingDays, txn.DaysPresent, txn.DaysAbsent, txn.DaysLeave,
		txn.PaidLeaves, txn.UnpaidLeaves, txn.LOPDays, txn.LOPAmount,
		txn.GrossSalary, txn.TotalEarnings, txn.TotalDeductions, txn.NetSalary,
		earnings, deductions,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert payroll transaction: %w", err)
	}

	return nil
}

func (r *payrollRepository) GetTransactionByID(ctx context.Context, id string, companyID string) (payroll.PayrollTransaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + transactionColumns + ` FROM payroll_transactions WHERE id = $1 AND company_id = $2`

	t, err := scanTransaction(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollTransaction{}, payroll.ErrTransactionNotFound
		}
		return payroll.PayrollTransaction{}, fmt.Errorf("failed to get payroll transaction: %w", err)
	}

	return t, nil
}

func (r *payrollRepository) ListTransactionsByRun(ctx context.Context, runID string, companyID string) ([]payroll.PayrollTransaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + transactionColumns + `
		FROM payroll_transactions
		WHERE payroll_run_id = $1 AND company_id = $2
		ORDER BY employee_name`

	rows, err := q.Query(ctx, query, runID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll transactions: %w", err)
	}
	defer rows.Close()

	var transactions []payroll.PayrollTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

func (r *payrollRepository) UpdateTransaction(ctx context.Context, companyID string, req payroll.UpdateTransactionRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := []string{"updated_at = NOW()"}
	args := []interface{}{req.ID, companyID}

	add := func(column string, value interface{}) {
		args = append(args, value)
		updates = append(updates, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.HoldReason != nil {
		add("hold_reason", *req.HoldReason)
	}
	if req.PaymentMode != nil {
		add("payment_mode", *req.PaymentMode)
	}
	if req.PaymentDate != nil {
		add("payment_date", *req.PaymentDate)
	}
	if req.PaymentReference != nil {
		add("payment_reference", *req.PaymentReference)
	}
	if req.Remarks != nil {
		add("remarks", *req.Remarks)
	}

	if len(updates) == 1 {
		return payroll.ErrNoTransactionFields
	}

	query := `UPDATE payroll_transactions SET ` + strings.Join(updates, ", ") + ` WHERE id = $1 AND company_id = $2`

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update payroll transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrTransactionNotFound
	}

	return nil
}
