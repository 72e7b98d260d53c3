package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizzpass/crm-backend-go/internal/domain/payroll"
	"github.com/bizzpass/crm-backend-go/internal/domain/staff"
	"github.com/bizzpass/crm-backend-go/internal/pkg/database"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	db          *database.DB
	payrollRepo payroll.PayrollRepository
	staffDir    staff.Directory
	attendance  payroll.AttendanceStore
	leaves      payroll.LeaveStore
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	staffDir staff.Directory,
	attendance payroll.AttendanceStore,
	leaves payroll.LeaveStore,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		db:          db,
		payrollRepo: payrollRepo,
		staffDir:    staffDir,
		attendance:  attendance,
		leaves:      leaves,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// ========== SETTINGS ==========

func (s *PayrollServiceImpl) GetSettings(ctx context.Context) (payroll.SettingsResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	settings, err := s.payrollRepo.GetSettings(ctx, companyID)
	if err != nil {
		if errors.Is(err, payroll.ErrSettingsNotConfigured) {
			return payroll.SettingsResponse{Configured: false}, nil
		}
		return payroll.SettingsResponse{}, err
	}

	return payroll.SettingsResponse{Configured: true, Settings: &settings}, nil
}

func (s *PayrollServiceImpl) UpsertSettings(ctx context.Context, req payroll.UpsertSettingsRequest) (payroll.PayrollSettings, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollSettings{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollSettings{}, err
	}

	settings, err := s.payrollRepo.GetSettings(ctx, companyID)
	if err != nil {
		if !errors.Is(err, payroll.ErrSettingsNotConfigured) {
			return payroll.PayrollSettings{}, err
		}
		settings = defaultSettings(companyID)
	}

	applySettingsRequest(&settings, req)

	return s.payrollRepo.UpsertSettings(ctx, settings)
}

// defaultSettings is the lazily-created baseline policy for a company that
// has never saved settings.
func defaultSettings(companyID string) payroll.PayrollSettings {
	return payroll.PayrollSettings{
		CompanyID:              companyID,
		PayCycleType:           "monthly",
		PayDay:                 1,
		AttendanceCutoffDay:    25,
		WorkingDaysBasis:       payroll.Basis26Days,
		WorkingHoursPerDay:     decimal.NewFromInt(8),
		LOPCalculationMethod:   "per_day",
		LOPDeductionMultiplier: decimal.NewFromInt(1),
		OvertimeBasis:          "hourly",
		WeekdayOTMultiplier:    decimal.NewFromFloat(1.5),
		WeekendOTMultiplier:    decimal.NewFromInt(2),
		HolidayOTMultiplier:    decimal.NewFromFloat(2.5),
		PFEnabled:              true,
		PFEmployeeRate:         decimal.NewFromInt(12),
		PFEmployerRate:         decimal.NewFromInt(12),
		PFWageCeiling:          decimal.NewFromInt(15000),
		ESIEnabled:             true,
		ESIEmployeeRate:        decimal.NewFromFloat(0.75),
		ESIEmployerRate:        decimal.NewFromFloat(3.25),
		ESIWageCeiling:         decimal.NewFromInt(21000),
		PTEnabled:              true,
		TDSEnabled:             true,
		GratuityEnabled:        true,
		Currency:               "INR",
	}
}

func applySettingsRequest(settings *payroll.PayrollSettings, req payroll.UpsertSettingsRequest) {
	if req.PayCycleType != nil {
		settings.PayCycleType = *req.PayCycleType
	}
	if req.PayDay != nil {
		settings.PayDay = *req.PayDay
	}
	if req.AttendanceCutoffDay != nil {
		settings.AttendanceCutoffDay = *req.AttendanceCutoffDay
	}
	if req.WorkingDaysBasis != nil {
		settings.WorkingDaysBasis = payroll.WorkingDaysBasis(*req.WorkingDaysBasis)
	}
	if req.CustomWorkingDays != nil {
		settings.CustomWorkingDays = req.CustomWorkingDays
	}
	if req.WorkingHoursPerDay != nil {
		settings.WorkingHoursPerDay = *req.WorkingHoursPerDay
	}
	if req.PaidLeaveTypes != nil {
		settings.PaidLeaveTypes = *req.PaidLeaveTypes
	}
	if req.LOPCalculationMethod != nil {
		settings.LOPCalculationMethod = *req.LOPCalculationMethod
	}
	if req.LOPDeductionMultiplier != nil {
		settings.LOPDeductionMultiplier = *req.LOPDeductionMultiplier
	}
	if req.GraceConfig != nil {
		settings.GraceConfig = req.GraceConfig
	}
	if req.OvertimeEnabled != nil {
		settings.OvertimeEnabled = *req.OvertimeEnabled
	}
	if req.OvertimeBasis != nil {
		settings.OvertimeBasis = *req.OvertimeBasis
	}
	if req.WeekdayOTMultiplier != nil {
		settings.WeekdayOTMultiplier = *req.WeekdayOTMultiplier
	}
	if req.WeekendOTMultiplier != nil {
		settings.WeekendOTMultiplier = *req.WeekendOTMultiplier
	}
	if req.HolidayOTMultiplier != nil {
		settings.HolidayOTMultiplier = *req.HolidayOTMultiplier
	}
	if req.MaxOTHoursPerMonth != nil {
		settings.MaxOTHoursPerMonth = req.MaxOTHoursPerMonth
	}
	if req.PFEnabled != nil {
		settings.PFEnabled = *req.PFEnabled
	}
	if req.PFEmployeeRate != nil {
		settings.PFEmployeeRate = *req.PFEmployeeRate
	}
	if req.PFEmployerRate != nil {
		settings.PFEmployerRate = *req.PFEmployerRate
	}
	if req.PFWageCeiling != nil {
		settings.PFWageCeiling = *req.PFWageCeiling
	}
	if req.ESIEnabled != nil {
		settings.ESIEnabled = *req.ESIEnabled
	}
	if req.ESIEmployeeRate != nil {
		settings.ESIEmployeeRate = *req.ESIEmployeeRate
	}
	if req.ESIEmployerRate != nil {
		settings.ESIEmployerRate = *req.ESIEmployerRate
	}
	if req.ESIWageCeiling != nil {
		settings.ESIWageCeiling = *req.ESIWageCeiling
	}
	if req.PTEnabled != nil {
		settings.PTEnabled = *req.PTEnabled
	}
	if req.TDSEnabled != nil {
		settings.TDSEnabled = *req.TDSEnabled
	}
	if req.GratuityEnabled != nil {
		settings.GratuityEnabled = *req.GratuityEnabled
	}
	if req.Currency != nil {
		settings.Currency = *req.Currency
	}
}

// ========== COMPONENTS ==========

func (s *PayrollServiceImpl) CreateComponent(ctx context.Context, req payroll.CreateComponentRequest) (payroll.ComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ComponentResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ComponentResponse{}, err
	}

	component := payroll.SalaryComponent{
		CompanyID:        companyID,
		Name:             req.Name,
		DisplayName:      req.DisplayName,
		Kind:             payroll.ComponentKind(req.Kind),
		CalculationType:  payroll.CalculationType(req.CalculationType),
		CalculationValue: req.CalculationValue,
		Formula:          req.Formula,
		IsTaxable:        true,
		AffectsGross:     true,
		AffectsNet:       true,
		MinValue:         req.MinValue,
		MaxValue:         req.MaxValue,
		PriorityOrder:    req.PriorityOrder,
		IsActive:         true,
	}
	if component.DisplayName == "" {
		component.DisplayName = req.Name
	}
	if req.Category != nil {
		component.Category = *req.Category
	}
	if req.IsTaxable != nil {
		component.IsTaxable = *req.IsTaxable
	}
	if req.IsStatutory != nil {
		component.IsStatutory = *req.IsStatutory
	}
	if req.AffectsGross != nil {
		component.AffectsGross = *req.AffectsGross
	}
	if req.AffectsNet != nil {
		component.AffectsNet = *req.AffectsNet
	}
	if req.IsActive != nil {
		component.IsActive = *req.IsActive
	}

	created, err := s.payrollRepo.CreateComponent(ctx, component)
	if err != nil {
		return payroll.ComponentResponse{}, err
	}

	return mapToComponentResponse(created), nil
}

func (s *PayrollServiceImpl) GetComponent(ctx context.Context, id string) (payroll.ComponentResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ComponentResponse{}, err
	}

	component, err := s.payrollRepo.GetComponentByID(ctx, id, companyID)
	if err != nil {
		return payroll.ComponentResponse{}, err
	}

	return mapToComponentResponse(component), nil
}

func (s *PayrollServiceImpl) ListComponents(ctx context.Context, kind *payroll.ComponentKind, activeOnly bool) ([]payroll.ComponentResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	components, err := s.payrollRepo.ListComponents(ctx, companyID, kind, activeOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.ComponentResponse, 0, len(components))
	for _, c := range components {
		responses = append(responses, mapToComponentResponse(c))
	}

	return responses, nil
}

func (s *PayrollServiceImpl) UpdateComponent(ctx context.Context, req payroll.UpdateComponentRequest) (payroll.ComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ComponentResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ComponentResponse{}, err
	}

	updated, err := s.payrollRepo.UpdateComponent(ctx, companyID, req)
	if err != nil {
		return payroll.ComponentResponse{}, err
	}

	return mapToComponentResponse(updated), nil
}

func (s *PayrollServiceImpl) DeactivateComponent(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.payrollRepo.DeactivateComponent(ctx, id, companyID)
}

func mapToComponentResponse(c payroll.SalaryComponent) payroll.ComponentResponse {
	return payroll.ComponentResponse{
		ID:               c.ID,
		CompanyID:        c.CompanyID,
		Name:             c.Name,
		DisplayName:      c.DisplayName,
		Kind:             string(c.Kind),
		Category:         c.Category,
		CalculationType:  string(c.CalculationType),
		CalculationValue: c.CalculationValue,
		IsTaxable:        c.IsTaxable,
		IsStatutory:      c.IsStatutory,
		AffectsGross:     c.AffectsGross,
		AffectsNet:       c.AffectsNet,
		MinValue:         c.MinValue,
		MaxValue:         c.MaxValue,
		PriorityOrder:    c.PriorityOrder,
		IsActive:         c.IsActive,
	}
}

// ========== SALARY MODALS ==========

func (s *PayrollServiceImpl) CreateSalaryModal(ctx context.Context, req payroll.CreateSalaryModalRequest) (payroll.SalaryModalResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryModalResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.SalaryModalResponse{}, err
	}

	// Weak references: every component in the template must exist.
	for _, c := range req.Components {
		if _, err := s.payrollRepo.GetComponentByID(ctx, c.ComponentID, companyID); err != nil {
			return payroll.SalaryModalResponse{}, err
		}
	}

	modal := payroll.SalaryModal{
		CompanyID:  companyID,
		Name:       req.Name,
		IsActive:   true,
		Components: req.Components,
	}
	if req.Description != nil {
		modal.Description = *req.Description
	}
	if req.IsActive != nil {
		modal.IsActive = *req.IsActive
	}

	created, err := s.payrollRepo.CreateSalaryModal(ctx, modal)
	if err != nil {
		return payroll.SalaryModalResponse{}, err
	}

	return mapToSalaryModalResponse(created), nil
}

func (s *PayrollServiceImpl) GetSalaryModal(ctx context.Context, id string) (payroll.SalaryModalResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.SalaryModalResponse{}, err
	}

	modal, err := s.payrollRepo.GetSalaryModalByID(ctx, id, companyID)
	if err != nil {
		return payroll.SalaryModalResponse{}, err
	}

	return mapToSalaryModalResponse(modal), nil
}

func (s *PayrollServiceImpl) ListSalaryModals(ctx context.Context) ([]payroll.SalaryModalResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	modals, err := s.payrollRepo.ListSalaryModals(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.SalaryModalResponse, 0, len(modals))
	for _, m := range modals {
		responses = append(responses, mapToSalaryModalResponse(m))
	}

	return responses, nil
}

func (s *PayrollServiceImpl) UpdateSalaryModal(ctx context.Context, req payroll.UpdateSalaryModalRequest) (payroll.SalaryModalResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.SalaryModalResponse{}, err
	}

	if req.Components != nil {
		for _, c := range *req.Components {
			if _, err := s.payrollRepo.GetComponentByID(ctx, c.ComponentID, companyID); err != nil {
				return payroll.SalaryModalResponse{}, err
			}
		}
	}

	updated, err := s.payrollRepo.UpdateSalaryModal(ctx, companyID, req)
	if err != nil {
		return payroll.SalaryModalResponse{}, err
	}

	return mapToSalaryModalResponse(updated), nil
}

func (s *PayrollServiceImpl) DeleteSalaryModal(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.payrollRepo.DeleteSalaryModal(ctx, id, companyID)
}

func mapToSalaryModalResponse(m payroll.SalaryModal) payroll.SalaryModalResponse {
	return payroll.SalaryModalResponse{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		Components:  m.Components,
	}
}

// ========== SALARY STRUCTURES ==========

func (s *PayrollServiceImpl) CreateStructure(ctx context.Context, req payroll.CreateStructureRequest) (payroll.EmployeeSalaryStructure, error) {
	if err := req.Validate(); err != nil {
		return payroll.EmployeeSalaryStructure{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.EmployeeSalaryStructure{}, err
	}

	if _, err := s.staffDir.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		if errors.Is(err, staff.ErrStaffNotFound) {
			return payroll.EmployeeSalaryStructure{}, payroll.ErrEmployeeNotFound
		}
		return payroll.EmployeeSalaryStructure{}, err
	}

	effectiveFrom, _ := time.Parse("2006-01-02", req.EffectiveFrom)

	structure := payroll.EmployeeSalaryStructure{
		EmployeeID:     req.EmployeeID,
		CompanyID:      companyID,
		EffectiveFrom:  effectiveFrom,
		IsCurrent:      true,
		CTC:            req.CTC,
		GrossSalary:    req.GrossSalary,
		NetSalary:      req.NetSalary,
		Earnings:       req.Earnings,
		Deductions:     req.Deductions,
		PaidLeaveTypes: req.PaidLeaveTypes,
		PFApplicable:   true,
		ESIApplicable:  true,
		PTApplicable:   true,
		RevisionReason: req.RevisionReason,
		CreatedBy:      userID,
	}
	if req.EffectiveTo != nil {
		if to, err := time.Parse("2006-01-02", *req.EffectiveTo); err == nil {
			structure.EffectiveTo = &to
		}
	}
	if req.WorkingDaysBasis != nil {
		basis := payroll.WorkingDaysBasis(*req.WorkingDaysBasis)
		structure.WorkingDaysBasis = &basis
	}
	if req.PFApplicable != nil {
		structure.PFApplicable = *req.PFApplicable
	}
	if req.ESIApplicable != nil {
		structure.ESIApplicable = *req.ESIApplicable
	}
	if req.PTApplicable != nil {
		structure.PTApplicable = *req.PTApplicable
	}

	return s.payrollRepo.CreateStructure(ctx, structure)
}

func (s *PayrollServiceImpl) ListStructures(ctx context.Context, filter payroll.StructureFilter) ([]payroll.EmployeeSalaryStructure, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return s.payrollRepo.ListStructures(ctx, companyID, filter)
}

// ========== TRANSACTIONS ==========

func (s *PayrollServiceImpl) GetTransaction(ctx context.Context, id string) (payroll.PayrollTransaction, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollTransaction{}, err
	}

	return s.payrollRepo.GetTransactionByID(ctx, id, companyID)
}

func (s *PayrollServiceImpl) UpdateTransaction(ctx context.Context, req payroll.UpdateTransactionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.payrollRepo.UpdateTransaction(ctx, companyID, req)
}
