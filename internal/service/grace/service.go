package grace

import (
	"context"
	"fmt"
	"time"

	"github.com/bizzpass/crm-backend-go/internal/domain/grace"
	"github.com/go-chi/jwtauth/v5"
)

type GraceServiceImpl struct {
	fineModalRepo grace.FineModalRepository
	sourceRepo    grace.SourceRepository
}

func NewGraceService(
	fineModalRepo grace.FineModalRepository,
	sourceRepo grace.SourceRepository,
) grace.GraceService {
	return &GraceServiceImpl{
		fineModalRepo: fineModalRepo,
		sourceRepo:    sourceRepo,
	}
}

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

// ========== RESOLUTION ==========

// ResolveConfig walks the precedence chain for the employee: staff fine
// modal, department fine modal, company payroll settings, shift fallback.
// Source errors for malformed stored data never occur here; the repository
// maps them to absent configs so resolution falls through.
func (s *GraceServiceImpl) ResolveConfig(ctx context.Context, employeeID string) (grace.Resolved, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return grace.Resolved{}, err
	}

	return s.resolveConfig(ctx, companyID, employeeID)
}

func (s *GraceServiceImpl) resolveConfig(ctx context.Context, companyID, employeeID string) (grace.Resolved, error) {
	staffCfg, err := s.sourceRepo.StaffConfig(ctx, companyID, employeeID)
	if err != nil {
		return grace.Resolved{}, err
	}
	deptCfg, err := s.sourceRepo.DepartmentConfig(ctx, companyID, employeeID)
	if err != nil {
		return grace.Resolved{}, err
	}
	companyCfg, err := s.sourceRepo.CompanyConfig(ctx, companyID)
	if err != nil {
		return grace.Resolved{}, err
	}
	shiftMinutes, err := s.sourceRepo.ShiftGraceMinutes(ctx, companyID, employeeID)
	if err != nil {
		return grace.Resolved{}, err
	}

	return grace.ResolveLevels(staffCfg, deptCfg, companyCfg, shiftMinutes), nil
}

// Resolve answers one live violation event: should grace absorb it, and
// under which effective rule.
func (s *GraceServiceImpl) Resolve(ctx context.Context, req grace.ResolveGraceRequest) (grace.ResolveGraceResponse, error) {
	if err := req.Validate(); err != nil {
		return grace.ResolveGraceResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return grace.ResolveGraceResponse{}, err
	}

	cfg, err := s.resolveConfig(ctx, companyID, req.EmployeeID)
	if err != nil {
		return grace.ResolveGraceResponse{}, err
	}

	violation := grace.ViolationType(req.ViolationType)
	date, _ := time.Parse("2006-01-02", req.Date)

	rule := cfg.Rule(violation)
	cycleStart := grace.CycleStart(rule.ResetCycle, date, rule.WeekStartDay)

	priorCount, err := s.sourceRepo.CountViolations(ctx, companyID, req.EmployeeID, violation, cycleStart, date)
	if err != nil {
		return grace.ResolveGraceResponse{}, err
	}

	applies, reason := grace.Decide(violation, req.Minutes, cfg, priorCount, req.AttendanceStatus, req.LeaveApproved)

	return grace.ResolveGraceResponse{
		AppliesGrace:      applies,
		Reason:            string(reason),
		EffectiveRule:     rule,
		ViolationsInCycle: priorCount,
		CycleStart:        cycleStart.Format("2006-01-02"),
	}, nil
}

// ========== FINE MODALS ==========

func (s *GraceServiceImpl) CreateFineModal(ctx context.Context, req grace.CreateFineModalRequest) (grace.FineModalResponse, error) {
	if err := req.Validate(); err != nil {
		return grace.FineModalResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return grace.FineModalResponse{}, err
	}

	modal := grace.FineModal{
		CompanyID:             companyID,
		Name:                  req.Name,
		IsActive:              true,
		GraceConfig:           req.GraceConfig,
		FineCalculationMethod: "per_minute",
		FineFixedAmount:       req.FineFixedAmount,
	}
	if req.Description != nil {
		modal.Description = *req.Description
	}
	if req.IsActive != nil {
		modal.IsActive = *req.IsActive
	}
	if req.FineCalculationMethod != nil {
		modal.FineCalculationMethod = *req.FineCalculationMethod
	}
	if modal.GraceConfig == nil {
		cfg := grace.DefaultConfig()
		modal.GraceConfig = &cfg
	}

	created, err := s.fineModalRepo.Create(ctx, modal)
	if err != nil {
		return grace.FineModalResponse{}, err
	}

	return mapToFineModalResponse(created), nil
}

func (s *GraceServiceImpl) GetFineModal(ctx context.Context, id string) (grace.FineModalResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return grace.FineModalResponse{}, err
	}

	modal, err := s.fineModalRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return grace.FineModalResponse{}, err
	}

	return mapToFineModalResponse(modal), nil
}

func (s *GraceServiceImpl) ListFineModals(ctx context.Context) ([]grace.FineModalResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	modals, err := s.fineModalRepo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]grace.FineModalResponse, 0, len(modals))
	for _, m := range modals {
		responses = append(responses, mapToFineModalResponse(m))
	}

	return responses, nil
}

func (s *GraceServiceImpl) UpdateFineModal(ctx context.Context, req grace.UpdateFineModalRequest) (grace.FineModalResponse, error) {
	if err := req.Validate(); err != nil {
		return grace.FineModalResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return grace.FineModalResponse{}, err
	}

	updated, err := s.fineModalRepo.Update(ctx, companyID, req)
	if err != nil {
		return grace.FineModalResponse{}, err
	}

	return mapToFineModalResponse(updated), nil
}

func (s *GraceServiceImpl) DeleteFineModal(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.fineModalRepo.Delete(ctx, id, companyID)
}

func mapToFineModalResponse(m grace.FineModal) grace.FineModalResponse {
	cfg := grace.DefaultConfig()
	if m.GraceConfig != nil {
		cfg = *m.GraceConfig
	}
	return grace.FineModalResponse{
		ID:                    m.ID,
		CompanyID:             m.CompanyID,
		Name:                  m.Name,
		Description:           m.Description,
		IsActive:              m.IsActive,
		GraceConfig:           cfg,
		FineCalculationMethod: m.FineCalculationMethod,
		FineFixedAmount:       m.FineFixedAmount,
	}
}
