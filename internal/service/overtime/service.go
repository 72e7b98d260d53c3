package overtime

import (
	"context"
	"fmt"

	"github.com/bizzpass/crm-backend-go/internal/domain/overtime"
	"github.com/bizzpass/crm-backend-go/internal/pkg/database"
	"github.com/bizzpass/crm-backend-go/internal/repository/postgresql"
	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
)

type OvertimeServiceImpl struct {
	db           *database.DB
	templateRepo overtime.TemplateRepository
}

func NewOvertimeService(db *database.DB, templateRepo overtime.TemplateRepository) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		db:           db,
		templateRepo: templateRepo,
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

func (s *OvertimeServiceImpl) CreateTemplate(ctx context.Context, req *overtime.CreateTemplateRequest) (*overtime.TemplateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	template := &overtime.Template{
		CompanyID: companyID,
		Name:      req.Name,
		Config:    req.Config,
	}
	if req.CompanyType != nil {
		template.CompanyType = *req.CompanyType
	}
	if req.IsDefault != nil {
		template.IsDefault = *req.IsDefault
	}

	// Setting a new default demotes the previous one in one transaction.
	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		if err := s.templateRepo.Create(txCtx, template); err != nil {
			return err
		}
		if template.IsDefault {
			return s.templateRepo.ClearDefault(txCtx, companyID, template.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mapToTemplateResponse(template), nil
}

func (s *OvertimeServiceImpl) GetTemplate(ctx context.Context, id string) (*overtime.TemplateResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	template, err := s.templateRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	return mapToTemplateResponse(template), nil
}

// GetDefaultTemplate returns the company's default template, the one applied
// when a payroll run's employee has no explicit template assignment.
func (s *OvertimeServiceImpl) GetDefaultTemplate(ctx context.Context) (*overtime.TemplateResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	template, err := s.templateRepo.GetDefault(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return mapToTemplateResponse(template), nil
}

func (s *OvertimeServiceImpl) ListTemplates(ctx context.Context) ([]overtime.TemplateResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	templates, err := s.templateRepo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]overtime.TemplateResponse, 0, len(templates))
	for i := range templates {
		responses = append(responses, *mapToTemplateResponse(&templates[i]))
	}

	return responses, nil
}

func (s *OvertimeServiceImpl) UpdateTemplate(ctx context.Context, req *overtime.UpdateTemplateRequest) (*overtime.TemplateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	template, err := s.templateRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.CompanyType != nil {
		template.CompanyType = *req.CompanyType
	}
	if req.IsDefault != nil {
		template.IsDefault = *req.IsDefault
	}
	if req.Config != nil {
		template.Config = *req.Config
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		if err := s.templateRepo.Update(txCtx, template); err != nil {
			return err
		}
		if template.IsDefault {
			return s.templateRepo.ClearDefault(txCtx, companyID, template.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mapToTemplateResponse(template), nil
}

func (s *OvertimeServiceImpl) DeleteTemplate(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.templateRepo.Delete(ctx, id, companyID)
}

func mapToTemplateResponse(t *overtime.Template) *overtime.TemplateResponse {
	return &overtime.TemplateResponse{
		ID:          t.ID,
		CompanyID:   t.CompanyID,
		Name:        t.Name,
		CompanyType: t.CompanyType,
		IsDefault:   t.IsDefault,
		Config:      t.Config,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
