package overtime

import "context"

// TemplateRepository persists overtime templates. All lookups are scoped by
// company.
type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id, companyID string) (*Template, error)
	GetDefault(ctx context.Context, companyID string) (*Template, error)
	List(ctx context.Context, companyID string) ([]Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id, companyID string) error

	// ClearDefault unsets is_default on every template of the company except
	// the given id. Called in the same transaction as the write that sets a
	// new default.
	ClearDefault(ctx context.Context, companyID, exceptID string) error
}

type OvertimeService interface {
	CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*TemplateResponse, error)
	GetTemplate(ctx context.Context, id string) (*TemplateResponse, error)
	GetDefaultTemplate(ctx context.Context) (*TemplateResponse, error)
	ListTemplates(ctx context.Context) ([]TemplateResponse, error)
	UpdateTemplate(ctx context.Context, req *UpdateTemplateRequest) (*TemplateResponse, error)
	DeleteTemplate(ctx context.Context, id string) error
}
