package grace

import (
	"context"
	"time"
)

// FineModalRepository defines data access for fine modal templates.
// All methods include companyID to prevent cross-company data access.
type FineModalRepository interface {
	Create(ctx context.Context, modal FineModal) (FineModal, error)
	GetByID(ctx context.Context, id string, companyID string) (FineModal, error)
	List(ctx context.Context, companyID string) ([]FineModal, error)
	Update(ctx context.Context, companyID string, req UpdateFineModalRequest) (FineModal, error)
	Delete(ctx context.Context, id string, companyID string) error
}

// SourceRepository loads the resolution inputs for one employee: the grace
// configs attached at each precedence level plus the shift fallback and the
// violation count feeding the decision engine. Implementations must return a
// nil config (not an error) for malformed stored data.
type SourceRepository interface {
	StaffConfig(ctx context.Context, companyID, employeeID string) (*Config, error)
	DepartmentConfig(ctx context.Context, companyID, employeeID string) (*Config, error)
	CompanyConfig(ctx context.Context, companyID string) (*Config, error)
	ShiftGraceMinutes(ctx context.Context, companyID, employeeID string) (int, error)
	CountViolations(ctx context.Context, companyID, employeeID string, violation ViolationType, from, to time.Time) (int, error)
}

// GraceService is the engine surface consumed by live attendance marking.
type GraceService interface {
	ResolveConfig(ctx context.Context, employeeID string) (Resolved, error)
	Resolve(ctx context.Context, req ResolveGraceRequest) (ResolveGraceResponse, error)

	CreateFineModal(ctx context.Context, req CreateFineModalRequest) (FineModalResponse, error)
	GetFineModal(ctx context.Context, id string) (FineModalResponse, error)
	ListFineModals(ctx context.Context) ([]FineModalResponse, error)
	UpdateFineModal(ctx context.Context, req UpdateFineModalRequest) (FineModalResponse, error)
	DeleteFineModal(ctx context.Context, id string) error
}
