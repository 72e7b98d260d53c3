package overtime

import (
	"context"
	"testing"

	"github.com/bizzpass/crm-backend-go/internal/domain/overtime"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "company-1"

func authedContext(t *testing.T) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"company_id": testCompanyID,
		"user_id":    "user-1",
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fakeTemplateRepo struct {
	templates map[string]overtime.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[string]overtime.Template)}
}

func (f *fakeTemplateRepo) Create(ctx context.Context, t *overtime.Template) error {
	f.templates[t.ID] = *t
	return nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id, companyID string) (*overtime.Template, error) {
	t, ok := f.templates[id]
	if !ok || t.CompanyID != companyID {
		return nil, overtime.ErrTemplateNotFound
	}
	return &t, nil
}

func (f *fakeTemplateRepo) GetDefault(ctx context.Context, companyID string) (*overtime.Template, error) {
	for _, t := range f.templates {
		if t.CompanyID == companyID && t.IsDefault {
			return &t, nil
		}
	}
	return nil, overtime.ErrTemplateNotFound
}

func (f *fakeTemplateRepo) List(ctx context.Context, companyID string) ([]overtime.Template, error) {
	var out []overtime.Template
	for _, t := range f.templates {
		if t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, t *overtime.Template) error {
	f.templates[t.ID] = *t
	return nil
}

func (f *fakeTemplateRepo) Delete(ctx context.Context, id, companyID string) error {
	delete(f.templates, id)
	return nil
}

func (f *fakeTemplateRepo) ClearDefault(ctx context.Context, companyID, exceptID string) error {
	for id, t := range f.templates {
		if t.CompanyID == companyID && id != exceptID {
			t.IsDefault = false
			f.templates[id] = t
		}
	}
	return nil
}

func TestGetDefaultTemplate(t *testing.T) {
	ctx := authedContext(t)

	repo := newFakeTemplateRepo()
	repo.templates["tpl-1"] = overtime.Template{ID: "tpl-1", CompanyID: testCompanyID, Name: "Standard"}
	repo.templates["tpl-2"] = overtime.Template{ID: "tpl-2", CompanyID: testCompanyID, Name: "Factory", IsDefault: true}
	repo.templates["tpl-3"] = overtime.Template{ID: "tpl-3", CompanyID: "other-company", Name: "Theirs", IsDefault: true}

	service := NewOvertimeService(nil, repo)

	resp, err := service.GetDefaultTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tpl-2", resp.ID)
	assert.Equal(t, "Factory", resp.Name)
	assert.True(t, resp.IsDefault)
}

func TestGetDefaultTemplate_NoneConfigured(t *testing.T) {
	ctx := authedContext(t)

	repo := newFakeTemplateRepo()
	repo.templates["tpl-1"] = overtime.Template{ID: "tpl-1", CompanyID: testCompanyID, Name: "Standard"}

	service := NewOvertimeService(nil, repo)

	_, err := service.GetDefaultTemplate(ctx)
	assert.ErrorIs(t, err, overtime.ErrTemplateNotFound)
}

func TestGetDefaultTemplate_RequiresClaims(t *testing.T) {
	service := NewOvertimeService(nil, newFakeTemplateRepo())

	_, err := service.GetDefaultTemplate(context.Background())
	assert.Error(t, err)
}
