package site

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/middleware"
	"github.com/siteforge/core/internal/models"
	jwtpkg "github.com/siteforge/core/internal/pkg/jwt"
	"github.com/siteforge/core/internal/modules/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubProvisioner struct {
	err   error
	calls int
}

func (s *stubProvisioner) Provision(_ context.Context, _, _ string) (*models.TemplateModel, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.TemplateModel{Name: "T", Category: models.TemplateKindGeneral}, nil
}

func newSiteRouter(db *gorm.DB, prov Provisioner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	NewHandler(NewService(db), prov, nil).RegisterRoutes(api, middleware.Auth())
	return r
}

func authedRequest(t *testing.T, method, path, body, userID string) *http.Request {
	t.Helper()
	token, err := jwtpkg.Sign(userID, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// A provisioning failure leaves the site row behind, so the error body
// must name the site id for the retry path.
func TestCreateProvisionFailureCarriesSiteID(t *testing.T) {
	db := newTestDB(t)
	prov := &stubProvisioner{err: template.ErrTemplateIncomplete}
	r := newSiteRouter(db, prov)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/sites",
		`{"name":"Acme","subdomain":"acme","templateId":"tpl-1"}`, "owner-1"))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		SiteID string `json:"siteId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.SiteID)

	// The retry goes through re-provisioning, not site re-creation.
	prov.err = nil
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPut, "/api/v1/sites/"+body.SiteID+"/template",
		`{"templateId":"tpl-1"}`, "owner-1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, prov.calls)
}

func TestCreateSiteHTTP(t *testing.T) {
	db := newTestDB(t)
	r := newSiteRouter(db, &stubProvisioner{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/sites",
		`{"name":"Acme","subdomain":"acme","templateId":"tpl-1"}`, "owner-1"))
	require.Equal(t, http.StatusCreated, w.Code)

	// Re-creating the same subdomain is a conflict.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/sites",
		`{"name":"Acme","subdomain":"acme","templateId":"tpl-1"}`, "owner-1"))
	assert.Equal(t, http.StatusConflict, w.Code)
}
