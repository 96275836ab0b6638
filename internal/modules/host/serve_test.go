package host

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePages struct {
	pages map[string]*models.PageModel
	err   error
}

func (f *fakePages) ResolveForPath(siteID, path string) (*models.PageModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[siteID+path], nil
}

type fakeRecorder struct {
	calls chan string
}

func (f *fakeRecorder) Record(siteID, path, referrer, userAgent string) {
	f.calls <- siteID + path
}

func newServeRouter(dir Directory, pages PageResolver, rec VisitRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Serve(NewResolver(dir, nil, zap.NewNop()), pages, rec, zap.NewNop()))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "platform")
	})
	return r
}

func markupPage(id, slug string) *models.PageModel {
	p := &models.PageModel{SiteID: "acme-id", Slug: slug, Title: "Page", Published: true}
	p.ID = id
	p.SetContent(models.MarkupContent{HTML: "<h1>hi</h1>"})
	return p
}

func TestServeTenantHit(t *testing.T) {
	dir := &fakeDirectory{bySubdomain: map[string]*models.SiteModel{"acme": site("acme")}}
	pages := &fakePages{pages: map[string]*models.PageModel{"acme-id/": markupPage("p1", "home")}}
	rec := &fakeRecorder{calls: make(chan string, 1)}
	r := newServeRouter(dir, pages, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "acme.example.com"
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Site struct {
			Name string `json:"name"`
		} `json:"site"`
		Page struct {
			RenderMode string `json:"renderMode"`
			Document   string `json:"content"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "acme", body.Site.Name)
	assert.Equal(t, models.RenderModeMarkup, body.Page.RenderMode)
	assert.Contains(t, body.Page.Document, "<h1>hi</h1>")

	select {
	case call := <-rec.calls:
		assert.Equal(t, "acme-id/", call)
	case <-time.After(time.Second):
		t.Fatal("visit was not recorded")
	}
}

func TestServePassThroughWithoutTenant(t *testing.T) {
	dir := &fakeDirectory{}
	rec := &fakeRecorder{calls: make(chan string, 1)}
	r := newServeRouter(dir, &fakePages{}, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "localhost:4000"
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "platform", w.Body.String())
	assert.Empty(t, rec.calls)
}

func TestServeUnknownPageIs404(t *testing.T) {
	dir := &fakeDirectory{bySubdomain: map[string]*models.SiteModel{"acme": site("acme")}}
	rec := &fakeRecorder{calls: make(chan string, 1)}
	r := newServeRouter(dir, &fakePages{pages: map[string]*models.PageModel{}}, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Host = "acme.example.com"
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, rec.calls)
}

// Page-store trouble on the serving path degrades to 404, never 5xx.
func TestServeStoreErrorDegradesTo404(t *testing.T) {
	dir := &fakeDirectory{bySubdomain: map[string]*models.SiteModel{"acme": site("acme")}}
	rec := &fakeRecorder{calls: make(chan string, 1)}
	r := newServeRouter(dir, &fakePages{err: errors.New("store down")}, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "acme.example.com"
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
