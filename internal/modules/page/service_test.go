package page

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/siteforge/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.SiteModel{}, &models.PageModel{}))
	return db
}

func seedSite(t *testing.T, db *gorm.DB, subdomain string) *models.SiteModel {
	t.Helper()
	site := &models.SiteModel{Name: subdomain, Subdomain: subdomain, OwnerUserID: "owner-1"}
	require.NoError(t, db.Create(site).Error)
	return site
}

func TestResolveForPath(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	home, err := svc.Create(site.ID, &CreatePageDTO{Title: "Home", Slug: "home", IsHome: true, HTML: "<h1>hi</h1>"})
	require.NoError(t, err)
	unpublished := false
	_, err = svc.Create(site.ID, &CreatePageDTO{Title: "About", Slug: "about", Published: &unpublished})
	require.NoError(t, err)

	t.Run("root resolves the home page", func(t *testing.T) {
		got, err := svc.ResolveForPath(site.ID, "/")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, home.ID, got.ID)
	})

	t.Run("root resolves by the home flag, not the slug", func(t *testing.T) {
		require.NoError(t, db.Model(&models.PageModel{}).Where("id = ?", home.ID).Update("slug", "welcome").Error)
		got, err := svc.ResolveForPath(site.ID, "/")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, home.ID, got.ID)
		require.NoError(t, db.Model(&models.PageModel{}).Where("id = ?", home.ID).Update("slug", "home").Error)
	})

	t.Run("unpublished page behaves like a missing one", func(t *testing.T) {
		got, err := svc.ResolveForPath(site.ID, "/about")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("unknown slug", func(t *testing.T) {
		got, err := svc.ResolveForPath(site.ID, "/missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("resolution is idempotent", func(t *testing.T) {
		first, err := svc.ResolveForPath(site.ID, "/home")
		require.NoError(t, err)
		second, err := svc.ResolveForPath(site.ID, "/home")
		require.NoError(t, err)
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("other sites' pages do not leak", func(t *testing.T) {
		other := seedSite(t, db, "other")
		got, err := svc.ResolveForPath(other.ID, "/home")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	_, err := svc.Create(site.ID, &CreatePageDTO{Title: "One", Slug: "contact"})
	require.NoError(t, err)
	_, err = svc.Create(site.ID, &CreatePageDTO{Title: "Two", Slug: "contact"})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestCreateRejectsMixedContent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	_, err := svc.Create(site.ID, &CreatePageDTO{
		Title: "Bad", Slug: "bad",
		HTML:            "<p>markup</p>",
		ComponentSource: "export default {}",
	})
	assert.ErrorIs(t, err, ErrContentConflict)
}

// A site with pages always has exactly one home page, even when the
// caller never asks for one.
func TestFirstPageBecomesHome(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	about, err := svc.Create(site.ID, &CreatePageDTO{Title: "About", Slug: "about", IsHome: false})
	require.NoError(t, err)
	assert.True(t, about.IsHome)

	var homes int64
	require.NoError(t, db.Model(&models.PageModel{}).
		Where("site_id = ? AND is_home = ?", site.ID, true).Count(&homes).Error)
	assert.EqualValues(t, 1, homes)

	resolved, err := svc.ResolveForPath(site.ID, "/")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, about.ID, resolved.ID)

	// A later non-home page leaves the home flag where it is.
	contact, err := svc.Create(site.ID, &CreatePageDTO{Title: "Contact", Slug: "contact"})
	require.NoError(t, err)
	assert.False(t, contact.IsHome)
}

// After the sole page of a site is deleted, the next page created
// becomes the new home.
func TestHomeReassignedAfterSoleHomeDeleted(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	home, err := svc.Create(site.ID, &CreatePageDTO{Title: "Home", Slug: "home", IsHome: true})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(site.ID, home.ID))

	replacement, err := svc.Create(site.ID, &CreatePageDTO{Title: "Landing", Slug: "landing"})
	require.NoError(t, err)
	assert.True(t, replacement.IsHome)
}

func TestCreateHomeDisplacesPreviousHome(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	first, err := svc.Create(site.ID, &CreatePageDTO{Title: "First", Slug: "first", IsHome: true})
	require.NoError(t, err)
	second, err := svc.Create(site.ID, &CreatePageDTO{Title: "Second", Slug: "second", IsHome: true})
	require.NoError(t, err)

	var homes []models.PageModel
	require.NoError(t, db.Where("site_id = ? AND is_home = ?", site.ID, true).Find(&homes).Error)
	require.Len(t, homes, 1)
	assert.Equal(t, second.ID, homes[0].ID)

	reloaded, err := svc.GetByID(site.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsHome)
}

func TestUpdateSwitchesRenderMode(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	page, err := svc.Create(site.ID, &CreatePageDTO{Title: "P", Slug: "p", HTML: "<p>old</p>", CSS: "p{}"})
	require.NoError(t, err)

	source := "export default { render() {} }"
	updated, err := svc.Update(site.ID, page.ID, &UpdatePageDTO{ComponentSource: &source})
	require.NoError(t, err)

	assert.Equal(t, models.RenderModeComponent, updated.RenderMode)
	content, ok := updated.Content().(models.ComponentContent)
	require.True(t, ok)
	assert.Equal(t, source, content.Source)
	// The markup columns were cleared on the switch.
	assert.Empty(t, updated.HTML)
	assert.Empty(t, updated.CSS)
}

func TestDeleteHomeGuard(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	home, err := svc.Create(site.ID, &CreatePageDTO{Title: "Home", Slug: "home", IsHome: true})
	require.NoError(t, err)
	about, err := svc.Create(site.ID, &CreatePageDTO{Title: "About", Slug: "about"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(site.ID, home.ID), ErrHomeHasSiblings)

	require.NoError(t, svc.Delete(site.ID, about.ID))
	require.NoError(t, svc.Delete(site.ID, home.ID))

	var count int64
	require.NoError(t, db.Model(&models.PageModel{}).Where("site_id = ?", site.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeletedSlugIsReusable(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	page, err := svc.Create(site.ID, &CreatePageDTO{Title: "Contact", Slug: "contact"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(site.ID, page.ID))

	_, err = svc.Create(site.ID, &CreatePageDTO{Title: "Contact again", Slug: "contact"})
	assert.NoError(t, err)
}

func TestSetHome(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	site := seedSite(t, db, "acme")

	_, err := svc.Create(site.ID, &CreatePageDTO{Title: "Home", Slug: "home", IsHome: true})
	require.NoError(t, err)
	about, err := svc.Create(site.ID, &CreatePageDTO{Title: "About", Slug: "about"})
	require.NoError(t, err)

	require.NoError(t, svc.SetHome(site.ID, about.ID))

	var homes []models.PageModel
	require.NoError(t, db.Where("site_id = ? AND is_home = ?", site.ID, true).Find(&homes).Error)
	require.Len(t, homes, 1)
	assert.Equal(t, about.ID, homes[0].ID)

	resolved, err := svc.ResolveForPath(site.ID, "/")
	require.NoError(t, err)
	assert.Equal(t, about.ID, resolved.ID)
}

func TestSlugFromPath(t *testing.T) {
	cases := map[string]string{
		"/":        "",
		"":         "",
		"/about":   "about",
		"/About/":  "about",
		"about":    "about",
		"//about/": "about",
	}
	for path, want := range cases {
		assert.Equal(t, want, slugFromPath(path), "path %q", path)
	}
}
