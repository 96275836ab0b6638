package render

import (
	"strings"
	"testing"

	"github.com/siteforge/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSite() *models.SiteModel {
	return &models.SiteModel{
		Name:           "Acme",
		TemplateKind:   models.TemplateKindRestaurant,
		PrimaryColor:   "#112233",
		SecondaryColor: "#445566",
	}
}

func TestPageMarkupMode(t *testing.T) {
	page := &models.PageModel{Title: "Menu", Slug: "menu"}
	page.SetContent(models.MarkupContent{
		HTML: "<h1>Menu</h1>",
		CSS:  "h1 { color: red }",
		JS:   "console.log('menu')",
	})

	got := Page(testSite(), page)

	assert.Equal(t, "Acme", got.Site.Name)
	assert.Equal(t, models.TemplateKindRestaurant, got.Site.TemplateKind)
	assert.Equal(t, models.RenderModeMarkup, got.Page.RenderMode)
	assert.Empty(t, got.Page.ComponentSource)

	doc := got.Page.Document
	require.NotEmpty(t, doc)

	// Styles land in the head, markup in the body, script after markup.
	styleAt := strings.Index(doc, "h1 { color: red }")
	markupAt := strings.Index(doc, "<h1>Menu</h1>")
	scriptAt := strings.Index(doc, "console.log('menu')")
	require.True(t, styleAt >= 0 && markupAt >= 0 && scriptAt >= 0)
	assert.Less(t, styleAt, markupAt)
	assert.Less(t, markupAt, scriptAt)
	assert.Contains(t, doc, "defer")
}

func TestPageComponentMode(t *testing.T) {
	page := &models.PageModel{Title: "App", Slug: "app"}
	page.SetContent(models.ComponentContent{Source: "export default { render() {} }"})

	got := Page(testSite(), page)

	assert.Equal(t, models.RenderModeComponent, got.Page.RenderMode)
	assert.Equal(t, "export default { render() {} }", got.Page.ComponentSource)
	assert.Empty(t, got.Page.Document)
}

// A row that still carries the other mode's columns must not leak them.
func TestPageStaleModeDoesNotLeak(t *testing.T) {
	page := &models.PageModel{
		Title:           "Stale",
		Slug:            "stale",
		RenderMode:      models.RenderModeComponent,
		ComponentSource: "export default {}",
		HTML:            "<p>left over</p>",
		CSS:             "p{}",
	}

	got := Page(testSite(), page)

	assert.Equal(t, "export default {}", got.Page.ComponentSource)
	assert.Empty(t, got.Page.Document)
}

func TestPageTitleIsEscaped(t *testing.T) {
	page := &models.PageModel{Title: `<script>alert("x")</script>`, Slug: "p"}
	page.SetContent(models.MarkupContent{HTML: "<p>ok</p>"})

	got := Page(testSite(), page)
	assert.NotContains(t, got.Page.Document, `<title><script>`)
	assert.Contains(t, got.Page.Document, "&lt;script&gt;")
}
