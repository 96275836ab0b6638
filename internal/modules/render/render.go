// Package render turns a resolved site and page into the payload the
// visitor-facing frontend consumes.
package render

import (
	"fmt"
	"html"

	"github.com/siteforge/core/internal/models"
)

type SiteInfo struct {
	Name           string `json:"name"`
	TemplateKind   string `json:"template"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
}

type PagePayload struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	RenderMode string `json:"renderMode"`

	// Markup mode: a single assembled document.
	Document string `json:"content,omitempty"`

	// Component mode: raw source for the caller-side runtime. Never
	// evaluated here.
	ComponentSource string `json:"componentSource,omitempty"`
}

type Result struct {
	Site SiteInfo    `json:"site"`
	Page PagePayload `json:"page"`
}

// Page branches purely on the stored render mode. Content projection
// goes through PageModel.Content so a row carrying stale fields from
// the other mode never leaks them.
func Page(site *models.SiteModel, page *models.PageModel) Result {
	out := Result{
		Site: SiteInfo{
			Name:           site.Name,
			TemplateKind:   site.TemplateKind,
			PrimaryColor:   site.PrimaryColor,
			SecondaryColor: site.SecondaryColor,
		},
		Page: PagePayload{
			Title:      page.Title,
			Slug:       page.Slug,
			RenderMode: page.RenderMode,
		},
	}

	switch content := page.Content().(type) {
	case models.MarkupContent:
		out.Page.Document = assembleDocument(page.Title, content)
	case models.ComponentContent:
		out.Page.ComponentSource = content.Source
	}
	return out
}

// assembleDocument concatenates the three markup parts into one HTML
// document. Styles go in the head, markup in the body, and the script
// is deferred so it runs only after the markup exists.
func assembleDocument(title string, c models.MarkupContent) string {
	head := fmt.Sprintf("<title>%s</title>", html.EscapeString(title))
	if c.CSS != "" {
		head += fmt.Sprintf("<style>%s</style>", c.CSS)
	}
	body := c.HTML
	if c.JS != "" {
		body += fmt.Sprintf(`<script type="module" defer>%s</script>`, c.JS)
	}
	return fmt.Sprintf(
		"<!DOCTYPE html><html><head><meta charset=\"utf-8\">%s</head><body>%s</body></html>",
		head, body,
	)
}
