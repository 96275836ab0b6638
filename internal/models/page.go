package models

// Render modes. A page stores exactly one content shape; the other
// mode's columns are cleared on every write so a stale shape can never
// leak into a response.
const (
	RenderModeMarkup    = "markup"
	RenderModeComponent = "component"
)

// PageModel is one page of a site, keyed by slug within that site.
// At most one page per site carries IsHome = true.
type PageModel struct {
	Base
	SiteID          string `json:"site_id"          gorm:"index;uniqueIndex:idx_site_slug,priority:1;not null"`
	Slug            string `json:"slug"             gorm:"uniqueIndex:idx_site_slug,priority:2;not null"`
	Title           string `json:"title"            gorm:"not null"`
	IsHome          bool   `json:"is_home"          gorm:"default:false"`
	Published       bool   `json:"published"        gorm:"default:true"`
	RenderMode      string `json:"render_mode"      gorm:"default:markup"`
	HTML            string `json:"html"             gorm:"type:longtext"`
	CSS             string `json:"css"              gorm:"type:longtext"`
	JS              string `json:"js"               gorm:"type:longtext"`
	ComponentSource string `json:"component_source" gorm:"type:longtext"`
}

func (PageModel) TableName() string { return "pages" }

// PageContent is the tagged union of the two content shapes. The two
// implementations are structurally exclusive: a page yields exactly one
// of them depending on its render mode.
type PageContent interface {
	isPageContent()
}

// MarkupContent is the html/css/js bundle of a markup-mode page.
type MarkupContent struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// ComponentContent is the raw component source of a component-mode page.
// The platform only stores and retrieves it; it never evaluates it.
type ComponentContent struct {
	Source string `json:"source"`
}

func (MarkupContent) isPageContent()    {}
func (ComponentContent) isPageContent() {}

// Content projects the stored columns through the render-mode tag. Only
// the active mode's columns are read, so content left behind by a mode
// switch is invisible to callers.
func (p *PageModel) Content() PageContent {
	if p.RenderMode == RenderModeComponent {
		return ComponentContent{Source: p.ComponentSource}
	}
	return MarkupContent{HTML: p.HTML, CSS: p.CSS, JS: p.JS}
}

// SetContent writes one content shape and clears the other mode's
// columns in the same assignment.
func (p *PageModel) SetContent(content PageContent) {
	switch c := content.(type) {
	case ComponentContent:
		p.RenderMode = RenderModeComponent
		p.ComponentSource = c.Source
		p.HTML, p.CSS, p.JS = "", "", ""
	case MarkupContent:
		p.RenderMode = RenderModeMarkup
		p.HTML, p.CSS, p.JS = c.HTML, c.CSS, c.JS
		p.ComponentSource = ""
	}
}
