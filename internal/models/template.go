package models

// TemplatePage is the content of one logical page inside a template.
type TemplatePage struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
	CSS   string `json:"css"`
	JS    string `json:"js"`
}

// TemplateModel is a reusable page set offered by the marketplace.
// Provisioning copies its content into a site's pages; templates are
// never linked, so editing one later does not touch provisioned sites.
type TemplateModel struct {
	Base
	Name     string                  `json:"name"     gorm:"not null"`
	Category string                  `json:"category" gorm:"index;default:general"`
	Approved bool                    `json:"approved" gorm:"default:false"`
	Pages    map[string]TemplatePage `json:"pages"    gorm:"serializer:json;type:longtext"`
}

func (TemplateModel) TableName() string { return "templates" }
