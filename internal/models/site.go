package models

// Template kinds known to the platform. The column is an open string so
// new marketplace categories do not require a migration.
const (
	TemplateKindGeneral    = "general"
	TemplateKindRestaurant = "restaurant"
	TemplateKindPharma     = "pharma"
)

// SiteModel is one tenant: an independently branded website resolved by
// subdomain or custom domain.
type SiteModel struct {
	Base
	Name           string  `json:"name"            gorm:"not null"`
	Subdomain      string  `json:"subdomain"       gorm:"uniqueIndex;not null"`
	CustomDomain   *string `json:"custom_domain"   gorm:"uniqueIndex"`
	OwnerUserID    string  `json:"owner_user_id"   gorm:"index;not null"`
	TemplateKind   string  `json:"template_kind"   gorm:"default:general"`
	PrimaryColor   string  `json:"primary_color"`
	SecondaryColor string  `json:"secondary_color"`
}

func (SiteModel) TableName() string { return "sites" }
