package site

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/siteforge/core/internal/models"
	"github.com/siteforge/core/internal/pkg/pagination"
	"github.com/siteforge/core/internal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrSubdomainTaken    = errors.New("subdomain already exists")
	ErrCustomDomainTaken = errors.New("custom domain already exists")
	ErrInvalidSubdomain  = errors.New("subdomain must be lowercase letters, digits and hyphens")
)

// subdomainPattern: lowercase URL-safe labels, no leading/trailing hyphen.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// reservedSubdomains can never be claimed by a tenant; they collide with
// platform surfaces.
var reservedSubdomains = map[string]struct{}{
	"www": {}, "api": {}, "admin": {}, "app": {}, "dashboard": {},
}

type CreateSiteDTO struct {
	Name           string  `json:"name"           binding:"required"`
	Subdomain      string  `json:"subdomain"      binding:"required"`
	TemplateID     string  `json:"templateId"     binding:"required"`
	CustomDomain   *string `json:"customDomain"`
	PrimaryColor   string  `json:"primaryColor"`
	SecondaryColor string  `json:"secondaryColor"`
}

type UpdateSiteDTO struct {
	Name           *string `json:"name"`
	CustomDomain   *string `json:"customDomain"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) GetByID(id string) (*models.SiteModel, error) {
	var site models.SiteModel
	if err := s.db.First(&site, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &site, nil
}

// GetBySubdomain is the tenant-directory lookup for multi-label hosts.
// Pure read: resolution never creates or mutates a site.
func (s *Service) GetBySubdomain(subdomain string) (*models.SiteModel, error) {
	var site models.SiteModel
	if err := s.db.Where("subdomain = ?", subdomain).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &site, nil
}

// GetByCustomDomain is the tenant-directory lookup for two-label hosts.
func (s *Service) GetByCustomDomain(domain string) (*models.SiteModel, error) {
	var site models.SiteModel
	if err := s.db.Where("custom_domain = ?", domain).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &site, nil
}

func (s *Service) ListByOwner(ownerID string, q pagination.Query) ([]models.SiteModel, response.Pagination, error) {
	tx := s.db.Model(&models.SiteModel{}).Where("owner_user_id = ?", ownerID).Order("created_at ASC")
	var sites []models.SiteModel
	pag, err := pagination.Paginate(tx, q, &sites)
	return sites, pag, err
}

// Create registers a tenant. Page provisioning happens separately so
// that the provisioner owns the one multi-row transaction.
func (s *Service) Create(ownerID string, dto *CreateSiteDTO) (*models.SiteModel, error) {
	subdomain := strings.ToLower(strings.TrimSpace(dto.Subdomain))
	if err := validateSubdomain(subdomain); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.SiteModel{}).Where("subdomain = ?", subdomain).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSubdomainTaken
	}

	site := models.SiteModel{
		Name:           strings.TrimSpace(dto.Name),
		Subdomain:      subdomain,
		OwnerUserID:    ownerID,
		PrimaryColor:   dto.PrimaryColor,
		SecondaryColor: dto.SecondaryColor,
	}
	if dto.CustomDomain != nil {
		normalized, err := s.normalizeCustomDomain(*dto.CustomDomain, "")
		if err != nil {
			return nil, err
		}
		site.CustomDomain = normalized
	}

	if err := s.db.Create(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *Service) Update(id string, dto *UpdateSiteDTO) (*models.SiteModel, error) {
	site, err := s.GetByID(id)
	if err != nil || site == nil {
		return site, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.CustomDomain != nil {
		normalized, err := s.normalizeCustomDomain(*dto.CustomDomain, site.ID)
		if err != nil {
			return nil, err
		}
		updates["custom_domain"] = normalized
	}
	if dto.PrimaryColor != nil {
		updates["primary_color"] = *dto.PrimaryColor
	}
	if dto.SecondaryColor != nil {
		updates["secondary_color"] = *dto.SecondaryColor
	}
	if len(updates) == 0 {
		return site, nil
	}

	if err := s.db.Model(site).Updates(updates).Error; err != nil {
		return nil, err
	}
	return site, nil
}

// TransferOwnership reassigns the site to another user.
func (s *Service) TransferOwnership(id, newOwnerID string) error {
	newOwnerID = strings.TrimSpace(newOwnerID)
	if newOwnerID == "" {
		return errors.New("new owner id is required")
	}
	return s.db.Model(&models.SiteModel{}).Where("id = ?", id).
		Update("owner_user_id", newOwnerID).Error
}

// Delete removes a site and everything it owns. The ownership graph is
// walked in a fixed order inside one transaction: pages, then analytics
// events, then the site row itself. Children are hard-deleted so their
// unique keys (site_id, slug) are freed immediately.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("site_id = ?", id).Delete(&models.PageModel{}).Error; err != nil {
			return fmt.Errorf("delete pages: %w", err)
		}
		if err := tx.Unscoped().Where("site_id = ?", id).Delete(&models.AnalyticsEventModel{}).Error; err != nil {
			return fmt.Errorf("delete analytics: %w", err)
		}
		if err := tx.Unscoped().Delete(&models.SiteModel{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete site: %w", err)
		}
		return nil
	})
}

func validateSubdomain(subdomain string) error {
	if subdomain == "" || len(subdomain) > 63 || !subdomainPattern.MatchString(subdomain) {
		return ErrInvalidSubdomain
	}
	if _, reserved := reservedSubdomains[subdomain]; reserved {
		return ErrSubdomainTaken
	}
	return nil
}

// normalizeCustomDomain lowercases and uniqueness-checks a domain.
// Returns nil when the caller is clearing the domain.
func (s *Service) normalizeCustomDomain(raw, selfID string) (*string, error) {
	domain := strings.ToLower(strings.TrimSpace(raw))
	if domain == "" {
		return nil, nil
	}

	tx := s.db.Model(&models.SiteModel{}).Where("custom_domain = ?", domain)
	if selfID != "" {
		tx = tx.Where("id <> ?", selfID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCustomDomainTaken
	}
	return &domain, nil
}
