package page

import (
	"errors"
	"regexp"
	"strings"

	"github.com/siteforge/core/internal/models"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken       = errors.New("slug already exists on this site")
	ErrInvalidSlug     = errors.New("slug must be lowercase letters, digits and hyphens")
	ErrHomeHasSiblings = errors.New("cannot delete the home page while other pages exist")
	ErrContentConflict = errors.New("page content must be either markup or a component, not both")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

type CreatePageDTO struct {
	Title           string `json:"title"   binding:"required"`
	Slug            string `json:"slug"    binding:"required"`
	IsHome          bool   `json:"isHome"`
	Published       *bool  `json:"published"`
	HTML            string `json:"html"`
	CSS             string `json:"css"`
	JS              string `json:"js"`
	ComponentSource string `json:"componentSource"`
}

type UpdatePageDTO struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	Published       *bool   `json:"published"`
	HTML            *string `json:"html"`
	CSS             *string `json:"css"`
	JS              *string `json:"js"`
	ComponentSource *string `json:"componentSource"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// ResolveForPath maps a request path to the page that serves it.
// "/" (or "") resolves to the home page; any other path is matched by
// its first segment as a slug. Only published pages resolve, so an
// unpublished page is indistinguishable from a missing one.
func (s *Service) ResolveForPath(siteID, path string) (*models.PageModel, error) {
	slug := slugFromPath(path)

	tx := s.db.Where("site_id = ? AND published = ?", siteID, true)
	if slug == "" {
		tx = tx.Where("is_home = ?", true)
	} else {
		tx = tx.Where("slug = ?", slug)
	}

	var page models.PageModel
	if err := tx.First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

func (s *Service) GetByID(siteID, pageID string) (*models.PageModel, error) {
	var page models.PageModel
	if err := s.db.Where("site_id = ? AND id = ?", siteID, pageID).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

func (s *Service) ListBySite(siteID string) ([]models.PageModel, error) {
	var pages []models.PageModel
	err := s.db.Where("site_id = ?", siteID).Order("is_home DESC, slug ASC").Find(&pages).Error
	return pages, err
}

func (s *Service) Create(siteID string, dto *CreatePageDTO) (*models.PageModel, error) {
	slug := strings.ToLower(strings.TrimSpace(dto.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}
	if dto.ComponentSource != "" && (dto.HTML != "" || dto.CSS != "" || dto.JS != "") {
		return nil, ErrContentConflict
	}

	published := true
	if dto.Published != nil {
		published = *dto.Published
	}

	page := models.PageModel{
		SiteID:    siteID,
		Title:     strings.TrimSpace(dto.Title),
		Slug:      slug,
		IsHome:    dto.IsHome,
		Published: published,
	}
	if dto.ComponentSource != "" {
		page.SetContent(models.ComponentContent{Source: dto.ComponentSource})
	} else {
		page.SetContent(models.MarkupContent{HTML: dto.HTML, CSS: dto.CSS, JS: dto.JS})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PageModel{}).
			Where("site_id = ? AND slug = ?", siteID, slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSlugTaken
		}
		// The first page of a site is always the home page, whatever
		// the caller asked for; a site with pages but no home would
		// leave "/" unresolvable.
		var existing int64
		if err := tx.Model(&models.PageModel{}).
			Where("site_id = ?", siteID).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			page.IsHome = true
		}
		if page.IsHome {
			if err := clearHome(tx, siteID); err != nil {
				return err
			}
		}
		return tx.Create(&page).Error
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) Update(siteID, pageID string, dto *UpdatePageDTO) (*models.PageModel, error) {
	page, err := s.GetByID(siteID, pageID)
	if err != nil || page == nil {
		return page, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = strings.TrimSpace(*dto.Title)
	}
	if dto.Published != nil {
		updates["published"] = *dto.Published
	}
	if dto.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*dto.Slug))
		if !slugPattern.MatchString(slug) {
			return nil, ErrInvalidSlug
		}
		if slug != page.Slug {
			var count int64
			if err := s.db.Model(&models.PageModel{}).
				Where("site_id = ? AND slug = ? AND id <> ?", siteID, slug, pageID).
				Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrSlugTaken
			}
			updates["slug"] = slug
		}
	}

	if dto.ComponentSource != nil && *dto.ComponentSource != "" {
		if (dto.HTML != nil && *dto.HTML != "") || (dto.CSS != nil && *dto.CSS != "") || (dto.JS != nil && *dto.JS != "") {
			return nil, ErrContentConflict
		}
		updates["render_mode"] = models.RenderModeComponent
		updates["component_source"] = *dto.ComponentSource
		updates["html"], updates["css"], updates["js"] = "", "", ""
	} else if dto.HTML != nil || dto.CSS != nil || dto.JS != nil {
		updates["render_mode"] = models.RenderModeMarkup
		updates["component_source"] = ""
		if dto.HTML != nil {
			updates["html"] = *dto.HTML
		}
		if dto.CSS != nil {
			updates["css"] = *dto.CSS
		}
		if dto.JS != nil {
			updates["js"] = *dto.JS
		}
	}

	if len(updates) == 0 {
		return page, nil
	}
	if err := s.db.Model(page).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(siteID, pageID)
}

// SetHome promotes a page to home and demotes the previous one, in a
// single transaction so the site never has two homes.
func (s *Service) SetHome(siteID, pageID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var page models.PageModel
		if err := tx.Where("site_id = ? AND id = ?", siteID, pageID).First(&page).Error; err != nil {
			return err
		}
		if err := clearHome(tx, siteID); err != nil {
			return err
		}
		return tx.Model(&page).Update("is_home", true).Error
	})
}

// Delete removes a page. Deleting the home page is refused while the
// site still has other pages, keeping "/" resolvable.
func (s *Service) Delete(siteID, pageID string) error {
	page, err := s.GetByID(siteID, pageID)
	if err != nil {
		return err
	}
	if page == nil {
		return gorm.ErrRecordNotFound
	}
	if page.IsHome {
		var siblings int64
		if err := s.db.Model(&models.PageModel{}).
			Where("site_id = ? AND id <> ?", siteID, pageID).Count(&siblings).Error; err != nil {
			return err
		}
		if siblings > 0 {
			return ErrHomeHasSiblings
		}
	}
	// Hard delete so the slug can be reused under the unique index.
	return s.db.Unscoped().Delete(page).Error
}

func clearHome(tx *gorm.DB, siteID string) error {
	return tx.Model(&models.PageModel{}).
		Where("site_id = ? AND is_home = ?", siteID, true).
		Update("is_home", false).Error
}

// slugFromPath strips the slashes around a request path; the rest is
// the candidate slug. "" means the home page.
func slugFromPath(path string) string {
	return strings.ToLower(strings.Trim(path, "/"))
}
