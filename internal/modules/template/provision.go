package template

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/siteforge/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const homePageKey = "home"

// Provisioner installs a template's page map onto a site as one atomic
// unit. Runs against the same site are serialized with a per-site lock
// so two concurrent installs cannot both create a home page.
type Provisioner struct {
	db      *gorm.DB
	logger  *zap.Logger
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewProvisioner(db *gorm.DB, logger *zap.Logger, timeout time.Duration) *Provisioner {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Provisioner{
		db:      db,
		logger:  logger,
		timeout: timeout,
		locks:   map[string]*sync.Mutex{},
	}
}

// Provision replaces the site's page set with pages built from the
// template. Either every page lands and exactly one is home, or the
// prior page set is untouched.
func (p *Provisioner) Provision(ctx context.Context, siteID, templateID string) (*models.TemplateModel, error) {
	var tpl models.TemplateModel
	if err := p.db.WithContext(ctx).First(&tpl, "id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("%w: load template: %v", ErrProvisioningFailed, err)
	}
	if len(tpl.Pages) == 0 {
		return nil, ErrTemplateIncomplete
	}

	pages, err := buildPages(siteID, tpl.Pages)
	if err != nil {
		return nil, err
	}

	lock := p.siteLock(siteID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Prior pages are removed in the same unit, hard-deleted so
		// their slugs are free for the incoming set.
		if err := tx.Unscoped().Where("site_id = ?", siteID).Delete(&models.PageModel{}).Error; err != nil {
			return fmt.Errorf("clear pages: %w", err)
		}
		if err := tx.Create(&pages).Error; err != nil {
			return fmt.Errorf("create pages: %w", err)
		}
		return tx.Model(&models.SiteModel{}).Where("id = ?", siteID).
			Update("template_kind", tpl.Category).Error
	})
	if err != nil {
		p.logger.Error("provisioning failed",
			zap.String("site", siteID),
			zap.String("template", templateID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	p.logger.Info("site provisioned",
		zap.String("site", siteID),
		zap.String("template", tpl.Name),
		zap.Int("pages", len(pages)))
	return &tpl, nil
}

// buildPages turns the template's page map into page rows. The "home"
// key becomes the home page; without one, the first key in lexical
// order does. Exactly one row ends up flagged home.
func buildPages(siteID string, pageMap map[string]models.TemplatePage) ([]models.PageModel, error) {
	keys := make([]string, 0, len(pageMap))
	for key := range pageMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	homeKey := keys[0]
	if _, ok := pageMap[homePageKey]; ok {
		homeKey = homePageKey
	}

	seen := make(map[string]string, len(keys))
	pages := make([]models.PageModel, 0, len(keys))
	for _, key := range keys {
		slug := slugify(key)
		if slug == "" {
			return nil, fmt.Errorf("%w: page key %q yields an empty slug", ErrProvisioningFailed, key)
		}
		if prev, dup := seen[slug]; dup {
			return nil, fmt.Errorf("%w: page keys %q and %q collide on slug %q", ErrProvisioningFailed, prev, key, slug)
		}
		seen[slug] = key

		src := pageMap[key]
		page := models.PageModel{
			SiteID:    siteID,
			Title:     src.Title,
			Slug:      slug,
			IsHome:    key == homeKey,
			Published: true,
		}
		page.SetContent(models.MarkupContent{HTML: src.HTML, CSS: src.CSS, JS: src.JS})
		pages = append(pages, page)
	}
	return pages, nil
}

func (p *Provisioner) siteLock(siteID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[siteID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[siteID] = lock
	}
	return lock
}

// slugify lowercases a page key and squeezes runs of non URL-safe
// characters into single hyphens.
func slugify(key string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
