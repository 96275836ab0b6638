package analytics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/middleware"
	"github.com/siteforge/core/internal/models"
	"github.com/siteforge/core/internal/pkg/response"
	"gorm.io/gorm"
)

// DailyStat is one bucket of the per-site report. Visits are summed
// per calendar day so the aggregation is insensitive to the order
// concurrent events were stored in.
type DailyStat struct {
	Day          string `json:"day"`
	PageViews    int64  `json:"pageViews"`
	VisitorCount int64  `json:"visitorCount"`
}

// SiteDirectory resolves site ownership for report access checks.
type SiteDirectory interface {
	GetByID(id string) (*models.SiteModel, error)
}

type Handler struct {
	db    *gorm.DB
	sites SiteDirectory
}

func NewHandler(db *gorm.DB, sites SiteDirectory) *Handler {
	return &Handler{db: db, sites: sites}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/sites/:id/analytics", authMW, h.daily)
}

func (h *Handler) daily(c *gin.Context) {
	site, err := h.sites.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if site == nil {
		response.NotFound(c)
		return
	}
	if site.OwnerUserID != middleware.CurrentUserID(c) {
		response.Forbidden(c)
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 365 {
			days = parsed
		}
	}
	since := time.Now().AddDate(0, 0, -days)

	var stats []DailyStat
	err = h.db.Model(&models.AnalyticsEventModel{}).
		Select("DATE(timestamp) AS day, SUM(page_views) AS page_views, SUM(visitor_count) AS visitor_count").
		Where("site_id = ? AND timestamp >= ?", site.ID, since).
		Group("DATE(timestamp)").
		Order("day ASC").
		Scan(&stats).Error
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, stats)
}
