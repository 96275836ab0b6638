package analytics

import (
	"time"

	"github.com/siteforge/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Recorder appends visit events. It sits off the serving path: callers
// invoke Record from a goroutine after the response is committed, and
// no failure here ever reaches a visitor.
type Recorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewRecorder(db *gorm.DB, logger *zap.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record inserts one event for a served (site, path) pair. Errors are
// logged and swallowed.
func (r *Recorder) Record(siteID, path, referrer, userAgent string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("visit recorder panic", zap.Any("panic", rec))
		}
	}()

	event := models.AnalyticsEventModel{
		SiteID:       siteID,
		Path:         path,
		PageViews:    1,
		VisitorCount: 1,
		Referrer:     truncate(referrer, 512),
		UserAgent:    truncate(userAgent, 512),
		Timestamp:    time.Now(),
	}
	if err := r.db.Create(&event).Error; err != nil {
		r.logger.Warn("visit event dropped",
			zap.String("site", siteID),
			zap.String("path", path),
			zap.Error(err))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
