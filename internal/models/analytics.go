package models

import "time"

// AnalyticsEventModel is one recorded visit. Append-only: the serving
// path inserts and never updates or deletes. Aggregation happens
// downstream and must be order-independent.
type AnalyticsEventModel struct {
	Base
	SiteID       string    `json:"site_id"       gorm:"index:idx_site_ts,priority:1;not null"`
	Path         string    `json:"path"          gorm:"index"`
	PageViews    int       `json:"page_views"    gorm:"default:1"`
	VisitorCount int       `json:"visitor_count" gorm:"default:1"`
	Referrer     string    `json:"referrer"`
	UserAgent    string    `json:"user_agent"    gorm:"type:longtext"`
	Timestamp    time.Time `json:"timestamp"     gorm:"index:idx_site_ts,priority:2"`
}

func (AnalyticsEventModel) TableName() string { return "analytics_events" }
