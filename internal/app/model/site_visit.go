package model

import "time"

// SiteVisit is one page view of the storefront. Append only.
type SiteVisit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VisitorID string    `gorm:"type:varchar(100);not null;index" json:"visitor_id"`
	Path      string    `gorm:"type:text" json:"path"`
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (SiteVisit) TableName() string {
	return "site_visits"
}
