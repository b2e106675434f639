package models

import (
	"time"
)

// AccessRecord is one row per successful redirect of an owned link.
// Browser/OS/device values come from a fixed vocabulary, never raw strings.
type AccessRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LinkID    uint      `gorm:"not null;index" json:"link_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"` // link owner
	Country   string    `gorm:"size:100;default:'unknown'" json:"country"`
	City      string    `gorm:"size:100;default:'unknown'" json:"city"`
	Browser   string    `gorm:"size:50" json:"browser"`
	OS        string    `gorm:"size:50" json:"os"`
	Device    string    `gorm:"size:20" json:"device"` // desktop or mobile
	Timestamp time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"timestamp"`
}
