package models

import (
	"time"
)

type ShortLink struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       *uint   `gorm:"index" json:"user_id,omitempty"` // Nullable for anonymous
	User         *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GroupID      *uint   `gorm:"index" json:"group_id,omitempty"`
	Slug         string  `gorm:"unique;not null;size:30;index" json:"slug"`
	TargetURL    string  `gorm:"not null;type:text" json:"target_url"`
	PasswordHash string  `gorm:"size:255" json:"-"`

	// Usage budget. Uses == 0 means unlimited.
	Uses      int `gorm:"default:0" json:"uses"`
	TimesUsed int `gorm:"default:0" json:"times_used"`

	// Malicious-scan state. A link flagged malicious stays blocked;
	// rescans after the freshness window can only re-confirm.
	IsURLChecked bool       `gorm:"default:false" json:"is_url_checked"`
	IsMalicious  bool       `gorm:"default:false" json:"is_malicious"`
	URLCheckedAt *time.Time `json:"url_checked_at,omitempty"`

	ExpDate   *time.Time `json:"exp_date,omitempty"`
	CreatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	AccessRecords []AccessRecord `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"access_records,omitempty"`
}

func (ShortLink) TableName() string {
	return "short_links"
}
