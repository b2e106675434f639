package models

import (
	"time"
)

type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_group_name;uniqueIndex:idx_group_code" json:"user_id"`
	Name        string    `gorm:"size:80;not null;uniqueIndex:idx_group_name" json:"name"`
	Code        string    `gorm:"size:4;not null;uniqueIndex:idx_group_code" json:"code"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Links []ShortLink `gorm:"foreignKey:GroupID" json:"links,omitempty"`
}
