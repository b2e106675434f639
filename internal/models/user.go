package models

import (
	"time"
)

type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Email            string    `gorm:"unique;not null;size:120" json:"email"`
	PasswordHash     string    `gorm:"not null;size:255" json:"-"`
	TwoFactorSecret  string    `gorm:"size:255" json:"-"` // AES-256-GCM, nonce prepended
	TwoFactorEnabled bool      `gorm:"default:false" json:"two_factor_enabled"`
	CustomerID       string    `gorm:"size:120;index" json:"customer_id"` // billing provider reference
	CreatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Links        []ShortLink   `gorm:"foreignKey:UserID" json:"links,omitempty"`
	Groups       []Group       `gorm:"foreignKey:UserID" json:"groups,omitempty"`
	APIKeys      []APIKey      `gorm:"foreignKey:UserID" json:"api_keys,omitempty"`
	Subscription *Subscription `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
}
