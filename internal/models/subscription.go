package models

import (
	"time"
)

// Subscription mirrors the billing provider's state for one account.
// Plan tier is always derived from Status, never stored.
type Subscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	SubscriptionID   string     `gorm:"size:120;index" json:"subscription_id"` // provider reference
	PriceID          string     `gorm:"size:120" json:"price_id"`
	Status           string     `gorm:"size:30;not null" json:"status"` // active, trialing, canceled, ...
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
