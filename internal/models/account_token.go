package models

import (
	"time"
)

const (
	TokenKindPasswordReset  = "PASSWORD_RESET"
	TokenKindEmailChange    = "EMAIL_CHANGE"
	TokenKindTwoFactorReset = "TWOFA_RESET"
)

// AccountToken holds one ephemeral signed token per account and kind.
// Repeated requests upsert the row; successful use deletes it.
type AccountToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_token_user_kind" json:"user_id"`
	Kind      string    `gorm:"size:30;not null;uniqueIndex:idx_token_user_kind" json:"kind"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
