package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/models"

	"gorm.io/gorm"
)

// API keys are self-describing, not signed:
//
//	{accountId}-{b64(email)}/{b64(customerId)}-{b64(expiresAt)}/{b64(planStatus)}/{b64(label)}
//
// The payload is a claim, not a fact. Validity comes from the extrinsic
// checks in ValidateAPIKey: the full string must match an active stored key
// and the decoded fields must equal the account's current values, so key
// rotation and plan changes are self-invalidating without a revocation list.

// ExpiryGraceWindow is how long past its encoded expiry a key keeps working.
const ExpiryGraceWindow = 30 * 24 * time.Hour

var ErrInvalidAPIKey = errors.New("invalid API key")

type DecodedAPIKey struct {
	AccountID  uint
	Email      string
	CustomerID string
	PlanStatus string
	Label      string
	ExpiresAt  time.Time
}

func EncodeAPIKey(accountID uint, email, customerID string, expiresAt time.Time, planStatus, label string) string {
	b64 := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	return fmt.Sprintf("%d-%s/%s-%s/%s/%s",
		accountID,
		b64(email),
		b64(customerID),
		b64(expiresAt.UTC().Format(time.RFC3339)),
		b64(planStatus),
		b64(label),
	)
}

// DecodeAPIKey splits the raw string in fixed field order and runs the
// intrinsic checks. Every parse failure collapses to ErrInvalidAPIKey; the
// caller learns nothing about which segment was wrong.
func DecodeAPIKey(raw string, now time.Time) (*DecodedAPIKey, error) {
	parts := strings.Split(raw, "/")
	if len(parts) != 4 {
		return nil, ErrInvalidAPIKey
	}

	head := strings.SplitN(parts[0], "-", 2)
	if len(head) != 2 {
		return nil, ErrInvalidAPIKey
	}
	accountID, err := strconv.ParseUint(head[0], 10, 32)
	if err != nil {
		return nil, ErrInvalidAPIKey
	}

	mid := strings.Split(parts[1], "-")
	if len(mid) != 2 {
		return nil, ErrInvalidAPIKey
	}

	email, err := decodeSegment(head[1])
	if err != nil {
		return nil, ErrInvalidAPIKey
	}
	customerID, err := decodeSegment(mid[0])
	if err != nil {
		return nil, ErrInvalidAPIKey
	}
	expiresRaw, err := decodeSegment(mid[1])
	if err != nil {
		return nil, ErrInvalidAPIKey
	}
	planStatus, err := decodeSegment(parts[2])
	if err != nil {
		return nil, ErrInvalidAPIKey
	}
	label, err := decodeSegment(parts[3])
	if err != nil {
		return nil, ErrInvalidAPIKey
	}

	expiresAt, err := time.Parse(time.RFC3339, expiresRaw)
	if err != nil {
		return nil, ErrInvalidAPIKey
	}
	if now.After(expiresAt.Add(ExpiryGraceWindow)) {
		return nil, ErrInvalidAPIKey
	}

	return &DecodedAPIKey{
		AccountID:  uint(accountID),
		Email:      email,
		CustomerID: customerID,
		PlanStatus: planStatus,
		Label:      label,
		ExpiresAt:  expiresAt,
	}, nil
}

// ValidateAPIKey runs the extrinsic checks: the full string must match an
// active key record and the decoded claim must equal the account's current
// stored values. All lookup and mismatch failures return ErrInvalidAPIKey.
func ValidateAPIKey(db *gorm.DB, raw string, now time.Time) (*Identity, error) {
	decoded, err := DecodeAPIKey(raw, now)
	if err != nil {
		return nil, ErrInvalidAPIKey
	}

	var record models.APIKey
	if err := db.Where("key = ? AND is_active = ?", raw, true).First(&record).Error; err != nil {
		return nil, ErrInvalidAPIKey
	}
	if record.UserID != decoded.AccountID {
		return nil, ErrInvalidAPIKey
	}

	var user models.User
	if err := db.Preload("Subscription").First(&user, decoded.AccountID).Error; err != nil {
		return nil, ErrInvalidAPIKey
	}

	status := SubscriptionStatus(&user)
	if decoded.Email != user.Email || decoded.CustomerID != user.CustomerID || decoded.PlanStatus != status {
		return nil, ErrInvalidAPIKey
	}

	return &Identity{
		AccountID:  user.ID,
		Email:      user.Email,
		CustomerID: user.CustomerID,
		PlanStatus: status,
	}, nil
}

// SubscriptionStatus returns the account's current billing status, "free"
// when no subscription exists.
func SubscriptionStatus(user *models.User) string {
	if user.Subscription == nil {
		return "free"
	}
	return user.Subscription.Status
}

func decodeSegment(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
