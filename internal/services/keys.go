package services

import (
	"errors"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/auth"
	"github.com/enz0rd/quickurl-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxActiveKeys is the cap on live API keys per account.
const MaxActiveKeys = 5

var (
	ErrKeyLimit    = errors.New("active API key limit reached")
	ErrKeyNotFound = errors.New("API key not found")
)

type APIKeyService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewAPIKeyService(db *gorm.DB, audit *AuditService) *APIKeyService {
	return &APIKeyService{db: db, audit: audit}
}

// CreateKey encodes the account's current state into a new key. The full
// string is returned exactly once; listings only expose metadata.
func (s *APIKeyService) CreateKey(userID uint, label string, expiresAt time.Time, ip string) (*models.APIKey, error) {
	var user models.User
	if err := s.db.Preload("Subscription").First(&user, userID).Error; err != nil {
		return nil, err
	}

	var active int64
	err := s.db.Model(&models.APIKey{}).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, time.Now()).
		Count(&active).Error
	if err != nil {
		return nil, err
	}
	if active >= MaxActiveKeys {
		return nil, ErrKeyLimit
	}

	raw := auth.EncodeAPIKey(user.ID, user.Email, user.CustomerID, expiresAt, auth.SubscriptionStatus(&user), label)

	key := models.APIKey{
		ID:        uuid.New(),
		UserID:    userID,
		Key:       raw,
		Label:     label,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	if err := s.db.Create(&key).Error; err != nil {
		return nil, err
	}

	s.audit.LogAction(&userID, "KEY_CREATED", key.ID.String(), map[string]interface{}{"label": label}, ip)
	return &key, nil
}

func (s *APIKeyService) ListKeys(userID uint) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&keys).Error
	return keys, err
}

// RevokeKey deactivates a key; the record stays for the audit trail.
func (s *APIKeyService) RevokeKey(userID uint, keyID uuid.UUID, ip string) error {
	res := s.db.Model(&models.APIKey{}).
		Where("id = ? AND user_id = ?", keyID, userID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrKeyNotFound
	}

	s.audit.LogAction(&userID, "KEY_REVOKED", keyID.String(), nil, ip)
	return nil
}
