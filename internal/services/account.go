package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/auth"
	"github.com/enz0rd/quickurl-sub000/internal/models"
	"github.com/enz0rd/quickurl-sub000/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTwoFactorRequired  = errors.New("two-factor code required")
	ErrTwoFactorInvalid   = errors.New("two-factor code invalid")
	ErrTokenNotFound      = errors.New("token not found or expired")
)

const ephemeralTokenLifetime = time.Hour

type AccountService struct {
	db            *gorm.DB
	logger        *slog.Logger
	tokens        *auth.TokenIssuer
	encryptionKey []byte
	audit         *AuditService
}

func NewAccountService(db *gorm.DB, logger *slog.Logger, tokens *auth.TokenIssuer, encryptionKey []byte, audit *AuditService) *AccountService {
	return &AccountService{
		db:            db,
		logger:        logger,
		tokens:        tokens,
		encryptionKey: encryptionKey,
		audit:         audit,
	}
}

func (s *AccountService) Register(email, password, ip string) (*models.User, error) {
	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	s.audit.LogAction(&user.ID, "REGISTER", user.Email, nil, ip)
	return &user, nil
}

// Login verifies credentials (and the TOTP code when 2FA is enabled) and
// issues the session and plan tokens. The plan token wraps the current
// subscription reference so later permission checks skip the database.
func (s *AccountService) Login(email, password, totpCode, ip string) (sessionToken, planToken string, user *models.User, err error) {
	var u models.User
	if err := s.db.Preload("Subscription").Where("email = ?", email).First(&u).Error; err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, u.PasswordHash) {
		return "", "", nil, ErrInvalidCredentials
	}

	if u.TwoFactorEnabled {
		if totpCode == "" {
			return "", "", nil, ErrTwoFactorRequired
		}
		secret, err := utils.Decrypt(u.TwoFactorSecret, s.encryptionKey)
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to decrypt 2fa secret: %w", err)
		}
		if !utils.VerifyTOTP(secret, totpCode, time.Now()) {
			return "", "", nil, ErrTwoFactorInvalid
		}
	}

	sessionToken, err = s.tokens.IssueSession(u)
	if err != nil {
		return "", "", nil, err
	}

	planToken, err = s.planTokenFor(&u)
	if err != nil {
		return "", "", nil, err
	}

	s.audit.LogAction(&u.ID, "LOGIN", u.Email, nil, ip)
	return sessionToken, planToken, &u, nil
}

// EnableTwoFactor generates a fresh TOTP secret, stores it encrypted and
// returns the plaintext once for the authenticator app. 2FA stays disabled
// until VerifyTwoFactor confirms the first code.
func (s *AccountService) EnableTwoFactor(userID uint) (string, error) {
	secret, err := utils.GenerateTOTPSecret()
	if err != nil {
		return "", err
	}

	encrypted, err := utils.Encrypt(secret, s.encryptionKey)
	if err != nil {
		return "", err
	}

	updates := map[string]interface{}{
		"two_factor_secret":  encrypted,
		"two_factor_enabled": false,
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return "", err
	}

	return secret, nil
}

func (s *AccountService) VerifyTwoFactor(userID uint, code string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return ErrTwoFactorInvalid
	}

	secret, err := utils.Decrypt(user.TwoFactorSecret, s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to decrypt 2fa secret: %w", err)
	}

	if !utils.VerifyTOTP(secret, code, time.Now()) {
		return ErrTwoFactorInvalid
	}

	return s.db.Model(&user).Update("two_factor_enabled", true).Error
}

// IssueAccountToken mints and stores one ephemeral token per account and
// kind; a repeated request supersedes the previous token.
func (s *AccountService) IssueAccountToken(userID uint, kind string) (string, error) {
	raw, err := s.tokens.IssueEphemeral(userID, kind, ephemeralTokenLifetime)
	if err != nil {
		return "", err
	}

	// upsert: only one live token per account and kind
	s.db.Where("user_id = ? AND kind = ?", userID, kind).Delete(&models.AccountToken{})

	record := models.AccountToken{
		UserID:    userID,
		Kind:      kind,
		Token:     raw,
		ExpiresAt: time.Now().Add(ephemeralTokenLifetime),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", err
	}
	return raw, nil
}

// ConsumeAccountToken validates an ephemeral token against the stored row
// and deletes it so it cannot be replayed.
func (s *AccountService) ConsumeAccountToken(raw, kind string) (uint, error) {
	userID, err := s.tokens.VerifyEphemeral(raw, kind)
	if err != nil {
		return 0, ErrTokenNotFound
	}

	var record models.AccountToken
	err = s.db.Where("user_id = ? AND kind = ? AND token = ?", userID, kind, raw).First(&record).Error
	if err != nil {
		return 0, ErrTokenNotFound
	}
	if time.Now().After(record.ExpiresAt) {
		s.db.Delete(&record)
		return 0, ErrTokenNotFound
	}

	if err := s.db.Delete(&record).Error; err != nil {
		return 0, err
	}
	return userID, nil
}

// SyncSubscription applies billing-provider state. Tier is derived from
// status at read time, never stored.
func (s *AccountService) SyncSubscription(userID uint, subscriptionID, priceID, status string, periodEnd *time.Time) error {
	var sub models.Subscription
	err := s.db.Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = models.Subscription{
			UserID:           userID,
			SubscriptionID:   subscriptionID,
			PriceID:          priceID,
			Status:           status,
			CurrentPeriodEnd: periodEnd,
		}
		return s.db.Create(&sub).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"subscription_id":    subscriptionID,
		"price_id":           priceID,
		"status":             status,
		"current_period_end": periodEnd,
	}
	return s.db.Model(&sub).Updates(updates).Error
}

// PlanTokenFor reissues the plan token from current subscription state.
func (s *AccountService) PlanTokenFor(userID uint) (string, error) {
	var user models.User
	if err := s.db.Preload("Subscription").First(&user, userID).Error; err != nil {
		return "", err
	}
	return s.planTokenFor(&user)
}

func (s *AccountService) planTokenFor(user *models.User) (string, error) {
	subscriptionID := "free"
	if user.Subscription != nil && auth.PlanTier(user.Subscription.Status) == auth.TierPro {
		subscriptionID = user.Subscription.SubscriptionID
	}
	return s.tokens.IssuePlan(subscriptionID)
}
