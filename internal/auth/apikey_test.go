package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Subscription{}, &models.APIKey{},
		&models.ShortLink{}, &models.AccessRecord{}, &models.Group{}, &models.AccountToken{}, &models.AuditLog{})
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func seedUserWithKey(t *testing.T, db *gorm.DB, status string) (models.User, string) {
	t.Helper()
	user := models.User{Email: "bob@example.com", PasswordHash: "x", CustomerID: "cus_42"}
	assert.NoError(t, db.Create(&user).Error)

	if status != "free" {
		sub := models.Subscription{UserID: user.ID, SubscriptionID: "sub_1", Status: status}
		assert.NoError(t, db.Create(&sub).Error)
		user.Subscription = &sub
	}

	expires := time.Now().Add(90 * 24 * time.Hour)
	raw := EncodeAPIKey(user.ID, user.Email, user.CustomerID, expires, status, "ci key")
	record := models.APIKey{
		ID:        uuid.New(),
		UserID:    user.ID,
		Key:       raw,
		Label:     "ci key",
		ExpiresAt: expires,
		IsActive:  true,
	}
	assert.NoError(t, db.Create(&record).Error)
	return user, raw
}

func TestDecodeAPIKey(t *testing.T) {
	now := time.Now()
	expires := now.Add(24 * time.Hour)
	raw := EncodeAPIKey(7, "bob@example.com", "cus_42", expires, "active", "deploy bot")

	t.Run("Round trip", func(t *testing.T) {
		decoded, err := DecodeAPIKey(raw, now)
		assert.NoError(t, err)
		assert.Equal(t, uint(7), decoded.AccountID)
		assert.Equal(t, "bob@example.com", decoded.Email)
		assert.Equal(t, "cus_42", decoded.CustomerID)
		assert.Equal(t, "active", decoded.PlanStatus)
		assert.Equal(t, "deploy bot", decoded.Label)
		assert.WithinDuration(t, expires, decoded.ExpiresAt, time.Second)
	})

	t.Run("Missing segments", func(t *testing.T) {
		for _, bad := range []string{"", "7", "7-abc", "7-abc/def", "a/b/c/d/e"} {
			_, err := DecodeAPIKey(bad, now)
			assert.ErrorIs(t, err, ErrInvalidAPIKey, "input %q", bad)
		}
	})

	t.Run("Non-numeric account id", func(t *testing.T) {
		_, err := DecodeAPIKey("abc-"+strings.SplitN(raw, "-", 2)[1], now)
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})

	t.Run("Unparseable expiry", func(t *testing.T) {
		bad := EncodeAPIKey(7, "bob@example.com", "cus_42", expires, "active", "x")
		// swap expiry segment for non-date garbage
		mid := strings.Split(strings.Split(bad, "/")[1], "-")
		bad = strings.Replace(bad, mid[1], base64.StdEncoding.EncodeToString([]byte("not a date")), 1)
		_, err := DecodeAPIKey(bad, now)
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})

	t.Run("Within grace window", func(t *testing.T) {
		expired := EncodeAPIKey(7, "bob@example.com", "cus_42", now.Add(-10*24*time.Hour), "active", "x")
		_, err := DecodeAPIKey(expired, now)
		assert.NoError(t, err)
	})

	t.Run("Past grace window", func(t *testing.T) {
		expired := EncodeAPIKey(7, "bob@example.com", "cus_42", now.Add(-31*24*time.Hour), "active", "x")
		_, err := DecodeAPIKey(expired, now)
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})
}

func TestValidateAPIKey(t *testing.T) {
	now := time.Now()

	t.Run("Valid key resolves identity", func(t *testing.T) {
		db := setupTestDB(t)
		user, raw := seedUserWithKey(t, db, "active")

		identity, err := ValidateAPIKey(db, raw, now)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, identity.AccountID)
		assert.Equal(t, "active", identity.PlanStatus)
	})

	t.Run("Unknown key string", func(t *testing.T) {
		db := setupTestDB(t)
		seedUserWithKey(t, db, "free")

		forged := EncodeAPIKey(1, "bob@example.com", "cus_42", now.Add(time.Hour), "free", "other label")
		_, err := ValidateAPIKey(db, forged, now)
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})

	t.Run("Revoked key", func(t *testing.T) {
		db := setupTestDB(t)
		_, raw := seedUserWithKey(t, db, "free")
		db.Model(&models.APIKey{}).Where("key = ?", raw).Update("is_active", false)

		_, err := ValidateAPIKey(db, raw, now)
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})

	t.Run("Plan change invalidates key", func(t *testing.T) {
		db := setupTestDB(t)
		user, raw := seedUserWithKey(t, db, "active")

		// subscription lapses after the key was issued
		db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Update("status", "canceled")

		_, err := ValidateAPIKey(db, raw, now)
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})

	t.Run("Email change invalidates key", func(t *testing.T) {
		db := setupTestDB(t)
		user, raw := seedUserWithKey(t, db, "free")

		db.Model(&models.User{}).Where("id = ?", user.ID).Update("email", "new@example.com")

		_, err := ValidateAPIKey(db, raw, now)
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})

	t.Run("Tampered field fails even for existing account", func(t *testing.T) {
		db := setupTestDB(t)
		user, _ := seedUserWithKey(t, db, "free")

		// reconstruct the key claiming a pro plan
		tampered := EncodeAPIKey(user.ID, user.Email, user.CustomerID, now.Add(90*24*time.Hour), "active", "ci key")
		_, err := ValidateAPIKey(db, tampered, now)
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})
}
