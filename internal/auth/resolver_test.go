package auth

import (
	"testing"

	"github.com/enz0rd/quickurl-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestResolver(t *testing.T) {
	issuer := newTestIssuer(t)

	t.Run("Session token wins", func(t *testing.T) {
		db := setupTestDB(t)
		user := models.User{Email: "carol@example.com", PasswordHash: "x", CustomerID: "cus_9"}
		assert.NoError(t, db.Create(&user).Error)

		raw, _ := issuer.IssueSession(user)
		resolver := NewResolver(db, issuer)

		identity, err := resolver.Resolve("Bearer " + raw)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, identity.AccountID)
		assert.Equal(t, "free", identity.PlanStatus)
	})

	t.Run("Falls back to API key", func(t *testing.T) {
		db := setupTestDB(t)
		user, raw := seedUserWithKey(t, db, "active")
		resolver := NewResolver(db, issuer)

		identity, err := resolver.Resolve(raw)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, identity.AccountID)
		assert.Equal(t, "active", identity.PlanStatus)
	})

	t.Run("Missing header", func(t *testing.T) {
		resolver := NewResolver(setupTestDB(t), issuer)
		_, err := resolver.Resolve("")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Garbage header", func(t *testing.T) {
		resolver := NewResolver(setupTestDB(t), issuer)
		_, err := resolver.Resolve("Bearer nonsense")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Valid token for deleted account", func(t *testing.T) {
		db := setupTestDB(t)
		user := models.User{Email: "gone@example.com", PasswordHash: "x"}
		assert.NoError(t, db.Create(&user).Error)

		raw, _ := issuer.IssueSession(user)
		assert.NoError(t, db.Delete(&models.User{}, user.ID).Error)

		resolver := NewResolver(db, issuer)
		_, err := resolver.Resolve("Bearer " + raw)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Subscription reflected in identity", func(t *testing.T) {
		db := setupTestDB(t)
		user := models.User{Email: "dave@example.com", PasswordHash: "x", CustomerID: "cus_7"}
		assert.NoError(t, db.Create(&user).Error)
		sub := models.Subscription{UserID: user.ID, SubscriptionID: "sub_7", Status: "trialing"}
		assert.NoError(t, db.Create(&sub).Error)

		raw, _ := issuer.IssueSession(user)
		resolver := NewResolver(db, issuer)

		identity, err := resolver.Resolve("Bearer " + raw)
		assert.NoError(t, err)
		assert.Equal(t, "trialing", identity.PlanStatus)
	})
}
