package auth

import (
	"testing"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-signing-secret-1234567890"

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	assert.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer(t *testing.T) {
	t.Run("Missing secret fails", func(t *testing.T) {
		_, err := NewTokenIssuer("", time.Hour)
		assert.ErrorIs(t, err, ErrNoSigningSecret)
	})

	t.Run("Zero lifetime defaults to one hour", func(t *testing.T) {
		issuer, err := NewTokenIssuer(testSecret, 0)
		assert.NoError(t, err)
		assert.Equal(t, time.Hour, issuer.lifetime)
	})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)
	user := models.User{ID: 42, Email: "alice@example.com", CustomerID: "cus_123"}

	raw, err := issuer.IssueSession(user)
	assert.NoError(t, err)

	claims, err := issuer.VerifySession(raw)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.ID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "cus_123", claims.CustomerID)
}

func TestVerifySessionRejections(t *testing.T) {
	issuer := newTestIssuer(t)

	t.Run("Garbage", func(t *testing.T) {
		_, err := issuer.VerifySession("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other, _ := NewTokenIssuer("completely-different-secret", time.Hour)
		raw, _ := other.IssueSession(models.User{ID: 1, Email: "a@b.c"})
		_, err := issuer.VerifySession(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		short, _ := NewTokenIssuer(testSecret, -2*time.Hour)
		// negative lifetime falls back to the default, so craft expiry by hand
		now := time.Now().Add(-3 * time.Hour)
		claims := &SessionClaims{
			ID: 1, Email: "a@b.c",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Audience:  jwt.ClaimStrings{tokenAudience},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		_, err := short.VerifySession(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong issuer", func(t *testing.T) {
		claims := &SessionClaims{
			ID: 1, Email: "a@b.c",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				Audience:  jwt.ClaimStrings{tokenAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		_, err := issuer.VerifySession(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong audience", func(t *testing.T) {
		claims := &SessionClaims{
			ID: 1, Email: "a@b.c",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Audience:  jwt.ClaimStrings{"other-api"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		_, err := issuer.VerifySession(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPlanToken(t *testing.T) {
	issuer := newTestIssuer(t)

	t.Run("Subscription reference round trip", func(t *testing.T) {
		raw, err := issuer.IssuePlan("sub_789")
		assert.NoError(t, err)

		planID, err := issuer.VerifyPlan(raw)
		assert.NoError(t, err)
		assert.Equal(t, "sub_789", planID)
	})

	t.Run("Empty subscription encodes free", func(t *testing.T) {
		raw, _ := issuer.IssuePlan("")
		planID, err := issuer.VerifyPlan(raw)
		assert.NoError(t, err)
		assert.Equal(t, "free", planID)
	})

	t.Run("Tampered token rejected", func(t *testing.T) {
		raw, _ := issuer.IssuePlan("sub_789")
		_, err := issuer.VerifyPlan(raw + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
