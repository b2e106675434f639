package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/models"

	"gorm.io/gorm"
)

// ErrUnauthorized is the single failure signal for every credential problem.
// Expired, forged and missing credentials are indistinguishable to callers.
var ErrUnauthorized = errors.New("unauthorized")

// Resolver turns an Authorization header into an Identity. Session tokens
// are tried first; on failure the value is decoded as an API key. Exactly
// one path succeeds or the caller is unauthenticated.
type Resolver struct {
	db     *gorm.DB
	tokens *TokenIssuer
}

func NewResolver(db *gorm.DB, tokens *TokenIssuer) *Resolver {
	return &Resolver{db: db, tokens: tokens}
}

func (r *Resolver) Resolve(header string) (*Identity, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return nil, ErrUnauthorized
	}

	if claims, err := r.tokens.VerifySession(raw); err == nil {
		return r.fromSession(claims)
	}

	identity, err := ValidateAPIKey(r.db, raw, time.Now())
	if err != nil {
		return nil, ErrUnauthorized
	}
	return identity, nil
}

// fromSession rebuilds the identity from the stored account. A token that
// verifies cryptographically but names a missing account is a valid
// credential at the codec layer, yet still fails here.
func (r *Resolver) fromSession(claims *SessionClaims) (*Identity, error) {
	var user models.User
	if err := r.db.Preload("Subscription").First(&user, claims.ID).Error; err != nil {
		return nil, ErrUnauthorized
	}

	return &Identity{
		AccountID:  user.ID,
		Email:      user.Email,
		CustomerID: user.CustomerID,
		PlanStatus: SubscriptionStatus(&user),
	}, nil
}
