package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "quickurl"
	tokenAudience = "quickurl-api"
)

var (
	ErrNoSigningSecret = errors.New("signing secret is not configured")
	ErrInvalidToken    = errors.New("invalid token")
)

type SessionClaims struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	CustomerID string `json:"customer_id"`
	jwt.RegisteredClaims
}

type PlanClaims struct {
	PlanID string `json:"plan_id"` // base64(subscriptionID | "free")
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session and plan tokens.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenIssuer(secret string, lifetime time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrNoSigningSecret
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), lifetime: lifetime}, nil
}

func (t *TokenIssuer) IssueSession(user models.User) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		ID:         user.ID,
		Email:      user.Email,
		CustomerID: user.CustomerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifySession validates signature, issuer, audience and expiry.
// Any failure collapses to ErrInvalidToken.
func (t *TokenIssuer) VerifySession(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, t.keyFunc,
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssuePlan wraps the subscription reference in a signed token so permission
// checks avoid a database round-trip. Must be reissued when the subscription
// status changes.
func (t *TokenIssuer) IssuePlan(subscriptionID string) (string, error) {
	if subscriptionID == "" {
		subscriptionID = "free"
	}
	now := time.Now()
	claims := &PlanClaims{
		PlanID: base64.StdEncoding.EncodeToString([]byte(subscriptionID)),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyPlan returns the wrapped subscription reference ("free" for
// unsubscribed accounts).
func (t *TokenIssuer) VerifyPlan(raw string) (string, error) {
	claims := &PlanClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, t.keyFunc,
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	planID, err := base64.StdEncoding.DecodeString(claims.PlanID)
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(planID), nil
}

type EphemeralClaims struct {
	Kind string `json:"kind"` // PASSWORD_RESET, EMAIL_CHANGE, TWOFA_RESET
	jwt.RegisteredClaims
}

// IssueEphemeral signs a single-purpose account token (password reset and
// friends). The caller persists it; consumption is checked against the
// stored row, so reissuing supersedes any previous token of the same kind.
func (t *TokenIssuer) IssueEphemeral(accountID uint, kind string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := &EphemeralClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			Subject:   fmt.Sprintf("%d", accountID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyEphemeral validates the token and that it was minted for the
// expected kind. Returns the account id it names.
func (t *TokenIssuer) VerifyEphemeral(raw, kind string) (uint, error) {
	claims := &EphemeralClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, t.keyFunc,
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid || claims.Kind != kind {
		return 0, ErrInvalidToken
	}

	var id uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func (t *TokenIssuer) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return t.secret, nil
}
