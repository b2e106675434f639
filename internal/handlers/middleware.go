package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/enz0rd/quickurl-sub000/internal/auth"
	"github.com/enz0rd/quickurl-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthRequired resolves the Authorization header into an account identity.
// Session tokens and API keys share the header; every failure is the same
// 401 so callers cannot probe which credential form was rejected.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := h.authResolver.Resolve(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// currentIdentity reads the identity set by AuthRequired. For routes that
// allow anonymous callers it returns nil when no credential resolved.
func (h *Handler) currentIdentity(c *gin.Context) *auth.Identity {
	if val, exists := c.Get(identityKey); exists {
		return val.(*auth.Identity)
	}
	if identity, err := h.authResolver.Resolve(c.GetHeader("Authorization")); err == nil {
		return identity
	}
	return nil
}

func (h *Handler) RateLimitMiddleware(limiter *services.IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.GetLimiter(ip)
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate_limited",
			})
			return
		}
		c.Next()
	}
}

// BillingAuth guards the subscription sync endpoint with the shared secret
// the billing collaborator holds.
func (h *Handler) BillingAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader("X-Billing-Secret")
		if h.cfg.BillingSecretKey == "" ||
			subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.BillingSecretKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
