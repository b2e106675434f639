package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreateAPIKeyRequest struct {
	Label     string     `json:"label" binding:"required,max=80"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

const defaultKeyLifetime = 90 * 24 * time.Hour

// CreateAPIKey mints a new key from the account's current state. The full
// key string appears in this response only.
func (h *Handler) CreateAPIKey(c *gin.Context) {
	identity := h.currentIdentity(c)

	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	expiresAt := time.Now().Add(defaultKeyLifetime)
	if req.ExpiresAt != nil {
		if req.ExpiresAt.Before(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expiry_in_past"})
			return
		}
		expiresAt = *req.ExpiresAt
	}

	key, err := h.keyService.CreateKey(identity.AccountID, req.Label, expiresAt, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrKeyLimit) {
			c.JSON(http.StatusForbidden, gin.H{"error": "key_limit_reached"})
			return
		}
		h.logger.Error("API key creation failed", "user_id", identity.AccountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         key.ID,
		"key":        key.Key,
		"label":      key.Label,
		"expires_at": key.ExpiresAt,
	})
}

func (h *Handler) ListAPIKeys(c *gin.Context) {
	identity := h.currentIdentity(c)

	keys, err := h.keyService.ListKeys(identity.AccountID)
	if err != nil {
		h.logger.Error("API key listing failed", "user_id", identity.AccountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	// Metadata only; the key material never leaves creation
	out := make([]gin.H, 0, len(keys))
	for _, key := range keys {
		out = append(out, gin.H{
			"id":         key.ID,
			"label":      key.Label,
			"is_active":  key.IsActive,
			"expires_at": key.ExpiresAt,
			"created_at": key.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"keys": out})
}

func (h *Handler) RevokeAPIKey(c *gin.Context) {
	identity := h.currentIdentity(c)

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_key_id"})
		return
	}

	if err := h.keyService.RevokeKey(identity.AccountID, keyID, c.ClientIP()); err != nil {
		if errors.Is(err, services.ErrKeyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "key_not_found"})
			return
		}
		h.logger.Error("API key revocation failed", "key_id", keyID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked": true})
}
