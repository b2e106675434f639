package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code,omitempty"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := h.accountService.Register(req.Email, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
			return
		}
		h.logger.Error("Registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

func (h *Handler) LoginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	session, plan, user, err := h.accountService.Login(req.Email, req.Password, req.TOTPCode, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTwoFactorRequired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "totp_required"})
		case errors.Is(err, services.ErrTwoFactorInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "totp_invalid"})
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		default:
			h.logger.Error("Login failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      session,
		"plan_token": plan,
		"user":       gin.H{"id": user.ID, "email": user.Email},
	})
}

// ReissuePlanToken mints a fresh plan token from current subscription state.
// Clients call this after billing changes instead of logging in again.
func (h *Handler) ReissuePlanToken(c *gin.Context) {
	identity := h.currentIdentity(c)

	plan, err := h.accountService.PlanTokenFor(identity.AccountID)
	if err != nil {
		h.logger.Error("Plan token reissue failed", "user_id", identity.AccountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan_token": plan})
}

func (h *Handler) EnableTwoFactor(c *gin.Context) {
	identity := h.currentIdentity(c)

	secret, err := h.accountService.EnableTwoFactor(identity.AccountID)
	if err != nil {
		h.logger.Error("2FA enable failed", "user_id", identity.AccountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	// The plaintext secret is shown exactly once for the authenticator app
	c.JSON(http.StatusOK, gin.H{"secret": secret})
}

type TwoFactorVerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) VerifyTwoFactor(c *gin.Context) {
	identity := h.currentIdentity(c)

	var req TwoFactorVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.accountService.VerifyTwoFactor(identity.AccountID, req.Code); err != nil {
		if errors.Is(err, services.ErrTwoFactorInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "totp_invalid"})
			return
		}
		h.logger.Error("2FA verify failed", "user_id", identity.AccountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": true})
}

type BillingSyncRequest struct {
	UserID         uint       `json:"user_id" binding:"required"`
	SubscriptionID string     `json:"subscription_id" binding:"required"`
	PriceID        string     `json:"price_id"`
	Status         string     `json:"status" binding:"required"`
	PeriodEnd      *time.Time `json:"current_period_end,omitempty"`
}

// SyncSubscription applies the billing collaborator's view of a
// subscription. Existing sessions keep their plan token until reissue.
func (h *Handler) SyncSubscription(c *gin.Context) {
	var req BillingSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	err := h.accountService.SyncSubscription(req.UserID, req.SubscriptionID, req.PriceID, req.Status, req.PeriodEnd)
	if err != nil {
		h.logger.Error("Subscription sync failed", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"synced": true})
}
