package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type CreateLinkRequest struct {
	TargetURL  string     `json:"target_url" binding:"required,url"`
	CustomSlug string     `json:"custom_slug,omitempty"`
	Password   string     `json:"password,omitempty"`
	Uses       int        `json:"uses,omitempty"`
	ExpDate    *time.Time `json:"exp_date,omitempty"`
	GroupID    *uint      `json:"group_id,omitempty"`
}

type UpdateLinkRequest struct {
	TargetURL *string    `json:"target_url,omitempty"`
	Password  *string    `json:"password,omitempty"`
	Uses      *int       `json:"uses,omitempty"`
	ExpDate   *time.Time `json:"exp_date,omitempty"`
	GroupID   *uint      `json:"group_id,omitempty"`
}

// CreateLink shortens a URL. Anonymous callers are allowed; premium options
// need a pro identity regardless of what any client-held token claims.
func (h *Handler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	dto := services.CreateLinkDTO{
		TargetURL:  req.TargetURL,
		CustomSlug: req.CustomSlug,
		Password:   req.Password,
		Uses:       req.Uses,
		ExpDate:    req.ExpDate,
		GroupID:    req.GroupID,
		IPAddress:  c.ClientIP(),
	}
	if identity := h.currentIdentity(c); identity != nil {
		dto.UserID = &identity.AccountID
		dto.PlanStatus = identity.PlanStatus
	}

	link, quota, err := h.shortenerService.CreateLink(c.Request.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlanRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "plan_required"})
		case errors.Is(err, services.ErrQuotaExceeded):
			c.JSON(http.StatusForbidden, gin.H{"error": "quota_exceeded", "limit": quota.Limit})
		case errors.Is(err, services.ErrSlugTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "slug_taken"})
		case errors.Is(err, services.ErrGroupNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "group_not_found"})
		default:
			h.logger.Error("Link creation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"slug":            link.Slug,
		"short_url":       h.cfg.AppURL + "/" + link.Slug,
		"quota_remaining": quota.Remaining,
	})
}

func (h *Handler) ListLinks(c *gin.Context) {
	identity := h.currentIdentity(c)

	links, err := h.shortenerService.ListLinks(identity.AccountID)
	if err != nil {
		h.logger.Error("Link listing failed", "user_id", identity.AccountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (h *Handler) UpdateLink(c *gin.Context) {
	identity := h.currentIdentity(c)
	slug := c.Param("slug")

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	dto := services.UpdateLinkDTO{
		TargetURL: req.TargetURL,
		Password:  req.Password,
		Uses:      req.Uses,
		ExpDate:   req.ExpDate,
		GroupID:   req.GroupID,
	}

	link, err := h.shortenerService.UpdateLink(c.Request.Context(), identity.AccountID, identity.PlanStatus, slug, dto)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlanRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "plan_required"})
		case errors.Is(err, services.ErrLinkNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "link_not_found"})
		case errors.Is(err, services.ErrGroupNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "group_not_found"})
		default:
			h.logger.Error("Link update failed", "slug", slug, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"slug": link.Slug})
}

func (h *Handler) DeleteLink(c *gin.Context) {
	identity := h.currentIdentity(c)
	slug := c.Param("slug")

	err := h.shortenerService.DeleteLink(c.Request.Context(), identity.AccountID, slug, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "link_not_found"})
			return
		}
		h.logger.Error("Link deletion failed", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
