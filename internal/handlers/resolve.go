package handlers

import (
	"net/http"

	"github.com/enz0rd/quickurl-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type ResolveRequest struct {
	OS      string `json:"os,omitempty"`
	Browser string `json:"browser,omitempty"`
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
}

type ResolveAuthRequest struct {
	ResolveRequest
	Password string `json:"password" binding:"required"`
}

// ResolveLink runs the resolution pipeline for a slug. The target URL is
// returned in the body instead of a 3xx so browser extensions and SPAs can
// follow it themselves.
func (h *Handler) ResolveLink(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_slug"})
		return
	}

	var req ResolveRequest
	// The visit payload is optional; an empty body still resolves.
	_ = c.ShouldBindJSON(&req)

	resolution, err := h.resolutionService.Resolve(c.Request.Context(), slug, h.visitFrom(c, req))
	if err != nil {
		h.logger.Error("Resolution failed", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	h.renderResolution(c, resolution)
}

// ResolveLinkWithPassword re-enters the pipeline with the visitor-supplied
// password for protected links.
func (h *Handler) ResolveLinkWithPassword(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_slug"})
		return
	}

	var req ResolveAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_password"})
		return
	}

	resolution, err := h.resolutionService.ResolveWithPassword(c.Request.Context(), slug, req.Password, h.visitFrom(c, req.ResolveRequest))
	if err != nil {
		h.logger.Error("Resolution failed", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	h.renderResolution(c, resolution)
}

func (h *Handler) visitFrom(c *gin.Context, req ResolveRequest) services.Visit {
	return services.Visit{
		Browser:   req.Browser,
		OS:        req.OS,
		Country:   req.Country,
		City:      req.City,
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	}
}

func (h *Handler) renderResolution(c *gin.Context, resolution *services.Resolution) {
	switch resolution.Outcome {
	case services.OutcomeRedirect:
		c.JSON(http.StatusOK, gin.H{"url_to_redirect": resolution.TargetURL})
	case services.OutcomePasswordRequired:
		c.JSON(http.StatusOK, gin.H{"has_password": true})
	case services.OutcomeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "link_not_found"})
	case services.OutcomeLimitReached:
		c.JSON(http.StatusForbidden, gin.H{"error": "limit_reached"})
	case services.OutcomeBlocked:
		c.JSON(http.StatusForbidden, gin.H{"error": "link_blocked"})
	case services.OutcomeUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_password"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
