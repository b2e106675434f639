package handlers

import (
	"net/http"
	"strconv"

	"github.com/enz0rd/quickurl-sub000/internal/auth"
	"github.com/enz0rd/quickurl-sub000/internal/models"
	"github.com/enz0rd/quickurl-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

// LinkQR renders a QR code for an owned link's public URL. Pro only.
// `format=png` streams the image; the default is base64 in JSON.
func (h *Handler) LinkQR(c *gin.Context) {
	identity := h.currentIdentity(c)
	slug := c.Param("slug")

	if !auth.Allows(auth.PlanTier(identity.PlanStatus), auth.CapabilityQRCode) {
		c.JSON(http.StatusForbidden, gin.H{"error": "plan_required"})
		return
	}

	var link models.ShortLink
	if err := h.db.Where("slug = ? AND user_id = ?", slug, identity.AccountID).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "link_not_found"})
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	b64, raw, err := services.GenerateQRCode(services.QROptions{
		Content: h.cfg.AppURL + "/" + link.Slug,
		Size:    size,
		FgColor: c.Query("fg"),
		BgColor: c.Query("bg"),
	})
	if err != nil {
		h.logger.Error("QR generation failed", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if c.Query("format") == "png" {
		c.Data(http.StatusOK, "image/png", raw)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr_code": b64})
}
