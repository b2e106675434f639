package handlers

import (
	"net/http"

	"github.com/enz0rd/quickurl-sub000/internal/auth"
	"github.com/enz0rd/quickurl-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

// LinkAnalytics aggregates access records for an owned link. Pro only.
func (h *Handler) LinkAnalytics(c *gin.Context) {
	identity := h.currentIdentity(c)
	slug := c.Param("slug")

	if !auth.Allows(auth.PlanTier(identity.PlanStatus), auth.CapabilityDataAnalysis) {
		c.JSON(http.StatusForbidden, gin.H{"error": "plan_required"})
		return
	}

	var link models.ShortLink
	if err := h.db.Where("slug = ? AND user_id = ?", slug, identity.AccountID).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "link_not_found"})
		return
	}

	var total int64
	h.db.Model(&models.AccessRecord{}).Where("link_id = ?", link.ID).Count(&total)

	var recent []models.AccessRecord
	h.db.Where("link_id = ?", link.ID).Order("timestamp desc").Limit(20).Find(&recent)

	c.JSON(http.StatusOK, gin.H{
		"slug":       link.Slug,
		"times_used": link.TimesUsed,
		"total":      total,
		"countries":  h.countBy(link.ID, "country"),
		"cities":     h.countBy(link.ID, "city"),
		"browsers":   h.countBy(link.ID, "browser"),
		"os":         h.countBy(link.ID, "os"),
		"devices":    h.countBy(link.ID, "device"),
		"recent":     recent,
	})
}

type bucketCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

func (h *Handler) countBy(linkID uint, column string) []bucketCount {
	var out []bucketCount
	h.db.Model(&models.AccessRecord{}).
		Where("link_id = ?", linkID).
		Select(column + " as value, count(*) as count").
		Group(column).
		Order("count desc").
		Scan(&out)
	return out
}
