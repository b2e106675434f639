package handlers

import (
	"net/http"
	"strconv"

	"github.com/enz0rd/quickurl-sub000/internal/models"
	"github.com/enz0rd/quickurl-sub000/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description,omitempty"`
}

// CreateGroup creates a named link group with a short join code. Names and
// codes are unique per account, not globally.
func (h *Handler) CreateGroup(c *gin.Context) {
	identity := h.currentIdentity(c)

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	var existing models.Group
	if err := h.db.Where("user_id = ? AND name = ?", identity.AccountID, req.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "group_name_taken"})
		return
	}

	group := models.Group{
		UserID:      identity.AccountID,
		Name:        req.Name,
		Code:        h.uniqueGroupCode(identity.AccountID),
		Description: req.Description,
	}
	if err := h.db.Create(&group).Error; err != nil {
		h.logger.Error("Group creation failed", "user_id", identity.AccountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": group.ID, "name": group.Name, "code": group.Code})
}

func (h *Handler) uniqueGroupCode(userID uint) string {
	for {
		code := utils.GenerateGroupCode()
		var existing models.Group
		if err := h.db.Where("user_id = ? AND code = ?", userID, code).First(&existing).Error; err != nil {
			return code
		}
	}
}

func (h *Handler) ListGroups(c *gin.Context) {
	identity := h.currentIdentity(c)

	var groups []models.Group
	if err := h.db.Where("user_id = ?", identity.AccountID).Order("created_at desc").Find(&groups).Error; err != nil {
		h.logger.Error("Group listing failed", "user_id", identity.AccountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// DeleteGroup removes the group; member links survive ungrouped.
func (h *Handler) DeleteGroup(c *gin.Context) {
	identity := h.currentIdentity(c)

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_group_id"})
		return
	}

	h.db.Model(&models.ShortLink{}).
		Where("group_id = ? AND user_id = ?", groupID, identity.AccountID).
		Update("group_id", nil)

	res := h.db.Where("id = ? AND user_id = ?", groupID, identity.AccountID).Delete(&models.Group{})
	if res.Error != nil {
		h.logger.Error("Group deletion failed", "group_id", groupID, "error", res.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "group_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
