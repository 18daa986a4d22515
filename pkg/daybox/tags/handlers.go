package tags

import (
	"net/http"
	"strconv"

	"github.com/daybox-app/daybox/pkg/daybox/auth"
	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles tag-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tags handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	IdeaCount int    `json:"idea_count,omitempty"`
}

// RenameTagRequest represents the request to rename a tag
type RenameTagRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type tagWithCount struct {
	ID        uint
	Name      string
	IdeaCount int
}

// List returns the caller's tags with idea usage counts
// @Summary List tags
// @Description Get all of the user's tags with the number of ideas using each
// @Tags tags
// @Produce json
// @Success 200 {array} TagResponse
// @Security BearerAuth
// @Router /tags [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var results []tagWithCount
	err := h.db.Table("tags").
		Select("tags.id, tags.name, COUNT(DISTINCT ideas.id) as idea_count").
		Joins("INNER JOIN idea_tags ON tags.id = idea_tags.tag_id").
		Joins("INNER JOIN ideas ON idea_tags.idea_id = ideas.id AND ideas.owner_id = ?", userID).
		Where("tags.owner_id = ?", userID).
		Group("tags.id").
		Order("idea_count DESC, tags.name ASC").
		Find(&results).Error

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	tags := make([]TagResponse, len(results))
	for i, r := range results {
		tags[i] = TagResponse{
			ID:        r.ID,
			Name:      r.Name,
			IdeaCount: r.IdeaCount,
		}
	}

	c.JSON(http.StatusOK, tags)
}

// Rename renames a tag
// @Summary Rename a tag
// @Description Rename one of the user's tags
// @Tags tags
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Param request body RenameTagRequest true "New tag name"
// @Success 200 {object} TagResponse
// @Failure 404 {object} map[string]string "Tag not found"
// @Failure 409 {object} map[string]string "Tag name already in use"
// @Security BearerAuth
// @Router /tags/{id} [put]
func (h *Handler) Rename(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	tagID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	var tag models.Tag
	if err := h.db.Where("id = ? AND owner_id = ?", tagID, userID).First(&tag).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	var req RenameTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != tag.Name {
		// The (owner, name) pair must stay unique
		var existing models.Tag
		if err := h.db.Where("owner_id = ? AND name = ? AND id != ?", userID, req.Name, tag.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "A tag with this name already exists"})
			return
		}
		tag.Name = req.Name
		if err := h.db.Save(&tag).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename tag"})
			return
		}
	}

	c.JSON(http.StatusOK, TagResponse{ID: tag.ID, Name: tag.Name})
}

// Delete deletes a tag and removes it from all ideas
// @Summary Delete a tag
// @Description Delete one of the user's tags; ideas keep their other tags
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} map[string]string "Tag deleted"
// @Failure 404 {object} map[string]string "Tag not found"
// @Security BearerAuth
// @Router /tags/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	tagID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	var tag models.Tag
	if err := h.db.Where("id = ? AND owner_id = ?", tagID, userID).First(&tag).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&tag).Association("Ideas").Clear(); err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)
	rg.PUT("/tags/:id", h.Rename)
	rg.DELETE("/tags/:id", h.Delete)
}
