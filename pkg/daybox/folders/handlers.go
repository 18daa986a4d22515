package folders

import (
	"net/http"
	"strconv"

	"github.com/daybox-app/daybox/pkg/daybox/auth"
	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/daybox-app/daybox/pkg/daybox/tags"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles folder-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new folders handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateFolderRequest represents the request to create a folder
type CreateFolderRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Icon string `json:"icon"`
}

// UpdateFolderRequest represents the request to update a folder.
// Pointer fields distinguish "omitted" from "explicitly empty".
type UpdateFolderRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Icon *string `json:"icon"`
}

// FolderResponse represents a folder in API responses
type FolderResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func folderToResponse(folder models.Folder) FolderResponse {
	return FolderResponse{
		ID:        folder.ID,
		Name:      folder.Name,
		Icon:      folder.Icon,
		CreatedAt: folder.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: folder.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// getOwnedFolder loads a folder scoped to the caller. A folder owned by
// someone else is reported as missing, never as forbidden.
func (h *Handler) getOwnedFolder(userID uint, folderID uint64) (models.Folder, error) {
	var folder models.Folder
	err := h.db.Where("id = ? AND owner_id = ?", folderID, userID).First(&folder).Error
	return folder, err
}

// Create creates a new folder
// @Summary Create a folder
// @Description Create a new idea folder for the user
// @Tags folders
// @Accept json
// @Produce json
// @Param request body CreateFolderRequest true "Folder details"
// @Success 201 {object} FolderResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /folders [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder := models.Folder{
		OwnerID: userID,
		Name:    req.Name,
		Icon:    req.Icon,
	}

	if err := h.db.Create(&folder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
		return
	}

	c.JSON(http.StatusCreated, folderToResponse(folder))
}

// List returns all of the user's folders
// @Summary List folders
// @Description Get all of the user's idea folders
// @Tags folders
// @Produce json
// @Success 200 {array} FolderResponse
// @Security BearerAuth
// @Router /folders [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var folders []models.Folder
	if err := h.db.Where("owner_id = ?", userID).Order("name ASC").Find(&folders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch folders"})
		return
	}

	responses := make([]FolderResponse, len(folders))
	for i, folder := range folders {
		responses[i] = folderToResponse(folder)
	}

	c.JSON(http.StatusOK, responses)
}

// Update updates a folder
// @Summary Update a folder
// @Description Update a folder's name or icon
// @Tags folders
// @Accept json
// @Produce json
// @Param id path int true "Folder ID"
// @Param request body UpdateFolderRequest true "Updated folder details"
// @Success 200 {object} FolderResponse
// @Failure 404 {object} map[string]string "Folder not found"
// @Security BearerAuth
// @Router /folders/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	folderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder ID"})
		return
	}

	folder, err := h.getOwnedFolder(userID, folderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	var req UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		folder.Name = *req.Name
	}
	if req.Icon != nil {
		folder.Icon = *req.Icon
	}

	if err := h.db.Save(&folder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
		return
	}

	c.JSON(http.StatusOK, folderToResponse(folder))
}

// Delete deletes a folder and all ideas inside it
// @Summary Delete a folder
// @Description Delete a folder; its ideas and their tag links are removed with it
// @Tags folders
// @Produce json
// @Param id path int true "Folder ID"
// @Success 200 {object} map[string]string "Folder deleted"
// @Failure 404 {object} map[string]string "Folder not found"
// @Security BearerAuth
// @Router /folders/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	folderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder ID"})
		return
	}

	folder, err := h.getOwnedFolder(userID, folderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	// Cascade by hand: tag links first, then ideas, then the folder itself
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM idea_tags WHERE idea_id IN (SELECT id FROM ideas WHERE folder_id = ?)",
			folder.ID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("folder_id = ?", folder.ID).Delete(&models.Idea{}).Error; err != nil {
			return err
		}
		return tx.Delete(&folder).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted"})
}

// ListTags returns tag usage counts within one folder
// @Summary List tags in a folder
// @Description Get the tags used by ideas in this folder, with usage counts
// @Tags folders
// @Produce json
// @Param id path int true "Folder ID"
// @Success 200 {array} tags.TagResponse
// @Failure 404 {object} map[string]string "Folder not found"
// @Security BearerAuth
// @Router /folders/{id}/tags [get]
func (h *Handler) ListTags(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	folderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder ID"})
		return
	}

	if _, err := h.getOwnedFolder(userID, folderID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	type tagWithCount struct {
		ID        uint
		Name      string
		IdeaCount int
	}

	var results []tagWithCount
	err = h.db.Table("tags").
		Select("tags.id, tags.name, COUNT(DISTINCT ideas.id) as idea_count").
		Joins("INNER JOIN idea_tags ON tags.id = idea_tags.tag_id").
		Joins("INNER JOIN ideas ON idea_tags.idea_id = ideas.id AND ideas.folder_id = ?", folderID).
		Where("tags.owner_id = ?", userID).
		Group("tags.id").
		Order("idea_count DESC, tags.name ASC").
		Find(&results).Error

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	responses := make([]tags.TagResponse, len(results))
	for i, r := range results {
		responses[i] = tags.TagResponse{
			ID:        r.ID,
			Name:      r.Name,
			IdeaCount: r.IdeaCount,
		}
	}

	c.JSON(http.StatusOK, responses)
}

// RegisterRoutes registers folder routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/folders", h.Create)
	rg.GET("/folders", h.List)
	rg.PUT("/folders/:id", h.Update)
	rg.DELETE("/folders/:id", h.Delete)
	rg.GET("/folders/:id/tags", h.ListTags)
}
