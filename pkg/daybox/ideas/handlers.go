package ideas

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/daybox-app/daybox/pkg/daybox/auth"
	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/daybox-app/daybox/pkg/daybox/tags"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Scheduler enqueues background link-preview work. Scheduling must never
// block the request and its outcome is never reported back.
type Scheduler interface {
	Schedule(ideaID uint, url string)
}

// Handler handles idea-related requests
type Handler struct {
	db       *gorm.DB
	previews Scheduler
}

// NewHandler creates a new ideas handler. previews may be nil, in which case
// link ideas are created without metadata enrichment.
func NewHandler(db *gorm.DB, previews Scheduler) *Handler {
	return &Handler{db: db, previews: previews}
}

// CreateIdeaRequest represents the request to create an idea
type CreateIdeaRequest struct {
	FolderID uint            `json:"folder_id" binding:"required"`
	IdeaType models.IdeaType `json:"idea_type" binding:"omitempty,oneof=text link image"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	URL      string          `json:"url" binding:"omitempty,url"`
	Tags     []string        `json:"tags"`
}

// UpdateIdeaRequest represents the request to update an idea.
// Pointer fields distinguish "omitted" from "explicitly empty/false", so
// clearing a title or unpinning an idea works. A present Tags field replaces
// the whole tag set.
type UpdateIdeaRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	URL      *string   `json:"url" binding:"omitempty,url"`
	IsPinned *bool     `json:"is_pinned"`
	FolderID *uint     `json:"folder_id"`
	Tags     *[]string `json:"tags"`
}

// LinkMetadataResponse represents cached link metadata in API responses
type LinkMetadataResponse struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// IdeaResponse represents an idea in API responses
type IdeaResponse struct {
	ID              uint                  `json:"id"`
	FolderID        uint                  `json:"folder_id"`
	IdeaType        models.IdeaType       `json:"idea_type"`
	Title           string                `json:"title"`
	Content         string                `json:"content"`
	URL             string                `json:"url"`
	IsPinned        bool                  `json:"is_pinned"`
	GeneratedTaskID *uint                 `json:"generated_task_id,omitempty"`
	Tags            []tags.TagResponse    `json:"tags"`
	LinkMetadata    *LinkMetadataResponse `json:"link_metadata,omitempty"`
	CreatedAt       string                `json:"created_at"`
	UpdatedAt       string                `json:"updated_at"`
}

func ideaToResponse(idea models.Idea) IdeaResponse {
	resp := IdeaResponse{
		ID:              idea.ID,
		FolderID:        idea.FolderID,
		IdeaType:        idea.IdeaType,
		Title:           idea.Title,
		Content:         idea.Content,
		URL:             idea.URL,
		IsPinned:        idea.IsPinned,
		GeneratedTaskID: idea.GeneratedTaskID,
		Tags:            make([]tags.TagResponse, len(idea.Tags)),
		CreatedAt:       idea.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       idea.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	for i, t := range idea.Tags {
		resp.Tags[i] = tags.TagResponse{ID: t.ID, Name: t.Name}
	}
	if idea.LinkMetadata != nil {
		resp.LinkMetadata = &LinkMetadataResponse{
			URL:         idea.LinkMetadata.URL,
			Title:       idea.LinkMetadata.Title,
			Description: idea.LinkMetadata.Description,
			ImageURL:    idea.LinkMetadata.ImageURL,
		}
	}
	return resp
}

// checkFolderOwnership verifies the folder exists and belongs to the user
func (h *Handler) checkFolderOwnership(userID, folderID uint) error {
	var folder models.Folder
	return h.db.Where("id = ? AND owner_id = ?", folderID, userID).First(&folder).Error
}

// Create creates a new idea in one of the user's folders
// @Summary Create an idea
// @Description Create a new idea; link ideas get their preview fetched in the background
// @Tags ideas
// @Accept json
// @Produce json
// @Param request body CreateIdeaRequest true "Idea details"
// @Success 201 {object} IdeaResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Folder not found"
// @Security BearerAuth
// @Router /ideas [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ideaType := req.IdeaType
	if ideaType == "" {
		ideaType = models.IdeaTypeText
	}
	if ideaType == models.IdeaTypeLink && req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Link ideas require a url"})
		return
	}

	if err := h.checkFolderOwnership(userID, req.FolderID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	idea := models.Idea{
		OwnerID:  userID,
		FolderID: req.FolderID,
		IdeaType: ideaType,
		Title:    req.Title,
		Content:  req.Content,
		URL:      req.URL,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		resolved, err := tags.Resolve(tx, userID, req.Tags)
		if err != nil {
			return err
		}
		idea.Tags = resolved
		return tx.Create(&idea).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create idea"})
		return
	}

	// Enrichment is fire-and-forget; the idea exists regardless of whether
	// the preview ever arrives.
	if idea.IdeaType == models.IdeaTypeLink && h.previews != nil {
		h.previews.Schedule(idea.ID, idea.URL)
	}

	c.JSON(http.StatusCreated, ideaToResponse(idea))
}

// List returns the user's ideas with composable filters
// @Summary List ideas
// @Description List ideas filtered by folder, tags (any-of), search text and pinned state
// @Tags ideas
// @Produce json
// @Param folder_id query int false "Filter by folder"
// @Param tags query []string false "Filter by any of these tag names"
// @Param q query string false "Case-insensitive substring match on title or content"
// @Param pinned query bool false "Filter by pinned state"
// @Success 200 {array} IdeaResponse
// @Security BearerAuth
// @Router /ideas [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	query := h.db.Model(&models.Idea{}).Where("ideas.owner_id = ?", userID)

	if folderID := c.Query("folder_id"); folderID != "" {
		query = query.Where("ideas.folder_id = ?", folderID)
	}

	if tagNames := c.QueryArray("tags"); len(tagNames) > 0 {
		// Any-of semantics; distinct because an idea may match several tags
		query = query.
			Joins("JOIN idea_tags ON idea_tags.idea_id = ideas.id").
			Joins("JOIN tags ON tags.id = idea_tags.tag_id").
			Where("tags.name IN ?", tagNames).
			Distinct("ideas.*")
	}

	if q := c.Query("q"); q != "" {
		searchTerm := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(ideas.title) LIKE ? OR LOWER(ideas.content) LIKE ?", searchTerm, searchTerm)
	}

	if pinned := c.Query("pinned"); pinned != "" {
		query = query.Where("ideas.is_pinned = ?", pinned == "true")
	}

	var results []models.Idea
	err := query.
		Preload("Tags").
		Preload("LinkMetadata").
		Order("ideas.is_pinned DESC, ideas.updated_at DESC").
		Find(&results).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ideas"})
		return
	}

	responses := make([]IdeaResponse, len(results))
	for i, idea := range results {
		responses[i] = ideaToResponse(idea)
	}

	c.JSON(http.StatusOK, responses)
}

// Get returns a single idea by ID
// @Summary Get an idea
// @Description Get one of the user's ideas by ID
// @Tags ideas
// @Produce json
// @Param id path int true "Idea ID"
// @Success 200 {object} IdeaResponse
// @Failure 404 {object} map[string]string "Idea not found"
// @Security BearerAuth
// @Router /ideas/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	ideaID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid idea ID"})
		return
	}

	var idea models.Idea
	err = h.db.Preload("Tags").Preload("LinkMetadata").
		Where("id = ? AND owner_id = ?", ideaID, userID).
		First(&idea).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Idea not found"})
		return
	}

	c.JSON(http.StatusOK, ideaToResponse(idea))
}

// Update partially updates an idea
// @Summary Update an idea
// @Description Update only the fields present in the request; a present tags field replaces the whole set
// @Tags ideas
// @Accept json
// @Produce json
// @Param id path int true "Idea ID"
// @Param request body UpdateIdeaRequest true "Fields to update"
// @Success 200 {object} IdeaResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Idea or folder not found"
// @Security BearerAuth
// @Router /ideas/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	ideaID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid idea ID"})
		return
	}

	// Loaded without associations so that Save below touches only the row
	var idea models.Idea
	if err := h.db.Where("id = ? AND owner_id = ?", ideaID, userID).First(&idea).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Idea not found"})
		return
	}

	var req UpdateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.FolderID != nil {
		if err := h.checkFolderOwnership(userID, *req.FolderID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		idea.FolderID = *req.FolderID
	}
	if req.Title != nil {
		idea.Title = *req.Title
	}
	if req.Content != nil {
		idea.Content = *req.Content
	}
	if req.URL != nil {
		idea.URL = *req.URL
	}
	if req.IsPinned != nil {
		idea.IsPinned = *req.IsPinned
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if req.Tags != nil {
			resolved, err := tags.Resolve(tx, userID, *req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&idea).Association("Tags").Replace(resolved); err != nil {
				return err
			}
		}
		return tx.Save(&idea).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update idea"})
		return
	}

	// Reload with associations for the response
	var updated models.Idea
	if err := h.db.Preload("Tags").Preload("LinkMetadata").First(&updated, idea.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch idea"})
		return
	}

	c.JSON(http.StatusOK, ideaToResponse(updated))
}

// Delete deletes an idea and its tag links
// @Summary Delete an idea
// @Description Delete one of the user's ideas
// @Tags ideas
// @Produce json
// @Param id path int true "Idea ID"
// @Success 200 {object} map[string]string "Idea deleted"
// @Failure 404 {object} map[string]string "Idea not found"
// @Security BearerAuth
// @Router /ideas/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	ideaID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid idea ID"})
		return
	}

	var idea models.Idea
	if err := h.db.Where("id = ? AND owner_id = ?", ideaID, userID).First(&idea).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Idea not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&idea).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&idea).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete idea"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Idea deleted"})
}

// RegisterRoutes registers idea routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ideas", h.Create)
	rg.GET("/ideas", h.List)
	rg.GET("/ideas/:id", h.Get)
	rg.PUT("/ideas/:id", h.Update)
	rg.DELETE("/ideas/:id", h.Delete)
	rg.POST("/ideas/:id/promote-to-task", h.Promote)
}
