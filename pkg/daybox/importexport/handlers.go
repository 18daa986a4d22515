// Package importexport moves a user's idea box in and out of daybox as a
// JSON archive, for backups and migration between instances.
package importexport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/daybox-app/daybox/pkg/daybox/auth"
	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/daybox-app/daybox/pkg/daybox/tags"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errUnknownIdeaType = errors.New("unknown idea type")

// Handler handles import/export requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new import/export handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ArchiveIdea represents one idea in an archive
type ArchiveIdea struct {
	IdeaType  string   `json:"idea_type"`
	Title     string   `json:"title"`
	Content   string   `json:"content,omitempty"`
	URL       string   `json:"url,omitempty"`
	IsPinned  bool     `json:"is_pinned,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// ArchiveFolder represents one folder and its ideas in an archive
type ArchiveFolder struct {
	Name  string        `json:"name"`
	Icon  string        `json:"icon,omitempty"`
	Ideas []ArchiveIdea `json:"ideas"`
}

// Archive is the top-level export format
type Archive struct {
	Folders []ArchiveFolder `json:"folders"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Export dumps the user's whole idea box as a JSON archive
// @Summary Export the idea box
// @Description Export all folders and ideas, including tags, as a JSON archive
// @Tags import-export
// @Produce json
// @Param download query bool false "Set a download content disposition"
// @Success 200 {object} Archive
// @Security BearerAuth
// @Router /export [get]
func (h *Handler) Export(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var folders []models.Folder
	if err := h.db.Where("owner_id = ?", userID).Order("name ASC").Find(&folders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch folders"})
		return
	}

	archive := Archive{Folders: make([]ArchiveFolder, len(folders))}
	for i, folder := range folders {
		var ideas []models.Idea
		err := h.db.Preload("Tags").
			Where("folder_id = ?", folder.ID).
			Order("created_at ASC").
			Find(&ideas).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ideas"})
			return
		}

		af := ArchiveFolder{
			Name:  folder.Name,
			Icon:  folder.Icon,
			Ideas: make([]ArchiveIdea, len(ideas)),
		}
		for j, idea := range ideas {
			tagNames := make([]string, len(idea.Tags))
			for k, tag := range idea.Tags {
				tagNames[k] = tag.Name
			}
			af.Ideas[j] = ArchiveIdea{
				IdeaType:  string(idea.IdeaType),
				Title:     idea.Title,
				Content:   idea.Content,
				URL:       idea.URL,
				IsPinned:  idea.IsPinned,
				Tags:      tagNames,
				CreatedAt: idea.CreatedAt.Format(time.RFC3339),
			}
		}
		archive.Folders[i] = af
	}

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", "attachment; filename=daybox-export.json")
	}

	c.JSON(http.StatusOK, archive)
}

// Import loads an archive into the user's idea box. Folders are matched by
// name and reused when they already exist; ideas are always created.
// @Summary Import an idea box archive
// @Description Import folders and ideas from a JSON archive
// @Tags import-export
// @Accept json
// @Produce json
// @Param request body Archive true "Archive to import"
// @Success 200 {object} ImportResult
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /import [post]
func (h *Handler) Import(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var archive Archive
	if err := c.ShouldBindJSON(&archive); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := ImportResult{Errors: []string{}}

	for fi, af := range archive.Folders {
		if af.Name == "" {
			result.Errors = append(result.Errors, "folder "+strconv.Itoa(fi)+": missing name")
			result.Skipped += len(af.Ideas)
			continue
		}

		folder, err := h.findOrCreateFolder(userID, af.Name, af.Icon)
		if err != nil {
			result.Errors = append(result.Errors, "folder "+strconv.Itoa(fi)+": "+err.Error())
			result.Skipped += len(af.Ideas)
			continue
		}

		for ii, ai := range af.Ideas {
			if err := h.importIdea(userID, folder.ID, ai); err != nil {
				result.Errors = append(result.Errors,
					"folder "+strconv.Itoa(fi)+" idea "+strconv.Itoa(ii)+": "+err.Error())
				result.Skipped++
				continue
			}
			result.Imported++
		}
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) findOrCreateFolder(userID uint, name, icon string) (models.Folder, error) {
	var folder models.Folder
	err := h.db.Where("owner_id = ? AND name = ?", userID, name).First(&folder).Error
	if err == nil {
		return folder, nil
	}

	folder = models.Folder{OwnerID: userID, Name: name, Icon: icon}
	if err := h.db.Create(&folder).Error; err != nil {
		return models.Folder{}, err
	}
	return folder, nil
}

func (h *Handler) importIdea(userID, folderID uint, ai ArchiveIdea) error {
	ideaType := models.IdeaType(ai.IdeaType)
	switch ideaType {
	case "":
		ideaType = models.IdeaTypeText
	case models.IdeaTypeText, models.IdeaTypeLink, models.IdeaTypeImage:
	default:
		return errUnknownIdeaType
	}

	idea := models.Idea{
		OwnerID:  userID,
		FolderID: folderID,
		IdeaType: ideaType,
		Title:    ai.Title,
		Content:  ai.Content,
		URL:      ai.URL,
		IsPinned: ai.IsPinned,
	}
	// Original capture time survives the round trip when present
	if ai.CreatedAt != "" {
		if created, err := time.Parse(time.RFC3339, ai.CreatedAt); err == nil {
			idea.CreatedAt = created
		}
	}

	return h.db.Transaction(func(tx *gorm.DB) error {
		resolved, err := tags.Resolve(tx, userID, ai.Tags)
		if err != nil {
			return err
		}
		idea.Tags = resolved
		return tx.Create(&idea).Error
	})
}

// RegisterRoutes registers import/export routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.GET("/export", h.Export)
}
