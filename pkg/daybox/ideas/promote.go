package ideas

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/daybox-app/daybox/pkg/daybox/auth"
	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errAlreadyPromoted = errors.New("idea already promoted")

// PromoteRequest represents the request to turn an idea into a task
type PromoteRequest struct {
	TaskTitle       string  `json:"task_title" binding:"required,min=1,max=200"`
	TaskDescription *string `json:"task_description"`
}

// TaskResponse represents the task created from an idea
type TaskResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	IdeaID      uint                `json:"idea_id"`
}

// Promote converts an idea into a task, at most once per idea
// @Summary Promote an idea to a task
// @Description Create a task from an idea; each idea can be promoted exactly once
// @Tags ideas
// @Accept json
// @Produce json
// @Param id path int true "Idea ID"
// @Param request body PromoteRequest true "Task details"
// @Success 201 {object} TaskResponse
// @Failure 404 {object} map[string]string "Idea not found"
// @Failure 409 {object} map[string]string "Idea already promoted"
// @Security BearerAuth
// @Router /ideas/{id}/promote-to-task [post]
func (h *Handler) Promote(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	ideaID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid idea ID"})
		return
	}

	var req PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var idea models.Idea
		if err := tx.Where("id = ? AND owner_id = ?", ideaID, userID).First(&idea).Error; err != nil {
			return err
		}
		if idea.GeneratedTaskID != nil {
			return errAlreadyPromoted
		}

		description := idea.Content
		if req.TaskDescription != nil {
			description = *req.TaskDescription
		}

		task = models.Task{
			OwnerID:     userID,
			Title:       req.TaskTitle,
			Description: description,
			Status:      models.TaskStatusTodo,
			Priority:    models.TaskPriorityMedium,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		// Guarded write closes the race two concurrent promotions would
		// otherwise leave open: only one can flip NULL to a task id.
		res := tx.Model(&models.Idea{}).
			Where("id = ? AND generated_task_id IS NULL", idea.ID).
			Update("generated_task_id", task.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyPromoted
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, errAlreadyPromoted):
			c.JSON(http.StatusConflict, gin.H{"error": "This idea has already been promoted to a task"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Idea not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to promote idea"})
		}
		return
	}

	c.JSON(http.StatusCreated, TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		IdeaID:      uint(ideaID),
	})
}
