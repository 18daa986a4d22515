package calendar

import (
	"net/http"
	"strconv"
	"time"

	"github.com/daybox-app/daybox/pkg/daybox/auth"
	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles calendar-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new calendar handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateEventRequest represents the request to create a calendar event
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=200"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	TaskID      *uint     `json:"task_id"`
}

// UpdateEventRequest represents the request to update a calendar event.
// Pointer fields distinguish "omitted" from "explicitly empty".
type UpdateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	TaskID      *uint      `json:"task_id"`
}

// EventResponse represents a calendar event in API responses
type EventResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	TaskID      *uint     `json:"task_id,omitempty"`
}

// ViewResponse combines events and due tasks for a date range
type ViewResponse struct {
	Events []EventResponse `json:"events"`
	Tasks  []TaskSummary   `json:"tasks"`
}

// TaskSummary represents a task inside a calendar view
type TaskSummary struct {
	ID       uint                `json:"id"`
	Title    string              `json:"title"`
	Status   models.TaskStatus   `json:"status"`
	Priority models.TaskPriority `json:"priority"`
	DueDate  *time.Time          `json:"due_date"`
}

func eventToResponse(event models.CalendarEvent) EventResponse {
	return EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		TaskID:      event.TaskID,
	}
}

// View returns the user's events and due tasks within a date range
// @Summary Calendar view
// @Description Get calendar events and tasks due within [start_date, end_date]
// @Tags calendar
// @Produce json
// @Param start_date query string true "Range start (RFC 3339)"
// @Param end_date query string true "Range end (RFC 3339)"
// @Success 200 {object} ViewResponse
// @Failure 400 {object} map[string]string "Invalid date range"
// @Security BearerAuth
// @Router /calendar [get]
func (h *Handler) View(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date"})
		return
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date"})
		return
	}

	var events []models.CalendarEvent
	err = h.db.Where("owner_id = ? AND start_time >= ? AND end_time <= ?", userID, start, end).
		Order("start_time ASC").
		Find(&events).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	var tasks []models.Task
	err = h.db.Where("owner_id = ? AND due_date >= ? AND due_date <= ?", userID, start, end).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	view := ViewResponse{
		Events: make([]EventResponse, len(events)),
		Tasks:  make([]TaskSummary, len(tasks)),
	}
	for i, event := range events {
		view.Events[i] = eventToResponse(event)
	}
	for i, task := range tasks {
		view.Tasks[i] = TaskSummary{
			ID:       task.ID,
			Title:    task.Title,
			Status:   task.Status,
			Priority: task.Priority,
			DueDate:  task.DueDate,
		}
	}

	c.JSON(http.StatusOK, view)
}

// parseDate accepts a date or an RFC 3339 timestamp
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// CreateEvent creates a new calendar event
// @Summary Create an event
// @Description Create a new calendar event, optionally tied to a task
// @Tags calendar
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Event details"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Task not found"
// @Security BearerAuth
// @Router /calendar/events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	if req.TaskID != nil {
		var task models.Task
		if err := h.db.Where("id = ? AND owner_id = ?", *req.TaskID, userID).First(&task).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
	}

	event := models.CalendarEvent{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TaskID:      req.TaskID,
	}

	if err := h.db.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, eventToResponse(event))
}

// ListEvents returns all of the user's events
// @Summary List events
// @Description Get all of the user's calendar events
// @Tags calendar
// @Produce json
// @Success 200 {array} EventResponse
// @Security BearerAuth
// @Router /calendar/events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var events []models.CalendarEvent
	err := h.db.Where("owner_id = ?", userID).Order("start_time ASC").Find(&events).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = eventToResponse(event)
	}

	c.JSON(http.StatusOK, responses)
}

// GetEvent returns a single event by ID
// @Summary Get an event
// @Description Get one of the user's calendar events by ID
// @Tags calendar
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /calendar/events/{id} [get]
func (h *Handler) GetEvent(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.CalendarEvent
	if err := h.db.Where("id = ? AND owner_id = ?", eventID, userID).First(&event).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, eventToResponse(event))
}

// UpdateEvent partially updates an event
// @Summary Update an event
// @Description Update only the fields present in the request
// @Tags calendar
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body UpdateEventRequest true "Fields to update"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /calendar/events/{id} [put]
func (h *Handler) UpdateEvent(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.CalendarEvent
	if err := h.db.Where("id = ? AND owner_id = ?", eventID, userID).First(&event).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.TaskID != nil {
		var task models.Task
		if err := h.db.Where("id = ? AND owner_id = ?", *req.TaskID, userID).First(&task).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		event.TaskID = req.TaskID
	}

	if !event.EndTime.After(event.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	if err := h.db.Save(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	c.JSON(http.StatusOK, eventToResponse(event))
}

// DeleteEvent deletes an event
// @Summary Delete an event
// @Description Delete one of the user's calendar events
// @Tags calendar
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} map[string]string "Event deleted"
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /calendar/events/{id} [delete]
func (h *Handler) DeleteEvent(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.CalendarEvent
	if err := h.db.Where("id = ? AND owner_id = ?", eventID, userID).First(&event).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	if err := h.db.Delete(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// RegisterRoutes registers calendar routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/calendar", h.View)
	rg.POST("/calendar/events", h.CreateEvent)
	rg.GET("/calendar/events", h.ListEvents)
	rg.GET("/calendar/events/:id", h.GetEvent)
	rg.PUT("/calendar/events/:id", h.UpdateEvent)
	rg.DELETE("/calendar/events/:id", h.DeleteEvent)
}
