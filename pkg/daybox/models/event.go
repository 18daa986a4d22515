package models

import (
	"time"
)

// CalendarEvent is a scheduled block of time, optionally tied to a task
type CalendarEvent struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Title       string    `gorm:"not null;index" json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"not null;index" json:"end_time"`

	// Not every event is a task, so TaskID may be NULL
	TaskID *uint `json:"task_id,omitempty"`

	// Relationships
	Owner User  `gorm:"foreignKey:OwnerID" json:"-"`
	Task  *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
