package models

import (
	"time"
)

// TaskStatus represents a task's progress
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents a task's priority
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task represents a to-do item, optionally generated from an idea
type Task struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	OwnerID     uint         `gorm:"not null;index" json:"owner_id"`
	Title       string       `gorm:"not null;index" json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);default:'todo'" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(10);default:'medium'" json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}
