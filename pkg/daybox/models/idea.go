package models

import (
	"time"
)

// IdeaType classifies the payload of an idea
type IdeaType string

const (
	IdeaTypeText  IdeaType = "text"
	IdeaTypeLink  IdeaType = "link"
	IdeaTypeImage IdeaType = "image"
)

// Idea is a captured note, link or image living in a folder
type Idea struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	FolderID  uint      `gorm:"not null;index" json:"folder_id"`
	IdeaType  IdeaType  `gorm:"type:varchar(10);default:'text'" json:"idea_type"`
	Title     string    `gorm:"index" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	URL       string    `json:"url"`
	IsPinned  bool      `gorm:"default:false;index" json:"is_pinned"`

	// Set by the preview enricher once metadata for URL has been fetched
	LinkMetadataID *uint `json:"link_metadata_id,omitempty"`
	// Set exactly once when the idea is promoted to a task
	GeneratedTaskID *uint `json:"generated_task_id,omitempty"`

	// Relationships
	Owner         User          `gorm:"foreignKey:OwnerID" json:"-"`
	Folder        Folder        `gorm:"foreignKey:FolderID" json:"folder,omitempty"`
	LinkMetadata  *LinkMetadata `gorm:"foreignKey:LinkMetadataID" json:"link_metadata,omitempty"`
	GeneratedTask *Task         `gorm:"foreignKey:GeneratedTaskID" json:"generated_task,omitempty"`
	Tags          []Tag         `gorm:"many2many:idea_tags;" json:"tags,omitempty"`
}
