package models

import (
	"time"
)

// Folder groups ideas for one owner
type Folder struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Name      string    `gorm:"not null" json:"name"`
	Icon      string    `json:"icon"`

	// Relationships
	Owner User   `gorm:"foreignKey:OwnerID" json:"-"`
	Ideas []Idea `gorm:"foreignKey:FolderID" json:"ideas,omitempty"`
}
