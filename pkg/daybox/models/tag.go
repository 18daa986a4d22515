package models

import (
	"time"
)

// Tag labels ideas. Names are unique per owner; the unique index backs up
// the resolver, which is the primary guard against duplicates.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	OwnerID   uint      `gorm:"not null;uniqueIndex:idx_tags_owner_name" json:"owner_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_tags_owner_name" json:"name"`

	// Relationships
	Owner User   `gorm:"foreignKey:OwnerID" json:"-"`
	Ideas []Idea `gorm:"many2many:idea_tags;" json:"ideas,omitempty"`
}
