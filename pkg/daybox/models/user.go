package models

import (
	"time"
)

// User represents an account in the system
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `json:"-"` // Empty for OAuth-only users
	Active       bool      `gorm:"default:true" json:"active"`

	// Relationships
	OAuthAccounts []OAuthAccount `gorm:"foreignKey:UserID" json:"oauth_accounts,omitempty"`
	Folders       []Folder       `gorm:"foreignKey:OwnerID" json:"folders,omitempty"`
	Ideas         []Idea         `gorm:"foreignKey:OwnerID" json:"ideas,omitempty"`
	Tags          []Tag          `gorm:"foreignKey:OwnerID" json:"tags,omitempty"`
	Tasks         []Task         `gorm:"foreignKey:OwnerID" json:"tasks,omitempty"`
}

// OAuthAccount links a user to an identity at an external provider
type OAuthAccount struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Provider  string    `gorm:"not null;uniqueIndex:idx_oauth_provider_subject" json:"provider"`
	Subject   string    `gorm:"not null;uniqueIndex:idx_oauth_provider_subject" json:"subject"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
