package models

import (
	"time"
)

// LinkMetadata caches Open Graph data for a URL. Rows are created by the
// preview enricher and shared by every idea pointing at the same URL.
type LinkMetadata struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	URL         string    `gorm:"uniqueIndex;not null" json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	FetchedAt   time.Time `json:"fetched_at"`
}
