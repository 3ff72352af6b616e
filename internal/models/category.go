package models

import (
	"time"

	"gorm.io/gorm"
)

// Category lifecycle states.
const (
	// CategoryStatusDraft marks a category that is not yet accepting entries.
	CategoryStatusDraft = "draft"
	// CategoryStatusOpen marks a category that accepts registrations and entries.
	CategoryStatusOpen = "open"
	// CategoryStatusClosed marks a finished category.
	CategoryStatusClosed = "closed"
)

// Category is a competition, event or content section that posts, groups and
// rules attach to.
type Category struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title       string `gorm:"type:varchar(255);not null"`               // Display title.
	Description string `gorm:"type:text"`                                // Free-form description.
	Status      string `gorm:"type:varchar(32);not null;default:draft"`  // Lifecycle status.
	Kind        string `gorm:"type:varchar(32);not null;default:cat"`    // category or event.

	ParticipantCount int64 `gorm:"not null;default:0"` // Cached registered group total.

	CreatedAt time.Time      `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	DeletedAt gorm.DeletedAt `gorm:"index"`                   // Soft delete marker.
}
