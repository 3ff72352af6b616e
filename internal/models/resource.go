package models

import "time"

// Resource is an uploaded file attached to posts via PostResource rows.
type Resource struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UploaderID uint64 `gorm:"not null;index"`             // Uploading user ID.
	FileName   string `gorm:"type:varchar(255);not null"` // Original file name.
	Format     string `gorm:"type:varchar(32);index"`     // Lowercase file extension without dot.
	SizeBytes  int64  `gorm:"not null;default:0"`         // File size.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
