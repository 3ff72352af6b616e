package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a platform account that authors posts, joins groups and follows
// other users.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:varchar(255);not null;uniqueIndex"` // Login name.
	Nickname string `gorm:"type:varchar(255)"`                      // Display name.

	FollowerCount  int64 `gorm:"not null;default:0"` // Cached follower total.
	FollowingCount int64 `gorm:"not null;default:0"` // Cached following total.

	CreatedAt time.Time      `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	DeletedAt gorm.DeletedAt `gorm:"index"`                   // Soft delete marker.
}

// UserFollow records a directed follow relationship between two users.
type UserFollow struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	FollowerID uint64 `gorm:"not null;uniqueIndex:idx_user_follows_pair,priority:1"` // Following user ID.
	FolloweeID uint64 `gorm:"not null;uniqueIndex:idx_user_follows_pair,priority:2"` // Followed user ID.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
