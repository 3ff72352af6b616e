package models

import (
	"time"

	"gorm.io/gorm"
)

// Group membership states.
const (
	// MemberStatusPending marks a join request awaiting approval.
	MemberStatusPending = "pending"
	// MemberStatusAccepted marks an approved member.
	MemberStatusAccepted = "accepted"
	// MemberStatusRejected marks a declined join request.
	MemberStatusRejected = "rejected"
)

// Group is a team that registers for competitions and authors entries.
type Group struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:varchar(255);not null"` // Display name.
	LeaderID uint64 `gorm:"not null;index"`             // Founding user ID.

	CreatedAt time.Time      `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	DeletedAt gorm.DeletedAt `gorm:"index"`                   // Soft delete marker.
}

// GroupMember binds a user to a group with an approval status.
type GroupMember struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	GroupID uint64 `gorm:"not null;uniqueIndex:idx_group_members_pair,priority:1"` // Group ID.
	UserID  uint64 `gorm:"not null;uniqueIndex:idx_group_members_pair,priority:2"` // Member user ID.
	Status  string `gorm:"type:varchar(32);not null;default:pending"`              // Approval status.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
