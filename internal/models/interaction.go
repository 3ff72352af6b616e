package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Interaction kinds.
const (
	// InteractionLike is a like mark; its value is null.
	InteractionLike = "like"
	// InteractionComment is a comment; its value is the comment text.
	InteractionComment = "comment"
	// InteractionRating is a rating; its value is a dimension→score map.
	InteractionRating = "rating"
)

// Interaction target types for polymorphic bindings.
const (
	// TargetPost binds an interaction to a post.
	TargetPost = "post"
	// TargetCategory binds an interaction to a category.
	TargetCategory = "category"
	// TargetUser binds an interaction to a user.
	TargetUser = "user"
)

// Interaction is a like, comment or rating. It attaches to targets through
// InteractionBinding rows and is hard-deleted on cascade, never soft-deleted.
type Interaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Kind   string `gorm:"type:varchar(32);not null;index"` // like, comment or rating.
	UserID uint64 `gorm:"not null;index"`                  // Authoring user ID.

	// Value holds the kind-specific payload: null for likes, a JSON string
	// for comments, a dimension→score object for ratings.
	Value datatypes.JSON `gorm:"type:jsonb"`

	ParentID *uint64 `gorm:"index"` // Parent interaction for threaded replies.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// RatingScores decodes a rating interaction's per-dimension scores. Non-rating
// or malformed values yield nil.
func (i *Interaction) RatingScores() map[string]float64 {
	if i.Kind != InteractionRating || len(i.Value) == 0 {
		return nil
	}
	var scores map[string]float64
	if errDecode := json.Unmarshal(i.Value, &scores); errDecode != nil {
		return nil
	}
	return scores
}

// InteractionBinding links an interaction to a target entity. The triple is
// unique; removing the last binding of an interaction orphans it for deletion.
type InteractionBinding struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	TargetType    string `gorm:"type:varchar(32);not null;uniqueIndex:idx_interaction_bindings_triple,priority:1"` // Target entity kind.
	TargetID      uint64 `gorm:"not null;uniqueIndex:idx_interaction_bindings_triple,priority:2"`                  // Target entity ID.
	InteractionID uint64 `gorm:"not null;uniqueIndex:idx_interaction_bindings_triple,priority:3;index"`            // Bound interaction ID.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
