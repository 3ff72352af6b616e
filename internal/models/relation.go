package models

import "time"

// Association edge relation types between sibling categories.
const (
	// RelationStage orders categories as stages of one competition.
	RelationStage = "stage"
	// RelationTrack groups categories as parallel tracks.
	RelationTrack = "track"
	// RelationPrerequisite requires completing the target before the source.
	RelationPrerequisite = "prerequisite"
)

// Post-to-post relation kinds.
const (
	// PostRelationReference links a derived post back to its origin, e.g. a
	// certificate to the ranked entry it was awarded for.
	PostRelationReference = "reference"
	// PostRelationRepost links a repost to the original.
	PostRelationRepost = "repost"
)

// AssociationEdge is a directed, typed relation between two categories.
// Uniqueness is enforced on the (source, target) pair for every relation
// type: a stage edge between two categories blocks a later track edge
// between the same pair.
type AssociationEdge struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SourceID     uint64 `gorm:"not null;uniqueIndex:idx_association_edges_pair,priority:1"` // Source category ID.
	TargetID     uint64 `gorm:"not null;uniqueIndex:idx_association_edges_pair,priority:2;index"` // Target category ID.
	RelationType string `gorm:"type:varchar(32);not null;index"`                            // stage, track or prerequisite.
	StageOrder   *int   `gorm:""`                                                           // Ordering for stage edges, nil sorts last.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// CategoryPost links a post into a category; creating one is the submission
// lifecycle point guarded by pre-checks.
type CategoryPost struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CategoryID uint64 `gorm:"not null;uniqueIndex:idx_category_posts_pair,priority:1"` // Category ID.
	PostID     uint64 `gorm:"not null;uniqueIndex:idx_category_posts_pair,priority:2;index"` // Post ID.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// CategoryGroup registers a group into a category.
type CategoryGroup struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CategoryID uint64 `gorm:"not null;uniqueIndex:idx_category_groups_pair,priority:1"` // Category ID.
	GroupID    uint64 `gorm:"not null;uniqueIndex:idx_category_groups_pair,priority:2;index"` // Group ID.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// PostPost is a directed, typed relation between two posts.
type PostPost struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SourceID uint64 `gorm:"not null;index"`                  // Source post ID.
	TargetID uint64 `gorm:"not null;index"`                  // Target post ID.
	Kind     string `gorm:"type:varchar(32);not null;index"` // reference or repost.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// PostResource attaches an uploaded resource to a post.
type PostResource struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PostID     uint64 `gorm:"not null;uniqueIndex:idx_post_resources_pair,priority:1"` // Post ID.
	ResourceID uint64 `gorm:"not null;uniqueIndex:idx_post_resources_pair,priority:2;index"` // Resource ID.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
