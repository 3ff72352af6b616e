// Package repo defines the per-entity repository contracts the engine is
// written against, plus their GORM implementations. The engine never touches
// a *gorm.DB directly; everything flows through these interfaces so rule
// evaluation and cascades can run against any conforming store.
package repo

import (
	"context"

	"github.com/contesthub/contesthub/internal/models"
)

// RuleStore reads rules and their category links.
type RuleStore interface {
	// Get returns the rule by ID.
	Get(ctx context.Context, id uint64) (*models.Rule, error)
	// LinkedRules returns every rule linked to the category, ordered by
	// link priority ascending.
	LinkedRules(ctx context.Context, categoryID uint64) ([]models.Rule, error)
	// ListAll returns all non-deleted rules.
	ListAll(ctx context.Context) ([]models.Rule, error)
	// CreateLink attaches a rule to a category.
	CreateLink(ctx context.Context, link *models.RuleLink) error
	// DeleteLinksByRule removes every link of the rule.
	DeleteLinksByRule(ctx context.Context, ruleID uint64) error
	// DeleteLinksByCategory removes every link of the category.
	DeleteLinksByCategory(ctx context.Context, categoryID uint64) error
	// SoftDelete stamps the rule deleted.
	SoftDelete(ctx context.Context, id uint64) error
}

// CategoryStore reads and updates categories.
type CategoryStore interface {
	Get(ctx context.Context, id uint64) (*models.Category, error)
	SetParticipantCount(ctx context.Context, id uint64, count int64) error
	SoftDelete(ctx context.Context, id uint64) error
}

// PostStore reads and updates posts and their workflow tags.
type PostStore interface {
	Get(ctx context.Context, id uint64) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	// ListByCategory returns the non-deleted posts linked into the category.
	ListByCategory(ctx context.Context, categoryID uint64) ([]models.Post, error)
	// CountByCategoryAndAuthor counts the author's posts in the category.
	CountByCategoryAndAuthor(ctx context.Context, categoryID, authorID uint64) (int64, error)
	// SetTags replaces the post's workflow tag array.
	SetTags(ctx context.Context, id uint64, tags []string) error
	// SetStatus updates the lifecycle status.
	SetStatus(ctx context.Context, id uint64, status string) error
	// SetInteractionCaches overwrites the denormalized interaction caches.
	SetInteractionCaches(ctx context.Context, id uint64, likes, comments int64, averageRating *float64) error
	SoftDelete(ctx context.Context, id uint64) error
}

// GroupStore reads groups and their memberships.
type GroupStore interface {
	Get(ctx context.Context, id uint64) (*models.Group, error)
	// ListByCategory returns the groups registered into the category.
	ListByCategory(ctx context.Context, categoryID uint64) ([]models.Group, error)
	// CountMembers counts members, optionally restricted to statuses.
	CountMembers(ctx context.Context, groupID uint64, statuses ...string) (int64, error)
	// ListMembers lists members, optionally restricted to statuses.
	ListMembers(ctx context.Context, groupID uint64, statuses ...string) ([]models.GroupMember, error)
	// MemberExists reports whether the user has a membership row, optionally
	// restricted to statuses.
	MemberExists(ctx context.Context, groupID, userID uint64, statuses ...string) (bool, error)
	// DeleteMembersByGroup hard-deletes every membership of the group.
	DeleteMembersByGroup(ctx context.Context, groupID uint64) error
	SoftDelete(ctx context.Context, id uint64) error
}

// UserStore reads and updates users.
type UserStore interface {
	Get(ctx context.Context, id uint64) (*models.User, error)
	SetFollowCounts(ctx context.Context, id uint64, followers, following int64) error
	SoftDelete(ctx context.Context, id uint64) error
}

// ResourceStore reads uploaded resources.
type ResourceStore interface {
	// ListByPost returns the resources attached to the post.
	ListByPost(ctx context.Context, postID uint64) ([]models.Resource, error)
}

// InteractionStore reads and mutates interactions and their polymorphic
// target bindings.
type InteractionStore interface {
	Get(ctx context.Context, id uint64) (*models.Interaction, error)
	Create(ctx context.Context, interaction *models.Interaction) error
	// ListByAuthor returns every interaction authored by the user.
	ListByAuthor(ctx context.Context, userID uint64) ([]models.Interaction, error)
	// ListChildren returns the direct replies of an interaction.
	ListChildren(ctx context.Context, parentID uint64) ([]models.Interaction, error)
	// DeleteHard removes interaction rows permanently.
	DeleteHard(ctx context.Context, ids []uint64) error
	// ListByTarget returns interactions bound to the target, optionally
	// restricted to one kind.
	ListByTarget(ctx context.Context, targetType string, targetID uint64, kind string) ([]models.Interaction, error)
	// CountByTarget counts interactions of a kind bound to the target.
	CountByTarget(ctx context.Context, targetType string, targetID uint64, kind string) (int64, error)

	CreateBinding(ctx context.Context, binding *models.InteractionBinding) error
	// ListBindingsByTarget returns every binding pointing at the target.
	ListBindingsByTarget(ctx context.Context, targetType string, targetID uint64) ([]models.InteractionBinding, error)
	// ListBindingsByInteraction returns every binding of the interaction.
	ListBindingsByInteraction(ctx context.Context, interactionID uint64) ([]models.InteractionBinding, error)
	// DeleteBindings removes binding rows permanently.
	DeleteBindings(ctx context.Context, ids []uint64) error
	// CountBindings counts remaining bindings of the interaction.
	CountBindings(ctx context.Context, interactionID uint64) (int64, error)
}

// EdgeStore reads and writes category association edges.
type EdgeStore interface {
	// PairExists reports whether any edge connects source to target,
	// regardless of relation type.
	PairExists(ctx context.Context, sourceID, targetID uint64) (bool, error)
	// Outgoing returns the edges leaving source with the given relation type.
	Outgoing(ctx context.Context, sourceID uint64, relationType string) ([]models.AssociationEdge, error)
	// List returns the edges leaving source with the given relation type;
	// stage edges come back ordered by stage_order ascending, nulls last.
	List(ctx context.Context, sourceID uint64, relationType string) ([]models.AssociationEdge, error)
	Create(ctx context.Context, edge *models.AssociationEdge) error
	// DeleteByCategory removes every edge touching the category on either side.
	DeleteByCategory(ctx context.Context, categoryID uint64) error
}

// RelationStore reads and writes the plain relation rows between entities.
type RelationStore interface {
	CreateCategoryPost(ctx context.Context, row *models.CategoryPost) error
	CreateCategoryGroup(ctx context.Context, row *models.CategoryGroup) error
	CreatePostRelation(ctx context.Context, row *models.PostPost) error
	CreatePostResource(ctx context.Context, row *models.PostResource) error
	CreateFollow(ctx context.Context, row *models.UserFollow) error

	// CountGroupsByCategory counts the groups registered into the category.
	CountGroupsByCategory(ctx context.Context, categoryID uint64) (int64, error)
	// FollowCounts returns the user's follower and following totals.
	FollowCounts(ctx context.Context, userID uint64) (followers, following int64, err error)

	// DeleteByPost removes every relation row referencing the post in either
	// direction: category_post, post_post both sides, post_resource.
	DeleteByPost(ctx context.Context, postID uint64) error
	// DeleteByCategory removes category_post and category_group rows
	// referencing the category.
	DeleteByCategory(ctx context.Context, categoryID uint64) error
	// DeleteByGroup removes category_group rows referencing the group and
	// returns the IDs of the categories whose participant caches were
	// affected.
	DeleteByGroup(ctx context.Context, groupID uint64) ([]uint64, error)
	// DeleteFollowsByUser removes follow rows on both sides and returns the
	// IDs of the users whose counts were affected.
	DeleteFollowsByUser(ctx context.Context, userID uint64) ([]uint64, error)
}

// Stores aggregates one store per entity kind. Engine components receive the
// aggregate and pick the contracts they need.
type Stores struct {
	Rules        RuleStore
	Categories   CategoryStore
	Posts        PostStore
	Groups       GroupStore
	Users        UserStore
	Resources    ResourceStore
	Interactions InteractionStore
	Edges        EdgeStore
	Relations    RelationStore
}
