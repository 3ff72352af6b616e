package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/contesthub/contesthub/internal/models"
	"gorm.io/gorm"
)

// GormEdgeStore implements EdgeStore on GORM.
type GormEdgeStore struct {
	db *gorm.DB
}

// PairExists reports whether any edge connects source to target, regardless
// of relation type.
func (s *GormEdgeStore) PairExists(ctx context.Context, sourceID, targetID uint64) (bool, error) {
	var row models.AssociationEdge
	errFind := s.db.WithContext(ctx).
		Where("source_id = ? AND target_id = ?", sourceID, targetID).
		First(&row).Error
	if errFind == nil {
		return true, nil
	}
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("repo: edge %d->%d: %w", sourceID, targetID, errFind)
}

// Outgoing returns the edges leaving source with the given relation type.
func (s *GormEdgeStore) Outgoing(ctx context.Context, sourceID uint64, relationType string) ([]models.AssociationEdge, error) {
	var rows []models.AssociationEdge
	if errFind := s.db.WithContext(ctx).
		Where("source_id = ? AND relation_type = ?", sourceID, relationType).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: outgoing edges of %d: %w", sourceID, errFind)
	}
	return rows, nil
}

// List returns the edges leaving source with the given relation type. Stage
// edges come back ordered by stage_order ascending with nulls last; other
// relation types keep insertion order.
func (s *GormEdgeStore) List(ctx context.Context, sourceID uint64, relationType string) ([]models.AssociationEdge, error) {
	query := s.db.WithContext(ctx).
		Where("source_id = ? AND relation_type = ?", sourceID, relationType)
	if relationType == models.RelationStage {
		query = query.Order("stage_order IS NULL, stage_order ASC, id ASC")
	} else {
		query = query.Order("id ASC")
	}
	var rows []models.AssociationEdge
	if errFind := query.Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: edges of %d: %w", sourceID, errFind)
	}
	return rows, nil
}

// Create inserts an edge row.
func (s *GormEdgeStore) Create(ctx context.Context, edge *models.AssociationEdge) error {
	if errCreate := s.db.WithContext(ctx).Create(edge).Error; errCreate != nil {
		return fmt.Errorf("repo: create edge: %w", errCreate)
	}
	return nil
}

// DeleteByCategory removes every edge touching the category on either side.
func (s *GormEdgeStore) DeleteByCategory(ctx context.Context, categoryID uint64) error {
	if errDelete := s.db.WithContext(ctx).
		Where("source_id = ? OR target_id = ?", categoryID, categoryID).
		Delete(&models.AssociationEdge{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete edges of category %d: %w", categoryID, errDelete)
	}
	return nil
}

// GormRelationStore implements RelationStore on GORM.
type GormRelationStore struct {
	db *gorm.DB
}

// CreateCategoryPost links a post into a category.
func (s *GormRelationStore) CreateCategoryPost(ctx context.Context, row *models.CategoryPost) error {
	if errCreate := s.db.WithContext(ctx).Create(row).Error; errCreate != nil {
		return fmt.Errorf("repo: create category_post: %w", errCreate)
	}
	return nil
}

// CreateCategoryGroup registers a group into a category.
func (s *GormRelationStore) CreateCategoryGroup(ctx context.Context, row *models.CategoryGroup) error {
	if errCreate := s.db.WithContext(ctx).Create(row).Error; errCreate != nil {
		return fmt.Errorf("repo: create category_group: %w", errCreate)
	}
	return nil
}

// CreatePostRelation links two posts.
func (s *GormRelationStore) CreatePostRelation(ctx context.Context, row *models.PostPost) error {
	if errCreate := s.db.WithContext(ctx).Create(row).Error; errCreate != nil {
		return fmt.Errorf("repo: create post_post: %w", errCreate)
	}
	return nil
}

// CreatePostResource attaches a resource to a post.
func (s *GormRelationStore) CreatePostResource(ctx context.Context, row *models.PostResource) error {
	if errCreate := s.db.WithContext(ctx).Create(row).Error; errCreate != nil {
		return fmt.Errorf("repo: create post_resource: %w", errCreate)
	}
	return nil
}

// CreateFollow records a follow relationship.
func (s *GormRelationStore) CreateFollow(ctx context.Context, row *models.UserFollow) error {
	if errCreate := s.db.WithContext(ctx).Create(row).Error; errCreate != nil {
		return fmt.Errorf("repo: create user_follow: %w", errCreate)
	}
	return nil
}

// CountGroupsByCategory counts the groups registered into the category.
func (s *GormRelationStore) CountGroupsByCategory(ctx context.Context, categoryID uint64) (int64, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.CategoryGroup{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("repo: count groups of category %d: %w", categoryID, errCount)
	}
	return count, nil
}

// FollowCounts returns the user's follower and following totals.
func (s *GormRelationStore) FollowCounts(ctx context.Context, userID uint64) (int64, int64, error) {
	var followers int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.UserFollow{}).
		Where("followee_id = ?", userID).
		Count(&followers).Error; errCount != nil {
		return 0, 0, fmt.Errorf("repo: count followers of user %d: %w", userID, errCount)
	}
	var following int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.UserFollow{}).
		Where("follower_id = ?", userID).
		Count(&following).Error; errCount != nil {
		return 0, 0, fmt.Errorf("repo: count following of user %d: %w", userID, errCount)
	}
	return followers, following, nil
}

// DeleteByPost removes every relation row referencing the post in either
// direction.
func (s *GormRelationStore) DeleteByPost(ctx context.Context, postID uint64) error {
	if errDelete := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.CategoryPost{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete category_post of post %d: %w", postID, errDelete)
	}
	if errDelete := s.db.WithContext(ctx).
		Where("source_id = ? OR target_id = ?", postID, postID).
		Delete(&models.PostPost{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete post_post of post %d: %w", postID, errDelete)
	}
	if errDelete := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.PostResource{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete post_resource of post %d: %w", postID, errDelete)
	}
	return nil
}

// DeleteByCategory removes category_post and category_group rows referencing
// the category.
func (s *GormRelationStore) DeleteByCategory(ctx context.Context, categoryID uint64) error {
	if errDelete := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Delete(&models.CategoryPost{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete category_post of category %d: %w", categoryID, errDelete)
	}
	if errDelete := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Delete(&models.CategoryGroup{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete category_group of category %d: %w", categoryID, errDelete)
	}
	return nil
}

// DeleteByGroup removes category_group rows referencing the group and
// returns the affected category IDs.
func (s *GormRelationStore) DeleteByGroup(ctx context.Context, groupID uint64) ([]uint64, error) {
	var rows []models.CategoryGroup
	if errFind := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: category_group of group %d: %w", groupID, errFind)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	categoryIDs := make([]uint64, 0, len(rows))
	for _, row := range rows {
		categoryIDs = append(categoryIDs, row.CategoryID)
	}
	if errDelete := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&models.CategoryGroup{}).Error; errDelete != nil {
		return nil, fmt.Errorf("repo: delete category_group of group %d: %w", groupID, errDelete)
	}
	return categoryIDs, nil
}

// DeleteFollowsByUser removes follow rows on both sides and returns the IDs
// of the other users whose counts were affected.
func (s *GormRelationStore) DeleteFollowsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var rows []models.UserFollow
	if errFind := s.db.WithContext(ctx).
		Where("follower_id = ? OR followee_id = ?", userID, userID).
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: follows of user %d: %w", userID, errFind)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	affected := make([]uint64, 0, len(rows))
	seen := map[uint64]struct{}{}
	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
		other := row.FollowerID
		if other == userID {
			other = row.FolloweeID
		}
		if other == userID {
			continue
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		affected = append(affected, other)
	}

	if errDelete := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.UserFollow{}).Error; errDelete != nil {
		return nil, fmt.Errorf("repo: delete follows of user %d: %w", userID, errDelete)
	}
	return affected, nil
}
