package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/contesthub/contesthub/internal/models"
	"gorm.io/gorm"
)

// GormGroupStore implements GroupStore on GORM.
type GormGroupStore struct {
	db *gorm.DB
}

// Get returns the group by ID.
func (s *GormGroupStore) Get(ctx context.Context, id uint64) (*models.Group, error) {
	var group models.Group
	if errFind := s.db.WithContext(ctx).First(&group, id).Error; errFind != nil {
		return nil, fmt.Errorf("repo: group %d: %w", id, errFind)
	}
	return &group, nil
}

// ListByCategory returns the groups registered into the category.
func (s *GormGroupStore) ListByCategory(ctx context.Context, categoryID uint64) ([]models.Group, error) {
	var rows []models.Group
	if errFind := s.db.WithContext(ctx).
		Joins("JOIN category_groups ON category_groups.group_id = groups.id").
		Where("category_groups.category_id = ?", categoryID).
		Order("groups.id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: groups of category %d: %w", categoryID, errFind)
	}
	return rows, nil
}

func (s *GormGroupStore) memberQuery(ctx context.Context, groupID uint64, statuses []string) *gorm.DB {
	query := s.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	return query
}

// CountMembers counts members, optionally restricted to statuses.
func (s *GormGroupStore) CountMembers(ctx context.Context, groupID uint64, statuses ...string) (int64, error) {
	var count int64
	if errCount := s.memberQuery(ctx, groupID, statuses).Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("repo: count members of group %d: %w", groupID, errCount)
	}
	return count, nil
}

// ListMembers lists members, optionally restricted to statuses.
func (s *GormGroupStore) ListMembers(ctx context.Context, groupID uint64, statuses ...string) ([]models.GroupMember, error) {
	var rows []models.GroupMember
	if errFind := s.memberQuery(ctx, groupID, statuses).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: members of group %d: %w", groupID, errFind)
	}
	return rows, nil
}

// MemberExists reports whether the user has a membership row, optionally
// restricted to statuses.
func (s *GormGroupStore) MemberExists(ctx context.Context, groupID, userID uint64, statuses ...string) (bool, error) {
	var row models.GroupMember
	errFind := s.memberQuery(ctx, groupID, statuses).
		Where("user_id = ?", userID).
		First(&row).Error
	if errFind == nil {
		return true, nil
	}
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("repo: member %d of group %d: %w", userID, groupID, errFind)
}

// DeleteMembersByGroup hard-deletes every membership of the group.
func (s *GormGroupStore) DeleteMembersByGroup(ctx context.Context, groupID uint64) error {
	if errDelete := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&models.GroupMember{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete members of group %d: %w", groupID, errDelete)
	}
	return nil
}

// SoftDelete stamps the group deleted.
func (s *GormGroupStore) SoftDelete(ctx context.Context, id uint64) error {
	if errDelete := s.db.WithContext(ctx).Delete(&models.Group{}, id).Error; errDelete != nil {
		return fmt.Errorf("repo: delete group %d: %w", id, errDelete)
	}
	return nil
}

// GormUserStore implements UserStore on GORM.
type GormUserStore struct {
	db *gorm.DB
}

// Get returns the user by ID.
func (s *GormUserStore) Get(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		return nil, fmt.Errorf("repo: user %d: %w", id, errFind)
	}
	return &user, nil
}

// SetFollowCounts overwrites the cached follower and following totals.
func (s *GormUserStore) SetFollowCounts(ctx context.Context, id uint64, followers, following int64) error {
	if errUpdate := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"follower_count":  followers,
			"following_count": following,
		}).Error; errUpdate != nil {
		return fmt.Errorf("repo: update follow counts of user %d: %w", id, errUpdate)
	}
	return nil
}

// SoftDelete stamps the user deleted.
func (s *GormUserStore) SoftDelete(ctx context.Context, id uint64) error {
	if errDelete := s.db.WithContext(ctx).Delete(&models.User{}, id).Error; errDelete != nil {
		return fmt.Errorf("repo: delete user %d: %w", id, errDelete)
	}
	return nil
}
