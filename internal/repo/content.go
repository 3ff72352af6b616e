package repo

import (
	"context"
	"fmt"

	"github.com/contesthub/contesthub/internal/models"
	"gorm.io/gorm"
)

// GormCategoryStore implements CategoryStore on GORM.
type GormCategoryStore struct {
	db *gorm.DB
}

// Get returns the category by ID.
func (s *GormCategoryStore) Get(ctx context.Context, id uint64) (*models.Category, error) {
	var category models.Category
	if errFind := s.db.WithContext(ctx).First(&category, id).Error; errFind != nil {
		return nil, fmt.Errorf("repo: category %d: %w", id, errFind)
	}
	return &category, nil
}

// SetParticipantCount overwrites the cached registered-group total.
func (s *GormCategoryStore) SetParticipantCount(ctx context.Context, id uint64, count int64) error {
	if errUpdate := s.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Update("participant_count", count).Error; errUpdate != nil {
		return fmt.Errorf("repo: update participant count of category %d: %w", id, errUpdate)
	}
	return nil
}

// SoftDelete stamps the category deleted.
func (s *GormCategoryStore) SoftDelete(ctx context.Context, id uint64) error {
	if errDelete := s.db.WithContext(ctx).Delete(&models.Category{}, id).Error; errDelete != nil {
		return fmt.Errorf("repo: delete category %d: %w", id, errDelete)
	}
	return nil
}

// GormPostStore implements PostStore on GORM.
type GormPostStore struct {
	db *gorm.DB
}

// Get returns the post by ID.
func (s *GormPostStore) Get(ctx context.Context, id uint64) (*models.Post, error) {
	var post models.Post
	if errFind := s.db.WithContext(ctx).First(&post, id).Error; errFind != nil {
		return nil, fmt.Errorf("repo: post %d: %w", id, errFind)
	}
	return &post, nil
}

// Create inserts a new post.
func (s *GormPostStore) Create(ctx context.Context, post *models.Post) error {
	if errCreate := s.db.WithContext(ctx).Create(post).Error; errCreate != nil {
		return fmt.Errorf("repo: create post: %w", errCreate)
	}
	return nil
}

// ListByCategory returns the non-deleted posts linked into the category.
func (s *GormPostStore) ListByCategory(ctx context.Context, categoryID uint64) ([]models.Post, error) {
	var rows []models.Post
	if errFind := s.db.WithContext(ctx).
		Joins("JOIN category_posts ON category_posts.post_id = posts.id").
		Where("category_posts.category_id = ?", categoryID).
		Order("posts.id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: posts of category %d: %w", categoryID, errFind)
	}
	return rows, nil
}

// CountByCategoryAndAuthor counts the author's posts in the category.
func (s *GormPostStore) CountByCategoryAndAuthor(ctx context.Context, categoryID, authorID uint64) (int64, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN category_posts ON category_posts.post_id = posts.id").
		Where("category_posts.category_id = ? AND posts.author_id = ?", categoryID, authorID).
		Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("repo: count posts of author %d in category %d: %w", authorID, categoryID, errCount)
	}
	return count, nil
}

// SetTags replaces the post's workflow tag array.
func (s *GormPostStore) SetTags(ctx context.Context, id uint64, tags []string) error {
	if errUpdate := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("tags", models.EncodeTags(tags)).Error; errUpdate != nil {
		return fmt.Errorf("repo: update tags of post %d: %w", id, errUpdate)
	}
	return nil
}

// SetStatus updates the lifecycle status.
func (s *GormPostStore) SetStatus(ctx context.Context, id uint64, status string) error {
	if errUpdate := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("status", status).Error; errUpdate != nil {
		return fmt.Errorf("repo: update status of post %d: %w", id, errUpdate)
	}
	return nil
}

// SetInteractionCaches overwrites the denormalized interaction caches.
func (s *GormPostStore) SetInteractionCaches(ctx context.Context, id uint64, likes, comments int64, averageRating *float64) error {
	updates := map[string]any{
		"like_count":     likes,
		"comment_count":  comments,
		"average_rating": averageRating,
	}
	if errUpdate := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(updates).Error; errUpdate != nil {
		return fmt.Errorf("repo: update interaction caches of post %d: %w", id, errUpdate)
	}
	return nil
}

// SoftDelete stamps the post deleted.
func (s *GormPostStore) SoftDelete(ctx context.Context, id uint64) error {
	if errDelete := s.db.WithContext(ctx).Delete(&models.Post{}, id).Error; errDelete != nil {
		return fmt.Errorf("repo: delete post %d: %w", id, errDelete)
	}
	return nil
}

// GormResourceStore implements ResourceStore on GORM.
type GormResourceStore struct {
	db *gorm.DB
}

// ListByPost returns the resources attached to the post.
func (s *GormResourceStore) ListByPost(ctx context.Context, postID uint64) ([]models.Resource, error) {
	var rows []models.Resource
	if errFind := s.db.WithContext(ctx).
		Joins("JOIN post_resources ON post_resources.resource_id = resources.id").
		Where("post_resources.post_id = ?", postID).
		Order("resources.id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: resources of post %d: %w", postID, errFind)
	}
	return rows, nil
}
