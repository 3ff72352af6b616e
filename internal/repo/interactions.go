package repo

import (
	"context"
	"fmt"

	"github.com/contesthub/contesthub/internal/models"
	"gorm.io/gorm"
)

// GormInteractionStore implements InteractionStore on GORM.
type GormInteractionStore struct {
	db *gorm.DB
}

// Get returns the interaction by ID.
func (s *GormInteractionStore) Get(ctx context.Context, id uint64) (*models.Interaction, error) {
	var interaction models.Interaction
	if errFind := s.db.WithContext(ctx).First(&interaction, id).Error; errFind != nil {
		return nil, fmt.Errorf("repo: interaction %d: %w", id, errFind)
	}
	return &interaction, nil
}

// Create inserts a new interaction.
func (s *GormInteractionStore) Create(ctx context.Context, interaction *models.Interaction) error {
	if errCreate := s.db.WithContext(ctx).Create(interaction).Error; errCreate != nil {
		return fmt.Errorf("repo: create interaction: %w", errCreate)
	}
	return nil
}

// ListByAuthor returns every interaction authored by the user.
func (s *GormInteractionStore) ListByAuthor(ctx context.Context, userID uint64) ([]models.Interaction, error) {
	var rows []models.Interaction
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: interactions of user %d: %w", userID, errFind)
	}
	return rows, nil
}

// ListChildren returns the direct replies of an interaction.
func (s *GormInteractionStore) ListChildren(ctx context.Context, parentID uint64) ([]models.Interaction, error) {
	var rows []models.Interaction
	if errFind := s.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: replies of interaction %d: %w", parentID, errFind)
	}
	return rows, nil
}

// DeleteHard removes interaction rows permanently.
func (s *GormInteractionStore) DeleteHard(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	if errDelete := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Interaction{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete interactions: %w", errDelete)
	}
	return nil
}

func (s *GormInteractionStore) targetQuery(ctx context.Context, targetType string, targetID uint64, kind string) *gorm.DB {
	query := s.db.WithContext(ctx).
		Model(&models.Interaction{}).
		Joins("JOIN interaction_bindings ON interaction_bindings.interaction_id = interactions.id").
		Where("interaction_bindings.target_type = ? AND interaction_bindings.target_id = ?", targetType, targetID)
	if kind != "" {
		query = query.Where("interactions.kind = ?", kind)
	}
	return query
}

// ListByTarget returns interactions bound to the target, optionally restricted
// to one kind.
func (s *GormInteractionStore) ListByTarget(ctx context.Context, targetType string, targetID uint64, kind string) ([]models.Interaction, error) {
	var rows []models.Interaction
	if errFind := s.targetQuery(ctx, targetType, targetID, kind).
		Order("interactions.id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: interactions of %s %d: %w", targetType, targetID, errFind)
	}
	return rows, nil
}

// CountByTarget counts interactions of a kind bound to the target.
func (s *GormInteractionStore) CountByTarget(ctx context.Context, targetType string, targetID uint64, kind string) (int64, error) {
	var count int64
	if errCount := s.targetQuery(ctx, targetType, targetID, kind).Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("repo: count interactions of %s %d: %w", targetType, targetID, errCount)
	}
	return count, nil
}

// CreateBinding inserts a binding row.
func (s *GormInteractionStore) CreateBinding(ctx context.Context, binding *models.InteractionBinding) error {
	if errCreate := s.db.WithContext(ctx).Create(binding).Error; errCreate != nil {
		return fmt.Errorf("repo: create interaction binding: %w", errCreate)
	}
	return nil
}

// ListBindingsByTarget returns every binding pointing at the target.
func (s *GormInteractionStore) ListBindingsByTarget(ctx context.Context, targetType string, targetID uint64) ([]models.InteractionBinding, error) {
	var rows []models.InteractionBinding
	if errFind := s.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: bindings of %s %d: %w", targetType, targetID, errFind)
	}
	return rows, nil
}

// ListBindingsByInteraction returns every binding of the interaction.
func (s *GormInteractionStore) ListBindingsByInteraction(ctx context.Context, interactionID uint64) ([]models.InteractionBinding, error) {
	var rows []models.InteractionBinding
	if errFind := s.db.WithContext(ctx).
		Where("interaction_id = ?", interactionID).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: bindings of interaction %d: %w", interactionID, errFind)
	}
	return rows, nil
}

// DeleteBindings removes binding rows permanently.
func (s *GormInteractionStore) DeleteBindings(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	if errDelete := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.InteractionBinding{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete interaction bindings: %w", errDelete)
	}
	return nil
}

// CountBindings counts remaining bindings of the interaction.
func (s *GormInteractionStore) CountBindings(ctx context.Context, interactionID uint64) (int64, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.InteractionBinding{}).
		Where("interaction_id = ?", interactionID).
		Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("repo: count bindings of interaction %d: %w", interactionID, errCount)
	}
	return count, nil
}
