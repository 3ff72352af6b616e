package repo

import (
	"context"
	"fmt"

	"github.com/contesthub/contesthub/internal/models"
	"gorm.io/gorm"
)

// GormRuleStore implements RuleStore on GORM.
type GormRuleStore struct {
	db *gorm.DB
}

// Get returns the rule by ID.
func (s *GormRuleStore) Get(ctx context.Context, id uint64) (*models.Rule, error) {
	var rule models.Rule
	if errFind := s.db.WithContext(ctx).First(&rule, id).Error; errFind != nil {
		return nil, fmt.Errorf("repo: rule %d: %w", id, errFind)
	}
	return &rule, nil
}

// LinkedRules returns the category's rules ordered by link priority ascending.
func (s *GormRuleStore) LinkedRules(ctx context.Context, categoryID uint64) ([]models.Rule, error) {
	var links []models.RuleLink
	if errFind := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("priority ASC, id ASC").
		Find(&links).Error; errFind != nil {
		return nil, fmt.Errorf("repo: rule links for category %d: %w", categoryID, errFind)
	}
	if len(links) == 0 {
		return nil, nil
	}

	ids := make([]uint64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.RuleID)
	}
	var rows []models.Rule
	if errFind := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: rules for category %d: %w", categoryID, errFind)
	}

	byID := make(map[uint64]models.Rule, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]models.Rule, 0, len(links))
	for _, link := range links {
		if rule, ok := byID[link.RuleID]; ok {
			ordered = append(ordered, rule)
		}
	}
	return ordered, nil
}

// ListAll returns all non-deleted rules.
func (s *GormRuleStore) ListAll(ctx context.Context) ([]models.Rule, error) {
	var rows []models.Rule
	if errFind := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("repo: list rules: %w", errFind)
	}
	return rows, nil
}

// CreateLink attaches a rule to a category.
func (s *GormRuleStore) CreateLink(ctx context.Context, link *models.RuleLink) error {
	if errCreate := s.db.WithContext(ctx).Create(link).Error; errCreate != nil {
		return fmt.Errorf("repo: create rule link: %w", errCreate)
	}
	return nil
}

// DeleteLinksByRule removes every link of the rule.
func (s *GormRuleStore) DeleteLinksByRule(ctx context.Context, ruleID uint64) error {
	if errDelete := s.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Delete(&models.RuleLink{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete links of rule %d: %w", ruleID, errDelete)
	}
	return nil
}

// DeleteLinksByCategory removes every link of the category.
func (s *GormRuleStore) DeleteLinksByCategory(ctx context.Context, categoryID uint64) error {
	if errDelete := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Delete(&models.RuleLink{}).Error; errDelete != nil {
		return fmt.Errorf("repo: delete links of category %d: %w", categoryID, errDelete)
	}
	return nil
}

// SoftDelete stamps the rule deleted.
func (s *GormRuleStore) SoftDelete(ctx context.Context, id uint64) error {
	if errDelete := s.db.WithContext(ctx).Delete(&models.Rule{}, id).Error; errDelete != nil {
		return fmt.Errorf("repo: delete rule %d: %w", id, errDelete)
	}
	return nil
}
