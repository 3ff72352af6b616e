package repo

import "gorm.io/gorm"

// NewStores builds the GORM-backed store set on the given connection. Pass a
// transaction handle to scope every store to that transaction, which is how
// the cascade orchestrator keeps its deletion sequence atomic.
func NewStores(conn *gorm.DB) *Stores {
	return &Stores{
		Rules:        &GormRuleStore{db: conn},
		Categories:   &GormCategoryStore{db: conn},
		Posts:        &GormPostStore{db: conn},
		Groups:       &GormGroupStore{db: conn},
		Users:        &GormUserStore{db: conn},
		Resources:    &GormResourceStore{db: conn},
		Interactions: &GormInteractionStore{db: conn},
		Edges:        &GormEdgeStore{db: conn},
		Relations:    &GormRelationStore{db: conn},
	}
}
