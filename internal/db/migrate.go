package db

import (
	"fmt"

	"github.com/contesthub/contesthub/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every engine model.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: migrate: nil connection")
	}
	return conn.AutoMigrate(
		&models.User{},
		&models.UserFollow{},
		&models.Category{},
		&models.Post{},
		&models.Group{},
		&models.GroupMember{},
		&models.Resource{},
		&models.Interaction{},
		&models.InteractionBinding{},
		&models.Rule{},
		&models.RuleLink{},
		&models.AssociationEdge{},
		&models.CategoryPost{},
		&models.CategoryGroup{},
		&models.PostPost{},
		&models.PostResource{},
	)
}
