package rules

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/contesthub/contesthub/internal/db"
	"github.com/contesthub/contesthub/internal/models"
	"github.com/contesthub/contesthub/internal/repo"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestStores(t *testing.T) (*gorm.DB, *repo.Stores) {
	t.Helper()
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn, repo.NewStores(conn)
}

func createCategory(t *testing.T, conn *gorm.DB, status string) *models.Category {
	t.Helper()
	category := &models.Category{Title: "Autumn Challenge", Status: status}
	if errCreate := conn.Create(category).Error; errCreate != nil {
		t.Fatalf("create category: %v", errCreate)
	}
	return category
}

func createUser(t *testing.T, conn *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Nickname: username}
	if errCreate := conn.Create(user).Error; errCreate != nil {
		t.Fatalf("create user %s: %v", username, errCreate)
	}
	return user
}

func createGroup(t *testing.T, conn *gorm.DB, categoryID, leaderID uint64, acceptedMembers ...uint64) *models.Group {
	t.Helper()
	group := &models.Group{Name: "team", LeaderID: leaderID}
	if errCreate := conn.Create(group).Error; errCreate != nil {
		t.Fatalf("create group: %v", errCreate)
	}
	if categoryID != 0 {
		if errLink := conn.Create(&models.CategoryGroup{CategoryID: categoryID, GroupID: group.ID}).Error; errLink != nil {
			t.Fatalf("register group: %v", errLink)
		}
	}
	for _, userID := range acceptedMembers {
		member := &models.GroupMember{GroupID: group.ID, UserID: userID, Status: models.MemberStatusAccepted}
		if errMember := conn.Create(member).Error; errMember != nil {
			t.Fatalf("create member: %v", errMember)
		}
	}
	return group
}

func createEntry(t *testing.T, conn *gorm.DB, categoryID, authorID uint64, metrics map[string]any) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID: authorID,
		Kind:     models.PostKindEntry,
		Status:   models.PostStatusPublished,
		Title:    "entry",
		Metrics:  datatypes.JSONMap(metrics),
	}
	if errCreate := conn.Create(post).Error; errCreate != nil {
		t.Fatalf("create post: %v", errCreate)
	}
	if errLink := conn.Create(&models.CategoryPost{CategoryID: categoryID, PostID: post.ID}).Error; errLink != nil {
		t.Fatalf("link post: %v", errLink)
	}
	return post
}

func attachResource(t *testing.T, conn *gorm.DB, postID uint64, format string) *models.Resource {
	t.Helper()
	resource := &models.Resource{UploaderID: 1, FileName: "file." + format, Format: format}
	if errCreate := conn.Create(resource).Error; errCreate != nil {
		t.Fatalf("create resource: %v", errCreate)
	}
	if errLink := conn.Create(&models.PostResource{PostID: postID, ResourceID: resource.ID}).Error; errLink != nil {
		t.Fatalf("link resource: %v", errLink)
	}
	return resource
}

func linkRule(t *testing.T, conn *gorm.DB, categoryID uint64, rule *models.Rule, priority int) *models.Rule {
	t.Helper()
	if errCreate := conn.Create(rule).Error; errCreate != nil {
		t.Fatalf("create rule: %v", errCreate)
	}
	link := &models.RuleLink{CategoryID: categoryID, RuleID: rule.ID, Priority: priority}
	if errLink := conn.Create(link).Error; errLink != nil {
		t.Fatalf("link rule: %v", errLink)
	}
	return rule
}

func checksJSON(t *testing.T, checks []map[string]any) datatypes.JSON {
	t.Helper()
	encoded, errEncode := json.Marshal(checks)
	if errEncode != nil {
		t.Fatalf("encode checks: %v", errEncode)
	}
	return datatypes.JSON(encoded)
}

func reloadPost(t *testing.T, conn *gorm.DB, id uint64) *models.Post {
	t.Helper()
	var post models.Post
	if errFind := conn.First(&post, id).Error; errFind != nil {
		t.Fatalf("reload post %d: %v", id, errFind)
	}
	return &post
}

func intPtr(v int) *int { return &v }

var testCtx = context.Background()
