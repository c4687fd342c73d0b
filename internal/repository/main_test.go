package repository

import (
	"testing"

	"breakroom/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Bookmark{},
		&models.Flag{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:    email,
		Password: "hashed-password",
		Name:     "Test User",
		Team:     "engineering",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID: userID,
		Team:   "engineering",
		Tags:   []string{"golang"},
		Mood:   "chaotic",
		Title:  title,
		Body:   "a perfectly normal meme body",
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
