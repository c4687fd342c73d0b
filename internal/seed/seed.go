// Package seed populates a development database with demo users and posts.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"breakroom/internal/cache"
	"breakroom/internal/middleware"
	"breakroom/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the login password for every seeded account.
const DemoPassword = "BreakroomDemo1!"

// Seeder writes demo data and records completion so repeated runs are no-ops.
type Seeder struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewSeeder returns a Seeder over the given database and Redis client.
// rdb may be nil; completion then falls back to a database existence check.
func NewSeeder(db *gorm.DB, rdb *redis.Client) *Seeder {
	return &Seeder{db: db, rdb: rdb}
}

// Completed reports whether seeding already ran. The Redis marker is checked
// first; without Redis any existing user counts as completed.
func (s *Seeder) Completed(ctx context.Context) (bool, error) {
	if s.rdb != nil {
		n, err := s.rdb.Exists(ctx, cache.SeedFlagKey).Result()
		if err == nil && n > 0 {
			return true, nil
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("seed completion check: %w", err)
	}
	return count > 0, nil
}

// Run seeds demo users, posts and reactions. When force is false and a prior
// run completed, nothing happens.
func (s *Seeder) Run(ctx context.Context, force bool) error {
	if !force {
		done, err := s.Completed(ctx)
		if err != nil {
			return err
		}
		if done {
			middleware.Logger.InfoContext(ctx, "seed already completed, skipping")
			return nil
		}
	}

	users, err := s.seedUsers(ctx)
	if err != nil {
		return err
	}

	posts, err := s.seedPosts(ctx, users)
	if err != nil {
		return err
	}

	if err := s.seedReactions(ctx, users, posts); err != nil {
		return err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, cache.SeedFlagKey, time.Now().Format(time.RFC3339), 0).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "could not record seed completion marker",
				slog.Any("error", err))
		}
	}

	middleware.Logger.InfoContext(ctx, "seed completed",
		slog.Int("users", len(users)), slog.Int("posts", len(posts)))
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]models.User, error) {
	// Low cost: these are throwaway demo credentials.
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	users := demoUsers(string(hashed))
	for i := range users {
		if err := s.db.WithContext(ctx).
			Where("email = ?", users[i].Email).
			FirstOrCreate(&users[i]).Error; err != nil {
			return nil, fmt.Errorf("seed user %s: %w", users[i].Email, err)
		}
	}
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []models.User) ([]models.Post, error) {
	posts := make([]models.Post, 0, len(users)*postsPerUser)
	base := time.Now().Add(-72 * time.Hour)

	for ui, user := range users {
		for p := 0; p < postsPerUser; p++ {
			post := randomPost(user)
			// Spread creation times so the feed has a stable order to browse.
			post.CreatedAt = base.Add(time.Duration(ui*postsPerUser+p) * 37 * time.Minute)
			post.UpdatedAt = post.CreatedAt

			if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
				return nil, fmt.Errorf("seed post for %s: %w", user.Email, err)
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *Seeder) seedReactions(ctx context.Context, users []models.User, posts []models.Post) error {
	for _, user := range users {
		for _, post := range posts {
			if post.UserID == user.ID {
				continue
			}
			if shouldLike() {
				like := models.Like{UserID: user.ID, PostID: post.ID}
				if err := s.db.WithContext(ctx).
					Where("user_id = ? AND post_id = ?", user.ID, post.ID).
					FirstOrCreate(&like).Error; err != nil {
					return fmt.Errorf("seed like: %w", err)
				}
			}
			if shouldBookmark() {
				bookmark := models.Bookmark{UserID: user.ID, PostID: post.ID}
				if err := s.db.WithContext(ctx).
					Where("user_id = ? AND post_id = ?", user.ID, post.ID).
					FirstOrCreate(&bookmark).Error; err != nil {
					return fmt.Errorf("seed bookmark: %w", err)
				}
			}
		}
	}

	// One pending flag so the moderation queue is never empty in demos.
	if len(posts) > 0 && len(users) > 1 {
		flag := models.Flag{
			UserID: users[1].ID,
			PostID: posts[0].ID,
			Reason: "seen it three times this week",
			Status: models.FlagStatusPending,
		}
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND post_id = ?", flag.UserID, flag.PostID).
			FirstOrCreate(&flag).Error; err != nil {
			return fmt.Errorf("seed flag: %w", err)
		}
	}
	return nil
}
