// Package service holds the application services layered between handlers
// and storage.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"breakroom/internal/cache"
	"breakroom/internal/middleware"
	"breakroom/internal/models"

	"github.com/redis/go-redis/v9"
)

// DraftService persists in-progress post compositions per user in Redis.
// Drafts are scoped to a target: a post ID while editing, or "new" while
// composing. A corrupt stored draft is treated as absent, never as an error.
type DraftService struct {
	rdb *redis.Client
}

// NewDraftService returns a new DraftService over the given Redis client.
func NewDraftService(rdb *redis.Client) *DraftService {
	return &DraftService{rdb: rdb}
}

// Save overwrites the draft for (userID, target). SavedAt is stamped when
// the caller left it zero.
func (s *DraftService) Save(ctx context.Context, userID uint, target string, draft models.Draft) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if draft.SavedAt.IsZero() {
		draft.SavedAt = time.Now()
	}
	if err := cache.SetJSON(ctx, s.rdb, cache.DraftKey(userID, target), draft); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Get returns the draft for (userID, target), or nil when none is stored.
func (s *DraftService) Get(ctx context.Context, userID uint, target string) (*models.Draft, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	var draft models.Draft
	found, err := cache.GetJSON(ctx, s.rdb, cache.DraftKey(userID, target), &draft)
	if err != nil {
		if isDecodeError(err) {
			middleware.Logger.DebugContext(ctx, "discarding undecodable draft",
				slog.Any("user_id", userID), slog.String("target", target))
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	if !found {
		return nil, nil
	}
	return &draft, nil
}

// Clear removes the draft for (userID, target). Clearing an absent draft is
// a no-op.
func (s *DraftService) Clear(ctx context.Context, userID uint, target string) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if err := cache.Delete(ctx, s.rdb, cache.DraftKey(userID, target)); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListAll returns every draft stored for the user, keyed by target.
// Undecodable entries are skipped.
func (s *DraftService) ListAll(ctx context.Context, userID uint) (map[string]models.Draft, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	prefix := cache.DraftKeyPrefix(userID)
	keys, err := cache.ScanPrefix(ctx, s.rdb, prefix)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	drafts := make(map[string]models.Draft, len(keys))
	for _, key := range keys {
		var draft models.Draft
		found, err := cache.GetJSON(ctx, s.rdb, key, &draft)
		if err != nil || !found {
			if err != nil {
				middleware.Logger.DebugContext(ctx, "skipping undecodable draft",
					slog.String("key", key))
			}
			continue
		}
		drafts[strings.TrimPrefix(key, prefix)] = draft
	}
	return drafts, nil
}

func isDecodeError(err error) bool {
	return errors.Is(err, cache.ErrDecode)
}
