package service

import (
	"context"
	"log/slog"

	"breakroom/internal/cache"
	"breakroom/internal/middleware"
	"breakroom/internal/models"

	"github.com/redis/go-redis/v9"
)

// PreferenceService stores per-user feed preferences in Redis. Reads always
// yield usable preferences: a missing or corrupt record falls back to the
// defaults.
type PreferenceService struct {
	rdb *redis.Client
}

// NewPreferenceService returns a new PreferenceService over the given Redis
// client.
func NewPreferenceService(rdb *redis.Client) *PreferenceService {
	return &PreferenceService{rdb: rdb}
}

// Get returns the user's stored preferences, or the defaults when nothing
// usable is stored.
func (s *PreferenceService) Get(ctx context.Context, userID uint) (models.Preference, error) {
	if userID == 0 {
		return models.Preference{}, models.NewUnauthorizedError("Authentication required")
	}

	pref := models.DefaultPreference()
	found, err := cache.GetJSON(ctx, s.rdb, cache.PreferenceKey(userID), &pref)
	if err != nil {
		if isDecodeError(err) {
			middleware.Logger.DebugContext(ctx, "discarding undecodable preferences",
				slog.Any("user_id", userID))
			return models.DefaultPreference(), nil
		}
		return models.Preference{}, models.NewInternalError(err)
	}
	if !found {
		return models.DefaultPreference(), nil
	}
	if pref.SortOrder != models.SortNewest && pref.SortOrder != models.SortOldest {
		pref.SortOrder = models.SortNewest
	}
	return pref, nil
}

// Update merges the explicit fields of upd over the stored preferences and
// persists the result.
func (s *PreferenceService) Update(ctx context.Context, userID uint, upd models.PreferenceUpdate) (models.Preference, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return models.Preference{}, err
	}

	merged := upd.Apply(current)
	if merged.SortOrder != models.SortNewest && merged.SortOrder != models.SortOldest {
		return models.Preference{}, models.NewValidationError("Sort order must be newest or oldest")
	}

	if err := cache.SetJSON(ctx, s.rdb, cache.PreferenceKey(userID), merged); err != nil {
		return models.Preference{}, models.NewInternalError(err)
	}
	return merged, nil
}

// Reset deletes the stored preferences so the next Get yields defaults.
func (s *PreferenceService) Reset(ctx context.Context, userID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if err := cache.Delete(ctx, s.rdb, cache.PreferenceKey(userID)); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
