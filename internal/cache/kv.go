package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key builders for the application's string-keyed JSON blobs.
const (
	preferenceKeyPrefix = "preferences:%d"
	draftKeyPrefix      = "draft:%d:%s"
	// DraftTargetNew is the draft scope used while composing a brand-new post.
	DraftTargetNew = "new"
	// SeedFlagKey marks that the one-time demo dataset has been written.
	SeedFlagKey = "seed:completed"
)

func PreferenceKey(userID uint) string {
	return fmt.Sprintf(preferenceKeyPrefix, userID)
}

// DraftKey scopes a draft to (user, target). target is either a post ID in
// decimal or DraftTargetNew.
func DraftKey(userID uint, target string) string {
	return fmt.Sprintf(draftKeyPrefix, userID, target)
}

// DraftKeyPrefix returns the scan prefix covering all of a user's drafts.
func DraftKeyPrefix(userID uint) string {
	return fmt.Sprintf("draft:%d:", userID)
}

// ErrDecode marks a stored value that could not be unmarshalled. Callers
// that must treat corrupt data as absent match it with errors.Is.
var ErrDecode = errors.New("undecodable cached value")

// GetJSON loads and decodes a JSON value. The second return is false when the
// key does not exist. A decode failure wraps ErrDecode.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, out any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	raw, err := rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("%s: %w: %v", key, ErrDecode, err)
	}
	return true, nil
}

// SetJSON encodes and stores a JSON value without expiry.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any) error {
	if rdb == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return rdb.Set(ctx, key, raw, 0).Err()
}

// Delete removes a key. Missing keys are not an error.
func Delete(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key).Err()
}

// ScanPrefix returns every key starting with prefix.
func ScanPrefix(ctx context.Context, rdb *redis.Client, prefix string) ([]string, error) {
	if rdb == nil {
		return nil, nil
	}
	var keys []string
	iter := rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
