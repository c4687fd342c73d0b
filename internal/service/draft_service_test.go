package service

import (
	"context"
	"testing"
	"time"

	"breakroom/internal/cache"
	"breakroom/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func TestDraftService_RoundTrip(t *testing.T) {
	rdb, _ := setupRedis(t)
	svc := NewDraftService(rdb)
	ctx := context.Background()

	draft := models.Draft{
		Title: "wip meme",
		Body:  "the punchline is ||pending||",
		Team:  "engineering",
		Tags:  []string{"golang"},
		Mood:  "chaotic",
	}
	require.NoError(t, svc.Save(ctx, 7, cache.DraftTargetNew, draft))

	got, err := svc.Get(ctx, 7, cache.DraftTargetNew)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "wip meme", got.Title)
	assert.False(t, got.SavedAt.IsZero(), "SavedAt stamped on save")

	t.Run("save overwrites", func(t *testing.T) {
		draft.Title = "better meme"
		require.NoError(t, svc.Save(ctx, 7, cache.DraftTargetNew, draft))
		got, err := svc.Get(ctx, 7, cache.DraftTargetNew)
		require.NoError(t, err)
		assert.Equal(t, "better meme", got.Title)
	})

	t.Run("explicit SavedAt preserved", func(t *testing.T) {
		ts := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
		require.NoError(t, svc.Save(ctx, 7, "42", models.Draft{Body: "edit", SavedAt: ts}))
		got, err := svc.Get(ctx, 7, "42")
		require.NoError(t, err)
		assert.True(t, ts.Equal(got.SavedAt))
	})

	t.Run("clear removes", func(t *testing.T) {
		require.NoError(t, svc.Clear(ctx, 7, cache.DraftTargetNew))
		got, err := svc.Get(ctx, 7, cache.DraftTargetNew)
		require.NoError(t, err)
		assert.Nil(t, got)

		// Clearing again is a no-op.
		require.NoError(t, svc.Clear(ctx, 7, cache.DraftTargetNew))
	})
}

func TestDraftService_GetMissingReturnsNil(t *testing.T) {
	rdb, _ := setupRedis(t)
	svc := NewDraftService(rdb)

	got, err := svc.Get(context.Background(), 7, cache.DraftTargetNew)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDraftService_CorruptEntryTreatedAsAbsent(t *testing.T) {
	rdb, mr := setupRedis(t)
	svc := NewDraftService(rdb)
	ctx := context.Background()

	require.NoError(t, mr.Set(cache.DraftKey(7, cache.DraftTargetNew), "{not json"))

	got, err := svc.Get(ctx, 7, cache.DraftTargetNew)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDraftService_ListAll(t *testing.T) {
	rdb, mr := setupRedis(t)
	svc := NewDraftService(rdb)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, 7, cache.DraftTargetNew, models.Draft{Body: "new one"}))
	require.NoError(t, svc.Save(ctx, 7, "12", models.Draft{Body: "editing twelve"}))
	require.NoError(t, svc.Save(ctx, 8, cache.DraftTargetNew, models.Draft{Body: "someone else"}))
	require.NoError(t, mr.Set(cache.DraftKey(7, "99"), "corrupt"))

	drafts, err := svc.ListAll(ctx, 7)
	require.NoError(t, err)
	require.Len(t, drafts, 2, "other users and corrupt entries excluded")
	assert.Equal(t, "new one", drafts[cache.DraftTargetNew].Body)
	assert.Equal(t, "editing twelve", drafts["12"].Body)
}

func TestDraftService_RequiresUser(t *testing.T) {
	rdb, _ := setupRedis(t)
	svc := NewDraftService(rdb)
	ctx := context.Background()

	var appErr *models.AppError
	require.ErrorAs(t, svc.Save(ctx, 0, cache.DraftTargetNew, models.Draft{}), &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	_, err := svc.Get(ctx, 0, cache.DraftTargetNew)
	require.ErrorAs(t, err, &appErr)

	_, err = svc.ListAll(ctx, 0)
	require.ErrorAs(t, err, &appErr)

	require.ErrorAs(t, svc.Clear(ctx, 0, cache.DraftTargetNew), &appErr)
}
