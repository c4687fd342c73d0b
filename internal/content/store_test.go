package content

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"breakroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Function-field stubs so each test overrides only what it needs. Defaults
// succeed and hand out sequential IDs.

type stubPostRepo struct {
	nextID   uint
	createFn func(ctx context.Context, post *models.Post) error
	listFn   func(ctx context.Context) ([]models.Post, error)
	updateFn func(ctx context.Context, post *models.Post) error
	deleteFn func(ctx context.Context, id uint, cascade bool) error
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	if s.createFn != nil {
		return s.createFn(ctx, post)
	}
	s.nextID++
	post.ID = s.nextID
	return nil
}

func (s *stubPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return nil, models.NewNotFoundError("Post", id)
}

func (s *stubPostRepo) List(ctx context.Context) ([]models.Post, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubPostRepo) Update(ctx context.Context, post *models.Post) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, post)
	}
	return nil
}

func (s *stubPostRepo) Delete(ctx context.Context, id uint, cascade bool) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id, cascade)
	}
	return nil
}

type stubLikeRepo struct {
	nextID   uint
	createFn func(ctx context.Context, like *models.Like) error
	deleteFn func(ctx context.Context, userID, postID uint) error
	listFn   func(ctx context.Context) ([]models.Like, error)
}

func (s *stubLikeRepo) List(ctx context.Context) ([]models.Like, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubLikeRepo) Create(ctx context.Context, like *models.Like) error {
	if s.createFn != nil {
		return s.createFn(ctx, like)
	}
	s.nextID++
	like.ID = s.nextID
	return nil
}

func (s *stubLikeRepo) Delete(ctx context.Context, userID, postID uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, userID, postID)
	}
	return nil
}

type stubBookmarkRepo struct {
	nextID uint
	listFn func(ctx context.Context) ([]models.Bookmark, error)
}

func (s *stubBookmarkRepo) List(ctx context.Context) ([]models.Bookmark, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubBookmarkRepo) Create(ctx context.Context, bookmark *models.Bookmark) error {
	s.nextID++
	bookmark.ID = s.nextID
	return nil
}

func (s *stubBookmarkRepo) Delete(ctx context.Context, userID, postID uint) error { return nil }

type stubFlagRepo struct {
	nextID         uint
	updateStatusFn func(ctx context.Context, id uint, status models.FlagStatus) error
	listFn         func(ctx context.Context) ([]models.Flag, error)
}

func (s *stubFlagRepo) List(ctx context.Context) ([]models.Flag, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubFlagRepo) GetByID(ctx context.Context, id uint) (*models.Flag, error) {
	return nil, models.NewNotFoundError("Flag", id)
}

func (s *stubFlagRepo) Create(ctx context.Context, flag *models.Flag) error {
	s.nextID++
	flag.ID = s.nextID
	return nil
}

func (s *stubFlagRepo) UpdateStatus(ctx context.Context, id uint, status models.FlagStatus) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, id, status)
	}
	return nil
}

func newTestStore(cascade bool) (*Store, *stubPostRepo, *stubLikeRepo) {
	postRepo := &stubPostRepo{}
	likeRepo := &stubLikeRepo{}
	return NewStore(postRepo, likeRepo, &stubBookmarkRepo{}, &stubFlagRepo{}, cascade), postRepo, likeRepo
}

func mustCreatePost(t *testing.T, store *Store, userID uint, title string) *models.Post {
	t.Helper()
	post, err := store.CreatePost(context.Background(), userID, models.Post{
		Title: title,
		Body:  "body of " + title,
		Team:  "engineering",
		Mood:  "chaotic",
		Tags:  []string{"golang"},
	})
	require.NoError(t, err)
	return post
}

func TestStore_CreatePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   uint
		post     models.Post
		wantCode string
	}{
		{
			name:   "success",
			userID: 1,
			post:   models.Post{Title: "t", Body: "b", Tags: []string{"golang"}},
		},
		{
			name:     "anonymous rejected",
			userID:   0,
			post:     models.Post{Body: "b", Tags: []string{"golang"}},
			wantCode: "UNAUTHORIZED",
		},
		{
			name:     "empty body rejected",
			userID:   1,
			post:     models.Post{Body: "   ", Tags: []string{"golang"}},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "no tags rejected",
			userID:   1,
			post:     models.Post{Body: "b"},
			wantCode: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, _, _ := newTestStore(false)
			created, err := store.CreatePost(ctx, tt.userID, tt.post)

			if tt.wantCode != "" {
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantCode, appErr.Code)
				assert.Empty(t, store.Snapshot().Posts)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, created.ID)
			assert.Equal(t, tt.userID, created.UserID)
			assert.False(t, created.CreatedAt.IsZero())
			assert.Equal(t, created.CreatedAt, created.UpdatedAt)
			assert.Len(t, store.Snapshot().Posts, 1)
		})
	}
}

func TestStore_CreatePost_RepoFailureKeepsSnapshot(t *testing.T) {
	t.Parallel()
	store, postRepo, _ := newTestStore(false)
	mustCreatePost(t, store, 1, "existing")

	postRepo.createFn = func(ctx context.Context, post *models.Post) error {
		return models.NewInternalError(errors.New("db down"))
	}
	_, err := store.CreatePost(context.Background(), 1, models.Post{Body: "b", Tags: []string{"x"}})
	require.Error(t, err)

	snap := store.Snapshot()
	require.Len(t, snap.Posts, 1)
	assert.Equal(t, "existing", snap.Posts[0].Title)
}

func TestStore_UpdatePost(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(false)
	post := mustCreatePost(t, store, 1, "before")
	originalCreated := post.CreatedAt

	newTitle := "after"
	newTags := []string{"golang", "oncall"}
	updated, err := store.UpdatePost(context.Background(), post.ID, models.PostUpdate{
		Title: &newTitle,
		Tags:  &newTags,
	})
	require.NoError(t, err)

	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "body of before", updated.Body, "unset fields keep their value")
	assert.Equal(t, newTags, updated.Tags)
	assert.Equal(t, post.ID, updated.ID)
	assert.Equal(t, originalCreated, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(originalCreated) || updated.UpdatedAt.Equal(originalCreated))

	_, err = store.UpdatePost(context.Background(), 999, models.PostUpdate{Title: &newTitle})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestStore_DeletePost_NoDanglingRelations(t *testing.T) {
	t.Parallel()

	for _, cascade := range []bool{false, true} {
		cascade := cascade
		name := "soft"
		if cascade {
			name = "cascade"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store, postRepo, _ := newTestStore(cascade)
			ctx := context.Background()

			doomed := mustCreatePost(t, store, 1, "doomed")
			survivor := mustCreatePost(t, store, 1, "survivor")

			_, err := store.ToggleLike(ctx, 2, doomed.ID)
			require.NoError(t, err)
			_, err = store.ToggleBookmark(ctx, 2, doomed.ID)
			require.NoError(t, err)
			_, err = store.CreateFlag(ctx, 2, doomed.ID, "spam")
			require.NoError(t, err)
			_, err = store.ToggleLike(ctx, 2, survivor.ID)
			require.NoError(t, err)

			var gotCascade *bool
			postRepo.deleteFn = func(ctx context.Context, id uint, c bool) error {
				gotCascade = &c
				return nil
			}
			require.NoError(t, store.DeletePost(ctx, doomed.ID))
			require.NotNil(t, gotCascade)
			assert.Equal(t, cascade, *gotCascade)

			snap := store.Snapshot()
			require.Len(t, snap.Posts, 1)
			assert.Equal(t, "survivor", snap.Posts[0].Title)
			require.Len(t, snap.Likes, 1)
			assert.Equal(t, survivor.ID, snap.Likes[0].PostID)
			assert.Empty(t, snap.Bookmarks)
			assert.Empty(t, snap.Flags)
		})
	}
}

func TestStore_ToggleLike(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(false)
	ctx := context.Background()
	post := mustCreatePost(t, store, 1, "likeable")

	liked, err := store.ToggleLike(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, store.IsLikedByUser(2, post.ID))

	// Double toggle restores the original state.
	liked, err = store.ToggleLike(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, store.IsLikedByUser(2, post.ID))
	assert.Empty(t, store.Snapshot().Likes)

	t.Run("anonymous rejected", func(t *testing.T) {
		_, err := store.ToggleLike(ctx, 0, post.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	})

	t.Run("unknown post rejected", func(t *testing.T) {
		_, err := store.ToggleLike(ctx, 2, 999)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestStore_ToggleBookmark(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(false)
	ctx := context.Background()
	post := mustCreatePost(t, store, 1, "saveable")

	saved, err := store.ToggleBookmark(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, store.IsBookmarkedByUser(2, post.ID))
	require.Len(t, store.BookmarksForUser(2), 1)

	saved, err = store.ToggleBookmark(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Empty(t, store.BookmarksForUser(2))
}

func TestStore_Flags(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(false)
	ctx := context.Background()
	post := mustCreatePost(t, store, 1, "questionable")

	flag, err := store.CreateFlag(ctx, 2, post.ID, "  too relatable  ")
	require.NoError(t, err)
	assert.Equal(t, models.FlagStatusPending, flag.Status)
	assert.Equal(t, "too relatable", flag.Reason)

	t.Run("empty reason rejected", func(t *testing.T) {
		_, err := store.CreateFlag(ctx, 2, post.ID, "   ")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("dismiss is terminal", func(t *testing.T) {
		resolved, err := store.UpdateFlagStatus(ctx, flag.ID, models.FlagStatusDismissed)
		require.NoError(t, err)
		assert.Equal(t, models.FlagStatusDismissed, resolved.Status)

		_, err = store.UpdateFlagStatus(ctx, flag.ID, models.FlagStatusReviewed)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("pending is not a target status", func(t *testing.T) {
		_, err := store.UpdateFlagStatus(ctx, flag.ID, models.FlagStatusPending)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := store.UpdateFlagStatus(ctx, 999, models.FlagStatusReviewed)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestStore_LoadFailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()
	store, postRepo, _ := newTestStore(false)
	mustCreatePost(t, store, 1, "loaded")

	postRepo.listFn = func(ctx context.Context) ([]models.Post, error) {
		return nil, models.NewInternalError(errors.New("db down"))
	}
	err := store.LoadPosts(context.Background())
	require.Error(t, err)

	snap := store.Snapshot()
	require.Len(t, snap.Posts, 1)
	assert.Equal(t, "loaded", snap.Posts[0].Title)
}

func TestStore_SubscribeLatestWins(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(false)

	sub := store.Subscribe()
	defer sub.Close()

	// Initial snapshot is delivered immediately.
	first := <-sub.C
	assert.Empty(t, first.Posts)

	// Two writes without a read in between: only the latest snapshot stays.
	mustCreatePost(t, store, 1, "one")
	mustCreatePost(t, store, 1, "two")

	var latest Snapshot
	select {
	case latest = <-sub.C:
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
	assert.Len(t, latest.Posts, 2)

	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected extra snapshot with %d posts", len(extra.Posts))
	default:
	}
}

func TestStore_SnapshotDeduplicatesRelations(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(false)
	post := mustCreatePost(t, store, 1, "raced")

	// Simulate a toggle race leaving two identical rows in memory.
	store.mu.Lock()
	store.likes = append(store.likes,
		models.Like{ID: 1, UserID: 2, PostID: post.ID},
		models.Like{ID: 2, UserID: 2, PostID: post.ID},
	)
	store.mu.Unlock()

	snap := store.Snapshot()
	assert.Len(t, snap.Likes, 1)
}

func TestStore_Vocabulary(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(false)
	ctx := context.Background()

	_, err := store.CreatePost(ctx, 1, models.Post{
		Body: "b", Team: "design", Mood: "smug", Tags: []string{"css", "golang"},
	})
	require.NoError(t, err)
	_, err = store.CreatePost(ctx, 1, models.Post{
		Body: "b", Team: "engineering", Mood: "chaotic", Tags: []string{"golang"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"css", "golang"}, store.Tags())
	assert.Equal(t, []string{"design", "engineering"}, store.Teams())
	assert.Equal(t, []string{"chaotic", "smug"}, store.Moods())
}

func TestStore_RehydrateDropsOrphanedRelations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// The database still holds relation rows for post 2, which a soft
	// delete hid from the post listing before the restart.
	postRepo := &stubPostRepo{listFn: func(ctx context.Context) ([]models.Post, error) {
		return []models.Post{{ID: 1, UserID: 1, Body: "survivor", Tags: []string{"a"}}}, nil
	}}
	likeRepo := &stubLikeRepo{listFn: func(ctx context.Context) ([]models.Like, error) {
		return []models.Like{
			{ID: 1, UserID: 5, PostID: 1},
			{ID: 2, UserID: 5, PostID: 2},
		}, nil
	}}
	bookmarkRepo := &stubBookmarkRepo{listFn: func(ctx context.Context) ([]models.Bookmark, error) {
		return []models.Bookmark{{ID: 1, UserID: 5, PostID: 2}}, nil
	}}
	flagRepo := &stubFlagRepo{listFn: func(ctx context.Context) ([]models.Flag, error) {
		return []models.Flag{{ID: 1, UserID: 5, PostID: 2, Reason: "r", Status: models.FlagStatusPending}}, nil
	}}

	store := NewStore(postRepo, likeRepo, bookmarkRepo, flagRepo, false)
	require.NoError(t, store.LoadAll(ctx))

	snap := store.Snapshot()
	require.Len(t, snap.Posts, 1)
	require.Len(t, snap.Likes, 1)
	assert.EqualValues(t, 1, snap.Likes[0].PostID)
	assert.Empty(t, snap.Bookmarks)
	assert.Empty(t, snap.Flags)

	assert.True(t, store.IsLikedByUser(5, 1))
	assert.False(t, store.IsLikedByUser(5, 2))
	assert.False(t, store.IsBookmarkedByUser(5, 2))
	assert.Empty(t, store.FlagsForPost(2))
}

func TestStore_UpdatePost_RejectsBlankFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _, _ := newTestStore(false)
	post := mustCreatePost(t, store, 1, "intact")

	blank := "   "
	_, err := store.UpdatePost(ctx, post.ID, models.PostUpdate{Body: &blank})
	require.Error(t, err)

	empty := []string{}
	_, err = store.UpdatePost(ctx, post.ID, models.PostUpdate{Tags: &empty})
	require.Error(t, err)

	// The stored post is untouched by either rejection.
	got, err := store.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "body of intact", got.Body)
	assert.Equal(t, []string{"golang"}, got.Tags)
}

func TestStore_SubscribeNeverDeliversStaleAfterNewer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _, _ := newTestStore(false)
	mustCreatePost(t, store, 1, "first")

	// Subscribe while writers race; every subscriber's received sequence
	// must be non-decreasing in post count, so an initial snapshot can
	// never land after a newer published one.
	var writers, readers sync.WaitGroup
	stop := make(chan struct{})

	for w := 0; w < 4; w++ {
		writers.Add(1)
		go func() {
			defer writers.Done()
			for i := 0; i < 25; i++ {
				_, err := store.CreatePost(ctx, 1, models.Post{
					Body: "b", Tags: []string{"t"},
				})
				assert.NoError(t, err)
			}
		}()
	}

	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			sub := store.Subscribe()
			defer sub.Close()

			last := -1
			for {
				select {
				case snap := <-sub.C:
					if len(snap.Posts) < last {
						t.Errorf("stale snapshot: %d posts after %d", len(snap.Posts), last)
						return
					}
					last = len(snap.Posts)
				case <-stop:
					return
				}
			}
		}()
	}

	writers.Wait()
	close(stop)
	readers.Wait()
}
