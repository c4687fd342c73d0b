// Package content owns the in-memory read model for posts, likes, bookmarks
// and flags. The Store is the sole mutator: every write persists through the
// repositories first, then publishes a full immutable snapshot to
// subscribers. Readers always see a complete, consistent view.
package content

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"breakroom/internal/middleware"
	"breakroom/internal/models"
	"breakroom/internal/repository"
)

// Snapshot is an immutable view of every collection at one point in time.
// Slices are copies; subscribers may read them freely.
type Snapshot struct {
	Posts     []models.Post
	Likes     []models.Like
	Bookmarks []models.Bookmark
	Flags     []models.Flag
}

// Subscription receives snapshots from a Store. The channel has capacity one
// and keeps only the latest snapshot: a slow consumer never blocks the store
// and never sees a partial update.
type Subscription struct {
	C      chan Snapshot
	cancel func()
}

// Close detaches the subscription from the store.
func (s *Subscription) Close() {
	s.cancel()
}

// Store guards the four content collections behind one mutex and writes
// through to the repositories before mutating memory.
type Store struct {
	mu        sync.RWMutex
	posts     []models.Post
	likes     []models.Like
	bookmarks []models.Bookmark
	flags     []models.Flag

	postRepo     repository.PostRepository
	likeRepo     repository.LikeRepository
	bookmarkRepo repository.BookmarkRepository
	flagRepo     repository.FlagRepository

	// cascadeDelete selects the physical delete variant for posts. When
	// false a delete soft-hides the post and its relations stay in the
	// database, though neither appears in published snapshots.
	cascadeDelete bool

	subMu sync.Mutex
	subs  map[*Subscription]struct{}
}

// NewStore builds an empty store over the given repositories. Call the Load
// methods to hydrate it before serving reads.
func NewStore(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	bookmarks repository.BookmarkRepository,
	flags repository.FlagRepository,
	cascadeDelete bool,
) *Store {
	return &Store{
		postRepo:      posts,
		likeRepo:      likes,
		bookmarkRepo:  bookmarks,
		flagRepo:      flags,
		cascadeDelete: cascadeDelete,
		subs:          make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a snapshot consumer and immediately delivers the
// current snapshot. Registration and the initial delivery happen under the
// store lock, so no publish can slip in between and be overwritten by an
// older snapshot.
func (s *Store) Subscribe() *Subscription {
	sub := &Subscription{C: make(chan Snapshot, 1)}
	sub.cancel = func() {
		s.subMu.Lock()
		delete(s.subs, sub)
		s.subMu.Unlock()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.subMu.Lock()
	s.subs[sub] = struct{}{}
	s.subMu.Unlock()

	// Channel has capacity one and is empty; this never blocks.
	sub.C <- s.snapshotLocked()
	return sub
}

// Snapshot returns the current immutable view.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the collections. Likes and bookmarks are
// de-duplicated by (postID, userID) so a racing double-toggle can never
// surface two relations for one user in a published view.
func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Posts: append([]models.Post(nil), s.posts...),
		Flags: append([]models.Flag(nil), s.flags...),
	}

	type pair struct{ post, user uint }
	seenLikes := make(map[pair]struct{}, len(s.likes))
	for _, l := range s.likes {
		k := pair{l.PostID, l.UserID}
		if _, dup := seenLikes[k]; dup {
			continue
		}
		seenLikes[k] = struct{}{}
		snap.Likes = append(snap.Likes, l)
	}

	seenBookmarks := make(map[pair]struct{}, len(s.bookmarks))
	for _, b := range s.bookmarks {
		k := pair{b.PostID, b.UserID}
		if _, dup := seenBookmarks[k]; dup {
			continue
		}
		seenBookmarks[k] = struct{}{}
		snap.Bookmarks = append(snap.Bookmarks, b)
	}

	return snap
}

// publishLocked pushes the current snapshot to every subscriber, replacing
// any undelivered one. Caller holds s.mu (read or write).
func (s *Store) publishLocked(collection string) {
	snap := s.snapshotLocked()
	middleware.SnapshotPublishes.WithLabelValues(collection).Inc()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for sub := range s.subs {
		select {
		case sub.C <- snap:
		default:
			// Drop the stale snapshot, then retry once. A concurrent
			// receive between the two selects just means the consumer
			// already drained the channel.
			select {
			case <-sub.C:
			default:
			}
			select {
			case sub.C <- snap:
			default:
			}
		}
	}
}

// LoadPosts replaces the posts collection from the repository. On failure
// the previous snapshot is kept and the error returned.
func (s *Store) LoadPosts(ctx context.Context) error {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = posts
	s.publishLocked("posts")
	return nil
}

// LoadLikes replaces the likes collection from the repository. Rows whose
// post is not in the loaded posts (soft-deleted posts keep their relation
// rows in the database) are dropped so no snapshot resurfaces them.
func (s *Store) LoadLikes(ctx context.Context) error {
	likes, err := s.likeRepo.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	known := s.knownPostIDsLocked()
	kept := make([]models.Like, 0, len(likes))
	for _, like := range likes {
		if _, ok := known[like.PostID]; ok {
			kept = append(kept, like)
		}
	}
	s.likes = kept
	s.publishLocked("likes")
	return nil
}

// LoadBookmarks replaces the bookmarks collection from the repository,
// dropping rows that reference posts absent from the loaded set.
func (s *Store) LoadBookmarks(ctx context.Context) error {
	bookmarks, err := s.bookmarkRepo.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	known := s.knownPostIDsLocked()
	kept := make([]models.Bookmark, 0, len(bookmarks))
	for _, bookmark := range bookmarks {
		if _, ok := known[bookmark.PostID]; ok {
			kept = append(kept, bookmark)
		}
	}
	s.bookmarks = kept
	s.publishLocked("bookmarks")
	return nil
}

// LoadFlags replaces the flags collection from the repository, dropping rows
// that reference posts absent from the loaded set.
func (s *Store) LoadFlags(ctx context.Context) error {
	flags, err := s.flagRepo.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	known := s.knownPostIDsLocked()
	kept := make([]models.Flag, 0, len(flags))
	for _, flag := range flags {
		if _, ok := known[flag.PostID]; ok {
			kept = append(kept, flag)
		}
	}
	s.flags = kept
	s.publishLocked("flags")
	return nil
}

// knownPostIDsLocked returns the IDs of the currently loaded posts.
func (s *Store) knownPostIDsLocked() map[uint]struct{} {
	ids := make(map[uint]struct{}, len(s.posts))
	for _, p := range s.posts {
		ids[p.ID] = struct{}{}
	}
	return ids
}

// LoadAll hydrates every collection. Posts load first so the relation loads
// can filter against them. The first failure aborts the sequence.
func (s *Store) LoadAll(ctx context.Context) error {
	if err := s.LoadPosts(ctx); err != nil {
		return err
	}
	if err := s.LoadLikes(ctx); err != nil {
		return err
	}
	if err := s.LoadBookmarks(ctx); err != nil {
		return err
	}
	return s.LoadFlags(ctx)
}

// CreatePost validates, persists and publishes a new post authored by the
// given user. The repository assigns the ID; CreatedAt and UpdatedAt are
// stamped here.
func (s *Store) CreatePost(ctx context.Context, userID uint, post models.Post) (*models.Post, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if strings.TrimSpace(post.Body) == "" {
		return nil, models.NewValidationError("Post body is required")
	}
	if len(post.Tags) == 0 {
		return nil, models.NewValidationError("At least one tag is required")
	}

	now := time.Now()
	post.ID = 0
	post.UserID = userID
	post.CreatedAt = now
	post.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.postRepo.Create(ctx, &post); err != nil {
		return nil, err
	}
	s.posts = append([]models.Post{post}, s.posts...)
	s.publishLocked("posts")

	created := post
	return &created, nil
}

// UpdatePost merges the explicit fields of upd over the stored post. ID and
// CreatedAt never change; UpdatedAt is forced to now.
func (s *Store) UpdatePost(ctx context.Context, id uint, upd models.PostUpdate) (*models.Post, error) {
	if upd.Body != nil && strings.TrimSpace(*upd.Body) == "" {
		return nil, models.NewValidationError("Post body is required")
	}
	if upd.Tags != nil && len(*upd.Tags) == 0 {
		return nil, models.NewValidationError("At least one tag is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.postIndexLocked(id)
	if idx < 0 {
		return nil, models.NewNotFoundError("Post", id)
	}

	merged := s.posts[idx]
	if upd.Title != nil {
		merged.Title = *upd.Title
	}
	if upd.Body != nil {
		merged.Body = *upd.Body
	}
	if upd.Team != nil {
		merged.Team = *upd.Team
	}
	if upd.Mood != nil {
		merged.Mood = *upd.Mood
	}
	if upd.Tags != nil {
		merged.Tags = append([]string(nil), (*upd.Tags)...)
	}
	merged.UpdatedAt = time.Now()

	if err := s.postRepo.Update(ctx, &merged); err != nil {
		return nil, err
	}
	s.posts[idx] = merged
	s.publishLocked("posts")

	updated := merged
	return &updated, nil
}

// DeletePost removes a post. In soft mode the post is hidden; in cascade
// mode the post and every relation referencing it are removed in one
// transaction. Either way the published snapshot contains neither the post
// nor any relation pointing at it.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.postIndexLocked(id)
	if idx < 0 {
		return models.NewNotFoundError("Post", id)
	}

	if err := s.postRepo.Delete(ctx, id, s.cascadeDelete); err != nil {
		return err
	}

	s.posts = append(s.posts[:idx], s.posts[idx+1:]...)
	s.likes = filterLikes(s.likes, id)
	s.bookmarks = filterBookmarks(s.bookmarks, id)
	s.flags = filterFlags(s.flags, id)
	s.publishLocked("posts")
	return nil
}

// ToggleLike flips the like relation for (userID, postID) and returns the
// new state. The whole read-modify-write runs under the store mutex.
func (s *Store) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	if userID == 0 {
		return false, models.NewUnauthorizedError("Authentication required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.postIndexLocked(postID) < 0 {
		return false, models.NewNotFoundError("Post", postID)
	}

	for i, l := range s.likes {
		if l.UserID == userID && l.PostID == postID {
			if err := s.likeRepo.Delete(ctx, userID, postID); err != nil {
				return true, err
			}
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			s.publishLocked("likes")
			return false, nil
		}
	}

	like := models.Like{UserID: userID, PostID: postID, CreatedAt: time.Now()}
	if err := s.likeRepo.Create(ctx, &like); err != nil {
		return false, err
	}
	s.likes = append(s.likes, like)
	s.publishLocked("likes")
	return true, nil
}

// ToggleBookmark flips the bookmark relation for (userID, postID) and
// returns the new state.
func (s *Store) ToggleBookmark(ctx context.Context, userID, postID uint) (bool, error) {
	if userID == 0 {
		return false, models.NewUnauthorizedError("Authentication required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.postIndexLocked(postID) < 0 {
		return false, models.NewNotFoundError("Post", postID)
	}

	for i, b := range s.bookmarks {
		if b.UserID == userID && b.PostID == postID {
			if err := s.bookmarkRepo.Delete(ctx, userID, postID); err != nil {
				return true, err
			}
			s.bookmarks = append(s.bookmarks[:i], s.bookmarks[i+1:]...)
			s.publishLocked("bookmarks")
			return false, nil
		}
	}

	bookmark := models.Bookmark{UserID: userID, PostID: postID, CreatedAt: time.Now()}
	if err := s.bookmarkRepo.Create(ctx, &bookmark); err != nil {
		return false, err
	}
	s.bookmarks = append(s.bookmarks, bookmark)
	s.publishLocked("bookmarks")
	return true, nil
}

// CreateFlag records a moderation report. Status always starts pending.
func (s *Store) CreateFlag(ctx context.Context, userID, postID uint, reason string) (*models.Flag, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, models.NewValidationError("Flag reason is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.postIndexLocked(postID) < 0 {
		return nil, models.NewNotFoundError("Post", postID)
	}

	flag := models.Flag{
		PostID:    postID,
		UserID:    userID,
		Reason:    strings.TrimSpace(reason),
		Status:    models.FlagStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.flagRepo.Create(ctx, &flag); err != nil {
		return nil, err
	}
	s.flags = append(s.flags, flag)
	s.publishLocked("flags")

	created := flag
	return &created, nil
}

// UpdateFlagStatus resolves a pending flag. Reviewed and dismissed are
// terminal states; transitions out of them are rejected.
func (s *Store) UpdateFlagStatus(ctx context.Context, id uint, status models.FlagStatus) (*models.Flag, error) {
	if !status.Valid() || status == models.FlagStatusPending {
		return nil, models.NewValidationError("Flag status must be reviewed or dismissed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, f := range s.flags {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, models.NewNotFoundError("Flag", id)
	}
	if s.flags[idx].Status.Terminal() {
		return nil, models.NewValidationError("Flag has already been resolved")
	}

	if err := s.flagRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.flags[idx].Status = status
	s.publishLocked("flags")

	updated := s.flags[idx]
	return &updated, nil
}

// GetPost returns a copy of the post with the given ID.
func (s *Store) GetPost(id uint) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.postIndexLocked(id)
	if idx < 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	post := s.posts[idx]
	return &post, nil
}

// LikesForPost returns the likes referencing the given post.
func (s *Store) LikesForPost(postID uint) []models.Like {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Like
	for _, l := range s.likes {
		if l.PostID == postID {
			out = append(out, l)
		}
	}
	return out
}

// IsLikedByUser reports whether the user currently likes the post.
func (s *Store) IsLikedByUser(userID, postID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.likes {
		if l.UserID == userID && l.PostID == postID {
			return true
		}
	}
	return false
}

// BookmarksForUser returns the user's bookmarks.
func (s *Store) BookmarksForUser(userID uint) []models.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Bookmark
	for _, b := range s.bookmarks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

// IsBookmarkedByUser reports whether the user has bookmarked the post.
func (s *Store) IsBookmarkedByUser(userID, postID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookmarks {
		if b.UserID == userID && b.PostID == postID {
			return true
		}
	}
	return false
}

// FlagsForPost returns the flags referencing the given post.
func (s *Store) FlagsForPost(postID uint) []models.Flag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Flag
	for _, f := range s.flags {
		if f.PostID == postID {
			out = append(out, f)
		}
	}
	return out
}

// Tags returns the distinct tags across loaded posts, sorted.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, p := range s.posts {
		for _, t := range p.Tags {
			seen[t] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Teams returns the distinct teams across loaded posts, sorted.
func (s *Store) Teams() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, p := range s.posts {
		if p.Team != "" {
			seen[p.Team] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Moods returns the distinct moods across loaded posts, sorted.
func (s *Store) Moods() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, p := range s.posts {
		if p.Mood != "" {
			seen[p.Mood] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func (s *Store) postIndexLocked(id uint) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func filterLikes(in []models.Like, postID uint) []models.Like {
	out := in[:0]
	for _, l := range in {
		if l.PostID != postID {
			out = append(out, l)
		}
	}
	return out
}

func filterBookmarks(in []models.Bookmark, postID uint) []models.Bookmark {
	out := in[:0]
	for _, b := range in {
		if b.PostID != postID {
			out = append(out, b)
		}
	}
	return out
}

func filterFlags(in []models.Flag, postID uint) []models.Flag {
	out := in[:0]
	for _, f := range in {
		if f.PostID != postID {
			out = append(out, f)
		}
	}
	return out
}
