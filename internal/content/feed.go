package content

import (
	"sort"
	"strings"

	"breakroom/internal/models"
)

// FeedQuery describes the filters and ordering applied to a feed projection.
// Filters combine conjunctively; an empty field means "no constraint".
type FeedQuery struct {
	Search    string
	Team      string
	Mood      string
	Tags      []string
	SavedOnly bool
	LikedOnly bool
	Sort      models.SortOrder
}

// BuildFeed projects the given collections into a filtered, sorted feed for
// one user. It is a pure function: inputs are never mutated and the result
// is freshly allocated. SavedOnly and LikedOnly are no-ops when userID is
// zero, since an anonymous caller has no relations to match.
func BuildFeed(posts []models.Post, likes []models.Like, bookmarks []models.Bookmark, userID uint, q FeedQuery) []models.Post {
	var likedSet, savedSet map[uint]struct{}
	if userID != 0 && q.LikedOnly {
		likedSet = make(map[uint]struct{})
		for _, l := range likes {
			if l.UserID == userID {
				likedSet[l.PostID] = struct{}{}
			}
		}
	}
	if userID != 0 && q.SavedOnly {
		savedSet = make(map[uint]struct{})
		for _, b := range bookmarks {
			if b.UserID == userID {
				savedSet[b.PostID] = struct{}{}
			}
		}
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if q.Team != "" && !strings.EqualFold(p.Team, q.Team) {
			continue
		}
		if q.Mood != "" && !strings.EqualFold(p.Mood, q.Mood) {
			continue
		}
		if len(q.Tags) > 0 && !hasAnyTag(p.Tags, q.Tags) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Body), search) {
			continue
		}
		if likedSet != nil {
			if _, ok := likedSet[p.ID]; !ok {
				continue
			}
		}
		if savedSet != nil {
			if _, ok := savedSet[p.ID]; !ok {
				continue
			}
		}
		out = append(out, p)
	}

	// Stable sort keeps the input order for equal timestamps.
	if q.Sort == models.SortOldest {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}

// hasAnyTag reports whether the post carries at least one of the wanted
// tags (case-insensitive).
func hasAnyTag(postTags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range postTags {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}
