package server

import (
	"strings"

	"breakroom/internal/content"
	"breakroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeed returns the filtered, sorted feed. Query parameters override the
// caller's stored preferences; anonymous callers get query parameters only.
//
// Supported parameters: q, team, mood, tags (comma separated), saved,
// liked, sort (newest|oldest), reveal_spoilers.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	viewerID, authed := s.optionalUserID(c)

	query := s.feedQueryFromRequest(c, viewerID, authed)

	snap := s.store.Snapshot()
	posts := content.BuildFeed(snap.Posts, snap.Likes, snap.Bookmarks, viewerID, query)

	reveal := revealSpoilers(c)
	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, s.viewPost(post, viewerID, reveal))
	}
	return c.JSON(views)
}

// feedQueryFromRequest merges stored preferences with explicit query
// parameters. A parameter present in the URL always wins, including empty
// values like team= which clear the stored filter.
func (s *Server) feedQueryFromRequest(c *fiber.Ctx, viewerID uint, authed bool) content.FeedQuery {
	var query content.FeedQuery

	if authed {
		pref, err := s.prefs.Get(c.UserContext(), viewerID)
		if err == nil {
			query = content.FeedQuery{
				Search:    pref.SearchQuery,
				Team:      pref.Team,
				Mood:      pref.Mood,
				Tags:      pref.Tags,
				SavedOnly: pref.SavedOnly,
				Sort:      pref.SortOrder,
			}
		}
	}
	if query.Sort == "" {
		query.Sort = models.SortNewest
	}

	args := c.Queries()
	if v, ok := args["q"]; ok {
		query.Search = v
	}
	if v, ok := args["team"]; ok {
		query.Team = v
	}
	if v, ok := args["mood"]; ok {
		query.Mood = v
	}
	if v, ok := args["tags"]; ok {
		query.Tags = splitTags(v)
	}
	if _, ok := args["saved"]; ok {
		query.SavedOnly = c.QueryBool("saved", false)
	}
	if _, ok := args["liked"]; ok {
		query.LikedOnly = c.QueryBool("liked", false)
	}
	if v, ok := args["sort"]; ok && (v == string(models.SortNewest) || v == string(models.SortOldest)) {
		query.Sort = models.SortOrder(v)
	}

	return query
}

// splitTags parses a comma separated tag list, dropping blanks.
func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// GetTags returns the distinct tags across all posts.
func (s *Server) GetTags(c *fiber.Ctx) error {
	return c.JSON(s.store.Tags())
}

// GetTeams returns the distinct teams across all posts.
func (s *Server) GetTeams(c *fiber.Ctx) error {
	return c.JSON(s.store.Teams())
}

// GetMoods returns the distinct moods across all posts.
func (s *Server) GetMoods(c *fiber.Ctx) error {
	return c.JSON(s.store.Moods())
}
