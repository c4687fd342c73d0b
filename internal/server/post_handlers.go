package server

import (
	"breakroom/internal/cache"
	"breakroom/internal/content"
	"breakroom/internal/models"
	"breakroom/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// postView is a post decorated with counts and the viewer's own relations.
type postView struct {
	models.Post
	LikeCount  int  `json:"like_count"`
	Liked      bool `json:"liked"`
	Bookmarked bool `json:"bookmarked"`
}

// viewPost derives the spoiler marker and relation state for one viewer.
// When the viewer has not opted into spoilers the body is served redacted.
func (s *Server) viewPost(post models.Post, viewerID uint, revealSpoilers bool) postView {
	post.HasSpoiler = content.HasSpoiler(post.Body)
	if post.HasSpoiler && !revealSpoilers {
		post.Body = content.RedactSpoilers(post.Body)
	}

	view := postView{
		Post:      post,
		LikeCount: len(s.store.LikesForPost(post.ID)),
	}
	if viewerID != 0 {
		view.Liked = s.store.IsLikedByUser(viewerID, post.ID)
		view.Bookmarked = s.store.IsBookmarkedByUser(viewerID, post.ID)
	}
	return view
}

func revealSpoilers(c *fiber.Ctx) bool {
	return c.QueryBool("reveal_spoilers", false)
}

// GetPosts returns all posts, newest first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	reveal := revealSpoilers(c)

	snap := s.store.Snapshot()
	views := make([]postView, 0, len(snap.Posts))
	for _, post := range snap.Posts {
		views = append(views, s.viewPost(post, viewerID, reveal))
	}
	return c.JSON(views)
}

// GetPost returns a single post by ID.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.store.GetPost(id)
	if err != nil {
		return respondAppError(c, err)
	}

	viewerID, _ := s.optionalUserID(c)
	return c.JSON(s.viewPost(*post, viewerID, revealSpoilers(c)))
}

type createPostRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Team  string   `json:"team"`
	Mood  string   `json:"mood"`
	Tags  []string `json:"tags"`
}

// CreatePost publishes a new post authored by the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateTags(req.Tags); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	author, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	team := req.Team
	if team == "" {
		team = author.Team
	}

	post, err := s.store.CreatePost(c.UserContext(), userID, models.Post{
		AuthorName: author.Name,
		Team:       team,
		Tags:       req.Tags,
		Mood:       req.Mood,
		Title:      req.Title,
		Body:       req.Body,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishFeedEvent(c, EventForPostCreated(post))

	// Clear the composition draft that produced this post, if any.
	_ = s.drafts.Clear(c.UserContext(), userID, cache.DraftTargetNew)

	return c.Status(fiber.StatusCreated).JSON(s.viewPost(*post, userID, true))
}

// UpdatePost applies a partial update. Only the author or an admin may edit.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	existing, err := s.store.GetPost(id)
	if err != nil {
		return respondAppError(c, err)
	}

	if existing.UserID != userID {
		admin, aerr := s.isAdmin(c, userID)
		if aerr != nil {
			return respondAppError(c, aerr)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Only the author may edit this post"))
		}
	}

	var upd models.PostUpdate
	if err := c.BodyParser(&upd); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if upd.Tags != nil {
		if err := validation.ValidateTags(*upd.Tags); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	}

	post, err := s.store.UpdatePost(c.UserContext(), id, upd)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishFeedEvent(c, EventForPostUpdated(post))

	return c.JSON(s.viewPost(*post, userID, true))
}

// DeletePost removes a post. Only the author or an admin may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	existing, err := s.store.GetPost(id)
	if err != nil {
		return respondAppError(c, err)
	}

	if existing.UserID != userID {
		admin, aerr := s.isAdmin(c, userID)
		if aerr != nil {
			return respondAppError(c, aerr)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Only the author may delete this post"))
		}
	}

	if err := s.store.DeletePost(c.UserContext(), id); err != nil {
		return respondAppError(c, err)
	}

	s.publishFeedEvent(c, EventForPostDeleted(id))

	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike flips the caller's like on a post.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	liked, err := s.store.ToggleLike(c.UserContext(), userID, id)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishFeedEvent(c, EventForReaction(id))

	return c.JSON(fiber.Map{
		"post_id":    id,
		"liked":      liked,
		"like_count": len(s.store.LikesForPost(id)),
	})
}

// ToggleBookmark flips the caller's bookmark on a post.
func (s *Server) ToggleBookmark(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	bookmarked, err := s.store.ToggleBookmark(c.UserContext(), userID, id)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"post_id":    id,
		"bookmarked": bookmarked,
	})
}

type flagRequest struct {
	Reason string `json:"reason"`
}

// FlagPost files a moderation report against a post.
func (s *Server) FlagPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	var req flagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateFlagReason(req.Reason); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	flag, err := s.store.CreateFlag(c.UserContext(), userID, id, req.Reason)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(flag)
}
