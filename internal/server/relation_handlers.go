package server

import (
	"breakroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetLikes returns the caller's likes.
func (s *Server) GetLikes(c *fiber.Ctx) error {
	userID := currentUserID(c)

	snap := s.store.Snapshot()
	likes := make([]models.Like, 0)
	for _, like := range snap.Likes {
		if like.UserID == userID {
			likes = append(likes, like)
		}
	}
	return c.JSON(likes)
}

type relationRequest struct {
	PostID uint `json:"post_id"`
}

// CreateLike likes a post on behalf of the caller. Liking an already liked
// post is rejected rather than toggled; clients that want toggle semantics
// use POST /posts/:id/like.
func (s *Server) CreateLike(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req relationRequest
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	if s.store.IsLikedByUser(userID, req.PostID) {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Post already liked"))
	}

	liked, err := s.store.ToggleLike(c.UserContext(), userID, req.PostID)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishFeedEvent(c, EventForReaction(req.PostID))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post_id": req.PostID,
		"liked":   liked,
	})
}

// DeleteLike removes a like by its ID. The owner or an admin may remove it.
func (s *Server) DeleteLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	snap := s.store.Snapshot()
	var target *models.Like
	for i := range snap.Likes {
		if snap.Likes[i].ID == id {
			target = &snap.Likes[i]
			break
		}
	}
	if target == nil {
		return respondAppError(c, models.NewNotFoundError("Like", id))
	}

	if target.UserID != userID {
		admin, aerr := s.isAdmin(c, userID)
		if aerr != nil {
			return respondAppError(c, aerr)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Cannot remove another user's like"))
		}
	}

	// Toggle on behalf of the like's owner so the right row is removed.
	if _, err := s.store.ToggleLike(c.UserContext(), target.UserID, target.PostID); err != nil {
		return respondAppError(c, err)
	}

	s.publishFeedEvent(c, EventForReaction(target.PostID))

	return c.SendStatus(fiber.StatusNoContent)
}

// GetBookmarks returns the caller's bookmarks.
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return c.JSON(s.store.BookmarksForUser(userID))
}

// CreateBookmark saves a post for the caller.
func (s *Server) CreateBookmark(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req relationRequest
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	if s.store.IsBookmarkedByUser(userID, req.PostID) {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Post already bookmarked"))
	}

	bookmarked, err := s.store.ToggleBookmark(c.UserContext(), userID, req.PostID)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post_id":    req.PostID,
		"bookmarked": bookmarked,
	})
}

// DeleteBookmark removes a bookmark by its ID. The owner or an admin may
// remove it.
func (s *Server) DeleteBookmark(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	snap := s.store.Snapshot()
	var target *models.Bookmark
	for i := range snap.Bookmarks {
		if snap.Bookmarks[i].ID == id {
			target = &snap.Bookmarks[i]
			break
		}
	}
	if target == nil {
		return respondAppError(c, models.NewNotFoundError("Bookmark", id))
	}

	if target.UserID != userID {
		admin, aerr := s.isAdmin(c, userID)
		if aerr != nil {
			return respondAppError(c, aerr)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Cannot remove another user's bookmark"))
		}
	}

	if _, err := s.store.ToggleBookmark(c.UserContext(), target.UserID, target.PostID); err != nil {
		return respondAppError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
