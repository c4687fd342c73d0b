package server

import (
	"breakroom/internal/models"
	"breakroom/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetFlags lists moderation flags, optionally filtered by ?status=.
// Admin only.
func (s *Server) GetFlags(c *fiber.Ctx) error {
	statusFilter := models.FlagStatus(c.Query("status"))
	if statusFilter != "" && !statusFilter.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown flag status"))
	}

	snap := s.store.Snapshot()
	flags := make([]models.Flag, 0, len(snap.Flags))
	for _, flag := range snap.Flags {
		if statusFilter != "" && flag.Status != statusFilter {
			continue
		}
		flags = append(flags, flag)
	}
	return c.JSON(flags)
}

type createFlagRequest struct {
	PostID uint   `json:"post_id"`
	Reason string `json:"reason"`
}

// CreateFlag files a moderation report. Any authenticated user may flag.
func (s *Server) CreateFlag(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req createFlagRequest
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}
	if err := validation.ValidateFlagReason(req.Reason); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	flag, err := s.store.CreateFlag(c.UserContext(), userID, req.PostID, req.Reason)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(flag)
}

type updateFlagRequest struct {
	Status models.FlagStatus `json:"status"`
}

// UpdateFlag moves a pending flag to reviewed or dismissed. Admin only.
func (s *Server) UpdateFlag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req updateFlagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	flag, err := s.store.UpdateFlagStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishFeedEvent(c, EventForFlagUpdated(flag))

	return c.JSON(flag)
}
