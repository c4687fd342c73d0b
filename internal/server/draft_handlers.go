package server

import (
	"strconv"

	"breakroom/internal/cache"
	"breakroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// draftTarget validates the :target route parameter. It is either the
// literal "new" for a fresh composition or the ID of the post being edited.
func (s *Server) draftTarget(c *fiber.Ctx) (string, error) {
	target := c.Params("target")
	if target == cache.DraftTargetNew {
		return target, nil
	}

	id, err := strconv.ParseUint(target, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Draft target must be \"new\" or a post ID"))
		return "", errResponseWritten
	}
	if _, gerr := s.store.GetPost(uint(id)); gerr != nil {
		_ = respondAppError(c, gerr)
		return "", errResponseWritten
	}
	return target, nil
}

// ListDrafts returns all of the caller's drafts keyed by target.
func (s *Server) ListDrafts(c *fiber.Ctx) error {
	userID := currentUserID(c)

	drafts, err := s.drafts.ListAll(c.UserContext(), userID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(drafts)
}

// GetDraft returns one draft, or 404 when none is saved for the target.
func (s *Server) GetDraft(c *fiber.Ctx) error {
	userID := currentUserID(c)
	target, err := s.draftTarget(c)
	if err != nil {
		return nil
	}

	draft, err := s.drafts.Get(c.UserContext(), userID, target)
	if err != nil {
		return respondAppError(c, err)
	}
	if draft == nil {
		return respondAppError(c, models.NewNotFoundError("Draft", target))
	}
	return c.JSON(draft)
}

// SaveDraft stores the caller's composition buffer for the target.
func (s *Server) SaveDraft(c *fiber.Ctx) error {
	userID := currentUserID(c)
	target, err := s.draftTarget(c)
	if err != nil {
		return nil
	}

	var draft models.Draft
	if err := c.BodyParser(&draft); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.drafts.Save(c.UserContext(), userID, target, draft); err != nil {
		return respondAppError(c, err)
	}

	saved, err := s.drafts.Get(c.UserContext(), userID, target)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(saved)
}

// DeleteDraft removes the caller's draft for the target. Deleting a draft
// that does not exist succeeds.
func (s *Server) DeleteDraft(c *fiber.Ctx) error {
	userID := currentUserID(c)
	target, err := s.draftTarget(c)
	if err != nil {
		return nil
	}

	if err := s.drafts.Clear(c.UserContext(), userID, target); err != nil {
		return respondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
