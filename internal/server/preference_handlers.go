package server

import (
	"breakroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPreferences returns the caller's feed settings, defaults when none
// are saved.
func (s *Server) GetPreferences(c *fiber.Ctx) error {
	userID := currentUserID(c)

	pref, err := s.prefs.Get(c.UserContext(), userID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(pref)
}

// UpdatePreferences applies a partial update to the caller's feed settings.
func (s *Server) UpdatePreferences(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var upd models.PreferenceUpdate
	if err := c.BodyParser(&upd); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	pref, err := s.prefs.Update(c.UserContext(), userID, upd)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(pref)
}

// ResetPreferences restores the caller's feed settings to defaults.
func (s *Server) ResetPreferences(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if err := s.prefs.Reset(c.UserContext(), userID); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(models.DefaultPreference())
}
