package server

import (
	"errors"
	"strconv"
	"strings"

	"breakroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already wrote the HTTP error
// response; the handler should just return nil.
var errResponseWritten = errors.New("error response already written")

// parseID parses a numeric route parameter and writes a 400 response on
// failure. Callers check for errResponseWritten and bail out.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns a route param name like "postID" into "post ID" for
// error messages.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	return strings.TrimSpace(splitCamel(param))
}

func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isAdmin loads the user and reports whether they hold the admin role.
func (s *Server) isAdmin(c *fiber.Ctx, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

// currentUserID returns the authenticated user ID placed in locals by
// AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// statusForAppError maps application error codes to HTTP status codes.
func statusForAppError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondAppError writes the error with its mapped status code.
func respondAppError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForAppError(err), err)
}
