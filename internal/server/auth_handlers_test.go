package server

import (
	"net/http"
	"testing"

	"breakroom/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	_, app := setupTestServer(t)

	token, user := registerUser(t, app, "alice@example.com", "")
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)

	t.Run("Duplicate Email", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/register", "", fiber.Map{
			"email":    "alice@example.com",
			"password": testPassword,
			"name":     "Alice Again",
			"team":     "engineering",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Weak Password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/register", "", fiber.Map{
			"email":    "bob@example.com",
			"password": "short",
			"name":     "Bob",
			"team":     "engineering",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Unknown Role", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/register", "", fiber.Map{
			"email":    "carol@example.com",
			"password": testPassword,
			"name":     "Carol",
			"team":     "engineering",
			"role":     "superuser",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Admin Role", func(t *testing.T) {
		_, admin := registerUser(t, app, "mod@example.com", "admin")
		assert.Equal(t, models.RoleAdmin, admin.Role)
	})
}

func TestLogin(t *testing.T) {
	_, app := setupTestServer(t)
	registerUser(t, app, "alice@example.com", "")

	t.Run("Success", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/login", "", fiber.Map{
			"email":    "alice@example.com",
			"password": testPassword,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[authResponse](t, resp)
		assert.NotEmpty(t, body.AccessToken)
		assert.Equal(t, "alice@example.com", body.User.Email)
		assert.Empty(t, body.User.Password)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/login", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "WrongPass999!!",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/login", "", fiber.Map{
			"email":    "nobody@example.com",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMe(t *testing.T) {
	_, app := setupTestServer(t)
	token, user := registerUser(t, app, "alice@example.com", "")

	resp := doJSON(t, app, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[models.User](t, resp)
	assert.Equal(t, user.ID, me.ID)

	t.Run("No Token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/me", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
