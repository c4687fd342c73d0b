package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"breakroom/internal/config"
	"breakroom/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "SecurePass12!@"

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// setupTestServer builds a full server against in-memory SQLite and miniredis
// with routes registered on a fresh Fiber app.
func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Bookmark{},
		&models.Flag{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:      "test-secret-key-for-handler-tests",
		Port:           "0",
		PostDeleteMode: config.DeleteModeSoft,
		Env:            "test",
	}

	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app
}

// doJSON performs a request against the app and returns the response.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// registerUser creates an account through the API and returns its token and
// profile.
func registerUser(t *testing.T, app *fiber.App, email, role string) (string, models.User) {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/register", "", fiber.Map{
		"email":    email,
		"password": testPassword,
		"name":     "Test User",
		"team":     "engineering",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody[struct {
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user"`
	}](t, resp)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken, body.User
}

// createPostViaAPI publishes a post through the handler.
func createPostViaAPI(t *testing.T, app *fiber.App, token string, title, body string, tags []string) postView {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/posts", token, fiber.Map{
		"title": title,
		"body":  body,
		"mood":  "chaotic",
		"tags":  tags,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[postView](t, resp)
}
