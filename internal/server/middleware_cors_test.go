package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hearth/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiddlewareApp(origins string) *fiber.App {
	srv := &Server{config: &config.Config{AllowedOrigins: origins}}
	app := fiber.New()
	srv.SetupMiddleware(app)
	app.All("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func sendFrom(t *testing.T, app *fiber.App, method, origin string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/limited", nil)
	req.Header.Set("Origin", origin)
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSetupMiddleware_RateLimitedResponseKeepsCORSHeaders(t *testing.T) {
	app := newMiddlewareApp("http://localhost:5173")

	for i := 0; i < 100; i++ {
		assert.Equal(t, fiber.StatusOK, sendFrom(t, app, http.MethodGet, "http://localhost:5173").StatusCode)
	}

	resp := sendFrom(t, app, http.MethodGet, "http://localhost:5173")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSetupMiddleware_PreflightSkipsLimiter(t *testing.T) {
	app := newMiddlewareApp("http://localhost:5173")

	for i := 0; i < 100; i++ {
		sendFrom(t, app, http.MethodPost, "http://localhost:5173")
	}
	assert.Equal(t, fiber.StatusTooManyRequests, sendFrom(t, app, http.MethodPost, "http://localhost:5173").StatusCode)

	preflight := sendFrom(t, app, http.MethodOptions, "http://localhost:5173")
	assert.Equal(t, fiber.StatusNoContent, preflight.StatusCode)
	assert.Contains(t, preflight.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestSetupMiddleware_OriginList(t *testing.T) {
	app := newMiddlewareApp("https://hearth.example, https://admin.hearth.example")

	resp := sendFrom(t, app, http.MethodGet, "https://admin.hearth.example")
	assert.Equal(t, "https://admin.hearth.example", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = sendFrom(t, app, http.MethodGet, "https://evil.example")
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
