package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hearth/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paginationFor(t *testing.T, query string) Pagination {
	t.Helper()
	var got Pagination
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		got = parsePagination(c, 25)
		return c.SendStatus(fiber.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+query, nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	return got
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Limit: 25}},
		{"?limit=10&offset=30", Pagination{Limit: 10, Offset: 30}},
		{"?limit=0&offset=-5", Pagination{Limit: 25}},
		{"?limit=5000", Pagination{Limit: maxPaginationLimit}},
		{"?limit=abc", Pagination{Limit: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, paginationFor(t, tt.query))
		})
	}
}

func TestParseBody_RejectsMalformedJSON(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if !parseBody(c, &req) {
			return nil
		}
		return c.SendString(req.Name)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"hearth"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.CodeValidation, body.Code)
}

func TestRespond_MapsErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"ok", nil, http.StatusCreated, ""},
		{"not found", models.NewNotFoundError("Topic", "t1"), http.StatusNotFound, models.CodeNotFound},
		{"illegal transition", models.NewIllegalTransitionError("closed"), http.StatusConflict, models.CodeIllegalTransition},
		{"forbidden", models.NewForbiddenError("no"), http.StatusForbidden, models.CodeForbidden},
		{"unavailable", models.NewUnavailableError("AI assist", nil), http.StatusServiceUnavailable, models.CodeUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, models.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respond(c, fiber.StatusCreated, fiber.Map{"ok": true}, tt.err)
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.code != "" {
				var body models.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.code, body.Code)
			}
		})
	}
}

func TestNoContent(t *testing.T) {
	app := fiber.New()
	app.Delete("/:ok", func(c *fiber.Ctx) error {
		if c.Params("ok") == "yes" {
			return noContent(c, nil)
		}
		return noContent(c, models.NewConflictError("stale"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/yes", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/no", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestErrorFrame_IsValidJSON(t *testing.T) {
	msg := `user "ana" already has 5 open connections\n`
	var got map[string]string
	require.NoError(t, json.Unmarshal(errorFrame(errors.New(msg)), &got))
	assert.Equal(t, msg, got["error"])
}
