package server

import (
	"strings"

	"hearth/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// actorID returns the authenticated user id set by AuthRequired.
func actorID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// parseBody decodes the JSON body into dest. On failure it writes a 400 response
// and returns false; the handler should then return nil.
func parseBody(c *fiber.Ctx, dest any) bool {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

// param returns a trimmed route parameter.
func param(c *fiber.Ctx, name string) string {
	return strings.TrimSpace(c.Params(name))
}

// respond writes v with status, or the mapped error response when err is set.
func respond(c *fiber.Ctx, status int, v any, err error) error {
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(status).JSON(v)
}

// noContent writes 204, or the mapped error response when err is set.
func noContent(c *fiber.Ctx, err error) error {
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
