package server

import (
	"hearth/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FeatureFlagsResponse is the body of GET /api/feature-flags.
type FeatureFlagsResponse struct {
	Raw       map[string]string      `json:"raw"`
	Evaluated map[string]bool        `json:"evaluated"`
	AIAssist  service.AIAssistStatus `json:"ai_assist"`
}

// GetFeatureFlags returns the configured flags, their state for the caller, and
// whether summaries, suggestions and health narratives will be generated for them.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := actorID(c)
	resp := FeatureFlagsResponse{
		Raw:       map[string]string{},
		Evaluated: map[string]bool{},
		AIAssist:  s.insights.Status(userID),
	}
	if s.featureFlags != nil {
		resp.Raw = s.featureFlags.Raw()
		resp.Evaluated = s.featureFlags.Snapshot(userID)
	}
	return c.JSON(resp)
}
