package server

import (
	"github.com/gofiber/fiber/v2"
)

// SummarizeTopic handles POST /api/forum/topics/:id/summary
// @Summary Generate a summary of a discussion
// @Description Requires the ai_assist feature flag. Failures are recorded on the topic.
// @Tags insights
// @Produce json
// @Param id path string true "Topic ID"
// @Success 200 {object} models.TopicSummary
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /forum/topics/{id}/summary [post]
func (s *Server) SummarizeTopic(c *fiber.Ctx) error {
	summary, err := s.insights.SummarizeTopic(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, summary, err)
}

// SuggestTopics handles GET /api/insights/topic-suggestions
// @Summary Discussion ideas based on the caller's interests
// @Tags insights
// @Produce json
// @Param count query int false "Number of suggestions"
// @Success 200 {object} object{topics=[]string}
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /insights/topic-suggestions [get]
func (s *Server) SuggestTopics(c *fiber.Ctx) error {
	topics, err := s.insights.SuggestTopics(c.UserContext(), actorID(c), c.QueryInt("count", 0))
	return respond(c, fiber.StatusOK, fiber.Map{"topics": topics}, err)
}

// GetCommunityHealth handles GET /api/insights/health
// @Summary Community activity stats with an optional narrative
// @Tags insights
// @Produce json
// @Success 200 {object} service.CommunityHealthReport
// @Security BearerAuth
// @Router /insights/health [get]
func (s *Server) GetCommunityHealth(c *fiber.Ctx) error {
	report, err := s.insights.CommunityHealth(c.UserContext(), actorID(c))
	return respond(c, fiber.StatusOK, report, err)
}
