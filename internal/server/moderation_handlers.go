package server

import (
	"hearth/internal/models"

	"github.com/gofiber/fiber/v2"
)

type reviewRequest struct {
	Verdict models.ModerationStatus `json:"verdict"`
}

// GetModerationQueue handles GET /api/moderation/queue
// @Summary Content awaiting review
// @Description Oldest first. Moderators only.
// @Tags moderation
// @Produce json
// @Success 200 {array} service.ModerationItem
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /moderation/queue [get]
func (s *Server) GetModerationQueue(c *fiber.Ctx) error {
	items, err := s.moderation.Queue(c.UserContext(), actorID(c))
	return respond(c, fiber.StatusOK, items, err)
}

// ReviewTopic handles POST /api/moderation/topics/:id
// @Summary Resolve a flagged topic
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path string true "Topic ID"
// @Param request body object{verdict=string} true "safe or inappropriate"
// @Success 200 {object} models.ForumTopic
// @Security BearerAuth
// @Router /moderation/topics/{id} [post]
func (s *Server) ReviewTopic(c *fiber.Ctx) error {
	var req reviewRequest
	if !parseBody(c, &req) {
		return nil
	}
	topic, err := s.moderation.ReviewTopic(c.UserContext(), actorID(c), param(c, "id"), req.Verdict)
	return respond(c, fiber.StatusOK, topic, err)
}

// ReviewReply handles POST /api/moderation/topics/:id/replies/:replyId
func (s *Server) ReviewReply(c *fiber.Ctx) error {
	var req reviewRequest
	if !parseBody(c, &req) {
		return nil
	}
	reply, err := s.moderation.ReviewReply(c.UserContext(), actorID(c), param(c, "id"), param(c, "replyId"), req.Verdict)
	return respond(c, fiber.StatusOK, reply, err)
}
