package server

import (
	"hearth/internal/models"
	"hearth/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListTopics handles GET /api/forum/topics
// @Summary List forum topics
// @Description Pinned topics first, then most recent activity.
// @Tags forum
// @Produce json
// @Param tag query string false "Tag filter"
// @Param group_id query string false "Group filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.ForumTopic
// @Security BearerAuth
// @Router /forum/topics [get]
func (s *Server) ListTopics(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	topics, err := s.forum.ListTopics(c.UserContext(), service.ListTopicsInput{
		ViewerID: actorID(c),
		Tag:      c.Query("tag"),
		GroupID:  c.Query("group_id"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	return respond(c, fiber.StatusOK, topics, err)
}

// CreateTopic handles POST /api/forum/topics
// @Summary Start a forum topic
// @Description Flagged content is stored with moderation status pending_review.
// @Tags forum
// @Accept json
// @Produce json
// @Param request body object{title=string,content=string,tags=[]string,group_id=string} true "Topic"
// @Success 201 {object} models.ForumTopic
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /forum/topics [post]
func (s *Server) CreateTopic(c *fiber.Ctx) error {
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
		GroupID string   `json:"group_id"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	topic, err := s.forum.CreateTopic(c.UserContext(), service.CreateTopicInput{
		AuthorID: actorID(c),
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		GroupID:  req.GroupID,
	})
	return respond(c, fiber.StatusCreated, topic, err)
}

// GetTopic handles GET /api/forum/topics/:id
// @Summary Get a topic with its visible replies
// @Tags forum
// @Produce json
// @Param id path string true "Topic ID"
// @Success 200 {object} models.ForumTopic
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /forum/topics/{id} [get]
func (s *Server) GetTopic(c *fiber.Ctx) error {
	topic, err := s.forum.GetTopic(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, topic, err)
}

// EditTopic handles PATCH /api/forum/topics/:id
func (s *Server) EditTopic(c *fiber.Ctx) error {
	var req struct {
		Title   *string  `json:"title"`
		Content *string  `json:"content"`
		Tags    []string `json:"tags"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	topic, err := s.forum.EditTopic(c.UserContext(), service.EditTopicInput{
		ActorID: actorID(c),
		TopicID: param(c, "id"),
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	return respond(c, fiber.StatusOK, topic, err)
}

// CreateReply handles POST /api/forum/topics/:id/replies
// @Summary Reply to a topic
// @Tags forum
// @Accept json
// @Produce json
// @Param id path string true "Topic ID"
// @Param request body object{content=string} true "Reply"
// @Success 201 {object} models.ForumPost
// @Failure 409 {object} models.ErrorResponse "Topic is locked"
// @Security BearerAuth
// @Router /forum/topics/{id}/replies [post]
func (s *Server) CreateReply(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	reply, err := s.forum.Reply(c.UserContext(), service.ReplyInput{
		AuthorID: actorID(c),
		TopicID:  param(c, "id"),
		Content:  req.Content,
	})
	return respond(c, fiber.StatusCreated, reply, err)
}

// EditReply handles PATCH /api/forum/topics/:id/replies/:replyId
func (s *Server) EditReply(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	reply, err := s.forum.EditReply(c.UserContext(), service.EditReplyInput{
		ActorID: actorID(c),
		TopicID: param(c, "id"),
		ReplyID: param(c, "replyId"),
		Content: req.Content,
	})
	return respond(c, fiber.StatusOK, reply, err)
}

type voteRequest struct {
	Direction models.VoteDirection `json:"direction"`
}

// VoteTopic handles POST /api/forum/topics/:id/vote
// @Summary Vote on a topic
// @Description direction is up, down, or none. Repeating a vote is a no-op.
// @Tags forum
// @Accept json
// @Produce json
// @Param id path string true "Topic ID"
// @Param request body object{direction=string} true "Vote"
// @Success 200 {object} models.VoteTally
// @Security BearerAuth
// @Router /forum/topics/{id}/vote [post]
func (s *Server) VoteTopic(c *fiber.Ctx) error {
	var req voteRequest
	if !parseBody(c, &req) {
		return nil
	}
	tally, err := s.forum.VoteTopic(c.UserContext(), actorID(c), param(c, "id"), req.Direction)
	return respond(c, fiber.StatusOK, tally, err)
}

// VoteReply handles POST /api/forum/topics/:id/replies/:replyId/vote
func (s *Server) VoteReply(c *fiber.Ctx) error {
	var req voteRequest
	if !parseBody(c, &req) {
		return nil
	}
	tally, err := s.forum.VoteReply(c.UserContext(), actorID(c), param(c, "id"), param(c, "replyId"), req.Direction)
	return respond(c, fiber.StatusOK, tally, err)
}

// SetTopicPinned handles PUT /api/forum/topics/:id/pin
func (s *Server) SetTopicPinned(c *fiber.Ctx) error {
	var req struct {
		Pinned bool `json:"pinned"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	topic, err := s.forum.SetPinned(c.UserContext(), actorID(c), param(c, "id"), req.Pinned)
	return respond(c, fiber.StatusOK, topic, err)
}

// SetTopicLocked handles PUT /api/forum/topics/:id/lock
func (s *Server) SetTopicLocked(c *fiber.Ctx) error {
	var req struct {
		Locked bool `json:"locked"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	topic, err := s.forum.SetLocked(c.UserContext(), actorID(c), param(c, "id"), req.Locked)
	return respond(c, fiber.StatusOK, topic, err)
}
