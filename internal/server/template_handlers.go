package server

import (
	"hearth/internal/models"
	"hearth/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListTemplates handles GET /api/templates
// @Summary Browse templates
// @Description Approved templates by default; other statuses are limited to authors and moderators.
// @Tags templates
// @Produce json
// @Param type query string false "Template type"
// @Param tag query string false "Tag"
// @Param status query string false "approved, pending_approval or rejected"
// @Success 200 {array} models.UserTemplate
// @Security BearerAuth
// @Router /templates [get]
func (s *Server) ListTemplates(c *fiber.Ctx) error {
	list, err := s.templates.List(c.UserContext(), service.ListTemplatesInput{
		ViewerID: actorID(c),
		Type:     c.Query("type"),
		Tag:      c.Query("tag"),
		Status:   models.TemplateStatus(c.Query("status")),
	})
	return respond(c, fiber.StatusOK, list, err)
}

// SubmitTemplate handles POST /api/templates
// @Summary Submit a template for approval
// @Tags templates
// @Accept json
// @Produce json
// @Param request body object{title=string,description=string,type=string,body=string,tags=[]string} true "Template"
// @Success 201 {object} models.UserTemplate
// @Security BearerAuth
// @Router /templates [post]
func (s *Server) SubmitTemplate(c *fiber.Ctx) error {
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Type        string   `json:"type"`
		Body        string   `json:"body"`
		Tags        []string `json:"tags"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	tpl, err := s.templates.Submit(c.UserContext(), service.SubmitTemplateInput{
		AuthorID:    actorID(c),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Body:        req.Body,
		Tags:        req.Tags,
	})
	return respond(c, fiber.StatusCreated, tpl, err)
}

// GetTemplate handles GET /api/templates/:id
func (s *Server) GetTemplate(c *fiber.Ctx) error {
	tpl, err := s.templates.Get(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, tpl, err)
}

// ReviewTemplate handles POST /api/templates/:id/review
func (s *Server) ReviewTemplate(c *fiber.Ctx) error {
	var req struct {
		Approve bool `json:"approve"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	tpl, err := s.templates.Review(c.UserContext(), actorID(c), param(c, "id"), req.Approve)
	return respond(c, fiber.StatusOK, tpl, err)
}

// RateTemplate handles POST /api/templates/:id/ratings
func (s *Server) RateTemplate(c *fiber.Ctx) error {
	var req struct {
		Score int `json:"score"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	tpl, err := s.templates.Rate(c.UserContext(), actorID(c), param(c, "id"), req.Score)
	return respond(c, fiber.StatusOK, tpl, err)
}

// CommentTemplate handles POST /api/templates/:id/comments
func (s *Server) CommentTemplate(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	comment, err := s.templates.Comment(c.UserContext(), actorID(c), param(c, "id"), req.Text)
	return respond(c, fiber.StatusCreated, comment, err)
}

// UseTemplate handles POST /api/templates/:id/use
func (s *Server) UseTemplate(c *fiber.Ctx) error {
	tpl, err := s.templates.Use(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, tpl, err)
}
