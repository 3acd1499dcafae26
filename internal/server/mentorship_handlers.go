package server

import (
	"context"
	"time"

	"hearth/internal/models"
	"hearth/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListMentorships handles GET /api/mentorships
func (s *Server) ListMentorships(c *fiber.Ctx) error {
	list, err := s.mentorships.ListPairings(c.UserContext(), actorID(c))
	return respond(c, fiber.StatusOK, list, err)
}

// RequestMentorship handles POST /api/mentorships
// @Summary Ask a mentor for mentorship in a skill
// @Tags mentorship
// @Accept json
// @Produce json
// @Param request body object{mentor_id=string,skill=string} true "Request"
// @Success 201 {object} models.MentorshipPairing
// @Failure 409 {object} models.ErrorResponse "An open pairing already exists"
// @Security BearerAuth
// @Router /mentorships [post]
func (s *Server) RequestMentorship(c *fiber.Ctx) error {
	var req struct {
		MentorID string `json:"mentor_id"`
		Skill    string `json:"skill"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	p, err := s.mentorships.RequestMentorship(c.UserContext(), service.RequestMentorshipInput{
		MenteeID: actorID(c),
		MentorID: req.MentorID,
		Skill:    req.Skill,
	})
	return respond(c, fiber.StatusCreated, p, err)
}

// SuggestMentors handles GET /api/mentorships/suggestions
// @Summary Candidate partners ranked by shared skills
// @Tags mentorship
// @Produce json
// @Param limit query int false "Max suggestions"
// @Success 200 {array} community.MatchSuggestion
// @Security BearerAuth
// @Router /mentorships/suggestions [get]
func (s *Server) SuggestMentors(c *fiber.Ctx) error {
	list, err := s.mentorships.SuggestMentors(c.UserContext(), actorID(c), c.QueryInt("limit", 0))
	return respond(c, fiber.StatusOK, list, err)
}

// GetMentorship handles GET /api/mentorships/:id
func (s *Server) GetMentorship(c *fiber.Ctx) error {
	p, err := s.mentorships.GetPairing(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, p, err)
}

type pairingTransition func(ctx context.Context, actorID, pairingID string) (*models.MentorshipPairing, error)

func (s *Server) transitionMentorship(c *fiber.Ctx, fn pairingTransition) error {
	p, err := fn(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, p, err)
}

// AcceptMentorship handles POST /api/mentorships/:id/accept
func (s *Server) AcceptMentorship(c *fiber.Ctx) error {
	return s.transitionMentorship(c, s.mentorships.AcceptMentorship)
}

// CompleteMentorship handles POST /api/mentorships/:id/complete
func (s *Server) CompleteMentorship(c *fiber.Ctx) error {
	return s.transitionMentorship(c, s.mentorships.CompleteMentorship)
}

// DeclineMentorship handles POST /api/mentorships/:id/decline
func (s *Server) DeclineMentorship(c *fiber.Ctx) error {
	return s.transitionMentorship(c, s.mentorships.DeclineMentorship)
}

// ScheduleSession handles POST /api/mentorships/:id/sessions
func (s *Server) ScheduleSession(c *fiber.Ctx) error {
	var req struct {
		Date time.Time `json:"date"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	session, err := s.mentorships.ScheduleSession(c.UserContext(), actorID(c), param(c, "id"), req.Date)
	return respond(c, fiber.StatusCreated, session, err)
}

// SetSessionNotes handles PUT /api/mentorships/:id/sessions/:sessionId/notes
func (s *Server) SetSessionNotes(c *fiber.Ctx) error {
	var req struct {
		Notes string `json:"notes"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	return noContent(c, s.mentorships.SetSessionNotes(c.UserContext(), actorID(c), param(c, "id"), param(c, "sessionId"), req.Notes))
}

// AddSessionFeedback handles POST /api/mentorships/:id/sessions/:sessionId/feedback
func (s *Server) AddSessionFeedback(c *fiber.Ctx) error {
	var req struct {
		Rating int    `json:"rating"`
		Text   string `json:"text"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	p, err := s.mentorships.AddFeedback(c.UserContext(), service.FeedbackInput{
		ActorID:   actorID(c),
		PairingID: param(c, "id"),
		SessionID: param(c, "sessionId"),
		Rating:    req.Rating,
		Text:      req.Text,
	})
	return respond(c, fiber.StatusOK, p, err)
}
