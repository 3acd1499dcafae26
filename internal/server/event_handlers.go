package server

import (
	"time"

	"hearth/internal/models"
	"hearth/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListEvents handles GET /api/events
// @Summary Events visible to the caller
// @Tags events
// @Produce json
// @Param upcoming query bool false "Only events that have not ended"
// @Success 200 {array} models.CommunityEvent
// @Security BearerAuth
// @Router /events [get]
func (s *Server) ListEvents(c *fiber.Ctx) error {
	events, err := s.events.ListEvents(c.UserContext(), actorID(c), c.QueryBool("upcoming", false))
	return respond(c, fiber.StatusOK, events, err)
}

// CreateEvent handles POST /api/events
// @Summary Schedule an event
// @Tags events
// @Accept json
// @Produce json
// @Param request body object{title=string,description=string,starts_at=string,ends_at=string,location=string,group_id=string,is_public=bool} true "Event"
// @Success 201 {object} models.CommunityEvent
// @Security BearerAuth
// @Router /events [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		StartsAt    time.Time `json:"starts_at"`
		EndsAt      time.Time `json:"ends_at"`
		Location    string    `json:"location"`
		GroupID     string    `json:"group_id"`
		IsPublic    bool      `json:"is_public"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	event, err := s.events.CreateEvent(c.UserContext(), service.CreateEventInput{
		OrganizerID: actorID(c),
		GroupID:     req.GroupID,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
		IsPublic:    req.IsPublic,
	})
	return respond(c, fiber.StatusCreated, event, err)
}

// JoinEvent handles POST /api/events/:id/join
func (s *Server) JoinEvent(c *fiber.Ctx) error {
	event, err := s.events.JoinEvent(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, event, err)
}

// LeaveEvent handles DELETE /api/events/:id/join
func (s *Server) LeaveEvent(c *fiber.Ctx) error {
	event, err := s.events.LeaveEvent(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, event, err)
}

// ListChallenges handles GET /api/challenges
func (s *Server) ListChallenges(c *fiber.Ctx) error {
	list, err := s.events.ListChallenges(c.UserContext(), actorID(c), models.ChallengeStatus(c.Query("status")))
	return respond(c, fiber.StatusOK, list, err)
}

// CreateChallenge handles POST /api/challenges
func (s *Server) CreateChallenge(c *fiber.Ctx) error {
	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		StartsAt    time.Time `json:"starts_at"`
		EndsAt      time.Time `json:"ends_at"`
		GroupID     string    `json:"group_id"`
		IsPublic    bool      `json:"is_public"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	challenge, err := s.events.CreateChallenge(c.UserContext(), service.CreateChallengeInput{
		OrganizerID: actorID(c),
		GroupID:     req.GroupID,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		IsPublic:    req.IsPublic,
	})
	return respond(c, fiber.StatusCreated, challenge, err)
}

// JoinChallenge handles POST /api/challenges/:id/join
func (s *Server) JoinChallenge(c *fiber.Ctx) error {
	challenge, err := s.events.JoinChallenge(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, challenge, err)
}

// LeaveChallenge handles DELETE /api/challenges/:id/join
func (s *Server) LeaveChallenge(c *fiber.Ctx) error {
	challenge, err := s.events.LeaveChallenge(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, challenge, err)
}

// SetChallengeStatus handles PUT /api/challenges/:id/status
// @Summary Move a challenge through its lifecycle
// @Description upcoming to active to completed; upcoming or active to cancelled.
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Challenge ID"
// @Param request body object{status=string} true "Target status"
// @Success 200 {object} models.CommunityChallenge
// @Failure 409 {object} models.ErrorResponse "Illegal transition"
// @Security BearerAuth
// @Router /challenges/{id}/status [put]
func (s *Server) SetChallengeStatus(c *fiber.Ctx) error {
	var req struct {
		Status models.ChallengeStatus `json:"status"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	challenge, err := s.events.SetChallengeStatus(c.UserContext(), actorID(c), param(c, "id"), req.Status)
	return respond(c, fiber.StatusOK, challenge, err)
}
