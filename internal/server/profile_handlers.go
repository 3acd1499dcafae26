package server

import (
	"hearth/internal/models"
	"hearth/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateMyProfile handles POST /api/profiles/me
// @Summary Create my community profile
// @Description Creates the caller's profile on first use. The display name applies only on creation.
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body object{display_name=string} true "Profile"
// @Success 200 {object} models.CommunityUserProfile
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/me [post]
func (s *Server) CreateMyProfile(c *fiber.Ctx) error {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	p, err := s.profiles.EnsureProfile(c.UserContext(), actorID(c), req.DisplayName)
	return respond(c, fiber.StatusOK, p, err)
}

// GetMyProfile handles GET /api/profiles/me
// @Summary Get my profile view
// @Tags profiles
// @Produce json
// @Success 200 {object} models.ProfileView
// @Security BearerAuth
// @Router /profiles/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if _, err := s.profiles.EnsureProfile(ctx, actorID(c), ""); err != nil {
		return models.RespondWithAppError(c, err)
	}
	view, err := s.profiles.GetProfileView(ctx, actorID(c))
	return respond(c, fiber.StatusOK, view, err)
}

// GetProfile handles GET /api/profiles/:id
// @Summary Get a profile view with derived reputation
// @Tags profiles
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.ProfileView
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{id} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	view, err := s.profiles.GetProfileView(c.UserContext(), param(c, "id"))
	return respond(c, fiber.StatusOK, view, err)
}

// UpdateMyProfile handles PUT /api/profiles/me
// Omitted fields are left unchanged; an empty list clears it.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		DisplayName      *string  `json:"display_name"`
		Bio              *string  `json:"bio"`
		Location         *string  `json:"location"`
		Interests        []string `json:"interests"`
		SeekingHelpWith  []string `json:"seeking_help_with"`
		OfferingHelpWith []string `json:"offering_help_with"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	p, err := s.profiles.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:           actorID(c),
		DisplayName:      req.DisplayName,
		Bio:              req.Bio,
		Location:         req.Location,
		Interests:        req.Interests,
		SeekingHelpWith:  req.SeekingHelpWith,
		OfferingHelpWith: req.OfferingHelpWith,
	})
	return respond(c, fiber.StatusOK, p, err)
}

// SetMentorshipRole handles PUT /api/profiles/me/mentorship
func (s *Server) SetMentorshipRole(c *fiber.Ctx) error {
	var req struct {
		Role            models.MentorshipRole `json:"role"`
		MentoringSkills []string              `json:"mentoring_skills"`
		SeekingSkills   []string              `json:"seeking_skills"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	p, err := s.profiles.SetMentorshipRole(c.UserContext(), service.SetMentorshipRoleInput{
		UserID:          actorID(c),
		Role:            req.Role,
		MentoringSkills: req.MentoringSkills,
		SeekingSkills:   req.SeekingSkills,
	})
	return respond(c, fiber.StatusOK, p, err)
}

// Connect handles POST /api/profiles/:id/connection
func (s *Server) Connect(c *fiber.Ctx) error {
	return noContent(c, s.profiles.Connect(c.UserContext(), actorID(c), param(c, "id")))
}

// Disconnect handles DELETE /api/profiles/:id/connection
func (s *Server) Disconnect(c *fiber.Ctx) error {
	return noContent(c, s.profiles.Disconnect(c.UserContext(), actorID(c), param(c, "id")))
}

// SetModerator handles PUT /api/profiles/:id/moderator
func (s *Server) SetModerator(c *fiber.Ctx) error {
	var req struct {
		Moderator bool `json:"moderator"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	p, err := s.profiles.SetModerator(c.UserContext(), actorID(c), param(c, "id"), req.Moderator)
	return respond(c, fiber.StatusOK, p, err)
}

// GetLeaderboard handles GET /api/leaderboard
// @Summary Reputation leaderboard
// @Tags profiles
// @Produce json
// @Param limit query int false "Max entries (default 10, max 100)"
// @Success 200 {array} service.LeaderboardEntry
// @Security BearerAuth
// @Router /leaderboard [get]
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	page := parsePagination(c, 10)
	board, err := s.profiles.Leaderboard(c.UserContext(), page.Limit)
	return respond(c, fiber.StatusOK, board, err)
}

// GetFeed handles GET /api/feed
// @Summary Personalized activity feed
// @Tags feed
// @Produce json
// @Param limit query int false "Max items"
// @Success 200 {array} models.ActivityFeedItem
// @Security BearerAuth
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	items, err := s.feed.Feed(c.UserContext(), actorID(c), c.QueryInt("limit", 0))
	return respond(c, fiber.StatusOK, items, err)
}
