package service

import (
	"context"

	"hearth/internal/models"
	"hearth/internal/repository"
	"hearth/internal/validation"
)

const (
	maxBioLen      = 1000
	maxLocationLen = 120
	maxTerms       = 20
)

type ProfileService struct {
	cols     *repository.Collections
	standing *StandingService
}

// UpdateProfileInput carries optional profile changes. Nil fields are left unchanged;
// an empty non-nil slice clears the list.
type UpdateProfileInput struct {
	UserID           string
	DisplayName      *string
	Bio              *string
	Location         *string
	Interests        []string
	SeekingHelpWith  []string
	OfferingHelpWith []string
}

type SetMentorshipRoleInput struct {
	UserID          string
	Role            models.MentorshipRole
	MentoringSkills []string
	SeekingSkills   []string
}

func NewProfileService(cols *repository.Collections, standing *StandingService) *ProfileService {
	return &ProfileService{cols: cols, standing: standing}
}

// EnsureProfile returns the caller's profile, creating it on first use.
// displayName is applied only when the profile is created.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID, displayName string) (*models.CommunityUserProfile, error) {
	if displayName == "" {
		return ensureProfile(ctx, s.cols, userID)
	}
	name, err := validation.RequiredText("Display name", displayName, validation.MaxNameLen)
	if err != nil {
		return nil, asValidation(err)
	}
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	p, _, err := s.cols.Profiles.Upsert(ctx, userID, func(p *models.CommunityUserProfile, created bool) error {
		if created {
			*p = models.CommunityUserProfile{
				ID:             userID,
				DisplayName:    name,
				MentorshipRole: models.MentorshipRoleNone,
				CreatedAt:      now(),
			}
		}
		return nil
	})
	return p, err
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.CommunityUserProfile, error) {
	var (
		update models.CommunityUserProfile
		err    error
	)
	if in.DisplayName != nil {
		if update.DisplayName, err = validation.RequiredText("Display name", *in.DisplayName, validation.MaxNameLen); err != nil {
			return nil, asValidation(err)
		}
	}
	if in.Bio != nil {
		if update.Bio, err = validation.OptionalText("Bio", *in.Bio, maxBioLen); err != nil {
			return nil, asValidation(err)
		}
	}
	if in.Location != nil {
		if update.Location, err = validation.OptionalText("Location", *in.Location, maxLocationLen); err != nil {
			return nil, asValidation(err)
		}
	}
	if in.Interests != nil {
		if update.Interests, err = validation.Terms("interests", in.Interests, maxTerms); err != nil {
			return nil, asValidation(err)
		}
	}
	if in.SeekingHelpWith != nil {
		if update.SeekingHelpWith, err = validation.Terms("help topics", in.SeekingHelpWith, maxTerms); err != nil {
			return nil, asValidation(err)
		}
	}
	if in.OfferingHelpWith != nil {
		if update.OfferingHelpWith, err = validation.Terms("help topics", in.OfferingHelpWith, maxTerms); err != nil {
			return nil, asValidation(err)
		}
	}

	if _, err := ensureProfile(ctx, s.cols, in.UserID); err != nil {
		return nil, err
	}
	return s.cols.Profiles.Mutate(ctx, in.UserID, func(p *models.CommunityUserProfile) error {
		if in.DisplayName != nil {
			p.DisplayName = update.DisplayName
		}
		if in.Bio != nil {
			p.Bio = update.Bio
		}
		if in.Location != nil {
			p.Location = update.Location
		}
		if in.Interests != nil {
			p.Interests = update.Interests
		}
		if in.SeekingHelpWith != nil {
			p.SeekingHelpWith = update.SeekingHelpWith
		}
		if in.OfferingHelpWith != nil {
			p.OfferingHelpWith = update.OfferingHelpWith
		}
		return nil
	})
}

func (s *ProfileService) SetMentorshipRole(ctx context.Context, in SetMentorshipRoleInput) (*models.CommunityUserProfile, error) {
	if !in.Role.Valid() {
		return nil, models.NewValidationError("Mentorship role must be one of mentor, mentee, none")
	}
	mentoring, err := validation.Terms("mentoring skills", in.MentoringSkills, maxTerms)
	if err != nil {
		return nil, asValidation(err)
	}
	seeking, err := validation.Terms("seeking skills", in.SeekingSkills, maxTerms)
	if err != nil {
		return nil, asValidation(err)
	}
	if in.Role == models.MentorshipRoleMentor && len(mentoring) == 0 {
		return nil, models.NewValidationError("Mentors must list at least one mentoring skill")
	}

	if _, err := ensureProfile(ctx, s.cols, in.UserID); err != nil {
		return nil, err
	}
	return s.cols.Profiles.Mutate(ctx, in.UserID, func(p *models.CommunityUserProfile) error {
		p.MentorshipRole = in.Role
		p.MentoringSkills = mentoring
		p.SeekingSkills = seeking
		return nil
	})
}

// Connect links two users so each sees the other's activity in their feed.
func (s *ProfileService) Connect(ctx context.Context, userID, otherID string) error {
	return s.setConnection(ctx, userID, otherID, true)
}

// Disconnect removes the link created by Connect.
func (s *ProfileService) Disconnect(ctx context.Context, userID, otherID string) error {
	return s.setConnection(ctx, userID, otherID, false)
}

func (s *ProfileService) setConnection(ctx context.Context, userID, otherID string, connected bool) error {
	if userID == otherID {
		return models.NewValidationError("Cannot connect to yourself")
	}
	if _, err := ensureProfile(ctx, s.cols, userID); err != nil {
		return err
	}
	return s.cols.Profiles.Transform(ctx, func(items []models.CommunityUserProfile) ([]models.CommunityUserProfile, error) {
		var me, other *models.CommunityUserProfile
		for i := range items {
			switch items[i].ID {
			case userID:
				me = &items[i]
			case otherID:
				other = &items[i]
			}
		}
		if other == nil {
			return nil, models.NewNotFoundError("Profile", otherID)
		}
		if me == nil {
			return nil, models.NewNotFoundError("Profile", userID)
		}
		if connected {
			me.ConnectionIDs = appendUnique(me.ConnectionIDs, otherID)
			other.ConnectionIDs = appendUnique(other.ConnectionIDs, userID)
		} else {
			me.ConnectionIDs = removeString(me.ConnectionIDs, otherID)
			other.ConnectionIDs = removeString(other.ConnectionIDs, userID)
		}
		return items, nil
	})
}

func (s *ProfileService) GetProfileView(ctx context.Context, userID string) (*models.ProfileView, error) {
	return s.standing.View(ctx, userID)
}

func (s *ProfileService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return s.standing.Leaderboard(ctx, limit)
}

// SetModerator grants or revokes moderation rights. Only moderators may change them,
// and a moderator cannot revoke their own rights.
func (s *ProfileService) SetModerator(ctx context.Context, actorID, userID string, moderator bool) (*models.CommunityUserProfile, error) {
	actor, err := findProfile(ctx, s.cols, actorID)
	if err != nil {
		return nil, err
	}
	if !isModerator(actor) {
		return nil, models.NewForbiddenError("Only moderators can manage moderators")
	}
	if actorID == userID && !moderator {
		return nil, models.NewValidationError("Moderators cannot revoke their own rights")
	}
	return s.cols.Profiles.Mutate(ctx, userID, func(p *models.CommunityUserProfile) error {
		p.IsModerator = moderator
		return nil
	})
}

// GrantModerators marks the given users as moderators, creating missing profiles.
// It is used at startup to seed the first moderators from configuration.
func (s *ProfileService) GrantModerators(ctx context.Context, userIDs ...string) error {
	for _, id := range userIDs {
		if _, err := ensureProfile(ctx, s.cols, id); err != nil {
			return err
		}
		if _, err := s.cols.Profiles.Mutate(ctx, id, func(p *models.CommunityUserProfile) error {
			p.IsModerator = true
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}
