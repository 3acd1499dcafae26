package service

import (
	"context"
	"sort"
	"time"

	"hearth/internal/community"
	"hearth/internal/models"
	"hearth/internal/notifications"
	"hearth/internal/repository"
	"hearth/internal/validation"
)

const (
	defaultSuggestionLimit = 10
	maxNotesLen            = 5000
)

// MentorshipService runs mentor/mentee pairings and their sessions.
type MentorshipService struct {
	cols     *repository.Collections
	standing *StandingService
	events   EventPublisher
}

type RequestMentorshipInput struct {
	MenteeID string
	MentorID string
	Skill    string
}

type FeedbackInput struct {
	ActorID   string
	PairingID string
	SessionID string
	Rating    int
	Text      string
}

func NewMentorshipService(cols *repository.Collections, standing *StandingService, events EventPublisher) *MentorshipService {
	return &MentorshipService{cols: cols, standing: standing, events: events}
}

// RequestMentorship opens a pairing from the mentee's side and notifies the mentor.
func (s *MentorshipService) RequestMentorship(ctx context.Context, in RequestMentorshipInput) (*models.MentorshipPairing, error) {
	skill, err := validation.RequiredText("Skill", in.Skill, validation.MaxNameLen)
	if err != nil {
		return nil, asValidation(err)
	}
	mentee, err := ensureProfile(ctx, s.cols, in.MenteeID)
	if err != nil {
		return nil, err
	}
	mentor, err := s.cols.Profiles.Find(ctx, in.MentorID)
	if err != nil {
		return nil, err
	}

	var pairing models.MentorshipPairing
	id, ts := newID(), now()
	err = s.cols.Pairings.Transform(ctx, func(items []models.MentorshipPairing) ([]models.MentorshipPairing, error) {
		p, err := community.RequestPairing(id, mentor, mentee, skill, items, ts)
		if err != nil {
			return nil, err
		}
		pairing = p
		return append(items, p), nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, pairing.MentorID, notifications.NewEvent(notifications.EventMentorshipRequested, pairing))
	return &pairing, nil
}

func (s *MentorshipService) AcceptMentorship(ctx context.Context, actorID, pairingID string) (*models.MentorshipPairing, error) {
	return s.transition(ctx, actorID, pairingID, community.AcceptPairing)
}

func (s *MentorshipService) CompleteMentorship(ctx context.Context, actorID, pairingID string) (*models.MentorshipPairing, error) {
	return s.transition(ctx, actorID, pairingID, community.CompletePairing)
}

func (s *MentorshipService) DeclineMentorship(ctx context.Context, actorID, pairingID string) (*models.MentorshipPairing, error) {
	return s.transition(ctx, actorID, pairingID, community.DeclinePairing)
}

func (s *MentorshipService) transition(
	ctx context.Context, actorID, pairingID string,
	apply func(p *models.MentorshipPairing, actorID string, now time.Time) error,
) (*models.MentorshipPairing, error) {
	ts := now()
	p, err := s.cols.Pairings.Mutate(ctx, pairingID, func(p *models.MentorshipPairing) error {
		return apply(p, actorID, ts)
	})
	if err != nil {
		return nil, err
	}
	s.standing.refreshQuietly(ctx, p.MentorID, p.MenteeID)
	publish(ctx, s.events, counterpart(p, actorID), notifications.NewEvent(notifications.EventMentorshipUpdated, p))
	return p, nil
}

func counterpart(p *models.MentorshipPairing, actorID string) string {
	if actorID == p.MentorID {
		return p.MenteeID
	}
	return p.MentorID
}

func (s *MentorshipService) ScheduleSession(ctx context.Context, actorID, pairingID string, date time.Time) (*models.MentorshipSession, error) {
	var session models.MentorshipSession
	id := newID()
	p, err := s.cols.Pairings.Mutate(ctx, pairingID, func(p *models.MentorshipPairing) error {
		var err error
		session, err = community.ScheduleSession(p, actorID, id, date.UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, counterpart(p, actorID), notifications.NewEvent(notifications.EventMentorshipUpdated, p))
	return &session, nil
}

// SetSessionNotes stores the actor's notes for their side of a session.
func (s *MentorshipService) SetSessionNotes(ctx context.Context, actorID, pairingID, sessionID, notes string) error {
	notes, err := validation.OptionalText("Notes", notes, maxNotesLen)
	if err != nil {
		return asValidation(err)
	}
	_, err = s.cols.Pairings.Mutate(ctx, pairingID, func(p *models.MentorshipPairing) error {
		return community.SetSessionNotes(p, actorID, sessionID, notes)
	})
	return err
}

// AddFeedback records the actor's one-time feedback on a session.
func (s *MentorshipService) AddFeedback(ctx context.Context, in FeedbackInput) (*models.MentorshipPairing, error) {
	text, err := validation.OptionalText("Feedback", in.Text, maxNotesLen)
	if err != nil {
		return nil, asValidation(err)
	}
	ts := now()
	p, err := s.cols.Pairings.Mutate(ctx, in.PairingID, func(p *models.MentorshipPairing) error {
		return community.AddFeedback(p, in.ActorID, in.SessionID, in.Rating, text, ts)
	})
	if err != nil {
		return nil, err
	}
	s.standing.refreshQuietly(ctx, p.MentorID, p.MenteeID)
	return p, nil
}

// GetPairing returns a pairing to one of its participants or a moderator.
func (s *MentorshipService) GetPairing(ctx context.Context, actorID, pairingID string) (*models.MentorshipPairing, error) {
	p, err := s.cols.Pairings.Find(ctx, pairingID)
	if err != nil {
		return nil, err
	}
	if p.Involves(actorID) {
		return p, nil
	}
	actor, err := findProfile(ctx, s.cols, actorID)
	if err != nil {
		return nil, err
	}
	if !isModerator(actor) {
		return nil, models.NewForbiddenError("Only participants can view this mentorship")
	}
	return p, nil
}

// ListPairings returns the user's pairings, most recently requested first.
func (s *MentorshipService) ListPairings(ctx context.Context, userID string) ([]models.MentorshipPairing, error) {
	all, err := s.cols.Pairings.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.MentorshipPairing{}
	for i := range all {
		if all[i].Involves(userID) {
			out = append(out, all[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.After(out[j].RequestedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SuggestMentors ranks potential partners for the user by shared skills.
func (s *MentorshipService) SuggestMentors(ctx context.Context, userID string, limit int) ([]community.MatchSuggestion, error) {
	seeker, err := ensureProfile(ctx, s.cols, userID)
	if err != nil {
		return nil, err
	}
	pool, err := s.cols.Profiles.All(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	out := community.SuggestMatches(seeker, pool)
	if out == nil {
		out = []community.MatchSuggestion{}
	}
	return paginate(out, limit, 0), nil
}
