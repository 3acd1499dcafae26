package service

import (
	"context"
	"sort"
	"time"

	"hearth/internal/community"
	"hearth/internal/models"
	"hearth/internal/repository"
	"hearth/internal/validation"
)

const maxLocationNameLen = 200

// EventService runs community events and challenges.
type EventService struct {
	cols     *repository.Collections
	standing *StandingService
}

type CreateEventInput struct {
	OrganizerID string
	GroupID     string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Location    string
	IsPublic    bool
}

type CreateChallengeInput struct {
	OrganizerID string
	GroupID     string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	IsPublic    bool
}

func NewEventService(cols *repository.Collections, standing *StandingService) *EventService {
	return &EventService{cols: cols, standing: standing}
}

type scheduled struct {
	title, desc string
	groupID     string
}

func (s *EventService) validateScheduled(ctx context.Context, organizerID, groupID, title, desc string, startsAt, endsAt time.Time, needEnd bool) (scheduled, error) {
	var out scheduled
	var err error
	if out.title, err = validation.RequiredText("Title", title, validation.MaxTitleLen); err != nil {
		return out, asValidation(err)
	}
	if out.desc, err = validation.OptionalText("Description", desc, maxDescriptionLen); err != nil {
		return out, asValidation(err)
	}
	if startsAt.IsZero() {
		return out, models.NewValidationError("Start time is required")
	}
	if needEnd && endsAt.IsZero() {
		return out, models.NewValidationError("End time is required")
	}
	if !endsAt.IsZero() && endsAt.Before(startsAt) {
		return out, models.NewValidationError("End time must not be before start time")
	}
	if _, err := ensureProfile(ctx, s.cols, organizerID); err != nil {
		return out, err
	}
	if groupID != "" {
		g, err := s.cols.Groups.Find(ctx, groupID)
		if err != nil {
			return out, err
		}
		if !g.IsMember(organizerID) {
			return out, models.NewForbiddenError("Only group members can organize for this group")
		}
	}
	out.groupID = groupID
	return out, nil
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.CommunityEvent, error) {
	v, err := s.validateScheduled(ctx, in.OrganizerID, in.GroupID, in.Title, in.Description, in.StartsAt, in.EndsAt, false)
	if err != nil {
		return nil, err
	}
	location, err := validation.OptionalText("Location", in.Location, maxLocationNameLen)
	if err != nil {
		return nil, asValidation(err)
	}
	e := models.CommunityEvent{
		ID:           newID(),
		GroupID:      v.groupID,
		Title:        v.title,
		Description:  v.desc,
		StartsAt:     in.StartsAt.UTC(),
		Location:     location,
		OrganizerIDs: []string{in.OrganizerID},
		IsPublic:     in.IsPublic,
		CreatedAt:    now(),
	}
	if !in.EndsAt.IsZero() {
		e.EndsAt = in.EndsAt.UTC()
	}
	if err := s.cols.Events.Insert(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

func eventEnd(e *models.CommunityEvent) time.Time {
	if e.EndsAt.IsZero() {
		return e.StartsAt
	}
	return e.EndsAt
}

// JoinEvent registers the user for an event that has not ended yet. Joining twice is a no-op.
func (s *EventService) JoinEvent(ctx context.Context, userID, eventID string) (*models.CommunityEvent, error) {
	if _, err := ensureProfile(ctx, s.cols, userID); err != nil {
		return nil, err
	}
	groups, err := groupIndex(ctx, s.cols)
	if err != nil {
		return nil, err
	}
	ts := now()
	return s.cols.Events.Mutate(ctx, eventID, func(e *models.CommunityEvent) error {
		if !visibleTo(userID, e.IsPublic, e.GroupID, e.OrganizerIDs, e.ParticipantIDs, groups) {
			return models.NewForbiddenError("This event is not open to you")
		}
		if eventEnd(e).Before(ts) {
			return models.NewIllegalTransitionError("Event has already ended")
		}
		e.ParticipantIDs = appendUnique(e.ParticipantIDs, userID)
		return nil
	})
}

// LeaveEvent withdraws the user. Attendance of a finished event is final.
func (s *EventService) LeaveEvent(ctx context.Context, userID, eventID string) (*models.CommunityEvent, error) {
	ts := now()
	return s.cols.Events.Mutate(ctx, eventID, func(e *models.CommunityEvent) error {
		if eventEnd(e).Before(ts) {
			return models.NewIllegalTransitionError("Event has already ended")
		}
		e.ParticipantIDs = removeString(e.ParticipantIDs, userID)
		return nil
	})
}

// ListEvents returns events visible to the viewer by start time. With upcomingOnly
// finished events are left out.
func (s *EventService) ListEvents(ctx context.Context, viewerID string, upcomingOnly bool) ([]models.CommunityEvent, error) {
	events, err := s.cols.Events.All(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := groupIndex(ctx, s.cols)
	if err != nil {
		return nil, err
	}
	ts := now()
	out := []models.CommunityEvent{}
	for i := range events {
		e := &events[i]
		if upcomingOnly && eventEnd(e).Before(ts) {
			continue
		}
		if visibleTo(viewerID, e.IsPublic, e.GroupID, e.OrganizerIDs, e.ParticipantIDs, groups) {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *EventService) CreateChallenge(ctx context.Context, in CreateChallengeInput) (*models.CommunityChallenge, error) {
	v, err := s.validateScheduled(ctx, in.OrganizerID, in.GroupID, in.Title, in.Description, in.StartsAt, in.EndsAt, true)
	if err != nil {
		return nil, err
	}
	c := models.CommunityChallenge{
		ID:           newID(),
		GroupID:      v.groupID,
		Title:        v.title,
		Description:  v.desc,
		StartsAt:     in.StartsAt.UTC(),
		EndsAt:       in.EndsAt.UTC(),
		OrganizerIDs: []string{in.OrganizerID},
		IsPublic:     in.IsPublic,
		Status:       models.ChallengeUpcoming,
		CreatedAt:    now(),
	}
	if err := s.cols.Challenges.Insert(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *EventService) JoinChallenge(ctx context.Context, userID, challengeID string) (*models.CommunityChallenge, error) {
	if _, err := ensureProfile(ctx, s.cols, userID); err != nil {
		return nil, err
	}
	groups, err := groupIndex(ctx, s.cols)
	if err != nil {
		return nil, err
	}
	return s.cols.Challenges.Mutate(ctx, challengeID, func(c *models.CommunityChallenge) error {
		if !visibleTo(userID, c.IsPublic, c.GroupID, c.OrganizerIDs, c.ParticipantIDs, groups) {
			return models.NewForbiddenError("This challenge is not open to you")
		}
		if !community.ChallengeOpen(c) {
			return models.NewIllegalTransitionError("Challenge is " + string(c.Status))
		}
		c.ParticipantIDs = appendUnique(c.ParticipantIDs, userID)
		return nil
	})
}

func (s *EventService) LeaveChallenge(ctx context.Context, userID, challengeID string) (*models.CommunityChallenge, error) {
	return s.cols.Challenges.Mutate(ctx, challengeID, func(c *models.CommunityChallenge) error {
		if !community.ChallengeOpen(c) {
			return models.NewIllegalTransitionError("Challenge is " + string(c.Status))
		}
		c.ParticipantIDs = removeString(c.ParticipantIDs, userID)
		return nil
	})
}

// SetChallengeStatus moves a challenge through its lifecycle. Organizers and moderators
// may do this; completing a challenge credits every participant.
func (s *EventService) SetChallengeStatus(ctx context.Context, actorID, challengeID string, to models.ChallengeStatus) (*models.CommunityChallenge, error) {
	actor, err := findProfile(ctx, s.cols, actorID)
	if err != nil {
		return nil, err
	}
	c, err := s.cols.Challenges.Mutate(ctx, challengeID, func(c *models.CommunityChallenge) error {
		if !c.IsOrganizer(actorID) && !isModerator(actor) {
			return models.NewForbiddenError("Only organizers can change this challenge")
		}
		return community.TransitionChallenge(c, to)
	})
	if err != nil {
		return nil, err
	}
	if c.Status == models.ChallengeCompleted {
		s.standing.refreshQuietly(ctx, c.ParticipantIDs...)
	}
	return c, nil
}

// ListChallenges returns visible challenges by start time, optionally filtered by status.
func (s *EventService) ListChallenges(ctx context.Context, viewerID string, status models.ChallengeStatus) ([]models.CommunityChallenge, error) {
	challenges, err := s.cols.Challenges.All(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := groupIndex(ctx, s.cols)
	if err != nil {
		return nil, err
	}
	out := []models.CommunityChallenge{}
	for i := range challenges {
		c := &challenges[i]
		if status != "" && c.Status != status {
			continue
		}
		if visibleTo(viewerID, c.IsPublic, c.GroupID, c.OrganizerIDs, c.ParticipantIDs, groups) {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// visibleTo reports whether an event or challenge is open to userID: public ones are,
// group ones are for members, and anything is for its organizers and participants.
func visibleTo(userID string, public bool, groupID string, organizers, participants []string, groups map[string]*models.Group) bool {
	if public {
		return true
	}
	if g, ok := groups[groupID]; ok && g.IsMember(userID) {
		return true
	}
	for _, id := range organizers {
		if id == userID {
			return true
		}
	}
	for _, id := range participants {
		if id == userID {
			return true
		}
	}
	return false
}
