package service

import (
	"context"
	"testing"
	"time"

	"hearth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEventValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.cols, f.standing)
	ctx := context.Background()
	start := now().Add(24 * time.Hour)

	_, err := svc.CreateEvent(ctx, CreateEventInput{OrganizerID: "ana", Title: "Meetup"})
	assertCode(t, err, models.CodeValidation)
	_, err = svc.CreateEvent(ctx, CreateEventInput{OrganizerID: "ana", Title: "Meetup", StartsAt: start, EndsAt: start.Add(-time.Minute)})
	assertCode(t, err, models.CodeValidation)
	_, err = svc.CreateEvent(ctx, CreateEventInput{OrganizerID: "ana", Title: "Meetup", StartsAt: start, GroupID: "missing"})
	assertCode(t, err, models.CodeNotFound)

	e, err := svc.CreateEvent(ctx, CreateEventInput{OrganizerID: "ana", Title: "Meetup", StartsAt: start, IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, e.OrganizerIDs)
	assert.True(t, e.EndsAt.IsZero())
}

func TestEventService_JoinAndLeave(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.cols, f.standing)
	ctx := context.Background()

	open, err := svc.CreateEvent(ctx, CreateEventInput{OrganizerID: "ana", Title: "Walk", StartsAt: now().Add(time.Hour), IsPublic: true})
	require.NoError(t, err)
	invite, err := svc.CreateEvent(ctx, CreateEventInput{OrganizerID: "ana", Title: "Dinner", StartsAt: now().Add(time.Hour)})
	require.NoError(t, err)
	past, err := svc.CreateEvent(ctx, CreateEventInput{
		OrganizerID: "ana", Title: "Yesterday", StartsAt: now().Add(-48 * time.Hour), EndsAt: now().Add(-24 * time.Hour), IsPublic: true,
	})
	require.NoError(t, err)

	e, err := svc.JoinEvent(ctx, "ben", open.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ben"}, e.ParticipantIDs)
	e, err = svc.JoinEvent(ctx, "ben", open.ID)
	require.NoError(t, err)
	assert.Len(t, e.ParticipantIDs, 1)

	_, err = svc.JoinEvent(ctx, "ben", invite.ID)
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.JoinEvent(ctx, "ben", past.ID)
	assertCode(t, err, models.CodeIllegalTransition)
	_, err = svc.LeaveEvent(ctx, "ben", past.ID)
	assertCode(t, err, models.CodeIllegalTransition)

	e, err = svc.LeaveEvent(ctx, "ben", open.ID)
	require.NoError(t, err)
	assert.Empty(t, e.ParticipantIDs)

	list, err := svc.ListEvents(ctx, "ben", true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)

	list, err = svc.ListEvents(ctx, "ana", false)
	require.NoError(t, err)
	assert.Equal(t, past.ID, list[0].ID)
	assert.Len(t, list, 3)
}

func TestEventService_ChallengeLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.cols, f.standing)
	ctx := context.Background()
	f.addProfile(t, "mod", moderator)
	start := now().Add(time.Hour)

	_, err := svc.CreateChallenge(ctx, CreateChallengeInput{OrganizerID: "ana", Title: "30 days", StartsAt: start})
	assertCode(t, err, models.CodeValidation)

	c, err := svc.CreateChallenge(ctx, CreateChallengeInput{OrganizerID: "ana", Title: "30 days", StartsAt: start, EndsAt: start.Add(30 * 24 * time.Hour), IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeUpcoming, c.Status)

	_, err = svc.JoinChallenge(ctx, "ben", c.ID)
	require.NoError(t, err)

	_, err = svc.SetChallengeStatus(ctx, "ben", c.ID, models.ChallengeActive)
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.SetChallengeStatus(ctx, "ana", c.ID, models.ChallengeCompleted)
	assertCode(t, err, models.CodeIllegalTransition)

	c, err = svc.SetChallengeStatus(ctx, "ana", c.ID, models.ChallengeActive)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeActive, c.Status)

	c, err = svc.SetChallengeStatus(ctx, "mod", c.ID, models.ChallengeCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeCompleted, c.Status)
	assert.Contains(t, f.profileOf(t, "ben").BadgeIDs, "challenge_champion")

	_, err = svc.JoinChallenge(ctx, "cy", c.ID)
	assertCode(t, err, models.CodeIllegalTransition)
	_, err = svc.LeaveChallenge(ctx, "ben", c.ID)
	assertCode(t, err, models.CodeIllegalTransition)

	list, err := svc.ListChallenges(ctx, "cy", models.ChallengeCompleted)
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = svc.ListChallenges(ctx, "cy", models.ChallengeActive)
	require.NoError(t, err)
	assert.Empty(t, list)
}
