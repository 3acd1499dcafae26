package service

import (
	"context"
	"testing"
	"time"

	"hearth/internal/models"
	"hearth/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mentor(skills ...string) func(*models.CommunityUserProfile) {
	return func(p *models.CommunityUserProfile) {
		p.MentorshipRole = models.MentorshipRoleMentor
		p.MentoringSkills = skills
	}
}

func TestMentorshipService_RequestAndAccept(t *testing.T) {
	f := newFixture(t)
	svc := NewMentorshipService(f.cols, f.standing, f.events)
	ctx := context.Background()
	f.addProfile(t, "mia", mentor("Public speaking"))
	f.addProfile(t, "ned")

	_, err := svc.RequestMentorship(ctx, RequestMentorshipInput{MenteeID: "ned", MentorID: "ghost", Skill: "x"})
	assertCode(t, err, models.CodeNotFound)
	_, err = svc.RequestMentorship(ctx, RequestMentorshipInput{MenteeID: "mia", MentorID: "ned", Skill: "x"})
	assertCode(t, err, models.CodeValidation)
	_, err = svc.RequestMentorship(ctx, RequestMentorshipInput{MenteeID: "ned", MentorID: "mia"})
	assertCode(t, err, models.CodeValidation)

	p, err := svc.RequestMentorship(ctx, RequestMentorshipInput{MenteeID: "ned", MentorID: "mia", Skill: "Public speaking"})
	require.NoError(t, err)
	assert.Equal(t, models.PairingRequested, p.Status)
	assert.Len(t, f.events.sentTo("mia", notifications.EventMentorshipRequested), 1)

	_, err = svc.RequestMentorship(ctx, RequestMentorshipInput{MenteeID: "ned", MentorID: "mia", Skill: "Again"})
	assertCode(t, err, models.CodeConflict)

	_, err = svc.AcceptMentorship(ctx, "ned", p.ID)
	assertCode(t, err, models.CodeForbidden)

	p, err = svc.AcceptMentorship(ctx, "mia", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PairingActive, p.Status)
	require.NotNil(t, p.StartDate)
	assert.Len(t, f.events.sentTo("ned", notifications.EventMentorshipUpdated), 1)

	v, err := f.standing.View(ctx, "mia")
	require.NoError(t, err)
	assert.Equal(t, 25, v.ReputationScore)
	assert.Equal(t, "Contributor", v.CommunityLevelName)

	_, err = svc.AcceptMentorship(ctx, "mia", p.ID)
	assertCode(t, err, models.CodeIllegalTransition)
}

func TestMentorshipService_SessionsAndFeedback(t *testing.T) {
	f := newFixture(t)
	svc := NewMentorshipService(f.cols, f.standing, f.events)
	ctx := context.Background()
	f.addProfile(t, "mia", mentor("Go"))
	f.addProfile(t, "ned")

	p, err := svc.RequestMentorship(ctx, RequestMentorshipInput{MenteeID: "ned", MentorID: "mia", Skill: "Go"})
	require.NoError(t, err)

	_, err = svc.ScheduleSession(ctx, "ned", p.ID, now().Add(time.Hour))
	assertCode(t, err, models.CodeIllegalTransition)

	_, err = svc.AcceptMentorship(ctx, "mia", p.ID)
	require.NoError(t, err)

	_, err = svc.ScheduleSession(ctx, "ned", p.ID, time.Time{})
	assertCode(t, err, models.CodeValidation)
	_, err = svc.ScheduleSession(ctx, "zed", p.ID, now())
	assertCode(t, err, models.CodeForbidden)

	session, err := svc.ScheduleSession(ctx, "ned", p.ID, now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, svc.SetSessionNotes(ctx, "mia", p.ID, session.ID, "Covered interfaces"))
	assertCode(t, svc.SetSessionNotes(ctx, "mia", p.ID, "missing", "x"), models.CodeNotFound)

	_, err = svc.AddFeedback(ctx, FeedbackInput{ActorID: "ned", PairingID: p.ID, SessionID: session.ID, Rating: 9})
	assertCode(t, err, models.CodeValidation)

	got, err := svc.AddFeedback(ctx, FeedbackInput{ActorID: "ned", PairingID: p.ID, SessionID: session.ID, Rating: 5, Text: "Great"})
	require.NoError(t, err)
	require.Len(t, got.Sessions, 1)
	assert.Equal(t, "Covered interfaces", got.Sessions[0].MentorNotes)
	require.NotNil(t, got.Sessions[0].MenteeFeedback)
	assert.Equal(t, 5, got.Sessions[0].MenteeFeedback.Rating)
	assert.Contains(t, f.profileOf(t, "mia").BadgeIDs, "mentor_milestone")
	assert.Contains(t, f.profileOf(t, "ned").BadgeIDs, "mentor_milestone")

	_, err = svc.AddFeedback(ctx, FeedbackInput{ActorID: "ned", PairingID: p.ID, SessionID: session.ID, Rating: 4})
	assertCode(t, err, models.CodeIllegalTransition)

	got, err = svc.CompleteMentorship(ctx, "ned", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PairingCompleted, got.Status)
	_, err = svc.ScheduleSession(ctx, "ned", p.ID, now())
	assertCode(t, err, models.CodeIllegalTransition)
	_, err = svc.DeclineMentorship(ctx, "mia", p.ID)
	assertCode(t, err, models.CodeIllegalTransition)

	// A finished pairing frees the pair to start again.
	again, err := svc.RequestMentorship(ctx, RequestMentorshipInput{MenteeID: "ned", MentorID: "mia", Skill: "Go"})
	require.NoError(t, err)
	declined, err := svc.DeclineMentorship(ctx, "mia", again.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PairingDeclined, declined.Status)

	list, err := svc.ListPairings(ctx, "ned")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.GetPairing(ctx, "zed", p.ID)
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.GetPairing(ctx, "mia", p.ID)
	require.NoError(t, err)
}

func TestMentorshipService_SuggestMentors(t *testing.T) {
	f := newFixture(t)
	svc := NewMentorshipService(f.cols, f.standing, f.events)
	ctx := context.Background()
	f.addProfile(t, "seeker", func(p *models.CommunityUserProfile) {
		p.MentorshipRole = models.MentorshipRoleMentee
		p.SeekingSkills = []string{"Go", "Public Speaking"}
	})
	f.addProfile(t, "m3", mentor("Cooking"))
	f.addProfile(t, "m2", mentor("go"))
	f.addProfile(t, "m1", mentor("public speaking", "GO"))
	f.addProfile(t, "other-mentee", func(p *models.CommunityUserProfile) { p.MentorshipRole = models.MentorshipRoleMentee })

	got, err := svc.SuggestMentors(ctx, "seeker", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "m1", got[0].Profile.ID)
	assert.Equal(t, []string{"Go", "Public Speaking"}, got[0].SharedSkills)
	assert.Equal(t, "m2", got[1].Profile.ID)
	assert.Equal(t, "m3", got[2].Profile.ID)

	got, err = svc.SuggestMentors(ctx, "seeker", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
