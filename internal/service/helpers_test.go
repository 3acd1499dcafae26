package service

import (
	"context"
	"sync"
	"testing"

	"hearth/internal/community"
	"hearth/internal/docstore"
	"hearth/internal/models"
	"hearth/internal/notifications"
	"hearth/internal/repository"

	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	UserID string
	Event  notifications.Event
}

// recordingPublisher is a stub EventPublisher that keeps every event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingPublisher) PublishUser(_ context.Context, userID string, ev notifications.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{UserID: userID, Event: ev})
	return nil
}

func (r *recordingPublisher) sentTo(userID, eventType string) []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notifications.Event
	for _, e := range r.events {
		if e.UserID == userID && e.Event.Type == eventType {
			out = append(out, e.Event)
		}
	}
	return out
}

type fixture struct {
	cols     *repository.Collections
	events   *recordingPublisher
	standing *StandingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cols := repository.NewCollections(docstore.NewMemoryStore())
	events := &recordingPublisher{}
	return &fixture{cols: cols, events: events, standing: NewStandingService(cols, events, nil)}
}

func (f *fixture) addProfile(t *testing.T, id string, edit ...func(*models.CommunityUserProfile)) {
	t.Helper()
	p := models.CommunityUserProfile{ID: id, DisplayName: "User " + id, MentorshipRole: models.MentorshipRoleNone, CreatedAt: now()}
	for _, fn := range edit {
		fn(&p)
	}
	require.NoError(t, f.cols.Profiles.Insert(context.Background(), p))
}

func (f *fixture) forum() *ForumService {
	return NewForumService(f.cols, community.NewKeywordScanner(community.RulesFromTerms([]string{"scam"})), f.standing, f.events)
}

func (f *fixture) profileOf(t *testing.T, id string) *models.CommunityUserProfile {
	t.Helper()
	p, err := f.cols.Profiles.Find(context.Background(), id)
	require.NoError(t, err)
	return p
}

func moderator(p *models.CommunityUserProfile) { p.IsModerator = true }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int { return &i }
