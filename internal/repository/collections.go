package repository

import (
	"context"
	"time"

	"hearth/internal/community"
	"hearth/internal/docstore"
	"hearth/internal/models"

	"golang.org/x/sync/errgroup"
)

// Document keys. The version prefix changes whenever the stored shape does.
const (
	KeyProfiles   = "v1:profiles"
	KeyTopics     = "v1:topics"
	KeyGroups     = "v1:groups"
	KeyTemplates  = "v1:templates"
	KeyEvents     = "v1:events"
	KeyChallenges = "v1:challenges"
	KeyPairings   = "v1:pairings"
)

// Collections groups every entity collection of the community engine.
type Collections struct {
	Profiles   *Collection[models.CommunityUserProfile]
	Topics     *Collection[models.ForumTopic]
	Groups     *Collection[models.Group]
	Templates  *Collection[models.UserTemplate]
	Events     *Collection[models.CommunityEvent]
	Challenges *Collection[models.CommunityChallenge]
	Pairings   *Collection[models.MentorshipPairing]
}

// NewCollections binds all collections to store.
func NewCollections(store docstore.Store) *Collections {
	return &Collections{
		Profiles:   NewCollection(store, KeyProfiles, "Profile", func(p *models.CommunityUserProfile) string { return p.ID }),
		Topics:     NewCollection(store, KeyTopics, "Topic", func(t *models.ForumTopic) string { return t.ID }),
		Groups:     NewCollection(store, KeyGroups, "Group", func(g *models.Group) string { return g.ID }),
		Templates:  NewCollection(store, KeyTemplates, "Template", func(t *models.UserTemplate) string { return t.ID }),
		Events:     NewCollection(store, KeyEvents, "Event", func(e *models.CommunityEvent) string { return e.ID }),
		Challenges: NewCollection(store, KeyChallenges, "Challenge", func(c *models.CommunityChallenge) string { return c.ID }),
		Pairings:   NewCollection(store, KeyPairings, "Mentorship", func(p *models.MentorshipPairing) string { return p.ID }),
	}
}

// LoadSnapshot reads every collection concurrently.
func (c *Collections) LoadSnapshot(ctx context.Context, asOf time.Time) (*community.Snapshot, error) {
	snap := &community.Snapshot{AsOf: asOf}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { snap.Profiles, err = c.Profiles.All(ctx); return })
	g.Go(func() (err error) { snap.Topics, err = c.Topics.All(ctx); return })
	g.Go(func() (err error) { snap.Groups, err = c.Groups.All(ctx); return })
	g.Go(func() (err error) { snap.Templates, err = c.Templates.All(ctx); return })
	g.Go(func() (err error) { snap.Events, err = c.Events.All(ctx); return })
	g.Go(func() (err error) { snap.Challenges, err = c.Challenges.All(ctx); return })
	g.Go(func() (err error) { snap.Pairings, err = c.Pairings.All(ctx); return })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Reset empties every collection.
func (c *Collections) Reset(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Profiles.Clear(ctx) })
	g.Go(func() error { return c.Topics.Clear(ctx) })
	g.Go(func() error { return c.Groups.Clear(ctx) })
	g.Go(func() error { return c.Templates.Clear(ctx) })
	g.Go(func() error { return c.Events.Clear(ctx) })
	g.Go(func() error { return c.Challenges.Clear(ctx) })
	g.Go(func() error { return c.Pairings.Clear(ctx) })
	return g.Wait()
}
