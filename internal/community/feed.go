package community

import (
	"fmt"
	"sort"
	"time"

	"hearth/internal/models"
)

// DefaultFeedLimit is used when BuildFeed is called without a positive limit.
const DefaultFeedLimit = 10

// FreshnessWindow bounds how old templates, events, and challenges may be to count
// as new. It applies only when the snapshot carries AsOf.
const FreshnessWindow = 30 * 24 * time.Hour

// BuildFeed merges the activity relevant to userID from snap, newest first with ties
// broken by id, truncated to limit. The user's own activity is left out.
func BuildFeed(userID string, snap *Snapshot, limit int) []models.ActivityFeedItem {
	if snap == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	b := feedBuilder{userID: userID, snap: snap, profile: snap.Profile(userID), seen: make(map[string]struct{})}

	b.groupActivity()
	b.connectionActivity()
	b.matchingTemplates()
	b.newEventsAndChallenges()

	items := b.items
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].ID < items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

type feedBuilder struct {
	userID  string
	snap    *Snapshot
	profile *models.CommunityUserProfile
	items   []models.ActivityFeedItem
	seen    map[string]struct{}
}

func (b *feedBuilder) add(item models.ActivityFeedItem) {
	if item.Actor != nil && item.Actor.ID == b.userID {
		return
	}
	if _, dup := b.seen[item.ID]; dup {
		return
	}
	b.seen[item.ID] = struct{}{}
	b.items = append(b.items, item)
}

func (b *feedBuilder) actor(id, name string) *models.FeedActor {
	if name == "" {
		name = b.snap.displayName(id)
	}
	return &models.FeedActor{ID: id, Name: name}
}

// inGroup reports whether the user belongs to groupID by either side of the membership.
func (b *feedBuilder) inGroup(groupID string) bool {
	if b.profile != nil && b.profile.HasJoined(groupID) {
		return true
	}
	g := b.snap.Group(groupID)
	return g != nil && g.IsMember(b.userID)
}

// visibleGroup reports whether content scoped to groupID may be shown to the user.
func (b *feedBuilder) visibleGroup(groupID string) bool {
	if groupID == "" || b.inGroup(groupID) {
		return true
	}
	g := b.snap.Group(groupID)
	return g != nil && !g.IsPrivate
}

func (b *feedBuilder) fresh(t time.Time) bool {
	return b.snap.AsOf.IsZero() || !t.Before(b.snap.AsOf.Add(-FreshnessWindow))
}

func hidden(status models.ModerationStatus) bool {
	return status == models.ModerationInappropriate
}

func (b *feedBuilder) groupActivity() {
	for i := range b.snap.Topics {
		t := &b.snap.Topics[i]
		if t.GroupID == "" || hidden(t.ModerationStatus) || !b.inGroup(t.GroupID) {
			continue
		}
		g := b.snap.Group(t.GroupID)
		groupName := t.GroupID
		if g != nil {
			groupName = g.Name
		}
		a := b.actor(t.AuthorID, t.AuthorName)
		b.add(models.ActivityFeedItem{
			ID:              "group_topic:" + t.ID,
			Actor:           a,
			Text:            fmt.Sprintf("%s started %q in %s", a.Name, t.Title, groupName),
			Timestamp:       t.CreatedAt,
			Link:            "/community/forum/" + t.ID,
			ContentType:     models.FeedGroupTopic,
			RelatedEntityID: t.ID,
		})
	}

	for i := range b.snap.Groups {
		g := &b.snap.Groups[i]
		if !b.inGroup(g.ID) {
			continue
		}
		for _, doc := range g.Documents {
			a := b.actor(doc.LastEditedByID, doc.LastEditedByName)
			b.add(models.ActivityFeedItem{
				ID:              "group_document:" + doc.ID,
				Actor:           a,
				Text:            fmt.Sprintf("%s updated %q in %s", a.Name, doc.Title, g.Name),
				Timestamp:       doc.LastEditedAt,
				Link:            "/community/groups/" + g.ID + "/documents/" + doc.ID,
				ContentType:     models.FeedGroupDocument,
				RelatedEntityID: g.ID,
			})
		}
	}
}

func (b *feedBuilder) connectionActivity() {
	if b.profile == nil || len(b.profile.ConnectionIDs) == 0 {
		return
	}
	for i := range b.snap.Topics {
		t := &b.snap.Topics[i]
		if hidden(t.ModerationStatus) || !b.visibleGroup(t.GroupID) {
			continue
		}
		if b.profile.IsConnectedTo(t.AuthorID) && (t.GroupID == "" || !b.inGroup(t.GroupID)) {
			a := b.actor(t.AuthorID, t.AuthorName)
			b.add(models.ActivityFeedItem{
				ID:              "topic:" + t.ID,
				Actor:           a,
				Text:            fmt.Sprintf("%s started a discussion: %s", a.Name, t.Title),
				Timestamp:       t.CreatedAt,
				Link:            "/community/forum/" + t.ID,
				ContentType:     models.FeedTopic,
				RelatedEntityID: t.ID,
			})
		}
		for _, r := range t.Replies {
			if hidden(r.ModerationStatus) || !b.profile.IsConnectedTo(r.AuthorID) {
				continue
			}
			a := b.actor(r.AuthorID, r.AuthorName)
			b.add(models.ActivityFeedItem{
				ID:              "reply:" + r.ID,
				Actor:           a,
				Text:            fmt.Sprintf("%s replied to %s", a.Name, t.Title),
				Timestamp:       r.CreatedAt,
				Link:            "/community/forum/" + t.ID + "#" + r.ID,
				ContentType:     models.FeedReply,
				RelatedEntityID: t.ID,
			})
		}
	}
}

func (b *feedBuilder) matchingTemplates() {
	if b.profile == nil || len(b.profile.Interests) == 0 {
		return
	}
	for i := range b.snap.Templates {
		t := &b.snap.Templates[i]
		if t.Status != models.TemplateApproved {
			continue
		}
		published := t.SubmittedAt
		if t.ReviewedAt != nil {
			published = *t.ReviewedAt
		}
		if !b.fresh(published) {
			continue
		}
		matches := sharedTerms(b.profile.Interests, t.Tags)
		if len(matches) == 0 {
			continue
		}
		b.add(models.ActivityFeedItem{
			ID:              "template:" + t.ID,
			Actor:           b.actor(t.AuthorID, t.AuthorName),
			Text:            fmt.Sprintf("New template matching your interest in %s: %s", matches[0], t.Title),
			Timestamp:       published,
			Link:            "/community/templates/" + t.ID,
			ContentType:     models.FeedTemplate,
			RelatedEntityID: t.ID,
		})
	}
}

func (b *feedBuilder) newEventsAndChallenges() {
	for i := range b.snap.Events {
		e := &b.snap.Events[i]
		if !b.fresh(e.CreatedAt) || !b.eventVisible(e.IsPublic, e.GroupID, e.OrganizerIDs, e.ParticipantIDs) {
			continue
		}
		b.add(models.ActivityFeedItem{
			ID:              "event:" + e.ID,
			Actor:           b.organizer(e.OrganizerIDs),
			Text:            "New event: " + e.Title,
			Timestamp:       e.CreatedAt,
			Link:            "/community/events/" + e.ID,
			ContentType:     models.FeedEvent,
			RelatedEntityID: e.ID,
		})
	}
	for i := range b.snap.Challenges {
		c := &b.snap.Challenges[i]
		if c.Status == models.ChallengeCancelled || !b.fresh(c.CreatedAt) {
			continue
		}
		if !b.eventVisible(c.IsPublic, c.GroupID, c.OrganizerIDs, c.ParticipantIDs) {
			continue
		}
		b.add(models.ActivityFeedItem{
			ID:              "challenge:" + c.ID,
			Actor:           b.organizer(c.OrganizerIDs),
			Text:            "New challenge: " + c.Title,
			Timestamp:       c.CreatedAt,
			Link:            "/community/challenges/" + c.ID,
			ContentType:     models.FeedChallenge,
			RelatedEntityID: c.ID,
		})
	}
}

func (b *feedBuilder) eventVisible(public bool, groupID string, organizers, participants []string) bool {
	if public || (groupID != "" && b.inGroup(groupID)) {
		return true
	}
	for _, id := range organizers {
		if id == b.userID {
			return true
		}
	}
	for _, id := range participants {
		if id == b.userID {
			return true
		}
	}
	return false
}

func (b *feedBuilder) organizer(ids []string) *models.FeedActor {
	if len(ids) == 0 {
		return nil
	}
	return b.actor(ids[0], "")
}
