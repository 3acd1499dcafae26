package community

import "hearth/internal/models"

// BadgeRule pairs a badge with the predicate that earns it.
type BadgeRule struct {
	Badge  models.CommunityBadge
	Earned func(score int, c ActivityCounters) bool
}

// Catalog lists every badge in award-evaluation order.
var Catalog = []BadgeRule{
	{
		Badge: models.CommunityBadge{ID: "first_topic", Name: "First Spark", Description: "Started a first discussion.", Criteria: "Author at least one topic", Icon: "spark"},
		Earned: func(_ int, c ActivityCounters) bool {
			return c.TopicsAuthored >= 1
		},
	},
	{
		Badge: models.CommunityBadge{ID: "conversationalist", Name: "Conversationalist", Description: "Keeps discussions moving.", Criteria: "Write at least 10 replies", Icon: "chat"},
		Earned: func(_ int, c ActivityCounters) bool {
			return c.RepliesAuthored >= 10
		},
	},
	{
		Badge: models.CommunityBadge{ID: "helpful_voice", Name: "Helpful Voice", Description: "Contributions the community values.", Criteria: "Receive at least 25 upvotes", Icon: "thumbs-up"},
		Earned: func(_ int, c ActivityCounters) bool {
			return c.UpvotesReceived >= 25
		},
	},
	{
		Badge: models.CommunityBadge{ID: "template_author", Name: "Template Author", Description: "Shared a routine others can use.", Criteria: "Have at least one approved template", Icon: "template"},
		Earned: func(_ int, c ActivityCounters) bool {
			return c.ApprovedTemplates >= 1
		},
	},
	{
		Badge: models.CommunityBadge{ID: "event_goer", Name: "Event Goer", Description: "Shows up for the community.", Criteria: "Attend at least 3 events", Icon: "calendar"},
		Earned: func(_ int, c ActivityCounters) bool {
			return c.EventsAttended >= 3
		},
	},
	{
		Badge: models.CommunityBadge{ID: "challenge_champion", Name: "Challenge Champion", Description: "Saw a challenge through to the end.", Criteria: "Complete at least one challenge", Icon: "trophy"},
		Earned: func(_ int, c ActivityCounters) bool {
			return c.ChallengesCompleted >= 1
		},
	},
	{
		Badge: models.CommunityBadge{ID: "mentor_milestone", Name: "Mentorship Milestone", Description: "Took part in a reviewed mentorship session.", Criteria: "Complete at least one mentorship session", Icon: "handshake"},
		Earned: func(_ int, c ActivityCounters) bool {
			return c.CompletedSessions >= 1
		},
	},
	{
		Badge: models.CommunityBadge{ID: "rising_star", Name: "Rising Star", Description: "A growing presence in the community.", Criteria: "Reach a reputation of 100", Icon: "star"},
		Earned: func(score int, _ ActivityCounters) bool {
			return score >= 100
		},
	},
	{
		Badge: models.CommunityBadge{ID: "community_pillar", Name: "Community Pillar", Description: "One of the community's cornerstones.", Criteria: "Reach a reputation of 500", Icon: "pillar"},
		Earned: func(score int, _ ActivityCounters) bool {
			return score >= 500
		},
	},
}

// BadgeByID looks up a catalog badge.
func BadgeByID(id string) (models.CommunityBadge, bool) {
	for _, r := range Catalog {
		if r.Badge.ID == id {
			return r.Badge, true
		}
	}
	return models.CommunityBadge{}, false
}

// Evaluate returns current plus every badge whose criterion now holds. Existing badges
// keep their order and are never removed, duplicates collapse, and new badges follow
// in catalog order.
func Evaluate(score int, c ActivityCounters, current []string) []string {
	held := make(map[string]struct{}, len(current))
	out := make([]string, 0, len(current)+len(Catalog))
	for _, id := range current {
		if _, dup := held[id]; dup || id == "" {
			continue
		}
		held[id] = struct{}{}
		out = append(out, id)
	}
	for _, r := range Catalog {
		if _, ok := held[r.Badge.ID]; ok {
			continue
		}
		if r.Earned(score, c) {
			held[r.Badge.ID] = struct{}{}
			out = append(out, r.Badge.ID)
		}
	}
	return out
}

// Added returns the ids present in after but not in before.
func Added(before, after []string) []string {
	had := make(map[string]struct{}, len(before))
	for _, id := range before {
		had[id] = struct{}{}
	}
	var out []string
	for _, id := range after {
		if _, ok := had[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Badges resolves ids to catalog entries, skipping unknown ids.
func Badges(ids []string) []models.CommunityBadge {
	out := make([]models.CommunityBadge, 0, len(ids))
	for _, id := range ids {
		if b, ok := BadgeByID(id); ok {
			out = append(out, b)
		}
	}
	return out
}
