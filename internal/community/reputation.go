package community

import (
	"math"
	"sort"

	"hearth/internal/models"
)

// ActivityCounters summarizes what a user has done in a snapshot.
type ActivityCounters struct {
	TopicsAuthored      int `json:"topics_authored"`
	RepliesAuthored     int `json:"replies_authored"`
	UpvotesReceived     int `json:"upvotes_received"`
	DownvotesReceived   int `json:"downvotes_received"`
	ApprovedTemplates   int `json:"approved_templates"`
	EventsAttended      int `json:"events_attended"`
	ChallengesCompleted int `json:"challenges_completed"`
	ActivePairings      int `json:"active_pairings"`
	CompletedSessions   int `json:"completed_sessions"`
}

// Weights are the per-activity reputation contributions.
type Weights struct {
	Topic              float64
	UpvoteReceived     float64
	DownvoteReceived   float64
	Reply              float64
	ApprovedTemplate   float64
	EventAttended      float64
	ChallengeCompleted float64
	ActivePairing      float64
}

// DefaultWeights is the standard scoring table.
var DefaultWeights = Weights{
	Topic:              10,
	UpvoteReceived:     1,
	DownvoteReceived:   -0.5,
	Reply:              2,
	ApprovedTemplate:   20,
	EventAttended:      5,
	ChallengeCompleted: 15,
	ActivePairing:      25,
}

// CountActivity derives userID's counters from snap.
func CountActivity(userID string, snap *Snapshot) ActivityCounters {
	var c ActivityCounters
	if userID == "" || snap == nil {
		return c
	}

	for i := range snap.Topics {
		t := &snap.Topics[i]
		if t.AuthorID == userID {
			c.TopicsAuthored++
			c.UpvotesReceived += t.Upvotes
			c.DownvotesReceived += t.Downvotes
		}
		for j := range t.Replies {
			r := &t.Replies[j]
			if r.AuthorID != userID {
				continue
			}
			c.RepliesAuthored++
			c.UpvotesReceived += r.Upvotes
			c.DownvotesReceived += r.Downvotes
		}
	}

	for i := range snap.Templates {
		if t := &snap.Templates[i]; t.AuthorID == userID && t.Status == models.TemplateApproved {
			c.ApprovedTemplates++
		}
	}

	for i := range snap.Events {
		e := &snap.Events[i]
		if e.HasParticipant(userID) && attended(e, snap) {
			c.EventsAttended++
		}
	}

	for i := range snap.Challenges {
		ch := &snap.Challenges[i]
		if ch.Status == models.ChallengeCompleted && ch.HasParticipant(userID) {
			c.ChallengesCompleted++
		}
	}

	for i := range snap.Pairings {
		p := &snap.Pairings[i]
		if !p.Involves(userID) {
			continue
		}
		if p.Status == models.PairingActive {
			c.ActivePairings++
		}
		for j := range p.Sessions {
			if p.Sessions[j].HasFeedback() {
				c.CompletedSessions++
			}
		}
	}

	return c
}

// attended reports whether the event has taken place by the snapshot instant.
// A snapshot without AsOf counts every joined event.
func attended(e *models.CommunityEvent, snap *Snapshot) bool {
	if snap.AsOf.IsZero() {
		return true
	}
	end := e.EndsAt
	if end.IsZero() {
		end = e.StartsAt
	}
	return !end.After(snap.AsOf)
}

// Breakdown returns each category's contribution and the raw total.
func (w Weights) Breakdown(c ActivityCounters) models.ReputationBreakdown {
	b := models.ReputationBreakdown{
		Topics:        float64(c.TopicsAuthored) * w.Topic,
		Replies:       float64(c.RepliesAuthored) * w.Reply,
		VotesReceived: float64(c.UpvotesReceived)*w.UpvoteReceived + float64(c.DownvotesReceived)*w.DownvoteReceived,
		Templates:     float64(c.ApprovedTemplates) * w.ApprovedTemplate,
		Events:        float64(c.EventsAttended) * w.EventAttended,
		Challenges:    float64(c.ChallengesCompleted) * w.ChallengeCompleted,
		Mentorships:   float64(c.ActivePairings) * w.ActivePairing,
	}
	b.Total = b.Topics + b.Replies + b.VotesReceived + b.Templates + b.Events + b.Challenges + b.Mentorships
	return b
}

// Score floors the weighted total and clamps it at zero.
func (w Weights) Score(c ActivityCounters) int {
	total := w.Breakdown(c).Total
	if total <= 0 {
		return 0
	}
	return int(math.Floor(total))
}

// ComputeScore is userID's reputation in snap under DefaultWeights.
func ComputeScore(userID string, snap *Snapshot) int {
	return DefaultWeights.Score(CountActivity(userID, snap))
}

// Tier is a named reputation level starting at MinScore.
type Tier struct {
	MinScore int
	Name     string
}

// Tiers are ordered by ascending MinScore; the first starts at zero.
var Tiers = []Tier{
	{MinScore: 0, Name: "Newcomer"},
	{MinScore: 20, Name: "Contributor"},
	{MinScore: 100, Name: "Regular"},
	{MinScore: 250, Name: "Expert"},
	{MinScore: 500, Name: "Luminary"},
}

// LevelName maps a score to its tier. Scores below zero map to the first tier.
func LevelName(score int) string {
	i := sort.Search(len(Tiers), func(i int) bool { return Tiers[i].MinScore > score })
	if i == 0 {
		return Tiers[0].Name
	}
	return Tiers[i-1].Name
}

// Standing is a user's derived reputation state.
type Standing struct {
	Counters  ActivityCounters
	Breakdown models.ReputationBreakdown
	Score     int
	Level     string
}

// ComputeStanding derives the full standing of userID in snap.
func ComputeStanding(userID string, snap *Snapshot) Standing {
	c := CountActivity(userID, snap)
	score := DefaultWeights.Score(c)
	return Standing{
		Counters:  c,
		Breakdown: DefaultWeights.Breakdown(c),
		Score:     score,
		Level:     LevelName(score),
	}
}
