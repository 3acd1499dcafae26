// Package community implements the deterministic community engine: vote tallies,
// moderation scanning, reputation and badges, mentorship pairing, group collaboration,
// and activity feeds. Functions here are pure over their inputs; persistence and
// concurrency belong to the callers.
package community

import (
	"strings"

	"hearth/internal/models"
)

// CastVote records userID's vote on t. Re-casting the same direction is a no-op,
// switching moves the vote, and VoteNone revokes it. It reports whether t changed.
func CastVote(t *models.VoteTally, userID string, dir models.VoteDirection) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, models.NewValidationError("Voter is required")
	}
	if !dir.Valid() {
		return false, models.NewValidationError("Vote must be one of up, down, none")
	}

	prior, had := t.Votes[userID]
	if dir == models.VoteNone {
		if !had {
			return false, nil
		}
		retract(t, prior)
		delete(t.Votes, userID)
		if len(t.Votes) == 0 {
			t.Votes = nil
		}
		return true, nil
	}
	if had && prior == dir {
		return false, nil
	}

	if had {
		retract(t, prior)
	}
	switch dir {
	case models.VoteUp:
		t.Upvotes++
	case models.VoteDown:
		t.Downvotes++
	}
	if t.Votes == nil {
		t.Votes = make(map[string]models.VoteDirection)
	}
	t.Votes[userID] = dir
	return true, nil
}

func retract(t *models.VoteTally, dir models.VoteDirection) {
	switch dir {
	case models.VoteUp:
		if t.Upvotes > 0 {
			t.Upvotes--
		}
	case models.VoteDown:
		if t.Downvotes > 0 {
			t.Downvotes--
		}
	}
}

// Recount rebuilds the aggregate counts from the per-user records, dropping invalid entries.
func Recount(t *models.VoteTally) {
	t.Upvotes, t.Downvotes = 0, 0
	for user, dir := range t.Votes {
		switch dir {
		case models.VoteUp:
			t.Upvotes++
		case models.VoteDown:
			t.Downvotes++
		default:
			delete(t.Votes, user)
		}
	}
}
