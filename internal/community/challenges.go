package community

import "hearth/internal/models"

var challengeTransitions = map[models.ChallengeStatus][]models.ChallengeStatus{
	models.ChallengeUpcoming: {models.ChallengeActive, models.ChallengeCancelled},
	models.ChallengeActive:   {models.ChallengeCompleted, models.ChallengeCancelled},
}

// TransitionChallenge moves c to status to when the lifecycle allows it.
func TransitionChallenge(c *models.CommunityChallenge, to models.ChallengeStatus) error {
	for _, next := range challengeTransitions[c.Status] {
		if next == to {
			c.Status = to
			return nil
		}
	}
	return models.NewIllegalTransitionError("Challenge cannot move from " + string(c.Status) + " to " + string(to))
}

// ChallengeOpen reports whether participants may still join or leave.
func ChallengeOpen(c *models.CommunityChallenge) bool {
	return c.Status == models.ChallengeUpcoming || c.Status == models.ChallengeActive
}
