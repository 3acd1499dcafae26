package models

import "time"

// CommunityEvent is a scheduled gathering.
type CommunityEvent struct {
	ID             string    `json:"id"`
	GroupID        string    `json:"group_id,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Location       string    `json:"location,omitempty"`
	OrganizerIDs   []string  `json:"organizer_ids"`
	ParticipantIDs []string  `json:"participant_ids,omitempty"`
	IsPublic       bool      `json:"is_public"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasParticipant reports whether userID joined the event.
func (e *CommunityEvent) HasParticipant(userID string) bool {
	return containsString(e.ParticipantIDs, userID)
}

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengeUpcoming  ChallengeStatus = "upcoming"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeCancelled ChallengeStatus = "cancelled"
)

// CommunityChallenge is a time-boxed collective goal.
type CommunityChallenge struct {
	ID             string          `json:"id"`
	GroupID        string          `json:"group_id,omitempty"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	StartsAt       time.Time       `json:"starts_at"`
	EndsAt         time.Time       `json:"ends_at"`
	OrganizerIDs   []string        `json:"organizer_ids"`
	ParticipantIDs []string        `json:"participant_ids,omitempty"`
	IsPublic       bool            `json:"is_public"`
	Status         ChallengeStatus `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// HasParticipant reports whether userID joined the challenge.
func (c *CommunityChallenge) HasParticipant(userID string) bool {
	return containsString(c.ParticipantIDs, userID)
}

// IsOrganizer reports whether userID organizes the challenge.
func (c *CommunityChallenge) IsOrganizer(userID string) bool {
	return containsString(c.OrganizerIDs, userID)
}
