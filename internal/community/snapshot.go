package community

import (
	"time"

	"hearth/internal/models"
)

// Snapshot is a consistent read of every entity collection. AsOf is the instant
// time-dependent rules (such as event attendance) are evaluated at.
type Snapshot struct {
	Profiles   []models.CommunityUserProfile
	Topics     []models.ForumTopic
	Groups     []models.Group
	Templates  []models.UserTemplate
	Events     []models.CommunityEvent
	Challenges []models.CommunityChallenge
	Pairings   []models.MentorshipPairing
	AsOf       time.Time
}

// Profile returns the profile with id, or nil.
func (s *Snapshot) Profile(id string) *models.CommunityUserProfile {
	for i := range s.Profiles {
		if s.Profiles[i].ID == id {
			return &s.Profiles[i]
		}
	}
	return nil
}

// Group returns the group with id, or nil.
func (s *Snapshot) Group(id string) *models.Group {
	for i := range s.Groups {
		if s.Groups[i].ID == id {
			return &s.Groups[i]
		}
	}
	return nil
}

func (s *Snapshot) displayName(id string) string {
	if p := s.Profile(id); p != nil && p.DisplayName != "" {
		return p.DisplayName
	}
	return id
}
