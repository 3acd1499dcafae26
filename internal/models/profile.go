// Package models contains data structures for the community engine's domain models.
package models

import "time"

// MentorshipRole defines how a user takes part in mentorship.
type MentorshipRole string

const (
	// MentorshipRoleNone is the default for users outside the mentorship program.
	MentorshipRoleNone MentorshipRole = "none"
	// MentorshipRoleMentor marks a user offering guidance.
	MentorshipRoleMentor MentorshipRole = "mentor"
	// MentorshipRoleMentee marks a user seeking guidance.
	MentorshipRoleMentee MentorshipRole = "mentee"
)

// Valid reports whether r is a known role.
func (r MentorshipRole) Valid() bool {
	switch r {
	case MentorshipRoleNone, MentorshipRoleMentor, MentorshipRoleMentee:
		return true
	}
	return false
}

// Opposite returns the role a user with role r is matched against.
func (r MentorshipRole) Opposite() MentorshipRole {
	switch r {
	case MentorshipRoleMentor:
		return MentorshipRoleMentee
	case MentorshipRoleMentee:
		return MentorshipRoleMentor
	}
	return MentorshipRoleNone
}

// CommunityUserProfile is a user's soft community profile. Reputation score
// and level are derived on read and never stored here.
type CommunityUserProfile struct {
	ID               string         `json:"id"`
	DisplayName      string         `json:"display_name"`
	Bio              string         `json:"bio,omitempty"`
	Location         string         `json:"location,omitempty"`
	Interests        []string       `json:"interests,omitempty"`
	SeekingHelpWith  []string       `json:"seeking_help_with,omitempty"`
	OfferingHelpWith []string       `json:"offering_help_with,omitempty"`
	JoinedGroupIDs   []string       `json:"joined_group_ids,omitempty"`
	ConnectionIDs    []string       `json:"connection_ids,omitempty"`
	MentorshipRole   MentorshipRole `json:"mentorship_role"`
	MentoringSkills  []string       `json:"mentoring_skills,omitempty"`
	SeekingSkills    []string       `json:"seeking_skills,omitempty"`
	BadgeIDs         []string       `json:"badge_ids,omitempty"`
	IsModerator      bool           `json:"is_moderator,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// HasJoined reports whether the profile lists groupID among joined groups.
func (p *CommunityUserProfile) HasJoined(groupID string) bool {
	return containsString(p.JoinedGroupIDs, groupID)
}

// IsConnectedTo reports whether userID is one of the profile's connections.
func (p *CommunityUserProfile) IsConnectedTo(userID string) bool {
	return containsString(p.ConnectionIDs, userID)
}

// ReputationBreakdown lists the contribution of each activity category.
type ReputationBreakdown struct {
	Topics        float64 `json:"topics"`
	Replies       float64 `json:"replies"`
	VotesReceived float64 `json:"votes_received"`
	Templates     float64 `json:"templates"`
	Events        float64 `json:"events"`
	Challenges    float64 `json:"challenges"`
	Mentorships   float64 `json:"mentorships"`
	// Total is the raw sum before flooring and clamping at zero.
	Total float64 `json:"total"`
}

// ProfileView is the read model of a profile with derived standing.
type ProfileView struct {
	CommunityUserProfile
	ReputationScore    int                 `json:"reputation_score"`
	CommunityLevelName string              `json:"community_level_name"`
	Breakdown          ReputationBreakdown `json:"breakdown"`
	Badges             []CommunityBadge    `json:"badges"`
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
