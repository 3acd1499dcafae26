package models

import "time"

// PairingStatus is the lifecycle state of a mentorship pairing.
type PairingStatus string

const (
	PairingRequested PairingStatus = "requested"
	PairingActive    PairingStatus = "active"
	PairingCompleted PairingStatus = "completed"
	PairingDeclined  PairingStatus = "declined"
)

// Terminal reports whether no further transitions are possible.
func (s PairingStatus) Terminal() bool {
	return s == PairingCompleted || s == PairingDeclined
}

// SessionSide identifies which party of a pairing wrote notes or feedback.
type SessionSide string

const (
	SideMentor SessionSide = "mentor"
	SideMentee SessionSide = "mentee"
)

// SessionFeedback is written once per side per session.
type SessionFeedback struct {
	Rating    int       `json:"rating"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MentorshipSession is one meeting within a pairing.
type MentorshipSession struct {
	ID             string           `json:"id"`
	Date           time.Time        `json:"date"`
	MentorNotes    string           `json:"mentor_notes,omitempty"`
	MenteeNotes    string           `json:"mentee_notes,omitempty"`
	MentorFeedback *SessionFeedback `json:"mentor_feedback,omitempty"`
	MenteeFeedback *SessionFeedback `json:"mentee_feedback,omitempty"`
}

// HasFeedback reports whether either side has left feedback.
func (s *MentorshipSession) HasFeedback() bool {
	return s.MentorFeedback != nil || s.MenteeFeedback != nil
}

// MentorshipPairing is the relationship between a mentor and a mentee.
type MentorshipPairing struct {
	ID          string              `json:"id"`
	MentorID    string              `json:"mentor_id"`
	MentorName  string              `json:"mentor_name"`
	MenteeID    string              `json:"mentee_id"`
	MenteeName  string              `json:"mentee_name"`
	Skill       string              `json:"skill"`
	Status      PairingStatus       `json:"status"`
	RequestedAt time.Time           `json:"requested_at"`
	StartDate   *time.Time          `json:"start_date,omitempty"`
	EndedAt     *time.Time          `json:"ended_at,omitempty"`
	Sessions    []MentorshipSession `json:"sessions,omitempty"`
}

// SideOf returns the side userID plays in the pairing.
func (p *MentorshipPairing) SideOf(userID string) (SessionSide, bool) {
	switch userID {
	case p.MentorID:
		return SideMentor, true
	case p.MenteeID:
		return SideMentee, true
	}
	return "", false
}

// Involves reports whether userID is either party of the pairing.
func (p *MentorshipPairing) Involves(userID string) bool {
	_, ok := p.SideOf(userID)
	return ok
}
