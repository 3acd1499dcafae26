package community

import (
	"sort"
	"strings"
	"time"

	"hearth/internal/models"
)

// RequestPairing opens a pairing between mentor and mentee for skill. A pair may
// hold at most one open pairing at a time.
func RequestPairing(id string, mentor, mentee *models.CommunityUserProfile, skill string, existing []models.MentorshipPairing, now time.Time) (models.MentorshipPairing, error) {
	skill = strings.TrimSpace(skill)
	switch {
	case mentor == nil || mentee == nil:
		return models.MentorshipPairing{}, models.NewValidationError("Mentor and mentee are required")
	case mentor.ID == mentee.ID:
		return models.MentorshipPairing{}, models.NewValidationError("Users cannot mentor themselves")
	case mentor.MentorshipRole != models.MentorshipRoleMentor:
		return models.MentorshipPairing{}, models.NewValidationError("Selected user is not offering mentorship")
	case skill == "":
		return models.MentorshipPairing{}, models.NewValidationError("Skill is required")
	}

	for i := range existing {
		p := &existing[i]
		if p.MentorID == mentor.ID && p.MenteeID == mentee.ID && !p.Status.Terminal() {
			return models.MentorshipPairing{}, models.NewConflictError("An open mentorship already exists between these users")
		}
	}

	return models.MentorshipPairing{
		ID:          id,
		MentorID:    mentor.ID,
		MentorName:  mentor.DisplayName,
		MenteeID:    mentee.ID,
		MenteeName:  mentee.DisplayName,
		Skill:       skill,
		Status:      models.PairingRequested,
		RequestedAt: now,
	}, nil
}

// AcceptPairing moves a requested pairing to active. Only the mentor may accept.
func AcceptPairing(p *models.MentorshipPairing, actorID string, now time.Time) error {
	if actorID != p.MentorID {
		return models.NewForbiddenError("Only the mentor can accept a mentorship request")
	}
	if p.Status != models.PairingRequested {
		return illegalPairingTransition(p.Status, models.PairingActive)
	}
	p.Status = models.PairingActive
	p.StartDate = &now
	return nil
}

// CompletePairing closes an active pairing.
func CompletePairing(p *models.MentorshipPairing, actorID string, now time.Time) error {
	if !p.Involves(actorID) {
		return models.NewForbiddenError("Only participants can complete a mentorship")
	}
	if p.Status != models.PairingActive {
		return illegalPairingTransition(p.Status, models.PairingCompleted)
	}
	p.Status = models.PairingCompleted
	p.EndedAt = &now
	return nil
}

// DeclinePairing ends a requested or active pairing.
func DeclinePairing(p *models.MentorshipPairing, actorID string, now time.Time) error {
	if !p.Involves(actorID) {
		return models.NewForbiddenError("Only participants can decline a mentorship")
	}
	if p.Status != models.PairingRequested && p.Status != models.PairingActive {
		return illegalPairingTransition(p.Status, models.PairingDeclined)
	}
	p.Status = models.PairingDeclined
	p.EndedAt = &now
	return nil
}

func illegalPairingTransition(from, to models.PairingStatus) error {
	return models.NewIllegalTransitionError("Mentorship cannot move from " + string(from) + " to " + string(to))
}

func requireActiveParticipant(p *models.MentorshipPairing, actorID string) (models.SessionSide, error) {
	side, ok := p.SideOf(actorID)
	if !ok {
		return "", models.NewForbiddenError("Only participants can log mentorship sessions")
	}
	if p.Status != models.PairingActive {
		return "", models.NewIllegalTransitionError("Sessions can only be logged while the mentorship is active")
	}
	return side, nil
}

// ScheduleSession appends a session to an active pairing.
func ScheduleSession(p *models.MentorshipPairing, actorID, sessionID string, date time.Time) (models.MentorshipSession, error) {
	if _, err := requireActiveParticipant(p, actorID); err != nil {
		return models.MentorshipSession{}, err
	}
	if date.IsZero() {
		return models.MentorshipSession{}, models.NewValidationError("Session date is required")
	}
	s := models.MentorshipSession{ID: sessionID, Date: date}
	p.Sessions = append(p.Sessions, s)
	return s, nil
}

func findSession(p *models.MentorshipPairing, sessionID string) (*models.MentorshipSession, error) {
	for i := range p.Sessions {
		if p.Sessions[i].ID == sessionID {
			return &p.Sessions[i], nil
		}
	}
	return nil, models.NewNotFoundError("Session", sessionID)
}

// SetSessionNotes replaces the actor's own notes on a session.
func SetSessionNotes(p *models.MentorshipPairing, actorID, sessionID, notes string) error {
	side, err := requireActiveParticipant(p, actorID)
	if err != nil {
		return err
	}
	s, err := findSession(p, sessionID)
	if err != nil {
		return err
	}
	if side == models.SideMentor {
		s.MentorNotes = notes
	} else {
		s.MenteeNotes = notes
	}
	return nil
}

// AddFeedback records the actor's feedback on a session. Each side writes once.
func AddFeedback(p *models.MentorshipPairing, actorID, sessionID string, rating int, text string, now time.Time) error {
	if rating < 1 || rating > 5 {
		return models.NewValidationError("Rating must be between 1 and 5")
	}
	side, err := requireActiveParticipant(p, actorID)
	if err != nil {
		return err
	}
	s, err := findSession(p, sessionID)
	if err != nil {
		return err
	}

	slot := &s.MenteeFeedback
	if side == models.SideMentor {
		slot = &s.MentorFeedback
	}
	if *slot != nil {
		return models.NewIllegalTransitionError("Feedback for this session has already been recorded")
	}
	*slot = &models.SessionFeedback{Rating: rating, Text: strings.TrimSpace(text), CreatedAt: now}
	return nil
}

// MatchSuggestion is a candidate partner with the skills both sides share.
type MatchSuggestion struct {
	Profile      models.CommunityUserProfile `json:"profile"`
	SharedSkills []string                    `json:"shared_skills"`
}

// SuggestMatches ranks pool members holding the role opposite to seeker's by the
// number of shared skills, most first, ties broken by id. A seeker without a role
// is matched as a mentee. Candidates with no overlap are kept at the end.
func SuggestMatches(seeker *models.CommunityUserProfile, pool []models.CommunityUserProfile) []MatchSuggestion {
	if seeker == nil {
		return nil
	}
	wantRole := models.MentorshipRoleMentor
	wanted := seeker.SeekingSkills
	if seeker.MentorshipRole == models.MentorshipRoleMentor {
		wantRole = models.MentorshipRoleMentee
		wanted = seeker.MentoringSkills
	}

	var out []MatchSuggestion
	for _, candidate := range pool {
		if candidate.ID == seeker.ID || candidate.MentorshipRole != wantRole {
			continue
		}
		offered := candidate.MentoringSkills
		if wantRole == models.MentorshipRoleMentee {
			offered = candidate.SeekingSkills
		}
		out = append(out, MatchSuggestion{
			Profile:      candidate,
			SharedSkills: sharedTerms(wanted, offered),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].SharedSkills) != len(out[j].SharedSkills) {
			return len(out[i].SharedSkills) > len(out[j].SharedSkills)
		}
		return out[i].Profile.ID < out[j].Profile.ID
	})
	return out
}
