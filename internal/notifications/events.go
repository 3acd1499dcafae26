package notifications

import (
	"encoding/json"
	"time"
)

// Event types pushed to connected clients.
const (
	EventBadgeAwarded        = "badge_awarded"
	EventReplyCreated        = "reply_created"
	EventMentorshipRequested = "mentorship_requested"
	EventMentorshipUpdated   = "mentorship_updated"
)

// Event is the envelope written to a user's websocket connections.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, payload any) Event {
	return Event{Type: eventType, Payload: payload, SentAt: time.Now().UTC()}
}

// Encode marshals the event for the wire.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
