package models

import "time"

// VoteDirection is a user's vote on a topic or reply.
type VoteDirection string

const (
	// VoteUp is a positive vote.
	VoteUp   VoteDirection = "up"
	// VoteDown is a negative vote.
	VoteDown VoteDirection = "down"
	// VoteNone revokes a previous vote. It is never stored.
	VoteNone VoteDirection = "none"
)

// Valid reports whether d is a direction a caller may cast.
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown || d == VoteNone
}

// VoteTally holds aggregate counts and the per-user votes behind them.
// Upvotes and Downvotes always equal the number of matching entries in Votes.
type VoteTally struct {
	Upvotes   int                      `json:"upvotes"`
	Downvotes int                      `json:"downvotes"`
	Votes     map[string]VoteDirection `json:"votes,omitempty"`
}

// ModerationStatus is the review state of user-submitted content.
type ModerationStatus string

const (
	ModerationPendingReview ModerationStatus = "pending_review"
	ModerationSafe          ModerationStatus = "safe"
	ModerationInappropriate ModerationStatus = "inappropriate"
)

// SummaryStatus tracks the generated summary of a topic.
type SummaryStatus string

const (
	SummaryIdle  SummaryStatus = "idle"
	SummaryReady SummaryStatus = "ready"
	SummaryError SummaryStatus = "error"
)

// TopicSummary is the optional generated digest of a topic's discussion.
type TopicSummary struct {
	Status      SummaryStatus `json:"status"`
	Text        string        `json:"text,omitempty"`
	Error       string        `json:"error,omitempty"`
	GeneratedAt *time.Time    `json:"generated_at,omitempty"`
}

// ForumPost is a reply within a topic.
type ForumPost struct {
	ID               string           `json:"id"`
	AuthorID         string           `json:"author_id"`
	AuthorName       string           `json:"author_name"`
	Content          string           `json:"content"`
	CreatedAt        time.Time        `json:"created_at"`
	Edited           bool             `json:"edited,omitempty"`
	ModerationStatus ModerationStatus `json:"moderation_status,omitempty"`
	ModerationReason string           `json:"moderation_reason,omitempty"`

	VoteTally
}

// ForumTopic is a discussion thread with its ordered replies.
type ForumTopic struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AuthorID         string           `json:"author_id"`
	AuthorName       string           `json:"author_name"`
	CreatedAt        time.Time        `json:"created_at"`
	LastActivityAt   time.Time        `json:"last_activity_at"`
	Tags             []string         `json:"tags,omitempty"`
	Content          string           `json:"content"`
	Replies          []ForumPost      `json:"replies,omitempty"`
	ViewCount        int              `json:"view_count"`
	Pinned           bool             `json:"pinned,omitempty"`
	Locked           bool             `json:"locked,omitempty"`
	Edited           bool             `json:"edited,omitempty"`
	Summary          *TopicSummary    `json:"summary,omitempty"`
	GroupID          string           `json:"group_id,omitempty"`
	ModerationStatus ModerationStatus `json:"moderation_status,omitempty"`
	ModerationReason string           `json:"moderation_reason,omitempty"`

	VoteTally
}

// FindReply returns the reply with the given id, or nil.
func (t *ForumTopic) FindReply(replyID string) *ForumPost {
	for i := range t.Replies {
		if t.Replies[i].ID == replyID {
			return &t.Replies[i]
		}
	}
	return nil
}
