package models

import "time"

// CommunityBadge describes an award a user can earn.
type CommunityBadge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Criteria    string `json:"criteria"`
	Icon        string `json:"icon"`
}

// FeedContentType tags the kind of entity a feed item points at.
type FeedContentType string

const (
	FeedTopic         FeedContentType = "topic"
	FeedReply         FeedContentType = "reply"
	FeedGroupTopic    FeedContentType = "group_topic"
	FeedGroupDocument FeedContentType = "group_document"
	FeedTemplate      FeedContentType = "template"
	FeedEvent         FeedContentType = "event"
	FeedChallenge     FeedContentType = "challenge"
)

// FeedActor is the user an activity is attributed to.
type FeedActor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActivityFeedItem is a derived, never persisted, entry in a user's feed.
type ActivityFeedItem struct {
	ID              string          `json:"id"`
	Actor           *FeedActor      `json:"actor,omitempty"`
	Text            string          `json:"text"`
	Timestamp       time.Time       `json:"timestamp"`
	Link            string          `json:"link"`
	ContentType     FeedContentType `json:"content_type"`
	RelatedEntityID string          `json:"related_entity_id,omitempty"`
}
