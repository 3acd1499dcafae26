package models

import "time"

// Group is a community circle with its collaborative artifacts.
type Group struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CreatorID   string           `json:"creator_id"`
	IsPrivate   bool             `json:"is_private"`
	MemberIDs   []string         `json:"member_ids"`
	AdminIDs    []string         `json:"admin_ids"`
	Tags        []string         `json:"tags,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Documents   []SharedDocument `json:"documents,omitempty"`
	Tasks       []GroupTask      `json:"tasks,omitempty"`
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	return containsString(g.MemberIDs, userID)
}

// IsAdmin reports whether userID administers the group.
func (g *Group) IsAdmin(userID string) bool {
	return containsString(g.AdminIDs, userID)
}

// SharedDocument is a group document. Only the current body is kept.
type SharedDocument struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	LastEditedByID   string    `json:"last_edited_by_id"`
	LastEditedByName string    `json:"last_edited_by_name"`
	LastEditedAt     time.Time `json:"last_edited_at"`
	Version          int       `json:"version"`
}

// GroupTask is an item on a group's shared task list.
type GroupTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedByID string     `json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
}
