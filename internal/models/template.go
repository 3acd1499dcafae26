package models

import "time"

// TemplateStatus is the review state of a submitted template.
type TemplateStatus string

const (
	TemplatePendingApproval TemplateStatus = "pending_approval"
	TemplateApproved        TemplateStatus = "approved"
	TemplateRejected        TemplateStatus = "rejected"
)

// TemplateRating is one user's score for a template.
type TemplateRating struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// TemplateComment is a remark left on a template.
type TemplateComment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// UserTemplate is a user-contributed routine or plan template.
type UserTemplate struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Type          string            `json:"type"`
	Body          string            `json:"body"`
	AuthorID      string            `json:"author_id"`
	AuthorName    string            `json:"author_name"`
	SubmittedAt   time.Time         `json:"submitted_at"`
	ReviewedAt    *time.Time        `json:"reviewed_at,omitempty"`
	Status        TemplateStatus    `json:"status"`
	Tags          []string          `json:"tags,omitempty"`
	Ratings       []TemplateRating  `json:"ratings,omitempty"`
	AverageRating float64           `json:"average_rating"`
	Comments      []TemplateComment `json:"comments,omitempty"`
	UsageCount    int               `json:"usage_count"`
}

// RecomputeAverage refreshes AverageRating from Ratings.
func (t *UserTemplate) RecomputeAverage() {
	if len(t.Ratings) == 0 {
		t.AverageRating = 0
		return
	}
	sum := 0
	for _, r := range t.Ratings {
		sum += r.Score
	}
	t.AverageRating = float64(sum) / float64(len(t.Ratings))
}
