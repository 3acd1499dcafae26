package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"hearth/internal/community"
	"hearth/internal/models"
	"hearth/internal/observability"
	"hearth/internal/repository"
)

// ModerationItem is a flagged topic or reply awaiting review.
type ModerationItem struct {
	Kind       string    `json:"kind"`
	TopicID    string    `json:"topic_id"`
	ReplyID    string    `json:"reply_id,omitempty"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ModerationService lets moderators work through flagged content.
type ModerationService struct {
	cols *repository.Collections
}

// NewModerationService returns a new ModerationService.
func NewModerationService(cols *repository.Collections) *ModerationService {
	return &ModerationService{cols: cols}
}

// screenContent runs the advisory scanner. Flagged text is marked for review; scanner
// failures are logged and the text is accepted unflagged.
func screenContent(ctx context.Context, scanner community.ContentScanner, target, text string) (models.ModerationStatus, string) {
	if scanner == nil {
		return "", ""
	}
	res, err := scanner.Scan(ctx, text)
	if err != nil {
		slog.WarnContext(ctx, "content scan failed", "target", target, "err", err)
		return "", ""
	}
	if !res.Flagged {
		return "", ""
	}
	observability.ModerationFlags.WithLabelValues(target).Inc()
	return models.ModerationPendingReview, res.Reason
}

func (s *ModerationService) requireModerator(ctx context.Context, userID string) error {
	p, err := findProfile(ctx, s.cols, userID)
	if err != nil {
		return err
	}
	if !isModerator(p) {
		return models.NewForbiddenError("Moderator access required")
	}
	return nil
}

// Queue lists pending items, oldest first.
func (s *ModerationService) Queue(ctx context.Context, moderatorID string) ([]ModerationItem, error) {
	if err := s.requireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	topics, err := s.cols.Topics.All(ctx)
	if err != nil {
		return nil, err
	}

	items := []ModerationItem{}
	for _, t := range topics {
		if t.ModerationStatus == models.ModerationPendingReview {
			items = append(items, ModerationItem{
				Kind:       "topic",
				TopicID:    t.ID,
				AuthorID:   t.AuthorID,
				AuthorName: t.AuthorName,
				Content:    t.Title + "\n" + t.Content,
				Reason:     t.ModerationReason,
				CreatedAt:  t.CreatedAt,
			})
		}
		for _, r := range t.Replies {
			if r.ModerationStatus != models.ModerationPendingReview {
				continue
			}
			items = append(items, ModerationItem{
				Kind:       "reply",
				TopicID:    t.ID,
				ReplyID:    r.ID,
				AuthorID:   r.AuthorID,
				AuthorName: r.AuthorName,
				Content:    r.Content,
				Reason:     r.ModerationReason,
				CreatedAt:  r.CreatedAt,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func validVerdict(v models.ModerationStatus) error {
	if v != models.ModerationSafe && v != models.ModerationInappropriate {
		return models.NewValidationError("Verdict must be safe or inappropriate")
	}
	return nil
}

// ReviewTopic records a moderator's verdict on a topic.
func (s *ModerationService) ReviewTopic(ctx context.Context, moderatorID, topicID string, verdict models.ModerationStatus) (*models.ForumTopic, error) {
	if err := validVerdict(verdict); err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	return s.cols.Topics.Mutate(ctx, topicID, func(t *models.ForumTopic) error {
		t.ModerationStatus = verdict
		if verdict == models.ModerationSafe {
			t.ModerationReason = ""
		}
		return nil
	})
}

// ReviewReply records a moderator's verdict on a reply.
func (s *ModerationService) ReviewReply(ctx context.Context, moderatorID, topicID, replyID string, verdict models.ModerationStatus) (*models.ForumPost, error) {
	if err := validVerdict(verdict); err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	var out models.ForumPost
	_, err := s.cols.Topics.Mutate(ctx, topicID, func(t *models.ForumTopic) error {
		r := t.FindReply(replyID)
		if r == nil {
			return models.NewNotFoundError("Reply", replyID)
		}
		r.ModerationStatus = verdict
		if verdict == models.ModerationSafe {
			r.ModerationReason = ""
		}
		out = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
