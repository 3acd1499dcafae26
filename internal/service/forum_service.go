package service

import (
	"context"
	"sort"

	"hearth/internal/community"
	"hearth/internal/models"
	"hearth/internal/notifications"
	"hearth/internal/observability"
	"hearth/internal/repository"
	"hearth/internal/validation"
)

const (
	defaultTopicPageSize = 20
	maxTopicPageSize     = 100
)

type ForumService struct {
	cols     *repository.Collections
	scanner  community.ContentScanner
	standing *StandingService
	events   EventPublisher
}

type CreateTopicInput struct {
	AuthorID string
	Title    string
	Content  string
	Tags     []string
	GroupID  string
}

type ListTopicsInput struct {
	ViewerID string
	Tag      string
	GroupID  string
	Limit    int
	Offset   int
}

// EditTopicInput changes a topic. Nil fields are left unchanged.
type EditTopicInput struct {
	ActorID string
	TopicID string
	Title   *string
	Content *string
	Tags    []string
}

type ReplyInput struct {
	AuthorID string
	TopicID  string
	Content  string
}

type EditReplyInput struct {
	ActorID string
	TopicID string
	ReplyID string
	Content string
}

// ReplyNotice is the payload of a reply_created event.
type ReplyNotice struct {
	TopicID    string `json:"topic_id"`
	TopicTitle string `json:"topic_title"`
	ReplyID    string `json:"reply_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
}

func NewForumService(cols *repository.Collections, scanner community.ContentScanner, standing *StandingService, events EventPublisher) *ForumService {
	return &ForumService{cols: cols, scanner: scanner, standing: standing, events: events}
}

func (s *ForumService) CreateTopic(ctx context.Context, in CreateTopicInput) (*models.ForumTopic, error) {
	title, err := validation.RequiredText("Title", in.Title, validation.MaxTitleLen)
	if err != nil {
		return nil, asValidation(err)
	}
	content, err := validation.RequiredText("Content", in.Content, validation.MaxContentLen)
	if err != nil {
		return nil, asValidation(err)
	}
	tags, err := validation.Tags(in.Tags)
	if err != nil {
		return nil, asValidation(err)
	}

	author, err := ensureProfile(ctx, s.cols, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if in.GroupID != "" {
		group, err := s.cols.Groups.Find(ctx, in.GroupID)
		if err != nil {
			return nil, err
		}
		if !group.IsMember(author.ID) {
			return nil, models.NewForbiddenError("Only group members can post in this group")
		}
	}

	status, reason := screenContent(ctx, s.scanner, "topic", title+"\n"+content)
	ts := now()
	topic := models.ForumTopic{
		ID:               newID(),
		Title:            title,
		AuthorID:         author.ID,
		AuthorName:       author.DisplayName,
		CreatedAt:        ts,
		LastActivityAt:   ts,
		Tags:             tags,
		Content:          content,
		GroupID:          in.GroupID,
		ModerationStatus: status,
		ModerationReason: reason,
	}
	if err := s.cols.Topics.Insert(ctx, topic); err != nil {
		return nil, err
	}
	s.standing.refreshQuietly(ctx, author.ID)
	return &topic, nil
}

// GetTopic returns a visible topic and counts the view.
func (s *ForumService) GetTopic(ctx context.Context, viewerID, topicID string) (*models.ForumTopic, error) {
	topic, err := s.cols.Topics.Find(ctx, topicID)
	if err != nil {
		return nil, err
	}
	viewer, groups, err := s.viewerContext(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !topicVisible(topic, viewerID, viewer, groups) {
		return nil, models.NewNotFoundError("Topic", topicID)
	}

	topic, err = s.cols.Topics.Mutate(ctx, topicID, func(t *models.ForumTopic) error {
		t.ViewCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	topic.Replies = visibleReplies(topic.Replies, viewerID, viewer)
	return topic, nil
}

// ListTopics returns visible topics, pinned first and then by latest activity.
func (s *ForumService) ListTopics(ctx context.Context, in ListTopicsInput) ([]models.ForumTopic, error) {
	topics, err := s.cols.Topics.All(ctx)
	if err != nil {
		return nil, err
	}
	viewer, groups, err := s.viewerContext(ctx, in.ViewerID)
	if err != nil {
		return nil, err
	}
	tag := community.NormalizeTerm(in.Tag)

	out := make([]models.ForumTopic, 0, len(topics))
	for i := range topics {
		t := &topics[i]
		if in.GroupID != "" && t.GroupID != in.GroupID {
			continue
		}
		if tag != "" && !hasTag(t.Tags, tag) {
			continue
		}
		if !topicVisible(t, in.ViewerID, viewer, groups) {
			continue
		}
		t.Replies = visibleReplies(t.Replies, in.ViewerID, viewer)
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		if !out[i].LastActivityAt.Equal(out[j].LastActivityAt) {
			return out[i].LastActivityAt.After(out[j].LastActivityAt)
		}
		return out[i].ID < out[j].ID
	})

	limit := in.Limit
	if limit <= 0 {
		limit = defaultTopicPageSize
	}
	if limit > maxTopicPageSize {
		limit = maxTopicPageSize
	}
	return paginate(out, limit, in.Offset), nil
}

func (s *ForumService) EditTopic(ctx context.Context, in EditTopicInput) (*models.ForumTopic, error) {
	var (
		title, content string
		tags           []string
		err            error
	)
	if in.Title != nil {
		if title, err = validation.RequiredText("Title", *in.Title, validation.MaxTitleLen); err != nil {
			return nil, asValidation(err)
		}
	}
	if in.Content != nil {
		if content, err = validation.RequiredText("Content", *in.Content, validation.MaxContentLen); err != nil {
			return nil, asValidation(err)
		}
	}
	if in.Tags != nil {
		if tags, err = validation.Tags(in.Tags); err != nil {
			return nil, asValidation(err)
		}
	}

	current, err := s.cols.Topics.Find(ctx, in.TopicID)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != in.ActorID {
		return nil, models.NewForbiddenError("Only the author can edit this topic")
	}
	var status models.ModerationStatus
	var reason string
	rescan := in.Title != nil || in.Content != nil
	if rescan {
		t, c := current.Title, current.Content
		if in.Title != nil {
			t = title
		}
		if in.Content != nil {
			c = content
		}
		status, reason = screenContent(ctx, s.scanner, "topic", t+"\n"+c)
	}

	return s.cols.Topics.Mutate(ctx, in.TopicID, func(t *models.ForumTopic) error {
		if t.AuthorID != in.ActorID {
			return models.NewForbiddenError("Only the author can edit this topic")
		}
		if in.Title != nil {
			t.Title = title
		}
		if in.Content != nil && content != t.Content {
			t.Content = content
			t.Summary = nil
		}
		if in.Tags != nil {
			t.Tags = tags
		}
		if rescan && status != "" {
			t.ModerationStatus = status
			t.ModerationReason = reason
		}
		t.Edited = true
		return nil
	})
}

func (s *ForumService) Reply(ctx context.Context, in ReplyInput) (*models.ForumPost, error) {
	content, err := validation.RequiredText("Content", in.Content, validation.MaxContentLen)
	if err != nil {
		return nil, asValidation(err)
	}
	author, err := ensureProfile(ctx, s.cols, in.AuthorID)
	if err != nil {
		return nil, err
	}
	current, err := s.cols.Topics.Find(ctx, in.TopicID)
	if err != nil {
		return nil, err
	}
	if current.GroupID != "" {
		group, err := s.cols.Groups.Find(ctx, current.GroupID)
		if err != nil {
			return nil, err
		}
		if !group.IsMember(author.ID) {
			return nil, models.NewForbiddenError("Only group members can reply in this group")
		}
	}

	status, reason := screenContent(ctx, s.scanner, "reply", content)
	reply := models.ForumPost{
		ID:               newID(),
		AuthorID:         author.ID,
		AuthorName:       author.DisplayName,
		Content:          content,
		CreatedAt:        now(),
		ModerationStatus: status,
		ModerationReason: reason,
	}
	topic, err := s.cols.Topics.Mutate(ctx, in.TopicID, func(t *models.ForumTopic) error {
		if t.Locked {
			return models.NewIllegalTransitionError("Topic is locked")
		}
		t.Replies = append(t.Replies, reply)
		t.LastActivityAt = reply.CreatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.standing.refreshQuietly(ctx, author.ID)
	if topic.AuthorID != author.ID {
		publish(ctx, s.events, topic.AuthorID, notifications.NewEvent(notifications.EventReplyCreated, ReplyNotice{
			TopicID:    topic.ID,
			TopicTitle: topic.Title,
			ReplyID:    reply.ID,
			AuthorID:   author.ID,
			AuthorName: author.DisplayName,
		}))
	}
	return &reply, nil
}

func (s *ForumService) EditReply(ctx context.Context, in EditReplyInput) (*models.ForumPost, error) {
	content, err := validation.RequiredText("Content", in.Content, validation.MaxContentLen)
	if err != nil {
		return nil, asValidation(err)
	}
	status, reason := screenContent(ctx, s.scanner, "reply", content)

	var out models.ForumPost
	_, err = s.cols.Topics.Mutate(ctx, in.TopicID, func(t *models.ForumTopic) error {
		r := t.FindReply(in.ReplyID)
		if r == nil {
			return models.NewNotFoundError("Reply", in.ReplyID)
		}
		if r.AuthorID != in.ActorID {
			return models.NewForbiddenError("Only the author can edit this reply")
		}
		r.Content = content
		r.Edited = true
		if status != "" {
			r.ModerationStatus = status
			r.ModerationReason = reason
		}
		out = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VoteTopic records the actor's vote on a topic and returns the new tally.
func (s *ForumService) VoteTopic(ctx context.Context, actorID, topicID string, dir models.VoteDirection) (*models.VoteTally, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if _, err := s.voteAccess(ctx, actorID, topicID); err != nil {
		return nil, err
	}
	var (
		tally   models.VoteTally
		author  string
		changed bool
	)
	_, err := s.cols.Topics.Mutate(ctx, topicID, func(t *models.ForumTopic) error {
		if t.AuthorID == actorID {
			return models.NewValidationError("Cannot vote on your own topic")
		}
		var err error
		if changed, err = community.CastVote(&t.VoteTally, actorID, dir); err != nil {
			return err
		}
		tally, author = t.VoteTally, t.AuthorID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		observability.VotesCast.WithLabelValues("topic", string(dir)).Inc()
		s.standing.refreshQuietly(ctx, author)
	}
	return &tally, nil
}

// VoteReply records the actor's vote on a reply and returns the new tally.
func (s *ForumService) VoteReply(ctx context.Context, actorID, topicID, replyID string, dir models.VoteDirection) (*models.VoteTally, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	viewer, err := s.voteAccess(ctx, actorID, topicID)
	if err != nil {
		return nil, err
	}
	var (
		tally   models.VoteTally
		author  string
		changed bool
	)
	_, err = s.cols.Topics.Mutate(ctx, topicID, func(t *models.ForumTopic) error {
		r := t.FindReply(replyID)
		if r == nil || len(visibleReplies([]models.ForumPost{*r}, actorID, viewer)) == 0 {
			return models.NewNotFoundError("Reply", replyID)
		}
		if r.AuthorID == actorID {
			return models.NewValidationError("Cannot vote on your own reply")
		}
		var err error
		if changed, err = community.CastVote(&r.VoteTally, actorID, dir); err != nil {
			return err
		}
		tally, author = r.VoteTally, r.AuthorID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		observability.VotesCast.WithLabelValues("reply", string(dir)).Inc()
		s.standing.refreshQuietly(ctx, author)
	}
	return &tally, nil
}

// voteAccess applies the read and reply rules to a voter: hidden topics are not found
// and group topics take votes from members only.
func (s *ForumService) voteAccess(ctx context.Context, actorID, topicID string) (*models.CommunityUserProfile, error) {
	topic, err := s.cols.Topics.Find(ctx, topicID)
	if err != nil {
		return nil, err
	}
	viewer, groups, err := s.viewerContext(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !topicVisible(topic, actorID, viewer, groups) {
		return nil, models.NewNotFoundError("Topic", topicID)
	}
	if topic.GroupID != "" {
		if g, ok := groups[topic.GroupID]; ok && !g.IsMember(actorID) {
			return nil, models.NewForbiddenError("Only group members can vote in this group")
		}
	}
	return viewer, nil
}

func (s *ForumService) SetPinned(ctx context.Context, actorID, topicID string, pinned bool) (*models.ForumTopic, error) {
	return s.curate(ctx, actorID, topicID, func(t *models.ForumTopic) { t.Pinned = pinned })
}

func (s *ForumService) SetLocked(ctx context.Context, actorID, topicID string, locked bool) (*models.ForumTopic, error) {
	return s.curate(ctx, actorID, topicID, func(t *models.ForumTopic) { t.Locked = locked })
}

// curate applies a moderator-only change. Group admins may curate their group's topics.
func (s *ForumService) curate(ctx context.Context, actorID, topicID string, apply func(*models.ForumTopic)) (*models.ForumTopic, error) {
	topic, err := s.cols.Topics.Find(ctx, topicID)
	if err != nil {
		return nil, err
	}
	actor, err := findProfile(ctx, s.cols, actorID)
	if err != nil {
		return nil, err
	}
	allowed := isModerator(actor)
	if !allowed && topic.GroupID != "" {
		group, err := s.cols.Groups.Find(ctx, topic.GroupID)
		if err != nil && !models.HasCode(err, models.CodeNotFound) {
			return nil, err
		}
		allowed = group != nil && group.IsAdmin(actorID)
	}
	if !allowed {
		return nil, models.NewForbiddenError("Only moderators can change this topic")
	}
	return s.cols.Topics.Mutate(ctx, topicID, func(t *models.ForumTopic) error {
		apply(t)
		return nil
	})
}

func (s *ForumService) viewerContext(ctx context.Context, viewerID string) (*models.CommunityUserProfile, map[string]*models.Group, error) {
	var viewer *models.CommunityUserProfile
	if viewerID != "" {
		p, err := findProfile(ctx, s.cols, viewerID)
		if err != nil {
			return nil, nil, err
		}
		viewer = p
	}
	groups, err := groupIndex(ctx, s.cols)
	if err != nil {
		return nil, nil, err
	}
	return viewer, groups, nil
}

// topicVisible hides content marked inappropriate from everyone but its author and
// moderators, and private-group topics from non-members.
func topicVisible(t *models.ForumTopic, viewerID string, viewer *models.CommunityUserProfile, groups map[string]*models.Group) bool {
	if isModerator(viewer) {
		return true
	}
	if t.ModerationStatus == models.ModerationInappropriate && t.AuthorID != viewerID {
		return false
	}
	if t.GroupID == "" {
		return true
	}
	g, ok := groups[t.GroupID]
	return !ok || !g.IsPrivate || g.IsMember(viewerID)
}

func visibleReplies(replies []models.ForumPost, viewerID string, viewer *models.CommunityUserProfile) []models.ForumPost {
	if isModerator(viewer) {
		return replies
	}
	out := replies[:0:0]
	for _, r := range replies {
		if r.ModerationStatus == models.ModerationInappropriate && r.AuthorID != viewerID {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if community.NormalizeTerm(t) == want {
			return true
		}
	}
	return false
}
