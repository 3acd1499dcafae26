package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hearth/internal/community"
	"hearth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scannerStub struct {
	scanFn func(context.Context, string) (community.ScanResult, error)
}

func (s *scannerStub) Scan(ctx context.Context, text string) (community.ScanResult, error) {
	return s.scanFn(ctx, text)
}

func TestScreenContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	status, reason := screenContent(ctx, nil, "topic", "anything")
	assert.Empty(t, status)
	assert.Empty(t, reason)

	failing := &scannerStub{scanFn: func(context.Context, string) (community.ScanResult, error) {
		return community.ScanResult{}, errors.New("scanner offline")
	}}
	status, _ = screenContent(ctx, failing, "topic", "anything")
	assert.Empty(t, status)

	flagging := &scannerStub{scanFn: func(context.Context, string) (community.ScanResult, error) {
		return community.ScanResult{Flagged: true, Reason: "spam"}, nil
	}}
	status, reason = screenContent(ctx, flagging, "reply", "anything")
	assert.Equal(t, models.ModerationPendingReview, status)
	assert.Equal(t, "spam", reason)
}

func TestModerationService_QueueAndReview(t *testing.T) {
	f := newFixture(t)
	svc := NewModerationService(f.cols)
	ctx := context.Background()
	f.addProfile(t, "mod", moderator)
	f.addProfile(t, "ana")
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, f.cols.Topics.Insert(ctx, models.ForumTopic{
		ID: "t1", Title: "Offer", AuthorID: "ana", Content: "cheap", CreatedAt: base.Add(time.Hour),
		ModerationStatus: models.ModerationPendingReview, ModerationReason: "spam",
		Replies: []models.ForumPost{
			{ID: "r1", AuthorID: "ben", Content: "bad", CreatedAt: base, ModerationStatus: models.ModerationPendingReview},
			{ID: "r2", AuthorID: "cy", Content: "fine", CreatedAt: base},
		},
	}))

	_, err := svc.Queue(ctx, "ana")
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.Queue(ctx, "stranger")
	assertCode(t, err, models.CodeForbidden)

	queue, err := svc.Queue(ctx, "mod")
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "reply", queue[0].Kind)
	assert.Equal(t, "r1", queue[0].ReplyID)
	assert.Equal(t, "topic", queue[1].Kind)
	assert.Equal(t, "spam", queue[1].Reason)

	_, err = svc.ReviewTopic(ctx, "mod", "t1", models.ModerationPendingReview)
	assertCode(t, err, models.CodeValidation)
	_, err = svc.ReviewTopic(ctx, "ana", "t1", models.ModerationSafe)
	assertCode(t, err, models.CodeForbidden)

	topic, err := svc.ReviewTopic(ctx, "mod", "t1", models.ModerationSafe)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationSafe, topic.ModerationStatus)
	assert.Empty(t, topic.ModerationReason)

	reply, err := svc.ReviewReply(ctx, "mod", "t1", "r1", models.ModerationInappropriate)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationInappropriate, reply.ModerationStatus)

	_, err = svc.ReviewReply(ctx, "mod", "t1", "missing", models.ModerationSafe)
	assertCode(t, err, models.CodeNotFound)

	queue, err = svc.Queue(ctx, "mod")
	require.NoError(t, err)
	assert.Empty(t, queue)
}
