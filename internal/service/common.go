// Package service implements the community engine's use cases on top of the
// entity collections: each operation validates input, applies the pure
// community rules inside one serialized collection update, and then fans
// out side effects such as standing refreshes and realtime events.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hearth/internal/models"
	"hearth/internal/notifications"
	"hearth/internal/repository"

	"github.com/google/uuid"
)

var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = uuid.NewString
)

// EventPublisher delivers realtime events to a user's open connections.
type EventPublisher interface {
	PublishUser(ctx context.Context, userID string, ev notifications.Event) error
}

func publish(ctx context.Context, p EventPublisher, userID string, ev notifications.Event) {
	if p == nil || userID == "" {
		return
	}
	if err := p.PublishUser(ctx, userID, ev); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", ev.Type, "user_id", userID, "err", err)
	}
}

func requireActor(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}

// ensureProfile returns the user's profile, creating it on first interaction.
func ensureProfile(ctx context.Context, cols *repository.Collections, userID string) (*models.CommunityUserProfile, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	p, _, err := cols.Profiles.Upsert(ctx, userID, func(p *models.CommunityUserProfile, created bool) error {
		if created {
			*p = models.CommunityUserProfile{
				ID:             userID,
				DisplayName:    userID,
				MentorshipRole: models.MentorshipRoleNone,
				CreatedAt:      now(),
			}
		}
		return nil
	})
	return p, err
}

// findProfile is like Profiles.Find but reports a missing profile as nil.
func findProfile(ctx context.Context, cols *repository.Collections, userID string) (*models.CommunityUserProfile, error) {
	p, err := cols.Profiles.Find(ctx, userID)
	if models.HasCode(err, models.CodeNotFound) {
		return nil, nil
	}
	return p, err
}

func groupIndex(ctx context.Context, cols *repository.Collections) (map[string]*models.Group, error) {
	groups, err := cols.Groups.All(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Group, len(groups))
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
	}
	return byID, nil
}

func isModerator(p *models.CommunityUserProfile) bool {
	return p != nil && p.IsModerator
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asValidation(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewValidationError(err.Error())
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
