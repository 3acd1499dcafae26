package service

import (
	"context"
	"time"

	"hearth/internal/cache"
	"hearth/internal/community"
	"hearth/internal/models"
	"hearth/internal/repository"

	"github.com/redis/go-redis/v9"
)

const maxFeedLimit = 50

// FeedService serves activity feeds, cached per user and length for a short TTL.
type FeedService struct {
	cols  *repository.Collections
	rdb   *redis.Client
	limit int
	ttl   time.Duration
}

// NewFeedService returns a FeedService. A zero ttl or nil rdb disables caching.
func NewFeedService(cols *repository.Collections, rdb *redis.Client, limit int, ttl time.Duration) *FeedService {
	if limit <= 0 {
		limit = community.DefaultFeedLimit
	}
	return &FeedService{cols: cols, rdb: rdb, limit: limit, ttl: ttl}
}

func (s *FeedService) Feed(ctx context.Context, userID string, limit int) ([]models.ActivityFeedItem, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.limit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	var items []models.ActivityFeedItem
	err := cache.Aside(ctx, s.rdb, cache.FeedKey(userID, limit), &items, s.ttl, func() error {
		snap, err := s.cols.LoadSnapshot(ctx, now())
		if err != nil {
			return err
		}
		items = community.BuildFeed(userID, snap, limit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ActivityFeedItem{}
	}
	return items, nil
}
