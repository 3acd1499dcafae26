package service

import (
	"context"
	"log/slog"
	"sort"

	"hearth/internal/cache"
	"hearth/internal/community"
	"hearth/internal/models"
	"hearth/internal/notifications"
	"hearth/internal/observability"
	"hearth/internal/repository"

	"github.com/redis/go-redis/v9"
)

// MaxLeaderboard bounds how many entries a leaderboard request may return.
const MaxLeaderboard = 100

// LeaderboardEntry is one ranked profile.
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Level       string `json:"level"`
	BadgeCount  int    `json:"badge_count"`
}

// StandingService derives reputation on read and persists newly earned badges.
type StandingService struct {
	cols   *repository.Collections
	events EventPublisher
	rdb    *redis.Client
}

func NewStandingService(cols *repository.Collections, events EventPublisher, rdb *redis.Client) *StandingService {
	return &StandingService{cols: cols, events: events, rdb: rdb}
}

// Refresh recomputes standing for each user and stores badges they have newly earned.
// Users without a profile are skipped.
func (s *StandingService) Refresh(ctx context.Context, userIDs ...string) error {
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			ids = appendUnique(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	snap, err := s.cols.LoadSnapshot(ctx, now())
	if err != nil {
		return err
	}

	awarded := false
	for _, id := range ids {
		st := community.ComputeStanding(id, snap)
		var added []string
		_, err := s.cols.Profiles.Mutate(ctx, id, func(p *models.CommunityUserProfile) error {
			next := community.Evaluate(st.Score, st.Counters, p.BadgeIDs)
			added = community.Added(p.BadgeIDs, next)
			p.BadgeIDs = next
			return nil
		})
		if models.HasCode(err, models.CodeNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		for _, badge := range community.Badges(added) {
			awarded = true
			observability.BadgesAwarded.WithLabelValues(badge.ID).Inc()
			publish(ctx, s.events, id, notifications.NewEvent(notifications.EventBadgeAwarded, badge))
		}
	}
	if awarded {
		cache.Invalidate(ctx, s.rdb, cache.LeaderboardKey(MaxLeaderboard))
	}
	return nil
}

// refreshQuietly runs Refresh and only logs failures; the triggering write has already succeeded.
func (s *StandingService) refreshQuietly(ctx context.Context, userIDs ...string) {
	if s == nil {
		return
	}
	if err := s.Refresh(ctx, userIDs...); err != nil {
		slog.WarnContext(ctx, "failed to refresh standing", "user_ids", userIDs, "err", err)
	}
}

// View returns the profile with its derived score, level, breakdown and badges.
func (s *StandingService) View(ctx context.Context, userID string) (*models.ProfileView, error) {
	snap, err := s.cols.LoadSnapshot(ctx, now())
	if err != nil {
		return nil, err
	}
	p := snap.Profile(userID)
	if p == nil {
		return nil, models.NewNotFoundError("Profile", userID)
	}
	return viewOf(p, snap), nil
}

func viewOf(p *models.CommunityUserProfile, snap *community.Snapshot) *models.ProfileView {
	st := community.ComputeStanding(p.ID, snap)
	badgeIDs := community.Evaluate(st.Score, st.Counters, p.BadgeIDs)
	return &models.ProfileView{
		CommunityUserProfile: *p,
		ReputationScore:      st.Score,
		CommunityLevelName:   st.Level,
		Breakdown:            st.Breakdown,
		Badges:               community.Badges(badgeIDs),
	}
}

// Leaderboard ranks profiles by score, highest first, ties by id. The full
// board is cached for cache.LeaderboardTTL and sliced per request.
func (s *StandingService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > MaxLeaderboard {
		limit = MaxLeaderboard
	}
	var board []LeaderboardEntry
	err := cache.Aside(ctx, s.rdb, cache.LeaderboardKey(MaxLeaderboard), &board, cache.LeaderboardTTL, func() error {
		snap, err := s.cols.LoadSnapshot(ctx, now())
		if err != nil {
			return err
		}
		board = rank(snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(board, limit, 0), nil
}

func rank(snap *community.Snapshot) []LeaderboardEntry {
	board := make([]LeaderboardEntry, 0, len(snap.Profiles))
	for i := range snap.Profiles {
		v := viewOf(&snap.Profiles[i], snap)
		board = append(board, LeaderboardEntry{
			UserID:      v.ID,
			DisplayName: v.DisplayName,
			Score:       v.ReputationScore,
			Level:       v.CommunityLevelName,
			BadgeCount:  len(v.Badges),
		})
	}
	sort.SliceStable(board, func(i, j int) bool {
		if board[i].Score != board[j].Score {
			return board[i].Score > board[j].Score
		}
		return board[i].UserID < board[j].UserID
	})
	if len(board) > MaxLeaderboard {
		board = board[:MaxLeaderboard]
	}
	return board
}
