// Package bootstrap builds the engine's shared dependencies from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hearth/internal/cache"
	"hearth/internal/community"
	"hearth/internal/config"
	"hearth/internal/database"
	"hearth/internal/docstore"
	"hearth/internal/featureflags"
	"hearth/internal/genai"
	"hearth/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Runtime holds the process-wide dependencies shared by the server and the seeder.
type Runtime struct {
	Config    *config.Config
	Store     docstore.Store
	Redis     *redis.Client
	Scanner   community.ContentScanner
	Generator genai.Generator
	Flags     *featureflags.Manager
}

// InitRuntime opens the configured document store and the optional Redis cache,
// and builds the moderation scanner and text generator.
func InitRuntime(cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Flags: featureflags.NewManager(cfg.FeatureFlags)}

	store, err := rt.openStore()
	if err != nil {
		return nil, err
	}
	rt.Store = docstore.Instrument(store, cfg.StoreDriver)

	if rt.Scanner, err = NewScanner(cfg); err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.Generator, err = genai.New(genai.Config{
		Endpoint: cfg.AIEndpoint,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
	})
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("generative text client: %w", err)
	}
	if _, disabled := rt.Generator.(genai.Disabled); disabled {
		middleware.Logger.Info("AI_API_KEY not set, generative features disabled")
	}
	return rt, nil
}

func (rt *Runtime) openStore() (docstore.Store, error) {
	cfg := rt.Config
	switch cfg.StoreDriver {
	case config.StoreRedis:
		rdb, err := cache.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis client: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis store unreachable: %w", err)
		}
		rt.Redis = rdb
		return docstore.NewRedisStore(rdb), nil

	case config.StoreSQLite, config.StorePostgres:
		rt.Redis = optionalRedis(cfg)
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		gs := docstore.NewGormStore(db)
		if err := gs.Migrate(); err != nil {
			_ = gs.Close()
			return nil, fmt.Errorf("migrate document store: %w", err)
		}
		return gs, nil

	default:
		rt.Redis = optionalRedis(cfg)
		return docstore.NewMemoryStore(), nil
	}
}

// optionalRedis connects the cache when reachable; the engine runs without it otherwise.
func optionalRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	cache.InitRedis(cfg.RedisURL)
	return cache.GetClient()
}

// NewScanner builds the keyword scanner from the inline deny list and the optional rules file.
func NewScanner(cfg *config.Config) (*community.KeywordScanner, error) {
	rules := community.RulesFromTerms(cfg.DenyList())
	if cfg.ModerationRulesFile != "" {
		fileRules, err := community.LoadDenyRules(cfg.ModerationRulesFile)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	middleware.Logger.Info("moderation scanner ready", slog.Int("rules", len(rules)))
	return community.NewKeywordScanner(rules), nil
}

// Close releases the store and the Redis client.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Store != nil {
		errs = append(errs, rt.Store.Close())
	}
	// The Redis store owns the client when it is the primary store.
	if rt.Redis != nil && rt.Config.StoreDriver != config.StoreRedis {
		errs = append(errs, rt.Redis.Close())
	}
	return errors.Join(errs...)
}
