package cache

import (
	"context"
	"fmt"

	"master-or-disaster/internal/config"
	"master-or-disaster/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// MatchCache maps match id to match detail. Writes are idempotent: a match
// id always maps to the same immutable detail, so last write wins.
type MatchCache interface {
	Get(ctx context.Context, matchID string) (*domain.Match, bool)
	Put(ctx context.Context, match *domain.Match)
}

// New picks the backend named by CACHE_BACKEND.
func New(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (MatchCache, error) {
	if cfg.CacheBackend != config.CacheBackendRedis {
		logger.Info().Msg("using in-memory match cache")
		return NewMemory(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn().Err(err).Msg("redis not reachable yet, cache reads will miss")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	logger.Info().Str("addr", opts.Addr).Msg("using redis match cache")
	return NewRedis(client, logger), nil
}
