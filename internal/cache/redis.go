package cache

import (
	"context"
	"encoding/json"
	"errors"

	"master-or-disaster/internal/constants"
	"master-or-disaster/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis shares match details between server instances. Any Redis failure is
// logged and behaves like a miss; the cache never fails a request.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedis(client *redis.Client, logger zerolog.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func key(matchID string) string {
	return constants.MatchDetailKeyPrefix + matchID
}

func (c *Redis) Get(ctx context.Context, matchID string) (*domain.Match, bool) {
	val, err := c.client.Get(ctx, key(matchID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("match_id", matchID).Msg("failed to read match from redis")
		}
		return nil, false
	}

	var match domain.Match
	if err := json.Unmarshal(val, &match); err != nil {
		c.logger.Warn().Err(err).Str("match_id", matchID).Msg("dropping undecodable cached match")
		_ = c.client.Del(ctx, key(matchID)).Err()
		return nil, false
	}
	return &match, true
}

func (c *Redis) Put(ctx context.Context, match *domain.Match) {
	if match == nil || match.Metadata.MatchID == "" {
		return
	}
	payload, err := json.Marshal(match)
	if err != nil {
		c.logger.Warn().Err(err).Str("match_id", match.Metadata.MatchID).Msg("failed to encode match for redis")
		return
	}
	if err := c.client.Set(ctx, key(match.Metadata.MatchID), payload, constants.MatchDetailCacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("match_id", match.Metadata.MatchID).Msg("failed to cache match in redis")
	}
}
