package service

import (
	"context"
	"fmt"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/cache"
	"master-or-disaster/internal/constants"
	"master-or-disaster/internal/domain"

	"github.com/rs/zerolog"
)

// MatchFetcher loads one match detail by id.
type MatchFetcher interface {
	GetMatch(ctx context.Context, matchID string) (*domain.Match, error)
}

// MatchDetailService is the cache-first match detail source shared by the
// common-match sessions and the per-account views.
type MatchDetailService struct {
	upstream MatchFetcher
	cache    cache.MatchCache
	logger   zerolog.Logger
}

func NewMatchDetailService(riot *api.RiotClient, matchCache cache.MatchCache, logger zerolog.Logger) *MatchDetailService {
	return newMatchDetailService(riot, matchCache, logger)
}

func newMatchDetailService(upstream MatchFetcher, matchCache cache.MatchCache, logger zerolog.Logger) *MatchDetailService {
	return &MatchDetailService{upstream: upstream, cache: matchCache, logger: logger}
}

func (s *MatchDetailService) GetMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	match, ok := s.cache.Get(ctx, matchID)
	if ok {
		s.logger.Debug().Str("match_id", matchID).Msg("match found in cache")
	} else {
		s.logger.Debug().Str("match_id", matchID).Msg("match not found in cache, fetching from API")

		apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		defer cancel()

		fetched, err := s.upstream.GetMatch(apiCtx, matchID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch match %s: %w", matchID, err)
		}
		if fetched == nil || fetched.Metadata.MatchID == "" {
			return nil, fmt.Errorf("malformed match %s: missing metadata", matchID)
		}
		match = fetched
	}

	s.cache.Put(ctx, match)
	return match, nil
}
