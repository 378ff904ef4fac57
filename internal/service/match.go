package service

import (
	"context"
	"fmt"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/config"
	"master-or-disaster/internal/constants"
	"master-or-disaster/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MatchService serves a single account's recent matches.
type MatchService struct {
	lister    MatchLister
	details   MatchFetcher
	matchType string
	logger    zerolog.Logger
}

func NewMatchService(riot *api.RiotClient, details *MatchDetailService, cfg *config.Config, logger zerolog.Logger) *MatchService {
	return newMatchService(riot, details, cfg.CommonMatchType, logger)
}

func newMatchService(lister MatchLister, details MatchFetcher, matchType string, logger zerolog.Logger) *MatchService {
	return &MatchService{lister: lister, details: details, matchType: matchType, logger: logger}
}

// RecentMatches returns up to RecentMatchCount matches, newest first. Matches
// whose detail cannot be loaded are left out.
func (s *MatchService) RecentMatches(ctx context.Context, puuid string) ([]*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	ids, err := s.lister.ListMatchIDs(apiCtx, puuid, api.MatchListQuery{
		Count: constants.RecentMatchCount,
		Type:  s.matchType,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("puuid", puuid).Msg("failed to list matches")
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	fetched := make([]*domain.Match, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(constants.MatchDetailConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			match, err := s.details.GetMatch(ctx, id)
			if err != nil {
				s.logger.Warn().Err(err).Str("match_id", id).Msg("skipping match, detail fetch failed")
				return nil
			}
			fetched[i] = match
			return nil
		})
	}
	_ = g.Wait()

	matches := make([]*domain.Match, 0, len(fetched))
	for _, m := range fetched {
		if m != nil {
			matches = append(matches, m)
		}
	}

	s.logger.Info().Str("puuid", puuid).Int("count", len(matches)).Msg("recent matches fetched")
	return matches, nil
}
