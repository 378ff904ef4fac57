package service

import (
	"context"
	"sync"
	"time"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/config"
	"master-or-disaster/internal/domain"

	"github.com/rs/zerolog"
)

type pairKey struct {
	puuid1 string
	puuid2 string
}

type commonSession struct {
	agg      *CommonMatchAggregator
	lastUsed time.Time
}

// CommonMatchService keeps one aggregator per ordered account pair so that
// "load more" requests continue where the previous request stopped.
type CommonMatchService struct {
	lister    MatchLister
	details   MatchFetcher
	matchType string
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[pairKey]*commonSession
}

func NewCommonMatchService(riot *api.RiotClient, details *MatchDetailService, cfg *config.Config, logger zerolog.Logger) *CommonMatchService {
	return newCommonMatchService(riot, details, cfg.CommonMatchType, logger)
}

func newCommonMatchService(lister MatchLister, details MatchFetcher, matchType string, logger zerolog.Logger) *CommonMatchService {
	return &CommonMatchService{
		lister:    lister,
		details:   details,
		matchType: matchType,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[pairKey]*commonSession),
	}
}

// Get returns the common matches of the pair. The first call for a pair runs
// the initial scan; later calls return the same result unless more is set.
func (s *CommonMatchService) Get(ctx context.Context, puuid1, puuid2 string, more bool) (CommonMatchesSnapshot, error) {
	if puuid1 == "" || puuid2 == "" {
		return CommonMatchesSnapshot{Matches: []*domain.Match{}}, nil
	}

	agg := s.session(puuid1, puuid2)

	if !agg.Initialized() {
		s.logger.Info().Str("puuid1", puuid1).Str("puuid2", puuid2).Msg("starting common match scan")
		return agg.FetchInitial(ctx)
	}
	if more {
		s.logger.Info().Str("puuid1", puuid1).Str("puuid2", puuid2).Msg("loading more common matches")
		return agg.FetchMore(ctx)
	}
	return agg.Snapshot(), nil
}

// Reset drops the pair's session; the next Get starts from the newest match.
func (s *CommonMatchService) Reset(puuid1, puuid2 string) {
	key := pairKey{puuid1: puuid1, puuid2: puuid2}

	s.mu.Lock()
	sess, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()

	if ok {
		sess.agg.Invalidate()
		s.logger.Info().Str("puuid1", puuid1).Str("puuid2", puuid2).Msg("common match session reset")
	}
}

// SweepIdle evicts sessions unused for longer than maxIdle and reports how
// many were removed. Sessions with a run in flight are kept.
func (s *CommonMatchService) SweepIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, sess := range s.sessions {
		if sess.lastUsed.After(cutoff) || sess.agg.Running() {
			continue
		}
		sess.agg.Invalidate()
		delete(s.sessions, key)
		evicted++
	}
	return evicted
}

func (s *CommonMatchService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *CommonMatchService) session(puuid1, puuid2 string) *CommonMatchAggregator {
	key := pairKey{puuid1: puuid1, puuid2: puuid2}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		sess = &commonSession{
			agg: NewCommonMatchAggregator(s.lister, s.details, puuid1, puuid2, s.logger, WithMatchType(s.matchType)),
		}
		s.sessions[key] = sess
	}
	sess.lastUsed = s.now()
	return sess.agg
}
