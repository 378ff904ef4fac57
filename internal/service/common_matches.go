package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/constants"
	"master-or-disaster/internal/domain"

	"github.com/rs/zerolog"
)

var (
	ErrFetchInProgress    = errors.New("common matches: fetch already in progress")
	ErrSessionInvalidated = errors.New("common matches: session invalidated")
)

// MatchLister pages through a player's match ids, newest first.
type MatchLister interface {
	ListMatchIDs(ctx context.Context, puuid string, q api.MatchListQuery) ([]string, error)
}

type CommonMatchesSnapshot struct {
	Matches    []*domain.Match
	HasMore    bool
	NextOffset int
}

// CommonMatchAggregator discovers, a page at a time, the most recent matches
// that two accounts played together. It walks the first account's match list
// forward only, never processes a match id twice and stops once the listing
// runs out.
type CommonMatchAggregator struct {
	lister     MatchLister
	details    MatchFetcher
	puuid1     string
	puuid2     string
	batchSize  int
	pageTarget int
	matchType  string
	onMatch    func(match *domain.Match, found int)
	logger     zerolog.Logger

	running atomic.Bool

	mu          sync.Mutex
	generation  uint64
	initialized bool
	nextOffset  int
	visited     map[string]struct{}
	exhausted   bool
	accumulated []*domain.Match
}

type AggregatorOption func(*CommonMatchAggregator)

func WithBatchSize(n int) AggregatorOption {
	return func(a *CommonMatchAggregator) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

func WithPageTarget(n int) AggregatorOption {
	return func(a *CommonMatchAggregator) {
		if n > 0 {
			a.pageTarget = n
		}
	}
}

// WithMatchType sets the match-list type filter; empty lists every queue.
func WithMatchType(t string) AggregatorOption {
	return func(a *CommonMatchAggregator) { a.matchType = t }
}

// WithProgress is called after every newly found common match.
func WithProgress(fn func(match *domain.Match, found int)) AggregatorOption {
	return func(a *CommonMatchAggregator) { a.onMatch = fn }
}

func NewCommonMatchAggregator(lister MatchLister, details MatchFetcher, puuid1, puuid2 string, logger zerolog.Logger, opts ...AggregatorOption) *CommonMatchAggregator {
	a := &CommonMatchAggregator{
		lister:     lister,
		details:    details,
		puuid1:     puuid1,
		puuid2:     puuid2,
		batchSize:  constants.MatchBatchSize,
		pageTarget: constants.CommonMatchTarget,
		matchType:  constants.DefaultMatchType,
		logger:     logger.With().Str("puuid1", puuid1).Str("puuid2", puuid2).Logger(),
		visited:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ready is false while either account is still unresolved.
func (a *CommonMatchAggregator) ready() bool {
	return a.puuid1 != "" && a.puuid2 != ""
}

// FetchInitial forgets everything found so far and scans from the newest
// match until one page target of common matches is found. A run cut short by
// its context keeps what it found and counts as initialized, so the next
// FetchMore continues from there.
func (a *CommonMatchAggregator) FetchInitial(ctx context.Context) (CommonMatchesSnapshot, error) {
	if !a.ready() {
		return a.Snapshot(), nil
	}
	if !a.running.CompareAndSwap(false, true) {
		return a.Snapshot(), ErrFetchInProgress
	}
	defer a.running.Store(false)

	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.initialized = false
	a.nextOffset = 0
	a.visited = make(map[string]struct{})
	a.exhausted = false
	a.accumulated = nil
	a.mu.Unlock()

	err := a.fetchCommon(ctx, gen, a.pageTarget)
	if err == nil || isContextErr(err) {
		a.mu.Lock()
		if a.generation == gen {
			a.initialized = true
		}
		a.mu.Unlock()
	}
	return a.Snapshot(), err
}

// FetchMore extends the result by one page target. It is a no-op once the
// listing is exhausted.
func (a *CommonMatchAggregator) FetchMore(ctx context.Context) (CommonMatchesSnapshot, error) {
	if !a.ready() {
		return a.Snapshot(), nil
	}
	if !a.running.CompareAndSwap(false, true) {
		return a.Snapshot(), ErrFetchInProgress
	}
	defer a.running.Store(false)

	a.mu.Lock()
	if a.exhausted {
		a.mu.Unlock()
		return a.Snapshot(), nil
	}
	gen := a.generation
	target := len(a.accumulated) + a.pageTarget
	a.mu.Unlock()

	err := a.fetchCommon(ctx, gen, target)
	return a.Snapshot(), err
}

// Invalidate makes any in-flight run stop without touching state again.
func (a *CommonMatchAggregator) Invalidate() {
	a.mu.Lock()
	a.generation++
	a.mu.Unlock()
}

func (a *CommonMatchAggregator) Initialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

func (a *CommonMatchAggregator) Running() bool {
	return a.running.Load()
}

func (a *CommonMatchAggregator) Snapshot() CommonMatchesSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	matches := make([]*domain.Match, len(a.accumulated))
	copy(matches, a.accumulated)
	return CommonMatchesSnapshot{
		Matches:    matches,
		HasMore:    a.ready() && !a.exhausted,
		NextOffset: a.nextOffset,
	}
}

func (a *CommonMatchAggregator) fetchCommon(ctx context.Context, gen uint64, target int) error {
	for {
		a.mu.Lock()
		if a.generation != gen {
			a.mu.Unlock()
			return ErrSessionInvalidated
		}
		if len(a.accumulated) >= target || a.exhausted {
			a.mu.Unlock()
			return nil
		}
		offset := a.nextOffset
		a.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := a.listPage(ctx, offset)
		if err != nil {
			a.logger.Error().Err(err).Int("offset", offset).Msg("failed to list matches")
			return fmt.Errorf("failed to list matches at offset %d: %w", offset, err)
		}

		if len(page) == 0 {
			a.mu.Lock()
			if a.generation == gen {
				a.exhausted = true
			}
			a.mu.Unlock()
			a.logger.Debug().Int("offset", offset).Msg("match list exhausted")
			return nil
		}

		consumed, scanErr := a.scanPage(ctx, gen, page, target)

		a.mu.Lock()
		if a.generation != gen {
			a.mu.Unlock()
			return ErrSessionInvalidated
		}
		// an interrupted page is listed again; visited ids are skipped then
		if scanErr == nil {
			a.nextOffset += a.batchSize
			if len(page) < a.batchSize {
				a.exhausted = true
			}
		}
		found := len(a.accumulated)
		next := a.nextOffset
		a.mu.Unlock()

		a.logger.Debug().
			Int("offset", offset).
			Int("page_size", len(page)).
			Int("consumed", consumed).
			Int("found", found).
			Int("next_offset", next).
			Msg("scanned match page")

		if scanErr != nil {
			return scanErr
		}
	}
}

func (a *CommonMatchAggregator) listPage(ctx context.Context, offset int) ([]string, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	return a.lister.ListMatchIDs(apiCtx, a.puuid1, api.MatchListQuery{
		Start: offset,
		Count: a.batchSize,
		Type:  a.matchType,
	})
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// scanPage returns how many ids of page were processed. It stops right after
// the match that reaches target.
func (a *CommonMatchAggregator) scanPage(ctx context.Context, gen uint64, page []string, target int) (int, error) {
	for i, matchID := range page {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		a.mu.Lock()
		if a.generation != gen {
			a.mu.Unlock()
			return i, ErrSessionInvalidated
		}
		_, seen := a.visited[matchID]
		if !seen {
			a.visited[matchID] = struct{}{}
		}
		a.mu.Unlock()
		if seen {
			continue
		}

		match, err := a.details.GetMatch(ctx, matchID)
		if err != nil {
			if ctx.Err() != nil {
				// not processed; let the next run retry it
				a.mu.Lock()
				delete(a.visited, matchID)
				a.mu.Unlock()
				return i, ctx.Err()
			}
			a.logger.Warn().Err(err).Str("match_id", matchID).Msg("skipping match, detail fetch failed")
			continue
		}

		if !match.HasParticipants(a.puuid1, a.puuid2) {
			continue
		}

		a.mu.Lock()
		if a.generation != gen {
			a.mu.Unlock()
			return i, ErrSessionInvalidated
		}
		a.accumulated = append(a.accumulated, match)
		found := len(a.accumulated)
		a.mu.Unlock()

		if a.onMatch != nil {
			a.onMatch(match, found)
		}
		if found >= target {
			return i + 1, nil
		}
	}
	return len(page), nil
}
