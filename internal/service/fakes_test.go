package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/domain"
)

// fakeLister serves pages out of a fixed newest-first id list.
type fakeLister struct {
	mu      sync.Mutex
	ids     []string
	calls   []api.MatchListQuery
	failAt  map[int]error
	blockCh chan struct{}
}

func (f *fakeLister) ListMatchIDs(ctx context.Context, puuid string, q api.MatchListQuery) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	block := f.blockCh
	err := f.failAt[q.Start]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	if q.Start >= len(f.ids) {
		return []string{}, nil
	}
	end := min(q.Start+q.Count, len(f.ids))
	page := make([]string, end-q.Start)
	copy(page, f.ids[q.Start:end])
	return page, nil
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeDetails returns matches by id and counts fetches. Stalled ids block
// until the context ends.
type fakeDetails struct {
	mu      sync.Mutex
	matches map[string]*domain.Match
	failing map[string]bool
	stalled map[string]bool
	fetched map[string]int
}

func newFakeDetails() *fakeDetails {
	return &fakeDetails{
		matches: make(map[string]*domain.Match),
		failing: make(map[string]bool),
		stalled: make(map[string]bool),
		fetched: make(map[string]int),
	}
}

func (f *fakeDetails) GetMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	f.mu.Lock()
	f.fetched[matchID]++
	stall := f.stalled[matchID]
	failing := f.failing[matchID]
	m, ok := f.matches[matchID]
	f.mu.Unlock()

	if stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if failing {
		return nil, errors.New("upstream exploded")
	}
	if !ok {
		return nil, fmt.Errorf("match %s: %w", matchID, api.ErrNotFound)
	}
	return m, nil
}

func (f *fakeDetails) fetchCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched[id]
}

func matchWith(id string, puuids ...string) *domain.Match {
	m := &domain.Match{Metadata: domain.MatchMetadata{MatchID: id, Participants: puuids}}
	for _, p := range puuids {
		m.Info.Participants = append(m.Info.Participants, domain.Participant{Puuid: p})
	}
	return m
}

// history builds n match ids for "a"; ids whose index is in shared also
// include "b".
func history(n int, shared map[int]bool) ([]string, *fakeDetails) {
	details := newFakeDetails()
	ids := make([]string, n)
	for i := range n {
		id := fmt.Sprintf("EUN1_%03d", i)
		ids[i] = id
		if shared[i] {
			details.matches[id] = matchWith(id, "a", "b", "x")
		} else {
			details.matches[id] = matchWith(id, "a", "x")
		}
	}
	return ids, details
}

func matchIDs(matches []*domain.Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Metadata.MatchID
	}
	return ids
}
