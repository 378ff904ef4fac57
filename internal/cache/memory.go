package cache

import (
	"context"
	"sync"

	"master-or-disaster/internal/domain"
)

// Memory is unbounded; a process only ever touches a few hundred matches.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*domain.Match
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*domain.Match)}
}

func (c *Memory) Get(_ context.Context, matchID string) (*domain.Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[matchID]
	return m, ok
}

func (c *Memory) Put(_ context.Context, match *domain.Match) {
	if match == nil || match.Metadata.MatchID == "" {
		return
	}
	c.mu.Lock()
	c.entries[match.Metadata.MatchID] = match
	c.mu.Unlock()
}

func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
