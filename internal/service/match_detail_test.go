package service

import (
	"context"
	"errors"
	"testing"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/cache"
	"master-or-disaster/internal/domain"

	"github.com/rs/zerolog"
)

func TestMatchDetailServiceCacheFirst(t *testing.T) {
	upstream := newFakeDetails()
	upstream.matches["EUN1_1"] = matchWith("EUN1_1", "a", "b")
	store := cache.NewMemory()
	svc := newMatchDetailService(upstream, store, zerolog.Nop())
	ctx := context.Background()

	for range 3 {
		m, err := svc.GetMatch(ctx, "EUN1_1")
		if err != nil {
			t.Fatal(err)
		}
		if m.Metadata.MatchID != "EUN1_1" {
			t.Fatalf("match id = %s", m.Metadata.MatchID)
		}
	}
	if n := upstream.fetchCount("EUN1_1"); n != 1 {
		t.Errorf("upstream fetches = %d, want 1", n)
	}
	if store.Len() != 1 {
		t.Errorf("cache size = %d, want 1", store.Len())
	}
}

func TestMatchDetailServiceUsesPrefilledCache(t *testing.T) {
	upstream := newFakeDetails()
	store := cache.NewMemory()
	store.Put(context.Background(), matchWith("EUN1_7", "a"))

	svc := newMatchDetailService(upstream, store, zerolog.Nop())
	if _, err := svc.GetMatch(context.Background(), "EUN1_7"); err != nil {
		t.Fatal(err)
	}
	if upstream.fetchCount("EUN1_7") != 0 {
		t.Error("cached match must not hit upstream")
	}
}

type staticFetcher struct {
	match *domain.Match
	err   error
}

func (f staticFetcher) GetMatch(context.Context, string) (*domain.Match, error) {
	return f.match, f.err
}

func TestMatchDetailServiceErrors(t *testing.T) {
	ctx := context.Background()

	svc := newMatchDetailService(staticFetcher{err: &api.Error{StatusCode: 404}}, cache.NewMemory(), zerolog.Nop())
	if _, err := svc.GetMatch(ctx, "EUN1_1"); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	store := cache.NewMemory()
	svc = newMatchDetailService(staticFetcher{match: &domain.Match{}}, store, zerolog.Nop())
	if _, err := svc.GetMatch(ctx, "EUN1_1"); err == nil {
		t.Error("match without metadata should fail")
	}
	if store.Len() != 0 {
		t.Error("malformed match must not be cached")
	}
}
