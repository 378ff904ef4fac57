package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestCommonMatchServiceGet(t *testing.T) {
	shared := map[int]bool{}
	for i := 0; i < 60; i += 2 {
		shared[i] = true
	}
	ids, details := history(60, shared)
	lister := &fakeLister{ids: ids}
	svc := newCommonMatchService(lister, details, "ranked", zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Get(ctx, "a", "b", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Matches) != 10 || !first.HasMore {
		t.Fatalf("initial: %d matches, hasMore %v", len(first.Matches), first.HasMore)
	}
	calls := lister.callCount()

	again, err := svc.Get(ctx, "a", "b", false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(matchIDs(first.Matches), matchIDs(again.Matches)); diff != "" {
		t.Errorf("repeat get differs (-first +again):\n%s", diff)
	}
	if lister.callCount() != calls {
		t.Errorf("repeat get made %d list calls", lister.callCount()-calls)
	}

	more, err := svc.Get(ctx, "a", "b", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(more.Matches) != 20 {
		t.Errorf("after more: %d matches, want 20", len(more.Matches))
	}

	if svc.SessionCount() != 1 {
		t.Errorf("sessions = %d, want 1", svc.SessionCount())
	}
	if _, err := svc.Get(ctx, "b", "a", false); err != nil {
		t.Fatal(err)
	}
	if svc.SessionCount() != 2 {
		t.Errorf("ordered pairs should be separate sessions, got %d", svc.SessionCount())
	}
}

func TestCommonMatchServiceEmptyPuuid(t *testing.T) {
	lister := &fakeLister{ids: []string{"EUN1_1"}}
	svc := newCommonMatchService(lister, newFakeDetails(), "ranked", zerolog.Nop())

	snap, err := svc.Get(context.Background(), "", "b", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Matches) != 0 || snap.Matches == nil {
		t.Errorf("matches = %v, want empty slice", snap.Matches)
	}
	if svc.SessionCount() != 0 || lister.callCount() != 0 {
		t.Error("unresolved account must not start a session")
	}
}

func TestCommonMatchServiceReset(t *testing.T) {
	ids, details := history(5, map[int]bool{0: true})
	lister := &fakeLister{ids: ids}
	svc := newCommonMatchService(lister, details, "ranked", zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Get(ctx, "a", "b", false); err != nil {
		t.Fatal(err)
	}
	calls := lister.callCount()

	svc.Reset("a", "b")
	if svc.SessionCount() != 0 {
		t.Fatal("reset should drop the session")
	}
	if _, err := svc.Get(ctx, "a", "b", false); err != nil {
		t.Fatal(err)
	}
	if lister.callCount() == calls {
		t.Error("get after reset should scan again")
	}
}

func TestCommonMatchServiceSweepIdle(t *testing.T) {
	ids, details := history(3, nil)
	svc := newCommonMatchService(&fakeLister{ids: ids}, details, "ranked", zerolog.Nop())

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := svc.Get(ctx, "a", "b", false); err != nil {
		t.Fatal(err)
	}
	now = now.Add(20 * time.Minute)
	if _, err := svc.Get(ctx, "a", "c", false); err != nil {
		t.Fatal(err)
	}

	now = now.Add(15 * time.Minute)
	if n := svc.SweepIdle(30 * time.Minute); n != 1 {
		t.Errorf("evicted = %d, want 1", n)
	}
	if svc.SessionCount() != 1 {
		t.Errorf("sessions left = %d, want 1", svc.SessionCount())
	}
}

func TestCommonMatchServiceKeepsPartialScanAfterTimeout(t *testing.T) {
	ids, details := history(20, map[int]bool{0: true, 1: true, 5: true})
	details.stalled["EUN1_003"] = true
	lister := &fakeLister{ids: ids}
	svc := newCommonMatchService(lister, details, "ranked", zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	snap, err := svc.Get(ctx, "a", "b", false)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if diff := cmp.Diff([]string{"EUN1_000", "EUN1_001"}, matchIDs(snap.Matches)); diff != "" {
		t.Errorf("partial matches (-want +got):\n%s", diff)
	}
	if !snap.HasMore || snap.NextOffset != 0 {
		t.Errorf("partial snapshot: hasMore %v, offset %d", snap.HasMore, snap.NextOffset)
	}

	details.mu.Lock()
	details.stalled["EUN1_003"] = false
	details.mu.Unlock()

	calls := lister.callCount()
	again, err := svc.Get(context.Background(), "a", "b", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Matches) != 2 || lister.callCount() != calls {
		t.Errorf("plain get after timeout rescanned: %d matches, %d list calls", len(again.Matches), lister.callCount()-calls)
	}

	more, err := svc.Get(context.Background(), "a", "b", true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"EUN1_000", "EUN1_001", "EUN1_005"}, matchIDs(more.Matches)); diff != "" {
		t.Errorf("after extend (-want +got):\n%s", diff)
	}
	if lister.calls[calls].Start != 0 {
		t.Errorf("extend listed from %d, want the interrupted page at 0", lister.calls[calls].Start)
	}
	if n := details.fetchCount("EUN1_000"); n != 1 {
		t.Errorf("EUN1_000 fetched %d times, want 1", n)
	}
}
