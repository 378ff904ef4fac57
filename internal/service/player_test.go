package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

type fakePlayerAPI struct {
	mu           sync.Mutex
	accountCalls int
	masteryCount int
	masteryErr   error
}

func (f *fakePlayerAPI) GetAccountByRiotID(_ context.Context, gameName, tagLine string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountCalls++
	if gameName == "ghost" {
		return nil, &api.Error{StatusCode: 404}
	}
	return &domain.Account{Puuid: "puuid-" + gameName, GameName: gameName, TagLine: tagLine}, nil
}

func (f *fakePlayerAPI) GetSummonerByPUUID(_ context.Context, puuid string) (*domain.Summoner, error) {
	return &domain.Summoner{Puuid: puuid, SummonerLevel: 321}, nil
}

func (f *fakePlayerAPI) GetLeagueEntries(_ context.Context, puuid string) ([]domain.LeagueEntry, error) {
	return []domain.LeagueEntry{
		{Puuid: puuid, QueueType: domain.QueueTypeFlex, Tier: "GOLD"},
		{Puuid: puuid, QueueType: domain.QueueTypeSoloDuo, Tier: "EMERALD", Rank: "II"},
	}, nil
}

func (f *fakePlayerAPI) GetChampionMasteryTop(_ context.Context, _ string, count int) ([]domain.ChampionMastery, error) {
	f.mu.Lock()
	f.masteryCount = count
	f.mu.Unlock()
	if f.masteryErr != nil {
		return nil, f.masteryErr
	}
	return []domain.ChampionMastery{{ChampionID: 103}, {ChampionID: 99}, {ChampionID: 238}}, nil
}

func TestGetAccountCachesByFoldedRiotID(t *testing.T) {
	fake := &fakePlayerAPI{}
	svc := newPlayerService(fake, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.GetAccount(ctx, "CinosBBC", "EUNE")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.GetAccount(ctx, " cinosbbc ", "#eune")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached account differs (-first +second):\n%s", diff)
	}
	if fake.accountCalls != 1 {
		t.Errorf("upstream calls = %d, want 1", fake.accountCalls)
	}
}

func TestGetAccountErrors(t *testing.T) {
	svc := newPlayerService(&fakePlayerAPI{}, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.GetAccount(ctx, "", "EUNE"); !errors.Is(err, ErrInvalidRiotID) {
		t.Errorf("err = %v, want ErrInvalidRiotID", err)
	}
	if _, err := svc.GetAccount(ctx, "ghost", "EUNE"); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetProfile(t *testing.T) {
	fake := &fakePlayerAPI{}
	svc := newPlayerService(fake, zerolog.Nop())

	profile, err := svc.GetProfile(context.Background(), "Łowca dziekanów", "EUNE")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Account.Puuid != "puuid-Łowca dziekanów" {
		t.Errorf("puuid = %s", profile.Account.Puuid)
	}
	if profile.Summoner == nil || profile.Summoner.SummonerLevel != 321 {
		t.Errorf("summoner = %+v", profile.Summoner)
	}
	if profile.SoloQueue == nil || profile.SoloQueue.Tier != "EMERALD" {
		t.Errorf("solo queue = %+v", profile.SoloQueue)
	}
	if len(profile.TopMastery) != 3 || fake.masteryCount != 3 {
		t.Errorf("mastery = %d entries, requested %d", len(profile.TopMastery), fake.masteryCount)
	}
}

func TestGetProfileFailsWhenAnyPartFails(t *testing.T) {
	svc := newPlayerService(&fakePlayerAPI{masteryErr: &api.Error{StatusCode: 429, RetryAfter: "3"}}, zerolog.Nop())

	if _, err := svc.GetProfile(context.Background(), "cinosBBC", "EUNE"); !errors.Is(err, api.ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}
