package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"master-or-disaster/internal/config"
	"master-or-disaster/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *RiotClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRiotClient(&config.Config{
		RiotAPIKey:     apiKey,
		RiotHostFormat: srv.URL,
		AccountRegion:  "europe",
		PlatformRegion: "eun1",
	}, NewUpstreamClient())
}

func TestRegionBaseURL(t *testing.T) {
	tests := []struct {
		format, region, want string
	}{
		{"https://%s.api.riotgames.com", "europe", "https://europe.api.riotgames.com"},
		{"http://127.0.0.1:9000/", "eun1", "http://127.0.0.1:9000"},
		{"http://127.0.0.1:9000", "eun1", "http://127.0.0.1:9000"},
	}
	for _, tt := range tests {
		if got := RegionBaseURL(tt.format, tt.region); got != tt.want {
			t.Errorf("RegionBaseURL(%q, %q) = %q, want %q", tt.format, tt.region, got, tt.want)
		}
	}
}

func TestGetAccountByRiotID(t *testing.T) {
	var gotPath, gotToken string
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotToken = r.Header.Get("X-Riot-Token")
		w.Header().Set("X-App-Rate-Limit", "20:1,100:120")
		w.Header().Set("X-App-Rate-Limit-Count", "1:1,1:120")
		_, _ = w.Write([]byte(`{"puuid":"p-1","gameName":"Łowca dziekanów","tagLine":"EUNE"}`))
	})

	acc, err := c.GetAccountByRiotID(context.Background(), "Łowca dziekanów", "EUNE")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&domain.Account{Puuid: "p-1", GameName: "Łowca dziekanów", TagLine: "EUNE"}, acc); diff != "" {
		t.Errorf("account (-want +got):\n%s", diff)
	}
	if gotPath != "/riot/account/v1/accounts/by-riot-id/%C5%81owca%20dziekan%C3%B3w/EUNE" {
		t.Errorf("path = %s", gotPath)
	}
	if gotToken != "secret" {
		t.Errorf("token = %q", gotToken)
	}

	info := c.GetRateLimitInfo()
	if info.AppLimit != "20:1,100:120" || info.AppCount != "1:1,1:120" || info.LastStatus != http.StatusOK {
		t.Errorf("rate limit info = %+v", info)
	}
}

func TestListMatchIDsQuery(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`["EUN1_2","EUN1_1"]`))
	})

	ids, err := c.ListMatchIDs(context.Background(), "p-1", MatchListQuery{Start: 20, Count: 20, Type: "ranked"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"EUN1_2", "EUN1_1"}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
	if gotPath != "/lol/match/v5/matches/by-puuid/p-1/ids" {
		t.Errorf("path = %s", gotPath)
	}
	if gotQuery != "count=20&start=20&type=ranked" {
		t.Errorf("query = %s", gotQuery)
	}
}

func TestMatchListQueryDefaults(t *testing.T) {
	v := MatchListQuery{Start: -5}.Values()
	if v.Get("start") != "0" || v.Get("count") != "20" || v.Has("type") {
		t.Errorf("values = %v", v)
	}
}

func TestUpstreamErrors(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lol/match/v5/matches/EUN1_404":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Header().Set("Retry-After", "12")
			w.WriteHeader(http.StatusTooManyRequests)
		}
	})

	_, err := c.GetMatch(context.Background(), "EUN1_404")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	_, err = c.GetLeagueEntries(context.Background(), "p-1")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.RetryAfter != "12" {
		t.Errorf("err = %#v", err)
	}
	if info := c.GetRateLimitInfo(); info.RetryAfter != 12 || info.LastStatus != http.StatusTooManyRequests {
		t.Errorf("rate limit info = %+v", info)
	}
}

func TestMissingAPIKey(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) { called = true })

	if _, err := c.GetSummonerByPUUID(context.Background(), "p-1"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
	if called {
		t.Error("upstream must not be called without a key")
	}
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.GetMatch(ctx, "EUN1_1"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestChampionMasteryTop(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"championId":103,"championLevel":7,"championPoints":250000}]`))
	})

	m, err := c.GetChampionMasteryTop(context.Background(), "p-1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 1 || m[0].ChampionID != 103 {
		t.Errorf("masteries = %+v", m)
	}
	if gotQuery != "count=3" {
		t.Errorf("query = %s", gotQuery)
	}
}

func TestRiotClientUsesInjectedClient(t *testing.T) {
	shared := NewUpstreamClient()
	c := NewRiotClient(&config.Config{RiotAPIKey: "secret"}, shared)
	if c.client != shared {
		t.Error("client should reuse the injected fasthttp client")
	}
}
