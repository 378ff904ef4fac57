package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/constants"
	"master-or-disaster/internal/domain"
	"master-or-disaster/internal/preferences"
	"master-or-disaster/internal/roster"
	"master-or-disaster/internal/service"
	"master-or-disaster/internal/stats"

	"github.com/rs/zerolog"
)

type ProfileSource interface {
	GetProfile(ctx context.Context, gameName, tagLine string) (*domain.PlayerProfile, error)
}

type RecentMatchSource interface {
	RecentMatches(ctx context.Context, puuid string) ([]*domain.Match, error)
}

type CommonMatchSource interface {
	Get(ctx context.Context, puuid1, puuid2 string, more bool) (service.CommonMatchesSnapshot, error)
	Reset(puuid1, puuid2 string)
}

type RateLimitSource interface {
	GetRateLimitInfo() api.RateLimitInfo
}

// Dashboard serves the JSON API behind the dashboard pages.
type Dashboard struct {
	profiles   ProfileSource
	recent     RecentMatchSource
	common     CommonMatchSource
	rateLimits RateLimitSource
	roster     *roster.Roster
	logger     zerolog.Logger
}

func NewDashboard(
	playerSvc *service.PlayerService,
	matchSvc *service.MatchService,
	commonSvc *service.CommonMatchService,
	riot *api.RiotClient,
	r *roster.Roster,
	logger zerolog.Logger,
) *Dashboard {
	return newDashboard(playerSvc, matchSvc, commonSvc, riot, r, logger)
}

func newDashboard(profiles ProfileSource, recent RecentMatchSource, common CommonMatchSource, rateLimits RateLimitSource, r *roster.Roster, logger zerolog.Logger) *Dashboard {
	return &Dashboard{
		profiles:   profiles,
		recent:     recent,
		common:     common,
		rateLimits: rateLimits,
		roster:     r,
		logger:     logger,
	}
}

func (d *Dashboard) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/players", d.ListPlayers)
	mux.HandleFunc("GET /api/players/by-riot-id/{gameName}/{tagLine}", d.GetProfile)
	mux.HandleFunc("GET /api/players/{puuid}/matches", d.GetRecentMatches)
	mux.HandleFunc("GET /api/together/{puuid1}/{puuid2}", d.GetTogether)
	mux.HandleFunc("GET /api/preferences", d.GetPreferences)
	mux.HandleFunc("PUT /api/preferences", d.PutPreferences)
	mux.HandleFunc("GET /api/status", d.GetStatus)

	d.logger.Debug().Strs("players", d.roster.IDs()).Msg("dashboard routes registered")
}

type trackedPlayerView struct {
	roster.Player
	SelectedAccount int            `json:"selectedAccount"`
	Account         roster.Account `json:"account"`
}

type playersResponse struct {
	Players     []trackedPlayerView      `json:"players"`
	Preferences *preferences.Preferences `json:"preferences"`
}

func (d *Dashboard) ListPlayers(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.Load(NewCookieStorage(w, r), d.roster.IDs())

	players := make([]trackedPlayerView, 0, len(d.roster.Players))
	for _, p := range d.roster.Players {
		idx := prefs.Selected(p.ID)
		if idx >= len(p.Accounts) {
			idx = 0
		}
		players = append(players, trackedPlayerView{Player: p, SelectedAccount: idx, Account: p.Account(idx)})
	}

	writeJSON(w, http.StatusOK, playersResponse{Players: players, Preferences: prefs})
}

func (d *Dashboard) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := d.profiles.GetProfile(r.Context(), r.PathValue("gameName"), r.PathValue("tagLine"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type recentMatchesResponse struct {
	Matches []playerMatchView           `json:"matches"`
	Stats   stats.AggregatedPlayerStats `json:"stats"`
}

func (d *Dashboard) GetRecentMatches(w http.ResponseWriter, r *http.Request) {
	puuid := r.PathValue("puuid")

	matches, err := d.recent.RecentMatches(r.Context(), puuid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]playerMatchView, 0, len(matches))
	for _, m := range matches {
		if v, ok := newPlayerMatchView(m, puuid); ok {
			views = append(views, v)
		}
	}

	writeJSON(w, http.StatusOK, recentMatchesResponse{
		Matches: views,
		Stats:   stats.CalculateAggregatedStats(matches, puuid),
	})
}

type togetherResponse struct {
	Matches        []togetherMatchView         `json:"matches"`
	Partial        bool                        `json:"partial"`
	HasMore        bool                        `json:"hasMore"`
	NextOffset     int                         `json:"nextOffset"`
	Player1        stats.AggregatedPlayerStats `json:"player1"`
	Player2        stats.AggregatedPlayerStats `json:"player2"`
	MasterDisaster *stats.MasterDisasterResult `json:"masterDisaster"`
	Summary        *stats.TogetherSummary      `json:"summary"`
}

// GetTogether returns the common matches of two accounts. more=true extends
// the result by another page; reset=true starts over from the newest match.
func (d *Dashboard) GetTogether(w http.ResponseWriter, r *http.Request) {
	puuid1, puuid2 := r.PathValue("puuid1"), r.PathValue("puuid2")
	if puuid1 == puuid2 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Pick two different accounts"})
		return
	}

	q := r.URL.Query()
	more, _ := strconv.ParseBool(q.Get("more"))
	if reset, _ := strconv.ParseBool(q.Get("reset")); reset {
		d.common.Reset(puuid1, puuid2)
		more = false
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.CommonMatchTimeout)
	defer cancel()

	snap, err := d.common.Get(ctx, puuid1, puuid2, more)
	partial := false
	if err != nil {
		// a scan that ran out of time still renders what it found
		if !errors.Is(err, context.DeadlineExceeded) || r.Context().Err() != nil {
			writeError(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).Warn().Err(err).Int("found", len(snap.Matches)).Msg("common match scan timed out, returning partial result")
		partial = true
	}

	views := make([]togetherMatchView, 0, len(snap.Matches))
	for _, m := range snap.Matches {
		views = append(views, newTogetherMatchView(m, puuid1, puuid2))
	}

	resp := togetherResponse{
		Matches:    views,
		Partial:    partial,
		HasMore:    snap.HasMore,
		NextOffset: snap.NextOffset,
		Player1:    stats.CalculateAggregatedStats(snap.Matches, puuid1),
		Player2:    stats.CalculateAggregatedStats(snap.Matches, puuid2),
		Summary:    stats.SummarizeTogether(snap.Matches, puuid1, puuid2),
	}
	if len(snap.Matches) > 0 {
		md := stats.DetermineMasterDisaster(resp.Player1, resp.Player2, puuid1, puuid2)
		resp.MasterDisaster = &md
	}

	writeJSON(w, http.StatusOK, resp)
}

func (d *Dashboard) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, preferences.Load(NewCookieStorage(w, r), d.roster.IDs()))
}

type preferencesUpdate struct {
	Theme            *preferences.Theme `json:"theme"`
	SelectedAccounts map[string]int     `json:"selectedAccounts"`
}

func (d *Dashboard) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var update preferencesUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}

	storage := NewCookieStorage(w, r)
	prefs := preferences.Load(storage, d.roster.IDs())

	if update.Theme != nil {
		if err := prefs.SetTheme(*update.Theme); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
	}
	for id, idx := range update.SelectedAccounts {
		player, ok := d.roster.Find(id)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Unknown player " + strconv.Quote(id)})
			return
		}
		if idx >= len(player.Accounts) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Account index out of range for " + strconv.Quote(id)})
			return
		}
		if err := prefs.SelectAccount(id, idx); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
	}

	if err := prefs.Save(storage); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to save preferences")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to save preferences"})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type statusResponse struct {
	RateLimit api.RateLimitInfo `json:"rateLimit"`
}

func (d *Dashboard) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{RateLimit: d.rateLimits.GetRateLimitInfo()})
}

// errorStatus maps a service error to an HTTP status and a client-safe message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRiotID):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, api.ErrRateLimited):
		return http.StatusTooManyRequests, "Rate limit exceeded"
	case errors.Is(err, api.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	case errors.Is(err, service.ErrFetchInProgress):
		return http.StatusConflict, "Fetch already in progress"
	case errors.Is(err, service.ErrSessionInvalidated):
		return http.StatusConflict, "Session was reset"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Upstream timed out"
	default:
		return http.StatusBadGateway, "Failed to fetch data"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")

	var apiErr *api.Error
	if status == http.StatusTooManyRequests && errors.As(err, &apiErr) && apiErr.RetryAfter != "" {
		w.Header().Set("Retry-After", apiErr.RetryAfter)
	}
	writeJSON(w, status, errorBody{Error: msg})
}
