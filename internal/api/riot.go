package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"master-or-disaster/internal/config"
	"master-or-disaster/internal/constants"
	"master-or-disaster/internal/domain"

	"github.com/valyala/fasthttp"
)

type RiotClient struct {
	apiKey         string
	hostFormat     string
	accountRegion  string
	platformRegion string
	client         *fasthttp.Client
	rateLimitMu    sync.RWMutex
	rateLimit      RateLimitInfo
}

// RateLimitInfo mirrors the last rate-limit headers seen from upstream.
// Limits are "count:seconds" pairs, e.g. "20:1,100:120".
type RateLimitInfo struct {
	AppLimit    string    `json:"appLimit"`
	AppCount    string    `json:"appCount"`
	MethodLimit string    `json:"methodLimit"`
	MethodCount string    `json:"methodCount"`
	RetryAfter  int       `json:"retryAfter"`
	LastStatus  int       `json:"lastStatus"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewRiotClient(cfg *config.Config, client *fasthttp.Client) *RiotClient {
	return &RiotClient{
		apiKey:         cfg.RiotAPIKey,
		hostFormat:     cfg.RiotHostFormat,
		accountRegion:  cfg.AccountRegion,
		platformRegion: cfg.PlatformRegion,
		client:         client,
	}
}

// NewUpstreamClient is the fasthttp client shared by the API client and the proxies.
func NewUpstreamClient() *fasthttp.Client {
	return &fasthttp.Client{
		MaxConnsPerHost:     100,
		ReadTimeout:         constants.ExternalAPITimeout,
		WriteTimeout:        constants.ExternalAPITimeout,
		MaxIdleConnDuration: 1 * time.Minute,
	}
}

func (c *RiotClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RiotClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if v := string(resp.Header.Peek("X-App-Rate-Limit")); v != "" {
		c.rateLimit.AppLimit = v
	}
	if v := string(resp.Header.Peek("X-App-Rate-Limit-Count")); v != "" {
		c.rateLimit.AppCount = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit")); v != "" {
		c.rateLimit.MethodLimit = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit-Count")); v != "" {
		c.rateLimit.MethodCount = v
	}
	c.rateLimit.RetryAfter = 0
	if v := string(resp.Header.Peek("Retry-After")); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			c.rateLimit.RetryAfter = val
		}
	}
	c.rateLimit.LastStatus = resp.StatusCode()
	c.rateLimit.UpdatedAt = time.Now()
}

// RegionBaseURL expands a host format such as "https://%s.api.riotgames.com"
// for region. A format without a verb is used as is.
func RegionBaseURL(hostFormat, region string) string {
	if !strings.Contains(hostFormat, "%s") {
		return strings.TrimSuffix(hostFormat, "/")
	}
	return fmt.Sprintf(hostFormat, region)
}

func (c *RiotClient) regionURL(region, path string) string {
	return RegionBaseURL(c.hostFormat, region) + "/" + path
}

func (c *RiotClient) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*domain.Account, error) {
	u := c.regionURL(c.accountRegion, fmt.Sprintf("riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine)))
	return doRequest[domain.Account](ctx, c, u)
}

func (c *RiotClient) GetSummonerByPUUID(ctx context.Context, puuid string) (*domain.Summoner, error) {
	u := c.regionURL(c.platformRegion, "lol/summoner/v4/summoners/by-puuid/"+url.PathEscape(puuid))
	return doRequest[domain.Summoner](ctx, c, u)
}

// MatchListQuery is the query of the match-v5 "ids by puuid" endpoint.
type MatchListQuery struct {
	Start     int
	Count     int
	Type      string
	Queue     int
	StartTime int64
	EndTime   int64
}

func (q MatchListQuery) Values() url.Values {
	v := url.Values{}
	if q.StartTime > 0 {
		v.Set("startTime", strconv.FormatInt(q.StartTime, 10))
	}
	if q.EndTime > 0 {
		v.Set("endTime", strconv.FormatInt(q.EndTime, 10))
	}
	if q.Queue > 0 {
		v.Set("queue", strconv.Itoa(q.Queue))
	}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	count := q.Count
	if count <= 0 {
		count = constants.MatchBatchSize
	}
	v.Set("start", strconv.Itoa(max(q.Start, 0)))
	v.Set("count", strconv.Itoa(count))
	return v
}

// ListMatchIDs returns match ids newest first. A page shorter than q.Count
// means the listing is exhausted.
func (c *RiotClient) ListMatchIDs(ctx context.Context, puuid string, q MatchListQuery) ([]string, error) {
	u := c.regionURL(c.accountRegion, "lol/match/v5/matches/by-puuid/"+url.PathEscape(puuid)+"/ids") +
		"?" + q.Values().Encode()
	ids, err := doRequest[[]string](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

func (c *RiotClient) GetMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	u := c.regionURL(c.accountRegion, "lol/match/v5/matches/"+url.PathEscape(matchID))
	return doRequest[domain.Match](ctx, c, u)
}

func (c *RiotClient) GetLeagueEntries(ctx context.Context, puuid string) ([]domain.LeagueEntry, error) {
	u := c.regionURL(c.platformRegion, "lol/league/v4/entries/by-puuid/"+url.PathEscape(puuid))
	entries, err := doRequest[[]domain.LeagueEntry](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

func (c *RiotClient) GetChampionMasteryTop(ctx context.Context, puuid string, count int) ([]domain.ChampionMastery, error) {
	u := c.regionURL(c.platformRegion, "lol/champion-mastery/v4/champion-masteries/by-puuid/"+url.PathEscape(puuid)+"/top")
	if count > 0 {
		u += "?count=" + strconv.Itoa(count)
	}
	masteries, err := doRequest[[]domain.ChampionMastery](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *masteries, nil
}

func doRequest[T any](ctx context.Context, client *RiotClient, url string) (*T, error) {
	if client.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(constants.UpstreamTokenHeader, client.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &Error{
			StatusCode: resp.StatusCode(),
			RetryAfter: string(resp.Header.Peek("Retry-After")),
			URL:        url,
		}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return &result, nil
}
