package proxy

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/config"
	"master-or-disaster/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	RiotPathPrefix = "/api/riotgames/"
	queryFormUsage = "/api/riotgames?region=europe&path=riot/account/v1/accounts/by-riot-id/Name/Tag"
)

// Regions is the ordered set of routing values the proxy forwards to.
var Regions = []string{
	"europe", "americas", "asia", "sea",
	"eun1", "euw1", "na1", "kr", "jp1", "br1", "la1", "la2",
	"oc1", "tr1", "ru", "ph2", "sg2", "th2", "tw2", "vn2",
}

// AllowedPrefixes are the upstream API families the proxy exposes.
var AllowedPrefixes = []string{
	"riot/account/v1/",
	"lol/summoner/v4/",
	"lol/match/v5/",
	"lol/league/v4/",
	"lol/champion-mastery/v4/",
}

var regionSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Regions))
	for _, r := range Regions {
		m[r] = struct{}{}
	}
	return m
}()

var (
	dotRuns   = regexp.MustCompile(`\.{2,}`)
	slashRuns = regexp.MustCompile(`/+`)
)

func IsValidRegion(region string) bool {
	_, ok := regionSet[region]
	return ok
}

func IsAllowedPath(path string) bool {
	for _, prefix := range AllowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SanitizePath drops every run of two or more dots and collapses repeated
// slashes.
func SanitizePath(path string) string {
	return slashRuns.ReplaceAllString(dotRuns.ReplaceAllString(path, ""), "/")
}

// RiotProxy relays whitelisted GET requests to the regional game API hosts
// and attaches the server-side API key.
type RiotProxy struct {
	apiKey     string
	hostFormat string
	client     *fasthttp.Client
}

func NewRiotProxy(cfg *config.Config, client *fasthttp.Client) *RiotProxy {
	return &RiotProxy{apiKey: cfg.RiotAPIKey, hostFormat: cfg.RiotHostFormat, client: client}
}

type regionError struct {
	Error        string   `json:"error"`
	ValidRegions []string `json:"validRegions"`
}

type pathError struct {
	Error           string   `json:"error"`
	AllowedPrefixes []string `json:"allowedPrefixes"`
}

type usageError struct {
	Error string `json:"error"`
	Usage string `json:"usage"`
}

type rateLimitError struct {
	Error      string  `json:"error"`
	RetryAfter *string `json:"retryAfter"`
}

// ServePath handles /api/riotgames/{region}/{path...}.
func (p *RiotProxy) ServePath(w http.ResponseWriter, r *http.Request) {
	if !p.allowMethod(w, r) {
		return
	}

	rest := strings.TrimPrefix(r.URL.EscapedPath(), RiotPathPrefix)
	rawRegion, rawPath, _ := strings.Cut(rest, "/")
	region, err := url.PathUnescape(rawRegion)
	if err != nil {
		region = rawRegion
	}
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, pathError{Error: "Invalid API path", AllowedPrefixes: AllowedPrefixes})
		return
	}

	p.forward(w, r, region, path, r.URL.RawQuery)
}

// ServeQuery handles /api/riotgames?region=...&path=... where path may carry
// its own query string.
func (p *RiotProxy) ServeQuery(w http.ResponseWriter, r *http.Request) {
	if !p.allowMethod(w, r) {
		return
	}

	q := r.URL.Query()
	region := q.Get("region")
	rawPath := q.Get("path")
	if region == "" || rawPath == "" {
		writeJSON(w, http.StatusBadRequest, usageError{Error: "Missing region or path", Usage: queryFormUsage})
		return
	}

	path, rawQuery, _ := strings.Cut(rawPath, "?")
	p.forward(w, r, region, path, rawQuery)
}

func (p *RiotProxy) allowMethod(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodGet:
		return true
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	}
	return false
}

// forward takes the unescaped upstream API path.
func (p *RiotProxy) forward(w http.ResponseWriter, r *http.Request, region, path, rawQuery string) {
	logger := zerolog.Ctx(r.Context())

	if !IsValidRegion(region) {
		writeJSON(w, http.StatusBadRequest, regionError{Error: "Invalid region", ValidRegions: Regions})
		return
	}

	path = SanitizePath(path)
	if !IsAllowedPath(path) {
		writeJSON(w, http.StatusBadRequest, pathError{Error: "Invalid API path", AllowedPrefixes: AllowedPrefixes})
		return
	}

	if p.apiKey == "" {
		logger.Error().Msg("riot api key is not configured")
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Service temporarily unavailable"})
		return
	}

	target := api.RegionBaseURL(p.hostFormat, region) + "/" + escapePath(path)
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(constants.UpstreamTokenHeader, p.apiKey)
	req.Header.SetContentType("application/json")

	if err := p.client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
		logger.Error().Err(err).Str("region", region).Str("path", path).Msg("riot api fetch failed")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "Failed to fetch data"})
		return
	}

	status := resp.StatusCode()
	logger.Debug().Str("region", region).Str("path", path).Int("status", status).Msg("riot api proxied")

	if status == http.StatusTooManyRequests {
		body := rateLimitError{Error: "Rate limit exceeded"}
		if retryAfter := string(resp.Header.Peek("Retry-After")); retryAfter != "" {
			body.RetryAfter = &retryAfter
			w.Header().Set("Retry-After", retryAfter)
		}
		writeJSON(w, http.StatusTooManyRequests, body)
		return
	}

	w.Header().Set("Content-Type", upstreamContentType(resp, "application/json"))
	w.Header().Set("Cache-Control", constants.ProxyCacheControl)
	w.WriteHeader(status)
	_, _ = w.Write(resp.Body())
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
