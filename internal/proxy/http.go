package proxy

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"master-or-disaster/internal/config"
	"master-or-disaster/internal/constants"

	"github.com/rs/cors"
	"github.com/valyala/fasthttp"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func upstreamContentType(resp *fasthttp.Response, fallback string) string {
	if ct := string(resp.Header.ContentType()); ct != "" {
		return ct
	}
	return fallback
}

type pong struct {
	Pong bool  `json:"pong"`
	Time int64 `json:"time"`
}

// Ping reports liveness with the server clock in epoch milliseconds.
func Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pong{Pong: true, Time: time.Now().UnixMilli()})
}

var devOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// OriginAllowed accepts the configured origin, its subdomains on the same
// scheme and the local dev servers.
func OriginAllowed(allowedOrigin, origin string) bool {
	if origin == "" {
		return true
	}
	if allowedOrigin != "" {
		if origin == allowedOrigin {
			return true
		}
		if isSubdomainOrigin(allowedOrigin, origin) {
			return true
		}
	}
	for _, o := range devOrigins {
		if origin == o {
			return true
		}
	}
	return false
}

func isSubdomainOrigin(allowedOrigin, origin string) bool {
	allowed, err := url.Parse(allowedOrigin)
	if err != nil || allowed.Host == "" {
		return false
	}
	o, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return o.Scheme == allowed.Scheme && strings.HasSuffix(o.Host, "."+allowed.Host)
}

// CORS builds the cross-origin policy for the given methods.
func CORS(cfg *config.Config, credentials bool, methods ...string) *cors.Cors {
	return cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return OriginAllowed(cfg.AllowedOrigin, origin)
		},
		AllowedMethods:   methods,
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-ID"},
		AllowCredentials: credentials,
		MaxAge:           constants.CORSMaxAgeSeconds,
	})
}
