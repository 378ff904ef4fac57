package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 30 * time.Second
	CommonMatchTimeout = 2 * time.Minute
)

const (
	// matches are immutable once played; the TTL only bounds Redis memory
	MatchDetailCacheTTL  = 7 * 24 * time.Hour
	MatchDetailKeyPrefix = "matchdetails:"
)

const (
	MatchBatchSize         = 20
	CommonMatchTarget      = 10
	RecentMatchCount       = 10
	MatchDetailConcurrency = 5
	MasteryTopCount        = 3
	TopChampionCount       = 3
	DefaultMatchType       = "ranked"
)

const (
	ProxyCacheControl     = "public, max-age=60"
	ImageCacheControl     = "public, max-age=31536000, immutable"
	DataCacheControl      = "public, max-age=3600"
	CORSMaxAgeSeconds     = 86400
	UpstreamTokenHeader   = "X-Riot-Token"
	DefaultDDragonVersion = "14.24.1"
)

const (
	ShutdownTimeout = 5 * time.Second
)
