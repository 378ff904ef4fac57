package config

import (
	"os"
	"strings"
	"time"

	"master-or-disaster/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	RiotAPIKey        string
	RiotHostFormat    string
	AccountRegion     string
	PlatformRegion    string
	DDragonBaseURL    string
	DDragonVersion    string
	AllowedOrigin     string
	ServerPort        string
	LogLevel          string
	CacheBackend      string
	RedisURL          string
	PlayersFile       string
	CommonMatchType   string
	SessionIdleTTL    time.Duration
	SessionSweepEvery time.Duration
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:        getEnv("RIOT_API_KEY", ""),
		RiotHostFormat:    getEnv("RIOT_API_HOST_FORMAT", "https://%s.api.riotgames.com"),
		AccountRegion:     getEnv("RIOT_ACCOUNT_REGION", "europe"),
		PlatformRegion:    getEnv("RIOT_PLATFORM_REGION", "eun1"),
		DDragonBaseURL:    strings.TrimSuffix(getEnv("DDRAGON_CDN_BASE_URL", "https://ddragon.leagueoflegends.com/cdn"), "/"),
		DDragonVersion:    getEnv("DDRAGON_CDN_VERSION", constants.DefaultDDragonVersion),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", ""),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CacheBackend:      strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendMemory)),
		RedisURL:          getEnv("REDIS_URL", ""),
		PlayersFile:       getEnv("PLAYERS_FILE", "players.yaml"),
		CommonMatchType:   getEnv("COMMON_MATCH_TYPE", constants.DefaultMatchType),
		SessionIdleTTL:    getDuration(logger, "SESSION_IDLE_TTL", 30*time.Minute),
		SessionSweepEvery: getDuration(logger, "SESSION_SWEEP_INTERVAL", 5*time.Minute),
	}

	// a missing key is not fatal: upstream-bound routes answer 503 until it is set
	if cfg.RiotAPIKey == "" {
		logger.Warn().Msg("RIOT_API_KEY is not set, upstream requests will be rejected")
	}

	// "all" lifts the match-type filter
	if strings.EqualFold(cfg.CommonMatchType, "all") {
		cfg.CommonMatchType = ""
	}

	if cfg.CacheBackend == CacheBackendRedis && cfg.RedisURL == "" {
		logger.Warn().Msg("CACHE_BACKEND=redis without REDIS_URL, falling back to memory cache")
		cfg.CacheBackend = CacheBackendMemory
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("account_region", cfg.AccountRegion).
		Str("platform_region", cfg.PlatformRegion).
		Str("ddragon_version", cfg.DDragonVersion).
		Str("cache_backend", cfg.CacheBackend).
		Str("players_file", cfg.PlayersFile).
		Str("common_match_type", cfg.CommonMatchType).
		Dur("session_idle_ttl", cfg.SessionIdleTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(logger zerolog.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

var Module = fx.Provide(Load)
