// Package config assembles the service's runtime configuration from
// environment variables (and an optional .env file), following the
// teacher's internal/util.GetEnv* helper pattern and validating every
// range spec.md §6 names: an out-of-range value is clamped to the nearer
// bound and an unparseable one falls back to the documented default, with a
// warning logged either way.
package config

import (
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/util"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/logger"
)

// Config is the fully-resolved, validated set of runtime knobs.
type Config struct {
	Port string

	WLOBaseURL    string
	WLOTimeout    int // seconds
	WLOMaxRetries int

	MaxCandidates int

	RateLimitRequests int
	RateLimitWindow   int // seconds

	LogLevel string

	CacheTTL     int // seconds
	CacheMaxSize int

	AdminAPIKey string
}

// Load reads and validates configuration from the process environment.
// util.LoadEnv (godotenv) should be called by the caller before Load, the
// way cmd/server/main.go does.
func Load() Config {
	cfg := Config{
		Port: util.GetEnvString("PORT", "8080"),

		WLOBaseURL:    util.GetEnvString("WLO_BASE_URL", "https://redaktion.staging.openeduhub.net/edu-sharing/rest"),
		WLOTimeout:    clampedInt("WLO_TIMEOUT", 60, 1, 600),
		WLOMaxRetries: clampedInt("WLO_MAX_RETRIES", 3, 0, 10),

		MaxCandidates: clampedInt("MAX_CANDIDATES", 40, 1, 1000),

		LogLevel: strings.ToUpper(util.GetEnvString("LOG_LEVEL", "INFO")),

		CacheTTL:     clampedInt("DETECTION_CACHE_TTL", 3600, 60, 86400),
		CacheMaxSize: clampedInt("DETECTION_CACHE_MAX_SIZE", 1000, 10, 10000),

		AdminAPIKey: util.GetEnvString("ADMIN_API_KEY", ""),
	}

	cfg.RateLimitRequests, cfg.RateLimitWindow = parseRateLimit(util.GetEnvString("RATE_LIMIT", "100/minute"))

	switch cfg.LogLevel {
	case "DEBUG", "INFO", "WARNING", "ERROR":
	default:
		logger.Warn("invalid LOG_LEVEL, falling back to default", "value", cfg.LogLevel, "default", "INFO")
		cfg.LogLevel = "INFO"
	}

	return cfg
}

// clampedInt reads an integer env var and clamps it into [min, max],
// logging a warning and falling back to defaultValue if it is unparseable,
// or to the nearer bound if it is merely out of range.
func clampedInt(key string, defaultValue, min, max int) int {
	raw, exists := lookupEnv(key)
	if !exists {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid integer env var, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}

	if value < min {
		logger.Warn("env var below allowed range, clamping", "key", key, "value", value, "min", min)
		return min
	}
	if value > max {
		logger.Warn("env var above allowed range, clamping", "key", key, "value", value, "max", max)
		return max
	}
	return value
}

func lookupEnv(key string) (string, bool) {
	value := util.GetEnv(key)
	return value, value != ""
}

// parseRateLimit parses the "<N>/<window>" shape (§6). Recognized windows
// are minute/min, second/sec and hour. A value without "/" or with a
// non-positive or unparseable count falls back to the documented default of
// 100/minute; an unrecognized window keeps N and assumes a minute.
func parseRateLimit(raw string) (requests int, windowSeconds int) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		logger.Warn("invalid RATE_LIMIT, using default", "value", raw)
		return 100, 60
	}

	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || n <= 0 {
		logger.Warn("invalid RATE_LIMIT count, using default", "value", raw)
		return 100, 60
	}

	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "minute", "min":
		return n, 60
	case "second", "sec":
		return n, 1
	case "hour":
		return n, 3600
	default:
		logger.Warn("unrecognized RATE_LIMIT window, assuming minute", "value", raw)
		return n, 60
	}
}
