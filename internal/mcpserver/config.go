package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/erraggy/oasderef/deref"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Dereference defaults.
	Mode             deref.Mode
	AllowMetaPatches bool
	ResolveExternal  bool
	MaxRefDepth      int

	// Limits.
	Timeout       time.Duration
	MaxInlineSize int64

	// Loader settings.
	RateLimit float64
	RateBurst int
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from OASDEREF_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		Mode:             envMode("OASDEREF_MODE"),
		AllowMetaPatches: envBool("OASDEREF_ALLOW_META_PATCHES", false),
		ResolveExternal:  envBool("OASDEREF_RESOLVE_EXTERNAL", true),
		MaxRefDepth:      envInt("OASDEREF_MAX_REF_DEPTH", deref.DefaultMaxRefDepth),
		Timeout:          envDuration("OASDEREF_TIMEOUT", 30*time.Second),
		MaxInlineSize:    int64(envInt("OASDEREF_MAX_INLINE_SIZE", 10*1024*1024)),
		RateLimit:        envFloat("OASDEREF_RATE_LIMIT", 10),
		RateBurst:        envInt("OASDEREF_RATE_BURST", 5),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		slog.Warn("invalid number env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return f
}

func envMode(key string) deref.Mode {
	v := os.Getenv(key)
	switch deref.Mode(v) {
	case "":
		return deref.ModeDefault
	case deref.ModeDefault, deref.ModeStrict:
		return deref.Mode(v)
	}
	slog.Warn("invalid mode env var, using default", "key", key, "value", v, "default", deref.ModeDefault) //nolint:gosec // G706: values are structured log fields, not format strings
	return deref.ModeDefault
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}
