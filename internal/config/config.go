// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - Loader functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL is the usage API root, e.g. "http://localhost:8000".
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UpstreamTimeoutMS bounds every usage API request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// CacheSize and CacheTTLSeconds size the upstream response cache. A zero
	// TTL disables caching for every backend; a zero size disables the memory
	// backend.
	CacheSize       int `koanf:"cache_size"`
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheBackend is "memory" (per process) or "redis" (shared by replicas).
	CacheBackend   string `koanf:"cache_backend"`
	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// ColorConfigPath points at the channel_id -> color table. Empty means no
	// configured colors; every channel uses FallbackColor.
	ColorConfigPath string `koanf:"color_config_path"`

	// FallbackColor is used for channels missing from the color table.
	FallbackColor string `koanf:"fallback_color"`

	// Timezone names the location whose calendar days form the weekly window.
	Timezone string `koanf:"timezone"`

	// OutOfWindow is "keep" or "drop"; Duplicates is "last" or "sum".
	OutOfWindow string `koanf:"out_of_window"`
	Duplicates  string `koanf:"duplicates"`

	// RefreshIntervalSeconds enables the background weekly refresh when > 0.
	RefreshIntervalSeconds int `koanf:"refresh_interval_seconds"`
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		UpstreamBaseURL:        "http://localhost:8000",
		UpstreamTimeoutMS:      5000,
		CacheSize:              64,
		CacheTTLSeconds:        30,
		CacheBackend:           CacheMemory,
		RedisAddr:              "localhost:6379",
		RedisKeyPrefix:         "vcdash:usage:",
		ColorConfigPath:        "",
		FallbackColor:          "#cccccc",
		Timezone:               "Local",
		OutOfWindow:            "keep",
		Duplicates:             "last",
		RefreshIntervalSeconds: 0,
	}
}

// UpstreamTimeout returns the upstream request timeout.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// CacheTTL returns the upstream cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RefreshInterval returns the background refresh period; zero disables it.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
