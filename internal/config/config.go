// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package config

import (
	"time"
)

// Config holds all engine configuration loaded from defaults, an optional
// YAML config file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting (MOVIEREC_ prefix)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Cloud        CloudConfig        `koanf:"cloud"`
	Storage      StorageConfig      `koanf:"storage"`
	Cache        CacheConfig        `koanf:"cache"`
	Connectivity ConnectivityConfig `koanf:"connectivity"`
	SyncQueue    SyncQueueConfig    `koanf:"sync_queue"`
	Preferences  PreferencesConfig  `koanf:"preferences"`
	Background   BackgroundConfig   `koanf:"background"`
	API          APIConfig          `koanf:"api"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// CloudConfig holds remote preference store connection settings.
//
// Environment Variables:
//   - MOVIEREC_CLOUD_BASE_URL: Remote store origin (required)
//   - MOVIEREC_CLOUD_TIMEOUT: Per-request timeout (default: 10s)
type CloudConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// StorageConfig holds local durable store settings.
//
// Environment Variables:
//   - MOVIEREC_STORAGE_PATH: BadgerDB directory (default: /data/movierec)
//   - MOVIEREC_STORAGE_IN_MEMORY: Run without touching disk (default: false)
//   - MOVIEREC_STORAGE_SYNC_WRITES: fsync every write (default: true)
//   - MOVIEREC_STORAGE_ENCRYPTION_SECRET: Enables at-rest encryption when set
type StorageConfig struct {
	Path             string `koanf:"path"`
	InMemory         bool   `koanf:"in_memory"`
	SyncWrites       bool   `koanf:"sync_writes"`
	EncryptionSecret string `koanf:"encryption_secret"`
}

// CacheConfig holds in-memory cache settings.
type CacheConfig struct {
	// TTL is the default entry lifetime. Default: 10m
	TTL time.Duration `koanf:"ttl"`
}

// ConnectivityConfig holds connectivity monitor settings.
//
// Environment Variables:
//   - MOVIEREC_CONNECTIVITY_CHECK_INTERVAL: Probe interval while online (default: 30s)
//   - MOVIEREC_CONNECTIVITY_PROBE_TIMEOUT: Per-probe timeout (default: 4s)
//   - MOVIEREC_CONNECTIVITY_EXTERNAL_URL: External reachability check (default: https://dns.google/)
type ConnectivityConfig struct {
	CheckInterval time.Duration `koanf:"check_interval"`
	ProbeTimeout  time.Duration `koanf:"probe_timeout"`
	HistoryLimit  int           `koanf:"history_limit"`
	OriginURL     string        `koanf:"origin_url"`
	ExternalURL   string        `koanf:"external_url"`
	HealthURL     string        `koanf:"health_url"`
	ProbeBurst    int           `koanf:"probe_burst"`
}

// SyncQueueConfig holds durable retry queue settings.
type SyncQueueConfig struct {
	// Capacity bounds the queue; the oldest entry is evicted at capacity.
	// Default: 50
	Capacity int `koanf:"capacity"`

	// MaxAttempts is the per-operation execution budget. Default: 3
	MaxAttempts int `koanf:"max_attempts"`

	// BackoffBase scales the retry delay: 2^attempts * BackoffBase.
	// Default: 1s
	BackoffBase time.Duration `koanf:"backoff_base"`
}

// PreferencesConfig holds preference service settings.
//
// Environment Variables:
//   - MOVIEREC_PREFERENCES_CACHE_TTL: Cache lifetime for loaded records (default: 10m)
//   - MOVIEREC_PREFERENCES_DEVICE_ID: Device identity stamped on saves
type PreferencesConfig struct {
	CacheTTL time.Duration `koanf:"cache_ttl"`
	DeviceID string        `koanf:"device_id"`

	// RetryAttempts / RetryBaseDelay shape the synchronous remote call
	// retry policy. Defaults: 3 attempts, 1s base delay.
	RetryAttempts  int           `koanf:"retry_attempts"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

// BackgroundConfig holds background sync orchestrator settings.
type BackgroundConfig struct {
	// SyncInterval is the cadence of opportunistic queue drains while
	// online. Default: 5m
	SyncInterval time.Duration `koanf:"sync_interval"`
}

// APIConfig holds local HTTP API settings.
//
// Environment Variables:
//   - MOVIEREC_API_LISTEN_ADDR: Bind address (default: 127.0.0.1:8480)
//   - MOVIEREC_API_CORS_ALLOWED_ORIGINS: Comma-separated UI origins
//   - MOVIEREC_API_RATE_LIMIT_REQUESTS: Requests per window per IP (default: 300)
//   - MOVIEREC_API_RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
type APIConfig struct {
	ListenAddr         string        `koanf:"listen_addr"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	RateLimitRequests  int           `koanf:"rate_limit_requests"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - MOVIEREC_LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - MOVIEREC_LOG_FORMAT: json or console (default: json)
//   - MOVIEREC_LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Cloud: CloudConfig{
			BaseURL: "",
			Timeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Path:       "/data/movierec",
			InMemory:   false,
			SyncWrites: true,
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		Connectivity: ConnectivityConfig{
			CheckInterval: 30 * time.Second,
			ProbeTimeout:  4 * time.Second,
			HistoryLimit:  100,
			ExternalURL:   "https://dns.google/",
			ProbeBurst:    4,
		},
		SyncQueue: SyncQueueConfig{
			Capacity:    50,
			MaxAttempts: 3,
			BackoffBase: time.Second,
		},
		Preferences: PreferencesConfig{
			CacheTTL:       10 * time.Minute,
			DeviceID:       "", // Auto-generated if empty
			RetryAttempts:  3,
			RetryBaseDelay: time.Second,
		},
		Background: BackgroundConfig{
			SyncInterval: 5 * time.Minute,
		},
		API: APIConfig{
			ListenAddr:         "127.0.0.1:8480",
			CORSAllowedOrigins: []string{},
			RateLimitRequests:  300,
			RateLimitWindow:    time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
