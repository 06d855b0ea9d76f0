// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/movierec/config.yaml",
	"/etc/movierec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "MOVIEREC_CONFIG_PATH"

// envPrefix namespaces all engine environment variables.
const envPrefix = "MOVIEREC_"

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// MOVIEREC_CLOUD_BASE_URL -> cloud.base_url
	// MOVIEREC_API_LISTEN_ADDR -> api.listen_addr
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"api.cors_allowed_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - MOVIEREC_CLOUD_BASE_URL -> cloud.base_url
//   - MOVIEREC_STORAGE_SYNC_WRITES -> storage.sync_writes
//   - MOVIEREC_LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	envMappings := map[string]string{
		// Cloud mappings
		"cloud_base_url": "cloud.base_url",
		"cloud_timeout":  "cloud.timeout",

		// Storage mappings
		"storage_path":              "storage.path",
		"storage_in_memory":         "storage.in_memory",
		"storage_sync_writes":       "storage.sync_writes",
		"storage_encryption_secret": "storage.encryption_secret",

		// Cache mappings
		"cache_ttl": "cache.ttl",

		// Connectivity mappings
		"connectivity_check_interval": "connectivity.check_interval",
		"connectivity_probe_timeout":  "connectivity.probe_timeout",
		"connectivity_history_limit":  "connectivity.history_limit",
		"connectivity_origin_url":     "connectivity.origin_url",
		"connectivity_external_url":   "connectivity.external_url",
		"connectivity_health_url":     "connectivity.health_url",
		"connectivity_probe_burst":    "connectivity.probe_burst",

		// Sync queue mappings
		"sync_queue_capacity":     "sync_queue.capacity",
		"sync_queue_max_attempts": "sync_queue.max_attempts",
		"sync_queue_backoff_base": "sync_queue.backoff_base",

		// Preferences mappings
		"preferences_cache_ttl":        "preferences.cache_ttl",
		"preferences_device_id":        "preferences.device_id",
		"preferences_retry_attempts":   "preferences.retry_attempts",
		"preferences_retry_base_delay": "preferences.retry_base_delay",

		// Background sync mappings
		"background_sync_interval": "background.sync_interval",

		// API mappings
		"api_listen_addr":          "api.listen_addr",
		"api_cors_allowed_origins": "api.cors_allowed_origins",
		"api_rate_limit_requests":  "api.rate_limit_requests",
		"api_rate_limit_window":    "api.rate_limit_window",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them.
	// This prevents random environment variables from polluting config.
	return ""
}
