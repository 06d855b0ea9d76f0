// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

/*
Package config provides centralized configuration management for MovieRec.

Configuration is loaded in three layers with clear precedence
(ENV > File > Defaults):

 1. Built-in defaults for every setting
 2. An optional YAML config file (config.yaml, or MOVIEREC_CONFIG_PATH)
 3. Environment variables with the MOVIEREC_ prefix

# Configuration Structure

The package organizes configuration into logical groups:

  - CloudConfig: Remote preference store connection (base URL, timeout)
  - StorageConfig: Local BadgerDB store (path, sync writes, encryption)
  - CacheConfig: In-memory cache TTL
  - ConnectivityConfig: Probe intervals, timeouts, and probe targets
  - SyncQueueConfig: Durable retry queue capacity and backoff
  - PreferencesConfig: Cache TTL, device identity, remote retry policy
  - BackgroundConfig: Background sync cadence
  - APIConfig: Local HTTP API bind address, CORS, rate limits
  - LoggingConfig: Log level and output format

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal("Failed to load config:", err)
	}
	// cfg.Cloud.BaseURL, cfg.Storage.Path, etc. are now populated

Config is immutable after Load() and safe for concurrent reads.
*/
package config
