// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateCloud(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateConnectivity(); err != nil {
		return err
	}

	if err := c.validateSyncQueue(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateCloud validates remote store settings.
func (c *Config) validateCloud() error {
	if c.Cloud.BaseURL == "" {
		return fmt.Errorf("MOVIEREC_CLOUD_BASE_URL is required")
	}
	if err := validateHTTPURL(c.Cloud.BaseURL, "MOVIEREC_CLOUD_BASE_URL"); err != nil {
		return fmt.Errorf("MOVIEREC_CLOUD_BASE_URL is invalid: %w", err)
	}
	if c.Cloud.Timeout <= 0 {
		return fmt.Errorf("MOVIEREC_CLOUD_TIMEOUT must be positive, got: %v", c.Cloud.Timeout)
	}
	return nil
}

// validateStorage validates local store settings.
func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("MOVIEREC_STORAGE_PATH is required unless MOVIEREC_STORAGE_IN_MEMORY=true")
	}
	if secret := c.Storage.EncryptionSecret; secret != "" && len(secret) < 16 {
		return fmt.Errorf("MOVIEREC_STORAGE_ENCRYPTION_SECRET must be at least 16 characters")
	}
	return nil
}

// validateConnectivity validates monitor settings.
func (c *Config) validateConnectivity() error {
	if c.Connectivity.CheckInterval <= 0 {
		return fmt.Errorf("MOVIEREC_CONNECTIVITY_CHECK_INTERVAL must be positive, got: %v", c.Connectivity.CheckInterval)
	}
	if c.Connectivity.ProbeTimeout <= 0 {
		return fmt.Errorf("MOVIEREC_CONNECTIVITY_PROBE_TIMEOUT must be positive, got: %v", c.Connectivity.ProbeTimeout)
	}
	if c.Connectivity.ProbeTimeout >= c.Connectivity.CheckInterval {
		return fmt.Errorf("MOVIEREC_CONNECTIVITY_PROBE_TIMEOUT (%v) must be shorter than the check interval (%v)",
			c.Connectivity.ProbeTimeout, c.Connectivity.CheckInterval)
	}
	for _, u := range []struct{ name, value string }{
		{"MOVIEREC_CONNECTIVITY_ORIGIN_URL", c.Connectivity.OriginURL},
		{"MOVIEREC_CONNECTIVITY_EXTERNAL_URL", c.Connectivity.ExternalURL},
		{"MOVIEREC_CONNECTIVITY_HEALTH_URL", c.Connectivity.HealthURL},
	} {
		if u.value == "" {
			continue
		}
		if err := validateHTTPURL(u.value, u.name); err != nil {
			return fmt.Errorf("%s is invalid: %w", u.name, err)
		}
	}
	return nil
}

// validateSyncQueue validates retry queue settings.
func (c *Config) validateSyncQueue() error {
	if c.SyncQueue.Capacity <= 0 {
		return fmt.Errorf("MOVIEREC_SYNC_QUEUE_CAPACITY must be positive, got: %d", c.SyncQueue.Capacity)
	}
	if c.SyncQueue.MaxAttempts <= 0 {
		return fmt.Errorf("MOVIEREC_SYNC_QUEUE_MAX_ATTEMPTS must be positive, got: %d", c.SyncQueue.MaxAttempts)
	}
	if c.SyncQueue.BackoffBase <= 0 {
		return fmt.Errorf("MOVIEREC_SYNC_QUEUE_BACKOFF_BASE must be positive, got: %v", c.SyncQueue.BackoffBase)
	}
	return nil
}

// validateAPI validates HTTP API settings.
func (c *Config) validateAPI() error {
	if c.API.ListenAddr == "" {
		return fmt.Errorf("MOVIEREC_API_LISTEN_ADDR is required")
	}
	if !strings.Contains(c.API.ListenAddr, ":") {
		return fmt.Errorf("MOVIEREC_API_LISTEN_ADDR must be host:port, got: %s", c.API.ListenAddr)
	}
	if c.API.RateLimitRequests <= 0 {
		return fmt.Errorf("MOVIEREC_API_RATE_LIMIT_REQUESTS must be positive, got: %d", c.API.RateLimitRequests)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("MOVIEREC_API_RATE_LIMIT_WINDOW must be positive, got: %v", c.API.RateLimitWindow)
	}
	return nil
}

// validateLogging validates logging settings.
func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("MOVIEREC_LOG_LEVEL must be one of trace, debug, info, warn, error; got: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("MOVIEREC_LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}

	return nil
}
