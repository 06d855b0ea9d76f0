// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package main is the entry point for the MovieRec preference engine.
//
// The engine is a per-user sidecar that keeps movie preferences durable
// and consistent across an unreliable network: every save lands in the
// local store first, the remote store is updated when reachable, and a
// durable queue replays what could not be delivered.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from env vars and config files (Koanf v2)
//  2. Storage: Open the local BadgerDB store (optionally encrypted)
//  3. Connectivity: Build the probe-based connectivity monitor
//  4. Preferences: Wire cache, conflict resolver, remote client, service
//  5. Sync Queue: Restore pending operations from the local store
//  6. WebSocket Hub: Enable real-time updates to the UI
//  7. HTTP Server: Local REST API consumed by the UI
//
// All long-running components run under a Suture supervisor tree; a
// crashed component restarts with backoff without taking the rest down.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (MOVIEREC_ prefix)
//   - Config file (config.yaml, or MOVIEREC_CONFIG_PATH)
//   - Built-in defaults
//
// The only required setting is the remote store origin:
//
//	MOVIEREC_CLOUD_BASE_URL=https://api.movierec.app/v1
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: the HTTP
// server drains connections, the queue persists its pending snapshot,
// and the local store closes cleanly.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/movierec/internal/api"
	"github.com/tomtom215/movierec/internal/background"
	"github.com/tomtom215/movierec/internal/cache"
	"github.com/tomtom215/movierec/internal/config"
	"github.com/tomtom215/movierec/internal/conflict"
	"github.com/tomtom215/movierec/internal/connectivity"
	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/preferences"
	"github.com/tomtom215/movierec/internal/retry"
	"github.com/tomtom215/movierec/internal/session"
	"github.com/tomtom215/movierec/internal/storage"
	"github.com/tomtom215/movierec/internal/supervisor"
	"github.com/tomtom215/movierec/internal/syncqueue"
	ws "github.com/tomtom215/movierec/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("cloud", cfg.Cloud.BaseURL).
		Str("storage", storagePathForLog(cfg)).
		Bool("encrypted", cfg.Storage.EncryptionSecret != "").
		Msg("Starting MovieRec preference engine")

	// Local durable store, optionally wrapped with at-rest encryption.
	store, err := openStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open local store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing local store")
		}
	}()

	// Connectivity monitor with its default probe set (origin, external,
	// health) built from configuration.
	monitor := connectivity.NewMonitor(connectivity.Config{
		CheckInterval: cfg.Connectivity.CheckInterval,
		ProbeTimeout:  cfg.Connectivity.ProbeTimeout,
		HistoryLimit:  cfg.Connectivity.HistoryLimit,
		OriginURL:     cfg.Connectivity.OriginURL,
		ExternalURL:   cfg.Connectivity.ExternalURL,
		HealthURL:     cfg.Connectivity.HealthURL,
		ProbeBurst:    cfg.Connectivity.ProbeBurst,
	}, store)

	// WebSocket hub pushes state changes to the UI. It doubles as the
	// preference service's event notifier and mirrors connectivity
	// transitions to connected clients.
	hub := ws.NewHub()
	monitor.AddListener(hub.BroadcastConnectivity)

	memCache := cache.New(cfg.Cache.TTL)
	defer memCache.Stop()

	deviceID := cfg.Preferences.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
		logging.Info().Str("device_id", deviceID).Msg("Generated device identity")
	}

	cloud := preferences.NewHTTPCloudClient(preferences.ClientConfig{
		BaseURL: cfg.Cloud.BaseURL,
		Timeout: cfg.Cloud.Timeout,
	})

	service := preferences.NewService(preferences.Config{
		CacheTTL: cfg.Preferences.CacheTTL,
		DeviceID: deviceID,
		Retry: retry.Policy{
			Attempts:   cfg.Preferences.RetryAttempts,
			BaseDelay:  cfg.Preferences.RetryBaseDelay,
			Multiplier: 2.0,
			Jitter:     250 * time.Millisecond,
		},
	}, store, memCache, cloud, monitor, conflict.NewResolver(store),
		session.NewBearerAccessor(), hub)

	// The queue executes operations through the service; the service
	// enqueues through the queue. AttachQueue closes the cycle.
	queue := syncqueue.New(syncqueue.Config{
		Capacity:    cfg.SyncQueue.Capacity,
		MaxAttempts: cfg.SyncQueue.MaxAttempts,
		BackoffBase: cfg.SyncQueue.BackoffBase,
	}, store, service)
	service.AttachQueue(queue)

	orchestrator := background.New(background.Config{
		SyncInterval: cfg.Background.SyncInterval,
	}, monitor, queue)

	handler := api.NewHandler(service, monitor, queue, hub)
	router := api.NewRouter(api.Config{
		ListenAddr:         cfg.API.ListenAddr,
		CORSAllowedOrigins: cfg.API.CORSAllowedOrigins,
		RateLimitRequests:  cfg.API.RateLimitRequests,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	}, handler)

	server := &http.Server{
		Addr:         router.ListenAddr(),
		Handler:      router.Setup(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Supervisor tree: engine services restart independently of the API.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddEngineService(monitor)
	tree.AddEngineService(hub)
	tree.AddEngineService(orchestrator)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Engine stopped gracefully")
}

// openStore opens the BadgerDB store and wraps it with AES-GCM encryption
// when a secret is configured.
func openStore(cfg *config.Config) (storage.Store, error) {
	inner, err := storage.Open(storage.Config{
		Path:       cfg.Storage.Path,
		InMemory:   cfg.Storage.InMemory,
		SyncWrites: cfg.Storage.SyncWrites,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Storage.EncryptionSecret == "" {
		return inner, nil
	}
	return storage.NewEncrypted(inner, cfg.Storage.EncryptionSecret)
}

func storagePathForLog(cfg *config.Config) string {
	if cfg.Storage.InMemory {
		return "(in-memory)"
	}
	return cfg.Storage.Path
}
