// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package background ties connectivity to the sync queue: the queue is
// drained immediately on an offline-to-online transition and
// opportunistically on a timer while online.
package background

import (
	"context"
	"time"

	"github.com/tomtom215/movierec/internal/connectivity"
	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/syncqueue"
)

// Config holds orchestrator configuration.
type Config struct {
	// SyncInterval is the cadence of opportunistic drains while online.
	// Default: 5m
	SyncInterval time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{SyncInterval: 5 * time.Minute}
}

// Orchestrator runs the background sync loop. It implements suture's
// service contract and is supervised alongside the connectivity monitor.
type Orchestrator struct {
	cfg     Config
	monitor *connectivity.Monitor
	queue   *syncqueue.Queue
}

// New creates the background sync orchestrator.
func New(cfg Config, monitor *connectivity.Monitor, queue *syncqueue.Queue) *Orchestrator {
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = 5 * time.Minute
	}
	return &Orchestrator{cfg: cfg, monitor: monitor, queue: queue}
}

// Serve subscribes to connectivity transitions and runs the periodic
// drain until ctx is canceled.
func (o *Orchestrator) Serve(ctx context.Context) error {
	unsubscribe := o.monitor.AddListener(func(online bool) {
		if !online {
			return
		}
		pending := o.queue.Len()
		logging.Info().Int("pending", pending).Msg("[BACKGROUND SYNC] Connectivity restored, draining queue")
		// Listeners run synchronously inside the monitor; the drain
		// itself must not block them.
		go o.queue.Drain(ctx)
	})
	defer unsubscribe()

	ticker := time.NewTicker(o.cfg.SyncInterval)
	defer ticker.Stop()

	logging.Info().Dur("interval", o.cfg.SyncInterval).Msg("[BACKGROUND SYNC] Started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("[BACKGROUND SYNC] Stopped")
			return ctx.Err()
		case <-ticker.C:
			if !o.monitor.IsOnline() {
				continue
			}
			if o.queue.Len() == 0 {
				continue
			}
			o.queue.Drain(ctx)
		}
	}
}

// String names the service in supervisor logs.
func (o *Orchestrator) String() string {
	return "background-sync"
}
