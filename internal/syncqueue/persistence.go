// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package syncqueue

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/storage"
)

// restore loads the persisted queue snapshot and statistics on startup.
// Corrupt snapshots are discarded rather than blocking startup; the queue
// is lossy-retry by design and a broken snapshot is already lost work.
func (q *Queue) restore() {
	if q.store == nil {
		return
	}

	if raw, found, err := q.store.Get(storage.KeySyncQueue); err == nil && found {
		var ops []*Operation
		if err := json.Unmarshal(raw, &ops); err != nil {
			logging.Warn().Err(err).Msg("[SYNC QUEUE] Persisted queue unreadable, discarding")
		} else {
			if len(ops) > q.cfg.Capacity {
				ops = ops[len(ops)-q.cfg.Capacity:]
			}
			q.ops = ops
			logging.Info().Int("restored", len(ops)).Msg("[SYNC QUEUE] Restored pending operations")
		}
	}

	if raw, found, err := q.store.Get(storage.KeySyncStatistics); err == nil && found {
		var stats Stats
		if err := json.Unmarshal(raw, &stats); err != nil {
			logging.Warn().Err(err).Msg("[SYNC QUEUE] Persisted statistics unreadable, discarding")
		} else {
			q.stats = stats
		}
	}
}

// persistQueue snapshots the pending operations. Persistence failures are
// logged and swallowed: the in-memory queue keeps working, only restart
// durability degrades.
func (q *Queue) persistQueue() {
	if q.store == nil {
		return
	}

	q.mu.Lock()
	snapshot := make([]*Operation, len(q.ops))
	copy(snapshot, q.ops)
	q.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		logging.Warn().Err(err).Msg("[SYNC QUEUE] Queue marshal failed")
		return
	}
	if err := q.store.Set(storage.KeySyncQueue, data); err != nil {
		logging.Warn().Err(err).Msg("[SYNC QUEUE] Queue persist failed")
	}
}

// persistStats writes the cumulative counters.
func (q *Queue) persistStats() {
	if q.store == nil {
		return
	}

	q.mu.Lock()
	stats := q.stats
	q.mu.Unlock()

	data, err := json.Marshal(stats)
	if err != nil {
		logging.Warn().Err(err).Msg("[SYNC QUEUE] Statistics marshal failed")
		return
	}
	if err := q.store.Set(storage.KeySyncStatistics, data); err != nil {
		logging.Warn().Err(err).Msg("[SYNC QUEUE] Statistics persist failed")
	}
}
