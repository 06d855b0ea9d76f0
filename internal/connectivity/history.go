// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package connectivity

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/storage"
)

// loadHistory restores persisted transitions on startup. A corrupt or
// missing history is discarded; diagnostics are best-effort.
func (m *Monitor) loadHistory() {
	if m.store == nil {
		return
	}
	raw, found, err := m.store.Get(storage.KeyConnectivityHistory)
	if err != nil || !found {
		return
	}

	var history []Transition
	if err := json.Unmarshal(raw, &history); err != nil {
		logging.Warn().Err(err).Msg("Connectivity history unreadable, discarding")
		return
	}
	if len(history) > m.cfg.HistoryLimit {
		history = history[len(history)-m.cfg.HistoryLimit:]
	}
	m.history = history
}

// persistHistory snapshots the transition history. Failure is logged and
// swallowed; history is diagnostics, not correctness.
func (m *Monitor) persistHistory() {
	if m.store == nil {
		return
	}

	m.mu.RLock()
	snapshot := make([]Transition, len(m.history))
	copy(snapshot, m.history)
	m.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		logging.Warn().Err(err).Msg("Connectivity history marshal failed")
		return
	}
	if err := m.store.Set(storage.KeyConnectivityHistory, data); err != nil {
		logging.Warn().Err(err).Msg("Connectivity history persist failed")
	}
}
