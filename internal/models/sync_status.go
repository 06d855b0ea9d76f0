// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package models

import "time"

// SyncStatus is the per-user sync bookkeeping persisted under
// sync_status_<userId>. Two historical JSON shapes exist in deployed
// clients; both are readable here. New writes use the
// {lastSync, status, source} shape.
type SyncStatus struct {
	LastSync time.Time `json:"lastSync,omitempty"`
	Status   string    `json:"status,omitempty"`
	Source   Source    `json:"source,omitempty"`

	// Legacy shape, read-compatible only.
	LastLocalSave time.Time `json:"lastLocalSave,omitempty"`
	LastCloudSync time.Time `json:"lastCloudSync,omitempty"`
	PendingSync   bool      `json:"pendingSync,omitempty"`
}

// EffectiveLastSync returns the most recent sync time across both shapes.
func (s *SyncStatus) EffectiveLastSync() time.Time {
	if s == nil {
		return time.Time{}
	}
	last := s.LastSync
	if s.LastCloudSync.After(last) {
		last = s.LastCloudSync
	}
	if s.LastLocalSave.After(last) {
		last = s.LastLocalSave
	}
	return last
}
