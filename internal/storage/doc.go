// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package storage provides the durable local key/value store backing the
// sync engine: the preference records, the persisted sync queue, the
// connectivity history and the sync statistics all live here.
//
// The key layout (userPrefs_<userId>, bg_sync_queue, ...) is shared with
// deployed clients and is preserved byte-for-byte. BadgerDB provides the
// durable implementation; an optional AES-256-GCM wrapper seals values at
// rest when an encryption secret is configured.
package storage
