// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package metrics exposes Prometheus collectors for the sync engine.
// All collectors are registered on the default registry via promauto and
// served from the /metrics endpoint.
package metrics
