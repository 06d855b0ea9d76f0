// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package cache implements the in-memory TTL cache in front of the
// preference stores. Expiry is lazy on read with a periodic background
// sweep; a fresh hit short-circuits the load path entirely.
package cache
