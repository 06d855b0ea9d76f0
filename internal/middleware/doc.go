// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package middleware holds the HTTP middleware shared across API routes:
// Prometheus instrumentation and bearer-token extraction.
package middleware
