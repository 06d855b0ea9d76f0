// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package connectivity decides whether the engine is usably online.
//
// Passive platform signals (online/offline/visibility) are treated as
// hints that trigger an active probe round; the probe round runs three
// independent checks concurrently and a majority vote decides the state.
// Transitions are persisted to a bounded history and pushed synchronously
// to registered listeners.
package connectivity
