// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package conflict reconciles divergent cloud and local copies of a user's
// preference record. Records far apart in time are resolved by recency;
// near-simultaneous records are merged, with completion claims honored only
// when corroborated by actual genre content.
package conflict
