// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package models defines the data shapes shared across the sync engine:
// the preference record with its three historical genre shapes, the uniform
// operation result contract, error codes, and sync-status bookkeeping.
//
// The completion invariant lives here: a record may claim
// questionnaireCompleted=true only when it carries at least one genre entry.
// Both the preference service (write side) and the conflict resolver
// (reconcile side) enforce it through GenreCount/Valid/Sanitize.
package models
