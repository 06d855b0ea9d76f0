// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package preferences implements the user-facing preference operations:
// save, load, completion check, forced sync and clear.
//
// The service is local-first: every mutation lands in the durable local
// store before the remote store is attempted, and every remote failure
// degrades to a locally served answer with a queued background sync
// rather than an error. Results carry an explicit Source so callers can
// tell a cloud-confirmed save from a locally buffered one.
package preferences
