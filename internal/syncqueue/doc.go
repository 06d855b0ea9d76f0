// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package syncqueue provides durable at-least-once delivery of pending
// preference mutations without blocking the caller.
//
// Operations are persisted to the local store on every mutation and
// drained strictly in order, one at a time. Failures retry with
// exponential backoff up to a fixed attempt budget; exhausted operations
// are dropped and counted, never surfaced to the original caller. This is
// a deliberate lossy-retry design: the synchronous preference service
// path exists for callers that need a guaranteed result.
package syncqueue
