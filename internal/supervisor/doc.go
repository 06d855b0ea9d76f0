// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

/*
Package supervisor provides Suture-based process supervision for MovieRec.

The tree has two layers under one root:

	movierec
	├── engine-layer   connectivity monitor, websocket hub, background sync
	└── api-layer      local HTTP server

Each layer restarts its own crashed services with exponential backoff
without disturbing the other layer. Supervisor events are logged through
sutureslog into the engine's zerolog logger (see logging.NewSlogLogger).

Every supervised service implements suture.Service: a Serve(ctx) method
that blocks until the context is canceled, plus a String() name used in
supervisor logs.
*/
package supervisor
