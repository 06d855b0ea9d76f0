// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// fakeServer implements HTTPServer with controllable behavior.
type fakeServer struct {
	serveErr   error
	shutdownCh chan struct{}
	shutdowns  int
}

func newFakeServer() *fakeServer {
	return &fakeServer{shutdownCh: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.shutdownCh
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdowns++
	close(f.shutdownCh)
	return nil
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	srv := newFakeServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if srv.shutdowns != 1 {
		t.Errorf("Shutdown calls = %d, want 1", srv.shutdowns)
	}
}

func TestHTTPServerServiceStartupFailure(t *testing.T) {
	srv := newFakeServer()
	srv.serveErr = errors.New("listen tcp: address already in use")
	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, srv.serveErr) {
		t.Errorf("Serve = %v, want wrapped listen error", err)
	}
}

func TestHTTPServerServiceName(t *testing.T) {
	if got := NewHTTPServerService(newFakeServer(), 0).String(); got != "api-server" {
		t.Errorf("String() = %q, want api-server", got)
	}
}
