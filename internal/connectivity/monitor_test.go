// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package connectivity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/storage"
)

// fixedProbes builds a probe set returning the given results.
func fixedProbes(results ...bool) []Probe {
	probes := make([]Probe, len(results))
	for i, ok := range results {
		ok := ok
		probes[i] = Probe{
			Name: "fixed",
			Check: func(ctx context.Context) error {
				if ok {
					return nil
				}
				return errors.New("probe failed")
			},
		}
	}
	return probes
}

func newTestMonitor(t *testing.T, store storage.Store) *Monitor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CheckInterval = 10 * time.Millisecond
	cfg.ProbeBurst = 1000 // tests probe freely
	return NewMonitor(cfg, store)
}

func TestMajorityVote(t *testing.T) {
	tests := []struct {
		name    string
		results []bool
		want    bool
	}{
		{"two of three succeed", []bool{true, false, true}, true},
		{"one of three succeeds", []bool{false, false, true}, false},
		{"all succeed", []bool{true, true, true}, true},
		{"all fail", []bool{false, false, false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMonitor(t, storage.NewMemory())
			m.SetProbes(fixedProbes(tt.results...))
			if got := m.PerformConnectivityCheck(context.Background()); got != tt.want {
				t.Errorf("PerformConnectivityCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransitionOnlyNotification(t *testing.T) {
	m := newTestMonitor(t, storage.NewMemory())

	var calls []bool
	m.AddListener(func(online bool) { calls = append(calls, online) })

	m.SetProbes(fixedProbes(false, false, false))
	m.PerformConnectivityCheck(context.Background()) // online -> offline
	m.PerformConnectivityCheck(context.Background()) // offline -> offline, no event
	m.SetProbes(fixedProbes(true, true, true))
	m.PerformConnectivityCheck(context.Background()) // offline -> online

	if len(calls) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(calls))
	}
	if calls[0] != false || calls[1] != true {
		t.Errorf("Expected [offline, online] notifications, got %v", calls)
	}
}

func TestListenerPanicIsolation(t *testing.T) {
	m := newTestMonitor(t, storage.NewMemory())

	notified := false
	m.AddListener(func(online bool) { panic("bad listener") })
	m.AddListener(func(online bool) { notified = true })

	m.SetProbes(fixedProbes(false, false, false))
	m.PerformConnectivityCheck(context.Background())

	if !notified {
		t.Error("Expected second listener to run despite the first panicking")
	}
}

func TestUnsubscribe(t *testing.T) {
	m := newTestMonitor(t, storage.NewMemory())

	calls := 0
	unsubscribe := m.AddListener(func(online bool) { calls++ })
	unsubscribe()

	m.SetProbes(fixedProbes(false, false, false))
	m.PerformConnectivityCheck(context.Background())

	if calls != 0 {
		t.Errorf("Expected no calls after unsubscribe, got %d", calls)
	}
}

func TestHistoryRecordedAndPersisted(t *testing.T) {
	store := storage.NewMemory()
	m := newTestMonitor(t, store)

	m.SetProbes(fixedProbes(false, false, false))
	m.PerformConnectivityCheck(context.Background())
	m.SetProbes(fixedProbes(true, true, true))
	m.PerformConnectivityCheck(context.Background())

	history := m.History()
	if len(history) != 2 {
		t.Fatalf("Expected 2 transitions, got %d", len(history))
	}
	if history[0].Status != "offline" || history[1].Status != "online" {
		t.Errorf("Unexpected history statuses: %+v", history)
	}
	if history[1].DurationInPreviousStatusMs < 0 {
		t.Error("Expected non-negative duration in previous status")
	}

	raw, found, err := store.Get(storage.KeyConnectivityHistory)
	if err != nil || !found {
		t.Fatalf("Expected persisted history, found=%v err=%v", found, err)
	}
	var persisted []Transition
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("History unmarshal error: %v", err)
	}
	if len(persisted) != 2 {
		t.Errorf("Expected 2 persisted transitions, got %d", len(persisted))
	}
}

func TestHistoryCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryLimit = 5
	cfg.ProbeBurst = 1000
	m := NewMonitor(cfg, storage.NewMemory())

	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			m.SetProbes(fixedProbes(false, false, false))
		} else {
			m.SetProbes(fixedProbes(true, true, true))
		}
		m.PerformConnectivityCheck(context.Background())
	}

	if got := len(m.History()); got != 5 {
		t.Errorf("Expected history capped at 5, got %d", got)
	}
}

func TestHistoryRestoredOnStartup(t *testing.T) {
	store := storage.NewMemory()
	seed := []Transition{{Timestamp: time.Now(), Status: "offline"}}
	raw, _ := json.Marshal(seed)
	if err := store.Set(storage.KeyConnectivityHistory, raw); err != nil {
		t.Fatalf("seed error: %v", err)
	}

	m := newTestMonitor(t, store)
	if got := len(m.History()); got != 1 {
		t.Errorf("Expected restored history of 1, got %d", got)
	}
}

func TestPassiveOfflineSignal(t *testing.T) {
	m := newTestMonitor(t, storage.NewMemory())
	if !m.IsOnline() {
		t.Fatal("Expected optimistic initial online state")
	}

	m.NotifyOffline()
	if m.IsOnline() {
		t.Error("Expected passive offline signal to be trusted immediately")
	}
}

func TestPassiveOnlineTriggersRecheck(t *testing.T) {
	m := newTestMonitor(t, storage.NewMemory())
	m.NotifyOffline()
	m.SetProbes(fixedProbes(true, true, true))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx) }()

	m.NotifyOnline()

	deadline := time.After(2 * time.Second)
	for !m.IsOnline() {
		select {
		case <-deadline:
			t.Fatal("Expected passive online signal to trigger a re-check")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestPassiveOnlineRecheckBypassesRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckInterval = time.Hour // no periodic probes, no limiter refill
	cfg.ProbeBurst = 1
	m := NewMonitor(cfg, storage.NewMemory())

	// Burn the whole probe budget on a failed round.
	m.SetProbes(fixedProbes(false, false, false))
	m.PerformConnectivityCheck(context.Background())
	if m.IsOnline() {
		t.Fatal("Expected offline after failed probe round")
	}

	// The network is back, but direct checks are out of budget.
	m.SetProbes(fixedProbes(true, true, true))
	if m.PerformConnectivityCheck(context.Background()) {
		t.Fatal("Exhausted budget should keep the offline belief")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx) }()

	m.NotifyOnline()

	deadline := time.After(2 * time.Second)
	for !m.IsOnline() {
		select {
		case <-deadline:
			t.Fatal("Online hint must trigger a probe round even with the budget spent")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestOfflineBackoffInterval(t *testing.T) {
	m := newTestMonitor(t, storage.NewMemory())

	online := m.nextInterval()
	m.NotifyOffline()
	offline := m.nextInterval()

	if offline != online*offlineBackoffMultiplier {
		t.Errorf("Expected offline interval %v, got %v", online*offlineBackoffMultiplier, offline)
	}
}
