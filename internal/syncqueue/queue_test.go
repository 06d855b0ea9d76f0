// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package syncqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/storage"
)

// recordingExecutor captures execution order and can be scripted to fail.
type recordingExecutor struct {
	mu       sync.Mutex
	executed []string
	failures map[string]int // op id -> remaining failures
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{failures: make(map[string]int)}
}

func (e *recordingExecutor) Execute(ctx context.Context, op *Operation) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, op.ID)
	if n := e.failures[op.ID]; n > 0 {
		e.failures[op.ID] = n - 1
		return errors.New("scripted failure")
	}
	return nil
}

func (e *recordingExecutor) order() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.executed...)
}

func (e *recordingExecutor) count(id string) int {
	n := 0
	for _, got := range e.order() {
		if got == id {
			n++
		}
	}
	return n
}

func fastConfig() Config {
	return Config{Capacity: 50, MaxAttempts: 3, BackoffBase: time.Millisecond}
}

func TestPriorityOrdering(t *testing.T) {
	exec := newRecordingExecutor()
	q := New(fastConfig(), storage.NewMemory(), exec)

	a, _ := q.Enqueue(KindSavePreferences, "a", PriorityNormal)
	b, _ := q.Enqueue(KindSavePreferences, "b", PriorityHigh)
	c, _ := q.Enqueue(KindSavePreferences, "c", PriorityNormal)

	q.Drain(context.Background())

	want := []string{b, a, c}
	got := exec.order()
	if len(got) != 3 {
		t.Fatalf("Expected 3 executions, got %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Drain order[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCapacityEviction(t *testing.T) {
	exec := newRecordingExecutor()
	cfg := fastConfig()
	cfg.Capacity = 5
	q := New(cfg, storage.NewMemory(), exec)

	var first string
	for i := 0; i < 5; i++ {
		id, _ := q.Enqueue(KindSavePreferences, i, PriorityNormal)
		if i == 0 {
			first = id
		}
	}

	overflow, _ := q.Enqueue(KindSavePreferences, "overflow", PriorityNormal)

	if q.Len() != 5 {
		t.Errorf("Expected size to stay at capacity 5, got %d", q.Len())
	}

	pending := q.Pending()
	for _, op := range pending {
		if op.ID == first {
			t.Error("Expected oldest entry to be evicted")
		}
	}
	found := false
	for _, op := range pending {
		if op.ID == overflow {
			found = true
		}
	}
	if !found {
		t.Error("Expected new entry to be present after eviction")
	}
}

func TestDrainRetriesWithBackoffThenSucceeds(t *testing.T) {
	exec := newRecordingExecutor()
	q := New(fastConfig(), storage.NewMemory(), exec)

	id, _ := q.Enqueue(KindSavePreferences, "p", PriorityNormal)
	exec.mu.Lock()
	exec.failures[id] = 2 // fail twice, succeed on third attempt
	exec.mu.Unlock()

	// Retries are re-enqueued on a timer; drain repeatedly until settled.
	deadline := time.Now().Add(2 * time.Second)
	for exec.count(id) < 3 && time.Now().Before(deadline) {
		q.Drain(context.Background())
		time.Sleep(5 * time.Millisecond)
	}

	if got := exec.count(id); got != 3 {
		t.Fatalf("Expected exactly 3 executions, got %d", got)
	}
	if stats := q.Stats(); stats.SuccessfulOperations != 1 || stats.FailedOperations != 0 {
		t.Errorf("Expected 1 success and 0 failures, got %+v", stats)
	}
}

func TestDrainDropsAfterMaxAttempts(t *testing.T) {
	exec := newRecordingExecutor()
	q := New(fastConfig(), storage.NewMemory(), exec)

	id, _ := q.Enqueue(KindSyncPreferences, "p", PriorityNormal)
	exec.mu.Lock()
	exec.failures[id] = 100 // always fails
	exec.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for exec.count(id) < 3 && time.Now().Before(deadline) {
		q.Drain(context.Background())
		time.Sleep(5 * time.Millisecond)
	}
	// Give a would-be fourth attempt the chance to (incorrectly) appear.
	time.Sleep(20 * time.Millisecond)
	q.Drain(context.Background())

	if got := exec.count(id); got != 3 {
		t.Fatalf("Expected exactly maxAttempts=3 executions, got %d", got)
	}
	if stats := q.Stats(); stats.FailedOperations != 1 {
		t.Errorf("Expected 1 permanent failure recorded, got %+v", stats)
	}
	if q.Len() != 0 {
		t.Errorf("Expected dropped operation to leave the queue, %d left", q.Len())
	}
}

func TestDrainReentrancyGuard(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var executions int
	var mu sync.Mutex

	exec := ExecutorFunc(func(ctx context.Context, op *Operation) error {
		mu.Lock()
		executions++
		mu.Unlock()
		close(started)
		<-block
		return nil
	})

	q := New(fastConfig(), storage.NewMemory(), exec)
	if _, err := q.Enqueue(KindSavePreferences, "p", PriorityNormal); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	go q.Drain(context.Background())
	<-started

	// Second drain while the first is mid-flight must be a no-op.
	q.Drain(context.Background())
	close(block)
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if executions != 1 {
		t.Errorf("Expected 1 execution with re-entrancy guard, got %d", executions)
	}
}

func TestQueuePersistedAndRestored(t *testing.T) {
	store := storage.NewMemory()
	q := New(fastConfig(), store, newRecordingExecutor())

	if _, err := q.Enqueue(KindSavePreferences, map[string]int{"28": 5}, PriorityNormal); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	// A fresh queue over the same store sees the pending operation.
	restored := New(fastConfig(), store, newRecordingExecutor())
	if restored.Len() != 1 {
		t.Fatalf("Expected 1 restored operation, got %d", restored.Len())
	}

	op := restored.Pending()[0]
	if op.Kind != KindSavePreferences {
		t.Errorf("Restored kind = %s, want %s", op.Kind, KindSavePreferences)
	}
	if op.IdempotencyKey == "" {
		t.Error("Expected idempotency key to survive persistence")
	}

	var payload map[string]int
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		t.Fatalf("Payload unmarshal error: %v", err)
	}
	if payload["28"] != 5 {
		t.Errorf("Restored payload = %v", payload)
	}
}

func TestStatsPersisted(t *testing.T) {
	store := storage.NewMemory()
	exec := newRecordingExecutor()
	q := New(fastConfig(), store, exec)

	if _, err := q.Enqueue(KindSavePreferences, "p", PriorityNormal); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	q.Drain(context.Background())

	raw, found, err := store.Get(storage.KeySyncStatistics)
	if err != nil || !found {
		t.Fatalf("Expected persisted statistics, found=%v err=%v", found, err)
	}

	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		t.Fatalf("Stats unmarshal error: %v", err)
	}
	if stats.SuccessfulOperations != 1 {
		t.Errorf("Expected 1 persisted success, got %+v", stats)
	}
	if stats.LastProcessed.IsZero() {
		t.Error("Expected lastProcessed to be stamped")
	}
}

func TestDrainEmptyQueueIsCheap(t *testing.T) {
	q := New(fastConfig(), storage.NewMemory(), newRecordingExecutor())
	// Must not panic or block.
	q.Drain(context.Background())
}
