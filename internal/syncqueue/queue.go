// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package syncqueue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/metrics"
	"github.com/tomtom215/movierec/internal/storage"
)

// Kind identifies a queued mutation operation.
type Kind string

const (
	// KindSavePreferences replays a preference save against the remote store.
	KindSavePreferences Kind = "SAVE_PREFERENCES"

	// KindSyncPreferences forces a full reconcile between stores.
	KindSyncPreferences Kind = "SYNC_PREFERENCES"
)

// Priority controls insertion position: high inserts at the head, the
// rest at the tail.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Operation is one pending mutation awaiting delivery to the remote store.
// The queue owns the operation exclusively once enqueued.
type Operation struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt  time.Time       `json:"enqueuedAt"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"maxAttempts"`
	Priority    Priority        `json:"priority"`

	// IdempotencyKey makes the at-least-once delivery contract explicit:
	// executors forward it to the remote store so a replayed operation is
	// safe to repeat.
	IdempotencyKey string `json:"idempotencyKey"`
}

// UnmarshalPayload deserializes the payload into the given type.
func (o *Operation) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(o.Payload, v)
}

// Executor performs a single queued operation. Implementations must be
// idempotent; the queue delivers at-least-once.
type Executor interface {
	Execute(ctx context.Context, op *Operation) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, op *Operation) error

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, op *Operation) error {
	return f(ctx, op)
}

// Stats are the cumulative processing counters, persisted under
// sync_statistics so they survive restarts.
type Stats struct {
	SuccessfulOperations int64     `json:"successfulOperations"`
	FailedOperations     int64     `json:"failedOperations"`
	LastProcessed        time.Time `json:"lastProcessed"`
}

// Config holds sync queue configuration.
type Config struct {
	// Capacity bounds the queue. At capacity the single oldest entry is
	// evicted to make room, regardless of priority. Default: 50
	Capacity int

	// MaxAttempts is the per-operation execution budget. Default: 3
	MaxAttempts int

	// BackoffBase scales the retry delay: 2^attempts * BackoffBase.
	// Default: 1s
	BackoffBase time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:    50,
		MaxAttempts: 3,
		BackoffBase: time.Second,
	}
}

// Queue is a durable, ordered, priority-aware queue of pending mutations.
//
// The queue snapshot is persisted to the local store after every mutation,
// so a restart does not lose pending work. Draining is strictly head to
// tail, one operation at a time: preserving order for the same user's
// writes matters more than throughput here.
//
// A permanently failed operation is not surfaced to the original caller;
// the call that enqueued it has already returned. It is observable only
// via Stats and logs. Callers needing a guaranteed result use the
// synchronous preference service path instead.
type Queue struct {
	cfg      Config
	store    storage.Store
	executor Executor

	mu         sync.Mutex
	ops        []*Operation
	processing bool
	stats      Stats

	seq atomic.Int64
}

// New creates a queue, restoring any persisted snapshot and statistics.
func New(cfg Config, store storage.Store, executor Executor) *Queue {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}

	q := &Queue{cfg: cfg, store: store, executor: executor}
	q.restore()
	metrics.QueueDepth.Set(float64(len(q.ops)))
	return q
}

// Enqueue adds an operation and returns its id. The payload is serialized
// immediately so later mutation by the caller cannot change the queued
// work. Never blocks on the network.
func (q *Queue) Enqueue(kind Kind, payload interface{}, priority Priority) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal queue payload: %w", err)
	}

	op := &Operation{
		ID:             fmt.Sprintf("op-%d-%d", time.Now().UnixMilli(), q.seq.Add(1)),
		Kind:           kind,
		Payload:        raw,
		EnqueuedAt:     time.Now(),
		MaxAttempts:    q.cfg.MaxAttempts,
		Priority:       priority,
		IdempotencyKey: uuid.New().String(),
	}

	q.mu.Lock()
	q.insertLocked(op)
	depth := len(q.ops)
	q.mu.Unlock()

	q.persistQueue()
	metrics.QueueDepth.Set(float64(depth))
	logging.Debug().
		Str("op_id", op.ID).
		Str("kind", string(kind)).
		Str("priority", string(priority)).
		Int("depth", depth).
		Msg("[SYNC QUEUE] Operation enqueued")
	return op.ID, nil
}

// insertLocked applies capacity eviction and priority positioning.
// Must be called with mu held.
func (q *Queue) insertLocked(op *Operation) {
	if len(q.ops) >= q.cfg.Capacity {
		// FIFO eviction, deliberately priority-blind: the single oldest
		// entry makes room.
		evicted := q.ops[0]
		q.ops = q.ops[1:]
		metrics.QueueEvictions.Inc()
		logging.Warn().
			Str("evicted_op", evicted.ID).
			Msg("[SYNC QUEUE] Queue full, evicted oldest operation")
	}

	if op.Priority == PriorityHigh {
		q.ops = append([]*Operation{op}, q.ops...)
	} else {
		q.ops = append(q.ops, op)
	}
}

// Drain processes the current batch head to tail. It is a cheap no-op if
// a drain is already running or the queue is empty, so callers may invoke
// it speculatively (on reconnect, on a timer, after a save).
func (q *Queue) Drain(ctx context.Context) {
	q.mu.Lock()
	if q.processing || len(q.ops) == 0 {
		q.mu.Unlock()
		return
	}
	q.processing = true
	batch := q.ops
	q.ops = nil
	q.mu.Unlock()

	logging.Info().Int("batch", len(batch)).Msg("[SYNC QUEUE] Draining")

	for _, op := range batch {
		select {
		case <-ctx.Done():
			// Push the unprocessed remainder back for the next drain.
			q.requeueRemainder(batch, op)
			q.finishDrain()
			return
		default:
		}
		q.process(ctx, op)
	}

	q.finishDrain()
}

// process executes one operation and applies the retry/drop policy.
func (q *Queue) process(ctx context.Context, op *Operation) {
	op.Attempts++
	err := q.executor.Execute(ctx, op)
	if err == nil {
		q.mu.Lock()
		q.stats.SuccessfulOperations++
		q.stats.LastProcessed = time.Now()
		q.mu.Unlock()
		metrics.QueueOperations.WithLabelValues(string(op.Kind), "success").Inc()
		return
	}

	if op.Attempts < op.MaxAttempts {
		// Exponential backoff: 2^attempts * base. The drain continues
		// with the rest of the batch; the retry lands in a later drain.
		delay := q.cfg.BackoffBase * (1 << op.Attempts)
		metrics.QueueOperations.WithLabelValues(string(op.Kind), "retry").Inc()
		logging.Warn().
			Err(err).
			Str("op_id", op.ID).
			Int("attempt", op.Attempts).
			Dur("retry_in", delay).
			Msg("[SYNC QUEUE] Operation failed, scheduling retry")
		time.AfterFunc(delay, func() { q.requeue(op) })
		return
	}

	q.mu.Lock()
	q.stats.FailedOperations++
	q.stats.LastProcessed = time.Now()
	q.mu.Unlock()
	metrics.QueueOperations.WithLabelValues(string(op.Kind), "dropped").Inc()
	logging.Error().
		Err(err).
		Str("op_id", op.ID).
		Int("attempts", op.Attempts).
		Msg("[SYNC QUEUE] Operation dropped after max attempts")
}

// requeue re-inserts a failed operation, preserving its attempt count.
func (q *Queue) requeue(op *Operation) {
	q.mu.Lock()
	q.insertLocked(op)
	depth := len(q.ops)
	q.mu.Unlock()

	q.persistQueue()
	metrics.QueueDepth.Set(float64(depth))
}

// requeueRemainder returns the unprocessed tail of an interrupted batch,
// starting at from, to the front of the queue in original order.
func (q *Queue) requeueRemainder(batch []*Operation, from *Operation) {
	idx := 0
	for i, op := range batch {
		if op == from {
			idx = i
			break
		}
	}
	remainder := batch[idx:]

	q.mu.Lock()
	q.ops = append(append([]*Operation{}, remainder...), q.ops...)
	q.mu.Unlock()
}

// finishDrain clears the re-entrancy guard and persists queue and stats.
func (q *Queue) finishDrain() {
	q.mu.Lock()
	q.processing = false
	depth := len(q.ops)
	q.mu.Unlock()

	q.persistQueue()
	q.persistStats()
	metrics.QueueDepth.Set(float64(depth))
}

// Len returns the number of pending operations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Pending returns a copy of the pending operations in drain order.
func (q *Queue) Pending() []Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Operation, len(q.ops))
	for i, op := range q.ops {
		out[i] = *op
	}
	return out
}

// Stats returns a snapshot of the cumulative counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}
