// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package retry implements the bounded retry policy shared by the
// preference service's remote calls and the sync queue's executor.
//
// Operations are re-attempted verbatim, so callers must ensure they are
// idempotent: a preference save is a whole-record replacement, never an
// increment. On exhaustion the last error propagates unchanged.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/tomtom215/movierec/internal/logging"
)

// Policy describes a bounded exponential backoff.
type Policy struct {
	// Attempts is the maximum number of executions. Values < 1 mean 1.
	Attempts int

	// BaseDelay is the delay before the second attempt.
	BaseDelay time.Duration

	// Multiplier grows the delay per attempt: delay k = BaseDelay * Multiplier^k.
	Multiplier float64

	// Jitter is the maximum random addition to each delay, spreading
	// simultaneous retries from multiple operations apart.
	Jitter time.Duration
}

// DefaultPolicy matches the engine-wide remote call policy: three attempts,
// one second base delay, doubling, with up to 250ms of jitter.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   3,
		BaseDelay:  time.Second,
		Multiplier: 2.0,
		Jitter:     250 * time.Millisecond,
	}
}

// maxDelay caps a single backoff sleep.
const maxDelay = 5 * time.Minute

// Do executes op until it succeeds, the policy is exhausted, or ctx is
// canceled. The last error is returned on exhaustion; ctx.Err() is
// returned when canceled mid-backoff.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.delay(attempt - 1)
			logging.Debug().
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Retrying after backoff")
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := op(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// delay computes the backoff before attempt k+1, with jitter, capped.
func (p Policy) delay(k int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	d := time.Duration(float64(base) * math.Pow(multiplier, float64(k)))
	if d < 0 || d > maxDelay {
		d = maxDelay
	}
	if p.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return d
}
