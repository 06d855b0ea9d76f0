// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package preferences

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/metrics"
	"github.com/tomtom215/movierec/internal/models"
)

// CloudClient talks to the remote preference store. Implementations must
// report a missing record as ErrNoRecord, not as a zero-value record.
type CloudClient interface {
	Fetch(ctx context.Context, token string) (*models.PreferenceRecord, error)
	Save(ctx context.Context, token string, record *models.PreferenceRecord, idempotencyKey string) error
}

// ErrNoRecord reports that the remote store has no preferences for the user.
var ErrNoRecord = errors.New("preferences: no record in remote store")

// HTTPError is a non-2xx response from the remote store.
type HTTPError struct {
	Op         string
	StatusCode int
}

// Error implements error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("preferences: %s returned HTTP %d", e.Op, e.StatusCode)
}

// Auth reports whether the failure is an authentication rejection.
func (e *HTTPError) Auth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ClientConfig holds remote store client configuration.
type ClientConfig struct {
	// BaseURL is the remote store origin, e.g. https://api.movierec.app/v1
	BaseURL string

	// Timeout bounds each request. Default: 10s
	Timeout time.Duration
}

// HTTPCloudClient is the production CloudClient over HTTPS.
//
// All requests run behind a shared circuit breaker so a degraded remote
// store fails fast instead of stacking up slow requests. Rejections from
// an open breaker surface as gobreaker.ErrOpenState; the service treats
// them like any other network failure and falls back to local data.
//
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 1 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 6 requests
type HTTPCloudClient struct {
	cfg    ClientConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker[*models.PreferenceRecord]
}

const breakerName = "cloud-preferences"

// NewHTTPCloudClient creates a remote store client with circuit breaker
// protection.
func NewHTTPCloudClient(cfg ClientConfig) *HTTPCloudClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[*models.PreferenceRecord](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 6 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		// A missing record is an answer, not a failure; it must never
		// push the breaker toward open.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoRecord)
		},
	})

	return &HTTPCloudClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cb:     cb,
	}
}

// fetchEnvelope tolerates both historical response shapes: the record at
// the top level, or wrapped under a "preferences" field.
type fetchEnvelope struct {
	models.PreferenceRecord
	Preferences *models.PreferenceRecord `json:"preferences,omitempty"`
}

// Fetch retrieves the user's preferences from the remote store.
// A 404 maps to ErrNoRecord.
func (c *HTTPCloudClient) Fetch(ctx context.Context, token string) (*models.PreferenceRecord, error) {
	start := time.Now()
	record, err := c.cb.Execute(func() (*models.PreferenceRecord, error) {
		return c.doFetch(ctx, token)
	})
	metrics.ObserveCloudRequest("fetch", start, err)
	return record, err
}

func (c *HTTPCloudClient) doFetch(ctx context.Context, token string) (*models.PreferenceRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/user/preferences", nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch preferences: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoRecord
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{Op: "fetch", StatusCode: resp.StatusCode}
	}

	var envelope fetchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode preferences response: %w", err)
	}
	if envelope.Preferences != nil {
		return envelope.Preferences, nil
	}
	record := envelope.PreferenceRecord
	return &record, nil
}

// Save writes the record to the remote store. The idempotency key makes a
// replay from the sync queue safe to repeat.
func (c *HTTPCloudClient) Save(ctx context.Context, token string, record *models.PreferenceRecord, idempotencyKey string) error {
	start := time.Now()
	_, err := c.cb.Execute(func() (*models.PreferenceRecord, error) {
		return nil, c.doSave(ctx, token, record, idempotencyKey)
	})
	metrics.ObserveCloudRequest("save", start, err)
	return err
}

func (c *HTTPCloudClient) doSave(ctx context.Context, token string, record *models.PreferenceRecord, idempotencyKey string) error {
	body, err := json.Marshal(map[string]interface{}{"preferences": record})
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/user/preferences", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return &HTTPError{Op: "save", StatusCode: resp.StatusCode}
	}
	return nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
