// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/metrics"
	"github.com/tomtom215/movierec/internal/storage"
)

// Config holds connectivity monitor configuration.
type Config struct {
	// CheckInterval is the periodic active-probe interval while online.
	// While offline the monitor backs off to 2x this interval.
	// Default: 30s
	CheckInterval time.Duration

	// ProbeTimeout bounds each individual probe. Default: 4s
	ProbeTimeout time.Duration

	// HistoryLimit caps the persisted transition history. Default: 100
	HistoryLimit int

	// OriginURL is the same-origin lightweight resource checked first.
	OriginURL string

	// ExternalURL is the DNS-resolution-style external check.
	// Default: https://dns.google/
	ExternalURL string

	// HealthURL is the application health endpoint check.
	HealthURL string

	// ProbeBurst caps how many active probe rounds may run per
	// CheckInterval, protecting against callers hammering
	// PerformConnectivityCheck. Default: 4
	ProbeBurst int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		CheckInterval: 30 * time.Second,
		ProbeTimeout:  4 * time.Second,
		HistoryLimit:  100,
		ExternalURL:   "https://dns.google/",
		ProbeBurst:    4,
	}
}

// offlineBackoffMultiplier stretches the periodic re-check while offline
// so an offline device does not hammer the network.
const offlineBackoffMultiplier = 2

// Probe is a single active connectivity check.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Transition is one online/offline state change, persisted for diagnostics.
type Transition struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`

	// DurationInPreviousStatusMs is how long the prior state lasted.
	DurationInPreviousStatusMs int64 `json:"durationInPreviousStatus"`
}

// Monitor produces a single "are we usably online" signal, more reliable
// than raw platform online/offline events: those are passive hints that
// trigger an active probe, and the probe's majority vote decides.
//
// Listeners are notified synchronously on every transition; a panicking
// listener is isolated so it cannot break the others.
type Monitor struct {
	cfg    Config
	store  storage.Store
	probes []Probe

	mu             sync.RWMutex
	online         bool
	lastTransition time.Time
	history        []Transition
	listeners      map[int]func(online bool)
	nextListener   int

	limiter *rate.Limiter
	recheck chan struct{}

	// now is replaceable in tests.
	now func() time.Time
}

// NewMonitor creates a monitor persisting history to store. The monitor
// starts in the online state, matching the optimistic platform default;
// the first probe round corrects it if wrong.
func NewMonitor(cfg Config, store storage.Store) *Monitor {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 30 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 4 * time.Second
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 100
	}
	if cfg.ProbeBurst <= 0 {
		cfg.ProbeBurst = 4
	}

	m := &Monitor{
		cfg:            cfg,
		store:          store,
		online:         true,
		lastTransition: time.Now(),
		listeners:      make(map[int]func(online bool)),
		limiter:        rate.NewLimiter(rate.Every(cfg.CheckInterval/time.Duration(cfg.ProbeBurst)), cfg.ProbeBurst),
		recheck:        make(chan struct{}, 1),
		now:            time.Now,
	}
	m.probes = m.defaultProbes()
	m.loadHistory()
	metrics.ConnectivityOnline.Set(1)
	return m
}

// SetProbes replaces the active checks. Used by tests and by deployments
// with custom health endpoints. Majority of the configured probes must
// succeed for the monitor to report online.
func (m *Monitor) SetProbes(probes []Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = probes
}

// defaultProbes builds the standard three checks from the configured URLs.
// Unconfigured URLs are skipped, so a minimal deployment can run on the
// external check alone.
func (m *Monitor) defaultProbes() []Probe {
	client := &http.Client{Timeout: m.cfg.ProbeTimeout}
	var probes []Probe
	add := func(name, url string) {
		if url == "" {
			return
		}
		probes = append(probes, Probe{
			Name: name,
			Check: func(ctx context.Context) error {
				req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
				if err != nil {
					return err
				}
				resp, err := client.Do(req)
				if err != nil {
					return err
				}
				_ = resp.Body.Close()
				return nil
			},
		})
	}
	add("origin", m.cfg.OriginURL)
	add("external", m.cfg.ExternalURL)
	add("health", m.cfg.HealthURL)
	return probes
}

// IsOnline returns the current believed status.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// AddListener registers a transition callback and returns its unsubscribe
// function. Callbacks run synchronously on the transitioning goroutine.
func (m *Monitor) AddListener(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// NotifyOnline is the passive "platform says online" signal. The hint is
// not trusted directly; it triggers an immediate active re-check.
func (m *Monitor) NotifyOnline() {
	select {
	case m.recheck <- struct{}{}:
	default:
	}
}

// NotifyOffline is the passive "platform says offline" signal. Offline
// hints are trusted immediately (a dead interface is a strong signal) and
// the periodic probe recovers the state once the network returns.
func (m *Monitor) NotifyOffline() {
	m.setStatus(false)
}

// NotifyVisible is the page-visibility signal. Connectivity may have
// changed while the page was hidden or throttled, so a visibility change
// while believed online re-triggers an active check.
func (m *Monitor) NotifyVisible() {
	if m.IsOnline() {
		select {
		case m.recheck <- struct{}{}:
		default:
		}
	}
}

// PerformConnectivityCheck runs all probes concurrently and applies the
// majority-vote decision rule: online iff a strict majority succeeds
// (2 of 3 for the standard probe set), tolerating one flaky check without
// flapping state. The computed status is recorded and returned.
func (m *Monitor) PerformConnectivityCheck(ctx context.Context) bool {
	return m.check(ctx, false)
}

// check runs one probe round. Passive-signal rechecks bypass the rate
// limiter so an online hint is never ignored just because callers
// recently burned the probe budget.
func (m *Monitor) check(ctx context.Context, bypassLimit bool) bool {
	m.mu.RLock()
	probes := m.probes
	m.mu.RUnlock()

	if len(probes) == 0 {
		return m.IsOnline()
	}
	if !bypassLimit && !m.limiter.Allow() {
		// Probe budget exhausted; keep the current belief.
		return m.IsOnline()
	}

	results := make(chan bool, len(probes))
	for _, p := range probes {
		go func(p Probe) {
			probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
			defer cancel()
			err := p.Check(probeCtx)
			if err != nil {
				metrics.ConnectivityProbes.WithLabelValues(p.Name, "failure").Inc()
			} else {
				metrics.ConnectivityProbes.WithLabelValues(p.Name, "success").Inc()
			}
			results <- err == nil
		}(p)
	}

	successes := 0
	for range probes {
		if <-results {
			successes++
		}
	}

	online := successes*2 > len(probes)
	m.setStatus(online)
	return online
}

// Serve runs the periodic re-check loop until ctx is canceled. While
// online it probes every CheckInterval; while offline it backs off to 2x
// the interval but re-checks immediately on a passive online signal.
// Implements suture.Service.
func (m *Monitor) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", m.cfg.CheckInterval).
		Int("probes", len(m.probes)).
		Msg("Connectivity monitor started")

	timer := time.NewTimer(m.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.recheck:
			m.check(ctx, true)
		case <-timer.C:
			m.PerformConnectivityCheck(ctx)
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(m.nextInterval())
	}
}

// String implements fmt.Stringer for supervisor logging.
func (m *Monitor) String() string {
	return "connectivity-monitor"
}

// nextInterval returns the periodic probe delay for the current state.
func (m *Monitor) nextInterval() time.Duration {
	if m.IsOnline() {
		return m.cfg.CheckInterval
	}
	return m.cfg.CheckInterval * offlineBackoffMultiplier
}

// setStatus records a state change. Only an actual transition appends to
// history, persists, and notifies listeners.
func (m *Monitor) setStatus(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}

	now := m.now()
	previous := m.lastTransition
	m.online = online
	m.lastTransition = now

	status := "offline"
	if online {
		status = "online"
	}
	m.history = append(m.history, Transition{
		Timestamp:                  now,
		Status:                     status,
		DurationInPreviousStatusMs: now.Sub(previous).Milliseconds(),
	})
	if len(m.history) > m.cfg.HistoryLimit {
		m.history = m.history[len(m.history)-m.cfg.HistoryLimit:]
	}

	listeners := make([]func(bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	m.persistHistory()
	metrics.RecordConnectivity(online)
	logging.Info().Str("status", status).Msg("[CONNECTIVITY] State transition")

	for _, fn := range listeners {
		notifyListener(fn, online)
	}
}

// notifyListener invokes one listener, isolating panics.
func notifyListener(fn func(bool), online bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Msg("[CONNECTIVITY] Listener panicked")
		}
	}()
	fn(online)
}

// History returns a copy of the recorded transitions, oldest first.
func (m *Monitor) History() []Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}
