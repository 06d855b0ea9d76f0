// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the sync engine:
// - Preference cache efficiency
// - Sync queue depth and outcomes
// - Connectivity state and probe results
// - Remote store request latency and errors
// - Conflict resolution outcomes
// - Circuit breaker state

var (
	// Cache metrics

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierec_cache_hits_total",
		Help: "Total number of preference cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierec_cache_misses_total",
		Help: "Total number of preference cache misses (absent or expired)",
	})

	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierec_cache_evictions_total",
		Help: "Total number of preference cache evictions",
	})

	// Sync queue metrics

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "movierec_sync_queue_depth",
		Help: "Current number of pending operations in the sync queue",
	})

	QueueOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_sync_queue_operations_total",
			Help: "Total queue operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	QueueEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierec_sync_queue_evictions_total",
		Help: "Operations evicted because the queue was at capacity",
	})

	// Connectivity metrics

	ConnectivityOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "movierec_connectivity_online",
		Help: "Current connectivity status (1 = online, 0 = offline)",
	})

	ConnectivityTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_connectivity_transitions_total",
			Help: "Connectivity state transitions by new status",
		},
		[]string{"status"},
	)

	ConnectivityProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_connectivity_probes_total",
			Help: "Individual connectivity probe results by probe and outcome",
		},
		[]string{"probe", "outcome"},
	)

	// Remote store metrics

	CloudRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_cloud_request_duration_seconds",
			Help:    "Duration of remote preference store requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CloudRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_cloud_request_errors_total",
			Help: "Remote preference store request errors by operation",
		},
		[]string{"operation"},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movierec_circuit_breaker_state",
			Help: "Circuit breaker state (0 = closed, 1 = half-open, 2 = open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Conflict resolution metrics

	ConflictResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_conflict_resolutions_total",
			Help: "Conflict resolutions by outcome (cloud_wins, local_wins, merged)",
		},
		[]string{"outcome"},
	)

	// Preference service metrics

	PreferenceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_preference_operations_total",
			Help: "Preference service operations by name, outcome and source",
		},
		[]string{"operation", "outcome", "source"},
	)

	// HTTP API metrics

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_api_requests_total",
			Help: "API requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_api_request_duration_seconds",
			Help:    "API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "movierec_api_active_requests",
		Help: "API requests currently in flight",
	})
)

// ObserveCloudRequest records one remote store request.
func ObserveCloudRequest(operation string, start time.Time, err error) {
	CloudRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		CloudRequestErrors.WithLabelValues(operation).Inc()
	}
}

// RecordConnectivity updates the connectivity gauge and transition counter.
func RecordConnectivity(online bool) {
	status := "offline"
	value := 0.0
	if online {
		status = "online"
		value = 1.0
	}
	ConnectivityOnline.Set(value)
	ConnectivityTransitions.WithLabelValues(status).Inc()
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequests.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPreferenceOperation records a service-level operation outcome.
func RecordPreferenceOperation(operation string, success bool, source string) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	if source == "" {
		source = "none"
	}
	PreferenceOperations.WithLabelValues(operation, outcome, source).Inc()
}
