package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion jobs

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchdash_api_calls_total",
			Help: "Total number of outbound HTTP calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pitchdash_api_call_duration_seconds",
			Help:    "Duration of outbound HTTP calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Resolution metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchdash_team_resolutions_total",
			Help: "Total number of player records resolved, by tier",
		},
		[]string{"tier"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchdash_provider_errors_total",
			Help: "Total number of team provider lookups that failed",
		},
		[]string{"provider"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pitchdash_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pitchdash_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchdash_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pitchdash_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"type"},
	)

	RosterPlayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pitchdash_roster_players",
			Help: "Number of players in the latest roster snapshot",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchdash_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pitchdash_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pitchdash_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordResolution records which tier resolved a player record
func RecordResolution(tier string) {
	ResolutionsTotal.WithLabelValues(tier).Inc()
}

// RecordProviderError records a failed provider lookup
func RecordProviderError(provider string) {
	ProviderErrorsTotal.WithLabelValues(provider).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateRosterSize updates the roster snapshot size gauge
func UpdateRosterSize(players int) {
	RosterPlayers.Set(float64(players))
}
