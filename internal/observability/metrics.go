// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Refresh cycle metrics
	RefreshCycles         *prometheus.CounterVec
	RefreshDuration       prometheus.Histogram
	LastSuccessfulRefresh prometheus.Gauge

	// Ingestion metrics
	FetchDuration  *prometheus.HistogramVec
	FetchErrors    *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	RowsIngested   prometheus.Counter
	PriceFeedCalls *prometheus.CounterVec

	// Series metrics
	SamplesNormalized prometheus.Gauge
	ReducedPoints     prometheus.Gauge
	ForcedPoints      prometheus.Gauge

	// API metrics
	APIRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pool_stats_lab"
	}

	return &Metrics{
		// Refresh cycle metrics
		RefreshCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "cycles_total",
			Help:      "Total number of refresh cycles by status",
		}, []string{"status"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Refresh cycle duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastSuccessfulRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_refresh_timestamp",
			Help:      "Unix timestamp of last successful refresh cycle",
		}),

		// Ingestion metrics
		FetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_duration_seconds",
			Help:      "Raw row fetch duration in seconds by source",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed raw row fetches by source",
		}, []string{"source"}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "cache_lookups_total",
			Help:      "Total number of row cache lookups by result",
		}, []string{"result"}),
		RowsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_total",
			Help:      "Total number of raw rows fetched",
		}),
		PriceFeedCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "calls_total",
			Help:      "Total number of exchange API calls by endpoint and status",
		}, []string{"endpoint", "status"}),

		// Series metrics
		SamplesNormalized: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "samples",
			Help:      "Number of samples in the last canonical series",
		}),
		ReducedPoints: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "reduced_points",
			Help:      "Number of points in the last reduced series",
		}),
		ForcedPoints: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "forced_points",
			Help:      "Number of forced points in the last reduced series",
		}),

		// API metrics
		APIRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests by path and status code",
		}, []string{"path", "code"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRefresh records a finished refresh cycle.
func RecordRefresh(status string, durationSeconds float64, finishedUnix int64) {
	DefaultMetrics.RefreshCycles.WithLabelValues(status).Inc()
	DefaultMetrics.RefreshDuration.Observe(durationSeconds)
	if status == "ok" {
		DefaultMetrics.LastSuccessfulRefresh.Set(float64(finishedUnix))
	}
}

// RecordFetch records a raw row fetch.
func RecordFetch(source string, seconds float64, rows int, err error) {
	DefaultMetrics.FetchDuration.WithLabelValues(source).Observe(seconds)
	if err != nil {
		DefaultMetrics.FetchErrors.WithLabelValues(source).Inc()
		return
	}
	DefaultMetrics.RowsIngested.Add(float64(rows))
}

// RecordCacheLookup records a row cache lookup result.
func RecordCacheLookup(result string) {
	DefaultMetrics.CacheLookups.WithLabelValues(result).Inc()
}

// RecordPriceFeedCall records an exchange API call.
func RecordPriceFeedCall(endpoint string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.PriceFeedCalls.WithLabelValues(endpoint, status).Inc()
}

// UpdateSeriesSizes updates the series size gauges.
func UpdateSeriesSizes(samples, reduced, forced int) {
	DefaultMetrics.SamplesNormalized.Set(float64(samples))
	DefaultMetrics.ReducedPoints.Set(float64(reduced))
	DefaultMetrics.ForcedPoints.Set(float64(forced))
}

// RecordAPIRequest records a served API request.
func RecordAPIRequest(path string, code int) {
	DefaultMetrics.APIRequests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}
