// Package metrics provides Prometheus metrics for the formulary API:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - db_query_duration_seconds: Histogram with query and outcome labels
//   - db_pool_*: Gauges sampled from the connection pool
//
// All metrics are registered with the Prometheus default registry during package initialization.
package metrics

import (
	"time"

	"github.com/giygas/nlem-api/database"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Number of rate limiter buckets currently tracked",
		},
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
		[]string{"query", "outcome"},
	)

	DBPoolAcquiredConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_acquired_conns",
			Help: "Connections currently checked out of the pool",
		},
	)

	DBPoolIdleConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_idle_conns",
			Help: "Idle connections in the pool",
		},
	)

	DBPoolTotalConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_total_conns",
			Help: "Open connections in the pool",
		},
	)

	DBPoolMaxConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_max_conns",
			Help: "Configured maximum pool size",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(DBQueryDuration)
	prometheus.MustRegister(DBPoolAcquiredConns)
	prometheus.MustRegister(DBPoolIdleConns)
	prometheus.MustRegister(DBPoolTotalConns)
	prometheus.MustRegister(DBPoolMaxConns)
}

// ObserveQuery records how long a named query took and whether it failed
func ObserveQuery(query string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DBQueryDuration.WithLabelValues(query, outcome).Observe(time.Since(start).Seconds())
}

// RecordPoolStats copies a pool snapshot into the pool gauges
func RecordPoolStats(stats database.PoolStats) {
	DBPoolAcquiredConns.Set(float64(stats.AcquiredConns))
	DBPoolIdleConns.Set(float64(stats.IdleConns))
	DBPoolTotalConns.Set(float64(stats.TotalConns))
	DBPoolMaxConns.Set(float64(stats.MaxConns))
}
