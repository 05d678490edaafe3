package prometheus

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cafe-service/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Cafe metrics
	CafeOperationsCounter prometheus.CounterVec

	// Seed loader metrics
	SeedResultsCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	CafeOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_operations_total",
			Help: "Total number of cafe operations",
		},
		[]string{"operation"},
	)

	SeedResultsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_seed_results_total",
			Help: "Total number of seed loader results",
		},
		[]string{"result"},
	)

	initialized = true
}

var initialized bool

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			method := c.Request().Method
			path := c.Path()
			status := strconv.Itoa(c.Response().Status)

			HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
			HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration)

			return err
		}
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if !initialized {
			return
		}
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordCafeOperation increments the counter for cafe operations
func RecordCafeOperation(operation string) {
	if !initialized {
		return
	}
	CafeOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordSeedResult increments the counter for seed loader results
func RecordSeedResult(result string) {
	if !initialized {
		return
	}
	SeedResultsCounter.WithLabelValues(result).Inc()
}
