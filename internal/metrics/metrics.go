// Package metrics records fee engine metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector defines the interface for collecting fee engine metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(layer string)
	RecordCacheMiss(layer string)

	// Error metrics
	RecordError(operation, errType string)

	// Fee metrics
	RecordIndicatorFallback(indicator string)
	RecordBandResolution(category, outcome string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                         {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                        {}
func (n *NoopMetricsCollector) RecordError(string, string)                    {}
func (n *NoopMetricsCollector) RecordIndicatorFallback(string)                {}
func (n *NoopMetricsCollector) RecordBandResolution(string, string)           {}

// PrometheusCollector implements MetricsCollector with Prometheus metrics.
type PrometheusCollector struct {
	OperationDuration *prometheus.HistogramVec
	OperationsTotal   *prometheus.CounterVec
	CacheHitsTotal    *prometheus.CounterVec
	CacheMissesTotal  *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	FallbacksTotal    *prometheus.CounterVec
	BandResolutions   *prometheus.CounterVec
}

// NewPrometheusCollector creates the collectors and registers them.
func NewPrometheusCollector(registry prometheus.Registerer) *PrometheusCollector {
	m := &PrometheusCollector{
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "consortial_operation_duration_seconds",
				Help:    "Fee engine operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consortial_operations_total",
				Help: "Total number of fee engine operations",
			},
			[]string{"operation", "result"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consortial_cache_hits_total",
				Help: "Total number of indicator snapshot cache hits",
			},
			[]string{"layer"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consortial_cache_misses_total",
				Help: "Total number of indicator snapshot cache misses",
			},
			[]string{"layer"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consortial_errors_total",
				Help: "Total number of fee engine errors",
			},
			[]string{"operation", "type"},
		),
		FallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consortial_indicator_fallbacks_total",
				Help: "Multipliers that fell back to 1 because indicator data was missing",
			},
			[]string{"indicator"},
		),
		BandResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consortial_band_resolutions_total",
				Help: "Band resolutions by category and outcome",
			},
			[]string{"category", "outcome"},
		),
	}

	registry.MustRegister(
		m.OperationDuration,
		m.OperationsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ErrorsTotal,
		m.FallbacksTotal,
		m.BandResolutions,
	)
	return m
}

func (m *PrometheusCollector) RecordOperationDuration(operation string, duration time.Duration) {
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *PrometheusCollector) RecordOperationResult(operation, result string) {
	m.OperationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *PrometheusCollector) RecordCacheHit(layer string) {
	m.CacheHitsTotal.WithLabelValues(layer).Inc()
}

func (m *PrometheusCollector) RecordCacheMiss(layer string) {
	m.CacheMissesTotal.WithLabelValues(layer).Inc()
}

func (m *PrometheusCollector) RecordError(operation, errType string) {
	m.ErrorsTotal.WithLabelValues(operation, errType).Inc()
}

func (m *PrometheusCollector) RecordIndicatorFallback(indicator string) {
	m.FallbacksTotal.WithLabelValues(indicator).Inc()
}

func (m *PrometheusCollector) RecordBandResolution(category, outcome string) {
	m.BandResolutions.WithLabelValues(category, outcome).Inc()
}
