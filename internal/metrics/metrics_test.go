package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusCollector(registry)

	m.RecordBandResolution("calculated", "reused")
	m.RecordBandResolution("calculated", "reused")
	m.RecordBandResolution("special", "forked")
	m.RecordIndicatorFallback("PA.NUS.FCRF")
	m.RecordCacheHit("lru")
	m.RecordCacheMiss("redis")
	m.RecordError("calculate_fee", "configuration")
	m.RecordOperationResult("resolve_band", "success")
	m.RecordOperationDuration("resolve_band", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BandResolutions.WithLabelValues("calculated", "reused")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BandResolutions.WithLabelValues("special", "forked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("PA.NUS.FCRF")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("lru")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("calculate_fee", "configuration")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))
}

func TestNoopMetricsCollector(t *testing.T) {
	var m MetricsCollector = &NoopMetricsCollector{}
	assert.NotPanics(t, func() {
		m.RecordBandResolution("base", "created")
		m.RecordIndicatorFallback("NY.GNP.PCAP.CD")
	})
}
