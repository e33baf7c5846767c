package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector defines the interface for collecting pipeline metrics
type MetricsCollector interface {
	RecordCacheLookup(family, tier string, hit bool)
	RecordSourceFetch(source string, items int, duration time.Duration)
	RecordFallback(kind, reason string)
	RecordPublishAttempt(subject string, success bool)
	RecordRateLimitFailOpen(resource string)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordCacheLookup(family, tier string, hit bool)                    {}
func (n *NoOpMetricsCollector) RecordSourceFetch(source string, items int, duration time.Duration) {}
func (n *NoOpMetricsCollector) RecordFallback(kind, reason string)                                 {}
func (n *NoOpMetricsCollector) RecordPublishAttempt(subject string, success bool)                  {}
func (n *NoOpMetricsCollector) RecordRateLimitFailOpen(resource string)                            {}

// PrometheusMetrics implements MetricsCollector using Prometheus
type PrometheusMetrics struct {
	cacheLookups    *prometheus.CounterVec
	sourceFetches   *prometheus.CounterVec
	sourceItems     *prometheus.HistogramVec
	sourceDuration  *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	publishAttempts *prometheus.CounterVec
	failOpens       *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glorynews",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key family, tier and result.",
		}, []string{"family", "tier", "result"}),
		sourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glorynews",
			Name:      "source_fetches_total",
			Help:      "Adapter fetches by source and whether they produced data.",
		}, []string{"source", "status"}),
		sourceItems: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "glorynews",
			Name:      "source_items",
			Help:      "Items returned per adapter fetch.",
			Buckets:   []float64{0, 1, 5, 10, 12, 20, 50, 100},
		}, []string{"source"}),
		sourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "glorynews",
			Name:      "source_fetch_duration_seconds",
			Help:      "Adapter fetch latency, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glorynews",
			Name:      "fallbacks_total",
			Help:      "Responses served from archive or static data.",
		}, []string{"kind", "reason"}),
		publishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glorynews",
			Name:      "event_publish_total",
			Help:      "Event publish attempts by subject and status.",
		}, []string{"subject", "status"}),
		failOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glorynews",
			Name:      "ratelimit_fail_open_total",
			Help:      "Requests sent after the limiter gave up waiting for a token.",
		}, []string{"resource"}),
	}

	reg.MustRegister(
		m.cacheLookups,
		m.sourceFetches,
		m.sourceItems,
		m.sourceDuration,
		m.fallbacks,
		m.publishAttempts,
		m.failOpens,
	)
	return m
}

func (m *PrometheusMetrics) RecordCacheLookup(family, tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(family, tier, result).Inc()
}

func (m *PrometheusMetrics) RecordSourceFetch(source string, items int, duration time.Duration) {
	status := "empty"
	if items > 0 {
		status = "ok"
	}
	m.sourceFetches.WithLabelValues(source, status).Inc()
	m.sourceItems.WithLabelValues(source).Observe(float64(items))
	m.sourceDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordFallback(kind, reason string) {
	m.fallbacks.WithLabelValues(kind, reason).Inc()
}

func (m *PrometheusMetrics) RecordPublishAttempt(subject string, success bool) {
	m.publishAttempts.WithLabelValues(subject, strconv.FormatBool(success)).Inc()
}

func (m *PrometheusMetrics) RecordRateLimitFailOpen(resource string) {
	m.failOpens.WithLabelValues(resource).Inc()
}
