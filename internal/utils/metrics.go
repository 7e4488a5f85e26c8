package utils

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	registry *prometheus.Registry

	requestCount prometheus.Counter
	errorCount   prometheus.Counter

	// Latency per operation name
	operationTimes *prometheus.HistogramVec
	domainEvents   *prometheus.CounterVec

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "requests_total",
			Help:      "Total number of handled requests.",
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "errors_total",
			Help:      "Total number of requests that ended in an error.",
		}),
		operationTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "board",
			Name:      "operation_duration_seconds",
			Help:      "Latency of board operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		domainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "domain_events_total",
			Help:      "Votes, likes, reports and moderation actions by kind.",
		}, []string{"kind"}),
		systemStartTime: time.Now(),
	}

	mc.registry.MustRegister(
		mc.requestCount,
		mc.errorCount,
		mc.operationTimes,
		mc.domainEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return mc
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.requestCount.Inc()
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.errorCount.Inc()
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.operationTimes.WithLabelValues(operationName).Observe(duration.Seconds())
}

// RecordEvent counts a domain event such as "vote" or "report".
func (mc *MetricsCollector) RecordEvent(kind string) {
	mc.domainEvents.WithLabelValues(kind).Inc()
}

func (mc *MetricsCollector) Uptime() time.Duration {
	return time.Since(mc.systemStartTime)
}

// Handler exposes the collector in the prometheus text format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{Registry: mc.registry})
}

// Registry is exposed for tests that gather values directly.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}
