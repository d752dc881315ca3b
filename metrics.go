package kaskade

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the policy executor and
// its layers. All Record methods are safe on a nil receiver so metrics can
// be left unconfigured. Safe for concurrent use.
type MetricsCollector struct {
	executionsTotal    *prometheus.CounterVec
	executionDuration  *prometheus.HistogramVec
	executionsInFlight *prometheus.GaugeVec

	layerRequestsTotal *prometheus.CounterVec

	mirrorWritesTotal *prometheus.CounterVec
	fallbacksTotal    *prometheus.CounterVec

	reentrancyRejections *prometheus.CounterVec

	errorsTotal *prometheus.CounterVec

	registerer prometheus.Registerer
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		executionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kaskade_executions_total",
				Help: "Total number of policy executions",
			},
			[]string{"policy", "method", "outcome"},
		),
		executionDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kaskade_execution_duration_seconds",
				Help:    "Duration of policy executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"policy", "method"},
		),
		executionsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kaskade_executions_in_flight",
				Help: "Number of policy executions currently in flight",
			},
			[]string{"policy", "method"},
		),
		layerRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kaskade_layer_requests_total",
				Help: "Total number of layer invocations",
			},
			[]string{"layer", "method", "status_code"},
		),
		mirrorWritesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kaskade_mirror_writes_total",
				Help: "Total number of mirror writes between layers",
			},
			[]string{"target", "method"},
		),
		fallbacksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kaskade_fallbacks_total",
				Help: "Total number of cross-layer read fallbacks",
			},
			[]string{"target", "method"},
		),
		reentrancyRejections: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kaskade_reentrancy_rejections_total",
				Help: "Total number of Execute calls rejected by the single-flight guard",
			},
			[]string{"method"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kaskade_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type", "method"},
		),
		registerer: registry,
	}
}

// RecordExecution records count and duration of one completed execution.
func (mc *MetricsCollector) RecordExecution(policy, method, outcome string, duration time.Duration) {
	if mc == nil {
		return
	}

	mc.executionsTotal.WithLabelValues(policy, method, outcome).Inc()
	mc.executionDuration.WithLabelValues(policy, method).Observe(duration.Seconds())
}

// RecordExecutionStart increments the in-flight gauge.
func (mc *MetricsCollector) RecordExecutionStart(policy, method string) {
	if mc == nil {
		return
	}

	mc.executionsInFlight.WithLabelValues(policy, method).Inc()
}

// RecordExecutionEnd decrements the in-flight gauge.
func (mc *MetricsCollector) RecordExecutionEnd(policy, method string) {
	if mc == nil {
		return
	}

	mc.executionsInFlight.WithLabelValues(policy, method).Dec()
}

// RecordLayerRequest increments the layer invocation counter.
func (mc *MetricsCollector) RecordLayerRequest(layer, method string, statusCode int) {
	if mc == nil {
		return
	}

	mc.layerRequestsTotal.WithLabelValues(layer, method, strconv.Itoa(statusCode)).Inc()
}

// RecordMirrorWrite increments the mirror write counter.
func (mc *MetricsCollector) RecordMirrorWrite(target, method string) {
	if mc == nil {
		return
	}

	mc.mirrorWritesTotal.WithLabelValues(target, method).Inc()
}

// RecordFallback increments the fallback counter.
func (mc *MetricsCollector) RecordFallback(target, method string) {
	if mc == nil {
		return
	}

	mc.fallbacksTotal.WithLabelValues(target, method).Inc()
}

// RecordReentrancyRejection counts Execute calls rejected by the
// single-flight guard.
func (mc *MetricsCollector) RecordReentrancyRejection(method string) {
	if mc == nil {
		return
	}

	mc.reentrancyRejections.WithLabelValues(method).Inc()
}

// RecordError increments the error counter by type.
func (mc *MetricsCollector) RecordError(errorType, method string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(errorType, method).Inc()
}
