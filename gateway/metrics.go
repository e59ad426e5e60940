package gateway

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the package's Prometheus collectors, styled on the
// teacher's pkg/metrics package: a dedicated registry plus
// Namespace/Subsystem-scoped counters and histograms registered once at
// construction.
type metrics struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rejections *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()

	m := &metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "substrate_core",
				Subsystem: "gateway",
				Name:      "operations_total",
				Help:      "Total number of gateway operations, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "substrate_core",
				Subsystem: "gateway",
				Name:      "operation_duration_seconds",
				Help:      "Duration of gateway operations.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
			},
			[]string{"operation"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "substrate_core",
				Subsystem: "gateway",
				Name:      "rejections_total",
				Help:      "Total number of inputs rejected before reaching an operation, by reason.",
			},
			[]string{"reason"},
		),
	}
	reg.MustRegister(m.operations, m.duration, m.rejections)
	return m
}

func (m *metrics) observe(operation string, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(seconds)
}

func (m *metrics) reject(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

// Registry exposes the gateway's Prometheus registry so callers can serve
// it (e.g. via promhttp.HandlerFor), without this package depending on
// net/http itself (HTTP surfaces are out of scope per the core's
// Non-goals).
func (g *Gateway) Registry() *prometheus.Registry { return g.metrics.registry }
