package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const haulageSubsystem = "haulage"

// HaulageMetricsCollector counts haulage cycles, moved containers and faults per port
type HaulageMetricsCollector struct {
	cyclesTotal     *prometheus.CounterVec
	containersTotal *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	cycleDuration   *prometheus.HistogramVec
}

// NewHaulageMetricsCollector creates a new haulage metrics collector
func NewHaulageMetricsCollector() *HaulageMetricsCollector {
	return &HaulageMetricsCollector{
		cyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: haulageSubsystem,
				Name:      "cycles_total",
				Help:      "Total number of drain and refill cycles per port",
			},
			[]string{"port"},
		),
		containersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: haulageSubsystem,
				Name:      "containers_total",
				Help:      "Containers moved by the haulage worker by phase",
			},
			[]string{"port", "phase"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: haulageSubsystem,
				Name:      "errors_total",
				Help:      "Haulage polls that failed",
			},
			[]string{"port"},
		),
		cycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: haulageSubsystem,
				Name:      "cycle_duration_seconds",
				Help:      "Haulage cycle duration distribution",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"port"},
		),
	}
}

// Register registers all haulage metrics with the Prometheus registry
func (c *HaulageMetricsCollector) Register() error {
	return register(c.cyclesTotal, c.containersTotal, c.errorsTotal, c.cycleDuration)
}

// RecordCycle records one completed cycle
func (c *HaulageMetricsCollector) RecordCycle(port string, drained, refilled int, seconds float64) {
	c.cyclesTotal.WithLabelValues(port).Inc()
	c.containersTotal.WithLabelValues(port, "drain").Add(float64(drained))
	c.containersTotal.WithLabelValues(port, "refill").Add(float64(refilled))
	c.cycleDuration.WithLabelValues(port).Observe(seconds)
}

// RecordFault records a failed poll
func (c *HaulageMetricsCollector) RecordFault(port string) {
	c.errorsTotal.WithLabelValues(port).Inc()
}
