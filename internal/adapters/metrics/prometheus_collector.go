package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "portsim"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalHaulageCollector is the singleton haulage metrics collector.
	// Set by SetGlobalHaulageCollector() when metrics are enabled
	globalHaulageCollector HaulageMetricsRecorder
)

// HaulageMetricsRecorder defines the interface for recording haulage events.
// Application code records through the package-level functions below.
type HaulageMetricsRecorder interface {
	RecordCycle(port string, drained, refilled int, seconds float64)
	RecordFault(port string)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Reset drops the registry and every global collector
func Reset() {
	Registry = nil
	globalHaulageCollector = nil
}

// SetGlobalHaulageCollector sets the global haulage metrics collector
func SetGlobalHaulageCollector(collector HaulageMetricsRecorder) {
	globalHaulageCollector = collector
}

// RecordHaulageCycle records a completed haulage cycle globally
func RecordHaulageCycle(port string, drained, refilled int, seconds float64) {
	if globalHaulageCollector != nil {
		globalHaulageCollector.RecordCycle(port, drained, refilled, seconds)
	}
}

// RecordHaulageFault records a failed haulage poll globally
func RecordHaulageFault(port string) {
	if globalHaulageCollector != nil {
		globalHaulageCollector.RecordFault(port)
	}
}

func register(collectors ...prometheus.Collector) error {
	if Registry == nil {
		return nil // Metrics not enabled
	}
	for _, c := range collectors {
		if err := Registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}
