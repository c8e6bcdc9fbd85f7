package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Command outcomes. A refusal is a domain rule saying no (a full store, a
// ship in the wrong state, a guarded deletion); an error is anything else.
const (
	outcomeSuccess = "success"
	outcomeRefused = "refused"
	outcomeError   = "error"
)

// CommandMetricsCollector tracks every request that passes through the mediator
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
}

func NewCommandMetricsCollector() *CommandMetricsCollector {
	labels := []string{"command", "status"}
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "command",
				Name:      "command_duration_seconds",
				Help:      "Time spent handling captain, operator and query requests",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			labels,
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "command",
				Name:      "commands_total",
				Help:      "Port requests handled, by request type and outcome",
			},
			labels,
		),
	}
}

func (c *CommandMetricsCollector) Register() error {
	return register(c.commandDuration, c.commandsTotal)
}

// RecordCommandExecution counts one handled request under the given outcome
func (c *CommandMetricsCollector) RecordCommandExecution(commandName string, seconds float64, outcome string) {
	c.commandDuration.WithLabelValues(commandName, outcome).Observe(seconds)
	c.commandsTotal.WithLabelValues(commandName, outcome).Inc()
}
