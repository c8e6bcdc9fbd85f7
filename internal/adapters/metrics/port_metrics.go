package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TerminalReading is one port's store occupancy at sampling time
type TerminalReading struct {
	Port            string
	ImportOccupancy int
	ExportOccupancy int
}

// PortReading is a full sample of the simulation's observable state
type PortReading struct {
	Terminals    []TerminalReading
	ShipState    string
	ShipStates   []string
	ShipOnboard  int
	RegistrySize int
}

// PortMetricsCollector samples terminal, ship and registry state on an interval
type PortMetricsCollector struct {
	sample   func() PortReading
	interval time.Duration

	importOccupancy *prometheus.GaugeVec
	exportOccupancy *prometheus.GaugeVec
	shipOnboard     prometheus.Gauge
	shipState       *prometheus.GaugeVec
	registrySize    prometheus.Gauge

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewPortMetricsCollector creates a collector fed by sample. A non-positive
// interval defaults to 5 seconds.
func NewPortMetricsCollector(sample func() PortReading, interval time.Duration) *PortMetricsCollector {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &PortMetricsCollector{
		sample:   sample,
		interval: interval,

		importOccupancy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "terminal",
				Name:      "import_occupancy",
				Help:      "Containers held by the import store",
			},
			[]string{"port"},
		),
		exportOccupancy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "terminal",
				Name:      "export_occupancy",
				Help:      "Containers held by the export store",
			},
			[]string{"port"},
		),
		shipOnboard: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ship",
				Name:      "onboard",
				Help:      "Containers aboard the cargo ship",
			},
		),
		shipState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ship",
				Name:      "state",
				Help:      "1 for the ship's current state, 0 otherwise",
			},
			[]string{"state"},
		),
		registrySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "size",
				Help:      "Containers known to the global registry",
			},
		),
	}
}

// Register registers all port metrics with the Prometheus registry
func (c *PortMetricsCollector) Register() error {
	return register(c.importOccupancy, c.exportOccupancy, c.shipOnboard, c.shipState, c.registrySize)
}

// Start begins periodic sampling
func (c *PortMetricsCollector) Start(ctx context.Context) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)
	c.Update()

	c.wg.Add(1)
	go c.collect()
}

// Stop gracefully stops the sampling loop
func (c *PortMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *PortMetricsCollector) collect() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.Update()
		}
	}
}

// Update takes one sample and writes it to the gauges
func (c *PortMetricsCollector) Update() {
	if c.sample == nil {
		return
	}
	reading := c.sample()

	for _, t := range reading.Terminals {
		c.importOccupancy.WithLabelValues(t.Port).Set(float64(t.ImportOccupancy))
		c.exportOccupancy.WithLabelValues(t.Port).Set(float64(t.ExportOccupancy))
	}

	c.shipOnboard.Set(float64(reading.ShipOnboard))
	for _, state := range reading.ShipStates {
		value := 0.0
		if state == reading.ShipState {
			value = 1
		}
		c.shipState.WithLabelValues(state).Set(value)
	}

	c.registrySize.Set(float64(reading.RegistrySize))
}
