package config

import "time"

// MetricsConfig controls the Prometheus endpoint exposing store occupancy,
// ship state, haulage cycles and command outcomes
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Host and Port of the scrape endpoint; Host defaults to localhost
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Path string `mapstructure:"path"`

	// SampleInterval is how often terminal, ship and registry gauges are refreshed
	SampleInterval time.Duration `mapstructure:"sample_interval" validate:"omitempty,min=100ms"`
}
