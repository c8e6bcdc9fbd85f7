package config

import "time"

// PortsConfig names the two ports of the route
type PortsConfig struct {
	// Exactly two distinct port names
	Names []string `mapstructure:"names" validate:"len=2,dive,required"`

	// Port the ship sails to first; defaults to the second name
	InitialDestination string `mapstructure:"initial_destination"`

	// Ship name shown in locations and status reports
	ShipName string `mapstructure:"ship_name" validate:"required"`
}

// CapacityConfig holds the bounds of every capacity-limited holder
type CapacityConfig struct {
	Ship          int `mapstructure:"ship" validate:"min=1"`
	ImportCeiling int `mapstructure:"import_ceiling" validate:"min=1"`
	ExportFloor   int `mapstructure:"export_floor" validate:"min=0"`
	ExportCeiling int `mapstructure:"export_ceiling" validate:"min=1,gtefield=ExportFloor"`

	// Global deletion is refused while the registry holds this many containers or fewer
	RegistryFloor int `mapstructure:"registry_floor" validate:"min=0"`
}

// HaulageConfig tunes the background haulage workers
type HaulageConfig struct {
	PollInterval     time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	StartupDelay     time.Duration `mapstructure:"startup_delay" validate:"min=0"`
	TriggerThreshold int           `mapstructure:"trigger_threshold" validate:"min=0"`

	// Processor invocations per second; 0 means unlimited
	ProcessorRate  float64 `mapstructure:"processor_rate" validate:"min=0"`
	ProcessorBurst int     `mapstructure:"processor_burst" validate:"min=1"`

	// How long Stop waits for an in-flight cycle
	StopTimeout time.Duration `mapstructure:"stop_timeout" validate:"gt=0"`
}

// SeedConfig controls the initial container load
type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
