package config

import (
	"time"

	"github.com/spf13/viper"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Ports defaults
	if len(cfg.Ports.Names) == 0 {
		cfg.Ports.Names = []string{"Bari", "Busan"}
	}
	if cfg.Ports.InitialDestination == "" && len(cfg.Ports.Names) == 2 {
		cfg.Ports.InitialDestination = cfg.Ports.Names[0]
	}
	if cfg.Ports.ShipName == "" {
		cfg.Ports.ShipName = "HELEN III"
	}

	// Capacity defaults
	if cfg.Capacity.Ship == 0 {
		cfg.Capacity.Ship = 10
	}
	if cfg.Capacity.ImportCeiling == 0 {
		cfg.Capacity.ImportCeiling = 15
	}
	if cfg.Capacity.ExportFloor == 0 {
		cfg.Capacity.ExportFloor = 10
	}
	if cfg.Capacity.ExportCeiling == 0 {
		cfg.Capacity.ExportCeiling = cfg.Capacity.ExportFloor
	}
	if cfg.Capacity.RegistryFloor == 0 {
		cfg.Capacity.RegistryFloor = 20
	}

	// Haulage defaults
	if cfg.Haulage.PollInterval == 0 {
		cfg.Haulage.PollInterval = 5 * time.Second
	}
	if cfg.Haulage.StartupDelay == 0 {
		cfg.Haulage.StartupDelay = 2 * time.Second
	}
	if cfg.Haulage.TriggerThreshold == 0 {
		cfg.Haulage.TriggerThreshold = 5
	}
	if cfg.Haulage.ProcessorBurst == 0 {
		cfg.Haulage.ProcessorBurst = 4
	}
	if cfg.Haulage.StopTimeout == 0 {
		cfg.Haulage.StopTimeout = 10 * time.Second
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = ":memory:"
	}
	if cfg.Database.Type == "postgres" {
		if cfg.Database.Host == "" {
			cfg.Database.Host = "localhost"
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
		if cfg.Database.User == "" {
			cfg.Database.User = "portsim"
		}
		if cfg.Database.Name == "" {
			cfg.Database.Name = "portsim"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.SampleInterval == 0 {
		cfg.Metrics.SampleInterval = 5 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// registerDefaults tells viper about every key so environment overrides apply
// even when no config file mentions them
func registerDefaults(v *viper.Viper) {
	cfg := Default()

	v.SetDefault("ports.names", cfg.Ports.Names)
	v.SetDefault("ports.initial_destination", "")
	v.SetDefault("ports.ship_name", cfg.Ports.ShipName)

	v.SetDefault("capacity.ship", cfg.Capacity.Ship)
	v.SetDefault("capacity.import_ceiling", cfg.Capacity.ImportCeiling)
	v.SetDefault("capacity.export_floor", cfg.Capacity.ExportFloor)
	v.SetDefault("capacity.export_ceiling", 0)
	v.SetDefault("capacity.registry_floor", cfg.Capacity.RegistryFloor)

	v.SetDefault("haulage.poll_interval", cfg.Haulage.PollInterval)
	v.SetDefault("haulage.startup_delay", cfg.Haulage.StartupDelay)
	v.SetDefault("haulage.trigger_threshold", cfg.Haulage.TriggerThreshold)
	v.SetDefault("haulage.processor_rate", cfg.Haulage.ProcessorRate)
	v.SetDefault("haulage.processor_burst", cfg.Haulage.ProcessorBurst)
	v.SetDefault("haulage.stop_timeout", cfg.Haulage.StopTimeout)

	v.SetDefault("seed.enabled", true)

	v.SetDefault("database.type", cfg.Database.Type)
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sslmode", "")
	v.SetDefault("database.log_queries", false)
	v.SetDefault("database.pool.max_open", cfg.Database.Pool.MaxOpen)
	v.SetDefault("database.pool.max_idle", cfg.Database.Pool.MaxIdle)
	v.SetDefault("database.pool.max_lifetime", cfg.Database.Pool.MaxLifetime)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.host", cfg.Metrics.Host)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
	v.SetDefault("metrics.sample_interval", cfg.Metrics.SampleInterval)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
}
