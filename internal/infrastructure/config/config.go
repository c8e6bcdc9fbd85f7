package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Ports    PortsConfig    `mapstructure:"ports"`
	Capacity CapacityConfig `mapstructure:"capacity"`
	Haulage  HaulageConfig  `mapstructure:"haulage"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Database DatabaseConfig `mapstructure:"database"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// LoadConfig resolves configuration with environment variables over the
// config file over defaults. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DATABASE_URL is honoured without the prefix and implies postgres
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
		v.Set("database.type", "postgres")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("portsim")
		v.SetConfigType("yaml")
		for _, dir := range []string{".", "./configs", "/etc/portsim"} {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("PORTSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// viper only binds environment variables for keys it already knows
	registerDefaults(v)
	return v
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{Seed: SeedConfig{Enabled: true}}
	SetDefaults(cfg)
	return cfg
}

// LoadConfigOrDefault falls back to Default when loading fails
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default()
	}
	return cfg
}
