package config

import "time"

// DatabaseConfig locates the movement log. Every container transfer between
// ship, stores and warehouses is journaled here; the simulation itself never
// reads it back, so an in-memory sqlite log is the default.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// URL wins over the discrete postgres fields. DATABASE_URL sets it too.
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// Path of the sqlite file; ":memory:" keeps the log for the process lifetime only
	Path string `mapstructure:"path"`

	// LogQueries echoes every movement insert through the gorm logger
	LogQueries bool `mapstructure:"log_queries"`

	// Pool only applies to postgres; sqlite is pinned to one connection
	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig sizes the postgres pool the journal writes through
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1,ltefield=MaxOpen"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}
