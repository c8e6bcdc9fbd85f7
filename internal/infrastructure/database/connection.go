package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrescamacho/portlogistics-go/internal/adapters/persistence"
	"github.com/andrescamacho/portlogistics-go/internal/infrastructure/config"
)

const memoryPath = ":memory:"

// NewConnection opens the movement log database
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s movement log: %w", cfg.Type, err)
	}

	if err := tunePool(db, cfg); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}

// dialectorFor picks the gorm driver. Postgres takes DATABASE_URL first and
// falls back to the discrete fields; sqlite defaults to an in-memory log.
func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "postgres":
		dsn := cfg.URL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = memoryPath
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// logLevel keeps gorm quiet unless movement inserts were asked to be echoed
func logLevel(cfg *config.DatabaseConfig) logger.LogLevel {
	if cfg.LogQueries {
		return logger.Info
	}
	return logger.Silent
}

func tunePool(db *gorm.DB, cfg *config.DatabaseConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	if cfg.Type == "sqlite" {
		// each connection to :memory: would see its own empty database
		sqlDB.SetMaxOpenConns(1)
		return nil
	}
	sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	return nil
}

// NewTestConnection returns a migrated in-memory sqlite log
func NewTestConnection() (*gorm.DB, error) {
	db, err := NewConnection(&config.DatabaseConfig{Type: "sqlite", Path: memoryPath})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("failed to migrate test movement log: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the movement log schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&persistence.MovementModel{})
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
