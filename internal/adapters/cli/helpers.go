package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/portlogistics-go/internal/adapters/logging"
	"github.com/andrescamacho/portlogistics-go/internal/adapters/metrics"
	"github.com/andrescamacho/portlogistics-go/internal/adapters/persistence"
	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/application/haulage"
	"github.com/andrescamacho/portlogistics-go/internal/application/port"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
	"github.com/andrescamacho/portlogistics-go/internal/infrastructure/config"
	"github.com/andrescamacho/portlogistics-go/internal/infrastructure/database"
)

// loadConfig loads configuration honouring the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	applyLogFlags(cfg)
	return cfg, nil
}

func applyLogFlags(cfg *config.Config) {
	if logLevel != "" {
		cfg.Logging.Level = strings.ToLower(logLevel)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

// SettingsFromConfig maps the loaded configuration onto the route settings
func SettingsFromConfig(cfg *config.Config) port.Settings {
	settings := port.Settings{
		InitialDestination: cfg.Ports.InitialDestination,
		ShipName:           cfg.Ports.ShipName,
		ShipCapacity:       cfg.Capacity.Ship,
		Limits: storage.Limits{
			ImportCeiling: cfg.Capacity.ImportCeiling,
			ExportFloor:   cfg.Capacity.ExportFloor,
			ExportCeiling: cfg.Capacity.ExportCeiling,
		},
		RegistryFloor: cfg.Capacity.RegistryFloor,
		Haulage: haulage.Config{
			PollInterval:     cfg.Haulage.PollInterval,
			StartupDelay:     cfg.Haulage.StartupDelay,
			TriggerThreshold: cfg.Haulage.TriggerThreshold,
			ProcessorRate:    cfg.Haulage.ProcessorRate,
			ProcessorBurst:   cfg.Haulage.ProcessorBurst,
			StopTimeout:      cfg.Haulage.StopTimeout,
		},
		Seed: cfg.Seed.Enabled,
	}
	copy(settings.Ports[:], cfg.Ports.Names)
	return settings
}

// runtime is a fully wired in-process simulation with its adapters
type runtime struct {
	cfg       *config.Config
	logger    *logging.ConsoleLogger
	db        *gorm.DB
	system    *port.System
	collector *metrics.PortMetricsCollector
	server    *metrics.Server
	cancel    context.CancelFunc
}

// bootstrap opens the movement log, sets up metrics when enabled and builds the system
func bootstrap(cfg *config.Config, out io.Writer) (*runtime, error) {
	rt := &runtime{
		cfg:    cfg,
		logger: logging.NewConsoleLogger(out, "portsim", cfg.Logging.Level, logging.Format(cfg.Logging.Format)),
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate movement log: %w", err)
	}
	rt.db = db

	middlewares := []common.Middleware{common.LoggingMiddleware()}
	if cfg.Metrics.Enabled {
		mw, err := rt.setupMetrics()
		if err != nil {
			rt.close()
			return nil, err
		}
		middlewares = append(middlewares, mw)
	}

	system, err := port.NewSystem(
		SettingsFromConfig(cfg),
		persistence.NewGormMovementRepository(db),
		port.WithMiddleware(middlewares...),
	)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.system = system

	if cfg.Metrics.Enabled {
		rt.collector = metrics.NewPortMetricsCollector(system.MetricsReading, cfg.Metrics.SampleInterval)
		if err := rt.collector.Register(); err != nil {
			rt.close()
			return nil, fmt.Errorf("failed to register port metrics: %w", err)
		}
		server, err := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
		if err != nil {
			rt.close()
			return nil, err
		}
		rt.server = server
	}

	return rt, nil
}

func (rt *runtime) setupMetrics() (common.Middleware, error) {
	metrics.InitRegistry()

	haulageCollector := metrics.NewHaulageMetricsCollector()
	if err := haulageCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register haulage metrics: %w", err)
	}
	metrics.SetGlobalHaulageCollector(haulageCollector)

	commandCollector := metrics.NewCommandMetricsCollector()
	if err := commandCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}
	return metrics.PrometheusMiddleware(commandCollector), nil
}

// context returns a context carrying the runtime's logger
func (rt *runtime) context(parent context.Context) context.Context {
	return common.WithLogger(parent, rt.logger)
}

// start launches the haulage workers, the movement journal and the metrics endpoint
func (rt *runtime) start(parent context.Context) error {
	ctx, cancel := context.WithCancel(rt.context(parent))
	rt.cancel = cancel

	if err := rt.system.Start(ctx); err != nil {
		return err
	}
	if rt.collector != nil {
		rt.collector.Start(ctx)
	}
	if rt.server != nil {
		errs := rt.server.Start()
		go func() {
			for err := range errs {
				rt.logger.Log(common.LevelError, fmt.Sprintf("Metrics server failed: %v", err), map[string]interface{}{
					"action": "metrics_server_failed",
					"addr":   rt.server.Addr(),
				})
			}
		}()
		rt.logger.Log(common.LevelInfo, "Metrics endpoint listening", map[string]interface{}{
			"action": "metrics_server_started",
			"addr":   rt.server.Addr(),
			"path":   rt.cfg.Metrics.Path,
		})
	}
	return nil
}

// close stops everything start launched and releases the database
func (rt *runtime) close() {
	if rt.system != nil {
		rt.system.Stop()
	}
	if rt.collector != nil {
		rt.collector.Stop()
	}
	if rt.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = rt.server.Shutdown(ctx)
		cancel()
	}
	if rt.cancel != nil {
		rt.cancel()
	}
	if rt.cfg.Metrics.Enabled {
		metrics.Reset()
	}
	if rt.db != nil {
		_ = database.Close(rt.db)
	}
}
