package haulage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/portlogistics-go/internal/adapters/metrics"
	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/domain/goods"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
	"github.com/andrescamacho/portlogistics-go/pkg/utils"
)

// Config controls a haulage worker's schedule
type Config struct {
	PollInterval     time.Duration
	StartupDelay     time.Duration
	TriggerThreshold int
	// ProcessorRate caps processor invocations per second; 0 means unlimited.
	ProcessorRate  float64
	ProcessorBurst int
	// StopTimeout bounds how long Stop waits for the loop to exit.
	StopTimeout time.Duration
}

// DefaultConfig returns the standard haulage schedule
func DefaultConfig() Config {
	return Config{
		PollInterval:     5 * time.Second,
		StartupDelay:     2 * time.Second,
		TriggerThreshold: 5,
		ProcessorBurst:   4,
		StopTimeout:      10 * time.Second,
	}
}

// Processor is a warehouse serving both directions for one goods category
type Processor interface {
	goods.ImportProcessor
	goods.ExportProcessor
}

// Worker watches one port's import store and, once per overload episode,
// drains it through the warehouses and refills the emptied containers.
//
// Overload detection is edge-triggered: a cycle runs when occupancy rises
// above the threshold and the latch is clear; the latch re-arms once
// occupancy falls back to the threshold or below.
//
// Thread-Safety:
// Poll and the background loop share the latch under a mutex. Store access
// goes through the stores' own locks.
type Worker struct {
	port       string
	imports    *storage.ImportStore
	exports    *storage.ExportStore
	processors []Processor
	cfg        Config
	limiter    *rate.Limiter
	clock      shared.Clock
	lifecycle  *shared.Lifecycle

	mu       sync.Mutex
	serviced bool
	cycles   int
	faults   int
	last     *CycleResult

	cancelFunc context.CancelFunc
	done       chan struct{}
}

// NewWorker creates a worker for one port. Processors are visited in the order given.
func NewWorker(
	terminal *storage.Terminal,
	processors []Processor,
	cfg Config,
	clock shared.Clock,
) (*Worker, error) {
	if terminal == nil {
		return nil, fmt.Errorf("terminal is required")
	}
	if len(processors) == 0 {
		return nil, fmt.Errorf("at least one processor is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.TriggerThreshold < 0 {
		return nil, fmt.Errorf("trigger threshold cannot be negative, got %d", cfg.TriggerThreshold)
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultConfig().StopTimeout
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.ProcessorRate > 0 {
		burst := cfg.ProcessorBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.ProcessorRate), burst)
	}

	return &Worker{
		port:       terminal.Port(),
		imports:    terminal.Imports(),
		exports:    terminal.Exports(),
		processors: processors,
		cfg:        cfg,
		limiter:    limiter,
		clock:      clock,
		lifecycle:  shared.NewLifecycle(clock),
		done:       make(chan struct{}),
	}, nil
}

// NewWarehouseWorker creates a worker with the port's four category warehouses.
func NewWarehouseWorker(terminal *storage.Terminal, cfg Config, clock shared.Clock) (*Worker, []*goods.Warehouse, error) {
	if terminal == nil {
		return nil, nil, fmt.Errorf("terminal is required")
	}
	warehouses, err := goods.NewWarehouses(terminal.Port())
	if err != nil {
		return nil, nil, err
	}
	processors := make([]Processor, 0, len(warehouses))
	for _, w := range warehouses {
		processors = append(processors, w)
	}
	worker, err := NewWorker(terminal, processors, cfg, clock)
	if err != nil {
		return nil, nil, err
	}
	return worker, warehouses, nil
}

func (w *Worker) Port() string                   { return w.port }
func (w *Worker) Status() shared.LifecycleStatus { return w.lifecycle.Status() }
func (w *Worker) Runtime() time.Duration         { return w.lifecycle.RuntimeDuration() }
func (w *Worker) Done() <-chan struct{}          { return w.done }
func (w *Worker) Threshold() int                 { return w.cfg.TriggerThreshold }

// Stats is a point-in-time view of the worker
type Stats struct {
	Port     string
	Status   shared.LifecycleStatus
	Serviced bool
	Cycles   int
	Faults   int
	// Uptime is frozen once the worker stops
	Uptime time.Duration
	Last   *CycleResult
}

func (w *Worker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := Stats{
		Port:     w.port,
		Status:   w.lifecycle.Status(),
		Serviced: w.serviced,
		Cycles:   w.cycles,
		Faults:   w.faults,
		Uptime:   w.Runtime(),
	}
	if w.last != nil {
		last := *w.last
		st.Last = &last
	}
	return st
}

// Start launches the polling loop. The logger in ctx receives the worker's
// log lines; cancelling ctx stops the worker like Stop does.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.lifecycle.Start(); err != nil {
		return fmt.Errorf("haulage worker %s: %w", w.port, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Haulage worker started", map[string]interface{}{
		"action":        "haulage_start",
		"port":          w.port,
		"poll_interval": w.cfg.PollInterval.String(),
		"threshold":     w.cfg.TriggerThreshold,
	})

	go w.run(runCtx)
	return nil
}

// Stop signals the loop and waits for it to exit. A cycle already running
// finishes first.
func (w *Worker) Stop() {
	if !w.lifecycle.RequestStop() {
		return
	}
	w.cancelFunc()

	select {
	case <-w.done:
	case <-time.After(w.cfg.StopTimeout):
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	defer w.lifecycle.MarkStopped()

	logger := common.LoggerFromContext(ctx)

	if w.cfg.StartupDelay > 0 {
		select {
		case <-ctx.Done():
			logger.Log(common.LevelInfo, "Haulage worker stopped during startup", map[string]interface{}{
				"action": "haulage_stop",
				"port":   w.port,
			})
			return
		case <-time.After(w.cfg.StartupDelay):
		}
	}

	logger.Log(common.LevelInfo, "Haulage monitor active", map[string]interface{}{
		"action": "haulage_monitor",
		"port":   w.port,
	})

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log(common.LevelInfo, "Haulage worker stopped", map[string]interface{}{
				"action": "haulage_stop",
				"port":   w.port,
				"cycles": w.Stats().Cycles,
			})
			return
		case <-ticker.C:
			w.safePoll(ctx)
		}
	}
}

// safePoll runs one poll and keeps the loop alive whatever the poll does.
func (w *Worker) safePoll(ctx context.Context) {
	logger := common.LoggerFromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			w.recordFault()
			logger.Log(common.LevelError, fmt.Sprintf("Haulage iteration failed: %v", r), map[string]interface{}{
				"action": "haulage_fault",
				"port":   w.port,
			})
		}
	}()

	if _, _, err := w.Poll(ctx); err != nil {
		w.recordFault()
		logger.Log(common.LevelError, fmt.Sprintf("Haulage iteration failed: %v", err), map[string]interface{}{
			"action": "haulage_fault",
			"port":   w.port,
		})
	}
}

func (w *Worker) recordFault() {
	w.mu.Lock()
	w.faults++
	w.mu.Unlock()
	metrics.RecordHaulageFault(w.port)
}

// Poll checks occupancy once and runs a transfer cycle if this is a new
// overload episode. Returns whether a cycle ran and its result.
func (w *Worker) Poll(ctx context.Context) (bool, CycleResult, error) {
	w.mu.Lock()
	size := w.imports.Len()
	if size <= w.cfg.TriggerThreshold {
		if w.serviced {
			common.LoggerFromContext(ctx).Log(common.LevelDebug, "Import occupancy back under threshold, worker re-armed", map[string]interface{}{
				"action":    "haulage_rearm",
				"port":      w.port,
				"occupancy": size,
			})
		}
		w.serviced = false
		w.mu.Unlock()
		return false, CycleResult{}, nil
	}
	if w.serviced {
		w.mu.Unlock()
		return false, CycleResult{}, nil
	}
	// Latch before running so a concurrent Poll cannot start a second cycle.
	w.serviced = true
	w.mu.Unlock()

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Overload detected, moving cargo", map[string]interface{}{
		"action":    "haulage_overload",
		"port":      w.port,
		"occupancy": size,
		"threshold": w.cfg.TriggerThreshold,
	})

	result, err := w.RunCycle(ctx)

	w.mu.Lock()
	w.cycles++
	w.last = &result
	w.mu.Unlock()

	return true, result, err
}

// CycleResult reports one transfer cycle
type CycleResult struct {
	ID        string
	Port      string
	Drained   int
	Refilled  int
	Rounds    int
	StartedAt time.Time
	Duration  time.Duration
}

// RunCycle drains the import store through the warehouses until a full round
// moves nothing or the store is empty, then runs the export warehouses once
// per drained container to refill the empties. The drain always completes
// before the refill starts. Cancelling ctx does not interrupt a cycle.
func (w *Worker) RunCycle(ctx context.Context) (CycleResult, error) {
	logger := common.LoggerFromContext(ctx)
	cycleCtx := context.WithoutCancel(ctx)

	result := CycleResult{
		ID:        utils.GenerateID("cycle", w.port),
		Port:      w.port,
		StartedAt: w.clock.Now(),
	}

	for w.imports.Len() > 0 {
		progress := 0
		for _, p := range w.processors {
			if err := w.limiter.Wait(cycleCtx); err != nil {
				return result, fmt.Errorf("processor throttle: %w", err)
			}
			if _, ok := goods.RunImport(p, w.imports, w.exports); ok {
				progress++
			}
		}
		result.Rounds++
		result.Drained += progress
		if progress == 0 {
			break
		}
	}

	logger.Log(common.LevelInfo, fmt.Sprintf("Import phase complete, moved %d containers to the export store", result.Drained), map[string]interface{}{
		"action":   "haulage_drain",
		"port":     w.port,
		"cycle_id": result.ID,
		"drained":  result.Drained,
		"rounds":   result.Rounds,
	})

	for i := 0; i < result.Drained; i++ {
		progress := 0
		for _, p := range w.processors {
			if err := w.limiter.Wait(cycleCtx); err != nil {
				return result, fmt.Errorf("processor throttle: %w", err)
			}
			if _, ok := goods.RunExport(p, w.exports); ok {
				progress++
			}
		}
		result.Refilled += progress
		if progress == 0 {
			break
		}
	}

	result.Duration = w.clock.Now().Sub(result.StartedAt)
	metrics.RecordHaulageCycle(w.port, result.Drained, result.Refilled, result.Duration.Seconds())

	logger.Log(common.LevelInfo, "Transfer cycle complete", map[string]interface{}{
		"action":   "haulage_cycle",
		"port":     w.port,
		"cycle_id": result.ID,
		"drained":  result.Drained,
		"refilled": result.Refilled,
	})
	return result, nil
}
