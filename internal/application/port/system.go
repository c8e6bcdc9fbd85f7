package port

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/andrescamacho/portlogistics-go/internal/adapters/metrics"
	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/application/haulage"
	shipCmd "github.com/andrescamacho/portlogistics-go/internal/application/ship/commands"
	shipQuery "github.com/andrescamacho/portlogistics-go/internal/application/ship/queries"
	shipTypes "github.com/andrescamacho/portlogistics-go/internal/application/ship/types"
	terminalCmd "github.com/andrescamacho/portlogistics-go/internal/application/terminal/commands"
	terminalQuery "github.com/andrescamacho/portlogistics-go/internal/application/terminal/queries"
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/goods"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

// System wires one route: the registry, both terminals, the ship, a haulage
// worker per port and the mediator every command goes through.
type System struct {
	settings   Settings
	clock      shared.Clock
	registry   *container.Registry
	factory    *container.Factory
	terminals  []*storage.Terminal
	route      *navigation.Route
	ship       *navigation.CargoShip
	workers    []*haulage.Worker
	warehouses map[string][]*goods.Warehouse
	journal    *Journal
	movements  container.MovementRepository
	mediator   common.Mediator

	mu      sync.Mutex
	running bool
}

type systemOptions struct {
	clock         shared.Clock
	middlewares   []common.Middleware
	journalBuffer int
}

// Option configures a System
type Option func(*systemOptions)

// WithClock sets the clock used for timestamps
func WithClock(clock shared.Clock) Option {
	return func(o *systemOptions) { o.clock = clock }
}

// WithMiddleware adds mediator middlewares, outermost first
func WithMiddleware(middlewares ...common.Middleware) Option {
	return func(o *systemOptions) { o.middlewares = append(o.middlewares, middlewares...) }
}

// WithJournalBuffer sets how many movements may wait for the repository
func WithJournalBuffer(size int) Option {
	return func(o *systemOptions) { o.journalBuffer = size }
}

// NewSystem builds the route. When settings.Seed is set the initial load is
// created before NewSystem returns. movements may be nil, in which case the
// movement log is disabled and movement queries fail.
func NewSystem(settings Settings, movements container.MovementRepository, opts ...Option) (*System, error) {
	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid port settings: %w", err)
	}

	options := systemOptions{clock: shared.NewRealClock()}
	for _, opt := range opts {
		opt(&options)
	}

	journal := NewJournal(movements, options.journalBuffer)
	registry := container.NewRegistry(
		container.WithRegistryTracker(journal),
		container.WithRegistryClock(options.clock),
	)

	s := &System{
		settings:   settings,
		clock:      options.clock,
		registry:   registry,
		factory:    container.NewFactory(),
		warehouses: make(map[string][]*goods.Warehouse),
		journal:    journal,
		movements:  movements,
	}

	for _, name := range settings.Ports {
		terminal, err := storage.NewTerminal(name, settings.Limits, registry,
			storage.WithTracker(journal),
			storage.WithClock(options.clock),
		)
		if err != nil {
			return nil, err
		}
		s.terminals = append(s.terminals, terminal)
	}

	destination := settings.InitialDestination
	if destination == "" {
		destination = settings.Ports[1]
	}
	route, err := navigation.NewRoute(s.terminals[0], s.terminals[1], s.canonicalPort(destination))
	if err != nil {
		return nil, err
	}
	s.route = route

	ship, err := navigation.NewCargoShip(settings.ShipName, settings.ShipCapacity, route, navigation.WithShipClock(options.clock))
	if err != nil {
		return nil, err
	}
	s.ship = ship

	for _, terminal := range s.terminals {
		worker, warehouses, err := haulage.NewWarehouseWorker(terminal, settings.Haulage, options.clock)
		if err != nil {
			return nil, err
		}
		s.workers = append(s.workers, worker)
		s.warehouses[terminal.Port()] = warehouses
	}

	s.mediator = common.NewMediator()
	for _, mw := range options.middlewares {
		s.mediator.RegisterMiddleware(mw)
	}
	if err := s.registerHandlers(); err != nil {
		return nil, err
	}

	if settings.Seed {
		if err := Seed(s); err != nil {
			return nil, fmt.Errorf("failed to load initial containers: %w", err)
		}
	}

	return s, nil
}

func (s *System) registerHandlers() error {
	registrations := []error{
		common.RegisterHandler[*shipTypes.RequestDockCommand](s.mediator, shipCmd.NewRequestDockHandler(s.ship)),
		common.RegisterHandler[*shipTypes.ConfirmDockCommand](s.mediator, shipCmd.NewConfirmDockHandler(s.ship)),
		common.RegisterHandler[*shipTypes.UnloadCommand](s.mediator, shipCmd.NewUnloadHandler(s.ship)),
		common.RegisterHandler[*shipTypes.ExportCommand](s.mediator, shipCmd.NewExportHandler(s.ship)),
		common.RegisterHandler[*shipTypes.RequestUndockCommand](s.mediator, shipCmd.NewRequestUndockHandler(s.ship)),
		common.RegisterHandler[*shipTypes.ConfirmUndockCommand](s.mediator, shipCmd.NewConfirmUndockHandler(s.ship)),
		common.RegisterHandler[*shipQuery.GetShipStatusQuery](s.mediator, shipQuery.NewGetShipStatusHandler(s.ship)),

		common.RegisterHandler[*terminalCmd.CreateContainerCommand](s.mediator, terminalCmd.NewCreateContainerHandler(s.terminals, s.factory)),
		common.RegisterHandler[*terminalCmd.RemoveContainerCommand](s.mediator, terminalCmd.NewRemoveContainerHandler(s.registry, s.ship, s.terminals, s.settings.RegistryFloor)),
		common.RegisterHandler[*terminalQuery.GetOccupancyQuery](s.mediator, terminalQuery.NewGetOccupancyHandler(s.terminals)),
		common.RegisterHandler[*terminalQuery.ListRegistryQuery](s.mediator, terminalQuery.NewListRegistryHandler(s.registry)),
	}
	if s.movements != nil {
		registrations = append(registrations,
			common.RegisterHandler[*terminalQuery.ListMovementsQuery](s.mediator, terminalQuery.NewListMovementsHandler(&flushingRepository{s.movements, s.journal})),
		)
	}
	for _, err := range registrations {
		if err != nil {
			return fmt.Errorf("failed to register handler: %w", err)
		}
	}
	return nil
}

func (s *System) canonicalPort(name string) string {
	for _, p := range s.settings.Ports {
		if strings.EqualFold(p, strings.TrimSpace(name)) {
			return p
		}
	}
	return name
}

// Start launches the movement journal and the haulage workers. The logger in
// ctx is used by every background component.
func (s *System) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("system already running")
	}

	s.journal.Start(ctx)
	for _, w := range s.workers {
		workerCtx := common.WithLogger(ctx, namedLogger(ctx, "haulage-"+w.Port()))
		if err := w.Start(workerCtx); err != nil {
			return err
		}
	}
	s.running = true
	return nil
}

// Stop stops the workers, letting in-flight cycles finish, then flushes the journal
func (s *System) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range s.workers {
		wg.Add(1)
		go func(w *haulage.Worker) {
			defer wg.Done()
			w.Stop()
		}(w)
	}
	wg.Wait()
	s.journal.Stop()
	s.running = false
}

// Send dispatches a command or query through the mediator
func (s *System) Send(ctx context.Context, request common.Request) (common.Response, error) {
	return s.mediator.Send(ctx, request)
}

func (s *System) Mediator() common.Mediator      { return s.mediator }
func (s *System) Registry() *container.Registry  { return s.registry }
func (s *System) Ship() *navigation.CargoShip    { return s.ship }
func (s *System) Terminals() []*storage.Terminal { return s.terminals }
func (s *System) Workers() []*haulage.Worker     { return s.workers }
func (s *System) Journal() *Journal              { return s.journal }
func (s *System) Settings() Settings             { return s.settings }
func (s *System) Factory() *container.Factory    { return s.factory }
func (s *System) Warehouses(port string) []*goods.Warehouse {
	return s.warehouses[s.canonicalPort(port)]
}

// Terminal looks a terminal up by port name, case-insensitively
func (s *System) Terminal(port string) (*storage.Terminal, bool) {
	return s.route.Terminal(s.canonicalPort(port))
}

// Worker returns the haulage worker of a port
func (s *System) Worker(port string) (*haulage.Worker, bool) {
	name := s.canonicalPort(port)
	for _, w := range s.workers {
		if w.Port() == name {
			return w, true
		}
	}
	return nil, false
}

// MetricsReading samples the state exported as gauges
func (s *System) MetricsReading() metrics.PortReading {
	reading := metrics.PortReading{
		ShipState:    string(s.ship.State()),
		ShipOnboard:  s.ship.OnboardCount(),
		RegistrySize: s.registry.Len(),
	}
	for _, state := range navigation.ShipStates() {
		reading.ShipStates = append(reading.ShipStates, string(state))
	}
	for _, t := range s.terminals {
		reading.Terminals = append(reading.Terminals, metrics.TerminalReading{
			Port:            t.Port(),
			ImportOccupancy: t.Imports().Len(),
			ExportOccupancy: t.Exports().Len(),
		})
	}
	return reading
}

// CheckConsistency verifies that every registered container is held by exactly
// one store or the ship, and that every held container is registered. Intended
// for quiescent moments: a haulage cycle in flight has containers inside a
// warehouse, which are reported as unheld.
func (s *System) CheckConsistency() error {
	holders := make(map[*container.Container]int)
	for _, t := range s.terminals {
		for _, c := range t.Imports().Snapshot() {
			holders[c]++
		}
		for _, c := range t.Exports().Snapshot() {
			holders[c]++
		}
	}
	for _, c := range s.ship.Onboard() {
		holders[c]++
	}

	var problems []string
	registered := make(map[*container.Container]bool)
	for c := range s.registry.All() {
		registered[c] = true
		if n := holders[c]; n != 1 {
			problems = append(problems, fmt.Sprintf("%s held in %d places", c.Code(), n))
		}
	}
	for c := range holders {
		if !registered[c] {
			problems = append(problems, fmt.Sprintf("%s is held but not registered", c.Code()))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("inconsistent container ownership: %s", strings.Join(problems, "; "))
	}
	return nil
}

// flushingRepository makes movement reads see everything tracked before them
type flushingRepository struct {
	container.MovementRepository
	journal *Journal
}

func (r *flushingRepository) Latest(ctx context.Context, limit int) ([]container.Movement, error) {
	r.journal.Flush()
	return r.MovementRepository.Latest(ctx, limit)
}

func (r *flushingRepository) ByCode(ctx context.Context, code string, limit int) ([]container.Movement, error) {
	r.journal.Flush()
	return r.MovementRepository.ByCode(ctx, code, limit)
}

type namer interface {
	Named(component string) common.ContainerLogger
}

func namedLogger(ctx context.Context, component string) common.ContainerLogger {
	logger := common.LoggerFromContext(ctx)
	if n, ok := logger.(namer); ok {
		return n.Named(component)
	}
	return logger
}
