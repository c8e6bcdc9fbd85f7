package storage

import (
	"fmt"
	"sync"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

// ShipLoader is the ship-side pickup used when draining an export store
type ShipLoader interface {
	PickFromTerminal(c *container.Container) bool
}

// ExportStore holds containers waiting to be shipped and the empties that
// haulage refills.
//
// Thread-Safety:
// All operations run under the store mutex. Admit registers the container in
// the global registry while holding the store lock (store before registry is
// the only lock order in the system).
//
// Invariants:
// - Voluntary removal and ship pickup never take the size below the floor
// - Operator admission never takes the size above the admission ceiling
// - Processors may return borrowed containers regardless of size
type ExportStore struct {
	mu sync.RWMutex

	port       string
	floor      int
	ceiling    int
	containers []*container.Container

	registry *container.Registry
	opts     storeOptions
}

func NewExportStore(port string, floor, ceiling int, registry *container.Registry, opts ...Option) (*ExportStore, error) {
	if port == "" {
		return nil, fmt.Errorf("port name cannot be empty")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if floor < 0 {
		return nil, &ErrInvalidLimits{Field: "export_floor", Value: floor}
	}
	if ceiling < 1 || ceiling < floor {
		return nil, &ErrInvalidLimits{Field: "export_ceiling", Value: ceiling}
	}
	return &ExportStore{
		port:     port,
		floor:    floor,
		ceiling:  ceiling,
		registry: registry,
		opts:     buildOptions(opts),
	}, nil
}

// Getters

func (s *ExportStore) Port() string { return s.port }
func (s *ExportStore) Floor() int   { return s.floor }
func (s *ExportStore) Ceiling() int { return s.ceiling }

func (s *ExportStore) Name() string {
	return s.port + " export terminal"
}

// Len returns the current occupancy.
// Thread-safe.
func (s *ExportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.containers)
}

// Snapshot returns a copy of the held containers in arrival order.
// Thread-safe.
func (s *ExportStore) Snapshot() []*container.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*container.Container, len(s.containers))
	copy(out, s.containers)
	return out
}

// Holds reports whether the container is currently in this store.
// Thread-safe.
func (s *ExportStore) Holds(c *container.Container) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.containers, c) >= 0
}

// TryAdmit brings a newly created container into the store and registers it.
// Fails with a ConsistencyError if the code already exists anywhere in the
// system, or a CapacityError if the store is at its admission ceiling.
// Nothing is mutated on failure.
// Thread-safe.
func (s *ExportStore) TryAdmit(c *container.Container) error {
	if c == nil {
		return shared.NewValidationError("container", "container is required")
	}

	s.mu.Lock()
	if s.registry.Contains(c.Code()) {
		s.mu.Unlock()
		return shared.NewDuplicateEntityError(c.Code())
	}
	if len(s.containers) >= s.ceiling {
		size := len(s.containers)
		s.mu.Unlock()
		return shared.NewCapacityError(s.Name(), size, s.ceiling)
	}
	previous := c.Location()
	c.SetLocation(s.Name())
	if err := s.registry.Add(c); err != nil {
		c.SetLocation(previous)
		s.mu.Unlock()
		return err
	}
	s.containers = append(s.containers, c)
	s.mu.Unlock()

	s.track(c, container.MovementAdmitted, "", s.Name())
	return nil
}

// Admit is TryAdmit reduced to a success flag.
func (s *ExportStore) Admit(c *container.Container) bool {
	return s.TryAdmit(c) == nil
}

// RemoveIfAboveFloor takes the container out of the store unless that would
// leave the store at or below its floor. Returns false if refused or if the
// container is not held here.
// Thread-safe.
func (s *ExportStore) RemoveIfAboveFloor(c *container.Container) bool {
	s.mu.Lock()
	if len(s.containers) <= s.floor {
		s.mu.Unlock()
		return false
	}
	i := indexOf(s.containers, c)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.containers = removeAt(s.containers, i)
	s.mu.Unlock()

	s.track(c, container.MovementRemovedAtFloor, s.Name(), "")
	return true
}

// WithdrawEmpty removes and returns the first empty container so a processor
// can refill it. Returns false when there is none.
// Thread-safe.
func (s *ExportStore) WithdrawEmpty() (*container.Container, bool) {
	s.mu.Lock()
	var found *container.Container
	for i, c := range s.containers {
		if c.State() == container.StateEmpty {
			found = c
			s.containers = removeAt(s.containers, i)
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return nil, false
	}
	s.track(found, container.MovementExportToHaul, s.Name(), "warehouse")
	return found, true
}

// DepositProcessed takes back a container a processor has finished with.
// There is no capacity check: processors only return what they borrowed.
// Thread-safe.
func (s *ExportStore) DepositProcessed(c *container.Container) {
	if c == nil {
		return
	}
	from := c.Location()

	s.mu.Lock()
	c.SetLocation(s.Name())
	s.containers = append(s.containers, c)
	s.mu.Unlock()

	s.track(c, container.MovementHaulToExport, from, s.Name())
}

// TransferToShip offers containers to the ship in store order while the
// store stays above its floor, stopping at the first rejection. Accepted
// containers leave the store even if a later pickup faults; there is no
// rollback. Returns the number of containers moved.
// Thread-safe.
func (s *ExportStore) TransferToShip(ship ShipLoader) (n int) {
	if ship == nil {
		return 0
	}

	var moved []*container.Container
	defer func() {
		for _, c := range moved {
			s.track(c, container.MovementExportToShip, s.Name(), c.Location())
		}
		n = len(moved)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		for _, c := range moved {
			if i := indexOf(s.containers, c); i >= 0 {
				s.containers = removeAt(s.containers, i)
			}
		}
	}()

	candidates := make([]*container.Container, len(s.containers))
	copy(candidates, s.containers)
	for _, c := range candidates {
		if len(candidates)-len(moved) <= s.floor {
			break
		}
		if !ship.PickFromTerminal(c) {
			break
		}
		moved = append(moved, c)
	}
	return len(moved)
}

func (s *ExportStore) Describe() string {
	return fmt.Sprintf("%s: %d containers (floor %d, admission ceiling %d)", s.Name(), s.Len(), s.floor, s.ceiling)
}

func (s *ExportStore) track(c *container.Container, kind container.MovementKind, from, to string) {
	s.opts.tracker.Track(container.Movement{
		ContainerCode: c.Code(),
		Kind:          kind,
		From:          from,
		To:            to,
		At:            s.opts.clock.Now(),
	})
}
