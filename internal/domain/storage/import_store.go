package storage

import (
	"fmt"
	"sync"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
)

// ImportStore buffers containers unloaded from the ship until haulage drains them.
//
// Thread-Safety:
// Every operation runs under the store mutex, so the ship (foreground) and the
// haulage worker (background) never interleave a size check with a mutation.
//
// Invariants:
// - Size never exceeds the ceiling
// - Containers in the store are registered; the store never touches the registry
type ImportStore struct {
	mu sync.RWMutex

	port       string
	ceiling    int
	containers []*container.Container

	opts storeOptions
}

func NewImportStore(port string, ceiling int, opts ...Option) (*ImportStore, error) {
	if port == "" {
		return nil, fmt.Errorf("port name cannot be empty")
	}
	if ceiling < 1 {
		return nil, &ErrInvalidLimits{Field: "import_ceiling", Value: ceiling}
	}
	return &ImportStore{
		port:    port,
		ceiling: ceiling,
		opts:    buildOptions(opts),
	}, nil
}

// Getters

func (s *ImportStore) Port() string { return s.port }
func (s *ImportStore) Ceiling() int { return s.ceiling }

// Name is the location tag given to containers held here
func (s *ImportStore) Name() string {
	return s.port + " import terminal"
}

// Len returns the current occupancy.
// Thread-safe.
func (s *ImportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.containers)
}

// Snapshot returns a copy of the held containers in arrival order.
// Thread-safe.
func (s *ImportStore) Snapshot() []*container.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*container.Container, len(s.containers))
	copy(out, s.containers)
	return out
}

// ReceiveFromShip accepts a container offloaded from the ship. Returns false,
// leaving the container untouched, when the store is at its ceiling.
// Thread-safe.
func (s *ImportStore) ReceiveFromShip(c *container.Container) bool {
	if c == nil {
		return false
	}

	s.mu.Lock()
	if len(s.containers) >= s.ceiling {
		s.mu.Unlock()
		return false
	}
	from := c.Location()
	c.SetState(container.StateFullImport)
	c.SetLocation(s.Name())
	s.containers = append(s.containers, c)
	s.mu.Unlock()

	s.opts.tracker.Track(container.Movement{
		ContainerCode: c.Code(),
		Kind:          container.MovementShipToImport,
		From:          from,
		To:            s.Name(),
		At:            s.opts.clock.Now(),
	})
	return true
}

// WithdrawByCategory removes and returns the first full import container
// carrying the given goods. Returns false when none matches.
// Thread-safe.
func (s *ImportStore) WithdrawByCategory(goods container.GoodsCategory) (*container.Container, bool) {
	s.mu.Lock()
	var found *container.Container
	for i, c := range s.containers {
		if c.State() == container.StateFullImport && c.Goods() == goods {
			found = c
			s.containers = removeAt(s.containers, i)
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return nil, false
	}
	s.opts.tracker.Track(container.Movement{
		ContainerCode: found.Code(),
		Kind:          container.MovementImportToHaul,
		From:          s.Name(),
		To:            string(goods) + " warehouse",
		At:            s.opts.clock.Now(),
	})
	return found, true
}

// Holds reports whether the container is currently in this store.
// Thread-safe.
func (s *ImportStore) Holds(c *container.Container) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.containers, c) >= 0
}

func (s *ImportStore) Describe() string {
	return fmt.Sprintf("%s: %d/%d containers", s.Name(), s.Len(), s.ceiling)
}
