package container

import (
	"iter"
	"sync"

	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

// Registry is the set of every container that currently exists in the system.
//
// Thread-Safety:
// Add and Remove are serialised by a mutex so duplicate detection and insertion
// never race. Readers receive copies taken under the same lock.
//
// Invariants:
// - A code appears at most once (compared in canonical form)
// - Membership mirrors existence: a container is listed from creation until
//   validated global deletion
type Registry struct {
	mu sync.RWMutex

	byCode  map[string]*Container
	ordered []*Container

	tracker Tracker
	clock   shared.Clock
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

func WithRegistryTracker(t Tracker) RegistryOption {
	return func(r *Registry) {
		if t != nil {
			r.tracker = t
		}
	}
}

func WithRegistryClock(c shared.Clock) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byCode:  make(map[string]*Container),
		tracker: NopTracker(),
		clock:   shared.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a container. Returns a DuplicateEntity consistency error if
// a container with the same code is already registered.
func (r *Registry) Add(c *Container) error {
	if c == nil {
		return shared.NewValidationError("container", "container is required")
	}
	key := CanonicalCode(c.Code())

	r.mu.Lock()
	if _, exists := r.byCode[key]; exists {
		r.mu.Unlock()
		return shared.NewDuplicateEntityError(c.Code())
	}
	r.byCode[key] = c
	r.ordered = append(r.ordered, c)
	r.mu.Unlock()

	r.tracker.Track(Movement{ContainerCode: c.Code(), Kind: MovementRegistered, To: c.Location(), At: r.clock.Now()})
	return nil
}

// Remove deregisters the container if it is registered; otherwise it does nothing.
func (r *Registry) Remove(c *Container) {
	if c == nil {
		return
	}
	key := CanonicalCode(c.Code())

	r.mu.Lock()
	existing, ok := r.byCode[key]
	if !ok || existing != c {
		r.mu.Unlock()
		return
	}
	delete(r.byCode, key)
	for i, member := range r.ordered {
		if member == c {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.tracker.Track(Movement{ContainerCode: c.Code(), Kind: MovementDeregistered, From: c.Location(), At: r.clock.Now()})
}

// Contains reports whether a container with this code exists, case-insensitively.
func (r *Registry) Contains(code string) bool {
	_, ok := r.Find(code)
	return ok
}

// Find looks a container up by code. Input is canonicalised first.
func (r *Registry) Find(code string) (*Container, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byCode[CanonicalCode(code)]
	return c, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// Snapshot returns the members in registration order.
// The returned slice is a copy; mutating it does not affect the registry.
func (r *Registry) Snapshot() []*Container {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Container, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// All iterates over a snapshot of the members. Every new range over the
// sequence takes a fresh snapshot.
func (r *Registry) All() iter.Seq[*Container] {
	return func(yield func(*Container) bool) {
		for _, c := range r.Snapshot() {
			if !yield(c) {
				return
			}
		}
	}
}
