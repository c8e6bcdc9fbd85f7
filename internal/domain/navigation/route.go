package navigation

import (
	"fmt"
	"sync"

	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

// Route is the two-port line the ship sails. The destination flips each time
// the ship leaves port, so two departures bring it back where it started.
// Safe to read while the ship departs.
type Route struct {
	ports [2]*storage.Terminal

	mu          sync.RWMutex
	destination int
}

// NewRoute builds a route between two distinct terminals with the named port
// as first destination.
func NewRoute(first, second *storage.Terminal, initialDestination string) (*Route, error) {
	if first == nil || second == nil {
		return nil, fmt.Errorf("route requires two terminals")
	}
	if first.Port() == second.Port() {
		return nil, fmt.Errorf("route requires two distinct ports, got %s twice", first.Port())
	}

	r := &Route{ports: [2]*storage.Terminal{first, second}}
	switch initialDestination {
	case "", first.Port():
		r.destination = 0
	case second.Port():
		r.destination = 1
	default:
		return nil, fmt.Errorf("initial destination %s is not on the route", initialDestination)
	}
	return r, nil
}

func (r *Route) Destination() *storage.Terminal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ports[r.destination]
}

// Other returns the port the ship is not heading to
func (r *Route) Other() *storage.Terminal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ports[1-r.destination]
}

func (r *Route) Terminal(port string) (*storage.Terminal, bool) {
	for _, t := range r.ports {
		if t.Port() == port {
			return t, true
		}
	}
	return nil, false
}

func (r *Route) Terminals() []*storage.Terminal {
	return []*storage.Terminal{r.ports[0], r.ports[1]}
}

func (r *Route) advance() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destination = 1 - r.destination
}
