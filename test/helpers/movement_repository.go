package helpers

import (
	"context"
	"errors"
	"sync"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
)

// InMemoryMovementRepository keeps movements in a slice
type InMemoryMovementRepository struct {
	mu        sync.Mutex
	movements []container.Movement
	// FailRecord makes Record return an error
	FailRecord bool
}

func NewInMemoryMovementRepository() *InMemoryMovementRepository {
	return &InMemoryMovementRepository{}
}

func (r *InMemoryMovementRepository) Record(ctx context.Context, m container.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailRecord {
		return errors.New("movement store unavailable")
	}
	r.movements = append(r.movements, m)
	return nil
}

func (r *InMemoryMovementRepository) Latest(ctx context.Context, limit int) ([]container.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return newestFirst(r.movements, limit, func(container.Movement) bool { return true }), nil
}

func (r *InMemoryMovementRepository) ByCode(ctx context.Context, code string, limit int) ([]container.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return newestFirst(r.movements, limit, func(m container.Movement) bool { return m.ContainerCode == code }), nil
}

// All returns every movement in recording order
func (r *InMemoryMovementRepository) All() []container.Movement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]container.Movement, len(r.movements))
	copy(out, r.movements)
	return out
}

func newestFirst(all []container.Movement, limit int, keep func(container.Movement) bool) []container.Movement {
	var out []container.Movement
	for i := len(all) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if keep(all[i]) {
			out = append(out, all[i])
		}
	}
	return out
}
