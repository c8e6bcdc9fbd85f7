package shared

import (
	"fmt"
	"sync"
	"time"
)

// LifecycleStatus is the run state of a background component
type LifecycleStatus string

const (
	LifecycleStatusPending  LifecycleStatus = "PENDING"
	LifecycleStatusRunning  LifecycleStatus = "RUNNING"
	LifecycleStatusStopping LifecycleStatus = "STOPPING"
	LifecycleStatusStopped  LifecycleStatus = "STOPPED"
)

// Lifecycle tracks PENDING -> RUNNING -> STOPPING -> STOPPED for components
// that run their own loop, such as haulage workers.
//
// Invariants:
// - Start only succeeds once
// - Stop is idempotent
// - Timestamps come from the injected clock
//
// Thread-safe.
type Lifecycle struct {
	mu sync.RWMutex

	status    LifecycleStatus
	startedAt *time.Time
	stoppedAt *time.Time
	clock     Clock
}

func NewLifecycle(clock Clock) *Lifecycle {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Lifecycle{status: LifecycleStatusPending, clock: clock}
}

func (l *Lifecycle) Status() LifecycleStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Start transitions from PENDING to RUNNING
func (l *Lifecycle) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status != LifecycleStatusPending {
		return fmt.Errorf("cannot start from %s state", l.status)
	}
	now := l.clock.Now()
	l.status = LifecycleStatusRunning
	l.startedAt = &now
	return nil
}

// RequestStop moves a running component to STOPPING. Returns false if it was
// not running.
func (l *Lifecycle) RequestStop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status != LifecycleStatusRunning {
		return false
	}
	l.status = LifecycleStatusStopping
	return true
}

// MarkStopped records that the loop has exited
func (l *Lifecycle) MarkStopped() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status == LifecycleStatusStopped {
		return
	}
	now := l.clock.Now()
	l.status = LifecycleStatusStopped
	l.stoppedAt = &now
}

func (l *Lifecycle) IsRunning() bool {
	return l.Status() == LifecycleStatusRunning
}

// RuntimeDuration is how long the component has been (or was) running
func (l *Lifecycle) RuntimeDuration() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.startedAt == nil {
		return 0
	}
	end := l.clock.Now()
	if l.stoppedAt != nil {
		end = *l.stoppedAt
	}
	return end.Sub(*l.startedAt)
}
