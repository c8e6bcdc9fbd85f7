package port

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/pkg/utils"
)

const defaultJournalBuffer = 1024

type journalEntry struct {
	movement container.Movement
	flushed  chan struct{}
}

// Journal is the container.Tracker handed to the registry and the stores. It
// queues movements and writes them to the repository on its own goroutine, so
// a slow or failing repository never holds a store lock. When the queue is
// full the movement is dropped and counted.
type Journal struct {
	repo    container.MovementRepository
	entries chan journalEntry

	mu      sync.RWMutex
	started bool
	closed  bool
	done    chan struct{}

	dropped  atomic.Int64
	failures atomic.Int64
}

// NewJournal creates a journal writing to repo. A nil repo makes every
// movement a no-op.
func NewJournal(repo container.MovementRepository, buffer int) *Journal {
	if buffer <= 0 {
		buffer = defaultJournalBuffer
	}
	return &Journal{
		repo:    repo,
		entries: make(chan journalEntry, buffer),
		done:    make(chan struct{}),
	}
}

// Track implements container.Tracker. It never blocks.
func (j *Journal) Track(m container.Movement) {
	if j.repo == nil {
		return
	}
	if m.ID == "" {
		m.ID = utils.GenerateID("mv", m.ContainerCode)
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}
	select {
	case j.entries <- journalEntry{movement: m}:
	default:
		j.dropped.Add(1)
	}
}

// Start runs the writer until Stop. Write failures are logged through the
// logger in ctx and counted.
func (j *Journal) Start(ctx context.Context) {
	j.mu.Lock()
	if j.started || j.closed {
		j.mu.Unlock()
		return
	}
	j.started = true
	j.mu.Unlock()

	writeCtx := context.WithoutCancel(ctx)
	logger := common.LoggerFromContext(ctx)

	go func() {
		defer close(j.done)
		for entry := range j.entries {
			if entry.flushed != nil {
				close(entry.flushed)
				continue
			}
			if j.repo == nil {
				continue
			}
			if err := j.repo.Record(writeCtx, entry.movement); err != nil {
				j.failures.Add(1)
				logger.Log(common.LevelWarning, fmt.Sprintf("failed to record movement: %v", err), map[string]interface{}{
					"action": "movement_record_failed",
					"code":   entry.movement.ContainerCode,
				})
			}
		}
	}()
}

// Flush waits until every movement queued before the call has been written.
// Returns immediately if the writer is not running.
func (j *Journal) Flush() {
	j.mu.RLock()
	if !j.started || j.closed {
		j.mu.RUnlock()
		return
	}
	marker := journalEntry{flushed: make(chan struct{})}
	j.entries <- marker
	j.mu.RUnlock()

	<-marker.flushed
}

// Stop drains the queue and stops the writer
func (j *Journal) Stop() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	started := j.started
	close(j.entries)
	j.mu.Unlock()

	if started {
		<-j.done
	}
}

// Dropped returns how many movements were discarded on a full queue
func (j *Journal) Dropped() int64 { return j.dropped.Load() }

// Failures returns how many movements the repository refused
func (j *Journal) Failures() int64 { return j.failures.Load() }
