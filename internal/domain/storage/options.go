package storage

import (
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

type storeOptions struct {
	tracker container.Tracker
	clock   shared.Clock
}

// Option configures a store
type Option func(*storeOptions)

func WithTracker(t container.Tracker) Option {
	return func(o *storeOptions) {
		if t != nil {
			o.tracker = t
		}
	}
}

func WithClock(c shared.Clock) Option {
	return func(o *storeOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{
		tracker: container.NopTracker(),
		clock:   shared.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func removeAt(list []*container.Container, i int) []*container.Container {
	return append(list[:i], list[i+1:]...)
}

func indexOf(list []*container.Container, c *container.Container) int {
	for i, member := range list {
		if member == c {
			return i
		}
	}
	return -1
}
