package common

import (
	"github.com/andrescamacho/portlogistics-go/internal/application/mediator"
)

// Mediator types, re-exported so handlers only import common
type (
	Request        = mediator.Request
	Response       = mediator.Response
	RequestHandler = mediator.RequestHandler
	HandlerFunc    = mediator.HandlerFunc
	Middleware     = mediator.Middleware
	Mediator       = mediator.Mediator
)

// NewMediator creates a new mediator instance
func NewMediator() Mediator {
	return mediator.NewMediator()
}

// RegisterHandler registers a handler with the request type inferred from T
func RegisterHandler[T Request](m Mediator, handler RequestHandler) error {
	return mediator.RegisterHandler[T](m, handler)
}
