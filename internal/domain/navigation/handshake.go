package navigation

import (
	"time"
)

// RequestKind distinguishes the two handshakes a ship makes with a port
type RequestKind string

const (
	RequestDocking   RequestKind = "DOCKING"
	RequestUndocking RequestKind = "UNDOCKING"
)

// Decision is the port's answer to a request
type Decision string

const (
	DecisionPending Decision = "PENDING"
	DecisionGranted Decision = "GRANTED"
	DecisionDenied  Decision = "DENIED"
)

// Request is one dock or undock handshake. It is answered exactly once: the
// ship drops it as soon as a decision is applied, and a later confirmation
// finds nothing to answer.
type Request struct {
	ID        string
	Requester string
	Target    string
	Kind      RequestKind
	Decision  Decision
	CreatedAt time.Time
	DecidedAt time.Time
}

func (r *Request) decide(granted bool, at time.Time) {
	if granted {
		r.Decision = DecisionGranted
	} else {
		r.Decision = DecisionDenied
	}
	r.DecidedAt = at
}

// Granted reports whether the request was answered positively
func (r *Request) Granted() bool {
	return r.Decision == DecisionGranted
}
