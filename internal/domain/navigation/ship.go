package navigation

import (
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
	"github.com/andrescamacho/portlogistics-go/pkg/utils"
)

// ShipState is the docking state of the cargo ship
type ShipState string

const (
	StateInTransit       ShipState = "IN_TRANSIT"
	StateWaiting         ShipState = "WAITING"
	StateDockedForImport ShipState = "DOCKED_FOR_IMPORT"
	StateDockedForExport ShipState = "DOCKED_FOR_EXPORT"
)

// ShipStates lists every state in voyage order
func ShipStates() []ShipState {
	return []ShipState{StateInTransit, StateWaiting, StateDockedForImport, StateDockedForExport}
}

const (
	DefaultShipName     = "HELEN III"
	DefaultShipCapacity = 10
)

// CargoShip sails between the two ports of its route, unloading imports and
// picking up exports at each.
//
// Invariants:
// - Onboard count never exceeds capacity
// - Import and export operations only run while docked, and never once the
//   operations-concluded latch is set
// - A handshake request is answered at most once
//
// State machine:
// - IN_TRANSIT/WAITING -> RequestDocking() -> WAITING
// - WAITING -> ConfirmDocking(true) -> DOCKED_FOR_IMPORT
// - WAITING -> ConfirmDocking(false) -> WAITING
// - DOCKED_FOR_IMPORT -> Unload() -> DOCKED_FOR_EXPORT once the hold is empty
// - DOCKED_FOR_EXPORT/WAITING -> RequestUndocking() -> unchanged, latch set
// - any -> ConfirmUndocking(true) -> IN_TRANSIT, route advanced
// - any -> ConfirmUndocking(false) -> WAITING
//
// Thread-Safety:
// Attribute reads and PickFromTerminal take the ship mutex. Unload and Export
// are serialised by a separate operation mutex and never hold the ship mutex
// while calling into a store, because a store calls back into PickFromTerminal.
type CargoShip struct {
	mu   sync.RWMutex
	opMu sync.Mutex

	name     string
	capacity int
	state    ShipState
	route    *Route
	berthed  bool
	onboard  []*container.Container
	pending  *Request
	// operationsConcluded is set once the ship has loaded exports or asked to
	// leave; no further operations are allowed until it sails.
	operationsConcluded bool

	clock shared.Clock
}

// ShipOption configures a CargoShip
type ShipOption func(*CargoShip)

func WithShipClock(c shared.Clock) ShipOption {
	return func(s *CargoShip) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewCargoShip creates a ship in transit towards the route's destination.
func NewCargoShip(name string, capacity int, route *Route, opts ...ShipOption) (*CargoShip, error) {
	if name == "" {
		return nil, shared.NewValidationError("name", "ship name cannot be empty")
	}
	if capacity < 1 {
		return nil, shared.NewValidationError("capacity", fmt.Sprintf("ship capacity must be positive, got %d", capacity))
	}
	if route == nil {
		return nil, shared.NewValidationError("route", "ship route is required")
	}

	s := &CargoShip{
		name:     name,
		capacity: capacity,
		state:    StateInTransit,
		route:    route,
		clock:    shared.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Getters

func (s *CargoShip) Name() string     { return s.name }
func (s *CargoShip) Capacity() int    { return s.capacity }
func (s *CargoShip) Location() string { return s.name + " cargo ship" }

func (s *CargoShip) State() ShipState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Destination is the port the ship is heading to or docked at
func (s *CargoShip) Destination() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.route.Destination().Port()
}

func (s *CargoShip) OnboardCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.onboard)
}

// Onboard returns a copy of the containers aboard in loading order
func (s *CargoShip) Onboard() []*container.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*container.Container, len(s.onboard))
	copy(out, s.onboard)
	return out
}

// Holds reports whether the container is aboard
func (s *CargoShip) Holds(c *container.Container) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, member := range s.onboard {
		if member == c {
			return true
		}
	}
	return false
}

// RequestTarget is the port a pending handshake is addressed to, or "" when
// nothing is pending.
func (s *CargoShip) RequestTarget() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pending == nil {
		return ""
	}
	return s.pending.Target
}

// PendingRequest returns a copy of the unanswered handshake, if any
func (s *CargoShip) PendingRequest() (Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pending == nil {
		return Request{}, false
	}
	return *s.pending, true
}

func (s *CargoShip) OperationsConcluded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operationsConcluded
}

// OperationsAllowed is true only while docked for import or export
func (s *CargoShip) OperationsAllowed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operationsAllowedUnsafe()
}

func (s *CargoShip) operationsAllowedUnsafe() bool {
	return s.state == StateDockedForImport || s.state == StateDockedForExport
}

// CurrentImportStore is the import store the ship is bound to while berthed
func (s *CargoShip) CurrentImportStore() (*storage.ImportStore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.berthed {
		return nil, false
	}
	return s.route.Destination().Imports(), true
}

// CurrentExportStore is the export store of the port the ship is heading to
// or docked at
func (s *CargoShip) CurrentExportStore() *storage.ExportStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.route.Destination().Exports()
}

// Handshake

// RequestDocking asks the destination port for a berth. Allowed while in
// transit, or while waiting outside the port.
func (s *CargoShip) RequestDocking() (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInTransit && !(s.state == StateWaiting && !s.berthed) {
		return Request{}, shared.NewPreconditionError("request docking", string(s.state), "ship is not approaching a port")
	}

	s.pending = s.newRequestUnsafe(RequestDocking)
	s.state = StateWaiting
	return *s.pending, nil
}

// ConfirmDocking applies the port's answer to the pending docking request.
// Without a pending docking request nothing changes.
func (s *CargoShip) ConfirmDocking(granted bool) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.takePendingUnsafe(RequestDocking, "confirm docking")
	if err != nil {
		return Request{}, err
	}
	req.decide(granted, s.clock.Now())

	if granted {
		s.state = StateDockedForImport
		s.berthed = true
	} else {
		s.state = StateWaiting
	}
	return *req, nil
}

// RequestUndocking asks the current port for leave to sail. Concludes the
// operations at this port whatever the answer.
func (s *CargoShip) RequestUndocking() (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDockedForExport && !(s.state == StateWaiting && s.berthed) {
		return Request{}, shared.NewPreconditionError("request undocking", string(s.state), "ship is not berthed for export")
	}

	s.pending = s.newRequestUnsafe(RequestUndocking)
	s.operationsConcluded = true
	return *s.pending, nil
}

// ConfirmUndocking applies the port's answer to the pending undocking
// request. A grant sends the ship to the other port.
func (s *CargoShip) ConfirmUndocking(granted bool) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.takePendingUnsafe(RequestUndocking, "confirm undocking")
	if err != nil {
		return Request{}, err
	}
	req.decide(granted, s.clock.Now())

	if granted {
		s.state = StateInTransit
		s.berthed = false
		s.operationsConcluded = false
		s.route.advance()
	} else {
		s.state = StateWaiting
	}
	return *req, nil
}

func (s *CargoShip) newRequestUnsafe(kind RequestKind) *Request {
	prefix := "dock"
	if kind == RequestUndocking {
		prefix = "undock"
	}
	return &Request{
		ID:        utils.GenerateID(prefix, s.name),
		Requester: s.name,
		Target:    s.route.Destination().Port(),
		Kind:      kind,
		Decision:  DecisionPending,
		CreatedAt: s.clock.Now(),
	}
}

func (s *CargoShip) takePendingUnsafe(kind RequestKind, operation string) (*Request, error) {
	if s.pending == nil || s.pending.Kind != kind {
		return nil, shared.NewPreconditionError(operation, string(s.state), fmt.Sprintf("no pending %s request", kind))
	}
	req := s.pending
	s.pending = nil
	return req, nil
}

// Operations

// UnloadResult reports one unload pass
type UnloadResult struct {
	Unloaded  int
	Remaining int
	State     ShipState
}

// Unload offers every onboard container to the bound import store. Containers
// the store refuses stay aboard and the ship stays docked for import; once the
// hold is empty the ship moves to export. An empty hold goes straight to export.
func (s *CargoShip) Unload() (UnloadResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if err := s.ensureOperationUnsafe("unload", StateDockedForImport); err != nil {
		s.mu.Unlock()
		return UnloadResult{}, err
	}
	store := s.route.Destination().Imports()
	pending := make([]*container.Container, len(s.onboard))
	copy(pending, s.onboard)
	s.mu.Unlock()

	var unloaded []*container.Container
	for _, c := range pending {
		if store.ReceiveFromShip(c) {
			unloaded = append(unloaded, c)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range unloaded {
		s.removeUnsafe(c)
	}
	if len(s.onboard) == 0 {
		s.state = StateDockedForExport
	}
	return UnloadResult{Unloaded: len(unloaded), Remaining: len(s.onboard), State: s.state}, nil
}

// Export loads containers from the bound export store until the ship is full
// or the store reaches its floor. Returns how many containers came aboard.
func (s *CargoShip) Export() (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	err := s.ensureOperationUnsafe("export", StateDockedForExport)
	store := s.route.Destination().Exports()
	s.mu.RUnlock()
	if err != nil {
		return 0, err
	}

	return store.TransferToShip(s), nil
}

// PickFromTerminal takes one container aboard. Returns false, leaving the
// container where it is, when the ship is full.
func (s *CargoShip) PickFromTerminal(c *container.Container) bool {
	if c == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.onboard) >= s.capacity {
		return false
	}
	c.SetLocation(s.Location())
	s.onboard = append(s.onboard, c)
	s.operationsConcluded = true
	return true
}

// ResetOperationStatus clears the operations-concluded latch. Used after the
// initial load, which goes through PickFromTerminal.
func (s *CargoShip) ResetOperationStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operationsConcluded = false
}

// EnsureOperationsAllowed reports why captain operations are refused, if they are
func (s *CargoShip) EnsureOperationsAllowed() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.operationsConcluded {
		return shared.NewPreconditionError("operate", string(s.state), "operations at this port are concluded, the ship must undock")
	}
	if !s.operationsAllowedUnsafe() {
		return shared.NewPreconditionError("operate", string(s.state), "ship is not docked")
	}
	return nil
}

func (s *CargoShip) ensureOperationUnsafe(operation string, required ShipState) error {
	if s.operationsConcluded {
		return shared.NewPreconditionError(operation, string(s.state), "operations at this port are concluded, the ship must undock")
	}
	if s.state != required {
		return shared.NewPreconditionError(operation, string(s.state), fmt.Sprintf("ship must be %s", required))
	}
	return nil
}

func (s *CargoShip) removeUnsafe(c *container.Container) {
	for i, member := range s.onboard {
		if member == c {
			s.onboard = append(s.onboard[:i], s.onboard[i+1:]...)
			return
		}
	}
}

// Status is a point-in-time view of the ship
type Status struct {
	Name                string
	State               ShipState
	Destination         string
	Berthed             bool
	Capacity            int
	Onboard             []container.Snapshot
	PendingRequest      *Request
	OperationsConcluded bool
	At                  time.Time
}

// Status takes a consistent snapshot of the ship.
// Thread-safe.
func (s *CargoShip) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Name:                s.name,
		State:               s.state,
		Destination:         s.route.Destination().Port(),
		Berthed:             s.berthed,
		Capacity:            s.capacity,
		OperationsConcluded: s.operationsConcluded,
		At:                  s.clock.Now(),
	}
	for _, c := range s.onboard {
		st.Onboard = append(st.Onboard, c.Snapshot())
	}
	if s.pending != nil {
		req := *s.pending
		st.PendingRequest = &req
	}
	return st
}
