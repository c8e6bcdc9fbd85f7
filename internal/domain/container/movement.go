package container

import (
	"context"
	"time"
)

// MovementKind classifies a change of ownership
type MovementKind string

const (
	MovementRegistered     MovementKind = "REGISTERED"
	MovementDeregistered   MovementKind = "DEREGISTERED"
	MovementShipToImport   MovementKind = "SHIP_TO_IMPORT"
	MovementExportToShip   MovementKind = "EXPORT_TO_SHIP"
	MovementImportToHaul   MovementKind = "IMPORT_TO_PROCESSOR"
	MovementHaulToExport   MovementKind = "PROCESSOR_TO_EXPORT"
	MovementExportToHaul   MovementKind = "EXPORT_TO_PROCESSOR"
	MovementAdmitted       MovementKind = "ADMITTED"
	MovementRemovedAtFloor MovementKind = "REMOVED_FROM_EXPORT"
)

// Movement records one container changing hands
type Movement struct {
	ID            string
	ContainerCode string
	Kind          MovementKind
	From          string
	To            string
	At            time.Time
}

// Tracker receives movements as they happen. Implementations must not block
// and must not call back into the store or ship that reported the movement.
type Tracker interface {
	Track(m Movement)
}

// TrackerFunc adapts a function to the Tracker interface
type TrackerFunc func(m Movement)

func (f TrackerFunc) Track(m Movement) { f(m) }

type nopTracker struct{}

func (nopTracker) Track(Movement) {}

// NopTracker discards every movement
func NopTracker() Tracker { return nopTracker{} }

// MovementRepository persists the movement log
type MovementRepository interface {
	Record(ctx context.Context, m Movement) error
	// Latest returns up to limit movements, newest first
	Latest(ctx context.Context, limit int) ([]Movement, error)
	// ByCode returns up to limit movements of one container, newest first
	ByCode(ctx context.Context, code string, limit int) ([]Movement, error)
}
