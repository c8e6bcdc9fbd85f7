package storage

// Limits are the capacity bounds of one port's terminal stores
type Limits struct {
	// ImportCeiling is the most containers the import store will hold.
	ImportCeiling int
	// ExportFloor is the fewest containers voluntary removal may leave behind.
	ExportFloor int
	// ExportCeiling caps operator admission into the export store.
	ExportCeiling int
}

// DefaultLimits returns the standard port bounds
func DefaultLimits() Limits {
	return Limits{
		ImportCeiling: 15,
		ExportFloor:   10,
		ExportCeiling: 10,
	}
}

// Validate rejects non-positive bounds and a ceiling below the floor
func (l Limits) Validate() error {
	if l.ImportCeiling < 1 {
		return &ErrInvalidLimits{Field: "import_ceiling", Value: l.ImportCeiling}
	}
	if l.ExportFloor < 0 {
		return &ErrInvalidLimits{Field: "export_floor", Value: l.ExportFloor}
	}
	if l.ExportCeiling < 1 || l.ExportCeiling < l.ExportFloor {
		return &ErrInvalidLimits{Field: "export_ceiling", Value: l.ExportCeiling}
	}
	return nil
}
