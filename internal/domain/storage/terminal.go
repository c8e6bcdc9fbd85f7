package storage

import (
	"fmt"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
)

// Terminal groups the import and export stores of one port
type Terminal struct {
	port    string
	imports *ImportStore
	exports *ExportStore
}

func NewTerminal(port string, limits Limits, registry *container.Registry, opts ...Option) (*Terminal, error) {
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("terminal %s: %w", port, err)
	}
	imports, err := NewImportStore(port, limits.ImportCeiling, opts...)
	if err != nil {
		return nil, err
	}
	exports, err := NewExportStore(port, limits.ExportFloor, limits.ExportCeiling, registry, opts...)
	if err != nil {
		return nil, err
	}
	return &Terminal{port: port, imports: imports, exports: exports}, nil
}

func (t *Terminal) Port() string          { return t.port }
func (t *Terminal) Imports() *ImportStore { return t.imports }
func (t *Terminal) Exports() *ExportStore { return t.exports }

// Describe lists the terminal and its two stores
func (t *Terminal) Describe() []string {
	return []string{
		fmt.Sprintf("%s terminal", t.port),
		"  " + t.imports.Describe(),
		"  " + t.exports.Describe(),
	}
}

// Occupancy is a point-in-time view of a port's stores
type Occupancy struct {
	Port          string
	ImportSize    int
	ImportCeiling int
	ExportSize    int
	ExportFloor   int
	ExportCeiling int
	Imports       []container.Snapshot
	Exports       []container.Snapshot
}

// Occupancy takes a snapshot of both stores. Each store is read under its own
// lock; the two reads are not a single atomic view.
func (t *Terminal) Occupancy() Occupancy {
	imports := t.imports.Snapshot()
	exports := t.exports.Snapshot()
	o := Occupancy{
		Port:          t.port,
		ImportSize:    len(imports),
		ImportCeiling: t.imports.Ceiling(),
		ExportSize:    len(exports),
		ExportFloor:   t.exports.Floor(),
		ExportCeiling: t.exports.Ceiling(),
	}
	for _, c := range imports {
		o.Imports = append(o.Imports, c.Snapshot())
	}
	for _, c := range exports {
		o.Exports = append(o.Exports, c.Snapshot())
	}
	return o
}
