package storage_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

func newContainer(t *testing.T, i int, goods container.GoodsCategory, state container.State) *container.Container {
	t.Helper()
	c, err := container.NewContainer(fmt.Sprintf("TEST%08d", i), container.Box, goods, state)
	require.NoError(t, err)
	return c
}

// fillExport places n registered containers in the export store through the
// processor return path, which ignores the admission ceiling.
func fillExport(t *testing.T, store *storage.ExportStore, registry *container.Registry, n int, state container.State) []*container.Container {
	t.Helper()
	var out []*container.Container
	for i := 0; i < n; i++ {
		c := newContainer(t, 1000+registry.Len(), container.GoodsFood, state)
		require.NoError(t, registry.Add(c))
		store.DepositProcessed(c)
		out = append(out, c)
	}
	return out
}

// stubShip accepts up to capacity containers
type stubShip struct {
	capacity int
	onboard  []*container.Container
}

func (s *stubShip) PickFromTerminal(c *container.Container) bool {
	if len(s.onboard) >= s.capacity {
		return false
	}
	c.SetLocation("ship")
	s.onboard = append(s.onboard, c)
	return true
}

func TestImportStore_ReceiveFromShipRespectsCeiling(t *testing.T) {
	// Arrange
	store, err := storage.NewImportStore("Bari", 2)
	require.NoError(t, err)

	// Act
	first := store.ReceiveFromShip(newContainer(t, 1, container.GoodsFood, container.StateEmpty))
	second := store.ReceiveFromShip(newContainer(t, 2, container.GoodsFood, container.StateEmpty))
	third := store.ReceiveFromShip(newContainer(t, 3, container.GoodsFood, container.StateEmpty))

	// Assert
	assert.True(t, first)
	assert.True(t, second)
	assert.False(t, third)
	assert.Equal(t, 2, store.Len())
	for _, c := range store.Snapshot() {
		assert.Equal(t, container.StateFullImport, c.State())
		assert.Equal(t, "Bari import terminal", c.Location())
	}
}

func TestImportStore_WithdrawByCategoryTakesFirstMatch(t *testing.T) {
	store, err := storage.NewImportStore("Bari", 15)
	require.NoError(t, err)
	food1 := newContainer(t, 1, container.GoodsFood, container.StateEmpty)
	clothing := newContainer(t, 2, container.GoodsClothing, container.StateEmpty)
	food2 := newContainer(t, 3, container.GoodsFood, container.StateEmpty)
	for _, c := range []*container.Container{food1, clothing, food2} {
		require.True(t, store.ReceiveFromShip(c))
	}

	// Act
	got, ok := store.WithdrawByCategory(container.GoodsFood)

	// Assert
	require.True(t, ok)
	assert.Same(t, food1, got)
	assert.Equal(t, 2, store.Len())

	_, ok = store.WithdrawByCategory(container.GoodsFurniture)
	assert.False(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestExportStore_TryAdmitChecksGlobalRegistry(t *testing.T) {
	// Arrange: the code already exists in another store
	registry := container.NewRegistry()
	bari, err := storage.NewExportStore("Bari", 10, 10, registry)
	require.NoError(t, err)
	busan, err := storage.NewExportStore("Busan", 10, 10, registry)
	require.NoError(t, err)
	require.NoError(t, bari.TryAdmit(newContainer(t, 1, container.GoodsNone, container.StateEmpty)))

	// Act
	err = busan.TryAdmit(newContainer(t, 1, container.GoodsNone, container.StateEmpty))

	// Assert
	var consistencyErr *shared.ConsistencyError
	require.True(t, errors.As(err, &consistencyErr))
	assert.Equal(t, shared.DuplicateEntity, consistencyErr.Kind)
	assert.Equal(t, 0, busan.Len())
	assert.Equal(t, 1, registry.Len())
}

func TestExportStore_TryAdmitRespectsCeiling(t *testing.T) {
	registry := container.NewRegistry()
	store, err := storage.NewExportStore("Bari", 1, 2, registry)
	require.NoError(t, err)
	require.True(t, store.Admit(newContainer(t, 1, container.GoodsNone, container.StateEmpty)))
	require.True(t, store.Admit(newContainer(t, 2, container.GoodsNone, container.StateEmpty)))

	// Act
	rejected := newContainer(t, 3, container.GoodsNone, container.StateEmpty)
	err = store.TryAdmit(rejected)

	// Assert
	var capacityErr *shared.CapacityError
	require.True(t, errors.As(err, &capacityErr))
	assert.Equal(t, 2, store.Len())
	assert.False(t, registry.Contains(rejected.Code()))
	assert.Empty(t, rejected.Location())
}

func TestExportStore_AdmitRegistersAndTagsLocation(t *testing.T) {
	registry := container.NewRegistry()
	store, err := storage.NewExportStore("Busan", 10, 10, registry)
	require.NoError(t, err)
	c := newContainer(t, 1, container.GoodsNone, container.StateEmpty)

	require.True(t, store.Admit(c))

	assert.True(t, registry.Contains(c.Code()))
	assert.True(t, store.Holds(c))
	assert.Equal(t, "Busan export terminal", c.Location())
}

func TestExportStore_RemoveIfAboveFloor(t *testing.T) {
	registry := container.NewRegistry()
	store, err := storage.NewExportStore("Bari", 2, 10, registry)
	require.NoError(t, err)
	held := fillExport(t, store, registry, 3, container.StateEmpty)

	// Act
	first := store.RemoveIfAboveFloor(held[0])
	second := store.RemoveIfAboveFloor(held[1])

	// Assert
	assert.True(t, first)
	assert.False(t, second, "store is at its floor")
	assert.Equal(t, 2, store.Len())
}

func TestExportStore_RemoveIfAboveFloorRejectsForeignContainer(t *testing.T) {
	registry := container.NewRegistry()
	store, err := storage.NewExportStore("Bari", 0, 10, registry)
	require.NoError(t, err)
	fillExport(t, store, registry, 2, container.StateEmpty)

	assert.False(t, store.RemoveIfAboveFloor(newContainer(t, 99, container.GoodsNone, container.StateEmpty)))
	assert.Equal(t, 2, store.Len())
}

func TestExportStore_WithdrawEmptySkipsFullContainers(t *testing.T) {
	registry := container.NewRegistry()
	store, err := storage.NewExportStore("Bari", 0, 10, registry)
	require.NoError(t, err)
	fillExport(t, store, registry, 2, container.StateFullExport)
	empty := fillExport(t, store, registry, 1, container.StateEmpty)[0]

	got, ok := store.WithdrawEmpty()
	require.True(t, ok)
	assert.Same(t, empty, got)

	_, ok = store.WithdrawEmpty()
	assert.False(t, ok)
}

func TestExportStore_TransferToShipAtFloorMovesNothing(t *testing.T) {
	// Arrange
	registry := container.NewRegistry()
	store, err := storage.NewExportStore("Bari", 10, 10, registry)
	require.NoError(t, err)
	fillExport(t, store, registry, 10, container.StateFullExport)
	ship := &stubShip{capacity: 10}

	// Act
	moved := store.TransferToShip(ship)

	// Assert
	assert.Equal(t, 0, moved)
	assert.Empty(t, ship.onboard)
	assert.Equal(t, 10, store.Len())
}

func TestExportStore_TransferToShipDrainsDownToFloor(t *testing.T) {
	registry := container.NewRegistry()
	store, err := storage.NewExportStore("Bari", 10, 10, registry)
	require.NoError(t, err)
	held := fillExport(t, store, registry, 14, container.StateFullExport)
	ship := &stubShip{capacity: 10}

	moved := store.TransferToShip(ship)

	assert.Equal(t, 4, moved)
	assert.Equal(t, 10, store.Len())
	assert.Equal(t, held[:4], ship.onboard)
	for _, c := range held[:4] {
		assert.False(t, store.Holds(c))
	}
}

func TestExportStore_TransferToShipStopsWhenShipFull(t *testing.T) {
	registry := container.NewRegistry()
	store, err := storage.NewExportStore("Bari", 0, 10, registry)
	require.NoError(t, err)
	fillExport(t, store, registry, 5, container.StateFullExport)
	ship := &stubShip{capacity: 3}

	moved := store.TransferToShip(ship)

	assert.Equal(t, 3, moved)
	assert.Equal(t, 2, store.Len())
}

// faultyShip accepts one container and panics on the next pickup
type faultyShip struct {
	onboard []*container.Container
}

func (s *faultyShip) PickFromTerminal(c *container.Container) bool {
	if len(s.onboard) == 1 {
		panic("hold door jammed")
	}
	c.SetLocation("ship")
	s.onboard = append(s.onboard, c)
	return true
}

func TestExportStore_TransferToShipKeepsProgressWhenPickupFaults(t *testing.T) {
	// Arrange
	registry := container.NewRegistry()
	store, err := storage.NewExportStore("Bari", 2, 10, registry)
	require.NoError(t, err)
	held := fillExport(t, store, registry, 5, container.StateFullExport)
	ship := &faultyShip{}

	// Act
	assert.Panics(t, func() { store.TransferToShip(ship) })

	// Assert
	size := make(chan int, 1)
	go func() { size <- store.Len() }()
	select {
	case n := <-size:
		assert.Equal(t, 4, n)
	case <-time.After(time.Second):
		t.Fatal("export store still locked after a faulted pickup")
	}
	require.Len(t, ship.onboard, 1)
	assert.Same(t, held[0], ship.onboard[0])
	assert.False(t, store.Holds(held[0]))
	assert.True(t, store.Holds(held[1]))
}

func TestNewTerminal_ValidatesLimits(t *testing.T) {
	registry := container.NewRegistry()

	_, err := storage.NewTerminal("Bari", storage.Limits{ImportCeiling: 0, ExportFloor: 10, ExportCeiling: 10}, registry)
	assert.Error(t, err)

	_, err = storage.NewTerminal("Bari", storage.Limits{ImportCeiling: 15, ExportFloor: 10, ExportCeiling: 5}, registry)
	assert.Error(t, err)

	terminal, err := storage.NewTerminal("Bari", storage.DefaultLimits(), registry)
	require.NoError(t, err)
	assert.Len(t, terminal.Describe(), 3)
	assert.Equal(t, 15, terminal.Occupancy().ImportCeiling)
}
