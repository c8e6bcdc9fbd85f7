package navigation_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

type fixture struct {
	registry *container.Registry
	bari     *storage.Terminal
	busan    *storage.Terminal
	route    *navigation.Route
	ship     *navigation.CargoShip
}

func newFixture(t *testing.T, limits storage.Limits) *fixture {
	t.Helper()
	registry := container.NewRegistry()
	bari, err := storage.NewTerminal("Bari", limits, registry)
	require.NoError(t, err)
	busan, err := storage.NewTerminal("Busan", limits, registry)
	require.NoError(t, err)
	route, err := navigation.NewRoute(bari, busan, "Bari")
	require.NoError(t, err)
	ship, err := navigation.NewCargoShip(navigation.DefaultShipName, navigation.DefaultShipCapacity, route)
	require.NoError(t, err)
	return &fixture{registry: registry, bari: bari, busan: busan, route: route, ship: ship}
}

// loadShip puts n registered full import containers aboard and clears the latch
func (f *fixture) loadShip(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		c, err := container.NewContainer(fmt.Sprintf("SHIP%08d", i), container.Box, container.ProcessingOrder[i%4], container.StateFullImport)
		require.NoError(t, err)
		require.NoError(t, f.registry.Add(c))
		require.True(t, f.ship.PickFromTerminal(c))
	}
	f.ship.ResetOperationStatus()
}

func (f *fixture) dock(t *testing.T) {
	t.Helper()
	_, err := f.ship.RequestDocking()
	require.NoError(t, err)
	_, err = f.ship.ConfirmDocking(true)
	require.NoError(t, err)
}

func assertPrecondition(t *testing.T, err error) {
	t.Helper()
	var preconditionErr *shared.PreconditionError
	assert.True(t, errors.As(err, &preconditionErr), "expected precondition error, got %v", err)
}

func TestNewCargoShip_StartsInTransitToInitialDestination(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())

	assert.Equal(t, navigation.StateInTransit, f.ship.State())
	assert.Equal(t, "Bari", f.ship.Destination())
	assert.Equal(t, "HELEN III", f.ship.Name())
	assert.False(t, f.ship.OperationsAllowed())
}

func TestCargoShip_ConfirmBeforeRequestHasNoEffect(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())

	// Act
	_, err := f.ship.ConfirmDocking(true)

	// Assert
	assertPrecondition(t, err)
	assert.Equal(t, navigation.StateInTransit, f.ship.State())
}

func TestCargoShip_DockingHandshake(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())

	// Act
	req, err := f.ship.RequestDocking()
	require.NoError(t, err)

	// Assert
	assert.Equal(t, navigation.StateWaiting, f.ship.State())
	assert.Equal(t, "Bari", req.Target)
	assert.Equal(t, navigation.RequestDocking, req.Kind)
	assert.Equal(t, navigation.DecisionPending, req.Decision)
	assert.Equal(t, "Bari", f.ship.RequestTarget())

	decided, err := f.ship.ConfirmDocking(true)
	require.NoError(t, err)
	assert.Equal(t, req.ID, decided.ID)
	assert.True(t, decided.Granted())
	assert.Equal(t, navigation.StateDockedForImport, f.ship.State())
	assert.Empty(t, f.ship.RequestTarget())

	store, ok := f.ship.CurrentImportStore()
	require.True(t, ok)
	assert.Same(t, f.bari.Imports(), store)
}

func TestCargoShip_RequestIsConsumedOnce(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())
	_, err := f.ship.RequestDocking()
	require.NoError(t, err)
	_, err = f.ship.ConfirmDocking(false)
	require.NoError(t, err)

	// Act: a second answer to the same request
	_, err = f.ship.ConfirmDocking(true)

	// Assert
	assertPrecondition(t, err)
	assert.Equal(t, navigation.StateWaiting, f.ship.State())
}

func TestCargoShip_DeniedDockingWaitsAndMayRetry(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())
	_, err := f.ship.RequestDocking()
	require.NoError(t, err)

	decided, err := f.ship.ConfirmDocking(false)
	require.NoError(t, err)
	assert.Equal(t, navigation.DecisionDenied, decided.Decision)
	assert.Equal(t, navigation.StateWaiting, f.ship.State())

	_, err = f.ship.RequestDocking()
	require.NoError(t, err)
	_, err = f.ship.ConfirmDocking(true)
	require.NoError(t, err)
	assert.Equal(t, navigation.StateDockedForImport, f.ship.State())
}

func TestCargoShip_UnloadIntoEmptyImportStore(t *testing.T) {
	// Arrange
	f := newFixture(t, storage.DefaultLimits())
	f.loadShip(t, 10)
	f.dock(t)

	// Act
	result, err := f.ship.Unload()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10, result.Unloaded)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 10, f.bari.Imports().Len())
	assert.Equal(t, 0, f.ship.OnboardCount())
	assert.Equal(t, navigation.StateDockedForExport, f.ship.State())
}

func TestCargoShip_PartialUnloadStaysDockedForImport(t *testing.T) {
	f := newFixture(t, storage.Limits{ImportCeiling: 4, ExportFloor: 10, ExportCeiling: 10})
	f.loadShip(t, 10)
	f.dock(t)

	result, err := f.ship.Unload()

	require.NoError(t, err)
	assert.Equal(t, 4, result.Unloaded)
	assert.Equal(t, 6, result.Remaining)
	assert.Equal(t, navigation.StateDockedForImport, f.ship.State())
	assert.Equal(t, 4, f.bari.Imports().Len())
}

func TestCargoShip_UnloadWithEmptyHoldMovesToExport(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())
	f.dock(t)

	result, err := f.ship.Unload()

	require.NoError(t, err)
	assert.Equal(t, 0, result.Unloaded)
	assert.Equal(t, navigation.StateDockedForExport, f.ship.State())
}

func TestCargoShip_OperationsRequireDockedState(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())

	_, err := f.ship.Unload()
	assertPrecondition(t, err)

	_, err = f.ship.Export()
	assertPrecondition(t, err)

	f.dock(t)
	_, err = f.ship.Export()
	assertPrecondition(t, err)
}

func TestCargoShip_PickFromTerminalRespectsCapacity(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())
	f.loadShip(t, 10)

	extra, err := container.NewContainer("XTRA00000001", container.Box, container.GoodsFood, container.StateFullExport)
	require.NoError(t, err)

	assert.False(t, f.ship.PickFromTerminal(extra))
	assert.Equal(t, 10, f.ship.OnboardCount())
	assert.Empty(t, extra.Location())
}

func TestCargoShip_ExportConcludesOperations(t *testing.T) {
	// Arrange: export store holds 13, floor 10
	f := newFixture(t, storage.DefaultLimits())
	f.dock(t)
	_, err := f.ship.Unload()
	require.NoError(t, err)
	for i := 0; i < 13; i++ {
		c, err := container.NewContainer(fmt.Sprintf("EXPT%08d", i), container.HighCube, container.GoodsFurniture, container.StateFullExport)
		require.NoError(t, err)
		require.NoError(t, f.registry.Add(c))
		f.bari.Exports().DepositProcessed(c)
	}

	// Act
	moved, err := f.ship.Export()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, moved)
	assert.Equal(t, 3, f.ship.OnboardCount())
	assert.Equal(t, 10, f.bari.Exports().Len())
	assert.True(t, f.ship.OperationsConcluded())

	_, err = f.ship.Export()
	assertPrecondition(t, err)
	assertPrecondition(t, f.ship.EnsureOperationsAllowed())
}

func TestCargoShip_UndockRequiresExportBerth(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())

	_, err := f.ship.RequestUndocking()
	assertPrecondition(t, err)

	f.dock(t)
	_, err = f.ship.RequestUndocking()
	assertPrecondition(t, err)
}

func TestCargoShip_DeniedUndockingWaitsAtBerth(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())
	f.dock(t)
	_, err := f.ship.Unload()
	require.NoError(t, err)

	req, err := f.ship.RequestUndocking()
	require.NoError(t, err)
	assert.Equal(t, "Bari", req.Target)
	assert.True(t, f.ship.OperationsConcluded())

	_, err = f.ship.ConfirmUndocking(false)
	require.NoError(t, err)
	assert.Equal(t, navigation.StateWaiting, f.ship.State())

	// A berthed ship cannot ask to dock again, only to leave
	_, err = f.ship.RequestDocking()
	assertPrecondition(t, err)

	_, err = f.ship.RequestUndocking()
	require.NoError(t, err)
	_, err = f.ship.ConfirmUndocking(true)
	require.NoError(t, err)
	assert.Equal(t, navigation.StateInTransit, f.ship.State())
	assert.Equal(t, "Busan", f.ship.Destination())
}

func TestCargoShip_RouteAlternationIsTwoCycle(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())
	start := f.ship.Destination()

	for voyage := 0; voyage < 2; voyage++ {
		f.dock(t)
		_, err := f.ship.Unload()
		require.NoError(t, err)
		_, err = f.ship.RequestUndocking()
		require.NoError(t, err)
		_, err = f.ship.ConfirmUndocking(true)
		require.NoError(t, err)
		assert.False(t, f.ship.OperationsConcluded())
	}

	assert.Equal(t, start, f.ship.Destination())
	assert.Same(t, f.bari.Exports(), f.ship.CurrentExportStore())
}

func TestRoute_ReadableWhileShipDeparts(t *testing.T) {
	// Arrange
	f := newFixture(t, storage.DefaultLimits())
	done := make(chan struct{})
	var wg sync.WaitGroup
	seen := map[string]bool{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			seen[f.route.Destination().Port()] = true
		}
	}()

	// Act
	for voyage := 0; voyage < 4; voyage++ {
		f.dock(t)
		_, err := f.ship.Unload()
		require.NoError(t, err)
		_, err = f.ship.RequestUndocking()
		require.NoError(t, err)
		_, err = f.ship.ConfirmUndocking(true)
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()

	// Assert
	assert.Equal(t, "Bari", f.route.Destination().Port())
	assert.Equal(t, "Busan", f.route.Other().Port())
	for port := range seen {
		assert.Contains(t, []string{"Bari", "Busan"}, port)
	}
}

func TestCargoShip_StatusSnapshot(t *testing.T) {
	f := newFixture(t, storage.DefaultLimits())
	f.loadShip(t, 2)
	_, err := f.ship.RequestDocking()
	require.NoError(t, err)

	status := f.ship.Status()

	assert.Equal(t, navigation.StateWaiting, status.State)
	assert.Len(t, status.Onboard, 2)
	require.NotNil(t, status.PendingRequest)
	assert.Equal(t, navigation.RequestDocking, status.PendingRequest.Kind)
	assert.Equal(t, "HELEN III cargo ship", status.Onboard[0].Location)
}

func TestNewRoute_RejectsSamePortTwice(t *testing.T) {
	registry := container.NewRegistry()
	a, err := storage.NewTerminal("Bari", storage.DefaultLimits(), registry)
	require.NoError(t, err)
	b, err := storage.NewTerminal("Bari", storage.DefaultLimits(), registry)
	require.NoError(t, err)

	_, err = navigation.NewRoute(a, b, "Bari")
	assert.Error(t, err)

	_, err = navigation.NewRoute(a, a, "")
	assert.Error(t, err)
}

func TestNewRoute_InitialDestination(t *testing.T) {
	registry := container.NewRegistry()
	a, err := storage.NewTerminal("Bari", storage.DefaultLimits(), registry)
	require.NoError(t, err)
	b, err := storage.NewTerminal("Busan", storage.DefaultLimits(), registry)
	require.NoError(t, err)

	route, err := navigation.NewRoute(a, b, "Busan")
	require.NoError(t, err)
	assert.Equal(t, "Busan", route.Destination().Port())
	assert.Equal(t, "Bari", route.Other().Port())

	_, err = navigation.NewRoute(a, b, "Genoa")
	assert.Error(t, err)
}
