package port_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/application/port"
	shipQuery "github.com/andrescamacho/portlogistics-go/internal/application/ship/queries"
	shipTypes "github.com/andrescamacho/portlogistics-go/internal/application/ship/types"
	terminalCmd "github.com/andrescamacho/portlogistics-go/internal/application/terminal/commands"
	terminalQuery "github.com/andrescamacho/portlogistics-go/internal/application/terminal/queries"
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
	"github.com/andrescamacho/portlogistics-go/test/helpers"
)

func newTestSystem(t *testing.T, mutate func(*port.Settings)) (*port.System, *helpers.InMemoryMovementRepository) {
	t.Helper()
	settings := port.DefaultSettings()
	settings.Haulage.StartupDelay = 0
	settings.Haulage.PollInterval = 10 * time.Millisecond
	if mutate != nil {
		mutate(&settings)
	}
	repo := helpers.NewInMemoryMovementRepository()
	sys, err := port.NewSystem(settings, repo)
	require.NoError(t, err)
	return sys, repo
}

func send(t *testing.T, sys *port.System, request common.Request) common.Response {
	t.Helper()
	resp, err := sys.Send(context.Background(), request)
	require.NoError(t, err)
	return resp
}

func TestNewSystem_SeedsInitialLoad(t *testing.T) {
	sys, _ := newTestSystem(t, nil)

	assert.Equal(t, 30, sys.Registry().Len())
	bari, ok := sys.Terminal("bari")
	require.True(t, ok)
	busan, ok := sys.Terminal("Busan")
	require.True(t, ok)
	assert.Equal(t, 10, bari.Exports().Len())
	assert.Equal(t, 10, busan.Exports().Len())
	assert.Equal(t, 0, bari.Imports().Len())

	ship := sys.Ship()
	assert.Equal(t, 10, ship.OnboardCount())
	assert.Equal(t, navigation.StateInTransit, ship.State())
	assert.Equal(t, "Bari", ship.Destination())
	assert.False(t, ship.OperationsConcluded())
	require.NoError(t, sys.CheckConsistency())

	for _, c := range ship.Onboard() {
		assert.Equal(t, container.StateFullImport, c.State())
		assert.Equal(t, "HELEN III cargo ship", c.Location())
	}
}

func TestNewSystem_RejectsInvalidSettings(t *testing.T) {
	settings := port.DefaultSettings()
	settings.Ports = [2]string{"Bari", "BARI"}

	_, err := port.NewSystem(settings, nil)

	assert.Error(t, err)
}

func TestSystem_FullVoyage(t *testing.T) {
	// Arrange
	sys, _ := newTestSystem(t, nil)
	ctx := context.Background()
	bari, _ := sys.Terminal("Bari")

	// Act: dock
	send(t, sys, &shipTypes.RequestDockCommand{})
	dock := send(t, sys, &shipTypes.ConfirmDockCommand{Granted: true}).(*shipTypes.HandshakeResponse)

	// Assert
	assert.Equal(t, navigation.StateDockedForImport, dock.State)
	assert.Equal(t, navigation.DecisionGranted, dock.Request.Decision)
	assert.Equal(t, "Bari", dock.Request.Target)

	// Act: unload
	unload := send(t, sys, &shipTypes.UnloadCommand{}).(*shipTypes.UnloadResponse)

	// Assert
	assert.Equal(t, 10, unload.Unloaded)
	assert.Equal(t, 0, unload.Remaining)
	assert.Equal(t, navigation.StateDockedForExport, unload.State)
	assert.Equal(t, 10, bari.Imports().Len())

	// Act: the Bari worker notices the overload
	worker, ok := sys.Worker("Bari")
	require.True(t, ok)
	ran, cycle, err := worker.Poll(ctx)

	// Assert
	require.NoError(t, err)
	require.True(t, ran)
	assert.Equal(t, 10, cycle.Drained)
	assert.Equal(t, 10, cycle.Refilled)
	assert.Equal(t, 0, bari.Imports().Len())
	assert.Equal(t, 20, bari.Exports().Len())

	// Act: export
	export := send(t, sys, &shipTypes.ExportCommand{}).(*shipTypes.ExportResponse)

	// Assert
	assert.Equal(t, 10, export.Loaded)
	assert.Equal(t, 10, export.Onboard)
	assert.Equal(t, 10, bari.Exports().Len())

	// Act: undock
	send(t, sys, &shipTypes.RequestUndockCommand{})
	undock := send(t, sys, &shipTypes.ConfirmUndockCommand{Granted: true}).(*shipTypes.HandshakeResponse)

	// Assert
	assert.Equal(t, navigation.StateInTransit, undock.State)
	assert.Equal(t, "Busan", undock.Destination)
	assert.Equal(t, 30, sys.Registry().Len())
	require.NoError(t, sys.CheckConsistency())
}

func TestSystem_OperationsConcludedAfterExport(t *testing.T) {
	sys, _ := newTestSystem(t, nil)
	send(t, sys, &shipTypes.RequestDockCommand{})
	send(t, sys, &shipTypes.ConfirmDockCommand{Granted: true})
	send(t, sys, &shipTypes.UnloadCommand{})
	worker, ok := sys.Worker("Bari")
	require.True(t, ok)
	_, _, err := worker.Poll(context.Background())
	require.NoError(t, err)
	export := send(t, sys, &shipTypes.ExportCommand{}).(*shipTypes.ExportResponse)
	require.Equal(t, 10, export.Loaded)

	_, err = sys.Send(context.Background(), &shipTypes.ExportCommand{})

	var precondition *shared.PreconditionError
	require.ErrorAs(t, err, &precondition)

	status := send(t, sys, &shipQuery.GetShipStatusQuery{}).(*shipQuery.GetShipStatusResponse)
	assert.False(t, status.OperationsAllowed)
	assert.Contains(t, status.Reason, "must undock")
}

func TestSystem_DeniedDockingKeepsShipWaiting(t *testing.T) {
	sys, _ := newTestSystem(t, nil)
	send(t, sys, &shipTypes.RequestDockCommand{})

	resp := send(t, sys, &shipTypes.ConfirmDockCommand{Granted: false}).(*shipTypes.HandshakeResponse)

	assert.Equal(t, navigation.StateWaiting, resp.State)
	assert.Equal(t, navigation.DecisionDenied, resp.Request.Decision)

	_, err := sys.Send(context.Background(), &shipTypes.ConfirmDockCommand{Granted: true})
	assert.Error(t, err)
	assert.Equal(t, navigation.StateWaiting, sys.Ship().State())
}

func TestSystem_CreateContainer(t *testing.T) {
	// Arrange
	sys, _ := newTestSystem(t, func(s *port.Settings) { s.Limits.ExportCeiling = 12 })

	// Act
	resp := send(t, sys, &terminalCmd.CreateContainerCommand{
		Port:    "bari",
		Variant: "highcube",
		Letters: "ab-cd",
		Number:  42,
		Goods:   "food",
	}).(*terminalCmd.CreateContainerResponse)

	// Assert
	assert.Equal(t, "ABCD00000042", resp.Container.Code)
	assert.Equal(t, container.StateFullExport, resp.Container.State)
	assert.Equal(t, "Bari export terminal", resp.Store)
	assert.Equal(t, 11, resp.StoreSize)
	assert.Equal(t, 31, sys.Registry().Len())
}

func TestSystem_CreateContainerRefusals(t *testing.T) {
	sys, _ := newTestSystem(t, func(s *port.Settings) { s.Limits.ExportCeiling = 11 })
	ctx := context.Background()

	// Duplicate of a seeded code, in another case
	_, err := sys.Send(ctx, &terminalCmd.CreateContainerCommand{Port: "Busan", Variant: "box", Letters: "msdu", Number: 12345678})
	var consistency *shared.ConsistencyError
	require.ErrorAs(t, err, &consistency)
	assert.Equal(t, shared.DuplicateEntity, consistency.Kind)

	// Malformed input
	_, err = sys.Send(ctx, &terminalCmd.CreateContainerCommand{Port: "Busan", Variant: "box", Letters: "ab1", Number: 1})
	var validation *shared.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = sys.Send(ctx, &terminalCmd.CreateContainerCommand{Port: "Genoa", Variant: "box", Letters: "ABCD", Number: 1})
	require.ErrorAs(t, err, &validation)

	// Store at its admission ceiling
	send(t, sys, &terminalCmd.CreateContainerCommand{Port: "Busan", Variant: "box", Letters: "ZZZZ", Number: 1})
	_, err = sys.Send(ctx, &terminalCmd.CreateContainerCommand{Port: "Busan", Variant: "box", Letters: "ZZZZ", Number: 2})
	var capacity *shared.CapacityError
	require.ErrorAs(t, err, &capacity)
	assert.Equal(t, 31, sys.Registry().Len())
}

func TestSystem_RemoveContainer(t *testing.T) {
	// Arrange
	sys, _ := newTestSystem(t, func(s *port.Settings) { s.Limits.ExportCeiling = 12 })
	send(t, sys, &terminalCmd.CreateContainerCommand{Port: "Bari", Variant: "box", Letters: "EMPT", Number: 1})

	// Act
	resp := send(t, sys, &terminalCmd.RemoveContainerCommand{Code: "empt-00000001"}).(*terminalCmd.RemoveContainerResponse)

	// Assert
	assert.Equal(t, "EMPT00000001", resp.Code)
	assert.Equal(t, "Bari export terminal", resp.From)
	assert.Equal(t, 30, resp.RegistrySize)
	assert.False(t, sys.Registry().Contains("EMPT00000001"))
	require.NoError(t, sys.CheckConsistency())
}

func TestSystem_RemoveContainerGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown code", func(t *testing.T) {
		sys, _ := newTestSystem(t, nil)
		_, err := sys.Send(ctx, &terminalCmd.RemoveContainerCommand{Code: "NOPE00000000"})
		var consistency *shared.ConsistencyError
		require.ErrorAs(t, err, &consistency)
		assert.Equal(t, shared.EntityNotFound, consistency.Kind)
	})

	t.Run("full container", func(t *testing.T) {
		sys, _ := newTestSystem(t, nil)
		_, err := sys.Send(ctx, &terminalCmd.RemoveContainerCommand{Code: "MSDU12345678"})
		var denied *shared.DeletionDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, terminalCmd.GuardNotEmpty, denied.Guard)
	})

	t.Run("registry at floor", func(t *testing.T) {
		sys, _ := newTestSystem(t, func(s *port.Settings) {
			s.Limits.ExportCeiling = 12
			s.RegistryFloor = 31
		})
		send(t, sys, &terminalCmd.CreateContainerCommand{Port: "Bari", Variant: "box", Letters: "EMPT", Number: 1})
		_, err := sys.Send(ctx, &terminalCmd.RemoveContainerCommand{Code: "EMPT00000001"})
		var denied *shared.DeletionDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, terminalCmd.GuardRegistryFloor, denied.Guard)
	})

	t.Run("export store at floor", func(t *testing.T) {
		sys, _ := newTestSystem(t, func(s *port.Settings) {
			s.Limits.ExportFloor = 11
			s.Limits.ExportCeiling = 11
		})
		send(t, sys, &terminalCmd.CreateContainerCommand{Port: "Bari", Variant: "box", Letters: "EMPT", Number: 1})
		_, err := sys.Send(ctx, &terminalCmd.RemoveContainerCommand{Code: "EMPT00000001"})
		var denied *shared.DeletionDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, terminalCmd.GuardNotRemovable, denied.Guard)
		assert.True(t, sys.Registry().Contains("EMPT00000001"))
	})
}

func TestSystem_Queries(t *testing.T) {
	sys, _ := newTestSystem(t, nil)

	occupancy := send(t, sys, &terminalQuery.GetOccupancyQuery{}).(*terminalQuery.GetOccupancyResponse)
	require.Len(t, occupancy.Terminals, 2)
	assert.Equal(t, "Bari", occupancy.Terminals[0].Port)
	assert.Equal(t, 10, occupancy.Terminals[0].ExportSize)

	registry := send(t, sys, &terminalQuery.ListRegistryQuery{State: container.StateFullImport}).(*terminalQuery.ListRegistryResponse)
	assert.Equal(t, 30, registry.Total)
	assert.Len(t, registry.Containers, 10)
}

func TestSystem_MovementLog(t *testing.T) {
	// Arrange
	sys, repo := newTestSystem(t, nil)
	require.NoError(t, sys.Start(context.Background()))
	defer sys.Stop()

	// Act
	movements := send(t, sys, &terminalQuery.ListMovementsQuery{Code: "aaaa00000001"}).(*terminalQuery.ListMovementsResponse)

	// Assert
	require.NotEmpty(t, movements.Movements)
	assert.Equal(t, container.MovementRegistered, movements.Movements[0].Kind)
	assert.NotEmpty(t, movements.Movements[0].ID)
	assert.NotEmpty(t, repo.All())
}

func TestSystem_WorkersDrainInBackground(t *testing.T) {
	// Arrange
	sys, _ := newTestSystem(t, nil)
	logger := helpers.NewRecordingLogger()
	ctx := common.WithLogger(context.Background(), logger)
	require.NoError(t, sys.Start(ctx))
	defer sys.Stop()
	bari, _ := sys.Terminal("Bari")

	// Act
	_, err := sys.Send(ctx, &shipTypes.RequestDockCommand{})
	require.NoError(t, err)
	_, err = sys.Send(ctx, &shipTypes.ConfirmDockCommand{Granted: true})
	require.NoError(t, err)
	_, err = sys.Send(ctx, &shipTypes.UnloadCommand{})
	require.NoError(t, err)

	// Assert
	require.Eventually(t, func() bool {
		return bari.Exports().Len() == 20
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, bari.Imports().Len())
	assert.True(t, logger.HasAction("haulage_cycle"))
}

func TestSystem_StartTwiceFails(t *testing.T) {
	sys, _ := newTestSystem(t, nil)
	require.NoError(t, sys.Start(context.Background()))
	defer sys.Stop()

	err := sys.Start(context.Background())

	assert.Error(t, err)
}

func TestSystem_MetricsReading(t *testing.T) {
	sys, _ := newTestSystem(t, nil)

	reading := sys.MetricsReading()

	assert.Equal(t, "IN_TRANSIT", reading.ShipState)
	assert.Len(t, reading.ShipStates, 4)
	assert.Equal(t, 10, reading.ShipOnboard)
	assert.Equal(t, 30, reading.RegistrySize)
	require.Len(t, reading.Terminals, 2)
	assert.Equal(t, 10, reading.Terminals[1].ExportOccupancy)
}

func TestSystem_UnseededHasEmptyStores(t *testing.T) {
	sys, _ := newTestSystem(t, func(s *port.Settings) { s.Seed = false })

	assert.Equal(t, 0, sys.Registry().Len())
	assert.Equal(t, 0, sys.Ship().OnboardCount())

	_, err := sys.Send(context.Background(), &shipTypes.UnloadCommand{})
	assert.True(t, errors.As(err, new(*shared.PreconditionError)))
}
