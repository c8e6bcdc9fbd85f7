package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/application/haulage"
	"github.com/andrescamacho/portlogistics-go/internal/application/port"
	shipTypes "github.com/andrescamacho/portlogistics-go/internal/application/ship/types"
	terminalCmd "github.com/andrescamacho/portlogistics-go/internal/application/terminal/commands"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
	"github.com/andrescamacho/portlogistics-go/test/helpers"
)

// voyageContext drives a whole route through the mediator
type voyageContext struct {
	settings port.Settings
	system   *port.System

	lastResponse common.Response
	lastErr      error
	lastCycle    haulage.CycleResult
}

func (vc *voyageContext) reset() {
	vc.settings = port.DefaultSettings()
	vc.settings.Haulage.StartupDelay = 0
	vc.system = nil
	vc.lastResponse = nil
	vc.lastErr = nil
	vc.lastCycle = haulage.CycleResult{}
}

// route builds the system on first use so Given steps can still adjust settings
func (vc *voyageContext) route() (*port.System, error) {
	if vc.system != nil {
		return vc.system, nil
	}
	system, err := port.NewSystem(vc.settings, helpers.NewInMemoryMovementRepository())
	if err != nil {
		return nil, err
	}
	vc.system = system
	return system, nil
}

func (vc *voyageContext) send(request common.Request) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	vc.lastResponse, vc.lastErr = system.Send(context.Background(), request)
	return nil
}

// Given steps

func (vc *voyageContext) theStandardRouteWithTheInitialLoad() error {
	vc.settings.Seed = true
	return nil
}

func (vc *voyageContext) theExportCeilingIs(ceiling int) error {
	if vc.system != nil {
		return fmt.Errorf("route already built")
	}
	vc.settings.Limits.ExportCeiling = ceiling
	return nil
}

func (vc *voyageContext) theShipIsDockedAtItsDestination() error {
	if err := vc.send(&shipTypes.RequestDockCommand{}); err != nil {
		return err
	}
	if vc.lastErr != nil {
		return vc.lastErr
	}
	if err := vc.send(&shipTypes.ConfirmDockCommand{Granted: true}); err != nil {
		return err
	}
	return vc.lastErr
}

func (vc *voyageContext) theOperatorCreatedAnEmptyContainerAt(code, portName string) error {
	number, err := strconv.Atoi(code[4:])
	if err != nil {
		return err
	}
	if err := vc.send(&terminalCmd.CreateContainerCommand{
		Port:    portName,
		Variant: "box",
		Letters: code[:4],
		Number:  number,
	}); err != nil {
		return err
	}
	return vc.lastErr
}

// When steps

func (vc *voyageContext) theCaptainRequestsDocking() error {
	return vc.send(&shipTypes.RequestDockCommand{})
}

func (vc *voyageContext) thePortGrantsTheRequest() error {
	return vc.answer(true)
}

func (vc *voyageContext) thePortDeniesTheRequest() error {
	return vc.answer(false)
}

// answer confirms whichever handshake is pending; without one it sends a
// docking confirmation, which the ship refuses.
func (vc *voyageContext) answer(granted bool) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	if pending, ok := system.Ship().PendingRequest(); ok && pending.Kind == navigation.RequestUndocking {
		return vc.send(&shipTypes.ConfirmUndockCommand{Granted: granted})
	}
	return vc.send(&shipTypes.ConfirmDockCommand{Granted: granted})
}

func (vc *voyageContext) theCaptainUnloadsTheShip() error {
	return vc.send(&shipTypes.UnloadCommand{})
}

func (vc *voyageContext) theCaptainExports() error {
	return vc.send(&shipTypes.ExportCommand{})
}

func (vc *voyageContext) theCaptainRequestsUndocking() error {
	return vc.send(&shipTypes.RequestUndockCommand{})
}

func (vc *voyageContext) theHaulageWorkerPolls(portName string) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	worker, ok := system.Worker(portName)
	if !ok {
		return fmt.Errorf("no haulage worker at %s", portName)
	}
	_, vc.lastCycle, vc.lastErr = worker.Poll(context.Background())
	return nil
}

func (vc *voyageContext) theOperatorRemovesContainer(code string) error {
	return vc.send(&terminalCmd.RemoveContainerCommand{Code: code})
}

// Then steps

func (vc *voyageContext) theShipShouldBe(state string) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	if got := string(system.Ship().State()); got != state {
		return fmt.Errorf("expected ship to be %s, got %s", state, got)
	}
	return nil
}

func (vc *voyageContext) theShipShouldBeBoundFor(portName string) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	if got := system.Ship().Destination(); got != portName {
		return fmt.Errorf("expected ship to be bound for %s, got %s", portName, got)
	}
	return nil
}

func (vc *voyageContext) theShipShouldCarry(n int) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	if got := system.Ship().OnboardCount(); got != n {
		return fmt.Errorf("expected %d containers aboard, got %d", n, got)
	}
	return nil
}

func (vc *voyageContext) theImportStoreAtShouldHold(portName string, n int) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	terminal, ok := system.Terminal(portName)
	if !ok {
		return fmt.Errorf("unknown port %s", portName)
	}
	if got := terminal.Imports().Len(); got != n {
		return fmt.Errorf("expected %s import store to hold %d containers, got %d", portName, n, got)
	}
	return nil
}

func (vc *voyageContext) theExportStoreAtShouldHold(portName string, n int) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	terminal, ok := system.Terminal(portName)
	if !ok {
		return fmt.Errorf("unknown port %s", portName)
	}
	if got := terminal.Exports().Len(); got != n {
		return fmt.Errorf("expected %s export store to hold %d containers, got %d", portName, n, got)
	}
	return nil
}

func (vc *voyageContext) theRegistryShouldList(n int) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	if got := system.Registry().Len(); got != n {
		return fmt.Errorf("expected %d registered containers, got %d", n, got)
	}
	return nil
}

func (vc *voyageContext) theLastCommandShouldFail() error {
	if vc.lastErr == nil {
		return fmt.Errorf("expected the last command to fail")
	}
	return nil
}

func (vc *voyageContext) theLastCommandShouldFailWith(fragment string) error {
	if vc.lastErr == nil {
		return fmt.Errorf("expected the last command to fail with %q", fragment)
	}
	if !strings.Contains(vc.lastErr.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got %q", fragment, vc.lastErr.Error())
	}
	return nil
}

func (vc *voyageContext) theLastCommandShouldSucceed() error {
	return vc.lastErr
}

func (vc *voyageContext) containersShouldHaveBeenUnloaded(n int) error {
	if vc.lastErr != nil {
		return vc.lastErr
	}
	resp, ok := vc.lastResponse.(*shipTypes.UnloadResponse)
	if !ok {
		return fmt.Errorf("expected an unload response, got %T", vc.lastResponse)
	}
	if resp.Unloaded != n {
		return fmt.Errorf("expected %d containers unloaded, got %d", n, resp.Unloaded)
	}
	return nil
}

func (vc *voyageContext) containersShouldHaveBeenLoaded(n int) error {
	if vc.lastErr != nil {
		return vc.lastErr
	}
	resp, ok := vc.lastResponse.(*shipTypes.ExportResponse)
	if !ok {
		return fmt.Errorf("expected an export response, got %T", vc.lastResponse)
	}
	if resp.Loaded != n {
		return fmt.Errorf("expected %d containers loaded, got %d", n, resp.Loaded)
	}
	return nil
}

func (vc *voyageContext) theHaulageCycleShouldHaveMoved(drained, refilled int) error {
	if vc.lastErr != nil {
		return vc.lastErr
	}
	if vc.lastCycle.Drained != drained || vc.lastCycle.Refilled != refilled {
		return fmt.Errorf("expected %d drained and %d refilled, got %d and %d",
			drained, refilled, vc.lastCycle.Drained, vc.lastCycle.Refilled)
	}
	return nil
}

func (vc *voyageContext) theHaulageWorkerShouldHaveRun(portName string, cycles int) error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	worker, ok := system.Worker(portName)
	if !ok {
		return fmt.Errorf("no haulage worker at %s", portName)
	}
	if got := worker.Stats().Cycles; got != cycles {
		return fmt.Errorf("expected %d cycles at %s, got %d", cycles, portName, got)
	}
	return nil
}

func (vc *voyageContext) everyContainerShouldBeHeldExactlyOnce() error {
	system, err := vc.route()
	if err != nil {
		return err
	}
	return system.CheckConsistency()
}

// InitializeVoyageScenario registers the route level steps
func InitializeVoyageScenario(ctx *godog.ScenarioContext) {
	vc := &voyageContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		vc.reset()
		return ctx, nil
	})

	ctx.Step(`^the standard route with the initial load$`, vc.theStandardRouteWithTheInitialLoad)
	ctx.Step(`^the export ceiling is (\d+)$`, vc.theExportCeilingIs)
	ctx.Step(`^the ship is docked at its destination$`, vc.theShipIsDockedAtItsDestination)
	ctx.Step(`^the operator created an empty container "([A-Z]{4}\d{8})" at "([^"]*)"$`, vc.theOperatorCreatedAnEmptyContainerAt)

	ctx.Step(`^the captain requests docking$`, vc.theCaptainRequestsDocking)
	ctx.Step(`^the port grants the request$`, vc.thePortGrantsTheRequest)
	ctx.Step(`^the port denies the request$`, vc.thePortDeniesTheRequest)
	ctx.Step(`^the captain unloads the ship$`, vc.theCaptainUnloadsTheShip)
	ctx.Step(`^the captain exports$`, vc.theCaptainExports)
	ctx.Step(`^the captain requests undocking$`, vc.theCaptainRequestsUndocking)
	ctx.Step(`^the haulage worker at "([^"]*)" polls$`, vc.theHaulageWorkerPolls)
	ctx.Step(`^the operator removes container "([^"]*)"$`, vc.theOperatorRemovesContainer)

	ctx.Step(`^the ship should be "([^"]*)"$`, vc.theShipShouldBe)
	ctx.Step(`^the ship should be bound for "([^"]*)"$`, vc.theShipShouldBeBoundFor)
	ctx.Step(`^the ship should carry (\d+) containers$`, vc.theShipShouldCarry)
	ctx.Step(`^the import store at "([^"]*)" should hold (\d+) containers$`, vc.theImportStoreAtShouldHold)
	ctx.Step(`^the export store at "([^"]*)" should hold (\d+) containers$`, vc.theExportStoreAtShouldHold)
	ctx.Step(`^the registry should list (\d+) containers$`, vc.theRegistryShouldList)
	ctx.Step(`^the last command should fail$`, vc.theLastCommandShouldFail)
	ctx.Step(`^the last command should fail with "([^"]*)"$`, vc.theLastCommandShouldFailWith)
	ctx.Step(`^the last command should succeed$`, vc.theLastCommandShouldSucceed)
	ctx.Step(`^(\d+) containers should have been unloaded$`, vc.containersShouldHaveBeenUnloaded)
	ctx.Step(`^(\d+) containers should have been loaded$`, vc.containersShouldHaveBeenLoaded)
	ctx.Step(`^the haulage cycle should have drained (\d+) and refilled (\d+) containers$`, vc.theHaulageCycleShouldHaveMoved)
	ctx.Step(`^the haulage worker at "([^"]*)" should have run (\d+) cycles$`, vc.theHaulageWorkerShouldHaveRun)
	ctx.Step(`^every container should be held exactly once$`, vc.everyContainerShouldBeHeldExactlyOnce)
}
