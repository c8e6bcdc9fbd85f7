package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

type terminalContext struct {
	registry *container.Registry
	terminal *storage.Terminal
	factory  *container.Factory

	accepted []*container.Container
	admitted int
	removed  int
	lastErr  error
	code     string
	serial   int
}

func (tc *terminalContext) reset() {
	tc.registry = nil
	tc.terminal = nil
	tc.factory = container.NewFactory()
	tc.accepted = nil
	tc.admitted = 0
	tc.removed = 0
	tc.lastErr = nil
	tc.code = ""
	tc.serial = 0
}

func (tc *terminalContext) nextCode(letters string) string {
	tc.serial++
	return fmt.Sprintf("%s%08d", letters, tc.serial)
}

// Given steps

func (tc *terminalContext) aPortWithLimits(port string, importCeiling, exportFloor, exportCeiling int) error {
	tc.registry = container.NewRegistry()
	terminal, err := storage.NewTerminal(port, storage.Limits{
		ImportCeiling: importCeiling,
		ExportFloor:   exportFloor,
		ExportCeiling: exportCeiling,
	}, tc.registry)
	if err != nil {
		return err
	}
	tc.terminal = terminal
	return nil
}

func (tc *terminalContext) theOperatorCreatedContainer(code string) error {
	tc.operatorCreatesContainer(code)
	return tc.lastErr
}

func (tc *terminalContext) theOperatorCreatedEmptyContainers(n int) error {
	tc.operatorCreatesEmptyContainers(n)
	if tc.admitted != n {
		return fmt.Errorf("expected %d admissions, got %d", n, tc.admitted)
	}
	return nil
}

// When steps

func (tc *terminalContext) theShipOffloadsContainers(n int) error {
	for i := 0; i < n; i++ {
		c, err := container.NewContainer(tc.nextCode("SHIP"), container.Box, container.GoodsFood, container.StateFullExport)
		if err != nil {
			return err
		}
		if tc.terminal.Imports().ReceiveFromShip(c) {
			tc.accepted = append(tc.accepted, c)
		}
	}
	return nil
}

func (tc *terminalContext) operatorCreatesEmptyContainers(n int) {
	for i := 0; i < n; i++ {
		c, err := tc.factory.Create(container.Box, tc.nextCode("EMPT"), container.GoodsNone)
		if err != nil {
			tc.lastErr = err
			continue
		}
		if tc.terminal.Exports().Admit(c) {
			tc.admitted++
		}
	}
}

func (tc *terminalContext) theOperatorCreatesEmptyContainers(n int) error {
	tc.operatorCreatesEmptyContainers(n)
	return nil
}

func (tc *terminalContext) operatorCreatesContainer(code string) {
	// Operator input is normalised before it reaches the store.
	c, err := tc.factory.Create(container.HighCube, container.CanonicalCode(code), container.GoodsFood)
	if err != nil {
		tc.lastErr = err
		return
	}
	tc.lastErr = tc.terminal.Exports().TryAdmit(c)
}

func (tc *terminalContext) theOperatorCreatesContainer(code string) error {
	tc.operatorCreatesContainer(code)
	return nil
}

func (tc *terminalContext) theOperatorRemovesContainers(n int) error {
	for _, c := range tc.terminal.Exports().Snapshot() {
		if n == 0 {
			break
		}
		n--
		if tc.terminal.Exports().RemoveIfAboveFloor(c) {
			tc.removed++
		}
	}
	return nil
}

func (tc *terminalContext) theOperatorBuildsACode(letters string, number int) error {
	tc.code, tc.lastErr = container.BuildCode(letters, number)
	return nil
}

// Then steps

func (tc *terminalContext) containersShouldHaveBeenAccepted(n int) error {
	if len(tc.accepted) != n {
		return fmt.Errorf("expected %d accepted containers, got %d", n, len(tc.accepted))
	}
	return nil
}

func (tc *terminalContext) theImportStoreShouldHold(n int) error {
	if got := tc.terminal.Imports().Len(); got != n {
		return fmt.Errorf("expected import store to hold %d containers, got %d", n, got)
	}
	return nil
}

func (tc *terminalContext) everyAcceptedContainerShouldBe(state string) error {
	for _, c := range tc.accepted {
		if string(c.State()) != state {
			return fmt.Errorf("container %s is %s, expected %s", c.Code(), c.State(), state)
		}
	}
	return nil
}

func (tc *terminalContext) containersShouldHaveBeenAdmitted(n int) error {
	if tc.admitted != n {
		return fmt.Errorf("expected %d admitted containers, got %d", n, tc.admitted)
	}
	return nil
}

func (tc *terminalContext) theExportStoreShouldHold(n int) error {
	if got := tc.terminal.Exports().Len(); got != n {
		return fmt.Errorf("expected export store to hold %d containers, got %d", n, got)
	}
	return nil
}

func (tc *terminalContext) theRegistryShouldHold(n int) error {
	if got := tc.registry.Len(); got != n {
		return fmt.Errorf("expected registry to hold %d containers, got %d", n, got)
	}
	return nil
}

func (tc *terminalContext) theAdmissionShouldFailWithADuplicateError() error {
	var consistency *shared.ConsistencyError
	if !errors.As(tc.lastErr, &consistency) || consistency.Kind != shared.DuplicateEntity {
		return fmt.Errorf("expected a duplicate entity error, got %v", tc.lastErr)
	}
	return nil
}

func (tc *terminalContext) containersShouldHaveBeenRemoved(n int) error {
	if tc.removed != n {
		return fmt.Errorf("expected %d removed containers, got %d", n, tc.removed)
	}
	return nil
}

func (tc *terminalContext) theCodeShouldBe(code string) error {
	if tc.lastErr != nil {
		return fmt.Errorf("expected code %s, got error %v", code, tc.lastErr)
	}
	if tc.code != code {
		return fmt.Errorf("expected code %s, got %s", code, tc.code)
	}
	return nil
}

func (tc *terminalContext) theCodeShouldBeRejected() error {
	var validation *shared.ValidationError
	if !errors.As(tc.lastErr, &validation) {
		return fmt.Errorf("expected a validation error, got %v (code %q)", tc.lastErr, tc.code)
	}
	return nil
}

// InitializeTerminalScenario registers the terminal store steps
func InitializeTerminalScenario(ctx *godog.ScenarioContext) {
	tc := &terminalContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a port "([^"]*)" with import ceiling (\d+), export floor (\d+) and export ceiling (\d+)$`, tc.aPortWithLimits)
	ctx.Step(`^the operator created container "([^"]*)" in the export store$`, tc.theOperatorCreatedContainer)
	ctx.Step(`^the operator created (\d+) empty containers in the export store$`, tc.theOperatorCreatedEmptyContainers)

	ctx.Step(`^the ship offloads (\d+) containers into the import store$`, tc.theShipOffloadsContainers)
	ctx.Step(`^the operator creates (\d+) empty containers in the export store$`, tc.theOperatorCreatesEmptyContainers)
	ctx.Step(`^the operator creates container "([^"]*)" in the export store$`, tc.theOperatorCreatesContainer)
	ctx.Step(`^the operator removes (\d+) containers from the export store$`, tc.theOperatorRemovesContainers)
	ctx.Step(`^the operator builds a code from letters "([^"]*)" and number (\d+)$`, tc.theOperatorBuildsACode)

	ctx.Step(`^(\d+) containers should have been accepted$`, tc.containersShouldHaveBeenAccepted)
	ctx.Step(`^the import store should hold (\d+) containers$`, tc.theImportStoreShouldHold)
	ctx.Step(`^every accepted container should be "([^"]*)"$`, tc.everyAcceptedContainerShouldBe)
	ctx.Step(`^(\d+) containers should have been admitted$`, tc.containersShouldHaveBeenAdmitted)
	ctx.Step(`^the export store should hold (\d+) containers$`, tc.theExportStoreShouldHold)
	ctx.Step(`^the registry should hold (\d+) containers$`, tc.theRegistryShouldHold)
	ctx.Step(`^the admission should fail with a duplicate error$`, tc.theAdmissionShouldFailWithADuplicateError)
	ctx.Step(`^(\d+) containers should have been removed$`, tc.containersShouldHaveBeenRemoved)
	ctx.Step(`^the code should be "([^"]*)"$`, tc.theCodeShouldBe)
	ctx.Step(`^the code should be rejected$`, tc.theCodeShouldBeRejected)
}
