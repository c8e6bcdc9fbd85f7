package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/application/port"
	shipQuery "github.com/andrescamacho/portlogistics-go/internal/application/ship/queries"
	shipTypes "github.com/andrescamacho/portlogistics-go/internal/application/ship/types"
	terminalCmd "github.com/andrescamacho/portlogistics-go/internal/application/terminal/commands"
	terminalQuery "github.com/andrescamacho/portlogistics-go/internal/application/terminal/queries"
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
)

// session drives a live system through its mediator and prints the results
type session struct {
	system    *port.System
	out       io.Writer
	formatter *TreeFormatter
}

func newSession(system *port.System, out io.Writer, useColors bool) *session {
	return &session{
		system:    system,
		out:       out,
		formatter: NewTreeFormatter(useColors, false),
	}
}

func (s *session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) requestDock(ctx context.Context) error {
	resp, err := s.send(ctx, &shipTypes.RequestDockCommand{})
	if err != nil {
		return err
	}
	r := resp.(*shipTypes.HandshakeResponse)
	s.printf("✓ Docking requested at %s (request %s)\n", r.Request.Target, r.Request.ID)
	return nil
}

func (s *session) confirmDock(ctx context.Context, granted bool) error {
	resp, err := s.send(ctx, &shipTypes.ConfirmDockCommand{Granted: granted})
	if err != nil {
		return err
	}
	r := resp.(*shipTypes.HandshakeResponse)
	s.printf("✓ Docking %s, ship is %s\n", strings.ToLower(string(r.Request.Decision)), r.State)
	return nil
}

func (s *session) requestUndock(ctx context.Context) error {
	resp, err := s.send(ctx, &shipTypes.RequestUndockCommand{})
	if err != nil {
		return err
	}
	r := resp.(*shipTypes.HandshakeResponse)
	s.printf("✓ Undocking requested at %s (request %s)\n", r.Request.Target, r.Request.ID)
	return nil
}

func (s *session) confirmUndock(ctx context.Context, granted bool) error {
	resp, err := s.send(ctx, &shipTypes.ConfirmUndockCommand{Granted: granted})
	if err != nil {
		return err
	}
	r := resp.(*shipTypes.HandshakeResponse)
	s.printf("✓ Undocking %s, ship is %s bound for %s\n", strings.ToLower(string(r.Request.Decision)), r.State, r.Destination)
	return nil
}

func (s *session) unload(ctx context.Context) (*shipTypes.UnloadResponse, error) {
	resp, err := s.send(ctx, &shipTypes.UnloadCommand{})
	if err != nil {
		return nil, err
	}
	r := resp.(*shipTypes.UnloadResponse)
	s.printf("✓ Unloaded %d containers at %s, %d remaining, ship is %s\n", r.Unloaded, r.Port, r.Remaining, r.State)
	return r, nil
}

func (s *session) export(ctx context.Context) error {
	resp, err := s.send(ctx, &shipTypes.ExportCommand{})
	if err != nil {
		return err
	}
	r := resp.(*shipTypes.ExportResponse)
	s.printf("✓ Loaded %d containers at %s, %d aboard\n", r.Loaded, r.Port, r.Onboard)
	return nil
}

func (s *session) createContainer(ctx context.Context, cmd *terminalCmd.CreateContainerCommand) error {
	resp, err := s.send(ctx, cmd)
	if err != nil {
		return err
	}
	r := resp.(*terminalCmd.CreateContainerResponse)
	s.printf("✓ Container %s (%s, %s) added to %s, %d in store\n",
		r.Container.Code, r.Container.Variant, r.Container.Goods, r.Store, r.StoreSize)
	return nil
}

func (s *session) removeContainer(ctx context.Context, code string) error {
	resp, err := s.send(ctx, &terminalCmd.RemoveContainerCommand{Code: code})
	if err != nil {
		return err
	}
	r := resp.(*terminalCmd.RemoveContainerResponse)
	s.printf("✓ Container %s removed from %s, %d registered\n", r.Code, r.From, r.RegistrySize)
	return nil
}

func (s *session) printStatus(ctx context.Context, detailed bool) error {
	view, err := s.routeView(ctx)
	if err != nil {
		return err
	}
	formatter := *s.formatter
	formatter.detailed = detailed
	s.printf("%s", formatter.FormatRoute(view))
	return nil
}

func (s *session) printRegistry(ctx context.Context, state container.State) error {
	resp, err := s.send(ctx, &terminalQuery.ListRegistryQuery{State: state})
	if err != nil {
		return err
	}
	r := resp.(*terminalQuery.ListRegistryResponse)
	s.printf("%s", s.formatter.FormatContainers(r.Containers))
	s.printf("\nTotal: %d containers\n", r.Total)
	return nil
}

func (s *session) printMovements(ctx context.Context, code string, limit int) error {
	resp, err := s.send(ctx, &terminalQuery.ListMovementsQuery{Code: code, Limit: limit})
	if err != nil {
		return err
	}
	r := resp.(*terminalQuery.ListMovementsResponse)
	s.printf("%s", s.formatter.FormatMovements(r.Movements))
	return nil
}

func (s *session) routeView(ctx context.Context) (RouteView, error) {
	shipResp, err := s.send(ctx, &shipQuery.GetShipStatusQuery{})
	if err != nil {
		return RouteView{}, err
	}
	occResp, err := s.send(ctx, &terminalQuery.GetOccupancyQuery{})
	if err != nil {
		return RouteView{}, err
	}

	view := RouteView{
		Ship:      shipResp.(*shipQuery.GetShipStatusResponse).Status,
		Terminals: occResp.(*terminalQuery.GetOccupancyResponse).Terminals,
		Registry:  s.system.Registry().Len(),
	}
	for _, w := range s.system.Workers() {
		view.Workers = append(view.Workers, w.Stats())
	}
	return view, nil
}

func (s *session) send(ctx context.Context, request common.Request) (common.Response, error) {
	return s.system.Send(ctx, request)
}

// parseState maps a user-typed state name such as "full-export" to a container state
func parseState(name string) (container.State, error) {
	if name == "" {
		return "", nil
	}
	state := container.State(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_")))
	switch state {
	case container.StateEmpty, container.StateFullImport, container.StateFullExport:
		return state, nil
	}
	return "", fmt.Errorf("unknown container state %q (empty, full-import, full-export)", name)
}
