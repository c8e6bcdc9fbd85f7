package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/application/ship/types"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
)

// RequestDockHandler - Handles docking requests
type RequestDockHandler struct {
	ship *navigation.CargoShip
}

// NewRequestDockHandler creates a new request dock handler
func NewRequestDockHandler(ship *navigation.CargoShip) *RequestDockHandler {
	return &RequestDockHandler{ship: ship}
}

// Handle executes the request dock command
func (h *RequestDockHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*types.RequestDockCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	req, err := h.ship.RequestDocking()
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("%s requests docking at %s", req.Requester, req.Target), map[string]interface{}{
		"action":     "docking_requested",
		"request_id": req.ID,
		"port":       req.Target,
	})
	return handshakeResponse(h.ship, req), nil
}

// ConfirmDockHandler - Applies the port's answer to a docking request
type ConfirmDockHandler struct {
	ship *navigation.CargoShip
}

// NewConfirmDockHandler creates a new confirm dock handler
func NewConfirmDockHandler(ship *navigation.CargoShip) *ConfirmDockHandler {
	return &ConfirmDockHandler{ship: ship}
}

// Handle executes the confirm dock command
func (h *ConfirmDockHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*types.ConfirmDockCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	req, err := h.ship.ConfirmDocking(cmd.Granted)
	if err != nil {
		return nil, err
	}

	logDecision(ctx, req, "docking")
	return handshakeResponse(h.ship, req), nil
}

func handshakeResponse(ship *navigation.CargoShip, req navigation.Request) *types.HandshakeResponse {
	return &types.HandshakeResponse{
		Request:     req,
		State:       ship.State(),
		Destination: ship.Destination(),
	}
}

func logDecision(ctx context.Context, req navigation.Request, what string) {
	level := common.LevelInfo
	if !req.Granted() {
		level = common.LevelWarning
	}
	common.LoggerFromContext(ctx).Log(level, fmt.Sprintf("%s %s %s by %s", req.Requester, what, req.Decision, req.Target), map[string]interface{}{
		"action":     "handshake_decided",
		"request_id": req.ID,
		"kind":       string(req.Kind),
		"decision":   string(req.Decision),
	})
}
