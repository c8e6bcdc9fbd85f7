package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/application/ship/types"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
)

// RequestUndockHandler - Handles undocking requests
type RequestUndockHandler struct {
	ship *navigation.CargoShip
}

// NewRequestUndockHandler creates a new request undock handler
func NewRequestUndockHandler(ship *navigation.CargoShip) *RequestUndockHandler {
	return &RequestUndockHandler{ship: ship}
}

// Handle executes the request undock command
func (h *RequestUndockHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*types.RequestUndockCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	req, err := h.ship.RequestUndocking()
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("%s requests undocking from %s", req.Requester, req.Target), map[string]interface{}{
		"action":     "undocking_requested",
		"request_id": req.ID,
		"port":       req.Target,
	})
	return handshakeResponse(h.ship, req), nil
}

// ConfirmUndockHandler - Applies the port's answer to an undocking request
type ConfirmUndockHandler struct {
	ship *navigation.CargoShip
}

// NewConfirmUndockHandler creates a new confirm undock handler
func NewConfirmUndockHandler(ship *navigation.CargoShip) *ConfirmUndockHandler {
	return &ConfirmUndockHandler{ship: ship}
}

// Handle executes the confirm undock command
func (h *ConfirmUndockHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*types.ConfirmUndockCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	req, err := h.ship.ConfirmUndocking(cmd.Granted)
	if err != nil {
		return nil, err
	}

	logDecision(ctx, req, "undocking")
	if req.Granted() {
		common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("%s sailing to %s", req.Requester, h.ship.Destination()), map[string]interface{}{
			"action":      "ship_departed",
			"destination": h.ship.Destination(),
		})
	}
	return handshakeResponse(h.ship, req), nil
}
