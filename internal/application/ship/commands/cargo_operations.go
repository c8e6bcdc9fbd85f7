package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/application/ship/types"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
)

// UnloadHandler - Runs the unload cycle against the destination import store
type UnloadHandler struct {
	ship *navigation.CargoShip
}

// NewUnloadHandler creates a new unload handler
func NewUnloadHandler(ship *navigation.CargoShip) *UnloadHandler {
	return &UnloadHandler{ship: ship}
}

// Handle executes the unload command. A partial unload is not an error: the
// ship stays docked for import with the remainder aboard.
func (h *UnloadHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*types.UnloadCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	result, err := h.ship.Unload()
	if err != nil {
		return nil, err
	}

	port := h.ship.Destination()
	logger := common.LoggerFromContext(ctx)
	if result.Remaining > 0 {
		logger.Log(common.LevelWarning, fmt.Sprintf("%s import terminal is full, %d containers remain aboard", port, result.Remaining), map[string]interface{}{
			"action":    "unload_partial",
			"unloaded":  result.Unloaded,
			"remaining": result.Remaining,
		})
	} else {
		logger.Log(common.LevelInfo, fmt.Sprintf("unloaded %d containers at %s", result.Unloaded, port), map[string]interface{}{
			"action":   "unload_completed",
			"unloaded": result.Unloaded,
		})
	}

	return &types.UnloadResponse{
		Unloaded:  result.Unloaded,
		Remaining: result.Remaining,
		State:     result.State,
		Port:      port,
	}, nil
}

// ExportHandler - Runs the export cycle against the destination export store
type ExportHandler struct {
	ship *navigation.CargoShip
}

// NewExportHandler creates a new export handler
func NewExportHandler(ship *navigation.CargoShip) *ExportHandler {
	return &ExportHandler{ship: ship}
}

// Handle executes the export command
func (h *ExportHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*types.ExportCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	loaded, err := h.ship.Export()
	if err != nil {
		return nil, err
	}

	port := h.ship.Destination()
	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("loaded %d containers at %s", loaded, port), map[string]interface{}{
		"action": "export_completed",
		"loaded": loaded,
	})

	return &types.ExportResponse{
		Loaded:  loaded,
		Onboard: h.ship.OnboardCount(),
		Port:    port,
	}, nil
}
