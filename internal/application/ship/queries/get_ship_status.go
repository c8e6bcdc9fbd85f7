package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
)

// GetShipStatusQuery represents a query for the ship's current status
type GetShipStatusQuery struct{}

// GetShipStatusResponse represents the result of the ship status query
type GetShipStatusResponse struct {
	Status navigation.Status
	// OperationsAllowed is false with a reason when captain operations would be refused
	OperationsAllowed bool
	Reason            string
}

// GetShipStatusHandler handles the GetShipStatus query
type GetShipStatusHandler struct {
	ship *navigation.CargoShip
}

// NewGetShipStatusHandler creates a new GetShipStatusHandler
func NewGetShipStatusHandler(ship *navigation.CargoShip) *GetShipStatusHandler {
	return &GetShipStatusHandler{ship: ship}
}

// Handle executes the GetShipStatus query
func (h *GetShipStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*GetShipStatusQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetShipStatusQuery")
	}

	resp := &GetShipStatusResponse{
		Status:            h.ship.Status(),
		OperationsAllowed: true,
	}
	if err := h.ship.EnsureOperationsAllowed(); err != nil {
		resp.OperationsAllowed = false
		resp.Reason = err.Error()
	}
	return resp, nil
}
