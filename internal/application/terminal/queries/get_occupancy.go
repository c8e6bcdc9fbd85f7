package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

// GetOccupancyQuery asks for the occupancy of every terminal
type GetOccupancyQuery struct{}

// GetOccupancyResponse lists one occupancy view per port, in configuration order
type GetOccupancyResponse struct {
	Terminals []storage.Occupancy
}

// GetOccupancyHandler handles the GetOccupancy query
type GetOccupancyHandler struct {
	terminals []*storage.Terminal
}

// NewGetOccupancyHandler creates a new GetOccupancyHandler
func NewGetOccupancyHandler(terminals []*storage.Terminal) *GetOccupancyHandler {
	return &GetOccupancyHandler{terminals: terminals}
}

// Handle executes the GetOccupancy query
func (h *GetOccupancyHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*GetOccupancyQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetOccupancyQuery")
	}

	resp := &GetOccupancyResponse{}
	for _, t := range h.terminals {
		resp.Terminals = append(resp.Terminals, t.Occupancy())
	}
	return resp, nil
}
