package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
)

// ListRegistryQuery lists every container in the system
type ListRegistryQuery struct {
	// State filters by lifecycle state when set
	State container.State
}

// ListRegistryResponse holds the matching containers in registration order
type ListRegistryResponse struct {
	Containers []container.Snapshot
	Total      int
}

// ListRegistryHandler handles the ListRegistry query
type ListRegistryHandler struct {
	registry *container.Registry
}

// NewListRegistryHandler creates a new ListRegistryHandler
func NewListRegistryHandler(registry *container.Registry) *ListRegistryHandler {
	return &ListRegistryHandler{registry: registry}
}

// Handle executes the ListRegistry query
func (h *ListRegistryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListRegistryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListRegistryQuery")
	}

	resp := &ListRegistryResponse{}
	for c := range h.registry.All() {
		resp.Total++
		snap := c.Snapshot()
		if query.State != "" && snap.State != query.State {
			continue
		}
		resp.Containers = append(resp.Containers, snap)
	}
	return resp, nil
}
