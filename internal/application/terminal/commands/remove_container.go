package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

// Deletion guards, reported in DeletionDeniedError.Guard
const (
	GuardNotEmpty      = "container is not empty"
	GuardRegistryFloor = "registry is at its minimum population"
	GuardAboardShip    = "container is aboard the ship"
	GuardNotRemovable  = "container is in an import store or its export store is at the floor"
)

// RemoveContainerCommand - Operator deletes a container from the whole system
type RemoveContainerCommand struct {
	Code string
}

// RemoveContainerResponse - Response from remove container command
type RemoveContainerResponse struct {
	Code         string
	From         string
	RegistrySize int
}

// RemoveContainerHandler - Applies the deletion guards and removes the
// container from its export store and the registry.
//
// Guards, in order:
//  1. the code must be registered
//  2. the container must be empty
//  3. the registry must stay above its floor
//  4. the container must not be aboard the ship
//  5. one of the export stores must release it above its floor
type RemoveContainerHandler struct {
	registry      *container.Registry
	ship          *navigation.CargoShip
	terminals     []*storage.Terminal
	registryFloor int

	// Serialises removals so two deletions cannot both pass the floor check
	mu sync.Mutex
}

// NewRemoveContainerHandler creates a new remove container handler
func NewRemoveContainerHandler(registry *container.Registry, ship *navigation.CargoShip, terminals []*storage.Terminal, registryFloor int) *RemoveContainerHandler {
	return &RemoveContainerHandler{
		registry:      registry,
		ship:          ship,
		terminals:     terminals,
		registryFloor: registryFloor,
	}
}

// Handle executes the remove container command
func (h *RemoveContainerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RemoveContainerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c, found := h.registry.Find(cmd.Code)
	if !found {
		err := shared.NewEntityNotFoundError(container.CanonicalCode(cmd.Code))
		h.logRefusal(ctx, cmd.Code, err)
		return nil, err
	}

	if err := h.checkGuards(c); err != nil {
		h.logRefusal(ctx, c.Code(), err)
		return nil, err
	}

	from := c.Location()
	removed := false
	for _, t := range h.terminals {
		if t.Exports().RemoveIfAboveFloor(c) {
			removed = true
			break
		}
	}
	if !removed {
		err := shared.NewDeletionDeniedError(c.Code(), GuardNotRemovable)
		h.logRefusal(ctx, c.Code(), err)
		return nil, err
	}
	h.registry.Remove(c)

	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("container %s removed from the system", c.Code()), map[string]interface{}{
		"action": "container_removed",
		"code":   c.Code(),
		"from":   from,
	})

	return &RemoveContainerResponse{
		Code:         c.Code(),
		From:         from,
		RegistrySize: h.registry.Len(),
	}, nil
}

func (h *RemoveContainerHandler) checkGuards(c *container.Container) error {
	if c.State() != container.StateEmpty {
		return shared.NewDeletionDeniedError(c.Code(), GuardNotEmpty)
	}
	if h.registry.Len() <= h.registryFloor {
		return shared.NewDeletionDeniedError(c.Code(), GuardRegistryFloor)
	}
	if h.ship != nil && h.ship.Holds(c) {
		return shared.NewDeletionDeniedError(c.Code(), GuardAboardShip)
	}
	return nil
}

func (h *RemoveContainerHandler) logRefusal(ctx context.Context, code string, err error) {
	common.LoggerFromContext(ctx).Log(common.LevelWarning, fmt.Sprintf("removal of %s refused: %v", code, err), map[string]interface{}{
		"action": "container_removal_refused",
		"code":   code,
	})
}
