package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
)

const defaultMovementLimit = 20

// ListMovementsQuery reads the movement log
type ListMovementsQuery struct {
	Code  string // Optional: only this container's movements
	Limit int    // Optional: defaults to 20
}

// ListMovementsResponse holds movements, newest first
type ListMovementsResponse struct {
	Movements []container.Movement
}

// ListMovementsHandler handles the ListMovements query
type ListMovementsHandler struct {
	repo container.MovementRepository
}

// NewListMovementsHandler creates a new ListMovementsHandler
func NewListMovementsHandler(repo container.MovementRepository) *ListMovementsHandler {
	return &ListMovementsHandler{repo: repo}
}

// Handle executes the ListMovements query
func (h *ListMovementsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListMovementsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListMovementsQuery")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultMovementLimit
	}

	var (
		movements []container.Movement
		err       error
	)
	if query.Code != "" {
		movements, err = h.repo.ByCode(ctx, container.CanonicalCode(query.Code), limit)
	} else {
		movements, err = h.repo.Latest(ctx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read movements: %w", err)
	}
	return &ListMovementsResponse{Movements: movements}, nil
}
