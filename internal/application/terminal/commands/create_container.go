package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

// CreateContainerCommand - Operator creates a container and adds it to a
// port's export store
type CreateContainerCommand struct {
	Port    string `validate:"required"`
	Variant string `validate:"required"`
	Letters string `validate:"required"`
	Number  int    `validate:"gte=0,lte=99999999"`
	Goods   string
}

// CreateContainerResponse - Response from create container command
type CreateContainerResponse struct {
	Container container.Snapshot
	Store     string
	StoreSize int
}

// CreateContainerHandler - Handles create container commands
type CreateContainerHandler struct {
	terminals []*storage.Terminal
	factory   *container.Factory
	validate  *validator.Validate
}

// NewCreateContainerHandler creates a new create container handler
func NewCreateContainerHandler(terminals []*storage.Terminal, factory *container.Factory) *CreateContainerHandler {
	return &CreateContainerHandler{
		terminals: terminals,
		factory:   factory,
		validate:  validator.New(),
	}
}

// Handle executes the create container command
func (h *CreateContainerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CreateContainerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	if err := h.validate.Struct(cmd); err != nil {
		return nil, toValidationError(err)
	}

	terminal, err := FindTerminal(h.terminals, cmd.Port)
	if err != nil {
		return nil, err
	}

	c, err := h.factory.CreateFromInput(cmd.Variant, cmd.Letters, cmd.Number, cmd.Goods)
	if err != nil {
		return nil, err
	}

	store := terminal.Exports()
	if err := store.TryAdmit(c); err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelWarning, fmt.Sprintf("container %s refused by %s: %v", c.Code(), store.Name(), err), map[string]interface{}{
			"action": "container_refused",
			"code":   c.Code(),
		})
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("container %s added to %s", c.Code(), store.Name()), map[string]interface{}{
		"action":  "container_created",
		"code":    c.Code(),
		"variant": c.Variant().Name,
		"goods":   string(c.Goods()),
	})

	return &CreateContainerResponse{
		Container: c.Snapshot(),
		Store:     store.Name(),
		StoreSize: store.Len(),
	}, nil
}

// FindTerminal looks a terminal up by port name, case-insensitively
func FindTerminal(terminals []*storage.Terminal, port string) (*storage.Terminal, error) {
	for _, t := range terminals {
		if strings.EqualFold(t.Port(), strings.TrimSpace(port)) {
			return t, nil
		}
	}
	return nil, shared.NewValidationError("port", fmt.Sprintf("unknown port %q", port))
}

func toValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return shared.NewValidationError(strings.ToLower(fe.Field()), fmt.Sprintf("failed %s validation", fe.Tag()))
	}
	return shared.NewValidationError("command", err.Error())
}
