package container

import (
	"fmt"
	"sync"
)

// State is the lifecycle state of a shipping container
type State string

const (
	StateEmpty      State = "EMPTY"
	StateFullImport State = "FULL_IMPORT"
	StateFullExport State = "FULL_EXPORT"
)

// Container is a single shipping container moving through the two ports.
//
// The code is immutable after creation. State, goods and location are mutated
// by whichever store, processor or ship currently owns the container; those
// owners serialise their own membership changes, the container only guards its
// attribute reads against concurrent display.
type Container struct {
	mu sync.RWMutex

	code     string
	variant  Variant
	goods    GoodsCategory
	state    State
	location string
}

// NewContainer creates a container after validating its code.
func NewContainer(code string, variant Variant, goods GoodsCategory, state State) (*Container, error) {
	if err := ValidateCode(code); err != nil {
		return nil, err
	}
	if variant.Name == "" {
		return nil, fmt.Errorf("container variant is required")
	}
	if goods == "" {
		goods = GoodsNone
	}
	if state == "" {
		state = StateEmpty
	}

	return &Container{
		code:    code,
		variant: variant,
		goods:   goods,
		state:   state,
	}, nil
}

// Getters

func (c *Container) Code() string     { return c.code }
func (c *Container) Variant() Variant { return c.variant }

func (c *Container) Goods() GoodsCategory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.goods
}

func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Container) Location() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.location
}

// Mutators

func (c *Container) SetState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

func (c *Container) SetGoods(goods GoodsCategory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goods = goods
}

func (c *Container) SetLocation(location string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = location
}

// Fill loads the container with outbound goods and marks it ready for export.
func (c *Container) Fill(goods GoodsCategory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goods = goods
	c.state = StateFullExport
}

// Unload empties the container. The goods tag is cleared.
func (c *Container) Unload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goods = GoodsNone
	c.state = StateEmpty
}

// Snapshot is a point-in-time copy of a container's attributes
type Snapshot struct {
	Code     string
	Variant  string
	Goods    GoodsCategory
	State    State
	Location string
}

// Snapshot returns a consistent copy of the container's attributes.
// Thread-safe.
func (c *Container) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Code:     c.code,
		Variant:  c.variant.Name,
		Goods:    c.goods,
		State:    c.state,
		Location: c.location,
	}
}

func (c *Container) String() string {
	s := c.Snapshot()
	return fmt.Sprintf("%s %s [%s, %s] @ %s", s.Variant, s.Code, s.State, s.Goods, s.Location)
}
