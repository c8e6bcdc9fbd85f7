package goods

import (
	"fmt"
	"strings"
	"sync"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
)

// Warehouse processes containers of a single goods category in both
// directions. It keeps the containers it has borrowed until they are returned
// and counts the goods it has received and dispatched.
type Warehouse struct {
	mu sync.Mutex

	port     string
	category container.GoodsCategory
	borrowed []*container.Container

	received   int
	dispatched int
}

func NewWarehouse(port string, category container.GoodsCategory) (*Warehouse, error) {
	if strings.TrimSpace(port) == "" {
		return nil, fmt.Errorf("warehouse port is required")
	}
	if !category.IsCargo() {
		return nil, fmt.Errorf("warehouse category must be a cargo category, got %s", category)
	}
	return &Warehouse{port: port, category: category}, nil
}

func (w *Warehouse) Category() container.GoodsCategory { return w.category }

// Name is the location tag of containers held by the warehouse
func (w *Warehouse) Name() string {
	return fmt.Sprintf("%s %s warehouse", w.port, strings.ToLower(string(w.category)))
}

// Pick borrows the first full import container of this category
func (w *Warehouse) Pick(source ImportSource) (*container.Container, bool) {
	c, ok := source.WithdrawByCategory(w.category)
	if !ok {
		return nil, false
	}
	w.hold(c)
	return c, true
}

// Unload empties the container into the warehouse
func (w *Warehouse) Unload(c *container.Container) {
	c.Unload()
	w.mu.Lock()
	w.received++
	w.mu.Unlock()
}

// Request borrows an empty container to fill
func (w *Warehouse) Request(source EmptySource) (*container.Container, bool) {
	c, ok := source.WithdrawEmpty()
	if !ok {
		return nil, false
	}
	w.hold(c)
	return c, true
}

// Load fills the container with this warehouse's goods, ready for export
func (w *Warehouse) Load(c *container.Container) {
	c.Fill(w.category)
	w.mu.Lock()
	w.dispatched++
	w.mu.Unlock()
}

// Retrieve returns a borrowed container to the export store
func (w *Warehouse) Retrieve(sink ExportSink, c *container.Container) {
	w.mu.Lock()
	for i, member := range w.borrowed {
		if member == c {
			w.borrowed = append(w.borrowed[:i], w.borrowed[i+1:]...)
			break
		}
	}
	w.mu.Unlock()
	sink.DepositProcessed(c)
}

func (w *Warehouse) hold(c *container.Container) {
	c.SetLocation(w.Name())
	w.mu.Lock()
	w.borrowed = append(w.borrowed, c)
	w.mu.Unlock()
}

// Stats is the warehouse's bookkeeping at a point in time
type Stats struct {
	Category   container.GoodsCategory
	Borrowed   int
	Received   int
	Dispatched int
}

func (w *Warehouse) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		Category:   w.category,
		Borrowed:   len(w.borrowed),
		Received:   w.received,
		Dispatched: w.dispatched,
	}
}

// NewWarehouses creates one warehouse per cargo category, in processing order
func NewWarehouses(port string) ([]*Warehouse, error) {
	out := make([]*Warehouse, 0, len(container.ProcessingOrder))
	for _, category := range container.ProcessingOrder {
		w, err := NewWarehouse(port, category)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s warehouse: %w", strings.ToLower(string(category)), err)
		}
		out = append(out, w)
	}
	return out, nil
}
