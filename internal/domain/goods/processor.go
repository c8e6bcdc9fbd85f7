package goods

import (
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
)

// ImportSource hands out full import containers by category
type ImportSource interface {
	WithdrawByCategory(goods container.GoodsCategory) (*container.Container, bool)
}

// EmptySource hands out empty containers for refilling
type EmptySource interface {
	WithdrawEmpty() (*container.Container, bool)
}

// ExportSink takes processed containers back
type ExportSink interface {
	DepositProcessed(c *container.Container)
}

// ExportStock is the export-side store a processor borrows from and returns to
type ExportStock interface {
	EmptySource
	ExportSink
}

// ImportProcessor empties inbound containers of one goods category.
//
// Steps run in order: Pick borrows a container from the import store, Unload
// empties it, Retrieve returns it to the export store. Processors never lock
// across stores; each store guards its own step.
type ImportProcessor interface {
	Category() container.GoodsCategory
	Pick(source ImportSource) (*container.Container, bool)
	Unload(c *container.Container)
	Retrieve(sink ExportSink, c *container.Container)
}

// ExportProcessor fills empty containers with goods of one category.
//
// Steps run in order: Request borrows an empty container from the export
// store, Load fills it, Retrieve returns it to the export store.
type ExportProcessor interface {
	Category() container.GoodsCategory
	Request(source EmptySource) (*container.Container, bool)
	Load(c *container.Container)
	Retrieve(sink ExportSink, c *container.Container)
}

// RunImport drives one import pass. Returns the processed container, or false
// when the import store had nothing of this category.
func RunImport(p ImportProcessor, source ImportSource, sink ExportSink) (*container.Container, bool) {
	c, ok := p.Pick(source)
	if !ok {
		return nil, false
	}
	p.Unload(c)
	p.Retrieve(sink, c)
	return c, true
}

// RunExport drives one export pass. Returns the refilled container, or false
// when the export store had no empty container.
func RunExport(p ExportProcessor, stock ExportStock) (*container.Container, bool) {
	c, ok := p.Request(stock)
	if !ok {
		return nil, false
	}
	p.Load(c)
	p.Retrieve(stock, c)
	return c, true
}
