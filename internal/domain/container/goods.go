package container

import (
	"strings"

	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

// GoodsCategory routes a container to the matching warehouse processor
type GoodsCategory string

const (
	GoodsClothing    GoodsCategory = "CLOTHING"
	GoodsElectronics GoodsCategory = "ELECTRONICS"
	GoodsFood        GoodsCategory = "FOOD"
	GoodsFurniture   GoodsCategory = "FURNITURE"
	GoodsNone        GoodsCategory = "NONE"
)

// ProcessingOrder is the fixed round in which haulage visits the categories.
var ProcessingOrder = []GoodsCategory{
	GoodsClothing,
	GoodsFood,
	GoodsElectronics,
	GoodsFurniture,
}

func (g GoodsCategory) IsCargo() bool {
	switch g {
	case GoodsClothing, GoodsElectronics, GoodsFood, GoodsFurniture:
		return true
	}
	return false
}

// ParseGoodsCategory resolves a category by name, case-insensitively.
// An empty name means GoodsNone.
func ParseGoodsCategory(name string) (GoodsCategory, error) {
	if strings.TrimSpace(name) == "" {
		return GoodsNone, nil
	}
	g := GoodsCategory(strings.ToUpper(strings.TrimSpace(name)))
	if g == GoodsNone || g.IsCargo() {
		return g, nil
	}
	return "", shared.NewValidationError("goods", "unknown goods category: "+name)
}
