package port

import (
	"fmt"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
)

type seedEntry struct {
	code    string
	variant container.Variant
	goods   container.GoodsCategory
}

// Export stock of the first and second port
var seedExports = [2][]seedEntry{
	{
		{"MSDU12345678", container.HighCube, container.GoodsClothing},
		{"NORU12345678", container.HighCube, container.GoodsClothing},
		{"EGSU12345678", container.HighCube, container.GoodsElectronics},
		{"MDNU12345678", container.HighCube, container.GoodsElectronics},
		{"EGHU12345678", container.HighCube, container.GoodsFood},
		{"MSDU87654311", container.Box, container.GoodsFood},
		{"NORU87654311", container.Box, container.GoodsFurniture},
		{"EGSU87654311", container.Box, container.GoodsFurniture},
		{"MDNU87654311", container.Box, container.GoodsElectronics},
		{"EGHU87654311", container.Box, container.GoodsElectronics},
	},
	{
		{"TLLU12345678", container.HighCube, container.GoodsElectronics},
		{"IMNU12345678", container.HighCube, container.GoodsElectronics},
		{"UHHU12345678", container.HighCube, container.GoodsClothing},
		{"TXGU12345678", container.HighCube, container.GoodsClothing},
		{"SEKU12345678", container.HighCube, container.GoodsFood},
		{"TLLU87654322", container.Box, container.GoodsFood},
		{"IMNU87654322", container.Box, container.GoodsFurniture},
		{"UHHU87654322", container.Box, container.GoodsFurniture},
		{"TXGU87654322", container.Box, container.GoodsElectronics},
		{"SEKU87654322", container.Box, container.GoodsElectronics},
	},
}

// seedShipGoods cycles through the categories for the ship's initial hold
var seedShipGoods = []container.GoodsCategory{
	container.GoodsClothing,
	container.GoodsFood,
	container.GoodsElectronics,
	container.GoodsFurniture,
}

// Seed creates the initial load: ten full export containers in each export
// store and a full hold of import containers aboard the ship. Export stock
// beyond a store's admission ceiling is skipped; the ship's hold is filled up
// to its capacity.
func Seed(s *System) error {
	for i, terminal := range s.terminals {
		store := terminal.Exports()
		for _, entry := range seedExports[i] {
			if store.Len() >= store.Ceiling() {
				break
			}
			c, err := s.factory.Create(entry.variant, entry.code, entry.goods)
			if err != nil {
				return err
			}
			if err := store.TryAdmit(c); err != nil {
				return fmt.Errorf("seed %s: %w", entry.code, err)
			}
		}
	}

	for i := 0; i < s.ship.Capacity(); i++ {
		code := fmt.Sprintf("AAAA%08d", i+1)
		goods := seedShipGoods[i%len(seedShipGoods)]
		c, err := container.NewContainer(code, container.Box, goods, container.StateFullImport)
		if err != nil {
			return err
		}
		c.SetLocation(s.ship.Location())
		if err := s.registry.Add(c); err != nil {
			return fmt.Errorf("seed %s: %w", code, err)
		}
		if !s.ship.PickFromTerminal(c) {
			s.registry.Remove(c)
			break
		}
	}
	s.ship.ResetOperationStatus()
	return nil
}
