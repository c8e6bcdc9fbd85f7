package port

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/portlogistics-go/internal/application/haulage"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

// Settings describes one simulated route: two ports, one ship, two haulage workers
type Settings struct {
	Ports              [2]string
	InitialDestination string
	ShipName           string
	ShipCapacity       int
	Limits             storage.Limits
	RegistryFloor      int
	Haulage            haulage.Config
	Seed               bool
}

// DefaultSettings returns the Bari/Busan route with the standard capacities
func DefaultSettings() Settings {
	return Settings{
		Ports:              [2]string{"Bari", "Busan"},
		InitialDestination: "Bari",
		ShipName:           navigation.DefaultShipName,
		ShipCapacity:       navigation.DefaultShipCapacity,
		Limits:             storage.DefaultLimits(),
		RegistryFloor:      20,
		Haulage:            haulage.DefaultConfig(),
		Seed:               true,
	}
}

func (s Settings) validate() error {
	for _, p := range s.Ports {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("port names cannot be empty")
		}
	}
	if strings.EqualFold(s.Ports[0], s.Ports[1]) {
		return fmt.Errorf("ports must be distinct, got %q twice", s.Ports[0])
	}
	if s.RegistryFloor < 0 {
		return fmt.Errorf("registry floor cannot be negative, got %d", s.RegistryFloor)
	}
	return s.Limits.Validate()
}
