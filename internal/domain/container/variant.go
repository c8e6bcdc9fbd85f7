package container

import (
	"strings"

	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

// Variant holds the fixed physical dimensions and weights of a container type
type Variant struct {
	Name         string
	TareWeightKg int
	HeightM      float64
	MaxPayloadKg int
}

var (
	Box = Variant{
		Name:         "Box",
		TareWeightKg: 2220,
		HeightM:      1.2,
		MaxPayloadKg: 21000,
	}

	HighCube = Variant{
		Name:         "HighCube",
		TareWeightKg: 3700,
		HeightM:      1.7,
		MaxPayloadKg: 25000,
	}
)

// GrossWeightKg is the weight of a fully loaded container
func (v Variant) GrossWeightKg() int {
	return v.TareWeightKg + v.MaxPayloadKg
}

// ParseVariant resolves a variant by name, case-insensitively.
// "high-cube" and "high_cube" are accepted for HighCube.
func ParseVariant(name string) (Variant, error) {
	normalized := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(name))
	switch normalized {
	case "box":
		return Box, nil
	case "highcube":
		return HighCube, nil
	default:
		return Variant{}, shared.NewValidationError("variant", "unknown container variant: "+name)
	}
}
