package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"canonical", "MSDU12345678", true},
		{"lower case letters", "msdu12345678", false},
		{"too few digits", "MSDU1234567", false},
		{"digits first", "12345678MSDU", false},
		{"five letters", "MSDUX2345678", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := container.ValidateCode(tt.code)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var validationErr *shared.ValidationError
			assert.True(t, errors.As(err, &validationErr))
		})
	}
}

func TestBuildCode_NormalisesOperatorInput(t *testing.T) {
	// Act
	code, err := container.BuildCode("a-b c9d", 42)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ABCD00000042", code)
}

func TestBuildCode_RejectsWrongLetterCount(t *testing.T) {
	_, err := container.BuildCode("ab1", 1)
	require.Error(t, err)

	_, err = container.BuildCode("abcde", 1)
	require.Error(t, err)
}

func TestBuildCode_RejectsOutOfRangeNumber(t *testing.T) {
	_, err := container.BuildCode("abcd", -1)
	require.Error(t, err)

	_, err = container.BuildCode("abcd", 100000000)
	require.Error(t, err)
}

func TestCanonicalCode(t *testing.T) {
	assert.Equal(t, "MSDU12345678", container.CanonicalCode(" msdu-1234 5678 "))
}

func TestFactory_CreateFromInput(t *testing.T) {
	factory := container.NewFactory()

	// Act
	full, err := factory.CreateFromInput("high-cube", "tllu", 7, "food")
	require.NoError(t, err)
	empty, err := factory.CreateFromInput("box", "imnu", 8, "")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "TLLU00000007", full.Code())
	assert.Equal(t, container.HighCube, full.Variant())
	assert.Equal(t, container.StateFullExport, full.State())
	assert.Equal(t, container.GoodsFood, full.Goods())

	assert.Equal(t, container.StateEmpty, empty.State())
	assert.Equal(t, container.GoodsNone, empty.Goods())
	assert.Equal(t, 2220+21000, empty.Variant().GrossWeightKg())
}

func TestFactory_RejectsUnknownVariantAndGoods(t *testing.T) {
	factory := container.NewFactory()

	_, err := factory.CreateFromInput("tanker", "abcd", 1, "")
	assert.Error(t, err)

	_, err = factory.CreateFromInput("box", "abcd", 1, "spices")
	assert.Error(t, err)
}
