package container_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

func newBox(t *testing.T, code string) *container.Container {
	t.Helper()
	c, err := container.NewContainer(code, container.Box, container.GoodsNone, container.StateEmpty)
	require.NoError(t, err)
	return c
}

func TestRegistry_AddRejectsDuplicateCode(t *testing.T) {
	// Arrange
	registry := container.NewRegistry()
	require.NoError(t, registry.Add(newBox(t, "MSDU12345678")))

	// Act
	err := registry.Add(newBox(t, "MSDU12345678"))

	// Assert
	var consistencyErr *shared.ConsistencyError
	require.True(t, errors.As(err, &consistencyErr))
	assert.Equal(t, shared.DuplicateEntity, consistencyErr.Kind)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_RemoveIsNoOpWhenAbsent(t *testing.T) {
	registry := container.NewRegistry()
	member := newBox(t, "MSDU12345678")
	require.NoError(t, registry.Add(member))

	registry.Remove(newBox(t, "NORU12345678"))
	registry.Remove(nil)

	assert.Equal(t, 1, registry.Len())
	assert.True(t, registry.Contains("msdu12345678"))
}

func TestRegistry_RemoveDropsMember(t *testing.T) {
	registry := container.NewRegistry()
	member := newBox(t, "MSDU12345678")
	require.NoError(t, registry.Add(member))

	registry.Remove(member)

	assert.Equal(t, 0, registry.Len())
	_, found := registry.Find("MSDU12345678")
	assert.False(t, found)
}

func TestRegistry_IterationIsDetachedFromMutation(t *testing.T) {
	// Arrange
	registry := container.NewRegistry()
	for i := 1; i <= 3; i++ {
		require.NoError(t, registry.Add(newBox(t, fmt.Sprintf("ABCD%08d", i))))
	}

	// Act: remove every member while ranging
	visited := 0
	for c := range registry.All() {
		registry.Remove(c)
		visited++
	}

	// Assert
	assert.Equal(t, 3, visited)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_IterationIsRestartable(t *testing.T) {
	registry := container.NewRegistry()
	require.NoError(t, registry.Add(newBox(t, "ABCD00000001")))
	require.NoError(t, registry.Add(newBox(t, "ABCD00000002")))

	seq := registry.All()
	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}

	assert.Equal(t, 2, first)
	assert.Equal(t, 2, second)
}

func TestRegistry_ConcurrentInsertionsKeepEveryCodeOnce(t *testing.T) {
	// Arrange
	registry := container.NewRegistry()
	const workers = 8
	const perWorker = 250

	var wg sync.WaitGroup
	var mu sync.Mutex
	duplicates := 0

	// Act: every worker inserts the same code range; exactly one insert per code wins
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c, err := container.NewContainer(fmt.Sprintf("LOAD%08d", i), container.Box, container.GoodsNone, container.StateEmpty)
				if err != nil {
					panic(err)
				}
				if err := registry.Add(c); err != nil {
					mu.Lock()
					duplicates++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, perWorker, registry.Len())
	assert.Equal(t, perWorker*(workers-1), duplicates)
}

func TestRegistry_TracksRegistration(t *testing.T) {
	var kinds []container.MovementKind
	registry := container.NewRegistry(container.WithRegistryTracker(container.TrackerFunc(func(m container.Movement) {
		kinds = append(kinds, m.Kind)
	})))
	member := newBox(t, "MSDU12345678")

	require.NoError(t, registry.Add(member))
	registry.Remove(member)

	assert.Equal(t, []container.MovementKind{container.MovementRegistered, container.MovementDeregistered}, kinds)
}
