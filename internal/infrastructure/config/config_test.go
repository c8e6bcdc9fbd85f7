package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesSimulationPresets(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"Bari", "Busan"}, cfg.Ports.Names)
	assert.Equal(t, "Bari", cfg.Ports.InitialDestination)
	assert.Equal(t, "HELEN III", cfg.Ports.ShipName)
	assert.Equal(t, 10, cfg.Capacity.Ship)
	assert.Equal(t, 15, cfg.Capacity.ImportCeiling)
	assert.Equal(t, 10, cfg.Capacity.ExportFloor)
	assert.Equal(t, 10, cfg.Capacity.ExportCeiling)
	assert.Equal(t, 20, cfg.Capacity.RegistryFloor)
	assert.Equal(t, 5*time.Second, cfg.Haulage.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Haulage.StartupDelay)
	assert.Equal(t, 5, cfg.Haulage.TriggerThreshold)
	assert.True(t, cfg.Seed.Enabled)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfig_FromFile(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "portsim.yaml")
	content := `
ports:
  names: [Genoa, Rotterdam]
  initial_destination: Genoa
capacity:
  ship: 6
  import_ceiling: 8
haulage:
  poll_interval: 250ms
  trigger_threshold: 3
seed:
  enabled: false
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Act
	cfg, err := LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"Genoa", "Rotterdam"}, cfg.Ports.Names)
	assert.Equal(t, "Genoa", cfg.Ports.InitialDestination)
	assert.Equal(t, 6, cfg.Capacity.Ship)
	assert.Equal(t, 8, cfg.Capacity.ImportCeiling)
	assert.Equal(t, 10, cfg.Capacity.ExportFloor)
	assert.Equal(t, 250*time.Millisecond, cfg.Haulage.PollInterval)
	assert.Equal(t, 3, cfg.Haulage.TriggerThreshold)
	assert.False(t, cfg.Seed.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "portsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capacity:\n  ship: 6\n"), 0o600))
	t.Setenv("PORTSIM_CAPACITY_SHIP", "12")
	t.Setenv("PORTSIM_HAULAGE_TRIGGER_THRESHOLD", "7")

	// Act
	cfg, err := LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Capacity.Ship)
	assert.Equal(t, 7, cfg.Haulage.TriggerThreshold)
}

func TestValidateConfig_RejectsBadPorts(t *testing.T) {
	cfg := Default()
	cfg.Ports.Names = []string{"Bari", "bari"}
	assert.Error(t, ValidateConfig(cfg))

	cfg = Default()
	cfg.Ports.InitialDestination = "Genoa"
	assert.Error(t, ValidateConfig(cfg))

	cfg = Default()
	cfg.Ports.Names = []string{"Bari"}
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_RejectsCeilingBelowFloor(t *testing.T) {
	cfg := Default()
	cfg.Capacity.ExportFloor = 10
	cfg.Capacity.ExportCeiling = 5

	err := ValidateConfig(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ExportCeiling")
}

func TestLoadConfig_InvalidFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o600))

	_, err := LoadConfig(path)

	assert.Error(t, err)
	assert.NotNil(t, LoadConfigOrDefault(path))
}

func TestLoadConfig_MovementLogAndSampling(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "portsim.yaml")
	content := `
database:
  type: sqlite
  path: movements.db
  log_queries: true
  pool:
    max_open: 4
    max_idle: 3
metrics:
  sample_interval: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Act
	cfg, err := LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "movements.db", cfg.Database.Path)
	assert.True(t, cfg.Database.LogQueries)
	assert.Equal(t, 4, cfg.Database.Pool.MaxOpen)
	assert.Equal(t, 3, cfg.Database.Pool.MaxIdle)
	assert.Equal(t, 5*time.Minute, cfg.Database.Pool.MaxLifetime)
	assert.Equal(t, 2*time.Second, cfg.Metrics.SampleInterval)
}

func TestDefault_SamplesPortMetricsEveryFiveSeconds(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5*time.Second, cfg.Metrics.SampleInterval)
	assert.False(t, cfg.Database.LogQueries)
}

func TestValidateConfig_RejectsIdlePoolLargerThanOpen(t *testing.T) {
	cfg := Default()
	cfg.Database.Pool.MaxOpen = 2
	cfg.Database.Pool.MaxIdle = 5

	err := ValidateConfig(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxIdle")
}

func TestValidateConfig_RejectsTooFrequentMetricsSampling(t *testing.T) {
	cfg := Default()
	cfg.Metrics.SampleInterval = time.Millisecond

	err := ValidateConfig(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SampleInterval")
}
