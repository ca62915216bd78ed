package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/kolgraph/models"
	"github.com/TFMV/kolgraph/physics"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kolgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, physics.DefaultParams(), cfg.PhysicsParams())
	assert.False(t, cfg.Jitter.Enabled)
	assert.IsType(t, physics.Pairwise{}, cfg.Repulsion())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
viewport:
  width: 400
  height: 400
physics:
  theta: 0.7
  seed: 12
jitter:
  enabled: true
server:
  addr: ":9090"
  read_timeout: 5s
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 400.0, cfg.Viewport.Width)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 0.01, cfg.Physics.Centering)
	assert.Equal(t, physics.BarnesHut{Theta: 0.7}, cfg.Repulsion())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative width", "viewport: {width: -1}", "Width"},
		{"zero floor", "physics: {distance_floor: 0}", "DistanceFloor"},
		{"fraction above one", "jitter: {fraction: 1.5}", "Fraction"},
		{"unknown level", "logging: {level: loud}", "Level"},
		{"fps too high", "loop: {fps: 1000}", "FPS"},
		{"negative create rate", "server: {create_rate: -1}", "CreateRate"},
		{"zero max nodes", "server: {max_nodes: 0}", "MaxNodes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "viewport: [nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KOLGRAPH_ADDR", "127.0.0.1:7000")
	t.Setenv("KOLGRAPH_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Viewport.Width = 1024
	cfg.Server.IdleTimeout = 3 * time.Minute

	path := filepath.Join(t.TempDir(), "nested", "kolgraph.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestStateOptions(t *testing.T) {
	network := &models.Network{Nodes: []models.Node{{ID: "a", InfluenceScore: 100, KOL: true}}}

	cfg := Default()
	cfg.Physics.BaseRadius = 2
	state := physics.Initialize(network, 400, 400, cfg.StateOptions(5)...)
	r, ok := state.Radius("a")
	require.True(t, ok)
	assert.Equal(t, 2.0+10+physics.KOLBonus, r)
	assert.Nil(t, state.Perturber())

	cfg.Jitter.Enabled = true
	state = physics.Initialize(network, 400, 400, cfg.StateOptions(5)...)
	assert.NotNil(t, state.Perturber())

	// Same seed, same placement
	a := physics.Initialize(network, 400, 400, cfg.StateOptions(9)...)
	b := physics.Initialize(network, 400, 400, cfg.StateOptions(9)...)
	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestResolveSeed(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(7), cfg.ResolveSeed(7))
	assert.NotZero(t, cfg.ResolveSeed(0))

	cfg.Physics.Seed = 11
	assert.Equal(t, int64(11), cfg.ResolveSeed(0))
	assert.Equal(t, int64(7), cfg.ResolveSeed(7))
}

func TestResolvedSeedSharedWithJitter(t *testing.T) {
	network := &models.Network{Nodes: []models.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	cfg := Default()
	cfg.Physics.Seed = 21
	cfg.Jitter.Interval = 1
	cfg.Jitter.Fraction = 1

	seed := cfg.ResolveSeed(0)
	a := physics.Initialize(network, 400, 400,
		append(cfg.StateOptions(seed), physics.WithPerturber(cfg.NewJitter(seed)))...)
	b := physics.Initialize(network, 400, 400,
		append(cfg.StateOptions(0), physics.WithPerturber(cfg.NewJitter(21)))...)
	for i := 0; i < 5; i++ {
		a.Step()
		b.Step()
	}
	assert.Equal(t, a.Snapshot(), b.Snapshot())
}
