package terrastream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 256, cfg.WorldHeight)
	assert.Equal(t, 1, cfg.LoadBudget)
	assert.Equal(t, 1, cfg.MeshBudget)
}

func TestConfig_ValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"height not a multiple": func(c *Config) { c.WorldHeight = 100 },
		"height too large":      func(c *Config) { c.WorldHeight = 8192 },
		"zero height":           func(c *Config) { c.WorldHeight = 0 },
		"small radius":          func(c *Config) { c.ChunkRadius = 0.5 },
		"negative levels":       func(c *Config) { c.FrontierLevels = -1 },
		"small frontier":        func(c *Config) { c.FrontierRadius = 0 },
		"zero load budget":      func(c *Config) { c.LoadBudget = 0 },
		"zero frontier budget":  func(c *Config) { c.FrontierBudget = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	cfg := DefaultConfig()
	cfg.FrontierLevels = 0
	cfg.FrontierRadius = 0
	assert.NoError(t, cfg.Validate(), "frontier radius is unused without levels")
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world_height: 128\nchunk_radius: 6.5\nmesh_budget: 4\nseed: 42\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.WorldHeight)
	assert.Equal(t, 6.5, cfg.ChunkRadius)
	assert.Equal(t, 4, cfg.MeshBudget)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, DefaultConfig().FrontierLevels, cfg.FrontierLevels)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("world_height: [1, 2]\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("load_budget: 0\n"), 0o644))
	_, err = LoadConfig(invalid)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
