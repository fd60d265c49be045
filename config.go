package terrastream

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ChunkBits  = 4
	ChunkWidth = 1 << ChunkBits
	ChunkMask  = ChunkWidth - 1

	maxWorldHeight = 4096
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the streaming radii and the per-frame work budgets.
type Config struct {
	WorldHeight    int     `yaml:"world_height"`
	ChunkRadius    float64 `yaml:"chunk_radius"`
	FrontierRadius float64 `yaml:"frontier_radius"`
	FrontierLevels int     `yaml:"frontier_levels"`

	// Budgets bound the synchronous work done by one Recenter or Remesh call.
	LoadBudget     int `yaml:"load_budget"`
	MeshBudget     int `yaml:"mesh_budget"`
	FrontierBudget int `yaml:"frontier_budget"`

	Seed  int64 `yaml:"seed"`
	Debug bool  `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		WorldHeight:    256,
		ChunkRadius:    12,
		FrontierRadius: 8,
		FrontierLevels: 6,
		LoadBudget:     1,
		MeshBudget:     1,
		FrontierBudget: 1,
	}
}

func (c Config) Validate() error {
	switch {
	case c.WorldHeight <= 0 || c.WorldHeight%ChunkWidth != 0 || c.WorldHeight > maxWorldHeight:
		return fmt.Errorf("%w: world_height %d must be a positive multiple of %d up to %d",
			ErrInvalidConfig, c.WorldHeight, ChunkWidth, maxWorldHeight)
	case c.ChunkRadius < 1:
		return fmt.Errorf("%w: chunk_radius %v must be at least 1", ErrInvalidConfig, c.ChunkRadius)
	case c.FrontierLevels < 0:
		return fmt.Errorf("%w: frontier_levels %d is negative", ErrInvalidConfig, c.FrontierLevels)
	case c.FrontierLevels > 0 && c.FrontierRadius < 1:
		return fmt.Errorf("%w: frontier_radius %v must be at least 1", ErrInvalidConfig, c.FrontierRadius)
	case c.LoadBudget < 1 || c.MeshBudget < 1 || c.FrontierBudget < 1:
		return fmt.Errorf("%w: budgets must be positive (load=%d mesh=%d frontier=%d)",
			ErrInvalidConfig, c.LoadBudget, c.MeshBudget, c.FrontierBudget)
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// Keys missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
