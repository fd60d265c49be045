// Package gen is a reference terrain generator. It writes columns through
// the same callback contract the world consumes, so any other generator can
// be swapped in.
package gen

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/gekko3d/terrastream/voxel/block"
	"github.com/gekko3d/terrastream/voxel/column"
)

const (
	trunkHeight = 5
	treeChance  = 96 // out of 4096 grass columns
)

// Generator produces deterministic columns from a seed. It is read-only
// after construction and may be called any number of times per coordinate.
type Generator struct {
	height   int
	seed     uint32
	seaLevel int
	snowLine int

	terrain   *perlin.Perlin
	roughness *perlin.Perlin

	NoiseScale float64
}

func New(seed int64, height int) *Generator {
	return &Generator{
		height:     height,
		seed:       uint32(seed) ^ uint32(seed>>32),
		seaLevel:   height / 4,
		snowLine:   height * 5 / 8,
		terrain:    perlin.NewPerlin(2, 2, 4, seed),
		roughness:  perlin.NewPerlin(2, 2, 2, seed+1),
		NoiseScale: 1.0 / 96,
	}
}

func (g *Generator) SeaLevel() int { return g.seaLevel }

// SurfaceAt returns one past the top solid voxel at (x, z).
func (g *Generator) SurfaceAt(x, z int) int {
	fx, fz := float64(x)*g.NoiseScale, float64(z)*g.NoiseScale
	base := g.terrain.Noise2D(fx, fz)
	rough := (g.roughness.Noise2D(fx*4, fz*4) + 1) / 2
	amplitude := float64(g.height) / 4 * (0.5 + rough)
	surface := g.seaLevel + int(math.Round(base*amplitude))
	return max(2, min(surface, g.height-trunkHeight-4))
}

// LoadChunk fills col for full-detail chunks, trees included.
func (g *Generator) LoadChunk(x, z int, col *column.Column) {
	surface := g.fillTerrain(x, z, col)
	g.decorate(x, z, surface, col)
}

// LoadFrontier fills col for distant terrain: same runs, no decorations.
func (g *Generator) LoadFrontier(x, z int, col *column.Column) {
	g.fillTerrain(x, z, col)
}

func (g *Generator) fillTerrain(x, z int, col *column.Column) int {
	surface := g.SurfaceAt(x, z)
	col.Push(block.Bedrock, 1)
	switch {
	case surface <= g.seaLevel+1:
		col.Push(block.Stone, surface-3)
		col.Push(block.Sand, surface)
	case surface >= g.snowLine:
		col.Push(block.Stone, surface-1)
		col.Push(block.Snow, surface)
	default:
		col.Push(block.Stone, surface-3)
		col.Push(block.Dirt, surface-1)
		col.Push(block.Grass, surface)
	}
	if surface < g.seaLevel {
		col.Push(block.Water, g.seaLevel)
	}
	return surface
}

// decorate writes the parts of any tree whose trunk stands within one
// column of (x, z). Trees only grow on grass.
func (g *Generator) decorate(x, z, surface int, col *column.Column) {
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			tx, tz := x+dx, z+dz
			if !g.hasTree(tx, tz) {
				continue
			}
			base := surface
			if dx != 0 || dz != 0 {
				base = g.SurfaceAt(tx, tz)
			}
			if !g.grassAt(base) {
				continue
			}
			top := base + trunkHeight
			col.Overwrite(block.Leaves, top-2)
			col.Overwrite(block.Leaves, top-1)
			if dx == 0 && dz == 0 {
				for y := base; y < top-1; y++ {
					col.Overwrite(block.Trunk, y)
				}
				col.Overwrite(block.Leaves, top)
			}
		}
	}
}

func (g *Generator) hasTree(x, z int) bool {
	return hash2(g.seed, int32(x), int32(z))&4095 < treeChance
}

func (g *Generator) grassAt(surface int) bool {
	return surface > g.seaLevel+1 && surface < g.snowLine
}
