package column

import "github.com/gekko3d/terrastream/voxel/block"

// Summary is the top-down view of a column used for distant terrain.
// Levels are one past the top voxel of the run; a zero WaterLevel means
// there is no liquid above the solid surface.
type Summary struct {
	SolidBlock block.ID
	SolidLevel int
	WaterBlock block.ID
	WaterLevel int
}

// Summarize reads the pushed runs from the top down. Decorations are not
// consulted: distant terrain is sampled from decoration-free columns.
// When no solid run exists the surface is bedrock at level 0.
func (c *Column) Summarize(solid func(block.ID) bool, bedrock block.ID) Summary {
	var s Summary
	n := len(c.runs) - 1
	for n >= 0 && c.runs[n].block == block.Empty {
		n--
	}
	if n >= 0 && !solid(c.runs[n].block) {
		s.WaterBlock = c.runs[n].block
		s.WaterLevel = c.runs[n].top
		for n >= 0 && !solid(c.NthBlock(n, bedrock)) {
			n--
		}
	}
	s.SolidBlock = c.NthBlock(n, bedrock)
	s.SolidLevel = c.NthLevel(n)
	return s
}
