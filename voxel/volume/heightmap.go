package volume

import "github.com/gekko3d/terrastream/voxel/block"

// Heightmap pairs a surface block with its level for every cell of a 2D grid.
// Indexed (x, z) like Tensor2.
type Heightmap struct {
	Shape  [2]int
	Blocks []block.ID
	Levels []int32
}

func NewHeightmap(x, z int) *Heightmap {
	return &Heightmap{
		Shape:  [2]int{x, z},
		Blocks: make([]block.ID, x*z),
		Levels: make([]int32, x*z),
	}
}

func (h *Heightmap) Index(x, z int) int {
	return x*h.Shape[1] + z
}

func (h *Heightmap) Get(x, z int) (block.ID, int32) {
	i := h.Index(x, z)
	return h.Blocks[i], h.Levels[i]
}

func (h *Heightmap) Set(x, z int, b block.ID, level int32) {
	i := h.Index(x, z)
	h.Blocks[i] = b
	h.Levels[i] = level
}
