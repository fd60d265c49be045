package terrastream

import (
	"github.com/gekko3d/terrastream/voxel/block"
	"github.com/gekko3d/terrastream/voxel/mesh"
	"github.com/gekko3d/terrastream/voxel/volume"
)

const numNeighbors = 4

type chunkState uint8

const (
	chunkLoading chunkState = iota
	chunkLoaded
	chunkDisposed
)

func (s chunkState) String() string {
	switch s {
	case chunkLoading:
		return "loading"
	case chunkLoaded:
		return "loaded"
	case chunkDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Chunk is one full-detail, full-height tile of ChunkWidth × ChunkWidth
// columns. Neighbors are never referenced directly; they are looked up by
// coordinate in the world's circle whenever they are needed.
type Chunk struct {
	cx, cz int
	world  *World
	state  chunkState

	voxels     *volume.Tensor3
	heightmap  *volume.Tensor2 // one past the top non-empty voxel per column
	equilevels []bool

	// dirty is set by any edit, on the chunk or on a border it shares, and
	// cleared only by a successful remesh.
	dirty     bool
	neighbors int

	meshed bool
	solid  mesh.Handle
	water  mesh.Handle
}

func newChunk(w *World, cx, cz int) *Chunk {
	height := w.cfg.WorldHeight
	return &Chunk{
		cx:         cx,
		cz:         cz,
		world:      w,
		voxels:     volume.NewTensor3(ChunkWidth, height, ChunkWidth),
		heightmap:  volume.NewTensor2(ChunkWidth, ChunkWidth),
		equilevels: make([]bool, height),
		dirty:      true,
	}
}

func (c *Chunk) Coords() (int, int) { return c.cx, c.cz }

// Ready reports whether all four lateral neighbors have finished loading.
func (c *Chunk) Ready() bool { return c.neighbors == numNeighbors }

func (c *Chunk) Dirty() bool { return c.dirty }

// HasMesh reports whether the chunk has been meshed since it last became
// dirty through readiness loss. An empty chunk can be meshed with no handles.
func (c *Chunk) HasMesh() bool { return c.meshed }

func (c *Chunk) NeedsRemesh() bool {
	return c.state == chunkLoaded && c.dirty && c.Ready()
}

func (c *Chunk) Meshes() (solid, water mesh.Handle) { return c.solid, c.water }

// Equilevel reports whether every column holds the same block at y.
func (c *Chunk) Equilevel(y int) bool { return c.equilevels[y] }

// GetBlock reads local coordinates; y must be inside the world height.
func (c *Chunk) GetBlock(x, y, z int) block.ID {
	return c.voxels.Get(x, y, z)
}

// Height returns one past the top non-empty voxel of local column (x, z).
func (c *Chunk) Height(x, z int) int {
	return int(c.heightmap.Get(x, z))
}

// load fills every column from the terrain callback and derives the
// equi-level flags. The column scratch is shared world state.
func (c *Chunk) load(loader Loader) {
	if c.state != chunkLoading {
		invariant(c.world.logger, "chunk (%d, %d): load in state %s", c.cx, c.cz, c.state)
	}
	col := c.world.column
	baseX, baseZ := c.cx<<ChunkBits, c.cz<<ChunkBits
	for x := 0; x < ChunkWidth; x++ {
		for z := 0; z < ChunkWidth; z++ {
			col.Clear()
			loader(baseX+x, baseZ+z, col)
			top := col.FillChunk(x, z, c.voxels, x == 0 && z == 0)
			c.heightmap.Set(x, z, int32(top))
		}
	}
	col.FillEquilevels(c.equilevels)
	c.state = chunkLoaded
}

// finish registers a freshly loaded chunk with whichever lateral neighbors
// are already loaded. Both sides count the completion. Diagonal chunks only
// need their corner column refreshed.
func (c *Chunk) finish() {
	c.neighbors = 0
	for _, d := range lateral {
		n, ok := c.world.chunks.Get(c.cx+d[0], c.cz+d[1])
		if !ok || n.state != chunkLoaded {
			continue
		}
		n.neighborLoaded()
		c.neighborLoaded()
	}
	c.markDiagonals()
}

func (c *Chunk) neighborLoaded() {
	if c.neighbors >= numNeighbors {
		invariant(c.world.logger, "chunk (%d, %d): more than %d neighbors", c.cx, c.cz, numNeighbors)
	}
	c.neighbors++
}

func (c *Chunk) neighborDisposed() {
	if c.neighbors <= 0 {
		invariant(c.world.logger, "chunk (%d, %d): neighbor count underflow", c.cx, c.cz)
	}
	c.neighbors--
	// The stitched border can no longer be trusted.
	c.dropMeshes()
}

// Dispose releases the meshes and tells the lateral neighbors. It is called
// by the circle after the chunk's slot has been cleared.
func (c *Chunk) Dispose() {
	if c.state == chunkDisposed {
		invariant(c.world.logger, "chunk (%d, %d): disposed twice", c.cx, c.cz)
	}
	c.dropMeshes()
	c.state = chunkDisposed
	for _, d := range lateral {
		if n, ok := c.world.chunks.Get(c.cx+d[0], c.cz+d[1]); ok {
			n.neighborDisposed()
		}
	}
	c.markDiagonals()
	c.world.metrics.chunkEvicted()
	c.world.logger.Debugf("chunk (%d, %d) evicted", c.cx, c.cz)
}

func (c *Chunk) dropMeshes() {
	if c.solid != nil {
		c.solid.Dispose()
		c.solid = nil
	}
	if c.water != nil {
		c.water.Dispose()
		c.water = nil
	}
	c.meshed = false
	c.dirty = true
}

// SetBlock writes one voxel in local coordinates. Out-of-height writes are ignored.
func (c *Chunk) SetBlock(x, y, z int, b block.ID) {
	if y < 0 || y >= c.world.cfg.WorldHeight {
		return
	}
	if c.voxels.Get(x, y, z) == b {
		return
	}
	c.voxels.Set(x, y, z, b)
	c.equilevels[y] = false

	h := c.Height(x, z)
	switch {
	case b != block.Empty && y >= h:
		c.heightmap.Set(x, z, int32(y+1))
	case b == block.Empty && y+1 == h:
		c.heightmap.Set(x, z, int32(c.scanDown(x, y, z)))
	}
	c.touched(x, z)
}

// SetColumn writes b into [start, start+count) of local column (x, z),
// clamped to the world height.
func (c *Chunk) SetColumn(x, z, start, count int, b block.ID) {
	height := c.world.cfg.WorldHeight
	end := min(start+count, height)
	start = max(start, 0)
	if start >= end {
		return
	}
	c.voxels.FillColumn(x, z, start, end-start, b)
	for y := start; y < end; y++ {
		c.equilevels[y] = false
	}

	h := c.Height(x, z)
	switch {
	case b != block.Empty && end > h:
		c.heightmap.Set(x, z, int32(end))
	case b == block.Empty && end >= h && start < h:
		c.heightmap.Set(x, z, int32(c.scanDown(x, start, z)))
	}
	c.touched(x, z)
}

// scanDown returns one past the highest non-empty voxel strictly below y.
func (c *Chunk) scanDown(x, y, z int) int {
	col := c.voxels.Column(x, z)
	for i := y - 1; i >= 0; i-- {
		if col[i] != block.Empty {
			return i + 1
		}
	}
	return 0
}

// touched marks the chunk dirty, plus every neighbor whose padded border
// includes column (x, z).
func (c *Chunk) touched(x, z int) {
	c.dirty = true
	dx, dz := 0, 0
	switch x {
	case 0:
		dx = -1
	case ChunkMask:
		dx = 1
	}
	switch z {
	case 0:
		dz = -1
	case ChunkMask:
		dz = 1
	}
	if dx != 0 {
		c.world.markDirty(c.cx+dx, c.cz)
	}
	if dz != 0 {
		c.world.markDirty(c.cx, c.cz+dz)
	}
	if dx != 0 && dz != 0 {
		c.world.markDirty(c.cx+dx, c.cz+dz)
	}
}

// markDiagonals dirties the four diagonal chunks, whose padded buffers hold
// one corner column of this chunk.
func (c *Chunk) markDiagonals() {
	for _, d := range diagonal {
		c.world.markDirty(c.cx+d[0], c.cz+d[1])
	}
}

var (
	lateral  = [numNeighbors][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal = [numNeighbors][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
)
