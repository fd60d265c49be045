package terrastream

import (
	"github.com/gekko3d/terrastream/voxel/block"
	"github.com/go-gl/mathgl/mgl32"
)

// padded is the side of the stitched mesh buffer: the chunk plus a one
// column border taken from the neighbors.
const padded = ChunkWidth + 2

// span maps a neighbor offset along one axis to the padded range it
// supplies and the local coordinate of padded index start.
func span(d int) (start, end, local int) {
	switch d {
	case -1:
		return 0, 1, ChunkMask
	case 1:
		return padded - 1, padded, 0
	default:
		return 1, padded - 1, 0
	}
}

// Remesh rebuilds the chunk's meshes from the padded buffer. The chunk must
// be dirty; callers normally also wait for Ready so the border is complete.
func (c *Chunk) Remesh() {
	if !c.dirty {
		invariant(c.world.logger, "chunk (%d, %d): remesh of a clean chunk", c.cx, c.cz)
	}
	if c.state != chunkLoaded {
		invariant(c.world.logger, "chunk (%d, %d): remesh in state %s", c.cx, c.cz, c.state)
	}
	w := c.world
	height := w.cfg.WorldHeight
	buf, heights, eq := w.padded, w.paddedHeights, w.paddedEquilevels

	for x := 0; x < ChunkWidth; x++ {
		for z := 0; z < ChunkWidth; z++ {
			copy(buf.Column(x+1, z+1)[1:height+1], c.voxels.Column(x, z))
			heights.Set(x+1, z+1, c.heightmap.Get(x, z))
		}
	}
	copy(eq, c.equilevels)

	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			n, ok := w.chunks.Get(c.cx+dx, c.cz+dz)
			c.stitch(n, ok, dx, dz)
		}
	}

	solid, water := w.mesher.MeshChunk(buf, heights, eq, c.solid, c.water)
	c.solid, c.water = solid, water
	pos := mgl32.Vec3{float32(c.cx << ChunkBits), 0, float32(c.cz << ChunkBits)}
	if solid != nil {
		solid.SetPosition(pos)
	}
	if water != nil {
		water.SetPosition(pos)
	}
	c.meshed = true
	c.dirty = false
	w.metrics.chunkMeshed()
}

// stitch copies the border columns supplied by the neighbor at (dx, dz) into
// the padded buffer and narrows the merged equi-levels. An absent neighbor
// contributes air, so a layer stays uniform across it only if it is air.
func (c *Chunk) stitch(n *Chunk, ok bool, dx, dz int) {
	w := c.world
	height := w.cfg.WorldHeight
	buf, heights, eq := w.padded, w.paddedHeights, w.paddedEquilevels

	x0, x1, lx := span(dx)
	z0, z1, lz := span(dz)
	for px := x0; px < x1; px++ {
		for pz := z0; pz < z1; pz++ {
			dst := buf.Column(px, pz)[1 : height+1]
			if !ok {
				clear(dst)
				heights.Set(px, pz, 0)
				continue
			}
			sx, sz := lx+px-x0, lz+pz-z0
			copy(dst, n.voxels.Column(sx, sz))
			heights.Set(px, pz, n.heightmap.Get(sx, sz))
		}
	}

	for y := range eq {
		if !eq[y] {
			continue
		}
		own := c.voxels.Get(0, y, 0)
		if ok {
			eq[y] = n.equilevels[y] && n.voxels.Get(0, y, 0) == own
		} else {
			eq[y] = own == block.Empty
		}
	}
}
