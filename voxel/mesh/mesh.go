// Package mesh defines the contract between the terrain core and whatever
// turns voxel data into renderable geometry. The core never looks inside a
// Handle: it only positions, shows and disposes it.
package mesh

import (
	"github.com/gekko3d/terrastream/voxel/volume"
	"github.com/go-gl/mathgl/mgl32"
)

// Handle is an opaque renderable owned by exactly one chunk or multi-mesh.
type Handle interface {
	Dispose()
	SetPosition(pos mgl32.Vec3)
	// Show sets the visible sub-tile mask of a batched frontier mesh.
	// Chunk meshes are always shown and never receive Show calls.
	Show(mask uint64, visible bool)
}

// Mesher builds geometry. Ownership of the previous handles passed in moves
// to the mesher: it must update them in place, or dispose them before
// returning a replacement or nil.
type Mesher interface {
	// MeshChunk meshes a padded voxel buffer of shape (W+2, H+2, W+2). The
	// outer ring holds the neighbors' border columns, y=0 is bedrock and
	// y=H+1 is empty. heightmap has shape (W+2, W+2) and holds, per padded
	// column, one past the highest non-empty voxel in chunk coordinates.
	// equilevels[y] is true when padded layer y+1 is a single block.
	MeshChunk(voxels *volume.Tensor3, heightmap *volume.Tensor2, equilevels []bool,
		solid, water Handle) (Handle, Handle)

	// MeshFrontier adds one coarse tile to a batched mesh. index is the tile
	// slot inside the batch (0..15) and is what Show masks address, four bits
	// per slot. (x, z) is the tile origin relative to the batch origin in
	// world units, width × depth the padded cell grid and lod the world size
	// of one cell.
	MeshFrontier(heightmap *volume.Heightmap, index int, x, z, width, depth, lod int,
		prev Handle, solid bool) Handle
}
