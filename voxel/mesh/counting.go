package mesh

import (
	"fmt"
	"sync"

	"github.com/gekko3d/terrastream/voxel/block"
	"github.com/gekko3d/terrastream/voxel/volume"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Counted is the handle produced by CountingMesher. It carries the number
// of quads a real mesher would emit, which is enough for tooling and tests.
type Counted struct {
	ID       uuid.UUID
	Faces    int
	Tiles    uint16 // frontier slots added to this batch
	Position mgl32.Vec3
	Mask     uint64
	Visible  bool
	Disposed bool

	owner *CountingMesher
}

func (m *Counted) Dispose() {
	if m.Disposed {
		panic(fmt.Sprintf("mesh %s disposed twice", m.ID))
	}
	m.Disposed = true
	m.owner.release(m)
}

func (m *Counted) SetPosition(pos mgl32.Vec3) {
	m.Position = pos
}

func (m *Counted) Show(mask uint64, visible bool) {
	m.Mask = mask
	m.Visible = visible
}

// Materials is the subset of block.Registry the counting mesher reads.
type Materials interface {
	Solid(id block.ID) bool
	Opaque(id block.ID) bool
	Liquid(id block.ID) bool
}

// CountingMesher is a CPU reference Mesher. It counts the visible faces of
// a padded chunk buffer and the occupied cells of a frontier heightmap.
type CountingMesher struct {
	materials Materials

	mu   sync.Mutex
	live map[uuid.UUID]*Counted

	ChunkCalls    int
	FrontierCalls int
}

func NewCountingMesher(materials Materials) *CountingMesher {
	return &CountingMesher{
		materials: materials,
		live:      make(map[uuid.UUID]*Counted),
	}
}

// Live returns the number of handles created and not yet disposed.
func (cm *CountingMesher) Live() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.live)
}

func (cm *CountingMesher) MeshChunk(voxels *volume.Tensor3, heightmap *volume.Tensor2, equilevels []bool,
	solid, water Handle) (Handle, Handle) {
	cm.ChunkCalls++

	solidFaces, waterFaces := cm.countChunkFaces(voxels, heightmap, equilevels)
	return cm.reuse(solid, solidFaces), cm.reuse(water, waterFaces)
}

func (cm *CountingMesher) MeshFrontier(heightmap *volume.Heightmap, index int, x, z, width, depth, lod int,
	prev Handle, solid bool) Handle {
	cm.FrontierCalls++
	if index < 0 || index >= 16 {
		panic(fmt.Sprintf("frontier tile index %d out of range", index))
	}

	faces := 0
	// Padded border cells only feed normals; they are not emitted.
	for i := 1; i < width-1; i++ {
		for k := 1; k < depth-1; k++ {
			b, level := heightmap.Get(i, k)
			if level > 0 && b != block.Empty {
				faces++
			}
		}
	}

	var out *Counted
	if prev != nil {
		out = prev.(*Counted)
	}
	if faces == 0 {
		return prevOrNil(out)
	}
	if out == nil {
		out = cm.create()
	}
	out.Faces += faces
	out.Tiles |= 1 << index
	return out
}

func prevOrNil(m *Counted) Handle {
	if m == nil {
		return nil
	}
	return m
}

func (cm *CountingMesher) reuse(prev Handle, faces int) Handle {
	var m *Counted
	if prev != nil {
		m = prev.(*Counted)
	}
	if faces == 0 {
		if m != nil {
			m.Dispose()
		}
		return nil
	}
	if m == nil {
		m = cm.create()
	}
	m.Faces = faces
	return m
}

func (cm *CountingMesher) create() *Counted {
	m := &Counted{ID: uuid.New(), owner: cm, Visible: true}
	cm.mu.Lock()
	cm.live[m.ID] = m
	cm.mu.Unlock()
	return m
}

func (cm *CountingMesher) release(m *Counted) {
	cm.mu.Lock()
	delete(cm.live, m.ID)
	cm.mu.Unlock()
}

// countChunkFaces walks the interior of the padded buffer. A layer that is
// uniform, with uniform layers on both sides, has no lateral faces, so only
// its two vertical faces per column are counted.
func (cm *CountingMesher) countChunkFaces(voxels *volume.Tensor3, heightmap *volume.Tensor2,
	equilevels []bool) (solid, water int) {
	sx, sy, sz := voxels.Shape[0], voxels.Shape[1], voxels.Shape[2]
	height := sy - 2

	top := int32(0)
	for _, h := range heightmap.Data {
		top = max(top, h)
	}
	uniform := func(y int) bool {
		// padded rows 0 and sy-1 are bedrock and sky
		if y <= 0 || y >= sy-1 {
			return true
		}
		return equilevels[y-1]
	}

	for y := 1; y <= min(int(top), height); y++ {
		if uniform(y-1) && uniform(y) && uniform(y+1) {
			b := voxels.Get(1, y, 1)
			if b == block.Empty {
				continue
			}
			n := 0
			if cm.faceVisible(b, voxels.Get(1, y+1, 1)) {
				n++
			}
			if cm.faceVisible(b, voxels.Get(1, y-1, 1)) {
				n++
			}
			n *= (sx - 2) * (sz - 2)
			if cm.materials.Liquid(b) {
				water += n
			} else {
				solid += n
			}
			continue
		}
		for x := 1; x < sx-1; x++ {
			for z := 1; z < sz-1; z++ {
				b := voxels.Get(x, y, z)
				if b == block.Empty {
					continue
				}
				n := 0
				for _, d := range neighbors {
					if cm.faceVisible(b, voxels.Get(x+d[0], y+d[1], z+d[2])) {
						n++
					}
				}
				if cm.materials.Liquid(b) {
					water += n
				} else {
					solid += n
				}
			}
		}
	}
	return solid, water
}

var neighbors = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

func (cm *CountingMesher) faceVisible(b, n block.ID) bool {
	if n == b {
		return false
	}
	return n == block.Empty || !cm.materials.Opaque(n)
}
