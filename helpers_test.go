package terrastream

import (
	"testing"

	"github.com/gekko3d/terrastream/voxel/block"
	"github.com/gekko3d/terrastream/voxel/column"
	"github.com/gekko3d/terrastream/voxel/mesh"
	"github.com/gekko3d/terrastream/voxel/volume"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id       int
	kind     string
	position mgl32.Vec3
	mask     uint64
	visible  bool
	shows    int
	disposed bool
}

func (h *fakeHandle) Dispose() {
	if h.disposed {
		panic("fake handle disposed twice")
	}
	h.disposed = true
}

func (h *fakeHandle) SetPosition(pos mgl32.Vec3) { h.position = pos }

func (h *fakeHandle) Show(mask uint64, visible bool) {
	h.mask = mask
	h.visible = visible
	h.shows++
}

// fakeMesher hands out one solid handle per chunk and keeps a copy of the
// last padded buffer it was given.
type fakeMesher struct {
	handles []*fakeHandle

	chunkCalls    int
	frontierCalls []frontierCall

	lastVoxels     *volume.Tensor3
	lastHeights    *volume.Tensor2
	lastEquilevels []bool
}

type frontierCall struct {
	index, x, z, lod int
	solid            bool
}

func (m *fakeMesher) create(kind string) *fakeHandle {
	h := &fakeHandle{id: len(m.handles), kind: kind}
	m.handles = append(m.handles, h)
	return h
}

func (m *fakeMesher) live() int {
	n := 0
	for _, h := range m.handles {
		if !h.disposed {
			n++
		}
	}
	return n
}

func (m *fakeMesher) MeshChunk(voxels *volume.Tensor3, heightmap *volume.Tensor2, equilevels []bool,
	solid, water mesh.Handle) (mesh.Handle, mesh.Handle) {
	m.chunkCalls++
	m.lastVoxels = &volume.Tensor3{Shape: voxels.Shape, Stride: voxels.Stride,
		Data: append([]block.ID(nil), voxels.Data...)}
	m.lastHeights = &volume.Tensor2{Shape: heightmap.Shape, Stride: heightmap.Stride,
		Data: append([]int32(nil), heightmap.Data...)}
	m.lastEquilevels = append([]bool(nil), equilevels...)
	if water != nil {
		water.Dispose()
	}
	if solid != nil {
		return solid, nil
	}
	return m.create("chunk"), nil
}

func (m *fakeMesher) MeshFrontier(heightmap *volume.Heightmap, index int, x, z, width, depth, lod int,
	prev mesh.Handle, solid bool) mesh.Handle {
	m.frontierCalls = append(m.frontierCalls, frontierCall{index: index, x: x, z: z, lod: lod, solid: solid})
	if !solid {
		return prev
	}
	if prev != nil {
		return prev
	}
	return m.create("frontier")
}

const flatTop = 13

func flatLoader(x, z int, col *column.Column) {
	col.Push(block.Stone, 10)
	col.Push(block.Dirt, 12)
	col.Push(block.Grass, flatTop)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WorldHeight = 32
	cfg.ChunkRadius = 2.5
	cfg.FrontierRadius = 3
	cfg.FrontierLevels = 2
	cfg.LoadBudget = 64
	cfg.MeshBudget = 64
	cfg.FrontierBudget = 64
	return cfg
}

func newTestWorld(t *testing.T, cfg Config) (*World, *fakeMesher) {
	t.Helper()
	m := &fakeMesher{}
	w, err := NewWorld(cfg, block.DefaultRegistry(), m)
	require.NoError(t, err)
	w.SetLoader(block.Bedrock, flatLoader, nil)
	return w, m
}

// settle loads and meshes everything in range around the origin.
func settle(t *testing.T, w *World) {
	t.Helper()
	w.RecenterChunk(0, 0)
	w.Remesh()
	require.Equal(t, 21, w.Stats().Chunks)
}
