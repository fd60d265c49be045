package terrastream

import (
	"errors"
	"fmt"
	"math"

	"github.com/gekko3d/terrastream/voxel/block"
	"github.com/gekko3d/terrastream/voxel/circle"
	"github.com/gekko3d/terrastream/voxel/column"
	"github.com/gekko3d/terrastream/voxel/mesh"
	"github.com/gekko3d/terrastream/voxel/volume"
	"github.com/go-gl/mathgl/mgl32"
)

// Loader fills col with the terrain of world column (x, z). It must be
// deterministic: the same column is sampled again after every reload.
type Loader func(x, z int, col *column.Column)

// Registry is the block table the world consults for frontier sampling.
// Opacity belongs to the mesher.
type Registry interface {
	Solid(id block.ID) bool
}

type Option func(*World)

func WithLogger(l Logger) Option {
	return func(w *World) { w.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(w *World) { w.metrics = m }
}

func WithProfiler(p *Profiler) Option {
	return func(w *World) { w.profiler = p }
}

// World streams full-detail chunks around a viewpoint and keeps the coarse
// frontier beyond them. It is driven by one goroutine, once per frame.
type World struct {
	cfg       Config
	logger    Logger
	metrics   *Metrics
	profiler  *Profiler
	materials Registry
	mesher    mesh.Mesher

	chunks   *circle.Circle[*Chunk]
	frontier *Frontier

	// Scratch shared by every load and remesh.
	column           *column.Column
	padded           *volume.Tensor3
	paddedHeights    *volume.Tensor2
	paddedEquilevels []bool

	bedrock      block.ID
	loadChunk    Loader
	loadFrontier Loader
}

func NewWorld(cfg Config, registry Registry, mesher mesh.Mesher, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil || mesher == nil {
		return nil, errors.New("world: registry and mesher are required")
	}
	w := &World{
		cfg:              cfg,
		logger:           NewNopLogger(),
		materials:        registry,
		mesher:           mesher,
		chunks:           circle.New[*Chunk](cfg.ChunkRadius),
		column:           column.New(cfg.WorldHeight),
		padded:           volume.NewTensor3(padded, cfg.WorldHeight+2, padded),
		paddedHeights:    volume.NewTensor2(padded, padded),
		paddedEquilevels: make([]bool, cfg.WorldHeight),
		bedrock:          block.Bedrock,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.frontier = newFrontier(w)
	w.logger.Infof("world: height=%d chunk_radius=%v frontier=%d levels radius %v",
		cfg.WorldHeight, cfg.ChunkRadius, cfg.FrontierLevels, cfg.FrontierRadius)
	return w, nil
}

func (w *World) Config() Config { return w.cfg }

func (w *World) Frontier() *Frontier { return w.frontier }

// SetLoader installs the terrain callbacks. loadFrontier may be nil, in
// which case distant tiles are sampled with loadChunk.
func (w *World) SetLoader(bedrock block.ID, loadChunk, loadFrontier Loader) {
	if loadFrontier == nil {
		loadFrontier = loadChunk
	}
	w.bedrock = bedrock
	w.loadChunk = loadChunk
	w.loadFrontier = loadFrontier

	top := w.cfg.WorldHeight + 1
	for x := 0; x < padded; x++ {
		for z := 0; z < padded; z++ {
			w.padded.Set(x, 0, z, bedrock)
			w.padded.Set(x, top, z, block.Empty)
		}
	}
}

// GetBlock reads world coordinates. Below the world it returns bedrock,
// above it Empty, and Unknown where no chunk is loaded.
func (w *World) GetBlock(x, y, z int) block.ID {
	switch {
	case y < 0:
		return w.bedrock
	case y >= w.cfg.WorldHeight:
		return block.Empty
	}
	c, ok := w.chunks.Get(x>>ChunkBits, z>>ChunkBits)
	if !ok {
		return block.Unknown
	}
	return c.GetBlock(x&ChunkMask, y, z&ChunkMask)
}

// SetBlock writes world coordinates. Writes outside the world height or
// into unloaded chunks are dropped.
func (w *World) SetBlock(x, y, z int, b block.ID) {
	if y < 0 || y >= w.cfg.WorldHeight {
		return
	}
	if c, ok := w.chunks.Get(x>>ChunkBits, z>>ChunkBits); ok {
		c.SetBlock(x&ChunkMask, y, z&ChunkMask, b)
	}
}

// SetColumn fills [start, start+count) of world column (x, z) with b.
func (w *World) SetColumn(x, z, start, count int, b block.ID) {
	if c, ok := w.chunks.Get(x>>ChunkBits, z>>ChunkBits); ok {
		c.SetColumn(x&ChunkMask, z&ChunkMask, start, count, b)
	}
}

// HeightAt returns one past the highest non-empty voxel of world column (x, z).
func (w *World) HeightAt(x, z int) (int, bool) {
	c, ok := w.chunks.Get(x>>ChunkBits, z>>ChunkBits)
	if !ok {
		return 0, false
	}
	return c.Height(x&ChunkMask, z&ChunkMask), true
}

func (w *World) ChunkAt(cx, cz int) (*Chunk, bool) {
	return w.chunks.Get(cx, cz)
}

// ChunkCoords returns the chunk containing world position pos.
func ChunkCoords(pos mgl32.Vec3) (int, int) {
	x := int(math.Floor(float64(pos.X())))
	z := int(math.Floor(float64(pos.Z())))
	return x >> ChunkBits, z >> ChunkBits
}

// Recenter moves the streaming center to the chunk containing pos, evicts
// what fell out of range and loads at most LoadBudget new chunks, nearest
// first.
func (w *World) Recenter(pos mgl32.Vec3) {
	cx, cz := ChunkCoords(pos)
	w.RecenterChunk(cx, cz)
}

func (w *World) RecenterChunk(cx, cz int) {
	defer w.scope("recenter")()

	w.chunks.Recenter(cx, cz)
	w.frontier.Center(cx, cz)
	if w.loadChunk == nil {
		return
	}

	created := 0
	w.chunks.Each(func(x, z int) bool {
		if _, ok := w.chunks.Get(x, z); ok {
			return false
		}
		if created >= w.cfg.LoadBudget {
			return true
		}
		c := newChunk(w, x, z)
		c.load(w.loadChunk)
		c.finish()
		w.chunks.Set(x, z, c)
		created++
		w.metrics.chunkLoaded()
		return false
	})
	w.count("loaded", created)
}

// Remesh meshes at most MeshBudget dirty, ready chunks, nearest first, and
// then always refreshes the frontier.
func (w *World) Remesh() {
	end := w.scope("remesh")
	meshed := 0
	w.chunks.Each(func(x, z int) bool {
		c, ok := w.chunks.Get(x, z)
		if !ok || !c.NeedsRemesh() {
			return false
		}
		if meshed >= w.cfg.MeshBudget {
			return true
		}
		c.Remesh()
		meshed++
		return false
	})
	end()
	w.count("meshed", meshed)

	end = w.scope("frontier")
	w.frontier.Remesh()
	end()
}

func (w *World) markDirty(cx, cz int) {
	if c, ok := w.chunks.Get(cx, cz); ok {
		c.dirty = true
	}
}

// Stats is a snapshot of the world's bookkeeping.
type Stats struct {
	Chunks           int
	Ready            int
	Meshed           int
	Dirty            int
	FrontierTiles    []int
	FrontierDeferred int
}

func (s Stats) String() string {
	return fmt.Sprintf("chunks=%d ready=%d meshed=%d dirty=%d frontier=%v deferred=%d",
		s.Chunks, s.Ready, s.Meshed, s.Dirty, s.FrontierTiles, s.FrontierDeferred)
}

func (w *World) Stats() Stats {
	s := Stats{
		Chunks:           w.chunks.Len(),
		FrontierTiles:    make([]int, w.frontier.Levels()),
		FrontierDeferred: w.frontier.Deferred(),
	}
	w.chunks.Each(func(x, z int) bool {
		c, ok := w.chunks.Get(x, z)
		if !ok {
			return false
		}
		if c.Ready() {
			s.Ready++
		}
		if c.HasMesh() {
			s.Meshed++
		}
		if c.Dirty() {
			s.Dirty++
		}
		return false
	})
	for l := range s.FrontierTiles {
		s.FrontierTiles[l] = w.frontier.Tiles(l)
	}
	return s
}

// Dispose releases every chunk, frontier tile and mesh.
func (w *World) Dispose() {
	w.chunks.Clear()
	w.frontier.Clear()
}

func (w *World) scope(name string) func() {
	if w.profiler == nil {
		return func() {}
	}
	return w.profiler.Begin(name)
}

func (w *World) count(name string, n int) {
	if w.profiler != nil {
		w.profiler.Add(name, n)
	}
}
