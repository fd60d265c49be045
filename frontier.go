package terrastream

import (
	"github.com/gekko3d/terrastream/voxel/circle"
	"github.com/gekko3d/terrastream/voxel/volume"
	"github.com/go-gl/mathgl/mgl32"
)

// FrontierChunk is one coarse tile. A level l tile covers 2^(l+1) chunks per
// side and is meshed as ChunkWidth × ChunkWidth cells.
type FrontierChunk struct {
	cx, cz int
	level  int
	index  int
	multi  *LODMultiMesh

	// coverage has bit i set when child i (x + 2z) is meshed or fully covered.
	coverage uint8
}

func (f *FrontierChunk) Coords() (int, int) { return f.cx, f.cz }

func (f *FrontierChunk) Level() int { return f.level }

func (f *FrontierChunk) HasMesh() bool { return f.multi.meshed(f.index) }

// Covered reports whether the tile is meshed or hidden behind finer detail.
func (f *FrontierChunk) Covered() bool {
	return f.HasMesh() || f.coverage == 0xf
}

// Quadrants returns the visible quadrant bits of this tile.
func (f *FrontierChunk) Quadrants() uint8 {
	return uint8(f.multi.mask>>(4*uint(f.index))) & 0xf
}

func (f *FrontierChunk) Multi() *LODMultiMesh { return f.multi }

func (f *FrontierChunk) Dispose() {
	f.multi.disable(f.index)
	fr := f.multi.frontier
	fr.world.metrics.tileEvicted()
	fr.logger.Debugf("tile %d (%d, %d) evicted", f.level, f.cx, f.cz)
}

// Frontier approximates the terrain beyond the chunk radius with L rings of
// coarse tiles, each level twice as coarse as the one before.
type Frontier struct {
	world  *World
	logger Logger
	levels []*circle.Circle[*FrontierChunk]
	multis []map[[2]int]*LODMultiMesh

	solid *volume.Heightmap
	water *volume.Heightmap

	deferred int
}

func newFrontier(w *World) *Frontier {
	cfg := w.cfg
	f := &Frontier{
		world:  w,
		logger: WithScope(w.logger, "frontier"),
		levels: make([]*circle.Circle[*FrontierChunk], cfg.FrontierLevels),
		multis: make([]map[[2]int]*LODMultiMesh, cfg.FrontierLevels),
		solid:  volume.NewHeightmap(padded, padded),
		water:  volume.NewHeightmap(padded, padded),
	}
	radius := float64(int(cfg.ChunkRadius)) + 0.5
	for i := range f.levels {
		radius = (radius + cfg.FrontierRadius) / 2
		f.levels[i] = circle.New[*FrontierChunk](radius)
		f.multis[i] = make(map[[2]int]*LODMultiMesh)
	}
	return f
}

func (f *Frontier) Levels() int { return len(f.levels) }

// Tiles returns the number of live tiles at level l.
func (f *Frontier) Tiles(l int) int { return f.levels[l].Len() }

// Tile returns the tile at (cx, cz) in level l coordinates.
func (f *Frontier) Tile(l, cx, cz int) (*FrontierChunk, bool) {
	return f.levels[l].Get(cx, cz)
}

// Multi returns the batch holding tile (cx, cz) of level l, if any.
func (f *Frontier) Multi(l, cx, cz int) (*LODMultiMesh, bool) {
	m, ok := f.multis[l][multiKey(cx, cz)]
	return m, ok
}

// Deferred returns how many tiles the last Remesh left unmeshed for budget.
func (f *Frontier) Deferred() int { return f.deferred }

// Center recenters every level on chunk (cx, cz), halving per level.
func (f *Frontier) Center(cx, cz int) {
	for _, level := range f.levels {
		cx >>= 1
		cz >>= 1
		level.Recenter(cx, cz)
	}
}

// Remesh refreshes every tile's quadrant mask, finest level first, and
// meshes at most FrontierBudget new tiles per level.
func (f *Frontier) Remesh() {
	f.deferred = 0
	if f.world.loadFrontier == nil {
		return
	}
	for l := range f.levels {
		f.remeshLevel(l)
	}
	if f.deferred > 0 {
		f.logger.Debugf("%d tiles deferred", f.deferred)
	}
	f.world.metrics.frontierDeferred(f.deferred)
}

func (f *Frontier) remeshLevel(l int) {
	level := f.levels[l]
	budget := f.world.cfg.FrontierBudget
	level.Each(func(cx, cz int) bool {
		tile, ok := level.Get(cx, cz)
		if !ok {
			tile = f.newTile(l, cx, cz)
			level.Set(cx, cz, tile)
		}
		tile.coverage = f.coverage(l, cx, cz)
		quadrants := ^tile.coverage & 0xf
		if quadrants != 0 && !tile.HasMesh() {
			if budget == 0 {
				f.deferred++
				return false
			}
			budget--
			f.meshTile(tile)
		}
		tile.multi.show(tile.index, quadrants)
		return false
	})
}

func (f *Frontier) coverage(l, cx, cz int) uint8 {
	var mask uint8
	for i := 0; i < 4; i++ {
		x, z := cx<<1+i&1, cz<<1+i>>1
		if f.childCovered(l, x, z) {
			mask |= 1 << i
		}
	}
	return mask
}

func (f *Frontier) childCovered(l, x, z int) bool {
	if l == 0 {
		c, ok := f.world.chunks.Get(x, z)
		return ok && c.HasMesh()
	}
	t, ok := f.levels[l-1].Get(x, z)
	return ok && t.Covered()
}

func (f *Frontier) newTile(l, cx, cz int) *FrontierChunk {
	key := multiKey(cx, cz)
	m, ok := f.multis[l][key]
	if !ok {
		m = &LODMultiMesh{level: l, mx: key[0], mz: key[1], frontier: f}
		f.multis[l][key] = m
	}
	t := &FrontierChunk{cx: cx, cz: cz, level: l, index: multiIndex(cx, cz), multi: m}
	m.enable(t.index)
	return t
}

func (f *Frontier) dropMulti(m *LODMultiMesh) {
	delete(f.multis[m.level], [2]int{m.mx, m.mz})
}

// tileLOD is the world size of one cell at level l.
func tileLOD(l int) int { return 2 << l }

// meshTile samples the frontier loader once per cell, plus a one cell
// border, and summarizes each column into the solid and water heightmaps.
func (f *Frontier) meshTile(t *FrontierChunk) {
	w := f.world
	lod := tileLOD(t.level)
	size := ChunkWidth * lod
	baseX, baseZ := t.cx*size, t.cz*size
	col := w.column

	for i := 0; i < padded; i++ {
		for k := 0; k < padded; k++ {
			col.Clear()
			w.loadFrontier(baseX+(i-1)*lod, baseZ+(k-1)*lod, col)
			s := col.Summarize(w.materials.Solid, w.bedrock)
			f.solid.Set(i, k, s.SolidBlock, int32(s.SolidLevel))
			f.water.Set(i, k, s.WaterBlock, int32(s.WaterLevel))
		}
	}

	m := t.multi
	x := (t.cx & (multiSide - 1)) * size
	z := (t.cz & (multiSide - 1)) * size
	solid := w.mesher.MeshFrontier(f.solid, t.index, x, z, padded, padded, lod, m.solid, true)
	water := w.mesher.MeshFrontier(f.water, t.index, x, z, padded, padded, lod, m.water, false)
	origin := mgl32.Vec3{float32(m.mx * multiSide * size), 0, float32(m.mz * multiSide * size)}
	m.add(t.index, solid, water, origin)

	w.metrics.tileMeshed()
	f.logger.Debugf("tile %d (%d, %d) meshed", t.level, t.cx, t.cz)
}

// Clear disposes every tile and batch.
func (f *Frontier) Clear() {
	for _, level := range f.levels {
		level.Clear()
	}
}
