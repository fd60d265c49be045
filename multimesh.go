package terrastream

import (
	"github.com/gekko3d/terrastream/voxel/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	multiSide  = 4
	multiTiles = multiSide * multiSide
)

type tileState uint8

const (
	tileUnmeshed tileState = iota
	tileHidden
	tileVisible
)

// LODMultiMesh batches a 4×4 block of same-level frontier tiles into one
// solid and one water mesh. Each tile owns a nibble of the visibility mask,
// one bit per quadrant.
type LODMultiMesh struct {
	level  int
	mx, mz int

	solid mesh.Handle
	water mesh.Handle

	states  [multiTiles]tileState
	enabled [multiTiles]bool
	live    int
	mask    uint64

	frontier *Frontier
}

func multiKey(cx, cz int) [2]int {
	return [2]int{cx >> 2, cz >> 2}
}

func multiIndex(cx, cz int) int {
	return (cx & (multiSide - 1)) + multiSide*(cz&(multiSide-1))
}

func (m *LODMultiMesh) Mask() uint64 { return m.mask }

func (m *LODMultiMesh) Meshes() (solid, water mesh.Handle) { return m.solid, m.water }

// Enabled returns the number of tiles currently holding a slot.
func (m *LODMultiMesh) Enabled() int { return m.live }

func (m *LODMultiMesh) meshed(index int) bool {
	return m.states[index] != tileUnmeshed
}

func (m *LODMultiMesh) enable(index int) {
	if m.enabled[index] {
		invariant(m.frontier.logger, "multimesh %d (%d, %d): slot %d enabled twice",
			m.level, m.mx, m.mz, index)
	}
	m.enabled[index] = true
	m.live++
}

// disable releases a slot. The slot's geometry stays in the batch, hidden,
// until the last slot goes away and the whole batch is released.
func (m *LODMultiMesh) disable(index int) {
	if !m.enabled[index] {
		invariant(m.frontier.logger, "multimesh %d (%d, %d): slot %d disabled twice",
			m.level, m.mx, m.mz, index)
	}
	m.enabled[index] = false
	m.live--
	if m.live > 0 {
		m.show(index, 0)
		return
	}
	m.release()
}

func (m *LODMultiMesh) release() {
	if m.solid != nil {
		m.solid.Dispose()
		m.solid = nil
	}
	if m.water != nil {
		m.water.Dispose()
		m.water = nil
	}
	m.states = [multiTiles]tileState{}
	m.mask = 0
	m.frontier.dropMulti(m)
}

// show sets the quadrant nibble of a meshed slot and pushes the combined
// mask to the handles when it changed.
func (m *LODMultiMesh) show(index int, quadrants uint8) {
	if !m.meshed(index) {
		return
	}
	if quadrants != 0 {
		m.states[index] = tileVisible
	} else {
		m.states[index] = tileHidden
	}
	shift := uint(4 * index)
	mask := m.mask&^(0xf<<shift) | uint64(quadrants&0xf)<<shift
	if mask == m.mask {
		return
	}
	m.mask = mask
	if m.solid != nil {
		m.solid.Show(mask, mask != 0)
	}
	if m.water != nil {
		m.water.Show(mask, mask != 0)
	}
}

// add stores the geometry of a freshly meshed slot.
func (m *LODMultiMesh) add(index int, solid, water mesh.Handle, origin mgl32.Vec3) {
	m.solid, m.water = solid, water
	if solid != nil {
		solid.SetPosition(origin)
		solid.Show(m.mask, m.mask != 0)
	}
	if water != nil {
		water.SetPosition(origin)
		water.Show(m.mask, m.mask != 0)
	}
	m.states[index] = tileHidden
}
