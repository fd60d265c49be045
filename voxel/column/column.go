// Package column holds the run-length column representation that terrain
// generators write into, and the equi-level tracker fed while a chunk is
// filled from those columns.
package column

import (
	"fmt"

	"github.com/gekko3d/terrastream/voxel/block"
	"github.com/gekko3d/terrastream/voxel/volume"
)

// run covers [previous top, top) with a single block.
type run struct {
	block block.ID
	top   int
}

type decoration struct {
	block block.ID
	y     int
}

// Column is a vertical list of runs covering [0, height), plus point
// decorations that override the runs. A Column is reused: Clear it before
// each generator callback.
type Column struct {
	height      int
	runs        []run
	last        int
	decorations []decoration

	// scratch for FillChunk
	effective []run
	sorted    []decoration

	// equi-level tracking across the columns of one chunk
	reference  []run
	mismatches []int32
}

func New(height int) *Column {
	if height <= 0 {
		panic(fmt.Sprintf("column: invalid height %d", height))
	}
	return &Column{
		height:     height,
		runs:       make([]run, 0, 16),
		effective:  make([]run, 0, 16),
		reference:  make([]run, 0, 16),
		mismatches: make([]int32, height),
	}
}

func (c *Column) Height() int { return c.height }

// Clear drops runs and decorations. The equi-level state is kept; it is
// reset by the next FillChunk with first set.
func (c *Column) Clear() {
	c.runs = c.runs[:0]
	c.decorations = c.decorations[:0]
	c.last = 0
}

// Push appends a run of b from the current top up to top, clamped to the
// column height. Runs that would not rise above the current top are ignored.
func (c *Column) Push(b block.ID, top int) {
	if top > c.height {
		top = c.height
	}
	if top <= c.last {
		return
	}
	c.last = top
	c.runs = append(c.runs, run{block: b, top: top})
}

// Overwrite records a single-voxel decoration at y. Decorations win over
// runs; among decorations at the same height the last one wins.
func (c *Column) Overwrite(b block.ID, y int) {
	if y < 0 || y >= c.height {
		return
	}
	c.decorations = append(c.decorations, decoration{block: b, y: y})
}

// Size returns the number of pushed runs.
func (c *Column) Size() int { return len(c.runs) }

// NthBlock returns the block of run n, or bedrock for n < 0.
func (c *Column) NthBlock(n int, bedrock block.ID) block.ID {
	if n < 0 {
		return bedrock
	}
	return c.runs[n].block
}

// NthLevel returns the top of run n, or 0 for n < 0.
func (c *Column) NthLevel(n int) int {
	if n < 0 {
		return 0
	}
	return c.runs[n].top
}

// Decorations returns the number of recorded decorations.
func (c *Column) Decorations() int { return len(c.decorations) }

// FillChunk writes this column into voxels at (x, z): runs first, then
// decorations on top. It then folds the column into the equi-level tracker;
// first makes this column the reference for the rest of the chunk.
// The returned value is one past the highest non-empty voxel.
func (c *Column) FillChunk(x, z int, voxels *volume.Tensor3, first bool) int {
	if voxels.Shape[1] != c.height {
		panic(fmt.Sprintf("column: height %d does not match volume height %d", c.height, voxels.Shape[1]))
	}
	c.effective = c.resolve(c.effective[:0])

	start := 0
	top := 0
	for _, r := range c.effective {
		voxels.FillColumn(x, z, start, r.top-start, r.block)
		if r.block != block.Empty {
			top = r.top
		}
		start = r.top
	}

	if first {
		c.reference = append(c.reference[:0], c.effective...)
		for i := range c.mismatches {
			c.mismatches[i] = 0
		}
		return top
	}
	c.matchReference()
	return top
}

// FillEquilevels writes, for each height, whether every column filled since
// the last first-column agrees on the block at that height.
func (c *Column) FillEquilevels(dst []bool) {
	if len(dst) != c.height {
		panic(fmt.Sprintf("column: equilevels length %d, want %d", len(dst), c.height))
	}
	var current int32
	for y := 0; y < c.height; y++ {
		current += c.mismatches[y]
		dst[y] = current == 0
	}
}

// matchReference walks the effective runs of this column and of the
// reference in lockstep, bumping the mismatch delta at the start of every
// disagreeing range and dropping it at the end.
func (c *Column) matchReference() {
	cur, ref := c.effective, c.reference
	i, j, y := 0, 0, 0
	for y < c.height {
		a, b := cur[i], ref[j]
		end := min(a.top, b.top)
		if a.block != b.block {
			c.mismatches[y]++
			if end < c.height {
				c.mismatches[end]--
			}
		}
		y = end
		if a.top == end {
			i++
		}
		if b.top == end {
			j++
		}
	}
}

// resolve appends to dst the runs of the column with decorations folded in
// and an empty run padding it up to the full height. Adjacent runs with the
// same block are merged.
func (c *Column) resolve(dst []run) []run {
	emit := func(b block.ID, top int) {
		if n := len(dst); n > 0 && dst[n-1].block == b {
			dst[n-1].top = top
			return
		}
		dst = append(dst, run{block: b, top: top})
	}

	decs := c.sortedDecorations()
	base := c.runs
	ri, di, y := 0, 0, 0
	for y < c.height {
		if di < len(decs) && decs[di].y == y {
			emit(decs[di].block, y+1)
			y++
			di++
		} else {
			b, end := block.Empty, c.height
			if ri < len(base) {
				b, end = base[ri].block, base[ri].top
			}
			if di < len(decs) && decs[di].y < end {
				end = decs[di].y
			}
			emit(b, end)
			y = end
		}
		for ri < len(base) && base[ri].top <= y {
			ri++
		}
	}
	return dst
}

// sortedDecorations orders decorations by height, keeping only the last
// write at each height. Decoration lists are short, so insertion sort.
func (c *Column) sortedDecorations() []decoration {
	s := append(c.sorted[:0], c.decorations...)
	for i := 1; i < len(s); i++ {
		for k := i; k > 0 && s[k-1].y > s[k].y; k-- {
			s[k-1], s[k] = s[k], s[k-1]
		}
	}
	out := s[:0]
	for i, d := range s {
		if i+1 < len(s) && s[i+1].y == d.y {
			continue
		}
		out = append(out, d)
	}
	c.sorted = s
	return out
}
