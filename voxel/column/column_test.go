package column

import (
	"math/rand"
	"testing"

	"github.com/gekko3d/terrastream/voxel/block"
	"github.com/gekko3d/terrastream/voxel/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn_PushIsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := New(64)
	for trial := 0; trial < 100; trial++ {
		c.Clear()
		for i := 0; i < 20; i++ {
			c.Push(block.ID(rng.Intn(5)), rng.Intn(100)-10)
		}
		prev := 0
		for n := 0; n < c.Size(); n++ {
			level := c.NthLevel(n)
			require.Greater(t, level, prev)
			prev = level
		}
		require.LessOrEqual(t, prev, 64)
	}
}

func TestColumn_PushIgnoredAtTop(t *testing.T) {
	c := New(16)
	c.Push(block.Stone, 10)
	c.Push(block.Dirt, 8)
	c.Push(block.Grass, 40)
	c.Push(block.Water, 50)

	require.Equal(t, 2, c.Size())
	assert.Equal(t, block.Stone, c.NthBlock(0, block.Bedrock))
	assert.Equal(t, 16, c.NthLevel(1))
	assert.Equal(t, block.Bedrock, c.NthBlock(-1, block.Bedrock))
	assert.Equal(t, 0, c.NthLevel(-1))
}

func TestColumn_OverwriteOutOfRangeIgnored(t *testing.T) {
	c := New(16)
	c.Overwrite(block.Leaves, -1)
	c.Overwrite(block.Leaves, 16)
	c.Overwrite(block.Leaves, 15)
	assert.Equal(t, 1, c.Decorations())
}

func TestColumn_FillChunkDecorationsWin(t *testing.T) {
	vox := volume.NewTensor3(2, 16, 2)
	c := New(16)
	c.Push(block.Stone, 4)
	c.Push(block.Dirt, 6)
	c.Overwrite(block.Trunk, 5)
	c.Overwrite(block.Leaves, 9)
	c.Overwrite(block.Water, 9)

	top := c.FillChunk(1, 0, vox, true)
	assert.Equal(t, 10, top)

	want := []block.ID{
		block.Stone, block.Stone, block.Stone, block.Stone,
		block.Dirt, block.Trunk, block.Empty, block.Empty, block.Empty, block.Water,
		block.Empty, block.Empty, block.Empty, block.Empty, block.Empty, block.Empty,
	}
	assert.Equal(t, want, vox.Column(1, 0))
	assert.Equal(t, make([]block.ID, 16), vox.Column(0, 0), "other columns untouched")
}

func TestColumn_EmptyColumnFillsAir(t *testing.T) {
	vox := volume.NewTensor3(1, 8, 1)
	vox.FillColumn(0, 0, 0, 8, block.Stone)
	c := New(8)
	top := c.FillChunk(0, 0, vox, true)
	assert.Equal(t, 0, top)
	assert.Equal(t, make([]block.ID, 8), vox.Column(0, 0))
}

func TestColumn_ConstantChunkIsAllEquilevel(t *testing.T) {
	const height = 256
	vox := volume.NewTensor3(16, height, 16)
	c := New(height)
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			c.Clear()
			c.Push(block.Stone, height)
			c.FillChunk(x, z, vox, x == 0 && z == 0)
		}
	}
	eq := make([]bool, height)
	c.FillEquilevels(eq)
	for y, v := range eq {
		require.True(t, v, "height %d", y)
	}
}

// randomColumn writes a random column into c and returns the brute-force
// expected contents.
func randomColumn(rng *rand.Rand, c *Column, height int, palette int) []block.ID {
	c.Clear()
	want := make([]block.ID, height)
	last := 0
	for last < height && rng.Intn(8) != 0 {
		top := last + 1 + rng.Intn(height/4+1)
		if rng.Intn(6) == 0 {
			top = last - rng.Intn(3)
		}
		b := block.ID(rng.Intn(palette))
		c.Push(b, top)
		if top > height {
			top = height
		}
		for y := last; y < top; y++ {
			want[y] = b
		}
		if top > last {
			last = top
		}
	}
	for i := rng.Intn(4); i > 0; i-- {
		y := rng.Intn(height+4) - 2
		b := block.ID(rng.Intn(palette))
		c.Overwrite(b, y)
		if y >= 0 && y < height {
			want[y] = b
		}
	}
	return want
}

func TestColumn_EquilevelsMatchBruteForce(t *testing.T) {
	const height = 48
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 60; trial++ {
		vox := volume.NewTensor3(16, height, 16)
		c := New(height)
		palette := 2 + rng.Intn(3)

		// Start from a shared template so that some levels agree.
		template := rng.Int63()
		for x := 0; x < 16; x++ {
			for z := 0; z < 16; z++ {
				colRng := rand.New(rand.NewSource(template))
				if rng.Intn(10) == 0 {
					colRng = rng
				}
				want := randomColumn(colRng, c, height, palette)
				top := c.FillChunk(x, z, vox, x == 0 && z == 0)
				require.Equal(t, want, vox.Column(x, z))

				wantTop := 0
				for y := height - 1; y >= 0; y-- {
					if want[y] != block.Empty {
						wantTop = y + 1
						break
					}
				}
				require.Equal(t, wantTop, top)
			}
		}

		got := make([]bool, height)
		c.FillEquilevels(got)
		for y := 0; y < height; y++ {
			same := true
			ref := vox.Get(0, y, 0)
			for x := 0; x < 16 && same; x++ {
				for z := 0; z < 16; z++ {
					if vox.Get(x, y, z) != ref {
						same = false
						break
					}
				}
			}
			require.Equal(t, same, got[y], "trial %d height %d", trial, y)
		}
	}
}

func TestColumn_FirstResetsTracker(t *testing.T) {
	vox := volume.NewTensor3(2, 8, 1)
	c := New(8)

	c.Push(block.Stone, 8)
	c.FillChunk(0, 0, vox, true)
	c.Clear()
	c.Push(block.Dirt, 8)
	c.FillChunk(1, 0, vox, false)

	eq := make([]bool, 8)
	c.FillEquilevels(eq)
	assert.Equal(t, make([]bool, 8), eq)

	c.Clear()
	c.Push(block.Dirt, 8)
	c.FillChunk(0, 0, vox, true)
	c.FillEquilevels(eq)
	for _, v := range eq {
		assert.True(t, v)
	}
}

func TestColumn_Summarize(t *testing.T) {
	reg := block.DefaultRegistry()
	c := New(64)

	c.Push(block.Stone, 20)
	c.Push(block.Sand, 22)
	c.Push(block.Water, 30)
	s := c.Summarize(reg.Solid, block.Bedrock)
	assert.Equal(t, Summary{SolidBlock: block.Sand, SolidLevel: 22, WaterBlock: block.Water, WaterLevel: 30}, s)

	c.Clear()
	c.Push(block.Stone, 20)
	c.Push(block.Grass, 21)
	c.Push(block.Empty, 40)
	s = c.Summarize(reg.Solid, block.Bedrock)
	assert.Equal(t, Summary{SolidBlock: block.Grass, SolidLevel: 21}, s)

	c.Clear()
	c.Push(block.Water, 5)
	s = c.Summarize(reg.Solid, block.Bedrock)
	assert.Equal(t, Summary{SolidBlock: block.Bedrock, SolidLevel: 0, WaterBlock: block.Water, WaterLevel: 5}, s)

	c.Clear()
	s = c.Summarize(reg.Solid, block.Bedrock)
	assert.Equal(t, Summary{SolidBlock: block.Bedrock}, s)
}
