package circle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	cx, cz   int
	disposed int
}

func (i *item) Dispose() { i.disposed++ }

func fill(c *Circle[*item]) map[[2]int]*item {
	items := make(map[[2]int]*item)
	c.Each(func(cx, cz int) bool {
		it := &item{cx: cx, cz: cz}
		c.Set(cx, cz, it)
		items[[2]int{cx, cz}] = it
		return false
	})
	return items
}

func TestCircle_RadiusScenario(t *testing.T) {
	c := New[*item](2.5)
	fill(c)

	_, ok := c.Get(0, 0)
	assert.True(t, ok)
	_, ok = c.Get(2, 0)
	assert.True(t, ok)
	_, ok = c.Get(3, 0)
	assert.False(t, ok, "distance 9 exceeds 6.25")
	assert.False(t, c.InRange(3, 0))
	assert.False(t, c.InRange(2, 2), "distance 8 exceeds 6.25")
	assert.True(t, c.InRange(2, 1))

	assert.Equal(t, 21, c.Capacity())
	assert.Equal(t, 21, c.Len())
}

func TestCircle_EachAscendingDistance(t *testing.T) {
	c := New[*item](4.2)
	c.Recenter(10, -7)

	last := -1
	visited := 0
	c.Each(func(cx, cz int) bool {
		dx, dz := cx-10, cz+7
		d := dx*dx + dz*dz
		assert.GreaterOrEqual(t, d, last)
		last = d
		visited++
		return false
	})
	assert.Equal(t, c.Capacity(), visited)

	first := [2]int{}
	c.Each(func(cx, cz int) bool {
		first = [2]int{cx, cz}
		return true
	})
	assert.Equal(t, [2]int{10, -7}, first)
}

func TestCircle_RecenterEvictsOutOfRange(t *testing.T) {
	c := New[*item](2.5)
	items := fill(c)

	c.Recenter(1, 0)
	for key, it := range items {
		dx, dz := key[0]-1, key[1]
		inside := float64(dx*dx+dz*dz) <= 2.5*2.5
		if inside {
			assert.Equal(t, 0, it.disposed, "kept %v", key)
			got, ok := c.Get(key[0], key[1])
			assert.True(t, ok)
			assert.Same(t, it, got)
		} else {
			assert.Equal(t, 1, it.disposed, "evicted %v", key)
			_, ok := c.Get(key[0], key[1])
			assert.False(t, ok)
		}
	}
}

func TestCircle_RecenterIsIdempotent(t *testing.T) {
	c := New[*item](3.5)
	items := fill(c)

	c.Recenter(2, 2)
	disposed := 0
	for _, it := range items {
		disposed += it.disposed
	}
	require.Greater(t, disposed, 0)

	c.Recenter(2, 2)
	again := 0
	for _, it := range items {
		again += it.disposed
	}
	assert.Equal(t, disposed, again)
}

func TestCircle_StaleAliasNotReported(t *testing.T) {
	c := New[*item](1.5)
	c.Set(1, 0, &item{cx: 1, cz: 0})

	// Side is 4, so (1,0) and (5,0) share a slot.
	c.Recenter(4, 0)
	_, ok := c.Get(5, 0)
	assert.False(t, ok)
	_, ok = c.Get(1, 0)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCircle_SetOccupiedPanics(t *testing.T) {
	c := New[*item](2)
	c.Set(1, 1, &item{})
	require.PanicsWithValue(t, "circle: slot for (1, 1) already holds (1, 1)", func() {
		c.Set(1, 1, &item{})
	})
	require.Panics(t, func() { c.Set(5, 0, &item{}) })
}

func TestCircle_NeverReportsOutsideEnvelope(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := New[*item](3.7)

	for step := 0; step < 200; step++ {
		cx, cz := c.Center()
		c.Recenter(cx+rng.Intn(5)-2, cz+rng.Intn(5)-2)
		c.Each(func(x, z int) bool {
			if _, ok := c.Get(x, z); !ok && rng.Intn(2) == 0 {
				c.Set(x, z, &item{cx: x, cz: z})
			}
			return false
		})

		ncx, ncz := c.Center()
		for x := ncx - 12; x <= ncx+12; x++ {
			for z := ncz - 12; z <= ncz+12; z++ {
				it, ok := c.Get(x, z)
				if !ok {
					continue
				}
				dx, dz := x-ncx, z-ncz
				require.LessOrEqual(t, float64(dx*dx+dz*dz), 3.7*3.7)
				require.Equal(t, [2]int{x, z}, [2]int{it.cx, it.cz})
			}
		}
	}
}

func TestCircle_Clear(t *testing.T) {
	c := New[*item](1)
	items := fill(c)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	for _, it := range items {
		assert.Equal(t, 1, it.disposed)
	}
}
