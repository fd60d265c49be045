// Package circle implements a fixed-capacity spatial index over 2D integer
// coordinates that stays centered on a moving point.
//
// Elements live in a toroidal slot array whose side is the next power of two
// covering the circle's diameter, so memory is proportional to radius² and
// independent of how far the center travels.
package circle

import (
	"fmt"
	"sort"
)

// Disposable is released by the circle when it falls out of range.
type Disposable interface {
	Dispose()
}

type offset struct {
	dx, dz int
	dist   int
}

type slot[T Disposable] struct {
	cx, cz int
	value  T
	live   bool
}

type Circle[T Disposable] struct {
	radius   float64
	centerX  int
	centerZ  int
	offsets  []offset
	envelope []int // envelope[|dx|] is the largest |dz| in range for that row
	slots    []slot[T]
	shift    uint
	mask     int
	count    int
}

func New[T Disposable](radius float64) *Circle[T] {
	if radius < 0 {
		panic(fmt.Sprintf("circle: negative radius %v", radius))
	}
	floor := int(radius)
	bound := radius * radius

	offsets := make([]offset, 0, (2*floor+1)*(2*floor+1))
	envelope := make([]int, floor+1)
	for i := range envelope {
		envelope[i] = -1
	}
	for dx := -floor; dx <= floor; dx++ {
		for dz := -floor; dz <= floor; dz++ {
			d := dx*dx + dz*dz
			if float64(d) > bound {
				continue
			}
			offsets = append(offsets, offset{dx: dx, dz: dz, dist: d})
			ax, az := abs(dx), abs(dz)
			if az > envelope[ax] {
				envelope[ax] = az
			}
		}
	}
	sort.SliceStable(offsets, func(i, j int) bool {
		return offsets[i].dist < offsets[j].dist
	})

	var shift uint
	for (1 << shift) < 2*floor+1 {
		shift++
	}

	return &Circle[T]{
		radius:   radius,
		offsets:  offsets,
		envelope: envelope,
		slots:    make([]slot[T], 1<<(2*shift)),
		shift:    shift,
		mask:     (1 << shift) - 1,
	}
}

func (c *Circle[T]) Radius() float64 { return c.radius }

func (c *Circle[T]) Center() (int, int) { return c.centerX, c.centerZ }

// Len returns the number of live elements.
func (c *Circle[T]) Len() int { return c.count }

// Capacity returns the number of coordinates inside the circle.
func (c *Circle[T]) Capacity() int { return len(c.offsets) }

// InRange reports whether (cx, cz) lies inside the circle around the current center.
func (c *Circle[T]) InRange(cx, cz int) bool {
	ax, az := abs(cx-c.centerX), abs(cz-c.centerZ)
	return ax < len(c.envelope) && az <= c.envelope[ax]
}

// Recenter moves the circle to (cx, cz), disposing every element that is no
// longer in range. Nothing new is created here; callers fill the circle lazily.
func (c *Circle[T]) Recenter(cx, cz int) {
	if cx == c.centerX && cz == c.centerZ {
		return
	}
	c.centerX, c.centerZ = cx, cz
	for i := range c.slots {
		s := &c.slots[i]
		if !s.live || c.InRange(s.cx, s.cz) {
			continue
		}
		value := s.value
		*s = slot[T]{}
		c.count--
		value.Dispose()
	}
}

// Get returns the element stored for exactly (cx, cz).
func (c *Circle[T]) Get(cx, cz int) (T, bool) {
	s := &c.slots[c.index(cx, cz)]
	if !s.live || s.cx != cx || s.cz != cz {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Set stores value at (cx, cz). The coordinate must be in range and its slot empty.
func (c *Circle[T]) Set(cx, cz int, value T) {
	if !c.InRange(cx, cz) {
		panic(fmt.Sprintf("circle: set (%d, %d) outside radius %v around (%d, %d)",
			cx, cz, c.radius, c.centerX, c.centerZ))
	}
	s := &c.slots[c.index(cx, cz)]
	if s.live {
		panic(fmt.Sprintf("circle: slot for (%d, %d) already holds (%d, %d)", cx, cz, s.cx, s.cz))
	}
	*s = slot[T]{cx: cx, cz: cz, value: value, live: true}
	c.count++
}

// Each visits every coordinate in range in ascending distance from the
// center. Returning true from fn stops the walk.
func (c *Circle[T]) Each(fn func(cx, cz int) bool) {
	cx, cz := c.centerX, c.centerZ
	for _, o := range c.offsets {
		if fn(cx+o.dx, cz+o.dz) {
			return
		}
	}
}

// Clear disposes every live element.
func (c *Circle[T]) Clear() {
	for i := range c.slots {
		s := &c.slots[i]
		if !s.live {
			continue
		}
		value := s.value
		*s = slot[T]{}
		c.count--
		value.Dispose()
	}
}

func (c *Circle[T]) index(cx, cz int) int {
	return ((cz & c.mask) << c.shift) | (cx & c.mask)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
