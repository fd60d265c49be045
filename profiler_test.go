package terrastream

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newClockedProfiler() (*Profiler, *time.Time) {
	p := NewProfiler()
	clock := time.Unix(0, 0)
	p.now = func() time.Time { return clock }
	return p, &clock
}

func TestProfiler_ScopesAccumulateWithinFrame(t *testing.T) {
	p, clock := newClockedProfiler()

	end := p.Begin("remesh")
	*clock = clock.Add(3 * time.Millisecond)
	end()
	end = p.Begin("frontier")
	*clock = clock.Add(time.Millisecond)
	end()
	end = p.Begin("remesh")
	*clock = clock.Add(2 * time.Millisecond)
	end()

	assert.Equal(t, 5*time.Millisecond, p.Last("remesh"))
	assert.Equal(t, time.Millisecond, p.Last("frontier"))
	assert.Equal(t, []string{"remesh", "frontier"}, p.Scopes())
	assert.Equal(t, time.Duration(0), p.Last("never"))
}

func TestProfiler_FrameResetsButKeepsMean(t *testing.T) {
	p, clock := newClockedProfiler()

	for _, d := range []time.Duration{2 * time.Millisecond, 4 * time.Millisecond} {
		end := p.Begin("recenter")
		*clock = clock.Add(d)
		end()
		p.Add("loaded", 1)
		p.Frame()
	}

	assert.Equal(t, 2, p.Frames())
	assert.Equal(t, time.Duration(0), p.Last("recenter"))
	assert.Equal(t, 3*time.Millisecond, p.Mean("recenter"))
	assert.Equal(t, 0, p.Count("loaded"))
}

func TestProfiler_CountersAndString(t *testing.T) {
	p, clock := newClockedProfiler()
	end := p.Begin("remesh")
	*clock = clock.Add(3 * time.Millisecond)
	end()

	p.Add("meshed", 2)
	p.Add("meshed", 3)
	p.Set("live", 7)
	p.Set("live", 4)
	assert.Equal(t, 5, p.Count("meshed"))
	assert.Equal(t, 4, p.Count("live"))

	out := p.String()
	assert.Contains(t, out, "frame 0")
	assert.Contains(t, out, "3.00 ms")
	assert.Less(t, strings.Index(out, "live"), strings.Index(out, "meshed"), "counters are sorted")
}
