package terrastream

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type scopeTimes struct {
	last  time.Duration
	total time.Duration
}

// Profiler times the world's per-frame phases (recenter, remesh, frontier)
// and accumulates named counters for the current frame. Scope timings keep a
// running total so averages survive Frame. It is not safe for concurrent
// use, like the world that feeds it.
type Profiler struct {
	frames int
	order  []string
	scopes map[string]*scopeTimes
	counts map[string]int

	now func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes: make(map[string]*scopeTimes),
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// Begin starts timing name and returns the function that stops it. A scope
// entered twice in one frame adds both spans.
func (p *Profiler) Begin(name string) func() {
	s, ok := p.scopes[name]
	if !ok {
		s = &scopeTimes{}
		p.scopes[name] = s
		p.order = append(p.order, name)
	}
	start := p.now()
	return func() {
		d := p.now().Sub(start)
		s.last += d
		s.total += d
	}
}

// Add bumps counter name for the current frame.
func (p *Profiler) Add(name string, delta int) {
	p.counts[name] += delta
}

// Set overwrites counter name for the current frame.
func (p *Profiler) Set(name string, n int) {
	p.counts[name] = n
}

// Frame closes the current frame: scope spans and counters start over.
func (p *Profiler) Frame() {
	p.frames++
	for _, s := range p.scopes {
		s.last = 0
	}
	clear(p.counts)
}

func (p *Profiler) Frames() int { return p.frames }

func (p *Profiler) Count(name string) int { return p.counts[name] }

// Last returns the time spent in name during the current frame.
func (p *Profiler) Last(name string) time.Duration {
	if s, ok := p.scopes[name]; ok {
		return s.last
	}
	return 0
}

// Mean returns the average time per completed frame spent in name.
func (p *Profiler) Mean(name string) time.Duration {
	s, ok := p.scopes[name]
	if !ok || p.frames == 0 {
		return 0
	}
	return (s.total - s.last) / time.Duration(p.frames)
}

// Scopes returns scope names in first-use order.
func (p *Profiler) Scopes() []string {
	return append([]string(nil), p.order...)
}

func (p *Profiler) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "frame %d\n", p.frames)
	for _, name := range p.order {
		fmt.Fprintf(&sb, "  %-10s %8.2f ms  (mean %.2f ms)\n", name, millis(p.Last(name)), millis(p.Mean(name)))
	}
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-10s %8d\n", k, p.counts[k])
	}
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
