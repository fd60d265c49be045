package terrastream

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes streaming counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	chunksLoaded    prometheus.Counter
	chunksMeshed    prometheus.Counter
	chunksEvicted   prometheus.Counter
	tilesMeshed     prometheus.Counter
	tilesEvicted    prometheus.Counter
	chunksActive    prometheus.Gauge
	frontierPending prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunksLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrastream",
			Name:      "chunks_loaded_total",
			Help:      "Chunks populated from the terrain callback.",
		}),
		chunksMeshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrastream",
			Name:      "chunks_meshed_total",
			Help:      "Full-detail chunk remeshes.",
		}),
		chunksEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrastream",
			Name:      "chunks_evicted_total",
			Help:      "Chunks disposed after leaving the load radius.",
		}),
		tilesMeshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrastream",
			Name:      "frontier_tiles_meshed_total",
			Help:      "Coarse frontier tiles meshed.",
		}),
		tilesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrastream",
			Name:      "frontier_tiles_evicted_total",
			Help:      "Coarse frontier tiles disposed.",
		}),
		chunksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "terrastream",
			Name:      "chunks_active",
			Help:      "Chunks currently held by the world.",
		}),
		frontierPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "terrastream",
			Name:      "frontier_tiles_deferred",
			Help:      "Frontier tiles skipped by the last remesh because the budget ran out.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.chunksLoaded, m.chunksMeshed, m.chunksEvicted,
			m.tilesMeshed, m.tilesEvicted, m.chunksActive, m.frontierPending)
	}
	return m
}

func (m *Metrics) chunkLoaded() {
	if m != nil {
		m.chunksLoaded.Inc()
		m.chunksActive.Inc()
	}
}

func (m *Metrics) chunkMeshed() {
	if m != nil {
		m.chunksMeshed.Inc()
	}
}

func (m *Metrics) chunkEvicted() {
	if m != nil {
		m.chunksEvicted.Inc()
		m.chunksActive.Dec()
	}
}

func (m *Metrics) tileMeshed() {
	if m != nil {
		m.tilesMeshed.Inc()
	}
}

func (m *Metrics) tileEvicted() {
	if m != nil {
		m.tilesEvicted.Inc()
	}
}

func (m *Metrics) frontierDeferred(n int) {
	if m != nil {
		m.frontierPending.Set(float64(n))
	}
}
