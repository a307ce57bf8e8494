// Package metrics exposes search progress as Prometheus gauges and
// counters, updated at the same points the teacher's StatsListener
// (pkg/mcts/stats_listener.go) fires its onCycle/onDepth/onStop
// callbacks — adapted here to concrete Prometheus collectors instead
// of user-supplied closures, since this module targets a scrapeable
// process rather than an embeddable library callback API.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set is the collector group one engine instance registers. Each
// field corresponds to one quantity spec.md's worker loop and
// controller already track internally (playouts, collisions, tree
// size, search depth); Set only gives them an external face.
type Set struct {
	Playouts       prometheus.Counter
	Collisions     prometheus.Counter
	TreeSize       prometheus.Gauge
	MaxDepth       prometheus.Gauge
	SearchDuration prometheus.Histogram
	Resignations   prometheus.Counter
}

// New builds a Set with a common namespace/subsystem and registers it
// with reg. Passing prometheus.NewRegistry() keeps metrics isolated
// per test; passing prometheus.DefaultRegisterer wires into the
// process-wide /metrics endpoint.
func New(reg prometheus.Registerer) *Set {
	s := &Set{
		Playouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stonetree",
			Subsystem: "search",
			Name:      "playouts_total",
			Help:      "Total playouts completed across all searches.",
		}),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stonetree",
			Subsystem: "search",
			Name:      "expansion_collisions_total",
			Help:      "Total times a worker found a node already being expanded by another worker.",
		}),
		TreeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stonetree",
			Subsystem: "search",
			Name:      "tree_nodes",
			Help:      "Live node count of the current search tree.",
		}),
		MaxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stonetree",
			Subsystem: "search",
			Name:      "tree_max_depth",
			Help:      "Deepest descent observed by any worker in the current search tree.",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stonetree",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of completed searches.",
			Buckets:   prometheus.DefBuckets,
		}),
		Resignations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stonetree",
			Subsystem: "search",
			Name:      "resignations_total",
			Help:      "Total searches that concluded in a resignation.",
		}),
	}

	reg.MustRegister(s.Playouts, s.Collisions, s.TreeSize, s.MaxDepth, s.SearchDuration, s.Resignations)
	return s
}

// Observe folds one completed search's summary into the Set's
// counters/gauges — called once per Controller.Search call by
// whatever owns both the Controller and the Set (kept separate so
// search itself has no Prometheus dependency).
func (s *Set) Observe(playouts, collisions int64, treeSize int64, maxDepth int32, seconds float64, resigned bool) {
	s.Playouts.Add(float64(playouts))
	s.Collisions.Add(float64(collisions))
	s.TreeSize.Set(float64(treeSize))
	s.MaxDepth.Set(float64(maxDepth))
	s.SearchDuration.Observe(seconds)
	if resigned {
		s.Resignations.Inc()
	}
}
