package querycache

import "github.com/prometheus/client_golang/prometheus"

const (
	metricsNamespace = "pantry"
	metricsSubsystem = "querycache"
)

type metrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	fetches       prometheus.Counter
	evictions     prometheus.Counter
	invalidations *prometheus.CounterVec
}

func newMetrics() *metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		})
	}
	return &metrics{
		hits:      counter("hits_total", "Reads served from a fresh cache entry."),
		misses:    counter("misses_total", "Reads that had to run their fetcher."),
		fetches:   counter("fetches_total", "Fetcher executions, including refetches after invalidation."),
		evictions: counter("evictions_total", "Entries dropped because nothing subscribes to them."),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "invalidations_total",
			Help:      "Topic invalidations, by topic.",
		}, []string{"topic"}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) {
	if reg == nil {
		return
	}
	reg.MustRegister(m.hits, m.misses, m.fetches, m.evictions, m.invalidations)
}
