package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	IndexingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skein_indexing_seconds",
		Help:    "Time spent extracting the semantic index of a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skein_phase_seconds",
		Help:    "Time spent in one resolution phase over the whole project.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	ResolvedReferences = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skein_resolved_references",
		Help: "References resolved in the last run, by phase.",
	}, []string{"phase"})

	UnresolvedReferences = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skein_unresolved_references",
		Help: "References left unresolved in the last run, by phase.",
	}, []string{"phase"})

	ImportResolverInvocations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skein_import_resolver_invocations_total",
		Help: "Total lazy import resolver invocations across runs.",
	})

	ResolutionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skein_resolution_cache_hits_total",
		Help: "Total lookups answered from the resolution cache.",
	})

	ResolutionCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skein_resolution_cache_misses_total",
		Help: "Total lookups that required a scope-chain walk.",
	})

	IndexedFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skein_indexed_files_total",
		Help: "Number of files currently held in the registries.",
	})

	IndexedDefinitions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skein_indexed_definitions_total",
		Help: "Number of definitions currently held in the registries.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skein_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skein_resolution_runs_total",
		Help: "Total number of completed resolution runs.",
	})
)
