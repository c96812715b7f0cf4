package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Index engine Prometheus metrics.
var (
	IndexWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketindex",
			Name:      "index_writes_total",
			Help:      "Total number of index writes",
		},
		[]string{"type", "op", "status"}, // op: index/remove, status: ok/error/disabled
	)

	ReindexTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketindex",
			Name:      "reindex_total",
			Help:      "Deferred reindex outcomes",
		},
		[]string{"type", "outcome"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketindex",
			Name:      "search_duration_seconds",
			Help:      "Search engine query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"type", "status"},
	)

	EngineEnabled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marketindex",
			Name:      "engine_enabled",
			Help:      "1 when the search engine is reachable and indexes are provisioned",
		},
	)
)

// Reindex outcome label values.
const (
	OutcomeOK         = "ok"
	OutcomeStale      = "stale"
	OutcomeIncomplete = "incomplete"
	OutcomeFailed     = "failed"
	OutcomeDisabled   = "disabled"
)

var registerOnce sync.Once

// Register registers every marketindex collector with the default registry.
// Must be called once from main; later calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(IndexWritesTotal)
		prometheus.MustRegister(ReindexTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(EngineEnabled)
		prometheus.MustRegister(httpRequestDuration)
		prometheus.MustRegister(httpRequestsTotal)
	})
}
