package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GenerationMetrics holds the Prometheus metrics for test generation runs.
type GenerationMetrics struct {
	// Candidate metrics
	CandidatesTotal *prometheus.CounterVec // by driver and verdict
	AcceptedTotal   *prometheus.CounterVec

	// Recovery metrics
	RestartsTotal  *prometheus.CounterVec
	FailSafeTotal  *prometheus.CounterVec
	DuplicateTotal *prometheus.CounterVec

	// Run metrics
	RunDuration *prometheus.HistogramVec
	SavesTotal  *prometheus.CounterVec
}

// NewGenerationMetrics registers the generation metrics on the given
// registerer. Pass prometheus.DefaultRegisterer in production or a fresh
// registry in tests so two driver instances never interfere.
func NewGenerationMetrics(reg prometheus.Registerer) *GenerationMetrics {
	factory := promauto.With(reg)

	return &GenerationMetrics{
		CandidatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_candidates_total",
				Help: "Total number of classified candidates",
			},
			[]string{"driver", "verdict"},
		),
		AcceptedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_accepted_total",
				Help: "Total number of accepted candidates",
			},
			[]string{"driver"},
		),
		RestartsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_source_restarts_total",
				Help: "Total number of source restarts after exhaustion",
			},
			[]string{"driver"},
		),
		FailSafeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_failsafe_hits_total",
				Help: "Total number of fail-safe increments (duplicates and undefined verdicts)",
			},
			[]string{"driver"},
		),
		DuplicateTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_duplicates_total",
				Help: "Total number of candidates skipped as duplicates",
			},
			[]string{"driver"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "testgen_run_duration_seconds",
				Help:    "Duration of one generation run",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"driver"},
		),
		SavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_corpus_saves_total",
				Help: "Total number of corpus persistence calls",
			},
			[]string{"method"},
		),
	}
}

// ObserveRun records the duration of one driver run.
func (m *GenerationMetrics) ObserveRun(driver string, start time.Time) {
	m.RunDuration.WithLabelValues(driver).Observe(time.Since(start).Seconds())
}
