package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSolverMetrics() {
	r.SolvesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridplan_solves_total",
			Help: "Optimizer invocations by solver status",
		},
		[]string{"status"},
	)

	r.SolveDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gridplan_solve_duration_seconds",
			Help:    "Wall time spent in the binary program solver",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
		},
	)

	r.SolverNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gridplan_solver_nodes",
			Help:    "Branch-and-bound nodes explored per solve",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		},
	)

	r.ModelVariables = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridplan_model_variables",
			Help: "Binary variables in the last assignment model",
		},
	)

	r.ModelConstraints = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridplan_model_constraints",
			Help: "Linear constraints in the last assignment model",
		},
	)
}
