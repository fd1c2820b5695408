package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPlanMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridplan_runs_total",
			Help: "Planning runs by result (ok, infeasible, failed)",
		},
		[]string{"result"},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridplan_stage_duration_seconds",
			Help:    "Duration of each planning stage",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
		},
		[]string{"stage"},
	)

	r.ActivePaths = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridplan_active_paths",
			Help: "Paths activated by the last plan",
		},
	)

	r.UnservedCustomers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridplan_unserved_customers",
			Help: "Customers without an activated path in the last plan",
		},
	)

	r.ConnectionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "gridplan_connections_total",
			Help: "Connections emitted by the reconstructor",
		},
	)

	r.ConstraintFindings = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridplan_constraint_violations_total",
			Help: "Post-solve constraint violations by constraint",
		},
		[]string{"constraint"},
	)

	r.GoRoutines = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridplan_goroutines",
			Help: "Goroutines alive when the run finished",
		},
	)

	r.MemoryAllocBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridplan_memory_alloc_bytes",
			Help: "Heap bytes allocated when the run finished",
		},
	)
}
