package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSearchMetrics() {
	r.SearchEpisodesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridplan_search_episodes_total",
			Help: "Search episodes by outcome (found, duplicate, exhausted)",
		},
		[]string{"outcome"},
	)

	r.SearchCustomersTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridplan_search_customers_total",
			Help: "Customers searched, by result (searched, skipped)",
		},
		[]string{"result"},
	)

	r.PathsPerCustomer = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gridplan_search_paths_per_customer",
			Help:    "Distinct paths found per customer",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)
}
