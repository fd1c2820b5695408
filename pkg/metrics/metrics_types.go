package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the metrics of planning runs.
type Registry struct {
	// Path search
	SearchEpisodesTotal  *prometheus.CounterVec
	SearchCustomersTotal *prometheus.CounterVec
	PathsPerCustomer     prometheus.Histogram

	// Optimizer
	SolvesTotal      *prometheus.CounterVec
	SolveDuration    prometheus.Histogram
	SolverNodes      prometheus.Histogram
	ModelVariables   prometheus.Gauge
	ModelConstraints prometheus.Gauge

	// Plan
	RunsTotal          *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	ActivePaths        prometheus.Gauge
	UnservedCustomers  prometheus.Gauge
	ConnectionsTotal   prometheus.Counter
	ConstraintFindings *prometheus.CounterVec

	// Process
	MemoryAllocBytes prometheus.Gauge
	GoRoutines       prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSearchMetrics()
	r.initSolverMetrics()
	r.initPlanMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
