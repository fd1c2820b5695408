package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// All Record methods accept a nil receiver so callers can run without metrics.

// RecordEpisode counts one search episode by outcome.
func (r *Registry) RecordEpisode(outcome string) {
	if r == nil {
		return
	}
	r.SearchEpisodesTotal.WithLabelValues(outcome).Inc()
}

// RecordCustomerSearch records the distinct paths found for one customer.
func (r *Registry) RecordCustomerSearch(paths int) {
	if r == nil {
		return
	}
	r.SearchCustomersTotal.WithLabelValues("searched").Inc()
	r.PathsPerCustomer.Observe(float64(paths))
}

// RecordCustomerSkipped counts a customer whose search could not start.
func (r *Registry) RecordCustomerSkipped() {
	if r == nil {
		return
	}
	r.SearchCustomersTotal.WithLabelValues("skipped").Inc()
}

// RecordModel records the size of an assignment model.
func (r *Registry) RecordModel(variables, constraints int) {
	if r == nil {
		return
	}
	r.ModelVariables.Set(float64(variables))
	r.ModelConstraints.Set(float64(constraints))
}

// RecordSolve records one solver call.
func (r *Registry) RecordSolve(status string, nodes int, duration time.Duration) {
	if r == nil {
		return
	}
	r.SolvesTotal.WithLabelValues(status).Inc()
	r.SolverNodes.Observe(float64(nodes))
	r.SolveDuration.Observe(duration.Seconds())
}

// RecordStage records the duration of a pipeline stage.
func (r *Registry) RecordStage(stage string, duration time.Duration) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordPlan records the shape of a finished plan.
func (r *Registry) RecordPlan(activePaths, unserved, connections int) {
	if r == nil {
		return
	}
	r.ActivePaths.Set(float64(activePaths))
	r.UnservedCustomers.Set(float64(unserved))
	r.ConnectionsTotal.Add(float64(connections))
}

// RecordViolation counts a post-solve constraint violation.
func (r *Registry) RecordViolation(constraint string) {
	if r == nil {
		return
	}
	r.ConstraintFindings.WithLabelValues(constraint).Inc()
}

// RecordRun counts a finished planning run and samples process gauges.
func (r *Registry) RecordRun(result string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.RunsTotal.WithLabelValues(result).Inc()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	r.MemoryAllocBytes.Set(float64(ms.Alloc))
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
}

// WriteTextfile dumps the registry in Prometheus text format, for node
// exporter's textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
