// Package pipeline runs a planning run end to end: load, search, encode,
// optimize, translate, diagnose, verify and reconstruct.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-gridplan/pkg/algorithms"
	"github.com/dd0wney/cluso-gridplan/pkg/config"
	"github.com/dd0wney/cluso-gridplan/pkg/connection"
	"github.com/dd0wney/cluso-gridplan/pkg/constraints"
	"github.com/dd0wney/cluso-gridplan/pkg/incidence"
	"github.com/dd0wney/cluso-gridplan/pkg/logging"
	"github.com/dd0wney/cluso-gridplan/pkg/metrics"
	"github.com/dd0wney/cluso-gridplan/pkg/network"
	"github.com/dd0wney/cluso-gridplan/pkg/optimizer"
	"github.com/dd0wney/cluso-gridplan/pkg/plan"
	"github.com/dd0wney/cluso-gridplan/pkg/solver"
)

// Stage names, as logged and recorded in metrics.
const (
	StageLoad        = "load"
	StageSearch      = "search"
	StageIncidence   = "incidence"
	StageOptimize    = "optimize"
	StageTranslate   = "translate"
	StageDiagnose    = "diagnose"
	StageVerify      = "verify"
	StageReconstruct = "reconstruct"
	StageSave        = "save"
)

// ErrPlanRejected is returned when a solved plan fails post-solve verification.
var ErrPlanRejected = errors.New("pipeline: solved plan violates network constraints")

// Result is everything a planning run produced.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Store is the annotated element table; terminals name their feeder.
	Store       *network.Store
	Paths       []algorithms.Path
	Matrix      *incidence.Matrix
	Blocks      *incidence.Blocks
	Solution    *optimizer.Result
	Assignment  *plan.AssignmentTable
	Activation  *plan.ActivationTable
	Diagnosis   *plan.Diagnosis
	Validation  *constraints.ValidationResult
	Connections []connection.Connection
}

// PathID returns the row label of path i.
func (r *Result) PathID(i int) string {
	return incidence.RowLabel(i)
}

// Planner wires the planning stages together.
type Planner struct {
	source         Source
	search         algorithms.Options
	optimizer      optimizer.Options
	feederDistance float64
	solver         solver.Solver
	workers        int
	sinks          []Sink
	logger         logging.Logger
	metrics        *metrics.Registry
}

// Option configures a Planner.
type Option func(*Planner)

func WithSearchOptions(o algorithms.Options) Option {
	return func(p *Planner) { p.search = o }
}

func WithOptimizerOptions(o optimizer.Options) Option {
	return func(p *Planner) { p.optimizer = o }
}

// WithFeederDistance bounds the nearest-transformer fallback; 0 is unlimited.
func WithFeederDistance(d float64) Option {
	return func(p *Planner) { p.feederDistance = d }
}

func WithSolver(s solver.Solver) Option {
	return func(p *Planner) { p.solver = s }
}

func WithWorkers(n int) Option {
	return func(p *Planner) { p.workers = n }
}

// WithSink adds a destination for completed runs. Sinks run in order.
func WithSink(s Sink) Option {
	return func(p *Planner) { p.sinks = append(p.sinks, s) }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

func WithMetrics(r *metrics.Registry) Option {
	return func(p *Planner) { p.metrics = r }
}

// FromConfig maps a loaded configuration onto planner options.
func FromConfig(cfg config.Config) []Option {
	return []Option{
		WithSearchOptions(cfg.SearchOptions()),
		WithOptimizerOptions(cfg.OptimizerOptions()),
		WithFeederDistance(cfg.Optimizer.MaxFeederDistance),
		WithSolver(cfg.NewSolver()),
		WithWorkers(cfg.Search.Workers),
	}
}

// NewPlanner creates a planner reading elements from source.
func NewPlanner(source Source, opts ...Option) *Planner {
	p := &Planner{
		source:    source,
		search:    algorithms.DefaultOptions(),
		optimizer: optimizer.DefaultOptions(),
		solver:    solver.NewPseudoBoolean(),
		workers:   1,
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one planning run. Infeasibility and verification failures
// abort the run; unserved customers are reported in the result.
func (p *Planner) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	log := p.logger.With(logging.RunID(res.RunID))
	log.Info("planning run started",
		logging.Int("max_paths", p.search.MaxPaths),
		logging.Bool("escalate_duplicates", p.search.EscalateDuplicates),
		logging.Bool("full_coverage", p.optimizer.RequireFullCoverage))

	if err := p.run(ctx, log, res); err != nil {
		result := "failed"
		if errors.Is(err, optimizer.ErrInfeasible) {
			result = "infeasible"
		}
		p.metrics.RecordRun(result)
		log.Error("planning run failed", logging.String("result", result), logging.Error(err))
		return nil, err
	}

	res.FinishedAt = time.Now()
	p.metrics.RecordRun("ok")
	log.Info("planning run finished",
		logging.Int("paths", len(res.Paths)),
		logging.Int("active_paths", len(res.Activation.Active())),
		logging.Int("unserved", len(res.Diagnosis.Unserved)),
		logging.Int("connections", len(res.Connections)),
		logging.Latency(res.FinishedAt.Sub(res.StartedAt)))
	return res, nil
}

func (p *Planner) run(ctx context.Context, log logging.Logger, res *Result) error {
	var store *network.Store
	err := p.stage(log, StageLoad, func(log logging.Logger) error {
		elements, err := p.source.LoadElements(ctx)
		if err != nil {
			return fmt.Errorf("load elements: %w", err)
		}
		store, err = network.NewStore(elements)
		if err != nil {
			return err
		}
		log.Debug("elements loaded", logging.Count(store.Len()))
		return nil
	})
	if err != nil {
		return err
	}

	err = p.stage(log, StageSearch, func(log logging.Logger) error {
		engine, err := algorithms.NewEngine(store, p.search,
			algorithms.WithLogger(log),
			algorithms.WithMetrics(p.metrics),
			algorithms.WithWorkers(p.workers))
		if err != nil {
			return err
		}
		if p.search.MaxPaths > 1 && !p.search.EscalateDuplicates {
			log.Info("duplicate escalation off, later episodes retrace each customer's first path",
				logging.Int("max_paths", p.search.MaxPaths))
		}
		res.Paths, err = engine.FindAllPaths(ctx)
		return err
	})
	if err != nil {
		return err
	}

	err = p.stage(log, StageIncidence, func(log logging.Logger) error {
		m, err := incidence.Build(res.Paths, store, incidence.Options{MaxFeederDistance: p.feederDistance})
		if err != nil {
			return err
		}
		res.Matrix = m
		res.Blocks, err = incidence.Partition(m, store)
		return err
	})
	if err != nil {
		return err
	}

	problem := optimizer.NewProblem(res.Blocks, store)
	err = p.stage(log, StageOptimize, func(log logging.Logger) error {
		start := time.Now()
		sol, err := optimizer.Solve(ctx, problem, p.optimizer, p.solver)
		if err != nil {
			status := solver.StatusInfeasible.String()
			if !errors.Is(err, optimizer.ErrInfeasible) {
				status = "error"
			}
			p.metrics.RecordSolve(status, 0, time.Since(start))
			return err
		}
		p.metrics.RecordModel(sol.Variables, sol.Constraints)
		p.metrics.RecordSolve(sol.Status.String(), sol.Nodes, time.Since(start))
		log.Debug("assignment solved",
			logging.String("status", sol.Status.String()),
			logging.Float64("objective", sol.Objective),
			logging.Int("nodes", sol.Nodes),
			logging.Int("variables", sol.Variables),
			logging.Int("constraints", sol.Constraints))
		res.Solution = sol
		return nil
	})
	if err != nil {
		return err
	}

	err = p.stage(log, StageTranslate, func(logging.Logger) error {
		var err error
		res.Assignment, res.Activation, err = plan.Translate(res.Solution, problem.Transformers, problem.Terminals, res.Blocks.Rows)
		return err
	})
	if err != nil {
		return err
	}

	err = p.stage(log, StageDiagnose, func(log logging.Logger) error {
		res.Diagnosis = plan.Diagnose(res.Blocks, store.Names(network.Customer), res.Activation)
		res.Diagnosis.Report(log)
		return nil
	})
	if err != nil {
		return err
	}

	err = p.stage(log, StageVerify, func(log logging.Logger) error {
		vr, err := constraints.NewPlanValidator().Validate(&constraints.Plan{
			Blocks:     res.Blocks,
			Assignment: res.Assignment,
			Activation: res.Activation,
			Capacity:   problem.Capacity,
		})
		if err != nil {
			return err
		}
		for _, v := range vr.Violations {
			p.metrics.RecordViolation(v.Constraint)
			log.Warn("constraint finding",
				logging.String("constraint", v.Constraint),
				logging.String("severity", v.Severity.String()),
				logging.String("element", v.Element),
				logging.String("message", v.Message))
		}
		res.Validation = vr
		if !vr.Valid {
			return fmt.Errorf("%w: %d errors", ErrPlanRejected, len(vr.Errors()))
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = p.stage(log, StageReconstruct, func(log logging.Logger) error {
		rec, err := connection.Reconstruct(store, res.Assignment, res.Activation, res.Paths)
		if err != nil {
			return err
		}
		res.Store = rec.Store
		res.Connections = rec.Connections
		for i, path := range res.Paths {
			id := res.PathID(i)
			if !res.Activation.IsActive(id) {
				continue
			}
			term, _ := res.Store.Get(path.Terminal())
			log.Debug("path activated",
				logging.PathID(id),
				logging.Customer(path.Customer()),
				logging.Terminal(term.Name),
				logging.Transformer(term.AssignedTerminal))
		}
		p.metrics.RecordPlan(len(res.Activation.Active()), len(res.Diagnosis.Unserved), len(res.Connections))
		return nil
	})
	if err != nil {
		return err
	}

	if len(p.sinks) == 0 {
		return nil
	}
	res.FinishedAt = time.Now()
	return p.stage(log, StageSave, func(logging.Logger) error {
		for _, s := range p.sinks {
			if err := s.SaveRun(ctx, res); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
		}
		return nil
	})
}

// stage times fn, logs its outcome and records its duration.
func (p *Planner) stage(log logging.Logger, name string, fn func(logging.Logger) error) error {
	log = log.With(logging.Stage(name))
	timer := logging.StartTimer(log, "stage finished")
	if err := fn(log); err != nil {
		p.metrics.RecordStage(name, timer.EndError(err))
		return err
	}
	p.metrics.RecordStage(name, timer.End())
	return nil
}
