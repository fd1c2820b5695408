// Package optimizer selects which paths to activate and which transformer
// feeds which terminal.
package optimizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-gridplan/pkg/incidence"
	"github.com/dd0wney/cluso-gridplan/pkg/network"
	"github.com/dd0wney/cluso-gridplan/pkg/solver"
	"github.com/dd0wney/cluso-gridplan/pkg/validation"
)

var (
	ErrInfeasible    = errors.New("optimizer: no assignment satisfies the constraints")
	ErrUnbounded     = errors.New("optimizer: objective unbounded, check the model configuration")
	ErrShapeMismatch = errors.New("optimizer: incidence blocks do not match the element sets")
)

// Options weighs the objective and toggles optional constraints.
type Options struct {
	// PathReward is earned per activated path.
	PathReward float64
	// LinkCost is paid per transformer-terminal link.
	LinkCost float64
	// RequireFullCoverage forces one active path for every customer that has
	// at least one candidate path.
	RequireFullCoverage bool
}

// DefaultOptions rewards a path 10 and charges a link 1.
func DefaultOptions() Options {
	return Options{PathReward: 10, LinkCost: 1}
}

// Validate checks the objective weights.
func (o Options) Validate() error {
	return validation.NewConfigValidator("optimizer").
		PositiveFloat("path_reward", o.PathReward).
		NonNegativeFloat("link_cost", o.LinkCost).
		Validate()
}

// Problem is the input of one assignment solve.
type Problem struct {
	Customers    []string
	Terminals    []string
	Transformers []string
	Blocks       *incidence.Blocks
	// Capacity caps the number of terminals a transformer feeds. Missing or 0
	// means unlimited.
	Capacity map[string]int
}

// NewProblem labels the blocks' columns and reads transformer capacities
// from store.
func NewProblem(blocks *incidence.Blocks, store *network.Store) *Problem {
	p := &Problem{
		Customers:    blocks.Customers.Columns,
		Terminals:    blocks.Terminals.Columns,
		Transformers: blocks.Transformers.Columns,
		Blocks:       blocks,
		Capacity:     make(map[string]int),
	}
	for _, t := range store.OfType(network.Transformer) {
		if t.Capacity > 0 {
			p.Capacity[t.Name] = t.Capacity
		}
	}
	return p
}

// Result holds the solved decision variables copied out of the model.
type Result struct {
	Transformers []string
	Terminals    []string
	Paths        []string
	// Assignment[t][r] is 1 when transformer t feeds terminal r.
	Assignment [][]int
	// Activation[h] is 1 when path h is active.
	Activation []int

	Objective   float64
	Status      solver.Status
	Nodes       int
	Variables   int
	Constraints int
}

// Formulation is the binary program built for a Problem.
type Formulation struct {
	Model *solver.Model
	// Tr[t][r] and P[h] index the model's variables.
	Tr [][]solver.Var
	P  []solver.Var
}

func checkShape(p *Problem) error {
	b := p.Blocks
	if b == nil {
		return fmt.Errorf("%w: no blocks", ErrShapeMismatch)
	}
	blocks := []struct {
		name   string
		labels []string
		block  incidence.Block
	}{
		{"customers", p.Customers, b.Customers},
		{"terminals", p.Terminals, b.Terminals},
		{"transformers", p.Transformers, b.Transformers},
	}
	for _, blk := range blocks {
		if len(blk.labels) != len(blk.block.Columns) {
			return fmt.Errorf("%w: %d %s but block has %d columns", ErrShapeMismatch, len(blk.labels), blk.name, len(blk.block.Columns))
		}
		if len(blk.block.Values) != len(b.Rows) {
			return fmt.Errorf("%w: %s block has %d rows, want %d", ErrShapeMismatch, blk.name, len(blk.block.Values), len(b.Rows))
		}
		for i, row := range blk.block.Values {
			if len(row) != len(blk.labels) {
				return fmt.Errorf("%w: %s row %s has %d cells, want %d", ErrShapeMismatch, blk.name, b.Rows[i], len(row), len(blk.labels))
			}
		}
	}
	return nil
}

// Formulate builds the assignment model:
//
//	max  PathReward*sum(P) - LinkCost*sum(Tr)
//	s.t. rowsum(Hr)[h]*P[h] <= sum_r Tr[t,r]*Hr[h,r]   for every h and its feeder t
//	     rowsum(Hr)[h]*P[h] <= 0                        for every h without a feeder
//	     sum_h P[h]*Hc[h,c] <= 1                        for every customer c
//	     sum_t Tr[t,r] <= 1                             for every terminal r
//	     sum_r Tr[t,r] <= capacity(t)                   for every capped transformer t
//	     sum_h P[h]*Hc[h,c] >= 1                        with full coverage, per customer with paths
func Formulate(p *Problem, opts Options) (*Formulation, error) {
	if err := checkShape(p); err != nil {
		return nil, err
	}
	b := p.Blocks
	m := solver.NewModel()

	f := &Formulation{
		Model: m,
		Tr:    m.AddBinaryMatrix("Tr", len(p.Transformers), len(p.Terminals)),
		P:     make([]solver.Var, len(b.Rows)),
	}
	for h, label := range b.Rows {
		f.P[h] = m.AddBinary("P[" + label + "]")
	}

	objective := make([]solver.Term, 0, len(f.P)+len(p.Transformers)*len(p.Terminals))
	for _, v := range f.P {
		objective = append(objective, solver.Term{Var: v, Coeff: opts.PathReward})
	}
	for t := range f.Tr {
		for _, v := range f.Tr[t] {
			objective = append(objective, solver.Term{Var: v, Coeff: -opts.LinkCost})
		}
	}
	m.Maximize(objective...)

	for h, label := range b.Rows {
		uses := float64(b.Terminals.RowSum(h))
		if uses == 0 {
			continue
		}
		fed := false
		for t, tname := range p.Transformers {
			if b.Transformers.Values[h][t] != 1 {
				continue
			}
			fed = true
			terms := []solver.Term{{Var: f.P[h], Coeff: uses}}
			for r := range p.Terminals {
				if b.Terminals.Values[h][r] == 1 {
					terms = append(terms, solver.Term{Var: f.Tr[t][r], Coeff: -1})
				}
			}
			m.AddConstraint(fmt.Sprintf("topology[%s,%s]", tname, label), terms, solver.LessEqual, 0)
		}
		if !fed {
			m.AddConstraint(fmt.Sprintf("reach[%s]", label),
				[]solver.Term{{Var: f.P[h], Coeff: uses}}, solver.LessEqual, 0)
		}
	}

	for c, cname := range p.Customers {
		var terms []solver.Term
		for h := range b.Rows {
			if b.Customers.Values[h][c] == 1 {
				terms = append(terms, solver.Term{Var: f.P[h], Coeff: 1})
			}
		}
		m.AddConstraint(fmt.Sprintf("customer[%s]", cname), terms, solver.LessEqual, 1)
		if opts.RequireFullCoverage && len(terms) > 0 {
			m.AddConstraint(fmt.Sprintf("coverage[%s]", cname), terms, solver.GreaterEqual, 1)
		}
	}

	for r, rname := range p.Terminals {
		terms := make([]solver.Term, len(p.Transformers))
		for t := range p.Transformers {
			terms[t] = solver.Term{Var: f.Tr[t][r], Coeff: 1}
		}
		m.AddConstraint(fmt.Sprintf("terminal[%s]", rname), terms, solver.LessEqual, 1)
	}

	for t, tname := range p.Transformers {
		capacity := p.Capacity[tname]
		if capacity <= 0 {
			continue
		}
		terms := make([]solver.Term, len(p.Terminals))
		for r := range p.Terminals {
			terms[r] = solver.Term{Var: f.Tr[t][r], Coeff: 1}
		}
		m.AddConstraint(fmt.Sprintf("capacity[%s]", tname), terms, solver.LessEqual, float64(capacity))
	}

	return f, nil
}

// Solve formulates p and hands it to s. Infeasibility aborts the run.
func Solve(ctx context.Context, p *Problem, opts Options, s solver.Solver) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	f, err := Formulate(p, opts)
	if err != nil {
		return nil, err
	}

	sol, err := s.Solve(ctx, f.Model)
	switch {
	case errors.Is(err, solver.ErrInfeasible):
		return nil, fmt.Errorf("%w: %w", ErrInfeasible, err)
	case errors.Is(err, solver.ErrUnbounded):
		return nil, fmt.Errorf("%w: %w", ErrUnbounded, err)
	case err != nil:
		return nil, fmt.Errorf("solve assignment model: %w", err)
	}
	if sol.Status == solver.StatusUnbounded {
		return nil, ErrUnbounded
	}

	res := &Result{
		Transformers: p.Transformers,
		Terminals:    p.Terminals,
		Paths:        p.Blocks.Rows,
		Assignment:   make([][]int, len(f.Tr)),
		Activation:   make([]int, len(f.P)),
		Objective:    sol.Objective,
		Status:       sol.Status,
		Nodes:        sol.Nodes,
		Variables:    f.Model.NumVars(),
		Constraints:  f.Model.NumConstraints(),
	}
	for t := range f.Tr {
		res.Assignment[t] = make([]int, len(f.Tr[t]))
		for r, v := range f.Tr[t] {
			res.Assignment[t][r] = sol.Int(v)
		}
	}
	for h, v := range f.P {
		res.Activation[h] = sol.Int(v)
	}
	return res, nil
}
