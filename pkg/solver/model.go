// Package solver states small binary programs declaratively and solves them.
//
// A Model holds binary variables, one linear objective and linear
// constraints. Any Solver can consume it. PseudoBoolean hands the model to
// gophersat; BranchAndBound is an exhaustive search for small models.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInfeasible   = errors.New("solver: model is infeasible")
	ErrUnbounded    = errors.New("solver: objective is unbounded")
	ErrNodeLimit    = errors.New("solver: node limit reached before a feasible solution")
	ErrInvalidModel = errors.New("solver: invalid model")
)

// Var identifies a binary decision variable within one Model.
type Var int

// Term is coeff * var.
type Term struct {
	Var   Var
	Coeff float64
}

// Sense is the relation between a constraint's terms and its right-hand side.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "?"
	}
}

// Constraint is sum(Terms) Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Activity evaluates the left-hand side under values.
func (c Constraint) Activity(values []bool) float64 {
	sum := 0.0
	for _, t := range c.Terms {
		if values[t.Var] {
			sum += t.Coeff
		}
	}
	return sum
}

// Satisfied reports whether values satisfy the constraint.
func (c Constraint) Satisfied(values []bool) bool {
	act := c.Activity(values)
	switch c.Sense {
	case LessEqual:
		return act <= c.RHS+epsilon
	case GreaterEqual:
		return act >= c.RHS-epsilon
	default:
		return math.Abs(act-c.RHS) <= epsilon
	}
}

const epsilon = 1e-9

// Model is a binary program.
type Model struct {
	names       []string
	objective   []float64
	maximize    bool
	constraints []Constraint
}

// NewModel creates an empty model. The objective defaults to maximize 0.
func NewModel() *Model {
	return &Model{maximize: true}
}

// AddBinary declares a binary variable.
func (m *Model) AddBinary(name string) Var {
	m.names = append(m.names, name)
	m.objective = append(m.objective, 0)
	return Var(len(m.names) - 1)
}

// AddBinaryMatrix declares rows*cols binary variables named name[i,j].
func (m *Model) AddBinaryMatrix(name string, rows, cols int) [][]Var {
	out := make([][]Var, rows)
	for i := range out {
		out[i] = make([]Var, cols)
		for j := range out[i] {
			out[i][j] = m.AddBinary(fmt.Sprintf("%s[%d,%d]", name, i, j))
		}
	}
	return out
}

// Maximize replaces the objective with max sum(terms).
func (m *Model) Maximize(terms ...Term) {
	m.setObjective(true, terms)
}

// Minimize replaces the objective with min sum(terms).
func (m *Model) Minimize(terms ...Term) {
	m.setObjective(false, terms)
}

func (m *Model) setObjective(maximize bool, terms []Term) {
	m.maximize = maximize
	for i := range m.objective {
		m.objective[i] = 0
	}
	for _, t := range terms {
		if int(t.Var) >= 0 && int(t.Var) < len(m.objective) {
			m.objective[t.Var] += t.Coeff
		}
	}
}

// AddConstraint adds sum(terms) sense rhs.
func (m *Model) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	cp := make([]Term, len(terms))
	copy(cp, terms)
	m.constraints = append(m.constraints, Constraint{Name: name, Terms: cp, Sense: sense, RHS: rhs})
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int {
	return len(m.names)
}

// NumConstraints returns the number of constraints.
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// Name returns the declared name of v.
func (m *Model) Name(v Var) string {
	return m.names[v]
}

// Constraints returns the model's constraints.
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// Objective evaluates the objective under values.
func (m *Model) Objective(values []bool) float64 {
	sum := 0.0
	for v, c := range m.objective {
		if values[v] {
			sum += c
		}
	}
	return sum
}

// Violations names every constraint values break.
func (m *Model) Violations(values []bool) []string {
	var out []string
	for _, c := range m.constraints {
		if !c.Satisfied(values) {
			out = append(out, c.Name)
		}
	}
	return out
}

// Validate checks variable references and coefficients.
func (m *Model) Validate() error {
	var problems []string
	for v, c := range m.objective {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			problems = append(problems, fmt.Sprintf("objective coefficient of %s is %g", m.names[v], c))
		}
	}
	for _, c := range m.constraints {
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			problems = append(problems, fmt.Sprintf("constraint %s has rhs %g", c.Name, c.RHS))
		}
		for _, t := range c.Terms {
			if int(t.Var) < 0 || int(t.Var) >= len(m.names) {
				problems = append(problems, fmt.Sprintf("constraint %s references unknown variable %d", c.Name, t.Var))
			} else if math.IsNaN(t.Coeff) || math.IsInf(t.Coeff, 0) {
				problems = append(problems, fmt.Sprintf("constraint %s has coefficient %g", c.Name, t.Coeff))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidModel, strings.Join(problems, "; "))
	}
	return nil
}

// Status describes how a solve ended.
type Status int

const (
	StatusOptimal Status = iota
	// StatusFeasible is a solution found before a node limit stopped the proof of optimality.
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// Solution holds solved variable values.
type Solution struct {
	Status    Status
	Objective float64
	Values    []bool
	// Nodes is the number of search nodes explored, 0 when the solver does
	// not report it.
	Nodes int
}

// Value returns the solved value of v.
func (s *Solution) Value(v Var) bool {
	return s.Values[v]
}

// Int returns the solved value of v as 0 or 1.
func (s *Solution) Int(v Var) int {
	if s.Values[v] {
		return 1
	}
	return 0
}

// Solver solves binary programs. Implementations return ErrInfeasible when no
// assignment satisfies every constraint, together with a Solution carrying
// StatusInfeasible and search statistics.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}
