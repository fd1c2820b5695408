package solver

import (
	"context"
	"math"
	"sort"
)

// DefaultMaxNodes is the node limit used when none is configured.
const DefaultMaxNodes = 1_000_000

// BranchAndBound is a depth-first binary program solver for small models. It
// fixes variables in order of decreasing objective weight, prunes partial
// assignments whose constraint activity bounds are already violated and drops
// branches whose optimistic objective cannot beat the incumbent. Its bound
// does not propagate between constraints, so search grows exponentially with
// the number of paths; use PseudoBoolean for planning runs.
type BranchAndBound struct {
	// MaxNodes stops the search after this many nodes; 0 means no limit.
	MaxNodes int
}

// NewBranchAndBound returns a solver with the given node limit.
func NewBranchAndBound(maxNodes int) *BranchAndBound {
	return &BranchAndBound{MaxNodes: maxNodes}
}

type occurrence struct {
	constraint int
	coeff      float64
}

type bbState struct {
	ctx      context.Context
	model    *Model
	order    []Var
	occurs   [][]occurrence
	obj      []float64
	minAct   []float64
	maxAct   []float64
	values   []bool
	cur      float64
	optimism float64

	best     float64
	bestVals []bool
	found    bool

	nodes    int
	maxNodes int
	limited  bool
	err      error
}

// Solve runs the search to completion, to the node limit or until ctx ends.
func (b *BranchAndBound) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := newBBState(ctx, m, b.MaxNodes)
	if s.rootFeasible() {
		s.dfs(0)
	}
	if s.err != nil {
		return nil, s.err
	}

	if !s.found {
		if s.limited {
			return nil, ErrNodeLimit
		}
		return &Solution{Status: StatusInfeasible, Nodes: s.nodes}, ErrInfeasible
	}

	status := StatusOptimal
	if s.limited {
		status = StatusFeasible
	}
	objective := s.best
	if !m.maximize {
		objective = -objective
	}
	return &Solution{
		Status:    status,
		Objective: objective,
		Values:    s.bestVals,
		Nodes:     s.nodes,
	}, nil
}

func newBBState(ctx context.Context, m *Model, maxNodes int) *bbState {
	n := m.NumVars()
	s := &bbState{
		ctx:      ctx,
		model:    m,
		occurs:   make([][]occurrence, n),
		obj:      make([]float64, n),
		minAct:   make([]float64, len(m.constraints)),
		maxAct:   make([]float64, len(m.constraints)),
		values:   make([]bool, n),
		maxNodes: maxNodes,
	}

	// Search always maximizes.
	for v, c := range m.objective {
		if !m.maximize {
			c = -c
		}
		s.obj[v] = c
		if c > 0 {
			s.optimism += c
		}
	}

	for k, c := range m.constraints {
		for _, t := range c.Terms {
			s.occurs[t.Var] = append(s.occurs[t.Var], occurrence{constraint: k, coeff: t.Coeff})
			s.minAct[k] += math.Min(t.Coeff, 0)
			s.maxAct[k] += math.Max(t.Coeff, 0)
		}
	}

	s.order = make([]Var, n)
	for i := range s.order {
		s.order[i] = Var(i)
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		va, vb := s.order[a], s.order[b]
		if wa, wb := math.Abs(s.obj[va]), math.Abs(s.obj[vb]); wa != wb {
			return wa > wb
		}
		return len(s.occurs[va]) > len(s.occurs[vb])
	})
	return s
}

func (s *bbState) rootFeasible() bool {
	for k := range s.model.constraints {
		if !s.feasible(k) {
			return false
		}
	}
	return true
}

func (s *bbState) feasible(k int) bool {
	c := s.model.constraints[k]
	switch c.Sense {
	case LessEqual:
		return s.minAct[k] <= c.RHS+epsilon
	case GreaterEqual:
		return s.maxAct[k] >= c.RHS-epsilon
	default:
		return s.minAct[k] <= c.RHS+epsilon && s.maxAct[k] >= c.RHS-epsilon
	}
}

// fix assigns v and reports whether every constraint touching v can still hold.
func (s *bbState) fix(v Var, x bool) bool {
	s.values[v] = x
	s.optimism -= math.Max(s.obj[v], 0)
	if x {
		s.cur += s.obj[v]
	}

	ok := true
	for _, o := range s.occurs[v] {
		s.minAct[o.constraint] -= math.Min(o.coeff, 0)
		s.maxAct[o.constraint] -= math.Max(o.coeff, 0)
		if x {
			s.minAct[o.constraint] += o.coeff
			s.maxAct[o.constraint] += o.coeff
		}
		if !s.feasible(o.constraint) {
			ok = false
		}
	}
	return ok
}

func (s *bbState) unfix(v Var, x bool) {
	for _, o := range s.occurs[v] {
		if x {
			s.minAct[o.constraint] -= o.coeff
			s.maxAct[o.constraint] -= o.coeff
		}
		s.minAct[o.constraint] += math.Min(o.coeff, 0)
		s.maxAct[o.constraint] += math.Max(o.coeff, 0)
	}
	if x {
		s.cur -= s.obj[v]
	}
	s.optimism += math.Max(s.obj[v], 0)
	s.values[v] = false
}

func (s *bbState) stopped() bool {
	return s.limited || s.err != nil
}

func (s *bbState) dfs(depth int) {
	s.nodes++
	if s.maxNodes > 0 && s.nodes > s.maxNodes {
		s.limited = true
		return
	}
	if s.nodes%1024 == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return
		}
	}
	if s.found && s.cur+s.optimism <= s.best+epsilon {
		return
	}

	if depth == len(s.order) {
		s.found = true
		s.best = s.cur
		s.bestVals = make([]bool, len(s.values))
		copy(s.bestVals, s.values)
		return
	}

	v := s.order[depth]
	first := s.obj[v] > 0
	for _, x := range [2]bool{first, !first} {
		if s.fix(v, x) {
			s.dfs(depth + 1)
		}
		s.unfix(v, x)
		if s.stopped() {
			return
		}
	}
}
