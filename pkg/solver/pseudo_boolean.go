package solver

import (
	"context"
	"fmt"
	"math"
	"sort"

	pbsat "github.com/crillab/gophersat/solver"
)

// maxScaleDigits bounds the decimal scaling applied to make coefficients
// integral.
const maxScaleDigits = 6

// PseudoBoolean solves binary programs with gophersat's pseudo-boolean
// optimizer. Coefficients are scaled by a power of ten per row, so every
// coefficient must have at most six decimal digits.
type PseudoBoolean struct{}

// NewPseudoBoolean returns a CDCL-based pseudo-boolean solver.
func NewPseudoBoolean() *PseudoBoolean {
	return &PseudoBoolean{}
}

// pbRow is sum(Weights[i] * Lits[i]) >= AtLeast with positive weights.
type pbRow struct {
	lits    []int
	weights []int
	atLeast int
}

// pbEncoding maps model variables onto solver literals 1..n. Variables that
// no binding constraint touches are decided by the sign of their objective
// weight and kept out of the encoding.
type pbEncoding struct {
	lit   []int
	vars  []Var
	rows  []pbRow
	fixed map[Var]bool
}

// Solve encodes m, runs the optimizer until it proves optimality and checks
// the returned model against m.
func (p *PseudoBoolean) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enc, err := encodePB(m)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return &Solution{Status: StatusInfeasible}, ErrInfeasible
	}

	values := make([]bool, m.NumVars())
	for v, x := range enc.fixed {
		values[v] = x
	}

	if len(enc.vars) > 0 {
		model, err := enc.optimize(ctx, m)
		if err != nil {
			return nil, err
		}
		if model == nil {
			return &Solution{Status: StatusInfeasible}, ErrInfeasible
		}
		for i, v := range enc.vars {
			values[v] = i < len(model) && model[i]
		}
	}

	if broken := m.Violations(values); len(broken) > 0 {
		return nil, fmt.Errorf("%w: solver model breaks %v", ErrInvalidModel, broken)
	}
	return &Solution{
		Status:    StatusOptimal,
		Objective: m.Objective(values),
		Values:    values,
	}, nil
}

// optimize runs gophersat and returns the model over enc.vars, or nil when
// the encoding is unsatisfiable.
func (enc *pbEncoding) optimize(ctx context.Context, m *Model) ([]bool, error) {
	constrs := make([]pbsat.PBConstr, len(enc.rows))
	for i, r := range enc.rows {
		constrs[i] = pbsat.PBConstr{Lits: r.lits, Weights: r.weights, AtLeast: r.atLeast}
	}
	problem := pbsat.ParsePBConstrs(constrs)

	costLits, costWeights, err := enc.cost(m)
	if err != nil {
		return nil, err
	}
	if len(costLits) > 0 {
		problem.SetCostFunc(costLits, costWeights)
	}
	s := pbsat.New(problem)

	stop := make(chan struct{})
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			close(stop)
		case <-done:
		}
	}()

	var (
		status pbsat.Status
		model  []bool
	)
	if len(costLits) > 0 {
		res := s.Optimal(nil, stop)
		status, model = res.Status, res.Model
	} else {
		status = s.Solve()
		if status == pbsat.Sat {
			model = s.Model()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if status != pbsat.Sat {
		return nil, nil
	}
	return model, nil
}

// cost turns the objective into a minimization over positive weights.
// Constant offsets are dropped; the objective is re-evaluated on the model.
func (enc *pbEncoding) cost(m *Model) ([]pbsat.Lit, []int, error) {
	coeffs := make([]float64, len(enc.vars))
	for i, v := range enc.vars {
		c := m.objective[v]
		if m.maximize {
			c = -c
		}
		coeffs[i] = c
	}
	ints, _, err := scaleIntegral(coeffs, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("objective: %w", err)
	}

	var (
		lits    []pbsat.Lit
		weights []int
	)
	for i, w := range ints {
		switch {
		case w > 0:
			lits = append(lits, pbsat.IntToLit(int32(i+1)))
			weights = append(weights, w)
		case w < 0:
			lits = append(lits, pbsat.IntToLit(int32(-(i + 1))))
			weights = append(weights, -w)
		}
	}
	return lits, weights, nil
}

// encodePB normalizes every constraint into >= rows over positive weights.
// It returns nil when some constraint can never hold.
func encodePB(m *Model) (*pbEncoding, error) {
	type sided struct {
		name  string
		terms map[Var]float64
		rhs   float64
	}
	var ge []sided
	for _, c := range m.constraints {
		merged := make(map[Var]float64, len(c.Terms))
		for _, t := range c.Terms {
			merged[t.Var] += t.Coeff
		}
		neg := make(map[Var]float64, len(merged))
		for v, a := range merged {
			neg[v] = -a
		}
		switch c.Sense {
		case GreaterEqual:
			ge = append(ge, sided{c.Name, merged, c.RHS})
		case LessEqual:
			ge = append(ge, sided{c.Name, neg, -c.RHS})
		default:
			ge = append(ge, sided{c.Name, merged, c.RHS}, sided{c.Name, neg, -c.RHS})
		}
	}

	// Rows first hold signed variable indices offset by one.
	var rows []pbRow
	for _, s := range ge {
		vars := make([]Var, 0, len(s.terms))
		for v, a := range s.terms {
			if a != 0 {
				vars = append(vars, v)
			}
		}
		sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

		coeffs := make([]float64, len(vars))
		for i, v := range vars {
			coeffs[i] = s.terms[v]
		}
		ints, rhs, err := scaleIntegral(coeffs, s.rhs)
		if err != nil {
			return nil, fmt.Errorf("constraint %s: %w", s.name, err)
		}

		row := pbRow{atLeast: rhs}
		total := 0
		for i, v := range vars {
			lit, w := int(v)+1, ints[i]
			if w < 0 {
				lit, w = -lit, -w
				row.atLeast += w
			}
			if w == 0 {
				continue
			}
			row.lits = append(row.lits, lit)
			row.weights = append(row.weights, w)
			total += w
		}
		if row.atLeast > total {
			return nil, nil
		}
		if row.atLeast > 0 {
			rows = append(rows, row)
		}
	}

	enc := &pbEncoding{
		lit:   make([]int, m.NumVars()),
		fixed: make(map[Var]bool),
	}
	for _, r := range rows {
		for i, lit := range r.lits {
			v := Var(abs(lit) - 1)
			if enc.lit[v] == 0 {
				enc.vars = append(enc.vars, v)
				enc.lit[v] = len(enc.vars)
			}
			if lit < 0 {
				r.lits[i] = -enc.lit[v]
			} else {
				r.lits[i] = enc.lit[v]
			}
		}
	}
	enc.rows = rows

	for v := range enc.lit {
		if enc.lit[v] == 0 {
			c := m.objective[v]
			if !m.maximize {
				c = -c
			}
			enc.fixed[Var(v)] = c > 0
		}
	}
	return enc, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// scaleIntegral multiplies coeffs and rhs by the smallest power of ten that
// makes every coefficient integral. The right-hand side is rounded up, which
// keeps >= rows exact for integral left-hand sides.
func scaleIntegral(coeffs []float64, rhs float64) ([]int, int, error) {
	scale := 1.0
	for d := 0; ; d++ {
		if integral(coeffs, scale) {
			break
		}
		if d == maxScaleDigits {
			return nil, 0, fmt.Errorf("%w: coefficients need more than %d decimal digits", ErrInvalidModel, maxScaleDigits)
		}
		scale *= 10
	}

	out := make([]int, len(coeffs))
	for i, c := range coeffs {
		out[i] = int(math.Round(c * scale))
	}
	r := rhs * scale
	if math.Abs(r-math.Round(r)) <= epsilon*scale {
		r = math.Round(r)
	}
	return out, int(math.Ceil(r)), nil
}

func integral(coeffs []float64, scale float64) bool {
	for _, c := range coeffs {
		x := c * scale
		if math.Abs(x-math.Round(x)) > 1e-6 {
			return false
		}
		if math.Abs(x) > math.MaxInt32 {
			return false
		}
	}
	return true
}
