package solver

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestBranchAndBound_Knapsack(t *testing.T) {
	// max 10a + 6b + 4c  s.t. 5a + 4b + 3c <= 8
	m := NewModel()
	a, b, c := m.AddBinary("a"), m.AddBinary("b"), m.AddBinary("c")
	m.Maximize(Term{a, 10}, Term{b, 6}, Term{c, 4})
	m.AddConstraint("weight", []Term{{a, 5}, {b, 4}, {c, 3}}, LessEqual, 8)

	sol, err := NewBranchAndBound(0).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Errorf("status = %s, want optimal", sol.Status)
	}
	if sol.Objective != 14 {
		t.Errorf("objective = %f, want 14", sol.Objective)
	}
	if !sol.Value(a) || sol.Value(b) || !sol.Value(c) {
		t.Errorf("values = %v, want a and c", sol.Values)
	}
	if sol.Int(c) != 1 || sol.Int(b) != 0 {
		t.Errorf("Int values wrong: %v", sol.Values)
	}
}

func TestBranchAndBound_Minimize(t *testing.T) {
	// min x + y  s.t. x + y >= 1
	m := NewModel()
	x, y := m.AddBinary("x"), m.AddBinary("y")
	m.Minimize(Term{x, 1}, Term{y, 1})
	m.AddConstraint("cover", []Term{{x, 1}, {y, 1}}, GreaterEqual, 1)

	sol, err := NewBranchAndBound(0).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Objective != 1 {
		t.Errorf("objective = %f, want 1", sol.Objective)
	}
}

func TestBranchAndBound_Equality(t *testing.T) {
	m := NewModel()
	vars := m.AddBinaryMatrix("x", 1, 4)[0]
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{v, 1}
	}
	m.Maximize(Term{vars[3], 1})
	m.AddConstraint("two", terms, Equal, 2)

	sol, err := NewBranchAndBound(0).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	count := 0
	for _, v := range vars {
		count += sol.Int(v)
	}
	if count != 2 || !sol.Value(vars[3]) {
		t.Errorf("values = %v, want exactly two set including x[0,3]", sol.Values)
	}
	if m.Name(vars[2]) != "x[0,2]" {
		t.Errorf("name = %s", m.Name(vars[2]))
	}
}

func TestBranchAndBound_Infeasible(t *testing.T) {
	m := NewModel()
	x := m.AddBinary("x")
	m.AddConstraint("ge", []Term{{x, 1}}, GreaterEqual, 1)
	m.AddConstraint("le", []Term{{x, 1}}, LessEqual, 0)

	sol, err := NewBranchAndBound(0).Solve(context.Background(), m)
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("error = %v, want ErrInfeasible", err)
	}
	if sol == nil || sol.Status != StatusInfeasible {
		t.Errorf("solution = %+v, want infeasible status", sol)
	}
}

func TestBranchAndBound_EmptyConstraintInfeasible(t *testing.T) {
	m := NewModel()
	m.AddConstraint("impossible", nil, GreaterEqual, 1)

	if _, err := NewBranchAndBound(0).Solve(context.Background(), m); !errors.Is(err, ErrInfeasible) {
		t.Errorf("error = %v, want ErrInfeasible", err)
	}
}

func TestBranchAndBound_EmptyModel(t *testing.T) {
	sol, err := NewBranchAndBound(0).Solve(context.Background(), NewModel())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Objective != 0 || len(sol.Values) != 0 {
		t.Errorf("solution = %+v", sol)
	}
}

func TestBranchAndBound_InvalidModel(t *testing.T) {
	m := NewModel()
	m.AddBinary("x")
	m.AddConstraint("bad", []Term{{Var(7), 1}}, LessEqual, 1)

	if _, err := NewBranchAndBound(0).Solve(context.Background(), m); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("error = %v, want ErrInvalidModel", err)
	}
}

func TestBranchAndBound_Cancelled(t *testing.T) {
	m := NewModel()
	m.AddBinary("x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewBranchAndBound(0).Solve(ctx, m); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestBranchAndBound_NodeLimit(t *testing.T) {
	m := NewModel()
	var terms []Term
	for i := 0; i < 12; i++ {
		v := m.AddBinary("x")
		terms = append(terms, Term{v, 1})
	}
	m.Maximize(terms...)
	m.AddConstraint("cap", terms, LessEqual, 6)

	sol, err := NewBranchAndBound(30).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Status != StatusFeasible {
		t.Errorf("status = %s, want feasible", sol.Status)
	}
	if v := m.Violations(sol.Values); len(v) != 0 {
		t.Errorf("incumbent violates %v", v)
	}

	// A limit of one node cannot reach a leaf.
	if _, err := NewBranchAndBound(1).Solve(context.Background(), m); !errors.Is(err, ErrNodeLimit) {
		t.Errorf("error = %v, want ErrNodeLimit", err)
	}
}

// bruteForce enumerates every assignment of a small model.
func bruteForce(m *Model) (best float64, feasible bool) {
	n := m.NumVars()
	values := make([]bool, n)
	for mask := 0; mask < 1<<n; mask++ {
		for i := range values {
			values[i] = mask&(1<<i) != 0
		}
		if len(m.Violations(values)) > 0 {
			continue
		}
		obj := m.Objective(values)
		if !feasible || obj > best {
			best, feasible = obj, true
		}
	}
	return best, feasible
}

func randomModel(seed int64) *Model {
	rng := rand.New(rand.NewSource(seed))
	m := NewModel()
	n := 1 + rng.Intn(8)
	vars := make([]Var, n)
	obj := make([]Term, n)
	for i := range vars {
		vars[i] = m.AddBinary("x")
		obj[i] = Term{vars[i], float64(rng.Intn(21) - 10)}
	}
	m.Maximize(obj...)
	for k := rng.Intn(5); k > 0; k-- {
		var terms []Term
		for _, v := range vars {
			if rng.Intn(2) == 0 {
				terms = append(terms, Term{v, float64(rng.Intn(7) - 3)})
			}
		}
		m.AddConstraint("c", terms, Sense(rng.Intn(3)), float64(rng.Intn(5)-1))
	}
	return m
}

func TestBranchAndBoundMatchesEnumeration(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("optimum equals brute force", prop.ForAll(
		func(seed int64) bool {
			m := randomModel(seed)
			want, feasible := bruteForce(m)

			sol, err := NewBranchAndBound(0).Solve(context.Background(), m)
			if !feasible {
				return errors.Is(err, ErrInfeasible)
			}
			if err != nil {
				return false
			}
			return sol.Objective == want && len(m.Violations(sol.Values)) == 0
		},
		gen.Int64(),
	))
	properties.TestingRun(t)
}
