package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPseudoBoolean_Knapsack(t *testing.T) {
	m := NewModel()
	a, b, c := m.AddBinary("a"), m.AddBinary("b"), m.AddBinary("c")
	m.Maximize(Term{a, 10}, Term{b, 6}, Term{c, 4})
	m.AddConstraint("weight", []Term{{a, 5}, {b, 4}, {c, 3}}, LessEqual, 8)

	sol, err := NewPseudoBoolean().Solve(context.Background(), m)
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
}

func TestPseudoBoolean_Cases(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Model
		want  float64
	}{
		{
			name: "minimize cover",
			build: func() *Model {
				m := NewModel()
				x, y := m.AddBinary("x"), m.AddBinary("y")
				m.Minimize(Term{x, 1}, Term{y, 1})
				m.AddConstraint("cover", []Term{{x, 1}, {y, 1}}, GreaterEqual, 1)
				return m
			},
			want: 1,
		},
		{
			name: "equality",
			build: func() *Model {
				m := NewModel()
				vars := m.AddBinaryMatrix("x", 1, 4)[0]
				terms := make([]Term, len(vars))
				for i, v := range vars {
					terms[i] = Term{v, 1}
				}
				m.Maximize(Term{vars[0], 3}, Term{vars[1], -1}, Term{vars[2], 2}, Term{vars[3], 1})
				m.AddConstraint("two", terms, Equal, 2)
				return m
			},
			want: 5,
		},
		{
			name: "fractional coefficients",
			build: func() *Model {
				m := NewModel()
				x, y := m.AddBinary("x"), m.AddBinary("y")
				m.Maximize(Term{x, 1.5}, Term{y, 0.25})
				m.AddConstraint("half", []Term{{x, 0.5}, {y, 0.5}}, LessEqual, 0.5)
				return m
			},
			want: 1.5,
		},
		{
			name: "repeated terms merge",
			build: func() *Model {
				m := NewModel()
				x, y := m.AddBinary("x"), m.AddBinary("y")
				m.Maximize(Term{x, 2}, Term{y, 1})
				m.AddConstraint("twice", []Term{{x, 1}, {x, 1}, {y, 1}}, LessEqual, 2)
				return m
			},
			want: 2,
		},
		{
			name: "unconstrained variables follow their weight",
			build: func() *Model {
				m := NewModel()
				x, y, z := m.AddBinary("x"), m.AddBinary("y"), m.AddBinary("z")
				m.Maximize(Term{x, 4}, Term{y, -2}, Term{z, 1})
				m.AddConstraint("loose", []Term{{z, 1}}, LessEqual, 1)
				return m
			},
			want: 5,
		},
		{
			name:  "empty model",
			build: NewModel,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.build()
			sol, err := NewPseudoBoolean().Solve(context.Background(), m)
			if err != nil {
				t.Fatalf("Solve failed: %v", err)
			}
			if sol.Objective != tt.want {
				t.Errorf("objective = %g, want %g", sol.Objective, tt.want)
			}
			if v := m.Violations(sol.Values); len(v) != 0 {
				t.Errorf("solution violates %v", v)
			}
		})
	}
}

func TestPseudoBoolean_Infeasible(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Model
	}{
		{"contradiction", func() *Model {
			m := NewModel()
			x := m.AddBinary("x")
			m.AddConstraint("ge", []Term{{x, 1}}, GreaterEqual, 1)
			m.AddConstraint("le", []Term{{x, 1}}, LessEqual, 0)
			return m
		}},
		{"empty constraint", func() *Model {
			m := NewModel()
			m.AddConstraint("impossible", nil, GreaterEqual, 1)
			return m
		}},
		{"over budget", func() *Model {
			m := NewModel()
			x, y := m.AddBinary("x"), m.AddBinary("y")
			m.Maximize(Term{x, 1})
			m.AddConstraint("both", []Term{{x, 1}, {y, 1}}, GreaterEqual, 2)
			m.AddConstraint("one", []Term{{x, 1}, {y, 1}}, LessEqual, 1)
			return m
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := NewPseudoBoolean().Solve(context.Background(), tt.build())
			if !errors.Is(err, ErrInfeasible) {
				t.Fatalf("error = %v, want ErrInfeasible", err)
			}
			if sol == nil || sol.Status != StatusInfeasible {
				t.Errorf("solution = %+v, want infeasible status", sol)
			}
		})
	}
}

func TestPseudoBoolean_Errors(t *testing.T) {
	precise := NewModel()
	x := precise.AddBinary("x")
	precise.AddConstraint("tiny", []Term{{x, 1e-7}}, LessEqual, 1)

	unknown := NewModel()
	unknown.AddBinary("x")
	unknown.AddConstraint("bad", []Term{{Var(3), 1}}, LessEqual, 1)

	for name, m := range map[string]*Model{"too precise": precise, "unknown variable": unknown} {
		t.Run(name, func(t *testing.T) {
			if _, err := NewPseudoBoolean().Solve(context.Background(), m); !errors.Is(err, ErrInvalidModel) {
				t.Errorf("error = %v, want ErrInvalidModel", err)
			}
		})
	}
}

func TestPseudoBoolean_Cancelled(t *testing.T) {
	m := NewModel()
	m.AddBinary("x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewPseudoBoolean().Solve(ctx, m); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestPseudoBooleanMatchesEnumeration(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("optimum equals brute force", prop.ForAll(
		func(seed int64) bool {
			m := randomModel(seed)
			want, feasible := bruteForce(m)

			sol, err := NewPseudoBoolean().Solve(context.Background(), m)
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
