package constraints

import (
	"errors"
	"testing"
)

// TestCardinalityConstraint_PathsPerCustomer tests the one-path-per-customer bound
func TestCardinalityConstraint_PathsPerCustomer(t *testing.T) {
	p := testPlan([]int{1, 1, 0}, [][]int{{1, 0}, {0, 0}})

	constraint := &CardinalityConstraint{Subject: PathsPerCustomer, Max: 1}
	violations, err := constraint.Validate(p)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Element != "c1" {
		t.Errorf("Expected violation for c1, got %s", violations[0].Element)
	}
	if violations[0].Severity != Error {
		t.Errorf("Expected Error severity, got %s", violations[0].Severity)
	}
	if violations[0].Details["count"] != 2 {
		t.Errorf("Expected count 2, got %v", violations[0].Details["count"])
	}
}

// TestCardinalityConstraint_MinIsWarning tests that unserved customers only warn
func TestCardinalityConstraint_MinIsWarning(t *testing.T) {
	p := testPlan([]int{1, 0, 0}, [][]int{{1, 0}, {0, 0}})

	constraint := &CardinalityConstraint{Subject: PathsPerCustomer, Min: 1}
	violations, err := constraint.Validate(p)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// c2 has a candidate path, c3 has none; both are short.
	if len(violations) != 2 {
		t.Fatalf("Expected 2 violations, got %d", len(violations))
	}
	for _, v := range violations {
		if v.Severity != Warning {
			t.Errorf("Expected Warning severity for %s", v.Element)
		}
	}
}

// TestCardinalityConstraint_FeedersPerTerminal tests one transformer per terminal
func TestCardinalityConstraint_FeedersPerTerminal(t *testing.T) {
	p := testPlan([]int{1, 0, 1}, [][]int{{1, 1}, {0, 1}})

	constraint := &CardinalityConstraint{Subject: FeedersPerTerminal, Max: 1}
	violations, err := constraint.Validate(p)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(violations) != 1 || violations[0].Element != "r2" {
		t.Fatalf("Expected one violation for r2, got %+v", violations)
	}
}

// TestCardinalityConstraint_Capacity tests transformer capacity
func TestCardinalityConstraint_Capacity(t *testing.T) {
	p := testPlan([]int{1, 0, 1}, [][]int{{1, 1}, {0, 0}})

	constraint := &CardinalityConstraint{Subject: TerminalsPerTransformer, UseCapacity: true}
	violations, err := constraint.Validate(p)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Type != CapacityExceeded || violations[0].Element != "t1" {
		t.Errorf("Expected CapacityExceeded on t1, got %s on %s", violations[0].Type, violations[0].Element)
	}

	// t2 has no capacity entry and is unlimited.
	p.Assignment.Values = [][]int{{0, 0}, {1, 1}}
	violations, _ = constraint.Validate(p)
	if len(violations) != 0 {
		t.Errorf("Expected no violations for unlimited transformer, got %d", len(violations))
	}
}

// TestCardinalityConstraint_Name tests constraint naming
func TestCardinalityConstraint_Name(t *testing.T) {
	tests := []struct {
		constraint *CardinalityConstraint
		expected   string
	}{
		{&CardinalityConstraint{Subject: PathsPerCustomer, Max: 1}, "CardinalityConstraint(PathsPerCustomer,[0,1])"},
		{&CardinalityConstraint{Subject: FeedersPerTerminal, Min: 1, Max: 2}, "CardinalityConstraint(FeedersPerTerminal,[1,2])"},
		{&CardinalityConstraint{Subject: TerminalsPerTransformer, UseCapacity: true}, "CardinalityConstraint(TerminalsPerTransformer,capacity)"},
	}

	for _, tt := range tests {
		if got := tt.constraint.Name(); got != tt.expected {
			t.Errorf("Name() = %s, want %s", got, tt.expected)
		}
	}
}

// TestCardinalityConstraint_IncompletePlan tests missing inputs
func TestCardinalityConstraint_IncompletePlan(t *testing.T) {
	for _, subject := range []Subject{PathsPerCustomer, FeedersPerTerminal, TerminalsPerTransformer} {
		constraint := &CardinalityConstraint{Subject: subject, Max: 1}
		if _, err := constraint.Validate(&Plan{}); !errors.Is(err, ErrIncompletePlan) {
			t.Errorf("%s: error = %v, want ErrIncompletePlan", subject, err)
		}
	}
	if _, err := (&CardinalityConstraint{Subject: Subject(9)}).Validate(&Plan{}); err == nil {
		t.Error("Expected error for unknown subject")
	}
}
