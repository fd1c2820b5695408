package constraints

import (
	"fmt"
	"time"
)

// ValidationResult holds every finding of one validation pass.
type ValidationResult struct {
	// Valid is false when at least one finding has Error severity.
	Valid      bool
	Violations []Violation
	CheckedAt  time.Time
}

// Filter returns the findings for which keep reports true.
func (vr *ValidationResult) Filter(keep func(Violation) bool) []Violation {
	out := make([]Violation, 0)
	for _, v := range vr.Violations {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Errors returns the findings that invalidate the plan.
func (vr *ValidationResult) Errors() []Violation {
	return vr.Filter(func(v Violation) bool { return v.Severity == Error })
}

// Warnings returns the findings that only degrade the plan.
func (vr *ValidationResult) Warnings() []Violation {
	return vr.Filter(func(v Violation) bool { return v.Severity == Warning })
}

// OfType returns the findings of one kind.
func (vr *ValidationResult) OfType(t ViolationType) []Violation {
	return vr.Filter(func(v Violation) bool { return v.Type == t })
}

// Validator runs an ordered list of constraints over a plan.
type Validator struct {
	constraints []Constraint
}

// NewValidator returns a validator running constraints in the given order.
func NewValidator(constraints ...Constraint) *Validator {
	return &Validator{constraints: constraints}
}

// NewPlanValidator returns the checks every solved plan must pass: one active
// path per customer, one feeder per terminal, transformer capacity and
// feeder consistency. Customers with candidate paths but none active are
// reported as warnings.
func NewPlanValidator() *Validator {
	return NewValidator(
		&CardinalityConstraint{Subject: PathsPerCustomer, Max: 1},
		&CardinalityConstraint{Subject: PathsPerCustomer, Min: 1},
		&CardinalityConstraint{Subject: FeedersPerTerminal, Max: 1},
		&CardinalityConstraint{Subject: TerminalsPerTransformer, UseCapacity: true},
		&TopologyConstraint{},
	)
}

// Constraints returns the configured constraints.
func (v *Validator) Constraints() []Constraint {
	return v.constraints
}

// Validate runs every constraint. A constraint that cannot evaluate the plan
// aborts validation.
func (v *Validator) Validate(p *Plan) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:      true,
		Violations: make([]Violation, 0),
		CheckedAt:  time.Now(),
	}

	for _, c := range v.constraints {
		found, err := c.Validate(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name(), err)
		}
		for _, f := range found {
			if f.Severity == Error {
				result.Valid = false
			}
		}
		result.Violations = append(result.Violations, found...)
	}
	return result, nil
}
