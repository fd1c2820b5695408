package constraints

import (
	"fmt"
)

// TopologyConstraint checks that every active path is fed: the transformer
// marked in its incidence row must be linked to each terminal the path uses.
type TopologyConstraint struct{}

// Name returns the constraint name
func (tc *TopologyConstraint) Name() string {
	return "TopologyConstraint"
}

// Validate checks every active path.
func (tc *TopologyConstraint) Validate(p *Plan) ([]Violation, error) {
	if p.Blocks == nil || p.Assignment == nil || p.Activation == nil {
		return nil, ErrIncompletePlan
	}

	violations := make([]Violation, 0)
	for i, id := range p.Blocks.Rows {
		if !p.Activation.IsActive(id) {
			continue
		}

		feeder, ok := p.Blocks.FeederOf(i)
		if !ok {
			violations = append(violations, Violation{
				Type:       TopologyViolation,
				Severity:   Error,
				Element:    id,
				Constraint: tc.Name(),
				Message:    fmt.Sprintf("active path %s has no reachable transformer", id),
			})
			continue
		}

		for j, terminal := range p.Blocks.Terminals.Columns {
			if p.Blocks.Terminals.Values[i][j] != 1 {
				continue
			}
			if p.Assignment.At(feeder, terminal) != 1 {
				violations = append(violations, Violation{
					Type:       TopologyViolation,
					Severity:   Error,
					Element:    id,
					Constraint: tc.Name(),
					Message:    fmt.Sprintf("active path %s uses terminal %s, which %s does not feed", id, terminal, feeder),
					Details: map[string]any{
						"terminal":    terminal,
						"transformer": feeder,
					},
				})
			}
		}
	}
	return violations, nil
}
