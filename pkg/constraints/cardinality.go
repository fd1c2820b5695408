package constraints

import (
	"errors"
	"fmt"
)

var ErrIncompletePlan = errors.New("constraints: plan is missing blocks or tables")

// Subject selects what a cardinality constraint counts.
type Subject int

const (
	PathsPerCustomer        Subject = iota // active paths of each customer
	FeedersPerTerminal                     // transformers linked to each terminal
	TerminalsPerTransformer                // terminals linked to each transformer
)

func (s Subject) String() string {
	switch s {
	case PathsPerCustomer:
		return "PathsPerCustomer"
	case FeedersPerTerminal:
		return "FeedersPerTerminal"
	case TerminalsPerTransformer:
		return "TerminalsPerTransformer"
	default:
		return "Unknown"
	}
}

// CardinalityConstraint bounds a per-element count. Falling short of Min is a
// warning; exceeding Max is an error.
type CardinalityConstraint struct {
	Subject Subject
	Min     int // Minimum count (0 = optional)
	Max     int // Maximum count (0 = unlimited)
	// UseCapacity takes each transformer's Max from Plan.Capacity.
	UseCapacity bool
}

// Name returns the constraint name
func (cc *CardinalityConstraint) Name() string {
	if cc.UseCapacity {
		return fmt.Sprintf("CardinalityConstraint(%s,capacity)", cc.Subject)
	}
	return fmt.Sprintf("CardinalityConstraint(%s,[%d,%d])", cc.Subject, cc.Min, cc.Max)
}

// Validate counts the subject for every element and checks the bounds.
func (cc *CardinalityConstraint) Validate(p *Plan) ([]Violation, error) {
	counts, order, err := cc.count(p)
	if err != nil {
		return nil, err
	}

	violations := make([]Violation, 0)
	for _, element := range order {
		count := counts[element]

		if cc.Min > 0 && count < cc.Min {
			violations = append(violations, Violation{
				Type:       CardinalityViolation,
				Severity:   Warning,
				Element:    element,
				Constraint: cc.Name(),
				Message:    fmt.Sprintf("%s has %d, minimum is %d", element, count, cc.Min),
				Details: map[string]any{
					"subject": cc.Subject.String(),
					"count":   count,
					"min":     cc.Min,
				},
			})
		}

		max := cc.Max
		violationType := CardinalityViolation
		if cc.UseCapacity {
			max = p.Capacity[element]
			violationType = CapacityExceeded
		}
		if max > 0 && count > max {
			violations = append(violations, Violation{
				Type:       violationType,
				Severity:   Error,
				Element:    element,
				Constraint: cc.Name(),
				Message:    fmt.Sprintf("%s has %d, maximum is %d", element, count, max),
				Details: map[string]any{
					"subject": cc.Subject.String(),
					"count":   count,
					"max":     max,
				},
			})
		}
	}

	return violations, nil
}

// count returns the per-element counts and the element order to report them in.
func (cc *CardinalityConstraint) count(p *Plan) (map[string]int, []string, error) {
	counts := make(map[string]int)

	switch cc.Subject {
	case PathsPerCustomer:
		if p.Blocks == nil || p.Activation == nil {
			return nil, nil, ErrIncompletePlan
		}
		for i, id := range p.Blocks.Rows {
			if !p.Activation.IsActive(id) {
				continue
			}
			if c, ok := p.Blocks.CustomerOf(i); ok {
				counts[c]++
			}
		}
		return counts, p.Blocks.Customers.Columns, nil

	case FeedersPerTerminal:
		if p.Assignment == nil {
			return nil, nil, ErrIncompletePlan
		}
		for i := range p.Assignment.Rows {
			for j, terminal := range p.Assignment.Cols {
				counts[terminal] += p.Assignment.Values[i][j]
			}
		}
		return counts, p.Assignment.Cols, nil

	case TerminalsPerTransformer:
		if p.Assignment == nil {
			return nil, nil, ErrIncompletePlan
		}
		for i, transformer := range p.Assignment.Rows {
			for j := range p.Assignment.Cols {
				counts[transformer] += p.Assignment.Values[i][j]
			}
		}
		return counts, p.Assignment.Rows, nil

	default:
		return nil, nil, fmt.Errorf("constraints: unknown subject %d", cc.Subject)
	}
}
