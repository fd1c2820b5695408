package constraints

import (
	"github.com/dd0wney/cluso-gridplan/pkg/incidence"
	"github.com/dd0wney/cluso-gridplan/pkg/plan"
)

// Plan is the read-only view of a solved plan that constraints check.
type Plan struct {
	Blocks     *incidence.Blocks
	Assignment *plan.AssignmentTable
	Activation *plan.ActivationTable
	// Capacity caps terminals per transformer; missing or 0 is unlimited.
	Capacity map[string]int
}

// Severity indicates the importance of a violation
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// ViolationType categorizes the type of constraint violation
type ViolationType int

const (
	CardinalityViolation ViolationType = iota
	CapacityExceeded
	TopologyViolation
	InvalidStructure
)

func (vt ViolationType) String() string {
	switch vt {
	case CardinalityViolation:
		return "CardinalityViolation"
	case CapacityExceeded:
		return "CapacityExceeded"
	case TopologyViolation:
		return "TopologyViolation"
	case InvalidStructure:
		return "InvalidStructure"
	default:
		return "Unknown"
	}
}

// Violation represents a constraint violation
type Violation struct {
	Type       ViolationType
	Severity   Severity
	Element    string // offending customer, terminal, transformer or path id
	Constraint string
	Message    string
	Details    map[string]any
}

// Constraint checks one property of a solved plan.
type Constraint interface {
	// Validate returns the violations found (empty if valid)
	Validate(p *Plan) ([]Violation, error)

	// Name returns a human-readable name for the constraint
	Name() string
}
