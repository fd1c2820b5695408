package algorithms

import (
	"github.com/dd0wney/cluso-gridplan/pkg/validation"
)

// Options tunes the multi-path search.
type Options struct {
	// MaxPaths is the number of search episodes run per customer.
	MaxPaths int
	// MaxConnectDistance is the exclusive distance below which two elements connect.
	MaxConnectDistance float64
	// BaseWeight is the edge cost of an element no accepted path has used.
	BaseWeight float64
	// WeightMultiplier compounds an element's cost on every later acceptance.
	WeightMultiplier float64
	// EscalateDuplicates also escalates weights when an episode retraces a
	// recorded path. Without it the first path's weights stay at the base
	// value and later episodes keep retracing it.
	EscalateDuplicates bool
	// LegacyOpenList re-inserts successors that are already open even after
	// updating them, and takes the heuristic from the expanded node rather than
	// the successor. Only for parity with older planning outputs.
	LegacyOpenList bool
}

// DefaultOptions returns three episodes, a 100 unit reach and weights 2 and 3.
func DefaultOptions() Options {
	return Options{
		MaxPaths:           3,
		MaxConnectDistance: 100,
		BaseWeight:         2,
		WeightMultiplier:   3,
	}
}

// Validate checks every option.
func (o Options) Validate() error {
	return validation.NewConfigValidator("search").
		Positive("max_paths", o.MaxPaths).
		PositiveFloat("max_connect_distance", o.MaxConnectDistance).
		PositiveFloat("base_weight", o.BaseWeight).
		MinFloat("weight_multiplier", o.WeightMultiplier, 1).
		Validate()
}
