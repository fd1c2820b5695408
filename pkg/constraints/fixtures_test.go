package constraints

import (
	"github.com/dd0wney/cluso-gridplan/pkg/incidence"
	"github.com/dd0wney/cluso-gridplan/pkg/plan"
)

// testPlan has three paths: h1 and h2 for c1, h3 for c2. h1 and h2 use r1,
// h3 uses r2, and t1 is every row's feeder.
func testPlan(active []int, links [][]int) *Plan {
	return &Plan{
		Blocks: &incidence.Blocks{
			Rows: []string{"h1", "h2", "h3"},
			Customers: incidence.Block{
				Columns: []string{"c1", "c2", "c3"},
				Values:  [][]int{{1, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			},
			Terminals: incidence.Block{
				Columns: []string{"r1", "r2"},
				Values:  [][]int{{1, 0}, {1, 0}, {0, 1}},
			},
			Transformers: incidence.Block{
				Columns: []string{"t1", "t2"},
				Values:  [][]int{{1, 0}, {1, 0}, {1, 0}},
			},
		},
		Assignment: &plan.AssignmentTable{
			Rows:   []string{"t1", "t2"},
			Cols:   []string{"r1", "r2"},
			Values: links,
		},
		Activation: &plan.ActivationTable{
			Cols:   []string{"h1", "h2", "h3"},
			Values: active,
		},
		Capacity: map[string]int{"t1": 1},
	}
}
