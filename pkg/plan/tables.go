// Package plan turns solved decision variables into labelled tables and
// checks which customers the plan leaves without a path.
package plan

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-gridplan/pkg/optimizer"
)

var ErrShapeMismatch = errors.New("plan: labels do not match solved variables")

// AssignmentTable is the transformer-by-terminal link matrix.
type AssignmentTable struct {
	Rows   []string // transformers
	Cols   []string // terminals
	Values [][]int
}

// At returns the cell for a transformer and terminal, 0 for unknown labels.
func (t *AssignmentTable) At(transformer, terminal string) int {
	i, j := indexOf(t.Rows, transformer), indexOf(t.Cols, terminal)
	if i < 0 || j < 0 {
		return 0
	}
	return t.Values[i][j]
}

// Feeds maps each linked terminal to the transformer feeding it. When a
// terminal has several links the first transformer wins.
func (t *AssignmentTable) Feeds() map[string]string {
	out := make(map[string]string)
	for i, transformer := range t.Rows {
		for j, terminal := range t.Cols {
			if t.Values[i][j] != 1 {
				continue
			}
			if _, seen := out[terminal]; !seen {
				out[terminal] = transformer
			}
		}
	}
	return out
}

// Links returns the number of transformer-terminal links.
func (t *AssignmentTable) Links() int {
	n := 0
	for _, row := range t.Values {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// ActivationTable is the single-row path activation vector.
type ActivationTable struct {
	Cols   []string // path ids
	Values []int
}

// IsActive reports whether the path with the given id is active.
func (a *ActivationTable) IsActive(id string) bool {
	j := indexOf(a.Cols, id)
	return j >= 0 && a.Values[j] == 1
}

// Active returns the ids of active paths in column order.
func (a *ActivationTable) Active() []string {
	var out []string
	for j, id := range a.Cols {
		if a.Values[j] == 1 {
			out = append(out, id)
		}
	}
	return out
}

// Translate copies the solved variables into labelled tables.
func Translate(res *optimizer.Result, transformers, terminals, pathIDs []string) (*AssignmentTable, *ActivationTable, error) {
	if len(res.Assignment) != len(transformers) {
		return nil, nil, fmt.Errorf("%w: %d assignment rows for %d transformers", ErrShapeMismatch, len(res.Assignment), len(transformers))
	}
	assignment := &AssignmentTable{
		Rows:   append([]string(nil), transformers...),
		Cols:   append([]string(nil), terminals...),
		Values: make([][]int, len(transformers)),
	}
	for i, row := range res.Assignment {
		if len(row) != len(terminals) {
			return nil, nil, fmt.Errorf("%w: assignment row %s has %d cells for %d terminals", ErrShapeMismatch, transformers[i], len(row), len(terminals))
		}
		assignment.Values[i] = append([]int(nil), row...)
	}

	if len(res.Activation) != len(pathIDs) {
		return nil, nil, fmt.Errorf("%w: %d activations for %d paths", ErrShapeMismatch, len(res.Activation), len(pathIDs))
	}
	activation := &ActivationTable{
		Cols:   append([]string(nil), pathIDs...),
		Values: append([]int(nil), res.Activation...),
	}
	return assignment, activation, nil
}

func indexOf(labels []string, want string) int {
	for i, l := range labels {
		if l == want {
			return i
		}
	}
	return -1
}
